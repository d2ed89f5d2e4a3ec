// Package server holds the HTTP trigger server configuration.
//
// The Config struct defines the HTTP port, the API key protecting the
// trigger endpoints, the time budget of one run and how long a finished run's
// result is reused for identical requests.
package server
