// Package middleware contains HTTP middleware for the Fiber application.
//
// # Components
//
//   - auth: API key validation protecting the trigger endpoints.
//   - requestid: assigns a request id to every incoming request, storing it in
//     the context for logger.WithRequestID and echoing it in the response.
package middleware
