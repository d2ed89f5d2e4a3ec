package server

import "time"

// Config holds configuration for the HTTP trigger server.
type Config struct {
	// Port is the port where the server will listen.
	Port string `mapstructure:"port" default:"8080"`
	// ApiKey is the secret key required to access the API. Empty disables auth.
	ApiKey string `mapstructure:"api_key" default:""`
	// TimeoutSeconds bounds one trigger run.
	TimeoutSeconds int `mapstructure:"timeout_seconds" default:"900"`
	// ResultTTLSeconds keeps a finished run's result for repeated requests.
	ResultTTLSeconds int `mapstructure:"result_ttl_seconds" default:"0"`
}

// Address returns the listen address.
func (c Config) Address() string {
	return ":" + c.Port
}

// Timeout returns the run timeout, 15 minutes when unset.
func (c Config) Timeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return 15 * time.Minute
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// ResultTTL returns how long finished results are reused.
func (c Config) ResultTTL() time.Duration {
	return time.Duration(max(c.ResultTTLSeconds, 0)) * time.Second
}
