// Package config provides configuration management for glutil.
//
// It utilizes Viper for loading configuration from environment variables and
// an optional .env file. Defaults come from the `default` struct tags of each
// section, so every key is also reachable from the environment.
//
// # Configuration Structure
//
// The Config struct is divided into subsections:
//   - AWS: profile, region and Glue endpoint
//   - Storage: listing backend (s3 or minio) and its endpoint/credentials
//   - Log: logging level and format
//   - Server: HTTP trigger port, API key and run limits
//   - Journal: optional MySQL run journal
//
// Environment variables map to keys by section, e.g. AWS_PROFILE -> aws.profile
// and JOURNAL_DATABASE_HOST -> journal.database.host.
//
// # Usage
//
//	cfg, err := config.LoadConfig(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.AWS.Profile)
package config
