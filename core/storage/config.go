package storage

// Config holds configuration for the object store that backs the tables.
type Config struct {
	// Driver selects the listing backend: "s3" (AWS SDK) or "minio".
	Driver string `mapstructure:"driver" default:"s3"`
	// Endpoint is an optional custom endpoint (LocalStack, MinIO, R2).
	Endpoint string `mapstructure:"endpoint" default:""`
	// AccessKey is the access key ID. Empty uses the AWS credential chain.
	AccessKey string `mapstructure:"access_key" default:""`
	// SecretKey is the secret access key.
	SecretKey string `mapstructure:"secret_key" default:""`
	// UseSSL indicates whether to use TLS for the minio driver.
	UseSSL bool `mapstructure:"use_ssl" default:"true"`
	// Region overrides the AWS region for the object store.
	Region string `mapstructure:"region" default:""`
	// UsePathStyle enables path-style addressing for the s3 driver.
	UsePathStyle bool `mapstructure:"use_path_style" default:"false"`
	// TimeoutSeconds is the connection timeout in seconds.
	TimeoutSeconds int `mapstructure:"timeout_seconds" default:"30"`
}

const (
	DriverS3    = "s3"
	DriverMinio = "minio"
)
