package awsconf

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
)

// ErrProfileNotFound is returned when the named shared-config profile does not exist.
var ErrProfileNotFound = errors.New("aws profile not found")

// Config holds the AWS settings shared by the catalog and object-store clients.
type Config struct {
	// Profile is the shared-config profile. Empty uses the default chain.
	Profile string `mapstructure:"profile" default:""`
	// Region overrides the region resolved from the environment/profile.
	Region string `mapstructure:"region" default:""`
	// Endpoint overrides the Glue endpoint (e.g. LocalStack).
	Endpoint string `mapstructure:"endpoint" default:""`
}

// Load resolves an aws.Config for the given profile and region.
func Load(ctx context.Context, cfg Config) (aws.Config, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if cfg.Profile != "" {
		opts = append(opts, awsconfig.WithSharedConfigProfile(cfg.Profile))
	}
	if cfg.Region != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.Region))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		var notExist awsconfig.SharedConfigProfileNotExistError
		if errors.As(err, &notExist) {
			return aws.Config{}, fmt.Errorf("%w: %q: %w", ErrProfileNotFound, cfg.Profile, err)
		}
		return aws.Config{}, fmt.Errorf("loading AWS config: %w", err)
	}
	return awsCfg, nil
}
