// Package awsconf loads the AWS SDK configuration for a profile and region.
package awsconf
