// Package awsops holds the thin, sequential AWS operation wrappers the
// demo binaries drive. Every call is a direct pass-through to the SDK:
// no application-level retries, no shared state, results printed step
// by step.
package awsops

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	awscfg "github.com/aws/aws-sdk-go-v2/config"
)

// NewAWSConfig loads the default credential chain pinned to a region.
func NewAWSConfig(ctx context.Context, region string) (aws.Config, error) {
	return awscfg.LoadDefaultConfig(ctx, awscfg.WithRegion(region))
}
