// Compute-instance operations demo: lists instances, dumps metadata
// and inspects the first running instance, step by step.
package main

import (
	"context"
	"fmt"
	"os"

	"jobportal-ops/internal/awsops"
	"jobportal-ops/internal/config"
	"jobportal-ops/internal/logger"

	"github.com/aws/aws-sdk-go-v2/feature/ec2/imds"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
)

func main() {
	cfg := config.Load()
	log := logger.Init(cfg, "ec2ops")
	ctx := context.Background()

	awsCfg, err := awsops.NewAWSConfig(ctx, cfg.AWSRegion)
	if err != nil {
		log.Fatal().Err(err).Msg("load AWS config")
	}
	ops := awsops.NewEC2Ops(ec2.NewFromConfig(awsCfg), imds.NewFromConfig(awsCfg), cfg, log)

	fmt.Printf("EC2 operations demo (project: %s, region: %s)\n\n", cfg.ProjectName, cfg.AWSRegion)

	awsops.Banner(os.Stdout, "STEP 1: List All EC2 Instances")
	if _, err := ops.ListInstances(ctx, ""); err != nil {
		log.Error().Err(err).Msg("list instances")
	}

	awsops.Banner(os.Stdout, "STEP 2: List Running EC2 Instances")
	running, err := ops.ListInstances(ctx, "running")
	if err != nil {
		log.Error().Err(err).Msg("list running instances")
	}

	awsops.Banner(os.Stdout, "STEP 3: Retrieve EC2 Metadata")
	ops.GetInstanceMetadata(ctx)

	awsops.Banner(os.Stdout, "STEP 4: Filter Instances by Project Tag")
	if _, err := ops.FilterByTag(ctx, "Project", cfg.ProjectName); err != nil {
		log.Error().Err(err).Msg("filter instances by tag")
	}

	if len(running) > 0 {
		awsops.Banner(os.Stdout, "STEP 5: Get Detailed Instance Information")
		id := running[0].InstanceID
		if _, err := ops.GetInstanceDetails(ctx, id); err != nil {
			log.Error().Err(err).Msg("get instance details")
		}
		if _, err := ops.GetInstanceStatus(ctx, id); err != nil {
			log.Error().Err(err).Msg("get instance status")
		}
	}

	fmt.Println()
	fmt.Println("EC2 operations demo complete.")
}
