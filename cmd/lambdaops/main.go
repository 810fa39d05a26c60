// Serverless-function operations demo: inspects and invokes the
// deployed upload logger and tails its logs, step by step.
package main

import (
	"context"
	"fmt"
	"os"

	"jobportal-ops/internal/awsops"
	"jobportal-ops/internal/config"
	"jobportal-ops/internal/logger"

	"github.com/aws/aws-sdk-go-v2/service/cloudwatchlogs"
	"github.com/aws/aws-sdk-go-v2/service/lambda"
	lambdatypes "github.com/aws/aws-sdk-go-v2/service/lambda/types"
)

func main() {
	cfg := config.Load()
	log := logger.Init(cfg, "lambdaops")
	ctx := context.Background()

	awsCfg, err := awsops.NewAWSConfig(ctx, cfg.AWSRegion)
	if err != nil {
		log.Fatal().Err(err).Msg("load AWS config")
	}
	ops := awsops.NewLambdaOps(
		lambda.NewFromConfig(awsCfg),
		cloudwatchlogs.NewFromConfig(awsCfg),
		cfg, log,
	)

	functionName := cfg.FunctionName()
	fmt.Printf("Lambda operations demo (region: %s, target: %s)\n\n", cfg.AWSRegion, functionName)

	awsops.Banner(os.Stdout, "STEP 1: List All Lambda Functions")
	if _, err := ops.ListFunctions(ctx); err != nil {
		log.Error().Err(err).Msg("list functions")
	}

	awsops.Banner(os.Stdout, "STEP 2: Get Function Details")
	details, err := ops.GetFunctionDetails(ctx, functionName)
	if err != nil {
		log.Error().Err(err).Msg("get function details")
	}
	if details == nil {
		fmt.Printf("\nfunction %q not found; deploy the upload logger first\n", functionName)
		return
	}

	awsops.Banner(os.Stdout, "STEP 3: Get Function Configuration")
	if _, err := ops.GetFunctionConfig(ctx, functionName); err != nil {
		log.Error().Err(err).Msg("get function configuration")
	}

	awsops.Banner(os.Stdout, "STEP 4: Invoke Lambda Function (Synchronous)")
	if _, err := ops.Invoke(ctx, functionName, nil, lambdatypes.InvocationTypeRequestResponse); err != nil {
		log.Error().Err(err).Msg("invoke function")
	}

	awsops.Banner(os.Stdout, "STEP 5: Get Recent Function Logs")
	if _, err := ops.GetFunctionLogs(ctx, functionName, 20); err != nil {
		log.Error().Err(err).Msg("get function logs")
	}

	fmt.Println()
	fmt.Println("Lambda operations demo complete.")
}
