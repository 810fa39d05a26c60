// Object-storage operations demo: walks bucket creation, uploads and
// listings against the project's files bucket, step by step.
package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"jobportal-ops/internal/awsops"
	"jobportal-ops/internal/config"
	"jobportal-ops/internal/logger"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

const sampleResume = `John Doe
Software Engineer

Experience:
- 5 years of cloud computing experience
- AWS Certified Solutions Architect
- Go, Python, JavaScript

Education:
- BS Computer Science, University XYZ
`

func main() {
	cfg := config.Load()
	log := logger.Init(cfg, "s3ops")
	ctx := context.Background()

	awsCfg, err := awsops.NewAWSConfig(ctx, cfg.AWSRegion)
	if err != nil {
		log.Fatal().Err(err).Msg("load AWS config")
	}
	ops := awsops.NewS3Ops(s3.NewFromConfig(awsCfg), cfg, log)

	// Bucket names are global, so the demo appends a random suffix.
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	bucketName := fmt.Sprintf("%s-%s", cfg.BucketPrefix(), suffix)

	fmt.Printf("S3 operations demo (project: %s, region: %s)\n", cfg.ProjectName, cfg.AWSRegion)
	fmt.Printf("bucket name: %s\n\n", bucketName)

	awsops.Banner(os.Stdout, "STEP 1: List Existing Buckets")
	if _, err := ops.ListBuckets(ctx); err != nil {
		log.Error().Err(err).Msg("list buckets")
	}

	awsops.Banner(os.Stdout, "STEP 2: Create New Bucket")
	if err := ops.CreateBucket(ctx, bucketName); err != nil {
		log.Fatal().Err(err).Msg("create bucket")
	}

	awsops.Banner(os.Stdout, "STEP 3: Upload Sample Files")
	if err := ops.UploadString(ctx, bucketName, sampleResume, "resumes/john_doe_resume.txt"); err != nil {
		log.Error().Err(err).Msg("upload resume")
	}
	if err := ops.UploadString(ctx, bucketName, "This is a placeholder for company logo", "logos/company_logo.txt"); err != nil {
		log.Error().Err(err).Msg("upload logo")
	}
	if err := ops.UploadStringGzip(ctx, bucketName, sampleResume, "archive/john_doe_resume.txt.gz"); err != nil {
		log.Error().Err(err).Msg("upload compressed resume")
	}

	awsops.Banner(os.Stdout, "STEP 4: List Uploaded Objects")
	if _, err := ops.ListObjects(ctx, bucketName, ""); err != nil {
		log.Error().Err(err).Msg("list objects")
	}

	awsops.Banner(os.Stdout, "STEP 5: Get Bucket Information")
	if _, err := ops.GetBucketInfo(ctx, bucketName); err != nil {
		log.Error().Err(err).Msg("get bucket info")
	}

	fmt.Println()
	fmt.Println("S3 operations demo complete.")
	fmt.Printf("remember to clean up: aws s3 rb s3://%s --force\n", bucketName)
}
