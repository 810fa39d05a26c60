package awsops

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"jobportal-ops/internal/config"
	"jobportal-ops/internal/processor"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/klauspost/compress/gzip"
	"github.com/rs/zerolog"
)

// S3API is the slice of the S3 client these operations touch. The
// concrete *s3.Client satisfies it; tests substitute a fake.
type S3API interface {
	CreateBucket(ctx context.Context, params *s3.CreateBucketInput, optFns ...func(*s3.Options)) (*s3.CreateBucketOutput, error)
	PutBucketVersioning(ctx context.Context, params *s3.PutBucketVersioningInput, optFns ...func(*s3.Options)) (*s3.PutBucketVersioningOutput, error)
	PutBucketTagging(ctx context.Context, params *s3.PutBucketTaggingInput, optFns ...func(*s3.Options)) (*s3.PutBucketTaggingOutput, error)
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	ListBuckets(ctx context.Context, params *s3.ListBucketsInput, optFns ...func(*s3.Options)) (*s3.ListBucketsOutput, error)
	ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
	GetBucketLocation(ctx context.Context, params *s3.GetBucketLocationInput, optFns ...func(*s3.Options)) (*s3.GetBucketLocationOutput, error)
	GetBucketVersioning(ctx context.Context, params *s3.GetBucketVersioningInput, optFns ...func(*s3.Options)) (*s3.GetBucketVersioningOutput, error)
	GetBucketTagging(ctx context.Context, params *s3.GetBucketTaggingInput, optFns ...func(*s3.Options)) (*s3.GetBucketTaggingOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// S3Ops wraps bucket and object operations for the project buckets.
type S3Ops struct {
	api S3API
	cfg config.Config
	log zerolog.Logger
	out io.Writer
}

func NewS3Ops(api S3API, cfg config.Config, log zerolog.Logger) *S3Ops {
	return &S3Ops{api: api, cfg: cfg, log: log, out: os.Stdout}
}

// SetOutput redirects the printed step output, used by tests.
func (o *S3Ops) SetOutput(w io.Writer) { o.out = w }

// CreateBucket creates a bucket, enables versioning and tags it with
// the project identity. A bucket this account already owns is treated
// as success; a globally taken name is an error.
func (o *S3Ops) CreateBucket(ctx context.Context, bucketName string) error {
	o.log.Debug().Str("bucket", bucketName).Str("region", o.cfg.AWSRegion).Msg("creating bucket")

	input := &s3.CreateBucketInput{Bucket: aws.String(bucketName)}

	// us-east-1 rejects an explicit LocationConstraint.
	if o.cfg.AWSRegion != "us-east-1" {
		input.CreateBucketConfiguration = &types.CreateBucketConfiguration{
			LocationConstraint: types.BucketLocationConstraint(o.cfg.AWSRegion),
		}
	}

	if _, err := o.api.CreateBucket(ctx, input); err != nil {
		var apiErr smithy.APIError
		if errors.As(err, &apiErr) {
			switch apiErr.ErrorCode() {
			case "BucketAlreadyOwnedByYou":
				fmt.Fprintf(o.out, "Bucket %q already exists and is owned by you.\n", bucketName)
				return nil
			case "BucketAlreadyExists":
				return fmt.Errorf("bucket name %q is already taken globally", bucketName)
			}
		}
		return fmt.Errorf("create bucket %q: %w", bucketName, err)
	}
	fmt.Fprintf(o.out, "Bucket %q created successfully\n", bucketName)

	if _, err := o.api.PutBucketVersioning(ctx, &s3.PutBucketVersioningInput{
		Bucket: aws.String(bucketName),
		VersioningConfiguration: &types.VersioningConfiguration{
			Status: types.BucketVersioningStatusEnabled,
		},
	}); err != nil {
		return fmt.Errorf("enable versioning on %q: %w", bucketName, err)
	}
	fmt.Fprintf(o.out, "Versioning enabled for bucket %q\n", bucketName)

	if _, err := o.api.PutBucketTagging(ctx, &s3.PutBucketTaggingInput{
		Bucket: aws.String(bucketName),
		Tagging: &types.Tagging{
			TagSet: []types.Tag{
				{Key: aws.String("Project"), Value: aws.String(o.cfg.ProjectName)},
				{Key: aws.String("Environment"), Value: aws.String(o.cfg.Environment)},
				{Key: aws.String("ManagedBy"), Value: aws.String("jobportal-ops")},
			},
		},
	}); err != nil {
		return fmt.Errorf("tag bucket %q: %w", bucketName, err)
	}
	fmt.Fprintf(o.out, "Tags added to bucket %q\n", bucketName)

	return nil
}

// objectMetadata is attached to every uploaded object.
func (o *S3Ops) objectMetadata() map[string]string {
	return map[string]string{
		"uploaded-by": "jobportal-ops",
		"project":     o.cfg.ProjectName,
		"upload-time": time.Now().Format(time.RFC3339),
	}
}

// UploadFile uploads a local file. An empty objectKey defaults to the
// file's base name.
func (o *S3Ops) UploadFile(ctx context.Context, bucketName, filePath, objectKey string) error {
	if objectKey == "" {
		objectKey = filepath.Base(filePath)
	}

	f, err := os.Open(filePath)
	if err != nil {
		return fmt.Errorf("open %q: %w", filePath, err)
	}
	defer f.Close()

	if _, err := o.api.PutObject(ctx, &s3.PutObjectInput{
		Bucket:   aws.String(bucketName),
		Key:      aws.String(objectKey),
		Body:     f,
		Metadata: o.objectMetadata(),
	}); err != nil {
		return fmt.Errorf("upload %q to s3://%s/%s: %w", filePath, bucketName, objectKey, err)
	}
	fmt.Fprintf(o.out, "File %q uploaded to s3://%s/%s\n", filePath, bucketName, objectKey)
	return nil
}

// UploadString uploads literal text content as an object.
func (o *S3Ops) UploadString(ctx context.Context, bucketName, content, objectKey string) error {
	if _, err := o.api.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(bucketName),
		Key:         aws.String(objectKey),
		Body:        bytes.NewReader([]byte(content)),
		ContentType: aws.String("text/plain"),
		Metadata:    o.objectMetadata(),
	}); err != nil {
		return fmt.Errorf("upload content to s3://%s/%s: %w", bucketName, objectKey, err)
	}
	fmt.Fprintf(o.out, "Content uploaded to s3://%s/%s\n", bucketName, objectKey)
	return nil
}

// UploadStringGzip uploads text content gzip-compressed, with the
// Content-Encoding header set so consumers can read it transparently.
// Meant for log-style payloads that compress well.
func (o *S3Ops) UploadStringGzip(ctx context.Context, bucketName, content, objectKey string) error {
	var buf bytes.Buffer
	gz, err := gzip.NewWriterLevel(&buf, gzip.BestSpeed)
	if err != nil {
		return fmt.Errorf("init gzip writer: %w", err)
	}
	if _, err := gz.Write([]byte(content)); err != nil {
		return fmt.Errorf("compress content: %w", err)
	}
	if err := gz.Close(); err != nil {
		return fmt.Errorf("finish gzip stream: %w", err)
	}

	if _, err := o.api.PutObject(ctx, &s3.PutObjectInput{
		Bucket:          aws.String(bucketName),
		Key:             aws.String(objectKey),
		Body:            bytes.NewReader(buf.Bytes()),
		ContentType:     aws.String("text/plain"),
		ContentEncoding: aws.String("gzip"),
		Metadata:        o.objectMetadata(),
	}); err != nil {
		return fmt.Errorf("upload gzip content to s3://%s/%s: %w", bucketName, objectKey, err)
	}
	fmt.Fprintf(o.out, "Compressed content uploaded to s3://%s/%s (%d -> %d bytes)\n",
		bucketName, objectKey, len(content), buf.Len())
	return nil
}

// ListBuckets prints and returns all buckets in the account.
func (o *S3Ops) ListBuckets(ctx context.Context) ([]types.Bucket, error) {
	resp, err := o.api.ListBuckets(ctx, &s3.ListBucketsInput{})
	if err != nil {
		return nil, fmt.Errorf("list buckets: %w", err)
	}

	fmt.Fprintln(o.out, "S3 buckets in account:")
	if len(resp.Buckets) == 0 {
		fmt.Fprintln(o.out, "  no buckets found")
		return nil, nil
	}
	for _, b := range resp.Buckets {
		fmt.Fprintf(o.out, "  - %s (created: %s)\n",
			aws.ToString(b.Name), aws.ToTime(b.CreationDate).Format("2006-01-02 15:04:05"))
	}
	fmt.Fprintf(o.out, "total: %d bucket(s)\n", len(resp.Buckets))
	return resp.Buckets, nil
}

// ListObjects walks every page of the bucket listing and prints each
// object with a readable size.
func (o *S3Ops) ListObjects(ctx context.Context, bucketName, prefix string) ([]types.Object, error) {
	paginator := s3.NewListObjectsV2Paginator(o.api, &s3.ListObjectsV2Input{
		Bucket: aws.String(bucketName),
		Prefix: aws.String(prefix),
	})

	var objects []types.Object
	fmt.Fprintf(o.out, "Objects in s3://%s/%s:\n", bucketName, prefix)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("list objects in %q: %w", bucketName, err)
		}
		for _, obj := range page.Contents {
			objects = append(objects, obj)
			fmt.Fprintf(o.out, "  - %s (%s, modified: %s)\n",
				aws.ToString(obj.Key),
				processor.FormatSize(aws.ToInt64(obj.Size)),
				aws.ToTime(obj.LastModified).Format("2006-01-02 15:04:05"))
		}
	}

	if len(objects) == 0 {
		fmt.Fprintln(o.out, "  no objects found")
	} else {
		fmt.Fprintf(o.out, "total: %d object(s)\n", len(objects))
	}
	return objects, nil
}

// BucketInfo is the summarized state of one bucket.
type BucketInfo struct {
	Name       string            `json:"name"`
	Region     string            `json:"region"`
	Versioning string            `json:"versioning"`
	Tags       map[string]string `json:"tags"`
}

// GetBucketInfo collects location, versioning status and tags. A bucket
// without a tag set is not an error.
func (o *S3Ops) GetBucketInfo(ctx context.Context, bucketName string) (BucketInfo, error) {
	info := BucketInfo{Name: bucketName, Tags: map[string]string{}}

	loc, err := o.api.GetBucketLocation(ctx, &s3.GetBucketLocationInput{Bucket: aws.String(bucketName)})
	if err != nil {
		return info, fmt.Errorf("get location of %q: %w", bucketName, err)
	}
	// us-east-1 reports an empty LocationConstraint.
	info.Region = string(loc.LocationConstraint)
	if info.Region == "" {
		info.Region = "us-east-1"
	}

	ver, err := o.api.GetBucketVersioning(ctx, &s3.GetBucketVersioningInput{Bucket: aws.String(bucketName)})
	if err != nil {
		return info, fmt.Errorf("get versioning of %q: %w", bucketName, err)
	}
	info.Versioning = string(ver.Status)
	if info.Versioning == "" {
		info.Versioning = "Disabled"
	}

	if tags, err := o.api.GetBucketTagging(ctx, &s3.GetBucketTaggingInput{Bucket: aws.String(bucketName)}); err == nil {
		for _, t := range tags.TagSet {
			info.Tags[aws.ToString(t.Key)] = aws.ToString(t.Value)
		}
	}

	fmt.Fprintf(o.out, "Bucket information: %s\n", bucketName)
	fmt.Fprintf(o.out, "  region: %s\n", info.Region)
	fmt.Fprintf(o.out, "  versioning: %s\n", info.Versioning)
	fmt.Fprintf(o.out, "  tags: %v\n", info.Tags)
	return info, nil
}

// DeleteObject removes a single object.
func (o *S3Ops) DeleteObject(ctx context.Context, bucketName, objectKey string) error {
	if _, err := o.api.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(bucketName),
		Key:    aws.String(objectKey),
	}); err != nil {
		return fmt.Errorf("delete s3://%s/%s: %w", bucketName, objectKey, err)
	}
	fmt.Fprintf(o.out, "Deleted s3://%s/%s\n", bucketName, objectKey)
	return nil
}
