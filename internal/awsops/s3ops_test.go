package awsops

import (
	"bytes"
	"context"
	"io"
	"testing"
	"time"

	"jobportal-ops/internal/config"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/klauspost/compress/gzip"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeS3 struct {
	createBucketErr error
	taggingErr      error

	createInputs     []*s3.CreateBucketInput
	versioningInputs []*s3.PutBucketVersioningInput
	taggingInputs    []*s3.PutBucketTaggingInput
	putInputs        []*s3.PutObjectInput
	deleteInputs     []*s3.DeleteObjectInput

	listBucketsOut   *s3.ListBucketsOutput
	listObjectsPages []*s3.ListObjectsV2Output
	listObjectsCalls int
	locationOut      *s3.GetBucketLocationOutput
	versioningOut    *s3.GetBucketVersioningOutput
	taggingOut       *s3.GetBucketTaggingOutput
}

func (f *fakeS3) CreateBucket(_ context.Context, params *s3.CreateBucketInput, _ ...func(*s3.Options)) (*s3.CreateBucketOutput, error) {
	f.createInputs = append(f.createInputs, params)
	if f.createBucketErr != nil {
		return nil, f.createBucketErr
	}
	return &s3.CreateBucketOutput{}, nil
}

func (f *fakeS3) PutBucketVersioning(_ context.Context, params *s3.PutBucketVersioningInput, _ ...func(*s3.Options)) (*s3.PutBucketVersioningOutput, error) {
	f.versioningInputs = append(f.versioningInputs, params)
	return &s3.PutBucketVersioningOutput{}, nil
}

func (f *fakeS3) PutBucketTagging(_ context.Context, params *s3.PutBucketTaggingInput, _ ...func(*s3.Options)) (*s3.PutBucketTaggingOutput, error) {
	f.taggingInputs = append(f.taggingInputs, params)
	return &s3.PutBucketTaggingOutput{}, nil
}

func (f *fakeS3) PutObject(_ context.Context, params *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.putInputs = append(f.putInputs, params)
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) ListBuckets(_ context.Context, _ *s3.ListBucketsInput, _ ...func(*s3.Options)) (*s3.ListBucketsOutput, error) {
	return f.listBucketsOut, nil
}

func (f *fakeS3) ListObjectsV2(_ context.Context, _ *s3.ListObjectsV2Input, _ ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	out := f.listObjectsPages[f.listObjectsCalls]
	f.listObjectsCalls++
	return out, nil
}

func (f *fakeS3) GetBucketLocation(_ context.Context, _ *s3.GetBucketLocationInput, _ ...func(*s3.Options)) (*s3.GetBucketLocationOutput, error) {
	return f.locationOut, nil
}

func (f *fakeS3) GetBucketVersioning(_ context.Context, _ *s3.GetBucketVersioningInput, _ ...func(*s3.Options)) (*s3.GetBucketVersioningOutput, error) {
	return f.versioningOut, nil
}

func (f *fakeS3) GetBucketTagging(_ context.Context, _ *s3.GetBucketTaggingInput, _ ...func(*s3.Options)) (*s3.GetBucketTaggingOutput, error) {
	if f.taggingErr != nil {
		return nil, f.taggingErr
	}
	return f.taggingOut, nil
}

func (f *fakeS3) DeleteObject(_ context.Context, params *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	f.deleteInputs = append(f.deleteInputs, params)
	return &s3.DeleteObjectOutput{}, nil
}

func newTestS3Ops(t *testing.T, fake *fakeS3, region string) (*S3Ops, *bytes.Buffer) {
	t.Helper()

	cfg := config.Config{ProjectName: "job-portal", Environment: "dev", AWSRegion: region}
	ops := NewS3Ops(fake, cfg, zerolog.Nop())
	var out bytes.Buffer
	ops.SetOutput(&out)
	return ops, &out
}

func TestCreateBucket(t *testing.T) {
	fake := &fakeS3{}
	ops, out := newTestS3Ops(t, fake, "eu-west-1")

	require.NoError(t, ops.CreateBucket(context.Background(), "job-portal-dev-files-abc"))

	require.Len(t, fake.createInputs, 1)
	require.NotNil(t, fake.createInputs[0].CreateBucketConfiguration)
	assert.EqualValues(t, "eu-west-1", fake.createInputs[0].CreateBucketConfiguration.LocationConstraint)

	require.Len(t, fake.versioningInputs, 1)
	assert.Equal(t, types.BucketVersioningStatusEnabled, fake.versioningInputs[0].VersioningConfiguration.Status)

	require.Len(t, fake.taggingInputs, 1)
	tags := map[string]string{}
	for _, tag := range fake.taggingInputs[0].Tagging.TagSet {
		tags[aws.ToString(tag.Key)] = aws.ToString(tag.Value)
	}
	assert.Equal(t, "job-portal", tags["Project"])
	assert.Equal(t, "dev", tags["Environment"])
	assert.Equal(t, "jobportal-ops", tags["ManagedBy"])

	assert.Contains(t, out.String(), "created successfully")
}

func TestCreateBucketUsEast1OmitsLocation(t *testing.T) {
	fake := &fakeS3{}
	ops, _ := newTestS3Ops(t, fake, "us-east-1")

	require.NoError(t, ops.CreateBucket(context.Background(), "b"))
	require.Len(t, fake.createInputs, 1)
	assert.Nil(t, fake.createInputs[0].CreateBucketConfiguration)
}

func TestCreateBucketAlreadyOwned(t *testing.T) {
	fake := &fakeS3{
		createBucketErr: &smithy.GenericAPIError{Code: "BucketAlreadyOwnedByYou"},
	}
	ops, out := newTestS3Ops(t, fake, "us-east-1")

	require.NoError(t, ops.CreateBucket(context.Background(), "b"))
	assert.Empty(t, fake.versioningInputs)
	assert.Contains(t, out.String(), "already exists")
}

func TestCreateBucketNameTaken(t *testing.T) {
	fake := &fakeS3{
		createBucketErr: &smithy.GenericAPIError{Code: "BucketAlreadyExists"},
	}
	ops, _ := newTestS3Ops(t, fake, "us-east-1")

	err := ops.CreateBucket(context.Background(), "b")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already taken")
}

func TestUploadString(t *testing.T) {
	fake := &fakeS3{}
	ops, _ := newTestS3Ops(t, fake, "us-east-1")

	require.NoError(t, ops.UploadString(context.Background(), "b", "hello", "notes/hello.txt"))

	require.Len(t, fake.putInputs, 1)
	in := fake.putInputs[0]
	assert.Equal(t, "notes/hello.txt", aws.ToString(in.Key))
	assert.Equal(t, "text/plain", aws.ToString(in.ContentType))
	assert.Equal(t, "jobportal-ops", in.Metadata["uploaded-by"])
	assert.Equal(t, "job-portal", in.Metadata["project"])
	assert.NotEmpty(t, in.Metadata["upload-time"])

	body, err := io.ReadAll(in.Body)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(body))
}

func TestUploadStringGzip(t *testing.T) {
	fake := &fakeS3{}
	ops, out := newTestS3Ops(t, fake, "us-east-1")

	content := "some log content that compresses"
	require.NoError(t, ops.UploadStringGzip(context.Background(), "b", content, "logs/app.log.gz"))

	require.Len(t, fake.putInputs, 1)
	in := fake.putInputs[0]
	assert.Equal(t, "gzip", aws.ToString(in.ContentEncoding))

	gz, err := gzip.NewReader(in.Body)
	require.NoError(t, err)
	decompressed, err := io.ReadAll(gz)
	require.NoError(t, err)
	assert.Equal(t, content, string(decompressed))

	assert.Contains(t, out.String(), "Compressed content uploaded")
}

func TestListBuckets(t *testing.T) {
	fake := &fakeS3{
		listBucketsOut: &s3.ListBucketsOutput{
			Buckets: []types.Bucket{
				{Name: aws.String("job-portal-dev-files-abc"), CreationDate: aws.Time(time.Now())},
				{Name: aws.String("job-portal-prod-files"), CreationDate: aws.Time(time.Now())},
			},
		},
	}
	ops, out := newTestS3Ops(t, fake, "us-east-1")

	buckets, err := ops.ListBuckets(context.Background())
	require.NoError(t, err)
	assert.Len(t, buckets, 2)
	assert.Contains(t, out.String(), "job-portal-dev-files-abc")
	assert.Contains(t, out.String(), "total: 2 bucket(s)")
}

func TestListObjectsPaginates(t *testing.T) {
	now := time.Now()
	fake := &fakeS3{
		listObjectsPages: []*s3.ListObjectsV2Output{
			{
				Contents: []types.Object{
					{Key: aws.String("resumes/a.pdf"), Size: aws.Int64(1024567), LastModified: aws.Time(now)},
					{Key: aws.String("logos/b.png"), Size: aws.Int64(2048), LastModified: aws.Time(now)},
				},
				IsTruncated:           aws.Bool(true),
				NextContinuationToken: aws.String("page-2"),
			},
			{
				Contents: []types.Object{
					{Key: aws.String("exports/c.csv"), Size: aws.Int64(64), LastModified: aws.Time(now)},
				},
				IsTruncated: aws.Bool(false),
			},
		},
	}
	ops, out := newTestS3Ops(t, fake, "us-east-1")

	objects, err := ops.ListObjects(context.Background(), "b", "")
	require.NoError(t, err)
	assert.Len(t, objects, 3)
	assert.Equal(t, 2, fake.listObjectsCalls)
	assert.Contains(t, out.String(), "1000.55 KB")
	assert.Contains(t, out.String(), "total: 3 object(s)")
}

func TestGetBucketInfo(t *testing.T) {
	fake := &fakeS3{
		locationOut:   &s3.GetBucketLocationOutput{},
		versioningOut: &s3.GetBucketVersioningOutput{Status: types.BucketVersioningStatusEnabled},
		taggingOut: &s3.GetBucketTaggingOutput{
			TagSet: []types.Tag{{Key: aws.String("Project"), Value: aws.String("job-portal")}},
		},
	}
	ops, _ := newTestS3Ops(t, fake, "us-east-1")

	info, err := ops.GetBucketInfo(context.Background(), "b")
	require.NoError(t, err)
	// Empty LocationConstraint means us-east-1.
	assert.Equal(t, "us-east-1", info.Region)
	assert.Equal(t, "Enabled", info.Versioning)
	assert.Equal(t, "job-portal", info.Tags["Project"])
}

func TestGetBucketInfoWithoutTags(t *testing.T) {
	fake := &fakeS3{
		locationOut:   &s3.GetBucketLocationOutput{LocationConstraint: types.BucketLocationConstraint("eu-west-1")},
		versioningOut: &s3.GetBucketVersioningOutput{},
		taggingErr:    &smithy.GenericAPIError{Code: "NoSuchTagSet"},
	}
	ops, _ := newTestS3Ops(t, fake, "eu-west-1")

	info, err := ops.GetBucketInfo(context.Background(), "b")
	require.NoError(t, err)
	assert.Equal(t, "eu-west-1", info.Region)
	assert.Equal(t, "Disabled", info.Versioning)
	assert.Empty(t, info.Tags)
}

func TestDeleteObject(t *testing.T) {
	fake := &fakeS3{}
	ops, out := newTestS3Ops(t, fake, "us-east-1")

	require.NoError(t, ops.DeleteObject(context.Background(), "b", "old/key.txt"))
	require.Len(t, fake.deleteInputs, 1)
	assert.Equal(t, "old/key.txt", aws.ToString(fake.deleteInputs[0].Key))
	assert.Contains(t, out.String(), "Deleted s3://b/old/key.txt")
}
