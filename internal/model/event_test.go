package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var parseNow = time.Date(2024, 12, 1, 12, 0, 0, 0, time.UTC)

func TestParseUploadRecordFull(t *testing.T) {
	raw := []byte(`{
		"eventTime": "2024-12-01T12:00:00.000Z",
		"eventName": "ObjectCreated:Put",
		"s3": {
			"bucket": {"name": "job-portal-dev-files"},
			"object": {"key": "resumes/john_doe_resume.pdf", "size": 1024567}
		},
		"requestParameters": {"sourceIPAddress": "192.168.1.100"},
		"userIdentity": {"principalId": "EXAMPLE123"}
	}`)

	rec, err := ParseUploadRecord(raw, parseNow)
	require.NoError(t, err)

	assert.Equal(t, "job-portal-dev-files", rec.Bucket)
	assert.Equal(t, "resumes/john_doe_resume.pdf", rec.ObjectKey)
	assert.EqualValues(t, 1024567, rec.SizeBytes)
	assert.Equal(t, "2024-12-01T12:00:00.000Z", rec.EventTime)
	assert.Equal(t, "ObjectCreated:Put", rec.EventName)
	assert.Equal(t, "192.168.1.100", rec.SourceIP)
	assert.Equal(t, "EXAMPLE123", rec.PrincipalID)
}

func TestParseUploadRecordDefaults(t *testing.T) {
	rec, err := ParseUploadRecord([]byte(`{}`), parseNow)
	require.NoError(t, err)

	assert.Equal(t, Unknown, rec.Bucket)
	assert.Equal(t, Unknown, rec.ObjectKey)
	assert.EqualValues(t, 0, rec.SizeBytes)
	assert.Equal(t, parseNow.Format(time.RFC3339), rec.EventTime)
	assert.Equal(t, Unknown, rec.EventName)
	assert.Equal(t, Unknown, rec.SourceIP)
	assert.Equal(t, Unknown, rec.PrincipalID)
}

func TestParseUploadRecordPartial(t *testing.T) {
	raw := []byte(`{"s3": {"object": {"key": "logos/logo.png"}}}`)

	rec, err := ParseUploadRecord(raw, parseNow)
	require.NoError(t, err)

	assert.Equal(t, Unknown, rec.Bucket)
	assert.Equal(t, "logos/logo.png", rec.ObjectKey)
	assert.EqualValues(t, 0, rec.SizeBytes)
}

func TestParseUploadRecordErrors(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"invalid json", `not json at all`},
		{"wrong size type", `{"s3":{"object":{"size":"big"}}}`},
		{"negative size", `{"s3":{"object":{"size":-1}}}`},
		{"array instead of object", `[1,2,3]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseUploadRecord([]byte(tt.raw), parseNow)
			assert.Error(t, err)
		})
	}
}
