// internal/model/event.go
package model

import (
	"fmt"
	"time"

	json "github.com/goccy/go-json"
)

// UploadEvent is the notification envelope delivered on invocation.
// Each record element is kept raw so one undecodable record cannot
// poison the rest of the batch; records are decoded individually by
// ParseUploadRecord.
type UploadEvent struct {
	Records []json.RawMessage `json:"Records"`
}

// eventRecord mirrors the nested S3 notification record shape:
//
//	{eventTime, eventName,
//	 s3: {bucket: {name}, object: {key, size}},
//	 requestParameters: {sourceIPAddress},
//	 userIdentity: {principalId}}
//
// Every field may be absent; absence is filled with defaults, never an
// error.
type eventRecord struct {
	EventTime         string            `json:"eventTime"`
	EventName         string            `json:"eventName"`
	S3                s3Entity          `json:"s3"`
	RequestParameters requestParameters `json:"requestParameters"`
	UserIdentity      userIdentity      `json:"userIdentity"`
}

type s3Entity struct {
	Bucket bucket   `json:"bucket"`
	Object s3Object `json:"object"`
}

type bucket struct {
	Name string `json:"name"`
}

type s3Object struct {
	Key  string `json:"key"`
	Size int64  `json:"size"`
}

type requestParameters struct {
	SourceIPAddress string `json:"sourceIPAddress"`
}

type userIdentity struct {
	PrincipalID string `json:"principalId"`
}

// Unknown is the fill-in value for absent string fields.
const Unknown = "Unknown"

// UploadRecord is one upload notification with all defaults applied.
// Immutable once parsed.
type UploadRecord struct {
	Bucket      string
	ObjectKey   string
	SizeBytes   int64
	EventTime   string
	EventName   string
	SourceIP    string
	PrincipalID string
}

// ParseUploadRecord decodes a single raw record and fills defaults:
//
//	bucket, objectKey, eventName, sourceIp, principalId -> "Unknown"
//	sizeBytes -> 0
//	eventTime -> now (RFC 3339)
//
// It fails only when the record cannot be decoded at all or reports a
// negative object size; missing fields are not errors.
func ParseUploadRecord(raw []byte, now time.Time) (UploadRecord, error) {
	var er eventRecord
	if err := json.Unmarshal(raw, &er); err != nil {
		return UploadRecord{}, fmt.Errorf("decode record: %w", err)
	}
	if er.S3.Object.Size < 0 {
		return UploadRecord{}, fmt.Errorf("negative object size %d", er.S3.Object.Size)
	}

	rec := UploadRecord{
		Bucket:      er.S3.Bucket.Name,
		ObjectKey:   er.S3.Object.Key,
		SizeBytes:   er.S3.Object.Size,
		EventTime:   er.EventTime,
		EventName:   er.EventName,
		SourceIP:    er.RequestParameters.SourceIPAddress,
		PrincipalID: er.UserIdentity.PrincipalID,
	}

	if rec.Bucket == "" {
		rec.Bucket = Unknown
	}
	if rec.ObjectKey == "" {
		rec.ObjectKey = Unknown
	}
	if rec.EventTime == "" {
		rec.EventTime = now.Format(time.RFC3339)
	}
	if rec.EventName == "" {
		rec.EventName = Unknown
	}
	if rec.SourceIP == "" {
		rec.SourceIP = Unknown
	}
	if rec.PrincipalID == "" {
		rec.PrincipalID = Unknown
	}

	return rec, nil
}

// ProcessedEntry is the per-record output of a successful processing
// pass. Derived, not persisted.
type ProcessedEntry struct {
	Bucket   string `json:"bucket"`
	Key      string `json:"key"`
	Category string `json:"category"`
}

// BatchResult aggregates one invocation's processed entries.
type BatchResult struct {
	Message          string           `json:"message"`
	RecordsProcessed int              `json:"records_processed"`
	Details          []ProcessedEntry `json:"details"`
}

// Response is the invocation response envelope. Body carries the
// JSON-encoded BatchResult, matching the notification system's
// string-body convention.
type Response struct {
	StatusCode int    `json:"statusCode"`
	Body       string `json:"body"`
}
