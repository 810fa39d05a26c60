// internal/processor/processor.go
package processor

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"jobportal-ops/internal/metrics"
	"jobportal-ops/internal/model"

	json "github.com/goccy/go-json"
	"github.com/rs/zerolog"
)

// ResponseMessage is the fixed message returned for every batch.
const ResponseMessage = "S3 upload event(s) logged successfully"

// UnknownExtension is used when an object key contains no dot.
const UnknownExtension = "unknown"

// CategoryOther is the fallback when no extension table matches.
const CategoryOther = "other"

// sizeUnits is the ordered unit ladder for FormatSize. The last entry
// is a hard cap: values are never divided past TB.
var sizeUnits = [...]string{"B", "KB", "MB", "GB", "TB"}

// categories maps a coarse file class to its extensions. Order matters:
// the first matching class wins, so it is a slice, not a map.
var categories = []struct {
	name    string
	members map[string]struct{}
}{
	{"resume", members("pdf", "doc", "docx", "txt", "rtf", "odt")},
	{"image", members("jpg", "jpeg", "png", "gif", "webp", "svg", "bmp", "ico")},
	{"data", members("csv", "xlsx", "xls", "json", "xml", "yaml", "yml")},
	{"archive", members("zip", "tar", "gz", "rar", "7z")},
	{"video", members("mp4", "avi", "mov", "mkv", "webm")},
	{"audio", members("mp3", "wav", "flac", "aac", "ogg")},
}

func members(exts ...string) map[string]struct{} {
	m := make(map[string]struct{}, len(exts))
	for _, e := range exts {
		m[e] = struct{}{}
	}
	return m
}

// FormatSize renders a byte count with binary (1024-based) unit steps,
// two decimal places, capped at TB.
//
//	FormatSize(0)       == "0 B"
//	FormatSize(1024)    == "1.00 KB"
//	FormatSize(1024567) == "1000.55 KB"
func FormatSize(sizeBytes int64) string {
	if sizeBytes == 0 {
		return "0 B"
	}

	v := float64(sizeBytes)
	i := 0
	for v >= 1024 && i < len(sizeUnits)-1 {
		v /= 1024
		i++
	}

	return fmt.Sprintf("%.2f %s", v, sizeUnits[i])
}

// ExtensionOf returns the lower-cased substring after the last dot of
// the object key, or UnknownExtension when the key has no dot.
func ExtensionOf(objectKey string) string {
	i := strings.LastIndexByte(objectKey, '.')
	if i < 0 {
		return UnknownExtension
	}
	return strings.ToLower(objectKey[i+1:])
}

// Categorize maps a file extension to its coarse class. Matching is
// case-insensitive; unknown extensions fall through to CategoryOther.
func Categorize(extension string) string {
	ext := strings.ToLower(extension)
	for _, c := range categories {
		if _, ok := c.members[ext]; ok {
			return c.name
		}
	}
	return CategoryOther
}

// RecordProcessingError is the only error kind the processor produces.
// It wraps the cause and keeps the raw record for the error log line.
// It is always caught by Process and never reaches the caller.
type RecordProcessingError struct {
	Raw []byte
	Err error
}

func (e *RecordProcessingError) Error() string {
	return fmt.Sprintf("process record: %v", e.Err)
}

func (e *RecordProcessingError) Unwrap() error {
	return e.Err
}

// Processor turns a batch of raw upload records into a BatchResult.
// It is a stateless transform: project/environment names and the log
// destination are injected here instead of being read ambiently, and
// nothing is carried between Process calls except the shared counters.
type Processor struct {
	project string
	env     string
	log     zerolog.Logger
	metrics *metrics.Metrics
	now     func() time.Time
}

func New(project, env string, log zerolog.Logger, m *metrics.Metrics) *Processor {
	return &Processor{
		project: project,
		env:     env,
		log:     log,
		metrics: m,
		now:     time.Now,
	}
}

// Process handles one batch sequentially in input order. A record that
// fails to parse is logged together with its raw payload and skipped;
// the batch always reports success. Empty input yields an empty
// details list and a zero count, not an error.
func (p *Processor) Process(records []json.RawMessage) model.BatchResult {
	details := make([]model.ProcessedEntry, 0, len(records))
	errs := 0

	for _, raw := range records {
		entry, err := p.processRecord(raw)
		if err != nil {
			errs++
			var rpe *RecordProcessingError
			ev := p.log.Error().Err(err)
			if errors.As(err, &rpe) {
				ev = ev.RawJSON("record", compactOrRaw(rpe.Raw))
			}
			ev.Msg("error processing record")
			continue
		}
		details = append(details, entry)
	}

	p.metrics.AddBatch(len(details), errs)

	return model.BatchResult{
		Message:          ResponseMessage,
		RecordsProcessed: len(details),
		Details:          details,
	}
}

// processRecord extracts one record's fields, derives the readable
// size and file category, and emits the structured log entry.
func (p *Processor) processRecord(raw json.RawMessage) (model.ProcessedEntry, error) {
	rec, err := model.ParseUploadRecord(raw, p.now())
	if err != nil {
		return model.ProcessedEntry{}, &RecordProcessingError{Raw: raw, Err: err}
	}

	extension := ExtensionOf(rec.ObjectKey)
	category := Categorize(extension)
	readable := FormatSize(rec.SizeBytes)

	p.log.Info().
		Str("project", p.project).
		Str("environment", p.env).
		Str("timestamp", rec.EventTime).
		Str("event_type", rec.EventName).
		Str("bucket", rec.Bucket).
		Str("object_key", rec.ObjectKey).
		Int64("object_size_bytes", rec.SizeBytes).
		Str("object_size_readable", readable).
		Str("source_ip", rec.SourceIP).
		Str("user_identity", rec.PrincipalID).
		Str("file_extension", extension).
		Str("file_category", category).
		Msg("s3 upload event")

	return model.ProcessedEntry{
		Bucket:   rec.Bucket,
		Key:      rec.ObjectKey,
		Category: category,
	}, nil
}

// compactOrRaw returns a compacted copy of the raw record when it is
// valid JSON, otherwise a JSON string of the raw bytes so the error
// log line stays parseable.
func compactOrRaw(raw []byte) []byte {
	var v any
	if err := json.Unmarshal(raw, &v); err == nil {
		if b, err := json.Marshal(v); err == nil {
			return b
		}
	}
	quoted, err := json.Marshal(string(raw))
	if err != nil {
		return []byte(`"unrepresentable record"`)
	}
	return quoted
}
