package metrics

import (
	"fmt"
	"strings"
	"sync/atomic"
)

// Metrics is the set of counters tracked across invocations of the
// upload-event processor. All fields are updated with sync/atomic so
// independent batches may be processed concurrently (the processor
// itself holds no shared state; these counters are the only thing
// invocations have in common).
type Metrics struct {
	// BatchesTotal counts handler invocations, including empty ones.
	BatchesTotal int64

	// RecordsProcessedTotal counts records that produced a processed
	// entry. One well-formed record increments this exactly once.
	RecordsProcessedTotal int64

	// RecordErrorsTotal counts records that were skipped because their
	// fields could not be extracted or formatted. Skipped records never
	// fail the batch, so this counter is the only aggregate signal that
	// malformed records are arriving.
	RecordErrorsTotal int64
}

func New() *Metrics {
	return &Metrics{}
}

// AddBatch records one invocation with its per-batch outcome counts.
func (m *Metrics) AddBatch(processed, errors int) {
	atomic.AddInt64(&m.BatchesTotal, 1)
	atomic.AddInt64(&m.RecordsProcessedTotal, int64(processed))
	atomic.AddInt64(&m.RecordErrorsTotal, int64(errors))
}

func (m *Metrics) String() string {
	var sb strings.Builder
	sb.Grow(128)

	fmt.Fprintf(&sb, "batches_total=%d\n", atomic.LoadInt64(&m.BatchesTotal))
	fmt.Fprintf(&sb, "records_processed_total=%d\n", atomic.LoadInt64(&m.RecordsProcessedTotal))
	fmt.Fprintf(&sb, "record_errors_total=%d\n", atomic.LoadInt64(&m.RecordErrorsTotal))

	return sb.String()
}
