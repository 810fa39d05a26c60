package metrics

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAddBatch(t *testing.T) {
	m := New()

	m.AddBatch(3, 0)
	m.AddBatch(0, 2)

	s := m.String()
	assert.Contains(t, s, "batches_total=2")
	assert.Contains(t, s, "records_processed_total=3")
	assert.Contains(t, s, "record_errors_total=2")
}

func TestAddBatchConcurrent(t *testing.T) {
	m := New()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m.AddBatch(1, 1)
		}()
	}
	wg.Wait()

	s := m.String()
	assert.Contains(t, s, "batches_total=50")
	assert.Contains(t, s, "records_processed_total=50")
	assert.Contains(t, s, "record_errors_total=50")
}
