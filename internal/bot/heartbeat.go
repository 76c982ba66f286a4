package bot

import (
	"context"
	"os"
	"time"

	"github.com/shirou/gopsutil/v3/process"
	"go.uber.org/zap"
)

// Heartbeat emits a periodic liveness line while its session stays open.
// TODO: forward the beats to the forum board once that integration lands;
// until then the log line is all there is.
type Heartbeat struct {
	Interval time.Duration
	Log      *zap.Logger
	Alive    func() bool // session-open check, consulted before each beat

	started time.Time
	proc    *process.Process
}

// Run loops until ctx is cancelled or Alive reports the session closed.
// Cancellation is cooperative and observed at the sleep boundary: a beat
// already in progress finishes, and no further beats follow.
func (h *Heartbeat) Run(ctx context.Context) {
	h.started = time.Now()
	h.proc, _ = process.NewProcess(int32(os.Getpid())) // stats are optional

	timer := time.NewTimer(h.Interval)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
		}
		if !h.Alive() {
			return
		}
		h.Log.Info("/thump/", h.stats()...)
		timer.Reset(h.Interval)
	}
}

// stats reports process uptime and resident memory on the beat line.
// Lookup failures degrade to uptime only.
func (h *Heartbeat) stats() []zap.Field {
	fields := []zap.Field{
		zap.Duration("uptime", time.Since(h.started).Round(time.Second)),
	}
	if h.proc != nil {
		if mem, err := h.proc.MemoryInfo(); err == nil {
			fields = append(fields, zap.Uint64("rss", mem.RSS))
		}
	}
	return fields
}
