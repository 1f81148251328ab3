// Package heartbeat implements the background observer described in §5
// and §9 ("Global counters and the heartbeat"): an append-only queue from
// engine to observer, replacing the source's process-global mutable
// state shared with a heartbeat thread. Queue usage (Append/Signal/Next)
// is grounded on github.com/caffix/queue as driven by
// owasp-amass-amass/enum/active.go's activeTask.
package heartbeat

import (
	"time"

	"github.com/caffix/queue"
	"go.uber.org/zap"
)

// Admission is a single (fqdn, ips) pair pushed by the engine as a name
// is admitted.
type Admission struct {
	FQDN string
	IPs  []string
}

// Observer drains Admissions from an append-only queue at fixed
// intervals and logs a running count, terminating when Stop is called —
// the explicit completion signal mandated in place of the source's
// shared mutable counter (§9).
type Observer struct {
	q        queue.Queue
	logger   *zap.Logger
	interval time.Duration
	done     chan struct{}
	stopped  chan struct{}
}

// NewObserver returns an Observer logging at the given interval via
// logger. Call Start to begin consuming, Push to report an admission,
// and Stop to signal completion.
func NewObserver(logger *zap.Logger, interval time.Duration) *Observer {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	return &Observer{
		q:        queue.NewQueue(),
		logger:   logger,
		interval: interval,
		done:     make(chan struct{}),
		stopped:  make(chan struct{}),
	}
}

// Push enqueues an admitted (fqdn, ips) pair. Safe to call concurrently.
func (o *Observer) Push(fqdn string, ips []string) {
	o.q.Append(Admission{FQDN: fqdn, IPs: ips})
}

// Start begins the background consumption loop. It returns immediately;
// the loop runs until Stop is called.
func (o *Observer) Start() {
	go o.run()
}

// Stop signals the observer to drain any remaining admissions and
// terminate, blocking until it has done so.
func (o *Observer) Stop() {
	close(o.done)
	<-o.stopped
}

func (o *Observer) run() {
	defer close(o.stopped)

	ticker := time.NewTicker(o.interval)
	defer ticker.Stop()

	total := 0
	for {
		select {
		case <-o.q.Signal():
			total += o.drain()
		case <-ticker.C:
			total += o.drain()
			if o.logger != nil {
				o.logger.Debug("heartbeat", zap.Int("admitted_so_far", total))
			}
		case <-o.done:
			total += o.drain()
			if o.logger != nil {
				o.logger.Info("heartbeat stopped", zap.Int("admitted_total", total))
			}
			return
		}
	}
}

func (o *Observer) drain() int {
	n := 0
	for {
		element, ok := o.q.Next()
		if !ok {
			return n
		}
		if _, ok := element.(Admission); ok {
			n++
		}
	}
}
