package order

import (
	"context"
	"time"

	"github.com/opmusic/KVStore/internal/concurrent"
	"github.com/opmusic/KVStore/internal/logging"
)

// starvationFactor bounds how many pollIntervals the delivery loop may
// go between passes before the watchdog logs a warning. The loop itself
// never stalls on purpose; a breach means the goroutine was starved by
// the runtime (GC pause, scheduler contention), which is an operator
// concern, not an ordering one.
const starvationFactor = 20

// deliveryLoop is the single background thread-of-execution each
// scheduler owns, generalised out of the teacher's poll-based queue
// loop: producers call signal() after every enqueue or ack update,
// and a bounded ticker guarantees the loop also wakes on its own even
// if a signal is ever missed, so suspension never outlives a missed
// wakeup. A concurrent.Detector watches its own cadence and logs if a
// pass is overdue, independent of whether any record is deliverable.
type deliveryLoop struct {
	ctx    context.Context
	cancel context.CancelFunc
	wake   chan struct{}

	watchdog *concurrent.Detector
	log      logging.Logger
}

func newDeliveryLoopWithLogger(log logging.Logger) *deliveryLoop {
	ctx, cancel := context.WithCancel(context.Background())
	return &deliveryLoop{
		ctx:      ctx,
		cancel:   cancel,
		wake:     make(chan struct{}, 1),
		watchdog: concurrent.NewDetector(pollInterval * starvationFactor),
		log:      log,
	}
}

// signal wakes the delivery loop. Non-blocking: a pending, unconsumed
// signal is enough, so extra signals coalesce.
func (d *deliveryLoop) signal() {
	select {
	case d.wake <- struct{}{}:
	default:
	}
}

// start runs step on its own goroutine until stop is called, waking on
// every signal and at least every tick.
func (d *deliveryLoop) start(tick time.Duration, step func()) {
	go func() {
		for {
			select {
			case <-d.ctx.Done():
				return
			case <-d.wake:
				d.checkCadence()
				step()
			case <-time.After(tick):
				d.checkCadence()
				step()
			}
		}
	}()
}

// checkCadence records this pass with the watchdog and logs if the gap
// since the previous pass exceeded starvationFactor pollIntervals.
func (d *deliveryLoop) checkCadence() {
	ok, exceed := d.watchdog.Happened(0)
	if !ok && d.log != nil {
		d.log.Warnf("delivery loop starved: %s behind schedule", exceed)
	}
}

func (d *deliveryLoop) stop() {
	d.cancel()
	d.watchdog.Reset()
}
