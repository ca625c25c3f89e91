package radar

import (
	"context"
	"sync"
	"time"
)

// FrameFunc is invoked once per requested frame with the frame timestamp.
type FrameFunc func(now time.Time)

// FrameID identifies a requested frame. Zero is never issued.
type FrameID uint64

// Scheduler hands out animation frames. Callbacks run sequentially, never
// while the scheduler's own lock is held, so a callback may request or
// cancel frames.
type Scheduler interface {
	RequestFrame(fn FrameFunc) FrameID
	CancelFrame(id FrameID)
	Now() time.Time
}

// frameQueue keeps pending callbacks in request order.
type frameQueue struct {
	mu      sync.Mutex
	nextID  FrameID
	pending map[FrameID]FrameFunc
	order   []FrameID
}

func newFrameQueue() frameQueue {
	return frameQueue{pending: make(map[FrameID]FrameFunc)}
}

func (q *frameQueue) request(fn FrameFunc) FrameID {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.nextID++
	q.pending[q.nextID] = fn
	q.order = append(q.order, q.nextID)
	return q.nextID
}

func (q *frameQueue) cancel(id FrameID) {
	q.mu.Lock()
	delete(q.pending, id)
	q.mu.Unlock()
}

func (q *frameQueue) len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

// run executes the callbacks pending at call time. Frames requested by those
// callbacks wait for the next run; frames cancelled mid-run are skipped.
func (q *frameQueue) run(now time.Time) int {
	q.mu.Lock()
	batch := q.order
	q.order = nil
	q.mu.Unlock()

	ran := 0
	for _, id := range batch {
		q.mu.Lock()
		fn, ok := q.pending[id]
		delete(q.pending, id)
		q.mu.Unlock()
		if !ok {
			continue
		}
		fn(now)
		ran++
	}
	return ran
}

// ManualScheduler advances time only when told to. Tests and the CLI use it
// to step animations deterministically.
type ManualScheduler struct {
	queue frameQueue
	mu    sync.Mutex
	now   time.Time
}

// NewManualScheduler starts the clock at start.
func NewManualScheduler(start time.Time) *ManualScheduler {
	return &ManualScheduler{queue: newFrameQueue(), now: start}
}

func (s *ManualScheduler) RequestFrame(fn FrameFunc) FrameID { return s.queue.request(fn) }

func (s *ManualScheduler) CancelFrame(id FrameID) { s.queue.cancel(id) }

func (s *ManualScheduler) Now() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.now
}

// Pending returns the number of frames waiting to run.
func (s *ManualScheduler) Pending() int { return s.queue.len() }

// Advance moves the clock by d and runs one frame. It returns the number of
// callbacks executed.
func (s *ManualScheduler) Advance(d time.Duration) int {
	s.mu.Lock()
	s.now = s.now.Add(d)
	now := s.now
	s.mu.Unlock()
	return s.queue.run(now)
}

// Settle advances by step until no frames are pending or maxFrames frames
// have run. It returns the number of frames stepped.
func (s *ManualScheduler) Settle(step time.Duration, maxFrames int) int {
	frames := 0
	for frames < maxFrames && s.Pending() > 0 {
		s.Advance(step)
		frames++
	}
	return frames
}

// TickerScheduler runs pending frames on a single goroutine at a fixed
// interval, roughly a display refresh.
type TickerScheduler struct {
	queue    frameQueue
	interval time.Duration
	cancel   context.CancelFunc
	done     chan struct{}
	stopOnce sync.Once
}

// DefaultFrameInterval is about 60 frames per second.
const DefaultFrameInterval = 16 * time.Millisecond

// NewTickerScheduler starts the frame goroutine. It stops when ctx is done
// or Stop is called.
func NewTickerScheduler(ctx context.Context, interval time.Duration) *TickerScheduler {
	if interval <= 0 {
		interval = DefaultFrameInterval
	}
	ctx, cancel := context.WithCancel(ctx)
	s := &TickerScheduler{
		queue:    newFrameQueue(),
		interval: interval,
		cancel:   cancel,
		done:     make(chan struct{}),
	}
	go s.loop(ctx)
	return s
}

func (s *TickerScheduler) loop(ctx context.Context) {
	defer close(s.done)
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			s.queue.run(now)
		}
	}
}

func (s *TickerScheduler) RequestFrame(fn FrameFunc) FrameID { return s.queue.request(fn) }

func (s *TickerScheduler) CancelFrame(id FrameID) { s.queue.cancel(id) }

func (s *TickerScheduler) Now() time.Time { return time.Now() }

// Pending returns the number of frames waiting to run.
func (s *TickerScheduler) Pending() int { return s.queue.len() }

// Stop halts the frame goroutine and waits for it to exit. Pending frames
// are dropped.
func (s *TickerScheduler) Stop() {
	s.stopOnce.Do(func() {
		s.cancel()
		<-s.done
	})
}
