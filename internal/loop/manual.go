package loop

import (
	"sort"
	"time"
)

// Manual is a deterministic Scheduler driven by the caller. Posted
// callbacks run on Flush; timers fire on Advance in deadline order.
type Manual struct {
	now    time.Duration
	seq    int
	queue  []func()
	timers []*manualTimer
}

type manualTimer struct {
	m       *Manual
	at      time.Duration
	seq     int
	fn      func()
	stopped bool
}

// NewManual returns a scheduler with its clock at zero.
func NewManual() *Manual {
	return &Manual{}
}

func (m *Manual) Post(fn func()) {
	m.queue = append(m.queue, fn)
}

func (m *Manual) AfterFunc(d time.Duration, fn func()) Timer {
	m.seq++
	t := &manualTimer{m: m, at: m.now + d, seq: m.seq, fn: fn}
	m.timers = append(m.timers, t)
	return t
}

func (t *manualTimer) Stop() bool {
	if t.stopped {
		return false
	}
	t.stopped = true
	return true
}

// Flush runs posted callbacks, including ones they post, until none remain.
func (m *Manual) Flush() {
	for len(m.queue) > 0 {
		fn := m.queue[0]
		m.queue = m.queue[1:]
		fn()
	}
}

// Advance moves the clock forward by d, firing every timer that falls due.
func (m *Manual) Advance(d time.Duration) {
	m.Flush()
	target := m.now + d

	for {
		next := m.nextDue(target)
		if next == nil {
			break
		}
		m.now = next.at
		next.stopped = true
		next.fn()
		m.Flush()
	}
	m.now = target
}

func (m *Manual) nextDue(target time.Duration) *manualTimer {
	live := m.timers[:0]
	for _, t := range m.timers {
		if !t.stopped {
			live = append(live, t)
		}
	}
	m.timers = live

	sort.Slice(m.timers, func(i, j int) bool {
		if m.timers[i].at != m.timers[j].at {
			return m.timers[i].at < m.timers[j].at
		}
		return m.timers[i].seq < m.timers[j].seq
	})
	if len(m.timers) == 0 || m.timers[0].at > target {
		return nil
	}
	return m.timers[0]
}

// Now returns the elapsed manual time.
func (m *Manual) Now() time.Duration {
	return m.now
}

// Pending returns the number of timers that have not fired or stopped.
func (m *Manual) Pending() int {
	n := 0
	for _, t := range m.timers {
		if !t.stopped {
			n++
		}
	}
	return n
}
