package client

import (
	"sort"
	"time"
)

type task struct {
	at  time.Duration
	seq uint64
	fn  func(now time.Duration)
}

// Scheduler runs deferred work on the game tick instead of on timers, so a
// retry always lands between two frames in a predictable order.
type Scheduler struct {
	now       time.Duration
	tasks     []task
	seq       uint64
	scheduled int
}

func NewScheduler() *Scheduler {
	return &Scheduler{}
}

// After schedules fn to run on the first Advance at or past now+delay.
func (s *Scheduler) After(delay time.Duration, fn func(now time.Duration)) {
	s.seq++
	s.scheduled++
	s.tasks = append(s.tasks, task{
		at:  s.now + delay,
		seq: s.seq,
		fn:  fn,
	})
}

// Advance moves the clock to now and runs every due task in due order.
// Tasks scheduled while running are picked up if they are already due.
func (s *Scheduler) Advance(now time.Duration) {
	if now > s.now {
		s.now = now
	}
	for {
		due := s.popDue()
		if len(due) == 0 {
			return
		}
		for _, t := range due {
			t.fn(s.now)
		}
	}
}

func (s *Scheduler) popDue() []task {
	var due, rest []task
	for _, t := range s.tasks {
		if t.at <= s.now {
			due = append(due, t)
		} else {
			rest = append(rest, t)
		}
	}
	s.tasks = rest
	sort.Slice(due, func(i, j int) bool {
		if due[i].at != due[j].at {
			return due[i].at < due[j].at
		}
		return due[i].seq < due[j].seq
	})
	return due
}

func (s *Scheduler) Now() time.Duration {
	return s.now
}

// Pending is the number of tasks waiting to run.
func (s *Scheduler) Pending() int {
	return len(s.tasks)
}

// Scheduled is the number of tasks ever scheduled.
func (s *Scheduler) Scheduled() int {
	return s.scheduled
}
