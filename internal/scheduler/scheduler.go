// Package scheduler fires jobs on RFC 5545 recurrence rules.
package scheduler

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/teambition/rrule-go"
)

// Func runs one occurrence. at is the scheduled time in the job's zone.
type Func func(ctx context.Context, at time.Time) error

type Job struct {
	Name string
	rule *rrule.RRule
	run  Func
}

// NewJob parses rule (e.g. "FREQ=DAILY;BYHOUR=2;BYMINUTE=0;BYSECOND=0").
// Occurrences are counted from midnight of start's day in loc.
func NewJob(name, rule string, loc *time.Location, start time.Time, run Func) (Job, error) {
	opt, err := rrule.StrToROption(rule)
	if err != nil {
		return Job{}, fmt.Errorf("job %s: %w", name, err)
	}
	s := start.In(loc)
	opt.Dtstart = time.Date(s.Year(), s.Month(), s.Day(), 0, 0, 0, 0, loc)
	r, err := rrule.NewRRule(*opt)
	if err != nil {
		return Job{}, fmt.Errorf("job %s: %w", name, err)
	}
	return Job{Name: name, rule: r, run: run}, nil
}

// Next is the first occurrence strictly after t, zero when the rule is
// exhausted.
func (j Job) Next(t time.Time) time.Time { return j.rule.After(t, false) }

type Scheduler struct {
	jobs  []Job
	now   func() time.Time
	after func(time.Duration) <-chan time.Time
}

func New(jobs ...Job) *Scheduler {
	return &Scheduler{jobs: jobs, now: time.Now, after: time.After}
}

// Run blocks until ctx is done. Each job has its own loop, so a slow
// accrual never delays a reminder. A failed occurrence is logged and the
// job waits for the next one.
func (s *Scheduler) Run(ctx context.Context) {
	var wg sync.WaitGroup
	for _, j := range s.jobs {
		wg.Add(1)
		go func(j Job) {
			defer wg.Done()
			s.loop(ctx, j)
		}(j)
	}
	wg.Wait()
}

func (s *Scheduler) loop(ctx context.Context, j Job) {
	last := s.now()
	for {
		next := j.Next(last)
		if next.IsZero() {
			log.Printf("scheduler: %s has no further occurrences", j.Name)
			return
		}
		log.Printf("scheduler: %s next at %s", j.Name, next.Format(time.RFC3339))
		select {
		case <-ctx.Done():
			return
		case <-s.after(next.Sub(s.now())):
		}
		if ctx.Err() != nil {
			return
		}
		s.fire(ctx, j, next)
		last = next
	}
}

func (s *Scheduler) fire(ctx context.Context, j Job, at time.Time) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("scheduler: %s panicked: %v", j.Name, r)
		}
	}()
	start := time.Now()
	if err := j.run(ctx, at); err != nil {
		log.Printf("scheduler: %s at %s failed: %v", j.Name, at.Format(time.RFC3339), err)
		return
	}
	log.Printf("scheduler: %s at %s done in %s", j.Name, at.Format(time.RFC3339), time.Since(start).Round(time.Millisecond))
}

// RunNow fires every job once for at, in order, and returns the first error.
func (s *Scheduler) RunNow(ctx context.Context, at time.Time) error {
	for _, j := range s.jobs {
		if err := j.run(ctx, at); err != nil {
			return fmt.Errorf("%s: %w", j.Name, err)
		}
	}
	return nil
}
