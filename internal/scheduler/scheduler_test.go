package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var start = time.Date(2024, time.January, 15, 10, 30, 0, 0, time.UTC)

func TestNewJob_Next(t *testing.T) {
	noop := func(context.Context, time.Time) error { return nil }

	cases := []struct {
		name string
		rule string
		from time.Time
		want time.Time
	}{
		{"daily later today", "FREQ=DAILY;BYHOUR=2;BYMINUTE=0;BYSECOND=0", start, time.Date(2024, 1, 16, 2, 0, 0, 0, time.UTC)},
		{"daily before the hour", "FREQ=DAILY;BYHOUR=12;BYMINUTE=0;BYSECOND=0", start, time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC)},
		{"weekly monday", "FREQ=WEEKLY;BYDAY=MO;BYHOUR=9;BYMINUTE=0;BYSECOND=0", start, time.Date(2024, 1, 22, 9, 0, 0, 0, time.UTC)},
		{"strictly after", "FREQ=DAILY;BYHOUR=2;BYMINUTE=0;BYSECOND=0", time.Date(2024, 1, 16, 2, 0, 0, 0, time.UTC), time.Date(2024, 1, 17, 2, 0, 0, 0, time.UTC)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			j, err := NewJob("j", tc.rule, time.UTC, start, noop)
			require.NoError(t, err)
			assert.Equal(t, tc.want, j.Next(tc.from))
		})
	}
}

func TestNewJob_Zone(t *testing.T) {
	loc := time.FixedZone("WIB", 7*3600)
	j, err := NewJob("j", "FREQ=DAILY;BYHOUR=2;BYMINUTE=0;BYSECOND=0", loc, start, func(context.Context, time.Time) error { return nil })
	require.NoError(t, err)
	// 10:30 UTC is 17:30 WIB, so the next 02:00 WIB is 19:00 UTC.
	assert.True(t, j.Next(start).Equal(time.Date(2024, 1, 15, 19, 0, 0, 0, time.UTC)))
}

func TestNewJob_BadRule(t *testing.T) {
	_, err := NewJob("broken", "FREQ=SOMETIMES", time.UTC, start, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken")
}

func TestNewJob_Exhausted(t *testing.T) {
	j, err := NewJob("once", "FREQ=DAILY;COUNT=1;BYHOUR=1;BYMINUTE=0;BYSECOND=0", time.UTC, start, nil)
	require.NoError(t, err)
	assert.True(t, j.Next(start.AddDate(0, 0, 2)).IsZero())
}

func TestRun_FiresOccurrencesInOrder(t *testing.T) {
	var (
		mu  sync.Mutex
		got []time.Time
	)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	j, err := NewJob("accrual", "FREQ=DAILY;BYHOUR=2;BYMINUTE=0;BYSECOND=0", time.UTC, start, func(_ context.Context, at time.Time) error {
		mu.Lock()
		defer mu.Unlock()
		got = append(got, at)
		if len(got) == 2 {
			return errors.New("db down")
		}
		if len(got) == 3 {
			cancel()
		}
		return nil
	})
	require.NoError(t, err)

	s := New(j)
	s.now = func() time.Time { return start }
	s.after = func(time.Duration) <-chan time.Time {
		ch := make(chan time.Time, 1)
		ch <- start
		return ch
	}

	done := make(chan struct{})
	go func() { s.Run(ctx); close(done) }()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("scheduler did not stop")
	}

	mu.Lock()
	defer mu.Unlock()
	require.GreaterOrEqual(t, len(got), 3)
	assert.Equal(t, time.Date(2024, 1, 16, 2, 0, 0, 0, time.UTC), got[0])
	assert.Equal(t, time.Date(2024, 1, 17, 2, 0, 0, 0, time.UTC), got[1], "a failure does not stop the job")
	assert.Equal(t, time.Date(2024, 1, 18, 2, 0, 0, 0, time.UTC), got[2])
}

func TestRun_RecoversFromPanic(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	calls := 0
	j, err := NewJob("boom", "FREQ=DAILY;BYHOUR=2;BYMINUTE=0;BYSECOND=0", time.UTC, start, func(context.Context, time.Time) error {
		calls++
		if calls == 1 {
			panic("nil map")
		}
		cancel()
		return nil
	})
	require.NoError(t, err)
	s := New(j)
	s.after = func(time.Duration) <-chan time.Time {
		ch := make(chan time.Time, 1)
		ch <- start
		return ch
	}
	s.Run(ctx)
	assert.GreaterOrEqual(t, calls, 2)
}

func TestRunNow_StopsAtFirstError(t *testing.T) {
	var order []string
	mk := func(name string, err error) Job {
		j, e := NewJob(name, "FREQ=DAILY", time.UTC, start, func(context.Context, time.Time) error {
			order = append(order, name)
			return err
		})
		require.NoError(t, e)
		return j
	}
	s := New(mk("accrual", nil), mk("reminders", errors.New("redis down")), mk("cleanup", nil))

	err := s.RunNow(context.Background(), start)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reminders")
	assert.Equal(t, []string{"accrual", "reminders"}, order)
}
