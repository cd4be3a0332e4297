package ratelimit

import (
	"testing"
)

func TestLimiter_Allow(t *testing.T) {
	t.Run("unlimited_allows_all", func(t *testing.T) {
		limiter := New(0)

		for i := range 10 {
			if !limiter.Allow() {
				t.Errorf("Unlimited limiter should allow event %d", i)
			}
		}
	})

	t.Run("negative_is_unlimited", func(t *testing.T) {
		limiter := New(-1)

		for i := range 10 {
			if !limiter.Allow() {
				t.Errorf("Negative rate should allow event %d", i)
			}
		}
	})

	t.Run("limited_respects_rate", func(t *testing.T) {
		limiter := New(1)

		if !limiter.Allow() {
			t.Error("First event should be allowed")
		}
		if limiter.Allow() {
			t.Error("Second immediate event should be denied")
		}
	})
}

func TestReporter(t *testing.T) {
	t.Run("unlimited_forwards_everything", func(t *testing.T) {
		var got []int
		r := NewReporter(0, func(n int) { got = append(got, n) })

		for i := range 5 {
			r.Report(i)
		}
		r.Flush()

		if len(got) != 5 {
			t.Errorf("Report() forwarded %v, want 5 values", got)
		}
	})

	t.Run("limited_keeps_latest_for_flush", func(t *testing.T) {
		var got []int
		r := NewReporter(0.001, func(n int) { got = append(got, n) })

		for i := range 5 {
			r.Report(i)
		}
		if len(got) != 1 || got[0] != 0 {
			t.Fatalf("Report() forwarded %v, want [0]", got)
		}

		r.Flush()
		if len(got) != 2 || got[1] != 4 {
			t.Errorf("Flush() forwarded %v, want [0 4]", got)
		}

		r.Flush()
		if len(got) != 2 {
			t.Errorf("second Flush() forwarded %v, want no new value", got)
		}
	})

	t.Run("nil_reporter_is_noop", func(t *testing.T) {
		var r *Reporter[int]
		r.Report(1)
		r.Flush()
	})
}
