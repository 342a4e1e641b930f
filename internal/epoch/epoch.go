// Package epoch implements the time gate shared by the treasury and the
// price oracles. A schedule divides time after a fixed start instant into
// periods of equal length; a gated action may run at most once per period.
package epoch

import "fmt"

// Schedule tracks a gating window over unix-second timestamps. It is a plain
// record so owning keepers can persist it as JSON alongside their own state.
type Schedule struct {
	// PeriodSeconds is the length of one epoch. Mutable via SetPeriod.
	PeriodSeconds int64 `json:"period_seconds"`

	// StartTime is the instant before which no gated action may run.
	// Immutable after construction.
	StartTime int64 `json:"start_time"`

	// LastExecutedAt is the instant of the most recent successful gated
	// action. Initialized to StartTime + startEpoch*period.
	LastExecutedAt int64 `json:"last_executed_at"`
}

// NewSchedule builds a schedule starting at start with the given period.
// startEpoch skips the first startEpoch periods, the same way a freshly
// deployed gate can be aligned with an already-running oracle cadence.
func NewSchedule(start, periodSeconds, startEpoch int64) (Schedule, error) {
	if periodSeconds <= 0 {
		return Schedule{}, fmt.Errorf("epoch period must be positive, got %d", periodSeconds)
	}
	if startEpoch < 0 {
		return Schedule{}, fmt.Errorf("start epoch cannot be negative, got %d", startEpoch)
	}
	return Schedule{
		PeriodSeconds:  periodSeconds,
		StartTime:      start,
		LastExecutedAt: start + startEpoch*periodSeconds,
	}, nil
}

// Started reports whether the gate has opened at all.
func (s Schedule) Started(now int64) bool {
	return now >= s.StartTime
}

// CurrentEpoch is the epoch index the clock is in right now. Before the
// start instant it is pinned to zero.
func (s Schedule) CurrentEpoch(now int64) int64 {
	if now < s.StartTime {
		now = s.StartTime
	}
	return (now - s.StartTime) / s.PeriodSeconds
}

// LastEpoch is the epoch index of the most recent execution. Because
// MarkExecuted records the wall-clock instant rather than the nominal epoch
// boundary, a late call shifts this forward with the clock.
func (s Schedule) LastEpoch() int64 {
	return (s.LastExecutedAt - s.StartTime) / s.PeriodSeconds
}

// NextEpoch is the earliest epoch index at which the gate opens again. If no
// action has ever run the gate is open in the last epoch itself.
func (s Schedule) NextEpoch() int64 {
	if s.StartTime == s.LastExecutedAt {
		return s.LastEpoch()
	}
	return s.LastEpoch() + 1
}

// Callable reports whether a gated action may run now. Callers must also
// check Started; Callable alone is a pure epoch comparison.
func (s Schedule) Callable(now int64) bool {
	return s.CurrentEpoch(now) >= s.NextEpoch()
}

// MarkExecuted advances the gate after a successful gated action. The
// observed instant is recorded as-is, so epoch boundaries drift with late
// calls instead of snapping back to the nominal schedule. An execution at the
// exact start instant leaves the never-executed test true; the earliest block
// after start closes that window.
func (s *Schedule) MarkExecuted(now int64) {
	if now < s.StartTime {
		now = s.StartTime
	}
	s.LastExecutedAt = now
}

// SetPeriod changes the epoch length for all subsequent computations. Past
// executions are not renormalized: after a period change, LastEpoch and
// NextEpoch are recomputed against the new period, which can shift the next
// opening relative to the old cadence. Known drift, kept as observed.
func (s *Schedule) SetPeriod(periodSeconds int64) error {
	if periodSeconds <= 0 {
		return fmt.Errorf("epoch period must be positive, got %d", periodSeconds)
	}
	s.PeriodSeconds = periodSeconds
	return nil
}
