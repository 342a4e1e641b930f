package epoch_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Fsud/basiscash-protocol/internal/epoch"
)

const day = int64(86400)

func TestNewScheduleRejectsInvalidInputs(t *testing.T) {
	_, err := epoch.NewSchedule(1_700_000_000, 0, 0)
	require.Error(t, err)

	_, err = epoch.NewSchedule(1_700_000_000, -day, 0)
	require.Error(t, err)

	_, err = epoch.NewSchedule(1_700_000_000, day, -1)
	require.Error(t, err)
}

func TestFreshScheduleOpensAtStart(t *testing.T) {
	start := int64(1_700_000_000)
	s, err := epoch.NewSchedule(start, day, 0)
	require.NoError(t, err)

	require.False(t, s.Started(start-1))
	require.True(t, s.Started(start))

	require.Equal(t, int64(0), s.CurrentEpoch(start))
	require.Equal(t, int64(0), s.LastEpoch())
	require.Equal(t, s.LastEpoch(), s.NextEpoch())
	require.True(t, s.Callable(start))
}

func TestGateClosesForOneFullPeriod(t *testing.T) {
	start := int64(1_700_000_000)
	s, err := epoch.NewSchedule(start, day, 0)
	require.NoError(t, err)

	// First execution lands one second into the first epoch, the earliest
	// a block after the start instant can arrive.
	s.MarkExecuted(start + 1)

	require.Equal(t, int64(0), s.LastEpoch())
	require.Equal(t, int64(1), s.NextEpoch())
	require.False(t, s.Callable(start+day-1))
	require.True(t, s.Callable(start+day))
}

func TestNextEpochRelation(t *testing.T) {
	start := int64(1_700_000_000)
	s, err := epoch.NewSchedule(start, day, 0)
	require.NoError(t, err)

	// Never executed: next == last.
	require.Equal(t, s.LastEpoch(), s.NextEpoch())

	s.MarkExecuted(start + 10)
	require.Equal(t, s.LastEpoch()+1, s.NextEpoch())

	s.MarkExecuted(start + 3*day + 10)
	require.Equal(t, int64(3), s.LastEpoch())
	require.Equal(t, int64(4), s.NextEpoch())
}

func TestStartEpochOffsetSkipsPeriods(t *testing.T) {
	start := int64(1_700_000_000)
	s, err := epoch.NewSchedule(start, day, 2)
	require.NoError(t, err)

	// Offset pushes LastExecutedAt two periods past start, so the gate
	// only opens in epoch 3.
	require.Equal(t, int64(2), s.LastEpoch())
	require.Equal(t, int64(3), s.NextEpoch())
	require.False(t, s.Callable(start+2*day))
	require.True(t, s.Callable(start+3*day))
}

func TestLateExecutionDriftsBoundary(t *testing.T) {
	start := int64(1_700_000_000)
	s, err := epoch.NewSchedule(start, day, 0)
	require.NoError(t, err)

	// Executing halfway through epoch 5 records the wall clock, not the
	// epoch-5 boundary, so the gate reopens at epoch 6 even though only
	// half a period separates the execution from that boundary.
	late := start + 5*day + day/2
	s.MarkExecuted(late)
	require.Equal(t, int64(5), s.LastEpoch())
	require.Equal(t, int64(6), s.NextEpoch())
	require.True(t, s.Callable(start+6*day))
}

func TestSetPeriodDoesNotRenormalizeHistory(t *testing.T) {
	start := int64(1_700_000_000)
	s, err := epoch.NewSchedule(start, day, 0)
	require.NoError(t, err)

	s.MarkExecuted(start + 3*day + 1)
	require.Equal(t, int64(3), s.LastEpoch())

	// Halving the period re-reads the recorded instant against the new
	// length: the same LastExecutedAt now lands in epoch 6.
	require.NoError(t, s.SetPeriod(day/2))
	require.Equal(t, int64(6), s.LastEpoch())
	require.Equal(t, int64(7), s.NextEpoch())

	require.Error(t, s.SetPeriod(0))
}
