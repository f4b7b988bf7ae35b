package finder

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalibrate(t *testing.T) {
	tbl := newMemTable([]string{"A", "B"},
		[]string{"1", "x"},
		[]string{"2", "y"},
	)
	ev := NewEvaluator(tbl, "", false)

	d, err := Calibrate(context.Background(), ev, []int{0, 1}, 5)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, d, time.Duration(0))

	d, err = Calibrate(context.Background(), ev, nil, 3)
	require.NoError(t, err)
	assert.Equal(t, time.Duration(0), d)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = Calibrate(ctx, ev, []int{0}, 1)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestEstimate(t *testing.T) {
	assert.Equal(t, 5*time.Second, Estimate(time.Second, 10, 2))
	assert.Equal(t, 10*time.Second, Estimate(time.Second, 10, 0))
	assert.Equal(t, time.Duration(0), Estimate(0, 1000, 4))
	assert.Equal(t, time.Duration(math.MaxInt64), Estimate(time.Hour, math.MaxInt64, 1))
}

func TestHumanDuration(t *testing.T) {
	tests := []struct {
		d    time.Duration
		val  float64
		unit string
	}{
		{30 * time.Second, 30, "seconds"},
		{1500 * time.Millisecond, 1.5, "seconds"},
		{90 * time.Second, 1.5, "minutes"},
		{2 * time.Hour, 2, "hours"},
		{36 * time.Hour, 1.5, "days"},
	}

	for _, tt := range tests {
		val, unit := HumanDuration(tt.d, 1)
		assert.Equal(t, tt.val, val, tt.d.String())
		assert.Equal(t, tt.unit, unit, tt.d.String())
	}
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "1.5 minutes", FormatDuration(90*time.Second, 1))
	assert.Equal(t, "0.00 seconds", FormatDuration(0, 2))
	assert.Equal(t, "3 hours", FormatDuration(3*time.Hour, 0))
}
