package finder

import (
	"context"
	"fmt"
	"math"
	"time"
)

// Calibrate times one real evaluation of the first min(k, len(working))
// working columns. The cost grows with the row count and k, which makes it
// a representative per-combination cost for the estimate.
func Calibrate(ctx context.Context, ev *Evaluator, working []int, k int) (time.Duration, error) {
	if len(working) == 0 || k < 1 {
		return 0, nil
	}
	if k > len(working) {
		k = len(working)
	}
	sample := Candidate(working[:k]).Clone()

	start := time.Now()
	if _, err := ev.Evaluate(ctx, sample); err != nil {
		return 0, err
	}
	return time.Since(start), nil
}

// Estimate projects the scan duration from a per-combination cost, the
// number of combinations and the worker count. It is advisory only.
func Estimate(perCombination time.Duration, total int64, workers int) time.Duration {
	if workers < 1 {
		workers = 1
	}
	est := float64(perCombination) * float64(total) / float64(workers)
	if est >= math.MaxInt64 {
		return time.Duration(math.MaxInt64)
	}
	return time.Duration(est)
}

// HumanDuration converts d to the coarsest sensible unit among seconds,
// minutes, hours and days, rounded to precision decimals.
func HumanDuration(d time.Duration, precision int) (float64, string) {
	secs := d.Seconds()
	unit := "seconds"
	switch {
	case secs >= 86400:
		secs /= 86400
		unit = "days"
	case secs >= 3600:
		secs /= 3600
		unit = "hours"
	case secs >= 60:
		secs /= 60
		unit = "minutes"
	}
	scale := math.Pow(10, float64(precision))
	return math.Round(secs*scale) / scale, unit
}

// FormatDuration renders d with HumanDuration, e.g. "2.5 minutes".
func FormatDuration(d time.Duration, precision int) string {
	v, unit := HumanDuration(d, precision)
	return fmt.Sprintf("%.*f %s", precision, v, unit)
}
