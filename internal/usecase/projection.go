package usecase

import (
	"github.com/iho/finledger/internal/domain"
)

const (
	// DefaultHorizon is the number of future windows predicted by default.
	DefaultHorizon = 5

	// MaxHorizon caps the number of predicted windows.
	MaxHorizon = 120
)

// Project fits an ordinary least-squares line through series, using the
// calendar ordinal of each window start as x, and extrapolates horizon
// windows past the last observed one, at most MaxHorizon. Fewer than two
// points yield nothing.
func Project(series []domain.BucketPoint, g domain.Granularity, horizon int) []domain.ProjectionPoint {
	if len(series) < 2 || horizon <= 0 {
		return []domain.ProjectionPoint{}
	}
	horizon = min(horizon, MaxHorizon)

	xs := make([]float64, len(series))
	ys := make([]float64, len(series))
	for i, p := range series {
		xs[i] = float64(g.Ordinal(p.Start))
		ys[i] = p.Amount.InexactFloat64()
	}

	slope, intercept := linearFit(xs, ys)

	last := series[len(series)-1].Start
	out := make([]domain.ProjectionPoint, 0, horizon)
	for step := 1; step <= horizon; step++ {
		start := g.Step(last, step)
		out = append(out, domain.ProjectionPoint{
			Start:  start,
			Amount: slope*float64(g.Ordinal(start)) + intercept,
		})
	}

	return out
}

// linearFit returns the least-squares slope and intercept. When every x is
// equal the line is flat through the mean.
func linearFit(xs, ys []float64) (slope, intercept float64) {
	n := float64(len(xs))

	var sumX, sumY, sumXY, sumX2 float64
	for i := range xs {
		x, y := xs[i], ys[i]
		sumX += x
		sumY += y
		sumXY += x * y
		sumX2 += x * x
	}

	denom := n*sumX2 - sumX*sumX
	if denom == 0 {
		return 0, sumY / n
	}

	slope = (n*sumXY - sumX*sumY) / denom
	intercept = (sumY - slope*sumX) / n

	return slope, intercept
}
