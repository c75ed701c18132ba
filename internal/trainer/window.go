package trainer

import "time"

// window accumulates throughput and loss stats across training steps
// between log lines.
type window struct {
	rays    int
	data    time.Duration
	compute time.Duration
	steps   int
	lossSum float64
}

// Record adds one step's measurements.
func (w *window) Record(batchRays int, dataTime, computeTime time.Duration, loss float64) {
	w.rays += batchRays
	w.data += dataTime
	w.compute += computeTime
	w.steps++
	w.lossSum += loss
}

// Snapshot returns aggregated metrics and resets the window.
func (w *window) Snapshot() snapshot {
	snap := snapshot{}
	total := w.data + w.compute
	if total > 0 {
		snap.RaysPerSec = float64(w.rays) / total.Seconds()
	}
	if w.steps > 0 {
		snap.AvgDataMS = (w.data.Seconds() * 1000) / float64(w.steps)
		snap.AvgComputeMS = (w.compute.Seconds() * 1000) / float64(w.steps)
		snap.AvgLoss = w.lossSum / float64(w.steps)
	}

	*w = window{}
	return snap
}

type snapshot struct {
	RaysPerSec   float64
	AvgDataMS    float64
	AvgComputeMS float64
	AvgLoss      float64
}
