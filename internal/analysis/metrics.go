package analysis

import "math"

// Metrics are the headline values shown above the charts. AreaMillions is the
// summed Área total in millions of m², truncated.
type Metrics struct {
	TotalRecords         int
	DistinctDestinations int
	AreaMillions         int64
	DistinctStates       int
}

// ComputeMetrics derives the headline values. Missing values are skipped.
func ComputeMetrics(ds *Dataset) Metrics {
	m := Metrics{TotalRecords: len(ds.Records)}
	dests := map[string]struct{}{}
	states := map[string]struct{}{}
	var area float64
	for _, r := range ds.Records {
		if r.Destination != nil {
			dests[*r.Destination] = struct{}{}
		}
		if r.State != nil {
			states[*r.State] = struct{}{}
		}
		if r.Area != nil && !math.IsNaN(*r.Area) && !math.IsInf(*r.Area, 0) {
			area += *r.Area
		}
	}
	m.DistinctDestinations = len(dests)
	m.DistinctStates = len(states)
	m.AreaMillions = int64(math.Trunc(area / 1_000_000))
	return m
}
