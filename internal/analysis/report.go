package analysis

// Report bundles everything the dashboard displays for one dataset.
type Report struct {
	Sources       []string
	Metrics       Metrics
	ByDestination Summary
	ByState       Summary
	BySize        Summary
}

// Summaries returns the three summaries in display order.
func (r *Report) Summaries() []Summary {
	return []Summary{r.ByDestination, r.ByState, r.BySize}
}

// Summary returns the summary for dim.
func (r *Report) Summary(dim Dimension) (Summary, bool) {
	for _, s := range r.Summaries() {
		if s.Dimension == dim {
			return s, true
		}
	}
	return Summary{}, false
}

// Analyze runs every aggregator over ds.
func Analyze(ds *Dataset) *Report {
	return &Report{
		Sources:       ds.Sources,
		Metrics:       ComputeMetrics(ds),
		ByDestination: ByDestination(ds),
		ByState:       ByState(ds),
		BySize:        BySize(ds),
	}
}
