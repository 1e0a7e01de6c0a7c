package history

// Summary aggregates a window of samples.
type Summary struct {
	Count           int     `json:"count"`
	From            int64   `json:"from"`
	To              int64   `json:"to"`
	AvgCPI          float64 `json:"avg_cpi"`
	MinCPI          float64 `json:"min_cpi"`
	MaxCPI          float64 `json:"max_cpi"`
	AvgCacheMisses  float64 `json:"avg_cache_misses"`
	AvgBranchMisses float64 `json:"avg_branch_misses"`
}

// Summarize computes averages and CPI bounds over samples. From and To are the
// timestamps of the first and last sample in the given order.
func Summarize(samples []Sample) Summary {
	if len(samples) == 0 {
		return Summary{}
	}

	sum := Summary{
		Count:  len(samples),
		From:   samples[0].Timestamp,
		To:     samples[len(samples)-1].Timestamp,
		MinCPI: samples[0].CPI,
		MaxCPI: samples[0].CPI,
	}

	var totalCPI, totalCache, totalBranch float64
	for _, s := range samples {
		totalCPI += s.CPI
		totalCache += float64(s.CacheMisses)
		totalBranch += float64(s.BranchMisses)
		if s.CPI < sum.MinCPI {
			sum.MinCPI = s.CPI
		}
		if s.CPI > sum.MaxCPI {
			sum.MaxCPI = s.CPI
		}
	}

	n := float64(len(samples))
	sum.AvgCPI = totalCPI / n
	sum.AvgCacheMisses = totalCache / n
	sum.AvgBranchMisses = totalBranch / n
	return sum
}
