package history

// Sample is a single performance-counter measurement as written by the collector.
type Sample struct {
	Timestamp    int64   `json:"timestamp"`
	Cycles       uint64  `json:"cycles"`
	Instructions uint64  `json:"instructions"`
	CacheMisses  uint64  `json:"cache_misses"`
	BranchMisses uint64  `json:"branch_misses"`
	CPI          float64 `json:"cpi"` // as recorded, not derived from Cycles/Instructions
}

// Stats describes the current state of a History.
type Stats struct {
	Capacity    int      `json:"capacity"`
	Len         int      `json:"len"`
	Refreshes   uint64   `json:"refreshes"`
	Appended    uint64   `json:"appended"`
	Evicted     uint64   `json:"evicted"`
	LastRefresh int64    `json:"last_refresh_unix_ms,omitempty"`
	LastError   string   `json:"last_error,omitempty"`
	ReadMode    ReadMode `json:"read_mode"`
}
