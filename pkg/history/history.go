package history

import (
	"io/fs"
	"sync"
	"time"

	"emperror.dev/errors"
)

// History is a bounded, insertion-ordered buffer of samples refreshed from a Source.
//
// Every refresh re-reads the source from its first byte. In ReadNew mode the
// rows consumed by earlier refreshes are skipped by position.
type History struct {
	source Source
	opts   *Options

	// refreshLock serializes source reads together with their append.
	refreshLock sync.Mutex
	consumed    int

	lock    sync.RWMutex
	samples []Sample
	stats   Stats
}

// New creates an empty History reading from source.
func New(source Source, opts ...Option) *History {
	options := defaultOptions()
	for _, opt := range opts {
		opt(options)
	}
	if _, err := ParseReadMode(string(options.ReadMode)); err != nil {
		options.ReadMode = ReadAll
	}

	return &History{
		source:  source,
		opts:    options,
		samples: make([]Sample, 0, options.Capacity),
		stats: Stats{
			Capacity: options.Capacity,
			ReadMode: options.ReadMode,
		},
	}
}

// Capacity returns the maximum number of retained samples.
func (h *History) Capacity() int {
	return h.opts.Capacity
}

// Source returns the record log this history reads from.
func (h *History) Source() Source {
	return h.source
}

// Refresh reads the source and appends its samples, returning how many were
// appended. A missing source yields no samples and no error. On error the
// buffer is left untouched.
func (h *History) Refresh() (int, error) {
	h.refreshLock.Lock()
	defer h.refreshLock.Unlock()

	samples, err := h.read()
	if err != nil {
		h.recordRefresh(err)
		return 0, err
	}

	if h.opts.ReadMode == ReadNew {
		if len(samples) < h.consumed {
			// source was recreated
			h.consumed = 0
		}
		total := len(samples)
		samples = samples[h.consumed:]
		h.consumed = total
	}

	h.Append(samples...)
	h.recordRefresh(nil)
	return len(samples), nil
}

func (h *History) read() ([]Sample, error) {
	rc, err := h.source.Open()
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, &SourceError{Source: h.source.Name(), Err: err}
	}
	defer rc.Close()

	samples, err := ParseRecords(rc)
	if err != nil {
		if IsParseError(err) {
			return nil, err
		}
		return nil, &SourceError{Source: h.source.Name(), Err: err}
	}
	return samples, nil
}

func (h *History) recordRefresh(err error) {
	h.lock.Lock()
	defer h.lock.Unlock()

	h.stats.Refreshes++
	h.stats.LastRefresh = time.Now().UnixMilli()
	h.stats.LastError = ""
	if err != nil {
		h.stats.LastError = err.Error()
	}
}

// Append adds samples in order, evicting the oldest ones beyond capacity.
// Readers observe either none or all of samples.
func (h *History) Append(samples ...Sample) {
	if len(samples) == 0 {
		return
	}

	h.lock.Lock()
	defer h.lock.Unlock()

	h.stats.Appended += uint64(len(samples))
	limit := h.opts.Capacity
	if len(samples) >= limit {
		h.stats.Evicted += uint64(len(h.samples) + len(samples) - limit)
		h.samples = append(h.samples[:0], samples[len(samples)-limit:]...)
		return
	}

	if overflow := len(h.samples) + len(samples) - limit; overflow > 0 {
		h.stats.Evicted += uint64(overflow)
		n := copy(h.samples, h.samples[overflow:])
		h.samples = h.samples[:n]
	}
	h.samples = append(h.samples, samples...)
}

// Snapshot refreshes from the source and returns a copy of all retained
// samples, oldest first.
func (h *History) Snapshot() ([]Sample, error) {
	if _, err := h.Refresh(); err != nil {
		return nil, err
	}
	return h.Samples(), nil
}

// Latest refreshes from the source and returns the most recent sample.
// The boolean is false when no samples are retained.
func (h *History) Latest() (Sample, bool, error) {
	samples, err := h.Snapshot()
	if err != nil {
		return Sample{}, false, err
	}
	if len(samples) == 0 {
		return Sample{}, false, nil
	}
	return samples[len(samples)-1], true, nil
}

// Samples returns a copy of the retained samples without reading the source.
func (h *History) Samples() []Sample {
	h.lock.RLock()
	defer h.lock.RUnlock()

	result := make([]Sample, len(h.samples))
	copy(result, h.samples)
	return result
}

func (h *History) Stats() Stats {
	h.lock.RLock()
	defer h.lock.RUnlock()

	stats := h.stats
	stats.Len = len(h.samples)
	return stats
}
