package perfserver

import (
	"net/http"

	prom "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"
	log "github.com/sirupsen/logrus"
	"k8s.io/utils/ptr"

	"github.com/voluzi/perfwatch/pkg/history"
)

const metricsNamespace = "perfwatch_"

func (s *Server) metrics(w http.ResponseWriter, r *http.Request) {
	sample, ok, err := s.history.Latest()
	if err != nil {
		refreshFailed(w, err)
		return
	}

	format := expfmt.NewFormat(expfmt.TypeTextPlain)
	w.Header().Set("Content-Type", string(format))
	w.WriteHeader(http.StatusOK)

	enc := expfmt.NewEncoder(w, format)
	for _, mf := range metricFamilies(sample, ok, s.history.Stats()) {
		if err := enc.Encode(mf); err != nil {
			log.Errorf("error encoding metric %s: %v", mf.GetName(), err)
			return
		}
	}
}

// metricFamilies exposes the latest sample as gauges, plus history counters.
// Sample gauges are omitted when no sample has been recorded yet.
func metricFamilies(sample history.Sample, ok bool, stats history.Stats) []*prom.MetricFamily {
	var fams []*prom.MetricFamily

	if ok {
		fams = append(fams,
			gauge("sample_timestamp_milliseconds", "Collector timestamp of the latest sample.", float64(sample.Timestamp)),
			gauge("cycles", "CPU cycles of the latest sample.", float64(sample.Cycles)),
			gauge("instructions", "Retired instructions of the latest sample.", float64(sample.Instructions)),
			gauge("cache_misses", "Cache misses of the latest sample.", float64(sample.CacheMisses)),
			gauge("branch_misses", "Branch misses of the latest sample.", float64(sample.BranchMisses)),
			gauge("cpi", "Cycles per instruction of the latest sample as recorded by the collector.", sample.CPI),
		)
	}

	return append(fams,
		gauge("history_samples", "Samples currently retained.", float64(stats.Len)),
		gauge("history_capacity", "Maximum number of retained samples.", float64(stats.Capacity)),
		counter("history_appended_total", "Samples appended to the history.", float64(stats.Appended)),
		counter("history_evicted_total", "Samples evicted from the history.", float64(stats.Evicted)),
		counter("history_refreshes_total", "Refreshes from the record source.", float64(stats.Refreshes)),
	)
}

func gauge(name, help string, v float64) *prom.MetricFamily {
	return &prom.MetricFamily{
		Name:   ptr.To(metricsNamespace + name),
		Help:   ptr.To(help),
		Type:   prom.MetricType_GAUGE.Enum(),
		Metric: []*prom.Metric{{Gauge: &prom.Gauge{Value: ptr.To(v)}}},
	}
}

func counter(name, help string, v float64) *prom.MetricFamily {
	return &prom.MetricFamily{
		Name:   ptr.To(metricsNamespace + name),
		Help:   ptr.To(help),
		Type:   prom.MetricType_COUNTER.Enum(),
		Metric: []*prom.Metric{{Counter: &prom.Counter{Value: ptr.To(v)}}},
	}
}
