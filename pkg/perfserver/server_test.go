package perfserver

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-json"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/prometheus/common/expfmt"

	"github.com/voluzi/perfwatch/pkg/history"
)

const csvHeader = "timestamp,cycles,instructions,cache_misses,branch_misses,cpi\n"

func csvRows(from, to int64) string {
	var b strings.Builder
	b.WriteString(csvHeader)
	for ts := from; ts <= to; ts++ {
		fmt.Fprintf(&b, "%d,%d,%d,%d,%d,%g\n", ts, ts*100, ts*50, ts, ts%3, 2.0)
	}
	return b.String()
}

func get(url string) (int, string) {
	resp, err := http.Get(url)
	Expect(err).NotTo(HaveOccurred())
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	Expect(err).NotTo(HaveOccurred())
	return resp.StatusCode, string(body)
}

func decodeSamples(body string) []history.Sample {
	var samples []history.Sample
	Expect(json.Unmarshal([]byte(body), &samples)).To(Succeed())
	return samples
}

func sampleTimestamps(samples []history.Sample) []int64 {
	ts := make([]int64, 0, len(samples))
	for _, s := range samples {
		ts = append(ts, s.Timestamp)
	}
	return ts
}

var _ = Describe("Server", func() {
	var (
		source string
		srv    *Server
		ts     *httptest.Server
		opts   []Option
	)

	BeforeEach(func() {
		source = filepath.Join(GinkgoT().TempDir(), "perf_data.csv")
		opts = []Option{WithSourcePath(source), WithCollectorName("")}
	})

	JustBeforeEach(func() {
		var err error
		srv, err = New(opts...)
		Expect(err).NotTo(HaveOccurred())
		ts = httptest.NewServer(srv.Handler())
		DeferCleanup(ts.Close)
	})

	writeSource := func(data string) {
		Expect(os.WriteFile(source, []byte(data), 0o644)).To(Succeed())
	}

	Context("GET /api/data", func() {
		It("returns an empty array while the source does not exist", func() {
			code, body := get(ts.URL + "/api/data")
			Expect(code).To(Equal(http.StatusOK))
			Expect(body).To(Equal("[]"))
		})

		It("returns an empty array for a header-only source", func() {
			writeSource(csvHeader)
			code, body := get(ts.URL + "/api/data")
			Expect(code).To(Equal(http.StatusOK))
			Expect(body).To(Equal("[]"))
		})

		It("returns samples oldest first with the collector's field names", func() {
			writeSource(csvRows(1, 2))
			code, body := get(ts.URL + "/api/data")
			Expect(code).To(Equal(http.StatusOK))
			Expect(body).To(Equal(`[{"timestamp":1,"cycles":100,"instructions":50,"cache_misses":1,"branch_misses":1,"cpi":2},` +
				`{"timestamp":2,"cycles":200,"instructions":100,"cache_misses":2,"branch_misses":2,"cpi":2}]`))
		})

		Context("with a capacity of 3", func() {
			BeforeEach(func() {
				opts = append(opts, WithCapacity(3))
			})

			It("keeps only the newest samples", func() {
				writeSource(csvRows(1, 5))
				_, body := get(ts.URL + "/api/data")
				Expect(sampleTimestamps(decodeSamples(body))).To(Equal([]int64{3, 4, 5}))
			})
		})

		It("responds with a server error on a malformed row and recovers once it is fixed", func() {
			writeSource(csvHeader + "1,1,1,1,1,1\n2,1,1,1,1,N/A\n")
			code, body := get(ts.URL + "/api/data")
			Expect(code).To(Equal(http.StatusInternalServerError))
			Expect(body).To(ContainSubstring(`row 2: field "cpi"`))
			Expect(srv.History().Samples()).To(BeEmpty())

			writeSource(csvRows(1, 2))
			code, body = get(ts.URL + "/api/data")
			Expect(code).To(Equal(http.StatusOK))
			Expect(decodeSamples(body)).To(HaveLen(2))
		})

		It("rejects other methods", func() {
			resp, err := http.Post(ts.URL+"/api/data", "text/plain", nil)
			Expect(err).NotTo(HaveOccurred())
			resp.Body.Close()
			Expect(resp.StatusCode).To(Equal(http.StatusMethodNotAllowed))
		})
	})

	Context("GET /api/latest", func() {
		It("returns an empty object without samples", func() {
			code, body := get(ts.URL + "/api/latest")
			Expect(code).To(Equal(http.StatusOK))
			Expect(body).To(Equal("{}"))
		})

		It("returns the most recent sample", func() {
			writeSource(csvRows(1, 4))
			code, body := get(ts.URL + "/api/latest")
			Expect(code).To(Equal(http.StatusOK))

			var sample history.Sample
			Expect(json.Unmarshal([]byte(body), &sample)).To(Succeed())
			Expect(sample).To(Equal(history.Sample{Timestamp: 4, Cycles: 400, Instructions: 200, CacheMisses: 4, BranchMisses: 1, CPI: 2}))
		})
	})

	Context("GET /api/summary", func() {
		It("summarizes the retained samples", func() {
			writeSource(csvRows(1, 4))
			code, body := get(ts.URL + "/api/summary")
			Expect(code).To(Equal(http.StatusOK))

			var summary history.Summary
			Expect(json.Unmarshal([]byte(body), &summary)).To(Succeed())
			Expect(summary.Count).To(Equal(4))
			Expect(summary.From).To(Equal(int64(1)))
			Expect(summary.To).To(Equal(int64(4)))
			Expect(summary.AvgCPI).To(Equal(2.0))
			Expect(summary.AvgCacheMisses).To(Equal(2.5))
		})
	})

	Context("GET /metrics", func() {
		It("exposes the latest sample and history counters", func() {
			writeSource(csvRows(1, 3))
			resp, err := http.Get(ts.URL + "/metrics")
			Expect(err).NotTo(HaveOccurred())
			defer resp.Body.Close()
			Expect(resp.StatusCode).To(Equal(http.StatusOK))

			parser := expfmt.TextParser{}
			fams, err := parser.TextToMetricFamilies(resp.Body)
			Expect(err).NotTo(HaveOccurred())

			Expect(fams).To(HaveKey("perfwatch_cpi"))
			Expect(fams["perfwatch_cpi"].Metric[0].GetGauge().GetValue()).To(Equal(2.0))
			Expect(fams["perfwatch_cycles"].Metric[0].GetGauge().GetValue()).To(Equal(300.0))
			Expect(fams["perfwatch_history_samples"].Metric[0].GetGauge().GetValue()).To(Equal(3.0))
			Expect(fams["perfwatch_history_capacity"].Metric[0].GetGauge().GetValue()).To(Equal(float64(history.DefaultCapacity)))
			Expect(fams["perfwatch_history_refreshes_total"].Metric[0].GetCounter().GetValue()).To(Equal(1.0))
		})

		It("omits sample gauges before any sample is recorded", func() {
			resp, err := http.Get(ts.URL + "/metrics")
			Expect(err).NotTo(HaveOccurred())
			defer resp.Body.Close()

			parser := expfmt.TextParser{}
			fams, err := parser.TextToMetricFamilies(resp.Body)
			Expect(err).NotTo(HaveOccurred())
			Expect(fams).NotTo(HaveKey("perfwatch_cpi"))
			Expect(fams).To(HaveKey("perfwatch_history_samples"))
		})
	})

	Context("GET /health", func() {
		It("reports whether the source exists", func() {
			var h Health
			_, body := get(ts.URL + "/health")
			Expect(json.Unmarshal([]byte(body), &h)).To(Succeed())
			Expect(h.SourcePresent).To(BeFalse())
			Expect(h.CollectorRunning).To(BeFalse())
			Expect(h.History.Capacity).To(Equal(history.DefaultCapacity))

			writeSource(csvHeader)
			_, body = get(ts.URL + "/health")
			Expect(json.Unmarshal([]byte(body), &h)).To(Succeed())
			Expect(h.SourcePresent).To(BeTrue())
		})
	})

	Context("GET /", func() {
		It("serves the embedded dashboard", func() {
			code, body := get(ts.URL + "/")
			Expect(code).To(Equal(http.StatusOK))
			Expect(body).To(ContainSubstring("<title>perfwatch</title>"))
		})

		Context("with a static directory", func() {
			BeforeEach(func() {
				dir := GinkgoT().TempDir()
				Expect(os.WriteFile(filepath.Join(dir, "index.html"), []byte("<h1>custom</h1>"), 0o644)).To(Succeed())
				Expect(os.WriteFile(filepath.Join(dir, "app.js"), []byte("console.log(1)"), 0o644)).To(Succeed())
				opts = append(opts, WithStaticDir(dir))
			})

			It("serves the dashboard from disk", func() {
				_, body := get(ts.URL + "/")
				Expect(body).To(Equal("<h1>custom</h1>"))

				code, body := get(ts.URL + "/static/app.js")
				Expect(code).To(Equal(http.StatusOK))
				Expect(body).To(Equal("console.log(1)"))
			})
		})
	})

	Context("when watching the source", func() {
		BeforeEach(func() {
			opts = append(opts, WithReadMode(history.ReadNew), WithWatchSource(true))
		})

		It("refreshes on every write", func() {
			f, err := os.OpenFile(source, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
			Expect(err).NotTo(HaveOccurred())
			DeferCleanup(f.Close)
			_, err = f.WriteString(csvRows(1, 3))
			Expect(err).NotTo(HaveOccurred())

			ctx, cancel := context.WithCancel(context.Background())
			DeferCleanup(cancel)

			done := make(chan error, 1)
			go func() {
				done <- srv.watchSource(ctx)
			}()

			// blank lines are skipped, so they only nudge the watcher until it is ready
			Eventually(func() int {
				_, _ = f.WriteString("\n")
				return len(srv.History().Samples())
			}).Should(Equal(3))

			_, err = f.WriteString("4,400,200,4,1,2\n5,500,250,5,2,2\n")
			Expect(err).NotTo(HaveOccurred())
			Eventually(func() []int64 {
				return sampleTimestamps(srv.History().Samples())
			}).Should(Equal([]int64{1, 2, 3, 4, 5}))

			cancel()
			Eventually(done).Should(Receive(BeNil()))
		})
	})
})

var _ = Describe("Server lifecycle", func() {
	It("serves clients until stopped", func() {
		l, err := net.Listen("tcp", "127.0.0.1:0")
		Expect(err).NotTo(HaveOccurred())
		port := l.Addr().(*net.TCPAddr).Port
		Expect(l.Close()).To(Succeed())

		source := filepath.Join(GinkgoT().TempDir(), "perf_data.csv")
		Expect(os.WriteFile(source, []byte(csvRows(1, 2)), 0o644)).To(Succeed())

		srv, err := New(WithHost("127.0.0.1"), WithPort(port), WithSourcePath(source), WithCollectorName(""))
		Expect(err).NotTo(HaveOccurred())

		done := make(chan error, 1)
		go func() {
			done <- srv.Start()
		}()

		client := NewClient("127.0.0.1", port)
		Eventually(func() error {
			_, err := client.GetData(context.Background())
			return err
		}).Should(Succeed())

		latest, err := client.GetLatest(context.Background())
		Expect(err).NotTo(HaveOccurred())
		Expect(latest).NotTo(BeNil())
		Expect(latest.Timestamp).To(Equal(int64(2)))

		Expect(srv.Stop()).To(Succeed())
		Eventually(done).Should(Receive(BeNil()))
	})
})
