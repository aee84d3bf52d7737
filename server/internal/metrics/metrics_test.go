package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"
)

func scrape(t *testing.T, m *Metrics) map[string]*dto.MetricFamily {
	t.Helper()
	rr := httptest.NewRecorder()
	m.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200", rr.Code)
	}
	var parser expfmt.TextParser
	mfs, err := parser.TextToMetricFamilies(strings.NewReader(rr.Body.String()))
	if err != nil {
		t.Fatalf("parse exposition: %v\n%s", err, rr.Body.String())
	}
	return mfs
}

func value(mf *dto.MetricFamily, labels map[string]string) (float64, bool) {
	for _, m := range mf.GetMetric() {
		match := true
		for _, lp := range m.GetLabel() {
			if want, ok := labels[lp.GetName()]; ok && want != lp.GetValue() {
				match = false
			}
		}
		if !match {
			continue
		}
		if m.Counter != nil {
			return m.Counter.GetValue(), true
		}
		return m.Gauge.GetValue(), true
	}
	return 0, false
}

func TestServeHTTP_Empty(t *testing.T) {
	if mfs := scrape(t, New()); len(mfs) != 0 {
		t.Errorf("families: got %d, want 0", len(mfs))
	}
}

func TestTransformCounter(t *testing.T) {
	m := New()
	m.IncTransform("outcome")
	m.IncTransform("outcome")
	m.IncTransform("scatter")

	mf := scrape(t, m)[TransformRuns]
	if mf == nil {
		t.Fatalf("%s not exposed", TransformRuns)
	}
	if mf.GetType() != dto.MetricType_COUNTER {
		t.Errorf("type: got %v, want COUNTER", mf.GetType())
	}
	if v, _ := value(mf, map[string]string{"transform": "outcome"}); v != 2 {
		t.Errorf("outcome runs: got %v, want 2", v)
	}
	if v, _ := value(mf, map[string]string{"transform": "scatter"}); v != 1 {
		t.Errorf("scatter runs: got %v, want 1", v)
	}
}

func TestGaugeFunc_SampledAtScrape(t *testing.T) {
	m := New()
	n := 3.0
	m.GaugeFunc("ws_clients", "Connected clients.", func() float64 { return n })

	mf := scrape(t, m)["launchdash_ws_clients"]
	if v, ok := value(mf, nil); !ok || v != 3 {
		t.Errorf("ws_clients: got %v, want 3", v)
	}

	n = 5
	mf = scrape(t, m)["launchdash_ws_clients"]
	if v, _ := value(mf, nil); v != 5 {
		t.Errorf("ws_clients after change: got %v, want 5", v)
	}
}

func TestInstrument_CountsStatus(t *testing.T) {
	m := New()
	ok := m.Instrument("health", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok")) //nolint:errcheck
	}))
	bad := m.Instrument("records", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	for i := 0; i < 2; i++ {
		ok.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	}
	bad.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	mf := scrape(t, m)[HTTPRequests]
	if v, _ := value(mf, map[string]string{"route": "health", "code": "200"}); v != 2 {
		t.Errorf("health/200: got %v, want 2", v)
	}
	if v, _ := value(mf, map[string]string{"route": "records", "code": "400"}); v != 1 {
		t.Errorf("records/400: got %v, want 1", v)
	}
}

func TestNilReceiver(t *testing.T) {
	var m *Metrics
	m.IncTransform("outcome")
	m.ObserveRequest("health", 200)
}

func TestServeHTTP_MethodNotAllowed(t *testing.T) {
	rr := httptest.NewRecorder()
	New().ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/metrics", nil))
	if rr.Code != http.StatusMethodNotAllowed {
		t.Errorf("status: got %d, want 405", rr.Code)
	}
}
