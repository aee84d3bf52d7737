package metrics

import (
	"bufio"
	"fmt"
	"net"
	"net/http"
	"sort"
	"strconv"
	"sync"

	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"
	"google.golang.org/protobuf/proto"
)

const namespace = "launchdash"

// Metric names.
const (
	TransformRuns = namespace + "_transform_runs_total"
	HTTPRequests  = namespace + "_http_requests_total"
)

type requestKey struct {
	route string
	code  int
}

type gaugeFunc struct {
	help string
	fn   func() float64
}

// Metrics collects counters in memory and samples gauges at scrape time.
// The zero value is not usable; call New.
type Metrics struct {
	mu         sync.Mutex
	transforms map[string]float64
	requests   map[requestKey]float64
	gauges     map[string]gaugeFunc
}

// New creates an empty Metrics.
func New() *Metrics {
	return &Metrics{
		transforms: make(map[string]float64),
		requests:   make(map[requestKey]float64),
		gauges:     make(map[string]gaugeFunc),
	}
}

// IncTransform counts one run of the named transform. Safe on a nil receiver.
func (m *Metrics) IncTransform(name string) {
	if m == nil {
		return
	}
	m.mu.Lock()
	m.transforms[name]++
	m.mu.Unlock()
}

// ObserveRequest counts one HTTP response for route. Safe on a nil receiver.
func (m *Metrics) ObserveRequest(route string, code int) {
	if m == nil {
		return
	}
	m.mu.Lock()
	m.requests[requestKey{route: route, code: code}]++
	m.mu.Unlock()
}

// GaugeFunc registers a gauge whose value is read from fn on every scrape.
// Registering the same name again replaces the previous function.
func (m *Metrics) GaugeFunc(name, help string, fn func() float64) {
	m.mu.Lock()
	m.gauges[namespace+"_"+name] = gaugeFunc{help: help, fn: fn}
	m.mu.Unlock()
}

// Instrument wraps h so every response is counted under route.
func (m *Metrics) Instrument(route string, h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := &statusRecorder{ResponseWriter: w, code: http.StatusOK}
		h.ServeHTTP(rec, r)
		m.ObserveRequest(route, rec.code)
	})
}

// Families returns all metric families sorted by name.
func (m *Metrics) Families() []*dto.MetricFamily {
	m.mu.Lock()
	transforms := make(map[string]float64, len(m.transforms))
	for k, v := range m.transforms {
		transforms[k] = v
	}
	requests := make(map[requestKey]float64, len(m.requests))
	for k, v := range m.requests {
		requests[k] = v
	}
	gauges := make(map[string]gaugeFunc, len(m.gauges))
	for k, v := range m.gauges {
		gauges[k] = v
	}
	m.mu.Unlock()

	var out []*dto.MetricFamily

	if len(transforms) > 0 {
		mf := family(TransformRuns, "Figure recomputations by transform.", dto.MetricType_COUNTER)
		for _, name := range sortedKeys(transforms) {
			mf.Metric = append(mf.Metric, counter(transforms[name], label("transform", name)))
		}
		out = append(out, mf)
	}

	if len(requests) > 0 {
		mf := family(HTTPRequests, "HTTP responses by route and status code.", dto.MetricType_COUNTER)
		keys := make([]requestKey, 0, len(requests))
		for k := range requests {
			keys = append(keys, k)
		}
		sort.Slice(keys, func(i, j int) bool {
			if keys[i].route != keys[j].route {
				return keys[i].route < keys[j].route
			}
			return keys[i].code < keys[j].code
		})
		for _, k := range keys {
			mf.Metric = append(mf.Metric, counter(requests[k],
				label("route", k.route), label("code", strconv.Itoa(k.code))))
		}
		out = append(out, mf)
	}

	// Gauge functions run outside the lock; they may call back into the store.
	for _, name := range sortedKeys(gauges) {
		g := gauges[name]
		mf := family(name, g.help, dto.MetricType_GAUGE)
		mf.Metric = []*dto.Metric{{Gauge: &dto.Gauge{Value: proto.Float64(g.fn())}}}
		out = append(out, mf)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].GetName() < out[j].GetName() })
	return out
}

// ServeHTTP writes the text exposition format.
func (m *Metrics) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	w.Header().Set("Content-Type", string(expfmt.NewFormat(expfmt.TypeTextPlain)))
	for _, mf := range m.Families() {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return
		}
	}
}

// --- internal ---------------------------------------------------------------

func family(name, help string, typ dto.MetricType) *dto.MetricFamily {
	return &dto.MetricFamily{
		Name: proto.String(name),
		Help: proto.String(help),
		Type: typ.Enum(),
	}
}

func counter(v float64, labels ...*dto.LabelPair) *dto.Metric {
	return &dto.Metric{Label: labels, Counter: &dto.Counter{Value: proto.Float64(v)}}
}

func label(name, value string) *dto.LabelPair {
	return &dto.LabelPair{Name: proto.String(name), Value: proto.String(value)}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

type statusRecorder struct {
	http.ResponseWriter
	code int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.code = code
	s.ResponseWriter.WriteHeader(code)
}

// Hijack lets WebSocket upgrades pass through Instrument.
func (s *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hj, ok := s.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, fmt.Errorf("metrics: response writer does not support hijacking")
	}
	s.code = http.StatusSwitchingProtocols
	return hj.Hijack()
}
