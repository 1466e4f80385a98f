package observability

import (
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// EngineCollector bundles Prometheus metrics for the propagation engine:
// file ingestion, data queries, and profile geometry rebuilds.
type EngineCollector struct {
	gatherer prometheus.Gatherer

	FilesLoaded      *prometheus.CounterVec
	FileLoadDuration prometheus.Histogram
	Queries          *prometheus.CounterVec
	QueryDuration    *prometheus.HistogramVec
	ProfilesLoaded   prometheus.Gauge
	ProfileRebuilds  prometheus.Counter
}

// NewEngineCollector registers engine Prometheus metrics against the provided
// registerer, defaulting to the global Prometheus registry when nil.
func NewEngineCollector(reg prometheus.Registerer) (*EngineCollector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	files := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "areps_files_loaded_total",
		Help: "Total number of AREPS files processed, labeled by result.",
	}, []string{"result"})
	files, err := registerCounterVec(reg, files, "areps_files_loaded_total")
	if err != nil {
		return nil, err
	}

	loadDuration, err := registerHistogram(reg, prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "areps_file_load_duration_seconds",
		Help:    "Wall time spent parsing a single AREPS file.",
		Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5},
	}), "areps_file_load_duration_seconds")
	if err != nil {
		return nil, err
	}

	queries := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "rf_queries_total",
		Help: "Total number of RF data queries, labeled by quantity and result.",
	}, []string{"quantity", "result"})
	queries, err = registerCounterVec(reg, queries, "rf_queries_total")
	if err != nil {
		return nil, err
	}

	queryDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "rf_query_duration_seconds",
		Help:    "Wall time spent answering a single RF data query.",
		Buckets: []float64{0.000005, 0.00001, 0.000025, 0.00005, 0.0001, 0.00025, 0.0005, 0.001},
	}, []string{"quantity"})
	queryDuration, err = registerHistogramVec(reg, queryDuration, "rf_query_duration_seconds")
	if err != nil {
		return nil, err
	}

	profiles, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "rf_profiles_loaded",
		Help: "Current number of bearing profiles held by the facade.",
	}), "rf_profiles_loaded")
	if err != nil {
		return nil, err
	}

	rebuilds, err := registerCounter(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "rf_profile_rebuilds_total",
		Help: "Total number of profile geometry rebuilds.",
	}), "rf_profile_rebuilds_total")
	if err != nil {
		return nil, err
	}

	return &EngineCollector{
		gatherer:         gatherer,
		FilesLoaded:      files,
		FileLoadDuration: loadDuration,
		Queries:          queries,
		QueryDuration:    queryDuration,
		ProfilesLoaded:   profiles,
		ProfileRebuilds:  rebuilds,
	}, nil
}

// Handler exposes a ready-to-use /metrics handler.
func (c *EngineCollector) Handler() http.Handler {
	gatherer := prometheus.DefaultGatherer
	if c != nil && c.gatherer != nil {
		gatherer = c.gatherer
	}
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// ObserveFileLoad records one AREPS file parse attempt and its duration.
func (c *EngineCollector) ObserveFileLoad(d time.Duration, err error) {
	if c == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	if c.FilesLoaded != nil {
		c.FilesLoaded.WithLabelValues(result).Inc()
	}
	if c.FileLoadDuration != nil {
		c.FileLoadDuration.Observe(d.Seconds())
	}
}

// IncQuery records one data query by quantity name and whether it produced
// a value or fell back to the sentinel.
func (c *EngineCollector) IncQuery(quantity string, hit bool) {
	if c == nil || c.Queries == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	c.Queries.WithLabelValues(quantity, result).Inc()
}

// ObserveQuery records the wall time of one data query.
func (c *EngineCollector) ObserveQuery(quantity string, d time.Duration) {
	if c == nil || c.QueryDuration == nil {
		return
	}
	c.QueryDuration.WithLabelValues(quantity).Observe(d.Seconds())
}

// SetProfilesLoaded updates the loaded-profile gauge.
func (c *EngineCollector) SetProfilesLoaded(count int) {
	if c == nil || c.ProfilesLoaded == nil {
		return
	}
	c.ProfilesLoaded.Set(float64(count))
}

// IncProfileRebuilds counts one geometry rebuild.
func (c *EngineCollector) IncProfileRebuilds() {
	if c == nil || c.ProfileRebuilds == nil {
		return
	}
	c.ProfileRebuilds.Inc()
}

func registerCounterVec(reg prometheus.Registerer, vec *prometheus.CounterVec, name string) (*prometheus.CounterVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerHistogram(reg prometheus.Registerer, hist prometheus.Histogram, name string) (prometheus.Histogram, error) {
	if err := reg.Register(hist); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Histogram); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return hist, nil
}

func registerHistogramVec(reg prometheus.Registerer, vec *prometheus.HistogramVec, name string) (*prometheus.HistogramVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.HistogramVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerCounter(reg prometheus.Registerer, counter prometheus.Counter, name string) (prometheus.Counter, error) {
	if err := reg.Register(counter); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Counter); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return counter, nil
}

func registerGauge(reg prometheus.Registerer, gauge prometheus.Gauge, name string) (prometheus.Gauge, error) {
	if err := reg.Register(gauge); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Gauge); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return gauge, nil
}
