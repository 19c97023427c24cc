package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds Prometheus counters and gauges for the photo finish recorder.
// It implements finish.Observer.
type Metrics struct {
	registry        *prometheus.Registry
	framesProcessed prometheus.Counter
	framesSkipped   prometheus.Counter
	slicesDrawn     prometheus.Counter
	sessionsStarted prometheus.Counter
	photosFinalized prometheus.Counter
	wraparounds     prometheus.Counter
	requestsTotal   prometheus.Counter
	errorsTotal     prometheus.Counter
	recording       prometheus.Gauge
	photos          prometheus.Gauge
}

// New creates and registers the metrics on a private registry.
func New() *Metrics {
	counter := func(name, help string) prometheus.Counter {
		return prometheus.NewCounter(prometheus.CounterOpts{Namespace: "photofinish", Name: name, Help: help})
	}
	gauge := func(name, help string) prometheus.Gauge {
		return prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "photofinish", Name: name, Help: help})
	}
	m := &Metrics{
		registry:        prometheus.NewRegistry(),
		framesProcessed: counter("frames_processed_total", "Frames composited into a strip"),
		framesSkipped:   counter("frames_skipped_total", "Frames discarded because their timestamp went backwards"),
		slicesDrawn:     counter("slices_drawn_total", "Slices blitted into a strip"),
		sessionsStarted: counter("sessions_started_total", "Capture sessions started"),
		photosFinalized: counter("photos_finalized_total", "Strips finalized into photos"),
		wraparounds:     counter("wraparounds_total", "Sessions ended by a full strip cycle"),
		requestsTotal:   counter("http_requests_total", "HTTP requests received"),
		errorsTotal:     counter("http_errors_total", "HTTP responses with status 4xx or 5xx"),
		recording:       gauge("recording", "1 while a capture session is recording"),
		photos:          gauge("photos", "Photos held in the collection"),
	}
	m.registry.MustRegister(
		m.framesProcessed,
		m.framesSkipped,
		m.slicesDrawn,
		m.sessionsStarted,
		m.photosFinalized,
		m.wraparounds,
		m.requestsTotal,
		m.errorsTotal,
		m.recording,
		m.photos,
	)
	return m
}

func (m *Metrics) SessionStarted() { m.sessionsStarted.Inc() }
func (m *Metrics) FrameProcessed() { m.framesProcessed.Inc() }
func (m *Metrics) FrameSkipped()   { m.framesSkipped.Inc() }
func (m *Metrics) SliceDrawn()     { m.slicesDrawn.Inc() }
func (m *Metrics) Wrapped()        { m.wraparounds.Inc() }
func (m *Metrics) PhotoFinalized() { m.photosFinalized.Inc() }

// IncRequests increments the total request counter.
func (m *Metrics) IncRequests() { m.requestsTotal.Inc() }

// IncErrors increments the errors counter.
func (m *Metrics) IncErrors() { m.errorsTotal.Inc() }

// SetRecording sets the recording gauge.
func (m *Metrics) SetRecording(on bool) {
	if on {
		m.recording.Set(1)
		return
	}
	m.recording.Set(0)
}

// SetPhotos sets the collection size gauge.
func (m *Metrics) SetPhotos(n int) { m.photos.Set(float64(n)) }

// Registry exposes the private registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler returns an http.Handler that serves Prometheus metrics.
// updateGauges is called before each scrape to refresh gauge values.
func (m *Metrics) Handler(updateGauges func()) http.Handler {
	h := promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if updateGauges != nil {
			updateGauges()
		}
		h.ServeHTTP(w, r)
	})
}
