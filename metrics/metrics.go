package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics counts the requests the timeline sends to its host
type Metrics struct {
	registry      *prometheus.Registry
	seeksTotal    *prometheus.CounterVec
	movesTotal    prometheus.Counter
	snapsTotal    prometheus.Counter
	addsTotal     prometheus.Counter
	trimsTotal    prometheus.Counter
	clicksTotal   prometheus.Counter
	keyframes     prometheus.Gauge
	resolutionSet *prometheus.CounterVec
}

// New creates and registers the timeline metrics on a private registry
func New() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		seeksTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "formation_seeks_total",
			Help: "Seek requests, by cause (click or loop)",
		}, []string{"cause"}),
		movesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "formation_keyframe_moves_total",
			Help: "Keyframe move requests emitted during drags",
		}),
		snapsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "formation_keyframe_snaps_total",
			Help: "Drags released onto a beat",
		}),
		addsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "formation_keyframe_adds_total",
			Help: "Keyframes added by double click or MIDI tap",
		}),
		trimsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "formation_trim_changes_total",
			Help: "Trim region change requests",
		}),
		clicksTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "formation_metronome_clicks_total",
			Help: "Metronome clicks sent",
		}),
		keyframes: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "formation_keyframes",
			Help: "Keyframes in the current formation",
		}),
		resolutionSet: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "formation_snap_resolution_changes_total",
			Help: "Snap resolution changes, by new resolution",
		}, []string{"resolution"}),
	}

	registry.MustRegister(
		m.seeksTotal,
		m.movesTotal,
		m.snapsTotal,
		m.addsTotal,
		m.trimsTotal,
		m.clicksTotal,
		m.keyframes,
		m.resolutionSet,
	)
	return m
}

func (m *Metrics) IncSeek(cause string) {
	m.seeksTotal.WithLabelValues(cause).Inc()
}

func (m *Metrics) IncMoves() {
	m.movesTotal.Inc()
}

func (m *Metrics) IncSnaps() {
	m.snapsTotal.Inc()
}

func (m *Metrics) IncAdds() {
	m.addsTotal.Inc()
}

func (m *Metrics) IncTrims() {
	m.trimsTotal.Inc()
}

func (m *Metrics) AddClicks(n int) {
	m.clicksTotal.Add(float64(n))
}

func (m *Metrics) SetKeyframes(n int) {
	m.keyframes.Set(float64(n))
}

func (m *Metrics) IncResolution(res string) {
	m.resolutionSet.WithLabelValues(res).Inc()
}

// Registry exposes the registry for tests and custom exporters
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus text format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Router mounts /metrics
func (m *Metrics) Router() http.Handler {
	r := chi.NewRouter()
	r.Get("/metrics", m.Handler().ServeHTTP)
	return r
}

const shutdownTimeout = 2 * time.Second

// Serve runs the metrics endpoint on addr until ctx is cancelled
func (m *Metrics) Serve(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: m.Router()}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
