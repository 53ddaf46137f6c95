package stats

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector records engine activity into a rolling window and a private
// prometheus registry. It satisfies page.Recorder.
type Collector struct {
	namespace string
	window    *Window
	registry  *prometheus.Registry

	commands        *prometheus.CounterVec
	commandDuration prometheus.Histogram
	markers         prometheus.Counter
	highlights      prometheus.Counter
	requests        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
}

func NewCollector(namespace string, window time.Duration) *Collector {
	c := &Collector{
		namespace: namespace,
		window:    NewWindow(window),
		registry:  prometheus.NewRegistry(),
		commands: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "commands_total",
			Help:      "Key commands received, by key and whether navigation handled them.",
		}, []string{"key", "handled"}),
		commandDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "command_duration_seconds",
			Help:      "Time spent running a navigation command.",
			Buckets:   prometheus.ExponentialBuckets(1e-6, 4, 10),
		}),
		markers: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "highlight_markers_total",
			Help:      "Marker elements inserted into documents.",
		}),
		highlights: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "highlights_total",
			Help:      "Highlights committed.",
		}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests, by method, route and status.",
		}, []string{"method", "route", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
	c.registry.MustRegister(c.commands, c.commandDuration, c.markers, c.highlights, c.requests, c.requestDuration)
	return c
}

// Command records one key command.
func (c *Collector) Command(key string, handled bool, d time.Duration) {
	label := key
	if !handled {
		label = "other"
	}
	c.commands.WithLabelValues(label, strconv.FormatBool(handled)).Inc()
	if handled {
		c.commandDuration.Observe(d.Seconds())
	}
	c.window.Record(key, handled, d)
}

// Highlight records one committed highlight of n markers.
func (c *Collector) Highlight(markers int) {
	c.highlights.Inc()
	c.markers.Add(float64(markers))
}

// Request records one served HTTP request.
func (c *Collector) Request(method, route string, status int, d time.Duration) {
	c.requests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	c.requestDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

// GaugeFunc exports the value of fn as a gauge.
func (c *Collector) GaugeFunc(name, help string, fn func() float64) {
	c.registry.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: c.namespace,
		Name:      name,
		Help:      help,
	}, fn))
}

// Snapshot returns the rolling command latency aggregate.
func (c *Collector) Snapshot() Snapshot { return c.window.Snapshot() }

// Handler serves the registry in the prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry.
func (c *Collector) Registry() *prometheus.Registry { return c.registry }
