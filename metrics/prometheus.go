// Copyright (c) 2025 The Firofarm developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/firofarm/chef/log"
)

const namespace = "firofarm"

// InitializePrometheusMetrics creates a new instance of the Prometheus service and
// sets the implementation as the default metrics services
func InitializePrometheusMetrics() {
	// don't allow for reset
	if _, ok := metrics.(*prometheusMetrics); !ok {
		metrics = newPrometheusMetrics()
	}
}

type prometheusMetrics struct {
	meters sync.Map // name => meter
	mu     sync.Mutex
}

func newPrometheusMetrics() Metrics {
	return &prometheusMetrics{}
}

// getOrCreate loads the meter registered under name, or builds and registers a new one.
func getOrCreate[T any](o *prometheusMetrics, name string, build func() (prometheus.Collector, T)) T {
	if m, ok := o.meters.Load(name); ok {
		if meter, ok := m.(T); ok {
			return meter
		}
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	if m, ok := o.meters.Load(name); ok {
		if meter, ok := m.(T); ok {
			return meter
		}
	}
	collector, meter := build()
	if err := prometheus.Register(collector); err != nil {
		log.Warn("unable to register metric", "name", name, "err", err)
	}
	o.meters.Store(name, meter)
	return meter
}

func floatBuckets(buckets []int64) []float64 {
	var out []float64
	for _, b := range buckets {
		out = append(out, float64(b))
	}
	return out
}

func (o *prometheusMetrics) GetOrCreateHandler() http.Handler {
	return promhttp.Handler()
}

func (o *prometheusMetrics) GetOrCreateCountMeter(name string) CountMeter {
	return getOrCreate(o, name, func() (prometheus.Collector, CountMeter) {
		c := prometheus.NewCounter(prometheus.CounterOpts{Namespace: namespace, Name: name})
		return c, &promCountMeter{c}
	})
}

func (o *prometheusMetrics) GetOrCreateCountVecMeter(name string, labels []string) CountVecMeter {
	return getOrCreate(o, name, func() (prometheus.Collector, CountVecMeter) {
		c := prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: namespace, Name: name}, labels)
		return c, &promCountVecMeter{c}
	})
}

func (o *prometheusMetrics) GetOrCreateGaugeMeter(name string) GaugeMeter {
	return getOrCreate(o, name, func() (prometheus.Collector, GaugeMeter) {
		g := prometheus.NewGauge(prometheus.GaugeOpts{Namespace: namespace, Name: name})
		return g, &promGaugeMeter{g}
	})
}

func (o *prometheusMetrics) GetOrCreateGaugeVecMeter(name string, labels []string) GaugeVecMeter {
	return getOrCreate(o, name, func() (prometheus.Collector, GaugeVecMeter) {
		g := prometheus.NewGaugeVec(prometheus.GaugeOpts{Namespace: namespace, Name: name}, labels)
		return g, &promGaugeVecMeter{g}
	})
}

func (o *prometheusMetrics) GetOrCreateHistogramMeter(name string, buckets []int64) HistogramMeter {
	return getOrCreate(o, name, func() (prometheus.Collector, HistogramMeter) {
		h := prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      name,
			Buckets:   floatBuckets(buckets),
		})
		return h, &promHistogramMeter{h}
	})
}

func (o *prometheusMetrics) GetOrCreateHistogramVecMeter(name string, labels []string, buckets []int64) HistogramVecMeter {
	return getOrCreate(o, name, func() (prometheus.Collector, HistogramVecMeter) {
		h := prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      name,
			Buckets:   floatBuckets(buckets),
		}, labels)
		return h, &promHistogramVecMeter{h}
	})
}

type promHistogramMeter struct {
	histogram prometheus.Histogram
}

func (c *promHistogramMeter) Observe(i int64) {
	c.histogram.Observe(float64(i))
}

type promHistogramVecMeter struct {
	histogram *prometheus.HistogramVec
}

func (c *promHistogramVecMeter) ObserveWithLabels(i int64, labels map[string]string) {
	c.histogram.With(labels).Observe(float64(i))
}

type promCountMeter struct {
	counter prometheus.Counter
}

func (c *promCountMeter) Add(i int64) {
	c.counter.Add(float64(i))
}

type promCountVecMeter struct {
	counter *prometheus.CounterVec
}

func (c *promCountVecMeter) AddWithLabel(i int64, labels map[string]string) {
	c.counter.With(labels).Add(float64(i))
}

type promGaugeMeter struct {
	gauge prometheus.Gauge
}

func (c *promGaugeMeter) Add(i int64) {
	c.gauge.Add(float64(i))
}

func (c *promGaugeMeter) Set(i int64) {
	c.gauge.Set(float64(i))
}

type promGaugeVecMeter struct {
	gauge *prometheus.GaugeVec
}

func (c *promGaugeVecMeter) AddWithLabel(i int64, labels map[string]string) {
	c.gauge.With(labels).Add(float64(i))
}

func (c *promGaugeVecMeter) SetWithLabel(i int64, labels map[string]string) {
	c.gauge.With(labels).Set(float64(i))
}
