package prom

import (
	"fmt"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"

	xhttp "github.com/duitapp/ledger/pkg/http"
	"github.com/duitapp/ledger/pkg/logger"
)

const (
	SystemDispatcher = "dispatcher"
	SystemRecap      = "recap"
)

const (
	// dispatcher outcomes, labeled (tool, status)
	MetricToolCallTotal = "tool_call_total"
	// recap run results, labeled (result)
	MetricRecapUserTotal = "user_total"
	// digest delivery latency in seconds
	MetricRecapDeliverDuration = "deliver_duration_seconds"
)

const (
	TypeCounter      = "counter"
	TypeCounterVec   = "counterVec"
	TypeHistogram    = "histogram"
	TypeHistogramVec = "histogramVec"
	TypeGaugeVec     = "gaugeVec"
)

var createLock = &sync.Mutex{}
var namespace = "none"

var MetricSystemEnabled = false

var counters = make(map[string]prometheus.Counter)
var counterVecs = make(map[string]*prometheus.CounterVec)
var gaugeVecs = make(map[string]*prometheus.GaugeVec)
var histograms = make(map[string]prometheus.Histogram)
var histogramVecs = make(map[string]*prometheus.HistogramVec)

var defaultLabels prometheus.Labels

func Create(host string, env string, nameSpace string) error {
	defaultLabels = prometheus.Labels{"env": env, "instance": host}
	namespace = nameSpace
	MetricSystemEnabled = true

	var err error
	hasError := func(e error) {
		if err == nil && e != nil {
			err = e
		}
	}

	hasError(createCounterVec(SystemDispatcher, MetricToolCallTotal, []string{"tool", "status"}))
	hasError(createCounterVec(SystemRecap, MetricRecapUserTotal, []string{"result"}))
	hasError(createHistogram(SystemRecap, MetricRecapDeliverDuration))

	return err
}

func CreateMetric(metricType, subsystem, name string, labels ...string) error {
	switch metricType {
	case TypeCounter:
		return createCounter(subsystem, name)
	case TypeCounterVec:
		return createCounterVec(subsystem, name, labels)
	case TypeHistogram:
		return createHistogram(subsystem, name)
	case TypeHistogramVec:
		return createHistogramVec(subsystem, name, labels)
	case TypeGaugeVec:
		return createGaugeVec(subsystem, name, labels)
	}
	return fmt.Errorf("metric type %s is not defined", metricType)
}

func ListenAndServer(port string, url string) {
	hh := fasthttpadaptor.NewFastHTTPHandler(promhttp.Handler())
	s := xhttp.CreateServer()
	s.GET(url, hh)
	logger.Info("[metrics-server] listening...", "url", url)
	if err := s.ListenAndServe(port); err != nil {
		logger.Panic("[metrics-server] http listen error", "error", err)
	}
}

func createCounter(subsystem, name string) error {
	createLock.Lock()
	defer createLock.Unlock()
	counters[subsystem+name] = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace:   namespace,
		Subsystem:   subsystem,
		Name:        name,
		ConstLabels: defaultLabels,
	})
	return prometheus.Register(counters[subsystem+name])
}

func createCounterVec(subsystem, name string, labels []string) error {
	createLock.Lock()
	defer createLock.Unlock()
	counterVecs[subsystem+name] = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace:   namespace,
		Subsystem:   subsystem,
		Name:        name,
		ConstLabels: defaultLabels,
	}, labels)
	return prometheus.Register(counterVecs[subsystem+name])
}

func createHistogram(subsystem, name string) error {
	createLock.Lock()
	defer createLock.Unlock()
	histograms[subsystem+name] = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace:   namespace,
		Subsystem:   subsystem,
		Name:        name,
		ConstLabels: defaultLabels,
		Buckets:     prometheus.DefBuckets,
	})
	return prometheus.Register(histograms[subsystem+name])
}

func createHistogramVec(subsystem, name string, labels []string) error {
	createLock.Lock()
	defer createLock.Unlock()
	histogramVecs[subsystem+name] = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   namespace,
		Subsystem:   subsystem,
		Name:        name,
		ConstLabels: defaultLabels,
	}, labels)
	return prometheus.Register(histogramVecs[subsystem+name])
}

func createGaugeVec(subsystem, name string, labels []string) error {
	createLock.Lock()
	defer createLock.Unlock()
	gaugeVecs[subsystem+name] = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace:   namespace,
		Subsystem:   subsystem,
		Name:        name,
		ConstLabels: defaultLabels,
	}, labels)
	return prometheus.Register(gaugeVecs[subsystem+name])
}

func IncCounter(subsystem, name string) {
	AddCounter(subsystem, name, 1)
}

func AddCounter(subsystem, name string, number float64) {
	if !MetricSystemEnabled {
		return
	}
	if v, ok := counters[subsystem+name]; ok {
		v.Add(number)
		return
	}
	logger.Warn("[metrics-server] counter not found", "subsystem", subsystem, "name", name)
}

func IncCounterVec(subsystem, name string, labelValues ...string) {
	AddCounterVec(subsystem, name, 1, labelValues...)
}

func AddCounterVec(subsystem, name string, num float64, labelValues ...string) {
	if !MetricSystemEnabled {
		return
	}
	if v, ok := counterVecs[subsystem+name]; ok {
		v.WithLabelValues(labelValues...).Add(num)
		return
	}
	logger.Warn("[metrics-server] counter vec not found", "subsystem", subsystem, "name", name)
}

func IncGaugeVec(subsystem, name string, labelValues ...string) {
	AddGaugeVec(subsystem, name, 1, labelValues...)
}

func AddGaugeVec(subsystem, name string, num float64, labelValues ...string) {
	if !MetricSystemEnabled {
		return
	}
	if v, ok := gaugeVecs[subsystem+name]; ok {
		v.WithLabelValues(labelValues...).Add(num)
		return
	}
	logger.Warn("[metrics-server] gauge not found", "subsystem", subsystem, "name", name)
}

func AddHistogram(subsystem, name string, number float64) {
	if !MetricSystemEnabled {
		return
	}
	if v, ok := histograms[subsystem+name]; ok {
		v.Observe(number)
		return
	}
	logger.Warn("[metrics-server] histogram not found", "subsystem", subsystem, "name", name)
}

func AddHistogramVec(subsystem, name string, number float64, labelValues ...string) {
	if !MetricSystemEnabled {
		return
	}
	if v, ok := histogramVecs[subsystem+name]; ok {
		v.WithLabelValues(labelValues...).Observe(number)
		return
	}
	logger.Warn("[metrics-server] histogram vec not found", "subsystem", subsystem, "name", name)
}

// ObserveToolCall records one dispatcher outcome.
func ObserveToolCall(tool, status string) {
	IncCounterVec(SystemDispatcher, MetricToolCallTotal, tool, status)
}

// ObserveRecapUser records one per-user recap result ("delivered",
// "failed" or "skipped").
func ObserveRecapUser(result string) {
	IncCounterVec(SystemRecap, MetricRecapUserTotal, result)
}

func ObserveRecapDeliverDuration(seconds float64) {
	AddHistogram(SystemRecap, MetricRecapDeliverDuration, seconds)
}
