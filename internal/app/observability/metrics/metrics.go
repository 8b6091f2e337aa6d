package metrics

import (
	"log"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

// AppMetrics holds the application's metric instruments.
type AppMetrics struct {
	HTTPRequestsTotal      metric.Int64Counter
	HTTPRequestDuration    metric.Float64Histogram
	APIRequestsTotal       metric.Int64Counter
	APIRequestDuration     metric.Float64Histogram
	APIErrorsTotal         metric.Int64Counter
	ProxyRequestsTotal     metric.Int64Counter
	NotificationsTotal     metric.Int64Counter
	TemplateRenderDuration metric.Float64Histogram
}

var (
	appMetrics *AppMetrics
	once       sync.Once
)

// InitAppMetrics creates the instruments from the global MeterProvider. Only the
// first call has an effect, so it must run after the provider is installed.
func InitAppMetrics() {
	once.Do(func() {
		meter := otel.GetMeterProvider().Meter("moxc-web")
		m := &AppMetrics{}

		m.HTTPRequestsTotal = mustCounter(meter, "http_requests_total",
			"Total number of HTTP requests completed", "{request}")
		m.HTTPRequestDuration = mustHistogram(meter, "http_request_duration_seconds",
			"Duration of HTTP requests in seconds")
		m.APIRequestsTotal = mustCounter(meter, "api_requests_total",
			"Total number of requests sent to the backend API", "{request}")
		m.APIRequestDuration = mustHistogram(meter, "api_request_duration_seconds",
			"Duration of backend API requests in seconds")
		m.APIErrorsTotal = mustCounter(meter, "api_errors_total",
			"Total number of failed backend API requests", "{error}")
		m.ProxyRequestsTotal = mustCounter(meter, "proxy_requests_total",
			"Total number of requests forwarded by the dev proxy", "{request}")
		m.NotificationsTotal = mustCounter(meter, "notifications_total",
			"Total number of user notifications raised", "{notification}")
		m.TemplateRenderDuration = mustHistogram(meter, "template_render_duration_seconds",
			"Duration of page rendering in seconds")

		log.Println("Application metrics instruments initialized.")
		appMetrics = m
	})
}

// Get returns the AppMetrics instance, initializing it against whatever
// MeterProvider is currently installed (a no-op one in tests).
func Get() *AppMetrics {
	InitAppMetrics()
	return appMetrics
}

func mustCounter(meter metric.Meter, name, desc, unit string) metric.Int64Counter {
	c, err := meter.Int64Counter(name, metric.WithDescription(desc), metric.WithUnit(unit))
	if err != nil {
		log.Fatalf("Metrics: Failed to create %s: %v", name, err)
	}
	return c
}

func mustHistogram(meter metric.Meter, name, desc string) metric.Float64Histogram {
	h, err := meter.Float64Histogram(name, metric.WithDescription(desc), metric.WithUnit("s"))
	if err != nil {
		log.Fatalf("Metrics: Failed to create %s: %v", name, err)
	}
	return h
}
