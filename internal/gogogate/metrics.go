package gogogate

import (
	"context"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// MetricsCollector scrapes the controller on every Prometheus collection.
type MetricsCollector struct {
	client *Client

	doorState   *prometheus.GaugeVec
	temperature *prometheus.GaugeVec
	lastSuccess prometheus.Gauge
	success     prometheus.Gauge
}

func NewMetricsCollector(client *Client) *MetricsCollector {
	return &MetricsCollector{
		client: client,
		doorState: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "gogogate2_door_state",
			Help: "Door status code (0=closed, 1=pulse, 2=open, 4=starting)",
		}, []string{"door"}),
		temperature: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "gogogate2_door_temperature_fahrenheit",
			Help: "Door sensor temperature in Fahrenheit (0 when no sensor)",
		}, []string{"door"}),
		lastSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "gogogate2_last_success_timestamp_seconds",
			Help: "Last successful scrape timestamp (epoch seconds)",
		}),
		success: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "gogogate2_scrape_success",
			Help: "Last scrape success (1=ok, 0=error)",
		}),
	}
}

func (c *MetricsCollector) Describe(ch chan<- *prometheus.Desc) {
	c.doorState.Describe(ch)
	c.temperature.Describe(ch)
	c.lastSuccess.Describe(ch)
	c.success.Describe(ch)
}

func (c *MetricsCollector) Collect(ch chan<- prometheus.Metric) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	states, err := c.client.Status(ctx)
	if err != nil {
		c.success.Set(0)
		c.collectAll(ch)
		return
	}
	for i, state := range states {
		c.doorState.WithLabelValues(strconv.Itoa(i + 1)).Set(float64(state))
	}

	temps, err := c.client.Temperatures(ctx)
	if err != nil {
		c.success.Set(0)
		c.collectAll(ch)
		return
	}
	for i, fahrenheit := range temps {
		c.temperature.WithLabelValues(strconv.Itoa(i + 1)).Set(fahrenheit)
	}

	c.success.Set(1)
	c.lastSuccess.Set(float64(time.Now().Unix()))
	c.collectAll(ch)
}

func (c *MetricsCollector) collectAll(ch chan<- prometheus.Metric) {
	c.doorState.Collect(ch)
	c.temperature.Collect(ch)
	c.lastSuccess.Collect(ch)
	c.success.Collect(ch)
}
