package gogogate

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
)

func TestMetricsCollectorScrape(t *testing.T) {
	device := newFakeDevice()
	client, _ := newTestClient(t, device)

	registry := prometheus.NewPedanticRegistry()
	registry.MustRegister(NewMetricsCollector(client))

	families, err := registry.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}

	values := map[string]map[string]float64{}
	for _, family := range families {
		byLabel := map[string]float64{}
		for _, metric := range family.GetMetric() {
			label := ""
			for _, pair := range metric.GetLabel() {
				if pair.GetName() == "door" {
					label = pair.GetValue()
				}
			}
			byLabel[label] = metric.GetGauge().GetValue()
		}
		values[family.GetName()] = byLabel
	}

	if got := values["gogogate2_scrape_success"][""]; got != 1 {
		t.Fatalf("scrape_success = %v, want 1", got)
	}
	if got := values["gogogate2_door_state"]["2"]; got != float64(DoorOpen) {
		t.Fatalf("door_state{door=2} = %v, want %v", got, float64(DoorOpen))
	}
	if got := values["gogogate2_door_temperature_fahrenheit"]["3"]; got != 212 {
		t.Fatalf("temperature{door=3} = %v, want 212", got)
	}

	// The collector scraped an unauthenticated client, so it must have
	// gone through the login path on its own.
	login, _, _, _ := device.counts()
	if login == 0 {
		t.Fatalf("expected collector scrape to log in")
	}
}

func TestMetricsCollectorScrapeFailure(t *testing.T) {
	device := newFakeDevice()
	device.rejectLogin = true
	client, _ := newTestClient(t, device)

	registry := prometheus.NewPedanticRegistry()
	registry.MustRegister(NewMetricsCollector(client))

	families, err := registry.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}

	for _, family := range families {
		if family.GetName() != "gogogate2_scrape_success" {
			continue
		}
		if got := family.GetMetric()[0].GetGauge().GetValue(); got != 0 {
			t.Fatalf("scrape_success = %v, want 0", got)
		}
		return
	}
	t.Fatalf("gogogate2_scrape_success not found")
}
