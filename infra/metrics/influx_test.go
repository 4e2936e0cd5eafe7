package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	coremetrics "github.com/medibox-iot/medibox/core/metrics"
)

func TestInfluxSink_RecordOutcome(t *testing.T) {
	var body string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		body = string(data)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	sink := NewInfluxSink(coremetrics.Config{
		InfluxURL:    srv.URL,
		InfluxToken:  "token",
		InfluxOrg:    "org",
		InfluxBucket: "bucket",
	})
	now := time.Now()
	ev := coremetrics.OutcomeEvent{Slot: "1", Taken: true, Elapsed: 3 * time.Second, Time: now}
	if err := sink.RecordOutcome(ev); err != nil {
		t.Fatalf("record error: %v", err)
	}
	if !strings.HasPrefix(body, "dose_outcome,") {
		t.Errorf("unexpected measurement: %q", body)
	}
	for _, want := range []string{"slot=1", "taken=true", "latency_ms=3000"} {
		if !strings.Contains(body, want) {
			t.Errorf("line %q missing %q", body, want)
		}
	}
}

func TestInfluxSink_RecordDispense(t *testing.T) {
	var body string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		body = string(data)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	sink := NewInfluxSink(coremetrics.Config{InfluxURL: srv.URL})
	if err := sink.RecordDispense(coremetrics.DispenseEvent{Slot: "2", Time: time.Now()}); err != nil {
		t.Fatalf("record error: %v", err)
	}
	if !strings.HasPrefix(body, "dispense_command,") || !strings.Contains(body, "slot=2") {
		t.Errorf("unexpected line: %q", body)
	}
}

func TestInfluxSink_RecordReconnect(t *testing.T) {
	var body string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		body = string(data)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	sink := NewInfluxSink(coremetrics.Config{InfluxURL: srv.URL})
	if err := sink.RecordReconnect(coremetrics.ReconnectEvent{Wait: 2 * time.Second, Time: time.Now()}); err != nil {
		t.Fatalf("record error: %v", err)
	}
	if !strings.HasPrefix(body, "bus_reconnect") || !strings.Contains(body, "wait_ms=2000") {
		t.Errorf("unexpected line: %q", body)
	}
}

func TestInfluxFallbackOnFailedHealthCheck(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	sink := NewInfluxSinkWithFallback(coremetrics.Config{InfluxURL: srv.URL})
	if _, ok := sink.(coremetrics.NopSink); !ok {
		t.Fatalf("expected NopSink fallback, got %T", sink)
	}
}
