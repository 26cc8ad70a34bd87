package alert

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"
)

type mockMetrics struct {
	mu       sync.Mutex
	sent     int
	failures int
}

func (m *mockMetrics) AlertSentInc() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent++
}

func (m *mockMetrics) AlertFailureInc() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failures++
}

func (m *mockMetrics) counts() (int, int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sent, m.failures
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("condition not met within deadline")
}

func TestNew_EmptyURLDisabled(t *testing.T) {
	n := New("", time.Second, nil)
	if n != nil {
		t.Error("expected nil notifier for empty URL")
	}

	// Nil notifier must be safe to call.
	n.Notify(Alert{PredictionID: "x"})
}

func TestNotify_DeliversPayload(t *testing.T) {
	received := make(chan Alert, 1)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var a Alert
		if err := json.NewDecoder(r.Body).Decode(&a); err != nil {
			t.Errorf("failed to decode alert payload: %v", err)
		}
		received <- a
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	metrics := &mockMetrics{}
	n := New(server.URL, 2*time.Second, metrics)

	n.Notify(Alert{
		PredictionID: "pred-1",
		Timestamp:    time.Now().UTC(),
		Reason:       ReasonHighRisk,
		FraudScore:   0.93,
		RiskLevel:    "very high",
		Amount:       1200.50,
		Threshold:    0.5,
	})

	select {
	case a := <-received:
		if a.PredictionID != "pred-1" {
			t.Errorf("unexpected prediction id %s", a.PredictionID)
		}
		if a.Reason != ReasonHighRisk {
			t.Errorf("unexpected reason %s", a.Reason)
		}
		if a.FraudScore != 0.93 {
			t.Errorf("unexpected fraud score %f", a.FraudScore)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("alert was not delivered")
	}

	waitFor(t, func() bool {
		sent, _ := metrics.counts()
		return sent == 1
	})
}

func TestNotify_FailureCountedNotSurfaced(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	metrics := &mockMetrics{}
	n := New(server.URL, 2*time.Second, metrics)

	// Notify never returns an error, even when delivery fails.
	n.Notify(Alert{PredictionID: "pred-2", Reason: ReasonLargeAmount})

	waitFor(t, func() bool {
		_, failures := metrics.counts()
		return failures == 1
	})

	sent, _ := metrics.counts()
	if sent != 0 {
		t.Errorf("expected no successful deliveries, got %d", sent)
	}
}

func TestNotify_UnreachableEndpoint(t *testing.T) {
	metrics := &mockMetrics{}
	n := New("http://127.0.0.1:1", 500*time.Millisecond, metrics)

	n.Notify(Alert{PredictionID: "pred-3", Reason: ReasonHighRisk})

	waitFor(t, func() bool {
		_, failures := metrics.counts()
		return failures == 1
	})
}
