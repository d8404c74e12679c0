package relay

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// pendingThreshold is the queue depth reported as a warning.
const pendingThreshold = defaultQueueSize / 2

type HealthStatus struct {
	Healthy       bool            `json:"healthy"`
	NATSConnected bool            `json:"nats_connected"`
	WorkerActive  bool            `json:"worker_active"`
	PendingEvents int             `json:"pending_events"`
	Counters      CounterSnapshot `json:"counters"`
	Errors        []string        `json:"errors"`
}

// Connector reports the state of the bus connection.
type Connector interface {
	Connected() bool
}

type HealthChecker struct {
	relay    *Relay
	conn     Connector
	counters *Counters
}

func NewHealthChecker(relay *Relay, conn Connector, counters *Counters) *HealthChecker {
	return &HealthChecker{
		relay:    relay,
		conn:     conn,
		counters: counters,
	}
}

func (h *HealthChecker) Check() HealthStatus {
	status := HealthStatus{
		Healthy: true,
		Errors:  []string{},
	}

	status.NATSConnected = h.conn.Connected()
	if !status.NATSConnected {
		status.Healthy = false
		status.Errors = append(status.Errors, "NATS disconnected")
	}

	status.WorkerActive = h.relay.Running()
	if !status.WorkerActive {
		status.Healthy = false
		status.Errors = append(status.Errors, "relay worker not active")
	}

	status.PendingEvents = h.relay.Pending()
	if status.PendingEvents > pendingThreshold {
		status.Errors = append(status.Errors, fmt.Sprintf("high pending event count: %d", status.PendingEvents))
	}

	if h.counters != nil {
		status.Counters = h.counters.Snapshot()
	}
	return status
}

// ServeHTTP writes the health status as JSON, with 503 when unhealthy.
func (h *HealthChecker) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	status := h.Check()

	w.Header().Set("Content-Type", "application/json")
	if !status.Healthy {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	_ = json.NewEncoder(w).Encode(status)
}
