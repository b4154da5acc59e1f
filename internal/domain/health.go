package domain

// ============================================================
// Health & Metrics API Responses
// ============================================================

// HealthStatus is returned by GET /healthz.
type HealthStatus struct {
	Status   string          `json:"status"` // healthy, degraded, unhealthy
	Services []ServiceHealth `json:"services"`
}

// ServiceHealth represents the health of an individual dependency.
type ServiceHealth struct {
	Name        string `json:"name"`
	Status      string `json:"status"`
	LatencyMs   int64  `json:"latencyMs"`
	LastChecked string `json:"lastChecked"`
}

// ClientMetrics is returned by GET /v1/metrics/client.
type ClientMetrics struct {
	TotalRequests  int64   `json:"totalRequests"`
	ErrorRequests  int64   `json:"errorRequests"`
	NetworkRetries int64   `json:"networkRetries"`
	ForcedLogouts  int64   `json:"forcedLogouts"`
	ErrorRate      float64 `json:"errorRate"`
	Period         string  `json:"period"`
}
