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

// ServiceMetrics is returned by GET /v1/admin/metrics.
type ServiceMetrics struct {
	SnapshotFetches  int64   `json:"snapshotFetches"`
	CacheHitRate     float64 `json:"cacheHitRate"`
	StoreErrors      int64   `json:"storeErrors"`
	Mutations        int64   `json:"mutations"`
	FailedMutations  int64   `json:"failedMutations"`
	MutationFailRate float64 `json:"mutationFailRate"`
	Period           string  `json:"period"`
}

// ============================================================
// Generic API Response wrappers
// ============================================================

// Page is one page of a filtered, sorted table.
type Page[T any] struct {
	Items      []T  `json:"items"`
	Total      int  `json:"total"`
	Page       int  `json:"page"`
	PageSize   int  `json:"pageSize"`
	TotalPages int  `json:"totalPages"`
	HasMore    bool `json:"hasMore"`
}

// SuccessResponse is the result indicator of an admin mutation.
type SuccessResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	ID      string `json:"id,omitempty"`
}
