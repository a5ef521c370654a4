package models

import "github.com/golang-jwt/jwt/v5"

// ViewerClaims is the bearer token payload identifying a calendar viewer.
type ViewerClaims struct {
	UserID string `json:"user_id"`
	jwt.RegisteredClaims
}

// SystemMetrics is a lightweight snapshot of process instrumentation.
type SystemMetrics struct {
	CacheHitRatio            float64 `json:"cache_hit_ratio"`
	CacheHits                uint64  `json:"cache_hits"`
	CacheMisses              uint64  `json:"cache_misses"`
	RequestsTotal            uint64  `json:"requests_total"`
	AverageRequestDurationMs float64 `json:"average_request_duration_ms"`
	SourceCalls              uint64  `json:"source_calls"`
	SourceFailures           uint64  `json:"source_failures"`
	AverageSourceDurationMs  float64 `json:"average_source_duration_ms"`
	Goroutines               int     `json:"goroutines"`
	GeneratedAt              string  `json:"generated_at"`
}
