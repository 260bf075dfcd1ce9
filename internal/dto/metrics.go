package dto

import "time"

// SystemMetrics is the lightweight runtime snapshot shown on the admin
// dashboard.
type SystemMetrics struct {
	RequestsTotal            uint64    `json:"requestsTotal"`
	AverageRequestDurationMs float64   `json:"averageRequestDurationMs"`
	SubmissionsTotal         uint64    `json:"submissionsTotal"`
	PaymentsCompleted        uint64    `json:"paymentsCompleted"`
	PaymentsFailed           uint64    `json:"paymentsFailed"`
	Goroutines               int       `json:"goroutines"`
	GeneratedAt              time.Time `json:"generatedAt"`
}
