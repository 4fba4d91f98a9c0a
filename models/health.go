package models

import "time"

// HealthStatus is the JSON body of the root /health endpoint.
type HealthStatus struct {
	Status     string    `json:"status"`
	Database   string    `json:"database"`
	InstanceID string    `json:"instanceId"`
	Timestamp  time.Time `json:"timestamp"`
	Error      string    `json:"error,omitempty"`
}
