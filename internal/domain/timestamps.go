package domain

import "time"

// Timestamps carries creation and modification times for persisted records.
type Timestamps struct {
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Touch sets UpdatedAt to the current time.
func (t *Timestamps) Touch() {
	t.UpdatedAt = time.Now().UTC()
}

// InitTimestamps sets both CreatedAt and UpdatedAt to now.
func (t *Timestamps) InitTimestamps() {
	now := time.Now().UTC()
	t.CreatedAt = now
	t.UpdatedAt = now
}
