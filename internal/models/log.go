package models

import "time"

// Log records a significant action for auditing. Append-only, never mutated
// or deleted by normal operation.
type Log struct {
	ID       uint      `gorm:"primaryKey" json:"id"`
	Username string    `gorm:"size:64;index;not null" json:"username"`
	Endpoint string    `gorm:"size:64;index;not null" json:"endpoint"`
	Time     time.Time `gorm:"index;not null" json:"time"`
	Details  string    `gorm:"size:2048" json:"details"`
}
