package models

import "time"

// File is an uploaded attachment, optionally tied to a task owned by the
// same user. The payload is stored inline.
type File struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Filename    string    `gorm:"size:255;not null" json:"filename"`
	ContentType string    `gorm:"size:128" json:"content_type"`
	Data        []byte    `gorm:"type:blob" json:"-"`
	Size        int64     `gorm:"not null" json:"size"`
	Description string    `gorm:"size:255" json:"description,omitempty"`
	UploadDate  time.Time `gorm:"index;not null" json:"upload_date"`
	Username    string    `gorm:"size:64;index;not null" json:"username"`
	TaskID      *uint     `gorm:"index" json:"task_id,omitempty"`
}
