// Package audit appends immutable log entries for every significant action.
// Writes are best-effort: a failed audit write never fails the operation it
// accompanies.
package audit

import (
	"encoding/json"
	"log/slog"
	"time"

	"github.com/gabeVald/Personal-Task-Manager/internal/models"

	"gorm.io/gorm"
)

// Recorder writes audit entries to the logs table.
type Recorder struct {
	DB *gorm.DB
}

func NewRecorder(db *gorm.DB) *Recorder {
	return &Recorder{DB: db}
}

// Record appends one entry. Details are serialized to JSON; serialization
// and insert errors are logged and swallowed.
func (r *Recorder) Record(username, endpoint string, details map[string]interface{}) {
	var detailStr string
	if details != nil {
		b, err := json.Marshal(details)
		if err != nil {
			slog.Warn("audit: marshal details", "endpoint", endpoint, "err", err)
		} else {
			detailStr = string(b)
		}
	}

	entry := models.Log{
		Username: username,
		Endpoint: endpoint,
		Time:     time.Now(),
		Details:  detailStr,
	}
	if err := r.DB.Create(&entry).Error; err != nil {
		slog.Warn("audit: write log entry", "endpoint", endpoint, "err", err)
	}
}
