package handler

import (
	"net/http"

	"github.com/gabeVald/Personal-Task-Manager/internal/audit"
	"github.com/gabeVald/Personal-Task-Manager/internal/models"
	"github.com/gabeVald/Personal-Task-Manager/internal/util"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// LogHandler serves the audit log listing endpoints.
type LogHandler struct {
	DB    *gorm.DB
	Audit *audit.Recorder
}

func NewLogHandler(db *gorm.DB, recorder *audit.Recorder) *LogHandler {
	return &LogHandler{DB: db, Audit: recorder}
}

// listLogs runs the shared query: optional username scope, optional date
// range, newest first.
func (h *LogHandler) listLogs(c *gin.Context, username string) ([]models.Log, bool) {
	skip, limit := parsePagination(c, 50)

	start, end, hasStart, hasEnd, err := parseDateRange(c)
	if err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, err.Error())
		return nil, false
	}

	q := h.DB.Model(&models.Log{})
	if username != "" {
		q = q.Where("username = ?", username)
	}
	if hasStart {
		q = q.Where("time >= ?", start)
	}
	if hasEnd {
		q = q.Where("time < ?", end)
	}

	var logs []models.Log
	if err := q.Order("time DESC, id DESC").
		Offset(skip).
		Limit(limit).
		Find(&logs).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to list logs")
		return nil, false
	}
	return logs, true
}

// GetAll lists every log entry. Admin only.
func (h *LogHandler) GetAll(c *gin.Context) {
	admin, ok := currentUser(c)
	if !ok {
		return
	}

	logs, ok := h.listLogs(c, "")
	if !ok {
		return
	}

	h.Audit.Record(admin.Username, "get_all_logs", map[string]interface{}{"action": "admin_view_all_logs"})
	util.Success(c, util.Response{"logs": logs})
}

// GetUserLogs lists one user's log entries. Admin only.
func (h *LogHandler) GetUserLogs(c *gin.Context) {
	admin, ok := currentUser(c)
	if !ok {
		return
	}
	username := c.Param("username")

	var count int64
	if err := h.DB.Model(&models.User{}).
		Where("username = ?", username).
		Count(&count).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to look up user")
		return
	}
	if count == 0 {
		util.Error(c, http.StatusNotFound, util.CodeNotFound, "user not found")
		return
	}

	logs, ok := h.listLogs(c, username)
	if !ok {
		return
	}

	h.Audit.Record(admin.Username, "get_user_logs", map[string]interface{}{
		"action":      "admin_view_user_logs",
		"target_user": username,
	})
	util.Success(c, util.Response{"logs": logs})
}

// GetMyLogs lists the requester's own log entries.
func (h *LogHandler) GetMyLogs(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	logs, ok := h.listLogs(c, user.Username)
	if !ok {
		return
	}

	h.Audit.Record(user.Username, "get_my_logs", map[string]interface{}{"action": "user_view_own_logs"})
	util.Success(c, util.Response{"logs": logs})
}
