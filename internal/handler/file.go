package handler

import (
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gabeVald/Personal-Task-Manager/internal/audit"
	"github.com/gabeVald/Personal-Task-Manager/internal/models"
	"github.com/gabeVald/Personal-Task-Manager/internal/util"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// FileHandler manages task attachments.
type FileHandler struct {
	DB        *gorm.DB
	Audit     *audit.Recorder
	MaxSizeMB int
}

func NewFileHandler(db *gorm.DB, recorder *audit.Recorder, maxSizeMB int) *FileHandler {
	return &FileHandler{DB: db, Audit: recorder, MaxSizeMB: maxSizeMB}
}

// fileResp is the metadata projection without the binary payload. Data is
// only populated (as a base64 data URL) when include_data is requested.
type fileResp struct {
	ID          uint      `json:"id"`
	Filename    string    `json:"filename"`
	ContentType string    `json:"content_type"`
	Size        int64     `json:"size"`
	Description string    `json:"description,omitempty"`
	UploadDate  time.Time `json:"upload_date"`
	Username    string    `json:"username"`
	TaskID      *uint     `json:"task_id,omitempty"`
	Data        string    `json:"data,omitempty"`
}

func toFileResp(f *models.File, includeData bool) fileResp {
	resp := fileResp{
		ID:          f.ID,
		Filename:    f.Filename,
		ContentType: f.ContentType,
		Size:        f.Size,
		Description: f.Description,
		UploadDate:  f.UploadDate,
		Username:    f.Username,
		TaskID:      f.TaskID,
	}
	if includeData && len(f.Data) > 0 {
		// data URL usable directly in an img src
		resp.Data = fmt.Sprintf("data:%s;base64,%s", f.ContentType, base64.StdEncoding.EncodeToString(f.Data))
	}
	return resp
}

// GetAll lists the requester's files, newest first.
func (h *FileHandler) GetAll(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	skip, limit := parsePagination(c, 20)
	includeData := c.Query("include_data") == "true"

	q := h.DB.Where("username = ?", user.Username)
	if !includeData {
		// skip the blob to keep list responses small
		q = q.Omit("data")
	}

	var files []models.File
	if err := q.Order("upload_date DESC").
		Offset(skip).
		Limit(limit).
		Find(&files).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to list files")
		return
	}

	h.Audit.Record(user.Username, "get_all_files", map[string]interface{}{
		"count":        len(files),
		"include_data": includeData,
	})

	items := make([]fileResp, 0, len(files))
	for i := range files {
		items = append(items, toFileResp(&files[i], includeData))
	}
	util.Success(c, util.Response{"files": items})
}

// GetByTask lists files attached to one task, ownership-checked through the
// task itself.
func (h *FileHandler) GetByTask(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	taskID, ok := parseID(c, "id")
	if !ok {
		return
	}
	includeData := c.Query("include_data") == "true"

	var task models.Task
	if err := h.DB.First(&task, taskID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			util.Error(c, http.StatusNotFound, util.CodeNotFound, "task not found")
		} else {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to load task")
		}
		return
	}
	if err := assertOwner(task.Username, user.Username); err != nil {
		util.Error(c, http.StatusForbidden, util.CodePermission, "you don't have permission to access this task")
		return
	}

	q := h.DB.Where("task_id = ? AND username = ?", taskID, user.Username)
	if !includeData {
		q = q.Omit("data")
	}
	var files []models.File
	if err := q.Find(&files).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to list files")
		return
	}

	h.Audit.Record(user.Username, "get_files_by_task", map[string]interface{}{
		"task_id":      taskID,
		"include_data": includeData,
	})

	items := make([]fileResp, 0, len(files))
	for i := range files {
		items = append(items, toFileResp(&files[i], includeData))
	}
	util.Success(c, util.Response{"files": items})
}

// Upload stores a multipart file. The whole payload is buffered in memory
// before persisting.
func (h *FileHandler) Upload(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	fh, err := c.FormFile("file")
	if err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "file field is required")
		return
	}
	if h.MaxSizeMB > 0 && fh.Size > int64(h.MaxSizeMB)<<20 {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam,
			fmt.Sprintf("file exceeds %d MB limit", h.MaxSizeMB))
		return
	}

	src, err := fh.Open()
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to read upload")
		return
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to read upload")
		return
	}

	file := models.File{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Data:        data,
		Size:        int64(len(data)),
		Description: c.PostForm("description"),
		UploadDate:  time.Now(),
		Username:    user.Username,
	}

	// optional task reference, validated for existence and ownership
	if taskIDStr := c.PostForm("task_id"); taskIDStr != "" {
		taskID, err := strconv.Atoi(taskIDStr)
		if err != nil || taskID <= 0 {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid task id format")
			return
		}

		var task models.Task
		if err := h.DB.First(&task, taskID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				util.Error(c, http.StatusNotFound, util.CodeNotFound, "task not found")
			} else {
				util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to load task")
			}
			return
		}
		if err := assertOwner(task.Username, user.Username); err != nil {
			util.Error(c, http.StatusForbidden, util.CodePermission, "you don't have permission to add files to this task")
			return
		}
		id := uint(taskID)
		file.TaskID = &id
	}

	if err := h.DB.Create(&file).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to save file")
		return
	}

	h.Audit.Record(user.Username, "upload_file", map[string]interface{}{
		"filename": file.Filename,
		"size":     file.Size,
		"task_id":  file.TaskID,
	})

	util.Created(c, util.Response{"file": toFileResp(&file, false)})
}

// Delete removes one file owned by the requester.
func (h *FileHandler) Delete(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var file models.File
	if err := h.DB.Omit("data").First(&file, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			util.Error(c, http.StatusNotFound, util.CodeNotFound, "file not found")
		} else {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to load file")
		}
		return
	}
	if err := assertOwner(file.Username, user.Username); err != nil {
		util.Error(c, http.StatusForbidden, util.CodePermission, "you don't have permission to delete this file")
		return
	}

	if err := h.DB.Delete(&models.File{}, id).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to delete file")
		return
	}

	h.Audit.Record(user.Username, "delete_file", map[string]interface{}{
		"file_id":  id,
		"filename": file.Filename,
	})
	util.Success(c, util.Response{"message": "file deleted", "id": id})
}
