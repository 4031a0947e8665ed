package handler

import (
	"net/http"
	"time"

	"github.com/gabeVald/Personal-Task-Manager/internal/audit"
	"github.com/gabeVald/Personal-Task-Manager/internal/models"
	"github.com/gabeVald/Personal-Task-Manager/internal/util"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// TaskHandler owns the task lifecycle: creation with level-derived
// expiration, field mutations and deletion, all ownership-checked.
type TaskHandler struct {
	DB    *gorm.DB
	Audit *audit.Recorder
}

func NewTaskHandler(db *gorm.DB, recorder *audit.Recorder) *TaskHandler {
	return &TaskHandler{DB: db, Audit: recorder}
}

type createTaskReq struct {
	Title        string     `json:"title"`
	Description  string     `json:"description"`
	Tags         []string   `json:"tags"`
	Completed    bool       `json:"completed"`
	CreatedDate  *time.Time `json:"created_date"`
	ExpiredDate  *time.Time `json:"expired_date"`
	HighPriority bool       `json:"high_priority"`
	Level        string     `json:"level"`
	HasImage     bool       `json:"has_image"`
}

// CreateTask inserts a new task. When no explicit expiration is given it is
// derived from the level, anchored to created_date.
func (h *TaskHandler) CreateTask(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var req createTaskReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid request body")
		return
	}

	if req.Title == "" {
		req.Title = "New Task"
	}
	if req.Level == "" {
		req.Level = models.LevelTask
	}
	if !models.ValidLevel(req.Level) {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "level must be task, todo or gottado")
		return
	}

	createdDate := time.Now()
	if req.CreatedDate != nil && !req.CreatedDate.IsZero() {
		createdDate = *req.CreatedDate
	}

	var expiredDate time.Time
	if req.ExpiredDate != nil && !req.ExpiredDate.IsZero() {
		expiredDate = *req.ExpiredDate
	} else {
		var err error
		expiredDate, err = models.ExpirationFor(req.Level, createdDate)
		if err != nil {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, err.Error())
			return
		}
	}

	tags := req.Tags
	if tags == nil {
		tags = []string{}
	}

	task := models.Task{
		Title:         req.Title,
		Description:   req.Description,
		Tags:          tags,
		Completed:     req.Completed,
		CreatedDate:   createdDate,
		ExpiredDate:   expiredDate,
		CompletedDate: models.CompletedSentinel,
		HighPriority:  req.HighPriority,
		Level:         req.Level,
		HasImage:      req.HasImage,
		Username:      user.Username,
	}
	if err := h.DB.Create(&task).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to create task")
		return
	}

	h.Audit.Record(user.Username, "create_task", map[string]interface{}{
		"title": task.Title,
		"level": task.Level,
	})

	util.Created(c, util.Response{"task": task})
}

// listTasks is the shared query for the level-filtered list endpoints:
// incomplete tasks owned by the requester.
func (h *TaskHandler) listTasks(c *gin.Context, level, endpoint string) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	skip, limit := parsePagination(c, 50)

	q := h.DB.Where("username = ? AND completed = ?", user.Username, false)
	if level != "" {
		q = q.Where("level = ?", level)
	}

	var tasks []models.Task
	if err := q.Order("expired_date ASC, id ASC").
		Offset(skip).
		Limit(limit).
		Find(&tasks).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to list tasks")
		return
	}

	details := map[string]interface{}{"count": len(tasks)}
	if level != "" {
		details["level"] = level
	}
	h.Audit.Record(user.Username, endpoint, details)

	util.Success(c, util.Response{"tasks": tasks})
}

func (h *TaskHandler) GetAll(c *gin.Context) {
	h.listTasks(c, "", "get_all_tasks")
}

func (h *TaskHandler) GetTasks(c *gin.Context) {
	h.listTasks(c, models.LevelTask, "get_tasks")
}

func (h *TaskHandler) GetTodos(c *gin.Context) {
	h.listTasks(c, models.LevelTodo, "get_todos")
}

func (h *TaskHandler) GetGottados(c *gin.Context) {
	h.listTasks(c, models.LevelGottado, "get_gottados")
}

// GetCompleted lists completed tasks; 404 when there are none.
func (h *TaskHandler) GetCompleted(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	skip, limit := parsePagination(c, 50)

	var tasks []models.Task
	if err := h.DB.Where("username = ? AND completed = ?", user.Username, true).
		Order("completed_date DESC, id DESC").
		Offset(skip).
		Limit(limit).
		Find(&tasks).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to list tasks")
		return
	}

	h.Audit.Record(user.Username, "get_completed", map[string]interface{}{"completed": true})

	if len(tasks) == 0 {
		util.Error(c, http.StatusNotFound, util.CodeNotFound, "no completed tasks")
		return
	}
	util.Success(c, util.Response{"items": tasks})
}

// getOwnedTask loads the task and enforces ownership. Errors are already
// written to the response when the returned task is nil.
func (h *TaskHandler) getOwnedTask(c *gin.Context, requester string) *models.Task {
	id, ok := parseID(c, "id")
	if !ok {
		return nil
	}

	var task models.Task
	if err := h.DB.First(&task, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			util.Error(c, http.StatusNotFound, util.CodeNotFound, "task not found")
		} else {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to load task")
		}
		return nil
	}
	if err := assertOwner(task.Username, requester); err != nil {
		util.Error(c, http.StatusForbidden, util.CodePermission, "you don't have permission to modify this task")
		return nil
	}
	return &task
}

func (h *TaskHandler) DeleteTask(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	task := h.getOwnedTask(c, user.Username)
	if task == nil {
		return
	}

	if err := h.DB.Delete(task).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to delete task")
		return
	}

	h.Audit.Record(user.Username, "delete_task", map[string]interface{}{
		"id":    task.ID,
		"title": task.Title,
	})
	util.Success(c, util.Response{"message": "task deleted"})
}

type updateTitleReq struct {
	Title string `json:"title" binding:"required,min=3,max=50"`
}

func (h *TaskHandler) UpdateTitle(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	task := h.getOwnedTask(c, user.Username)
	if task == nil {
		return
	}

	var req updateTitleReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "title must be 3-50 characters")
		return
	}

	oldTitle := task.Title
	task.Title = req.Title
	if err := h.DB.Save(task).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to update task")
		return
	}

	h.Audit.Record(user.Username, "update_task_title", map[string]interface{}{
		"id":        task.ID,
		"old_title": oldTitle,
		"new_title": task.Title,
	})
	util.Accepted(c, util.Response{"task": task})
}

type updateDescReq struct {
	Description string `json:"description"`
}

func (h *TaskHandler) UpdateDescription(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	task := h.getOwnedTask(c, user.Username)
	if task == nil {
		return
	}

	var req updateDescReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid request body")
		return
	}

	task.Description = req.Description
	if err := h.DB.Save(task).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to update task")
		return
	}

	h.Audit.Record(user.Username, "update_task_desc", map[string]interface{}{
		"id":    task.ID,
		"title": task.Title,
	})
	util.Accepted(c, util.Response{"task": task})
}

type updateExpiredDateReq struct {
	ExpiredDate time.Time `json:"expired_date" binding:"required"`
}

// UpdateExpiredDate overrides the bucket deadline, used for keeping a task
// within its current bucket upon expiration.
func (h *TaskHandler) UpdateExpiredDate(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	task := h.getOwnedTask(c, user.Username)
	if task == nil {
		return
	}

	var req updateExpiredDateReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "expired_date is required")
		return
	}

	oldExpired := task.ExpiredDate
	task.ExpiredDate = req.ExpiredDate
	if err := h.DB.Save(task).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to update task")
		return
	}

	h.Audit.Record(user.Username, "update_task_expired_date", map[string]interface{}{
		"id":               task.ID,
		"title":            task.Title,
		"old_expired_date": oldExpired,
		"new_expired_date": task.ExpiredDate,
	})
	util.Accepted(c, util.Response{"task": task})
}

// UpdateCompletedDate stamps completed_date with the current time.
func (h *TaskHandler) UpdateCompletedDate(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	task := h.getOwnedTask(c, user.Username)
	if task == nil {
		return
	}

	oldCompleted := task.CompletedDate
	task.CompletedDate = time.Now()
	if err := h.DB.Save(task).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to update task")
		return
	}

	h.Audit.Record(user.Username, "update_task_completed_date", map[string]interface{}{
		"id":                 task.ID,
		"title":              task.Title,
		"old_completed_date": oldCompleted,
		"new_completed_date": task.CompletedDate,
	})
	util.Accepted(c, util.Response{"task": task})
}

// UpdatePriority toggles the high_priority flag.
func (h *TaskHandler) UpdatePriority(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	task := h.getOwnedTask(c, user.Username)
	if task == nil {
		return
	}

	oldPriority := task.HighPriority
	task.HighPriority = !task.HighPriority
	if err := h.DB.Save(task).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to update task")
		return
	}

	h.Audit.Record(user.Username, "update_task_priority", map[string]interface{}{
		"id":           task.ID,
		"title":        task.Title,
		"old_priority": oldPriority,
		"new_priority": task.HighPriority,
	})
	util.Accepted(c, util.Response{"task": task})
}

// UpdateCompletion toggles the completed flag. Flipping to completed stamps
// completed_date; flipping back leaves the previous completed_date in place.
func (h *TaskHandler) UpdateCompletion(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	task := h.getOwnedTask(c, user.Username)
	if task == nil {
		return
	}

	oldCompleted := task.Completed
	task.Completed = !task.Completed
	if task.Completed {
		task.CompletedDate = time.Now()
	}
	if err := h.DB.Save(task).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to update task")
		return
	}

	h.Audit.Record(user.Username, "update_task_completion", map[string]interface{}{
		"id":            task.ID,
		"title":         task.Title,
		"old_completed": oldCompleted,
		"new_completed": task.Completed,
	})
	util.Accepted(c, util.Response{"task": task})
}

type updateLevelReq struct {
	Level string `json:"level" binding:"required"`
}

// UpdateLevel moves a task between buckets and re-derives expired_date,
// anchored to the current time rather than created_date.
func (h *TaskHandler) UpdateLevel(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	task := h.getOwnedTask(c, user.Username)
	if task == nil {
		return
	}

	var req updateLevelReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "level is required")
		return
	}
	if !models.ValidLevel(req.Level) {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "level must be task, todo or gottado")
		return
	}

	expiredDate, err := models.ExpirationFor(req.Level, time.Now())
	if err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, err.Error())
		return
	}

	oldLevel := task.Level
	task.Level = req.Level
	task.ExpiredDate = expiredDate
	if err := h.DB.Save(task).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to update task")
		return
	}

	h.Audit.Record(user.Username, "update_task_level", map[string]interface{}{
		"id":        task.ID,
		"title":     task.Title,
		"old_level": oldLevel,
		"new_level": task.Level,
	})
	util.Accepted(c, util.Response{"task": task})
}
