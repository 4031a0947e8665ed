package handler

import (
	"net/http"

	"github.com/gabeVald/Personal-Task-Manager/internal/audit"
	"github.com/gabeVald/Personal-Task-Manager/internal/models"
	"github.com/gabeVald/Personal-Task-Manager/internal/util"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// UserHandler holds the admin-only user management endpoints. Role gating
// happens in middleware.RequireAdmin.
type UserHandler struct {
	DB    *gorm.DB
	Audit *audit.Recorder
}

func NewUserHandler(db *gorm.DB, recorder *audit.Recorder) *UserHandler {
	return &UserHandler{DB: db, Audit: recorder}
}

// GetAll lists every user. Password hashes never serialize (json:"-").
func (h *UserHandler) GetAll(c *gin.Context) {
	admin, ok := currentUser(c)
	if !ok {
		return
	}

	var users []models.User
	if err := h.DB.Order("username ASC").Find(&users).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to list users")
		return
	}

	h.Audit.Record(admin.Username, "get_all_users", map[string]interface{}{"action": "admin_view_all_users"})
	util.Success(c, util.Response{"users": users})
}

type roleUpdateReq struct {
	Role string `json:"role" binding:"required"`
}

// UpdateRole changes another user's role. Admins cannot downgrade
// themselves.
func (h *UserHandler) UpdateRole(c *gin.Context) {
	admin, ok := currentUser(c)
	if !ok {
		return
	}
	username := c.Param("username")

	var req roleUpdateReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "role is required")
		return
	}
	if !models.ValidRole(req.Role) {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "role must be 'user' or 'admin'")
		return
	}
	if username == admin.Username && req.Role != models.RoleAdmin {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "admins cannot downgrade their own role")
		return
	}

	var user models.User
	if err := h.DB.Where("username = ?", username).First(&user).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			util.Error(c, http.StatusNotFound, util.CodeNotFound, "user not found")
		} else {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to look up user")
		}
		return
	}

	oldRole := user.Role
	user.Role = req.Role
	if err := h.DB.Save(&user).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to update user")
		return
	}

	h.Audit.Record(admin.Username, "update_user_role", map[string]interface{}{
		"target_user": username,
		"old_role":    oldRole,
		"new_role":    user.Role,
	})
	util.Success(c, util.Response{"message": "user role updated"})
}

// Delete removes a user account.
func (h *UserHandler) Delete(c *gin.Context) {
	admin, ok := currentUser(c)
	if !ok {
		return
	}
	username := c.Param("username")

	var user models.User
	if err := h.DB.Where("username = ?", username).First(&user).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			util.Error(c, http.StatusNotFound, util.CodeNotFound, "user not found")
		} else {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to look up user")
		}
		return
	}

	if err := h.DB.Delete(&user).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to delete user")
		return
	}

	h.Audit.Record(admin.Username, "delete_user", map[string]interface{}{"target_user": username})
	util.Success(c, util.Response{"message": "user deleted"})
}
