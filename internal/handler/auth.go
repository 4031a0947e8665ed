package handler

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gabeVald/Personal-Task-Manager/internal/audit"
	"github.com/gabeVald/Personal-Task-Manager/internal/config"
	"github.com/gabeVald/Personal-Task-Manager/internal/models"
	"github.com/gabeVald/Personal-Task-Manager/internal/util"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// AuthHandler covers signup, sign-in and logout.
type AuthHandler struct {
	DB    *gorm.DB
	Audit *audit.Recorder
	Cfg   *config.Config
}

func NewAuthHandler(db *gorm.DB, recorder *audit.Recorder, cfg *config.Config) *AuthHandler {
	return &AuthHandler{DB: db, Audit: recorder, Cfg: cfg}
}

type signupReq struct {
	Username string `json:"username" binding:"required,min=3,max=32"`
	Password string `json:"password" binding:"required,min=8,max=64"`
	Email    string `json:"email" binding:"omitempty,email"`
}

// isBootstrapAdmin reports whether a username is configured to receive the
// admin role at signup.
func (h *AuthHandler) isBootstrapAdmin(username string) bool {
	for _, name := range h.Cfg.App.BootstrapAdmins {
		if name == username {
			return true
		}
	}
	return false
}

func (h *AuthHandler) Signup(c *gin.Context) {
	var req signupReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid signup request")
		return
	}
	req.Username = strings.TrimSpace(req.Username)

	hash, err := util.HashPassword(req.Password, h.Cfg.Security.BcryptCost)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to hash password")
		return
	}

	role := models.RoleUser
	if h.isBootstrapAdmin(req.Username) {
		role = models.RoleAdmin
	}

	user := models.User{
		Username:     req.Username,
		PasswordHash: hash,
		Email:        req.Email,
		Role:         role,
	}
	// the unique index decides duplicates, so two concurrent signups for the
	// same name cannot both pass a lookup and then collide on insert
	if err := h.DB.Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			util.Error(c, http.StatusConflict, util.CodeConflict, "user already exists")
		} else {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to create user")
		}
		return
	}

	h.Audit.Record(user.Username, "signup", map[string]interface{}{
		"email": user.Email,
		"role":  user.Role,
	})

	util.Created(c, util.Response{
		"message": "user created",
		"user":    user,
	})
}

type signInReq struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// SignIn verifies credentials and issues a bearer token. A failed attempt is
// audited and answered with a proper 401.
func (h *AuthHandler) SignIn(c *gin.Context) {
	var req signInReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid sign-in request")
		return
	}
	req.Username = strings.TrimSpace(req.Username)

	var user models.User
	if err := h.DB.Where("username = ?", req.Username).First(&user).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			util.Error(c, http.StatusUnauthorized, util.CodeAuth, "username or password is not valid")
		} else {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to look up user")
		}
		return
	}

	if !util.VerifyPassword(req.Password, user.PasswordHash) {
		h.Audit.Record(req.Username, "sign-in", map[string]interface{}{"action": "failed_login_attempt"})
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "username or password is not valid")
		return
	}

	ttl := time.Duration(h.Cfg.JWT.ExpireHours) * time.Hour
	token, err := util.GenerateToken(h.Cfg.JWT.Secret, h.Cfg.JWT.Issuer, user.Username, user.Role, ttl)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to generate token")
		return
	}

	h.Audit.Record(user.Username, "sign-in", map[string]interface{}{"action": "successful_login"})

	util.Success(c, util.Response{
		"access_token": token,
		"token_type":   "Bearer",
		"user": gin.H{
			"username": user.Username,
			"role":     user.Role,
		},
	})
}

// Logout only audits; tokens stay valid until they expire.
func (h *AuthHandler) Logout(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	h.Audit.Record(user.Username, "logout", map[string]interface{}{"action": "user_logout"})
	util.Success(c, util.Response{"message": "logged out"})
}
