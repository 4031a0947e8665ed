package handler_test

import (
	"net/http"
	"testing"

	"github.com/gabeVald/Personal-Task-Manager/internal/models"
)

func TestSignup_DuplicateUsername(t *testing.T) {
	r, _ := setupEnv(t)
	signupAndSignIn(t, r, "alice", "password123")

	w := doJSON(t, r, http.MethodPost, "/api/users/signup", "", map[string]string{
		"username": "alice",
		"password": "different-pass",
	})
	if w.Code != http.StatusConflict {
		t.Errorf("duplicate signup status = %d, want 409", w.Code)
	}
}

func TestSignup_ValidationRules(t *testing.T) {
	r, _ := setupEnv(t)

	cases := []struct {
		name string
		body map[string]string
	}{
		{"short username", map[string]string{"username": "al", "password": "password123"}},
		{"short password", map[string]string{"username": "alice", "password": "short"}},
		{"bad email", map[string]string{"username": "alice", "password": "password123", "email": "not-an-email"}},
	}
	for _, tc := range cases {
		w := doJSON(t, r, http.MethodPost, "/api/users/signup", "", tc.body)
		if w.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want 400", tc.name, w.Code)
		}
	}
}

func TestSignIn_WrongPassword(t *testing.T) {
	r, _ := setupEnv(t)
	signupAndSignIn(t, r, "alice", "password123")

	w := doJSON(t, r, http.MethodPost, "/api/users/sign-in", "", map[string]string{
		"username": "alice",
		"password": "wrong-password",
	})
	if w.Code != http.StatusUnauthorized {
		t.Errorf("wrong password status = %d, want 401", w.Code)
	}

	w = doJSON(t, r, http.MethodPost, "/api/users/sign-in", "", map[string]string{
		"username": "nobody",
		"password": "password123",
	})
	if w.Code != http.StatusUnauthorized {
		t.Errorf("unknown user status = %d, want 401", w.Code)
	}
}

func TestSignIn_FailedAttemptAudited(t *testing.T) {
	r, db := setupEnv(t)
	signupAndSignIn(t, r, "alice", "password123")

	doJSON(t, r, http.MethodPost, "/api/users/sign-in", "", map[string]string{
		"username": "alice",
		"password": "wrong-password",
	})

	var count int64
	db.Model(&models.Log{}).
		Where("username = ? AND endpoint = ?", "alice", "sign-in").
		Where("details LIKE ?", "%failed_login_attempt%").
		Count(&count)
	if count != 1 {
		t.Errorf("failed login audit rows = %d, want 1", count)
	}
}

func TestSignup_BootstrapAdminRole(t *testing.T) {
	r, db := setupEnv(t)
	signupAndSignIn(t, r, "admin", "password123")
	signupAndSignIn(t, r, "alice", "password123")

	var admin, alice models.User
	if err := db.Where("username = ?", "admin").First(&admin).Error; err != nil {
		t.Fatalf("load admin: %v", err)
	}
	if err := db.Where("username = ?", "alice").First(&alice).Error; err != nil {
		t.Fatalf("load alice: %v", err)
	}
	if admin.Role != models.RoleAdmin {
		t.Errorf("bootstrap user role = %q, want admin", admin.Role)
	}
	if alice.Role != models.RoleUser {
		t.Errorf("regular user role = %q, want user", alice.Role)
	}
}

func TestProtectedRoutes_RequireToken(t *testing.T) {
	r, _ := setupEnv(t)

	w := doJSON(t, r, http.MethodGet, "/api/tasks/all", "", nil)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("no token status = %d, want 401", w.Code)
	}

	w = doJSON(t, r, http.MethodGet, "/api/tasks/all", "not-a-jwt", nil)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("garbage token status = %d, want 401", w.Code)
	}
}

func TestAdminEndpoints_RoleGated(t *testing.T) {
	r, db := setupEnv(t)
	adminToken := signupAndSignIn(t, r, "admin", "password123")
	aliceToken := signupAndSignIn(t, r, "alice", "password123")

	// regular users are rejected
	w := doJSON(t, r, http.MethodGet, "/api/users/all", aliceToken, nil)
	if w.Code != http.StatusForbidden {
		t.Errorf("non-admin list status = %d, want 403", w.Code)
	}

	w = doJSON(t, r, http.MethodGet, "/api/users/all", adminToken, nil)
	users := dataOf(t, w)["users"].([]interface{})
	if len(users) != 2 {
		t.Errorf("got %d users, want 2", len(users))
	}
	for _, raw := range users {
		if _, leaked := raw.(map[string]interface{})["password_hash"]; leaked {
			t.Error("password hash leaked in user listing")
		}
	}

	// role promotion
	w = doJSON(t, r, http.MethodPatch, "/api/users/alice/role", adminToken,
		map[string]string{"role": "admin"})
	if w.Code != http.StatusOK {
		t.Fatalf("promote status = %d, body %s", w.Code, w.Body.String())
	}
	var alice models.User
	if err := db.Where("username = ?", "alice").First(&alice).Error; err != nil {
		t.Fatalf("load alice: %v", err)
	}
	if alice.Role != models.RoleAdmin {
		t.Errorf("alice role = %q, want admin after promotion", alice.Role)
	}

	// self-downgrade is refused
	w = doJSON(t, r, http.MethodPatch, "/api/users/admin/role", adminToken,
		map[string]string{"role": "user"})
	if w.Code != http.StatusBadRequest {
		t.Errorf("self-downgrade status = %d, want 400", w.Code)
	}

	// delete
	w = doJSON(t, r, http.MethodDelete, "/api/users/alice", adminToken, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("delete status = %d, body %s", w.Code, w.Body.String())
	}
	var count int64
	db.Model(&models.User{}).Where("username = ?", "alice").Count(&count)
	if count != 0 {
		t.Errorf("alice still present after delete")
	}
}
