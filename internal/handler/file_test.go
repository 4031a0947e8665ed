package handler_test

import (
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/gabeVald/Personal-Task-Manager/internal/models"
)

func TestFileUpload_AndList(t *testing.T) {
	r, _ := setupEnv(t)
	token := signupAndSignIn(t, r, "alice", "password123")

	w := doUpload(t, r, "/api/files/upload", token, "receipt.png", []byte("png-bytes"),
		map[string]string{"description": "march receipt"})
	if w.Code != http.StatusCreated {
		t.Fatalf("upload status = %d, body %s", w.Code, w.Body.String())
	}
	file := dataOf(t, w)["file"].(map[string]interface{})
	if file["filename"] != "receipt.png" {
		t.Errorf("filename = %v, want receipt.png", file["filename"])
	}
	if file["size"].(float64) != 9 {
		t.Errorf("size = %v, want 9", file["size"])
	}
	if _, present := file["data"]; present {
		t.Error("upload response carries blob data, want metadata only")
	}

	// listing without include_data omits the payload
	w = doJSON(t, r, http.MethodGet, "/api/files/all", token, nil)
	files := dataOf(t, w)["files"].([]interface{})
	if len(files) != 1 {
		t.Fatalf("got %d files, want 1", len(files))
	}
	if _, present := files[0].(map[string]interface{})["data"]; present {
		t.Error("list response carries blob data without include_data")
	}

	// include_data returns a base64 data URL
	w = doJSON(t, r, http.MethodGet, "/api/files/all?include_data=true", token, nil)
	files = dataOf(t, w)["files"].([]interface{})
	data, _ := files[0].(map[string]interface{})["data"].(string)
	if !strings.HasPrefix(data, "data:") || !strings.Contains(data, ";base64,") {
		t.Errorf("data = %q, want base64 data URL", data)
	}
}

func TestFileUpload_TaskAttachment(t *testing.T) {
	r, _ := setupEnv(t)
	aliceToken := signupAndSignIn(t, r, "alice", "password123")
	bobToken := signupAndSignIn(t, r, "bob", "password123")

	w := doJSON(t, r, http.MethodPost, "/api/tasks/create", aliceToken, map[string]interface{}{
		"description": "task with attachment",
		"level":       "task",
	})
	task := dataOf(t, w)["task"].(map[string]interface{})
	taskID := uint(task["id"].(float64))

	// attaching to another user's task is refused
	w = doUpload(t, r, "/api/files/upload", bobToken, "sneaky.txt", []byte("x"),
		map[string]string{"task_id": fmt.Sprintf("%d", taskID)})
	if w.Code != http.StatusForbidden {
		t.Errorf("cross-user attach status = %d, want 403", w.Code)
	}

	// attaching to a missing task 404s
	w = doUpload(t, r, "/api/files/upload", aliceToken, "orphan.txt", []byte("x"),
		map[string]string{"task_id": "9999"})
	if w.Code != http.StatusNotFound {
		t.Errorf("missing task attach status = %d, want 404", w.Code)
	}

	w = doUpload(t, r, "/api/files/upload", aliceToken, "notes.txt", []byte("meeting notes"),
		map[string]string{"task_id": fmt.Sprintf("%d", taskID)})
	if w.Code != http.StatusCreated {
		t.Fatalf("attach status = %d, body %s", w.Code, w.Body.String())
	}

	w = doJSON(t, r, http.MethodGet, fmt.Sprintf("/api/files/task/%d", taskID), aliceToken, nil)
	files := dataOf(t, w)["files"].([]interface{})
	if len(files) != 1 {
		t.Fatalf("got %d task files, want 1", len(files))
	}
	if files[0].(map[string]interface{})["filename"] != "notes.txt" {
		t.Errorf("task file = %v, want notes.txt", files[0])
	}

	// task file listing is ownership-checked through the task
	w = doJSON(t, r, http.MethodGet, fmt.Sprintf("/api/files/task/%d", taskID), bobToken, nil)
	if w.Code != http.StatusForbidden {
		t.Errorf("cross-user task file list status = %d, want 403", w.Code)
	}
}

func TestFileUpload_SizeLimit(t *testing.T) {
	r, _ := setupEnv(t)
	token := signupAndSignIn(t, r, "alice", "password123")

	// test config caps uploads at 4 MB
	big := make([]byte, 5<<20)
	w := doUpload(t, r, "/api/files/upload", token, "big.bin", big, nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("oversized upload status = %d, want 400", w.Code)
	}
}

func TestFileDelete_Ownership(t *testing.T) {
	r, db := setupEnv(t)
	aliceToken := signupAndSignIn(t, r, "alice", "password123")
	bobToken := signupAndSignIn(t, r, "bob", "password123")

	w := doUpload(t, r, "/api/files/upload", aliceToken, "mine.txt", []byte("hello"), nil)
	file := dataOf(t, w)["file"].(map[string]interface{})
	fileID := uint(file["id"].(float64))

	w = doJSON(t, r, http.MethodDelete, fmt.Sprintf("/api/files/%d", fileID), bobToken, nil)
	if w.Code != http.StatusForbidden {
		t.Errorf("cross-user delete status = %d, want 403", w.Code)
	}

	w = doJSON(t, r, http.MethodDelete, fmt.Sprintf("/api/files/%d", fileID), aliceToken, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("delete status = %d, body %s", w.Code, w.Body.String())
	}

	var count int64
	db.Model(&models.File{}).Count(&count)
	if count != 0 {
		t.Errorf("file count = %d after delete, want 0", count)
	}

	w = doJSON(t, r, http.MethodDelete, fmt.Sprintf("/api/files/%d", fileID), aliceToken, nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("double delete status = %d, want 404", w.Code)
	}
}
