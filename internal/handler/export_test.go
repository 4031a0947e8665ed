package handler_test

import (
	"bytes"
	"encoding/csv"
	"net/http"
	"strings"
	"testing"
	"time"
)

func TestExportCSV(t *testing.T) {
	r, db := setupEnv(t)
	token := signupAndSignIn(t, r, "alice", "password123")
	signupAndSignIn(t, r, "bob", "password123")

	march := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
	seedTransaction(t, db, "alice", "Shopping", "-42.50", march)
	seedTransaction(t, db, "bob", "Shopping", "-99.00", march)

	w := doJSON(t, r, http.MethodGet, "/api/statements/export/csv", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("export status = %d, body %s", w.Code, w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/csv") {
		t.Errorf("Content-Type = %q, want text/csv", ct)
	}
	if cd := w.Header().Get("Content-Disposition"); !strings.Contains(cd, ".csv") {
		t.Errorf("Content-Disposition = %q, want csv attachment", cd)
	}

	rows, err := csv.NewReader(bytes.NewReader(w.Body.Bytes())).ReadAll()
	if err != nil {
		t.Fatalf("parse exported csv: %v", err)
	}
	// header plus alice's single transaction; bob's stays out
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(rows))
	}
	if rows[0][0] != "Date" || rows[0][2] != "Amount" {
		t.Errorf("header = %v", rows[0])
	}
	if rows[1][0] != "2024-03-10" || rows[1][2] != "-42.50" || rows[1][3] != "debit" {
		t.Errorf("row = %v, want alice's -42.50 debit on 2024-03-10", rows[1])
	}
}

func TestExportXLSX(t *testing.T) {
	r, db := setupEnv(t)
	token := signupAndSignIn(t, r, "alice", "password123")

	seedTransaction(t, db, "alice", "Shopping", "-10.00",
		time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC))

	w := doJSON(t, r, http.MethodGet, "/api/statements/export/xlsx", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("export status = %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); !strings.Contains(ct, "spreadsheetml") {
		t.Errorf("Content-Type = %q, want xlsx", ct)
	}
	// xlsx is a zip archive
	if !bytes.HasPrefix(w.Body.Bytes(), []byte("PK")) {
		t.Error("body is not a zip archive")
	}
}
