package handler

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gabeVald/Personal-Task-Manager/internal/audit"
	"github.com/gabeVald/Personal-Task-Manager/internal/config"
	"github.com/gabeVald/Personal-Task-Manager/internal/models"
	"github.com/gabeVald/Personal-Task-Manager/internal/ofx"
	"github.com/gabeVald/Personal-Task-Manager/internal/util"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// StatementHandler owns the statement ingestion pipeline: upload, parse,
// cascade delete, transaction listing and re-categorization.
type StatementHandler struct {
	DB    *gorm.DB
	Audit *audit.Recorder
	Cfg   *config.Config
}

func NewStatementHandler(db *gorm.DB, recorder *audit.Recorder, cfg *config.Config) *StatementHandler {
	return &StatementHandler{DB: db, Audit: recorder, Cfg: cfg}
}

// Upload accepts an OFX/QFX statement, persists a pending record before
// parsing so a crash mid-parse leaves a visible row, then inserts each
// parsed transaction individually.
func (h *StatementHandler) Upload(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	fh, err := c.FormFile("file")
	if err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "file field is required")
		return
	}

	lower := strings.ToLower(fh.Filename)
	if !strings.HasSuffix(lower, ".ofx") && !strings.HasSuffix(lower, ".qfx") {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "only OFX and QFX files are supported")
		return
	}

	src, err := fh.Open()
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to read upload")
		return
	}
	defer src.Close()

	content, err := io.ReadAll(src)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to read upload")
		return
	}

	stmtFile := models.StatementFile{
		Filename:         fmt.Sprintf("%s_%s_%s", user.Username, time.Now().Format("20060102_150405"), fh.Filename),
		OriginalFilename: fh.Filename,
		FileSize:         int64(len(content)),
		UploadDate:       time.Now(),
		ParsedStatus:     models.ParseStatusPending,
		Username:         user.Username,
	}
	if err := h.DB.Create(&stmtFile).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to save statement file")
		return
	}

	doc, parseErr := ofx.Parse(bytes.NewReader(content))
	if parseErr != nil {
		// keep the record; only transactions are never created
		stmtFile.ParsedStatus = models.ParseStatusError
		stmtFile.ParseError = parseErr.Error()
		_ = h.DB.Save(&stmtFile).Error

		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam,
			fmt.Sprintf("failed to parse statement file: %v", parseErr))
		return
	}

	count := 0
	for _, tx := range doc.Account.Statement.Transactions {
		txType := models.TypeCredit
		if tx.Amount.IsNegative() {
			txType = models.TypeDebit
		}
		payee := tx.Payee
		if payee == "" {
			payee = "Unknown"
		}

		record := models.Transaction{
			StatementFileID: stmtFile.ID,
			TransactionDate: tx.Date,
			MerchantPayee:   payee,
			Amount:          tx.Amount,
			TransactionType: txType,
			Description:     tx.Memo,
			Category:        models.DefaultCategory,
			Username:        user.Username,
		}
		if err := h.DB.Create(&record).Error; err != nil {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to save transaction")
			return
		}
		count++
	}

	stmtFile.ParsedStatus = models.ParseStatusSuccess
	stmtFile.TransactionCount = count
	if err := h.DB.Save(&stmtFile).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to update statement file")
		return
	}

	h.Audit.Record(user.Username, "upload_statement_file", map[string]interface{}{
		"filename":          fh.Filename,
		"file_size":         stmtFile.FileSize,
		"transaction_count": count,
		"status":            stmtFile.ParsedStatus,
	})

	util.Created(c, util.Response{
		"message":           "statement file uploaded and parsed",
		"file_id":           stmtFile.ID,
		"transaction_count": count,
		"status":            stmtFile.ParsedStatus,
	})
}

// GetFiles lists the requester's statement files, newest first.
func (h *StatementHandler) GetFiles(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	skip, limit := parsePagination(c, 20)

	var files []models.StatementFile
	if err := h.DB.Where("username = ?", user.Username).
		Order("upload_date DESC").
		Offset(skip).
		Limit(limit).
		Find(&files).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to list statement files")
		return
	}

	h.Audit.Record(user.Username, "get_statement_files", map[string]interface{}{"count": len(files)})
	util.Success(c, util.Response{"files": files})
}

// getOwnedFile loads a statement file and enforces ownership.
func (h *StatementHandler) getOwnedFile(c *gin.Context, requester string) *models.StatementFile {
	id, ok := parseID(c, "id")
	if !ok {
		return nil
	}

	var file models.StatementFile
	if err := h.DB.First(&file, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			util.Error(c, http.StatusNotFound, util.CodeNotFound, "statement file not found")
		} else {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to load statement file")
		}
		return nil
	}
	if err := assertOwner(file.Username, requester); err != nil {
		util.Error(c, http.StatusForbidden, util.CodePermission, "you don't have permission to access this statement file")
		return nil
	}
	return &file
}

// GetFile returns one statement file together with its transactions.
func (h *StatementHandler) GetFile(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	file := h.getOwnedFile(c, user.Username)
	if file == nil {
		return
	}

	var transactions []models.Transaction
	if err := h.DB.Where("statement_file_id = ?", file.ID).
		Order("transaction_date DESC").
		Find(&transactions).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to list transactions")
		return
	}

	util.Success(c, util.Response{
		"file":         file,
		"transactions": transactions,
	})
}

// DeleteFile removes a statement file and all of its transactions. The
// transactions go first so a failure cannot orphan them.
func (h *StatementHandler) DeleteFile(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	file := h.getOwnedFile(c, user.Username)
	if file == nil {
		return
	}

	if err := h.DB.Where("statement_file_id = ?", file.ID).
		Delete(&models.Transaction{}).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to delete transactions")
		return
	}
	if err := h.DB.Delete(file).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to delete statement file")
		return
	}

	h.Audit.Record(user.Username, "delete_statement_file", map[string]interface{}{
		"file_id":  file.ID,
		"filename": file.OriginalFilename,
	})
	util.Success(c, util.Response{"message": "statement file and transactions deleted"})
}

// GetTransactions lists the requester's transactions with optional category,
// type and date-range filters. Type defaults to debit (spending).
func (h *StatementHandler) GetTransactions(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	skip, limit := parsePagination(c, h.Cfg.App.DefaultLimit)

	q := h.DB.Where("username = ?", user.Username)

	if category := c.Query("category"); category != "" {
		q = q.Where("category = ?", category)
	}

	txType := c.DefaultQuery("transaction_type", models.TypeDebit)
	if txType != "" {
		q = q.Where("transaction_type = ?", txType)
	}

	start, end, hasStart, hasEnd, err := parseDateRange(c)
	if err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, err.Error())
		return
	}
	if hasStart {
		q = q.Where("transaction_date >= ?", start)
	}
	if hasEnd {
		q = q.Where("transaction_date < ?", end)
	}

	var transactions []models.Transaction
	if err := q.Order("transaction_date DESC").
		Offset(skip).
		Limit(limit).
		Find(&transactions).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to list transactions")
		return
	}

	util.Success(c, util.Response{"transactions": transactions})
}

type categoryUpdateReq struct {
	Category string `json:"category" binding:"required"`
}

// UpdateTransactionCategory rewrites one transaction's category.
func (h *StatementHandler) UpdateTransactionCategory(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req categoryUpdateReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "category is required")
		return
	}

	var tx models.Transaction
	if err := h.DB.First(&tx, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			util.Error(c, http.StatusNotFound, util.CodeNotFound, "transaction not found")
		} else {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to load transaction")
		}
		return
	}
	if err := assertOwner(tx.Username, user.Username); err != nil {
		util.Error(c, http.StatusForbidden, util.CodePermission, "you don't have permission to modify this transaction")
		return
	}

	oldCategory := tx.Category
	tx.Category = req.Category
	if err := h.DB.Save(&tx).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to update transaction")
		return
	}

	h.Audit.Record(user.Username, "update_transaction_category", map[string]interface{}{
		"transaction_id": tx.ID,
		"old_category":   oldCategory,
		"new_category":   tx.Category,
	})
	util.Success(c, util.Response{"message": "transaction category updated"})
}

// GetCategories returns the configured spending categories.
func (h *StatementHandler) GetCategories(c *gin.Context) {
	util.Success(c, util.Response{"categories": h.Cfg.App.Categories})
}
