package handler

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"time"

	"github.com/gabeVald/Personal-Task-Manager/internal/audit"
	"github.com/gabeVald/Personal-Task-Manager/internal/models"
	"github.com/gabeVald/Personal-Task-Manager/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

// ExportHandler exports the requester's transactions as CSV or XLSX.
type ExportHandler struct {
	DB    *gorm.DB
	Audit *audit.Recorder
}

func NewExportHandler(db *gorm.DB, recorder *audit.Recorder) *ExportHandler {
	return &ExportHandler{DB: db, Audit: recorder}
}

var exportHeaders = []string{"Date", "Payee", "Amount", "Type", "Category", "Description"}

func (h *ExportHandler) loadTransactions(c *gin.Context, username string) ([]models.Transaction, bool) {
	var transactions []models.Transaction
	if err := h.DB.Where("username = ?", username).
		Order("transaction_date DESC").
		Find(&transactions).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to load transactions")
		return nil, false
	}
	return transactions, true
}

// ExportCSV streams transactions as CSV.
func (h *ExportHandler) ExportCSV(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	transactions, ok := h.loadTransactions(c, user.Username)
	if !ok {
		return
	}

	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"transactions_%s.csv\"",
		time.Now().Format("20060102")))

	writer := csv.NewWriter(c.Writer)
	defer writer.Flush()

	writer.Write(exportHeaders)
	for i := range transactions {
		tx := &transactions[i]
		writer.Write([]string{
			tx.TransactionDate.Format("2006-01-02"),
			tx.MerchantPayee,
			tx.Amount.StringFixed(2),
			tx.TransactionType,
			tx.Category,
			tx.Description,
		})
	}

	h.Audit.Record(user.Username, "export_transactions_csv", map[string]interface{}{
		"count": len(transactions),
	})
}

// ExportXLSX writes transactions as an Excel workbook.
func (h *ExportHandler) ExportXLSX(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	transactions, ok := h.loadTransactions(c, user.Username)
	if !ok {
		return
	}

	f := excelize.NewFile()
	sheetName := "Transactions"
	index, err := f.NewSheet(sheetName)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to create worksheet")
		return
	}
	f.SetActiveSheet(index)

	for i, header := range exportHeaders {
		cell := fmt.Sprintf("%c1", 'A'+i)
		f.SetCellValue(sheetName, cell, header)
	}

	for idx := range transactions {
		tx := &transactions[idx]
		row := idx + 2
		f.SetCellValue(sheetName, fmt.Sprintf("A%d", row), tx.TransactionDate.Format("2006-01-02"))
		f.SetCellValue(sheetName, fmt.Sprintf("B%d", row), tx.MerchantPayee)
		f.SetCellValue(sheetName, fmt.Sprintf("C%d", row), tx.Amount.StringFixed(2))
		f.SetCellValue(sheetName, fmt.Sprintf("D%d", row), tx.TransactionType)
		f.SetCellValue(sheetName, fmt.Sprintf("E%d", row), tx.Category)
		f.SetCellValue(sheetName, fmt.Sprintf("F%d", row), tx.Description)
	}

	f.SetColWidth(sheetName, "A", "A", 12)
	f.SetColWidth(sheetName, "B", "B", 30)
	f.SetColWidth(sheetName, "C", "D", 10)
	f.SetColWidth(sheetName, "E", "E", 25)
	f.SetColWidth(sheetName, "F", "F", 40)

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"transactions_%s.xlsx\"",
		time.Now().Format("20060102")))

	if err := f.Write(c.Writer); err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to write workbook")
		return
	}

	h.Audit.Record(user.Username, "export_transactions_xlsx", map[string]interface{}{
		"count": len(transactions),
	})
}
