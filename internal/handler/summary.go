package handler

import (
	"net/http"
	"sort"
	"time"

	"github.com/gabeVald/Personal-Task-Manager/internal/audit"
	"github.com/gabeVald/Personal-Task-Manager/internal/models"
	"github.com/gabeVald/Personal-Task-Manager/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// SummaryHandler aggregates debit transactions into per-category and
// per-month spending breakdowns.
type SummaryHandler struct {
	DB    *gorm.DB
	Audit *audit.Recorder
}

func NewSummaryHandler(db *gorm.DB, recorder *audit.Recorder) *SummaryHandler {
	return &SummaryHandler{DB: db, Audit: recorder}
}

type categorySummary struct {
	Category         string  `json:"category"`
	TotalAmount      float64 `json:"total_amount"`
	TransactionCount int     `json:"transaction_count"`
	Percentage       float64 `json:"percentage"`
}

type monthTotal struct {
	Amount float64 `json:"amount"`
	Count  int     `json:"count"`
}

type categoryAccum struct {
	amount decimal.Decimal
	count  int
}

// aggregate groups debit transactions by category, keeping exact decimal
// sums. Rounding happens only in buildCategorySummaries.
func aggregate(transactions []models.Transaction) (map[string]*categoryAccum, decimal.Decimal) {
	totals := make(map[string]*categoryAccum)
	totalSpent := decimal.Zero

	for i := range transactions {
		tx := &transactions[i]
		amount := tx.Amount.Abs()

		acc, ok := totals[tx.Category]
		if !ok {
			acc = &categoryAccum{amount: decimal.Zero}
			totals[tx.Category] = acc
		}
		acc.amount = acc.amount.Add(amount)
		acc.count++
		totalSpent = totalSpent.Add(amount)
	}
	return totals, totalSpent
}

// buildCategorySummaries converts accumulated totals into the response
// shape: 2dp rounding, percentage of total (0 when total is 0), sorted by
// total amount descending.
func buildCategorySummaries(totals map[string]*categoryAccum, totalSpent decimal.Decimal) []categorySummary {
	hundred := decimal.NewFromInt(100)
	categories := make([]categorySummary, 0, len(totals))
	for category, acc := range totals {
		percentage := 0.0
		if totalSpent.IsPositive() {
			percentage = acc.amount.Mul(hundred).Div(totalSpent).Round(2).InexactFloat64()
		}
		categories = append(categories, categorySummary{
			Category:         category,
			TotalAmount:      acc.amount.Round(2).InexactFloat64(),
			TransactionCount: acc.count,
			Percentage:       percentage,
		})
	}
	sort.Slice(categories, func(i, j int) bool {
		return categories[i].TotalAmount > categories[j].TotalAmount
	})
	return categories
}

// monthStart parses a YYYY-MM token into the first instant of that month.
func monthStart(token string) (time.Time, error) {
	return time.Parse("2006-01", token)
}

// debitsBetween selects the user's debit transactions in [start, end).
func (h *SummaryHandler) debitsBetween(username string, start, end time.Time) ([]models.Transaction, error) {
	var transactions []models.Transaction
	err := h.DB.Where(
		"username = ? AND transaction_type = ? AND transaction_date >= ? AND transaction_date < ?",
		username, models.TypeDebit, start, end,
	).Find(&transactions).Error
	return transactions, err
}

// GetSummary returns the spending summary for one month (default: current).
func (h *SummaryHandler) GetSummary(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	monthToken := c.Query("month")
	if monthToken == "" {
		monthToken = time.Now().Format("2006-01")
	}
	start, err := monthStart(monthToken)
	if err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid month format, use YYYY-MM")
		return
	}
	end := start.AddDate(0, 1, 0)

	transactions, err := h.debitsBetween(user.Username, start, end)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to load transactions")
		return
	}

	totals, totalSpent := aggregate(transactions)
	categories := buildCategorySummaries(totals, totalSpent)

	h.Audit.Record(user.Username, "get_spending_summary", map[string]interface{}{
		"month":          monthToken,
		"total_spent":    totalSpent.Round(2).InexactFloat64(),
		"category_count": len(categories),
	})

	util.Success(c, util.Response{
		"month":       monthToken,
		"total_spent": totalSpent.Round(2).InexactFloat64(),
		"categories":  categories,
	})
}

// GetMultiMonthSummary aggregates across an inclusive month range, with an
// additional per-month breakdown. A reversed range is not rejected; it just
// selects nothing.
func (h *SummaryHandler) GetMultiMonthSummary(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	startToken := c.Query("start_month")
	endToken := c.Query("end_month")
	if startToken == "" || endToken == "" {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "start_month and end_month are required")
		return
	}

	start, err := monthStart(startToken)
	if err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid start_month format, use YYYY-MM")
		return
	}
	endMonth, err := monthStart(endToken)
	if err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid end_month format, use YYYY-MM")
		return
	}
	end := endMonth.AddDate(0, 1, 0)

	transactions, err := h.debitsBetween(user.Username, start, end)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to load transactions")
		return
	}

	totals, totalSpent := aggregate(transactions)
	categories := buildCategorySummaries(totals, totalSpent)

	monthlyAccum := make(map[string]*categoryAccum)
	for i := range transactions {
		tx := &transactions[i]
		key := tx.TransactionDate.Format("2006-01")
		acc, ok := monthlyAccum[key]
		if !ok {
			acc = &categoryAccum{amount: decimal.Zero}
			monthlyAccum[key] = acc
		}
		acc.amount = acc.amount.Add(tx.Amount.Abs())
		acc.count++
	}
	monthlyTotals := make(map[string]monthTotal, len(monthlyAccum))
	for key, acc := range monthlyAccum {
		monthlyTotals[key] = monthTotal{
			Amount: acc.amount.Round(2).InexactFloat64(),
			Count:  acc.count,
		}
	}

	h.Audit.Record(user.Username, "get_multi_month_summary", map[string]interface{}{
		"start_month":    startToken,
		"end_month":      endToken,
		"total_spent":    totalSpent.Round(2).InexactFloat64(),
		"category_count": len(categories),
		"month_count":    len(monthlyTotals),
	})

	util.Success(c, util.Response{
		"start_month":    startToken,
		"end_month":      endToken,
		"total_spent":    totalSpent.Round(2).InexactFloat64(),
		"categories":     categories,
		"monthly_totals": monthlyTotals,
	})
}
