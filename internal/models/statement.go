package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Parse states of an uploaded statement file.
const (
	ParseStatusPending = "pending"
	ParseStatusSuccess = "success"
	ParseStatusError   = "error"
)

// Transaction directions, derived from the sign of the amount.
const (
	TypeDebit  = "debit"
	TypeCredit = "credit"
)

// DefaultCategory is assigned to every transaction at insert time.
const DefaultCategory = "Uncategorized"

// StatementFile is an uploaded OFX/QFX bank export. The record is created
// with status pending before parsing starts, so a crash mid-parse leaves a
// visible pending row.
type StatementFile struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	Filename         string    `gorm:"size:255;not null" json:"filename"`
	OriginalFilename string    `gorm:"size:255;not null" json:"original_filename"`
	FileSize         int64     `gorm:"not null" json:"file_size"`
	UploadDate       time.Time `gorm:"index;not null" json:"upload_date"`
	ParsedStatus     string    `gorm:"size:16;index;not null;default:pending" json:"parsed_status"`
	ParseError       string    `gorm:"size:1024" json:"parse_error,omitempty"`
	TransactionCount int       `gorm:"not null" json:"transaction_count"`
	Username         string    `gorm:"size:64;index;not null" json:"username"`
}

// Transaction is a single statement entry. Amount keeps its sign: negative
// for debits, positive (or zero) for credits.
type Transaction struct {
	ID              uint            `gorm:"primaryKey" json:"id"`
	StatementFileID uint            `gorm:"index;not null" json:"statement_file_id"`
	TransactionDate time.Time       `gorm:"index;not null" json:"transaction_date"`
	MerchantPayee   string          `gorm:"size:255" json:"merchant_payee"`
	Amount          decimal.Decimal `gorm:"type:decimal(14,2);not null" json:"amount"`
	TransactionType string          `gorm:"size:8;index;not null" json:"transaction_type"`
	Description     string          `gorm:"size:512" json:"description"`
	Category        string          `gorm:"size:64;index;not null;default:Uncategorized" json:"category"`
	Username        string          `gorm:"size:64;index;not null" json:"username"`
}
