// Package ofx parses OFX/QFX bank statement exports. It accepts both the
// OFX 1.x SGML flavor (colon-separated header, unclosed value tags) and the
// OFX 2.x XML flavor, and extracts the account -> statement -> transaction
// structure needed for ingestion.
package ofx

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Transaction is one STMTTRN block.
type Transaction struct {
	Type   string // TRNTYPE as written in the file
	Date   time.Time
	Amount decimal.Decimal // negative for debits
	FitID  string
	Payee  string // NAME; empty when absent
	Memo   string
}

// Statement is the transaction list of one account.
type Statement struct {
	Currency     string
	StartDate    time.Time
	EndDate      time.Time
	Transactions []Transaction
}

// Account identifies the bank account a statement belongs to.
type Account struct {
	BankID    string
	AccountID string
	Type      string
	Statement Statement
}

// Document is a parsed OFX file.
type Document struct {
	Account Account
}

// Parse reads an OFX document. The header (OFXHEADER:... lines or an XML
// prolog) is skipped; everything before the <OFX> element is ignored.
func Parse(r io.Reader) (*Document, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read ofx content: %w", err)
	}

	content := string(raw)
	idx := strings.Index(strings.ToUpper(content), "<OFX>")
	if idx < 0 {
		return nil, fmt.Errorf("no <OFX> element found")
	}
	body := content[idx:]

	doc := &Document{}
	var (
		tx  *Transaction
		pos int
	)

	for pos < len(body) {
		open := strings.IndexByte(body[pos:], '<')
		if open < 0 {
			break
		}
		open += pos
		end := strings.IndexByte(body[open:], '>')
		if end < 0 {
			return nil, fmt.Errorf("unterminated tag at offset %d", open)
		}
		end += open

		tag := strings.ToUpper(strings.TrimSpace(body[open+1 : end]))
		pos = end + 1

		if strings.HasPrefix(tag, "/") {
			if tag == "/STMTTRN" {
				if tx == nil {
					return nil, fmt.Errorf("</STMTTRN> without matching open tag")
				}
				if tx.Date.IsZero() {
					return nil, fmt.Errorf("transaction missing DTPOSTED")
				}
				doc.Account.Statement.Transactions = append(doc.Account.Statement.Transactions, *tx)
				tx = nil
			}
			continue
		}

		if tag == "STMTTRN" {
			tx = &Transaction{}
			continue
		}

		// value runs until the next tag
		next := strings.IndexByte(body[pos:], '<')
		var value string
		if next < 0 {
			value = body[pos:]
			pos = len(body)
		} else {
			value = body[pos : pos+next]
			pos += next
		}
		value = unescape(strings.TrimSpace(value))
		if value == "" {
			continue
		}

		if tx != nil {
			if err := applyTransactionField(tx, tag, value); err != nil {
				return nil, err
			}
			continue
		}

		switch tag {
		case "CURDEF":
			doc.Account.Statement.Currency = value
		case "BANKID":
			doc.Account.BankID = value
		case "ACCTID":
			doc.Account.AccountID = value
		case "ACCTTYPE":
			doc.Account.Type = value
		case "DTSTART":
			t, err := parseDate(value)
			if err != nil {
				return nil, fmt.Errorf("invalid DTSTART: %w", err)
			}
			doc.Account.Statement.StartDate = t
		case "DTEND":
			t, err := parseDate(value)
			if err != nil {
				return nil, fmt.Errorf("invalid DTEND: %w", err)
			}
			doc.Account.Statement.EndDate = t
		}
	}

	if tx != nil {
		return nil, fmt.Errorf("unterminated STMTTRN block")
	}

	return doc, nil
}

func applyTransactionField(tx *Transaction, tag, value string) error {
	switch tag {
	case "TRNTYPE":
		tx.Type = value
	case "DTPOSTED":
		t, err := parseDate(value)
		if err != nil {
			return fmt.Errorf("invalid DTPOSTED %q: %w", value, err)
		}
		tx.Date = t
	case "TRNAMT":
		amt, err := parseAmount(value)
		if err != nil {
			return fmt.Errorf("invalid TRNAMT %q: %w", value, err)
		}
		tx.Amount = amt
	case "FITID":
		tx.FitID = value
	case "NAME":
		tx.Payee = value
	case "MEMO":
		tx.Memo = value
	}
	return nil
}

// dateLayouts are tried in order; OFX timestamps range from bare dates to
// millisecond precision.
var dateLayouts = []string{
	"20060102150405.000",
	"20060102150405",
	"200601021504",
	"20060102",
}

// parseDate handles OFX date stamps, dropping the optional timezone suffix
// such as 20240115120000[-5:EST].
func parseDate(s string) (time.Time, error) {
	if i := strings.IndexByte(s, '['); i >= 0 {
		s = s[:i]
	}
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}

// parseAmount accepts both 12.34 and European style 12,34.
func parseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if strings.Contains(s, ",") && !strings.Contains(s, ".") {
		s = strings.Replace(s, ",", ".", 1)
	}
	return decimal.NewFromString(s)
}

var entityReplacer = strings.NewReplacer(
	"&amp;", "&",
	"&lt;", "<",
	"&gt;", ">",
	"&quot;", `"`,
	"&apos;", "'",
)

func unescape(s string) string {
	if !strings.Contains(s, "&") {
		return s
	}
	return entityReplacer.Replace(s)
}
