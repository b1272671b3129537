// Package ofx reads OFX/QFX bank and credit card statements into ledger
// transactions.
package ofx

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/aclindsa/ofxgo"

	"github.com/Veraticus/ledger/internal/model"
)

// Categories assigned from the OFX transaction type.
const (
	CategoryBankFees = "Bank Fees"
	CategoryCash     = "Cash & ATM"
	CategoryChecks   = "Checks"
)

var (
	severityRegex = regexp.MustCompile(`(?i)<SEVERITY>(Info|Warn|Error)</SEVERITY>`)
	// Opening tags at end of line that lost their closing bracket.
	tagFixRegex = regexp.MustCompile(`(?m)^(\s*<[A-Z][A-Z0-9._]*[A-Z0-9])$`)
)

// Parser implements OFX/QFX file parsing.
type Parser struct {
	// DefaultCategory is used for expenses whose type carries no category.
	DefaultCategory string
}

// NewParser creates a new OFX parser.
func NewParser(defaultCategory string) *Parser {
	return &Parser{DefaultCategory: defaultCategory}
}

// preprocessOFX fixes common formatting issues in OFX files.
func (p *Parser) preprocessOFX(content string) string {
	content = strings.TrimLeft(content, " \t\r\n")

	// SEVERITY must be INFO, WARN or ERROR
	content = severityRegex.ReplaceAllStringFunc(content, strings.ToUpper)

	return tagFixRegex.ReplaceAllString(content, "$1>")
}

func (p *Parser) parse(reader io.Reader) (*ofxgo.Response, error) {
	content, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read OFX file: %w", err)
	}

	resp, err := ofxgo.ParseResponse(strings.NewReader(p.preprocessOFX(string(content))))
	if err != nil {
		return nil, fmt.Errorf("failed to parse OFX file: %w", err)
	}
	return resp, nil
}

// ParseFile parses an OFX/QFX file and returns one creation request per
// non-zero statement line, oldest first.
func (p *Parser) ParseFile(ctx context.Context, reader io.Reader) ([]model.NewTransaction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	resp, err := p.parse(reader)
	if err != nil {
		return nil, err
	}

	var (
		transactions      []model.NewTransaction
		bankStmts, ccStmts int
		skipped           int
	)

	collect := func(list *ofxgo.TransactionList) {
		if list == nil {
			return
		}
		for _, ofxTx := range list.Transactions {
			txn, ok := p.convertTransaction(ofxTx)
			if !ok {
				skipped++
				continue
			}
			transactions = append(transactions, txn)
		}
	}

	for _, msg := range resp.Bank {
		if stmt, ok := msg.(*ofxgo.StatementResponse); ok {
			bankStmts++
			collect(stmt.BankTranList)
		}
	}

	for _, msg := range resp.CreditCard {
		if stmt, ok := msg.(*ofxgo.CCStatementResponse); ok {
			ccStmts++
			collect(stmt.BankTranList)
		}
	}

	sort.SliceStable(transactions, func(i, j int) bool {
		return transactions[i].RecordedAt.Before(transactions[j].RecordedAt)
	})

	slog.Info("Parsed OFX file",
		"total_transactions", len(transactions),
		"skipped", skipped,
		"bank_statements", bankStmts,
		"cc_statements", ccStmts)

	return transactions, nil
}

// convertTransaction maps one statement line. Zero amounts are dropped.
func (p *Parser) convertTransaction(ofxTx ofxgo.Transaction) (model.NewTransaction, bool) {
	amount, _ := ofxTx.TrnAmt.Float64()
	if amount == 0 {
		return model.NewTransaction{}, false
	}

	description := p.extractMerchantName(ofxTx)
	if description == "" {
		description = fmt.Sprintf("%v", ofxTx.TrnType)
	}

	txn := model.NewTransaction{
		Description: description,
		RecordedAt:  postedDate(ofxTx.DtPosted.Time),
	}

	trnType := fmt.Sprintf("%v", ofxTx.TrnType)
	if amount > 0 || trnType == "INT" || trnType == "DIV" {
		txn.Kind = model.KindIncome
		txn.Amount = math.Abs(amount)
		return txn, true
	}

	txn.Kind = model.KindExpense
	txn.Amount = -amount
	txn.Category = p.categoryFor(trnType)
	return txn, true
}

func (p *Parser) categoryFor(trnType string) string {
	switch trnType {
	case "FEE", "SRVCHG":
		return CategoryBankFees
	case "ATM", "CASH":
		return CategoryCash
	case "CHECK":
		return CategoryChecks
	default:
		return p.DefaultCategory
	}
}

// postedDate keeps the calendar fields of the posting time in the local zone
// so the statement date is the date stored.
func postedDate(t time.Time) time.Time {
	if t.IsZero() {
		return time.Time{}
	}
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), 0, time.Local)
}

// extractMerchantName tries to get a clean merchant name from OFX data.
func (p *Parser) extractMerchantName(tx ofxgo.Transaction) string {
	// PAYEE is usually cleaner than NAME
	if tx.Payee != nil && tx.Payee.Name != "" {
		return strings.TrimSpace(string(tx.Payee.Name))
	}

	name := string(tx.Name)
	if tx.Memo != "" && isGenericDescription(name) {
		name = string(tx.Memo)
	}
	name = strings.TrimSpace(name)

	prefixes := []string{
		"POS PURCHASE ",
		"PURCHASE AUTHORIZED ON ",
		"DEBIT CARD PURCHASE ",
		"ACH DEBIT ",
		"CHECK CARD ",
		"VISA PURCHASE ",
		"MC PURCHASE ",
		"DEBIT PURCHASE ",
		"COMPRA CARTAO ",
		"PIX ENVIADO ",
		"PIX RECEBIDO ",
	}

	for _, prefix := range prefixes {
		if strings.HasPrefix(strings.ToUpper(name), prefix) {
			name = name[len(prefix):]
			break
		}
	}

	// Leading "MM/DD " or "DD/MM " dates
	if len(name) > 5 && name[2] == '/' && name[5] == ' ' {
		name = strings.TrimSpace(name[6:])
	}

	return name
}

func isGenericDescription(name string) bool {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "", "DEBIT", "CREDIT", "PURCHASE", "PAYMENT", "POS TRANSACTION", "CARD PURCHASE":
		return true
	}
	return false
}

// GetAccounts extracts unique account IDs from the OFX file, sorted.
func (p *Parser) GetAccounts(_ context.Context, reader io.Reader) ([]string, error) {
	resp, err := p.parse(reader)
	if err != nil {
		return nil, err
	}

	accountMap := make(map[string]bool)
	for _, msg := range resp.Bank {
		if stmt, ok := msg.(*ofxgo.StatementResponse); ok && stmt.BankAcctFrom.AcctID != "" {
			accountMap[string(stmt.BankAcctFrom.AcctID)] = true
		}
	}
	for _, msg := range resp.CreditCard {
		if stmt, ok := msg.(*ofxgo.CCStatementResponse); ok && stmt.CCAcctFrom.AcctID != "" {
			accountMap[string(stmt.CCAcctFrom.AcctID)] = true
		}
	}

	accounts := make([]string, 0, len(accountMap))
	for acct := range accountMap {
		accounts = append(accounts, acct)
	}
	sort.Strings(accounts)

	return accounts, nil
}
