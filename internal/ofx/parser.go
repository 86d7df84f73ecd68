// Package ofx imports OFX/QFX bank downloads as statement ledgers.
package ofx

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/Veraticus/statement-press/internal/model"
	"github.com/aclindsa/ofxgo"
	"github.com/shopspring/decimal"
)

// Statement is the ledger of one account found in an OFX file.
type Statement struct {
	AccountNo    string
	Currency     string
	Transactions []model.Transaction
}

// Parser implements OFX/QFX file parsing.
type Parser struct {
	logger *slog.Logger
}

// NewParser creates a new OFX parser.
func NewParser(logger *slog.Logger) *Parser {
	if logger == nil {
		logger = slog.Default()
	}
	return &Parser{logger: logger.With("component", "ofx")}
}

var (
	severityRegex = regexp.MustCompile(`(?i)<SEVERITY>(Info|Warn|Error)</SEVERITY>`)
	tagFixRegex   = regexp.MustCompile(`(?m)^(\s*<[A-Z][A-Z0-9._]*[A-Z0-9])$`)
)

// preprocessOFX fixes common formatting issues in OFX files.
func preprocessOFX(content string) string {
	content = strings.TrimLeft(content, " \t\r\n")

	// Mixed-case SEVERITY values are rejected by the parser.
	content = severityRegex.ReplaceAllStringFunc(content, strings.ToUpper)

	// SGML files sometimes drop the closing bracket of a bare opening tag.
	return tagFixRegex.ReplaceAllString(content, "$1>")
}

// ParseFile parses an OFX/QFX file into one ledger per account.
func (p *Parser) ParseFile(ctx context.Context, reader io.Reader) ([]Statement, error) {
	content, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read OFX file: %w", err)
	}

	resp, err := ofxgo.ParseResponse(strings.NewReader(preprocessOFX(string(content))))
	if err != nil {
		return nil, fmt.Errorf("failed to parse OFX file: %w", err)
	}

	var statements []Statement

	for _, msg := range resp.Bank {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		stmt, ok := msg.(*ofxgo.StatementResponse)
		if !ok || stmt.BankTranList == nil {
			continue
		}
		statements = append(statements, p.buildStatement(
			string(stmt.BankAcctFrom.AcctID), stmt.CurDef.String(), stmt.BalAmt, stmt.BankTranList.Transactions))
	}

	for _, msg := range resp.CreditCard {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		stmt, ok := msg.(*ofxgo.CCStatementResponse)
		if !ok || stmt.BankTranList == nil {
			continue
		}
		statements = append(statements, p.buildStatement(
			string(stmt.CCAcctFrom.AcctID), stmt.CurDef.String(), stmt.BalAmt, stmt.BankTranList.Transactions))
	}

	total := 0
	for _, s := range statements {
		total += len(s.Transactions)
	}
	p.logger.Info("Parsed OFX file",
		"accounts", len(statements),
		"total_transactions", total)

	return statements, nil
}

// buildStatement converts the transactions of one account. OFX only reports
// the closing ledger balance, so the running balance is walked forward from
// the implied opening balance.
func (p *Parser) buildStatement(account, currency string, closing ofxgo.Amount, list []ofxgo.Transaction) Statement {
	sorted := make([]ofxgo.Transaction, len(list))
	copy(sorted, list)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].DtPosted.Before(sorted[j].DtPosted.Time)
	})

	balance := ratDecimal(closing)
	for _, tx := range sorted {
		balance = balance.Sub(ratDecimal(tx.TrnAmt))
	}

	txns := make([]model.Transaction, 0, len(sorted))
	for _, tx := range sorted {
		amount := ratDecimal(tx.TrnAmt)
		balance = balance.Add(amount)

		t := convertTransaction(tx, account)
		t.RunningBalance = balance.InexactFloat64()
		txns = append(txns, t)
	}

	p.logger.Debug("converted account", "account", account, "transactions", len(txns))

	return Statement{
		AccountNo:    account,
		Currency:     currency,
		Transactions: txns,
	}
}

func ratDecimal(a ofxgo.Amount) decimal.Decimal {
	d, err := decimal.NewFromString(a.FloatString(4))
	if err != nil {
		return decimal.Zero
	}
	return d
}

// convertTransaction maps an OFX transaction onto the statement ledger
// types: interest and dividends, then deposits and withdrawals by sign.
func convertTransaction(tx ofxgo.Transaction, account string) model.Transaction {
	amount := ratDecimal(tx.TrnAmt).InexactFloat64()

	t := model.Transaction{
		ID:            transactionID(string(tx.FiTID)),
		Date:          tx.DtPosted.UTC(),
		Amount:        amount,
		AccountNo:     account,
		PaymentMethod: tx.TrnType.String(),
		Description:   description(tx),
		Source:        model.SourceOFX,
	}

	switch {
	case tx.TrnType == ofxgo.TrnTypeInt || tx.TrnType == ofxgo.TrnTypeDiv:
		t.Type = model.TypeInterest
		t.InterestAmount = amount
	case amount >= 0:
		t.Type = model.TypePurchase
		t.DepositAmount = amount
	default:
		t.Type = model.TypeWithdrawal
		t.WithdrawalAmount = amount
	}

	t.Hash = t.GenerateHash()
	return t
}

// transactionID uses a numeric FITID as is and derives a stable number from
// anything else.
func transactionID(fitID string) int64 {
	if id, err := strconv.ParseInt(fitID, 10, 64); err == nil {
		return id
	}
	sum := sha256.Sum256([]byte(fitID))
	id, _ := strconv.ParseInt(hex.EncodeToString(sum[:])[:15], 16, 64)
	return id
}

var cardPrefixes = []string{
	"POS PURCHASE ",
	"PURCHASE AUTHORIZED ON ",
	"DEBIT CARD PURCHASE ",
	"ACH DEBIT ",
	"CHECK CARD ",
	"VISA PURCHASE ",
	"DEBIT PURCHASE ",
}

// description picks the most readable label for the description column.
func description(tx ofxgo.Transaction) string {
	if tx.Payee != nil && tx.Payee.Name != "" {
		return string(tx.Payee.Name)
	}

	name := strings.TrimSpace(string(tx.Name))
	if tx.Memo != "" && isGenericDescription(name) {
		name = strings.TrimSpace(string(tx.Memo))
	}

	upper := strings.ToUpper(name)
	for _, prefix := range cardPrefixes {
		if strings.HasPrefix(upper, prefix) {
			name = name[len(prefix):]
			break
		}
	}

	// Drop a leading "MM/DD " date stamp.
	if len(name) > 5 && name[2] == '/' && name[5] == ' ' {
		name = strings.TrimSpace(name[6:])
	}

	return name
}

func isGenericDescription(name string) bool {
	switch strings.ToUpper(name) {
	case "DEBIT", "CREDIT", "PURCHASE", "PAYMENT", "DEPOSIT", "POS TRANSACTION", "CARD PURCHASE":
		return true
	}
	return false
}
