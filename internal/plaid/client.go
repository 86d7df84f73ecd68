// Package plaid pulls statement ledgers from the Plaid API.
package plaid

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/Veraticus/statement-press/internal/common"
	"github.com/Veraticus/statement-press/internal/model"
	"github.com/Veraticus/statement-press/internal/service"
	"github.com/plaid/plaid-go/v20/plaid"
	"github.com/shopspring/decimal"
)

// Config holds Plaid API configuration.
type Config struct {
	ClientID    string `mapstructure:"client_id"`
	Secret      string `mapstructure:"secret"`
	Environment string `mapstructure:"environment"` // sandbox or production
	AccessToken string `mapstructure:"access_token"`
	AccountID   string `mapstructure:"account_id"`
}

var validEnvs = map[string]bool{
	"sandbox":    true,
	"production": true,
}

// Validate ensures all required fields are present.
func (c *Config) Validate() error {
	if err := c.validateCredentials(); err != nil {
		return err
	}
	if c.AccessToken == "" {
		return fmt.Errorf("%w: plaid access token is required", common.ErrMissingConfig)
	}
	return nil
}

func (c *Config) validateCredentials() error {
	if c.ClientID == "" {
		return fmt.Errorf("%w: plaid client ID is required", common.ErrMissingConfig)
	}
	if c.Secret == "" {
		return fmt.Errorf("%w: plaid secret is required", common.ErrMissingConfig)
	}
	if c.Environment == "" {
		return fmt.Errorf("%w: plaid environment is required", common.ErrMissingConfig)
	}
	if !validEnvs[c.Environment] {
		return fmt.Errorf("%w: invalid Plaid environment: must be sandbox or production", common.ErrInvalidConfig)
	}
	return nil
}

// Account is a Plaid account with its current ledger balance.
type Account struct {
	ID       string
	Name     string
	Mask     string
	Currency string
	Balance  float64
}

// Client fetches one account's ledger from Plaid.
type Client struct {
	client      *plaid.APIClient
	logger      *slog.Logger
	retryOpts   *service.RetryOptions
	now         func() time.Time
	accessToken string
	accountID   string
}

// NewClient creates a new Plaid client. The access token may be empty when
// the client is only used to exchange a public token.
func NewClient(cfg Config) (*Client, error) {
	if err := cfg.validateCredentials(); err != nil {
		return nil, err
	}

	configuration := plaid.NewConfiguration()
	configuration.AddDefaultHeader("PLAID-CLIENT-ID", cfg.ClientID)
	configuration.AddDefaultHeader("PLAID-SECRET", cfg.Secret)

	switch cfg.Environment {
	case "sandbox":
		configuration.UseEnvironment(plaid.Sandbox)
	case "production":
		configuration.UseEnvironment(plaid.Production)
	}

	return &Client{
		client:      plaid.NewAPIClient(configuration),
		accessToken: cfg.AccessToken,
		accountID:   cfg.AccountID,
		now:         time.Now,
		logger:      slog.Default().With("component", "plaid"),
		retryOpts: &service.RetryOptions{
			MaxAttempts:  3,
			InitialDelay: 1 * time.Second,
			MaxDelay:     30 * time.Second,
			Multiplier:   2.0,
		},
	}, nil
}

// GetTransactions fetches the configured account's ledger within the date
// range, oldest first, with running balances anchored on the account's
// current balance. Transactions up to today are fetched so that entries after
// endDate still count toward the anchor.
func (c *Client) GetTransactions(ctx context.Context, startDate, endDate time.Time) ([]model.Transaction, error) {
	if ctx == nil {
		return nil, fmt.Errorf("context cannot be nil")
	}
	if startDate.After(endDate) {
		return nil, fmt.Errorf("start date must be before end date")
	}

	accounts, err := c.GetAccounts(ctx)
	if err != nil {
		return nil, err
	}
	account, err := c.pickAccount(accounts)
	if err != nil {
		return nil, err
	}

	fetchEnd := c.fetchEnd(endDate)
	c.logger.Info("Fetching transactions from Plaid",
		"account", account.ID,
		"start_date", startDate.Format("2006-01-02"),
		"end_date", endDate.Format("2006-01-02"),
		"fetch_end", fetchEnd.Format("2006-01-02"))

	var all []plaid.Transaction
	offset := int32(0)
	const pageSize = int32(500) // Plaid's max page size

	for {
		var batch []plaid.Transaction

		retryErr := common.WithRetry(ctx, func() error {
			request := plaid.NewTransactionsGetRequest(
				c.accessToken,
				startDate.Format("2006-01-02"),
				fetchEnd.Format("2006-01-02"),
			)
			request.SetOptions(plaid.TransactionsGetRequestOptions{
				AccountIds: &[]string{account.ID},
				Count:      plaid.PtrInt32(pageSize),
				Offset:     plaid.PtrInt32(offset),
			})

			resp, _, err := c.client.PlaidApi.TransactionsGet(ctx).TransactionsGetRequest(*request).Execute()
			if err != nil {
				return c.classify(err, "failed to fetch transactions")
			}

			batch = resp.GetTransactions()
			c.logger.Debug("Fetched transaction batch",
				"count", len(batch),
				"offset", offset,
				"total", resp.GetTotalTransactions())
			return nil
		}, *c.retryOpts)
		if retryErr != nil {
			return nil, retryErr
		}

		all = append(all, batch...)
		if len(batch) < int(pageSize) {
			break
		}
		offset += pageSize
	}

	c.logger.Info("Fetched all transactions", "count", len(all))

	return c.buildLedger(account, all, endDate), nil
}

// fetchEnd extends endDate to today when it lies in the past.
func (c *Client) fetchEnd(endDate time.Time) time.Time {
	today := c.now().UTC().Truncate(24 * time.Hour)
	if endDate.Before(today) {
		return today
	}
	return endDate
}

// GetAccounts lists the accounts behind the access token.
func (c *Client) GetAccounts(ctx context.Context) ([]Account, error) {
	if ctx == nil {
		return nil, fmt.Errorf("context cannot be nil")
	}

	var accounts []plaid.AccountBase
	retryErr := common.WithRetry(ctx, func() error {
		request := plaid.NewAccountsGetRequest(c.accessToken)
		resp, _, err := c.client.PlaidApi.AccountsGet(ctx).AccountsGetRequest(*request).Execute()
		if err != nil {
			return c.classify(err, "failed to fetch accounts")
		}
		accounts = resp.GetAccounts()
		return nil
	}, *c.retryOpts)
	if retryErr != nil {
		return nil, retryErr
	}

	c.logger.Info("Fetched accounts", "count", len(accounts))

	out := make([]Account, 0, len(accounts))
	for _, a := range accounts {
		balances := a.GetBalances()
		out = append(out, Account{
			ID:       a.GetAccountId(),
			Name:     a.GetName(),
			Mask:     a.GetMask(),
			Currency: balances.GetIsoCurrencyCode(),
			Balance:  balances.GetCurrent(),
		})
	}
	return out, nil
}

// ExchangePublicToken exchanges a public token from Link for an access token.
func (c *Client) ExchangePublicToken(ctx context.Context, publicToken string) (string, string, error) {
	request := plaid.NewItemPublicTokenExchangeRequest(publicToken)
	resp, _, err := c.client.PlaidApi.ItemPublicTokenExchange(ctx).ItemPublicTokenExchangeRequest(*request).Execute()
	if err != nil {
		return "", "", c.classify(err, "failed to exchange public token")
	}
	return resp.GetAccessToken(), resp.GetItemId(), nil
}

func (c *Client) pickAccount(accounts []Account) (Account, error) {
	if c.accountID == "" {
		if len(accounts) == 1 {
			return accounts[0], nil
		}
		return Account{}, fmt.Errorf("%w: plaid account_id is required when the item has %d accounts",
			common.ErrMissingConfig, len(accounts))
	}
	for _, a := range accounts {
		if a.ID == c.accountID {
			return a, nil
		}
	}
	return Account{}, fmt.Errorf("plaid account %s: %w", c.accountID, common.ErrNotFound)
}

func (c *Client) classify(err error, msg string) error {
	if plaidError := extractPlaidError(err); plaidError != nil {
		if plaidError.ErrorCode == "RATE_LIMIT_EXCEEDED" {
			c.logger.Warn("Rate limit hit, will retry", "error", plaidError.ErrorMessage)
			return &common.RetryableError{Err: fmt.Errorf("%w: %s", common.ErrPlaidRateLimit, plaidError.ErrorMessage), Retryable: true}
		}
		return fmt.Errorf("%w: %s - %s", common.ErrPlaidConnection, plaidError.ErrorCode, plaidError.ErrorMessage)
	}
	return fmt.Errorf("%s: %w", msg, err)
}

// buildLedger orders the Plaid transactions by date and walks the running
// balance forward from the balance implied before the first of them.
// Transactions dated after endDate only shift that starting balance.
func (c *Client) buildLedger(account Account, pts []plaid.Transaction, endDate time.Time) []model.Transaction {
	txns := make([]model.Transaction, 0, len(pts))
	for _, pt := range pts {
		if pt.GetPending() {
			continue
		}
		txns = append(txns, c.mapPlaidTransaction(pt, account.ID))
	}

	sort.SliceStable(txns, func(i, j int) bool {
		return txns[i].Date.Before(txns[j].Date)
	})

	balance := decimal.NewFromFloat(account.Balance)
	for _, t := range txns {
		balance = balance.Sub(decimal.NewFromFloat(t.Amount))
	}
	last := endDate.UTC().Truncate(24 * time.Hour).AddDate(0, 0, 1)
	ledger := txns[:0]
	for _, t := range txns {
		balance = balance.Add(decimal.NewFromFloat(t.Amount))
		if !t.Date.Before(last) {
			continue
		}
		t.RunningBalance = balance.InexactFloat64()
		ledger = append(ledger, t)
	}
	return ledger
}

// mapPlaidTransaction converts a Plaid transaction to a ledger entry. Plaid
// reports money out as positive amounts, so the sign is flipped.
func (c *Client) mapPlaidTransaction(pt plaid.Transaction, account string) model.Transaction {
	date, err := time.Parse("2006-01-02", pt.GetDate())
	if err != nil {
		c.logger.Error("Failed to parse transaction date", "date", pt.GetDate(), "error", err)
		date = time.Now().UTC().Truncate(24 * time.Hour)
	}

	merchantName := pt.GetMerchantName()
	if merchantName == "" {
		merchantName = pt.GetName()
	}

	amount := decimal.NewFromFloat(pt.GetAmount()).Neg().InexactFloat64()

	tx := model.Transaction{
		Date:          date,
		ID:            transactionID(pt.GetTransactionId()),
		Description:   cleanMerchantName(merchantName),
		PaymentMethod: paymentMethod(pt.GetPaymentChannel()),
		AccountNo:     account,
		Amount:        amount,
		Source:        model.SourcePlaid,
	}

	switch {
	case amount < 0:
		tx.Type = model.TypeWithdrawal
		tx.WithdrawalAmount = amount
	case isInterest(pt):
		tx.Type = model.TypeInterest
		tx.InterestAmount = amount
	default:
		tx.Type = model.TypePurchase
		tx.DepositAmount = amount
	}

	tx.Hash = tx.GenerateHash()
	return tx
}

func paymentMethod(channel string) string {
	switch channel {
	case "online":
		return "ONLINE"
	case "in store", "in_store":
		return "POS"
	case "":
		return ""
	default:
		return "OTHER"
	}
}

func isInterest(pt plaid.Transaction) bool {
	for _, c := range pt.GetCategory() {
		if strings.EqualFold(c, "interest") || strings.EqualFold(c, "interest earned") {
			return true
		}
	}
	return false
}

// transactionID folds Plaid's opaque transaction ID into a stable number.
func transactionID(id string) int64 {
	sum := sha256.Sum256([]byte(id))
	n, _ := strconv.ParseInt(hex.EncodeToString(sum[:])[:15], 16, 64)
	return n
}

// cleanMerchantName standardizes merchant names by removing common suffixes and normalizing format.
func cleanMerchantName(name string) string {
	words := strings.Fields(strings.ToLower(name))
	for i, word := range words {
		runes := []rune(word)
		for j := range runes {
			if j == 0 || !isLetter(runes[j-1]) {
				runes[j] = toUpper(runes[j])
			}
		}
		words[i] = string(runes)
	}

	// Trailing reference numbers such as "MERCHANT 123456789".
	if len(words) > 1 {
		last := words[len(words)-1]
		if len(last) > 5 && isAllDigits(last) {
			words = words[:len(words)-1]
		}
	}
	name = strings.Join(words, " ")

	suffixes := []string{
		" Llc",
		" Inc",
		" Corp",
		" Corporation",
		" Company",
		" Co",
		" Ltd",
		" Limited",
	}

	changed := true
	for changed {
		changed = false
		for _, suffix := range suffixes {
			if strings.HasSuffix(name, suffix) {
				name = strings.TrimSuffix(name, suffix)
				changed = true
			}
		}
	}

	return strings.TrimSpace(name)
}

func isAllDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func isLetter(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

func toUpper(r rune) rune {
	if r >= 'a' && r <= 'z' {
		return r - 32
	}
	return r
}

// extractPlaidError attempts to extract a Plaid error from a generic error.
func extractPlaidError(err error) *plaid.PlaidError {
	plaidErr, convErr := plaid.ToPlaidError(err)
	if convErr != nil {
		return nil
	}
	return &plaidErr
}

var _ service.TransactionSource = (*Client)(nil)
