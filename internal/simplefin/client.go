// Package simplefin fetches account ledgers from a SimpleFIN bridge.
package simplefin

import (
	"context"
	"encoding/json"
	"fmt"
	"hash/fnv"
	"log/slog"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/Veraticus/statement-press/internal/common"
	"github.com/Veraticus/statement-press/internal/model"
	"github.com/Veraticus/statement-press/internal/service"
	"github.com/shopspring/decimal"
)

// Config holds SimpleFIN settings.
type Config struct {
	Token     string `mapstructure:"token"`      // one-time setup token
	AccessURL string `mapstructure:"access_url"` // skips the claim when set
	StateFile string `mapstructure:"state_file"`
	AccountID string `mapstructure:"account_id"`
}

// Account is a SimpleFIN account with its ledger balance.
type Account struct {
	ID       string
	Name     string
	Currency string
	Balance  decimal.Decimal
}

type accountSet struct {
	Errors   []string  `json:"errors"`
	Accounts []account `json:"accounts"`
}

type account struct {
	ID           string        `json:"id"`
	Name         string        `json:"name"`
	Currency     string        `json:"currency"`
	Balance      string        `json:"balance"`
	Transactions []transaction `json:"transactions"`
}

type transaction struct {
	ID          string `json:"id"`
	Amount      string `json:"amount"`
	Description string `json:"description"`
	Payee       string `json:"payee"`
	Memo        string `json:"memo"`
	Posted      int64  `json:"posted"`
	Pending     bool   `json:"pending"`
}

// Client fetches one account's ledger from SimpleFIN.
type Client struct {
	httpClient *http.Client
	logger     *slog.Logger
	retryOpts  service.RetryOptions
	accessURL  string
	accountID  string
}

var _ service.TransactionSource = (*Client)(nil)

// NewClient creates a client, claiming the setup token on first use.
func NewClient(ctx context.Context, cfg Config, logger *slog.Logger) (*Client, error) {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "simplefin")
	httpClient := &http.Client{Timeout: 30 * time.Second}

	accessURL := cfg.AccessURL
	if accessURL == "" {
		if cfg.StateFile == "" {
			return nil, fmt.Errorf("%w: simplefin.state_file is required", common.ErrMissingConfig)
		}
		auth, err := loadOrClaim(ctx, httpClient, cfg.Token, cfg.StateFile, logger)
		if err != nil {
			return nil, err
		}
		accessURL = auth.AccessURL
	}

	return &Client{
		httpClient: httpClient,
		logger:     logger,
		accessURL:  strings.TrimRight(accessURL, "/"),
		accountID:  cfg.AccountID,
		retryOpts: service.RetryOptions{
			MaxAttempts:  3,
			InitialDelay: time.Second,
			MaxDelay:     30 * time.Second,
			Multiplier:   2.0,
		},
	}, nil
}

// GetAccounts lists the accounts visible through the access URL.
func (c *Client) GetAccounts(ctx context.Context) ([]Account, error) {
	set, err := c.fetch(ctx, url.Values{"balances-only": {"1"}})
	if err != nil {
		return nil, err
	}

	out := make([]Account, 0, len(set.Accounts))
	for _, a := range set.Accounts {
		acct, err := a.summary()
		if err != nil {
			return nil, err
		}
		out = append(out, acct)
	}
	return out, nil
}

// GetTransactions fetches the configured account's posted ledger within the
// date range, oldest first, with running balances anchored on the current
// balance. Everything posted after startDate is fetched so that entries
// later than endDate still count toward the anchor.
func (c *Client) GetTransactions(ctx context.Context, startDate, endDate time.Time) ([]model.Transaction, error) {
	if endDate.Before(startDate) {
		return nil, fmt.Errorf("end date %s is before start date %s",
			endDate.Format(time.DateOnly), startDate.Format(time.DateOnly))
	}

	q := url.Values{}
	q.Set("start-date", strconv.FormatInt(startDate.Unix(), 10))
	if c.accountID != "" {
		q.Set("account", c.accountID)
	}

	set, err := c.fetch(ctx, q)
	if err != nil {
		return nil, err
	}

	raw, err := c.pickAccount(set.Accounts)
	if err != nil {
		return nil, err
	}

	txns, err := buildLedger(raw, startDate, endDate)
	if err != nil {
		return nil, err
	}
	c.logger.Info("Fetched SimpleFIN ledger", "account", raw.ID, "transactions", len(txns))
	return txns, nil
}

func (c *Client) fetch(ctx context.Context, q url.Values) (*accountSet, error) {
	endpoint := c.accessURL + "/accounts"
	if len(q) > 0 {
		endpoint += "?" + q.Encode()
	}

	var set accountSet
	err := common.WithRetry(ctx, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return &common.RetryableError{Err: err, Retryable: false}
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("failed to fetch accounts: %w", err)
		}
		defer func() { _ = resp.Body.Close() }()

		switch {
		case resp.StatusCode == http.StatusTooManyRequests:
			return fmt.Errorf("SimpleFIN: %w", common.ErrRateLimit)
		case resp.StatusCode >= http.StatusInternalServerError:
			return fmt.Errorf("SimpleFIN server error: %d", resp.StatusCode)
		case resp.StatusCode != http.StatusOK:
			return &common.RetryableError{
				Err:       fmt.Errorf("SimpleFIN API error: %d", resp.StatusCode),
				Retryable: false,
			}
		}

		if err := json.NewDecoder(resp.Body).Decode(&set); err != nil {
			return &common.RetryableError{Err: fmt.Errorf("failed to decode accounts: %w", err), Retryable: false}
		}
		return nil
	}, c.retryOpts)
	if err != nil {
		return nil, err
	}

	for _, msg := range set.Errors {
		c.logger.Warn("SimpleFIN reported a problem", "message", msg)
	}
	return &set, nil
}

func (c *Client) pickAccount(accounts []account) (account, error) {
	if c.accountID == "" {
		if len(accounts) == 1 {
			return accounts[0], nil
		}
		return account{}, fmt.Errorf("%w: simplefin account_id is required when %d accounts are visible",
			common.ErrMissingConfig, len(accounts))
	}
	for _, a := range accounts {
		if a.ID == c.accountID {
			return a, nil
		}
	}
	return account{}, fmt.Errorf("simplefin account %s: %w", c.accountID, common.ErrNotFound)
}

func (a account) summary() (Account, error) {
	balance, err := decimal.NewFromString(a.Balance)
	if err != nil {
		return Account{}, fmt.Errorf("account %s balance %q: %w", a.ID, a.Balance, err)
	}
	return Account{ID: a.ID, Name: a.Name, Currency: a.Currency, Balance: balance}, nil
}

// buildLedger converts the posted transactions of a in the date range and
// walks the running balance forward from the balance before the first one.
func buildLedger(a account, startDate, endDate time.Time) ([]model.Transaction, error) {
	summary, err := a.summary()
	if err != nil {
		return nil, err
	}

	last := endDate.AddDate(0, 0, 1)
	txns := make([]model.Transaction, 0, len(a.Transactions))
	amounts := make([]decimal.Decimal, 0, len(a.Transactions))
	for _, t := range a.Transactions {
		if t.Pending {
			continue
		}
		date := time.Unix(t.Posted, 0).UTC()
		if date.Before(startDate) {
			continue
		}

		amount, err := decimal.NewFromString(t.Amount)
		if err != nil {
			return nil, fmt.Errorf("transaction %s amount %q: %w", t.ID, t.Amount, err)
		}
		txns = append(txns, mapTransaction(a.ID, date, amount, t))
		amounts = append(amounts, amount)
	}

	idx := make([]int, len(txns))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(i, j int) bool { return txns[idx[i]].Date.Before(txns[idx[j]].Date) })

	balance := summary.Balance
	for _, amount := range amounts {
		balance = balance.Sub(amount)
	}

	ordered := make([]model.Transaction, 0, len(txns))
	for _, k := range idx {
		balance = balance.Add(amounts[k])
		if !txns[k].Date.Before(last) {
			continue
		}
		t := txns[k]
		t.RunningBalance = balance.InexactFloat64()
		ordered = append(ordered, t)
	}
	return ordered, nil
}

func mapTransaction(accountID string, date time.Time, amount decimal.Decimal, t transaction) model.Transaction {
	description := strings.TrimSpace(t.Payee)
	if description == "" {
		description = strings.TrimSpace(t.Description)
	}

	tx := model.Transaction{
		ID:          transactionID(accountID + "/" + t.ID),
		Date:        date,
		AccountNo:   accountID,
		Amount:      amount.InexactFloat64(),
		Description: description,
		Source:      model.SourceSimpleFIN,
	}

	switch {
	case amount.IsNegative():
		tx.Type = model.TypeWithdrawal
		tx.WithdrawalAmount = tx.Amount
	case strings.Contains(strings.ToLower(t.Description), "interest"):
		tx.Type = model.TypeInterest
		tx.InterestAmount = tx.Amount
	default:
		tx.Type = model.TypePurchase
		tx.DepositAmount = tx.Amount
	}

	tx.Hash = tx.GenerateHash()
	return tx
}

// transactionID folds SimpleFIN's string ID into a stable positive number.
func transactionID(id string) int64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(id))
	return int64(h.Sum64() >> 1)
}
