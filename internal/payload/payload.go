// Package payload decodes the statement request document: a pdf_name and a
// list of flat transaction records that also carry the holder details.
package payload

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/Veraticus/statement-press/internal/common"
	"github.com/Veraticus/statement-press/internal/engine"
	"github.com/Veraticus/statement-press/internal/model"
)

// Document is the statement request as received from the caller.
type Document struct {
	PDFName      string   `json:"pdf_name"`
	Variant      string   `json:"variant,omitempty"`
	Profile      string   `json:"profile,omitempty"`
	MMF          *bool    `json:"mmf,omitempty"`
	Transactions []Record `json:"transactions"`
}

// Record is one ledger line. Holder fields repeat on every record; only the
// first record's copy is used.
type Record struct {
	TransDate      Date     `json:"trans_date"`
	Shares         *float64 `json:"shares"`
	Price          *float64 `json:"price"`
	MemberNo       string   `json:"member_no"`
	Town           string   `json:"town"`
	Email          string   `json:"e_mail"`
	AllNames       string   `json:"allnames"`
	PostAddress    string   `json:"post_address"`
	Phone          string   `json:"gsm_no"`
	Descript       string   `json:"descript"`
	SecurityCode   string   `json:"security_code,omitempty"`
	AccountNo      string   `json:"account_no"`
	TransType      string   `json:"trans_type"`
	MOP            string   `json:"mop"`
	Currency       string   `json:"currency"`
	Statement      string   `json:"statement,omitempty"`
	TransID        int64    `json:"trans_id"`
	TaxAmount      float64  `json:"taxamt"`
	Amount         float64  `json:"amount"`
	RunningBalance float64  `json:"running_balance"`
	RunningShares  float64  `json:"running_shares"`
	NetAmount      float64  `json:"netamount,omitempty"`
	PAmount        float64  `json:"p_amount"`
	WAmount        float64  `json:"w_amount"`
	IAmount        float64  `json:"i_amount"`
}

// Date accepts RFC 3339 timestamps as well as plain YYYY-MM-DD dates.
type Date struct {
	time.Time
}

var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// UnmarshalJSON implements json.Unmarshaler.
func (d *Date) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("trans_date: %w", err)
	}
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			d.Time = t.UTC()
			return nil
		}
	}
	return fmt.Errorf("trans_date: unrecognized date %q", s)
}

// MarshalJSON implements json.Marshaler.
func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.UTC().Format(time.RFC3339))
}

// ErrInvalidPayload is returned for documents that cannot be used at all.
var ErrInvalidPayload = errors.New("invalid statement payload")

// Decode reads a Document from r.
func Decode(r io.Reader) (*Document, error) {
	var doc Document
	dec := json.NewDecoder(r)
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidPayload, err)
	}
	if strings.TrimSpace(doc.PDFName) == "" {
		return nil, fmt.Errorf("%w: pdf_name is required", ErrInvalidPayload)
	}
	if len(doc.Transactions) == 0 {
		return nil, fmt.Errorf("%w: %w", ErrInvalidPayload, common.ErrEmptyStatement)
	}
	return &doc, nil
}

// ResolveVariant picks the statement variant: an explicit variant wins,
// then the legacy mmf flag (true means cash-flow), then cash-flow.
func (d *Document) ResolveVariant() (model.Variant, error) {
	if d.Variant != "" {
		v, err := model.ParseVariant(d.Variant)
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrInvalidPayload, err)
		}
		return v, nil
	}
	if d.MMF != nil && !*d.MMF {
		return model.VariantUnitFund, nil
	}
	return model.VariantCashFlow, nil
}

// ExplicitVariant reports whether the caller chose a variant, either by
// name or through the mmf flag.
func (d *Document) ExplicitVariant() bool {
	return d.Variant != "" || d.MMF != nil
}

// ProfileRequest returns the profile name and variant a resolver should
// use. A named profile without an explicit variant brings its own variant,
// so the returned variant is empty in that case.
func (d *Document) ProfileRequest() (string, model.Variant, error) {
	variant, err := d.ResolveVariant()
	if err != nil {
		return "", "", err
	}
	if d.Profile != "" && !d.ExplicitVariant() {
		variant = ""
	}
	return d.Profile, variant, nil
}

// Holder returns the account holder from the first record.
func (d *Document) Holder() model.Holder {
	if len(d.Transactions) == 0 {
		return model.Holder{}
	}
	r := d.Transactions[0]
	return model.Holder{
		Name:          r.AllNames,
		PostalAddress: r.PostAddress,
		Town:          r.Town,
		Email:         r.Email,
		Phone:         r.Phone,
		MemberNo:      r.MemberNo,
		AccountNo:     r.AccountNo,
		Product:       r.Descript,
		Currency:      r.Currency,
	}
}

// Ledger converts the records in order. Records are expected to arrive
// sorted by date; out-of-order dates are logged and left where they are.
func (d *Document) Ledger(logger *slog.Logger) []model.Transaction {
	txns := make([]model.Transaction, len(d.Transactions))
	for i, r := range d.Transactions {
		txns[i] = r.Transaction()
		if i > 0 && txns[i].Date.Before(txns[i-1].Date) {
			logger.Warn("transaction out of date order",
				"trans_id", r.TransID,
				"date", txns[i].Date.Format(time.DateOnly),
				"previous", txns[i-1].Date.Format(time.DateOnly))
		}
	}
	return txns
}

// Transaction converts one record.
func (r Record) Transaction() model.Transaction {
	t := model.Transaction{
		ID:               r.TransID,
		Date:             r.TransDate.Time,
		Type:             model.TransactionType(strings.ToUpper(strings.TrimSpace(r.TransType))),
		Amount:           r.Amount,
		RunningBalance:   r.RunningBalance,
		RunningUnits:     r.RunningShares,
		TaxAmount:        r.TaxAmount,
		DepositAmount:    r.PAmount,
		WithdrawalAmount: r.WAmount,
		InterestAmount:   r.IAmount,
		Units:            r.Shares,
		UnitPrice:        r.Price,
		PaymentMethod:    r.MOP,
		Description:      r.Statement,
		AccountNo:        r.AccountNo,
		Source:           model.SourcePayload,
	}
	t.Hash = t.GenerateHash()
	return t
}

// Statement assembles the layout input for this document.
func (d *Document) Statement(profile engine.Profile, branding engine.Branding, generatedAt time.Time, logger *slog.Logger) engine.Statement {
	return engine.Statement{
		GeneratedAt:  generatedAt,
		Holder:       d.Holder(),
		Branding:     branding,
		Name:         d.PDFName,
		Transactions: d.Ledger(logger),
		Profile:      profile,
	}
}

// FromLedger builds a Document from stored data, the inverse of Ledger and
// Holder.
func FromLedger(name string, variant model.Variant, holder model.Holder, txns []model.Transaction) *Document {
	doc := &Document{
		PDFName:      name,
		Variant:      variant.String(),
		Transactions: make([]Record, len(txns)),
	}
	for i, t := range txns {
		doc.Transactions[i] = Record{
			TransDate:      Date{t.Date},
			Shares:         t.Units,
			Price:          t.UnitPrice,
			MemberNo:       holder.MemberNo,
			Town:           holder.Town,
			Email:          holder.Email,
			AllNames:       holder.Name,
			PostAddress:    holder.PostalAddress,
			Phone:          holder.Phone,
			Descript:       holder.Product,
			AccountNo:      holder.AccountNo,
			TransType:      string(t.Type),
			MOP:            t.PaymentMethod,
			Currency:       holder.Currency,
			Statement:      t.Description,
			TransID:        t.ID,
			TaxAmount:      t.TaxAmount,
			Amount:         t.Amount,
			RunningBalance: t.RunningBalance,
			RunningShares:  t.RunningUnits,
			PAmount:        t.DepositAmount,
			WAmount:        t.WithdrawalAmount,
			IAmount:        t.InterestAmount,
		}
	}
	return doc
}
