package payload

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/Veraticus/statement-press/internal/common"
	"github.com/Veraticus/statement-press/internal/engine"
	"github.com/Veraticus/statement-press/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `{
  "pdf_name": "test",
  "transactions": [
    {
      "amount": 100, "member_no": "00019", "town": "Litein", "e_mail": "jk@gmail.com",
      "allnames": "Japheth Kiptoo", "post_address": "Utawala, Nairobi", "gsm_no": "0724765149",
      "descript": "MMF", "security_code": "001", "trans_id": 2324,
      "trans_date": "2024-03-01T09:30:00.000Z", "account_no": "001-00019-001", "taxamt": 0,
      "trans_type": "purchase", "running_balance": 1000, "running_shares": 0, "netamount": 0,
      "mop": "M-PESA", "currency": "KES", "p_amount": 100, "w_amount": 0, "i_amount": 0,
      "price": null, "shares": null
    },
    {
      "amount": -40, "member_no": "00019", "trans_id": 2325, "trans_date": "2024-02-28",
      "account_no": "001-00019-001", "trans_type": "WITHDRAWAL", "running_balance": 960,
      "mop": "EFT", "statement": "Partial withdrawal", "w_amount": -40, "price": 1.25, "shares": 3
    }
  ]
}`

func TestDecode(t *testing.T) {
	doc, err := Decode(strings.NewReader(sample))
	require.NoError(t, err)

	assert.Equal(t, "test", doc.PDFName)
	require.Len(t, doc.Transactions, 2)

	holder := doc.Holder()
	assert.Equal(t, "Japheth Kiptoo", holder.Name)
	assert.Equal(t, "MMF", holder.Product)
	assert.Equal(t, "001-00019-001", holder.AccountNo)
	assert.Equal(t, "KES", holder.Currency)

	var logs bytes.Buffer
	txns := doc.Ledger(slog.New(slog.NewTextHandler(&logs, nil)))
	require.Len(t, txns, 2)

	first, second := txns[0], txns[1]
	assert.Equal(t, int64(2324), first.ID)
	assert.Equal(t, model.TypePurchase, first.Type)
	assert.Equal(t, time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC), first.Date)
	assert.Nil(t, first.Units)
	assert.Equal(t, "M-PESA", first.Label())
	assert.NotEmpty(t, first.Hash)

	assert.Equal(t, "Partial withdrawal", second.Label())
	require.NotNil(t, second.UnitPrice)
	assert.InDelta(t, 1.25, *second.UnitPrice, 1e-9)
	assert.InDelta(t, -40.0, second.WithdrawalAmount, 1e-9)

	// The second record is dated before the first: logged, not reordered.
	assert.Contains(t, logs.String(), "out of date order")
	assert.Equal(t, int64(2325), txns[1].ID)
}

func TestDecode_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{name: "not json", input: "pdf"},
		{name: "missing name", input: `{"transactions":[{"trans_date":"2024-01-01"}]}`},
		{name: "bad date", input: `{"pdf_name":"x","transactions":[{"trans_date":"01/02/2024"}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(strings.NewReader(tt.input))
			assert.ErrorIs(t, err, ErrInvalidPayload)
		})
	}

	_, err := Decode(strings.NewReader(`{"pdf_name":"x","transactions":[]}`))
	assert.ErrorIs(t, err, common.ErrEmptyStatement)
}

func TestResolveVariant(t *testing.T) {
	yes, no := true, false

	tests := []struct {
		doc     Document
		want    model.Variant
		name    string
		wantErr bool
	}{
		{name: "default", doc: Document{}, want: model.VariantCashFlow},
		{name: "mmf flag", doc: Document{MMF: &yes}, want: model.VariantCashFlow},
		{name: "fund flag", doc: Document{MMF: &no}, want: model.VariantUnitFund},
		{name: "explicit wins", doc: Document{Variant: "unit-fund", MMF: &yes}, want: model.VariantUnitFund},
		{name: "unknown", doc: Document{Variant: "ledger"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.doc.ResolveVariant()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidPayload)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestProfileRequest(t *testing.T) {
	no := false

	name, variant, err := (&Document{}).ProfileRequest()
	require.NoError(t, err)
	assert.Empty(t, name)
	assert.Equal(t, model.VariantCashFlow, variant)

	name, variant, err = (&Document{Profile: "money-market"}).ProfileRequest()
	require.NoError(t, err)
	assert.Equal(t, "money-market", name)
	assert.Empty(t, variant, "named profile brings its own variant")

	_, variant, err = (&Document{Profile: "money-market", MMF: &no}).ProfileRequest()
	require.NoError(t, err)
	assert.Equal(t, model.VariantUnitFund, variant)

	_, _, err = (&Document{Variant: "ledger"}).ProfileRequest()
	assert.ErrorIs(t, err, ErrInvalidPayload)
}

func TestFromLedger(t *testing.T) {
	doc, err := Decode(strings.NewReader(sample))
	require.NoError(t, err)
	txns := doc.Ledger(slog.New(slog.NewTextHandler(io.Discard, nil)))

	rebuilt := FromLedger("again", model.VariantUnitFund, doc.Holder(), txns)
	raw, err := json.Marshal(rebuilt)
	require.NoError(t, err)

	back, err := Decode(bytes.NewReader(raw))
	require.NoError(t, err)
	assert.Equal(t, "unit-fund", back.Variant)
	assert.Equal(t, doc.Holder(), back.Holder())
	assert.Equal(t, txns, back.Ledger(slog.New(slog.NewTextHandler(io.Discard, nil))))
}

func TestDocument_Statement(t *testing.T) {
	doc, err := Decode(strings.NewReader(sample))
	require.NoError(t, err)

	profile, err := engine.LookupProfile(engine.ProfileCashFlow)
	require.NoError(t, err)
	at := time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC)

	stmt := doc.Statement(profile, engine.DefaultBranding(), at, slog.New(slog.NewTextHandler(io.Discard, nil)))
	assert.Equal(t, "test", stmt.Name)
	assert.Equal(t, at, stmt.GeneratedAt)
	assert.Equal(t, "Japheth Kiptoo", stmt.Holder.Name)
	assert.Equal(t, model.VariantCashFlow, stmt.Variant())
	assert.Len(t, stmt.Transactions, 2)
}
