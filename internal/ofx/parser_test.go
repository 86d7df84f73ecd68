package ofx

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/Veraticus/statement-press/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Sample OFX data for testing.
const sampleBankOFX = `OFXHEADER:100
DATA:OFXSGML
VERSION:102
SECURITY:NONE
ENCODING:USASCII
CHARSET:1252
COMPRESSION:NONE
OLDFILEUID:NONE
NEWFILEUID:NONE

<OFX>
<SIGNONMSGSRSV1>
<SONRS>
<STATUS>
<CODE>0
<SEVERITY>INFO
</STATUS>
<DTSERVER>20240315120000[0:GMT]
<LANGUAGE>ENG
</SONRS>
</SIGNONMSGSRSV1>
<BANKMSGSRSV1>
<STMTTRNRS>
<TRNUID>1
<STATUS>
<CODE>0
<SEVERITY>INFO
</STATUS>
<STMTRS>
<CURDEF>USD
<BANKACCTFROM>
<BANKID>123456789
<ACCTID>1234567890
<ACCTTYPE>CHECKING
</BANKACCTFROM>
<BANKTRANLIST>
<DTSTART>20240101120000[0:GMT]
<DTEND>20240131120000[0:GMT]
<STMTTRN>
<TRNTYPE>DEBIT
<DTPOSTED>20240115120000[0:GMT]
<TRNAMT>-25.50
<FITID>2024011501
<NAME>STARBUCKS STORE #1234
</STMTTRN>
<STMTTRN>
<TRNTYPE>DEBIT
<DTPOSTED>20240120120000[0:GMT]
<TRNAMT>-125.00
<FITID>2024012001
<NAME>Whole Foods Market
</STMTTRN>
<STMTTRN>
<TRNTYPE>CHECK
<DTPOSTED>20240125120000[0:GMT]
<TRNAMT>-500.00
<FITID>2024012501
<CHECKNUM>1234
<NAME>CHECK #1234
</STMTTRN>
</BANKTRANLIST>
<LEDGERBAL>
<BALAMT>1000.00
<DTASOF>20240131120000[0:GMT]
</LEDGERBAL>
</STMTRS>
</STMTTRNRS>
</BANKMSGSRSV1>
</OFX>`

const sampleCreditCardOFX = `OFXHEADER:100
DATA:OFXSGML
VERSION:102
SECURITY:NONE
ENCODING:USASCII
CHARSET:1252
COMPRESSION:NONE
OLDFILEUID:NONE
NEWFILEUID:NONE

<OFX>
<SIGNONMSGSRSV1>
<SONRS>
<STATUS>
<CODE>0
<SEVERITY>INFO
</STATUS>
<DTSERVER>20240315120000[0:GMT]
<LANGUAGE>ENG
</SONRS>
</SIGNONMSGSRSV1>
<CREDITCARDMSGSRSV1>
<CCSTMTTRNRS>
<TRNUID>1
<STATUS>
<CODE>0
<SEVERITY>INFO
</STATUS>
<CCSTMTRS>
<CURDEF>USD
<CCACCTFROM>
<ACCTID>4111111111111111
</CCACCTFROM>
<BANKTRANLIST>
<DTSTART>20240101120000[0:GMT]
<DTEND>20240131120000[0:GMT]
<STMTTRN>
<TRNTYPE>DEBIT
<DTPOSTED>20240110120000[0:GMT]
<TRNAMT>-45.99
<FITID>CC2024011001
<NAME>AMAZON.COM*RT4Y7HG2
</STMTTRN>
<STMTTRN>
<TRNTYPE>DEBIT
<DTPOSTED>20240115120000[0:GMT]
<TRNAMT>-15.00
<FITID>CC2024011501
<NAME>NETFLIX.COM
</STMTTRN>
</BANKTRANLIST>
<LEDGERBAL>
<BALAMT>-500.00
<DTASOF>20240131120000[0:GMT]
</LEDGERBAL>
</CCSTMTRS>
</CCSTMTTRNRS>
</CREDITCARDMSGSRSV1>
</OFX>`

const interestOFX = `OFXHEADER:100
DATA:OFXSGML
VERSION:102
SECURITY:NONE
ENCODING:USASCII
CHARSET:1252
COMPRESSION:NONE
OLDFILEUID:NONE
NEWFILEUID:NONE

<OFX>
<SIGNONMSGSRSV1>
<SONRS>
<STATUS>
<CODE>0
<SEVERITY>Info
</STATUS>
<DTSERVER>20240315120000[0:GMT]
<LANGUAGE>ENG
</SONRS>
</SIGNONMSGSRSV1>
<BANKMSGSRSV1>
<STMTTRNRS>
<TRNUID>1
<STATUS>
<CODE>0
<SEVERITY>INFO
</STATUS>
<STMTRS>
<CURDEF>KES
<BANKACCTFROM>
<BANKID>11
<ACCTID>001-00019-001
<ACCTTYPE>SAVINGS
</BANKACCTFROM>
<BANKTRANLIST>
<DTSTART>20240101120000[0:GMT]
<DTEND>20240131120000[0:GMT]
<STMTTRN>
<TRNTYPE>INT
<DTPOSTED>20240131120000[0:GMT]
<TRNAMT>12.75
<FITID>INT-2024-01
<NAME>INTEREST
</STMTTRN>
<STMTTRN>
<TRNTYPE>CREDIT
<DTPOSTED>20240105120000[0:GMT]
<TRNAMT>5000.00
<FITID>500
<NAME>DEPOSIT
<MEMO>M-PESA QWE123
</STMTTRN>
</BANKTRANLIST>
<LEDGERBAL>
<BALAMT>5012.75
<DTASOF>20240131120000[0:GMT]
</LEDGERBAL>
</STMTRS>
</STMTTRNRS>
</BANKMSGSRSV1>
</OFX>`

func newTestParser() *Parser {
	return NewParser(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestParseFile_BankStatement(t *testing.T) {
	statements, err := newTestParser().ParseFile(context.Background(), strings.NewReader(sampleBankOFX))
	require.NoError(t, err)
	require.Len(t, statements, 1)

	stmt := statements[0]
	assert.Equal(t, "1234567890", stmt.AccountNo)
	assert.Equal(t, "USD", stmt.Currency)
	require.Len(t, stmt.Transactions, 3)

	first := stmt.Transactions[0]
	assert.Equal(t, int64(2024011501), first.ID)
	assert.Equal(t, model.TypeWithdrawal, first.Type)
	assert.InDelta(t, -25.50, first.Amount, 1e-9)
	assert.InDelta(t, -25.50, first.WithdrawalAmount, 1e-9)
	assert.Equal(t, "STARBUCKS STORE #1234", first.Description)
	assert.Equal(t, "DEBIT", first.PaymentMethod)
	assert.Equal(t, model.SourceOFX, first.Source)
	assert.Equal(t, time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC), first.Date)
	assert.NotEmpty(t, first.Hash)

	// Opening balance is 1000 + 650.50; the last entry lands on the ledger balance.
	assert.InDelta(t, 1625.00, stmt.Transactions[0].RunningBalance, 1e-9)
	assert.InDelta(t, 1500.00, stmt.Transactions[1].RunningBalance, 1e-9)
	assert.InDelta(t, 1000.00, stmt.Transactions[2].RunningBalance, 1e-9)
}

func TestParseFile_CreditCard(t *testing.T) {
	statements, err := newTestParser().ParseFile(context.Background(), strings.NewReader(sampleCreditCardOFX))
	require.NoError(t, err)
	require.Len(t, statements, 1)

	stmt := statements[0]
	assert.Equal(t, "4111111111111111", stmt.AccountNo)
	require.Len(t, stmt.Transactions, 2)
	assert.InDelta(t, -500.00, stmt.Transactions[1].RunningBalance, 1e-9)
	assert.NotZero(t, stmt.Transactions[0].ID)
}

func TestParseFile_InterestAndDepositsSortedByDate(t *testing.T) {
	statements, err := newTestParser().ParseFile(context.Background(), strings.NewReader(interestOFX))
	require.NoError(t, err)
	require.Len(t, statements, 1)

	txns := statements[0].Transactions
	require.Len(t, txns, 2)

	deposit, interest := txns[0], txns[1]
	assert.Equal(t, model.TypePurchase, deposit.Type)
	assert.InDelta(t, 5000.0, deposit.DepositAmount, 1e-9)
	assert.Equal(t, "M-PESA QWE123", deposit.Description)
	assert.InDelta(t, 5000.0, deposit.RunningBalance, 1e-9)

	assert.Equal(t, model.TypeInterest, interest.Type)
	assert.InDelta(t, 12.75, interest.InterestAmount, 1e-9)
	assert.InDelta(t, 5012.75, interest.RunningBalance, 1e-9)
}

func TestParseFile_Invalid(t *testing.T) {
	_, err := newTestParser().ParseFile(context.Background(), strings.NewReader("not an ofx file"))
	assert.Error(t, err)
}

func TestTransactionID(t *testing.T) {
	assert.Equal(t, int64(42), transactionID("42"))

	derived := transactionID("CC2024011001")
	assert.Positive(t, derived)
	assert.Equal(t, derived, transactionID("CC2024011001"))
	assert.NotEqual(t, derived, transactionID("CC2024011501"))
}

func TestPreprocessOFX(t *testing.T) {
	in := "\n\n  <OFX>\n<SEVERITY>Info</SEVERITY>\n<CODE\n"
	out := preprocessOFX(in)
	assert.True(t, strings.HasPrefix(out, "<OFX>"))
	assert.Contains(t, out, "<SEVERITY>INFO</SEVERITY>")
	assert.Contains(t, out, "<CODE>\n")
}
