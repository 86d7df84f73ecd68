package model

// Holder identifies the account owner printed in the statement header.
type Holder struct {
	Name          string
	PostalAddress string
	Town          string
	Email         string
	Phone         string
	MemberNo      string
	AccountNo     string
	Product       string // Fund or product name shown next to the statement date
	Currency      string
}
