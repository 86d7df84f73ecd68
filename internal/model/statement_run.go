package model

import "time"

// StatementRun records one generated statement document.
type StatementRun struct {
	CreatedAt time.Time
	AccountNo string
	Name      string
	Variant   Variant
	Profile   string
	Output    string
	ID        int64
	Pages     int
	Records   int
}
