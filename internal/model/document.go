package model

import "time"

type QuotationDocument struct {
	Quotation   Quotation
	Totals      Totals
	Company     Company
	Currency    string
	GeneratedAt time.Time
}
