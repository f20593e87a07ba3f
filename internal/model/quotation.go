package model

import "github.com/shopspring/decimal"

type QuotationItem struct {
	Number      int // 1-based, contiguous within a quotation
	PartNumber  string
	Description string
	Quantity    decimal.Decimal
	Unit        string
	UnitPrice   decimal.Decimal
	Subtotal    decimal.Decimal // derived from Quantity and UnitPrice
}

type Terms struct {
	TermsOfPayment string
	Delivery       string
	Warranty       string
	PriceValidity  string
	Discount       decimal.Decimal
}

type Quotation struct {
	Name     string
	Items    []QuotationItem
	Terms    Terms
	Revision int // item row count seen at load time, guards concurrent saves
}

type Totals struct {
	Subtotal  decimal.Decimal
	Discount  decimal.Decimal
	VATRate   decimal.Decimal
	VAT       decimal.Decimal
	AmountDue decimal.Decimal
}
