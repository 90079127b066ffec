package models

// Currency is an ISO 4217 code accepted by the sandbox.
type Currency string

const (
	USD Currency = "USD"
	EUR Currency = "EUR"
	GBP Currency = "GBP"
	INR Currency = "INR"
	AUD Currency = "AUD"
	CAD Currency = "CAD"
	SGD Currency = "SGD"
	CHF Currency = "CHF"
	MYR Currency = "MYR"
	JPY Currency = "JPY"
	CNY Currency = "CNY"
)

// Currencies lists every supported currency.
var Currencies = []Currency{USD, EUR, GBP, INR, AUD, CAD, SGD, CHF, MYR, JPY, CNY}

// ProductType is the kind of account product.
type ProductType string

const (
	ProductCredit ProductType = "Credit"
	ProductDebit  ProductType = "Debit"
)

// CreditDebitIndicator marks the direction of a transaction.
type CreditDebitIndicator string

const (
	Credit CreditDebitIndicator = "Credit"
	Debit  CreditDebitIndicator = "Debit"
)
