package models

import (
	"time"

	"github.com/shopspring/decimal"

	"devapi/pkg/fieldmap"
)

// TransactionStatus is the settlement status of a transaction.
type TransactionStatus string

const (
	StatusSuccessful TransactionStatus = "Successful"
	StatusPending    TransactionStatus = "Pending"
	StatusFlagged    TransactionStatus = "Flagged"
	StatusDeclined   TransactionStatus = "Declined"
)

// TransactionStatuses lists every transaction status.
var TransactionStatuses = []TransactionStatus{StatusSuccessful, StatusPending, StatusFlagged, StatusDeclined}

// TimestampLayout is the layout of Transaction.Timestamp.
const TimestampLayout = "2006-01-02 15:04:05"

// Transaction is a synthetic card transaction on an account.
type Transaction struct {
	TransactionUUID      string
	AccountUUID          string
	MerchantUUID         string
	Merchant             Merchant
	CreditDebitIndicator CreditDebitIndicator
	Currency             Currency
	Timestamp            string
	Emoji                string
	Latitude             decimal.Decimal
	Longitude            decimal.Decimal
	Status               TransactionStatus
	Message              string
	PointOfSale          string
	Amount               decimal.Decimal
}

// TransactionFields maps Transaction attributes to their wire names.
var TransactionFields = fieldmap.MustNew("transaction",
	fieldmap.Field{Name: "transaction_uuid", Wire: "transactionUUID", Coerce: fieldmap.String},
	fieldmap.Field{Name: "account_uuid", Wire: "accountUUID", Coerce: fieldmap.String},
	fieldmap.Field{Name: "merchant_uuid", Wire: "merchantUUID", Coerce: fieldmap.String},
	fieldmap.Field{Name: "merchant", Wire: "merchant", Coerce: fieldmap.Nested(DecodeMerchant)},
	fieldmap.Field{Name: "credit_debit_indicator", Wire: "creditDebitIndicator", Coerce: fieldmap.String},
	fieldmap.Field{Name: "currency", Wire: "currency", Coerce: fieldmap.String},
	fieldmap.Field{Name: "timestamp", Wire: "timestamp", Coerce: fieldmap.String},
	fieldmap.Field{Name: "emoji", Wire: "emoji", Coerce: fieldmap.String},
	fieldmap.Field{Name: "latitude", Wire: "latitude", Coerce: fieldmap.Decimal},
	fieldmap.Field{Name: "longitude", Wire: "longitude", Coerce: fieldmap.Decimal},
	fieldmap.Field{Name: "status", Wire: "status", Coerce: fieldmap.Enum(TransactionStatuses...)},
	fieldmap.Field{Name: "message", Wire: "message", Coerce: fieldmap.String},
	fieldmap.Field{Name: "point_of_sale", Wire: "pointOfSale", Coerce: fieldmap.String},
	fieldmap.Field{Name: "amount", Wire: "amount", Coerce: fieldmap.Decimal},
)

// EncodeTransaction converts a transaction into its wire object, encoding the
// merchant through its own codec.
func EncodeTransaction(t Transaction) (map[string]any, error) {
	merchant, err := EncodeMerchant(t.Merchant)
	if err != nil {
		return nil, err
	}

	return TransactionFields.Encode(
		fieldmap.Attr{Name: "transaction_uuid", Value: t.TransactionUUID},
		fieldmap.Attr{Name: "account_uuid", Value: t.AccountUUID},
		fieldmap.Attr{Name: "merchant_uuid", Value: t.MerchantUUID},
		fieldmap.Attr{Name: "merchant", Value: merchant},
		fieldmap.Attr{Name: "credit_debit_indicator", Value: string(t.CreditDebitIndicator)},
		fieldmap.Attr{Name: "currency", Value: string(t.Currency)},
		fieldmap.Attr{Name: "timestamp", Value: t.Timestamp},
		fieldmap.Attr{Name: "emoji", Value: t.Emoji},
		fieldmap.Attr{Name: "latitude", Value: t.Latitude.String()},
		fieldmap.Attr{Name: "longitude", Value: t.Longitude.String()},
		fieldmap.Attr{Name: "status", Value: string(t.Status)},
		fieldmap.Attr{Name: "message", Value: t.Message},
		fieldmap.Attr{Name: "point_of_sale", Value: t.PointOfSale},
		fieldmap.Attr{Name: "amount", Value: t.Amount.String()},
	)
}

// DecodeTransaction converts a wire object into a transaction.
func DecodeTransaction(obj map[string]any) (Transaction, error) {
	v, err := TransactionFields.Decode(obj)
	if err != nil {
		return Transaction{}, err
	}

	return Transaction{
		TransactionUUID:      fieldmap.Get[string](v, "transaction_uuid"),
		AccountUUID:          fieldmap.Get[string](v, "account_uuid"),
		MerchantUUID:         fieldmap.Get[string](v, "merchant_uuid"),
		Merchant:             fieldmap.Get[Merchant](v, "merchant"),
		CreditDebitIndicator: CreditDebitIndicator(fieldmap.Get[string](v, "credit_debit_indicator")),
		Currency:             Currency(fieldmap.Get[string](v, "currency")),
		Timestamp:            fieldmap.Get[string](v, "timestamp"),
		Emoji:                fieldmap.Get[string](v, "emoji"),
		Latitude:             fieldmap.Get[decimal.Decimal](v, "latitude"),
		Longitude:            fieldmap.Get[decimal.Decimal](v, "longitude"),
		Status:               fieldmap.Get[TransactionStatus](v, "status"),
		Message:              fieldmap.Get[string](v, "message"),
		PointOfSale:          fieldmap.Get[string](v, "point_of_sale"),
		Amount:               fieldmap.Get[decimal.Decimal](v, "amount"),
	}, nil
}

// Time parses Timestamp as UTC.
func (t Transaction) Time() (time.Time, error) {
	return time.Parse(TimestampLayout, t.Timestamp)
}

// Equal reports whether two transactions hold the same values.
func (t Transaction) Equal(o Transaction) bool {
	return t.TransactionUUID == o.TransactionUUID &&
		t.AccountUUID == o.AccountUUID &&
		t.MerchantUUID == o.MerchantUUID &&
		t.Merchant.Equal(o.Merchant) &&
		t.CreditDebitIndicator == o.CreditDebitIndicator &&
		t.Currency == o.Currency &&
		t.Timestamp == o.Timestamp &&
		t.Emoji == o.Emoji &&
		t.Latitude.Equal(o.Latitude) &&
		t.Longitude.Equal(o.Longitude) &&
		t.Status == o.Status &&
		t.Message == o.Message &&
		t.PointOfSale == o.PointOfSale &&
		t.Amount.Equal(o.Amount)
}
