package models

import (
	"github.com/shopspring/decimal"

	"devapi/pkg/fieldmap"
)

// AccountState is the lifecycle state of an account.
type AccountState string

const (
	AccountOpen      AccountState = "open"
	AccountClosed    AccountState = "closed"
	AccountSuspended AccountState = "suspended"
	AccountFlagged   AccountState = "flagged"
)

// AccountStates lists every account state.
var AccountStates = []AccountState{AccountOpen, AccountClosed, AccountSuspended, AccountFlagged}

// Account is a synthetic bank account.
type Account struct {
	AccountID    string
	Firstname    string
	Lastname     string
	PhoneNumber  string
	DeveloperID  string
	UCI          string
	RiskScore    int
	CreditScore  int
	CurrencyCode Currency
	ProductType  ProductType
	Email        string
	HomeAddress  string
	State        AccountState
	LiveBalance  bool
	CreditLimit  decimal.Decimal
	Balance      decimal.Decimal
}

// AccountFields maps Account attributes to their wire names.
var AccountFields = fieldmap.MustNew("account",
	fieldmap.Field{Name: "account_id", Wire: "accountId", Coerce: fieldmap.String},
	fieldmap.Field{Name: "firstname", Wire: "firstname", Coerce: fieldmap.String},
	fieldmap.Field{Name: "lastname", Wire: "lastname", Coerce: fieldmap.String},
	fieldmap.Field{Name: "phone_number", Wire: "phoneNumber", Coerce: fieldmap.String},
	fieldmap.Field{Name: "developer_id", Wire: "developerId", Coerce: fieldmap.String},
	fieldmap.Field{Name: "uci", Wire: "uci", Coerce: fieldmap.String},
	fieldmap.Field{Name: "risk_score", Wire: "riskScore", Coerce: fieldmap.Int},
	fieldmap.Field{Name: "credit_score", Wire: "creditScore", Coerce: fieldmap.Int},
	fieldmap.Field{Name: "currency_code", Wire: "currencyCode", Coerce: fieldmap.String},
	fieldmap.Field{Name: "product_type", Wire: "productType", Coerce: fieldmap.String},
	fieldmap.Field{Name: "email", Wire: "email", Coerce: fieldmap.String},
	fieldmap.Field{Name: "home_address", Wire: "homeAddress", Coerce: fieldmap.String},
	fieldmap.Field{Name: "state", Wire: "state", Coerce: fieldmap.Enum(AccountStates...)},
	fieldmap.Field{Name: "live_balance", Wire: "liveBalance", Coerce: fieldmap.Bool},
	fieldmap.Field{Name: "credit_limit", Wire: "creditLimit", Coerce: fieldmap.Decimal},
	fieldmap.Field{Name: "balance", Wire: "balance", Coerce: fieldmap.Decimal},
)

// EncodeAccount converts an account into its wire object. Decimals are
// written as strings.
func EncodeAccount(a Account) (map[string]any, error) {
	return AccountFields.Encode(
		fieldmap.Attr{Name: "account_id", Value: a.AccountID},
		fieldmap.Attr{Name: "firstname", Value: a.Firstname},
		fieldmap.Attr{Name: "lastname", Value: a.Lastname},
		fieldmap.Attr{Name: "phone_number", Value: a.PhoneNumber},
		fieldmap.Attr{Name: "developer_id", Value: a.DeveloperID},
		fieldmap.Attr{Name: "uci", Value: a.UCI},
		fieldmap.Attr{Name: "risk_score", Value: a.RiskScore},
		fieldmap.Attr{Name: "credit_score", Value: a.CreditScore},
		fieldmap.Attr{Name: "currency_code", Value: string(a.CurrencyCode)},
		fieldmap.Attr{Name: "product_type", Value: string(a.ProductType)},
		fieldmap.Attr{Name: "email", Value: a.Email},
		fieldmap.Attr{Name: "home_address", Value: a.HomeAddress},
		fieldmap.Attr{Name: "state", Value: string(a.State)},
		fieldmap.Attr{Name: "live_balance", Value: a.LiveBalance},
		fieldmap.Attr{Name: "credit_limit", Value: a.CreditLimit.String()},
		fieldmap.Attr{Name: "balance", Value: a.Balance.String()},
	)
}

// DecodeAccount converts a wire object into an account.
func DecodeAccount(obj map[string]any) (Account, error) {
	v, err := AccountFields.Decode(obj)
	if err != nil {
		return Account{}, err
	}

	return Account{
		AccountID:    fieldmap.Get[string](v, "account_id"),
		Firstname:    fieldmap.Get[string](v, "firstname"),
		Lastname:     fieldmap.Get[string](v, "lastname"),
		PhoneNumber:  fieldmap.Get[string](v, "phone_number"),
		DeveloperID:  fieldmap.Get[string](v, "developer_id"),
		UCI:          fieldmap.Get[string](v, "uci"),
		RiskScore:    fieldmap.Get[int](v, "risk_score"),
		CreditScore:  fieldmap.Get[int](v, "credit_score"),
		CurrencyCode: Currency(fieldmap.Get[string](v, "currency_code")),
		ProductType:  ProductType(fieldmap.Get[string](v, "product_type")),
		Email:        fieldmap.Get[string](v, "email"),
		HomeAddress:  fieldmap.Get[string](v, "home_address"),
		State:        fieldmap.Get[AccountState](v, "state"),
		LiveBalance:  fieldmap.Get[bool](v, "live_balance"),
		CreditLimit:  fieldmap.Get[decimal.Decimal](v, "credit_limit"),
		Balance:      fieldmap.Get[decimal.Decimal](v, "balance"),
	}, nil
}

// Equal reports whether two accounts hold the same values. Decimals are
// compared numerically, so 1000 equals 1000.00.
func (a Account) Equal(b Account) bool {
	return a.AccountID == b.AccountID &&
		a.Firstname == b.Firstname &&
		a.Lastname == b.Lastname &&
		a.PhoneNumber == b.PhoneNumber &&
		a.DeveloperID == b.DeveloperID &&
		a.UCI == b.UCI &&
		a.RiskScore == b.RiskScore &&
		a.CreditScore == b.CreditScore &&
		a.CurrencyCode == b.CurrencyCode &&
		a.ProductType == b.ProductType &&
		a.Email == b.Email &&
		a.HomeAddress == b.HomeAddress &&
		a.State == b.State &&
		a.LiveBalance == b.LiveBalance &&
		a.CreditLimit.Equal(b.CreditLimit) &&
		a.Balance.Equal(b.Balance)
}
