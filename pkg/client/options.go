package client

import (
	"github.com/shopspring/decimal"

	"devapi/pkg/models"
)

// accountPayload is the body of POST accounts/create. Field order is the
// wire key order; unset overrides are omitted.
type accountPayload struct {
	Quantity        int                  `json:"quantity"`
	NumTransactions int                  `json:"numTransactions"`
	LiveBalance     bool                 `json:"liveBalance"`
	Balance         *string              `json:"balance,omitempty"`
	CreditScore     *int                 `json:"creditScore,omitempty"`
	CurrencyCode    *models.Currency     `json:"currencyCode,omitempty"`
	ProductType     *models.ProductType  `json:"productType,omitempty"`
	RiskScore       *int                 `json:"riskScore,omitempty"`
	State           *models.AccountState `json:"state,omitempty"`
	CreditLimit     *string              `json:"creditLimit,omitempty"`
}

// AccountOption overrides one generated attribute of created accounts.
type AccountOption func(*accountPayload)

// WithNumTransactions creates n transactions on each new account (default 0).
func WithNumTransactions(n int) AccountOption {
	return func(p *accountPayload) { p.NumTransactions = n }
}

// WithLiveBalance sets whether new accounts report a live balance (default true).
func WithLiveBalance(live bool) AccountOption {
	return func(p *accountPayload) { p.LiveBalance = live }
}

// WithBalance sets the opening balance. The value is sent in its canonical
// decimal form, so 100.50 goes out as "100.5".
func WithBalance(balance decimal.Decimal) AccountOption {
	return func(p *accountPayload) { p.Balance = ptr(balance.String()) }
}

// WithCreditScore sets the credit score of new accounts.
func WithCreditScore(score int) AccountOption {
	return func(p *accountPayload) { p.CreditScore = ptr(score) }
}

// WithCurrencyCode sets the account currency.
func WithCurrencyCode(code models.Currency) AccountOption {
	return func(p *accountPayload) { p.CurrencyCode = ptr(code) }
}

// WithProductType sets the product type (Credit or Debit).
func WithProductType(product models.ProductType) AccountOption {
	return func(p *accountPayload) { p.ProductType = ptr(product) }
}

// WithRiskScore sets the risk score of new accounts.
func WithRiskScore(score int) AccountOption {
	return func(p *accountPayload) { p.RiskScore = ptr(score) }
}

// WithState sets the account state.
func WithState(state models.AccountState) AccountOption {
	return func(p *accountPayload) { p.State = ptr(state) }
}

// WithCreditLimit sets the credit limit, sent in canonical decimal form
// like WithBalance.
func WithCreditLimit(limit decimal.Decimal) AccountOption {
	return func(p *accountPayload) { p.CreditLimit = ptr(limit.String()) }
}

// transactionPayload is the body of POST transactions/accounts/{id}/create.
type transactionPayload struct {
	Quantity             int                          `json:"quantity"`
	Amount               *string                      `json:"amount,omitempty"`
	Currency             *models.Currency             `json:"currency,omitempty"`
	CreditDebitIndicator *models.CreditDebitIndicator `json:"credit_debit_indicator,omitempty"`
	Emoji                *string                      `json:"emoji,omitempty"`
	Status               *models.TransactionStatus    `json:"status,omitempty"`
}

// TransactionOption overrides one generated attribute of created transactions.
type TransactionOption func(*transactionPayload)

// WithAmount sets the amount of every created transaction. It must match
// MonetaryPattern or CreateTransactions fails with a ValidationError.
func WithAmount(amount string) TransactionOption {
	return func(p *transactionPayload) { p.Amount = ptr(amount) }
}

// WithCurrency sets the currency of created transactions.
func WithCurrency(currency models.Currency) TransactionOption {
	return func(p *transactionPayload) { p.Currency = ptr(currency) }
}

// WithCreditDebitIndicator marks created transactions as Credit or Debit.
func WithCreditDebitIndicator(indicator models.CreditDebitIndicator) TransactionOption {
	return func(p *transactionPayload) { p.CreditDebitIndicator = ptr(indicator) }
}

// WithEmoji sets the emoji shown with created transactions.
func WithEmoji(emoji string) TransactionOption {
	return func(p *transactionPayload) { p.Emoji = ptr(emoji) }
}

// WithStatus sets the status of created transactions.
func WithStatus(status models.TransactionStatus) TransactionOption {
	return func(p *transactionPayload) { p.Status = ptr(status) }
}

func ptr[T any](v T) *T {
	return &v
}
