// Package client is the facade over the sandbox data API. Each method is a
// single request through a transport.Transport; the client holds no state
// besides the transport and is safe for concurrent use.
package client

import (
	"context"
	"fmt"
	"net/url"
	"regexp"

	"devapi/pkg/filters"
	"devapi/pkg/models"
	"devapi/pkg/transport"
)

// MaxTransactionsPerRequest is the most transactions one create call may ask for.
const MaxTransactionsPerRequest = 25

// MonetaryPattern is the accepted shape of a transaction amount.
var MonetaryPattern = regexp.MustCompile(`^-?[0-9]+(\.[0-9]{1,2})?$`)

// Client calls the data API through a transport.
type Client struct {
	transport transport.Transport
}

// New creates a client over t.
func New(t transport.Transport) *Client {
	return &Client{transport: t}
}

// CreateAccounts creates quantity accounts. Options override generated
// attributes; anything not overridden is left out of the request.
func (c *Client) CreateAccounts(ctx context.Context, quantity int, opts ...AccountOption) ([]models.Account, error) {
	if err := validateQuantity(quantity, 0); err != nil {
		return nil, err
	}

	payload := accountPayload{Quantity: quantity, LiveBalance: true}
	for _, opt := range opts {
		opt(&payload)
	}
	if payload.NumTransactions < 0 {
		return nil, &ValidationError{Field: "numTransactions", Value: payload.NumTransactions, Message: "must not be negative"}
	}

	body, err := c.transport.Post(ctx, "accounts/create", payload)
	if err != nil {
		return nil, err
	}
	return models.DecodeAccounts(body)
}

// GetAccounts lists the accounts created with the token, narrowed by filters.
func (c *Client) GetAccounts(ctx context.Context, fs ...filters.FilterRelation) ([]models.Account, error) {
	body, err := c.transport.Get(ctx, "accounts", queryOf(fs))
	if err != nil {
		return nil, err
	}
	return models.DecodeAccounts(body)
}

// GetAccount fetches one account, failing with a NotFoundError when the
// API returns none.
func (c *Client) GetAccount(ctx context.Context, accountID string) (models.Account, error) {
	if err := validateID("accountId", accountID); err != nil {
		return models.Account{}, err
	}

	body, err := c.transport.Get(ctx, "accounts/"+url.PathEscape(accountID), nil)
	if err != nil {
		return models.Account{}, err
	}

	accounts, err := models.DecodeAccounts(body)
	if err != nil {
		return models.Account{}, err
	}
	if len(accounts) == 0 {
		return models.Account{}, &NotFoundError{Resource: "account", ID: accountID}
	}
	return accounts[0], nil
}

// CreateTransactions creates up to MaxTransactionsPerRequest transactions
// on an account.
func (c *Client) CreateTransactions(ctx context.Context, accountID string, quantity int, opts ...TransactionOption) ([]models.Transaction, error) {
	if err := validateID("accountId", accountID); err != nil {
		return nil, err
	}
	if err := validateQuantity(quantity, MaxTransactionsPerRequest); err != nil {
		return nil, err
	}

	payload := transactionPayload{Quantity: quantity}
	for _, opt := range opts {
		opt(&payload)
	}
	if payload.Amount != nil && !MonetaryPattern.MatchString(*payload.Amount) {
		return nil, &ValidationError{Field: "amount", Value: *payload.Amount, Message: "must be a valid monetary value"}
	}

	body, err := c.transport.Post(ctx, transactionsPath(accountID)+"/create", payload)
	if err != nil {
		return nil, err
	}
	return models.DecodeTransactions(body)
}

// GetTransactions lists an account's transactions, narrowed by filters.
func (c *Client) GetTransactions(ctx context.Context, accountID string, fs ...filters.FilterRelation) ([]models.Transaction, error) {
	if err := validateID("accountId", accountID); err != nil {
		return nil, err
	}

	body, err := c.transport.Get(ctx, transactionsPath(accountID)+"/transactions", queryOf(fs))
	if err != nil {
		return nil, err
	}
	return models.DecodeTransactions(body)
}

// GetTransaction fetches one transaction of an account, failing with a
// NotFoundError when the API returns none.
func (c *Client) GetTransaction(ctx context.Context, accountID, transactionID string) (models.Transaction, error) {
	if err := validateID("accountId", accountID); err != nil {
		return models.Transaction{}, err
	}
	if err := validateID("transactionId", transactionID); err != nil {
		return models.Transaction{}, err
	}

	path := transactionsPath(accountID) + "/transactions/" + url.PathEscape(transactionID)
	body, err := c.transport.Get(ctx, path, nil)
	if err != nil {
		return models.Transaction{}, err
	}

	txns, err := models.DecodeTransactions(body)
	if err != nil {
		return models.Transaction{}, err
	}
	if len(txns) == 0 {
		return models.Transaction{}, &NotFoundError{Resource: "transaction", ID: transactionID}
	}
	return txns[0], nil
}

func transactionsPath(accountID string) string {
	return "transactions/accounts/" + url.PathEscape(accountID)
}

func queryOf(fs []filters.FilterRelation) url.Values {
	if len(fs) == 0 {
		return nil
	}
	return filters.Render(fs).Values()
}

func validateID(field, id string) error {
	if id == "" {
		return &ValidationError{Field: field, Value: id, Message: "must not be empty"}
	}
	return nil
}

// validateQuantity checks 1 <= quantity (<= max when max > 0).
func validateQuantity(quantity, max int) error {
	if quantity < 1 {
		return &ValidationError{Field: "quantity", Value: quantity, Message: "must be at least 1"}
	}
	if max > 0 && quantity > max {
		return &ValidationError{Field: "quantity", Value: quantity, Message: fmt.Sprintf("must be at most %d", max)}
	}
	return nil
}
