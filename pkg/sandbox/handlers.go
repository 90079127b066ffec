package sandbox

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"slices"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"devapi/pkg/client"
	"devapi/pkg/filters"
	"devapi/pkg/models"
)

var productTypes = []models.ProductType{models.ProductCredit, models.ProductDebit}

var indicators = []models.CreditDebitIndicator{models.Credit, models.Debit}

func (s *Server) handleCreateAccounts(w http.ResponseWriter, r *http.Request) {
	dev := developerFrom(r.Context())

	var req AccountRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := validateAccountRequest(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	accounts := make([]models.Account, req.Quantity)
	for i := range accounts {
		accounts[i] = s.gen.Account(dev, req)
	}
	s.store.AddAccounts(dev, accounts...)

	if req.NumTransactions > 0 {
		for _, a := range accounts {
			txns := make([]models.Transaction, req.NumTransactions)
			for i := range txns {
				txns[i] = s.gen.Transaction(a, TransactionRequest{})
			}
			if err := s.store.AddTransactions(dev, a.AccountID, txns...); err != nil {
				writeError(w, http.StatusInternalServerError, err.Error())
				return
			}
		}
	}

	s.logger.Info("accounts created",
		zap.String("developer_id", dev),
		zap.Int("quantity", req.Quantity),
		zap.Int("transactions_each", req.NumTransactions),
	)
	writeRecords(w, http.StatusCreated, models.AccountsKey, accounts, models.EncodeAccount, nil)
}

func (s *Server) handleListAccounts(w http.ResponseWriter, r *http.Request) {
	fs, err := parseQuery(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	accounts := s.store.Accounts(developerFrom(r.Context()))
	writeRecords(w, http.StatusOK, models.AccountsKey, accounts, models.EncodeAccount, fs)
}

func (s *Server) handleGetAccount(w http.ResponseWriter, r *http.Request) {
	id, err := pathVar(r, "accountId")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var found []models.Account
	if a, ok := s.store.Account(developerFrom(r.Context()), id); ok {
		found = append(found, a)
	}
	writeRecords(w, http.StatusOK, models.AccountsKey, found, models.EncodeAccount, nil)
}

// transactionBody accepts the amount as a JSON string or number.
type transactionBody struct {
	TransactionRequest
	Amount json.RawMessage `json:"amount"`
}

func (s *Server) handleCreateTransactions(w http.ResponseWriter, r *http.Request) {
	dev := developerFrom(r.Context())
	id, err := pathVar(r, "accountId")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var body transactionBody
	if err := decodeBody(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	req := body.TransactionRequest
	if req.Amount, err = parseAmount(body.Amount); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := validateTransactionRequest(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	account, ok := s.store.Account(dev, id)
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Sprintf("account %q not found", id))
		return
	}

	txns := make([]models.Transaction, req.Quantity)
	for i := range txns {
		txns[i] = s.gen.Transaction(account, req)
	}
	if err := s.store.AddTransactions(dev, id, txns...); err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}

	s.logger.Info("transactions created",
		zap.String("developer_id", dev),
		zap.String("account_id", id),
		zap.Int("quantity", req.Quantity),
	)
	writeRecords(w, http.StatusCreated, models.TransactionsKey, txns, models.EncodeTransaction, nil)
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	id, err := pathVar(r, "accountId")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	fs, err := parseQuery(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	txns := s.store.Transactions(developerFrom(r.Context()), id)
	writeRecords(w, http.StatusOK, models.TransactionsKey, txns, models.EncodeTransaction, fs)
}

func (s *Server) handleGetTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := pathVar(r, "accountId")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	tid, err := pathVar(r, "transactionId")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var found []models.Transaction
	for _, t := range s.store.Transactions(developerFrom(r.Context()), id) {
		if t.TransactionUUID == tid {
			found = append(found, t)
			break
		}
	}
	writeRecords(w, http.StatusOK, models.TransactionsKey, found, models.EncodeTransaction, nil)
}

// writeRecords encodes the records that pass fs into a {key: [...]} envelope.
func writeRecords[T any](w http.ResponseWriter, status int, key string, items []T, encode func(T) (map[string]any, error), fs []filters.FilterRelation) {
	list := make([]any, 0, len(items))
	for _, item := range items {
		obj, err := encode(item)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		if matches(obj, fs) {
			list = append(list, obj)
		}
	}
	writeJSON(w, status, map[string]any{key: list})
}

func decodeBody(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

// pathVar returns a decoded route variable.
func pathVar(r *http.Request, name string) (string, error) {
	v, err := url.PathUnescape(mux.Vars(r)[name])
	if err != nil {
		return "", fmt.Errorf("invalid %s: %w", name, err)
	}
	return v, nil
}

func parseAmount(raw json.RawMessage) (*decimal.Decimal, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}

	s := string(raw)
	if raw[0] == '"' {
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, fmt.Errorf("invalid amount: %w", err)
		}
	}
	if !client.MonetaryPattern.MatchString(s) {
		return nil, fmt.Errorf("amount %q is not a valid monetary value", s)
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil, fmt.Errorf("invalid amount: %w", err)
	}
	return &d, nil
}

func validateAccountRequest(req AccountRequest) error {
	var errs []error
	if req.Quantity < 1 {
		errs = append(errs, errors.New("quantity must be at least 1"))
	}
	if req.NumTransactions < 0 {
		errs = append(errs, errors.New("numTransactions must not be negative"))
	}
	if req.CurrencyCode != nil && !slices.Contains(models.Currencies, *req.CurrencyCode) {
		errs = append(errs, fmt.Errorf("unsupported currencyCode %q", *req.CurrencyCode))
	}
	if req.ProductType != nil && !slices.Contains(productTypes, *req.ProductType) {
		errs = append(errs, fmt.Errorf("unsupported productType %q", *req.ProductType))
	}
	if req.State != nil && !slices.Contains(models.AccountStates, *req.State) {
		errs = append(errs, fmt.Errorf("unsupported state %q", *req.State))
	}
	return errors.Join(errs...)
}

func validateTransactionRequest(req TransactionRequest) error {
	var errs []error
	if req.Quantity < 1 || req.Quantity > client.MaxTransactionsPerRequest {
		errs = append(errs, fmt.Errorf("quantity must be between 1 and %d", client.MaxTransactionsPerRequest))
	}
	if req.Currency != nil && !slices.Contains(models.Currencies, *req.Currency) {
		errs = append(errs, fmt.Errorf("unsupported currency %q", *req.Currency))
	}
	if req.CreditDebitIndicator != nil && !slices.Contains(indicators, *req.CreditDebitIndicator) {
		errs = append(errs, fmt.Errorf("unsupported credit_debit_indicator %q", *req.CreditDebitIndicator))
	}
	if req.Status != nil && !slices.Contains(models.TransactionStatuses, *req.Status) {
		errs = append(errs, fmt.Errorf("unsupported status %q", *req.Status))
	}
	return errors.Join(errs...)
}
