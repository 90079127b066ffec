package sandbox

import (
	"errors"
	"testing"

	"devapi/pkg/models"
)

func TestStore_AccountsKeepOrder(t *testing.T) {
	s := NewStore()
	s.AddAccounts("1", models.Account{AccountID: "b"}, models.Account{AccountID: "a"})
	s.AddAccounts("1", models.Account{AccountID: "b", Firstname: "replaced"})

	got := s.Accounts("1")
	if len(got) != 2 || got[0].AccountID != "b" || got[1].AccountID != "a" {
		t.Fatalf("Unexpected accounts: %+v", got)
	}
	if got[0].Firstname != "replaced" {
		t.Error("Re-adding an id should replace the account in place")
	}

	got[0].Firstname = "mutated"
	if a, _ := s.Account("1", "b"); a.Firstname != "replaced" {
		t.Error("Accounts must return a copy")
	}

	if _, ok := s.Account("2", "b"); ok {
		t.Error("Accounts must not leak across developers")
	}
}

func TestStore_Transactions(t *testing.T) {
	s := NewStore()

	if err := s.AddTransactions("1", "a", models.Transaction{}); !errors.Is(err, ErrUnknownAccount) {
		t.Errorf("Expected ErrUnknownAccount, got %v", err)
	}

	s.AddAccounts("1", models.Account{AccountID: "a"})
	if err := s.AddTransactions("1", "a", models.Transaction{TransactionUUID: "t1"}, models.Transaction{TransactionUUID: "t2"}); err != nil {
		t.Fatalf("AddTransactions failed: %v", err)
	}

	txns := s.Transactions("1", "a")
	if len(txns) != 2 || txns[0].TransactionUUID != "t1" {
		t.Errorf("Unexpected transactions: %+v", txns)
	}
	if got := s.Transactions("1", "missing"); len(got) != 0 {
		t.Errorf("Unknown account should have no transactions, got %d", len(got))
	}

	accounts, n := s.Len("1")
	if accounts != 1 || n != 2 {
		t.Errorf("Len = %d, %d; want 1, 2", accounts, n)
	}
}

func TestGenerator_DefaultsAndOverrides(t *testing.T) {
	g := NewGenerator(7)

	a := g.Account("123", AccountRequest{})
	if len(a.AccountID) != 8 || a.DeveloperID != "123" {
		t.Errorf("Unexpected account ids: %+v", a)
	}
	if a.State != models.AccountOpen || !a.LiveBalance || a.CurrencyCode != models.GBP {
		t.Errorf("Unexpected defaults: %+v", a)
	}
	if a.RiskScore < 0 || a.RiskScore > 100 || a.CreditScore < 300 || a.CreditScore > 850 {
		t.Errorf("Scores out of range: %d, %d", a.RiskScore, a.CreditScore)
	}

	status := models.StatusDeclined
	txn := g.Transaction(a, TransactionRequest{Status: &status})
	if txn.AccountUUID != a.AccountID || txn.Currency != a.CurrencyCode {
		t.Errorf("Transaction not tied to account: %+v", txn)
	}
	if txn.Status != models.StatusDeclined {
		t.Errorf("Status = %q", txn.Status)
	}
	if _, err := txn.Time(); err != nil {
		t.Errorf("Timestamp %q does not parse: %v", txn.Timestamp, err)
	}
	if !txn.Amount.IsPositive() {
		t.Errorf("Amount = %s", txn.Amount)
	}
}

func TestGenerator_Deterministic(t *testing.T) {
	a := NewGenerator(99).Account("1", AccountRequest{})
	b := NewGenerator(99).Account("1", AccountRequest{})
	if !a.Equal(b) {
		t.Errorf("Same seed produced different accounts:\n%+v\n%+v", a, b)
	}
}

func TestDeveloperID_Stable(t *testing.T) {
	if developerID("tok") != developerID("tok") {
		t.Error("developerID must be stable")
	}
}
