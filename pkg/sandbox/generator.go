package sandbox

import (
	"fmt"
	"math/rand/v2"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"devapi/pkg/models"
)

var (
	firstnames = []string{"Blondell", "Aurelio", "Marisol", "Kenji", "Priya", "Tobias", "Ines", "Declan", "Saoirse", "Oluwaseun"}
	lastnames  = []string{"Bartell", "Okafor", "Lindqvist", "Moreau", "Haddad", "Nakamura", "Fitzgerald", "Castillo", "Brennan", "Kowalski"}
	streets    = []string{"Richard Road", "Mill Lane", "Station Street", "Church Close", "Victoria Avenue", "Kings Way"}
	cities     = []string{"Oxford", "Leeds", "Bristol", "Nottingham", "Cardiff", "Glasgow"}
	emojis     = []string{"🤑", "🍔", "☕", "🛒", "⛽", "🎬", "✈️", "💡"}
	messages   = []string{"Weekly groceries shopping", "Morning coffee", "Fuel top up", "Monthly bill", "Cinema night", "Flight booking"}

	merchants = []struct {
		uuid     string
		merchant models.Merchant
	}{
		{"1", models.Merchant{Name: "Tesco", Category: "Groceries", Description: "Supermarket", PointsOfSale: []string{"In-store", "Online"}}},
		{"2", models.Merchant{Name: "Capital Two", Category: "Bills & Utilities", Description: "Credit Card Company", PointsOfSale: []string{"Online"}}},
		{"3", models.Merchant{Name: "Costa", Category: "Eating Out", Description: "Coffee Shop", PointsOfSale: []string{"In-store"}}},
		{"4", models.Merchant{Name: "Shell", Category: "Transport", Description: "Fuel Station", PointsOfSale: []string{"In-store"}}},
		{"5", models.Merchant{Name: "Odeon", Category: "Entertainment", Description: "Cinema", PointsOfSale: []string{"In-store", "Online"}}},
		{"6", models.Merchant{Name: "SkyHigh Air", Category: "Travel", Description: "Airline", PointsOfSale: []string{"Online"}}},
	}
)

// AccountRequest is the decoded body of an account creation call. Nil
// fields are generated.
type AccountRequest struct {
	Quantity        int                  `json:"quantity"`
	NumTransactions int                  `json:"numTransactions"`
	LiveBalance     *bool                `json:"liveBalance"`
	Balance         *decimal.Decimal     `json:"balance"`
	CreditScore     *int                 `json:"creditScore"`
	CurrencyCode    *models.Currency     `json:"currencyCode"`
	ProductType     *models.ProductType  `json:"productType"`
	RiskScore       *int                 `json:"riskScore"`
	State           *models.AccountState `json:"state"`
	CreditLimit     *decimal.Decimal     `json:"creditLimit"`
}

// TransactionRequest is the decoded body of a transaction creation call.
type TransactionRequest struct {
	Quantity             int                          `json:"quantity"`
	Amount               *decimal.Decimal             `json:"-"`
	Currency             *models.Currency             `json:"currency"`
	CreditDebitIndicator *models.CreditDebitIndicator `json:"credit_debit_indicator"`
	Emoji                *string                      `json:"emoji"`
	Status               *models.TransactionStatus    `json:"status"`
}

// Generator produces synthetic records. It is safe for concurrent use.
type Generator struct {
	mu  sync.Mutex
	rng *rand.Rand
	now func() time.Time
}

// NewGenerator creates a generator. A zero seed picks a random one.
func NewGenerator(seed uint64) *Generator {
	if seed == 0 {
		seed = rand.Uint64()
	}
	return &Generator{
		rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		now: time.Now,
	}
}

// Account generates one account owned by developerID.
func (g *Generator) Account(developerID string, req AccountRequest) models.Account {
	g.mu.Lock()
	defer g.mu.Unlock()

	first := pick(g.rng, firstnames)
	last := pick(g.rng, lastnames)

	a := models.Account{
		AccountID:    g.digits(8),
		Firstname:    first,
		Lastname:     last,
		PhoneNumber:  "+44" + g.digits(10),
		DeveloperID:  developerID,
		UCI:          g.digits(6),
		RiskScore:    g.rng.IntN(101),
		CreditScore:  300 + g.rng.IntN(551),
		CurrencyCode: models.GBP,
		ProductType:  pick(g.rng, []models.ProductType{models.ProductCredit, models.ProductDebit}),
		Email:        fmt.Sprintf("%s.%s@emailservice.co.uk", first, last),
		HomeAddress:  fmt.Sprintf("%d %s, %s, United Kingdom", 1+g.rng.IntN(200), pick(g.rng, streets), pick(g.rng, cities)),
		State:        models.AccountOpen,
		LiveBalance:  true,
		CreditLimit:  decimal.NewFromInt(int64(500 * (1 + g.rng.IntN(20)))),
		Balance:      decimal.New(g.rng.Int64N(1_000_000), -2),
	}

	if req.LiveBalance != nil {
		a.LiveBalance = *req.LiveBalance
	}
	if req.Balance != nil {
		a.Balance = *req.Balance
	}
	if req.CreditScore != nil {
		a.CreditScore = *req.CreditScore
	}
	if req.CurrencyCode != nil {
		a.CurrencyCode = *req.CurrencyCode
	}
	if req.ProductType != nil {
		a.ProductType = *req.ProductType
	}
	if req.RiskScore != nil {
		a.RiskScore = *req.RiskScore
	}
	if req.State != nil {
		a.State = *req.State
	}
	if req.CreditLimit != nil {
		a.CreditLimit = *req.CreditLimit
	}

	return a
}

// Transaction generates one transaction on account.
func (g *Generator) Transaction(account models.Account, req TransactionRequest) models.Transaction {
	g.mu.Lock()
	defer g.mu.Unlock()

	m := merchants[g.rng.IntN(len(merchants))]
	ts := g.now().UTC().Add(-time.Duration(g.rng.IntN(90*24*60)) * time.Minute)

	t := models.Transaction{
		TransactionUUID:      uuid.NewString(),
		AccountUUID:          account.AccountID,
		MerchantUUID:         m.uuid,
		Merchant:             m.merchant,
		CreditDebitIndicator: pick(g.rng, []models.CreditDebitIndicator{models.Credit, models.Debit}),
		Currency:             account.CurrencyCode,
		Timestamp:            ts.Format(models.TimestampLayout),
		Emoji:                pick(g.rng, emojis),
		Latitude:             decimal.New(g.rng.Int64N(180_00000)-90_00000, -5),
		Longitude:            decimal.New(g.rng.Int64N(360_00000)-180_00000, -5),
		Status:               models.StatusSuccessful,
		Message:              pick(g.rng, messages),
		PointOfSale:          pick(g.rng, m.merchant.PointsOfSale),
		Amount:               decimal.New(100+g.rng.Int64N(50_000), -2),
	}

	if req.Amount != nil {
		t.Amount = *req.Amount
	}
	if req.Currency != nil {
		t.Currency = *req.Currency
	}
	if req.CreditDebitIndicator != nil {
		t.CreditDebitIndicator = *req.CreditDebitIndicator
	}
	if req.Emoji != nil {
		t.Emoji = *req.Emoji
	}
	if req.Status != nil {
		t.Status = *req.Status
	}

	return t
}

// digits returns n random decimal digits with a non-zero lead.
func (g *Generator) digits(n int) string {
	var b strings.Builder
	b.WriteString(strconv.Itoa(1 + g.rng.IntN(9)))
	for i := 1; i < n; i++ {
		b.WriteString(strconv.Itoa(g.rng.IntN(10)))
	}
	return b.String()
}

func pick[T any](rng *rand.Rand, items []T) T {
	return items[rng.IntN(len(items))]
}

// developerID derives a stable developer id from a bearer token.
func developerID(token string) string {
	id := uuid.NewSHA1(uuid.NameSpaceOID, []byte(token))
	return strconv.FormatUint(uint64(id.ID()%1000), 10)
}
