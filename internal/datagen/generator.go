// Package datagen produces deterministic sample datasets for the four demo
// tables: customers, products, sales_transactions, and web_analytics. The
// same seed always yields the same rows, so fixtures are reproducible across
// machines.
package datagen

import (
	"fmt"
	"math"
	"math/rand"
	"strings"
	"time"
)

const (
	TableCustomers    = "customers"
	TableProducts     = "products"
	TableTransactions = "sales_transactions"
	TableWebAnalytics = "web_analytics"
)

// CountsForScale mirrors the demo dataset proportions: 1K customers, 500
// products, 5K transactions, and 10K analytics sessions per unit of scale.
type Counts struct {
	Customers    int
	Products     int
	Transactions int
	Analytics    int
}

func CountsForScale(scale int) Counts {
	if scale < 1 {
		scale = 1
	}
	return Counts{
		Customers:    1000 * scale,
		Products:     500 * scale,
		Transactions: 5000 * scale,
		Analytics:    10000 * scale,
	}
}

type Customer struct {
	CustomerID       int32  `parquet:"customer_id"`
	FirstName        string `parquet:"first_name"`
	LastName         string `parquet:"last_name"`
	Email            string `parquet:"email"`
	Phone            string `parquet:"phone"`
	Address          string `parquet:"address"`
	City             string `parquet:"city"`
	State            string `parquet:"state"`
	ZipCode          string `parquet:"zip_code"`
	Country          string `parquet:"country"`
	RegistrationDate int64  `parquet:"registration_date,timestamp(millisecond)"`
	IsActive         bool   `parquet:"is_active"`
	LoyaltyPoints    int32  `parquet:"loyalty_points"`
}

type Product struct {
	ProductID     int32   `parquet:"product_id"`
	ProductName   string  `parquet:"product_name"`
	Category      string  `parquet:"category"`
	Price         float64 `parquet:"price"`
	Cost          float64 `parquet:"cost"`
	StockQuantity int32   `parquet:"stock_quantity"`
	Supplier      string  `parquet:"supplier"`
	Rating        float64 `parquet:"rating"`
	ReviewsCount  int32   `parquet:"reviews_count"`
	IsAvailable   bool    `parquet:"is_available"`
	CreatedDate   int64   `parquet:"created_date,timestamp(millisecond)"`
}

type SalesTransaction struct {
	TransactionID   int32   `parquet:"transaction_id"`
	CustomerID      int32   `parquet:"customer_id"`
	ProductID       int32   `parquet:"product_id"`
	Quantity        int32   `parquet:"quantity"`
	UnitPrice       float64 `parquet:"unit_price"`
	DiscountPercent int32   `parquet:"discount_percent"`
	TransactionDate int64   `parquet:"transaction_date,timestamp(millisecond)"`
	PaymentMethod   string  `parquet:"payment_method"`
	ShippingCost    float64 `parquet:"shipping_cost"`
	Status          string  `parquet:"status"`
	TotalAmount     float64 `parquet:"total_amount"`
}

type WebAnalyticsEvent struct {
	SessionID  string `parquet:"session_id"`
	UserID     int32  `parquet:"user_id"`
	VisitTime  int64  `parquet:"visit_time,timestamp(millisecond)"`
	PageURL    string `parquet:"page_url"`
	TimeOnPage int32  `parquet:"time_on_page"`
	Source     string `parquet:"source"`
	Device     string `parquet:"device"`
	Browser    string `parquet:"browser"`
	Country    string `parquet:"country"`
	Bounce     bool   `parquet:"bounce"`
	Conversion bool   `parquet:"conversion"`
}

type Generator struct {
	rnd *rand.Rand
	now func() time.Time
}

func NewGenerator(seed int64) *Generator {
	return &Generator{
		rnd: rand.New(rand.NewSource(seed)),
		now: func() time.Time { return time.Now().UTC() },
	}
}

var (
	firstNames = []string{"Olivia", "Liam", "Emma", "Noah", "Ava", "Elijah", "Sophia", "Lucas", "Mia", "Mason", "Isabella", "Ethan", "Amelia", "James", "Harper", "Henry"}
	lastNames  = []string{"Smith", "Johnson", "Williams", "Brown", "Jones", "Garcia", "Miller", "Davis", "Rodriguez", "Martinez", "Anderson", "Taylor", "Thomas", "Moore", "Jackson", "Lee"}
	cities     = []string{"Austin", "Denver", "Portland", "Chicago", "Seattle", "Atlanta", "Boston", "Phoenix", "Nashville", "Columbus"}
	states     = []string{"TX", "CO", "OR", "IL", "WA", "GA", "MA", "AZ", "TN", "OH"}
	streets    = []string{"Oak St", "Maple Ave", "Cedar Ln", "Pine Rd", "Elm Dr", "Birch Way", "Willow Ct", "Spruce Blvd"}

	categories = []string{"Electronics", "Clothing", "Home & Garden", "Sports", "Books", "Toys", "Food", "Beauty"}
	adjectives = []string{"Compact", "Premium", "Ergonomic", "Rugged", "Sleek", "Portable", "Wireless", "Classic"}
	nouns      = []string{"Widget", "Gadget", "Speaker", "Lamp", "Backpack", "Bottle", "Keyboard", "Blanket"}
	suppliers  = []string{"Acme Corp", "Globex", "Initech", "Umbrella Supply", "Stark Industries", "Wayne Enterprises"}

	paymentMethods  = []string{"Credit Card", "Debit Card", "PayPal", "Cash", "Gift Card"}
	statuses        = []string{"Completed", "Pending", "Cancelled", "Refunded"}
	discountOptions = []int32{0, 5, 10, 15, 20, 25}

	pages     = []string{"/home", "/products", "/cart", "/checkout", "/account", "/support", "/about", "/blog"}
	sources   = []string{"Google", "Facebook", "Direct", "Email", "Twitter", "Instagram", "Referral"}
	devices   = []string{"Desktop", "Mobile", "Tablet"}
	browsers  = []string{"Chrome", "Safari", "Firefox", "Edge", "Opera"}
	countries = []string{"USA", "Germany", "United Kingdom", "India", "Japan", "Brazil", "France", "Canada"}
)

func (g *Generator) Customers(count int) []Customer {
	rows := make([]Customer, 0, count)
	now := g.now()
	for idx := 1; idx <= count; idx++ {
		first := pickOne(g.rnd, firstNames)
		last := pickOne(g.rnd, lastNames)
		registered := now.AddDate(0, 0, -g.rnd.Intn(730))
		rows = append(rows, Customer{
			CustomerID:       int32(idx),
			FirstName:        first,
			LastName:         last,
			Email:            fmt.Sprintf("%s.%s%d@example.com", strings.ToLower(first), strings.ToLower(last), idx),
			Phone:            fmt.Sprintf("+1-555-%03d-%04d", g.rnd.Intn(1000), g.rnd.Intn(10000)),
			Address:          fmt.Sprintf("%d %s", g.rnd.Intn(9900)+100, pickOne(g.rnd, streets)),
			City:             pickOne(g.rnd, cities),
			State:            pickOne(g.rnd, states),
			ZipCode:          fmt.Sprintf("%05d", g.rnd.Intn(100000)),
			Country:          "USA",
			RegistrationDate: registered.UnixMilli(),
			IsActive:         g.rnd.Intn(2) == 0,
			LoyaltyPoints:    int32(g.rnd.Intn(10001)),
		})
	}
	return rows
}

func (g *Generator) Products(count int) []Product {
	rows := make([]Product, 0, count)
	now := g.now()
	for idx := 1; idx <= count; idx++ {
		rows = append(rows, Product{
			ProductID:     int32(idx),
			ProductName:   fmt.Sprintf("%s %s", pickOne(g.rnd, adjectives), pickOne(g.rnd, nouns)),
			Category:      pickOne(g.rnd, categories),
			Price:         round2(5.99 + g.rnd.Float64()*994),
			Cost:          round2(2.99 + g.rnd.Float64()*497),
			StockQuantity: int32(g.rnd.Intn(1001)),
			Supplier:      pickOne(g.rnd, suppliers),
			Rating:        math.Round((1+g.rnd.Float64()*4)*10) / 10,
			ReviewsCount:  int32(g.rnd.Intn(5001)),
			IsAvailable:   g.rnd.Intn(2) == 0,
			CreatedDate:   now.AddDate(0, 0, -g.rnd.Intn(1095)).UnixMilli(),
		})
	}
	return rows
}

func (g *Generator) Transactions(count, customerCount, productCount int) []SalesTransaction {
	rows := make([]SalesTransaction, 0, count)
	start := g.now().AddDate(0, 0, -365)
	for idx := 1; idx <= count; idx++ {
		quantity := int32(g.rnd.Intn(10) + 1)
		unitPrice := round2(5.99 + g.rnd.Float64()*994)
		discount := discountOptions[g.rnd.Intn(len(discountOptions))]
		shipping := round2(g.rnd.Float64() * 25)
		subtotal := float64(quantity) * unitPrice
		total := round2(subtotal - subtotal*float64(discount)/100 + shipping)
		transactedAt := start.Add(time.Duration(g.rnd.Intn(365*24*60)) * time.Minute)

		rows = append(rows, SalesTransaction{
			TransactionID:   int32(idx),
			CustomerID:      int32(g.rnd.Intn(customerCount) + 1),
			ProductID:       int32(g.rnd.Intn(productCount) + 1),
			Quantity:        quantity,
			UnitPrice:       unitPrice,
			DiscountPercent: discount,
			TransactionDate: transactedAt.UnixMilli(),
			PaymentMethod:   pickOne(g.rnd, paymentMethods),
			ShippingCost:    shipping,
			Status:          pickOne(g.rnd, statuses),
			TotalAmount:     total,
		})
	}
	return rows
}

func (g *Generator) Analytics(count int) []WebAnalyticsEvent {
	rows := make([]WebAnalyticsEvent, 0, count)
	now := g.now()
	for idx := 1; idx <= count; idx++ {
		rows = append(rows, WebAnalyticsEvent{
			SessionID:  fmt.Sprintf("SES%08d", idx),
			UserID:     int32(g.rnd.Intn(2000) + 1),
			VisitTime:  now.Add(-time.Duration(g.rnd.Intn(90*24*60)) * time.Minute).UnixMilli(),
			PageURL:    pickOne(g.rnd, pages),
			TimeOnPage: int32(g.rnd.Intn(596) + 5),
			Source:     pickOne(g.rnd, sources),
			Device:     pickOne(g.rnd, devices),
			Browser:    pickOne(g.rnd, browsers),
			Country:    pickOne(g.rnd, countries),
			Bounce:     g.rnd.Intn(2) == 0,
			Conversion: g.rnd.Intn(2) == 0,
		})
	}
	return rows
}

func round2(value float64) float64 {
	return math.Round(value*100) / 100
}

func pickOne(r *rand.Rand, values []string) string {
	return values[r.Intn(len(values))]
}
