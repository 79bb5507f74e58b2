// Package features implements the order-to-feature pipeline: basic
// extraction, derived feature engineering, categorical encoding, and
// model-column alignment. Every stage is a pure function over typed
// records; the only injected dependency is the clock used to substitute
// temporal defaults.
package features

import (
	"time"

	"github.com/smallbiznis/returnsight/internal/clock"
	orderdomain "github.com/smallbiznis/returnsight/internal/order/domain"
)

// Categorical integer mappings fixed at training time. Values absent from
// a table map to the table's default, never an error at this stage.
var (
	categoryMapping = map[string]float64{
		"Electronics": 1, "Clothing": 2, "Books": 3, "Home": 4, "Toys": 5,
		"Sports": 6, "Beauty": 7, "Automotive": 8, "Health": 9, "Home & Garden": 4,
	}
	genderMapping = map[string]float64{"Male": 1, "Female": 2, "Other": 0}

	paymentMapping = map[string]float64{
		"Credit Card": 1, "Debit Card": 2, "PayPal": 3, "Bank Transfer": 4,
		"Cash": 5, "Digital Wallet": 6, "Gift Card": 7,
	}
	shippingMapping = map[string]float64{"Standard": 1, "Express": 2, "Next-Day": 3}

	locationMapping = map[string]float64{"Urban": 1, "Rural": 0, "Suburban": 2}
)

const (
	defaultCategory = 1
	defaultGender   = 0
	defaultPayment  = 1
	defaultShipping = 1
	defaultLocation = 1
)

// BasicFeatureSet is the minimal numeric feature set derived
// deterministically from a validated order.
type BasicFeatureSet struct {
	ProductCategory float64
	ProductPrice    float64
	OrderQuantity   float64
	UserAge         float64
	UserGender      float64
	PaymentMethod   float64
	ShippingMethod  float64
	DiscountApplied float64
	UserLocationNum float64
	TotalOrderValue float64
	OrderYear       float64
	OrderMonth      float64
	OrderWeekday    float64
}

func mapOrDefault(table map[string]float64, key string, def float64) float64 {
	if v, ok := table[key]; ok {
		return v
	}
	return def
}

// Extract maps a validated order to its basic feature set. The order date
// is parsed as YYYY-MM-DD; on absence or parse failure the injected clock
// supplies the temporal fields. Total order value is always recomputed,
// never trusted from input.
func Extract(order orderdomain.ValidatedOrder, clk clock.Clock) BasicFeatureSet {
	fs := BasicFeatureSet{
		ProductCategory: mapOrDefault(categoryMapping, order.ProductCategory, defaultCategory),
		ProductPrice:    order.Price,
		OrderQuantity:   float64(order.Quantity),
		UserAge:         float64(order.Age),
		UserGender:      mapOrDefault(genderMapping, order.Gender, defaultGender),
		PaymentMethod:   mapOrDefault(paymentMapping, order.PaymentMethod, defaultPayment),
		ShippingMethod:  mapOrDefault(shippingMapping, order.ShippingMethod, defaultShipping),
		DiscountApplied: order.DiscountApplied,
		UserLocationNum: mapOrDefault(locationMapping, order.Location, defaultLocation),
	}
	fs.TotalOrderValue = fs.ProductPrice * fs.OrderQuantity

	orderTime, ok := parseOrderDate(order.OrderDate)
	if !ok {
		orderTime = clk.Now()
	}
	fs.OrderYear = float64(orderTime.Year())
	fs.OrderMonth = float64(int(orderTime.Month()))
	fs.OrderWeekday = float64(mondayIndexedWeekday(orderTime))

	return fs
}

func parseOrderDate(value string) (time.Time, bool) {
	if value == "" {
		return time.Time{}, false
	}
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// mondayIndexedWeekday converts Go's Sunday-first weekday to the
// Monday=0..Sunday=6 indexing the model was trained on.
func mondayIndexedWeekday(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}
