package domain

import (
	"fmt"
	"strings"
)

// AgePolicy selects the accepted customer age range. The order processing
// path requires an adult purchaser; the quick prediction and CSV upload
// paths accept the wider historical range.
type AgePolicy int

const (
	AgePolicyStrict AgePolicy = iota // 18..100
	AgePolicyWide                    // 0..120
)

func (p AgePolicy) bounds() (int, int) {
	if p == AgePolicyWide {
		return 0, 120
	}
	return 18, 100
}

// FieldError describes a single violated constraint.
type FieldError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ValidationErrors lists every violated field, not just the first, so a
// caller can surface all problems in one response.
type ValidationErrors struct {
	Fields []FieldError `json:"errors"`
}

func (v *ValidationErrors) Error() string {
	if len(v.Fields) == 0 {
		return "validation error"
	}
	parts := make([]string, 0, len(v.Fields))
	for _, f := range v.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return "validation error: " + strings.Join(parts, "; ")
}

func (v *ValidationErrors) add(field, code, message string) {
	v.Fields = append(v.Fields, FieldError{Field: field, Code: code, Message: message})
}

// Genders accepted by the hard gender constraint.
var AllowedGenders = []string{"Male", "Female", "Other"}

// Soft-validated vocabularies. Unknown values are logged upstream and
// passed through, never rejected.
var (
	KnownCategories = []string{
		"Electronics", "Clothing", "Books", "Home & Garden",
		"Sports", "Beauty", "Toys", "Automotive", "Health", "Home",
	}
	KnownPaymentMethods = []string{
		"Credit Card", "Debit Card", "PayPal",
		"Bank Transfer", "Cash", "Digital Wallet", "Gift Card",
	}
	KnownShippingMethods = []string{"Standard", "Express", "Next-Day"}
)

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}

// SoftWarnings reports the unrecognized soft-vocabulary values on a raw
// order so the caller can log them.
func SoftWarnings(raw RawOrder) []string {
	var warnings []string
	if raw.ProductCategory != "" && !contains(KnownCategories, raw.ProductCategory) {
		warnings = append(warnings, fmt.Sprintf("unusual category %q", raw.ProductCategory))
	}
	if raw.PaymentMethod != "" && !contains(KnownPaymentMethods, raw.PaymentMethod) {
		warnings = append(warnings, fmt.Sprintf("unusual payment method %q", raw.PaymentMethod))
	}
	if raw.ShippingMethod != "" && !contains(KnownShippingMethods, raw.ShippingMethod) {
		warnings = append(warnings, fmt.Sprintf("unusual shipping method %q, defaulting to Standard", raw.ShippingMethod))
	}
	return warnings
}

// Validate checks a raw order against the schema and returns a normalized
// ValidatedOrder, or a ValidationErrors listing every violation.
func Validate(raw RawOrder, policy AgePolicy) (ValidatedOrder, error) {
	verr := &ValidationErrors{}

	if raw.Price <= 0 {
		verr.add("price", "invalid_price", "price must be greater than 0")
	}
	if raw.Quantity < 1 {
		verr.add("quantity", "invalid_quantity", "quantity must be at least 1")
	}

	minAge, maxAge := policy.bounds()
	if raw.Age < minAge || raw.Age > maxAge {
		verr.add("age", "invalid_age", fmt.Sprintf("age must be between %d and %d", minAge, maxAge))
	}

	gender := strings.TrimSpace(raw.Gender)
	if !contains(AllowedGenders, gender) {
		verr.add("gender", "invalid_gender", "gender must be one of: Male, Female, Other")
	}

	discount := 0.0
	if raw.DiscountApplied != nil {
		discount = *raw.DiscountApplied
		if discount < 0 || discount > 100 {
			verr.add("discount_applied", "invalid_discount", "discount must be between 0 and 100")
		}
	}

	if strings.TrimSpace(raw.ProductCategory) == "" {
		verr.add("product_category", "missing_category", "product category is required")
	}
	if strings.TrimSpace(raw.PaymentMethod) == "" {
		verr.add("payment_method", "missing_payment_method", "payment method is required")
	}
	if strings.TrimSpace(raw.Location) == "" {
		verr.add("location", "missing_location", "location is required")
	}

	if len(verr.Fields) > 0 {
		return ValidatedOrder{}, verr
	}

	shipping := strings.TrimSpace(raw.ShippingMethod)
	if !contains(KnownShippingMethods, shipping) {
		shipping = "Standard"
	}

	return ValidatedOrder{
		Price:           raw.Price,
		Quantity:        raw.Quantity,
		ProductCategory: strings.TrimSpace(raw.ProductCategory),
		Gender:          gender,
		PaymentMethod:   strings.TrimSpace(raw.PaymentMethod),
		Age:             raw.Age,
		Location:        strings.TrimSpace(raw.Location),
		DiscountApplied: discount,
		ShippingMethod:  shipping,
		OrderDate:       strings.TrimSpace(raw.OrderDate),
	}, nil
}
