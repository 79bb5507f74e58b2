package features

import "sort"

// FeatureSet is a named column/value mapping produced by engineering.
type FeatureSet map[string]float64

// Derived-feature thresholds fixed at training time.
const (
	highDiscountAbove = 20.0
	youngBelow        = 30.0
	seniorAbove       = 60.0
	highValueAbove    = 150.0

	riskHighPriceAbove   = 200.0
	riskHighAgeBelow     = 25.0
	riskMediumPriceAbove = 100.0
	riskMediumAgeBelow   = 35.0

	quantityEpsilon = 0.01
)

func flag(cond bool) float64 {
	if cond {
		return 1
	}
	return 0
}

// Engineer derives the secondary feature set from a batch of basic
// features. Percentile-based tiers (Price_Tier, Value_Quartile) operate
// over the whole batch; a single-row or all-equal batch falls back to the
// fixed middle tier. refYear anchors the Recent_Year flag. Pure function,
// no I/O.
func Engineer(batch []BasicFeatureSet, refYear int) []FeatureSet {
	if len(batch) == 0 {
		return nil
	}

	prices := make([]float64, len(batch))
	totals := make([]float64, len(batch))
	for i, b := range batch {
		prices[i] = b.ProductPrice
		totals[i] = b.TotalOrderValue
	}
	priceTiers := tiersByPercentile(prices)
	valueQuartiles := quartiles(totals)

	out := make([]FeatureSet, len(batch))
	for i, b := range batch {
		fs := FeatureSet{
			"Product_Category":  b.ProductCategory,
			"Product_Price":     b.ProductPrice,
			"Order_Quantity":    b.OrderQuantity,
			"User_Age":          b.UserAge,
			"User_Gender":       b.UserGender,
			"Payment_Method":    b.PaymentMethod,
			"Shipping_Method":   b.ShippingMethod,
			"Discount_Applied":  b.DiscountApplied,
			"User_Location_Num": b.UserLocationNum,
			"Total_Order_Value": b.TotalOrderValue,
			"Order_Year":        b.OrderYear,
			"Order_Month":       b.OrderMonth,
			"Order_Weekday":     b.OrderWeekday,
		}

		fs["Price_Per_Item"] = b.ProductPrice / (b.OrderQuantity + quantityEpsilon)
		fs["Price_Tier"] = priceTiers[i]

		fs["High_Discount"] = flag(b.DiscountApplied > highDiscountAbove)
		fs["Discount_Tier"] = discountTier(b.DiscountApplied)

		fs["Young"] = flag(b.UserAge < youngBelow)
		fs["Senior"] = flag(b.UserAge > seniorAbove)
		fs["Generation"] = generation(b.UserAge)

		fs["High_Value"] = flag(b.TotalOrderValue > highValueAbove)
		fs["Value_Quartile"] = valueQuartiles[i]

		fs["Return_Risk_Score"] = returnRiskScore(b.ProductPrice, b.UserAge)

		addTemporal(fs, b, refYear)
		addInteractions(fs, b)

		out[i] = fs
	}
	return out
}

// EngineerOne engineers a single order. Batch-relative tiers resolve to
// the documented fixed middle tier.
func EngineerOne(basic BasicFeatureSet, refYear int) FeatureSet {
	return Engineer([]BasicFeatureSet{basic}, refYear)[0]
}

// returnRiskScore is a fixed two-rule cascade: expensive items and the
// youngest buyers score 2, moderately priced items and younger buyers 1.
func returnRiskScore(price, age float64) float64 {
	switch {
	case price > riskHighPriceAbove || age < riskHighAgeBelow:
		return 2
	case price > riskMediumPriceAbove || age < riskMediumAgeBelow:
		return 1
	default:
		return 0
	}
}

// discountTier buckets the discount on fixed breakpoints {5,15,30}.
func discountTier(discount float64) float64 {
	switch {
	case discount <= 5:
		return 0
	case discount <= 15:
		return 1
	case discount <= 30:
		return 2
	default:
		return 3
	}
}

// generation assigns a fixed age cohort; out-of-band ages default to 2.
func generation(age float64) float64 {
	switch {
	case age >= 18 && age <= 27:
		return 1
	case age >= 28 && age <= 43:
		return 2
	case age >= 44 && age <= 59:
		return 3
	case age >= 60:
		return 4
	default:
		return 2
	}
}

func addTemporal(fs FeatureSet, b BasicFeatureSet, refYear int) {
	month := int(b.OrderMonth)
	weekday := int(b.OrderWeekday)

	fs["Order_Quarter"] = float64((month-1)/3 + 1)
	fs["Season"] = season(month)
	fs["Holiday_Season"] = flag(month == 11 || month == 12)
	fs["Back_To_School_Season"] = flag(month == 8 || month == 9)
	fs["Spring_Season"] = flag(month >= 3 && month <= 5)

	fs["Weekend_Order"] = flag(weekday == 5 || weekday == 6)
	fs["Monday_Order"] = flag(weekday == 0)
	fs["Friday_Order"] = flag(weekday == 4)

	fs["Recent_Year"] = flag(int(b.OrderYear) >= refYear-1)
}

func season(month int) float64 {
	switch month {
	case 12, 1, 2:
		return 1 // winter
	case 3, 4, 5:
		return 2 // spring
	case 6, 7, 8:
		return 3 // summer
	default:
		return 4 // fall
	}
}

func addInteractions(fs FeatureSet, b BasicFeatureSet) {
	fs["Young_Expensive_Combo"] = flag(b.UserAge < 30 && b.ProductPrice > 200)
	fs["Senior_Electronics_Combo"] = flag(b.UserAge > 60 && b.ProductCategory == 1)

	fs["High_Discount_Expensive"] = flag(b.DiscountApplied > 25 && b.ProductPrice > 150)
	fs["Discount_Price_Ratio"] = b.DiscountApplied / (b.ProductPrice + 1)

	fs["Bulk_Expensive_Combo"] = flag(b.OrderQuantity > 2 && b.ProductPrice > 100)
	fs["Avg_Price_Per_Item"] = b.ProductPrice / b.OrderQuantity

	fs["Electronics_High_Price"] = flag(b.ProductCategory == 1 && b.ProductPrice > 300)
	fs["Clothing_Category_Flag"] = flag(b.ProductCategory == 2)

	fs["Cash_High_Value"] = flag(b.PaymentMethod == 5 && b.ProductPrice > 200)
}

// tiersByPercentile assigns a 3-way tier from the 25th/75th percentile of
// the batch's prices. Degenerate batches resolve to the middle tier.
func tiersByPercentile(values []float64) []float64 {
	out := make([]float64, len(values))
	if allEqual(values) {
		for i := range out {
			out[i] = 2
		}
		return out
	}
	q25 := percentile(values, 0.25)
	q75 := percentile(values, 0.75)
	if q25 == q75 {
		for i := range out {
			out[i] = 2
		}
		return out
	}
	for i, v := range values {
		switch {
		case v <= q25:
			out[i] = 1
		case v <= q75:
			out[i] = 2
		default:
			out[i] = 3
		}
	}
	return out
}

// quartiles assigns a 4-way bucket from batch quantiles. Degenerate
// batches resolve to the middle quartile.
func quartiles(values []float64) []float64 {
	out := make([]float64, len(values))
	if allEqual(values) {
		for i := range out {
			out[i] = 2
		}
		return out
	}
	q1 := percentile(values, 0.25)
	q2 := percentile(values, 0.50)
	q3 := percentile(values, 0.75)
	for i, v := range values {
		switch {
		case v <= q1:
			out[i] = 1
		case v <= q2:
			out[i] = 2
		case v <= q3:
			out[i] = 3
		default:
			out[i] = 4
		}
	}
	return out
}

func allEqual(values []float64) bool {
	for _, v := range values[1:] {
		if v != values[0] {
			return false
		}
	}
	return true
}

// percentile computes the q-th percentile with linear interpolation
// between closest ranks, matching the training-time convention.
func percentile(values []float64, q float64) float64 {
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	if len(sorted) == 1 {
		return sorted[0]
	}
	pos := q * float64(len(sorted)-1)
	lo := int(pos)
	hi := lo + 1
	if hi >= len(sorted) {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo] + (sorted[hi]-sorted[lo])*frac
}
