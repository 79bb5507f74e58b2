package features

import "strings"

// CanonicalColumns is the 18-column set the shipped classifier was trained
// on, in training order. Used whenever the active model does not declare
// its own feature names.
var CanonicalColumns = []string{
	"Product_Category", "Product_Price", "Order_Quantity", "User_Age", "User_Gender",
	"Payment_Method", "Shipping_Method", "Discount_Applied", "Total_Order_Value",
	"Order_Year", "Order_Month", "Order_Weekday", "User_Location_Num",
	"Return_Risk_Score", "Price_Per_Item", "High_Discount", "Young", "High_Value",
}

// Align reconciles an engineered feature set with exactly the columns a
// model expects, in the model's order. Missing columns are filled with a
// typed default, extra columns dropped. Column order is load-bearing:
// a model without named columns will silently mispredict, not crash, if
// the order is wrong.
func Align(fs FeatureSet, columns []string) []float64 {
	row := make([]float64, len(columns))
	for i, col := range columns {
		if v, ok := fs[col]; ok {
			row[i] = v
		} else {
			row[i] = defaultFor(col)
		}
	}
	return row
}

// AlignBatch aligns every row of a batch against the same column list.
func AlignBatch(sets []FeatureSet, columns []string) [][]float64 {
	rows := make([][]float64, len(sets))
	for i, fs := range sets {
		rows[i] = Align(fs, columns)
	}
	return rows
}

// MissingColumns reports which expected columns are absent from a feature
// set, for logging before default-fill.
func MissingColumns(fs FeatureSet, columns []string) []string {
	var missing []string
	for _, col := range columns {
		if _, ok := fs[col]; !ok {
			missing = append(missing, col)
		}
	}
	return missing
}

// defaultFor returns the documented fill value for an absent column:
// ratio-shaped columns default to 1.0, flags and counts to 0.
func defaultFor(col string) float64 {
	if strings.Contains(col, "Ratio") || strings.Contains(col, "Avg") {
		return 1.0
	}
	return 0
}
