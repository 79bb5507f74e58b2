package features

import (
	"testing"
	"time"

	"github.com/smallbiznis/returnsight/internal/clock"
	orderdomain "github.com/smallbiznis/returnsight/internal/order/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validOrder() orderdomain.ValidatedOrder {
	return orderdomain.ValidatedOrder{
		Price:           199.99,
		Quantity:        1,
		ProductCategory: "Electronics",
		Gender:          "Female",
		PaymentMethod:   "Credit Card",
		Age:             28,
		Location:        "Urban",
		DiscountApplied: 0,
		ShippingMethod:  "Standard",
	}
}

func TestExtract_TotalOrderValueAlwaysRecomputed(t *testing.T) {
	clk := clock.NewFakeClock(time.Date(2024, 6, 3, 12, 0, 0, 0, time.UTC))

	order := validOrder()
	order.Quantity = 3

	fs := Extract(order, clk)
	assert.Equal(t, 199.99*3, fs.TotalOrderValue)
}

func TestExtract_CategoricalMappings(t *testing.T) {
	clk := clock.NewFakeClock(time.Date(2024, 6, 3, 12, 0, 0, 0, time.UTC))

	fs := Extract(validOrder(), clk)
	assert.Equal(t, 1.0, fs.ProductCategory) // Electronics
	assert.Equal(t, 2.0, fs.UserGender)      // Female
	assert.Equal(t, 1.0, fs.PaymentMethod)   // Credit Card
	assert.Equal(t, 1.0, fs.ShippingMethod)  // Standard
	assert.Equal(t, 1.0, fs.UserLocationNum) // Urban
}

func TestExtract_UnknownCategoricalsUseTableDefaults(t *testing.T) {
	clk := clock.NewFakeClock(time.Date(2024, 6, 3, 12, 0, 0, 0, time.UTC))

	order := validOrder()
	order.ProductCategory = "Collectibles"
	order.PaymentMethod = "Cryptocurrency"
	order.Location = "Offshore"

	fs := Extract(order, clk)
	assert.Equal(t, 1.0, fs.ProductCategory)
	assert.Equal(t, 1.0, fs.PaymentMethod)
	assert.Equal(t, 1.0, fs.UserLocationNum)
}

func TestExtract_OrderDateParsed(t *testing.T) {
	clk := clock.NewFakeClock(time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC))

	order := validOrder()
	order.OrderDate = "2024-12-25" // a Wednesday

	fs := Extract(order, clk)
	assert.Equal(t, 2024.0, fs.OrderYear)
	assert.Equal(t, 12.0, fs.OrderMonth)
	assert.Equal(t, 2.0, fs.OrderWeekday) // Monday=0 indexing
}

func TestExtract_BadDateFallsBackToClock(t *testing.T) {
	// 2024-06-03 is a Monday.
	clk := clock.NewFakeClock(time.Date(2024, 6, 3, 9, 30, 0, 0, time.UTC))

	order := validOrder()
	order.OrderDate = "25/12/2024"

	fs := Extract(order, clk)
	assert.Equal(t, 2024.0, fs.OrderYear)
	assert.Equal(t, 6.0, fs.OrderMonth)
	assert.Equal(t, 0.0, fs.OrderWeekday)
}

func TestEngineerOne_DerivedFeatures(t *testing.T) {
	clk := clock.NewFakeClock(time.Date(2024, 6, 3, 12, 0, 0, 0, time.UTC))
	basic := Extract(validOrder(), clk)

	fs := EngineerOne(basic, 2024)

	// price=199.99, quantity=1, age=28
	assert.InDelta(t, 199.99/1.01, fs["Price_Per_Item"], 1e-9)
	assert.Equal(t, 2.0, fs["Price_Tier"]) // single row => middle tier
	assert.Equal(t, 1.0, fs["Young"])      // 28 < 30
	assert.Equal(t, 0.0, fs["Senior"])
	assert.Equal(t, 2.0, fs["Generation"]) // millennial band
	assert.Equal(t, 1.0, fs["High_Value"]) // 199.99 > 150
	assert.Equal(t, 2.0, fs["Value_Quartile"])
	assert.Equal(t, 0.0, fs["High_Discount"])
	assert.Equal(t, 0.0, fs["Discount_Tier"])
}

func TestReturnRiskScoreCascade(t *testing.T) {
	// price>200 or age<25 => 2
	assert.Equal(t, 2.0, returnRiskScore(250, 40))
	assert.Equal(t, 2.0, returnRiskScore(50, 22))
	// else price>100 or age<35 => 1
	assert.Equal(t, 1.0, returnRiskScore(199.99, 28))
	assert.Equal(t, 1.0, returnRiskScore(50, 30))
	// else 0
	assert.Equal(t, 0.0, returnRiskScore(50, 50))
}

func TestDiscountTiers(t *testing.T) {
	assert.Equal(t, 0.0, discountTier(0))
	assert.Equal(t, 0.0, discountTier(5))
	assert.Equal(t, 1.0, discountTier(10))
	assert.Equal(t, 2.0, discountTier(30))
	assert.Equal(t, 3.0, discountTier(45))
}

func TestEngineer_BatchPriceTiers(t *testing.T) {
	batch := []BasicFeatureSet{
		{ProductPrice: 10, OrderQuantity: 1, TotalOrderValue: 10, UserAge: 40, OrderMonth: 6},
		{ProductPrice: 50, OrderQuantity: 1, TotalOrderValue: 50, UserAge: 40, OrderMonth: 6},
		{ProductPrice: 100, OrderQuantity: 1, TotalOrderValue: 100, UserAge: 40, OrderMonth: 6},
		{ProductPrice: 500, OrderQuantity: 1, TotalOrderValue: 500, UserAge: 40, OrderMonth: 6},
	}
	out := Engineer(batch, 2024)
	require.Len(t, out, 4)

	assert.Equal(t, 1.0, out[0]["Price_Tier"])
	assert.Equal(t, 2.0, out[1]["Price_Tier"])
	assert.Equal(t, 2.0, out[2]["Price_Tier"])
	assert.Equal(t, 3.0, out[3]["Price_Tier"])
}

func TestEngineer_AllEqualPricesDefaultToMiddleTier(t *testing.T) {
	batch := []BasicFeatureSet{
		{ProductPrice: 99, OrderQuantity: 1, TotalOrderValue: 99, UserAge: 40, OrderMonth: 6},
		{ProductPrice: 99, OrderQuantity: 1, TotalOrderValue: 99, UserAge: 40, OrderMonth: 6},
	}
	out := Engineer(batch, 2024)
	for _, fs := range out {
		assert.Equal(t, 2.0, fs["Price_Tier"])
		assert.Equal(t, 2.0, fs["Value_Quartile"])
	}
}

func TestEngineer_Idempotent(t *testing.T) {
	clk := clock.NewFakeClock(time.Date(2024, 11, 29, 12, 0, 0, 0, time.UTC))
	basic := Extract(validOrder(), clk)

	first := EngineerOne(basic, 2024)
	second := EngineerOne(basic, 2024)
	assert.Equal(t, first, second)
}

func TestEngineer_SeasonalFlags(t *testing.T) {
	basic := BasicFeatureSet{
		ProductPrice: 50, OrderQuantity: 1, TotalOrderValue: 50,
		UserAge: 40, OrderYear: 2024, OrderMonth: 11, OrderWeekday: 5,
	}
	fs := EngineerOne(basic, 2024)

	assert.Equal(t, 1.0, fs["Holiday_Season"])
	assert.Equal(t, 4.0, fs["Season"])
	assert.Equal(t, 4.0, fs["Order_Quarter"])
	assert.Equal(t, 1.0, fs["Weekend_Order"])
	assert.Equal(t, 0.0, fs["Monday_Order"])
	assert.Equal(t, 1.0, fs["Recent_Year"])
}

func TestEngineer_InteractionFlags(t *testing.T) {
	basic := BasicFeatureSet{
		ProductCategory: 1, ProductPrice: 350, OrderQuantity: 3,
		TotalOrderValue: 1050, UserAge: 24, DiscountApplied: 30,
		PaymentMethod: 5, OrderMonth: 6,
	}
	fs := EngineerOne(basic, 2024)

	assert.Equal(t, 1.0, fs["Young_Expensive_Combo"])
	assert.Equal(t, 1.0, fs["High_Discount_Expensive"])
	assert.Equal(t, 1.0, fs["Bulk_Expensive_Combo"])
	assert.Equal(t, 1.0, fs["Electronics_High_Price"])
	assert.Equal(t, 1.0, fs["Cash_High_Value"])
	assert.Equal(t, 0.0, fs["Clothing_Category_Flag"])
	assert.InDelta(t, 30.0/351.0, fs["Discount_Price_Ratio"], 1e-9)
	assert.InDelta(t, 350.0/3.0, fs["Avg_Price_Per_Item"], 1e-9)
}

func TestAlign_ExactColumnsInOrder(t *testing.T) {
	fs := FeatureSet{"Product_Price": 10, "User_Age": 30, "Extra_Column": 99}
	columns := []string{"User_Age", "Product_Price", "Missing_Flag"}

	row := Align(fs, columns)
	require.Len(t, row, 3)
	assert.Equal(t, []float64{30, 10, 0}, row)
}

func TestAlign_RatioColumnsDefaultToOne(t *testing.T) {
	row := Align(FeatureSet{}, []string{"Discount_Price_Ratio", "Avg_Price_Per_Item", "Young"})
	assert.Equal(t, []float64{1, 1, 0}, row)
}

func TestMissingColumns(t *testing.T) {
	fs := FeatureSet{"Product_Price": 10}
	missing := MissingColumns(fs, []string{"Product_Price", "Young", "High_Value"})
	assert.Equal(t, []string{"Young", "High_Value"}, missing)
}

func TestEngineerOne_CoversCanonicalColumns(t *testing.T) {
	clk := clock.NewFakeClock(time.Date(2024, 6, 3, 12, 0, 0, 0, time.UTC))
	fs := EngineerOne(Extract(validOrder(), clk), 2024)

	for _, col := range CanonicalColumns {
		_, ok := fs[col]
		assert.True(t, ok, "canonical column %s missing", col)
	}
}
