package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// Prediction is one stored prediction outcome with enough of the order
// snapshot to drive the analytics queries without a join.
type Prediction struct {
	ID      snowflake.ID `gorm:"primaryKey" json:"id"`
	OrderID string       `gorm:"not null;index" json:"order_id"`

	ProductCategory string  `gorm:"not null" json:"product_category"`
	ProductPrice    float64 `gorm:"not null" json:"product_price"`
	OrderQuantity   int     `gorm:"not null" json:"order_quantity"`
	UserAge         int     `gorm:"not null" json:"user_age"`
	UserGender      string  `json:"user_gender"`
	PaymentMethod   string  `json:"payment_method"`
	UserLocation    string  `json:"user_location"`
	TotalOrderValue float64 `gorm:"not null" json:"total_order_value"`

	WillReturn        bool    `gorm:"not null" json:"will_return"`
	ReturnProbability float64 `gorm:"not null" json:"return_probability"`
	ConfidenceScore   float64 `gorm:"not null" json:"confidence_score"`
	RiskLevel         string  `gorm:"not null;index" json:"risk_level"`
	ModelUsed         string  `json:"model_used"`

	Recommendations datatypes.JSONSlice[string] `gorm:"type:jsonb;not null;default:'[]'" json:"recommendations"`

	CreatedAt time.Time `gorm:"not null;index;default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (Prediction) TableName() string { return "predictions" }

// RiskCount is one row of the grouped risk-distribution query.
type RiskCount struct {
	RiskLevel string `json:"risk_level"`
	Count     int64  `json:"count"`
}

// DailyCount is one day of the prediction-trend query.
type DailyCount struct {
	Day         string  `json:"day"`
	Total       int64   `json:"total"`
	Returns     int64   `json:"returns"`
	AvgRisk     float64 `json:"avg_risk"`
	OrderValue  float64 `json:"order_value"`
	ReturnValue float64 `json:"return_value"`
}

// Aggregate is the single-row rollup behind the analytics summary.
type Aggregate struct {
	Total           int64   `json:"total"`
	Returns         int64   `json:"returns"`
	AvgProbability  float64 `json:"avg_probability"`
	AvgConfidence   float64 `json:"avg_confidence"`
	TotalOrderValue float64 `json:"total_order_value"`
	ReturnValue     float64 `json:"return_value"`
}
