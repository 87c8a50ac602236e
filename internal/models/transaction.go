package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Gender string

const (
	GenderMale   Gender = "Male"
	GenderFemale Gender = "Female"
	GenderOther  Gender = "Other"
)

// RawTransaction is a parsed but not yet validated retail_sales row. Fields
// that fail to parse are left at their zero value so the filter can classify
// the record by rejection reason instead of dropping it silently.
type RawTransaction struct {
	TransactionID int
	SaleDate      time.Time // zero = missing
	SaleTime      time.Time // clock component only
	CustomerID    int
	Gender        string
	Age           int `validate:"gte=18,lte=100"`
	Category      string
	Quantity      int `validate:"gt=0"`
	PricePerUnit  decimal.Decimal
	COGS          decimal.Decimal
}

// Transaction is a validated retail sale. TotalSales and Profit are always
// recomputed from their inputs, never stored.
type Transaction struct {
	TransactionID int
	SaleDate      time.Time
	SaleTime      time.Time
	CustomerID    int
	Gender        Gender
	Age           int
	Category      string
	Quantity      int
	PricePerUnit  decimal.Decimal
	COGS          decimal.Decimal
}

func (t Transaction) TotalSales() decimal.Decimal {
	return t.PricePerUnit.Mul(decimal.NewFromInt(int64(t.Quantity)))
}

func (t Transaction) Profit() decimal.Decimal {
	return t.TotalSales().Sub(t.COGS)
}

type TimeBucket string

const (
	BucketMorning   TimeBucket = "Morning"
	BucketAfternoon TimeBucket = "Afternoon"
	BucketEvening   TimeBucket = "Evening"
)

// BucketForHour maps an hour of day to its shift bucket: before noon is
// Morning, noon until 17:00 is Afternoon, 17:00 onward is Evening.
func BucketForHour(hour int) TimeBucket {
	switch {
	case hour < 12:
		return BucketMorning
	case hour < 17:
		return BucketAfternoon
	default:
		return BucketEvening
	}
}

type CategoryPerformance struct {
	Category            string          `json:"category"`
	Transactions        int             `json:"transactions"`
	Customers           int             `json:"customers"`
	UnitsSold           int             `json:"units_sold"`
	AvgUnitsPerTxn      decimal.Decimal `json:"avg_units_per_transaction"`
	TotalRevenue        decimal.Decimal `json:"total_revenue"`
	AvgTransactionValue decimal.Decimal `json:"avg_transaction_value"`
	TotalProfit         decimal.Decimal `json:"total_profit"`
	ProfitMargin        Ratio           `json:"profit_margin"`
}

type MonthlyTrend struct {
	Month      string          `json:"month"` // YYYY-MM
	TotalSales decimal.Decimal `json:"total_sales"`
	Customers  int             `json:"customers"`
	UnitsSold  int             `json:"units_sold"`
	Growth     Ratio           `json:"growth"` // vs previous month, same year
}

type TimeBucketStats struct {
	Bucket              TimeBucket      `json:"bucket"`
	Transactions        int             `json:"transactions"`
	Revenue             decimal.Decimal `json:"revenue"`
	AvgTransactionValue decimal.Decimal `json:"avg_transaction_value"`
	Profit              decimal.Decimal `json:"profit"`
	ProfitMargin        Ratio           `json:"profit_margin"`
}

// CustomerMetrics is recomputed fresh from the filtered transaction set on
// each analysis run.
type CustomerMetrics struct {
	CustomerID   int             `json:"customer_id"`
	LastPurchase time.Time       `json:"last_purchase_date"`
	Frequency    int             `json:"frequency"`
	Monetary     decimal.Decimal `json:"monetary"`
}

type Segment string

const (
	SegmentChampion Segment = "Champion"
	SegmentLoyal    Segment = "Loyal Customer"
	SegmentAtRisk   Segment = "At Risk"
	SegmentAverage  Segment = "Average"
)

type RFMScore struct {
	CustomerID int             `json:"customer_id"`
	Recency    int             `json:"recency_score"`
	Frequency  int             `json:"frequency_score"`
	Monetary   int             `json:"monetary_score"`
	Spend      decimal.Decimal `json:"total_spend"`
	Segment    Segment         `json:"segment"`
}

type TopCustomer struct {
	CustomerID   int             `json:"customer_id"`
	Transactions int             `json:"transactions"`
	TotalSales   decimal.Decimal `json:"total_sales"`
}
