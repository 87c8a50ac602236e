// Package report is the presentation boundary: it rounds money to two
// decimals, renders undefined ratios explicitly, and preserves each report's
// sort order. No aggregation happens here.
package report

import (
	"retail-dashboard/internal/models"
)

// NotAvailable marks an undefined ratio in tabular output.
const NotAvailable = "n/a"

type CategoryRow struct {
	Category            string  `json:"category"`
	Transactions        int     `json:"transactions"`
	Customers           int     `json:"customers"`
	UnitsSold           int     `json:"units_sold"`
	AvgUnitsPerTxn      string  `json:"avg_units_per_transaction"`
	TotalRevenue        string  `json:"total_revenue"`
	AvgTransactionValue string  `json:"avg_transaction_value"`
	TotalProfit         string  `json:"total_profit"`
	ProfitMargin        *string `json:"profit_margin"`
}

type MonthRow struct {
	Month      string  `json:"month"`
	TotalSales string  `json:"total_sales"`
	Customers  int     `json:"customers"`
	UnitsSold  int     `json:"units_sold"`
	Growth     *string `json:"growth"`
}

type BucketRow struct {
	Bucket              string  `json:"bucket"`
	Transactions        int     `json:"transactions"`
	Revenue             string  `json:"revenue"`
	AvgTransactionValue string  `json:"avg_transaction_value"`
	Profit              string  `json:"profit"`
	ProfitMargin        *string `json:"profit_margin"`
}

type SegmentRow struct {
	CustomerID int    `json:"customer_id"`
	Recency    int    `json:"recency_score"`
	Frequency  int    `json:"frequency_score"`
	Monetary   int    `json:"monetary_score"`
	TotalSpend string `json:"total_spend"`
	Segment    string `json:"segment"`
}

type CustomerRow struct {
	CustomerID   int    `json:"customer_id"`
	Transactions int    `json:"transactions"`
	TotalSales   string `json:"total_sales"`
}

func Categories(data []models.CategoryPerformance) []CategoryRow {
	rows := make([]CategoryRow, 0, len(data))
	for _, c := range data {
		rows = append(rows, CategoryRow{
			Category:            c.Category,
			Transactions:        c.Transactions,
			Customers:           c.Customers,
			UnitsSold:           c.UnitsSold,
			AvgUnitsPerTxn:      c.AvgUnitsPerTxn.StringFixed(2),
			TotalRevenue:        c.TotalRevenue.StringFixed(2),
			AvgTransactionValue: c.AvgTransactionValue.StringFixed(2),
			TotalProfit:         c.TotalProfit.StringFixed(2),
			ProfitMargin:        ratioString(c.ProfitMargin),
		})
	}
	return rows
}

func Months(data []models.MonthlyTrend) []MonthRow {
	rows := make([]MonthRow, 0, len(data))
	for _, m := range data {
		rows = append(rows, MonthRow{
			Month:      m.Month,
			TotalSales: m.TotalSales.StringFixed(2),
			Customers:  m.Customers,
			UnitsSold:  m.UnitsSold,
			Growth:     ratioString(m.Growth),
		})
	}
	return rows
}

func Buckets(data []models.TimeBucketStats) []BucketRow {
	rows := make([]BucketRow, 0, len(data))
	for _, b := range data {
		rows = append(rows, BucketRow{
			Bucket:              string(b.Bucket),
			Transactions:        b.Transactions,
			Revenue:             b.Revenue.StringFixed(2),
			AvgTransactionValue: b.AvgTransactionValue.StringFixed(2),
			Profit:              b.Profit.StringFixed(2),
			ProfitMargin:        ratioString(b.ProfitMargin),
		})
	}
	return rows
}

func Segments(data []models.RFMScore) []SegmentRow {
	rows := make([]SegmentRow, 0, len(data))
	for _, s := range data {
		rows = append(rows, SegmentRow{
			CustomerID: s.CustomerID,
			Recency:    s.Recency,
			Frequency:  s.Frequency,
			Monetary:   s.Monetary,
			TotalSpend: s.Spend.StringFixed(2),
			Segment:    string(s.Segment),
		})
	}
	return rows
}

func Customers(data []models.TopCustomer) []CustomerRow {
	rows := make([]CustomerRow, 0, len(data))
	for _, c := range data {
		rows = append(rows, CustomerRow{
			CustomerID:   c.CustomerID,
			Transactions: c.Transactions,
			TotalSales:   c.TotalSales.StringFixed(2),
		})
	}
	return rows
}

// Display returns the tabular form of a possibly-nil ratio string.
func Display(s *string) string {
	if s == nil {
		return NotAvailable
	}
	return *s
}

func ratioString(r models.Ratio) *string {
	if !r.Defined() {
		return nil
	}
	s := r.Value().StringFixed(2)
	return &s
}
