package report

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"

	"retail-dashboard/internal/models"
)

func TestCategories_Rounding(t *testing.T) {
	data := []models.CategoryPerformance{
		{
			Category:            "Clothing",
			Transactions:        3,
			Customers:           2,
			UnitsSold:           7,
			AvgUnitsPerTxn:      decimal.NewFromInt(7).Div(decimal.NewFromInt(3)),
			TotalRevenue:        decimal.NewFromFloat(160.005),
			AvgTransactionValue: decimal.NewFromFloat(53.335),
			TotalProfit:         decimal.NewFromFloat(30.559),
			ProfitMargin:        models.NewRatio(decimal.NewFromInt(30), decimal.NewFromInt(160)),
		},
	}

	rows := Categories(data)
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}

	row := rows[0]
	if row.AvgUnitsPerTxn != "2.33" {
		t.Errorf("avg units = %q, want 2.33", row.AvgUnitsPerTxn)
	}
	if row.TotalProfit != "30.56" {
		t.Errorf("profit = %q, want 30.56", row.TotalProfit)
	}
	if row.ProfitMargin == nil || *row.ProfitMargin != "18.75" {
		t.Errorf("margin = %v, want 18.75", row.ProfitMargin)
	}
}

func TestCategories_UndefinedMargin(t *testing.T) {
	data := []models.CategoryPerformance{
		{Category: "Empty", ProfitMargin: models.UndefinedRatio()},
	}

	rows := Categories(data)
	if rows[0].ProfitMargin != nil {
		t.Errorf("undefined margin should be nil, got %v", *rows[0].ProfitMargin)
	}

	// JSON must carry an explicit null, never NaN or infinity.
	b, err := json.Marshal(rows[0])
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(b, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if v, ok := decoded["profit_margin"]; !ok || v != nil {
		t.Errorf("profit_margin = %v, want null", v)
	}

	if Display(rows[0].ProfitMargin) != NotAvailable {
		t.Errorf("tabular display should show %q", NotAvailable)
	}
}

func TestMonths_PreservesOrderAndGrowth(t *testing.T) {
	data := []models.MonthlyTrend{
		{Month: "2022-01", TotalSales: decimal.NewFromInt(100), Growth: models.UndefinedRatio()},
		{Month: "2022-02", TotalSales: decimal.NewFromInt(550), Growth: models.GrowthRatio(decimal.NewFromInt(550), decimal.NewFromInt(100))},
	}

	rows := Months(data)
	if rows[0].Month != "2022-01" || rows[1].Month != "2022-02" {
		t.Errorf("order not preserved: %+v", rows)
	}
	if rows[0].Growth != nil {
		t.Error("first month growth should be nil")
	}
	if rows[1].Growth == nil || *rows[1].Growth != "450.00" {
		t.Errorf("growth = %v, want 450.00", rows[1].Growth)
	}
}

func TestSegmentsAndCustomers(t *testing.T) {
	segments := Segments([]models.RFMScore{
		{CustomerID: 9, Recency: 5, Frequency: 4, Monetary: 4, Spend: decimal.NewFromFloat(1234.5), Segment: models.SegmentChampion},
	})
	if segments[0].Segment != "Champion" || segments[0].TotalSpend != "1234.50" {
		t.Errorf("unexpected segment row: %+v", segments[0])
	}

	customers := Customers([]models.TopCustomer{
		{CustomerID: 9, Transactions: 3, TotalSales: decimal.NewFromInt(650)},
	})
	if customers[0].TotalSales != "650.00" {
		t.Errorf("total sales = %q, want 650.00", customers[0].TotalSales)
	}
}
