package services

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"retail-dashboard/internal/models"
)

func TestNtileBuckets_Distribution(t *testing.T) {
	tests := []struct {
		n    int
		want []int // members per bucket
	}{
		{1, []int{1, 0, 0, 0, 0}},
		{4, []int{1, 1, 1, 1, 0}},
		{5, []int{1, 1, 1, 1, 1}},
		{7, []int{2, 2, 1, 1, 1}},
		{10, []int{2, 2, 2, 2, 2}},
		{13, []int{3, 3, 3, 2, 2}},
	}

	for _, tt := range tests {
		assignments := ntileBuckets(tt.n, 5)

		if len(assignments) != tt.n {
			t.Fatalf("n=%d: every customer must be assigned, got %d assignments", tt.n, len(assignments))
		}

		sizes := make([]int, 5)
		prev := 0
		for _, b := range assignments {
			if b < 1 || b > 5 {
				t.Fatalf("n=%d: bucket %d out of range", tt.n, b)
			}
			if b < prev {
				t.Fatalf("n=%d: buckets must be assigned in order", tt.n)
			}
			prev = b
			sizes[b-1]++
		}

		for i := range sizes {
			if sizes[i] != tt.want[i] {
				t.Errorf("n=%d: bucket sizes = %v, want %v", tt.n, sizes, tt.want)
				break
			}
		}
	}
}

func TestNtileBuckets_FloorCeilProperty(t *testing.T) {
	for n := 1; n <= 53; n++ {
		assignments := ntileBuckets(n, 5)
		sizes := make(map[int]int)
		for _, b := range assignments {
			sizes[b]++
		}

		floor := n / 5
		ceil := floor
		if n%5 != 0 {
			ceil++
		}

		for b, size := range sizes {
			if size != floor && size != ceil {
				t.Errorf("n=%d bucket %d has %d members, want %d or %d", n, b, size, floor, ceil)
			}
		}
	}
}

func TestSegmentFor_Precedence(t *testing.T) {
	tests := []struct {
		r, f, m int
		want    models.Segment
	}{
		{5, 5, 5, models.SegmentChampion},
		{4, 4, 4, models.SegmentChampion},
		{3, 3, 3, models.SegmentLoyal}, // Champion check at >=4 fails first
		{1, 1, 1, models.SegmentAtRisk},
		{2, 2, 2, models.SegmentAtRisk},
		{5, 1, 1, models.SegmentAverage},
		{1, 5, 5, models.SegmentAverage},
		{4, 4, 3, models.SegmentLoyal},
		{2, 2, 3, models.SegmentAverage},
	}

	for _, tt := range tests {
		if got := SegmentFor(tt.r, tt.f, tt.m); got != tt.want {
			t.Errorf("SegmentFor(%d,%d,%d) = %q, want %q", tt.r, tt.f, tt.m, got, tt.want)
		}
	}
}

func TestComputeCustomerMetrics(t *testing.T) {
	txs := []models.Transaction{
		{CustomerID: 1, SaleDate: date(2022, 1, 5), Quantity: 1, PricePerUnit: decimal.NewFromInt(100)},
		{CustomerID: 1, SaleDate: date(2022, 2, 10), Quantity: 1, PricePerUnit: decimal.NewFromInt(50)},
		{CustomerID: 2, SaleDate: date(2022, 3, 1), Quantity: 1, PricePerUnit: decimal.NewFromInt(500)},
	}

	metrics := ComputeCustomerMetrics(txs)

	if len(metrics) != 2 {
		t.Fatalf("expected 2 customers, got %d", len(metrics))
	}

	c1 := metrics[0]
	if c1.CustomerID != 1 {
		t.Fatalf("first-seen order not preserved: %d", c1.CustomerID)
	}
	if c1.Frequency != 2 {
		t.Errorf("customer 1 frequency = %d, want 2", c1.Frequency)
	}
	if !c1.Monetary.Equal(decimal.NewFromInt(150)) {
		t.Errorf("customer 1 monetary = %s, want 150", c1.Monetary)
	}
	if !c1.LastPurchase.Equal(date(2022, 2, 10)) {
		t.Errorf("customer 1 last purchase = %s", c1.LastPurchase)
	}
}

func TestScoreRFM_SingleCustomer(t *testing.T) {
	metrics := []models.CustomerMetrics{
		{CustomerID: 7, LastPurchase: date(2022, 5, 1), Frequency: 1, Monetary: decimal.NewFromInt(40)},
	}

	scores := ScoreRFM(metrics)

	if len(scores) != 1 {
		t.Fatalf("expected 1 score, got %d", len(scores))
	}
	s := scores[0]
	if s.Recency != 1 || s.Frequency != 1 || s.Monetary != 1 {
		t.Errorf("degenerate set should land in bucket 1, got (%d,%d,%d)", s.Recency, s.Frequency, s.Monetary)
	}
	if s.Segment != models.SegmentAtRisk {
		t.Errorf("segment = %q, want %q", s.Segment, models.SegmentAtRisk)
	}
}

func TestScoreRFM_OrderingAcrossDimensions(t *testing.T) {
	// Five customers with strictly increasing recency, frequency, and spend:
	// customer i should score i+1 in every dimension.
	metrics := make([]models.CustomerMetrics, 5)
	for i := range metrics {
		metrics[i] = models.CustomerMetrics{
			CustomerID:   i + 1,
			LastPurchase: date(2022, 1, i+1),
			Frequency:    i + 1,
			Monetary:     decimal.NewFromInt(int64((i + 1) * 100)),
		}
	}

	scores := ScoreRFM(metrics)

	byID := make(map[int]models.RFMScore)
	for _, s := range scores {
		byID[s.CustomerID] = s
	}

	for i := 1; i <= 5; i++ {
		s := byID[i]
		if s.Recency != i || s.Frequency != i || s.Monetary != i {
			t.Errorf("customer %d scores = (%d,%d,%d), want (%d,%d,%d)",
				i, s.Recency, s.Frequency, s.Monetary, i, i, i)
		}
	}

	if byID[5].Segment != models.SegmentChampion {
		t.Errorf("top customer segment = %q, want Champion", byID[5].Segment)
	}
	if byID[1].Segment != models.SegmentAtRisk {
		t.Errorf("bottom customer segment = %q, want At Risk", byID[1].Segment)
	}

	// Output is sorted by spend descending.
	if scores[0].CustomerID != 5 {
		t.Errorf("scores should be sorted by spend descending, first = %d", scores[0].CustomerID)
	}
}

func TestScoreRFM_AllAssignedOnce(t *testing.T) {
	metrics := make([]models.CustomerMetrics, 23)
	for i := range metrics {
		metrics[i] = models.CustomerMetrics{
			CustomerID:   i + 1,
			LastPurchase: date(2022, 1, 1+i%28),
			Frequency:    1 + i%4,
			Monetary:     decimal.NewFromInt(int64(10 + i*3)),
		}
	}

	scores := ScoreRFM(metrics)

	if len(scores) != len(metrics) {
		t.Fatalf("every customer gets exactly one score, got %d of %d", len(scores), len(metrics))
	}

	seen := make(map[int]bool)
	for _, s := range scores {
		if seen[s.CustomerID] {
			t.Errorf("customer %d scored twice", s.CustomerID)
		}
		seen[s.CustomerID] = true

		for _, v := range []int{s.Recency, s.Frequency, s.Monetary} {
			if v < 1 || v > 5 {
				t.Errorf("customer %d has out-of-range score %d", s.CustomerID, v)
			}
		}
	}
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
