package services

import (
	"cmp"
	"slices"

	"retail-dashboard/internal/models"
)

const rfmBuckets = 5

// ComputeCustomerMetrics derives one CustomerMetrics per customer from the
// valid transaction set, preserving first-seen order so quintile tie-breaks
// stay stable.
func ComputeCustomerMetrics(valid []models.Transaction) []models.CustomerMetrics {
	index := make(map[int]int)
	metrics := make([]models.CustomerMetrics, 0)

	for _, tx := range valid {
		i, ok := index[tx.CustomerID]
		if !ok {
			i = len(metrics)
			index[tx.CustomerID] = i
			metrics = append(metrics, models.CustomerMetrics{CustomerID: tx.CustomerID})
		}
		m := &metrics[i]
		m.Frequency++
		m.Monetary = m.Monetary.Add(tx.TotalSales())
		if tx.SaleDate.After(m.LastPurchase) {
			m.LastPurchase = tx.SaleDate
		}
	}

	return metrics
}

// ScoreRFM assigns 1-5 quintile scores per dimension and a segment label to
// every customer. Bucket 5 always holds the most recent, most frequent, or
// highest-spending fifth; when the customer count does not divide evenly,
// the earliest (lowest) buckets take the remainder, matching NTILE.
func ScoreRFM(metrics []models.CustomerMetrics) []models.RFMScore {
	recency := scoreDimension(metrics, func(a, b models.CustomerMetrics) int {
		return a.LastPurchase.Compare(b.LastPurchase)
	})
	frequency := scoreDimension(metrics, func(a, b models.CustomerMetrics) int {
		return cmp.Compare(a.Frequency, b.Frequency)
	})
	monetary := scoreDimension(metrics, func(a, b models.CustomerMetrics) int {
		return a.Monetary.Cmp(b.Monetary)
	})

	scores := make([]models.RFMScore, len(metrics))
	for i, m := range metrics {
		scores[i] = models.RFMScore{
			CustomerID: m.CustomerID,
			Recency:    recency[i],
			Frequency:  frequency[i],
			Monetary:   monetary[i],
			Spend:      m.Monetary,
			Segment:    SegmentFor(recency[i], frequency[i], monetary[i]),
		}
	}

	slices.SortStableFunc(scores, func(a, b models.RFMScore) int {
		return b.Spend.Cmp(a.Spend)
	})
	return scores
}

// SegmentFor applies the segment rules in precedence order; the first match
// wins, so (3,3,3) is Loyal Customer because the Champion check fails first.
func SegmentFor(recency, frequency, monetary int) models.Segment {
	switch {
	case recency >= 4 && frequency >= 4 && monetary >= 4:
		return models.SegmentChampion
	case recency >= 3 && frequency >= 3 && monetary >= 3:
		return models.SegmentLoyal
	case recency <= 2 && frequency <= 2 && monetary <= 2:
		return models.SegmentAtRisk
	default:
		return models.SegmentAverage
	}
}

// scoreDimension ranks customers ascending by the given comparison (lowest
// value first) and assigns each the NTILE bucket of its rank position.
func scoreDimension(metrics []models.CustomerMetrics, compare func(a, b models.CustomerMetrics) int) []int {
	n := len(metrics)
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	slices.SortStableFunc(order, func(i, j int) int {
		return compare(metrics[i], metrics[j])
	})

	buckets := ntileBuckets(n, rfmBuckets)
	scores := make([]int, n)
	for pos, i := range order {
		scores[i] = buckets[pos]
	}
	return scores
}

// ntileBuckets returns the bucket (1..buckets) for each of n rank positions.
// The first n mod buckets buckets hold ceil(n/buckets) members, the rest
// floor(n/buckets).
func ntileBuckets(n, buckets int) []int {
	out := make([]int, n)
	base := n / buckets
	rem := n % buckets

	pos := 0
	for b := 1; b <= buckets && pos < n; b++ {
		size := base
		if b <= rem {
			size++
		}
		for i := 0; i < size; i++ {
			out[pos] = b
			pos++
		}
	}
	return out
}
