package services

import (
	"bufio"
	"context"
	"encoding/gob"
	"fmt"
	"log/slog"
	"os"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"retail-dashboard/internal/filter"
	"retail-dashboard/internal/models"
)

const (
	batchSize    = 10000
	maxWorkers   = 10
	cacheVersion = "v1"
	cacheDir     = ".cache"
)

// PrecomputedData holds every report derived from one pass over the valid
// transaction set.
type PrecomputedData struct {
	CategoryPerformance []models.CategoryPerformance `json:"category_performance"`
	MonthlyTrend        []models.MonthlyTrend        `json:"monthly_trend"`
	TimeBuckets         []models.TimeBucketStats     `json:"time_buckets"`
	RFMSegments         []models.RFMScore            `json:"rfm_segments"`
	TopCustomers        []models.TopCustomer         `json:"top_customers"`
	Rejections          filter.Breakdown             `json:"rejections"`
	LastModified        time.Time                    `json:"last_modified"`
	RecordCount         int64                        `json:"record_count"`
}

type Analytics struct {
	mu               sync.RWMutex
	precomputed      *PrecomputedData
	filter           *filter.Filter
	csvPath          string
	recordsProcessed atomic.Int64
	logger           *slog.Logger
}

func NewAnalytics() *Analytics {
	return &Analytics{
		precomputed: &PrecomputedData{},
		filter:      filter.New(),
		logger:      slog.Default(),
	}
}

// SetData filters the given raw records and recomputes every report. This is
// the single entry point for non-CSV sources (database rows, tests).
func (a *Analytics) SetData(records []models.RawTransaction) {
	valid, rejected := a.filter.Apply(records)

	precomputed := a.computeAnalytics(valid, rejected)

	a.mu.Lock()
	a.precomputed = precomputed
	a.mu.Unlock()

	a.recordsProcessed.Store(int64(len(valid)))

	if rejected.Total() > 0 {
		a.logger.Warn("records rejected during filtering",
			"rejected", rejected.Total(),
			"valid", len(valid),
		)
	}
}

func (a *Analytics) LoadFromCSV(ctx context.Context, filename string) error {
	a.csvPath = filename

	if cached, err := a.loadFromCache(filename); err == nil {
		fileInfo, err := os.Stat(filename)
		if err == nil && fileInfo.ModTime().Before(cached.LastModified) {
			a.mu.Lock()
			a.precomputed = cached
			a.mu.Unlock()
			a.logger.Info("loaded from cache", "records", cached.RecordCount)
			return nil
		}
	}

	start := time.Now()
	a.logger.Info("processing CSV file", "filename", filename)

	if err := a.streamProcessCSV(ctx, filename); err != nil {
		return fmt.Errorf("process csv: %w", err)
	}

	if err := a.saveToCache(filename); err != nil {
		a.logger.Warn("failed to save cache", "error", err)
	}

	duration := time.Since(start)
	count := a.recordsProcessed.Load()
	a.logger.Info("csv processing complete",
		"records", count,
		"duration", duration,
		"rate", fmt.Sprintf("%.0f records/sec", float64(count)/duration.Seconds()))

	return nil
}

func (a *Analytics) streamProcessCSV(ctx context.Context, filename string) error {
	file, err := os.Open(filename)
	if err != nil {
		return fmt.Errorf("open file: %w", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 1024*1024), 10*1024*1024) // 10MB buffer

	// Skip header
	if !scanner.Scan() {
		return fmt.Errorf("empty file")
	}

	records := make([]models.RawTransaction, 0, batchSize)
	batch := make([]string, 0, batchSize)

	for scanner.Scan() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		batch = append(batch, line)

		if len(batch) >= batchSize {
			parsed, err := parseBatch(ctx, batch)
			if err != nil {
				return err
			}
			records = append(records, parsed...)
			batch = batch[:0]
		}
	}

	if len(batch) > 0 {
		parsed, err := parseBatch(ctx, batch)
		if err != nil {
			return err
		}
		records = append(records, parsed...)
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("scan error: %w", err)
	}

	if len(records) == 0 {
		return fmt.Errorf("no records found")
	}

	a.SetData(records)
	return nil
}

// parseBatch parses CSV lines on a bounded worker pool, preserving line
// order in the result so downstream tie-breaks stay stable.
func parseBatch(ctx context.Context, batch []string) ([]models.RawTransaction, error) {
	parsed := make([]models.RawTransaction, len(batch))

	var wg errgroup.Group
	wg.SetLimit(maxWorkers)

	for i, line := range batch {
		wg.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			parsed[i] = parseRawTransaction(strings.Split(line, ","))
			return nil
		})
	}

	if err := wg.Wait(); err != nil {
		return nil, err
	}
	return parsed, nil
}

// parseRawTransaction never fails: fields that do not parse stay at their
// zero value and the filter rejects the record under the matching reason.
func parseRawTransaction(record []string) models.RawTransaction {
	var raw models.RawTransaction

	raw.TransactionID = parseInt(field(record, 0))
	if d, err := time.Parse("2006-01-02", field(record, 1)); err == nil {
		raw.SaleDate = d
	}
	if t, err := time.Parse("15:04:05", field(record, 2)); err == nil {
		raw.SaleTime = t
	}
	raw.CustomerID = parseInt(field(record, 3))
	raw.Gender = field(record, 4)
	raw.Age = parseInt(field(record, 5))
	raw.Category = field(record, 6)
	raw.Quantity = parseInt(field(record, 7))
	if d, err := decimal.NewFromString(field(record, 8)); err == nil {
		raw.PricePerUnit = d
	}
	if d, err := decimal.NewFromString(field(record, 9)); err == nil {
		raw.COGS = d
	}

	return raw
}

func field(record []string, i int) string {
	if i >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[i])
}

func parseInt(s string) int {
	n := 0
	if _, err := fmt.Sscanf(s, "%d", &n); err != nil {
		return 0
	}
	return n
}

func (a *Analytics) computeAnalytics(valid []models.Transaction, rejected filter.Breakdown) *PrecomputedData {
	return &PrecomputedData{
		CategoryPerformance: categoryPerformance(valid),
		MonthlyTrend:        monthlyTrend(valid),
		TimeBuckets:         timeBuckets(valid),
		RFMSegments:         ScoreRFM(ComputeCustomerMetrics(valid)),
		TopCustomers:        topCustomers(valid),
		Rejections:          rejected,
		LastModified:        time.Now(),
		RecordCount:         int64(len(valid)),
	}
}

type categoryAcc struct {
	transactions int
	customers    map[int]struct{}
	units        int
	revenue      decimal.Decimal
	profit       decimal.Decimal
}

func categoryPerformance(valid []models.Transaction) []models.CategoryPerformance {
	groups := make(map[string]*categoryAcc)
	order := make([]string, 0)

	for _, tx := range valid {
		acc := groups[tx.Category]
		if acc == nil {
			acc = &categoryAcc{customers: make(map[int]struct{})}
			groups[tx.Category] = acc
			order = append(order, tx.Category)
		}
		acc.transactions++
		acc.customers[tx.CustomerID] = struct{}{}
		acc.units += tx.Quantity
		acc.revenue = acc.revenue.Add(tx.TotalSales())
		acc.profit = acc.profit.Add(tx.Profit())
	}

	result := make([]models.CategoryPerformance, 0, len(groups))
	for _, category := range order {
		acc := groups[category]
		txns := decimal.NewFromInt(int64(acc.transactions))
		result = append(result, models.CategoryPerformance{
			Category:            category,
			Transactions:        acc.transactions,
			Customers:           len(acc.customers),
			UnitsSold:           acc.units,
			AvgUnitsPerTxn:      decimal.NewFromInt(int64(acc.units)).Div(txns),
			TotalRevenue:        acc.revenue,
			AvgTransactionValue: acc.revenue.Div(txns),
			TotalProfit:         acc.profit,
			ProfitMargin:        models.NewRatio(acc.profit, acc.revenue),
		})
	}

	slices.SortStableFunc(result, func(a, b models.CategoryPerformance) int {
		return b.TotalRevenue.Cmp(a.TotalRevenue)
	})
	return result
}

type monthAcc struct {
	sales     decimal.Decimal
	customers map[int]struct{}
	units     int
}

func monthlyTrend(valid []models.Transaction) []models.MonthlyTrend {
	groups := make(map[string]*monthAcc)

	for _, tx := range valid {
		month := tx.SaleDate.Format("2006-01")
		acc := groups[month]
		if acc == nil {
			acc = &monthAcc{customers: make(map[int]struct{})}
			groups[month] = acc
		}
		acc.sales = acc.sales.Add(tx.TotalSales())
		acc.customers[tx.CustomerID] = struct{}{}
		acc.units += tx.Quantity
	}

	months := make([]string, 0, len(groups))
	for month := range groups {
		months = append(months, month)
	}
	slices.Sort(months)

	result := make([]models.MonthlyTrend, 0, len(months))
	for i, month := range months {
		acc := groups[month]

		// Growth partitions by year: the first month present in each year
		// has no baseline and stays undefined.
		growth := models.UndefinedRatio()
		if i > 0 && months[i-1][:4] == month[:4] {
			growth = models.GrowthRatio(acc.sales, groups[months[i-1]].sales)
		}

		result = append(result, models.MonthlyTrend{
			Month:      month,
			TotalSales: acc.sales,
			Customers:  len(acc.customers),
			UnitsSold:  acc.units,
			Growth:     growth,
		})
	}
	return result
}

type bucketAcc struct {
	transactions int
	revenue      decimal.Decimal
	profit       decimal.Decimal
}

func timeBuckets(valid []models.Transaction) []models.TimeBucketStats {
	groups := make(map[models.TimeBucket]*bucketAcc)

	for _, tx := range valid {
		bucket := models.BucketForHour(tx.SaleTime.Hour())
		acc := groups[bucket]
		if acc == nil {
			acc = &bucketAcc{}
			groups[bucket] = acc
		}
		acc.transactions++
		acc.revenue = acc.revenue.Add(tx.TotalSales())
		acc.profit = acc.profit.Add(tx.Profit())
	}

	// Buckets with no transactions are omitted, never emitted as zero rows.
	result := make([]models.TimeBucketStats, 0, len(groups))
	for _, bucket := range []models.TimeBucket{models.BucketMorning, models.BucketAfternoon, models.BucketEvening} {
		acc := groups[bucket]
		if acc == nil {
			continue
		}
		txns := decimal.NewFromInt(int64(acc.transactions))
		result = append(result, models.TimeBucketStats{
			Bucket:              bucket,
			Transactions:        acc.transactions,
			Revenue:             acc.revenue,
			AvgTransactionValue: acc.revenue.Div(txns),
			Profit:              acc.profit,
			ProfitMargin:        models.NewRatio(acc.profit, acc.revenue),
		})
	}

	slices.SortStableFunc(result, func(a, b models.TimeBucketStats) int {
		return b.Transactions - a.Transactions
	})
	return result
}

func topCustomers(valid []models.Transaction) []models.TopCustomer {
	groups := make(map[int]*models.TopCustomer)
	order := make([]int, 0)

	for _, tx := range valid {
		tc := groups[tx.CustomerID]
		if tc == nil {
			tc = &models.TopCustomer{CustomerID: tx.CustomerID}
			groups[tx.CustomerID] = tc
			order = append(order, tx.CustomerID)
		}
		tc.Transactions++
		tc.TotalSales = tc.TotalSales.Add(tx.TotalSales())
	}

	result := make([]models.TopCustomer, 0, len(groups))
	for _, id := range order {
		result = append(result, *groups[id])
	}

	// Ties keep first-seen input order.
	slices.SortStableFunc(result, func(a, b models.TopCustomer) int {
		return b.TotalSales.Cmp(a.TotalSales)
	})
	return result
}

// Cache management
func (a *Analytics) getCacheFilename(csvPath string) string {
	return fmt.Sprintf("%s/%s_%s.gob", cacheDir, strings.ReplaceAll(csvPath, "/", "_"), cacheVersion)
}

func (a *Analytics) saveToCache(csvPath string) error {
	if err := os.MkdirAll(cacheDir, 0755); err != nil {
		return err
	}

	filename := a.getCacheFilename(csvPath)
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	a.mu.RLock()
	defer a.mu.RUnlock()

	encoder := gob.NewEncoder(file)
	return encoder.Encode(a.precomputed)
}

func (a *Analytics) loadFromCache(csvPath string) (*PrecomputedData, error) {
	filename := a.getCacheFilename(csvPath)
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var data PrecomputedData
	decoder := gob.NewDecoder(file)
	if err := decoder.Decode(&data); err != nil {
		return nil, err
	}

	return &data, nil
}

// Fast query methods - O(1) lookups from precomputed data
func (a *Analytics) CategoryPerformance() []models.CategoryPerformance {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.precomputed.CategoryPerformance
}

func (a *Analytics) MonthlyTrend() []models.MonthlyTrend {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.precomputed.MonthlyTrend
}

func (a *Analytics) TimeBuckets() []models.TimeBucketStats {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.precomputed.TimeBuckets
}

func (a *Analytics) RFMSegments() []models.RFMScore {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.precomputed.RFMSegments
}

func (a *Analytics) TopCustomers(limit int) []models.TopCustomer {
	a.mu.RLock()
	defer a.mu.RUnlock()

	if len(a.precomputed.TopCustomers) <= limit {
		return a.precomputed.TopCustomers
	}
	return a.precomputed.TopCustomers[:limit]
}

func (a *Analytics) Rejections() filter.Breakdown {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.precomputed.Rejections
}

// Utility method for monitoring
func (a *Analytics) Stats() map[string]any {
	a.mu.RLock()
	defer a.mu.RUnlock()

	return map[string]any{
		"record_count":   a.precomputed.RecordCount,
		"last_processed": a.precomputed.LastModified,
		"rejections":     a.precomputed.Rejections,
		"categories":     len(a.precomputed.CategoryPerformance),
		"months":         len(a.precomputed.MonthlyTrend),
		"customers":      len(a.precomputed.RFMSegments),
	}
}
