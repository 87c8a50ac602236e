package handlers

import (
	"encoding/json"
	"html/template"
	"log/slog"
	"net/http"
	"strings"

	"github.com/starfederation/datastar-go/datastar"

	"retail-dashboard/internal/report"
	"retail-dashboard/internal/services"
)

const (
	maxTableRows    = 50
	maxTopCustomers = 10
)

var categoryTableTemplate = template.Must(template.New("categoryTable").
	Funcs(template.FuncMap{"display": report.Display}).
	Parse(`
<div id="category-content">
<table class="modern-table">
<thead><tr><th>Category</th><th>Orders</th><th>Customers</th><th>Units</th><th>Revenue</th><th>Profit</th><th>Margin %</th></tr></thead>
<tbody>
{{range .}}<tr>
<td><span class="category-badge">{{.Category}}</span></td>
<td>{{.Transactions}}</td>
<td>{{.Customers}}</td>
<td>{{.UnitsSold}}</td>
<td><strong>${{.TotalRevenue}}</strong></td>
<td>${{.TotalProfit}}</td>
<td>{{display .ProfitMargin}}</td>
</tr>{{end}}
</tbody>
</table>
</div>`))

var segmentTableTemplate = template.Must(template.New("segmentTable").Parse(`
<div id="segment-content">
<table class="modern-table">
<thead><tr><th>Customer</th><th>R</th><th>F</th><th>M</th><th>Spend</th><th>Segment</th></tr></thead>
<tbody>
{{range .}}<tr>
<td>{{.CustomerID}}</td>
<td>{{.Recency}}</td>
<td>{{.Frequency}}</td>
<td>{{.Monetary}}</td>
<td><strong>${{.TotalSpend}}</strong></td>
<td><span class="category-badge">{{.Segment}}</span></td>
</tr>{{end}}
</tbody>
</table>
</div>`))

type SSEHandlers struct {
	analytics *services.Analytics
	logger    *slog.Logger
}

func NewSSEHandlers(analytics *services.Analytics, logger *slog.Logger) *SSEHandlers {
	return &SSEHandlers{
		analytics: analytics,
		logger:    logger,
	}
}

func (h *SSEHandlers) renderCategoryTable(rows []report.CategoryRow) (string, error) {
	if len(rows) > maxTableRows {
		rows = rows[:maxTableRows]
	}

	var buf strings.Builder
	err := categoryTableTemplate.Execute(&buf, rows)
	return buf.String(), err
}

func (h *SSEHandlers) renderSegmentTable(rows []report.SegmentRow) (string, error) {
	if len(rows) > maxTableRows {
		rows = rows[:maxTableRows]
	}

	var buf strings.Builder
	err := segmentTableTemplate.Execute(&buf, rows)
	return buf.String(), err
}

func (h *SSEHandlers) HandleCategoryPerformance(w http.ResponseWriter, r *http.Request) {
	sse := datastar.NewSSE(w, r)

	rows := report.Categories(h.analytics.CategoryPerformance())
	html, err := h.renderCategoryTable(rows)
	if err != nil {
		h.logger.Error("render category table", "error", err)
		return
	}

	sse.PatchElements(html)

	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
}

func (h *SSEHandlers) HandleMonthlyTrend(w http.ResponseWriter, r *http.Request) {
	sse := datastar.NewSSE(w, r)

	rows := report.Months(h.analytics.MonthlyTrend())
	jsonData, err := json.Marshal(map[string]any{
		"monthlyData": rows,
	})
	if err != nil {
		h.logger.Error("marshal monthly data", "error", err)
		return
	}
	sse.PatchSignals(jsonData)

	sse.PatchElements(`<div id="monthly-content">✅ Monthly trend data loaded</div>`)

	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
}

func (h *SSEHandlers) HandleTimeBuckets(w http.ResponseWriter, r *http.Request) {
	sse := datastar.NewSSE(w, r)

	rows := report.Buckets(h.analytics.TimeBuckets())
	jsonData, err := json.Marshal(map[string]any{
		"bucketData": rows,
	})
	if err != nil {
		h.logger.Error("marshal bucket data", "error", err)
		return
	}
	sse.PatchSignals(jsonData)

	sse.PatchElements(`<div id="bucket-content">✅ Time-of-day data loaded</div>`)

	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
}

func (h *SSEHandlers) HandleRFMSegments(w http.ResponseWriter, r *http.Request) {
	sse := datastar.NewSSE(w, r)

	rows := report.Segments(h.analytics.RFMSegments())
	html, err := h.renderSegmentTable(rows)
	if err != nil {
		h.logger.Error("render segment table", "error", err)
		return
	}

	sse.PatchElements(html)

	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
}

func (h *SSEHandlers) HandleTopCustomers(w http.ResponseWriter, r *http.Request) {
	sse := datastar.NewSSE(w, r)

	rows := report.Customers(h.analytics.TopCustomers(maxTopCustomers))
	jsonData, err := json.Marshal(map[string]any{
		"customerData": rows,
	})
	if err != nil {
		h.logger.Error("marshal customer data", "error", err)
		return
	}
	sse.PatchSignals(jsonData)

	sse.PatchElements(`<div id="customer-content">✅ Top customers loaded</div>`)

	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
}

func (h *SSEHandlers) HandleRefreshAll(w http.ResponseWriter, r *http.Request) {
	sse := datastar.NewSSE(w, r)

	categoryHTML, err := h.renderCategoryTable(report.Categories(h.analytics.CategoryPerformance()))
	if err != nil {
		h.logger.Error("render category table", "error", err)
		return
	}
	sse.PatchElements(categoryHTML)

	segmentHTML, err := h.renderSegmentTable(report.Segments(h.analytics.RFMSegments()))
	if err != nil {
		h.logger.Error("render segment table", "error", err)
		return
	}
	sse.PatchElements(segmentHTML)

	allSignals, err := json.Marshal(map[string]any{
		"monthlyData":  report.Months(h.analytics.MonthlyTrend()),
		"bucketData":   report.Buckets(h.analytics.TimeBuckets()),
		"customerData": report.Customers(h.analytics.TopCustomers(maxTopCustomers)),
	})
	if err != nil {
		h.logger.Error("marshal all signals data", "error", err)
		return
	}
	sse.PatchSignals(allSignals)

	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
}
