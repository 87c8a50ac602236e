// Package templates holds the dashboard page components.
package templates

import (
	"context"
	"io"

	"github.com/a-h/templ"
)

// Dashboard renders the analytics dashboard shell. Each panel loads its
// report over SSE once the page mounts.
func Dashboard() templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := io.WriteString(w, dashboardPage)
		return err
	})
}

const dashboardPage = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8"/>
<meta name="viewport" content="width=device-width, initial-scale=1"/>
<title>Retail Sales Dashboard</title>
<script type="module" src="https://cdn.jsdelivr.net/gh/starfederation/datastar@v1.0.0/bundles/datastar.js"></script>
<style>
body { font-family: system-ui, sans-serif; margin: 2rem; background: #f7f7f9; color: #1f2430; }
h1 { font-size: 1.4rem; }
.panel { background: #fff; border-radius: 8px; padding: 1rem 1.25rem; margin-bottom: 1.5rem; box-shadow: 0 1px 3px rgba(0,0,0,.08); }
.modern-table { width: 100%; border-collapse: collapse; font-size: .9rem; }
.modern-table th, .modern-table td { padding: .4rem .6rem; text-align: left; border-bottom: 1px solid #e4e6eb; }
.category-badge { background: #eef2ff; border-radius: 4px; padding: .1rem .4rem; font-size: .8rem; }
button { padding: .4rem .9rem; border: 1px solid #ccd; border-radius: 6px; background: #fff; cursor: pointer; }
</style>
</head>
<body>
<h1>Retail Sales Dashboard</h1>
<button data-on-click="@get('/sse/refresh-all')">Refresh all</button>

<div class="panel">
<h2>Category performance</h2>
<div id="category-content" data-on-load="@get('/sse/category-performance')">Loading&hellip;</div>
</div>

<div class="panel">
<h2>Monthly trend</h2>
<div id="monthly-content" data-signals="{monthlyData: []}" data-on-load="@get('/sse/monthly-trend')">Loading&hellip;</div>
</div>

<div class="panel">
<h2>Sales by time of day</h2>
<div id="bucket-content" data-signals="{bucketData: []}" data-on-load="@get('/sse/time-buckets')">Loading&hellip;</div>
</div>

<div class="panel">
<h2>RFM segments</h2>
<div id="segment-content" data-on-load="@get('/sse/rfm-segments')">Loading&hellip;</div>
</div>

<div class="panel">
<h2>Top customers</h2>
<div id="customer-content" data-signals="{customerData: []}" data-on-load="@get('/sse/top-customers')">Loading&hellip;</div>
</div>
</body>
</html>
`
