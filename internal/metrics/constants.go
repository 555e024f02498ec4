package metrics

import "github.com/prometheus/client_golang/prometheus"

// Metric names
const (
	MetricNameHTTPRequestsTotal    = "http_requests_total"
	MetricNameHTTPRequestDuration  = "http_request_duration_seconds"
	MetricNameHTTPRequestsInFlight = "http_requests_in_flight"

	MetricNameBoxesMinted   = "reward_boxes_minted_total"
	MetricNameBoxesOpened   = "reward_boxes_opened_total"
	MetricNameBoxesClaimed  = "reward_boxes_claimed_total"
	MetricNameTokensAwarded = "reward_tokens_awarded_total"
	MetricNameXPAwarded     = "reward_xp_awarded_total"
	MetricNameDropsRolled   = "reward_drops_rolled_total"
)

// Help texts
const (
	HelpTextHTTPRequestsTotal    = "Total number of HTTP requests"
	HelpTextHTTPRequestDuration  = "HTTP request latency in seconds"
	HelpTextHTTPRequestsInFlight = "Number of HTTP requests currently being served"

	HelpTextBoxesMinted   = "Total loot boxes minted by level-up grants"
	HelpTextBoxesOpened   = "Total loot boxes opened"
	HelpTextBoxesClaimed  = "Total loot boxes claimed"
	HelpTextTokensAwarded = "Total tokens settled into wallets"
	HelpTextXPAwarded     = "Total XP settled from claimed boosts"
	HelpTextDropsRolled   = "Total drops rolled, labeled by reward type"
)

// Label names
const (
	LabelMethod = "method"
	LabelPath   = "path"
	LabelStatus = "status"
	LabelTier   = "tier"
	LabelType   = "type"
)

// HTTPLatencyBuckets are the histogram buckets for request latency
var HTTPLatencyBuckets = prometheus.DefBuckets
