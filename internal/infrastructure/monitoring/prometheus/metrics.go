package prometheus

// Label values for AffinityMetrics.
const (
	SourceMeasured  = "measured"
	SourceEstimated = "estimated"
	SourceNone      = "none"

	OutcomeSuccess = "success"
	OutcomeInvalid = "invalid_input"
	OutcomeError   = "error"
)

// AffinityMetrics holds every series the service exports.
type AffinityMetrics struct {
	// Prediction pipeline
	PredictionsTotal     CounterVec
	PredictionDuration   HistogramVec
	EstimatorInvocations CounterVec
	InvalidInputsTotal   CounterVec
	ReferenceRecords     GaugeVec
	EstimatorInfo        GaugeVec

	// HTTP layer
	HTTPRequestsTotal   CounterVec
	HTTPRequestDuration HistogramVec
	HTTPActiveRequests  GaugeVec
}

// Duration buckets in seconds.
var (
	DefaultPredictionBuckets = []float64{.0005, .001, .0025, .005, .01, .025, .05, .1, .25, .5, 1}
	DefaultHTTPBuckets       = []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5}
)

// NewAffinityMetrics registers the service series on c.
func NewAffinityMetrics(c MetricsCollector) *AffinityMetrics {
	return &AffinityMetrics{
		PredictionsTotal: c.RegisterCounter("predictions_total",
			"Predictions served, by answer source and outcome.", "source", "outcome"),
		PredictionDuration: c.RegisterHistogram("prediction_duration_seconds",
			"Time spent in the prediction pipeline.", DefaultPredictionBuckets, "source"),
		EstimatorInvocations: c.RegisterCounter("estimator_invocations_total",
			"Calls into the fitted estimator."),
		InvalidInputsTotal: c.RegisterCounter("invalid_inputs_total",
			"Requests rejected as invalid input, by failing stage.", "stage"),
		ReferenceRecords: c.RegisterGauge("reference_table_records",
			"Records in the loaded reference table."),
		EstimatorInfo: c.RegisterGauge("estimator_info",
			"Loaded estimator, always 1.", "kind", "version"),

		HTTPRequestsTotal: c.RegisterCounter("http_requests_total",
			"HTTP requests by method, route and status.", "method", "route", "status"),
		HTTPRequestDuration: c.RegisterHistogram("http_request_duration_seconds",
			"HTTP request latency.", DefaultHTTPBuckets, "method", "route"),
		HTTPActiveRequests: c.RegisterGauge("http_active_requests",
			"Requests currently being served."),
	}
}

// NewNoopAffinityMetrics returns metrics that record nothing.
func NewNoopAffinityMetrics() *AffinityMetrics {
	return NewAffinityMetrics(NewNoopCollector())
}
