package metrics

// Hash, Query, and Report are the RED+F metric groups observed by the
// hashing, query, and report command paths respectively; Backend is
// observed by every CQLIndex call, labeled by operation. Hash and Query are
// labeled by mode ("file" | "func") since their cost profile differs
// meaningfully between the two; Report is labeled by mode and strategy.
var (
	Hash    = NewRedfMetrics("gemini_hash", WithLabels("mode"))
	Query   = NewRedfMetrics("gemini_query", WithLabels("mode"))
	Report  = NewRedfMetrics("gemini_report", WithLabels("mode", "strategy"))
	Backend = NewRedfMetrics("gemini_backend", WithLabels("op"))
)
