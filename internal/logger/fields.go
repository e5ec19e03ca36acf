package logger

// Fields is an alias for map[string]interface{} for convenience.
type Fields map[string]interface{}

// ============================================
// Standard Tracing Fields (Context level)
// These fields are propagated through the call chain
// ============================================

const (
	// FieldRequestID is the HTTP request ID (UUID or the caller's correlation id)
	FieldRequestID = "request_id"

	// FieldRunID is the ingestion run ID
	FieldRunID = "run_id"

	// FieldGeneration is the generation number being synchronized
	FieldGeneration = "generation"

	// FieldDexID is the national dex id of the item being processed
	FieldDexID = "dex_id"

	// FieldComponent is the component/module name
	FieldComponent = "component"

	// FieldSource is the upstream source identifier
	FieldSource = "source"
)

// ============================================
// Standard Metric Fields (Entry level)
// These fields are used for aggregation and alerting
// ============================================

const (
	// FieldDurationMs is the execution duration in milliseconds
	FieldDurationMs = "duration_ms"

	// FieldCount is a generic count field
	FieldCount = "count"

	// FieldSize is the response body size in bytes
	FieldSize = "size"

	// FieldSuccess is the number of items a run processed successfully
	FieldSuccess = "success"

	// FieldFailed is the number of items a run failed on
	FieldFailed = "failed"

	// FieldStatus is the operation status
	FieldStatus = "status"
)
