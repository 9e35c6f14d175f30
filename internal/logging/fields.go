package logging

const (
	// Request
	FieldRequestID = "request_id"
	FieldMethod    = "method"
	FieldPath      = "path"
	FieldStatus    = "status"
	FieldLatency   = "latency_ms"
	FieldClientIP  = "client_ip"

	// Realtime channel
	FieldClientID      = "client_id"
	FieldCorrelationID = "correlation_id"
	FieldMessageID     = "message_id"

	// Files
	FieldFileName = "file_name"
	FieldFileSize = "file_size"
	FieldKey      = "key"

	// Service
	FieldService = "service"
)
