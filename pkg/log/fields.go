package log

const (
	// Request
	FieldRequestID = "request_id"
	FieldMethod    = "method"
	FieldPath      = "path"
	FieldStatus    = "status"
	FieldLatency   = "latency_ms"
	FieldClientIP  = "client_ip"

	// Watch-party
	FieldRoomID = "room_id"
	FieldConnID = "conn_id"
	FieldHostID = "host_id"

	// Service
	FieldService = "service"
)
