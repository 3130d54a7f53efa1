package log

// Common field names for structured logging
const (
	FieldComponent   = "component"
	FieldRequestID   = "request_id"
	FieldClientIP    = "client_ip"
	FieldMethod      = "method"
	FieldPath        = "path"
	FieldQuery       = "query"
	FieldStatusCode  = "status_code"
	FieldDuration    = "duration_ms"
	FieldUserAgent   = "user_agent"
	FieldSuccess     = "success"
	FieldError       = "error"
	FieldOperation   = "operation"
	FieldRecordKind  = "record_kind"
	FieldRecordID    = "record_id"
	FieldMonth       = "month"
	FieldAmountCents = "amount_cents"
)

// Components defines standard component names
const (
	ComponentApp     = "app"
	ComponentHTTP    = "http"
	ComponentLedger  = "ledger"
	ComponentStorage = "storage"
	ComponentAMQP    = "amqp"
	ComponentWorker  = "worker"
	ComponentSheets  = "sheets"
	ComponentBackend = "backend"
	ComponentCLI     = "cli"
)

// Fields provides a builder for structured log fields. Keys keep their
// insertion order.
type Fields struct {
	args []any
}

func NewFields() *Fields {
	return &Fields{}
}

func (f *Fields) add(key string, value any) *Fields {
	f.args = append(f.args, key, value)
	return f
}

func (f *Fields) WithComponent(component string) *Fields {
	return f.add(FieldComponent, component)
}

func (f *Fields) WithRequestID(requestID string) *Fields {
	return f.add(FieldRequestID, requestID)
}

func (f *Fields) WithClientIP(ip string) *Fields {
	return f.add(FieldClientIP, ip)
}

// WithError adds the error message; a nil error adds nothing.
func (f *Fields) WithError(err error) *Fields {
	if err == nil {
		return f
	}
	return f.add(FieldError, err.Error())
}

func (f *Fields) WithOperation(op string) *Fields {
	return f.add(FieldOperation, op)
}

// WithRecord adds the kind and id of the record an operation touched.
func (f *Fields) WithRecord(kind, id string) *Fields {
	f.add(FieldRecordKind, kind)
	if id != "" {
		f.add(FieldRecordID, id)
	}
	return f
}

func (f *Fields) WithHTTPRequest(method, path, query, userAgent string) *Fields {
	return f.add(FieldMethod, method).
		add(FieldPath, path).
		add(FieldQuery, query).
		add(FieldUserAgent, userAgent)
}

func (f *Fields) WithHTTPResponse(statusCode int, durationMs int64) *Fields {
	return f.add(FieldStatusCode, statusCode).
		add(FieldDuration, durationMs).
		add(FieldSuccess, statusCode < 400)
}

// Args returns the key/value pairs for slog.
func (f *Fields) Args() []any {
	return f.args
}
