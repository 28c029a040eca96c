package models

// Status classifies the outcome of an upsert or commit operation.
type Status string

const (
	StatusOK            Status = "ok"
	StatusInvalid       Status = "invalid"
	StatusStorageFailed Status = "storage_error"
)

// Result is the structured outcome every public operation returns in place
// of a raised error: a human-readable message plus a status classification.
type Result struct {
	Message string `json:"message"`
	Status  Status `json:"status"`
}

// OK reports whether the operation succeeded.
func (r Result) OK() bool { return r.Status == StatusOK }

// OKResult builds a success result.
func OKResult(message string) Result {
	return Result{Message: message, Status: StatusOK}
}

// InvalidResult builds a validation-failure result (400-equivalent).
func InvalidResult(message string) Result {
	return Result{Message: message, Status: StatusInvalid}
}

// StorageResult builds a storage-failure result (500-equivalent).
func StorageResult(message string) Result {
	return Result{Message: message, Status: StatusStorageFailed}
}

// HTTPStatus maps the result status onto the equivalent HTTP status code.
func (r Result) HTTPStatus() int {
	switch r.Status {
	case StatusInvalid:
		return 400
	case StatusStorageFailed:
		return 500
	default:
		return 200
	}
}
