package errors

// ErrorResponse is the body returned by the api for any failed request
type ErrorResponse struct {
	Success bool        `json:"success"`
	Error   ErrorDetail `json:"error"`
}

// ErrorDetail carries the hint shown to the caller and any safe details
type ErrorDetail struct {
	Code    string         `json:"code,omitempty"`
	Display string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

// CodeFromErr returns the machine-readable code of the first sentinel err is marked with
func CodeFromErr(err error) string {
	for e := range statusCodeMap {
		if Is(err, e) {
			return e.(*InternalError).Code
		}
	}
	return ErrCodeSystemError
}
