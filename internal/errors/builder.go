package errors

import (
	"encoding/json"
	"strings"

	"github.com/cockroachdb/errors"
)

// detailsPrefix tags safe details that hold a json object meant for api callers
const detailsPrefix = "__json__:"

// ErrorBuilder chains context onto an error. It is not an error itself; every
// chain ends in Mark so the result always carries a sentinel.
//
//	ierr.NewError("invoice not found").
//		WithHintf("Invoice %s was not found", id).
//		Mark(ierr.ErrNotFound)
type ErrorBuilder struct {
	err error
}

func NewError(msg string) *ErrorBuilder {
	return &ErrorBuilder{err: errors.New(msg)}
}

// WithError starts a chain from an error returned by a driver or client
func WithError(err error) *ErrorBuilder {
	return &ErrorBuilder{err: err}
}

// WithMessage prefixes the internal message. It is logged, never shown to callers.
func (b *ErrorBuilder) WithMessage(msg string) *ErrorBuilder {
	b.err = errors.WithMessage(b.err, msg)
	return b
}

// WithHint sets the message returned to api callers
func (b *ErrorBuilder) WithHint(hint string) *ErrorBuilder {
	b.err = errors.WithHint(b.err, hint)
	return b
}

func (b *ErrorBuilder) WithHintf(format string, args ...any) *ErrorBuilder {
	b.err = errors.WithHintf(b.err, format, args...)
	return b
}

// WithReportableDetails attaches details that survive redaction, such as ids,
// currencies and allowed values. Values must marshal to json; if they don't,
// the details are dropped.
func (b *ErrorBuilder) WithReportableDetails(details map[string]any) *ErrorBuilder {
	marshaled, err := json.Marshal(details)
	if err != nil {
		return b
	}
	b.err = errors.WithSafeDetails(b.err, detailsPrefix+"%s", errors.Safe(string(marshaled)))
	return b
}

// Mark ends the chain
func (b *ErrorBuilder) Mark(reference error) error {
	b.err = errors.Mark(b.err, reference)
	return b.err
}

// Hint returns the innermost non-empty hint of err, or "" if it has none
func Hint(err error) string {
	// GetAllHints is post-order, the innermost hint comes first
	for _, hint := range errors.GetAllHints(err) {
		if hint = strings.TrimSpace(hint); hint != "" {
			return hint
		}
	}
	return ""
}

// ReportableDetails merges every details object attached along the chain, or
// returns nil when there are none
func ReportableDetails(err error) map[string]any {
	details := make(map[string]any)
	for _, sdp := range errors.GetAllSafeDetails(err) {
		for _, payload := range sdp.SafeDetails {
			raw, ok := strings.CutPrefix(payload, detailsPrefix)
			if !ok {
				continue
			}
			var parsed map[string]any
			if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
				continue
			}
			for k, v := range parsed {
				details[k] = v
			}
		}
	}
	if len(details) == 0 {
		return nil
	}
	return details
}
