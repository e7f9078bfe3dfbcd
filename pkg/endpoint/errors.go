package endpoint

import (
	"github.com/unrouted/endpoint/pkg/common"
	"github.com/unrouted/endpoint/pkg/schema"
)

// Stage messages identifying which input slot failed validation. These exact
// strings appear as the "message" field of a 400 response payload.
const (
	MsgInvalidParams   = "Invalid params"
	MsgInvalidQuery    = "Invalid query"
	MsgInvalidBody     = "Invalid body"
	MsgInvalidMetadata = "Invalid metadata"
)

// msgInternalError is the opaque message returned for untranslated failures.
// It deliberately omits the underlying error to avoid leaking internals.
const msgInternalError = "Internal server error"

// ValidationError is the failure produced when a validation stage rejects
// its input slot. It always surfaces as a 400 response carrying the stage
// message and the validator's issue list, and is never passed to a custom
// error translator.
type ValidationError struct {
	// Stage is the fixed message for the failing slot, e.g. "Invalid params".
	Stage string

	// Issues is the validator's structured failure list.
	Issues schema.Issues
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if len(e.Issues) == 0 {
		return e.Stage
	}
	return e.Stage + ": " + e.Issues.Error()
}

// ErrorTranslator converts a failure raised by middleware or the handler
// into a response. A non-nil return value is used verbatim; returning nil
// declines the failure and falls back to the opaque 500 response.
// Validation failures bypass the translator.
type ErrorTranslator func(err error) *common.Response

// errorPayload is the body shape of framework-produced error responses.
type errorPayload struct {
	Message string        `json:"message"`
	Errors  schema.Issues `json:"errors,omitempty"`
}
