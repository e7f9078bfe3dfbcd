package endpoint

import (
	"encoding/json"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/unrouted/endpoint/pkg/common"
)

// writeResponse renders a response value onto the transport. Headers are
// copied first, then the body is written according to its shape: byte slices
// and strings are written raw, anything else is serialized as JSON with an
// application/json content type. A 204 response never attempts body
// serialization.
func writeResponse(w http.ResponseWriter, resp *common.Response, logger *zap.Logger) {
	header := w.Header()
	for key, values := range resp.Header {
		header[key] = values
	}

	status := resp.Status
	if status == 0 {
		status = http.StatusOK
	}

	if status == http.StatusNoContent {
		w.WriteHeader(status)
		return
	}
	if resp.Body == nil && header.Get("Content-Type") == "" {
		// An explicit response with no body and no declared content type
		// is written header-only.
		w.WriteHeader(status)
		return
	}

	switch body := resp.Body.(type) {
	case []byte:
		w.WriteHeader(status)
		if _, err := w.Write(body); err != nil {
			logger.Error("Failed to write response", zap.Error(err))
		}
	case string:
		w.WriteHeader(status)
		if _, err := io.WriteString(w, body); err != nil {
			logger.Error("Failed to write response", zap.Error(err))
		}
	default:
		if header.Get("Content-Type") == "" {
			header.Set("Content-Type", "application/json")
		}
		payload, err := json.Marshal(body)
		if err != nil {
			logger.Error("Failed to encode response", zap.Error(err))
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}
		w.WriteHeader(status)
		if _, err := w.Write(payload); err != nil {
			logger.Error("Failed to write response", zap.Error(err))
		}
	}
}
