// Package binding extracts the raw input slots of an invocation from an HTTP
// request: path parameters, query values, and the decoded body. The values it
// produces are unvalidated; the endpoint layer runs them through the
// configured validators before anything downstream sees them.
package binding

import (
	"context"
	"encoding/json"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"
)

// ParamsSource asynchronously supplies the raw (unvalidated) path-parameter
// record for one invocation. It is resolved exactly once, before validation.
// The host router integration provides one; see the endpoint package's
// httprouter adapter.
type ParamsSource func(ctx context.Context) (map[string]any, error)

// StaticParams builds a ParamsSource from an already-extracted record.
func StaticParams(params map[string]any) ParamsSource {
	return func(ctx context.Context) (map[string]any, error) {
		if params == nil {
			return map[string]any{}, nil
		}
		return params, nil
	}
}

// FormDecoder turns an encoded form body into a plain structured value before
// body validation. A custom decoder overrides the default entry-flattening
// decoding for urlencoded and multipart bodies.
type FormDecoder func(r *http.Request) (any, error)

// Query flattens a URL's query string into a record. A key that appears
// exactly once binds its scalar string value; a key that appears more than
// once binds the full []string. This shape is handed to the query validator
// as-is.
func Query(u *url.URL) map[string]any {
	values := u.Query()
	out := make(map[string]any, len(values))
	for key, vals := range values {
		if len(vals) == 1 {
			out[key] = vals[0]
		} else {
			out[key] = vals
		}
	}
	return out
}

// maxMultipartMemory bounds the in-memory portion of multipart parsing.
const maxMultipartMemory = 10 << 20 // 10 MB

// Body decodes the request body into a plain structured value, driven by the
// Content-Type header. Form encodings (urlencoded and multipart) go through
// custom if non-nil, otherwise through the default entry-flattening decoding.
// Anything else is parsed as a JSON document. An empty body decodes to an
// empty record.
func Body(r *http.Request, custom FormDecoder) (any, error) {
	ct := r.Header.Get("Content-Type")
	mediaType := ct
	if ct != "" {
		if parsed, _, err := mime.ParseMediaType(ct); err == nil {
			mediaType = parsed
		}
	}

	if isFormMediaType(mediaType) {
		if custom != nil {
			return custom(r)
		}
		return decodeForm(r, mediaType)
	}
	return decodeJSON(r)
}

// isFormMediaType reports whether the media type is one of the structured
// form encodings.
func isFormMediaType(mediaType string) bool {
	return mediaType == "application/x-www-form-urlencoded" ||
		strings.HasPrefix(mediaType, "multipart/")
}

// decodeForm flattens form entries into a plain record using the same
// scalar-or-list shape as Query.
func decodeForm(r *http.Request, mediaType string) (any, error) {
	if strings.HasPrefix(mediaType, "multipart/") {
		if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
			return nil, err
		}
	} else if err := r.ParseForm(); err != nil {
		return nil, err
	}

	out := make(map[string]any, len(r.PostForm))
	for key, vals := range r.PostForm {
		if len(vals) == 1 {
			out[key] = vals[0]
		} else {
			out[key] = vals
		}
	}
	return out, nil
}

// decodeJSON parses the whole body as a JSON document. The result is the
// generic decoding (map[string]any, []any, string, float64, bool, nil).
func decodeJSON(r *http.Request) (any, error) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, err
	}
	defer r.Body.Close()

	if len(body) == 0 {
		return map[string]any{}, nil
	}

	var data any
	if err := json.Unmarshal(body, &data); err != nil {
		return nil, err
	}
	return data, nil
}
