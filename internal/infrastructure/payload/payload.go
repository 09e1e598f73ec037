package payload

import (
	"bytes"
	"compress/gzip"
	"encoding/json"
	"errors"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
)

// ErrTooLarge is returned when a body exceeds the capture limit.
var ErrTooLarge = errors.New("body exceeds capture limit")

const multipartMemory = 1 << 20

// Read buffers up to maxSize bytes of the request body and restores r.Body so
// downstream handlers still see the full, unmodified stream. The returned
// error is ErrTooLarge when more than maxSize bytes were available.
func Read(r *http.Request, maxSize int) ([]byte, error) {
	if r.Body == nil || r.Body == http.NoBody {
		return nil, nil
	}

	buf, err := io.ReadAll(io.LimitReader(r.Body, int64(maxSize)+1))
	r.Body = &replayBody{Reader: io.MultiReader(bytes.NewReader(buf), r.Body), closer: r.Body}
	if err != nil {
		return nil, err
	}
	if len(buf) > maxSize {
		return nil, ErrTooLarge
	}
	return buf, nil
}

type replayBody struct {
	io.Reader
	closer io.Closer
}

func (b *replayBody) Close() error { return b.closer.Close() }

// IsJSON reports whether contentType declares a JSON document
// (application/json or application/*+json).
func IsJSON(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	if mediaType == "application/json" {
		return true
	}
	return strings.HasPrefix(mediaType, "application/") && strings.HasSuffix(mediaType, "+json")
}

// ParseJSON decodes body into a generic value. ok is false for an empty or
// malformed document.
func ParseJSON(body []byte) (value any, ok bool) {
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, false
	}
	if err := json.Unmarshal(body, &value); err != nil {
		return nil, false
	}
	return value, true
}

// ParseForm extracts form fields from a url-encoded or multipart body, keeping
// the first value of each field. It never returns nil.
func ParseForm(contentType string, body []byte) map[string]string {
	fields := make(map[string]string)
	if len(body) == 0 {
		return fields
	}

	mediaType, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		return fields
	}

	var values map[string][]string
	switch {
	case mediaType == "application/x-www-form-urlencoded":
		parsed, err := url.ParseQuery(string(body))
		if err != nil && len(parsed) == 0 {
			return fields
		}
		values = parsed
	case strings.HasPrefix(mediaType, "multipart/") && params["boundary"] != "":
		form, err := multipart.NewReader(bytes.NewReader(body), params["boundary"]).ReadForm(multipartMemory)
		if err != nil {
			return fields
		}
		defer form.RemoveAll()
		values = form.Value
	default:
		return fields
	}

	for key, vals := range values {
		if len(vals) > 0 {
			fields[key] = vals[0]
		}
	}
	return fields
}

// Inflate decompresses a gzip body. ok is false when body is not valid gzip.
func Inflate(body []byte, maxSize int) (out []byte, ok bool) {
	if len(body) < 2 || body[0] != 0x1f || body[1] != 0x8b {
		return nil, false
	}
	reader, err := gzip.NewReader(bytes.NewReader(body))
	if err != nil {
		return nil, false
	}
	defer reader.Close()

	out, err = io.ReadAll(io.LimitReader(reader, int64(maxSize)+1))
	if err != nil || len(out) > maxSize {
		return nil, false
	}
	return out, true
}

// Extract builds the captured representation of the request body: the
// decoded document when the request declares JSON (nil when it does not
// parse) and the form fields otherwise. It never fails.
func Extract(r *http.Request, maxSize int) any {
	contentType := r.Header.Get("Content-Type")
	body, err := Read(r, maxSize)

	if IsJSON(contentType) {
		if err != nil {
			return nil
		}
		if strings.EqualFold(r.Header.Get("Content-Encoding"), "gzip") {
			inflated, ok := Inflate(body, maxSize)
			if !ok {
				return nil
			}
			body = inflated
		}
		value, ok := ParseJSON(body)
		if !ok {
			return nil
		}
		return value
	}

	if err != nil {
		return map[string]string{}
	}
	return ParseForm(contentType, body)
}

// Headers flattens h into a single-valued map, joining repeated values with
// ", ". host is recorded under "Host" when non-empty.
func Headers(h http.Header, host string) map[string]string {
	out := make(map[string]string, len(h)+1)
	for key, values := range h {
		out[key] = strings.Join(values, ", ")
	}
	if host != "" {
		out["Host"] = host
	}
	return out
}
