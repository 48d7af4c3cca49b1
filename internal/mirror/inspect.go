// Package mirror flattens an incoming *http.Request into plain values
// ready for serialization. Nothing here may fail the request: body and
// form parsing degrade to empty values, JSON parsing reports its error
// alongside the rest of the data.
package mirror

import (
	"bytes"
	"encoding/json"
	"io"
	"mime"
	"mime/multipart"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"unicode/utf8"
)

// SampleLimit is the maximum length (in characters) of the stringified
// JSON sample in the condensed mirror response.
const SampleLimit = 100

// RequestDetails holds everything extracted from a single request.
type RequestDetails struct {
	Method   string
	URL      string
	Path     string
	FullPath string
	BaseURL  string
	Host     string
	HostURL  string
	Scheme   string

	QueryParams map[string]string
	FormData    map[string]string
	Headers     map[string]string
	Cookies     map[string]string

	RawBody   string // body decoded as text
	BodyBytes int    // raw byte length before decoding

	ClientIP   string
	RemotePort int
	UserAgent  string

	// HeaderLines counts header lines (repeated headers count once per
	// occurrence), not map entries.
	HeaderLines int

	IsJSON    bool // content type indicates a JSON media type
	JSONOK    bool
	JSONValue any
	JSONErr   error
}

// Inspect reads and restores the request body and extracts every field
// the mirror endpoints report. The request remains usable afterwards.
func Inspect(r *http.Request) *RequestDetails {
	bodyBytes, err := io.ReadAll(r.Body)
	if err != nil {
		bodyBytes = nil
	}
	r.Body = io.NopCloser(bytes.NewReader(bodyBytes))

	headers := make(map[string]string, len(r.Header)+1)
	headerLines := 0
	for name, values := range r.Header {
		headers[ensureValidUTF8(name)] = ensureValidUTF8(strings.Join(values, ", "))
		headerLines += len(values)
	}
	if r.Host != "" {
		headers["Host"] = ensureValidUTF8(r.Host)
		headerLines++
	}

	cookies := make(map[string]string)
	for _, cookie := range r.Cookies() {
		cookies[ensureValidUTF8(cookie.Name)] = ensureValidUTF8(cookie.Value)
	}

	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	base := scheme + "://" + r.Host

	d := &RequestDetails{
		Method:      ensureValidUTF8(r.Method),
		URL:         base + r.URL.RequestURI(),
		Path:        ensureValidUTF8(r.URL.Path),
		FullPath:    ensureValidUTF8(r.URL.Path) + "?" + ensureValidUTF8(r.URL.RawQuery),
		BaseURL:     base + ensureValidUTF8(r.URL.Path),
		Host:        ensureValidUTF8(r.Host),
		HostURL:     base + "/",
		Scheme:      scheme,
		QueryParams: flattenValues(r.URL.Query()),
		FormData:    formValues(r.Header.Get("Content-Type"), bodyBytes),
		Headers:     headers,
		Cookies:     cookies,
		RawBody:     ensureValidUTF8(string(bodyBytes)),
		BodyBytes:   len(bodyBytes),
		UserAgent:   ensureValidUTF8(r.UserAgent()),
		HeaderLines: headerLines,
		IsJSON:      isJSONContentType(r.Header.Get("Content-Type")),
	}

	d.ClientIP, d.RemotePort = splitRemoteAddr(r.RemoteAddr)

	if d.IsJSON {
		var parsed any
		if err := json.Unmarshal(bodyBytes, &parsed); err != nil {
			d.JSONErr = err
		} else {
			d.JSONValue = parsed
			d.JSONOK = true
		}
	}
	return d
}

// BodyChars reports the body length in characters after decoding.
func (d *RequestDetails) BodyChars() int {
	return utf8.RuneCountInString(d.RawBody)
}

// JSONSample stringifies the parsed JSON body, truncated to SampleLimit
// characters with an ellipsis marker. The second return is false when
// there is no sample to report (no JSON, parse failure, or an empty
// value such as {}, [], "", 0, false or null).
func (d *RequestDetails) JSONSample() (string, bool) {
	if !d.JSONOK || !truthy(d.JSONValue) {
		return "", false
	}
	raw, err := json.Marshal(d.JSONValue)
	if err != nil {
		return "", false
	}
	s := string(raw)
	if runes := []rune(s); len(runes) > SampleLimit {
		return string(runes[:SampleLimit]) + "...", true
	}
	return s, true
}

// JSONOrEmpty returns the parsed body, or an empty object when the body
// did not parse or parsed to an empty value.
func (d *RequestDetails) JSONOrEmpty() any {
	if d.JSONOK && truthy(d.JSONValue) {
		return d.JSONValue
	}
	return map[string]any{}
}

// isJSONContentType reports whether the content type names a JSON media
// type (application/json or any +json suffix).
func isJSONContentType(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return mediaType == "application/json" || strings.HasSuffix(mediaType, "+json")
}

// formValues parses urlencoded or multipart form fields from the
// buffered body. Anything unparseable yields an empty map.
func formValues(contentType string, body []byte) map[string]string {
	mediaType, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		return map[string]string{}
	}
	switch mediaType {
	case "application/x-www-form-urlencoded":
		values, err := url.ParseQuery(string(body))
		if err != nil {
			return map[string]string{}
		}
		return flattenValues(values)
	case "multipart/form-data":
		boundary := params["boundary"]
		if boundary == "" {
			return map[string]string{}
		}
		reader := multipart.NewReader(bytes.NewReader(body), boundary)
		form, err := reader.ReadForm(10 << 20)
		if err != nil {
			return map[string]string{}
		}
		defer form.RemoveAll()
		fields := make(map[string]string, len(form.Value))
		for key, values := range form.Value {
			if len(values) > 0 {
				fields[ensureValidUTF8(key)] = ensureValidUTF8(values[0])
			}
		}
		return fields
	}
	return map[string]string{}
}

// flattenValues keeps the first value when a key repeats.
func flattenValues(values url.Values) map[string]string {
	flat := make(map[string]string, len(values))
	for key, list := range values {
		if len(list) > 0 {
			flat[ensureValidUTF8(key)] = ensureValidUTF8(list[0])
		}
	}
	return flat
}

func splitRemoteAddr(remoteAddr string) (ip string, port int) {
	host, portStr, err := net.SplitHostPort(remoteAddr)
	if err != nil {
		return remoteAddr, 0
	}
	port, _ = strconv.Atoi(portStr)
	return host, port
}

// truthy mirrors the emptiness rules of the decoded JSON value space.
func truthy(v any) bool {
	switch value := v.(type) {
	case nil:
		return false
	case bool:
		return value
	case float64:
		return value != 0
	case string:
		return value != ""
	case []any:
		return len(value) > 0
	case map[string]any:
		return len(value) > 0
	}
	return true
}

func ensureValidUTF8(s string) string {
	if !utf8.ValidString(s) {
		return string([]rune(s))
	}
	return s
}
