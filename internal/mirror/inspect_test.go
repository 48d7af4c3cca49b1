package mirror

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestInspectQueryParams(t *testing.T) {
	r := httptest.NewRequest("GET", "http://example.com/mirror?test=hello&multi=a&multi=b", nil)
	d := Inspect(r)

	if d.QueryParams["test"] != "hello" {
		t.Errorf("expected query param test=hello, got %q", d.QueryParams["test"])
	}
	if d.QueryParams["multi"] != "a" {
		t.Errorf("expected first value for repeated key, got %q", d.QueryParams["multi"])
	}
	if len(d.QueryParams) != 2 {
		t.Errorf("expected 2 query params, got %d", len(d.QueryParams))
	}
}

func TestInspectURLVariants(t *testing.T) {
	r := httptest.NewRequest("GET", "http://example.com/mirror/detail?x=1", nil)
	d := Inspect(r)

	if d.URL != "http://example.com/mirror/detail?x=1" {
		t.Errorf("unexpected url: %q", d.URL)
	}
	if d.FullPath != "/mirror/detail?x=1" {
		t.Errorf("unexpected full path: %q", d.FullPath)
	}
	if d.BaseURL != "http://example.com/mirror/detail" {
		t.Errorf("unexpected base url: %q", d.BaseURL)
	}
	if d.HostURL != "http://example.com/" {
		t.Errorf("unexpected host url: %q", d.HostURL)
	}
	if d.Host != "example.com" {
		t.Errorf("unexpected host: %q", d.Host)
	}
	if d.Scheme != "http" {
		t.Errorf("unexpected scheme: %q", d.Scheme)
	}
}

func TestInspectFullPathWithoutQuery(t *testing.T) {
	r := httptest.NewRequest("GET", "http://example.com/mirror/detail", nil)
	d := Inspect(r)

	// The question mark is always present, query or not.
	if d.FullPath != "/mirror/detail?" {
		t.Errorf("unexpected full path: %q", d.FullPath)
	}
}

func TestInspectHeaders(t *testing.T) {
	r := httptest.NewRequest("GET", "http://example.com/mirror", nil)
	r.Header.Set("Accept", "application/json")
	r.Header.Add("X-Tag", "one")
	r.Header.Add("X-Tag", "two")
	d := Inspect(r)

	if d.Headers["Accept"] != "application/json" {
		t.Errorf("unexpected accept header: %q", d.Headers["Accept"])
	}
	if d.Headers["X-Tag"] != "one, two" {
		t.Errorf("repeated header values should join with comma, got %q", d.Headers["X-Tag"])
	}
	if d.Headers["Host"] != "example.com" {
		t.Errorf("host should appear in the header map, got %q", d.Headers["Host"])
	}
	// Accept + two X-Tag lines + Host.
	if d.HeaderLines != 4 {
		t.Errorf("expected 4 header lines, got %d", d.HeaderLines)
	}
}

func TestInspectCookies(t *testing.T) {
	r := httptest.NewRequest("GET", "http://example.com/mirror", nil)
	r.Header.Set("Cookie", "session=abc123; theme=dark")
	d := Inspect(r)

	if d.Cookies["session"] != "abc123" || d.Cookies["theme"] != "dark" {
		t.Errorf("unexpected cookies: %v", d.Cookies)
	}
}

func TestInspectBodyRestored(t *testing.T) {
	body := "hello body"
	r := httptest.NewRequest("POST", "http://example.com/mirror", strings.NewReader(body))
	d := Inspect(r)

	if d.RawBody != body {
		t.Errorf("unexpected raw body: %q", d.RawBody)
	}
	rest, err := io.ReadAll(r.Body)
	if err != nil {
		t.Fatalf("reading restored body: %v", err)
	}
	if string(rest) != body {
		t.Errorf("body not restored, got %q", string(rest))
	}
}

func TestInspectFormURLEncoded(t *testing.T) {
	r := httptest.NewRequest("POST", "http://example.com/mirror", strings.NewReader("name=test&value=42"))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	d := Inspect(r)

	if d.FormData["name"] != "test" || d.FormData["value"] != "42" {
		t.Errorf("unexpected form data: %v", d.FormData)
	}
	if d.RawBody != "name=test&value=42" {
		t.Errorf("form parsing must not consume the raw body, got %q", d.RawBody)
	}
}

func TestInspectMultipartForm(t *testing.T) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if err := w.WriteField("field", "content"); err != nil {
		t.Fatalf("writing multipart field: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("closing multipart writer: %v", err)
	}

	r := httptest.NewRequest("POST", "http://example.com/mirror", &buf)
	r.Header.Set("Content-Type", w.FormDataContentType())
	d := Inspect(r)

	if d.FormData["field"] != "content" {
		t.Errorf("unexpected multipart form data: %v", d.FormData)
	}
}

func TestInspectJSONBody(t *testing.T) {
	r := httptest.NewRequest("POST", "http://example.com/mirror", strings.NewReader(`{"name":"test"}`))
	r.Header.Set("Content-Type", "application/json")
	d := Inspect(r)

	if !d.IsJSON || !d.JSONOK {
		t.Fatalf("expected a parsed JSON body, IsJSON=%v JSONOK=%v", d.IsJSON, d.JSONOK)
	}
	obj, ok := d.JSONValue.(map[string]any)
	if !ok || obj["name"] != "test" {
		t.Errorf("unexpected parsed value: %v", d.JSONValue)
	}
}

func TestInspectMalformedJSON(t *testing.T) {
	r := httptest.NewRequest("POST", "http://example.com/mirror", strings.NewReader(`{"broken":`))
	r.Header.Set("Content-Type", "application/json")
	d := Inspect(r)

	if !d.IsJSON {
		t.Fatal("content type should indicate JSON")
	}
	if d.JSONOK || d.JSONErr == nil {
		t.Errorf("expected a parse error, JSONOK=%v err=%v", d.JSONOK, d.JSONErr)
	}
}

func TestInspectJSONWithoutContentType(t *testing.T) {
	r := httptest.NewRequest("POST", "http://example.com/mirror", strings.NewReader(`{"name":"test"}`))
	d := Inspect(r)

	if d.IsJSON {
		t.Error("body without a JSON content type must not count as JSON")
	}
	if d.JSONOK || d.JSONErr != nil {
		t.Error("no parse should be attempted without a JSON content type")
	}
}

func TestIsJSONContentType(t *testing.T) {
	cases := []struct {
		contentType string
		want        bool
	}{
		{"application/json", true},
		{"application/json; charset=utf-8", true},
		{"application/ld+json", true},
		{"application/x-www-form-urlencoded", false},
		{"text/plain", false},
		{"", false},
	}
	for _, tc := range cases {
		if got := isJSONContentType(tc.contentType); got != tc.want {
			t.Errorf("isJSONContentType(%q) = %v, want %v", tc.contentType, got, tc.want)
		}
	}
}

func TestJSONSampleVerbatim(t *testing.T) {
	r := httptest.NewRequest("POST", "http://example.com/mirror", strings.NewReader(`{"a":1}`))
	r.Header.Set("Content-Type", "application/json")
	d := Inspect(r)

	sample, ok := d.JSONSample()
	if !ok {
		t.Fatal("expected a sample")
	}
	if sample != `{"a":1}` {
		t.Errorf("short sample should be verbatim, got %q", sample)
	}
}

func TestJSONSampleTruncated(t *testing.T) {
	body := `{"data":"` + strings.Repeat("x", 150) + `"}`
	r := httptest.NewRequest("POST", "http://example.com/mirror", strings.NewReader(body))
	r.Header.Set("Content-Type", "application/json")
	d := Inspect(r)

	sample, ok := d.JSONSample()
	if !ok {
		t.Fatal("expected a sample")
	}

	full, err := json.Marshal(d.JSONValue)
	if err != nil {
		t.Fatal(err)
	}
	want := string([]rune(string(full))[:SampleLimit]) + "..."
	if sample != want {
		t.Errorf("truncated sample mismatch:\n got %q\nwant %q", sample, want)
	}
}

func TestJSONSampleEmptyValues(t *testing.T) {
	for _, body := range []string{`{}`, `[]`, `""`, `0`, `false`, `null`} {
		r := httptest.NewRequest("POST", "http://example.com/mirror", strings.NewReader(body))
		r.Header.Set("Content-Type", "application/json")
		d := Inspect(r)

		if _, ok := d.JSONSample(); ok {
			t.Errorf("empty value %s should produce no sample", body)
		}
	}
}

func TestJSONOrEmpty(t *testing.T) {
	r := httptest.NewRequest("POST", "http://example.com/mirror", strings.NewReader("not json"))
	r.Header.Set("Content-Type", "text/plain")
	d := Inspect(r)

	obj, ok := d.JSONOrEmpty().(map[string]any)
	if !ok || len(obj) != 0 {
		t.Errorf("expected an empty object, got %v", d.JSONOrEmpty())
	}
}

func TestBodyChars(t *testing.T) {
	// 2 runes, 3 bytes.
	r := httptest.NewRequest("POST", "http://example.com/mirror", strings.NewReader("дa"))
	d := Inspect(r)

	if d.BodyChars() != 2 {
		t.Errorf("expected 2 characters, got %d", d.BodyChars())
	}
	if d.BodyBytes != 3 {
		t.Errorf("expected 3 bytes, got %d", d.BodyBytes)
	}
}

func TestInspectRemoteAddr(t *testing.T) {
	r := httptest.NewRequest("GET", "http://example.com/mirror", nil)
	r.RemoteAddr = "10.1.2.3:54321"
	d := Inspect(r)

	if d.ClientIP != "10.1.2.3" {
		t.Errorf("unexpected client ip: %q", d.ClientIP)
	}
	if d.RemotePort != 54321 {
		t.Errorf("unexpected remote port: %d", d.RemotePort)
	}
}

func TestEnsureValidUTF8(t *testing.T) {
	valid := "hello"
	if got := ensureValidUTF8(valid); got != valid {
		t.Errorf("valid string must pass through, got %q", got)
	}
	invalid := string([]byte{0xff, 'a', 0xfe})
	got := ensureValidUTF8(invalid)
	if got == invalid {
		t.Error("invalid bytes should be replaced")
	}
	if !strings.Contains(got, "a") {
		t.Errorf("valid characters should survive, got %q", got)
	}
}
