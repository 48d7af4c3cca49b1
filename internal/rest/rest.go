// Package rest wires the mirror endpoints onto a gorilla/mux router and
// owns the HTTP server lifecycle.
package rest

import (
	"embed"
	"encoding/json"
	"html/template"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"mirrorapi/domain"
	"mirrorapi/internal/mirror"
)

const Version = "1.0.0"

// mirrorMethods is the full method set accepted by both mirror routes.
var mirrorMethods = []string{
	http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete,
	http.MethodPatch, http.MethodOptions, http.MethodHead,
}

// endpointDescriptions drives /info, /health and the 404 payload.
// Order matters for the 404 listing.
var endpointPaths = []string{"/", "/mirror", "/mirror/detail", "/health", "/info"}

var endpointDescriptions = map[string]string{
	"/":              "API documentation page",
	"/mirror":        "Condensed request mirror",
	"/mirror/detail": "Detailed request mirror",
	"/health":        "Health check",
	"/info":          "API information",
}

//go:embed templates/index.html
var templateFS embed.FS

var docsTemplate = template.Must(template.ParseFS(templateFS, "templates/index.html"))

// RequestHandler serves the mirror API. The server name and port are
// fixed at construction from the listen address and reported in the
// detail-mirror server section.
type RequestHandler struct {
	serverName string
	serverPort int
}

func NewRequestHandler(serverName string, serverPort int) *RequestHandler {
	return &RequestHandler{
		serverName: serverName,
		serverPort: serverPort,
	}
}

// Router builds the route table. Paths match exactly and are
// case-sensitive; a known path with a disallowed method falls through
// to the structured 404 handler, same as an unknown path.
func (rh *RequestHandler) Router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/", rh.HandleDocs).Methods(http.MethodGet)
	r.HandleFunc("/info", rh.HandleInfo).Methods(http.MethodGet)
	r.HandleFunc("/mirror", rh.HandleMirror).Methods(mirrorMethods...)
	r.HandleFunc("/mirror/detail", rh.HandleMirrorDetail).Methods(mirrorMethods...)
	r.HandleFunc("/health", rh.HandleHealth).Methods(http.MethodGet)
	r.NotFoundHandler = http.HandlerFunc(rh.HandleNotFound)
	r.MethodNotAllowedHandler = http.HandlerFunc(rh.HandleNotFound)
	return r
}

// HandleDocs renders the static documentation page. The page only needs
// the current server time; everything else lives in the template.
func (rh *RequestHandler) HandleDocs(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	err := docsTemplate.Execute(w, struct{ Timestamp string }{
		Timestamp: time.Now().Format("2006-01-02 15:04:05"),
	})
	if err != nil {
		log.Println("(mirror-api) Error rendering documentation page:", err)
	}
}

func (rh *RequestHandler) HandleInfo(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, domain.APIInfo{
		API:         "Mirror API",
		Version:     Version,
		Description: "A debugging and testing API that returns the details of any incoming request",
		Timestamp:   isoNow(),
		Endpoints:   endpointDescriptions,
		Message:     "Visit the root path / for the documentation page",
	})
}

// HandleMirror returns the condensed request summary.
func (rh *RequestHandler) HandleMirror(w http.ResponseWriter, r *http.Request) {
	d := mirror.Inspect(r)

	// Only the interesting headers, and only the ones actually sent.
	headers := make(map[string]string)
	for key, name := range map[string]string{
		"content_type":  "Content-Type",
		"user_agent":    "User-Agent",
		"authorization": "Authorization",
		"accept":        "Accept",
		"host":          "Host",
	} {
		if value := d.Headers[name]; value != "" {
			headers[key] = value
		}
	}

	summary := domain.DataSummary{
		HasJSON:        d.IsJSON,
		HasFormData:    len(d.FormData) > 0,
		HasQueryParams: len(d.QueryParams) > 0,
		BodyLength:     d.BodyChars(),
	}
	if sample, ok := d.JSONSample(); ok {
		summary.JSONSample = sample
	}

	writeJSON(w, http.StatusOK, domain.SimpleMirror{
		Status:      "success",
		Timestamp:   isoNow(),
		Endpoint:    "/mirror",
		Description: "Condensed request information",
		Request: domain.SimpleRequest{
			Method:      d.Method,
			URL:         d.URL,
			Path:        d.Path,
			QueryParams: d.QueryParams,
		},
		Headers:     headers,
		DataSummary: summary,
		Client:      domain.SimpleClient{IPAddress: d.ClientIP},
	})
}

// HandleMirrorDetail returns the exhaustive request dump. A body that
// fails to parse as JSON is reported through json_error; the response
// is 200 regardless.
func (rh *RequestHandler) HandleMirrorDetail(w http.ResponseWriter, r *http.Request) {
	d := mirror.Inspect(r)

	resp := domain.DetailMirror{
		Status:      "success",
		Timestamp:   isoNow(),
		Endpoint:    "/mirror/detail",
		Description: "Detailed request information",
		Request: domain.DetailRequest{
			Method:   d.Method,
			URL:      d.URL,
			Path:     d.Path,
			FullPath: d.FullPath,
			BaseURL:  d.BaseURL,
			Host:     d.Host,
			HostURL:  d.HostURL,
		},
		Headers:     d.Headers,
		QueryParams: d.QueryParams,
		FormData:    d.FormData,
		JSONData:    d.JSONOrEmpty(),
		RawBody:     d.RawBody,
		Cookies:     d.Cookies,
		Client: domain.DetailClient{
			IPAddress:  d.ClientIP,
			UserAgent:  d.UserAgent,
			RemotePort: d.RemotePort,
		},
		Server: domain.ServerInfo{
			ServerName:    rh.serverName,
			ServerPort:    rh.serverPort,
			RequestScheme: d.Scheme,
		},
		Statistics: domain.Statistics{
			HeadersCount:     d.HeaderLines,
			QueryParamsCount: len(d.QueryParams),
			FormFieldsCount:  len(d.FormData),
			CookiesCount:     len(d.Cookies),
			BodySizeBytes:    d.BodyBytes,
			BodySizeChars:    d.BodyChars(),
		},
	}

	if d.IsJSON {
		if d.JSONErr != nil {
			resp.JSONError = "Invalid JSON data: " + d.JSONErr.Error()
		} else {
			resp.JSONParsed = &d.JSONValue
		}
	}

	writeJSON(w, http.StatusOK, resp)
}

func (rh *RequestHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, domain.Health{
		Status:    "healthy",
		Message:   "Mirror API is running normally",
		Timestamp: isoNow(),
		Endpoints: map[string]string{
			"mirror_simple": "/mirror - Condensed request mirror",
			"mirror_detail": "/mirror/detail - Detailed request mirror",
			"health":        "/health - Health check",
			"info":          "/info - API information",
			"root":          "/ - API documentation page",
		},
	})
}

// HandleNotFound answers every unmatched path, and every known path hit
// with a method outside its set, with a structured 404.
func (rh *RequestHandler) HandleNotFound(w http.ResponseWriter, r *http.Request) {
	endpoints := make([]domain.Endpoint, 0, len(endpointPaths))
	for _, path := range endpointPaths {
		endpoints = append(endpoints, domain.Endpoint{
			Path:        path,
			Description: endpointDescriptions[path],
		})
	}
	writeJSON(w, http.StatusNotFound, domain.NotFound{
		Status:             "error",
		Error:              "Not found",
		Message:            "The requested endpoint does not exist, please check the URL.",
		Timestamp:          isoNow(),
		AvailableEndpoints: endpoints,
		Suggestion:         "Visit the root path / for the full API documentation",
	})
}

// isoNow formats the current local time the way every JSON payload
// reports it: ISO-8601 with microseconds.
func isoNow() string {
	return time.Now().Format("2006-01-02T15:04:05.000000")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Println("(mirror-api) Error encoding response to JSON:", err)
	}
}
