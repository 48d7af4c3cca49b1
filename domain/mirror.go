package domain

// SimpleMirror is the condensed echo of a request returned by /mirror.
type SimpleMirror struct {
	Status      string            `json:"status"`
	Timestamp   string            `json:"timestamp"`
	Endpoint    string            `json:"endpoint"`
	Description string            `json:"description"`
	Request     SimpleRequest     `json:"request"`
	Headers     map[string]string `json:"headers"`
	DataSummary DataSummary       `json:"data_summary"`
	Client      SimpleClient      `json:"client"`
}

type SimpleRequest struct {
	Method      string            `json:"method"`
	URL         string            `json:"url"`
	Path        string            `json:"path"`
	QueryParams map[string]string `json:"query_params"`
}

// DataSummary describes the request body without dumping it.
// JSONSample is only set when the body parsed as JSON.
type DataSummary struct {
	HasJSON        bool   `json:"has_json"`
	HasFormData    bool   `json:"has_form_data"`
	HasQueryParams bool   `json:"has_query_params"`
	BodyLength     int    `json:"body_length"`
	JSONSample     string `json:"json_sample,omitempty"`
}

type SimpleClient struct {
	IPAddress string `json:"ip_address"`
}

// DetailMirror is the exhaustive echo returned by /mirror/detail.
// JSONParsed is a pointer so that a parsed null or false still shows up
// in the response; the key is absent only for non-JSON requests.
type DetailMirror struct {
	Status      string            `json:"status"`
	Timestamp   string            `json:"timestamp"`
	Endpoint    string            `json:"endpoint"`
	Description string            `json:"description"`
	Request     DetailRequest     `json:"request"`
	Headers     map[string]string `json:"headers"`
	QueryParams map[string]string `json:"query_params"`
	FormData    map[string]string `json:"form_data"`
	JSONData    any               `json:"json_data"`
	RawBody     string            `json:"raw_body"`
	Cookies     map[string]string `json:"cookies"`
	Client      DetailClient      `json:"client"`
	Server      ServerInfo        `json:"server"`
	Statistics  Statistics        `json:"statistics"`
	JSONParsed  *any              `json:"json_parsed,omitempty"`
	JSONError   string            `json:"json_error,omitempty"`
}

type DetailRequest struct {
	Method   string `json:"method"`
	URL      string `json:"url"`
	Path     string `json:"path"`
	FullPath string `json:"full_path"`
	BaseURL  string `json:"base_url"`
	Host     string `json:"host"`
	HostURL  string `json:"host_url"`
}

type DetailClient struct {
	IPAddress  string `json:"ip_address"`
	UserAgent  string `json:"user_agent"`
	RemotePort int    `json:"remote_port"`
}

type ServerInfo struct {
	ServerName    string `json:"server_name"`
	ServerPort    int    `json:"server_port"`
	RequestScheme string `json:"request_scheme"`
}

type Statistics struct {
	HeadersCount     int `json:"headers_count"`
	QueryParamsCount int `json:"query_params_count"`
	FormFieldsCount  int `json:"form_fields_count"`
	CookiesCount     int `json:"cookies_count"`
	BodySizeBytes    int `json:"body_size_bytes"`
	BodySizeChars    int `json:"body_size_chars"`
}

// APIInfo is the static descriptor served by /info.
type APIInfo struct {
	API         string            `json:"api"`
	Version     string            `json:"version"`
	Description string            `json:"description"`
	Timestamp   string            `json:"timestamp"`
	Endpoints   map[string]string `json:"endpoints"`
	Message     string            `json:"message"`
}

type Health struct {
	Status    string            `json:"status"`
	Message   string            `json:"message"`
	Timestamp string            `json:"timestamp"`
	Endpoints map[string]string `json:"endpoints"`
}

type Endpoint struct {
	Path        string `json:"path"`
	Description string `json:"description"`
}

type NotFound struct {
	Status             string     `json:"status"`
	Error              string     `json:"error"`
	Message            string     `json:"message"`
	Timestamp          string     `json:"timestamp"`
	AvailableEndpoints []Endpoint `json:"available_endpoints"`
	Suggestion         string     `json:"suggestion"`
}
