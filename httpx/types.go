package httpx

import "strings"

// Header holds request or response headers. Keys are case-sensitive and
// kept exactly as received; one value per key.
type Header map[string]string

func (h Header) Get(key string) string {
	if h == nil {
		return ""
	}
	return h[key]
}

func (h Header) Set(key, value string) {
	if h == nil {
		return
	}
	h[key] = value
}

func (h Header) Del(key string) {
	if h == nil {
		return
	}
	delete(h, key)
}

// Fold looks key up ignoring ASCII case. An exact match is preferred;
// otherwise any case-insensitive match may be returned.
func (h Header) Fold(key string) (string, bool) {
	if h == nil {
		return "", false
	}
	if v, ok := h[key]; ok {
		return v, true
	}
	for k, v := range h {
		if strings.EqualFold(k, key) {
			return v, true
		}
	}
	return "", false
}

// Query holds query parameters, taken verbatim without percent-decoding.
type Query map[string]string

func (q Query) Get(key string) string {
	if q == nil {
		return ""
	}
	return q[key]
}

type Method uint8

const (
	MethodInvalid Method = iota
	MethodGet
	MethodHead
	MethodPost
	MethodPut
	MethodDelete
	MethodConnect
	MethodOptions
	MethodTrace
	MethodPatch
)

var methodNames = [...]string{
	MethodInvalid: "INVALID",
	MethodGet:     "GET",
	MethodHead:    "HEAD",
	MethodPost:    "POST",
	MethodPut:     "PUT",
	MethodDelete:  "DELETE",
	MethodConnect: "CONNECT",
	MethodOptions: "OPTIONS",
	MethodTrace:   "TRACE",
	MethodPatch:   "PATCH",
}

func (m Method) String() string {
	if int(m) < len(methodNames) {
		return methodNames[m]
	}
	return methodNames[MethodInvalid]
}

// ParseMethod matches s exactly against the nine supported method tokens.
// Anything else, including a different case, yields MethodInvalid.
func ParseMethod(s string) Method {
	switch s {
	case "GET":
		return MethodGet
	case "HEAD":
		return MethodHead
	case "POST":
		return MethodPost
	case "PUT":
		return MethodPut
	case "DELETE":
		return MethodDelete
	case "CONNECT":
		return MethodConnect
	case "OPTIONS":
		return MethodOptions
	case "TRACE":
		return MethodTrace
	case "PATCH":
		return MethodPatch
	default:
		return MethodInvalid
	}
}

// Route is the dispatch key: a method plus a normalized path.
type Route struct {
	Method Method
	Path   string
}

func (r Route) String() string {
	return r.Method.String() + " " + r.Path
}
