package httpx

import (
	"strconv"

	"dqx0.com/go/routex/httpx/internal/http1"
)

// Response is what a handler returns. Reason may be left empty, in which
// case the phrase is looked up from StatusCode.
type Response struct {
	StatusCode int
	Reason     string
	Header     Header
	Body       string
}

// DefaultHeaders returns a header map holding only the Content-Length of body.
func DefaultHeaders(body string) Header {
	return Header{"Content-Length": strconv.Itoa(len(body))}
}

// Response200 returns a 200 OK response carrying body and its Content-Length.
func Response200(body string) Response {
	return Response{StatusCode: 200, Header: DefaultHeaders(body), Body: body}
}

// NewResponse is Response200 for any status code.
func NewResponse(code int, body string) Response {
	return Response{StatusCode: code, Header: DefaultHeaders(body), Body: body}
}

// StatusText returns the reason phrase for code. Codes outside the
// recognized set return "Unknown Status".
func StatusText(code int) string {
	return http1.StatusText(code)
}

const (
	notFoundBody      = "The requested resource hasn't been found on this server."
	badRequestBody    = "Received invalid data"
	bodyTooLargeBody  = "Request body too large"
	headTooLargeBody  = "Request header too large"
	internalErrorBody = "Internal Server Error"
)

func notFoundResponse() Response      { return NewResponse(404, notFoundBody) }
func badRequestResponse() Response    { return NewResponse(400, badRequestBody) }
func bodyTooLargeResponse() Response  { return NewResponse(413, bodyTooLargeBody) }
func headTooLargeResponse() Response  { return NewResponse(431, headTooLargeBody) }
func internalErrorResponse() Response { return NewResponse(500, internalErrorBody) }
