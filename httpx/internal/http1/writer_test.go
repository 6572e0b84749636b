package http1

import (
	"bufio"
	"bytes"
	"testing"
)

func writeResp(t *testing.T, status int, reason string, hdr map[string]string, body string) string {
	t.Helper()
	var buf bytes.Buffer
	bw := bufio.NewWriter(&buf)
	if err := WriteResponse(bw, status, reason, hdr, body); err != nil {
		t.Fatalf("WriteResponse: %v", err)
	}
	if err := bw.Flush(); err != nil {
		t.Fatalf("flush: %v", err)
	}
	return buf.String()
}

func TestWriteResponse_Layout(t *testing.T) {
	got := writeResp(t, 200, "", map[string]string{"Content-Length": "2", "A": "b"}, "hi")
	want := "HTTP/1.1 200 OK\r\nA:b\nContent-Length:2\n\r\nhi"
	if got != want {
		t.Fatalf("got %q\nwant %q", got, want)
	}
}

func TestWriteResponse_NoHeaders(t *testing.T) {
	got := writeResp(t, 204, "", nil, "")
	if got != "HTTP/1.1 204 No Content\r\n\r\n" {
		t.Fatalf("got %q", got)
	}
}

func TestWriteResponse_SanitizesHeaders(t *testing.T) {
	hdr := map[string]string{"Bad Key": "x", "X-Split": "a\r\nInjected: 1"}
	got := writeResp(t, 200, "Custom", hdr, "")
	want := "HTTP/1.1 200 Custom\r\nX-Split:aInjected: 1\n\r\n"
	if got != want {
		t.Fatalf("got %q\nwant %q", got, want)
	}
}

func TestStatusText(t *testing.T) {
	cases := map[int]string{
		200: "OK",
		304: "Not Modified",
		404: "Not Found",
		418: "I'm a teapot",
		429: "Too Many Requests",
		511: "Network Authentication Required",
		299: UnknownStatusText,
	}
	for code, want := range cases {
		if got := StatusText(code); got != want {
			t.Errorf("StatusText(%d) = %q, want %q", code, got, want)
		}
	}
	recognized := []int{100, 101, 103, 200, 201, 202, 203, 204, 205, 206, 300, 301, 302, 303, 304, 307, 308,
		400, 401, 402, 403, 404, 405, 406, 407, 408, 409, 410, 411, 412, 413, 414, 415, 416, 417, 418, 422,
		425, 426, 428, 429, 431, 451, 500, 501, 502, 503, 504, 505, 506, 507, 508, 510, 511}
	for _, c := range recognized {
		if !KnownStatus(c) {
			t.Errorf("status %d not recognized", c)
		}
	}
	if len(statusText) != len(recognized) {
		t.Fatalf("table has %d entries, want %d", len(statusText), len(recognized))
	}
}
