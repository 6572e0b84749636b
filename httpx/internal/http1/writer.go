package http1

import (
	"bufio"
	"fmt"
	"sort"
)

// WriteResponse writes a complete response in the legacy layout this server
// has always produced:
//
//	HTTP/1.1 <status> <reason>\r\n
//	<key>:<value>\n       (one per header, no space, bare LF)
//	\r\n
//	<body>
//
// Clients that tolerate bare LF line endings read it fine; strict parsers may
// not. Headers are written in key order. Invalid header names are dropped and
// control characters are stripped from values. The caller flushes bw.
func WriteResponse(bw *bufio.Writer, status int, reason string, hdr map[string]string, body string) error {
	if reason == "" {
		reason = StatusText(status)
	}
	if _, err := fmt.Fprintf(bw, "HTTP/1.1 %d %s\r\n", status, SanitizeHeaderValue(reason)); err != nil {
		return err
	}
	keys := make([]string, 0, len(hdr))
	for k := range hdr {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		name := SanitizeHeaderKey(k)
		if name == "" {
			continue
		}
		if _, err := fmt.Fprintf(bw, "%s:%s\n", name, SanitizeHeaderValue(hdr[k])); err != nil {
			return err
		}
	}
	if _, err := bw.WriteString("\r\n"); err != nil {
		return err
	}
	if _, err := bw.WriteString(body); err != nil {
		return err
	}
	return nil
}
