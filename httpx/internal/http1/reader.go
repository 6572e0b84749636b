package http1

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode/utf8"
)

var (
	ErrMalformed      = errors.New("http1: malformed request")
	ErrHeaderTooLarge = errors.New("http1: header too large")
	ErrBodyTooLarge   = errors.New("http1: body too large")
)

// bodyPrealloc bounds the up-front allocation for a body; larger bodies grow
// as bytes actually arrive.
const bodyPrealloc = 64 << 10

// ParsedRequest is a minimal representation parsed from the wire.
// Method is the raw method token; validating it is up to the caller.
type ParsedRequest struct {
	Method        string
	RequestURI    string
	Proto         string
	Path          string
	Query         map[string]string
	Header        map[string]string
	ContentLength int64
	Body          string
	// BodyInvalid is set when the body bytes were not valid UTF-8 and Body
	// was replaced by the empty string.
	BodyInvalid   bool
}

type Reader struct {
	BR             *bufio.Reader
	// MaxHeaderBytes caps the request line plus header block. Zero disables the cap.
	MaxHeaderBytes int
	// MaxBodyBytes caps Content-Length. Zero disables the cap.
	MaxBodyBytes   int64
	// BeforeBody, if set, runs after the head is parsed and before any body
	// byte is read. The server uses it to swap the read deadline.
	BeforeBody     func()
}

// ReadRequest reads one request. The head is accumulated line by line until
// a line shorter than three bytes ("\r\n", "\n" or end of stream) is seen,
// then exactly Content-Length body bytes are read.
func (r *Reader) ReadRequest() (*ParsedRequest, error) {
	head, err := r.readHead()
	if err != nil {
		return nil, err
	}
	lines := strings.Split(head, "\n")
	if len(lines) < 3 {
		return nil, fmt.Errorf("%w: %d lines", ErrMalformed, len(lines))
	}
	reqLine := strings.Fields(lines[0])
	if len(reqLine) < 3 {
		return nil, fmt.Errorf("%w: request line %q", ErrMalformed, strings.TrimRight(lines[0], "\r"))
	}
	hdr, cl := parseHeaders(lines[1:])
	if r.MaxBodyBytes > 0 && cl > r.MaxBodyBytes {
		return nil, fmt.Errorf("%w: %d > %d", ErrBodyTooLarge, cl, r.MaxBodyBytes)
	}
	if r.BeforeBody != nil {
		r.BeforeBody()
	}
	buf, err := readBody(r.BR, cl)
	if err != nil {
		return nil, fmt.Errorf("http1: reading %d byte body: %w", cl, err)
	}
	pr := &ParsedRequest{
		Method:        reqLine[0],
		RequestURI:    reqLine[1],
		Proto:         reqLine[2],
		Header:        hdr,
		ContentLength: cl,
	}
	if utf8.Valid(buf) {
		pr.Body = string(buf)
	} else {
		pr.BodyInvalid = true
	}
	var rawQuery string
	pr.Path, rawQuery = SplitTarget(pr.RequestURI)
	pr.Path = NormalizePath(pr.Path)
	pr.Query = ParseQuery(rawQuery)
	return pr, nil
}

// readHead checks MaxHeaderBytes after every buffered fragment, so at most
// one bufio buffer past the cap is read from the connection.
func (r *Reader) readHead() (string, error) {
	var sb strings.Builder
	lineLen := 0
	for {
		frag, err := r.BR.ReadSlice('\n')
		sb.Write(frag)
		lineLen += len(frag)
		if r.MaxHeaderBytes > 0 && sb.Len() > r.MaxHeaderBytes {
			return "", ErrHeaderTooLarge
		}
		if err == bufio.ErrBufferFull {
			continue
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", err
		}
		if lineLen < 3 {
			break
		}
		lineLen = 0
	}
	return sb.String(), nil
}

// readBody reads exactly n bytes. Memory grows with the bytes received, not
// with the declared length.
func readBody(rd io.Reader, n int64) ([]byte, error) {
	var b bytes.Buffer
	b.Grow(int(min(n, bodyPrealloc)))
	got, err := io.Copy(&b, io.LimitReader(rd, n))
	if err != nil {
		return nil, err
	}
	if got < n {
		return nil, io.ErrUnexpectedEOF
	}
	return b.Bytes(), nil
}

// parseHeaders splits every line at its first colon. Keys are kept verbatim;
// values are trimmed. Lines without a colon are skipped and later duplicates
// win. A line beginning with "Content-Length" sets the body length; a value
// that is not a non-negative integer counts as zero.
func parseHeaders(lines []string) (map[string]string, int64) {
	h := make(map[string]string)
	var cl int64
	for _, l := range lines {
		k, v, ok := strings.Cut(l, ":")
		if !ok {
			continue
		}
		v = strings.TrimSpace(v)
		h[k] = v
		if strings.HasPrefix(l, "Content-Length") {
			n, err := strconv.ParseInt(v, 10, 64)
			if err != nil || n < 0 {
				n = 0
			}
			cl = n
		}
	}
	return h, cl
}
