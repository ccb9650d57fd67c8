package matchdb

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"golang.org/x/net/html"

	"gematrix/internal/logging"
)

// ErrUnexpectedContent is returned when a source serves something other
// than CSV, typically an HTML sign-in or error page.
var ErrUnexpectedContent = errors.New("unexpected content")

// Source opens the CSV stream. size is the content length in bytes, or 0
// when unknown. The caller closes the returned reader.
type Source interface {
	Open(ctx context.Context) (rc io.ReadCloser, size int64, err error)
	String() string
}

// NewSource picks a Source for location: http(s) URLs fetch over HTTP,
// file:// URLs and plain paths read the local file.
func NewSource(location string) Source {
	switch {
	case strings.HasPrefix(location, "http://"), strings.HasPrefix(location, "https://"):
		return &HTTPSource{URL: location}
	case strings.HasPrefix(location, "file://"):
		return &FileSource{Path: strings.TrimPrefix(location, "file://")}
	default:
		return &FileSource{Path: location}
	}
}

// HTTPSource fetches the CSV with a GET request.
type HTTPSource struct {
	URL    string
	Client *http.Client // http.DefaultClient when nil
}

func (s *HTTPSource) String() string { return s.URL }

// Open issues the request. Non-2xx responses and HTML bodies are errors.
func (s *HTTPSource) Open(ctx context.Context) (io.ReadCloser, int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.URL, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "text/csv,text/plain;q=0.9,*/*;q=0.5")

	client := s.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch %s: %w", s.URL, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		resp.Body.Close()
		return nil, 0, fmt.Errorf("failed to fetch %s: %s", s.URL, resp.Status)
	}

	br := bufio.NewReaderSize(resp.Body, 4096)
	head, _ := br.Peek(512)
	if isHTML(resp.Header.Get("Content-Type"), head) {
		title := pageTitle(io.LimitReader(br, 1<<20))
		resp.Body.Close()
		logging.MatchDBWarn("%s served HTML instead of CSV (title %q)", s.URL, title)
		if title == "" {
			return nil, 0, fmt.Errorf("%w: %s returned an HTML page", ErrUnexpectedContent, s.URL)
		}
		return nil, 0, fmt.Errorf("%w: %s returned an HTML page %q", ErrUnexpectedContent, s.URL, title)
	}

	size := resp.ContentLength
	if size < 0 {
		size = 0
	}
	return struct {
		io.Reader
		io.Closer
	}{br, resp.Body}, size, nil
}

func isHTML(contentType string, head []byte) bool {
	if strings.Contains(contentType, "text/html") || strings.Contains(contentType, "application/xhtml") {
		return true
	}
	trimmed := bytes.ToLower(bytes.TrimSpace(head))
	return bytes.HasPrefix(trimmed, []byte("<!doctype html")) || bytes.HasPrefix(trimmed, []byte("<html"))
}

// pageTitle returns the text of the first <title> element, if any.
func pageTitle(r io.Reader) string {
	doc, err := html.Parse(r)
	if err != nil {
		return ""
	}
	var find func(n *html.Node) string
	find = func(n *html.Node) string {
		if n.Type == html.ElementNode && n.Data == "title" {
			var sb strings.Builder
			for c := n.FirstChild; c != nil; c = c.NextSibling {
				if c.Type == html.TextNode {
					sb.WriteString(c.Data)
				}
			}
			return strings.Join(strings.Fields(sb.String()), " ")
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if t := find(c); t != "" {
				return t
			}
		}
		return ""
	}
	return find(doc)
}

// FileSource reads a local CSV file.
type FileSource struct {
	Path string
}

func (s *FileSource) String() string { return s.Path }

// Open opens the file and reports its size.
func (s *FileSource) Open(ctx context.Context) (io.ReadCloser, int64, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}
	f, err := os.Open(s.Path)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to open %s: %w", s.Path, err)
	}
	fi, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, 0, fmt.Errorf("failed to stat %s: %w", s.Path, err)
	}
	return f, fi.Size(), nil
}
