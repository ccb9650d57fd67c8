package matchdb

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gematrix/internal/config"
)

func TestNewSource(t *testing.T) {
	tests := []struct {
		location string
		want     Source
	}{
		{"https://example.com/db.csv", &HTTPSource{URL: "https://example.com/db.csv"}},
		{"http://localhost:8080/x", &HTTPSource{URL: "http://localhost:8080/x"}},
		{"file:///tmp/db.csv", &FileSource{Path: "/tmp/db.csv"}},
		{"data/db.csv", &FileSource{Path: "data/db.csv"}},
		{config.DefaultMatchDBSource, &HTTPSource{URL: config.DefaultMatchDBSource}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NewSource(tt.location), tt.location)
		assert.NotEmpty(t, NewSource(tt.location).String())
	}
}

func TestHTTPSource_LoadsCSV(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Length", strconv.Itoa(len(sampleCSV)))
		_, _ = w.Write([]byte(sampleCSV))
	}))
	defer srv.Close()

	db := New()
	var got []int
	n, err := db.Load(context.Background(), NewSource(srv.URL), func(p int) { got = append(got, p) })
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, []Entry{{Word: "TEST", Scheme: "Ordinal"}}, db.Lookup(74))
	assert.Equal(t, 50, got[0], "known length reaches 50 after one read")
	assert.Equal(t, 100, got[len(got)-1])
}

func TestHTTPSource_InflatedContentLength(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hj, ok := w.(http.Hijacker)
		if !assert.True(t, ok) {
			return
		}
		conn, rw, err := hj.Hijack()
		if !assert.NoError(t, err) {
			return
		}
		defer conn.Close()
		fmt.Fprintf(rw, "HTTP/1.1 200 OK\r\nContent-Type: text/csv\r\nContent-Length: %d\r\n\r\n%s", int64(1)<<50, sampleCSV)
		_ = rw.Flush()
	}))
	defer srv.Close()

	db := New()
	prior := writeCSV(t, t.TempDir(), "prior.csv", "Word,Ordinal\nPRIOR,33\n")
	_, err := db.Load(context.Background(), prior, nil)
	require.NoError(t, err)

	require.NotPanics(t, func() {
		_, err = db.Load(context.Background(), NewSource(srv.URL), nil)
	})
	require.Error(t, err, "body ends long before the declared length")
	assert.Equal(t, []Entry{{Word: "PRIOR", Scheme: "Ordinal"}}, db.Lookup(33))
}

func TestHTTPSource_StatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer srv.Close()

	_, _, err := (&HTTPSource{URL: srv.URL}).Open(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
}

func TestHTTPSource_HTMLPage(t *testing.T) {
	tests := []struct {
		name        string
		contentType string
		body        string
		title       string
	}{
		{
			name:        "content type",
			contentType: "text/html; charset=utf-8",
			body:        "<html><head><title>Sign in -\n Google Accounts</title></head><body>x</body></html>",
			title:       "Sign in - Google Accounts",
		},
		{
			name:        "sniffed doctype",
			contentType: "text/plain",
			body:        "\n  <!DOCTYPE html><html><head><title>Error 403</title></head></html>",
			title:       "Error 403",
		},
		{
			name:        "no title",
			contentType: "text/html",
			body:        "<html><body>nothing here</body></html>",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", tt.contentType)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			db := New()
			_, err := db.Load(context.Background(), &HTTPSource{URL: srv.URL, Client: srv.Client()}, nil)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrUnexpectedContent))
			if tt.title != "" {
				assert.Contains(t, err.Error(), strconv.Quote(tt.title))
			}
			assert.False(t, db.IsLoaded())
		})
	}
}

func TestHTTPSource_CanceledContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(sampleCSV))
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, _, err := (&HTTPSource{URL: srv.URL}).Open(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFileSource(t *testing.T) {
	src := writeCSV(t, t.TempDir(), "db.csv", sampleCSV)
	rc, size, err := src.Open(context.Background())
	require.NoError(t, err)
	defer rc.Close()
	assert.Equal(t, int64(len(sampleCSV)), size)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, _, err = src.Open(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
