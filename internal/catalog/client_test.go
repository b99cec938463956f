package catalog

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

type roundTripperFunc func(req *http.Request) (*http.Response, error)

func (f roundTripperFunc) RoundTrip(req *http.Request) (*http.Response, error) { return f(req) }

func newTestClient(t *testing.T, opts Options, rt roundTripperFunc) *Client {
	t.Helper()
	if opts.BaseURL == "" {
		opts.BaseURL = "http://catalog"
	}
	opts.HTTPClient = &http.Client{Transport: rt}
	c, err := New(opts)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c
}

func respond(status int, contentType string, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Header:     http.Header{"Content-Type": []string{contentType}},
		Body:       io.NopCloser(strings.NewReader(body)),
	}
}

func TestNewRequiresBaseURL(t *testing.T) {
	if _, err := New(Options{BaseURL: "  "}); err == nil {
		t.Fatalf("expected error for empty base url")
	}
}

func TestGetArtwork(t *testing.T) {
	var calls int32
	c := newTestClient(t, Options{BaseURL: "http://catalog/"}, func(req *http.Request) (*http.Response, error) {
		atomic.AddInt32(&calls, 1)
		if req.Method != http.MethodGet {
			t.Fatalf("method=%s", req.Method)
		}
		if req.URL.Path != "/api/artworks/a" {
			t.Fatalf("unexpected path: %s", req.URL.Path)
		}
		return respond(http.StatusOK, "application/json",
			`{"id":"a","title":"Sunset","artist":"R. Hale","price":100.00,"description":"Oil on canvas"}`), nil
	})

	rec, err := c.GetArtwork(context.Background(), "a")
	if err != nil {
		t.Fatalf("GetArtwork: %v", err)
	}
	if rec.Title != "Sunset" || rec.Artist != "R. Hale" {
		t.Fatalf("unexpected record: %+v", rec)
	}
	if !rec.Price.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("price=%s", rec.Price)
	}
	if n := atomic.LoadInt32(&calls); n != 1 {
		t.Fatalf("calls=%d", n)
	}
}

func TestGetArtworkEscapesID(t *testing.T) {
	c := newTestClient(t, Options{}, func(req *http.Request) (*http.Response, error) {
		if got := req.URL.EscapedPath(); got != "/api/artworks/a%2Fb" {
			t.Fatalf("escaped path=%s", got)
		}
		return respond(http.StatusOK, "application/json", `{"title":"x","price":1}`), nil
	})
	rec, err := c.GetArtwork(context.Background(), "a/b")
	if err != nil {
		t.Fatalf("GetArtwork: %v", err)
	}
	if rec.ID != "a/b" {
		t.Fatalf("id should default to requested id, got %q", rec.ID)
	}
}

func TestGetArtworkBlankIDIssuesNoRequest(t *testing.T) {
	c := newTestClient(t, Options{}, func(req *http.Request) (*http.Response, error) {
		t.Fatalf("no request expected")
		return nil, nil
	})
	_, err := c.GetArtwork(context.Background(), " ")
	if !errors.Is(err, ErrInvalidID) {
		t.Fatalf("want ErrInvalidID, got %v", err)
	}
	if Classify(err) != ReasonInvalidID {
		t.Fatalf("reason=%s", Classify(err))
	}
}

func TestGetArtworkFailureTaxonomy(t *testing.T) {
	cases := []struct {
		name   string
		rt     roundTripperFunc
		reason FailureReason
	}{
		{
			name: "not found",
			rt: func(*http.Request) (*http.Response, error) {
				return respond(http.StatusNotFound, "application/json", `{"error":"no such artwork"}`), nil
			},
			reason: ReasonNotFound,
		},
		{
			name: "malformed json",
			rt: func(*http.Request) (*http.Response, error) {
				return respond(http.StatusOK, "text/html", `<html>oops</html>`), nil
			},
			reason: ReasonDecode,
		},
		{
			name: "transport",
			rt: func(*http.Request) (*http.Response, error) {
				return nil, errors.New("dial tcp: connection refused")
			},
			reason: ReasonTransport,
		},
		{
			name: "server error",
			rt: func(*http.Request) (*http.Response, error) {
				return respond(http.StatusInternalServerError, "application/json", `{"error":{"message":"boom"}}`), nil
			},
			reason: ReasonUpstream,
		},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			c := newTestClient(t, Options{}, tc.rt)
			_, err := c.GetArtwork(context.Background(), "a")
			if err == nil {
				t.Fatalf("expected error")
			}
			if got := Classify(err); got != tc.reason {
				t.Fatalf("reason: want=%q got=%q (err=%v)", tc.reason, got, err)
			}
		})
	}
}

func TestHTTPErrorMessageFromEnvelope(t *testing.T) {
	err := parseHTTPError(http.StatusInternalServerError, []byte(`{"error":{"message":"boom"}}`))
	var herr *HTTPError
	if !errors.As(err, &herr) {
		t.Fatalf("expected *HTTPError, got %T", err)
	}
	if herr.Message != "boom" {
		t.Fatalf("message=%q", herr.Message)
	}
	if errors.Is(err, ErrNotFound) {
		t.Fatalf("500 must not match ErrNotFound")
	}
}

func TestLookupDoesNotRetryByDefault(t *testing.T) {
	var calls int32
	c := newTestClient(t, Options{}, func(*http.Request) (*http.Response, error) {
		atomic.AddInt32(&calls, 1)
		return nil, errors.New("connection reset")
	})
	if _, err := c.GetArtwork(context.Background(), "a"); err == nil {
		t.Fatalf("expected error")
	}
	if n := atomic.LoadInt32(&calls); n != 1 {
		t.Fatalf("calls=%d, want exactly one request", n)
	}
}

func TestRetriesServerErrorsButNotClientErrors(t *testing.T) {
	var calls int32
	c := newTestClient(t, Options{MaxRetries: 1}, func(*http.Request) (*http.Response, error) {
		if atomic.AddInt32(&calls, 1) == 1 {
			return respond(http.StatusBadGateway, "text/plain", "bad gateway"), nil
		}
		return respond(http.StatusOK, "application/json", `{"id":"a","title":"Sunset","price":1}`), nil
	})
	if _, err := c.GetArtwork(context.Background(), "a"); err != nil {
		t.Fatalf("GetArtwork: %v", err)
	}
	if n := atomic.LoadInt32(&calls); n != 2 {
		t.Fatalf("calls=%d", n)
	}

	atomic.StoreInt32(&calls, 0)
	c = newTestClient(t, Options{MaxRetries: 3}, func(*http.Request) (*http.Response, error) {
		atomic.AddInt32(&calls, 1)
		return respond(http.StatusNotFound, "text/plain", ""), nil
	})
	if _, err := c.GetArtwork(context.Background(), "a"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
	if n := atomic.LoadInt32(&calls); n != 1 {
		t.Fatalf("404 must not be retried, calls=%d", n)
	}
}

func TestGetArtworkImage(t *testing.T) {
	payload := []byte{0x89, 'P', 'N', 'G', 1, 2, 3}
	c := newTestClient(t, Options{}, func(req *http.Request) (*http.Response, error) {
		if req.URL.Path != "/api/artworks/7/image" {
			t.Fatalf("unexpected path: %s", req.URL.Path)
		}
		return &http.Response{
			StatusCode: http.StatusOK,
			Header:     http.Header{"Content-Type": []string{"image/png"}},
			Body:       io.NopCloser(bytes.NewReader(payload)),
		}, nil
	})
	img, err := c.GetArtworkImage(context.Background(), "7")
	if err != nil {
		t.Fatalf("GetArtworkImage: %v", err)
	}
	if !bytes.Equal(img.Bytes, payload) || img.ContentType != "image/png" {
		t.Fatalf("unexpected image: %+v", img)
	}
}

func TestGetArtworkImageRejectsOversizedAndEmptyPayloads(t *testing.T) {
	c := newTestClient(t, Options{MaxImageBytes: 4}, func(*http.Request) (*http.Response, error) {
		return respond(http.StatusOK, "image/png", "0123456789"), nil
	})
	if _, err := c.GetArtworkImage(context.Background(), "a"); Classify(err) != ReasonDecode {
		t.Fatalf("oversized: reason=%s err=%v", Classify(err), err)
	}

	c = newTestClient(t, Options{}, func(*http.Request) (*http.Response, error) {
		return respond(http.StatusOK, "image/png", ""), nil
	})
	if _, err := c.GetArtworkImage(context.Background(), "a"); Classify(err) != ReasonDecode {
		t.Fatalf("empty: reason=%s err=%v", Classify(err), err)
	}
}

func TestImageTimeoutIsTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	c, err := New(Options{BaseURL: srv.URL, ImageTimeout: 50 * time.Millisecond, HTTPClient: srv.Client()})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	_, err = c.GetArtworkImage(context.Background(), "slow")
	var trErr *TransportError
	if !errors.As(err, &trErr) {
		t.Fatalf("expected TransportError, got %T %v", err, err)
	}
	if !trErr.Timeout() {
		t.Fatalf("expected timeout, got %v", err)
	}
}
