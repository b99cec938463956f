package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/yungbote/artsfront/internal/domain"
	"github.com/yungbote/artsfront/internal/platform/httpx"
)

var ErrInvalidID = errors.New("artwork id is required")

const (
	defaultLookupTimeout = 10 * time.Second
	defaultImageTimeout  = 15 * time.Second
	defaultMaxImageBytes = 10 << 20
	maxJSONBytes         = 1 << 20
	maxBackoff           = 5 * time.Second
)

var tracer = otel.Tracer("github.com/yungbote/artsfront/internal/catalog")

type Options struct {
	BaseURL string

	LookupTimeout time.Duration
	ImageTimeout  time.Duration
	MaxRetries    int
	MaxImageBytes int64

	HTTPClient *http.Client
}

// Client talks to the catalog backend:
//
//	GET {base}/api/artworks/{id}        -> JSON record
//	GET {base}/api/artworks/{id}/image  -> binary image payload
type Client struct {
	baseURL string

	lookupTimeout time.Duration
	imageTimeout  time.Duration
	maxRetries    int
	maxImageBytes int64

	httpClient *http.Client
}

// Image is a raw payload as served by the backend, before decoding.
type Image struct {
	Bytes       []byte
	ContentType string
}

func New(opts Options) (*Client, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if baseURL == "" {
		return nil, errors.New("baseURL required")
	}
	if _, err := url.Parse(baseURL); err != nil {
		return nil, fmt.Errorf("invalid baseURL: %w", err)
	}

	lookupTimeout := opts.LookupTimeout
	if lookupTimeout <= 0 {
		lookupTimeout = defaultLookupTimeout
	}
	imageTimeout := opts.ImageTimeout
	if imageTimeout <= 0 {
		imageTimeout = defaultImageTimeout
	}
	maxRetries := opts.MaxRetries
	if maxRetries < 0 {
		maxRetries = 0
	}
	maxImageBytes := opts.MaxImageBytes
	if maxImageBytes <= 0 {
		maxImageBytes = defaultMaxImageBytes
	}

	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)}
	}

	return &Client{
		baseURL:       baseURL,
		lookupTimeout: lookupTimeout,
		imageTimeout:  imageTimeout,
		maxRetries:    maxRetries,
		maxImageBytes: maxImageBytes,
		httpClient:    hc,
	}, nil
}

func (c *Client) BaseURL() string { return c.baseURL }

// GetArtwork fetches one artwork record. A 404 matches ErrNotFound.
func (c *Client) GetArtwork(ctx context.Context, id domain.ID) (*domain.ArtworkRecord, error) {
	if id.IsZero() {
		return nil, ErrInvalidID
	}
	ctx, span := tracer.Start(ctx, "catalog.GetArtwork")
	defer span.End()
	span.SetAttributes(attribute.String("artwork.id", id.String()))

	var rec domain.ArtworkRecord
	if err := c.doJSON(ctx, c.lookupTimeout, artworkPath(id), &rec); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, string(Classify(err)))
		return nil, err
	}
	if rec.ID.IsZero() {
		rec.ID = id
	}
	return &rec, nil
}

// GetArtworkImage fetches the raw image payload for one artwork.
func (c *Client) GetArtworkImage(ctx context.Context, id domain.ID) (*Image, error) {
	if id.IsZero() {
		return nil, ErrInvalidID
	}
	ctx, span := tracer.Start(ctx, "catalog.GetArtworkImage")
	defer span.End()
	span.SetAttributes(attribute.String("artwork.id", id.String()))

	raw, header, err := c.do(ctx, c.imageTimeout, artworkPath(id)+"/image", "image/*", c.maxImageBytes)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, string(Classify(err)))
		return nil, err
	}
	if len(raw) == 0 {
		err := &DecodeError{What: "image", Err: errors.New("empty payload")}
		span.SetStatus(codes.Error, string(ReasonDecode))
		return nil, err
	}
	span.SetAttributes(attribute.Int("image.bytes", len(raw)))
	return &Image{Bytes: raw, ContentType: strings.TrimSpace(header.Get("Content-Type"))}, nil
}

func artworkPath(id domain.ID) string {
	return "/api/artworks/" + url.PathEscape(id.String())
}

// ---------------- HTTP helpers ----------------

func (c *Client) doJSON(ctx context.Context, timeout time.Duration, path string, out any) error {
	raw, _, err := c.do(ctx, timeout, path, "application/json", maxJSONBytes)
	if err != nil {
		return err
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	if err := dec.Decode(out); err != nil {
		return &DecodeError{What: "json", Err: err}
	}
	return nil
}

// do issues a GET with retries on transport errors and 5xx responses only.
func (c *Client) do(ctx context.Context, timeout time.Duration, path string, accept string, limit int64) ([]byte, http.Header, error) {
	ctx2 := ctx
	var cancel context.CancelFunc
	if timeout > 0 {
		ctx2, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	var lastErr error
	backoff := 250 * time.Millisecond
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		var retryHeader http.Header
		if ctx2.Err() != nil {
			return nil, nil, &TransportError{Op: "GET " + path, Err: ctx2.Err()}
		}

		req, err := http.NewRequestWithContext(ctx2, http.MethodGet, c.baseURL+path, nil)
		if err != nil {
			return nil, nil, err
		}
		req.Header.Set("Accept", accept)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = &TransportError{Op: "GET " + path, Err: err}
		} else {
			raw, readErr := io.ReadAll(io.LimitReader(resp.Body, limit+1))
			_ = resp.Body.Close()
			retryHeader = resp.Header
			switch {
			case readErr != nil:
				lastErr = &TransportError{Op: "GET " + path, Err: readErr}
			case resp.StatusCode < 200 || resp.StatusCode >= 300:
				herr := parseHTTPError(resp.StatusCode, raw)
				if !httpx.IsRetryableStatus(resp.StatusCode) {
					return nil, nil, herr
				}
				lastErr = herr
			case int64(len(raw)) > limit:
				return nil, nil, &DecodeError{What: "body", Err: fmt.Errorf("payload exceeds %d bytes", limit)}
			default:
				return raw, resp.Header, nil
			}
		}

		if attempt < c.maxRetries {
			select {
			case <-ctx2.Done():
				return nil, nil, &TransportError{Op: "GET " + path, Err: ctx2.Err()}
			case <-time.After(httpx.RetryAfter(retryHeader, httpx.Jitter(backoff), maxBackoff)):
			}
			backoff *= 2
		}
	}

	if lastErr == nil {
		lastErr = errors.New("request failed")
	}
	return nil, nil, lastErr
}
