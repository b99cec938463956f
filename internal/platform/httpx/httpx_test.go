package httpx

import (
	"net/http"
	"testing"
	"time"
)

func TestIsRetryableStatus(t *testing.T) {
	for code, want := range map[int]bool{200: false, 404: false, 429: false, 500: true, 502: true, 503: true} {
		if got := IsRetryableStatus(code); got != want {
			t.Fatalf("IsRetryableStatus(%d)=%v", code, got)
		}
	}
}

func TestRetryAfter(t *testing.T) {
	h := http.Header{}
	if got := RetryAfter(h, time.Second, 0); got != time.Second {
		t.Fatalf("fallback=%v", got)
	}
	h.Set("Retry-After", "3")
	if got := RetryAfter(h, time.Second, 0); got != 3*time.Second {
		t.Fatalf("header=%v", got)
	}
	if got := RetryAfter(h, time.Second, 2*time.Second); got != 2*time.Second {
		t.Fatalf("capped=%v", got)
	}
	h.Set("Retry-After", "Wed, 21 Oct 2015 07:28:00 GMT")
	if got := RetryAfter(h, time.Second, 0); got != time.Second {
		t.Fatalf("http-date is ignored, got %v", got)
	}
}

func TestJitterBounds(t *testing.T) {
	base := 100 * time.Millisecond
	for i := 0; i < 100; i++ {
		d := Jitter(base)
		if d < 80*time.Millisecond || d > 120*time.Millisecond {
			t.Fatalf("jitter out of bounds: %v", d)
		}
	}
	if Jitter(0) != 0 {
		t.Fatalf("zero base")
	}
}
