package artwork

import (
	"context"
	"errors"
	"strings"

	"github.com/yungbote/artsfront/internal/catalog"
	"github.com/yungbote/artsfront/internal/domain"
	"github.com/yungbote/artsfront/internal/observability"
	"github.com/yungbote/artsfront/internal/platform/ctxutil"
	"github.com/yungbote/artsfront/internal/platform/logger"
)

type State string

const (
	StateLoading State = "loading"
	StateLoaded  State = "loaded"
	StateFailed  State = "failed"
)

// View is the outcome of one detail lookup. The zero View is loading.
type View struct {
	State   State
	Artwork *domain.ArtworkRecord
	Reason  catalog.FailureReason
	Err     error
}

func (v View) Loading() bool { return v.State == "" || v.State == StateLoading }

// Fetcher is the slice of the catalog client a lookup needs.
type Fetcher interface {
	GetArtwork(ctx context.Context, id domain.ID) (*domain.ArtworkRecord, error)
}

type Lookup struct {
	fetcher Fetcher
	log     *logger.Logger
	metrics *observability.Metrics
}

func NewLookup(fetcher Fetcher, log *logger.Logger, metrics *observability.Metrics) (*Lookup, error) {
	if fetcher == nil {
		return nil, errors.New("artwork fetcher required")
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Lookup{
		fetcher: fetcher,
		log:     log.With("component", "ArtworkLookup"),
		metrics: metrics,
	}, nil
}

// Fetch issues exactly one request for id. A blank id fails without a request.
// Failures are logged and surfaced in the View; Fetch itself never errors.
func (l *Lookup) Fetch(ctx context.Context, id domain.ID) View {
	id = domain.ID(strings.TrimSpace(id.String()))
	if id.IsZero() {
		l.metrics.ObserveArtworkLookup(string(catalog.ReasonInvalidID))
		return View{State: StateFailed, Reason: catalog.ReasonInvalidID, Err: catalog.ErrInvalidID}
	}

	rec, err := l.fetcher.GetArtwork(ctx, id)
	if err != nil {
		reason := catalog.Classify(err)
		l.metrics.ObserveArtworkLookup(string(reason))
		fields := append([]interface{}{"artwork_id", id.String(), "reason", reason, "error", err}, ctxutil.LogFields(ctx)...)
		switch reason {
		case catalog.ReasonNotFound, catalog.ReasonCanceled:
			l.log.Info("artwork lookup failed", fields...)
		default:
			l.log.Warn("artwork lookup failed", fields...)
		}
		return View{State: StateFailed, Reason: reason, Err: err}
	}
	l.metrics.ObserveArtworkLookup("ok")
	return View{State: StateLoaded, Artwork: rec}
}
