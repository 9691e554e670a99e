package channel

import (
	"context"
	"errors"
	"fmt"
	"time"

	"briefbox/backend/internal/model"
)

// ErrInvalidName reports channel-name input that failed validation. Wrapped
// variants carry the concrete reason.
var ErrInvalidName = errors.New("invalid channel name")

type SearchErrorKind int

const (
	SearchInvalidInput SearchErrorKind = iota
	SearchNotFound
	SearchTechnical
	SearchTimeout
)

func (k SearchErrorKind) String() string {
	switch k {
	case SearchInvalidInput:
		return "invalid input"
	case SearchNotFound:
		return "not found"
	case SearchTimeout:
		return "timeout"
	default:
		return "technical error"
	}
}

// SearchError classifies a failed provider search. Kind keeps the
// business/technical distinction machine-checkable.
type SearchError struct {
	Kind SearchErrorKind
	Err  error
}

func (e *SearchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("search: %s: %v", e.Kind, e.Err)
	}
	return "search: " + e.Kind.String()
}

func (e *SearchError) Unwrap() error {
	return e.Err
}

func searchErr(kind SearchErrorKind, err error) *SearchError {
	return &SearchError{Kind: kind, Err: err}
}

// classifySearchErr maps a transport error, honoring context expiry as Timeout.
func classifySearchErr(ctx context.Context, err error) *SearchError {
	if ctx.Err() != nil || errors.Is(err, context.DeadlineExceeded) {
		return searchErr(SearchTimeout, err)
	}
	return searchErr(SearchTechnical, err)
}

// RawUpdate is a freshly fetched item before deduplication.
type RawUpdate struct {
	ExtID     string
	Title     string
	URL       string
	Published time.Time
}

// Info describes a provider-confirmed channel.
type Info struct {
	Type  model.ChannelType
	ExtID string
	Title string
	Link  string
}

// Adapter is the per-source-type capability set. Filtering fetched items for
// novelty is not the adapter's job; provider publish dates are unreliable and
// the selection policy lives in the service layer.
type Adapter interface {
	Type() model.ChannelType
	ValidateName(raw string) (string, error)
	Search(ctx context.Context, query string) ([]Info, error)
	FetchUpdates(ctx context.Context, extID string) ([]RawUpdate, error)
}

// DeletionChecker reports which previously ingested external ids the provider
// no longer serves. Only Twitter implements it (deletion compliance).
type DeletionChecker interface {
	FindDeleted(ctx context.Context, extIDs []string) ([]string, error)
}

// Registry selects the adapter for a channel type tag.
type Registry struct {
	adapters map[model.ChannelType]Adapter
}

func NewRegistry(adapters ...Adapter) *Registry {
	m := make(map[model.ChannelType]Adapter, len(adapters))
	for _, a := range adapters {
		m[a.Type()] = a
	}
	return &Registry{adapters: m}
}

func (r *Registry) Get(t model.ChannelType) (Adapter, bool) {
	a, ok := r.adapters[t]
	return a, ok
}

// DeletionChecker returns the adapter for t if it supports deletion lookups.
func (r *Registry) DeletionChecker(t model.ChannelType) (DeletionChecker, bool) {
	a, ok := r.adapters[t]
	if !ok {
		return nil, false
	}
	dc, ok := a.(DeletionChecker)
	return dc, ok
}
