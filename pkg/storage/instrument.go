package storage

import (
	"context"
	"time"

	"github.com/matzehuels/metromap/pkg/observability"
)

// Instrument wraps s so every call is reported to the store hooks under
// the given backend name.
func Instrument(s Store, backend string) Store {
	if _, ok := s.(*instrumented); ok {
		return s
	}
	return &instrumented{Store: s, backend: backend}
}

// Unwrap returns the backend behind an instrumented store.
func Unwrap(s Store) Store {
	if i, ok := s.(*instrumented); ok {
		return i.Store
	}
	return s
}

type instrumented struct {
	Store
	backend string
}

var _ Store = (*instrumented)(nil)

func (s *instrumented) report(ctx context.Context, op string, start time.Time, err error) {
	observability.Store().OnStoreOp(ctx, s.backend, op, time.Since(start), err)
}

func (s *instrumented) Save(ctx context.Context, doc Document) (Document, error) {
	start := time.Now()
	saved, err := s.Store.Save(ctx, doc)
	s.report(ctx, "Save", start, err)
	return saved, err
}

func (s *instrumented) Get(ctx context.Context, id string) (Document, error) {
	start := time.Now()
	doc, err := s.Store.Get(ctx, id)
	s.report(ctx, "Get", start, err)
	return doc, err
}

func (s *instrumented) List(ctx context.Context) ([]Document, error) {
	start := time.Now()
	docs, err := s.Store.List(ctx)
	s.report(ctx, "List", start, err)
	return docs, err
}

func (s *instrumented) Delete(ctx context.Context, id string) error {
	start := time.Now()
	err := s.Store.Delete(ctx, id)
	s.report(ctx, "Delete", start, err)
	return err
}
