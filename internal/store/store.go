package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/2beens/expfit/internal/telemetry/tracing"

	"github.com/prometheus/client_golang/prometheus"
)

// Backend loads and saves the whole document.
type Backend interface {
	Load(ctx context.Context) (*Document, error)
	Save(ctx context.Context, doc *Document) error
}

// Store holds the in-memory document and persists it on every mutation.
type Store struct {
	backend      Backend
	doc          *Document
	mutex        sync.RWMutex
	saveDuration prometheus.Observer
}

// Open loads the document from the backend. saveDuration may be nil.
func Open(ctx context.Context, backend Backend, saveDuration prometheus.Observer) (*Store, error) {
	doc, err := backend.Load(ctx)
	if err != nil {
		return nil, err
	}
	return &Store{
		backend:      backend,
		doc:          doc,
		saveDuration: saveDuration,
	}, nil
}

// View gives read access to the document. fn must not keep references to it.
func (s *Store) View(fn func(doc *Document)) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	fn(s.doc)
}

// Update runs fn on a copy of the document and persists the copy. The copy
// replaces the in-memory document only once it is saved, so a failing fn or
// save leaves the store unchanged.
func (s *Store) Update(ctx context.Context, fn func(doc *Document) error) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "store.update")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	s.mutex.Lock()
	defer s.mutex.Unlock()

	updated := s.doc.Clone()
	if err := fn(updated); err != nil {
		return err
	}

	begin := time.Now()
	if err := s.backend.Save(ctx, updated); err != nil {
		return fmt.Errorf("save store: %w", err)
	}
	if s.saveDuration != nil {
		s.saveDuration.Observe(time.Since(begin).Seconds())
	}

	s.doc = updated

	return nil
}

// Snapshot returns a deep copy of the current document.
func (s *Store) Snapshot() *Document {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.doc.Clone()
}
