// Package state owns the ordered collection of children and is the only
// path to the durable key-value store. Every mutation is persisted as a
// whole document before the call returns. Several stores may share one KV
// (the server and CLI invocations on the same database): a store picks up
// the persisted document again before each mutation and on Refresh.
package state

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"punti/internal/core"
	"punti/internal/log"
	"punti/internal/metrics"
	"punti/internal/storage"
)

// DefaultKey is the storage key the document lives under.
const DefaultKey = "pointTrackerData"

type Store struct {
	mu sync.Mutex

	kv      storage.KV
	key     string
	now     func() time.Time
	limit   int
	logger  *log.Logger
	metrics *metrics.Metrics

	children []core.Child
	lastID   core.ChildID
	// seen is the document last read from or written to kv.
	seen []byte
}

type Option func(*Store)

func WithKey(key string) Option {
	return func(s *Store) {
		if key != "" {
			s.key = key
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

func WithHistoryLimit(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.limit = n
		}
	}
}

func WithLogger(l *log.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l.WithComponent(log.ComponentState)
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Store) { s.metrics = m }
}

func New(kv storage.KV, opts ...Option) *Store {
	s := &Store{
		kv:       kv,
		key:      DefaultKey,
		now:      time.Now,
		limit:    core.DefaultHistoryLimit,
		logger:   log.FromSlog(nil, log.ComponentState),
		children: []core.Child{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load replaces the collection with the persisted document. Absent,
// unreadable or malformed content yields an empty collection; Load never
// fails.
func (s *Store) Load(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.children = []core.Child{}
	s.lastID = 0
	s.seen = nil
	defer func() { s.metrics.SetChildren(len(s.children)) }()

	raw, ok, err := s.kv.Get(ctx, s.key)
	if err != nil {
		s.logger.WarnContext(ctx, "Storage unreadable, starting empty",
			log.FieldStorageKey, s.key, log.FieldError, err)
		return
	}
	if !ok {
		s.logger.DebugContext(ctx, "No persisted state, starting empty", log.FieldStorageKey, s.key)
		return
	}
	s.seen = raw

	doc, err := core.DecodeDocument(raw)
	if err != nil {
		s.logger.WarnContext(ctx, "Persisted state malformed, starting empty",
			log.FieldStorageKey, s.key, log.FieldError, err)
		return
	}

	s.adopt(doc)
	s.logger.InfoContext(ctx, "State loaded", "children", len(s.children))
}

// Refresh picks up a document written by another store on the same KV.
// Unlike Load it keeps the in-memory collection when the stored content is
// absent, unreadable or malformed.
func (s *Store) Refresh(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sync(ctx)
}

// sync is Refresh for callers holding s.mu.
func (s *Store) sync(ctx context.Context) {
	raw, ok, err := s.kv.Get(ctx, s.key)
	if err != nil {
		s.logger.DebugContext(ctx, "Storage unreadable, keeping memory",
			log.FieldStorageKey, s.key, log.FieldError, err)
		return
	}
	if !ok || bytes.Equal(raw, s.seen) {
		return
	}
	s.seen = raw

	doc, err := core.DecodeDocument(raw)
	if err != nil {
		s.logger.WarnContext(ctx, "Persisted state malformed, keeping memory",
			log.FieldStorageKey, s.key, log.FieldError, err)
		return
	}
	s.children = s.children[:0:0]
	s.adopt(doc)
	s.metrics.SetChildren(len(s.children))
	s.logger.DebugContext(ctx, "Picked up external change", "children", len(s.children))
}

// adopt appends the normalized children of doc. lastID never decreases so
// ids minted before a refresh stay unique.
func (s *Store) adopt(doc core.Document) {
	for _, c := range doc.Children {
		s.children = append(s.children, c.Normalize(s.limit))
		if c.ID > s.lastID {
			s.lastID = c.ID
		}
	}
}

// Save writes the whole document with a single Set.
func (s *Store) Save(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save(ctx)
}

func (s *Store) save(ctx context.Context) error {
	raw, err := json.Marshal(core.Document{Children: s.children})
	if err != nil {
		s.metrics.PersistenceFailure()
		return fmt.Errorf("%w: encode document: %w", core.ErrPersistence, err)
	}
	if err := s.kv.Set(ctx, s.key, raw); err != nil {
		s.metrics.PersistenceFailure()
		s.logger.WarnContext(ctx, "Persisting state failed",
			log.FieldStorageKey, s.key, log.FieldError, err)
		return fmt.Errorf("%w: %w", core.ErrPersistence, err)
	}
	s.seen = raw
	return nil
}

// AddChild appends a child with zero points and an empty history. An empty
// color selects core.DefaultColor.
func (s *Store) AddChild(ctx context.Context, name, color string) (core.Child, error) {
	name, err := core.NormalizeName(name)
	if err != nil {
		s.metrics.Rejected("add_child")
		return core.Child{}, err
	}
	color = strings.TrimSpace(color)
	if color == "" {
		color = core.DefaultColor
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sync(ctx)

	c := core.Child{
		ID:           s.mintID(),
		Name:         name,
		Color:        color,
		Transactions: []core.Transaction{},
	}
	s.children = append(s.children, c)
	s.metrics.SetChildren(len(s.children))

	s.logger.InfoContext(ctx, "Child added", log.NewFields().
		WithChild(int64(c.ID), c.Name).WithOperation(log.OpCreate).ToSlice()...)

	return c.Clone(), s.save(ctx)
}

// mintID returns max(now in ms, last minted + 1) so ids keep increasing
// even when the clock steps backwards.
func (s *Store) mintID() core.ChildID {
	id := core.ChildID(s.now().UnixMilli())
	if id <= s.lastID {
		id = s.lastID + 1
	}
	s.lastID = id
	return id
}

// DeleteChild removes the child with id. Deleting an absent id is a no-op
// but still persists.
func (s *Store) DeleteChild(ctx context.Context, id core.ChildID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sync(ctx)

	kept := s.children[:0:0]
	for _, c := range s.children {
		if c.ID != id {
			kept = append(kept, c)
		}
	}
	if len(kept) != len(s.children) {
		s.logger.InfoContext(ctx, "Child deleted", log.NewFields().
			WithChild(int64(id), "").WithOperation(log.OpDelete).ToSlice()...)
	}
	s.children = kept
	s.metrics.SetChildren(len(s.children))

	return s.save(ctx)
}

// MoveChild swaps the child with its neighbour. At a boundary, or for an
// unknown id, nothing changes and nothing is written.
func (s *Store) MoveChild(ctx context.Context, id core.ChildID, dir core.Direction) error {
	var step int
	switch dir {
	case core.Up:
		step = -1
	case core.Down:
		step = 1
	default:
		s.metrics.Rejected("move_child")
		return core.ErrInvalidDirection
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sync(ctx)

	i := s.indexOf(id)
	if i < 0 {
		return nil
	}
	j := i + step
	if j < 0 || j >= len(s.children) {
		return nil
	}
	s.children[i], s.children[j] = s.children[j], s.children[i]

	return s.save(ctx)
}

// ApplyTransaction credits or debits the child and records the change.
// An unknown id returns core.ErrNotFound and leaves the store untouched.
func (s *Store) ApplyTransaction(ctx context.Context, id core.ChildID, kind core.Kind, amount int) (core.Child, error) {
	if err := kind.Validate(); err != nil {
		s.metrics.Rejected("apply_transaction")
		return core.Child{}, err
	}
	if err := core.ValidateAmount(amount); err != nil {
		s.metrics.Rejected("apply_transaction")
		return core.Child{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sync(ctx)

	i := s.indexOf(id)
	if i < 0 {
		return core.Child{}, fmt.Errorf("%w: %d", core.ErrNotFound, id)
	}

	updated, err := s.children[i].Apply(kind, amount, s.now(), s.limit)
	if err != nil {
		return core.Child{}, err
	}
	s.children[i] = updated
	s.metrics.Transaction(string(kind), amount)

	log.NewStructuredLogger(s.logger).LogTransactionApplied(ctx,
		int64(updated.ID), updated.Name, string(kind), amount, updated.Points)

	return updated.Clone(), s.save(ctx)
}

// Children returns a deep copy of the ordered collection.
func (s *Store) Children() []core.Child {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]core.Child, len(s.children))
	for i, c := range s.children {
		out[i] = c.Clone()
	}
	return out
}

func (s *Store) Child(id core.ChildID) (core.Child, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if i := s.indexOf(id); i >= 0 {
		return s.children[i].Clone(), true
	}
	return core.Child{}, false
}

// Document returns the collection in its persisted shape.
func (s *Store) Document() core.Document {
	return core.Document{Children: s.Children()}
}

// Ping reports the health of the underlying store when it supports it.
func (s *Store) Ping(ctx context.Context) error {
	p, ok := s.kv.(storage.Pinger)
	if !ok {
		return nil
	}
	if err := p.Ping(ctx); err != nil {
		return fmt.Errorf("%w: %w", core.ErrPersistence, err)
	}
	return nil
}

func (s *Store) indexOf(id core.ChildID) int {
	for i, c := range s.children {
		if c.ID == id {
			return i
		}
	}
	return -1
}
