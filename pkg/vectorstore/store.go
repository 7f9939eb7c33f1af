package vectorstore

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"docqa-be/internal/entity"
	"docqa-be/internal/pkg/logger"
	"docqa-be/internal/repository/unitofwork"

	"github.com/google/uuid"
)

const normEpsilon = 1e-12

// InsertError wraps a failed durable insert. The in-memory index is never
// mutated when an InsertError is returned.
type InsertError struct {
	Err error
}

func (e *InsertError) Error() string {
	return fmt.Sprintf("vectorstore: insert failed: %v", e.Err)
}

func (e *InsertError) Unwrap() error {
	return e.Err
}

// DimensionError reports a raw vector whose length does not match the store
// dimension.
type DimensionError struct {
	Want int
	Got  int
}

func (e *DimensionError) Error() string {
	return fmt.Sprintf("vectorstore: embedding dimension %d, want %d", e.Got, e.Want)
}

type indexItem struct {
	id        uuid.UUID
	metadata  entity.FragmentMetadata
	embedding []float32
}

// SearchOptions narrows a top-K search.
type SearchOptions struct {
	K         int
	Threshold float64
	Types     []string // empty = all types
	Sha256    string   // empty = all documents
}

// DefaultSearchOptions returns the stock search parameters.
func DefaultSearchOptions() SearchOptions {
	return SearchOptions{K: 8, Threshold: 0.7}
}

// Store pairs the durable fragment tables with a process-resident normalized
// index. The index is append-only: inserts push to it only after the durable
// transaction commits, searches take a length snapshot so a concurrent append
// never affects an in-flight scan.
type Store struct {
	uowFactory unitofwork.RepositoryFactory
	dim        int
	log        logger.ILogger

	mu     sync.RWMutex
	index  []indexItem
	loaded bool
}

func New(uowFactory unitofwork.RepositoryFactory, dim int, log logger.ILogger) *Store {
	return &Store{
		uowFactory: uowFactory,
		dim:        dim,
		log:        log,
	}
}

func (s *Store) Dim() int {
	return s.dim
}

// Normalize scales v to unit length under the Euclidean 2-norm. Empty vectors
// are rejected; a norm below epsilon is treated as 1 (all-zero input is
// undefined and passes through unchanged).
func Normalize(v []float32) ([]float32, error) {
	if len(v) == 0 {
		return nil, fmt.Errorf("vectorstore: cannot normalize empty vector")
	}
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	n := math.Sqrt(sum)
	if math.Abs(n-1) < 1e-6 {
		return v, nil
	}
	if n <= normEpsilon {
		n = 1
	}
	out := make([]float32, len(v))
	for i, x := range v {
		out[i] = float32(float64(x) / n)
	}
	return out, nil
}

// Load materializes the index from durable storage. Idempotent; a failed load
// leaves the store unloaded so the next read retries.
func (s *Store) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadLocked(ctx)
}

func (s *Store) loadLocked(ctx context.Context) error {
	if s.loaded {
		return nil
	}
	uow := s.uowFactory.NewUnitOfWork(ctx)
	fragments, err := uow.FragmentRepository().FindAllWithEmbeddings(ctx)
	if err != nil {
		return fmt.Errorf("vectorstore: load: %w", err)
	}
	index := make([]indexItem, 0, len(fragments))
	for _, f := range fragments {
		if len(f.Embedding) != s.dim {
			return fmt.Errorf("vectorstore: load: fragment %s has dimension %d, want %d", f.Id, len(f.Embedding), s.dim)
		}
		index = append(index, indexItem{
			id:        f.Id,
			metadata:  f.Metadata,
			embedding: f.Embedding,
		})
	}
	s.index = index
	s.loaded = true
	s.log.Info("vectorstore", "index loaded", map[string]interface{}{"fragments": len(index)})
	return nil
}

// InsertFragment normalizes rawVec, persists the fragment and embedding rows
// in one transaction, and appends to the index only after commit.
func (s *Store) InsertFragment(ctx context.Context, content string, metadata entity.FragmentMetadata, rawVec []float32) (*entity.Fragment, error) {
	if len(rawVec) != s.dim {
		return nil, &InsertError{Err: &DimensionError{Want: s.dim, Got: len(rawVec)}}
	}
	v, err := Normalize(rawVec)
	if err != nil {
		return nil, &InsertError{Err: err}
	}

	fragment := &entity.Fragment{
		Id:        uuid.New(),
		Content:   content,
		Metadata:  metadata,
		Embedding: v,
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, &InsertError{Err: err}
	}
	if err := uow.FragmentRepository().Create(ctx, fragment); err != nil {
		_ = uow.Rollback()
		return nil, &InsertError{Err: err}
	}
	if err := uow.Commit(); err != nil {
		return nil, &InsertError{Err: err}
	}

	s.mu.Lock()
	if s.loaded {
		s.index = append(s.index, indexItem{
			id:        fragment.Id,
			metadata:  fragment.Metadata,
			embedding: v,
		})
	}
	s.mu.Unlock()

	return fragment, nil
}

// InsertAsset normalizes the caption embedding when present and persists the
// asset together with its table body (tables only) in one transaction.
func (s *Store) InsertAsset(ctx context.Context, asset *entity.Asset, body *entity.TableBody) error {
	if asset.CaptionEmb != nil {
		if len(asset.CaptionEmb) != s.dim {
			return &InsertError{Err: &DimensionError{Want: s.dim, Got: len(asset.CaptionEmb)}}
		}
		v, err := Normalize(asset.CaptionEmb)
		if err != nil {
			return &InsertError{Err: err}
		}
		asset.CaptionEmb = v
	}
	if asset.Id == uuid.Nil {
		asset.Id = uuid.New()
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return &InsertError{Err: err}
	}
	if err := uow.AssetRepository().Create(ctx, asset); err != nil {
		_ = uow.Rollback()
		return &InsertError{Err: err}
	}
	if body != nil {
		body.AssetId = asset.Id
		if err := uow.AssetRepository().CreateTableBody(ctx, body); err != nil {
			_ = uow.Rollback()
			return &InsertError{Err: err}
		}
	}
	if err := uow.Commit(); err != nil {
		return &InsertError{Err: err}
	}
	return nil
}

// TopK runs a filtered cosine search over the index and hydrates content for
// the winners in one batch.
func (s *Store) TopK(ctx context.Context, queryVec []float32, opts SearchOptions) ([]*entity.ScoredFragment, error) {
	if opts.K <= 0 {
		opts.K = 8
	}

	s.mu.RLock()
	if !s.loaded {
		s.mu.RUnlock()
		if err := s.Load(ctx); err != nil {
			return nil, err
		}
		s.mu.RLock()
	}
	// Snapshot: an append during the scan must not affect this search.
	snapshot := s.index[:len(s.index):len(s.index)]
	s.mu.RUnlock()

	q, err := Normalize(queryVec)
	if err != nil {
		return nil, err
	}
	if len(q) != s.dim {
		return nil, &DimensionError{Want: s.dim, Got: len(q)}
	}

	var typeSet map[string]bool
	if len(opts.Types) > 0 {
		typeSet = make(map[string]bool, len(opts.Types))
		for _, t := range opts.Types {
			typeSet[t] = true
		}
	}

	type candidate struct {
		item *indexItem
		sim  float64
	}
	var candidates []candidate
	for i := range snapshot {
		item := &snapshot[i]
		if typeSet != nil && !typeSet[item.metadata.Type] {
			continue
		}
		if opts.Sha256 != "" && item.metadata.SHA256 != opts.Sha256 {
			continue
		}
		sim := dot(q, item.embedding)
		if sim >= opts.Threshold {
			candidates = append(candidates, candidate{item: item, sim: sim})
		}
	}

	// Stable sort: equal similarities keep insertion order.
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].sim > candidates[j].sim
	})
	if len(candidates) > opts.K {
		candidates = candidates[:opts.K]
	}

	ids := make([]uuid.UUID, len(candidates))
	for i, c := range candidates {
		ids[i] = c.item.id
	}
	uow := s.uowFactory.NewUnitOfWork(ctx)
	hydrated, err := uow.FragmentRepository().FindByIds(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("vectorstore: hydrate: %w", err)
	}
	contentById := make(map[uuid.UUID]string, len(hydrated))
	for _, f := range hydrated {
		contentById[f.Id] = f.Content
	}

	results := make([]*entity.ScoredFragment, 0, len(candidates))
	for _, c := range candidates {
		results = append(results, &entity.ScoredFragment{
			Fragment: &entity.Fragment{
				Id:        c.item.id,
				Content:   contentById[c.item.id],
				Metadata:  c.item.metadata,
				Embedding: c.item.embedding,
			},
			Similarity: c.sim,
		})
	}
	return results, nil
}

// Size reports the number of indexed fragments. Loads lazily like TopK.
func (s *Store) Size(ctx context.Context) (int, error) {
	s.mu.RLock()
	if s.loaded {
		n := len(s.index)
		s.mu.RUnlock()
		return n, nil
	}
	s.mu.RUnlock()
	if err := s.Load(ctx); err != nil {
		return 0, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.index), nil
}

func dot(a, b []float32) float64 {
	var sum float64
	for i := range a {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}
