package memory

import (
	"context"
	"errors"
	"sync"

	"docqa-be/internal/entity"
	"docqa-be/internal/repository/contract"
	"docqa-be/internal/repository/unitofwork"

	"github.com/google/uuid"
)

// store holds the shared in-memory tables behind a factory so that every unit
// of work observes the same data, mirroring a real database connection pool.
type store struct {
	mu        sync.Mutex
	fragments []*entity.Fragment
	assets    []*entity.Asset
	bodies    []*entity.TableBody

	// failNextCreates makes the next N fragment Creates fail. Used to test
	// rollback and mid-batch abort behavior.
	failNextCreates int
}

// Factory is an in-memory unitofwork.RepositoryFactory for tests.
type Factory struct {
	s *store
}

func NewFactory() *Factory {
	return &Factory{s: &store{}}
}

func (f *Factory) NewUnitOfWork(ctx context.Context) unitofwork.UnitOfWork {
	return &uow{s: f.s}
}

// FailNextFragmentCreates arranges for the next n fragment inserts to fail.
func (f *Factory) FailNextFragmentCreates(n int) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	f.s.failNextCreates = n
}

func (f *Factory) FragmentCount() int {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	return len(f.s.fragments)
}

func (f *Factory) Assets() []*entity.Asset {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	out := make([]*entity.Asset, len(f.s.assets))
	copy(out, f.s.assets)
	return out
}

func (f *Factory) TableBodies() []*entity.TableBody {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	out := make([]*entity.TableBody, len(f.s.bodies))
	copy(out, f.s.bodies)
	return out
}

// uow buffers writes until Commit so a Rollback leaves the store untouched.
type uow struct {
	s       *store
	began   bool
	pending []func(s *store)
	err     error
}

func (u *uow) Begin(ctx context.Context) error {
	if u.began {
		return errors.New("transaction already started")
	}
	u.began = true
	u.pending = nil
	u.err = nil
	return nil
}

func (u *uow) Commit() error {
	if !u.began {
		return errors.New("no transaction to commit")
	}
	u.began = false
	if u.err != nil {
		return u.err
	}
	u.s.mu.Lock()
	defer u.s.mu.Unlock()
	for _, apply := range u.pending {
		apply(u.s)
	}
	u.pending = nil
	return nil
}

func (u *uow) Rollback() error {
	u.began = false
	u.pending = nil
	return nil
}

func (u *uow) FragmentRepository() contract.FragmentRepository {
	return &fragmentRepo{u: u}
}

func (u *uow) AssetRepository() contract.AssetRepository {
	return &assetRepo{u: u}
}

type fragmentRepo struct {
	u *uow
}

func (r *fragmentRepo) Create(ctx context.Context, fragment *entity.Fragment) error {
	r.u.s.mu.Lock()
	if r.u.s.failNextCreates > 0 {
		r.u.s.failNextCreates--
		r.u.s.mu.Unlock()
		return errors.New("injected insert failure")
	}
	r.u.s.mu.Unlock()

	if fragment.Id == uuid.Nil {
		fragment.Id = uuid.New()
	}
	clone := *fragment
	write := func(s *store) {
		s.fragments = append(s.fragments, &clone)
	}
	if r.u.began {
		r.u.pending = append(r.u.pending, write)
		return nil
	}
	r.u.s.mu.Lock()
	defer r.u.s.mu.Unlock()
	write(r.u.s)
	return nil
}

func (r *fragmentRepo) FindByIds(ctx context.Context, ids []uuid.UUID) ([]*entity.Fragment, error) {
	want := make(map[uuid.UUID]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	r.u.s.mu.Lock()
	defer r.u.s.mu.Unlock()
	var out []*entity.Fragment
	for _, f := range r.u.s.fragments {
		if want[f.Id] {
			clone := *f
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (r *fragmentRepo) FindAllWithEmbeddings(ctx context.Context) ([]*entity.Fragment, error) {
	r.u.s.mu.Lock()
	defer r.u.s.mu.Unlock()
	out := make([]*entity.Fragment, 0, len(r.u.s.fragments))
	for _, f := range r.u.s.fragments {
		clone := *f
		out = append(out, &clone)
	}
	return out, nil
}

func (r *fragmentRepo) Count(ctx context.Context) (int64, error) {
	r.u.s.mu.Lock()
	defer r.u.s.mu.Unlock()
	return int64(len(r.u.s.fragments)), nil
}

type assetRepo struct {
	u *uow
}

func (r *assetRepo) Create(ctx context.Context, asset *entity.Asset) error {
	if asset.Id == uuid.Nil {
		asset.Id = uuid.New()
	}
	clone := *asset
	write := func(s *store) {
		s.assets = append(s.assets, &clone)
	}
	if r.u.began {
		r.u.pending = append(r.u.pending, write)
		return nil
	}
	r.u.s.mu.Lock()
	defer r.u.s.mu.Unlock()
	write(r.u.s)
	return nil
}

func (r *assetRepo) CreateTableBody(ctx context.Context, body *entity.TableBody) error {
	clone := *body
	write := func(s *store) {
		s.bodies = append(s.bodies, &clone)
	}
	if r.u.began {
		r.u.pending = append(r.u.pending, write)
		return nil
	}
	r.u.s.mu.Lock()
	defer r.u.s.mu.Unlock()
	write(r.u.s)
	return nil
}

func (r *assetRepo) FindById(ctx context.Context, id uuid.UUID) (*entity.Asset, error) {
	r.u.s.mu.Lock()
	defer r.u.s.mu.Unlock()
	for _, a := range r.u.s.assets {
		if a.Id == id {
			clone := *a
			return &clone, nil
		}
	}
	return nil, nil
}
