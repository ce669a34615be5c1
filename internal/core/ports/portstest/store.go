// Package portstest provides in-memory and mock implementations of the
// fulfillment ports for use in tests.
package portstest

import (
	"context"
	"errors"
	"maps"
	"math"
	"slices"
	"sync"
	"time"

	"fulfillment/internal/core/domain/model/file"
	"fulfillment/internal/core/domain/model/item"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/ports"
	"fulfillment/internal/pkg/errs"
)

var errNoTransaction = errors.New("no active transaction")

// Store is an in-memory entity store. Transactions are fully serialized: a
// unit of work holds the store's transaction lock from Begin until Commit or
// Rollback, and its writes become visible to others only on Commit.
type Store struct {
	txMu sync.Mutex

	mu      sync.RWMutex
	orders  map[kernel.UUID]*order.Order
	batches map[kernel.UUID]*order.Batch
	items   map[kernel.UUID]*item.OrderItem
	files   map[kernel.UUID]*file.File
	seq     int
	created map[kernel.UUID]int

	commits int
}

func NewStore() *Store {
	return &Store{
		orders:  map[kernel.UUID]*order.Order{},
		batches: map[kernel.UUID]*order.Batch{},
		items:   map[kernel.UUID]*item.OrderItem{},
		files:   map[kernel.UUID]*file.File{},
		created: map[kernel.UUID]int{},
	}
}

// Create returns a new unit of work bound to the store.
func (s *Store) Create() ports.UnitOfWork {
	return &UnitOfWork{store: s}
}

// Commits counts committed transactions.
func (s *Store) Commits() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.commits
}

// Seed stores entities directly, outside of any transaction.
func (s *Store) Seed(entities ...any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range entities {
		s.put(e)
	}
}

// Order returns a copy of the stored order, or nil.
func (s *Store) Order(id kernel.UUID) *order.Order {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if o, ok := s.orders[id]; ok {
		return cloneOrder(o)
	}
	return nil
}

func (s *Store) Batch(id kernel.UUID) *order.Batch {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if b, ok := s.batches[id]; ok {
		return cloneBatch(b)
	}
	return nil
}

func (s *Store) Item(id kernel.UUID) *item.OrderItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if it, ok := s.items[id]; ok {
		return cloneItem(it)
	}
	return nil
}

// Batches returns copies of an order's batches, oldest first.
func (s *Store) Batches(orderID kernel.UUID) []*order.Batch {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*order.Batch
	for _, b := range s.batches {
		if b.OrderID().IsEqual(orderID) {
			out = append(out, cloneBatch(b))
		}
	}
	slices.SortFunc(out, func(a, b *order.Batch) int { return s.created[a.ID()] - s.created[b.ID()] })
	return out
}

// Items returns copies of a batch's items in creation order.
func (s *Store) Items(batchID kernel.UUID) []*item.OrderItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*item.OrderItem
	for _, it := range s.items {
		if it.BatchID().IsEqual(batchID) {
			out = append(out, cloneItem(it))
		}
	}
	slices.SortFunc(out, func(a, b *item.OrderItem) int { return s.created[a.ID()] - s.created[b.ID()] })
	return out
}

// Files returns copies of every file of a batch.
func (s *Store) Files(batchID kernel.UUID) []*file.File {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*file.File
	for _, f := range s.sortedFiles() {
		if f.BatchID().IsEqual(batchID) {
			out = append(out, cloneFile(f))
		}
	}
	return out
}

func (s *Store) put(e any) {
	switch v := e.(type) {
	case *order.Order:
		s.track(v.ID())
		s.orders[v.ID()] = cloneOrder(v)
	case *order.Batch:
		s.track(v.ID())
		s.batches[v.ID()] = cloneBatch(v)
	case *item.OrderItem:
		s.track(v.ID())
		s.items[v.ID()] = cloneItem(v)
	case *file.File:
		s.track(v.ID())
		s.files[v.ID()] = cloneFile(v)
	case deletion:
		delete(s.files, v.id)
	}
}

func (s *Store) track(id kernel.UUID) {
	if _, ok := s.created[id]; !ok {
		s.seq++
		s.created[id] = s.seq
	}
}

func (s *Store) sortedFiles() []*file.File {
	out := make([]*file.File, 0, len(s.files))
	for _, f := range s.files {
		out = append(out, f)
	}
	slices.SortFunc(out, func(a, b *file.File) int { return s.created[a.ID()] - s.created[b.ID()] })
	return out
}

type deletion struct{ id kernel.UUID }

// UnitOfWork implements ports.UnitOfWork over a Store.
type UnitOfWork struct {
	store   *Store
	active  bool
	pending []any
	// view holds this transaction's uncommitted writes for read-your-writes.
	view map[kernel.UUID]any
}

func (u *UnitOfWork) Begin(_ context.Context) error {
	if u.active {
		return nil
	}
	u.store.txMu.Lock()
	u.active = true
	u.pending = nil
	u.view = map[kernel.UUID]any{}
	return nil
}

func (u *UnitOfWork) Commit(_ context.Context) error {
	if !u.active {
		return errNoTransaction
	}
	u.store.mu.Lock()
	for _, e := range u.pending {
		u.store.put(e)
	}
	u.store.commits++
	u.store.mu.Unlock()
	u.finish()
	return nil
}

func (u *UnitOfWork) Rollback(_ context.Context) error {
	if !u.active {
		return errNoTransaction
	}
	u.finish()
	return nil
}

func (u *UnitOfWork) finish() {
	u.active = false
	u.pending = nil
	u.view = nil
	u.store.txMu.Unlock()
}

func (u *UnitOfWork) write(id kernel.UUID, e any) {
	if !u.active {
		u.store.mu.Lock()
		u.store.put(e)
		u.store.mu.Unlock()
		return
	}
	u.pending = append(u.pending, e)
	u.view[id] = e
}

func (u *UnitOfWork) OrderRepository() ports.OrderRepository         { return orderRepo{u} }
func (u *UnitOfWork) BatchRepository() ports.BatchRepository         { return batchRepo{u} }
func (u *UnitOfWork) OrderItemRepository() ports.OrderItemRepository { return itemRepo{u} }
func (u *UnitOfWork) FileRepository() ports.FileRepository           { return fileRepo{u} }

// lookup resolves an entity through the transaction view, then the store.
func lookup[T any](u *UnitOfWork, id kernel.UUID, committed map[kernel.UUID]T) (T, bool) {
	if v, ok := u.view[id]; ok {
		if _, deleted := v.(deletion); deleted {
			var zero T
			return zero, false
		}
		t, ok := v.(T)
		return t, ok
	}
	u.store.mu.RLock()
	defer u.store.mu.RUnlock()
	t, ok := committed[id]
	return t, ok
}

// snapshot lists committed entities merged with this transaction's writes,
// in creation order.
func snapshot[T interface{ ID() kernel.UUID }](u *UnitOfWork, committed map[kernel.UUID]T) []T {
	u.store.mu.RLock()
	merged := maps.Clone(committed)
	rank := maps.Clone(u.store.created)
	u.store.mu.RUnlock()
	if merged == nil {
		merged = map[kernel.UUID]T{}
	}

	for n, e := range u.pending {
		switch v := e.(type) {
		case deletion:
			delete(merged, v.id)
		case T:
			merged[v.ID()] = v
			if _, ok := rank[v.ID()]; !ok {
				rank[v.ID()] = math.MaxInt32 + n
			}
		}
	}

	out := make([]T, 0, len(merged))
	for _, v := range merged {
		out = append(out, v)
	}
	slices.SortFunc(out, func(a, b T) int { return rank[a.ID()] - rank[b.ID()] })
	return out
}

type orderRepo struct{ u *UnitOfWork }

func (r orderRepo) Add(_ context.Context, o *order.Order) error {
	if err := o.Validate(); err != nil {
		return err
	}
	r.u.write(o.ID(), cloneOrder(o))
	return nil
}

func (r orderRepo) Update(ctx context.Context, o *order.Order) error {
	if _, err := r.Get(ctx, o.ID()); err != nil {
		return err
	}
	return r.Add(ctx, o)
}

func (r orderRepo) Get(_ context.Context, id kernel.UUID) (*order.Order, error) {
	o, ok := lookup(r.u, id, r.u.store.orders)
	if !ok {
		return nil, errs.NewObjectNotFoundError("order", id.String())
	}
	return cloneOrder(o), nil
}

func (r orderRepo) GetForUpdate(ctx context.Context, id kernel.UUID) (*order.Order, error) {
	return r.Get(ctx, id)
}

func (r orderRepo) FindByStatusAndType(_ context.Context, status kernel.Status, t order.Type) ([]*order.Order, error) {
	var out []*order.Order
	for _, o := range snapshot(r.u, r.u.store.orders) {
		if o.Status() == status && o.Type() == t {
			out = append(out, cloneOrder(o))
		}
	}
	return out, nil
}

type batchRepo struct{ u *UnitOfWork }

func (r batchRepo) Add(_ context.Context, b *order.Batch) error {
	if err := b.Validate(); err != nil {
		return err
	}
	r.u.write(b.ID(), cloneBatch(b))
	return nil
}

func (r batchRepo) Update(ctx context.Context, b *order.Batch) error {
	if _, err := r.Get(ctx, b.ID()); err != nil {
		return err
	}
	return r.Add(ctx, b)
}

func (r batchRepo) Get(_ context.Context, id kernel.UUID) (*order.Batch, error) {
	b, ok := lookup(r.u, id, r.u.store.batches)
	if !ok {
		return nil, errs.NewObjectNotFoundError("batch", id.String())
	}
	return cloneBatch(b), nil
}

func (r batchRepo) GetForUpdate(ctx context.Context, id kernel.UUID) (*order.Batch, error) {
	return r.Get(ctx, id)
}

func (r batchRepo) ListByOrder(_ context.Context, orderID kernel.UUID) ([]*order.Batch, error) {
	var out []*order.Batch
	for _, b := range snapshot(r.u, r.u.store.batches) {
		if b.OrderID().IsEqual(orderID) {
			out = append(out, cloneBatch(b))
		}
	}
	return out, nil
}

func (r batchRepo) ListWithAvailableFiles(_ context.Context, t order.Type) ([]*order.Batch, error) {
	withFiles := map[kernel.UUID]bool{}
	for _, f := range snapshot(r.u, r.u.store.files) {
		if f.Available() {
			withFiles[f.BatchID()] = true
		}
	}
	var out []*order.Batch
	for _, b := range snapshot(r.u, r.u.store.batches) {
		if !withFiles[b.ID()] {
			continue
		}
		o, ok := lookup(r.u, b.OrderID(), r.u.store.orders)
		if ok && o.Type() == t {
			out = append(out, cloneBatch(b))
		}
	}
	return out, nil
}

type itemRepo struct{ u *UnitOfWork }

func (r itemRepo) Add(_ context.Context, items ...*item.OrderItem) error {
	for _, it := range items {
		if err := it.Validate(); err != nil {
			return err
		}
		r.u.write(it.ID(), cloneItem(it))
	}
	return nil
}

func (r itemRepo) Update(ctx context.Context, it *item.OrderItem) error {
	if _, err := r.Get(ctx, it.ID()); err != nil {
		return err
	}
	return r.Add(ctx, it)
}

func (r itemRepo) Get(_ context.Context, id kernel.UUID) (*item.OrderItem, error) {
	it, ok := lookup(r.u, id, r.u.store.items)
	if !ok {
		return nil, errs.NewObjectNotFoundError("order item", id.String())
	}
	return cloneItem(it), nil
}

func (r itemRepo) GetForUpdate(ctx context.Context, id kernel.UUID) (*item.OrderItem, error) {
	return r.Get(ctx, id)
}

func (r itemRepo) ListByBatch(_ context.Context, batchID kernel.UUID) ([]*item.OrderItem, error) {
	var out []*item.OrderItem
	for _, it := range snapshot(r.u, r.u.store.items) {
		if it.BatchID().IsEqual(batchID) {
			out = append(out, cloneItem(it))
		}
	}
	return out, nil
}

type fileRepo struct{ u *UnitOfWork }

func (r fileRepo) Add(_ context.Context, files ...*file.File) error {
	for _, f := range files {
		if err := f.Validate(); err != nil {
			return err
		}
		r.u.write(f.ID(), cloneFile(f))
	}
	return nil
}

func (r fileRepo) Update(ctx context.Context, f *file.File) error {
	if _, err := r.Get(ctx, f.ID()); err != nil {
		return err
	}
	return r.Add(ctx, f)
}

func (r fileRepo) Get(_ context.Context, id kernel.UUID) (*file.File, error) {
	f, ok := lookup(r.u, id, r.u.store.files)
	if !ok {
		return nil, errs.NewObjectNotFoundError("file", id.String())
	}
	return cloneFile(f), nil
}

func (r fileRepo) GetForUpdate(ctx context.Context, id kernel.UUID) (*file.File, error) {
	return r.Get(ctx, id)
}

func (r fileRepo) Delete(_ context.Context, ids ...kernel.UUID) error {
	for _, id := range ids {
		r.u.write(id, deletion{id: id})
	}
	return nil
}

func (r fileRepo) ListByBatch(_ context.Context, batchID kernel.UUID) ([]*file.File, error) {
	var out []*file.File
	for _, f := range snapshot(r.u, r.u.store.files) {
		if f.BatchID().IsEqual(batchID) {
			out = append(out, cloneFile(f))
		}
	}
	return out, nil
}

func cloneOrder(o *order.Order) *order.Order {
	c, err := order.RestoreOrder(o.ID(), o.Details(), o.State())
	if err != nil {
		panic(err)
	}
	return c
}

func cloneBatch(b *order.Batch) *order.Batch {
	c, err := order.RestoreBatch(b.ID(), b.OrderID(), b.Kind(), b.Timeslot(), b.State())
	if err != nil {
		panic(err)
	}
	return c
}

func cloneItem(it *item.OrderItem) *item.OrderItem {
	c, err := item.RestoreOrderItem(it.ID(), it.BatchID(), it.Request(), it.State())
	if err != nil {
		panic(err)
	}
	return c
}

func cloneFile(f *file.File) *file.File {
	c, err := file.RestoreFile(f.ID(), f.BatchID(), f.ItemIDs(), f.URL(), f.IsPackage(), f.State())
	if err != nil {
		panic(err)
	}
	return c
}

// Clock is a settable time source.
type Clock struct {
	mu  sync.Mutex
	now time.Time
}

func NewClock(now time.Time) *Clock { return &Clock{now: now} }

func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}
