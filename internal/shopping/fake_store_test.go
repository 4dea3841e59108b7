package shopping

import (
	"context"
	"sort"
	"sync"

	"github.com/Makepad-fr/shoplist/internal/model"
	"github.com/Makepad-fr/shoplist/internal/store"
)

// fakeStore is an in-memory Store with injectable failures and an optional
// gate that holds Update until the test releases it.
type fakeStore struct {
	mu     sync.Mutex
	items  map[int64]model.Item
	nextID int64

	listCalls int
	listErr   error
	insertErr error
	updateErr error
	deleteErr error

	updateEntered chan struct{}
	updateRelease chan struct{}
}

func newFakeStore(names ...string) *fakeStore {
	f := &fakeStore{items: make(map[int64]model.Item)}
	for _, n := range names {
		f.nextID++
		f.items[f.nextID] = model.Item{ID: f.nextID, Name: n}
	}
	return f
}

func (f *fakeStore) ListAll(ctx context.Context) ([]model.Item, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls++
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.snapshotLocked(), nil
}

func (f *fakeStore) Insert(ctx context.Context, name string) (model.Item, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.insertErr != nil {
		return model.Item{}, f.insertErr
	}
	f.nextID++
	it := model.Item{ID: f.nextID, Name: name}
	f.items[it.ID] = it
	return it, nil
}

func (f *fakeStore) Update(ctx context.Context, item model.Item) error {
	if f.updateEntered != nil {
		f.updateEntered <- struct{}{}
		<-f.updateRelease
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updateErr != nil {
		return f.updateErr
	}
	if _, ok := f.items[item.ID]; !ok {
		return store.ErrNotFound
	}
	f.items[item.ID] = item
	return nil
}

func (f *fakeStore) Delete(ctx context.Context, item model.Item) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteErr != nil {
		return f.deleteErr
	}
	delete(f.items, item.ID)
	return nil
}

func (f *fakeStore) snapshot() []model.Item {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.snapshotLocked()
}

func (f *fakeStore) snapshotLocked() []model.Item {
	out := make([]model.Item, 0, len(f.items))
	for _, it := range f.items {
		out = append(out, it)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out
}

func (f *fakeStore) setListErr(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listErr = err
}

func (f *fakeStore) listCallCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.listCalls
}
