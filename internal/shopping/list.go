// Package shopping holds the list controller: the in-memory view of the
// shopping list and the only path through which the view and the item store
// are mutated.
//
// Every operation is queued to a single owner goroutine and executed in
// submission order. Indexes are resolved against the view as it stands when
// the operation runs, so back-to-back operations never observe a half-applied
// predecessor. Once started, an operation runs to completion even if its
// caller stops waiting.
package shopping

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/Makepad-fr/shoplist/internal/model"
)

var (
	ErrIndexOutOfRange = errors.New("index out of range")
	ErrItemNotFound    = errors.New("item not in list")
	ErrClosed          = errors.New("list closed")
)

// IndexError reports a 0-based position that is not in the view at the time
// the operation ran. It matches ErrIndexOutOfRange.
type IndexError struct {
	Index int
	Len   int
}

func (e *IndexError) Error() string {
	return fmt.Sprintf("%v: have %d, got %d", ErrIndexOutOfRange, e.Len, e.Index)
}

func (e *IndexError) Is(target error) bool { return target == ErrIndexOutOfRange }

// Store is the durable item store the list mirrors.
type Store interface {
	ListAll(ctx context.Context) ([]model.Item, error)
	Insert(ctx context.Context, name string) (model.Item, error)
	Update(ctx context.Context, item model.Item) error
	Delete(ctx context.Context, item model.Item) error
}

// Target addresses one item, either by position in the view or by id.
type Target struct {
	byID  bool
	id    int64
	index int
}

// At addresses the item at a 0-based position in the view.
func At(index int) Target { return Target{index: index} }

// ByID addresses the item with the given id.
func ByID(id int64) Target { return Target{byID: true, id: id} }

func (t Target) String() string {
	if t.byID {
		return fmt.Sprintf("id %d", t.id)
	}
	return fmt.Sprintf("index %d", t.index)
}

// Result is what a finished operation hands back.
// Item is the item the operation created or changed; Items is the view afterwards.
type Result struct {
	Item  model.Item
	Items []model.Item
	Err   error
}

type action int

const (
	actLoad action = iota
	actAdd
	actToggle
	actEdit
	actDelete
)

func (a action) String() string {
	switch a {
	case actLoad:
		return "load"
	case actAdd:
		return "add"
	case actToggle:
		return "toggle"
	case actEdit:
		return "edit"
	case actDelete:
		return "delete"
	}
	return "unknown"
}

type command struct {
	ctx    context.Context
	action action
	target Target
	name   string
	reply  chan Result
}

// List is the list controller.
type List struct {
	store  Store
	logger *slog.Logger

	qmu    sync.Mutex
	queue  []command
	closed bool
	wake   chan struct{}
	done   chan struct{}

	// mu guards the fields below. Only the owner goroutine writes them.
	mu      sync.RWMutex
	items   []model.Item
	loaded  bool
	subs    map[int]chan []model.Item
	nextSub int
}

// Option configures a List.
type Option func(*List)

// WithLogger sets the logger used for operation tracing.
func WithLogger(logger *slog.Logger) Option {
	return func(l *List) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// New starts the owner goroutine. The view is empty until the first Load.
func New(store Store, opts ...Option) *List {
	l := &List{
		store:  store,
		logger: slog.Default(),
		wake:   make(chan struct{}, 1),
		done:   make(chan struct{}),
		items:  []model.Item{},
		subs:   make(map[int]chan []model.Item),
	}
	for _, opt := range opts {
		opt(l)
	}
	go l.loop()
	return l
}

// Items returns a copy of the current view.
func (l *List) Items() []model.Item {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return cloneItems(l.items)
}

// Loaded reports whether a load has completed.
func (l *List) Loaded() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.loaded
}

func (l *List) LoadAsync(ctx context.Context) <-chan Result {
	return l.enqueue(ctx, command{action: actLoad})
}

func (l *List) AddAsync(ctx context.Context, name string) <-chan Result {
	return l.enqueue(ctx, command{action: actAdd, name: name})
}

func (l *List) ToggleAsync(ctx context.Context, t Target) <-chan Result {
	return l.enqueue(ctx, command{action: actToggle, target: t})
}

func (l *List) EditAsync(ctx context.Context, t Target, name string) <-chan Result {
	return l.enqueue(ctx, command{action: actEdit, target: t, name: name})
}

func (l *List) DeleteAsync(ctx context.Context, t Target) <-chan Result {
	return l.enqueue(ctx, command{action: actDelete, target: t})
}

// Load replaces the view with the store's contents.
func (l *List) Load(ctx context.Context) ([]model.Item, error) {
	res, err := await(ctx, l.LoadAsync(ctx))
	return res.Items, err
}

// Add inserts a new item and reloads the view.
// Blank names fail with model.ErrBlankName before the store is touched.
func (l *List) Add(ctx context.Context, name string) (model.Item, error) {
	res, err := await(ctx, l.AddAsync(ctx, name))
	return res.Item, err
}

// Toggle flips IsBought on the target and updates the view in place.
func (l *List) Toggle(ctx context.Context, t Target) (model.Item, error) {
	res, err := await(ctx, l.ToggleAsync(ctx, t))
	return res.Item, err
}

// Edit renames the target and updates the view in place.
// Blank names fail with model.ErrBlankName and leave the item untouched.
func (l *List) Edit(ctx context.Context, t Target, name string) (model.Item, error) {
	res, err := await(ctx, l.EditAsync(ctx, t, name))
	return res.Item, err
}

// Delete removes the target from the store and reloads the view.
// The returned item is the one that was deleted.
func (l *List) Delete(ctx context.Context, t Target) (model.Item, error) {
	res, err := await(ctx, l.DeleteAsync(ctx, t))
	return res.Item, err
}

// Subscribe returns a channel that receives the view after every operation
// that changed it. Delivery coalesces: a slow reader only sees the newest view.
// The channel is closed by cancel or by Close.
func (l *List) Subscribe() (<-chan []model.Item, func()) {
	ch := make(chan []model.Item, 1)

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.subs == nil {
		close(ch)
		return ch, func() {}
	}
	id := l.nextSub
	l.nextSub++
	l.subs[id] = ch

	cancel := func() {
		l.mu.Lock()
		defer l.mu.Unlock()
		if c, ok := l.subs[id]; ok {
			delete(l.subs, id)
			close(c)
		}
	}
	return ch, cancel
}

// Close waits for queued operations to finish, then stops the owner goroutine.
// Operations submitted afterwards fail with ErrClosed.
func (l *List) Close() error {
	l.qmu.Lock()
	if l.closed {
		l.qmu.Unlock()
		<-l.done
		return nil
	}
	l.closed = true
	l.qmu.Unlock()
	l.signal()
	<-l.done

	l.mu.Lock()
	for id, ch := range l.subs {
		delete(l.subs, id)
		close(ch)
	}
	l.subs = nil
	l.mu.Unlock()
	return nil
}

func (l *List) enqueue(ctx context.Context, c command) <-chan Result {
	c.ctx = context.WithoutCancel(ctx)
	c.reply = make(chan Result, 1)

	l.qmu.Lock()
	if l.closed {
		l.qmu.Unlock()
		c.reply <- Result{Err: ErrClosed}
		return c.reply
	}
	l.queue = append(l.queue, c)
	l.qmu.Unlock()
	l.signal()
	return c.reply
}

func (l *List) signal() {
	select {
	case l.wake <- struct{}{}:
	default:
	}
}

// loop drains the queue in order so no two operations touch the view at once.
func (l *List) loop() {
	defer close(l.done)
	for {
		l.qmu.Lock()
		if len(l.queue) == 0 {
			closed := l.closed
			l.qmu.Unlock()
			if closed {
				return
			}
			<-l.wake
			continue
		}
		c := l.queue[0]
		l.queue[0] = command{}
		l.queue = l.queue[1:]
		l.qmu.Unlock()

		c.reply <- l.execute(c)
	}
}

func await(ctx context.Context, ch <-chan Result) (Result, error) {
	select {
	case res := <-ch:
		return res, res.Err
	case <-ctx.Done():
		return Result{}, ctx.Err()
	}
}

func (l *List) execute(c command) Result {
	log := l.logger.With("op", newOpID(), "action", c.action.String())
	log.Debug("operation started", "target", c.target.String())

	var res Result
	switch c.action {
	case actLoad:
		res = l.doLoad(c.ctx)
	case actAdd:
		res = l.doAdd(c.ctx, c.name)
	case actToggle:
		res = l.doToggle(c.ctx, c.target)
	case actEdit:
		res = l.doEdit(c.ctx, c.target, c.name)
	case actDelete:
		res = l.doDelete(c.ctx, c.target)
	default:
		res = Result{Err: fmt.Errorf("unknown action %d", c.action)}
	}

	if res.Err != nil {
		log.Warn("operation failed", "error", res.Err)
		res.Items = l.Items()
		return res
	}
	log.Debug("operation finished", "id", res.Item.ID, "count", len(res.Items))
	return res
}

func (l *List) doLoad(ctx context.Context) Result {
	items, err := l.store.ListAll(ctx)
	if err != nil {
		return Result{Err: err}
	}
	return Result{Items: l.setView(items)}
}

// doAdd does not roll back: if the reload fails the insert has already committed.
func (l *List) doAdd(ctx context.Context, raw string) Result {
	name, err := model.ValidateName(raw)
	if err != nil {
		return Result{Err: err}
	}
	it, err := l.store.Insert(ctx, name)
	if err != nil {
		return Result{Err: err}
	}
	items, err := l.store.ListAll(ctx)
	if err != nil {
		return Result{Item: it, Err: fmt.Errorf("reload after add: %w", err)}
	}
	return Result{Item: it, Items: l.setView(items)}
}

func (l *List) doToggle(ctx context.Context, t Target) Result {
	pos, err := l.resolve(t)
	if err != nil {
		return Result{Err: err}
	}
	updated := l.items[pos]
	updated.IsBought = !updated.IsBought
	if err := l.store.Update(ctx, updated); err != nil {
		return Result{Err: err}
	}
	return Result{Item: updated, Items: l.replaceAt(pos, updated)}
}

func (l *List) doEdit(ctx context.Context, t Target, raw string) Result {
	name, err := model.ValidateName(raw)
	if err != nil {
		return Result{Err: err}
	}
	pos, err := l.resolve(t)
	if err != nil {
		return Result{Err: err}
	}
	updated := l.items[pos]
	updated.Name = name
	if err := l.store.Update(ctx, updated); err != nil {
		return Result{Err: err}
	}
	return Result{Item: updated, Items: l.replaceAt(pos, updated)}
}

func (l *List) doDelete(ctx context.Context, t Target) Result {
	pos, err := l.resolve(t)
	if err != nil {
		return Result{Err: err}
	}
	it := l.items[pos]
	if err := l.store.Delete(ctx, it); err != nil {
		return Result{Err: err}
	}
	items, err := l.store.ListAll(ctx)
	if err != nil {
		return Result{Item: it, Err: fmt.Errorf("reload after delete: %w", err)}
	}
	return Result{Item: it, Items: l.setView(items)}
}

// resolve maps t to a position in the view. Called only from the owner goroutine.
func (l *List) resolve(t Target) (int, error) {
	if t.byID {
		for i, it := range l.items {
			if it.ID == t.id {
				return i, nil
			}
		}
		return -1, fmt.Errorf("%w: id %d", ErrItemNotFound, t.id)
	}
	if t.index < 0 || t.index >= len(l.items) {
		return -1, &IndexError{Index: t.index, Len: len(l.items)}
	}
	return t.index, nil
}

func (l *List) setView(items []model.Item) []model.Item {
	if items == nil {
		items = []model.Item{}
	}
	l.mu.Lock()
	l.items = items
	l.loaded = true
	snap := cloneItems(items)
	l.publishLocked()
	l.mu.Unlock()
	return snap
}

func (l *List) replaceAt(pos int, it model.Item) []model.Item {
	l.mu.Lock()
	l.items[pos] = it
	snap := cloneItems(l.items)
	l.publishLocked()
	l.mu.Unlock()
	return snap
}

// publishLocked hands every subscriber the newest view, dropping an unread older one.
func (l *List) publishLocked() {
	for _, ch := range l.subs {
		snap := cloneItems(l.items)
		select {
		case ch <- snap:
		default:
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- snap:
			default:
			}
		}
	}
}

func cloneItems(items []model.Item) []model.Item {
	out := make([]model.Item, len(items))
	copy(out, items)
	return out
}

func newOpID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}
