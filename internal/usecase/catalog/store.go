package catalog

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	domcategory "example.com/storefront/internal/domain/category"
	domnotify "example.com/storefront/internal/domain/notify"
	domproduct "example.com/storefront/internal/domain/product"
	"example.com/storefront/internal/infra/realtime"
)

const productsTable = "products"

var ErrStoreClosed = errors.New("catalog store is closed")

// Subscription is a disposable handle on a table's change feed.
type Subscription interface {
	Events() <-chan realtime.Event
	Close()
}

// Feed opens realtime subscriptions; satisfied by the realtime package
// through a thin adapter at wiring time.
type Feed interface {
	Subscribe(ctx context.Context, table string) (Subscription, error)
}

// Store owns the in-memory catalog state for one consumer: the full
// product and category sets, the ephemeral filter selection and its
// derived projection. Construct it on view mount, Close it on unmount.
//
// Every product refetch replaces the set atomically; readers observe
// either the old complete list or the new one, never an interleaving.
// Overlapping refetches are resolved last-arrival-wins, which is safe
// because each response is a full authoritative snapshot.
type Store struct {
	products   domproduct.Repository
	categories domcategory.Repository
	feed       Feed
	notifier   domnotify.Notifier
	log        *zap.Logger

	mu               sync.Mutex
	closed           bool
	loading          bool
	productSet       []domproduct.Product
	categorySet      []domcategory.Category
	searchTerm       string
	selectedCategory string
	filtered         []domproduct.Product

	closeOnce sync.Once
	sub       Subscription
	watching  bool
	wg        sync.WaitGroup
}

type Dependencies struct {
	Products   domproduct.Repository
	Categories domcategory.Repository
	Feed       Feed
	Notifier   domnotify.Notifier
	Log        *zap.Logger
}

func NewStore(deps Dependencies) *Store {
	return &Store{
		products:         deps.Products,
		categories:       deps.Categories,
		feed:             deps.Feed,
		notifier:         deps.Notifier,
		log:              deps.Log.Named("catalog.store"),
		loading:          true,
		selectedCategory: CategoryAll,
	}
}

// LoadProducts refetches the full product list, newest first. On failure
// the previous set is left untouched and the user is notified; either way
// the first completed call clears the loading flag for good.
func (s *Store) LoadProducts(ctx context.Context) error {
	items, err := s.products.List(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		// Response arrived after teardown; never write to disposed state.
		return ErrStoreClosed
	}
	s.loading = false

	if err != nil {
		s.log.Error("product refetch failed", zap.Error(err))
		s.notifier.Notify(domnotify.Notification{
			Title:       "Error",
			Description: "products could not be loaded",
			Severity:    domnotify.SeverityDestructive,
		})
		return err
	}

	s.productSet = items
	s.refilterLocked()
	return nil
}

// LoadCategories refetches the category list, display order ascending.
// The list is ancillary to the storefront, so a failure is logged but
// never surfaced to the user and never touches the product view.
func (s *Store) LoadCategories(ctx context.Context) error {
	items, err := s.categories.List(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrStoreClosed
	}
	if err != nil {
		s.log.Warn("category refetch failed", zap.Error(err))
		return err
	}

	s.categorySet = items
	return nil
}

// Watch subscribes the store to the products change feed. Every
// notification, regardless of event type, triggers a full refetch; no
// incremental patching. Watching again is a no-op.
func (s *Store) Watch(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrStoreClosed
	}
	if s.watching {
		s.mu.Unlock()
		return nil
	}
	s.watching = true
	s.mu.Unlock()

	sub, err := s.feed.Subscribe(ctx, productsTable)
	if err != nil {
		s.mu.Lock()
		s.watching = false
		s.mu.Unlock()
		return err
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		sub.Close()
		return ErrStoreClosed
	}
	s.sub = sub
	s.mu.Unlock()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		for range sub.Events() {
			_ = s.LoadProducts(ctx)
		}
	}()
	return nil
}

// Close tears the store down: the realtime subscription is disposed
// exactly once and any in-flight refetch that resolves later is ignored.
func (s *Store) Close() {
	s.closeOnce.Do(func() {
		s.mu.Lock()
		s.closed = true
		sub := s.sub
		s.mu.Unlock()

		if sub != nil {
			sub.Close()
		}
		s.wg.Wait()
	})
}

// SetSearch updates the search term and recomputes the projection.
func (s *Store) SetSearch(term string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || s.searchTerm == term {
		return
	}
	s.searchTerm = term
	s.refilterLocked()
}

// SetCategory updates the category selector (CategoryAll clears it) and
// recomputes the projection.
func (s *Store) SetCategory(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || s.selectedCategory == id {
		return
	}
	s.selectedCategory = id
	s.refilterLocked()
}

// refilterLocked is the single recomputation point for the derived list;
// every mutation of its three inputs funnels through here.
func (s *Store) refilterLocked() {
	s.filtered = Apply(s.productSet, s.searchTerm, s.selectedCategory)
}

// Snapshot is a point-in-time copy of the store state.
type Snapshot struct {
	Loading          bool
	Products         []domproduct.Product
	Categories       []domcategory.Category
	Filtered         []domproduct.Product
	SearchTerm       string
	SelectedCategory string
}

func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		Loading:          s.loading,
		Products:         append([]domproduct.Product(nil), s.productSet...),
		Categories:       append([]domcategory.Category(nil), s.categorySet...),
		Filtered:         append([]domproduct.Product(nil), s.filtered...),
		SearchTerm:       s.searchTerm,
		SelectedCategory: s.selectedCategory,
	}
}

// Detail is a single product together with its resolved category, if any.
type Detail struct {
	Product  domproduct.Product
	Category *domcategory.Category
}

// ProductDetail looks a product up by id. The category reference is
// resolved best-effort: a dangling reference or a failed category read
// leaves Category nil rather than failing the view.
func (s *Store) ProductDetail(ctx context.Context, id string) (*Detail, error) {
	p, err := s.products.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	detail := &Detail{Product: *p}
	if p.Category != nil {
		c, err := s.categories.GetByID(ctx, *p.Category)
		if err != nil {
			s.log.Debug("category reference not resolved",
				zap.String("product_id", p.ID),
				zap.String("category", *p.Category),
				zap.Error(err))
		} else {
			detail.Category = c
		}
	}
	return detail, nil
}
