package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	domcategory "example.com/storefront/internal/domain/category"
	domproduct "example.com/storefront/internal/domain/product"
	"example.com/storefront/internal/infra/notify"
	"example.com/storefront/internal/infra/realtime"
	"example.com/storefront/internal/infra/security"
	"example.com/storefront/internal/usecase/catalog"
	"example.com/storefront/internal/usecase/categoryadmin"
)

type memoryProductRepo struct {
	mu    sync.Mutex
	items []domproduct.Product
	err   error
}

func (m *memoryProductRepo) List(ctx context.Context) ([]domproduct.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	return append([]domproduct.Product(nil), m.items...), nil
}

func (m *memoryProductRepo) GetByID(ctx context.Context, id string) (*domproduct.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	for _, p := range m.items {
		if p.ID == id {
			cloned := p
			return &cloned, nil
		}
	}
	return nil, domproduct.ErrProductNotFound
}

type memoryCategoryRepo struct {
	mu          sync.Mutex
	nextID      int
	items       []domcategory.Category
	deleteCalls int
}

func (m *memoryCategoryRepo) List(ctx context.Context) ([]domcategory.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domcategory.Category(nil), m.items...), nil
}

func (m *memoryCategoryRepo) GetByID(ctx context.Context, id string) (*domcategory.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.items {
		if c.ID == id {
			cloned := c
			return &cloned, nil
		}
	}
	return nil, domcategory.ErrCategoryNotFound
}

func (m *memoryCategoryRepo) Create(ctx context.Context, c *domcategory.Category) (*domcategory.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	c.ID = "cat-" + strconv.Itoa(m.nextID)
	m.items = append(m.items, *c)
	return c, nil
}

func (m *memoryCategoryRepo) Update(ctx context.Context, c *domcategory.Category) (*domcategory.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.items {
		if m.items[i].ID == c.ID {
			m.items[i] = *c
			return c, nil
		}
	}
	return nil, domcategory.ErrCategoryNotFound
}

func (m *memoryCategoryRepo) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleteCalls++
	for i := range m.items {
		if m.items[i].ID == id {
			m.items = append(m.items[:i], m.items[i+1:]...)
			return nil
		}
	}
	return domcategory.ErrCategoryNotFound
}

type noopFeed struct{}

type noopSubscription struct{ events chan realtime.Event }

func (noopFeed) Subscribe(ctx context.Context, table string) (catalog.Subscription, error) {
	return &noopSubscription{events: make(chan realtime.Event)}, nil
}

func (s *noopSubscription) Events() <-chan realtime.Event { return s.events }
func (s *noopSubscription) Close()                        {}

type testEnv struct {
	api      *API
	products *memoryProductRepo
	repo     *memoryCategoryRepo
	store    *catalog.Store
}

func newTestEnv(t *testing.T, products []domproduct.Product, categories []domcategory.Category) *testEnv {
	t.Helper()
	return newTestEnvWithLogger(t, products, categories, zap.NewNop())
}

func newTestEnvWithLogger(t *testing.T, products []domproduct.Product, categories []domcategory.Category, apiLog *zap.Logger) *testEnv {
	t.Helper()

	productRepo := &memoryProductRepo{items: products}
	categoryRepo := &memoryCategoryRepo{items: categories}
	hub := notify.NewHub(zap.NewNop())

	store := catalog.NewStore(catalog.Dependencies{
		Products:   productRepo,
		Categories: categoryRepo,
		Feed:       noopFeed{},
		Notifier:   hub,
		Log:        zap.NewNop(),
	})
	t.Cleanup(store.Close)

	ctx := context.Background()
	require.NoError(t, store.LoadProducts(ctx))
	require.NoError(t, store.LoadCategories(ctx))

	admin := categoryadmin.NewController(categoryRepo, hub, zap.NewNop())
	require.NoError(t, admin.Refresh(ctx))

	api := NewAPI(Dependencies{
		Store:    store,
		Admin:    admin,
		Toasts:   hub,
		Verifier: security.NewTokenVerifier("test-secret"),
		Log:      apiLog,
	})

	return &testEnv{api: api, products: productRepo, repo: categoryRepo, store: store}
}

func (e *testEnv) request(t *testing.T, method, target, token string, body []byte) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != nil {
		req = httptest.NewRequest(method, target, bytes.NewReader(body))
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.api.Router().ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var payload map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	return payload
}

func catalogProducts() []domproduct.Product {
	home := "cat-home"
	desc := "lámpara de mesa con luz cálida"
	return []domproduct.Product{
		{ID: "p1", Name: "Lámpara", Description: &desc, Price: 10, Category: &home, CreatedAt: time.Now()},
		{ID: "p2", Name: "Notebook", Price: 500, CreatedAt: time.Now().Add(-time.Hour)},
	}
}

func catalogCategories() []domcategory.Category {
	return []domcategory.Category{{ID: "cat-home", Name: "Hogar", DisplayOrder: 1}}
}

func TestListProducts_NoFiltersReturnsEverything(t *testing.T) {
	env := newTestEnv(t, catalogProducts(), catalogCategories())

	rec := env.request(t, http.MethodGet, "/api/v1/products", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	payload := decodeBody(t, rec)
	require.Equal(t, false, payload["loading"])
	require.Len(t, payload["data"], 2)
	require.EqualValues(t, 2, payload["total"])
}

func TestListProducts_SearchAndCategoryFilters(t *testing.T) {
	env := newTestEnv(t, catalogProducts(), catalogCategories())

	rec := env.request(t, http.MethodGet, "/api/v1/products?q=luz", "", nil)
	payload := decodeBody(t, rec)
	data := payload["data"].([]any)
	require.Len(t, data, 1)
	require.Equal(t, "p1", data[0].(map[string]any)["id"])

	rec = env.request(t, http.MethodGet, "/api/v1/products?category=cat-home", "", nil)
	payload = decodeBody(t, rec)
	data = payload["data"].([]any)
	require.Len(t, data, 1)
	require.Equal(t, "p1", data[0].(map[string]any)["id"])

	rec = env.request(t, http.MethodGet, "/api/v1/products?q=notebook&category=cat-home", "", nil)
	payload = decodeBody(t, rec)
	require.Empty(t, payload["data"])
}

func TestListProducts_ConcurrentFiltersStayIsolated(t *testing.T) {
	env := newTestEnv(t, catalogProducts(), catalogCategories())
	router := env.api.Router()

	stop := make(chan struct{})
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-stop:
					return
				default:
				}
				req := httptest.NewRequest(http.MethodGet, "/api/v1/products", nil)
				router.ServeHTTP(httptest.NewRecorder(), req)
			}
		}()
	}

	// Under unfiltered load every filtered response must still reflect
	// this request's own query, never someone else's.
	for i := 0; i < 500; i++ {
		rec := env.request(t, http.MethodGet, "/api/v1/products?q=notebook", "", nil)
		require.Equal(t, http.StatusOK, rec.Code)

		payload := decodeBody(t, rec)
		data := payload["data"].([]any)
		require.Len(t, data, 1)
		require.Equal(t, "p2", data[0].(map[string]any)["id"])
	}

	close(stop)
	wg.Wait()
}

func TestGetProduct_DetailWithPricingAndCategory(t *testing.T) {
	env := newTestEnv(t, catalogProducts(), catalogCategories())

	rec := env.request(t, http.MethodGet, "/api/v1/products/p1", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	payload := decodeBody(t, rec)
	require.Equal(t, "₲ 73.000", payload["price_pyg"])

	category := payload["category"].(map[string]any)
	require.Equal(t, "Hogar", category["name"])

	plans := payload["installments"].([]any)
	require.Len(t, plans, 3)
	first := plans[0].(map[string]any)
	require.EqualValues(t, 3, first["months"])
}

func TestGetProduct_CustomInstallments(t *testing.T) {
	env := newTestEnv(t, catalogProducts(), catalogCategories())

	rec := env.request(t, http.MethodGet, "/api/v1/products/p1?installments=5", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	payload := decodeBody(t, rec)
	custom := payload["custom_installment"].(map[string]any)
	require.EqualValues(t, 5, custom["months"])

	rec = env.request(t, http.MethodGet, "/api/v1/products/p1?installments=0", "", nil)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = env.request(t, http.MethodGet, "/api/v1/products/p1?installments=-3", "", nil)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestGetProduct_NotFoundNavigatesBack(t *testing.T) {
	env := newTestEnv(t, catalogProducts(), catalogCategories())

	rec := env.request(t, http.MethodGet, "/api/v1/products/no-such-id", "", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)

	payload := decodeBody(t, rec)
	require.Equal(t, "/", payload["location"], "view is terminal: navigate back to the catalog root")

	toasts := payload["toasts"].([]any)
	require.Len(t, toasts, 1)
	toast := toasts[0].(map[string]any)
	require.Equal(t, "Product not found", toast["title"])
	require.Equal(t, "destructive", toast["severity"])
}

func TestListCategories_FromSnapshot(t *testing.T) {
	env := newTestEnv(t, catalogProducts(), catalogCategories())

	rec := env.request(t, http.MethodGet, "/api/v1/categories", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	payload := decodeBody(t, rec)
	data := payload["data"].([]any)
	require.Len(t, data, 1)
	require.Equal(t, "Hogar", data[0].(map[string]any)["name"])
}
