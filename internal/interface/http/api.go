package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	domcategory "example.com/storefront/internal/domain/category"
	domnotify "example.com/storefront/internal/domain/notify"
	domproduct "example.com/storefront/internal/domain/product"
	"example.com/storefront/internal/infra/security"
	"example.com/storefront/internal/usecase/catalog"
	"example.com/storefront/internal/usecase/categoryadmin"
	"example.com/storefront/internal/usecase/pricing"
)

// TokenVerifier checks admin bearer tokens.
type TokenVerifier interface {
	Verify(token string) (*security.Claims, error)
}

// Toasts is the drainable side of the notification surface; responses to
// admin operations carry the toasts the operation produced.
type Toasts interface {
	Drain() []domnotify.Notification
}

type API struct {
	store    *catalog.Store
	admin    *categoryadmin.Controller
	toasts   Toasts
	verifier TokenVerifier
	log      *zap.Logger
}

type Dependencies struct {
	Store    *catalog.Store
	Admin    *categoryadmin.Controller
	Toasts   Toasts
	Verifier TokenVerifier
	Log      *zap.Logger
}

func NewAPI(deps Dependencies) *API {
	return &API{
		store:    deps.Store,
		admin:    deps.Admin,
		toasts:   deps.Toasts,
		verifier: deps.Verifier,
		log:      deps.Log.Named("http"),
	}
}

func (a *API) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/products", a.handleListProducts)
		r.Get("/products/{id}", a.handleGetProduct)
		r.Get("/categories", a.handleListCategories)

		r.Group(func(ar chi.Router) {
			ar.Use(a.authMiddleware)

			ar.Route("/admin/categories", func(rr chi.Router) {
				rr.Get("/", a.handleAdminListCategories)
				rr.Post("/", a.handleAdminCreateCategory)
				rr.Put("/{id}", a.handleAdminUpdateCategory)
				rr.Delete("/{id}", a.handleAdminDeleteCategory)
			})
		})
	})

	return r
}

func (a *API) decodeJSON(r *http.Request, dst any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(dst)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

type errorResponse struct {
	Error  string                   `json:"error"`
	Toasts []domnotify.Notification `json:"toasts,omitempty"`
}

func respondError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func (a *API) respondErrorWithToasts(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, errorResponse{Error: err.Error(), Toasts: a.toasts.Drain()})
}

func (a *API) handleDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domcategory.ErrCategoryInvalidName),
		errors.Is(err, pricing.ErrInvalidInstallments),
		errors.Is(err, categoryadmin.ErrNoPendingDelete):
		a.respondErrorWithToasts(w, http.StatusUnprocessableEntity, err)
	case errors.Is(err, categoryadmin.ErrFormClosed):
		a.respondErrorWithToasts(w, http.StatusConflict, err)
	case errors.Is(err, domcategory.ErrCategoryNotFound),
		errors.Is(err, domproduct.ErrProductNotFound):
		a.respondErrorWithToasts(w, http.StatusNotFound, err)
	default:
		a.respondErrorWithToasts(w, http.StatusInternalServerError, err)
	}
}

func mapProduct(p domproduct.Product) map[string]any {
	return map[string]any{
		"id":           p.ID,
		"name":         p.Name,
		"description":  p.Description,
		"price":        p.Price,
		"image_url":    p.ImageURL,
		"category":     p.Category,
		"stock":        p.Stock,
		"created_at":   p.CreatedAt,
		"availability": p.Availability(),
	}
}

func mapProducts(products []domproduct.Product) []map[string]any {
	resp := make([]map[string]any, 0, len(products))
	for _, p := range products {
		resp = append(resp, mapProduct(p))
	}
	return resp
}

func mapCategory(c domcategory.Category) map[string]any {
	return map[string]any{
		"id":            c.ID,
		"name":          c.Name,
		"description":   c.Description,
		"display_order": c.DisplayOrder,
	}
}

func mapCategories(categories []domcategory.Category) []map[string]any {
	resp := make([]map[string]any, 0, len(categories))
	for _, c := range categories {
		resp = append(resp, mapCategory(c))
	}
	return resp
}
