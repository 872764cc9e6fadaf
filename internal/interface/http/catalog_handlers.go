package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	domnotify "example.com/storefront/internal/domain/notify"
	domproduct "example.com/storefront/internal/domain/product"
	"example.com/storefront/internal/usecase/catalog"
	"example.com/storefront/internal/usecase/pricing"
)

func (a *API) handleListProducts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	selected := r.URL.Query().Get("category")
	if selected == "" {
		selected = catalog.CategoryAll
	}

	// The projection is computed request-locally from one snapshot;
	// per-request parameters never pass through shared store state.
	snap := a.store.Snapshot()
	filtered := catalog.Apply(snap.Products, q, selected)

	writeJSON(w, http.StatusOK, map[string]any{
		"loading": snap.Loading,
		"data":    mapProducts(filtered),
		"total":   len(snap.Products),
		"toasts":  a.toasts.Drain(),
	})
}

func (a *API) handleGetProduct(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	customMonths := 0
	if raw := r.URL.Query().Get("installments"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			a.handleDomainError(w, pricing.ErrInvalidInstallments)
			return
		}
		customMonths = n
	}

	detail, err := a.store.ProductDetail(r.Context(), id)
	if err != nil {
		if errors.Is(err, domproduct.ErrProductNotFound) {
			// Terminal for this view: notify and send the user back to
			// the catalog root.
			writeJSON(w, http.StatusNotFound, map[string]any{
				"error":    err.Error(),
				"location": "/",
				"toasts": []domnotify.Notification{{
					Title:       "Product not found",
					Description: "the product you are looking for does not exist",
					Severity:    domnotify.SeverityDestructive,
				}},
			})
			return
		}
		a.handleDomainError(w, err)
		return
	}

	p := detail.Product
	resp := map[string]any{
		"product":      mapProduct(p),
		"price_pyg":    pricing.FormatPYG(p.Price),
		"installments": installmentPlans(p.Price),
	}
	if detail.Category != nil {
		resp["category"] = mapCategory(*detail.Category)
	}
	if customMonths > 0 {
		amount, err := pricing.Installment(p.Price, customMonths)
		if err != nil {
			a.handleDomainError(w, err)
			return
		}
		resp["custom_installment"] = map[string]any{
			"months": customMonths,
			"amount": amount,
		}
	}

	writeJSON(w, http.StatusOK, resp)
}

func (a *API) handleListCategories(w http.ResponseWriter, r *http.Request) {
	snap := a.store.Snapshot()
	writeJSON(w, http.StatusOK, map[string]any{
		"data": mapCategories(snap.Categories),
	})
}

func installmentPlans(usd float64) []map[string]any {
	plans := make([]map[string]any, 0, len(pricing.InstallmentPlans))
	for _, months := range pricing.InstallmentPlans {
		amount, err := pricing.Installment(usd, months)
		if err != nil {
			continue
		}
		plans = append(plans, map[string]any{
			"months": months,
			"amount": amount,
		})
	}
	return plans
}
