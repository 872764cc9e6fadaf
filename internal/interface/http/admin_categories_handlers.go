package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"example.com/storefront/internal/usecase/categoryadmin"
)

func (a *API) handleAdminListCategories(w http.ResponseWriter, r *http.Request) {
	if err := a.admin.Refresh(r.Context()); err != nil {
		a.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"data":   mapCategories(a.admin.Categories()),
		"toasts": a.toasts.Drain(),
	})
}

func (a *API) handleAdminCreateCategory(w http.ResponseWriter, r *http.Request) {
	var form categoryadmin.Form
	if err := a.decodeJSON(r, &form); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	a.admin.OpenCreate()
	if err := a.admin.Submit(r.Context(), form); err != nil {
		a.handleDomainError(w, err)
		return
	}
	a.logAdminAction(r, "category created")

	writeJSON(w, http.StatusCreated, map[string]any{
		"data":   mapCategories(a.admin.Categories()),
		"toasts": a.toasts.Drain(),
	})
}

func (a *API) handleAdminUpdateCategory(w http.ResponseWriter, r *http.Request) {
	var form categoryadmin.Form
	if err := a.decodeJSON(r, &form); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	// The edit target is bound in a single call so a concurrent PUT for
	// another id cannot redirect this one.
	if err := a.admin.SubmitEdit(r.Context(), chi.URLParam(r, "id"), form); err != nil {
		a.handleDomainError(w, err)
		return
	}
	a.logAdminAction(r, "category updated")

	writeJSON(w, http.StatusOK, map[string]any{
		"data":   mapCategories(a.admin.Categories()),
		"toasts": a.toasts.Drain(),
	})
}

// handleAdminDeleteCategory implements the explicit confirmation step:
// without confirm=true the delete is only armed and nothing reaches the
// gateway.
func (a *API) handleAdminDeleteCategory(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	a.admin.RequestDelete(id)

	if r.URL.Query().Get("confirm") != "true" {
		a.admin.CancelDelete()
		writeJSON(w, http.StatusOK, map[string]any{
			"confirm_required": true,
			"id":               id,
		})
		return
	}

	if err := a.admin.ConfirmDelete(r.Context()); err != nil {
		a.handleDomainError(w, err)
		return
	}
	a.logAdminAction(r, "category deleted")

	writeJSON(w, http.StatusOK, map[string]any{
		"data":   mapCategories(a.admin.Categories()),
		"toasts": a.toasts.Drain(),
	})
}
