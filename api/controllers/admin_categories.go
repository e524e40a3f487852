package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/hendrawijaya/shopfront-backend/api/responses"
	"github.com/hendrawijaya/shopfront-backend/api/validators"
	"github.com/hendrawijaya/shopfront-backend/internal/catalog"
	pkgerrors "github.com/hendrawijaya/shopfront-backend/pkg/errors"
	"github.com/hendrawijaya/shopfront-backend/pkg/logger"
)

type categoryRequest struct {
	Slug        string  `json:"slug" validate:"required,min=2,max=120"`
	Name        string  `json:"name" validate:"required,min=2,max=255"`
	Description *string `json:"description,omitempty"`
	IsActive    bool    `json:"isActive"`
}

func (c categoryRequest) toInput() catalog.CategoryInput {
	return catalog.CategoryInput{
		Slug:        c.Slug,
		Name:        c.Name,
		Description: c.Description,
		IsActive:    c.IsActive,
	}
}

// AdminCategoryList serves every category, inactive ones included.
func AdminCategoryList(svc AdminCatalogService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		categories, err := svc.ListCategories(r.Context(), false)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		out := make([]categoryResponse, 0, len(categories))
		for _, category := range categories {
			out = append(out, newCategoryResponse(category))
		}
		responses.WriteSuccess(w, out)
	}
}

// AdminCategoryCreate inserts a category.
func AdminCategoryCreate(svc AdminCatalogService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload categoryRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		category, err := svc.CreateCategory(r.Context(), payload.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, newCategoryResponse(*category))
	}
}

// AdminCategoryUpdate replaces a category's writable fields.
func AdminCategoryUpdate(svc AdminCatalogService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		categoryID, err := uuid.Parse(chi.URLParam(r, "categoryId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid category id"))
			return
		}

		var payload categoryRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		category, err := svc.UpdateCategory(r.Context(), categoryID, payload.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCategoryResponse(*category))
	}
}

// AdminCategoryDelete removes a category.
func AdminCategoryDelete(svc AdminCatalogService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		categoryID, err := uuid.Parse(chi.URLParam(r, "categoryId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid category id"))
			return
		}

		if err := svc.DeleteCategory(r.Context(), categoryID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}
