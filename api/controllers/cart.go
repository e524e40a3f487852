package controllers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/hendrawijaya/shopfront-backend/api/middleware"
	"github.com/hendrawijaya/shopfront-backend/api/responses"
	"github.com/hendrawijaya/shopfront-backend/api/validators"
	cartsvc "github.com/hendrawijaya/shopfront-backend/internal/cart"
	"github.com/hendrawijaya/shopfront-backend/pkg/db/models"
	pkgerrors "github.com/hendrawijaya/shopfront-backend/pkg/errors"
	"github.com/hendrawijaya/shopfront-backend/pkg/logger"
)

// CartStore is the session cart surface the cart endpoints drive.
type CartStore interface {
	Add(ctx context.Context, sessionID string, line cartsvc.Line) error
	Update(ctx context.Context, sessionID string, productID uuid.UUID, quantity int) error
	Remove(ctx context.Context, sessionID string, productID uuid.UUID) error
	Clear(ctx context.Context, sessionID string) error
	Content(ctx context.Context, sessionID string) ([]cartsvc.Line, error)
	Total(ctx context.Context, sessionID string) (decimal.Decimal, error)
	TotalQuantity(ctx context.Context, sessionID string) (int, error)
}

// ProductReader resolves live product data when a line is added.
type ProductReader interface {
	GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error)
}

type cartAddRequest struct {
	ProductID uuid.UUID `json:"productId" validate:"required"`
	Quantity  int       `json:"quantity" validate:"required,min=1"`
}

type cartUpdateRequest struct {
	Quantity int `json:"quantity" validate:"required,min=1"`
}

type cartLineResponse struct {
	ProductID   uuid.UUID `json:"productId"`
	DisplayName string    `json:"displayName"`
	UnitPrice   string    `json:"unitPrice"`
	Quantity    int       `json:"quantity"`
	LineTotal   string    `json:"lineTotal"`
	Image       *string   `json:"image,omitempty"`
	Slug        string    `json:"slug,omitempty"`
}

type cartResponse struct {
	Lines         []cartLineResponse `json:"lines"`
	Total         string             `json:"total"`
	TotalQuantity int                `json:"totalQuantity"`
}

func newCartResponse(lines []cartsvc.Line) cartResponse {
	out := cartResponse{Lines: make([]cartLineResponse, 0, len(lines))}
	total := decimal.Zero
	for _, line := range lines {
		lineTotal := line.LineTotal()
		total = total.Add(lineTotal)
		out.TotalQuantity += line.Quantity
		out.Lines = append(out.Lines, cartLineResponse{
			ProductID:   line.ProductID,
			DisplayName: line.DisplayName,
			UnitPrice:   line.UnitPrice.StringFixed(2),
			Quantity:    line.Quantity,
			LineTotal:   lineTotal.StringFixed(2),
			Image:       line.Attributes.Image,
			Slug:        line.Attributes.Slug,
		})
	}
	out.Total = total.StringFixed(2)
	return out
}

// CartView serves the session's cart contents.
func CartView(store CartStore, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID, err := requireSession(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		lines, err := store.Content(r.Context(), sessionID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCartResponse(lines))
	}
}

// CartAdd resolves the product against the live catalog, checks stock for the
// resulting quantity, and upserts the line with a captured price snapshot.
func CartAdd(store CartStore, products ProductReader, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID, err := requireSession(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload cartAddRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := products.GetProduct(r.Context(), payload.ProductID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if !product.IsActive {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "product not found"))
			return
		}

		existing, err := store.Content(r.Context(), sessionID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		resulting := payload.Quantity
		for _, line := range existing {
			if line.ProductID == product.ID {
				resulting += line.Quantity
			}
		}
		if !product.InStock(resulting) {
			responses.WriteError(r.Context(), logg, w,
				pkgerrors.New(pkgerrors.CodeValidation, "insufficient stock").
					WithDetails(map[string]any{"available": product.StockQuantity}))
			return
		}

		line := cartsvc.Line{
			ProductID:   product.ID,
			DisplayName: product.Name,
			UnitPrice:   product.CurrentPrice(),
			Quantity:    payload.Quantity,
			Attributes: cartsvc.Attributes{
				Image: product.FeaturedImage(),
				Slug:  product.Slug,
				Stock: product.StockQuantity,
			},
		}
		if err := store.Add(r.Context(), sessionID, line); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		lines, err := store.Content(r.Context(), sessionID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, newCartResponse(lines))
	}
}

// CartUpdate replaces a line's quantity.
func CartUpdate(store CartStore, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID, err := requireSession(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		productID, err := uuid.Parse(chi.URLParam(r, "productId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid product id"))
			return
		}

		var payload cartUpdateRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := store.Update(r.Context(), sessionID, productID, payload.Quantity); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		lines, err := store.Content(r.Context(), sessionID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCartResponse(lines))
	}
}

// CartRemove drops a line; removing an absent product succeeds.
func CartRemove(store CartStore, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID, err := requireSession(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		productID, err := uuid.Parse(chi.URLParam(r, "productId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid product id"))
			return
		}

		if err := store.Remove(r.Context(), sessionID, productID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		lines, err := store.Content(r.Context(), sessionID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCartResponse(lines))
	}
}

// CartClear empties the session cart.
func CartClear(store CartStore, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID, err := requireSession(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := store.Clear(r.Context(), sessionID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCartResponse(nil))
	}
}

func requireSession(r *http.Request) (string, error) {
	sessionID := middleware.SessionIDFromContext(r.Context())
	if sessionID == "" {
		return "", pkgerrors.New(pkgerrors.CodeInternal, "session context missing")
	}
	return sessionID, nil
}
