package controllers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/hendrawijaya/shopfront-backend/api/responses"
	"github.com/hendrawijaya/shopfront-backend/api/validators"
	"github.com/hendrawijaya/shopfront-backend/internal/orders"
	"github.com/hendrawijaya/shopfront-backend/pkg/db/models"
	"github.com/hendrawijaya/shopfront-backend/pkg/enums"
	pkgerrors "github.com/hendrawijaya/shopfront-backend/pkg/errors"
	"github.com/hendrawijaya/shopfront-backend/pkg/logger"
	"github.com/hendrawijaya/shopfront-backend/pkg/pagination"
)

// AdminOrderService is the admin-facing slice of the order service.
type AdminOrderService interface {
	Get(ctx context.Context, orderID uuid.UUID) (*models.Order, error)
	ListAll(ctx context.Context, query orders.ListQuery) ([]models.Order, pagination.Meta, error)
	UpdateStatus(ctx context.Context, orderID uuid.UUID, update orders.StatusUpdate) (*models.Order, error)
}

type orderStatusRequest struct {
	Status        string `json:"status" validate:"required"`
	PaymentStatus string `json:"paymentStatus" validate:"required"`
}

// AdminOrderList serves every order with status filter and number search.
func AdminOrderList(svc AdminOrderService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, meta, err := svc.ListAll(r.Context(), orders.ListQuery{
			Status: r.URL.Query().Get("status"),
			Search: r.URL.Query().Get("q"),
			Page:   pagination.FromQuery(r.URL.Query()),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		out := make([]orderResponse, 0, len(list))
		for _, order := range list {
			out = append(out, newOrderResponse(order))
		}
		responses.WriteSuccessMeta(w, out, meta)
	}
}

// AdminOrderDetail serves one order regardless of owner.
func AdminOrderDetail(svc AdminOrderService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID, err := uuid.Parse(chi.URLParam(r, "orderId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid order id"))
			return
		}

		order, err := svc.Get(r.Context(), orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newOrderResponse(*order))
	}
}

// AdminOrderStatusUpdate applies a lifecycle change to an order.
func AdminOrderStatusUpdate(svc AdminOrderService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID, err := uuid.Parse(chi.URLParam(r, "orderId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid order id"))
			return
		}

		var payload orderStatusRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		update := orders.StatusUpdate{
			Status:        enums.OrderStatus(payload.Status),
			PaymentStatus: enums.PaymentStatus(payload.PaymentStatus),
		}

		order, err := svc.UpdateStatus(r.Context(), orderID, update)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newOrderResponse(*order))
	}
}
