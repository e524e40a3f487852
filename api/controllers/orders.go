package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/hendrawijaya/shopfront-backend/api/middleware"
	"github.com/hendrawijaya/shopfront-backend/api/responses"
	"github.com/hendrawijaya/shopfront-backend/internal/orders"
	"github.com/hendrawijaya/shopfront-backend/pkg/db/models"
	pkgerrors "github.com/hendrawijaya/shopfront-backend/pkg/errors"
	"github.com/hendrawijaya/shopfront-backend/pkg/logger"
	"github.com/hendrawijaya/shopfront-backend/pkg/pagination"
	"github.com/hendrawijaya/shopfront-backend/pkg/types"
)

// OrderReader is the buyer-facing slice of the order service.
type OrderReader interface {
	GetForUser(ctx context.Context, userID, orderID uuid.UUID) (*models.Order, error)
	ListForUser(ctx context.Context, userID uuid.UUID, query orders.ListQuery) ([]models.Order, pagination.Meta, error)
}

type orderLineResponse struct {
	ProductID uuid.UUID `json:"productId"`
	Name      string    `json:"name"`
	UnitPrice string    `json:"unitPrice"`
	Quantity  int       `json:"quantity"`
	LineTotal string    `json:"lineTotal"`
}

type orderResponse struct {
	ID              uuid.UUID           `json:"id"`
	OrderNumber     string              `json:"orderNumber"`
	Status          string              `json:"status"`
	PaymentStatus   string              `json:"paymentStatus"`
	PaymentMethod   string              `json:"paymentMethod"`
	TotalAmount     string              `json:"totalAmount"`
	BillingAddress  types.Address       `json:"billingAddress"`
	ShippingAddress types.Address       `json:"shippingAddress"`
	ShippedAt       *time.Time          `json:"shippedAt,omitempty"`
	DeliveredAt     *time.Time          `json:"deliveredAt,omitempty"`
	Lines           []orderLineResponse `json:"lines"`
	CreatedAt       time.Time           `json:"createdAt"`
}

func newOrderResponse(order models.Order) orderResponse {
	resp := orderResponse{
		ID:              order.ID,
		OrderNumber:     order.OrderNumber,
		Status:          order.Status.String(),
		PaymentStatus:   order.PaymentStatus.String(),
		PaymentMethod:   order.PaymentMethod.String(),
		TotalAmount:     order.TotalAmount.StringFixed(2),
		BillingAddress:  order.BillingAddress,
		ShippingAddress: order.ShippingAddress,
		ShippedAt:       order.ShippedAt,
		DeliveredAt:     order.DeliveredAt,
		Lines:           make([]orderLineResponse, 0, len(order.Lines)),
		CreatedAt:       order.CreatedAt,
	}
	for _, line := range order.Lines {
		resp.Lines = append(resp.Lines, orderLineResponse{
			ProductID: line.ProductID,
			Name:      line.Name,
			UnitPrice: line.UnitPrice.StringFixed(2),
			Quantity:  line.Quantity,
			LineTotal: line.LineTotal.StringFixed(2),
		})
	}
	return resp
}

// OrderList serves the caller's own orders, newest first.
func OrderList(svc OrderReader, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := middleware.UserIDFromContext(r.Context())

		list, meta, err := svc.ListForUser(r.Context(), userID, orders.ListQuery{
			Status: r.URL.Query().Get("status"),
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

// OrderDetail serves one of the caller's orders.
func OrderDetail(svc OrderReader, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := middleware.UserIDFromContext(r.Context())

		orderID, err := uuid.Parse(chi.URLParam(r, "orderId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid order id"))
			return
		}

		order, err := svc.GetForUser(r.Context(), userID, orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newOrderResponse(*order))
	}
}
