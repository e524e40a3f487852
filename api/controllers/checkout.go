package controllers

import (
	"context"
	"net/http"

	"github.com/hendrawijaya/shopfront-backend/api/middleware"
	"github.com/hendrawijaya/shopfront-backend/api/responses"
	"github.com/hendrawijaya/shopfront-backend/api/validators"
	"github.com/hendrawijaya/shopfront-backend/internal/checkout"
	"github.com/hendrawijaya/shopfront-backend/pkg/db/models"
	"github.com/hendrawijaya/shopfront-backend/pkg/enums"
	pkgerrors "github.com/hendrawijaya/shopfront-backend/pkg/errors"
	"github.com/hendrawijaya/shopfront-backend/pkg/logger"
	"github.com/hendrawijaya/shopfront-backend/pkg/types"
)

// CheckoutCommitter turns the session cart into a durable order.
type CheckoutCommitter interface {
	Commit(ctx context.Context, sessionID string, input checkout.CommitInput) (*models.Order, error)
}

type addressPayload struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Address   string `json:"address"`
	City      string `json:"city"`
	State     string `json:"state"`
	Zip       string `json:"zip"`
	Country   string `json:"country"`
}

type checkoutRequest struct {
	PaymentMethod   string         `json:"paymentMethod" validate:"required"`
	BillingAddress  addressPayload `json:"billingAddress"`
	ShippingAddress addressPayload `json:"shippingAddress"`
	SameAsBilling   bool           `json:"sameAsBilling"`
}

func (a addressPayload) toAddress() types.Address {
	return types.Address{
		FirstName: a.FirstName,
		LastName:  a.LastName,
		Email:     a.Email,
		Phone:     a.Phone,
		Address:   a.Address,
		City:      a.City,
		State:     a.State,
		Zip:       a.Zip,
		Country:   a.Country,
	}
}

// Checkout commits the session cart. Field-level address validation happens in
// the committer so every violation is reported in one response.
func Checkout(svc CheckoutCommitter, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}

		sessionID := middleware.SessionIDFromContext(r.Context())
		if sessionID == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "session context missing"))
			return
		}

		var payload checkoutRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := checkout.CommitInput{
			UserID:          middleware.UserIDFromContext(r.Context()),
			PaymentMethod:   enums.PaymentMethod(payload.PaymentMethod),
			BillingAddress:  payload.BillingAddress.toAddress(),
			ShippingAddress: payload.ShippingAddress.toAddress(),
			SameAsBilling:   payload.SameAsBilling,
		}

		order, err := svc.Commit(r.Context(), sessionID, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, newOrderResponse(*order))
	}
}
