package controllers

import (
	"context"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/hendrawijaya/shopfront-backend/internal/checkout"
	"github.com/hendrawijaya/shopfront-backend/pkg/db/models"
	"github.com/hendrawijaya/shopfront-backend/pkg/enums"
	pkgerrors "github.com/hendrawijaya/shopfront-backend/pkg/errors"
)

type stubCommitter struct {
	lastSessionID string
	lastInput     checkout.CommitInput
	err           error
}

func (s *stubCommitter) Commit(ctx context.Context, sessionID string, input checkout.CommitInput) (*models.Order, error) {
	s.lastSessionID = sessionID
	s.lastInput = input
	if s.err != nil {
		return nil, s.err
	}
	return &models.Order{
		ID:            uuid.New(),
		OrderNumber:   "ORD-20260830-K7M2QX",
		UserID:        input.UserID,
		TotalAmount:   decimal.RequireFromString("25.00"),
		Status:        enums.OrderStatusPending,
		PaymentStatus: enums.PaymentStatusPending,
		PaymentMethod: input.PaymentMethod,
	}, nil
}

func checkoutBody() map[string]any {
	return map[string]any{
		"paymentMethod": "credit_card",
		"sameAsBilling": true,
		"billingAddress": map[string]any{
			"firstName": "Ada",
			"lastName":  "Lovelace",
			"email":     "ada@example.test",
			"phone":     "020 7946 0958",
			"address":   "1 Analytical Way",
			"city":      "London",
			"state":     "LDN",
			"zip":       "E1",
			"country":   "GB",
		},
	}
}

func TestCheckoutCommitsSessionCart(t *testing.T) {
	t.Parallel()

	committer := &stubCommitter{}
	handler, cookie := withSession(Checkout(committer, nil))

	rec := doJSON(t, handler, http.MethodPost, "/checkout", cookie, checkoutBody())
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if committer.lastSessionID != cookie.Value {
		t.Fatalf("expected session %s, got %s", cookie.Value, committer.lastSessionID)
	}
	if committer.lastInput.PaymentMethod != enums.PaymentMethodCreditCard {
		t.Fatalf("unexpected payment method %s", committer.lastInput.PaymentMethod)
	}
	if !committer.lastInput.SameAsBilling {
		t.Fatal("sameAsBilling flag not forwarded")
	}
}

func TestCheckoutEmptyCartConflict(t *testing.T) {
	t.Parallel()

	committer := &stubCommitter{err: pkgerrors.New(pkgerrors.CodeEmptyCart, "cannot check out an empty cart")}
	handler, cookie := withSession(Checkout(committer, nil))

	rec := doJSON(t, handler, http.MethodPost, "/checkout", cookie, checkoutBody())
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}
	if apiErr := decodeError(t, rec); apiErr.Code != string(pkgerrors.CodeEmptyCart) {
		t.Fatalf("unexpected code %s", apiErr.Code)
	}
}

func TestCheckoutValidationDetailsForwarded(t *testing.T) {
	t.Parallel()

	committer := &stubCommitter{err: pkgerrors.New(pkgerrors.CodeValidation, "invalid checkout submission").
		WithDetails(map[string]string{"billing.firstName": "this field is required"})}
	handler, cookie := withSession(Checkout(committer, nil))

	rec := doJSON(t, handler, http.MethodPost, "/checkout", cookie, checkoutBody())
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	apiErr := decodeError(t, rec)
	details, ok := apiErr.Details.(map[string]any)
	if !ok || details["billing.firstName"] != "this field is required" {
		t.Fatalf("expected per-field details, got %+v", apiErr)
	}
}

func TestCheckoutRejectsUnknownBodyFields(t *testing.T) {
	t.Parallel()

	committer := &stubCommitter{}
	handler, cookie := withSession(Checkout(committer, nil))

	body := checkoutBody()
	body["cartTotal"] = "0.01"
	rec := doJSON(t, handler, http.MethodPost, "/checkout", cookie, body)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown field, got %d", rec.Code)
	}
}
