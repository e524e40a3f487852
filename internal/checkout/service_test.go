package checkout

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/hendrawijaya/shopfront-backend/internal/cart"
	"github.com/hendrawijaya/shopfront-backend/internal/orders"
	"github.com/hendrawijaya/shopfront-backend/pkg/config"
	"github.com/hendrawijaya/shopfront-backend/pkg/db/models"
	"github.com/hendrawijaya/shopfront-backend/pkg/enums"
	pkgerrors "github.com/hendrawijaya/shopfront-backend/pkg/errors"
	"github.com/hendrawijaya/shopfront-backend/pkg/logger"
	"github.com/hendrawijaya/shopfront-backend/pkg/pagination"
	"github.com/hendrawijaya/shopfront-backend/pkg/types"
)

func TestCommitEmptyCart(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	_, err := env.svc.Commit(context.Background(), "sess-1", validInput())
	assertCode(t, err, pkgerrors.CodeEmptyCart)
}

func TestCommitAccumulatesValidationErrors(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	input := CommitInput{
		UserID:        uuid.New(),
		PaymentMethod: "cheque",
		SameAsBilling: false,
	}
	_, err := env.svc.Commit(context.Background(), "sess-1", input)
	assertCode(t, err, pkgerrors.CodeValidation)

	details, ok := pkgerrors.As(err).Details().(map[string]string)
	if !ok {
		t.Fatalf("expected details map, got %T", pkgerrors.As(err).Details())
	}
	for _, key := range []string{"paymentMethod", "billing.firstName", "billing.email", "shipping.firstName"} {
		if _, present := details[key]; !present {
			t.Fatalf("expected detail for %s, got %v", key, details)
		}
	}
}

func TestCommitRejectsMalformedBillingFields(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	env.addLine(t, "sess-1", "10.00", 1)

	input := validInput()
	input.BillingAddress.Email = "definitely not an email"
	input.BillingAddress.Zip = strings.Repeat("9", 40)
	input.BillingAddress.Phone = ""

	_, err := env.svc.Commit(context.Background(), "sess-1", input)
	assertCode(t, err, pkgerrors.CodeValidation)

	details, ok := pkgerrors.As(err).Details().(map[string]string)
	if !ok {
		t.Fatalf("expected details map, got %T", pkgerrors.As(err).Details())
	}
	if details["billing.email"] != "must be a valid email address" {
		t.Fatalf("expected email format detail, got %v", details)
	}
	if details["billing.zip"] != "must be at most 10 characters" {
		t.Fatalf("expected zip length detail, got %v", details)
	}
	if details["billing.phone"] != "this field is required" {
		t.Fatalf("expected phone detail, got %v", details)
	}
}

func TestCommitSameAsBillingCopiesAddress(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	env.addLine(t, "sess-1", "10.00", 2)

	input := validInput()
	input.SameAsBilling = true
	input.ShippingAddress = types.Address{}

	order, err := env.svc.Commit(context.Background(), "sess-1", input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if order.ShippingAddress != input.BillingAddress {
		t.Fatalf("expected shipping to mirror billing, got %+v", order.ShippingAddress)
	}
}

func TestCommitUsesCapturedPrices(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	env.addLine(t, "sess-1", "10.00", 2)
	env.addLine(t, "sess-1", "5.00", 1)

	order, err := env.svc.Commit(context.Background(), "sess-1", validInput())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := decimal.RequireFromString("25.00"); !order.TotalAmount.Equal(want) {
		t.Fatalf("expected total %s, got %s", want, order.TotalAmount)
	}
	if len(order.Lines) != 2 {
		t.Fatalf("expected two lines, got %d", len(order.Lines))
	}
	for _, line := range order.Lines {
		if !line.LineTotal.Equal(line.UnitPrice.Mul(decimal.NewFromInt(int64(line.Quantity)))) {
			t.Fatalf("line total mismatch: %+v", line)
		}
	}
}

func TestCommitClearsCart(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	env.addLine(t, "sess-1", "10.00", 1)

	if _, err := env.svc.Commit(context.Background(), "sess-1", validInput()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	lines, err := env.carts.Content(context.Background(), "sess-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(lines) != 0 {
		t.Fatalf("expected cart to be cleared, got %d lines", len(lines))
	}
}

func TestCommitSucceedsWhenClearFails(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	env.addLine(t, "sess-1", "10.00", 1)
	env.carts.clearErr = errors.New("redis down")

	order, err := env.svc.Commit(context.Background(), "sess-1", validInput())
	if err != nil {
		t.Fatalf("clear failure must not fail the commit: %v", err)
	}
	if order == nil || order.OrderNumber == "" {
		t.Fatal("expected a committed order")
	}
}

func TestCommitRetriesOrderNumberCollision(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	env.addLine(t, "sess-1", "10.00", 1)
	env.repo.failCreates(1, errors.New(`duplicate key value violates unique constraint "orders_order_number_key"`))

	order, err := env.svc.Commit(context.Background(), "sess-1", validInput())
	if err != nil {
		t.Fatalf("expected retry to succeed: %v", err)
	}
	if env.repo.createCalls != 2 {
		t.Fatalf("expected 2 create attempts, got %d", env.repo.createCalls)
	}
	if order.OrderNumber == "" {
		t.Fatal("expected an order number")
	}
}

func TestCommitExhaustsCollisionRetries(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	env.addLine(t, "sess-1", "10.00", 1)
	env.repo.failCreates(10, errors.New(`duplicate key value violates unique constraint "orders_order_number_key"`))

	_, err := env.svc.Commit(context.Background(), "sess-1", validInput())
	assertCode(t, err, pkgerrors.CodeConflict)
	if env.repo.createCalls != 3 {
		t.Fatalf("expected %d attempts, got %d", 3, env.repo.createCalls)
	}
}

func TestCommitPersistFailureKeepsCart(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	env.addLine(t, "sess-1", "10.00", 1)
	env.repo.failCreates(1, errors.New("connection reset"))

	_, err := env.svc.Commit(context.Background(), "sess-1", validInput())
	assertCode(t, err, pkgerrors.CodeInternal)

	lines, contentErr := env.carts.Content(context.Background(), "sess-1")
	if contentErr != nil {
		t.Fatalf("unexpected error: %v", contentErr)
	}
	if len(lines) != 1 {
		t.Fatalf("failed commit must not clear the cart, got %d lines", len(lines))
	}
}

func TestCommitOrderNumberFormat(t *testing.T) {
	t.Parallel()

	number, err := generateOrderNumber(time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(number) != len("ORD-20260830-")+tokenLength {
		t.Fatalf("unexpected length: %s", number)
	}
	if number[:13] != "ORD-20260830-" {
		t.Fatalf("unexpected prefix: %s", number)
	}
}

type testEnv struct {
	svc   *Service
	carts *stubCarts
	repo  *stubOrderRepo
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	carts := newStubCarts()
	repo := newStubOrderRepo()
	log := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
	svc, err := NewService(
		carts,
		repo,
		stubTxRunner{},
		config.CheckoutConfig{OrderNumberAttempts: 3},
		config.CartConfig{MaxLinesPerOrder: 100},
		log,
		nil,
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return &testEnv{svc: svc, carts: carts, repo: repo}
}

func (e *testEnv) addLine(t *testing.T, sessionID, price string, qty int) {
	t.Helper()
	e.carts.lines[sessionID] = append(e.carts.lines[sessionID], cart.Line{
		ProductID:   uuid.New(),
		DisplayName: fmt.Sprintf("Product %d", len(e.carts.lines[sessionID])+1),
		UnitPrice:   decimal.RequireFromString(price),
		Quantity:    qty,
	})
}

func validInput() CommitInput {
	addr := types.Address{
		FirstName: "Ada",
		LastName:  "Lovelace",
		Email:     "ada@example.test",
		Phone:     "020 7946 0958",
		Address:   "1 Analytical Way",
		City:      "London",
		State:     "LDN",
		Zip:       "E1",
		Country:   "GB",
	}
	return CommitInput{
		UserID:          uuid.New(),
		PaymentMethod:   enums.PaymentMethodCreditCard,
		BillingAddress:  addr,
		ShippingAddress: addr,
	}
}

func assertCode(t *testing.T, err error, code pkgerrors.Code) {
	t.Helper()
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != code {
		t.Fatalf("expected %s, got %v", code, err)
	}
}

type stubCarts struct {
	lines    map[string][]cart.Line
	clearErr error
}

func newStubCarts() *stubCarts {
	return &stubCarts{lines: map[string][]cart.Line{}}
}

func (s *stubCarts) Content(ctx context.Context, sessionID string) ([]cart.Line, error) {
	return s.lines[sessionID], nil
}

func (s *stubCarts) Clear(ctx context.Context, sessionID string) error {
	if s.clearErr != nil {
		return s.clearErr
	}
	delete(s.lines, sessionID)
	return nil
}

type stubTxRunner struct{}

func (stubTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type stubOrderRepo struct {
	created     []*models.Order
	createCalls int

	failuresLeft int
	failErr      error
}

func newStubOrderRepo() *stubOrderRepo {
	return &stubOrderRepo{}
}

func (s *stubOrderRepo) failCreates(n int, err error) {
	s.failuresLeft = n
	s.failErr = err
}

func (s *stubOrderRepo) WithTx(tx *gorm.DB) orders.Repository { return s }

func (s *stubOrderRepo) Create(ctx context.Context, order *models.Order) (*models.Order, error) {
	s.createCalls++
	if s.failuresLeft > 0 {
		s.failuresLeft--
		return nil, s.failErr
	}
	order.ID = uuid.New()
	s.created = append(s.created, order)
	return order, nil
}

func (s *stubOrderRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	return nil, gorm.ErrRecordNotFound
}

func (s *stubOrderRepo) FindByOrderNumber(ctx context.Context, orderNumber string) (*models.Order, error) {
	return nil, gorm.ErrRecordNotFound
}

func (s *stubOrderRepo) List(ctx context.Context, filter orders.ListFilter, page pagination.Params) ([]models.Order, int64, error) {
	return nil, 0, nil
}

func (s *stubOrderRepo) Update(ctx context.Context, order *models.Order) (*models.Order, error) {
	return order, nil
}
