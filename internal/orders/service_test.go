package orders

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/hendrawijaya/shopfront-backend/pkg/db/models"
	"github.com/hendrawijaya/shopfront-backend/pkg/enums"
	pkgerrors "github.com/hendrawijaya/shopfront-backend/pkg/errors"
	"github.com/hendrawijaya/shopfront-backend/pkg/logger"
	"github.com/hendrawijaya/shopfront-backend/pkg/pagination"
)

func TestUpdateStatusRejectsUnknownStatus(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, newStubRepo())
	_, err := svc.UpdateStatus(context.Background(), uuid.New(), StatusUpdate{
		Status:        "lost",
		PaymentStatus: enums.PaymentStatusPending,
	})
	assertCode(t, err, pkgerrors.CodeValidation)
}

func TestUpdateStatusRequiresPaymentStatus(t *testing.T) {
	t.Parallel()

	repo := newStubRepo()
	order := repo.seedOrder(uuid.New())
	svc := newTestService(t, repo)

	_, err := svc.UpdateStatus(context.Background(), order.ID, StatusUpdate{Status: enums.OrderStatusProcessing})
	assertCode(t, err, pkgerrors.CodeValidation)

	details, ok := pkgerrors.As(err).Details().(map[string]string)
	if !ok {
		t.Fatalf("expected details map, got %T", pkgerrors.As(err).Details())
	}
	if _, present := details["paymentStatus"]; !present {
		t.Fatalf("expected paymentStatus detail, got %v", details)
	}
	if order.Status != enums.OrderStatusPending {
		t.Fatalf("rejected update must not touch the order, got %s", order.Status)
	}
}

func TestUpdateStatusMissingOrder(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, newStubRepo())
	_, err := svc.UpdateStatus(context.Background(), uuid.New(), StatusUpdate{
		Status:        enums.OrderStatusProcessing,
		PaymentStatus: enums.PaymentStatusPending,
	})
	assertCode(t, err, pkgerrors.CodeNotFound)
}

func TestUpdateStatusAllowsAnyTransition(t *testing.T) {
	t.Parallel()

	repo := newStubRepo()
	order := repo.seedOrder(uuid.New())
	order.Status = enums.OrderStatusDelivered

	svc := newTestService(t, repo)
	updated, err := svc.UpdateStatus(context.Background(), order.ID, StatusUpdate{
		Status:        enums.OrderStatusPending,
		PaymentStatus: enums.PaymentStatusPending,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.Status != enums.OrderStatusPending {
		t.Fatalf("expected pending, got %s", updated.Status)
	}
}

func TestShippedAtIsWriteOnce(t *testing.T) {
	t.Parallel()

	repo := newStubRepo()
	order := repo.seedOrder(uuid.New())
	svc := newTestService(t, repo)

	updated, err := svc.UpdateStatus(context.Background(), order.ID, StatusUpdate{
		Status:        enums.OrderStatusShipped,
		PaymentStatus: enums.PaymentStatusPaid,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.ShippedAt == nil {
		t.Fatal("expected shipped_at to be set")
	}
	first := *updated.ShippedAt

	if _, err := svc.UpdateStatus(context.Background(), order.ID, StatusUpdate{
		Status:        enums.OrderStatusPending,
		PaymentStatus: enums.PaymentStatusPaid,
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	time.Sleep(5 * time.Millisecond)
	updated, err = svc.UpdateStatus(context.Background(), order.ID, StatusUpdate{
		Status:        enums.OrderStatusShipped,
		PaymentStatus: enums.PaymentStatusPaid,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !updated.ShippedAt.Equal(first) {
		t.Fatalf("shipped_at rewritten: %s vs %s", updated.ShippedAt, first)
	}
}

func TestDeliveredAtSetOnce(t *testing.T) {
	t.Parallel()

	repo := newStubRepo()
	order := repo.seedOrder(uuid.New())
	svc := newTestService(t, repo)

	updated, err := svc.UpdateStatus(context.Background(), order.ID, StatusUpdate{
		Status:        enums.OrderStatusDelivered,
		PaymentStatus: enums.PaymentStatusPaid,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.DeliveredAt == nil {
		t.Fatal("expected delivered_at to be set")
	}
	if updated.ShippedAt != nil {
		t.Fatal("delivered must not backfill shipped_at")
	}
}

func TestUpdateStatusAppliesPaymentStatus(t *testing.T) {
	t.Parallel()

	repo := newStubRepo()
	order := repo.seedOrder(uuid.New())
	svc := newTestService(t, repo)

	updated, err := svc.UpdateStatus(context.Background(), order.ID, StatusUpdate{
		Status:        enums.OrderStatusProcessing,
		PaymentStatus: enums.PaymentStatusPaid,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.PaymentStatus != enums.PaymentStatusPaid {
		t.Fatalf("expected paid, got %s", updated.PaymentStatus)
	}
}

func TestGetForUserEnforcesOwnership(t *testing.T) {
	t.Parallel()

	repo := newStubRepo()
	owner := uuid.New()
	order := repo.seedOrder(owner)
	svc := newTestService(t, repo)

	if _, err := svc.GetForUser(context.Background(), owner, order.ID); err != nil {
		t.Fatalf("owner should see the order: %v", err)
	}

	_, err := svc.GetForUser(context.Background(), uuid.New(), order.ID)
	assertCode(t, err, pkgerrors.CodeForbidden)
}

func TestListRejectsBadStatusFilter(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, newStubRepo())
	_, _, err := svc.ListAll(context.Background(), ListQuery{Status: "unknown"})
	assertCode(t, err, pkgerrors.CodeValidation)
}

func TestListForUserScopesToOwner(t *testing.T) {
	t.Parallel()

	repo := newStubRepo()
	owner := uuid.New()
	repo.seedOrder(owner)
	repo.seedOrder(uuid.New())
	svc := newTestService(t, repo)

	list, meta, err := svc.ListForUser(context.Background(), owner, ListQuery{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("expected one order for owner, got %d", len(list))
	}
	if meta.Total != 1 {
		t.Fatalf("expected total 1, got %d", meta.Total)
	}
}

func newTestService(t *testing.T, repo Repository) *Service {
	t.Helper()
	log := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
	svc, err := NewService(repo, log)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return svc
}

func assertCode(t *testing.T, err error, code pkgerrors.Code) {
	t.Helper()
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != code {
		t.Fatalf("expected %s, got %v", code, err)
	}
}

type stubRepo struct {
	orders map[uuid.UUID]*models.Order
}

func newStubRepo() *stubRepo {
	return &stubRepo{orders: map[uuid.UUID]*models.Order{}}
}

func (s *stubRepo) seedOrder(userID uuid.UUID) *models.Order {
	order := &models.Order{
		ID:            uuid.New(),
		OrderNumber:   "ORD-20260830-TEST01",
		UserID:        userID,
		Status:        enums.OrderStatusPending,
		PaymentStatus: enums.PaymentStatusPending,
		PaymentMethod: enums.PaymentMethodCreditCard,
	}
	s.orders[order.ID] = order
	return order
}

func (s *stubRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubRepo) Create(ctx context.Context, order *models.Order) (*models.Order, error) {
	order.ID = uuid.New()
	s.orders[order.ID] = order
	return order, nil
}

func (s *stubRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	if order, ok := s.orders[id]; ok {
		return order, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubRepo) FindByOrderNumber(ctx context.Context, orderNumber string) (*models.Order, error) {
	for _, order := range s.orders {
		if order.OrderNumber == orderNumber {
			return order, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubRepo) List(ctx context.Context, filter ListFilter, page pagination.Params) ([]models.Order, int64, error) {
	var out []models.Order
	for _, order := range s.orders {
		if filter.UserID != uuid.Nil && order.UserID != filter.UserID {
			continue
		}
		if filter.Status != "" && order.Status.String() != filter.Status {
			continue
		}
		out = append(out, *order)
	}
	return out, int64(len(out)), nil
}

func (s *stubRepo) Update(ctx context.Context, order *models.Order) (*models.Order, error) {
	s.orders[order.ID] = order
	return order, nil
}
