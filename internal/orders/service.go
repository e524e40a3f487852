package orders

import (
	"context"
	stdErrors "errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/hendrawijaya/shopfront-backend/pkg/db/models"
	"github.com/hendrawijaya/shopfront-backend/pkg/enums"
	pkgerrors "github.com/hendrawijaya/shopfront-backend/pkg/errors"
	"github.com/hendrawijaya/shopfront-backend/pkg/logger"
	"github.com/hendrawijaya/shopfront-backend/pkg/pagination"
)

// StatusUpdate carries an admin's requested lifecycle change. Both statuses
// are required on every update; the admin form always submits both.
type StatusUpdate struct {
	Status        enums.OrderStatus
	PaymentStatus enums.PaymentStatus
}

// ListQuery narrows order listings.
type ListQuery struct {
	Status string
	Search string
	Page   pagination.Params
}

// Service owns order reads and the admin status lifecycle. Order creation goes
// through the checkout committer, which writes via the repository directly
// inside its transaction.
type Service struct {
	repo Repository
	log  *logger.Logger
}

// NewService builds the order service.
func NewService(repo Repository, log *logger.Logger) (*Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("order repository required")
	}
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Service{repo: repo, log: log}, nil
}

// GetForUser fetches an order on behalf of its owner. Another user's order is
// a forbidden access, not a missing one.
func (s *Service) GetForUser(ctx context.Context, userID, orderID uuid.UUID) (*models.Order, error) {
	order, err := s.get(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.UserID != userID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "order belongs to another user")
	}
	return order, nil
}

// Get fetches an order without ownership checks, for admin callers.
func (s *Service) Get(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	return s.get(ctx, orderID)
}

// GetByOrderNumber fetches an order by its public number, for admin callers.
func (s *Service) GetByOrderNumber(ctx context.Context, orderNumber string) (*models.Order, error) {
	order, err := s.repo.FindByOrderNumber(ctx, orderNumber)
	if err != nil {
		if stdErrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "fetching order")
	}
	return order, nil
}

// ListForUser returns the caller's own orders, newest first.
func (s *Service) ListForUser(ctx context.Context, userID uuid.UUID, query ListQuery) ([]models.Order, pagination.Meta, error) {
	if userID == uuid.Nil {
		return nil, pagination.Meta{}, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	return s.list(ctx, ListFilter{UserID: userID, Status: query.Status, Search: query.Search}, query.Page)
}

// ListAll returns orders across all users, for admin callers.
func (s *Service) ListAll(ctx context.Context, query ListQuery) ([]models.Order, pagination.Meta, error) {
	return s.list(ctx, ListFilter{Status: query.Status, Search: query.Search}, query.Page)
}

// UpdateStatus applies an admin lifecycle change. Any known status may be set
// regardless of the current one; shipped/delivered timestamps are written the
// first time their status is reached and never overwritten afterwards.
func (s *Service) UpdateStatus(ctx context.Context, orderID uuid.UUID, update StatusUpdate) (*models.Order, error) {
	details := map[string]string{}
	if !update.Status.IsValid() {
		details["status"] = fmt.Sprintf("unknown status %q", update.Status)
	}
	if !update.PaymentStatus.IsValid() {
		details["paymentStatus"] = fmt.Sprintf("unknown payment status %q", update.PaymentStatus)
	}
	if len(details) > 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid status update").WithDetails(details)
	}

	order, err := s.get(ctx, orderID)
	if err != nil {
		return nil, err
	}

	previous := order.Status
	order.Status = update.Status
	order.PaymentStatus = update.PaymentStatus

	now := time.Now().UTC()
	if update.Status == enums.OrderStatusShipped && order.ShippedAt == nil {
		order.ShippedAt = &now
	}
	if update.Status == enums.OrderStatusDelivered && order.DeliveredAt == nil {
		order.DeliveredAt = &now
	}

	updated, err := s.repo.Update(ctx, order)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "updating order status")
	}

	lctx := s.log.WithFields(ctx, map[string]any{
		"order_id": orderID.String(),
		"from":     previous.String(),
		"to":       update.Status.String(),
	})
	s.log.Info(lctx, "order status updated")
	return updated, nil
}

func (s *Service) get(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		if stdErrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "fetching order")
	}
	return order, nil
}

func (s *Service) list(ctx context.Context, filter ListFilter, page pagination.Params) ([]models.Order, pagination.Meta, error) {
	if filter.Status != "" {
		if _, err := enums.ParseOrderStatus(filter.Status); err != nil {
			return nil, pagination.Meta{}, pkgerrors.New(pkgerrors.CodeValidation, "invalid order status filter")
		}
	}
	list, total, err := s.repo.List(ctx, filter, page)
	if err != nil {
		return nil, pagination.Meta{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing orders")
	}
	return list, pagination.NewMeta(pagination.Normalize(page), total), nil
}
