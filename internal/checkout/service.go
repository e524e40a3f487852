package checkout

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/hendrawijaya/shopfront-backend/internal/cart"
	"github.com/hendrawijaya/shopfront-backend/internal/orders"
	"github.com/hendrawijaya/shopfront-backend/pkg/config"
	"github.com/hendrawijaya/shopfront-backend/pkg/db"
	"github.com/hendrawijaya/shopfront-backend/pkg/db/models"
	"github.com/hendrawijaya/shopfront-backend/pkg/enums"
	pkgerrors "github.com/hendrawijaya/shopfront-backend/pkg/errors"
	"github.com/hendrawijaya/shopfront-backend/pkg/logger"
	"github.com/hendrawijaya/shopfront-backend/pkg/metrics"
	"github.com/hendrawijaya/shopfront-backend/pkg/types"
)

// CartReader is the slice of the cart store the committer needs: a snapshot of
// the lines and a best-effort clear after commit.
type CartReader interface {
	Content(ctx context.Context, sessionID string) ([]cart.Line, error)
	Clear(ctx context.Context, sessionID string) error
}

// TxRunner executes a function inside a database transaction.
type TxRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// CommitInput is everything a checkout submission carries besides the cart
// itself, which is read from the session.
type CommitInput struct {
	UserID          uuid.UUID
	PaymentMethod   enums.PaymentMethod
	BillingAddress  types.Address
	ShippingAddress types.Address
	SameAsBilling   bool
}

// Service turns a session cart into a durable order. The cart's captured
// prices are authoritative for the total; live catalog prices are not
// consulted at commit time.
type Service struct {
	carts      CartReader
	repo       orders.Repository
	tx         TxRunner
	cfg        config.CheckoutConfig
	maxLines   int
	log        *logger.Logger
	metrics    *metrics.CheckoutMetrics
	now        func() time.Time
	orderToken func(time.Time) (string, error)
}

// NewService builds the checkout committer.
func NewService(
	carts CartReader,
	repo orders.Repository,
	tx TxRunner,
	cfg config.CheckoutConfig,
	cartCfg config.CartConfig,
	log *logger.Logger,
	m *metrics.CheckoutMetrics,
) (*Service, error) {
	if carts == nil {
		return nil, fmt.Errorf("cart reader required")
	}
	if repo == nil {
		return nil, fmt.Errorf("order repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	if cfg.OrderNumberAttempts < 1 {
		cfg.OrderNumberAttempts = 1
	}
	return &Service{
		carts:      carts,
		repo:       repo,
		tx:         tx,
		cfg:        cfg,
		maxLines:   cartCfg.MaxLinesPerOrder,
		log:        log,
		metrics:    m,
		now:        time.Now,
		orderToken: generateOrderNumber,
	}, nil
}

// Commit validates the submission, snapshots the cart, and writes the order
// and its lines in one transaction. The cart is cleared afterwards on a
// best-effort basis; a clear failure does not undo the committed order.
func (s *Service) Commit(ctx context.Context, sessionID string, input CommitInput) (*models.Order, error) {
	started := s.now()
	order, err := s.commit(ctx, sessionID, input)
	if err != nil {
		s.metrics.ObserveDuration("failure", s.now().Sub(started))
		s.metrics.IncFailure(string(pkgerrors.As(err).Code()))
		return nil, err
	}
	s.metrics.ObserveDuration("success", s.now().Sub(started))
	s.metrics.IncSuccess(order.PaymentMethod.String())
	return order, nil
}

func (s *Service) commit(ctx context.Context, sessionID string, input CommitInput) (*models.Order, error) {
	if sessionID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "session id required")
	}
	if input.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	if err := s.validate(input); err != nil {
		return nil, err
	}

	shipping := input.ShippingAddress
	if input.SameAsBilling {
		shipping = input.BillingAddress.Clone()
	}

	lines, err := s.carts.Content(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeEmptyCart, "cannot check out an empty cart")
	}
	if s.maxLines > 0 && len(lines) > s.maxLines {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart exceeds the maximum number of lines")
	}

	total := decimal.Zero
	orderLines := make([]models.OrderLine, 0, len(lines))
	for _, line := range lines {
		lineTotal := line.LineTotal()
		total = total.Add(lineTotal)
		orderLines = append(orderLines, models.OrderLine{
			ProductID: line.ProductID,
			Name:      line.DisplayName,
			UnitPrice: line.UnitPrice,
			Quantity:  line.Quantity,
			LineTotal: lineTotal,
		})
	}

	order, err := s.persist(ctx, input, shipping, total, orderLines)
	if err != nil {
		return nil, err
	}

	if err := s.carts.Clear(ctx, sessionID); err != nil {
		lctx := s.log.WithFields(ctx, map[string]any{
			"order_number": order.OrderNumber,
			"session_id":   sessionID,
		})
		s.log.Warn(lctx, "order committed but cart clear failed")
	}

	lctx := s.log.WithFields(ctx, map[string]any{
		"order_number": order.OrderNumber,
		"total":        order.TotalAmount.String(),
		"lines":        len(order.Lines),
	})
	s.log.Info(lctx, "checkout committed")
	return order, nil
}

// persist retries order creation when the generated order number collides
// with an existing one. Each attempt runs in its own transaction.
func (s *Service) persist(
	ctx context.Context,
	input CommitInput,
	shipping types.Address,
	total decimal.Decimal,
	orderLines []models.OrderLine,
) (*models.Order, error) {
	var lastErr error
	for attempt := 0; attempt < s.cfg.OrderNumberAttempts; attempt++ {
		orderNumber, err := s.orderToken(s.now().UTC())
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generating order number")
		}

		order := &models.Order{
			OrderNumber:     orderNumber,
			UserID:          input.UserID,
			TotalAmount:     total,
			Status:          enums.OrderStatusPending,
			PaymentStatus:   enums.PaymentStatusPending,
			PaymentMethod:   input.PaymentMethod,
			BillingAddress:  input.BillingAddress,
			ShippingAddress: shipping,
			Lines:           cloneLines(orderLines),
		}

		txErr := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
			_, err := s.repo.WithTx(tx).Create(ctx, order)
			return err
		})
		if txErr == nil {
			return order, nil
		}
		if !db.IsUniqueViolation(txErr, "orders_order_number_key") {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, txErr, "persisting order")
		}
		lastErr = txErr
	}
	return nil, pkgerrors.Wrap(pkgerrors.CodeConflict, lastErr, "order number collisions exhausted retries")
}

func (s *Service) validate(input CommitInput) error {
	details := map[string]string{}
	if !input.PaymentMethod.IsValid() {
		details["paymentMethod"] = fmt.Sprintf("unknown payment method %q", input.PaymentMethod)
	}
	validateAddress("billing", input.BillingAddress, true, details)
	if !input.SameAsBilling {
		validateAddress("shipping", input.ShippingAddress, false, details)
	}
	if len(details) > 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid checkout submission").WithDetails(details)
	}
	return nil
}

func cloneLines(lines []models.OrderLine) []models.OrderLine {
	out := make([]models.OrderLine, len(lines))
	copy(out, lines)
	return out
}
