package cart

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	pkgerrors "github.com/hendrawijaya/shopfront-backend/pkg/errors"
)

// SessionStore is the KV substrate a cart lives in: one opaque payload per
// session, fetched and replaced whole within a single request.
type SessionStore interface {
	Get(ctx context.Context, sessionID string) (string, error)
	Put(ctx context.Context, sessionID string, payload string) error
	Forget(ctx context.Context, sessionID string) error
}

// Attributes carries display-only metadata captured at add time. It is never
// authoritative: the stock value here is a snapshot, not the live catalog.
type Attributes struct {
	Image *string `json:"image,omitempty"`
	Slug  string  `json:"slug,omitempty"`
	Stock int     `json:"stock,omitempty"`
}

// Line is one product entry in a session cart. Name and unit price are frozen
// at add time and honored through checkout.
type Line struct {
	ProductID   uuid.UUID       `json:"productId"`
	DisplayName string          `json:"displayName"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
	Quantity    int             `json:"quantity"`
	Attributes  Attributes      `json:"attributes"`
}

// LineTotal returns unit price times quantity.
func (l Line) LineTotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Store maintains the session-scoped productID → Line mapping. Stock checks
// against the live catalog are the caller's responsibility at add time.
type Store struct {
	sessions SessionStore
}

// NewStore builds a cart store over the provided session substrate.
func NewStore(sessions SessionStore) (*Store, error) {
	if sessions == nil {
		return nil, fmt.Errorf("session store required")
	}
	return &Store{sessions: sessions}, nil
}

// Add upserts a line. Adding a product already in the cart increments its
// quantity instead of duplicating the line.
func (s *Store) Add(ctx context.Context, sessionID string, line Line) error {
	if sessionID == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "session id required")
	}
	if line.ProductID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "product id required")
	}
	if line.Quantity < 1 {
		return pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
	}
	if line.UnitPrice.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation, "unit price cannot be negative")
	}

	lines, err := s.load(ctx, sessionID)
	if err != nil {
		return err
	}

	key := line.ProductID.String()
	if existing, ok := lines[key]; ok {
		existing.Quantity += line.Quantity
		lines[key] = existing
	} else {
		lines[key] = line
	}

	return s.save(ctx, sessionID, lines)
}

// Update replaces the quantity on an existing line. A missing line is an
// error rather than the source's silent no-op, so clients can tell a stale
// cart view apart from a successful update.
func (s *Store) Update(ctx context.Context, sessionID string, productID uuid.UUID, quantity int) error {
	if quantity < 1 {
		return pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
	}

	lines, err := s.load(ctx, sessionID)
	if err != nil {
		return err
	}

	key := productID.String()
	line, ok := lines[key]
	if !ok {
		return pkgerrors.New(pkgerrors.CodeNotFound, "product not in cart")
	}
	line.Quantity = quantity
	lines[key] = line

	return s.save(ctx, sessionID, lines)
}

// Remove deletes the line if present. Removing an absent product is not an
// error.
func (s *Store) Remove(ctx context.Context, sessionID string, productID uuid.UUID) error {
	lines, err := s.load(ctx, sessionID)
	if err != nil {
		return err
	}

	key := productID.String()
	if _, ok := lines[key]; !ok {
		return nil
	}
	delete(lines, key)

	if len(lines) == 0 {
		return s.sessions.Forget(ctx, sessionID)
	}
	return s.save(ctx, sessionID, lines)
}

// Clear empties the cart. Idempotent.
func (s *Store) Clear(ctx context.Context, sessionID string) error {
	return s.sessions.Forget(ctx, sessionID)
}

// Content returns the cart lines. Ordering is not significant; lines are
// sorted by product id so responses are stable.
func (s *Store) Content(ctx context.Context, sessionID string) ([]Line, error) {
	lines, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	out := make([]Line, 0, len(lines))
	for _, line := range lines {
		out = append(out, line)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].ProductID.String() < out[j].ProductID.String()
	})
	return out, nil
}

// Total returns the sum of unit price times quantity over all lines.
func (s *Store) Total(ctx context.Context, sessionID string) (decimal.Decimal, error) {
	lines, err := s.load(ctx, sessionID)
	if err != nil {
		return decimal.Zero, err
	}
	total := decimal.Zero
	for _, line := range lines {
		total = total.Add(line.LineTotal())
	}
	return total, nil
}

// TotalQuantity returns the sum of quantities over all lines.
func (s *Store) TotalQuantity(ctx context.Context, sessionID string) (int, error) {
	lines, err := s.load(ctx, sessionID)
	if err != nil {
		return 0, err
	}
	qty := 0
	for _, line := range lines {
		qty += line.Quantity
	}
	return qty, nil
}

func (s *Store) load(ctx context.Context, sessionID string) (map[string]Line, error) {
	payload, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading cart session")
	}
	if payload == "" {
		return map[string]Line{}, nil
	}

	var lines map[string]Line
	if err := json.Unmarshal([]byte(payload), &lines); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "decoding cart payload")
	}
	if lines == nil {
		lines = map[string]Line{}
	}
	return lines, nil
}

func (s *Store) save(ctx context.Context, sessionID string, lines map[string]Line) error {
	payload, err := json.Marshal(lines)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encoding cart payload")
	}
	if err := s.sessions.Put(ctx, sessionID, string(payload)); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "saving cart session")
	}
	return nil
}
