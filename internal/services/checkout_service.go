package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strconv"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"acp_checkout_echo/internal/models"
)

var (
	// ErrSessionNotFound is returned when a session id is unknown.
	ErrSessionNotFound = errors.New("session not found")
	// ErrSessionCompleted is returned when a mutation targets a session
	// that already reached a terminal status.
	ErrSessionCompleted = errors.New("session already completed")
)

// Logical endpoint names scoping the idempotency key space, so the same
// client key cannot collide across unrelated operations.
const (
	endpointCreate   = "create"
	endpointComplete = "complete"
)

// SessionView is the session representation returned to callers and cached
// for idempotent replay.
type SessionView struct {
	ID              string               `json:"id"`
	Status          models.SessionStatus `json:"status"`
	Cart            models.Cart          `json:"cart"`
	PaymentIntentID string               `json:"payment_intent_id,omitempty"`
}

type CreateSessionInput struct {
	Items              []models.LineItem
	Buyer              models.Buyer
	Currency           string
	SharedPaymentToken string
	IdempotencyKey     string
}

// UpdateSessionInput carries partial-update fields. Nil means "keep the
// stored value"; totals are always recomputed from the merged inputs.
type UpdateSessionInput struct {
	Items     []models.LineItem
	Buyer     *models.Buyer
	Currency  *string
	PromoCode *string
}

// CheckoutService owns the session lifecycle. It is the only component
// that mutates session and order rows.
type CheckoutService struct {
	db          *gorm.DB
	gateway     PaymentGateway
	idempotency IdempotencyStore
}

func NewCheckoutService(db *gorm.DB, gateway PaymentGateway, idempotency IdempotencyStore) *CheckoutService {
	return &CheckoutService{db: db, gateway: gateway, idempotency: idempotency}
}

// Create prices the cart, opens a gateway intent for the grand total and
// persists the new session with its cart snapshot. With an idempotency key,
// a replay returns the first response without re-running any of that.
func (s *CheckoutService) Create(ctx context.Context, in CreateSessionInput) (*SessionView, error) {
	if view, ok, err := s.replay(ctx, endpointCreate, in.IdempotencyKey); err != nil {
		return nil, err
	} else if ok {
		return view, nil
	}

	totals, err := ComputeTotals(in.Items, in.Currency, "", priceLookup(s.db.WithContext(ctx)))
	if err != nil {
		return nil, err
	}

	intent, err := s.gateway.CreateIntent(ctx, CreateIntentInput{
		AmountMinor:        totals.GrandTotalMinor,
		Currency:           in.Currency,
		BuyerEmail:         in.Buyer.Email,
		SharedPaymentToken: in.SharedPaymentToken,
		Metadata: map[string]string{
			"buyer_email": in.Buyer.Email,
			"item_count":  strconv.Itoa(len(in.Items)),
		},
	})
	if err != nil {
		return nil, err
	}

	itemsJSON, err := json.Marshal(in.Items)
	if err != nil {
		return nil, err
	}
	totalsJSON, err := json.Marshal(totals)
	if err != nil {
		return nil, err
	}
	buyerJSON, err := json.Marshal(in.Buyer)
	if err != nil {
		return nil, err
	}

	session := models.CheckoutSession{
		ID:              uuid.NewString(),
		Status:          models.SessionStatusRequiresConfirmation,
		PaymentIntentID: intent.ID,
		BuyerEmail:      in.Buyer.Email,
		Buyer:           buyerJSON,
		Currency:        in.Currency,
		Items:           itemsJSON,
		Totals:          totalsJSON,
	}
	if err := s.db.WithContext(ctx).Create(&session).Error; err != nil {
		return nil, err
	}

	view, err := sessionView(&session)
	if err != nil {
		return nil, err
	}
	s.remember(ctx, endpointCreate, in.IdempotencyKey, view)
	return view, nil
}

// Update merges the supplied fields into the stored cart inputs and
// recomputes the totals from scratch. Terminal sessions are rejected.
// Updates are naturally idempotent, so no idempotency key is involved.
func (s *CheckoutService) Update(ctx context.Context, sessionID string, in UpdateSessionInput) (*SessionView, error) {
	var view *SessionView
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var session models.CheckoutSession
		if err := tx.First(&session, "id = ?", sessionID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrSessionNotFound
			}
			return err
		}
		if session.Status.Terminal() {
			return ErrSessionCompleted
		}

		cart, err := decodeCart(&session)
		if err != nil {
			return err
		}

		items := cart.Items
		if in.Items != nil {
			items = in.Items
		}
		if in.Currency != nil {
			session.Currency = *in.Currency
		}
		if in.PromoCode != nil {
			session.PromoCode = *in.PromoCode
		}
		if in.Buyer != nil {
			buyerJSON, err := json.Marshal(*in.Buyer)
			if err != nil {
				return err
			}
			session.Buyer = buyerJSON
			session.BuyerEmail = in.Buyer.Email
		}

		totals, err := ComputeTotals(items, session.Currency, session.PromoCode, priceLookup(tx))
		if err != nil {
			return err
		}

		itemsJSON, err := json.Marshal(items)
		if err != nil {
			return err
		}
		totalsJSON, err := json.Marshal(totals)
		if err != nil {
			return err
		}
		session.Items = itemsJSON
		session.Totals = totalsJSON

		// The status guard on the write closes the race with a concurrent
		// completion; the snapshot is written whole or not at all.
		result := tx.Model(&models.CheckoutSession{}).
			Where("id = ? AND status = ?", sessionID, models.SessionStatusRequiresConfirmation).
			Updates(map[string]interface{}{
				"buyer_email": session.BuyerEmail,
				"buyer":       session.Buyer,
				"currency":    session.Currency,
				"promo_code":  session.PromoCode,
				"items":       session.Items,
				"totals":      session.Totals,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrSessionCompleted
		}

		view, err = sessionView(&session)
		return err
	})
	if err != nil {
		return nil, err
	}
	return view, nil
}

// Complete settles the session: confirm the gateway intent, transition to
// the terminal status and, on success, record exactly one Order. The
// transition is a conditional update, so concurrent completions cannot both
// win; the loser returns the recorded terminal result.
func (s *CheckoutService) Complete(ctx context.Context, sessionID, idempotencyKey string) (*SessionView, error) {
	if view, ok, err := s.replay(ctx, endpointComplete, idempotencyKey); err != nil {
		return nil, err
	} else if ok {
		return view, nil
	}

	var session models.CheckoutSession
	if err := s.db.WithContext(ctx).First(&session, "id = ?", sessionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}

	// Re-completing a settled session returns the recorded outcome without
	// another gateway call.
	if session.Status.Terminal() {
		view, err := sessionView(&session)
		if err != nil {
			return nil, err
		}
		s.remember(ctx, endpointComplete, idempotencyKey, view)
		return view, nil
	}

	gatewayStatus, err := s.gateway.ConfirmIntent(ctx, session.PaymentIntentID)
	if err != nil {
		return nil, err
	}

	// Anything short of succeeded, pending and requires_action included,
	// settles as failed: there is no multi-step authentication flow here.
	finalStatus := models.SessionStatusFailed
	if gatewayStatus == string(models.SessionStatusSucceeded) {
		finalStatus = models.SessionStatusSucceeded
	}

	cart, err := decodeCart(&session)
	if err != nil {
		return nil, err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.CheckoutSession{}).
			Where("id = ? AND status = ?", session.ID, models.SessionStatusRequiresConfirmation).
			Update("status", finalStatus)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			// Lost the race against another completion; surface whatever
			// terminal state the winner recorded.
			return tx.First(&session, "id = ?", session.ID).Error
		}

		session.Status = finalStatus
		if finalStatus != models.SessionStatusSucceeded {
			return nil
		}

		order := models.Order{
			ID:              uuid.NewString(),
			SessionID:       session.ID,
			PaymentIntentID: session.PaymentIntentID,
			BuyerEmail:      session.BuyerEmail,
			AmountMinor:     cart.Totals.GrandTotalMinor,
			Currency:        session.Currency,
			Items:           session.Items,
		}
		return tx.Create(&order).Error
	})
	if err != nil {
		return nil, err
	}

	view, err := sessionView(&session)
	if err != nil {
		return nil, err
	}
	s.remember(ctx, endpointComplete, idempotencyKey, view)
	return view, nil
}

// replay consults the idempotency store. A hit reproduces the previously
// returned response and never raises a domain error.
func (s *CheckoutService) replay(ctx context.Context, endpoint, key string) (*SessionView, bool, error) {
	if key == "" {
		return nil, false, nil
	}
	raw, ok, err := s.idempotency.Lookup(ctx, endpoint, key)
	if err != nil {
		return nil, false, fmt.Errorf("idempotency lookup: %w", err)
	}
	if !ok {
		return nil, false, nil
	}
	var view SessionView
	if err := json.Unmarshal(raw, &view); err != nil {
		// A corrupt record cannot replay; treat it as a miss.
		log.Printf("idempotency record for %s/%s is unreadable: %v", endpoint, key, err)
		return nil, false, nil
	}
	return &view, true, nil
}

// remember caches the finalized response under (endpoint, key). Called only
// after the operation fully succeeded.
func (s *CheckoutService) remember(ctx context.Context, endpoint, key string, view *SessionView) {
	if key == "" {
		return
	}
	raw, err := json.Marshal(view)
	if err != nil {
		log.Printf("failed to serialize idempotency record for %s/%s: %v", endpoint, key, err)
		return
	}
	if err := s.idempotency.Store(ctx, endpoint, key, raw); err != nil {
		log.Printf("failed to store idempotency record for %s/%s: %v", endpoint, key, err)
	}
}

func decodeCart(session *models.CheckoutSession) (models.Cart, error) {
	var cart models.Cart
	if len(session.Items) > 0 {
		if err := json.Unmarshal(session.Items, &cart.Items); err != nil {
			return cart, fmt.Errorf("decode cart items: %w", err)
		}
	}
	if len(session.Totals) > 0 {
		if err := json.Unmarshal(session.Totals, &cart.Totals); err != nil {
			return cart, fmt.Errorf("decode cart totals: %w", err)
		}
	}
	return cart, nil
}

func sessionView(session *models.CheckoutSession) (*SessionView, error) {
	cart, err := decodeCart(session)
	if err != nil {
		return nil, err
	}
	return &SessionView{
		ID:              session.ID,
		Status:          session.Status,
		Cart:            cart,
		PaymentIntentID: session.PaymentIntentID,
	}, nil
}
