package preferences

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
	sq "github.com/square/square-go-sdk"
	"gorm.io/gorm"

	"github.com/merlotworks/wineclub-backend/pkg/db/models"
	"github.com/merlotworks/wineclub-backend/pkg/enums"
	pkgerrors "github.com/merlotworks/wineclub-backend/pkg/errors"
	"github.com/merlotworks/wineclub-backend/pkg/logger"
	"github.com/merlotworks/wineclub-backend/pkg/redis"
	"github.com/merlotworks/wineclub-backend/pkg/square"
)

const checkoutCurrency = "USD"

// memberLoader resolves the member a preference belongs to.
type memberLoader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Member, error)
}

// paymentClient charges a saved selection through Square.
type paymentClient interface {
	Configured() bool
	CreatePayment(ctx context.Context, params square.PaymentCreateParams) (*sq.Payment, error)
}

// Service stores member wine selections per shipment window and charges them
// at checkout.
type Service interface {
	SavePreference(ctx context.Context, input SavePreferenceInput) (*Preference, error)
	GetPreference(ctx context.Context, memberID uuid.UUID, window string) (*Preference, error)
	ListPreferences(ctx context.Context, memberID uuid.UUID) ([]Preference, error)
	DeletePreference(ctx context.Context, memberID uuid.UUID, window string) error
	Checkout(ctx context.Context, input CheckoutInput) (*CheckoutResult, error)
}

type service struct {
	kv       redis.KVStore
	members  memberLoader
	payments paymentClient
	logg     *logger.Logger
	now      func() time.Time
}

// NewService constructs a preference service. The payment client is optional;
// without it Checkout reports a dependency error.
func NewService(kv redis.KVStore, members memberLoader, payments paymentClient, logg *logger.Logger) (Service, error) {
	if kv == nil {
		return nil, fmt.Errorf("kv store required")
	}
	if members == nil {
		return nil, fmt.Errorf("member repository required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{kv: kv, members: members, payments: payments, logg: logg, now: time.Now}, nil
}

func (s *service) SavePreference(ctx context.Context, input SavePreferenceInput) (*Preference, error) {
	window, err := normalizeWindow(input.Window)
	if err != nil {
		return nil, err
	}
	if len(input.Selections) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "at least one wine selection required")
	}
	for i, selection := range input.Selections {
		if strings.TrimSpace(selection.VariationID) == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("selection %d missing variation id", i+1))
		}
		if selection.Quantity < 1 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("selection %d quantity must be at least 1", i+1))
		}
		if selection.PriceCents < 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("selection %d price cannot be negative", i+1))
		}
	}
	if input.DeliveryDate.IsZero() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "delivery date required")
	}

	member, err := s.loadMember(ctx, input.MemberID)
	if err != nil {
		return nil, err
	}
	if member.Status != enums.MemberStatusActive {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "only active members can save preferences")
	}

	pref := &Preference{
		MemberID:     member.ID,
		Window:       window,
		Selections:   input.Selections,
		DeliveryDate: input.DeliveryDate,
		UpdatedAt:    s.now().UTC(),
	}
	payload, err := json.Marshal(pref)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode preference")
	}
	key := s.kv.PreferenceKey(member.ID.String(), window)
	if err := s.kv.Set(ctx, key, payload, 0); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store preference")
	}
	return pref, nil
}

func (s *service) GetPreference(ctx context.Context, memberID uuid.UUID, window string) (*Preference, error) {
	normalized, err := normalizeWindow(window)
	if err != nil {
		return nil, err
	}
	if memberID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "member id required")
	}
	return s.loadPreference(ctx, s.kv.PreferenceKey(memberID.String(), normalized))
}

func (s *service) ListPreferences(ctx context.Context, memberID uuid.UUID) ([]Preference, error) {
	if memberID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "member id required")
	}
	keys, err := s.kv.ListKeys(ctx, s.kv.PreferencePrefix(memberID.String()))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list preference keys")
	}

	prefs := make([]Preference, 0, len(keys))
	for _, key := range keys {
		pref, err := s.loadPreference(ctx, key)
		if err != nil {
			// keys can vanish between SCAN and GET
			if typed := pkgerrors.As(err); typed != nil && typed.Code() == pkgerrors.CodeNotFound {
				continue
			}
			return nil, err
		}
		prefs = append(prefs, *pref)
	}
	sort.Slice(prefs, func(i, j int) bool { return prefs[i].Window < prefs[j].Window })
	return prefs, nil
}

func (s *service) DeletePreference(ctx context.Context, memberID uuid.UUID, window string) error {
	normalized, err := normalizeWindow(window)
	if err != nil {
		return err
	}
	if memberID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "member id required")
	}
	if err := s.kv.Del(ctx, s.kv.PreferenceKey(memberID.String(), normalized)); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete preference")
	}
	return nil
}

// Checkout charges the saved selection for the window. Every attempt carries a
// fresh idempotency key, so a retried request produces a new charge attempt
// rather than replaying a failed one.
func (s *service) Checkout(ctx context.Context, input CheckoutInput) (*CheckoutResult, error) {
	window, err := normalizeWindow(input.Window)
	if err != nil {
		return nil, err
	}
	if input.MemberID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "member id required")
	}
	if strings.TrimSpace(input.SourceID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payment source required")
	}
	if s.payments == nil || !s.payments.Configured() {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "payment provider is not configured")
	}

	member, err := s.loadMember(ctx, input.MemberID)
	if err != nil {
		return nil, err
	}
	if member.Status != enums.MemberStatusActive {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "only active members can check out")
	}
	if member.SquareCustomerID == nil || *member.SquareCustomerID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "member is not linked to a square customer")
	}

	pref, err := s.loadPreference(ctx, s.kv.PreferenceKey(member.ID.String(), window))
	if err != nil {
		return nil, err
	}
	total := pref.TotalCents()
	if total <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "saved selection has no charge amount")
	}

	payment, err := s.payments.CreatePayment(ctx, square.PaymentCreateParams{
		AmountCents:    total,
		Currency:       checkoutCurrency,
		CustomerID:     *member.SquareCustomerID,
		SourceID:       input.SourceID,
		IdempotencyKey: uuid.NewString(),
		Note:           fmt.Sprintf("Wine club shipment %s", window),
		ReferenceID:    fmt.Sprintf("%s:%s", member.ID, window),
	})
	if err != nil {
		return nil, err
	}

	result := &CheckoutResult{AmountCents: total, Currency: checkoutCurrency}
	if payment != nil {
		if id := payment.GetID(); id != nil {
			result.PaymentID = *id
		}
		if status := payment.GetStatus(); status != nil {
			result.Status = *status
		}
	}
	s.logg.Info(s.logg.WithFields(ctx, map[string]any{
		"member_id":    member.ID.String(),
		"window":       window,
		"amount_cents": total,
		"payment_id":   result.PaymentID,
	}), "preference checkout charged")
	return result, nil
}

func (s *service) loadMember(ctx context.Context, memberID uuid.UUID) (*models.Member, error) {
	if memberID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "member id required")
	}
	member, err := s.members.FindByID(ctx, memberID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "member not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load member")
	}
	return member, nil
}

func (s *service) loadPreference(ctx context.Context, key string) (*Preference, error) {
	raw, err := s.kv.Get(ctx, key)
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "no preference saved for that window")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load preference")
	}
	var pref Preference
	if err := json.Unmarshal([]byte(raw), &pref); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "decode preference")
	}
	return &pref, nil
}

func normalizeWindow(window string) (string, error) {
	trimmed := strings.TrimSpace(window)
	if trimmed == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "shipment window required")
	}
	if _, err := time.Parse(windowLayout, trimmed); err != nil {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "shipment window must look like 2026-09")
	}
	return trimmed, nil
}
