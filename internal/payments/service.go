package payments

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v84"

	"github.com/boutique2v/commerce-backend/internal/orders"
	"github.com/boutique2v/commerce-backend/internal/pricing"
	"github.com/boutique2v/commerce-backend/internal/settings"
	"github.com/boutique2v/commerce-backend/pkg/db/models"
	"github.com/boutique2v/commerce-backend/pkg/enums"
	pkgerrors "github.com/boutique2v/commerce-backend/pkg/errors"
	"github.com/boutique2v/commerce-backend/pkg/logger"
)

// Quoter prices a checkout without persisting anything.
type Quoter interface {
	Quote(ctx context.Context, input orders.QuoteInput) (*pricing.OrderTotals, error)
}

// OrderStore is the order persistence surface webhook handling needs.
type OrderStore interface {
	FindByPaymentIntent(ctx context.Context, intentID string) (*models.Order, error)
	Save(ctx context.Context, order *models.Order) (*models.Order, error)
}

// IntentInput describes the checkout a payment intent is priced against.
type IntentInput struct {
	Items          []orders.ItemInput
	ShippingMethod string
}

// IntentResult is what the client needs to confirm a card payment.
type IntentResult struct {
	IntentID     string  `json:"intent_id"`
	ClientSecret string  `json:"client_secret"`
	Amount       float64 `json:"amount"`
	Currency     string  `json:"currency"`
}

// Service exposes payment intent creation and webhook processing.
type Service interface {
	CreateIntent(ctx context.Context, userID uuid.UUID, input IntentInput) (*IntentResult, error)
	HandleEvent(ctx context.Context, event *stripe.Event) error
}

// ServiceParams wires the payment service dependencies.
type ServiceParams struct {
	Stripe   StripePaymentClient
	Quoter   Quoter
	Orders   OrderStore
	Settings settings.Provider
	Logger   *logger.Logger
}

type service struct {
	stripe   StripePaymentClient
	quoter   Quoter
	orders   OrderStore
	settings settings.Provider
	logg     *logger.Logger
}

// NewService constructs the payment service.
func NewService(params ServiceParams) (Service, error) {
	if params.Stripe == nil {
		return nil, fmt.Errorf("stripe client required")
	}
	if params.Quoter == nil {
		return nil, fmt.Errorf("quoter required")
	}
	if params.Orders == nil {
		return nil, fmt.Errorf("order store required")
	}
	if params.Settings == nil {
		return nil, fmt.Errorf("settings provider required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		stripe:   params.Stripe,
		quoter:   params.Quoter,
		orders:   params.Orders,
		settings: params.Settings,
		logg:     params.Logger,
	}, nil
}

// CreateIntent prices the checkout with the same calculator the order will
// use and opens a Stripe payment intent for that exact amount.
func (s *service) CreateIntent(ctx context.Context, userID uuid.UUID, input IntentInput) (*IntentResult, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}

	totals, err := s.quoter.Quote(ctx, orders.QuoteInput{
		Items:          input.Items,
		ShippingMethod: input.ShippingMethod,
		PaymentMethod:  orders.PaymentMethodCard,
	})
	if err != nil {
		return nil, err
	}
	if totals.Amount <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "checkout amount must be positive")
	}

	currency := "usd"
	if setting, settingsErr := s.settings.Current(ctx); settingsErr == nil && setting.Currency != "" {
		currency = strings.ToLower(setting.Currency)
	}

	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(toCents(totals.Amount)),
		Currency: stripe.String(currency),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	params.AddMetadata("user_id", userID.String())

	intent, err := s.stripe.CreateIntent(ctx, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "creating payment intent")
	}

	ctx = s.logg.WithUserID(ctx, userID.String())
	s.logg.Info(ctx, fmt.Sprintf("payment intent %s created", intent.ID))

	return &IntentResult{
		IntentID:     intent.ID,
		ClientSecret: intent.ClientSecret,
		Amount:       totals.Amount,
		Currency:     currency,
	}, nil
}

// HandleEvent reacts to payment intent outcomes. An intent with no matching
// order is not an error: intents are opened before the order row exists, and
// the checkout records the final status itself.
func (s *service) HandleEvent(ctx context.Context, event *stripe.Event) error {
	if event == nil || event.Data == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "stripe event data required")
	}

	switch event.Type {
	case stripe.EventTypePaymentIntentSucceeded:
		return s.markIntent(ctx, event, enums.PaymentStatusPaid)
	case stripe.EventTypePaymentIntentPaymentFailed:
		return s.markIntent(ctx, event, enums.PaymentStatusFailed)
	default:
		return nil
	}
}

func (s *service) markIntent(ctx context.Context, event *stripe.Event, status enums.PaymentStatus) error {
	var intent stripe.PaymentIntent
	if err := json.Unmarshal(event.Data.Raw, &intent); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode payment intent event")
	}
	if intent.ID == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "payment intent id missing")
	}

	order, err := s.orders.FindByPaymentIntent(ctx, intent.ID)
	if err != nil {
		if errors.Is(err, orders.ErrNotFound) {
			s.logg.Warn(ctx, fmt.Sprintf("payment intent %s has no order yet", intent.ID))
			return nil
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading order for intent")
	}

	if order.PaymentStatus == status {
		return nil
	}
	order.PaymentStatus = status
	if _, err := s.orders.Save(ctx, order); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "saving payment status")
	}

	ctx = s.logg.WithOrderID(ctx, order.ID.String())
	s.logg.Info(ctx, fmt.Sprintf("payment status set to %s", status))
	return nil
}

func toCents(amount float64) int64 {
	return int64(math.Round(amount * 100))
}
