package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/shopfront/store-api/internal/core/domain"
	"github.com/shopfront/store-api/internal/core/ports"
)

const (
	defaultStepTimeout = 5 * time.Second
	defaultLockTTL     = 30 * time.Second

	confirmationSubject = "Order Confirmation"
)

// CheckoutConfig bounds the checkout pipeline.
type CheckoutConfig struct {
	// StepTimeout caps every store and notifier call.
	StepTimeout time.Duration
	// LockTTL is how long the per-user lock survives a crashed holder. It
	// must exceed the time all steps can take together.
	LockTTL time.Duration
}

// CheckoutService turns a cart into an order confirmation. Steps run in a
// fixed order and the first failure stops the pipeline, so the confirmed
// items are only removed after the buyer has been notified.
type CheckoutService struct {
	carts    ports.CartService
	users    ports.UserRepository
	notifier ports.Notifier
	locker   ports.Locker
	cfg      CheckoutConfig
	tracer   trace.Tracer
	log      zerolog.Logger
	newRef   func() string
}

func NewCheckoutService(
	carts ports.CartService,
	users ports.UserRepository,
	notifier ports.Notifier,
	locker ports.Locker,
	cfg CheckoutConfig,
	log zerolog.Logger,
) *CheckoutService {
	if cfg.StepTimeout <= 0 {
		cfg.StepTimeout = defaultStepTimeout
	}
	if cfg.LockTTL <= 0 {
		cfg.LockTTL = defaultLockTTL
	}
	return &CheckoutService{
		carts:    carts,
		users:    users,
		notifier: notifier,
		locker:   locker,
		cfg:      cfg,
		tracer:   otel.Tracer("github.com/shopfront/store-api/checkout"),
		log:      log,
		newRef:   uuid.NewString,
	}
}

// checkoutState is threaded through the pipeline; each step reads what the
// previous ones produced.
type checkoutState struct {
	userID string
	cart   *domain.Cart
	total  decimal.Decimal
	buyer  *domain.User
	ref    string
}

type checkoutStep struct {
	name string
	// timed steps cross an I/O boundary and run under StepTimeout.
	timed bool
	run   func(ctx context.Context, st *checkoutState) error
}

func (s *CheckoutService) pipeline() []checkoutStep {
	return []checkoutStep{
		{name: "load_cart", timed: true, run: s.loadCart},
		{name: "validate", run: validateCart},
		{name: "total", run: s.computeTotal},
		{name: "resolve_buyer", timed: true, run: s.resolveBuyer},
		{name: "notify", timed: true, run: s.notify},
		{name: "clear_cart", timed: true, run: s.clearCart},
	}
}

// ProcessCheckout runs the pipeline for userID while holding the user's
// checkout lock. On any error the cart is left exactly as it was.
func (s *CheckoutService) ProcessCheckout(ctx context.Context, userID string) (*domain.CheckoutResult, error) {
	ctx, span := s.tracer.Start(ctx, "checkout", trace.WithAttributes(attribute.String("user.id", userID)))
	defer span.End()

	release, err := s.lock(ctx, userID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "lock")
		return nil, err
	}
	defer s.unlock(ctx, userID, release)

	st := &checkoutState{userID: userID, ref: s.newRef()}
	for _, step := range s.pipeline() {
		if err := s.runStep(ctx, step, st); err != nil {
			span.SetStatus(codes.Error, step.name)
			s.log.Warn().Err(err).
				Str("user_id", userID).
				Str("order_ref", st.ref).
				Str("step", step.name).
				Msg("checkout aborted")
			return nil, err
		}
	}

	s.log.Info().
		Str("user_id", userID).
		Str("order_ref", st.ref).
		Str("total", st.total.StringFixed(2)).
		Int("items", len(st.cart.Items)).
		Msg("checkout completed")

	return &domain.CheckoutResult{
		OrderRef:        st.ref,
		Total:           st.total,
		ItemCount:       len(st.cart.Items),
		NotifiedAddress: st.buyer.Email,
		Status:          domain.CheckoutCompleted,
	}, nil
}

func (s *CheckoutService) runStep(ctx context.Context, step checkoutStep, st *checkoutState) error {
	ctx, span := s.tracer.Start(ctx, "checkout."+step.name)
	defer span.End()

	if step.timed {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.StepTimeout)
		defer cancel()
	}

	if err := step.run(ctx, st); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	return nil
}

func (s *CheckoutService) lock(ctx context.Context, userID string) (func(context.Context) error, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.StepTimeout)
	defer cancel()

	release, err := s.locker.Acquire(ctx, "checkout:"+userID, s.cfg.LockTTL)
	if err != nil {
		if errors.Is(err, domain.ErrCheckoutInProgress) {
			return nil, err
		}
		return nil, unavailable("acquire checkout lock", err)
	}
	return release, nil
}

// unlock runs even when the request context is already done.
func (s *CheckoutService) unlock(ctx context.Context, userID string, release func(context.Context) error) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.cfg.StepTimeout)
	defer cancel()

	if err := release(ctx); err != nil {
		s.log.Warn().Err(err).Str("user_id", userID).Msg("failed to release checkout lock")
	}
}

func (s *CheckoutService) loadCart(ctx context.Context, st *checkoutState) error {
	cart, err := s.carts.GetCart(ctx, st.userID)
	if err != nil {
		return unavailable("load cart", err)
	}
	st.cart = cart
	return nil
}

func validateCart(_ context.Context, st *checkoutState) error {
	if st.cart == nil || st.cart.IsEmpty() {
		return domain.ErrEmptyCart
	}
	return nil
}

func (s *CheckoutService) computeTotal(_ context.Context, st *checkoutState) error {
	st.total = s.carts.CalculateTotalPrice(st.cart)
	return nil
}

func (s *CheckoutService) resolveBuyer(ctx context.Context, st *checkoutState) error {
	user, err := s.users.FindByID(ctx, st.userID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return err
		}
		return unavailable("resolve buyer", err)
	}
	if user.Email == "" {
		return fmt.Errorf("resolve buyer: %w: no contact address", domain.ErrUserNotFound)
	}
	st.buyer = user
	return nil
}

// notify is attempted once per checkout; a failure here must keep the cart.
func (s *CheckoutService) notify(ctx context.Context, st *checkoutState) error {
	msg := domain.Notification{
		To:       st.buyer.Email,
		Subject:  confirmationSubject,
		Body:     ConfirmationBody(st.total),
		OrderRef: st.ref,
		Total:    st.total,
	}
	if err := s.notifier.Notify(ctx, msg); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrNotificationFailed, err)
	}
	return nil
}

// clearCart removes only the lines that were confirmed; the cart may have
// changed since load_cart because cart writes do not take the checkout lock.
func (s *CheckoutService) clearCart(ctx context.Context, st *checkoutState) error {
	if err := s.carts.ClearCheckedOut(ctx, st.userID, st.cart); err != nil {
		s.log.Error().Err(err).
			Str("user_id", st.userID).
			Str("order_ref", st.ref).
			Msg("buyer notified but cart was not cleared")
		return unavailable("clear cart", err)
	}
	return nil
}

// ConfirmationBody renders the order confirmation text for total.
func ConfirmationBody(total decimal.Decimal) string {
	return fmt.Sprintf("Thank you for your order. Total price: $%s", total.StringFixed(2))
}

func unavailable(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, domain.ErrDependencyUnavailable, err)
}
