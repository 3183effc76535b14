// Package checkout drives a single payment attempt: local validation,
// remote submission and the explicit fallback to a simulated payment
// when the backend is unreachable.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/shopspring/decimal"

	"zapateria-storefront/internal/cart"
	"zapateria-storefront/internal/domain"
	"zapateria-storefront/internal/notify"
	"zapateria-storefront/internal/payments"
	"zapateria-storefront/internal/vault"
)

// OrderPrefix is prepended to both remote and simulated order ids.
const OrderPrefix = "RD-"

// minCardDigits is the fewest digits a card number may carry before the
// request is rejected locally, without contacting the backend.
const minCardDigits = 12

// simulatedDelay emulates network latency on the fallback path.
const simulatedDelay = 1800 * time.Millisecond

// PaymentCreator is the slice of the payments client checkout needs.
type PaymentCreator interface {
	Create(ctx context.Context, body payments.CreateBody) (*payments.Payment, error)
}

// Result is the outcome of one checkout attempt. Failed attempts leave
// the cart and form untouched so the user can retry.
type Result struct {
	Success   bool
	OrderID   string
	Message   string
	Simulated bool
}

type Orchestrator struct {
	cart     *cart.Store
	payments PaymentCreator
	vault    *vault.Vault
	notifier notify.Notifier
	logger   *log.Logger

	delay time.Duration
	now   func() time.Time
	sleep func(context.Context, time.Duration)

	inFlight atomic.Bool
}

// Option adjusts orchestrator behavior, mainly for tests.
type Option func(*Orchestrator)

// WithDelay overrides the simulated-payment delay.
func WithDelay(d time.Duration) Option {
	return func(o *Orchestrator) { o.delay = d }
}

// WithClock overrides the clock the simulated order id derives from.
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) { o.now = now }
}

func New(c *cart.Store, pc PaymentCreator, v *vault.Vault, notifier notify.Notifier, logger *log.Logger, opts ...Option) *Orchestrator {
	if notifier == nil {
		notifier = notify.Discard{}
	}
	o := &Orchestrator{
		cart:     c,
		payments: pc,
		vault:    v,
		notifier: notifier,
		logger:   logger,
		delay:    simulatedDelay,
		now:      time.Now,
		sleep:    sleepCtx,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Submitting reports whether a checkout attempt is in flight, for
// disabling the submit control.
func (o *Orchestrator) Submitting() bool {
	return o.inFlight.Load()
}

// ProcessInput is the submit payload: the filled form plus the optional
// preset opt-in. SaveAsPreset only takes effect for an authenticated user.
type ProcessInput struct {
	Details      domain.PaymentDetails
	User         *domain.User
	SaveAsPreset bool
}

// Process runs the checkout state machine to completion. Re-entry while
// an attempt is outstanding fails fast without touching the network, so
// repeated submits cannot produce duplicate orders.
func (o *Orchestrator) Process(ctx context.Context, in ProcessInput) Result {
	if !o.inFlight.CompareAndSwap(false, true) {
		return Result{Message: "A payment is already being processed."}
	}
	defer o.inFlight.Store(false)

	items := o.cart.Items()
	if len(items) == 0 {
		return Result{Message: "Your cart is empty."}
	}
	digits := countCardDigits(in.Details.CardNumber)
	if digits < minCardDigits {
		return Result{Message: "Please enter a valid card number."}
	}

	summary := o.cart.Summary()
	orderID, simulated, err := o.submit(ctx, in.Details, summary.Subtotal, summary.Currency)
	if err != nil {
		var rejection *payments.RejectionError
		if errors.As(err, &rejection) {
			o.notifier.Error("Payment attempt failed", rejection.Message)
			return Result{Message: rejection.Message}
		}
		o.logf("payment failed: %v", err)
		o.notifier.Error("Payment attempt failed", "We couldn't process the payment. Please try again.")
		return Result{Message: "We couldn't process the payment. Please try again."}
	}

	o.cart.Clear()
	if in.SaveAsPreset && in.User != nil {
		o.vault.SavePreset(in.User.ID, vault.SavePresetInput{
			FullName:   in.Details.FullName,
			Email:      in.Details.Email,
			Address:    in.Details.Address,
			City:       in.Details.City,
			Country:    in.Details.Country,
			CardNumber: in.Details.CardNumber,
			Expiration: in.Details.Expiration,
		})
	}

	o.notifier.Success("Payment confirmed",
		fmt.Sprintf("Order %s is on its way to %s, %s.", orderID, in.Details.City, in.Details.Country))
	return Result{Success: true, OrderID: orderID, Simulated: simulated}
}

// submit attempts the remote payment first and, only when the backend is
// unreachable, falls through to the simulated path. Server rejections
// are returned to the caller, never simulated over.
func (o *Orchestrator) submit(ctx context.Context, details domain.PaymentDetails, amount decimal.Decimal, currency string) (orderID string, simulated bool, err error) {
	payment, err := o.payments.Create(ctx, payments.CreateBody{
		FullName:   details.FullName,
		Email:      details.Email,
		Address:    details.Address,
		City:       details.City,
		Country:    details.Country,
		CardNumber: details.CardNumber,
		Expiration: details.Expiration,
		CCV:        details.CVV,
		Amount:     amount,
		Currency:   currency,
	})
	switch {
	case err == nil:
		return OrderPrefix + payment.ID, false, nil
	case errors.Is(err, payments.ErrUnavailable):
		o.logf("payment backend unreachable, using simulated payment: %v", err)
		return o.simulate(ctx), true, nil
	default:
		return "", false, err
	}
}

// simulate manufactures a plausible successful payment without touching
// any backend. Development convenience only.
func (o *Orchestrator) simulate(ctx context.Context) string {
	o.sleep(ctx, o.delay)
	id := strconv.FormatInt(o.now().UnixMilli(), 36)
	return OrderPrefix + strings.ToUpper(id)
}

// countCardDigits counts digits in a card number, ignoring masking
// markers and separators.
func countCardDigits(cardNumber string) int {
	count := 0
	for _, r := range cardNumber {
		if r >= '0' && r <= '9' {
			count++
		}
	}
	return count
}

func sleepCtx(ctx context.Context, d time.Duration) {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}

func (o *Orchestrator) logf(format string, args ...interface{}) {
	if o.logger != nil {
		o.logger.Printf(format, args...)
	}
}
