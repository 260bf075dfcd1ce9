package payment

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"time"

	appErrors "github.com/collegeportal/admission-api/pkg/errors"

	"github.com/collegeportal/admission-api/internal/models"
)

// SimulatedGateway mimics a payment provider: it holds the charge for a
// configured processing time, then approves or declines. Used in every
// environment without real provider credentials.
type SimulatedGateway struct {
	processingTime time.Duration
	declineRate    float64
	now            func() time.Time
	roll           func() float64
}

// SimulatedOption customises the simulated gateway.
type SimulatedOption func(*SimulatedGateway)

// WithNow overrides the time source (tests).
func WithNow(now func() time.Time) SimulatedOption {
	return func(g *SimulatedGateway) {
		if now != nil {
			g.now = now
		}
	}
}

// WithRoll overrides the decline dice (tests).
func WithRoll(roll func() float64) SimulatedOption {
	return func(g *SimulatedGateway) {
		if roll != nil {
			g.roll = roll
		}
	}
}

// NewSimulatedGateway builds the gateway. declineRate is clamped to [0, 1].
func NewSimulatedGateway(processingTime time.Duration, declineRate float64, opts ...SimulatedOption) *SimulatedGateway {
	if declineRate < 0 {
		declineRate = 0
	}
	if declineRate > 1 {
		declineRate = 1
	}
	g := &SimulatedGateway{
		processingTime: processingTime,
		declineRate:    declineRate,
		now:            time.Now,
		roll:           cryptoRoll,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Charge validates the instrument, waits out the processing window, then
// approves or declines per the configured rate.
func (g *SimulatedGateway) Charge(ctx context.Context, req ChargeRequest) (*ChargeResult, error) {
	if !models.ValidPaymentMode(req.Mode) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unsupported payment mode")
	}
	if !req.Amount.IsPositive() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "charge amount must be positive")
	}

	if g.processingTime > 0 {
		timer := time.NewTimer(g.processingTime)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return nil, appErrors.Wrap(ctx.Err(), appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "payment processing interrupted")
		case <-timer.C:
		}
	}

	if g.roll() < g.declineRate {
		return nil, appErrors.Clone(appErrors.ErrPaymentDeclined,
			"Payment was declined by the bank. Please try again or use a different payment method.")
	}

	return &ChargeResult{
		TransactionID: NewTransactionID(),
		Date:          g.now().UTC(),
	}, nil
}

// NewTransactionID produces the TXNxxxxxxx receipt identifier.
func NewTransactionID() string {
	var buf [4]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return fmt.Sprintf("TXN%07d", time.Now().UnixNano()%9000000+1000000)
	}
	n := binary.BigEndian.Uint32(buf[:])
	return fmt.Sprintf("TXN%07d", n%9000000+1000000)
}

func cryptoRoll() float64 {
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return 1 // never decline on entropy failure
	}
	return float64(binary.BigEndian.Uint64(buf[:])>>11) / float64(1<<53)
}
