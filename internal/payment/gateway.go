// Package payment drives the application-fee charge flow: a gateway port,
// the simulated gateway used outside production, and a processor that
// serializes charges per application.
package payment

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/collegeportal/admission-api/internal/models"
)

// ChargeRequest describes a single application-fee charge.
type ChargeRequest struct {
	ApplicationID string
	Mode          models.PaymentMode
	Amount        decimal.Decimal
}

// ChargeResult is a successful gateway response.
type ChargeResult struct {
	TransactionID string
	Date          time.Time
}

// Gateway is the payment provider port. A declined charge returns
// ErrPaymentDeclined (wrapped); other errors are provider failures.
type Gateway interface {
	Charge(ctx context.Context, req ChargeRequest) (*ChargeResult, error)
}
