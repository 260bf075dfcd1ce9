package payment

import (
	"context"
	"sync"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	appErrors "github.com/collegeportal/admission-api/pkg/errors"

	"github.com/collegeportal/admission-api/internal/models"
)

// Processor runs at most one charge per application at a time. A failed
// charge clears the guard so the applicant can retry; a completed one is
// final and later attempts are rejected.
type Processor struct {
	gateway Gateway
	logger  *zap.Logger

	mu       sync.Mutex
	inFlight map[string]struct{}
}

// NewProcessor builds a processor around the given gateway.
func NewProcessor(gateway Gateway, logger *zap.Logger) *Processor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Processor{
		gateway:  gateway,
		logger:   logger,
		inFlight: make(map[string]struct{}),
	}
}

// Process charges the application fee and returns finalized payment details.
// On decline the error carries the gateway message and the returned details
// record the failed attempt, so the caller can both surface the message and
// keep the attempt history.
func (p *Processor) Process(ctx context.Context, app models.Application, mode models.PaymentMode, amount decimal.Decimal) (*models.PaymentDetails, error) {
	if app.PaymentDetails != nil && app.PaymentDetails.Status == models.PaymentCompleted {
		return nil, appErrors.Clone(appErrors.ErrApplicationClosed, "the application fee has already been paid")
	}
	if !models.ValidPaymentMode(mode) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unsupported payment mode")
	}

	if !p.acquire(app.ID) {
		return nil, appErrors.Clone(appErrors.ErrPaymentInFlight, "")
	}
	defer p.release(app.ID)

	result, err := p.gateway.Charge(ctx, ChargeRequest{
		ApplicationID: app.ID,
		Mode:          mode,
		Amount:        amount,
	})
	if err != nil {
		appErr := appErrors.FromError(err)
		if appErr.Code == appErrors.ErrPaymentDeclined.Code {
			p.logger.Warn("payment declined",
				zap.String("application_id", app.ID),
				zap.String("mode", string(mode)))
			return &models.PaymentDetails{
				Mode:   mode,
				Amount: amount,
				Status: models.PaymentFailed,
			}, appErr
		}
		p.logger.Error("payment gateway failure",
			zap.String("application_id", app.ID),
			zap.Error(err))
		return nil, appErr
	}

	p.logger.Info("payment completed",
		zap.String("application_id", app.ID),
		zap.String("transaction_id", result.TransactionID),
		zap.String("mode", string(mode)))

	date := result.Date
	return &models.PaymentDetails{
		Mode:          mode,
		Amount:        amount,
		TransactionID: result.TransactionID,
		Status:        models.PaymentCompleted,
		Date:          &date,
	}, nil
}

func (p *Processor) acquire(appID string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, busy := p.inFlight[appID]; busy {
		return false
	}
	p.inFlight[appID] = struct{}{}
	return true
}

func (p *Processor) release(appID string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.inFlight, appID)
}
