// Package payments isolates the payment capability behind an interface so
// a real gateway can replace the simulated one without touching the
// registration engine.
package payments

import (
	"context"

	"go.uber.org/zap"
)

// Gateway charges a user for a paid event registration.
type Gateway interface {
	Charge(ctx context.Context, userID int64, amount float64) error
}

// Simulated is a gateway whose charges always succeed.
type Simulated struct {
	logger *zap.Logger
}

// NewSimulated creates the always-succeeding gateway.
func NewSimulated(logger *zap.Logger) *Simulated {
	return &Simulated{logger: logger}
}

// Charge logs and approves the payment.
func (s *Simulated) Charge(ctx context.Context, userID int64, amount float64) error {
	s.logger.Info("simulated payment",
		zap.Int64("user_id", userID),
		zap.Float64("amount", amount),
	)
	return nil
}
