// internal/domain/payment/retry.go
package payment

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// RetryPolicy bounds how often a transient gateway failure is retried
type RetryPolicy struct {
	MaxAttempts int
	Backoff     time.Duration
}

// IsTransient reports whether err may succeed when retried
func IsTransient(err error) bool {
	return errors.Is(err, ErrGatewayUnavailable)
}

// ChargeWithRetry charges req, retrying transient failures with a fixed
// backoff. It returns the charge and the number of attempts made.
func ChargeWithRetry(ctx context.Context, gw Gateway, req ChargeRequest, policy RetryPolicy) (*Charge, int, error) {
	retries := policy.MaxAttempts - 1
	if retries < 0 {
		retries = 0
	}
	b := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(policy.Backoff), uint64(retries)),
		ctx,
	)

	attempts := 0
	charge, err := backoff.RetryWithData(func() (*Charge, error) {
		attempts++
		charge, err := gw.Charge(ctx, req)
		if err != nil && !IsTransient(err) {
			return nil, backoff.Permanent(err)
		}
		return charge, err
	}, b)
	if err != nil {
		return nil, attempts, err
	}
	return charge, attempts, nil
}
