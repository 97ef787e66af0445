package billing

import (
	"context"
	"time"

	"github.com/vinimatheus/avocado-saas-starter-sub001/payment"
)

type fakeProvider struct {
	checkout *payment.Checkout
	err      error
	calls    int
	lastIn   payment.CheckoutInput
}

func (f *fakeProvider) CreateBilling(_ context.Context, in payment.CheckoutInput) (*payment.Checkout, error) {
	f.calls++
	f.lastIn = in
	if f.err != nil {
		return nil, f.err
	}
	return f.checkout, nil
}

type thresholdAlert struct {
	orgID    string
	percent  int
	consumed int64
	limit    int64
}

type fakeNotifier struct {
	trials     int
	payments   int
	thresholds []thresholdAlert
}

func (f *fakeNotifier) TrialStarted(orgID string, plan Plan, endsAt time.Time) {
	f.trials++
}

func (f *fakeNotifier) PaymentConfirmed(orgID string, plan Plan) {
	f.payments++
}

func (f *fakeNotifier) UsageThresholdReached(orgID string, percent int, consumed, limit int64) {
	f.thresholds = append(f.thresholds, thresholdAlert{orgID, percent, consumed, limit})
}
