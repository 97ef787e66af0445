package billing

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/vinimatheus/avocado-saas-starter-sub001/models"
	"github.com/vinimatheus/avocado-saas-starter-sub001/payment"
	"github.com/vinimatheus/avocado-saas-starter-sub001/testutils"
)

func TestCreateCheckout_Success(t *testing.T) {
	gormDB, mock, cleanup := testutils.SetupTestDB(t)
	defer cleanup()

	provider := &fakeProvider{
		checkout: &payment.Checkout{
			ID:        "bill_123",
			URL:       "https://pay.abacatepay.com/bill_123",
			ExpiresAt: time.Now().Add(24 * time.Hour),
		},
	}
	svc := NewService(gormDB, provider, nil)

	expectFreeSubscription(mock, "org-uuid")

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "checkout_sessions" (.+) RETURNING "id"`).
		WillReturnRows(mock.NewRows([]string{"id"}).AddRow("session-uuid"))
	mock.ExpectCommit()

	session, err := svc.CreateCheckout(context.Background(), "org-uuid", models.PlanStarter50, models.CycleMonthly, false)

	assert.NoError(t, err)
	assert.Equal(t, "bill_123", session.ProviderCheckoutID)
	assert.Equal(t, models.PlanStarter50, session.TargetPlanCode)
	assert.Equal(t, models.CheckoutPending, session.Status)
	assert.Equal(t, 1, provider.calls)
	assert.Equal(t, 5000, provider.lastIn.AmountCents)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateCheckout_AnnualPriceIsTenMonths(t *testing.T) {
	gormDB, mock, cleanup := testutils.SetupTestDB(t)
	defer cleanup()

	provider := &fakeProvider{
		checkout: &payment.Checkout{
			ID:        "bill_456",
			URL:       "https://pay.abacatepay.com/bill_456",
			ExpiresAt: time.Now().Add(24 * time.Hour),
		},
	}
	svc := NewService(gormDB, provider, nil)

	expectFreeSubscription(mock, "org-uuid")

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "checkout_sessions" (.+) RETURNING "id"`).
		WillReturnRows(mock.NewRows([]string{"id"}).AddRow("session-uuid"))
	mock.ExpectCommit()

	_, err := svc.CreateCheckout(context.Background(), "org-uuid", models.PlanPro100, models.CycleAnnual, false)

	assert.NoError(t, err)
	assert.Equal(t, 100000, provider.lastIn.AmountCents)
}

func TestCreateCheckout_UntrustedURL_NothingPersisted(t *testing.T) {
	gormDB, mock, cleanup := testutils.SetupTestDB(t)
	defer cleanup()

	provider := &fakeProvider{
		checkout: &payment.Checkout{
			ID:  "bill_evil",
			URL: "https://evil.example/pay",
		},
	}
	svc := NewService(gormDB, provider, nil)

	expectFreeSubscription(mock, "org-uuid")

	_, err := svc.CreateCheckout(context.Background(), "org-uuid", models.PlanStarter50, models.CycleMonthly, false)

	assert.ErrorIs(t, err, ErrUntrustedRedirect)
	// No checkout session row was written.
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateCheckout_SamePlanRejected(t *testing.T) {
	gormDB, mock, cleanup := testutils.SetupTestDB(t)
	defer cleanup()

	provider := &fakeProvider{}
	svc := NewService(gormDB, provider, nil)

	mock.ExpectQuery(`SELECT \* FROM "subscriptions" WHERE organization_id = \$1`).
		WithArgs("org-uuid", 1).
		WillReturnRows(mock.NewRows(subscriptionColumns()).
			AddRow("sub-uuid", "owner-uuid", "org-uuid", "ACTIVE", "STARTER_50",
				"MONTHLY", nil, time.Now().Add(20*24*time.Hour), false, time.Now(), time.Now()))

	_, err := svc.CreateCheckout(context.Background(), "org-uuid", models.PlanStarter50, models.CycleMonthly, false)

	assert.ErrorIs(t, err, ErrSamePlan)
	assert.Equal(t, 0, provider.calls)
}

func TestCreateCheckout_SamePlanDifferentCycleAllowed(t *testing.T) {
	gormDB, mock, cleanup := testutils.SetupTestDB(t)
	defer cleanup()

	provider := &fakeProvider{
		checkout: &payment.Checkout{
			ID:        "bill_789",
			URL:       "https://pay.abacatepay.com/bill_789",
			ExpiresAt: time.Now().Add(24 * time.Hour),
		},
	}
	svc := NewService(gormDB, provider, nil)

	mock.ExpectQuery(`SELECT \* FROM "subscriptions" WHERE organization_id = \$1`).
		WithArgs("org-uuid", 1).
		WillReturnRows(mock.NewRows(subscriptionColumns()).
			AddRow("sub-uuid", "owner-uuid", "org-uuid", "ACTIVE", "STARTER_50",
				"MONTHLY", nil, time.Now().Add(20*24*time.Hour), false, time.Now(), time.Now()))

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "checkout_sessions" (.+) RETURNING "id"`).
		WillReturnRows(mock.NewRows([]string{"id"}).AddRow("session-uuid"))
	mock.ExpectCommit()

	session, err := svc.CreateCheckout(context.Background(), "org-uuid", models.PlanStarter50, models.CycleAnnual, false)

	assert.NoError(t, err)
	assert.Equal(t, models.CycleAnnual, session.BillingCycle)
}

func TestCreateCheckout_PastDueRenewalAllowsSamePlan(t *testing.T) {
	gormDB, mock, cleanup := testutils.SetupTestDB(t)
	defer cleanup()

	provider := &fakeProvider{
		checkout: &payment.Checkout{
			ID:        "bill_renew",
			URL:       "https://pay.abacatepay.com/bill_renew",
			ExpiresAt: time.Now().Add(24 * time.Hour),
		},
	}
	svc := NewService(gormDB, provider, nil)

	mock.ExpectQuery(`SELECT \* FROM "subscriptions" WHERE organization_id = \$1`).
		WithArgs("org-uuid", 1).
		WillReturnRows(mock.NewRows(subscriptionColumns()).
			AddRow("sub-uuid", "owner-uuid", "org-uuid", "PAST_DUE", "STARTER_50",
				"MONTHLY", nil, time.Now().Add(-24*time.Hour), false, time.Now(), time.Now()))

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "checkout_sessions" (.+) RETURNING "id"`).
		WillReturnRows(mock.NewRows([]string{"id"}).AddRow("session-uuid"))
	mock.ExpectCommit()

	_, err := svc.CreateCheckout(context.Background(), "org-uuid", models.PlanStarter50, models.CycleMonthly, true)

	assert.NoError(t, err)
	assert.Equal(t, 1, provider.calls)
}

func TestCreateCheckout_FreePlanRejected(t *testing.T) {
	gormDB, _, cleanup := testutils.SetupTestDB(t)
	defer cleanup()

	svc := NewService(gormDB, &fakeProvider{}, nil)

	_, err := svc.CreateCheckout(context.Background(), "org-uuid", models.PlanFree, models.CycleMonthly, false)

	assert.ErrorIs(t, err, ErrUnknownPlan)
}

func TestCreateCheckout_ProviderFailure(t *testing.T) {
	gormDB, mock, cleanup := testutils.SetupTestDB(t)
	defer cleanup()

	provider := &fakeProvider{err: errors.New("provider unreachable")}
	svc := NewService(gormDB, provider, nil)

	expectFreeSubscription(mock, "org-uuid")

	_, err := svc.CreateCheckout(context.Background(), "org-uuid", models.PlanStarter50, models.CycleMonthly, false)

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "payment provider")
}
