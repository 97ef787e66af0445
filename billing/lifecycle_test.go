package billing

import (
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"

	"github.com/vinimatheus/avocado-saas-starter-sub001/models"
	"github.com/vinimatheus/avocado-saas-starter-sub001/testutils"
)

func expectFreeSubscription(mock sqlmock.Sqlmock, orgID string) {
	mock.ExpectQuery(`SELECT \* FROM "subscriptions" WHERE organization_id = \$1`).
		WithArgs(orgID, 1).
		WillReturnRows(mock.NewRows(subscriptionColumns()).
			AddRow("sub-uuid", "owner-uuid", orgID, "FREE", "FREE",
				"MONTHLY", nil, nil, false, time.Now(), time.Now()))
}

func TestStartTrial_FromFree(t *testing.T) {
	gormDB, mock, cleanup := testutils.SetupTestDB(t)
	defer cleanup()

	notifier := &fakeNotifier{}
	svc := NewService(gormDB, nil, notifier)

	expectFreeSubscription(mock, "org-uuid")

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "subscriptions" SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	sub, err := svc.StartTrial("org-uuid", models.PlanPro100)

	assert.NoError(t, err)
	assert.Equal(t, models.SubscriptionTrialing, sub.Status)
	assert.Equal(t, models.PlanPro100, sub.PlanCode)
	assert.NotNil(t, sub.TrialEndsAt)
	assert.WithinDuration(t, time.Now().Add(TrialDuration), *sub.TrialEndsAt, time.Minute)
	assert.Equal(t, 1, notifier.trials)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStartTrial_SecondCallIsInvalid(t *testing.T) {
	gormDB, mock, cleanup := testutils.SetupTestDB(t)
	defer cleanup()

	svc := NewService(gormDB, nil, nil)

	trialEnd := time.Now().Add(10 * 24 * time.Hour)
	mock.ExpectQuery(`SELECT \* FROM "subscriptions" WHERE organization_id = \$1`).
		WithArgs("org-uuid", 1).
		WillReturnRows(mock.NewRows(subscriptionColumns()).
			AddRow("sub-uuid", "owner-uuid", "org-uuid", "TRIALING", "PRO_100",
				"MONTHLY", trialEnd, nil, false, time.Now(), time.Now()))

	_, err := svc.StartTrial("org-uuid", models.PlanPro100)

	var transitionErr *InvalidStateTransitionError
	assert.ErrorAs(t, err, &transitionErr)
	assert.Equal(t, models.SubscriptionTrialing, transitionErr.From)
}

func TestStartTrial_ConcurrentLoserGetsInvalidTransition(t *testing.T) {
	gormDB, mock, cleanup := testutils.SetupTestDB(t)
	defer cleanup()

	svc := NewService(gormDB, nil, nil)

	expectFreeSubscription(mock, "org-uuid")

	// Another request flipped the row between our read and our update.
	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "subscriptions" SET`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	_, err := svc.StartTrial("org-uuid", models.PlanPro100)

	var transitionErr *InvalidStateTransitionError
	assert.ErrorAs(t, err, &transitionErr)
}

func TestStartTrial_UnknownPlan(t *testing.T) {
	gormDB, _, cleanup := testutils.SetupTestDB(t)
	defer cleanup()

	svc := NewService(gormDB, nil, nil)

	_, err := svc.StartTrial("org-uuid", models.PlanCode("GOLD_9000"))
	assert.ErrorIs(t, err, ErrUnknownPlan)

	// Trialing the FREE plan makes no sense either.
	_, err = svc.StartTrial("org-uuid", models.PlanFree)
	assert.ErrorIs(t, err, ErrUnknownPlan)
}

func TestCancel_Immediate(t *testing.T) {
	gormDB, mock, cleanup := testutils.SetupTestDB(t)
	defer cleanup()

	svc := NewService(gormDB, nil, nil)

	mock.ExpectQuery(`SELECT \* FROM "subscriptions" WHERE organization_id = \$1`).
		WithArgs("org-uuid", 1).
		WillReturnRows(mock.NewRows(subscriptionColumns()).
			AddRow("sub-uuid", "owner-uuid", "org-uuid", "ACTIVE", "STARTER_50",
				"MONTHLY", nil, time.Now().Add(20*24*time.Hour), false, time.Now(), time.Now()))

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "subscriptions" SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "cancellation_feedbacks" (.+) RETURNING "id"`).
		WillReturnRows(mock.NewRows([]string{"id"}).AddRow("fb-uuid"))
	mock.ExpectCommit()

	sub, err := svc.Cancel("org-uuid", CancelOptions{
		Immediate:  true,
		ReasonCode: models.ReasonTooExpensive,
		Note:       "switching to the free tier",
	})

	assert.NoError(t, err)
	assert.Equal(t, models.SubscriptionCanceled, sub.Status)
	assert.NotNil(t, sub.CurrentPeriodEndsAt)
	assert.WithinDuration(t, time.Now(), *sub.CurrentPeriodEndsAt, time.Minute)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCancel_AtPeriodEnd_KeepsStatus(t *testing.T) {
	gormDB, mock, cleanup := testutils.SetupTestDB(t)
	defer cleanup()

	svc := NewService(gormDB, nil, nil)

	periodEnd := time.Now().Add(20 * 24 * time.Hour)
	mock.ExpectQuery(`SELECT \* FROM "subscriptions" WHERE organization_id = \$1`).
		WithArgs("org-uuid", 1).
		WillReturnRows(mock.NewRows(subscriptionColumns()).
			AddRow("sub-uuid", "owner-uuid", "org-uuid", "ACTIVE", "STARTER_50",
				"MONTHLY", nil, periodEnd, false, time.Now(), time.Now()))

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "subscriptions" SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	sub, err := svc.Cancel("org-uuid", CancelOptions{})

	assert.NoError(t, err)
	assert.Equal(t, models.SubscriptionActive, sub.Status)
	assert.True(t, sub.CancelAtPeriodEnd)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCancel_TrialEndsWithTrialWindow(t *testing.T) {
	gormDB, mock, cleanup := testutils.SetupTestDB(t)
	defer cleanup()

	svc := NewService(gormDB, nil, nil)

	trialEnd := time.Now().Add(5 * 24 * time.Hour)
	mock.ExpectQuery(`SELECT \* FROM "subscriptions" WHERE organization_id = \$1`).
		WithArgs("org-uuid", 1).
		WillReturnRows(mock.NewRows(subscriptionColumns()).
			AddRow("sub-uuid", "owner-uuid", "org-uuid", "TRIALING", "PRO_100",
				"MONTHLY", trialEnd, nil, false, time.Now(), time.Now()))

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "subscriptions" SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	sub, err := svc.Cancel("org-uuid", CancelOptions{})

	assert.NoError(t, err)
	assert.True(t, sub.CancelAtPeriodEnd)
	assert.NotNil(t, sub.CurrentPeriodEndsAt)
	assert.WithinDuration(t, trialEnd, *sub.CurrentPeriodEndsAt, time.Second)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCancel_FeedbackFailureDoesNotBlock(t *testing.T) {
	gormDB, mock, cleanup := testutils.SetupTestDB(t)
	defer cleanup()

	svc := NewService(gormDB, nil, nil)

	mock.ExpectQuery(`SELECT \* FROM "subscriptions" WHERE organization_id = \$1`).
		WithArgs("org-uuid", 1).
		WillReturnRows(mock.NewRows(subscriptionColumns()).
			AddRow("sub-uuid", "owner-uuid", "org-uuid", "ACTIVE", "STARTER_50",
				"MONTHLY", nil, time.Now().Add(20*24*time.Hour), false, time.Now(), time.Now()))

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "subscriptions" SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "cancellation_feedbacks"`).
		WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	_, err := svc.Cancel("org-uuid", CancelOptions{
		Immediate:  true,
		ReasonCode: models.ReasonMissingFeatures,
	})

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCancel_FromFree_Invalid(t *testing.T) {
	gormDB, mock, cleanup := testutils.SetupTestDB(t)
	defer cleanup()

	svc := NewService(gormDB, nil, nil)

	expectFreeSubscription(mock, "org-uuid")

	_, err := svc.Cancel("org-uuid", CancelOptions{Immediate: true})

	var transitionErr *InvalidStateTransitionError
	assert.ErrorAs(t, err, &transitionErr)
	assert.Equal(t, models.SubscriptionFree, transitionErr.From)
}

func TestReactivate_BeforePeriodEnd(t *testing.T) {
	gormDB, mock, cleanup := testutils.SetupTestDB(t)
	defer cleanup()

	svc := NewService(gormDB, nil, nil)

	mock.ExpectQuery(`SELECT \* FROM "subscriptions" WHERE organization_id = \$1`).
		WithArgs("org-uuid", 1).
		WillReturnRows(mock.NewRows(subscriptionColumns()).
			AddRow("sub-uuid", "owner-uuid", "org-uuid", "CANCELED", "STARTER_50",
				"MONTHLY", nil, time.Now().Add(10*24*time.Hour), false, time.Now(), time.Now()))

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "subscriptions" SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	sub, err := svc.Reactivate("org-uuid")

	assert.NoError(t, err)
	assert.Equal(t, models.SubscriptionActive, sub.Status)
	assert.False(t, sub.CancelAtPeriodEnd)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReactivate_AfterPeriodEnd_Invalid(t *testing.T) {
	gormDB, mock, cleanup := testutils.SetupTestDB(t)
	defer cleanup()

	svc := NewService(gormDB, nil, nil)

	mock.ExpectQuery(`SELECT \* FROM "subscriptions" WHERE organization_id = \$1`).
		WithArgs("org-uuid", 1).
		WillReturnRows(mock.NewRows(subscriptionColumns()).
			AddRow("sub-uuid", "owner-uuid", "org-uuid", "CANCELED", "STARTER_50",
				"MONTHLY", nil, time.Now().Add(-time.Hour), false, time.Now(), time.Now()))

	_, err := svc.Reactivate("org-uuid")

	var transitionErr *InvalidStateTransitionError
	assert.ErrorAs(t, err, &transitionErr)
}

func TestCancel_ConcurrentTransitionLoses(t *testing.T) {
	gormDB, mock, cleanup := testutils.SetupTestDB(t)
	defer cleanup()

	svc := NewService(gormDB, nil, nil)

	mock.ExpectQuery(`SELECT \* FROM "subscriptions" WHERE organization_id = \$1`).
		WithArgs("org-uuid", 1).
		WillReturnRows(mock.NewRows(subscriptionColumns()).
			AddRow("sub-uuid", "owner-uuid", "org-uuid", "ACTIVE", "STARTER_50",
				"MONTHLY", nil, time.Now().Add(20*24*time.Hour), false, time.Now(), time.Now()))

	// The status changed between our read and our update (a lazy expiry
	// persist, for instance); the guarded update matches nothing.
	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "subscriptions" SET`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	_, err := svc.Cancel("org-uuid", CancelOptions{Immediate: true})

	var transitionErr *InvalidStateTransitionError
	assert.ErrorAs(t, err, &transitionErr)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReactivate_ConcurrentTransitionLoses(t *testing.T) {
	gormDB, mock, cleanup := testutils.SetupTestDB(t)
	defer cleanup()

	svc := NewService(gormDB, nil, nil)

	mock.ExpectQuery(`SELECT \* FROM "subscriptions" WHERE organization_id = \$1`).
		WithArgs("org-uuid", 1).
		WillReturnRows(mock.NewRows(subscriptionColumns()).
			AddRow("sub-uuid", "owner-uuid", "org-uuid", "CANCELED", "STARTER_50",
				"MONTHLY", nil, time.Now().Add(10*24*time.Hour), false, time.Now(), time.Now()))

	// A concurrent lazy EXPIRED persist wins; the reactivate must not
	// clobber it.
	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "subscriptions" SET`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	_, err := svc.Reactivate("org-uuid")

	var transitionErr *InvalidStateTransitionError
	assert.ErrorAs(t, err, &transitionErr)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReactivate_ActiveWithoutCancelFlag_Invalid(t *testing.T) {
	gormDB, mock, cleanup := testutils.SetupTestDB(t)
	defer cleanup()

	svc := NewService(gormDB, nil, nil)

	mock.ExpectQuery(`SELECT \* FROM "subscriptions" WHERE organization_id = \$1`).
		WithArgs("org-uuid", 1).
		WillReturnRows(mock.NewRows(subscriptionColumns()).
			AddRow("sub-uuid", "owner-uuid", "org-uuid", "ACTIVE", "STARTER_50",
				"MONTHLY", nil, time.Now().Add(10*24*time.Hour), false, time.Now(), time.Now()))

	_, err := svc.Reactivate("org-uuid")

	var transitionErr *InvalidStateTransitionError
	assert.ErrorAs(t, err, &transitionErr)
}
