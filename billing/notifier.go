package billing

import (
	"time"

	"gorm.io/gorm"

	"github.com/vinimatheus/avocado-saas-starter-sub001/models"
	"github.com/vinimatheus/avocado-saas-starter-sub001/utils"
	mailsmodels "github.com/vinimatheus/avocado-saas-starter-sub001/utils/mails-models"
)

// MailNotifier delivers billing notifications to the organization owner
// over SMTP. Every method is fire-and-forget with logged failure.
type MailNotifier struct {
	db *gorm.DB
}

func NewMailNotifier(db *gorm.DB) *MailNotifier {
	return &MailNotifier{db: db}
}

func (n *MailNotifier) ownerContact(orgID string) (email string, orgName string, ok bool) {
	var org models.Organization
	if err := n.db.First(&org, "id = ?", orgID).Error; err != nil {
		utils.LogError(err, "Notification skipped: organization not found")
		return "", "", false
	}
	var owner models.User
	if err := n.db.First(&owner, "id = ?", org.OwnerUserID).Error; err != nil {
		utils.LogError(err, "Notification skipped: organization owner not found")
		return "", "", false
	}
	return owner.Email, org.Name, true
}

func (n *MailNotifier) TrialStarted(orgID string, plan Plan, endsAt time.Time) {
	email, orgName, ok := n.ownerContact(orgID)
	if !ok {
		return
	}
	mailsmodels.TrialStarted(email, orgName, plan.Name, endsAt)
}

func (n *MailNotifier) PaymentConfirmed(orgID string, plan Plan) {
	email, orgName, ok := n.ownerContact(orgID)
	if !ok {
		return
	}
	mailsmodels.PaymentConfirmed(email, orgName, plan.Name)
}

func (n *MailNotifier) UsageThresholdReached(orgID string, percent int, consumed, limit int64) {
	email, orgName, ok := n.ownerContact(orgID)
	if !ok {
		return
	}
	mailsmodels.UsageThreshold(email, orgName, percent, consumed, limit)
}
