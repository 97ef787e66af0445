package utils

import (
	"net/smtp"
	"os"
)

// SendMail delivers a raw message over SMTP. Callers treat delivery as
// best-effort: failures are logged, never propagated.
func SendMail(email string, message []byte) {
	from := os.Getenv("SMTP_FROM")
	if from == "" {
		from = "billing@avocado-saas.dev"
	}
	password := os.Getenv("GOOGLE_SMTP_MDP")
	to := email

	smtpHost := "smtp.gmail.com"
	smtpPort := "587"
	auth := smtp.PlainAuth("", from, password, smtpHost)

	err := smtp.SendMail(smtpHost+":"+smtpPort, auth, from, []string{to}, message)
	if err != nil {
		LogError(err, "Mail delivery failed")
		return
	}

	LogInfo("Mail sent to " + email)
}
