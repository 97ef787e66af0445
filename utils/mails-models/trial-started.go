package mailsmodels

import (
	"fmt"
	"time"

	"github.com/vinimatheus/avocado-saas-starter-sub001/utils"
)

func TrialStarted(email string, orgName string, planName string, endsAt time.Time) {
	subject := "Subject: Your trial has started\r\n"
	mime := "MIME-version: 1.0;\r\nContent-Type: text/html; charset=\"UTF-8\";\r\n\r\n"
	body := fmt.Sprintf(`
	<div style="background-color: #568203; width: 100%%; min-height: 300px; padding: 30px; box-sizing:border-box">
		<table style="background-color: #ffffff; width: 100%%; min-height: 300px;">
			<tbody>
				<tr>
					<td><h1 style="text-align:center">Welcome to your %s trial</h1></td>
				</tr>
				<tr>
					<td style="text-align:center; padding-bottom: 30px;">%s has full access to the %s plan until %s.</td>
				</tr>
			</tbody>
		</table>
	</div>
`, planName, orgName, planName, endsAt.Format("January 2, 2006"))

	message := []byte(subject + mime + body)
	utils.SendMail(email, message)
}
