package mailsmodels

import (
	"fmt"

	"github.com/vinimatheus/avocado-saas-starter-sub001/utils"
)

func PaymentConfirmed(email string, orgName string, planName string) {
	subject := "Subject: Your payment was confirmed\r\n"
	mime := "MIME-version: 1.0;\r\nContent-Type: text/html; charset=\"UTF-8\";\r\n\r\n"
	body := fmt.Sprintf(`
	<div style="background-color: #568203; width: 100%%; min-height: 300px; padding: 30px; box-sizing:border-box">
		<table style="background-color: #ffffff; width: 100%%; min-height: 300px;">
			<tbody>
				<tr>
					<td><h1 style="text-align:center">Thank you!</h1></td>
				</tr>
				<tr>
					<td style="text-align:center; padding-bottom: 30px;">The payment for %s was confirmed. Your organization is now on the %s plan.</td>
				</tr>
			</tbody>
		</table>
	</div>
`, orgName, planName)

	message := []byte(subject + mime + body)
	utils.SendMail(email, message)
}
