package mailsmodels

import (
	"fmt"

	"github.com/vinimatheus/avocado-saas-starter-sub001/utils"
)

func UsageThreshold(email string, orgName string, percent int, consumed int64, limit int64) {
	subject := fmt.Sprintf("Subject: %s - you have used %d%% of your plan\r\n", orgName, percent)
	mime := "MIME-version: 1.0;\r\nContent-Type: text/html; charset=\"UTF-8\";\r\n\r\n"
	body := fmt.Sprintf(`
	<div style="background-color: #568203; width: 100%%; min-height: 300px; padding: 30px; box-sizing:border-box">
		<table style="background-color: #ffffff; width: 100%%; min-height: 300px;">
			<tbody>
				<tr>
					<td><h1 style="text-align:center">Usage alert for %s</h1></td>
				</tr>
				<tr>
					<td style="text-align:center; padding-bottom: 30px;">Your organization has used %d of %d metered actions for the current billing period (%d%%).</td>
				</tr>
				<tr>
					<td style="text-align:center; padding-bottom: 30px;">
						<p style="font-weight: bold; color: #568203; text-align:center;">Upgrade your plan to avoid interruptions.</p>
					</td>
				</tr>
			</tbody>
		</table>
	</div>
`, orgName, consumed, limit, percent)

	message := []byte(subject + mime + body)
	utils.SendMail(email, message)
}
