package mailsmodels

import (
	"fmt"

	"github.com/vinimatheus/avocado-saas-starter-sub001/utils"
)

func MemberRemoved(email string, orgName string) {
	subject := "Subject: You were removed from an organization\r\n"
	mime := "MIME-version: 1.0;\r\nContent-Type: text/html; charset=\"UTF-8\";\r\n\r\n"
	body := fmt.Sprintf(`
	<div style="background-color: #568203; width: 100%%; min-height: 300px; padding: 30px; box-sizing:border-box">
		<table style="background-color: #ffffff; width: 100%%; min-height: 300px;">
			<tbody>
				<tr>
					<td><h1 style="text-align:center">Access removed</h1></td>
				</tr>
				<tr>
					<td style="text-align:center; padding-bottom: 30px;">Your access to %s was removed by an administrator. If you think this is a mistake, contact the organization owner.</td>
				</tr>
			</tbody>
		</table>
	</div>
`, orgName)

	message := []byte(subject + mime + body)
	utils.SendMail(email, message)
}
