package template

import "strings"

// DefaultEmailSubject is used when no subject is configured.
const DefaultEmailSubject = "SIM card low balance alert"

// DeductionFailedSubject is the subject of the email sent when a monthly
// fee could not be deducted.
const DeductionFailedSubject = "Monthly fee deduction failed: insufficient balance"

// DefaultEmailTemplate is the built-in HTML body.
const DefaultEmailTemplate = `<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px; border: 1px solid #eee; border-radius: 5px; background-color: #f9f9f9;">
  <div style="text-align: center; margin-bottom: 20px;">
    <h2 style="color: #1890ff;">SIM card notice</h2>
  </div>
  <div style="background: white; padding: 15px; border-radius: 5px; margin-bottom: 15px;">
    <p>Hello,</p>
    <p>Your SIM card <strong>{{phone_number}}</strong> currently stands as follows:</p>
    <ul>
      <li>Balance: <span style="color: {{balance < 20 ? 'red' : 'green'}};">{{balance}}</span></li>
      <li>Monthly fee: {{monthly_fee}}</li>
      <li>Billing day: day {{billing_day}} of each month</li>
    </ul>
    <p>Please top up in time to avoid service interruption.</p>
  </div>
  <div style="text-align: center; font-size: 12px; color: #999;">
    <p>This message was sent automatically, please do not reply.</p>
  </div>
</div>`

// DefaultWechatTemplate is the built-in markdown body for webhook messages.
const DefaultWechatTemplate = `## SIM card balance alert
SIM card <font color="info">{{phone_number}}</font> needs attention:

> Balance: <font color="{{balance < 20 ? 'warning' : 'info'}}">{{balance}}</font>
> Monthly fee: {{monthly_fee}}
> Billing day: day {{billing_day}} of each month

Please top up in time to avoid service interruption.`

// OrDefault returns def when tmpl is empty or whitespace.
func OrDefault(tmpl, def string) string {
	if strings.TrimSpace(tmpl) == "" {
		return def
	}
	return tmpl
}
