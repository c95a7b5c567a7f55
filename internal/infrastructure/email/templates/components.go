// Package templates provides email content components
package templates

import (
	"bytes"
	"html/template"
	"log"
)

// WinNotificationProps carries the data for the organizer win notification.
type WinNotificationProps struct {
	Day      int
	TierName string
	Code     string
	Identity string
	DrawnAt  string
}

var winNotificationTemplate = template.Must(template.New("winNotification").Parse(`
<h1 style="font-family: Helvetica, sans-serif; font-size: 24px; font-weight: bold; margin: 0 0 16px;">A prize was won!</h1>
<p style="font-family: Helvetica, sans-serif; font-size: 16px; margin: 0 0 16px;">Day {{.Day}} of the calendar just produced a winning draw.</p>
<table role="presentation" border="0" cellpadding="0" cellspacing="0" style="border-collapse: separate; width: 100%; margin: 0 0 16px;">
  <tr><td style="font-family: Helvetica, sans-serif; font-size: 16px; padding: 4px 0;"><strong>Prize:</strong> {{.TierName}}</td></tr>
  <tr><td style="font-family: Helvetica, sans-serif; font-size: 16px; padding: 4px 0;"><strong>Code:</strong> <code>{{.Code}}</code></td></tr>
  <tr><td style="font-family: Helvetica, sans-serif; font-size: 16px; padding: 4px 0;"><strong>Identity:</strong> {{.Identity}}</td></tr>
  <tr><td style="font-family: Helvetica, sans-serif; font-size: 16px; padding: 4px 0;"><strong>Drawn at:</strong> {{.DrawnAt}}</td></tr>
</table>
<p style="font-family: Helvetica, sans-serif; font-size: 16px; margin: 0;">Verify the code against the backend before handing over the prize.</p>`))

// GetWinNotificationContent renders the win notification body HTML.
func GetWinNotificationContent(props WinNotificationProps) string {
	var buf bytes.Buffer
	if err := winNotificationTemplate.Execute(&buf, props); err != nil {
		log.Printf("Error executing win notification template: %v", err)
		return "<p>Template execution error</p>"
	}
	return buf.String()
}
