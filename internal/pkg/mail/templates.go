package mail

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"strings"
	"time"
)

const inquiryReceivedTpl = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta http-equiv="Content-Type" content="text/html; charset=UTF-8" />
</head>
<body style="background-color:#fff;margin:0 auto;font-family:ui-sans-serif,system-ui,-apple-system,Segoe UI,Roboto,Helvetica Neue,Arial,sans-serif;padding:.5rem">
  <table align="center" width="100%" role="presentation" cellspacing="0" cellpadding="0" border="0" style="max-width:100%;border:1px solid rgb(234,88,12);border-radius:.25rem;margin:40px auto;padding:20px;width:550px">
    <tbody>
      <tr><td>
        <h1 style="color:#000;font-size:18px;font-weight:400;text-align:center;margin:30px 0">Kuzuzangpo la, <strong>{{.FirstName}}</strong></h1>
        <p style="font-size:14px;line-height:24px;margin:16px 0;color:#000">Thank you for planning your journey with {{.SiteName}}. We received your inquiry{{if .TourName}} for <strong>{{.TourName}}</strong>{{else if .DayCount}} for a custom {{.DayCount}}-day itinerary{{end}} and a travel specialist will reply within two working days.</p>
        <table align="center" width="100%" role="presentation" border="0" cellpadding="0" cellspacing="0" style="background-color:rgb(243,244,246);border-radius:.75rem;padding:0 1rem">
          <tbody><tr><td><p style="font-size:12px;line-height:24px;margin:16px 0;color:rgb(51,51,51)">Travel date: {{.TravelDate}}<br />Travelers: {{.Travelers}}{{if .Message}}<br />Message: {{.Message}}{{end}}</p></td></tr></tbody>
        </table>
        <hr style="width:100%;border:none;border-top:1px solid #eaeaea;margin:26px 0" />
        <p style="font-size:10px;line-height:24px;margin:16px 0;text-align:center;color:rgb(156,163,175)">This message was sent automatically.<br />&copy;{{year}} {{.SiteName}}</p>
      </td></tr>
    </tbody>
  </table>
</body>
</html>`

const inquiryNotifyTpl = `<!DOCTYPE html>
<html lang="en">
<body style="font-family:sans-serif;background:#f5f5f5;padding:20px">
<div style="max-width:600px;margin:0 auto;background:#fff;border-radius:8px;padding:24px">
  <h2 style="color:#333">New tour request</h2>
  <p><strong>{{.FullName}}</strong> &lt;{{.Email}}&gt;{{if .Phone}}, {{.Phone}}{{end}}</p>
  <p>{{if .TourName}}Tour: {{.TourName}}{{else}}Custom itinerary: {{.DayCount}} day(s){{end}}<br />Travel date: {{.TravelDate}}<br />Travelers: {{.Travelers}}</p>
  {{if .Message}}<p style="white-space:pre-wrap;background:#f3f4f6;padding:12px;border-radius:6px">{{.Message}}</p>{{end}}
  {{if .AdminURL}}<p style="margin-top:24px">
    <a href="{{.AdminURL}}" style="background:#ea580c;color:#fff;padding:8px 16px;text-decoration:none;border-radius:4px">Review request</a>
  </p>{{end}}
</div>
</body>
</html>`

// InquiryData is the data for both tour request emails.
type InquiryData struct {
	FirstName  string
	FullName   string
	Email      string
	Phone      string
	TravelDate string
	Travelers  int
	Message    string
	TourName   string
	DayCount   int
	SiteName   string
	AdminURL   string
}

func renderTemplate(tpl string, data interface{}) (string, error) {
	t, err := template.New("").Funcs(template.FuncMap{
		"year": func() int {
			return time.Now().Year()
		},
	}).Parse(tpl)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func (s *Sender) siteName(data *InquiryData) string {
	if strings.TrimSpace(data.SiteName) == "" {
		data.SiteName = s.cfg.SiteName
	}
	if strings.TrimSpace(data.SiteName) == "" {
		data.SiteName = "Bhutan Travel"
	}
	return data.SiteName
}

// SendInquiryReceived confirms a new tour request to the requester.
func (s *Sender) SendInquiryReceived(ctx context.Context, to string, data InquiryData) (Result, error) {
	site := s.siteName(&data)
	html, err := renderTemplate(inquiryReceivedTpl, data)
	if err != nil {
		return Result{Error: err.Error()}, err
	}
	return s.Send(ctx, Message{
		To:      []string{to},
		Subject: fmt.Sprintf("[%s] We received your tour request", site),
		HTML:    html,
	})
}

// SendInquiryNotify alerts the operator mailbox about a new tour request.
// Replies go straight to the requester.
func (s *Sender) SendInquiryNotify(ctx context.Context, data InquiryData) (Result, error) {
	to := strings.TrimSpace(s.cfg.Operator)
	if to == "" {
		return Result{Success: true}, nil
	}
	site := s.siteName(&data)
	if data.AdminURL == "" {
		data.AdminURL = s.cfg.AdminURL
	}
	html, err := renderTemplate(inquiryNotifyTpl, data)
	if err != nil {
		return Result{Error: err.Error()}, err
	}
	return s.Send(ctx, Message{
		To:      []string{to},
		Subject: fmt.Sprintf("[%s] New tour request from %s", site, data.FullName),
		HTML:    html,
		ReplyTo: data.Email,
	})
}
