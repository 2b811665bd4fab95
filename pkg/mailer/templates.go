package mailer

import (
	"bytes"
	"fmt"
	"html/template"
)

const (
	TemplateLoginOTP        = "login_otp"
	TemplateWelcome         = "welcome"
	TemplatePasswordReset   = "password_reset"
	TemplateBorrowRequested = "borrow_requested"
	TemplateBorrowDecision  = "borrow_decision"
)

const SubjectLoginOTP = "Your CWTP Login Verification Code"

var templates = template.Must(template.New("mail").Parse(`
{{define "login_otp"}}<html><body style="font-family: Arial, sans-serif;">
<h2>CWTP Login Verification</h2>
<p>Hello {{.Name}},</p>
<p>Your verification code is:</p>
<p style="font-size: 32px; font-weight: bold; letter-spacing: 4px;">{{.Code}}</p>
<p>This code expires in {{.ExpiresInMinutes}} minutes.</p>
<p>If you did not try to log in, you can ignore this email.</p>
</body></html>{{end}}

{{define "welcome"}}<html><body style="font-family: Arial, sans-serif;">
<h2>Welcome to CWTP Inventory</h2>
<p>Hello {{.Name}},</p>
<p>Your account <strong>{{.Username}}</strong> has been created. Your ID number is <strong>{{.IDNumber}}</strong>.</p>
</body></html>{{end}}

{{define "password_reset"}}<html><body style="font-family: Arial, sans-serif;">
<h2>Password Reset</h2>
<p>Hello {{.Name}},</p>
<p>Use the link below to choose a new password. It expires in {{.ExpiresInMinutes}} minutes.</p>
<p><a href="{{.Link}}">{{.Link}}</a></p>
</body></html>{{end}}

{{define "borrow_requested"}}<html><body style="font-family: Arial, sans-serif;">
<h2>New Borrow Request</h2>
<p><strong>{{.Requester}}</strong> requested <strong>{{.ProductName}}</strong>.</p>
<p>Purpose: {{.Purpose}}</p>
<p>Review it on the admin dashboard.</p>
</body></html>{{end}}

{{define "borrow_decision"}}<html><body style="font-family: Arial, sans-serif;">
<h2>Borrow Request {{.Status}}</h2>
<p>Hello {{.Name}},</p>
<p>Your request for <strong>{{.ProductName}}</strong> was {{.Status}}.</p>
</body></html>{{end}}
`))

// Render executes one of the named templates.
func Render(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("render %s: %w", name, err)
	}
	return buf.String(), nil
}

type LoginOTPData struct {
	Name             string
	Code             string
	ExpiresInMinutes int
}

type WelcomeData struct {
	Name     string
	Username string
	IDNumber string
}

type PasswordResetData struct {
	Name             string
	Link             string
	ExpiresInMinutes int
}

type BorrowRequestedData struct {
	Requester   string
	ProductName string
	Purpose     string
}

type BorrowDecisionData struct {
	Name        string
	ProductName string
	Status      string
}
