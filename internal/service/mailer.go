// Package service holds the collaborators the handlers and the
// verification ledger depend on: mail delivery, media uploads and the
// account store adapter
package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"time"

	"cwt/backend-api/internal/verification"

	"github.com/spf13/viper"
	"gopkg.in/gomail.v2"
)

var mailTmpl = template.Must(template.New("verification").Parse(`<!DOCTYPE html>
<html>
<head>
	<meta charset="utf-8">
	<title>CWT - Email Verification</title>
</head>
<body style="font-family: 'Segoe UI', sans-serif; background: #f6f9fc; padding: 40px 20px; color: #1a202c;">
	<div style="max-width: 640px; margin: 0 auto; background: white; border-radius: 24px; overflow: hidden;">
		<div style="background: #2563eb; padding: 48px 40px; text-align: center; color: white;">
			<div style="font-size: 36px; font-weight: 800; background: white; display: inline-block; padding: 12px 28px; border-radius: 16px; color: #2563eb;">CWT</div>
			<h1 style="font-size: 28px; margin-top: 16px;">Secure Email Verification</h1>
		</div>
		<div style="padding: 48px;">
			<h2 style="font-size: 24px;">Hello <span style="color: #2563eb;">{{.Name}}</span>,</h2>
			<p style="color: #475569; line-height: 1.8;">
				To complete your registration, please verify your email address
				using the verification code below.
			</p>
			<div style="background: #f8fafc; border-radius: 20px; padding: 40px; text-align: center; margin: 40px 0; border: 1px solid #e2e8f0;">
				<div style="font-size: 14px; text-transform: uppercase; letter-spacing: 1px; color: #64748b;">Your Verification Code</div>
				<div style="font-size: 56px; font-weight: 800; letter-spacing: 8px; color: #2563eb; font-family: monospace;">{{.Code}}</div>
				<div style="font-size: 14px; color: #ef4444; margin-top: 12px;">Expires in {{.TTLMinutes}} minutes</div>
			</div>
			<div style="background: #f8fafc; border-radius: 12px; padding: 20px; text-align: center; border: 1px dashed #cbd5e1;">
				<div style="font-family: monospace; font-size: 18px; color: #334155;">{{.Email}}</div>
			</div>
			<div style="background: #fffbeb; border-left: 6px solid #f59e0b; border-radius: 16px; padding: 32px; margin: 40px 0; color: #92400e;">
				<strong>Security Advisory</strong>
				<ul>
					<li>This verification code is intended for your use only. Do not share it with anyone.</li>
					<li>You have {{.MaxAttempts}} attempts to enter the correct code. After {{.MaxAttempts}} failed attempts, further verification requests will be temporarily disabled for 24 hours.</li>
					<li>If you did not initiate this request, please ignore this email.</li>
				</ul>
			</div>
		</div>
		<div style="text-align: center; padding: 48px 40px; background: #f8fafc; color: #94a3b8; font-size: 12px;">
			&copy; {{.Year}} CWT. All rights reserved.<br>
			This is an automated message. Please do not reply to this email.
		</div>
	</div>
</body>
</html>`))

type mailData struct {
	Name        string
	Email       string
	Code        string
	TTLMinutes  int
	MaxAttempts int
	Year        int
}

// Mailer delivers verification codes over SMTP. It implements
// verification.CodeSender
type Mailer struct {
	host     string
	port     int
	sender   string
	password string
}

func NewMailer() *Mailer {
	return &Mailer{
		host:     viper.GetString("mail.host"),
		port:     viper.GetInt("mail.port"),
		sender:   viper.GetString("mail.sender"),
		password: viper.GetString("mail.password"),
	}
}

func (s *Mailer) Send(_ context.Context, identity, code, displayName string) error {
	if identity == s.sender {
		return errors.New("invalid email address")
	}

	if displayName == "" {
		displayName = "Valued Member"
	}

	var body bytes.Buffer
	err := mailTmpl.Execute(&body, mailData{
		Name:        displayName,
		Email:       identity,
		Code:        code,
		TTLMinutes:  int(verification.CodeTTL.Minutes()),
		MaxAttempts: verification.MaxAttempts,
		Year:        time.Now().Year(),
	})
	if err != nil {
		return fmt.Errorf("failed to render mail body, %w", err)
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.sender)
	m.SetHeader("To", identity)
	m.SetHeader("Subject", "CWT - Email Verification Code")
	m.SetBody("text/html", body.String())

	d := gomail.NewDialer(s.host, s.port, s.sender, s.password)

	if err := d.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send verification mail, %w", err)
	}

	return nil
}
