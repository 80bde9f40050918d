package mail

import (
	"fmt"
	"log"
	"net/smtp"

	"github.com/shopdeckhq/shopdeck/internal/pkg/env"
)

// SendMail sends an email via SMTP
func SendMail(to string, subject string, body string) error {
	host := env.GetEnv("SMTP_HOST", "")
	port := env.GetEnv("SMTP_PORT", "")
	username := env.GetEnv("SMTP_USERNAME", "")
	password := env.GetEnv("SMTP_PASSWORD", "")
	sender := env.GetEnv("SMTP_SENDER", "")

	if sender == "" {
		sender = fmt.Sprintf("no-reply@%s", "localhost")
		log.Printf("SMTP_SENDER not set, using default sender: %s", sender)
	}

	var auth smtp.Auth
	if username != "" && password != "" {
		auth = smtp.PlainAuth("", username, password, host)
	}

	addr := fmt.Sprintf("%s:%s", host, port)
	msg := []byte(fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/plain; charset=\"utf-8\"\r\n\r\n%s\r\n", sender, to, subject, body))

	return smtp.SendMail(addr, auth, sender, []string{to}, msg)
}

// SendGraceNotice informs a shop owner that their subscription has lapsed and
// access now runs on the grace window.
func SendGraceNotice(to, shopName, graceUntil string) error {
	subject := fmt.Sprintf("Action needed: subscription for %s has lapsed", shopName)
	body := fmt.Sprintf(
		"The subscription for %s is no longer active.\n\n"+
			"Your team keeps full access until %s. After that, shop administration is locked until the subscription is renewed.\n",
		shopName, graceUntil)
	return SendMail(to, subject, body)
}
