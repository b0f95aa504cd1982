package utils

import (
	"fmt"
	"net/smtp"
	"os"

	"github.com/sirupsen/logrus"
)

func SendEmail(to, subject, body string) error {
	from := os.Getenv("SMTP_FROM")
	password := os.Getenv("SMTP_PASSWORD")
	smtpHost := os.Getenv("SMTP_HOST")
	smtpPort := os.Getenv("SMTP_PORT")
	if smtpPort == "" {
		smtpPort = "587"
	}

	if from == "" || smtpHost == "" {
		logrus.Warnf("SMTP is not configured, skipping email to %s", to)
		return nil
	}

	auth := smtp.PlainAuth("", from, password, smtpHost)

	msg := []byte("To: " + to + "\r\n" +
		"Subject: " + subject + "\r\n" +
		"\r\n" + body + "\r\n")

	if err := smtp.SendMail(smtpHost+":"+smtpPort, auth, from, []string{to}, msg); err != nil {
		logrus.Errorf("Error sending email to %s: %v", to, err)
		return err
	}
	return nil
}

func SendVerificationOTP(to, otp string) error {
	body := fmt.Sprintf("Your Eventify verification code is: %s\n\nThe code expires in 10 minutes.", otp)
	return SendEmail(to, "Your OTP Code", body)
}
