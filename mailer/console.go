package mailer

import (
	"context"
	"fmt"
)

// ConsoleMailer prints messages to stdout instead of sending them,
// useful for local development.
type ConsoleMailer struct{}

func NewConsoleMailer() *ConsoleMailer {
	return &ConsoleMailer{}
}

func (m *ConsoleMailer) SendVerificationCode(_ context.Context, to, fullName, code string) error {
	fmt.Println("====== SENDING EMAIL NOTIFICATION =======")
	fmt.Printf("to: %s (%s)\n", to, fullName)
	fmt.Printf("verification code: %s\n", code)
	return nil
}

func (m *ConsoleMailer) SendResetLink(_ context.Context, to, fullName, link string) error {
	fmt.Println("====== SENDING EMAIL NOTIFICATION =======")
	fmt.Printf("to: %s (%s)\n", to, fullName)
	fmt.Printf("link: %s\n", link)
	return nil
}
