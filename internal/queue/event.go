// Package queue defines message payloads exchanged over the message broker.
package queue

// MailQueueName is the queue drained by the reset-mail consumer.
const MailQueueName = "mail.password_reset"

// PasswordResetRequested is published when a registered user requests a
// password reset. The mail worker consumes it and dispatches the reset
// link; the web process never blocks on delivery, and delivery failures
// are not surfaced to the requester.
type PasswordResetRequested struct {
	UserID      uint64 `json:"user_id"`
	Username    string `json:"username"`
	Email       string `json:"email"`
	Token       string `json:"token"`
	RequestedAt string `json:"requested_at"`
}
