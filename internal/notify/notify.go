// Package notify dispatches one-time codes to a user's registered channel
// (email or SMS). Dispatch is fire-and-forget from the auth core's
// perspective: a failed send never rolls back OTP creation, it is surfaced to
// the caller as a warning-level outcome.
package notify

// Sender delivers an OTP to a destination (email address or phone number).
type Sender interface {
	// SendOTP sends the code to the destination. Implementations must not log the OTP.
	SendOTP(destination, otp string) error
}

// Noop is a Sender that drops every message. Used when no channel is configured.
type Noop struct{}

// SendOTP discards the message.
func (Noop) SendOTP(destination, otp string) error { return nil }
