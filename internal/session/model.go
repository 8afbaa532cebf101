package session

// Well-known keys of the persisted visitor state.
const (
	KeyPendingSignup = "pendingSignup"
	KeyAuthToken     = "authToken"
)

// Signup channels.
const (
	ChannelMobile = "mobile"
	ChannelEmail  = "email"
)

// PendingSignup is the identity handed from signup to OTP verification. It
// survives reloads until the OTP step succeeds.
type PendingSignup struct {
	Mobile  string `json:"mobile,omitempty"`
	UserID  string `json:"userId"`
	Email   string `json:"email,omitempty"`
	Channel string `json:"channel,omitempty"`
}
