package auth

// DeviceAuthorization is the provider's answer to a device code request.
// DeviceCode is a secret and must not be logged or displayed.
type DeviceAuthorization struct {
	DeviceCode              string `json:"device_code"`
	UserCode                string `json:"user_code"`
	VerificationURI         string `json:"verification_uri"`
	VerificationURIComplete string `json:"verification_uri_complete,omitempty"`
	ExpiresIn               int    `json:"expires_in"`
	Interval                int    `json:"interval"`
}

// AuthURL is the page the user should open: the pre-filled URL when the
// provider sent one, the plain verification URL otherwise.
func (d *DeviceAuthorization) AuthURL() string {
	if d.VerificationURIComplete != "" {
		return d.VerificationURIComplete
	}
	return d.VerificationURI
}

// DeviceLoginStart is handed back to the caller as soon as the device code
// is known, before the user approves.
type DeviceLoginStart struct {
	AuthURL   string `json:"auth_url" yaml:"auth_url"`
	UserCode  string `json:"user_code" yaml:"user_code"`
	ExpiresIn int    `json:"expires_in" yaml:"expires_in"`
	Interval  int    `json:"interval" yaml:"interval"`
}

const (
	StatusOK    = "ok"
	StatusError = "error"
)

// LoginEvent is the payload of the login completion notification.
type LoginEvent struct {
	Status  string `json:"status" yaml:"status"`
	Message string `json:"message" yaml:"message"`
}

// LoginOutcome is the terminal result of one login attempt.
type LoginOutcome struct {
	Success bool
	Message string
}

func success(message string) LoginOutcome {
	return LoginOutcome{Success: true, Message: message}
}

func failure(message string) LoginOutcome {
	return LoginOutcome{Message: message}
}

// Event converts the outcome into its notification payload.
func (o LoginOutcome) Event() LoginEvent {
	if o.Success {
		return LoginEvent{Status: StatusOK, Message: o.Message}
	}
	return LoginEvent{Status: StatusError, Message: o.Message}
}
