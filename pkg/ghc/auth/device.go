package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/github"

	"github.com/ghcdesk/ghc/pkg/metrics"
	"github.com/ghcdesk/ghc/pkg/system"
	"github.com/ghcdesk/ghc/pkg/version"
)

const (
	DeviceGrantType = "urn:ietf:params:oauth:grant-type:device_code"
	DefaultScope    = "read:user"

	// MinPollInterval is the floor applied to the provider's interval.
	MinPollInterval = 5 * time.Second
	// SlowDownStep is added to the wait after every slow_down answer.
	SlowDownStep = 5 * time.Second
	// MaxPollAttempts caps the poll loop regardless of expires_in.
	MaxPollAttempts = 120

	maxResponseBytes = 1 << 20
)

const (
	msgExpired  = "Device code expired. Please try again."
	msgDenied   = "Access denied. Please try again."
	msgTimedOut = "Login timed out. Please try again."
)

// DeviceClient talks to the provider's device code and token endpoints.
// See https://docs.github.com/en/apps/oauth-apps/building-oauth-apps/authorizing-oauth-apps#device-flow
type DeviceClient struct {
	Endpoint   oauth2.Endpoint
	Scopes     []string
	HTTPClient *http.Client
	// Sleep waits between polls. Tests replace it to observe the intervals.
	Sleep func(ctx context.Context, d time.Duration) error
	Log   *zap.SugaredLogger
}

// NewDeviceClient creates a client for endpoint. Empty endpoint URLs fall
// back to github.com, no scopes to DefaultScope.
func NewDeviceClient(endpoint oauth2.Endpoint, scopes []string, log *zap.SugaredLogger) *DeviceClient {
	if endpoint.DeviceAuthURL == "" {
		endpoint.DeviceAuthURL = github.Endpoint.DeviceAuthURL
	}
	if endpoint.TokenURL == "" {
		endpoint.TokenURL = github.Endpoint.TokenURL
	}
	if len(scopes) == 0 {
		scopes = []string{DefaultScope}
	}
	if log == nil {
		log = system.NewNopLogger()
	}
	return &DeviceClient{
		Endpoint:   endpoint,
		Scopes:     scopes,
		HTTPClient: &http.Client{Timeout: 15 * time.Second},
		Sleep:      sleepContext,
		Log:        log,
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

type deviceCodeResponse struct {
	DeviceAuthorization
	Error     string `json:"error"`
	ErrorDesc string `json:"error_description"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	Scope       string `json:"scope"`
	Error       string `json:"error"`
	ErrorDesc   string `json:"error_description"`
}

// RequestDeviceCode starts a device authorization for clientID. This is a
// single round-trip.
func (c *DeviceClient) RequestDeviceCode(ctx context.Context, clientID string) (*DeviceAuthorization, error) {
	values := url.Values{}
	values.Set("client_id", clientID)
	values.Set("scope", strings.Join(c.Scopes, " "))

	status, body, err := c.postForm(ctx, c.Endpoint.DeviceAuthURL, values)
	if err != nil {
		return nil, networkError("Failed to request device code", err)
	}

	var payload deviceCodeResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, protocolError("Failed to parse device code response", err)
	}
	if payload.Error != "" {
		return nil, providerError(payload.Error, "OAuth error: "+payload.Error)
	}
	if status >= http.StatusBadRequest {
		return nil, protocolError("Failed to request device code", fmt.Errorf("unexpected status %d", status))
	}
	if missing := missingDeviceFields(&payload.DeviceAuthorization); len(missing) > 0 {
		return nil, protocolError("Failed to parse device code response",
			fmt.Errorf("missing %s", strings.Join(missing, ", ")))
	}

	device := payload.DeviceAuthorization
	c.logger().Debugw("Device code issued",
		"deviceCode", system.Redact(device.DeviceCode),
		"userCode", device.UserCode,
		"verificationURI", device.VerificationURI,
		"expiresIn", device.ExpiresIn,
		"interval", device.Interval)
	return &device, nil
}

func missingDeviceFields(d *DeviceAuthorization) []string {
	var missing []string
	if d.DeviceCode == "" {
		missing = append(missing, "device_code")
	}
	if d.UserCode == "" {
		missing = append(missing, "user_code")
	}
	if d.VerificationURI == "" {
		missing = append(missing, "verification_uri")
	}
	return missing
}

// PollToken polls the token endpoint until the provider issues a token, a
// terminal error code arrives, or MaxPollAttempts requests have been made.
// Every attempt waits first; the wait starts at max(interval, 5s) and grows
// by 5s per slow_down. It blocks for the whole login and must not run on a
// UI thread.
func (c *DeviceClient) PollToken(ctx context.Context, clientID, deviceCode string, interval int) (string, error) {
	wait := time.Duration(interval) * time.Second
	if wait < MinPollInterval {
		wait = MinPollInterval
	}
	sleep := c.Sleep
	if sleep == nil {
		sleep = sleepContext
	}

	values := url.Values{}
	values.Set("client_id", clientID)
	values.Set("device_code", deviceCode)
	values.Set("grant_type", DeviceGrantType)

	for attempt := 1; attempt <= MaxPollAttempts; attempt++ {
		if err := sleep(ctx, wait); err != nil {
			return "", err
		}

		_, body, err := c.postForm(ctx, c.Endpoint.TokenURL, values)
		if err != nil {
			metrics.TokenPolls.WithLabelValues("network").Inc()
			return "", networkError("Failed to poll token", err)
		}
		var payload tokenResponse
		if err := json.Unmarshal(body, &payload); err != nil {
			metrics.TokenPolls.WithLabelValues("protocol").Inc()
			return "", protocolError("Failed to parse token response", err)
		}

		if payload.AccessToken != "" {
			metrics.TokenPolls.WithLabelValues("token").Inc()
			c.logger().Debugw("Access token issued", "attempt", attempt, "token", system.Redact(payload.AccessToken))
			return payload.AccessToken, nil
		}

		switch payload.Error {
		case "":
			// neither token nor error: keep waiting like authorization_pending
			metrics.TokenPolls.WithLabelValues("empty").Inc()
		case "authorization_pending":
			metrics.TokenPolls.WithLabelValues("pending").Inc()
		case "slow_down":
			metrics.TokenPolls.WithLabelValues("slow_down").Inc()
			wait += SlowDownStep
			c.logger().Debugw("Provider asked to slow down", "attempt", attempt, "wait", wait)
		case "expired_token":
			metrics.TokenPolls.WithLabelValues("expired").Inc()
			return "", providerError(payload.Error, msgExpired)
		case "access_denied":
			metrics.TokenPolls.WithLabelValues("denied").Inc()
			return "", providerError(payload.Error, msgDenied)
		default:
			metrics.TokenPolls.WithLabelValues("error").Inc()
			return "", providerError(payload.Error, "OAuth error: "+payload.Error)
		}
		c.logger().Debugw("Authorization pending", "attempt", attempt, "wait", wait)
	}
	return "", &Error{Kind: KindTimeout, Message: msgTimedOut, Err: errors.New("poll attempt limit reached")}
}

// postForm sends a form POST asking for JSON and returns status and body.
func (c *DeviceClient) postForm(ctx context.Context, endpoint string, values url.Values) (int, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(values.Encode()))
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", version.UserAgent())

	client := c.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return resp.StatusCode, nil, err
	}
	return resp.StatusCode, body, nil
}

func (c *DeviceClient) logger() *zap.SugaredLogger {
	if c.Log == nil {
		return system.NewNopLogger()
	}
	return c.Log
}
