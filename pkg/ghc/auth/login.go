package auth

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ghcdesk/ghc/pkg/ghc/credstore"
	"github.com/ghcdesk/ghc/pkg/metrics"
	"github.com/ghcdesk/ghc/pkg/system"
)

// LoginManager drives device logins: the device code request happens on
// the caller's goroutine, polling and persistence on a background one that
// ends with exactly one LoginCompleteEvent.
//
// Logins are not de-duplicated. A second StartLogin while another attempt
// is polling starts an independent attempt; both run to their own outcome.
type LoginManager struct {
	Client   *DeviceClient
	ClientID string
	Store    credstore.Store
	Notifier Notifier
	Log      *zap.SugaredLogger

	inFlight atomic.Int32
	wg       sync.WaitGroup
}

// StartLogin requests a device code and returns what the user needs to
// approve the login. On error nothing runs in the background. The poll
// phase ignores cancellation of ctx: once started, an attempt always
// reaches a terminal outcome.
func (m *LoginManager) StartLogin(ctx context.Context) (*DeviceLoginStart, error) {
	if m.Client == nil {
		return nil, errors.New("device client is required")
	}
	if m.ClientID == "" {
		return nil, errors.New("client id is required")
	}
	if m.Store == nil {
		return nil, errors.New("credential store is required")
	}

	log := m.logger().With("attempt", uuid.NewString())
	device, err := m.Client.RequestDeviceCode(ctx, m.ClientID)
	if err != nil {
		log.Warnw("Device code request failed", "error", err)
		return nil, err
	}

	metrics.LoginAttempts.Inc()
	metrics.LoginsInFlight.Inc()
	if n := m.inFlight.Add(1); n > 1 {
		log.Warnw("Starting a device login while another one is still polling", "inFlight", n)
	}
	log.Infow("Waiting for user approval", "userCode", device.UserCode, "expiresIn", device.ExpiresIn)

	m.wg.Add(1)
	go m.complete(context.WithoutCancel(ctx), log, device)

	return &DeviceLoginStart{
		AuthURL:   device.AuthURL(),
		UserCode:  device.UserCode,
		ExpiresIn: device.ExpiresIn,
		Interval:  device.Interval,
	}, nil
}

// Wait blocks until every started login has delivered its notification.
func (m *LoginManager) Wait() {
	m.wg.Wait()
}

// InFlight reports how many logins are still polling.
func (m *LoginManager) InFlight() int {
	return int(m.inFlight.Load())
}

func (m *LoginManager) complete(ctx context.Context, log *zap.SugaredLogger, device *DeviceAuthorization) {
	defer m.wg.Done()

	outcome := m.await(ctx, log, device)
	m.inFlight.Add(-1)
	metrics.LoginsInFlight.Dec()

	event := outcome.Event()
	metrics.LoginOutcomes.WithLabelValues(event.Status).Inc()
	if m.Notifier == nil {
		log.Warnw("No notifier registered; dropping login outcome", "status", event.Status)
		return
	}
	if err := m.Notifier.Emit(LoginCompleteEvent, event); err != nil {
		log.Errorw("Failed to deliver login notification", "status", event.Status, "error", err)
	}
}

func (m *LoginManager) await(ctx context.Context, log *zap.SugaredLogger, device *DeviceAuthorization) LoginOutcome {
	token, err := m.Client.PollToken(ctx, m.ClientID, device.DeviceCode, device.Interval)
	if err != nil {
		log.Warnw("Device login failed", "error", err)
		return failure(err.Error())
	}
	if err := m.Store.Persist(token); err != nil {
		log.Errorw("Token obtained but could not be stored", "token", system.Redact(token), "error", err)
		return failure("GitHub token obtained but not saved: " + err.Error())
	}
	log.Infow("Device login completed", "location", m.Store.Location(), "token", system.Redact(token))
	return success("GitHub token saved to " + m.Store.Location())
}

func (m *LoginManager) logger() *zap.SugaredLogger {
	if m.Log == nil {
		return system.NewNopLogger()
	}
	return m.Log
}
