package service

import (
	"context"
	"net/netip"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/jxo-me/cfddns/core/ddns"
	"github.com/jxo-me/cfddns/core/source"
	"github.com/jxo-me/cfddns/sdk/hook"
)

// Mode is the scheduler state: the steady cadence, or the shortened one used
// after a failure until an attempt fully succeeds.
type Mode int

const (
	ModeNormal Mode = iota
	ModeRetrying
)

func (m Mode) String() string {
	if m == ModeRetrying {
		return "retrying"
	}
	return "normal"
}

// Updater keeps one DNS record synchronized with the host's public address.
// It owns its timer loop and all of its state; nothing is shared between
// updaters, so one stalled domain never delays another.
type Updater struct {
	nickname      string
	source        source.ISource
	provider      ddns.IProvider
	freshInterval time.Duration
	retryInterval time.Duration
	webhook       *hook.Webhook
	hash          string
	log           zerolog.Logger

	// Loop-owned state. lastIP is set only after the provider acknowledged
	// the address, never speculatively; the zero Addr means no update has
	// succeeded yet.
	lastIP netip.Addr
	mode   Mode

	stop chan chan struct{}
}

// NewUpdater builds an updater for one resolved domain.
func NewUpdater(nickname string, src source.ISource, provider ddns.IProvider, freshInterval, retryInterval time.Duration, hash string, webhook *hook.Webhook, log zerolog.Logger) *Updater {
	return &Updater{
		nickname:      nickname,
		source:        src,
		provider:      provider,
		freshInterval: freshInterval,
		retryInterval: retryInterval,
		webhook:       webhook,
		hash:          hash,
		log:           log.With().Str("domain", nickname).Logger(),
		stop:          make(chan chan struct{}),
	}
}

func (u *Updater) String() string {
	return u.nickname
}

// Hash implements service.IDDNSService for the service manager's
// replace-on-change logic.
func (u *Updater) Hash() string {
	return u.hash
}

// Start runs the timer loop until Stop. The first check happens immediately;
// afterwards the loop sleeps for the fresh interval while healthy and the
// retry interval after any failure. The stop signal is observed at the sleep
// point, so in-flight work always completes before shutdown.
func (u *Updater) Start() error {
	u.log.Info().
		Str("source", u.source.String()).
		Dur("fresh_interval", u.freshInterval).
		Dur("retry_interval", u.retryInterval).
		Msg("starting updater")

	timer := time.NewTimer(0)
	defer timer.Stop()
	<-timer.C

	for {
		timer.Reset(u.RunOnce(context.Background()))
		select {
		case confirm := <-u.stop:
			close(confirm)
			return nil
		case <-timer.C:
		}
	}
}

// Stop signals the loop and waits for it to exit.
func (u *Updater) Stop() error {
	confirm := make(chan struct{})
	u.stop <- confirm
	<-confirm
	u.log.Info().Msg("updater stopped")
	return nil
}

// RunOnce performs a single resolve/compare/update cycle and returns how
// long to sleep before the next one.
func (u *Updater) RunOnce(ctx context.Context) time.Duration {
	if err := u.refresh(ctx); err != nil {
		u.mode = ModeRetrying
		u.log.Err(err).Dur("retry_in", u.retryInterval).Msg("refresh failed")
		return u.retryInterval
	}
	u.mode = ModeNormal
	return u.freshInterval
}

// Mode reports the current scheduler state.
func (u *Updater) Mode() Mode {
	return u.mode
}

func (u *Updater) refresh(ctx context.Context) error {
	addr, err := u.source.IP(ctx)
	if err != nil {
		return errors.Wrap(err, "resolve public address")
	}

	if u.lastIP.IsValid() && addr == u.lastIP {
		u.log.Debug().Stringer("addr", addr).Msg("address unchanged")
		return nil
	}

	record, err := u.provider.UpdateRecord(ctx, addr)
	if err != nil {
		u.webhook.Exec(ctx, u.nickname, addr, hook.ResultFailure)
		return errors.Wrap(err, "update record")
	}

	previous := u.lastIP
	u.lastIP = addr
	event := u.log.Info().Str("record", record.Name).Stringer("addr", addr)
	if previous.IsValid() {
		event = event.Stringer("previous", previous)
	}
	event.Msg("record updated")

	u.webhook.Exec(ctx, u.nickname, addr, hook.ResultSuccess)
	return nil
}
