package feed

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"wallet-account-picker/internal/state"
)

// Applier receives patches from the subscriber
type Applier interface {
	Apply(state.Patch) error
}

// Subscriber follows a websocket stream of state patches
type Subscriber struct {
	url            string
	store          Applier
	reconnectDelay time.Duration
	dialer         *websocket.Dialer
	header         http.Header

	connected atomic.Bool

	mu      sync.Mutex
	applied uint64
	dropped uint64
}

// ErrNotConnected is reported by Probe while the feed is down
var ErrNotConnected = errors.New("state feed not connected")

// NewSubscriber creates a subscriber for url
func NewSubscriber(url string, store Applier, reconnectDelay time.Duration) *Subscriber {
	if reconnectDelay <= 0 {
		reconnectDelay = 2 * time.Second
	}
	return &Subscriber{
		url:            url,
		store:          store,
		reconnectDelay: reconnectDelay,
		dialer: &websocket.Dialer{
			HandshakeTimeout: 10 * time.Second,
		},
	}
}

// SetAuthToken sends token as a bearer credential on every dial; empty clears it
func (s *Subscriber) SetAuthToken(token string) {
	if token == "" {
		s.header = nil
		return
	}
	s.header = http.Header{"Authorization": []string{"Bearer " + token}}
}

// Run connects and applies patches until ctx is cancelled, reconnecting on failure
func (s *Subscriber) Run(ctx context.Context) error {
	for {
		err := s.session(ctx)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		log.Warn().Err(err).
			Str("url", s.url).
			Dur("retry_in", s.reconnectDelay).
			Msg("state feed disconnected")

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(s.reconnectDelay):
		}
	}
}

func (s *Subscriber) session(ctx context.Context) error {
	conn, _, err := s.dialer.DialContext(ctx, s.url, s.header)
	if err != nil {
		return err
	}
	defer conn.Close()

	s.connected.Store(true)
	defer s.connected.Store(false)
	log.Info().Str("url", s.url).Msg("subscribed to state feed")

	// unblock ReadJSON when the caller goes away
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(time.Second))
			conn.Close()
		case <-done:
		}
	}()

	for {
		var patch state.Patch
		if err := conn.ReadJSON(&patch); err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure) {
				return errors.New("feed closed by server")
			}
			return err
		}
		s.handlePatch(patch)
	}
}

func (s *Subscriber) handlePatch(patch state.Patch) {
	if err := Normalize(&patch); err != nil {
		log.Warn().Err(err).Msg("dropping invalid patch from feed")
		s.count(false)
		return
	}
	if err := s.store.Apply(patch); err != nil {
		log.Warn().Err(err).Msg("failed to apply patch from feed")
		s.count(false)
		return
	}
	s.count(true)
}

func (s *Subscriber) count(ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if ok {
		s.applied++
	} else {
		s.dropped++
	}
}

// Stats returns how many patches were applied and dropped
func (s *Subscriber) Stats() (applied, dropped uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.applied, s.dropped
}

// Connected reports whether a feed session is open
func (s *Subscriber) Connected() bool {
	return s.connected.Load()
}

// Probe is a health probe for the subscriber
func (s *Subscriber) Probe(context.Context) error {
	if !s.Connected() {
		return ErrNotConnected
	}
	return nil
}
