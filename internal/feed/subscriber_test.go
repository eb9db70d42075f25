package feed

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wallet-account-picker/internal/state"
)

func strPtr(s string) *string { return &s }

func feedServer(t *testing.T, patches ...state.Patch) *httptest.Server {
	t.Helper()
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		for _, p := range patches {
			if err := conn.WriteJSON(p); err != nil {
				return
			}
		}
		// hold the connection until the client leaves
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func wsURL(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func TestSubscriber_AppliesPatches(t *testing.T) {
	store := state.NewStore()
	updates, cancelSub := store.Subscribe()
	defer cancelSub()

	srv := feedServer(t,
		state.Patch{Accounts: map[string]state.AccountPatch{"0xabc": {Balance: strPtr("1")}}}, // invalid, dropped
		state.Patch{
			SelectedAddress: strPtr(lower(addrA)),
			Accounts:        map[string]state.AccountPatch{lower(addrA): {Balance: strPtr("0x10")}},
		},
	)

	sub := NewSubscriber(wsURL(srv), store, 10*time.Millisecond)
	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- sub.Run(ctx) }()

	select {
	case <-updates:
	case <-time.After(2 * time.Second):
		t.Fatal("no state update from feed")
	}

	snap := store.Snapshot()
	assert.Equal(t, addrA, snap.SelectedAddress)
	require.NotNil(t, snap.Accounts[addrA].Balance)
	assert.Equal(t, "0x10", *snap.Accounts[addrA].Balance)

	assert.Eventually(t, func() bool {
		applied, dropped := sub.Stats()
		return applied == 1 && dropped == 1
	}, time.Second, 10*time.Millisecond)
	assert.True(t, sub.Connected())
	assert.NoError(t, sub.Probe(context.Background()))

	cancel()
	select {
	case err := <-errCh:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("subscriber did not stop on cancel")
	}
}

func TestSubscriber_StopsWhileRetrying(t *testing.T) {
	sub := NewSubscriber("ws://127.0.0.1:1/unreachable", state.NewStore(), time.Hour)

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	err := sub.Run(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.ErrorIs(t, sub.Probe(context.Background()), ErrNotConnected)
}

func TestSubscriber_SendsAuthToken(t *testing.T) {
	auth := make(chan string, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case auth <- r.Header.Get("Authorization"):
		default:
		}
		http.Error(w, "unauthorized", http.StatusUnauthorized)
	}))
	defer srv.Close()

	sub := NewSubscriber(wsURL(srv), state.NewStore(), time.Hour)
	sub.SetAuthToken("s3cret")

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()
	_ = sub.Run(ctx)

	select {
	case got := <-auth:
		assert.Equal(t, "Bearer s3cret", got)
	default:
		t.Fatal("feed server saw no dial")
	}
	assert.False(t, sub.Connected())
}
