package state

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wallet-account-picker/internal/account"
)

func strPtr(s string) *string { return &s }

func seeded(t *testing.T) *Store {
	t.Helper()
	s := NewStore()
	require.NoError(t, s.Hydrate([]account.Record{
		{Address: "0xabc", Name: "Account 1", Balance: account.EmptyBalance, IsConnected: true},
		{Address: "0xdef", Name: "Savings", Balance: "5", IsImported: true},
	}, "0xabc", map[string]string{"0xabc": "1000000000000000000"}))
	return s
}

func TestRecordsDeriveIndexAndSelection(t *testing.T) {
	s := seeded(t)

	recs := s.Records()
	require.Len(t, recs, 2)
	assert.Equal(t, 0, recs[0].Index)
	assert.True(t, recs[0].IsSelected)
	assert.Equal(t, 1, recs[1].Index)
	assert.False(t, recs[1].IsSelected)

	require.NoError(t, s.Apply(Patch{SelectedAddress: strPtr("0xdef")}))
	recs = s.Records()
	assert.False(t, recs[0].IsSelected)
	assert.True(t, recs[1].IsSelected)
}

func TestSnapshotFeedsEffectiveBalance(t *testing.T) {
	s := seeded(t)

	recs := s.Records()
	snap := s.Snapshot()
	assert.Equal(t, "1000000000000000000", account.EffectiveBalance(recs[0], snap))
	assert.Equal(t, "5", account.EffectiveBalance(recs[1], snap))
}

func TestSnapshotIsACopy(t *testing.T) {
	s := seeded(t)

	snap := s.Snapshot()
	*snap.Accounts["0xabc"].Balance = "1"
	snap.Accounts["0xnew"] = account.Info{}

	again := s.Snapshot()
	assert.Equal(t, "1000000000000000000", *again.Accounts["0xabc"].Balance)
	assert.NotContains(t, again.Accounts, "0xnew")
}

func TestConnectRevoke(t *testing.T) {
	s := seeded(t)

	rec, err := s.Connect(1)
	require.NoError(t, err)
	assert.True(t, rec.IsConnected)
	assert.Equal(t, 1, rec.Index)
	assert.True(t, s.Records()[1].IsConnected)

	rec, err = s.Revoke(0)
	require.NoError(t, err)
	assert.False(t, rec.IsConnected)

	_, err = s.Connect(5)
	assert.True(t, errors.Is(err, ErrUnknownAccount))
	_, err = s.Revoke(-1)
	assert.True(t, errors.Is(err, ErrUnknownAccount))
}

func TestApplyBalanceError(t *testing.T) {
	s := seeded(t)

	require.NoError(t, s.Apply(Patch{Accounts: map[string]AccountPatch{"0xdef": {BalanceError: strPtr("rpc unavailable")}}}))
	assert.Equal(t, "rpc unavailable", s.Records()[1].BalanceError)

	require.NoError(t, s.Apply(Patch{Accounts: map[string]AccountPatch{"0xdef": {BalanceError: strPtr("")}}}))
	assert.Empty(t, s.Records()[1].BalanceError)
}

func TestApply(t *testing.T) {
	s := seeded(t)

	err := s.Apply(Patch{
		SelectedAddress: strPtr("0xdef"),
		Accounts: map[string]AccountPatch{
			"0xdef": {Balance: strPtr("0x10"), BalanceError: strPtr("stale")},
			"0x777": {BalanceError: strPtr("ignored")},
		},
		Records: []account.Record{{Address: "0x123", Name: "Account 3", Balance: "0x0"}},
	})
	require.NoError(t, err)

	snap := s.Snapshot()
	assert.Equal(t, "0xdef", snap.SelectedAddress)
	assert.Equal(t, "0x10", *snap.Accounts["0xdef"].Balance)

	recs := s.Records()
	require.Len(t, recs, 3)
	assert.Equal(t, "stale", recs[1].BalanceError)
	assert.Equal(t, "0x123", recs[2].Address)
}

func TestApplyRejectsInvalidPatch(t *testing.T) {
	s := seeded(t)
	before := s.Records()

	err := s.Apply(Patch{
		SelectedAddress: strPtr("0xdef"),
		Records:         []account.Record{{Name: "no address"}},
	})
	assert.Equal(t, account.ErrMissingAddress, err)
	assert.Equal(t, before, s.Records())
	assert.Equal(t, "0xabc", s.Snapshot().SelectedAddress)
}

func TestApplyReplacesRecordByAddress(t *testing.T) {
	s := seeded(t)

	require.NoError(t, s.Apply(Patch{Records: []account.Record{{Address: "0xdef", Name: "Cold storage", Balance: "9"}}}))
	recs := s.Records()
	require.Len(t, recs, 2)
	assert.Equal(t, "Cold storage", recs[1].Name)
}

func TestSubscribeCoalesces(t *testing.T) {
	s := NewStore()
	ch, cancel := s.Subscribe()
	defer cancel()

	require.NoError(t, s.Apply(Patch{Accounts: map[string]AccountPatch{"0xabc": {Balance: strPtr("1")}}}))
	require.NoError(t, s.Apply(Patch{Accounts: map[string]AccountPatch{"0xabc": {Balance: strPtr("2")}}}))
	require.NoError(t, s.Apply(Patch{SelectedAddress: strPtr("0xabc")}))

	select {
	case <-ch:
	case <-time.After(time.Second):
		t.Fatal("expected a notification")
	}

	select {
	case <-ch:
		t.Fatal("notifications should coalesce into one pending signal")
	default:
	}
}

func TestSubscribeCancelClosesChannel(t *testing.T) {
	s := NewStore()
	ch, cancel := s.Subscribe()
	cancel()
	cancel()

	_, ok := <-ch
	assert.False(t, ok)

	// must not panic on a closed subscriber
	require.NoError(t, s.Apply(Patch{SelectedAddress: strPtr("0xabc")}))
}

func TestUpdatedAtAdvances(t *testing.T) {
	s := NewStore()
	assert.True(t, s.UpdatedAt().IsZero())
	require.NoError(t, s.Apply(Patch{Accounts: map[string]AccountPatch{"0xabc": {Balance: strPtr("1")}}}))
	assert.False(t, s.UpdatedAt().IsZero())
}
