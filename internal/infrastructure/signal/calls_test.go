package signal

import (
	"sync"
	"testing"
	"time"

	"teleconsult/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(id string) *Client {
	user := &domain.User{
		ID:        domain.UserID(id),
		FirstName: "Test",
		LastName:  id,
		Role:      domain.RolePatient,
	}
	return newClient(id, user, nil, 8)
}

func TestCallRegistry_Initiate(t *testing.T) {
	reg := NewCallRegistry()
	caller := newTestClient("alice")
	callee := newTestClient("bob")

	rec, err := reg.Initiate("appt-1", caller, callee, 0, nil)
	require.NoError(t, err)

	assert.NotEmpty(t, rec.ID)
	assert.Equal(t, domain.AppointmentID("appt-1"), rec.AppointmentID)
	assert.Equal(t, domain.UserID("alice"), rec.CallerID)
	assert.Equal(t, domain.UserID("bob"), rec.CalleeID)
	assert.Equal(t, domain.CallCalling, rec.Status)
	assert.Equal(t, 1, reg.Active())

	// The record is reachable under both identities.
	fromCaller, ok := reg.Lookup("alice")
	require.True(t, ok)
	fromCallee, ok := reg.Lookup("bob")
	require.True(t, ok)
	assert.Equal(t, fromCaller.ID, fromCallee.ID)
}

func TestCallRegistry_InitiateSelfCall(t *testing.T) {
	reg := NewCallRegistry()
	c := newTestClient("alice")

	_, err := reg.Initiate("appt-1", c, c, 0, nil)
	assert.ErrorIs(t, err, domain.ErrSelfCall)
	assert.Equal(t, 0, reg.Active())
}

func TestCallRegistry_InitiateBusy(t *testing.T) {
	reg := NewCallRegistry()
	alice := newTestClient("alice")
	bob := newTestClient("bob")
	carol := newTestClient("carol")

	_, err := reg.Initiate("appt-1", alice, bob, 0, nil)
	require.NoError(t, err)

	// Both sides of an unanswered invite count as busy.
	_, err = reg.Initiate("appt-2", carol, bob, 0, nil)
	assert.ErrorIs(t, err, domain.ErrUserBusy)

	_, err = reg.Initiate("appt-2", alice, carol, 0, nil)
	assert.ErrorIs(t, err, domain.ErrUserBusy)

	// The failed attempts created no state for carol.
	_, ok := reg.Lookup("carol")
	assert.False(t, ok)
	assert.Equal(t, 1, reg.Active())
}

func TestCallRegistry_Accept(t *testing.T) {
	reg := NewCallRegistry()
	alice := newTestClient("alice")
	bob := newTestClient("bob")

	_, err := reg.Initiate("appt-1", alice, bob, 0, nil)
	require.NoError(t, err)

	rec, caller, err := reg.Accept("bob", "alice")
	require.NoError(t, err)
	assert.Equal(t, domain.CallAccepted, rec.Status)
	assert.Same(t, alice, caller)

	// Accepting again finds no calling record.
	_, _, err = reg.Accept("bob", "alice")
	assert.ErrorIs(t, err, domain.ErrCallNotFound)
}

func TestCallRegistry_AcceptWrongParty(t *testing.T) {
	reg := NewCallRegistry()
	alice := newTestClient("alice")
	bob := newTestClient("bob")

	_, err := reg.Initiate("appt-1", alice, bob, 0, nil)
	require.NoError(t, err)

	// The caller cannot accept their own invite.
	_, _, err = reg.Accept("alice", "bob")
	assert.ErrorIs(t, err, domain.ErrCallNotFound)

	// The callee naming the wrong caller finds nothing.
	_, _, err = reg.Accept("bob", "carol")
	assert.ErrorIs(t, err, domain.ErrCallNotFound)

	// The record survived both bad attempts.
	assert.Equal(t, 1, reg.Active())
}

func TestCallRegistry_RemoveSymmetric(t *testing.T) {
	reg := NewCallRegistry()
	alice := newTestClient("alice")
	bob := newTestClient("bob")

	_, err := reg.Initiate("appt-1", alice, bob, 0, nil)
	require.NoError(t, err)

	rec, peer, ok := reg.Remove("bob")
	require.True(t, ok)
	assert.Same(t, alice, peer)
	assert.Equal(t, domain.UserID("alice"), rec.CallerID)

	// Removal under one identity removed it under both.
	_, ok = reg.Lookup("alice")
	assert.False(t, ok)
	_, ok = reg.Lookup("bob")
	assert.False(t, ok)
	assert.Equal(t, 0, reg.Active())

	// Removing again is a no-op.
	_, _, ok = reg.Remove("alice")
	assert.False(t, ok)
	_, _, ok = reg.Remove("bob")
	assert.False(t, ok)
}

func TestCallRegistry_RemoveFreesBothParties(t *testing.T) {
	reg := NewCallRegistry()
	alice := newTestClient("alice")
	bob := newTestClient("bob")
	carol := newTestClient("carol")

	_, err := reg.Initiate("appt-1", alice, bob, 0, nil)
	require.NoError(t, err)

	_, _, ok := reg.Remove("alice")
	require.True(t, ok)

	// Both identities can be party to a new call immediately.
	_, err = reg.Initiate("appt-2", carol, bob, 0, nil)
	assert.NoError(t, err)
}

func TestCallRegistry_RingTimeout(t *testing.T) {
	reg := NewCallRegistry()
	alice := newTestClient("alice")
	bob := newTestClient("bob")

	var mu sync.Mutex
	var expired []domain.CallRecord
	done := make(chan struct{})

	_, err := reg.Initiate("appt-1", alice, bob, 20*time.Millisecond, func(rec domain.CallRecord, caller *Client) {
		mu.Lock()
		expired = append(expired, rec)
		mu.Unlock()
		assert.Same(t, alice, caller)
		close(done)
	})
	require.NoError(t, err)

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("ring timer never fired")
	}

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, expired, 1)
	assert.Equal(t, domain.AppointmentID("appt-1"), expired[0].AppointmentID)
	assert.Equal(t, 0, reg.Active())
}

func TestCallRegistry_AcceptStopsRingTimer(t *testing.T) {
	reg := NewCallRegistry()
	alice := newTestClient("alice")
	bob := newTestClient("bob")

	fired := make(chan struct{}, 1)
	_, err := reg.Initiate("appt-1", alice, bob, 20*time.Millisecond, func(domain.CallRecord, *Client) {
		fired <- struct{}{}
	})
	require.NoError(t, err)

	_, _, err = reg.Accept("bob", "alice")
	require.NoError(t, err)

	select {
	case <-fired:
		t.Fatal("ring timer fired after accept")
	case <-time.After(100 * time.Millisecond):
	}

	// The accepted call is still live.
	rec, ok := reg.Lookup("alice")
	require.True(t, ok)
	assert.Equal(t, domain.CallAccepted, rec.Status)
}
