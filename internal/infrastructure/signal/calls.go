package signal

import (
	"sync"
	"time"

	"teleconsult/internal/core/domain"

	"github.com/google/uuid"
)

type callEntry struct {
	record domain.CallRecord
	caller *Client
	callee *Client
	timer  *time.Timer
}

// CallRegistry owns all call records. A record is stored once, keyed by a
// generated call ID, with a secondary identity index covering both
// participants; removing a call under one identity removes it under both.
// The busy-check-and-create in Initiate is a single critical section, which
// keeps the at-most-one-call-per-user invariant under concurrent events.
type CallRegistry struct {
	mu     sync.Mutex
	calls  map[domain.CallID]*callEntry
	byUser map[domain.UserID]domain.CallID
}

func NewCallRegistry() *CallRegistry {
	return &CallRegistry{
		calls:  make(map[domain.CallID]*callEntry),
		byUser: make(map[domain.UserID]domain.CallID),
	}
}

// Initiate creates a call record in the calling state, indexed under both
// participants. It fails with ErrSelfCall when caller and callee are the
// same identity and with ErrUserBusy when either already has a record; no
// record is created on failure. A positive ringTimeout arms a timer that
// removes a still-unanswered record and reports it through onNoAnswer.
func (r *CallRegistry) Initiate(apptID domain.AppointmentID, caller, callee *Client, ringTimeout time.Duration, onNoAnswer func(domain.CallRecord, *Client)) (domain.CallRecord, error) {
	if caller.userID == callee.userID {
		return domain.CallRecord{}, domain.ErrSelfCall
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, busy := r.byUser[caller.userID]; busy {
		return domain.CallRecord{}, domain.ErrUserBusy
	}
	if _, busy := r.byUser[callee.userID]; busy {
		return domain.CallRecord{}, domain.ErrUserBusy
	}

	entry := &callEntry{
		record: domain.CallRecord{
			ID:            domain.CallID(uuid.New().String()),
			AppointmentID: apptID,
			CallerID:      caller.userID,
			CalleeID:      callee.userID,
			Status:        domain.CallCalling,
			StartedAt:     time.Now(),
		},
		caller: caller,
		callee: callee,
	}

	r.calls[entry.record.ID] = entry
	r.byUser[caller.userID] = entry.record.ID
	r.byUser[callee.userID] = entry.record.ID

	if ringTimeout > 0 {
		callID := entry.record.ID
		entry.timer = time.AfterFunc(ringTimeout, func() {
			if rec, c, ok := r.expireRing(callID); ok && onNoAnswer != nil {
				onNoAnswer(rec, c)
			}
		})
	}

	return entry.record, nil
}

// Accept transitions a calling record to accepted. The acting identity must
// be the callee of a record whose caller matches callerID; anything else is
// ErrCallNotFound. Returns the updated record and the caller's connection
// handle so the relay can direct the first negotiation step at it.
func (r *CallRegistry) Accept(callee, callerID domain.UserID) (domain.CallRecord, *Client, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry := r.entryFor(callee)
	if entry == nil || entry.record.CalleeID != callee || entry.record.CallerID != callerID {
		return domain.CallRecord{}, nil, domain.ErrCallNotFound
	}
	if entry.record.Status != domain.CallCalling {
		return domain.CallRecord{}, nil, domain.ErrCallNotFound
	}

	entry.stopTimer()
	entry.record.Status = domain.CallAccepted
	return entry.record, entry.caller, nil
}

// Remove tears down the call the identity is party to, deleting the record
// under both participants. It returns the removed record and the peer's
// connection handle. Removing when no record exists is a no-op; decline and
// end are idempotent.
func (r *CallRegistry) Remove(id domain.UserID) (domain.CallRecord, *Client, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry := r.entryFor(id)
	if entry == nil {
		return domain.CallRecord{}, nil, false
	}

	r.remove(entry)

	peer := entry.caller
	if id == entry.record.CallerID {
		peer = entry.callee
	}
	return entry.record, peer, true
}

// Lookup returns the call record the identity is currently party to.
func (r *CallRegistry) Lookup(id domain.UserID) (domain.CallRecord, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry := r.entryFor(id)
	if entry == nil {
		return domain.CallRecord{}, false
	}
	return entry.record, true
}

// Active returns the number of live call records.
func (r *CallRegistry) Active() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.calls)
}

// expireRing removes the record only if it is still unanswered.
func (r *CallRegistry) expireRing(callID domain.CallID) (domain.CallRecord, *Client, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.calls[callID]
	if !ok || entry.record.Status != domain.CallCalling {
		return domain.CallRecord{}, nil, false
	}
	r.remove(entry)
	return entry.record, entry.caller, true
}

// remove deletes the entry under the call ID and both identity index keys.
// Callers hold r.mu.
func (r *CallRegistry) remove(entry *callEntry) {
	entry.stopTimer()
	delete(r.calls, entry.record.ID)
	delete(r.byUser, entry.record.CallerID)
	delete(r.byUser, entry.record.CalleeID)
}

func (r *CallRegistry) entryFor(id domain.UserID) *callEntry {
	callID, ok := r.byUser[id]
	if !ok {
		return nil
	}
	return r.calls[callID]
}

func (e *callEntry) stopTimer() {
	if e.timer != nil {
		e.timer.Stop()
		e.timer = nil
	}
}
