package domain

import "time"

// CallID identifies one call attempt or active call between exactly two
// identities.
type CallID string

type CallStatus string

const (
	// CallCalling is the initial state: the callee has been invited but has
	// not yet answered.
	CallCalling CallStatus = "calling"
	// CallAccepted is the active state after the callee accepts. There is no
	// declined or ended state; those transitions remove the record.
	CallAccepted CallStatus = "accepted"
)

// CallEndReason distinguishes how an active call was torn down for the
// remaining peer.
type CallEndReason string

const (
	EndReasonPeerEnded        CallEndReason = "peer-ended"
	EndReasonPeerDisconnected CallEndReason = "peer-disconnected"
	EndReasonNoAnswer         CallEndReason = "no-answer"
)

// CallRecord is the relay's bookkeeping for one call. A single record is
// indexed under both participant identities so either side's action or
// disconnect can locate it.
type CallRecord struct {
	ID            CallID
	AppointmentID AppointmentID
	CallerID      UserID
	CalleeID      UserID
	Status        CallStatus
	StartedAt     time.Time
}

// Peer returns the other participant of the call, or empty if id is not a
// participant.
func (c *CallRecord) Peer(id UserID) UserID {
	switch id {
	case c.CallerID:
		return c.CalleeID
	case c.CalleeID:
		return c.CallerID
	}
	return ""
}
