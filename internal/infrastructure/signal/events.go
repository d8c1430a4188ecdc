package signal

import (
	"encoding/json"

	"teleconsult/internal/core/domain"
)

// EventType is the closed vocabulary of signaling events. Inbound and
// outbound constants are listed separately; the relay dispatches inbound
// events with an exhaustive switch and rejects anything else.
type EventType string

// Client -> server.
const (
	EventJoinRoom     EventType = "join-room"
	EventSendMessage  EventType = "send-message"
	EventInitiateCall EventType = "initiate-call"
	EventAcceptCall   EventType = "accept-call"
	EventDeclineCall  EventType = "decline-call"
	EventEndCall      EventType = "end-call"
	EventMediaOffer   EventType = "media-offer"
	EventMediaAnswer  EventType = "media-answer"
	EventICECandidate EventType = "ice-candidate"
)

// Server -> client.
const (
	EventUserOnline       EventType = "user-online"
	EventUserOffline      EventType = "user-offline"
	EventIncomingCall     EventType = "incoming-call"
	EventCallAccepted     EventType = "call-accepted"
	EventCallDeclined     EventType = "call-declined"
	EventCallEnded        EventType = "call-ended"
	EventNoAnswer         EventType = "no-answer"
	EventUserBusy         EventType = "user-busy"
	EventUserOfflineError EventType = "user-offline-error"
	EventBeginOffer       EventType = "begin-offer"
	EventNewMessage       EventType = "new-message"
	EventNewNotification  EventType = "new-notification"
	EventError            EventType = "error"
)

// Event is the inbound wire envelope. Payload stays raw until the typed
// handler for the event decodes it.
type Event struct {
	Type    EventType       `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Frame is the outbound wire envelope.
type Frame struct {
	Type    EventType   `json:"type"`
	Payload interface{} `json:"payload,omitempty"`
}

// Inbound payloads.

type JoinRoomPayload struct {
	AppointmentID string `json:"appointment_id"`
}

type SendMessagePayload struct {
	AppointmentID string `json:"appointment_id"`
	Content       string `json:"content"`
	Kind          string `json:"kind,omitempty"`
	FileURL       string `json:"file_url,omitempty"`
	FileName      string `json:"file_name,omitempty"`
}

type InitiateCallPayload struct {
	AppointmentID string `json:"appointment_id"`
	CalleeID      string `json:"callee_id"`
	CallerName    string `json:"caller_name,omitempty"`
	CallerRole    string `json:"caller_role,omitempty"`
}

type AcceptCallPayload struct {
	CallerID string `json:"caller_id"`
}

type DeclineCallPayload struct {
	CallerID string `json:"caller_id"`
}

// NegotiationPayload carries an opaque SDP offer/answer or a single ICE
// candidate. The relay never inspects Data.
type NegotiationPayload struct {
	AppointmentID string          `json:"appointment_id"`
	Data          json.RawMessage `json:"data"`
}

// Outbound payloads.

type PresencePayload struct {
	UserID  domain.UserID  `json:"user_id"`
	Profile domain.Profile `json:"profile"`
}

type IncomingCallPayload struct {
	AppointmentID domain.AppointmentID `json:"appointment_id"`
	CallerID      domain.UserID        `json:"caller_id"`
	CallerName    string               `json:"caller_name"`
	CallerRole    domain.UserRole      `json:"caller_role"`
}

type CallStatusPayload struct {
	AppointmentID domain.AppointmentID `json:"appointment_id"`
	Reason        domain.CallEndReason `json:"reason,omitempty"`
}

type ForwardedPayload struct {
	AppointmentID string          `json:"appointment_id"`
	From          domain.UserID   `json:"from"`
	Data          json.RawMessage `json:"data"`
}

type NotificationPayload struct {
	Type    domain.NotificationType `json:"type"`
	Title   string                  `json:"title"`
	Message string                  `json:"message"`
	Data    map[string]string       `json:"data,omitempty"`
}

type ErrorPayload struct {
	Message string `json:"message"`
}

func errorFrame(message string) Frame {
	return Frame{Type: EventError, Payload: ErrorPayload{Message: message}}
}
