package signal

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"teleconsult/internal/core/domain"
	"teleconsult/internal/core/ports"
	"teleconsult/pkg/validation"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Should be configured properly for production
	},
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// Options tunes connection keepalive and call behavior.
type Options struct {
	PingInterval time.Duration
	PongTimeout  time.Duration
	WriteTimeout time.Duration
	// RingTimeout bounds how long an invite may ring unanswered before it is
	// treated as an implicit decline.
	RingTimeout time.Duration
	SendBuffer  int
}

func DefaultOptions() Options {
	return Options{
		PingInterval: 30 * time.Second,
		PongTimeout:  60 * time.Second,
		WriteTimeout: 10 * time.Second,
		RingTimeout:  45 * time.Second,
		SendBuffer:   32,
	}
}

// Relay accepts authenticated WebSocket connections and routes
// call-lifecycle events and opaque negotiation payloads between the two
// participants of a consultation. It is the only writer of the presence,
// call and room registries.
type Relay struct {
	auth         ports.Authenticator
	appointments ports.ParticipantChecker
	messages     ports.MessageRepository
	notifier     ports.Notifier

	presence *PresenceRegistry
	calls    *CallRegistry
	rooms    *RoomRegistry

	metrics Metrics
	opts    Options
	logger  *zap.SugaredLogger
}

func NewRelay(
	auth ports.Authenticator,
	appointments ports.ParticipantChecker,
	messages ports.MessageRepository,
	notifier ports.Notifier,
	metrics Metrics,
	opts Options,
	logger *zap.SugaredLogger,
) *Relay {
	if metrics == nil {
		metrics = NopMetrics{}
	}
	return &Relay{
		auth:         auth,
		appointments: appointments,
		messages:     messages,
		notifier:     notifier,
		presence:     NewPresenceRegistry(),
		calls:        NewCallRegistry(),
		rooms:        NewRoomRegistry(),
		metrics:      metrics,
		opts:         opts,
		logger:       logger,
	}
}

// Presence exposes the presence registry for health reporting.
func (s *Relay) Presence() *PresenceRegistry { return s.presence }

// Calls exposes the call registry for health reporting.
func (s *Relay) Calls() *CallRegistry { return s.calls }

// HandleWebSocket authenticates the handshake and runs the connection until
// disconnect. Authentication failure refuses the connection before any
// registry state is created.
func (s *Relay) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	token := credentialFromRequest(r)
	user, err := s.auth.Authenticate(r.Context(), token)
	if err != nil {
		http.Error(w, "authentication error", http.StatusUnauthorized)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Errorw("websocket upgrade failed", "error", err)
		return
	}

	client := newClient(uuid.New().String(), user, conn, s.opts.SendBuffer)

	// Last connect wins; the replaced connection is left to close itself.
	if prev := s.presence.Register(client); prev != nil {
		s.logger.Infow("presence entry replaced by newer connection", "user_id", user.ID)
	}
	s.metrics.ConnectionOpened()
	s.broadcastPresence(EventUserOnline, client)

	s.logger.Infow("user connected", "user_id", user.ID, "name", user.FullName())

	go client.writePump(s.opts.PingInterval, s.opts.WriteTimeout)
	s.readLoop(client)
	s.disconnect(client)
}

func credentialFromRequest(r *http.Request) string {
	if token := r.URL.Query().Get("token"); token != "" {
		return token
	}
	auth := r.Header.Get("Authorization")
	if strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimPrefix(auth, "Bearer ")
	}
	return ""
}

func (s *Relay) readLoop(client *Client) {
	conn := client.conn
	conn.SetReadDeadline(time.Now().Add(s.opts.PongTimeout))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(s.opts.PongTimeout))
		return nil
	})

	for {
		var evt Event
		if err := conn.ReadJSON(&evt); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				s.logger.Infow("error reading from connection", "user_id", client.userID, "error", err)
			}
			return
		}
		conn.SetReadDeadline(time.Now().Add(s.opts.PongTimeout))

		// A single connection's bad input never takes down the relay; the
		// failure is reported back to the sender only.
		if err := s.handleEvent(context.Background(), client, evt); err != nil {
			s.logger.Infow("error handling event", "user_id", client.userID, "type", evt.Type, "error", err)
			client.TrySend(errorFrame(err.Error()))
		}
	}
}

// disconnect reconciles the registries after the read loop exits: room
// membership goes first, then the presence entry, and any call the identity
// was party to is torn down with the remaining peer notified once.
func (s *Relay) disconnect(client *Client) {
	client.close()
	s.rooms.RemoveClient(client)
	s.metrics.ConnectionClosed()

	// A stale handle that was already replaced must not knock the newer
	// connection offline or end its call.
	if !s.presence.Unregister(client) {
		return
	}

	s.broadcastPresence(EventUserOffline, client)

	if rec, peer, ok := s.calls.Remove(client.userID); ok {
		s.metrics.CallEnded("disconnected")
		if peer != nil {
			peer.TrySend(Frame{Type: EventCallEnded, Payload: CallStatusPayload{
				AppointmentID: rec.AppointmentID,
				Reason:        domain.EndReasonPeerDisconnected,
			}})
		}
		s.logger.Infow("call torn down on disconnect",
			"call_id", rec.ID,
			"appointment_id", rec.AppointmentID,
			"user_id", client.userID,
		)
	}

	s.logger.Infow("user disconnected", "user_id", client.userID)
}

func (s *Relay) handleEvent(ctx context.Context, client *Client, evt Event) error {
	switch evt.Type {
	case EventJoinRoom:
		return s.handleJoinRoom(ctx, client, evt.Payload)
	case EventSendMessage:
		return s.handleSendMessage(ctx, client, evt.Payload)
	case EventInitiateCall:
		return s.handleInitiateCall(ctx, client, evt.Payload)
	case EventAcceptCall:
		return s.handleAcceptCall(client, evt.Payload)
	case EventDeclineCall:
		return s.handleDeclineCall(client, evt.Payload)
	case EventEndCall:
		return s.handleEndCall(client)
	case EventMediaOffer, EventMediaAnswer, EventICECandidate:
		return s.handleNegotiation(client, evt.Type, evt.Payload)
	default:
		return fmt.Errorf("unknown event type: %s", evt.Type)
	}
}

// handleJoinRoom subscribes the connection to a consultation room, but only
// for a designated participant of that consultation. Unauthorized joins are
// refused silently; no membership is added and no error is surfaced.
func (s *Relay) handleJoinRoom(ctx context.Context, client *Client, payload json.RawMessage) error {
	var p JoinRoomPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return fmt.Errorf("invalid join-room payload: %w", err)
	}
	if err := validation.ValidateID(p.AppointmentID, "appointment_id"); err != nil {
		return err
	}

	apptID := domain.AppointmentID(p.AppointmentID)
	ok, err := s.appointments.IsParticipant(ctx, apptID, client.userID)
	if err != nil || !ok {
		s.logger.Debugw("join refused", "user_id", client.userID, "appointment_id", apptID, "error", err)
		return nil
	}

	s.rooms.Join(apptID, client)
	s.logger.Infow("user joined consultation room", "user_id", client.userID, "appointment_id", apptID)
	return nil
}

func (s *Relay) handleSendMessage(ctx context.Context, client *Client, payload json.RawMessage) error {
	var p SendMessagePayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return fmt.Errorf("invalid send-message payload: %w", err)
	}
	if err := validation.ValidateID(p.AppointmentID, "appointment_id"); err != nil {
		return err
	}
	if err := validation.ValidateNonEmptyString(p.Content, "content"); err != nil {
		return err
	}

	apptID := domain.AppointmentID(p.AppointmentID)
	appt, err := s.appointments.GetAppointment(ctx, apptID)
	if err != nil {
		return fmt.Errorf("appointment not found")
	}
	if !appt.HasParticipant(client.userID) {
		return fmt.Errorf("appointment not found")
	}

	kind := domain.MessageKind(p.Kind)
	if kind == "" {
		kind = domain.MessageText
	}

	msg := &domain.Message{
		ID:            domain.MessageID(uuid.New().String()),
		AppointmentID: apptID,
		SenderID:      client.userID,
		RecipientID:   appt.OtherParticipant(client.userID),
		SenderName:    client.profile.DisplayName(),
		SenderRole:    client.profile.Role,
		Content:       p.Content,
		Kind:          kind,
		FileURL:       p.FileURL,
		FileName:      p.FileName,
		SentAt:        time.Now(),
	}

	if err := s.messages.Create(ctx, msg); err != nil {
		s.logger.Errorw("failed to persist message", "appointment_id", apptID, "error", err)
		return fmt.Errorf("failed to send message")
	}

	s.rooms.Broadcast(apptID, Frame{Type: EventNewMessage, Payload: msg})
	s.metrics.MessageRelayed()
	s.raiseMessageNotification(ctx, client, msg)
	return nil
}

// raiseMessageNotification persists a notification for the recipient and
// pushes it in real time when they are online. Best effort on every step.
func (s *Relay) raiseMessageNotification(ctx context.Context, client *Client, msg *domain.Message) {
	if s.notifier == nil {
		return
	}

	n, err := s.notifier.Notify(ctx, msg.RecipientID, msg.SenderID, domain.NotificationNewMessage, map[string]string{
		"appointment_id": string(msg.AppointmentID),
		"message_id":     string(msg.ID),
		"sender_name":    msg.SenderName,
	})
	if err != nil {
		s.logger.Warnw("failed to create message notification", "recipient", msg.RecipientID, "error", err)
		return
	}

	if recipient, online := s.presence.Lookup(msg.RecipientID); online {
		recipient.TrySend(Frame{Type: EventNewNotification, Payload: NotificationPayload{
			Type:    n.Type,
			Title:   n.Title,
			Message: n.Message,
			Data:    n.Data,
		}})
	}
}

func (s *Relay) handleInitiateCall(ctx context.Context, client *Client, payload json.RawMessage) error {
	var p InitiateCallPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return fmt.Errorf("invalid initiate-call payload: %w", err)
	}
	if err := validation.ValidateID(p.AppointmentID, "appointment_id"); err != nil {
		return err
	}
	if err := validation.ValidateID(p.CalleeID, "callee_id"); err != nil {
		return err
	}

	apptID := domain.AppointmentID(p.AppointmentID)
	calleeID := domain.UserID(p.CalleeID)

	if calleeID == client.userID {
		return fmt.Errorf("cannot call yourself")
	}

	callee, online := s.presence.Lookup(calleeID)
	if !online {
		client.TrySend(Frame{Type: EventUserOfflineError, Payload: CallStatusPayload{AppointmentID: apptID}})
		return nil
	}

	rec, err := s.calls.Initiate(apptID, client, callee, s.opts.RingTimeout, s.onNoAnswer)
	if err != nil {
		switch err {
		case domain.ErrUserBusy:
			client.TrySend(Frame{Type: EventUserBusy, Payload: CallStatusPayload{AppointmentID: apptID}})
			return nil
		default:
			return err
		}
	}

	callerName := p.CallerName
	if callerName == "" {
		callerName = client.profile.DisplayName()
	}
	callerRole := domain.UserRole(p.CallerRole)
	if callerRole == "" {
		callerRole = client.profile.Role
	}

	callee.TrySend(Frame{Type: EventIncomingCall, Payload: IncomingCallPayload{
		AppointmentID: apptID,
		CallerID:      client.userID,
		CallerName:    callerName,
		CallerRole:    callerRole,
	}})

	s.metrics.CallInitiated()
	s.logger.Infow("call initiated",
		"call_id", rec.ID,
		"appointment_id", apptID,
		"caller", client.userID,
		"callee", calleeID,
	)

	if s.notifier != nil {
		_, _ = s.notifier.Notify(ctx, calleeID, client.userID, domain.NotificationVideoCallRequest, map[string]string{
			"appointment_id": string(apptID),
			"caller_name":    callerName,
		})
	}
	return nil
}

// onNoAnswer fires from the ring timer when an invite was never answered;
// the record is already removed, the caller learns the call went nowhere.
func (s *Relay) onNoAnswer(rec domain.CallRecord, caller *Client) {
	s.metrics.CallEnded("no-answer")
	caller.TrySend(Frame{Type: EventNoAnswer, Payload: CallStatusPayload{
		AppointmentID: rec.AppointmentID,
		Reason:        domain.EndReasonNoAnswer,
	}})
	s.logger.Infow("call expired unanswered", "call_id", rec.ID, "appointment_id", rec.AppointmentID)
}

// handleAcceptCall transitions the record to accepted and directs the
// caller, who always drives the first negotiation step, to begin the media
// offer. The callee never initiates the offer.
func (s *Relay) handleAcceptCall(client *Client, payload json.RawMessage) error {
	var p AcceptCallPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return fmt.Errorf("invalid accept-call payload: %w", err)
	}
	if err := validation.ValidateID(p.CallerID, "caller_id"); err != nil {
		return err
	}

	rec, caller, err := s.calls.Accept(client.userID, domain.UserID(p.CallerID))
	if err != nil {
		return fmt.Errorf("no matching call")
	}

	s.metrics.CallAccepted(time.Since(rec.StartedAt))

	caller.TrySend(Frame{Type: EventCallAccepted, Payload: CallStatusPayload{AppointmentID: rec.AppointmentID}})
	caller.TrySend(Frame{Type: EventBeginOffer, Payload: CallStatusPayload{AppointmentID: rec.AppointmentID}})

	s.logger.Infow("call accepted", "call_id", rec.ID, "appointment_id", rec.AppointmentID, "callee", client.userID)
	return nil
}

// handleDeclineCall removes the record under both identities and tells the
// caller. Declining with no record is a no-op.
func (s *Relay) handleDeclineCall(client *Client, payload json.RawMessage) error {
	var p DeclineCallPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return fmt.Errorf("invalid decline-call payload: %w", err)
	}

	rec, peer, ok := s.calls.Remove(client.userID)
	if !ok {
		return nil
	}

	s.metrics.CallEnded("declined")
	if peer != nil {
		peer.TrySend(Frame{Type: EventCallDeclined, Payload: CallStatusPayload{AppointmentID: rec.AppointmentID}})
	}
	s.logger.Infow("call declined", "call_id", rec.ID, "appointment_id", rec.AppointmentID, "callee", client.userID)
	return nil
}

// handleEndCall tears down the call the acting identity is party to: the
// peer is told directly, the consultation room hears the broadcast so other
// listeners (a chat panel, for one) are informed. Ending with no record is a
// no-op.
func (s *Relay) handleEndCall(client *Client) error {
	rec, peer, ok := s.calls.Remove(client.userID)
	if !ok {
		return nil
	}

	s.metrics.CallEnded("ended")
	ended := Frame{Type: EventCallEnded, Payload: CallStatusPayload{
		AppointmentID: rec.AppointmentID,
		Reason:        domain.EndReasonPeerEnded,
	}}
	if peer != nil {
		peer.TrySend(ended)
	}
	s.rooms.Broadcast(rec.AppointmentID, ended, client, peer)

	s.logger.Infow("call ended", "call_id", rec.ID, "appointment_id", rec.AppointmentID, "by", client.userID)
	return nil
}

// handleNegotiation forwards an opaque offer/answer/candidate payload to the
// other room members. The payload is never inspected; if nobody else is
// subscribed it is silently dropped.
func (s *Relay) handleNegotiation(client *Client, typ EventType, payload json.RawMessage) error {
	var p NegotiationPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return fmt.Errorf("invalid %s payload: %w", typ, err)
	}
	if err := validation.ValidateID(p.AppointmentID, "appointment_id"); err != nil {
		return err
	}

	apptID := domain.AppointmentID(p.AppointmentID)
	sent := s.rooms.Broadcast(apptID, Frame{Type: typ, Payload: ForwardedPayload{
		AppointmentID: p.AppointmentID,
		From:          client.userID,
		Data:          p.Data,
	}}, client)

	s.metrics.SignalForwarded(string(typ))
	s.logger.Debugw("negotiation payload forwarded",
		"type", typ,
		"appointment_id", apptID,
		"from", client.userID,
		"recipients", sent,
	)
	return nil
}

// broadcastPresence tells every other connection that an identity came
// online or went offline.
func (s *Relay) broadcastPresence(typ EventType, subject *Client) {
	frame := Frame{Type: typ, Payload: PresencePayload{
		UserID:  subject.userID,
		Profile: subject.profile,
	}}
	for _, c := range s.presence.All() {
		if c == subject {
			continue
		}
		c.TrySend(frame)
	}
}
