package domain

import "time"

type MessageID string

type MessageKind string

const (
	MessageText  MessageKind = "text"
	MessageFile  MessageKind = "file"
	MessageImage MessageKind = "image"
)

type Message struct {
	ID            MessageID     `json:"id"`
	AppointmentID AppointmentID `json:"appointment_id"`
	SenderID      UserID        `json:"sender_id"`
	RecipientID   UserID        `json:"recipient_id"`
	SenderName    string        `json:"sender_name"`
	SenderRole    UserRole      `json:"sender_role"`
	Content       string        `json:"content"`
	Kind          MessageKind   `json:"kind"`
	FileURL       string        `json:"file_url,omitempty"`
	FileName      string        `json:"file_name,omitempty"`
	Read          bool          `json:"read"`
	SentAt        time.Time     `json:"sent_at"`
}
