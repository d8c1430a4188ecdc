package domain

import "time"

type NotificationID string

type NotificationType string

const (
	NotificationAppointmentRequest   NotificationType = "appointment_request"
	NotificationAppointmentConfirmed NotificationType = "appointment_confirmed"
	NotificationAppointmentCancelled NotificationType = "appointment_cancelled"
	NotificationAppointmentCompleted NotificationType = "appointment_completed"
	NotificationNewMessage           NotificationType = "new_message"
	NotificationVideoCallRequest     NotificationType = "video_call_request"
	NotificationPrescriptionAdded    NotificationType = "prescription_added"
)

type Notification struct {
	ID          NotificationID    `json:"id"`
	RecipientID UserID            `json:"recipient_id"`
	SenderID    UserID            `json:"sender_id"`
	Type        NotificationType  `json:"type"`
	Title       string            `json:"title"`
	Message     string            `json:"message"`
	Data        map[string]string `json:"data,omitempty"`
	Read        bool              `json:"read"`
	EmailSent   bool              `json:"email_sent"`
	CreatedAt   time.Time         `json:"created_at"`
}
