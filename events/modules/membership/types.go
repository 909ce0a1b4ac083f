// Package membership defines the Kafka contract for org membership notifications.
package membership

import (
	"time"

	"github.com/devexchange/orgs-backend/v1/model"
)

// EventTypePrefix is prepended to the notification name in EventType
const EventTypePrefix = "org.membership."

// SchemaVersion of MembershipEvent
const SchemaVersion = "v1"

// MembershipEvent asks the notifier to deliver one named message to a set of recipients.
type MembershipEvent struct {
	EventType     string    `json:"event_type"`
	EventID       string    `json:"event_id"`
	EventTime     time.Time `json:"event_time"`
	SchemaVersion string    `json:"schema_version"`

	// Notification is the message template name, e.g. company-join-request
	Notification string            `json:"notification"`
	Recipients   []model.User      `json:"recipients"`
	Data         model.MessageData `json:"data"`
}
