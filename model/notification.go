package model

// Notification event names
const (
	EventJoinRequest         = "company-join-request"
	EventJoinRequestAccepted = "company-join-request-accepted"
	EventJoinRequestDeclined = "company-join-request-declined"
	EventInvitation          = "company-invitation"
	EventInvitationNonUser   = "company-invitation-non-user"
)

// MessageData is the context payload handed to the notification dispatcher
type MessageData struct {
	Org            *Org  `json:"org,omitempty"`
	RequestingUser *User `json:"requestingUser,omitempty"`
	InvitingUser   *User `json:"invitingUser,omitempty"`
}
