package entity

import "time"

// UserEventType names a user lifecycle transition.
type UserEventType string

const (
	UserCreated UserEventType = "user.created"
	UserUpdated UserEventType = "user.updated"
	UserDeleted UserEventType = "user.deleted"
)

// UserEvent is the payload published after a successful lifecycle write.
type UserEvent struct {
	Type       UserEventType `json:"type"`
	UserID     string        `json:"userId"`
	Email      string        `json:"email"`
	FirstName  string        `json:"firstName"`
	LastName   string        `json:"lastName"`
	OccurredAt time.Time     `json:"occurredAt"`
}

// NewUserEvent builds an event of type t for u, stamped with the current UTC time.
func NewUserEvent(t UserEventType, u *User) UserEvent {
	return UserEvent{
		Type:       t,
		UserID:     u.ID,
		Email:      u.Email,
		FirstName:  u.FirstName,
		LastName:   u.LastName,
		OccurredAt: time.Now().UTC(),
	}
}
