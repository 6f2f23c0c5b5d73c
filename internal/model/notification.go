package model

import "time"

// Notification is an in-app message addressed to one user.  The creation
// timestamp is immutable; only the read flag changes, either one at a time
// or through the bulk mark-all-read operation.
type Notification struct {
    ID        uint64    // notifications.id
    UserID    uint64    // notifications.user_id
    Message   string    // notifications.message
    CreatedAt time.Time // notifications.created_at
    IsRead    bool      // notifications.is_read
}
