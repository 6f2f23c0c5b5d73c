// Package queue defines message payloads exchanged over the message broker.
package queue

// ActivityRecordedEvent is published whenever the audit recorder persists
// an activity-log entry.  It carries enough information for downstream
// consumers to mirror, alert or analyze without querying the primary
// database.
type ActivityRecordedEvent struct {
    EntryID     uint64  `json:"entry_id"`
    ActorID     *uint64 `json:"actor_id,omitempty"`
    ActorName   string  `json:"actor_name,omitempty"`
    Action      string  `json:"action"`
    Target      string  `json:"target"`
    TargetID    *uint64 `json:"target_id,omitempty"`
    Description string  `json:"description"`
    IP          string  `json:"ip,omitempty"`
    RecordedAt  string  `json:"recorded_at"`
}
