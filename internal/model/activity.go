package model

import "time"

// ActionKind names what happened in an audit entry.
type ActionKind string

const (
    ActionCreate ActionKind = "CREATE"
    ActionUpdate ActionKind = "UPDATE"
    ActionDelete ActionKind = "DELETE"
    ActionView   ActionKind = "VIEW"
    ActionLogin  ActionKind = "LOGIN"
    ActionLogout ActionKind = "LOGOUT"
    ActionOther  ActionKind = "OTHER"
)

// ParseActionKind validates a raw action string.
func ParseActionKind(s string) (ActionKind, bool) {
    switch ActionKind(s) {
    case ActionCreate, ActionUpdate, ActionDelete, ActionView,
        ActionLogin, ActionLogout, ActionOther:
        return ActionKind(s), true
    }
    return "", false
}

// TargetKind names what kind of entity an audit entry is about.
type TargetKind string

const (
    TargetUser        TargetKind = "USER"
    TargetEmployee    TargetKind = "EMPLOYEE"
    TargetAttestation TargetKind = "ATTESTATION"
    TargetMission     TargetKind = "MISSION"
    TargetSystem      TargetKind = "SYSTEM"
)

// ParseTargetKind validates a raw target string.
func ParseTargetKind(s string) (TargetKind, bool) {
    switch TargetKind(s) {
    case TargetUser, TargetEmployee, TargetAttestation, TargetMission, TargetSystem:
        return TargetKind(s), true
    }
    return "", false
}

// ActivityLog is one append-only audit entry.  Rows are never updated or
// deleted by application logic and listing is reverse-chronological.
// A nil ActorID marks a system-originated entry.
type ActivityLog struct {
    ID          uint64     // activity_logs.id
    ActorID     *uint64    // activity_logs.actor_id (nullable)
    ActorName   string     // joined display name, empty for system entries
    Action      ActionKind // activity_logs.action
    Target      TargetKind // activity_logs.target
    TargetID    *uint64    // activity_logs.target_id (nullable)
    Description string     // activity_logs.description
    IP          string     // activity_logs.ip
    UserAgent   string     // activity_logs.user_agent
    Timestamp   time.Time  // activity_logs.timestamp
}
