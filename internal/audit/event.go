// Package audit turns successful mutations into append-only activity-log
// entries.  Handlers emit typed events explicitly after the triggering
// write has succeeded; nothing here is inferred from URL shapes, so a
// component invoked outside the HTTP surface still gets logged as long as
// its caller emits.
package audit

import (
	"time"

	"github.com/esidoc/hr-document-service/internal/model"
)

// Event is one auditable fact.  ActorID nil marks a system-originated
// event.  RequestMeta carries the client address and user agent captured
// at the HTTP boundary; both may be empty for non-HTTP callers.
type Event struct {
	ActorID     *uint64
	Action      model.ActionKind
	Target      model.TargetKind
	TargetID    *uint64
	Description string
	IP          string
	UserAgent   string
	OccurredAt  time.Time
}
