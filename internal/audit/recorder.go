package audit

import (
	"context"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/esidoc/hr-document-service/internal/model"
	"github.com/esidoc/hr-document-service/internal/repository"
)

// Publisher forwards recorded entries to the message broker for external
// consumers.  Implementations must be best-effort: a returned error is
// logged and forgotten.
type Publisher interface {
	PublishActivityRecorded(ctx context.Context, e model.ActivityLog) error
}

// Recorder consumes audit events from a buffered channel and persists
// them.  Record never blocks the caller and never surfaces an error to
// it: when the buffer is full the event is dropped and counted, and a
// failed insert is logged without affecting the request that emitted it.
type Recorder struct {
	events    chan Event
	repo      *repository.ActivityRepo
	publisher Publisher // optional, may be nil
	dropped   uint64
	done      chan struct{}

	mu     sync.RWMutex // guards closed against sends on events
	closed bool
}

// NewRecorder builds a recorder with the given buffer size.  publisher may
// be nil when no broker is configured.
func NewRecorder(repo *repository.ActivityRepo, publisher Publisher, buffer int) *Recorder {
	if buffer <= 0 {
		buffer = 256
	}
	return &Recorder{
		events:    make(chan Event, buffer),
		repo:      repo,
		publisher: publisher,
		done:      make(chan struct{}),
	}
}

// Record enqueues an event for persistence.  It never blocks: when the
// buffer is full, or the recorder is already closed, the event is
// dropped and a counter incremented.
func (r *Recorder) Record(e Event) {
	if e.OccurredAt.IsZero() {
		e.OccurredAt = time.Now().UTC()
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.closed {
		n := atomic.AddUint64(&r.dropped, 1)
		log.Printf("audit: recorder closed, dropped %s %s (total dropped %d)", e.Action, e.Target, n)
		return
	}
	select {
	case r.events <- e:
	default:
		n := atomic.AddUint64(&r.dropped, 1)
		log.Printf("audit: event buffer full, dropped %s %s (total dropped %d)", e.Action, e.Target, n)
	}
}

// Dropped reports how many events were discarded because the buffer was
// full.
func (r *Recorder) Dropped() uint64 {
	return atomic.LoadUint64(&r.dropped)
}

// Run drains the event channel until ctx is cancelled, persisting each
// event and forwarding it to the publisher.  It is meant to run in its
// own goroutine; call Close to flush and stop.
func (r *Recorder) Run(ctx context.Context) {
	defer close(r.done)
	for {
		select {
		case e, ok := <-r.events:
			if !ok {
				return
			}
			r.persist(e)
		case <-ctx.Done():
			// Drain whatever is already buffered before stopping.
			for {
				select {
				case e := <-r.events:
					r.persist(e)
				default:
					return
				}
			}
		}
	}
}

// Close stops accepting events and waits for the worker to drain.
// Record calls arriving after Close drop their event instead of
// sending on the closed channel.  Close is idempotent.
func (r *Recorder) Close() {
	r.mu.Lock()
	if !r.closed {
		r.closed = true
		close(r.events)
	}
	r.mu.Unlock()
	<-r.done
}

func (r *Recorder) persist(e Event) {
	entry := model.ActivityLog{
		ActorID:     e.ActorID,
		Action:      e.Action,
		Target:      e.Target,
		TargetID:    e.TargetID,
		Description: e.Description,
		IP:          e.IP,
		UserAgent:   e.UserAgent,
		Timestamp:   e.OccurredAt,
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := r.repo.Insert(ctx, &entry); err != nil {
		log.Printf("audit: insert failed: %v", err)
		return
	}
	if r.publisher != nil {
		if err := r.publisher.PublishActivityRecorded(ctx, entry); err != nil {
			log.Printf("audit: publish failed: %v", err)
		}
	}
}
