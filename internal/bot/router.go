package bot

import (
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// EventKind tags the message lifecycle notifications the router handles.
type EventKind int

const (
	MessageCreated EventKind = iota
	MessageEdited
	MessageDeleted
)

var kindNames = map[EventKind]string{
	MessageCreated: "created",
	MessageEdited:  "edited",
	MessageDeleted: "deleted",
}

func (k EventKind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "unknown"
}

// Event is one inbound message notification, reduced to the fields the log
// lines need. Consumed synchronously and never stored.
type Event struct {
	Kind      EventKind
	ChannelID string
	Author    string // per-guild nickname when set, global username otherwise
	Content   string // created/deleted content
	BeforeID  string // edited only
	AfterID   string // edited only
	Before    string // edited only
	After     string // edited only
}

// Router turns events for the resolved target channel into log lines.
// Events for any other channel are dropped before dispatch; the check is
// against the pinned channel identity, not the configured name. Fire and
// forget: no ack, no retry, no reordering.
type Router struct {
	log *zap.Logger

	mu       sync.RWMutex // targetID is written by the ready handler, read per event
	targetID string       // empty until resolution pins the channel
}

func NewRouter(log *zap.Logger) *Router {
	return &Router{log: log}
}

// SetTarget pins the channel identity events are filtered against. Called
// once per connection, after resolution succeeds.
func (r *Router) SetTarget(channelID string) {
	r.mu.Lock()
	r.targetID = channelID
	r.mu.Unlock()
}

func (r *Router) target() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.targetID
}

// Dispatch logs ev if it belongs to the target channel.
func (r *Router) Dispatch(ev Event) {
	target := r.target()
	if target == "" || ev.ChannelID != target {
		return
	}

	switch ev.Kind {
	case MessageCreated:
		r.log.Info(fmt.Sprintf("<%s> %s", ev.Author, ev.Content))
	case MessageEdited:
		if ev.Before == ev.After {
			return // something other than the content changed
		}
		r.log.Info(fmt.Sprintf("EDITED: <%s> %s->%s", ev.Author, ev.BeforeID, ev.AfterID))
		r.log.Info("\t" + ev.Before)
		r.log.Info("\t" + ev.After)
	case MessageDeleted:
		r.log.Info(fmt.Sprintf("DELETED: <%s> %s", ev.Author, ev.Content))
	}
}
