package bot

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func newTestRouter() (*Router, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.InfoLevel)
	return NewRouter(zap.New(core)), logs
}

func TestDispatchCreated(t *testing.T) {
	r, logs := newTestRouter()
	r.SetTarget("c1")

	r.Dispatch(Event{Kind: MessageCreated, ChannelID: "c1", Author: "Bob", Content: "hi"})

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("got %d log lines, want 1", len(entries))
	}
	if entries[0].Message != "<Bob> hi" {
		t.Errorf("line = %q, want %q", entries[0].Message, "<Bob> hi")
	}
}

func TestDispatchIgnoresOtherChannels(t *testing.T) {
	events := []Event{
		{Kind: MessageCreated, ChannelID: "other", Author: "Bob", Content: "hi"},
		{Kind: MessageEdited, ChannelID: "other", Author: "Bob", Before: "a", After: "b"},
		{Kind: MessageDeleted, ChannelID: "other", Author: "Bob", Content: "bye"},
	}

	r, logs := newTestRouter()
	r.SetTarget("c1")

	for _, ev := range events {
		r.Dispatch(ev)
	}
	if n := logs.Len(); n != 0 {
		t.Errorf("off-target events produced %d log lines, want 0", n)
	}
}

func TestDispatchBeforeResolution(t *testing.T) {
	// Without a pinned target everything is dropped, even a matching-looking
	// channel ID.
	r, logs := newTestRouter()
	r.Dispatch(Event{Kind: MessageCreated, ChannelID: "", Author: "Bob", Content: "hi"})
	r.Dispatch(Event{Kind: MessageCreated, ChannelID: "c1", Author: "Bob", Content: "hi"})
	if n := logs.Len(); n != 0 {
		t.Errorf("dispatch before SetTarget produced %d log lines, want 0", n)
	}
}

func TestDispatchEditedUnchangedContent(t *testing.T) {
	r, logs := newTestRouter()
	r.SetTarget("c1")

	r.Dispatch(Event{
		Kind:      MessageEdited,
		ChannelID: "c1",
		Author:    "Bob",
		Before:    "same",
		After:     "same",
	})
	if n := logs.Len(); n != 0 {
		t.Errorf("unchanged-content edit produced %d log lines, want 0", n)
	}
}

func TestDispatchEdited(t *testing.T) {
	r, logs := newTestRouter()
	r.SetTarget("c1")

	r.Dispatch(Event{
		Kind:      MessageEdited,
		ChannelID: "c1",
		Author:    "Bob",
		BeforeID:  "10",
		AfterID:   "10",
		Before:    "old words",
		After:     "new words",
	})

	entries := logs.All()
	if len(entries) != 3 {
		t.Fatalf("got %d log lines, want 3", len(entries))
	}
	want := []string{
		"EDITED: <Bob> 10->10",
		"\told words",
		"\tnew words",
	}
	for i, w := range want {
		if entries[i].Message != w {
			t.Errorf("line %d = %q, want %q", i, entries[i].Message, w)
		}
	}
}

func TestDispatchDeleted(t *testing.T) {
	r, logs := newTestRouter()
	r.SetTarget("c1")

	r.Dispatch(Event{Kind: MessageDeleted, ChannelID: "c1", Author: "Bob", Content: "bye"})

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("got %d log lines, want 1", len(entries))
	}
	if entries[0].Message != "DELETED: <Bob> bye" {
		t.Errorf("line = %q, want %q", entries[0].Message, "DELETED: <Bob> bye")
	}
}

func TestEventKindString(t *testing.T) {
	tests := []struct {
		kind EventKind
		want string
	}{
		{MessageCreated, "created"},
		{MessageEdited, "edited"},
		{MessageDeleted, "deleted"},
		{EventKind(99), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.kind.String(); got != tt.want {
			t.Errorf("EventKind(%d).String() = %q, want %q", tt.kind, got, tt.want)
		}
	}
}
