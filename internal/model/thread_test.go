package model

import "testing"

func uptr(v uint64) *uint64 { return &v }

func TestReplyThread(t *testing.T) {
	// 1 <- 2 <- 3, 4 standalone
	thread := NewReplyThread([]NotificationReply{
		{ID: 1, Text: "first"},
		{ID: 2, ReplyToID: uptr(1), Text: "second"},
		{ID: 3, ReplyToID: uptr(2), Text: "third"},
		{ID: 4, Text: "fourth"},
	})

	if thread.Len() != 4 {
		t.Fatalf("len=%d want=4", thread.Len())
	}
	if r, ok := thread.Get(2); !ok || r.Text != "second" {
		t.Fatalf("Get(2)=%v ok=%v", r, ok)
	}
	if _, ok := thread.Get(99); ok {
		t.Fatal("Get(99) should miss")
	}

	if p, ok := thread.Parent(3); !ok || p.ID != 2 {
		t.Fatalf("Parent(3)=%v ok=%v", p, ok)
	}
	if _, ok := thread.Parent(1); ok {
		t.Fatal("Parent(1) should be absent")
	}

	tests := []struct {
		name         string
		id, ancestor uint64
		want         bool
	}{
		{"direct parent", 2, 1, true},
		{"grandparent", 3, 1, true},
		{"self", 3, 3, false},
		{"sibling branch", 4, 1, false},
		{"unknown id", 99, 1, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := thread.AncestorOf(tt.id, tt.ancestor); got != tt.want {
				t.Fatalf("AncestorOf(%d,%d)=%v want=%v", tt.id, tt.ancestor, got, tt.want)
			}
		})
	}
}

func TestReplyThreadCycleSafety(t *testing.T) {
	// bad data: 1 and 2 point at each other
	thread := NewReplyThread([]NotificationReply{
		{ID: 1, ReplyToID: uptr(2)},
		{ID: 2, ReplyToID: uptr(1)},
	})
	if thread.AncestorOf(1, 99) {
		t.Fatal("cycle should not claim unknown ancestor")
	}
}
