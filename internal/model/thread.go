package model

// ReplyThread is an id-indexed arena over one notification's replies.
// It is built from a single listing query and answers parent/ancestor
// questions without touching the database again.
type ReplyThread struct {
	ordered []NotificationReply
	byID    map[uint64]int
}

// NewReplyThread indexes replies already sorted in creation order.
func NewReplyThread(replies []NotificationReply) *ReplyThread {
	t := &ReplyThread{
		ordered: replies,
		byID:    make(map[uint64]int, len(replies)),
	}
	for i, r := range replies {
		t.byID[r.ID] = i
	}
	return t
}

func (t *ReplyThread) Len() int {
	return len(t.ordered)
}

// Replies returns the thread in creation order.
func (t *ReplyThread) Replies() []NotificationReply {
	return t.ordered
}

func (t *ReplyThread) Get(id uint64) (*NotificationReply, bool) {
	i, ok := t.byID[id]
	if !ok {
		return nil, false
	}
	return &t.ordered[i], true
}

// Parent returns the reply the given reply responds to, if any.
func (t *ReplyThread) Parent(id uint64) (*NotificationReply, bool) {
	r, ok := t.Get(id)
	if !ok || r.ReplyToID == nil {
		return nil, false
	}
	return t.Get(*r.ReplyToID)
}

// AncestorOf reports whether ancestorID appears on the reply-to chain
// above id. The walk is bounded by thread size, so a cycle introduced
// by bad data cannot loop forever.
func (t *ReplyThread) AncestorOf(id, ancestorID uint64) bool {
	cur, ok := t.Get(id)
	if !ok {
		return false
	}
	for steps := 0; steps <= len(t.ordered); steps++ {
		if cur.ReplyToID == nil {
			return false
		}
		if *cur.ReplyToID == ancestorID {
			return true
		}
		cur, ok = t.Get(*cur.ReplyToID)
		if !ok {
			return false
		}
	}
	return false
}
