package domain

import "time"

// Message is one directional chat entry. ID, Seq and Timestamp are
// assigned by the store; client-supplied values are ignored. The
// (Sender, Receiver) pair never changes after creation; edits touch
// Text and Edited only.
type Message struct {
	ID        string    `bson:"_id" json:"id"`
	Sender    string    `bson:"sender" json:"sender"`
	Receiver  string    `bson:"receiver" json:"receiver"`
	Text      string    `bson:"text" json:"text"`
	Timestamp time.Time `bson:"timestamp" json:"timestamp"`
	Edited    bool      `bson:"edited" json:"edited"`

	// Seq is a store-assigned monotonic insertion counter, used to
	// break timestamp ties when listing a conversation.
	Seq int64 `bson:"seq" json:"-"`
}

// Conversation is the unordered pair of two user identities. It is
// derived, never stored.
type Conversation struct {
	A, B string
}

// NewConversation normalizes the pair so that {x,y} and {y,x} compare
// equal.
func NewConversation(x, y string) Conversation {
	if y < x {
		x, y = y, x
	}
	return Conversation{A: x, B: y}
}

// Involves reports whether the message belongs to this conversation in
// either direction.
func (c Conversation) Involves(m *Message) bool {
	return (m.Sender == c.A && m.Receiver == c.B) ||
		(m.Sender == c.B && m.Receiver == c.A)
}

// Has reports whether user is one of the two parties.
func (c Conversation) Has(user string) bool {
	return user == c.A || user == c.B
}
