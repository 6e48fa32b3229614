package ws

import "github.com/someoxygen/chat-app/internal/domain"

// Inbound frame types.
const (
	TypeJoin      = "join"
	TypeSend      = "private-message"
	TypeEdit      = "edit-message"
	TypeDelete    = "delete-message"
	TypeDeleteAll = "delete-conversation"
)

// Outbound frame types (besides the push events named in the delivery
// package).
const (
	TypeAck   = "ack"
	TypeError = "error"
)

// Inbound is the client-to-server wire format. Fields are used
// per-type; unknown types are ignored.
type Inbound struct {
	Type     string `json:"type"`
	Token    string `json:"token,omitempty"`
	Receiver string `json:"receiver,omitempty"`
	Peer     string `json:"peer,omitempty"`
	ID       string `json:"id,omitempty"`
	Text     string `json:"text,omitempty"`
	// Ref is an optional client correlation id echoed on the ack.
	Ref string `json:"ref,omitempty"`
}

// Outbound is the server-to-client wire format. Message carries the
// full stored message on pushes and acks.
type Outbound struct {
	Type             string          `json:"type"`
	Message          *domain.Message `json:"message,omitempty"`
	Removed          int64           `json:"removed,omitempty"`
	RecipientOffline bool            `json:"recipient_offline,omitempty"`
	Ref              string          `json:"ref,omitempty"`
	Code             string          `json:"code,omitempty"`
	Detail           string          `json:"detail,omitempty"`
	// Ambiguous marks a failed send whose write may still have landed;
	// the client must refetch history instead of blindly retrying.
	Ambiguous bool `json:"ambiguous,omitempty"`
}
