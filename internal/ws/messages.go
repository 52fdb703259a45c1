package ws

import "encoding/json"

// Envelope wraps every inbound WS frame.
type Envelope struct {
	Event string          `json:"event"`          // e.g. "rooms/join"
	Body  json.RawMessage `json:"body,omitempty"` // arbitrary JSON object
}

// outEnvelope is the outbound counterpart; its body is marshaled as-is.
type outEnvelope struct {
	Event string `json:"event"`
	Body  any    `json:"body,omitempty"`
}

// ──────────────────────────── Request DTOs ───────────────────────────────────

// JoinRequest is the body for "rooms/join".
type JoinRequest struct {
	RoomID   string `json:"room_id"`
	Username string `json:"username"`
}

// UpdateRequest is the body for "rooms/update".
type UpdateRequest struct {
	RoomID string `json:"room_id"`
	Text   string `json:"text"`
}

// SyncRequest is the body for "rooms/sync": push the requester's local text
// to exactly one peer, typically a late joiner.
type SyncRequest struct {
	TargetID string `json:"target_id"`
	Text     string `json:"text"`
}

// LeaveRequest is the (empty) body for the explicit "rooms/leave" variant;
// transport-level disconnect triggers the same path.
type LeaveRequest struct{}

// ErrorBody is sent to the requester only.
type ErrorBody struct {
	Reason string `json:"reason,omitempty"`
	Error  string `json:"error"`
}

// Error frame reasons.
const (
	ReasonDuplicateName = "duplicate_name"
	ReasonBadRequest    = "bad_request"
)
