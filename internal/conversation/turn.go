// Package conversation holds per-user chat history and the windowing rules
// that bound how much of it is sent upstream.
package conversation

// Role identifies the author of a turn.
type Role string

const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
)

// Turn is one message exchanged in a conversation, attributed to either the
// user or the model.
type Turn struct {
	Role Role
	Text string
}
