package ai

import (
	_ "embed"
)

//go:embed style_instruction.txt
var styleInstruction string

// Compose wraps a raw user message with the fixed style instruction that is
// prepended to every outbound request. The instruction is never sent as a
// separate system turn and is never stored in conversation history, so it
// does not accumulate in the context sent upstream; only the raw message is
// recorded as the user's turn.
func Compose(rawMessage string) string {
	return styleInstruction + rawMessage
}
