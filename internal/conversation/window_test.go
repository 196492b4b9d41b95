package conversation

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIsContinuation_FalseForEmptyHistory(t *testing.T) {
	require.False(t, IsContinuation(nil))
	require.False(t, IsContinuation([]Turn{}))
}

func TestIsContinuation_TrueForAnyHistory(t *testing.T) {
	turns := []Turn{{Role: RoleUser, Text: "Hello"}}
	require.True(t, IsContinuation(turns))

	turns = append(turns, Turn{Role: RoleModel, Text: "Hi there!"})
	require.True(t, IsContinuation(turns))
}

func TestApplyBound_ReturnsMostRecentSuffix(t *testing.T) {
	turns := make([]Turn, 25)
	for i := range turns {
		turns[i] = Turn{Role: RoleUser, Text: fmt.Sprintf("message %d", i)}
	}

	bounded := ApplyBound(turns, MaxTurns)

	require.Len(t, bounded, MaxTurns)
	require.Equal(t, "message 5", bounded[0].Text)
	require.Equal(t, "message 24", bounded[len(bounded)-1].Text)
}

func TestApplyBound_WithinBoundReturnsInputUnchanged(t *testing.T) {
	turns := []Turn{
		{Role: RoleUser, Text: "Hello"},
		{Role: RoleModel, Text: "Hi there!"},
	}

	bounded := ApplyBound(turns, MaxTurns)

	require.Equal(t, turns, bounded)
}

func TestApplyBound_DoesNotMutateInput(t *testing.T) {
	turns := make([]Turn, 25)
	for i := range turns {
		turns[i] = Turn{Role: RoleUser, Text: fmt.Sprintf("message %d", i)}
	}

	_ = ApplyBound(turns, MaxTurns)

	require.Len(t, turns, 25)
	require.Equal(t, "message 0", turns[0].Text)
}
