package teller_test

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// The e2e container runs without a model endpoint, so chat turns answer with
// the static unavailability notice. That still exercises the full routing
// path: session creation, handler dispatch and transcript persistence.
func TestChatTurn(t *testing.T) {
	client, cleanup := setupTellerContainer(t)
	defer cleanup()

	pair := adminLogin(t, client)
	ctx := t.Context()

	out, err := client.Chat(ctx, pair.AccessToken, "thread-e2e-1", "hello there")
	require.NoError(t, err)
	require.Equal(t, "unset", out.ActiveHandler)
	require.NotEmpty(t, out.Messages)
	require.Equal(t, "assistant", out.Messages[0].Role)

	t.Run("second turn keeps the thread", func(t *testing.T) {
		out, err := client.Chat(ctx, pair.AccessToken, "thread-e2e-1", "still there?")
		require.NoError(t, err)
		require.Equal(t, "unset", out.ActiveHandler)
	})

	t.Run("empty text is rejected", func(t *testing.T) {
		_, err := client.Chat(ctx, pair.AccessToken, "thread-e2e-1", "")
		assertAPIError(t, err, "invalid_request", "empty chat text")
	})

	t.Run("chat requires a token", func(t *testing.T) {
		_, err := client.Chat(ctx, "", "thread-e2e-2", "hello")
		require.Error(t, err)
	})
}
