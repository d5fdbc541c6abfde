package variables

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFile_SetCopiesValueComments(t *testing.T) {
	f, err := Parse([]byte("jwt1: old-token\nother: x\n"))
	require.NoError(t, err)

	old := f.root.Content[1]
	old.HeadComment = "# issued by the gateway"
	old.LineComment = "# expires daily"
	old.FootComment = "# end of token"

	f.Set("jwt1", "new-token")

	node := f.root.Content[1]
	require.NotSame(t, old, node)
	require.Equal(t, "new-token", node.Value)
	require.Equal(t, "!!str", node.Tag)
	require.Equal(t, "# issued by the gateway", node.HeadComment)
	require.Equal(t, "# expires daily", node.LineComment)
	require.Equal(t, "# end of token", node.FootComment)
}
