package prompt

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPassphrase_Piped(t *testing.T) {
	got, err := Passphrase(strings.NewReader("a b c\r\nsecond line"), &bytes.Buffer{})
	require.NoError(t, err)
	assert.Equal(t, "a b c", got)

	got, err = Passphrase(strings.NewReader("no newline"), &bytes.Buffer{})
	require.NoError(t, err)
	assert.Equal(t, "no newline", got)
}
