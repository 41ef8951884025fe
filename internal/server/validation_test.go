package server

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateName(t *testing.T) {
	name, err := validateName("  Ada \t Lovelace ", 50)
	require.NoError(t, err)
	assert.Equal(t, "Ada Lovelace", name)

	name, err = validateName("Zoë", 3)
	require.NoError(t, err)
	assert.Equal(t, "Zoë", name)

	for _, bad := range []string{"", "   ", "<b>", "tab\x00null", strings.Repeat("x", 51)} {
		_, err := validateName(bad, 50)
		assert.Error(t, err, "%q", bad)
	}
}

func TestClientMessageText(t *testing.T) {
	cases := map[string]string{
		`"plain"`:            "plain",
		`{"text":"wrapped"}`: "wrapped",
		`42`:                 "",
		``:                   "",
	}
	for raw, want := range cases {
		msg := clientMessage{Event: msgGuess, Data: []byte(raw)}
		assert.Equal(t, want, msg.text(), raw)
	}
}
