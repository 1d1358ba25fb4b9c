package qrimage

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDataURL(t *testing.T) {
	url, err := DataURL(Payload{Code: "abc-123", SessionType: "check-in"})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "data:image/png;base64,"))
	assert.Greater(t, len(url), len("data:image/png;base64,"))
}

func TestDecode(t *testing.T) {
	p, err := Decode(`{"code":"abc-123","session_type":"check-out"}`)
	require.NoError(t, err)
	assert.Equal(t, "abc-123", p.Code)
	assert.Equal(t, "check-out", p.SessionType)
}

func TestDecode_InvalidContent(t *testing.T) {
	_, err := Decode("not json at all")
	assert.Error(t, err)
}
