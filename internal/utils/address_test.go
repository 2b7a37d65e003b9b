package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeEvmAddress(t *testing.T) {
	got, err := NormalizeEvmAddress("5aaeb6053f3e94c9b9a09f33669435e7ef1beaed")
	require.NoError(t, err)
	assert.Equal(t, "0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed", got)

	_, err = NormalizeEvmAddress("0x1234")
	assert.Error(t, err)
	assert.False(t, IsEvmAddress("T9yD14Nj9j7xAB4dbGeiX9h8unkKHxuWwb"))
}

func TestParseRecordID(t *testing.T) {
	id, err := ParseRecordID("42")
	require.NoError(t, err)
	assert.Equal(t, "42", id.String())

	id, err = ParseRecordID("0xff")
	require.NoError(t, err)
	assert.Equal(t, "255", id.String())

	id, err = ParseRecordID("215161996342946094468498211958232023125")
	require.NoError(t, err)
	assert.Equal(t, "215161996342946094468498211958232023125", id.String())

	for _, bad := range []string{"", "abc", "-1", "1.5"} {
		_, err := ParseRecordID(bad)
		assert.Error(t, err, bad)
	}
}
