package hashing

import (
	"bytes"
	"crypto/md5" //nolint:gosec
	"encoding/hex"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func md5Hex(data []byte) string {
	sum := md5.Sum(data) //nolint:gosec
	return hex.EncodeToString(sum[:])
}

func TestSink_EmptyDigest(t *testing.T) {
	assert.Equal(t, "d41d8cd98f00b204e9800998ecf8427e", New().Sum())
}

func TestSink_SeededThenUpdatedMatchesWhole(t *testing.T) {
	payload := bytes.Repeat([]byte("0123456789"), 500)

	tests := []struct {
		name   string
		prefix int
	}{
		{name: "nothing seeded", prefix: 0},
		{name: "partial prefix", prefix: 1000},
		{name: "everything seeded", prefix: len(payload)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sink, err := NewSeeded(bytes.NewReader(payload[:tt.prefix]))
			require.NoError(t, err)

			rest := payload[tt.prefix:]
			for len(rest) > 0 {
				n := min(333, len(rest))
				sink.Update(rest[:n])
				rest = rest[n:]
			}

			assert.Equal(t, md5Hex(payload), sink.Sum())
			assert.Equal(t, int64(len(payload)), sink.Written())
		})
	}
}

func TestSink_SumDoesNotReset(t *testing.T) {
	sink := New()
	sink.Update([]byte("hello "))
	_ = sink.Sum()
	sink.Update([]byte("world"))
	assert.Equal(t, md5Hex([]byte("hello world")), sink.Sum())
}

func TestOf(t *testing.T) {
	got, err := Of(strings.NewReader("test content"))
	require.NoError(t, err)
	assert.Equal(t, md5Hex([]byte("test content")), got)
}

func TestEqual(t *testing.T) {
	assert.True(t, Equal("ABCDEF", " abcdef\n"))
	assert.False(t, Equal("abcdef", "abcdee"))
}
