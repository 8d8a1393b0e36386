package clipboard

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"a\r\nb\r\n", "a\nb\n"},
		{"a\rb", "a\nb"},
		{"plain\n", "plain\n"},
		{"", ""},
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, Normalize(tt.in))
	}
}

func TestMemory(t *testing.T) {
	m := NewMemory("1 2\r\n")
	got, err := m.Read()
	require.NoError(t, err)
	require.Equal(t, "1 2\n", got)

	require.NoError(t, m.Write("x"))
	got, _ = m.Read()
	require.Equal(t, "x", got)
}

func TestDefaultIsUsable(t *testing.T) {
	var p Provider = Default()
	require.NotNil(t, p)
}
