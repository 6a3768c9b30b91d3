package manager

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseBindToken(t *testing.T) {
	testcases := []struct {
		name     string
		token    string
		expected binding
		ok       bool
	}{
		{
			name:     "wildcard port and protocol",
			token:    "8080/tcp",
			expected: binding{Port: 8080, Protocol: "tcp", raw: "8080/tcp"},
			ok:       true,
		},
		{
			name:     "wildcard with trailing dash",
			token:    "8080/tcp-",
			expected: binding{Port: 8080, Protocol: "tcp", raw: "8080/tcp-"},
			ok:       true,
		},
		{
			name:     "explicit frontend address",
			token:    "8080/tcp-192.0.2.10:9000",
			expected: binding{Port: 8080, Protocol: "tcp", Address: "192.0.2.10:9000", raw: "8080/tcp-192.0.2.10:9000"},
			ok:       true,
		},
		{name: "missing protocol", token: "8080"},
		{name: "empty protocol", token: "8080/"},
		{name: "empty protocol with address", token: "8080/-192.0.2.10:9000"},
		{name: "non-numeric port", token: "http/tcp"},
		{name: "negative port", token: "-1/tcp"},
	}

	for _, tt := range testcases {
		// go vet
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			b, ok := parseBindToken(tt.token)
			require.Equal(t, tt.ok, ok)

			if tt.ok {
				assert.Equal(t, tt.expected, b)
				assert.Equal(t, tt.expected.Address == "", b.wildcard())
			}
		})
	}
}

func TestParseBindings(t *testing.T) {
	t.Run("keeps well-formed tokens and flags dropped ones", func(t *testing.T) {
		t.Parallel()

		bindings, dropped := parseBindings("8080 9000/tcp")
		assert.True(t, dropped)
		require.Len(t, bindings, 1)
		assert.Equal(t, 9000, bindings[0].Port)
		assert.Equal(t, "9000/tcp", joinBindings(bindings))
	})

	t.Run("clean value", func(t *testing.T) {
		t.Parallel()

		bindings, dropped := parseBindings("8080/tcp 9000/udp-192.0.2.10:9000")
		assert.False(t, dropped)
		assert.Len(t, bindings, 2)
		assert.Equal(t, "8080/tcp 9000/udp-192.0.2.10:9000", joinBindings(bindings))
	})

	t.Run("empty value", func(t *testing.T) {
		t.Parallel()

		bindings, dropped := parseBindings("")
		assert.False(t, dropped)
		assert.Empty(t, bindings)
	})
}

func TestServerKey(t *testing.T) {
	t.Run("wire form", func(t *testing.T) {
		t.Parallel()

		key := serverKey{Port: 8080, Service: "svc1"}
		assert.Equal(t, "_8080_svc1", key.String())
	})

	t.Run("round trip", func(t *testing.T) {
		t.Parallel()

		key, ok := parseServerKey("_8080_svc1")
		require.True(t, ok)
		assert.Equal(t, serverKey{Port: 8080, Service: "svc1"}, key)
	})

	t.Run("service names may contain underscores", func(t *testing.T) {
		t.Parallel()

		key, ok := parseServerKey("_8080_my_svc")
		require.True(t, ok)
		assert.Equal(t, serverKey{Port: 8080, Service: "my_svc"}, key)
	})

	t.Run("keys compare by structure, not prefix", func(t *testing.T) {
		t.Parallel()

		a, ok := parseServerKey("_8080_svc")
		require.True(t, ok)

		b, ok := parseServerKey("_8080_svc2")
		require.True(t, ok)

		assert.NotEqual(t, a, b)
		assert.Equal(t, "svc", a.Service)
		assert.Equal(t, "svc2", b.Service)
	})

	negativeTests := []struct {
		name string
		key  string
	}{
		{"no leading underscore", "8080_svc1"},
		{"missing service", "_8080_"},
		{"missing port", "_svc1"},
		{"non-numeric port", "_http_svc1"},
		{"empty", ""},
	}

	for _, tt := range negativeTests {
		// go vet
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, ok := parseServerKey(tt.key)
			assert.False(t, ok)
		})
	}
}
