package netutil

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeIP(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
		ok    bool
	}{
		{name: "ipv4 with port", input: "192.0.2.4:8080", want: "192.0.2.4", ok: true},
		{name: "plain ipv4", input: "203.0.113.9", want: "203.0.113.9", ok: true},
		{name: "ipv6 with port", input: "[2001:db8::1]:443", want: "2001:db8::1", ok: true},
		{name: "ipv6 textual port", input: "[::1]:port", want: "::1", ok: true},
		{name: "plain ipv6", input: "2001:db8::5", want: "2001:db8::5", ok: true},
		{name: "ipv6 zone stripped", input: "fe80::1%eth0", want: "fe80::1", ok: true},
		{name: "whitespace", input: "  192.0.2.4  ", want: "192.0.2.4", ok: true},
		{name: "not an ip", input: "not-an-ip", want: "not-an-ip", ok: false},
		{name: "empty", input: "", want: "", ok: false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := NormalizeIP(tc.input)
			assert.Equal(t, tc.ok, ok)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestTruncateUserAgent(t *testing.T) {
	long := strings.Repeat("a", MaxUserAgentLength+10)
	assert.Len(t, []rune(TruncateUserAgent(long)), MaxUserAgentLength)
	assert.Equal(t, "short", TruncateUserAgent("short"))
}

func TestTruncateLocation(t *testing.T) {
	long := strings.Repeat("Ü", MaxLocationLength+5)
	assert.Len(t, []rune(TruncateLocation(long)), MaxLocationLength)
	assert.Equal(t, "Berlin, DE", TruncateLocation("Berlin, DE"))
}
