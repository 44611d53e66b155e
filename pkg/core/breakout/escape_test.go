package breakout

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetectPlatform(t *testing.T) {
	tests := []struct {
		ua       string
		expected Platform
	}{
		{"Mozilla/5.0 (Linux; Android 13; Pixel 7; wv) Instagram 301.0", Android},
		{"Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X) [LinkedInApp]", IOS},
		{"Mozilla/5.0 (iPad; CPU OS 16_0 like Mac OS X)", IOS},
		{"Mozilla/5.0 (Windows NT 10.0; Win64; x64) Chrome/120.0", Other},
		{"", Other},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, DetectPlatform(tt.ua), tt.ua)
	}
}

func TestAndroidIntent(t *testing.T) {
	got := AndroidIntent("https://example.com/a?b=1")
	assert.Equal(t,
		"intent://example.com/a?b=1#Intent;scheme=https;action=android.intent.action.VIEW;"+
			"category=android.intent.category.BROWSABLE;"+
			"S.browser_fallback_url=https%3A%2F%2Fexample.com%2Fa%3Fb%3D1;end",
		got)

	assert.Contains(t, AndroidIntent("http://example.com"), "scheme=http;")
}

func TestEscapeURL(t *testing.T) {
	dest := "https://example.com"
	assert.Equal(t, "x-safari-https://example.com", EscapeURL(IOS, dest))
	assert.Equal(t, dest, EscapeURL(Other, dest))
	assert.Equal(t, AndroidIntent(dest), EscapeURL(Android, dest))
}

func TestNewPlan(t *testing.T) {
	p := NewPlan("https://example.com", IOS)
	assert.Equal(t, "ios", p.Hint)
	assert.Equal(t, "https://example.com", p.Other)
	assert.Equal(t, int64(2500), p.FallbackMS)
	assert.Equal(t, int64(2000), p.CooldownMS)
	assert.Equal(t, int64(2000), p.CopyAckMS)
}
