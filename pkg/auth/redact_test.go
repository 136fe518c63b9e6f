package auth

import (
	"testing"
)

func TestMaskToken(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  string
	}{
		{name: "long token keeps prefix", value: "eyJhbGciOiJSUzI1NiJ9", want: "eyJhbG***"},
		{name: "short token fully masked", value: "abc", want: "***"},
		{name: "boundary length fully masked", value: "abcdef", want: "***"},
		{name: "empty", value: "", want: "***"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MaskToken(tt.value); got != tt.want {
				t.Errorf("MaskToken(%q) = %q, want %q", tt.value, got, tt.want)
			}
		})
	}
}
