package sanitize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRedact(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "email",
			in:   "contact me at jane.doe@example.com please",
			want: "contact me at [redacted-email] please",
		},
		{
			name: "uuid",
			in:   "session deadbeef-dead-beef-dead-beefdeadbeef failed",
			want: "session [redacted-uuid] failed",
		},
		{
			name: "bearer token",
			in:   "header was Bearer abc.def.ghi",
			want: "header was Bearer [redacted]",
		},
		{
			name: "key value secret",
			in:   "set password: hunter2 and retry",
			want: "set password=[redacted] and retry",
		},
		{
			name: "api key variants",
			in:   "api_key=sk-123abc broke",
			want: "api_key=[redacted] broke",
		},
		{
			name: "plain text untouched",
			in:   "otp code not generating",
			want: "otp code not generating",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Redact(tt.in))
		})
	}
}

func TestRedact_Phone(t *testing.T) {
	got := Redact("call +1 (555) 123-4567 now")
	assert.Contains(t, got, "[redacted-phone]")
	assert.NotContains(t, got, "555")
}

func TestRedactMap(t *testing.T) {
	out := RedactMap(map[string]string{
		"owner": "jane.doe@example.com",
		"model": "Pixel 9",
	})
	assert.Equal(t, "[redacted-email]", out["owner"])
	assert.Equal(t, "Pixel 9", out["model"])

	assert.Empty(t, RedactMap(nil))
}

func TestPseudonymize(t *testing.T) {
	a := Pseudonymize("Jane.Doe@example.com")
	b := Pseudonymize("  jane.doe@EXAMPLE.com ")
	assert.Equal(t, a, b, "normalization should make handles stable")
	assert.Len(t, a, len("user-")+12)
	assert.NotContains(t, a, "jane")

	assert.Equal(t, "user-anonymous", Pseudonymize("  "))
}
