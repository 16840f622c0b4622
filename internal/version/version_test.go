package version

import (
	"strings"
	"testing"
)

func TestString(t *testing.T) {
	t.Parallel()

	s := String()
	for _, part := range []string{"version=", "commit=", "date="} {
		if !strings.Contains(s, part) {
			t.Fatalf("expected %q in %q", part, s)
		}
	}
}

func TestInfoDefaults(t *testing.T) {
	t.Parallel()

	v, c, d := Info()
	if v == "" || c == "" || d == "" {
		t.Fatalf("version info must have defaults, got %q %q %q", v, c, d)
	}
}
