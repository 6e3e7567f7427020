package version

import (
	"strings"
	"testing"
)

func TestString(t *testing.T) {
	got := String()
	for _, want := range []string{AppName, Version, GitCommit} {
		if !strings.Contains(got, want) {
			t.Errorf("String() = %q, missing %q", got, want)
		}
	}
}

func TestUserAgent(t *testing.T) {
	if got := UserAgent(); got != "meme-creator/"+Version {
		t.Errorf("UserAgent() = %q", got)
	}
}
