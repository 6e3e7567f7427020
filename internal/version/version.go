// Package version provides build-time version information.
package version

import "fmt"

// Set at build time with -ldflags "-X meme-creator/internal/version.Version=...".
var (
	Version   = "0.1.0"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// AppName is the display name used in window titles and the About dialog.
const AppName = "Meme Creator"

// AppID identifies the application to fyne's preferences and storage.
const AppID = "dev.memecreator.app"

// String returns a one-line description such as "Meme Creator 0.1.0 (abc123, 2024-01-01)".
func String() string {
	return fmt.Sprintf("%s %s (%s, %s)", AppName, Version, GitCommit, BuildTime)
}

// UserAgent is sent with outbound HTTP requests.
func UserAgent() string {
	return "meme-creator/" + Version
}
