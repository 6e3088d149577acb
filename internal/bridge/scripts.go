package bridge

import (
	"embed"
	"fmt"
)

// The automation scripts ship embedded so the binary is self-contained. One
// source per operation and platform: JXA (.js) for osascript, PowerShell
// (.ps1) for the Windows runner. Every script prints exactly one Result JSON
// document on stdout and exits 0 even on reported failure; a non-zero exit
// means the runner itself broke.
//
//go:embed scripts/*.js scripts/*.ps1
var scriptFS embed.FS

// source loads the script implementing operation on this platform.
func (p platform) source(operation string) (string, error) {
	ext := ".js"
	if p.goos == "windows" {
		ext = ".ps1"
	}
	data, err := scriptFS.ReadFile("scripts/" + operation + ext)
	if err != nil {
		return "", fmt.Errorf("script %s%s: %w", operation, ext, err)
	}
	return string(data), nil
}
