// Package util provides shared helpers for DICOM gathering.
package util

import "strings"

// maxFolderNameLen caps folder names so they stay valid on Windows filesystems.
const maxFolderNameLen = 200

// SanitizeFolderName removes characters that are invalid in folder names on
// Windows, trims leading/trailing spaces and dots, and caps the length.
func SanitizeFolderName(name string) string {
	const invalid = `<>:"/\|?*`

	var b strings.Builder
	b.Grow(len(name))
	for _, r := range name {
		if strings.ContainsRune(invalid, r) {
			b.WriteRune('_')
			continue
		}
		b.WriteRune(r)
	}

	out := strings.Trim(b.String(), " .")
	if runes := []rune(out); len(runes) > maxFolderNameLen {
		out = string(runes[:maxFolderNameLen])
	}
	return out
}
