package assets

import (
	"path"
	"slices"
	"strings"
)

// AcceptedExtensions lists the file types offered by the submission form.
// The list is advisory: client input layers filter with it, the pipeline
// itself stores whatever it is given.
var AcceptedExtensions = []string{".pdf", ".jpg", ".jpeg", ".png"}

// IsAcceptedExtension reports whether name carries one of AcceptedExtensions.
func IsAcceptedExtension(name string) bool {
	ext := strings.ToLower(path.Ext(strings.TrimSpace(name)))
	return ext != "" && slices.Contains(AcceptedExtensions, ext)
}
