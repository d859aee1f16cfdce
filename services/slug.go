package services

import "strings"

// Slugify derives the URL slug for a project title: lowercase, every run of
// characters outside [a-z0-9] collapsed to a single hyphen, leading and
// trailing hyphens stripped. The slug doubles as the project's storage folder
// name, so it must stay stable for unchanged titles.
func Slugify(title string) string {
	var result strings.Builder
	pendingHyphen := false
	for _, r := range strings.ToLower(title) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			if pendingHyphen && result.Len() > 0 {
				result.WriteByte('-')
			}
			pendingHyphen = false
			result.WriteRune(r)
		} else {
			pendingHyphen = true
		}
	}
	return result.String()
}
