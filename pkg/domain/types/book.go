package types

// EventImportProgress is the event name carrying model.ImportProgress
const EventImportProgress = "import-progress"

// EventReady is the first frame sent on a new event channel
const EventReady = "ready"

// WildcardExtension matches every regular file in an extension filter
const WildcardExtension = "*"

// BookExtensions are the lower-case extensions recognized by book discovery
var BookExtensions = []string{"epub", "pdf", "mobi", "azw3", "txt"}

// IsBookExtension reports whether ext (lower-case, without dot) is a recognized book format
func IsBookExtension(ext string) bool {
	for _, e := range BookExtensions {
		if e == ext {
			return true
		}
	}
	return false
}
