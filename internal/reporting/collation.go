package reporting

import (
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Member and group names are French (Congo).
var collationTag = language.MustParse("fr-CD")

// newCollator returns a fresh collator. Collators keep internal buffers and
// must not be shared between goroutines.
func newCollator() *collate.Collator {
	return collate.New(collationTag)
}
