// Package merge synchronizes target locale files with the source locale's
// key set, equivalent to the msgmerge step of a gettext workflow.
package merge

import (
	"github.com/jannikbertram/Rire/messages"
)

// Result summarizes a merge.
type Result struct {
	// Added is the number of keys newly introduced from the source.
	Added int
	// Removed is the number of stale keys dropped from the target.
	Removed int
}

// Merge updates a target locale map against the source:
//   - Keys present in both keep the target's translation.
//   - New source keys are added with empty translations.
//   - Target keys no longer in the source are dropped.
//
// The returned map follows the source's key order.
func Merge(target, source *messages.Map) (*messages.Map, Result) {
	var res Result
	merged := messages.New()

	for _, e := range source.Entries() {
		if existing, ok := target.Get(e.Key); ok {
			merged.Set(e.Key, existing)
		} else {
			merged.Set(e.Key, "")
			res.Added++
		}
	}

	for _, key := range target.Keys() {
		if !source.Has(key) {
			res.Removed++
		}
	}

	return merged, res
}
