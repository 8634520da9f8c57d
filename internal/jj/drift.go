package jj

import (
	"fmt"

	"github.com/pmezard/go-difflib/difflib"
)

// DescriptionDrift renders a unified diff between the description a revision
// had when it was last seen and its description now. It is empty when the
// descriptions are equal.
func DescriptionDrift(from, to Head, oldDesc, newDesc string) (string, error) {
	if oldDesc == newDesc {
		return "", nil
	}
	ud := difflib.UnifiedDiff{
		A:        difflib.SplitLines(oldDesc),
		B:        difflib.SplitLines(newDesc),
		FromFile: fmt.Sprintf("a/%s", from.ContentID),
		ToFile:   fmt.Sprintf("b/%s", to.ContentID),
		Context:  3,
	}
	return difflib.GetUnifiedDiffString(ud)
}
