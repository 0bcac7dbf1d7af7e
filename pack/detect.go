package pack

import (
	"archive/zip"
	"regexp"
)

var refPattern = regexp.MustCompile(`^\.content/([0-9A-Fa-f]{8})/`)

// requiredEntries names the minimum set of entries (relative to
// .content/<REF>/) that must be present for an input ZIP to be treated as
// already-native (§4.6 step 1).
var requiredEntries = []string{"ni", "li", "ri", "si"}

// DetectExisting reports whether zr already contains a complete
// .content/<REF>/ tree, returning the discovered REF when it does. Only the
// first matching REF directory found is considered; a malformed archive
// with more than one is treated as a non-match.
func DetectExisting(zr *zip.Reader) (ref string, ok bool) {
	var found string
	present := make(map[string]bool, len(requiredEntries))
	hasRF, hasSF := false, false

	for _, f := range zr.File {
		m := refPattern.FindStringSubmatch(f.Name)
		if m == nil {
			continue
		}
		thisRef := m[1]
		if found == "" {
			found = thisRef
		} else if found != thisRef {
			return "", false
		}

		rest := f.Name[len(m[0]):]
		switch {
		case rest == "ni", rest == "li", rest == "ri", rest == "si":
			present[rest] = true
		case len(rest) >= 3 && rest[:3] == "rf/":
			hasRF = true
		case len(rest) >= 3 && rest[:3] == "sf/":
			hasSF = true
		}
	}

	if found == "" || !hasRF || !hasSF {
		return "", false
	}
	for _, name := range requiredEntries {
		if !present[name] {
			return "", false
		}
	}
	return found, true
}
