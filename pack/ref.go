// Package pack builds and detects the native on-device ".content/<REF>/"
// directory tree and zips it with DEFLATE compression. Grounded on the
// reference lunii_converter.py's output-tree assembly, reworked around
// archive/zip the way other retrieved Go repos in this domain package up
// project archives.
package pack

import "strings"

// DeriveRef returns the upper-cased last 8 hex characters of packUUID
// (§4.6 step 4), the directory name the device uses to identify the pack.
func DeriveRef(packUUID string) string {
	hex := strings.ReplaceAll(packUUID, "-", "")
	if len(hex) < 8 {
		hex = strings.Repeat("0", 8-len(hex)) + hex
	}
	return strings.ToUpper(hex[len(hex)-8:])
}
