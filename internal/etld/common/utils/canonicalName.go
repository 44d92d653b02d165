package utils

import "strings"

// CanonicalDNSName returns name trimmed of surrounding whitespace,
// lowercased, and without trailing dots. Rule markers ('!' and '*') are
// left in place so rule text can be canonicalized the same way as host names.
func CanonicalDNSName(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	return strings.TrimRight(name, ".")
}
