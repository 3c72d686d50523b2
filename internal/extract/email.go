// Package extract implements domain-anchored email extraction from raw
// page text.
//
// Design decision: We scan for the literal "@domain" suffix with
// strings.Index rather than running an email regex over the whole body
// because:
//  1. The target domain is known up front, so this is a "find this exact
//     substring many times" problem
//  2. Literal substring search is far cheaper than regex scanning on
//     large page bodies
//  3. Only addresses belonging to the page's own domain are wanted;
//     a general email regex would match and then discard everything else
package extract

import (
	"sort"
	"strings"
)

// isAddressChar reports whether c may appear in an email local part or
// domain. The set matches [\w.-]: letters, digits, underscore, dot, hyphen.
func isAddressChar(c byte) bool {
	switch {
	case c >= 'a' && c <= 'z':
		return true
	case c >= 'A' && c <= 'Z':
		return true
	case c >= '0' && c <= '9':
		return true
	case c == '_' || c == '.' || c == '-':
		return true
	}
	return false
}

// Emails scans text for email addresses whose domain part equals domain
// and returns them deduplicated and sorted.
//
// A leading "www." is stripped from domain first, so "www.example.com"
// and "example.com" both match addresses ending in "@example.com".
// Matching is case-sensitive on text; callers wanting case-insensitive
// behavior must normalize domain (and text) themselves.
//
// Each occurrence of "@domain" must be maximal: if the character right
// after the matched domain is itself an address character, the hit is a
// superstring false positive (e.g. "example.com" inside "example.com.au")
// and is skipped. For a valid occurrence the local part is collected by
// walking backward from the "@"; a bare "@domain" with no local part is
// discarded.
func Emails(text, domain string) []string {
	target := "@" + strings.TrimPrefix(domain, "www.")

	found := make(map[string]struct{})
	pos := 0
	for {
		idx := strings.Index(text[pos:], target)
		if idx < 0 {
			break
		}
		idx += pos
		end := idx + len(target)

		// Superstring match: the domain continues, so this is not our
		// domain at all. Resume right after the false-positive span.
		if end < len(text) && isAddressChar(text[end]) {
			pos = end
			continue
		}

		// Walk backward from the '@' to collect the local part.
		start := idx - 1
		for start >= 0 && isAddressChar(text[start]) {
			start--
		}
		if local := text[start+1 : idx]; local != "" {
			found[local+target] = struct{}{}
		}

		pos = end
	}

	emails := make([]string, 0, len(found))
	for email := range found {
		emails = append(emails, email)
	}
	sort.Strings(emails)

	return emails
}
