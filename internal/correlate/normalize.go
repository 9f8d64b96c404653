// Package correlate matches a bet's stored team names against a live
// snapshot's fixtures using normalized fuzzy comparison.
package correlate

import "strings"

// Normalize lowercases a team name and strips everything that is not a
// letter or digit, so "Man. United" and "man united" compare equal.
func Normalize(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	for _, r := range strings.ToLower(name) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// tokens lowercases a name and splits it on every non-alphanumeric run.
func tokens(name string) []string {
	return strings.FieldsFunc(strings.ToLower(name), func(r rune) bool {
		return !(r >= 'a' && r <= 'z') && !(r >= '0' && r <= '9')
	})
}

// NamesMatch tests two raw team names. In order: exact equality of the
// normalized forms, substring containment in either direction, then a
// token-prefix pass so abbreviated forms like "Man United" still line up
// with "Manchester United". Short single-word names can false-positive on
// the substring rule; that is the accepted trade-off.
func NamesMatch(a, b string) bool {
	na, nb := Normalize(a), Normalize(b)
	if na == "" || nb == "" {
		return false
	}
	if na == nb || strings.Contains(na, nb) || strings.Contains(nb, na) {
		return true
	}
	return tokensMatch(tokens(a), tokens(b))
}

// tokensMatch requires the same word count with each pair of words being
// equal or one a prefix of the other ("man"/"manchester", "united"/"united").
func tokensMatch(a, b []string) bool {
	if len(a) == 0 || len(a) != len(b) {
		return false
	}
	for i := range a {
		if !strings.HasPrefix(a[i], b[i]) && !strings.HasPrefix(b[i], a[i]) {
			return false
		}
	}
	return true
}

// PairMatch tests a raw (home, away) pair against a fixture's raw pair.
// Both sides must match.
func PairMatch(home, away, fixtureHome, fixtureAway string) bool {
	return NamesMatch(home, fixtureHome) && NamesMatch(away, fixtureAway)
}
