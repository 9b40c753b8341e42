package generator

import (
	"regexp"
	"sort"
	"strings"
)

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// ValidEmail reports whether email has a conventional local@domain.tld
// shape. Malformed addresses must be rejected before any upstream call.
func ValidEmail(email string) bool {
	return emailPattern.MatchString(email)
}

func isGmail(email string) bool {
	return strings.HasSuffix(strings.ToLower(email), "@gmail.com")
}

func splitEmail(email string) (local, domain string) {
	at := strings.LastIndex(email, "@")
	return email[:at], email[at+1:]
}

// WithDots inserts 1-3 dots at distinct interior positions of a gmail local
// part. Dots never land before the first character or before the last one,
// so they are never adjacent to the @. Non-gmail addresses and local parts
// of 3 characters or fewer are returned unchanged.
func WithDots(email string) string {
	if !isGmail(email) {
		return email
	}
	local, domain := splitEmail(email)
	if len(local) <= 3 {
		return email
	}

	// interior positions 1..len-2
	numDots := 1 + randInt(min(3, len(local)-2))
	positions := make([]int, len(local)-2)
	for i := range positions {
		positions[i] = i + 1
	}
	// partial shuffle, take the first numDots
	for i := len(positions) - 1; i > 0; i-- {
		j := randInt(i + 1)
		positions[i], positions[j] = positions[j], positions[i]
	}
	picked := positions[:numDots]
	sort.Ints(picked)

	var sb strings.Builder
	last := 0
	for _, pos := range picked {
		sb.WriteString(local[last:pos])
		sb.WriteByte('.')
		last = pos
	}
	sb.WriteString(local[last:])
	return sb.String() + "@" + domain
}

// WithPlusTag appends "+<3-8 random alphanumerics>" to a gmail local part.
// Non-gmail addresses are returned unchanged.
func WithPlusTag(email string) string {
	if !isGmail(email) {
		return email
	}
	local, domain := splitEmail(email)
	tag := randString(3+randInt(6), lowercase+digits)
	return local + "+" + tag + "@" + domain
}

// Variations derives up to count deliverable-equivalent addresses from base,
// alternating the dot and plus strategies. Results are deduplicated in
// generation order; the literal base backfills a short list. Non-gmail bases
// yield exactly [base].
func Variations(base string, count int) []string {
	if !isGmail(base) {
		return []string{base}
	}

	seen := make(map[string]struct{})
	var out []string
	add := func(v string) {
		if _, ok := seen[v]; ok {
			return
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}

	for i := 0; i < count; i++ {
		if i%2 == 0 {
			add(WithDots(base))
		} else {
			add(WithPlusTag(base))
		}
	}

	if len(out) < count {
		add(base)
	}
	if len(out) > count {
		out = out[:count]
	}
	return out
}
