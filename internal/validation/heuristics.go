package validation

import (
	"regexp"
	"strings"
)

var suspiciousPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?is)<script\b.*?</script>`),
	regexp.MustCompile(`(?i)javascript:`),
	regexp.MustCompile(`(?i)data:text/html`),
	regexp.MustCompile(`(?i)on\w+\s*=`),
	regexp.MustCompile(`(?is)<iframe\b.*?</iframe>`),
}

var (
	spamKeywords = regexp.MustCompile(`(?i)\b(viagra|cialis|casino|lottery|winner|congratulations)\b`)
	urlPattern   = regexp.MustCompile(`https?://\S+`)
	shouting     = regexp.MustCompile(`[A-Z]{10,}`)
)

const (
	maxURLs       = 2
	maxRepeatedCh = 4
)

// DisposableDomains are throwaway mailbox providers rejected by the contact form.
var DisposableDomains = map[string]struct{}{
	"10minutemail.com":  {},
	"tempmail.org":      {},
	"guerrillamail.com": {},
	"mailinator.com":    {},
}

var sanitizer = strings.NewReplacer(
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&#x27;",
	"/", "&#x2F;",
)

// ContainsSuspiciousContent reports markup or URLs commonly used for XSS.
func ContainsSuspiciousContent(text string) bool {
	for _, p := range suspiciousPatterns {
		if p.MatchString(text) {
			return true
		}
	}
	return false
}

// IsSpamLike flags link farms, known spam words, repeated characters and shouting.
func IsSpamLike(text string) bool {
	if len(urlPattern.FindAllString(text, -1)) > maxURLs {
		return true
	}
	if spamKeywords.MatchString(text) {
		return true
	}
	if hasRepeatedRun(text, maxRepeatedCh+1) {
		return true
	}
	return shouting.MatchString(text)
}

// hasRepeatedRun reports whether some character other than a line break appears n or more
// times in a row. RE2 has no backreferences, so this cannot be a regexp.
func hasRepeatedRun(text string, n int) bool {
	var (
		prev rune
		run  int
	)
	for i, r := range text {
		if isLineBreak(r) {
			run, prev = 0, r
			continue
		}
		if i > 0 && r == prev {
			run++
		} else {
			run = 1
		}
		if run >= n {
			return true
		}
		prev = r
	}
	return false
}

func isLineBreak(r rune) bool {
	return r == '\n' || r == '\r' || r == '\u2028' || r == '\u2029'
}

// IsAllowedEmailDomain rejects addresses without a domain or on a disposable domain.
func IsAllowedEmailDomain(email string) bool {
	at := strings.LastIndex(email, "@")
	if at < 0 || at == len(email)-1 {
		return false
	}
	_, disposable := DisposableDomains[strings.ToLower(email[at+1:])]
	return !disposable
}

// SanitizeText escapes characters that matter in HTML and trims the result.
func SanitizeText(text string) string {
	return strings.TrimSpace(sanitizer.Replace(text))
}
