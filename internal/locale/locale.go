// Package locale maps the short locales used in site URLs to the locale ids used by the CMS.
package locale

import "sort"

// Locales maps CMS locale ids to URL locales. DefaultContent is used when nothing matches.
var Locales = map[string]string{
	"en-us": "en",
	"pl":    "pl",
}

const (
	// DefaultContent is the CMS locale used when no valid locale is supplied.
	DefaultContent = "en-us"
	// CookieName is the cookie the site stores the selected URL locale in.
	CookieName = "NEXT_LOCALE"
)

// Default returns the default URL locale.
func Default() string {
	return Locales[DefaultContent]
}

// IsValid reports whether urlLang is a supported URL locale.
func IsValid(urlLang string) bool {
	_, ok := ContentLocale(urlLang)
	return ok
}

// ContentLocale returns the CMS locale for a URL locale.
func ContentLocale(urlLang string) (string, bool) {
	for content, url := range Locales {
		if url == urlLang {
			return content, true
		}
	}
	return "", false
}

// FromCookie validates a cookie value and falls back to the default URL locale.
func FromCookie(value string) string {
	if value != "" && IsValid(value) {
		return value
	}
	return Default()
}

// URLLocales lists the supported URL locales in a stable order.
func URLLocales() []string {
	out := make([]string, 0, len(Locales))
	for _, url := range Locales {
		out = append(out, url)
	}
	sort.Strings(out)
	return out
}
