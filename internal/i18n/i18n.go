// Package i18n translates the messages of API error responses.
package i18n

import (
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
)

const (
	// DefaultLocale is used when the client asks for nothing we support.
	DefaultLocale = "en"
	// AcceptLanguageHeader carries the client's locale preferences.
	AcceptLanguageHeader = "Accept-Language"
)

// SupportedLocales lists the locales every message is translated to.
var SupportedLocales = []string{"en", "pt", "nl"}

var (
	defaultTranslator *Translator
	translatorOnce    sync.Once
)

// Translator resolves message keys for a locale.
type Translator struct {
	messages map[string]map[string]string
}

// NewTranslator creates a Translator over the built-in catalog.
func NewTranslator() *Translator {
	return &Translator{messages: catalog}
}

// GetTranslator returns the process-wide Translator.
func GetTranslator() *Translator {
	translatorOnce.Do(func() {
		defaultTranslator = NewTranslator()
	})
	return defaultTranslator
}

// Translate returns the message for key in locale, falling back to DefaultLocale
// and then to the key itself.
func (t *Translator) Translate(key, locale string) string {
	byLocale, ok := t.messages[key]
	if !ok {
		return key
	}
	if msg, ok := byLocale[locale]; ok {
		return msg
	}
	return byLocale[DefaultLocale]
}

// Keys returns every known message key, sorted.
func (t *Translator) Keys() []string {
	keys := make([]string, 0, len(t.messages))
	for k := range t.messages {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// GetLocale picks the supported locale the client weighs highest in its
// Accept-Language header, e.g. "en-US,en;q=0.9,pt;q=0.8". Ties keep header order.
func GetLocale(c *gin.Context) string {
	return ParseAcceptLanguage(c.GetHeader(AcceptLanguageHeader))
}

// ParseAcceptLanguage is GetLocale over a raw header value.
func ParseAcceptLanguage(header string) string {
	best, bestQ := DefaultLocale, 0.0
	for _, part := range strings.Split(header, ",") {
		lang, q := parseLanguageRange(part)
		if q > bestQ && isSupported(lang) {
			best, bestQ = lang, q
		}
	}
	return best
}

// parseLanguageRange returns the lower-cased base language of one header entry and its weight.
func parseLanguageRange(part string) (string, float64) {
	fields := strings.Split(strings.TrimSpace(part), ";")
	lang := strings.ToLower(strings.TrimSpace(fields[0]))
	if i := strings.IndexByte(lang, '-'); i > 0 {
		lang = lang[:i]
	}

	q := 1.0
	for _, param := range fields[1:] {
		name, value, ok := strings.Cut(strings.TrimSpace(param), "=")
		if !ok || name != "q" {
			continue
		}
		parsed, err := strconv.ParseFloat(value, 64)
		if err != nil || parsed < 0 || parsed > 1 {
			return lang, 0
		}
		q = parsed
	}
	return lang, q
}

func isSupported(locale string) bool {
	for _, l := range SupportedLocales {
		if l == locale {
			return true
		}
	}
	return false
}
