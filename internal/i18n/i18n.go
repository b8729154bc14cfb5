// Package i18n localizes user-facing messages. Only presentation strings
// are translated; status codes and payload structure never change with
// the language.
package i18n

import (
	"fmt"

	"golang.org/x/text/language"
)

var matcher = language.NewMatcher([]language.Tag{
	language.English, // first entry is the fallback
	language.Spanish,
})

// Printer renders message keys in one resolved language.
type Printer struct {
	catalog map[string]string
}

// Pick resolves a Printer from an explicit lang value ("en", "es") and
// the request's Accept-Language header. The explicit value wins.
func Pick(lang, acceptLanguage string) *Printer {
	if lang == "" {
		lang = acceptLanguage
	}
	tags, _, err := language.ParseAcceptLanguage(lang)
	if err != nil || len(tags) == 0 {
		return &Printer{catalog: english}
	}
	_, index, _ := matcher.Match(tags...)
	if index == 1 {
		return &Printer{catalog: spanish}
	}
	return &Printer{catalog: english}
}

// T renders the message for key with fmt-style arguments. Unknown keys
// render as the key itself so a missing translation is visible, not fatal.
func (p *Printer) T(key string, args ...interface{}) string {
	msg, ok := p.catalog[key]
	if !ok {
		msg, ok = english[key]
		if !ok {
			return key
		}
	}
	if len(args) == 0 {
		return msg
	}
	return fmt.Sprintf(msg, args...)
}
