// Package i18n translates cbres's own user-facing messages.
//
// It wraps the gotext library. Catalogs are embedded in the binary via
// //go:embed and selected once at startup with Init.
package i18n

import (
	"embed"

	"github.com/leonelquinteros/gotext"

	"github.com/minios-linux/cbres/locale"
)

// locales embeds the translation catalogs.
// Directory structure: locales/{lang}/LC_MESSAGES/cbres.po
//
//go:embed all:locales
var locales embed.FS

// domain is the gettext domain name for cbres.
const domain = "cbres"

// po is the gotext locale object used for translations.
var po *gotext.Locale

// noArgs keeps gotext from treating message ids as printf formats.
var noArgs []any

// Init selects the message catalog. An empty lang is detected from
// LANGUAGE, LC_ALL, LC_MESSAGES and LANG, as GNU gettext does.
func Init(lang string) {
	if lang == "" {
		lang = locale.Env{}.Default()
	}

	po = gotext.NewLocaleFSWithPath(lang, locales, "locales")
	po.AddDomain(domain)
	po.SetDomain(domain)
}

// T translates a string, or returns it unchanged when no translation exists.
func T(msgid string) string {
	if po == nil {
		return msgid
	}
	return po.Get(msgid, noArgs...)
}

// N translates a string with plural forms.
func N(singular, plural string, n int) string {
	if po == nil {
		if n == 1 {
			return singular
		}
		return plural
	}
	return po.GetN(singular, plural, n, noArgs...)
}
