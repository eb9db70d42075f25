package i18n

import (
	"sync"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

// Keys for the static labels the picker shows
const (
	KeyImported = "accounts.imported"
	KeyConnect  = "accounts.connect"
	KeyActive   = "accounts.active"
	KeySwitch   = "accounts.switch"
	KeyRevoke   = "accounts.revoke"
	KeyEth      = "unit.eth"
)

var translations = map[language.Tag]map[string]string{
	language.English: {
		KeyImported: "IMPORTED",
		KeyConnect:  "Connect",
		KeyActive:   "Active",
		KeySwitch:   "Switch to this account",
		KeyRevoke:   "Revoke",
		KeyEth:      "ETH",
	},
	language.Spanish: {
		KeyImported: "IMPORTADA",
		KeyConnect:  "Conectar",
		KeyActive:   "Activa",
		KeySwitch:   "Cambiar a esta cuenta",
		KeyRevoke:   "Revocar",
		KeyEth:      "ETH",
	},
}

var supported = []language.Tag{language.English, language.Spanish}

var (
	mu      sync.RWMutex
	cat     = buildCatalog()
	matcher = language.NewMatcher(supported)
	printer = message.NewPrinter(language.English, message.Catalog(cat))
	current = language.English
)

func buildCatalog() *catalog.Builder {
	b := catalog.NewBuilder(catalog.Fallback(language.English))
	for tag, msgs := range translations {
		for k, v := range msgs {
			// SetString only fails on malformed tags
			_ = b.SetString(tag, k, v)
		}
	}
	return b
}

// SetLocale picks the closest supported catalog for a BCP 47 tag.
// Unknown or malformed tags select English.
func SetLocale(tag string) {
	t := language.English
	if parsed, err := language.Parse(tag); err == nil {
		_, idx, conf := matcher.Match(parsed)
		if conf != language.No {
			t = supported[idx]
		}
	}

	mu.Lock()
	defer mu.Unlock()
	current = t
	printer = message.NewPrinter(t, message.Catalog(cat))
}

// Locale returns the active language
func Locale() language.Tag {
	mu.RLock()
	defer mu.RUnlock()
	return current
}

// Strings looks up a label; unknown keys come back as-is
func Strings(key string) string {
	mu.RLock()
	p := printer
	mu.RUnlock()
	return p.Sprintf(message.Key(key, key))
}
