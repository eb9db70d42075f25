package i18n

import (
	"testing"

	"golang.org/x/text/language"
)

func TestStrings(t *testing.T) {
	SetLocale("en")

	if got := Strings(KeyImported); got != "IMPORTED" {
		t.Errorf("expected IMPORTED, got %q", got)
	}
	if got := Strings(KeySwitch); got != "Switch to this account" {
		t.Errorf("expected switch label, got %q", got)
	}
	if got := Strings("accounts.unknown"); got != "accounts.unknown" {
		t.Errorf("expected key passthrough, got %q", got)
	}
}

func TestSetLocale(t *testing.T) {
	defer SetLocale("en")

	SetLocale("es-MX")
	if Locale() != language.Spanish {
		t.Errorf("expected Spanish, got %v", Locale())
	}
	if got := Strings(KeyRevoke); got != "Revocar" {
		t.Errorf("expected Revocar, got %q", got)
	}

	SetLocale("not a tag")
	if Locale() != language.English {
		t.Errorf("expected English fallback, got %v", Locale())
	}
}
