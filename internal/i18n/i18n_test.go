package i18n

import "testing"

func TestResolveHonorsQValues(t *testing.T) {
	b, err := Load("../../locales", "vi", []string{"vi", "en"})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got := b.Resolve("vi;q=0.8, en;q=0.9"); got != "en" {
		t.Fatalf("expected en, got %s", got)
	}
	if got := b.Resolve("en-US,en;q=0.9"); got != "en" {
		t.Fatalf("expected en for regional variant, got %s", got)
	}
	if got := b.Resolve("ja"); got != "vi" {
		t.Fatalf("expected fallback vi, got %s", got)
	}
	if got := b.Resolve(""); got != "vi" {
		t.Fatalf("expected fallback vi for empty header, got %s", got)
	}
}

func TestTranslateFallsBack(t *testing.T) {
	b, err := Load("../../locales", "vi", []string{"vi", "en"})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got := b.T("en", "nav.cart"); got != "Cart" {
		t.Fatalf("expected english label, got %q", got)
	}
	if got := b.T("fr", "nav.cart"); got != "Giỏ hàng" {
		t.Fatalf("expected vietnamese fallback, got %q", got)
	}
	if got := b.T("vi", "missing.key"); got != "missing.key" {
		t.Fatalf("expected key echo, got %q", got)
	}
	if b.Has("vi", "missing.key") {
		t.Fatalf("missing key reported as present")
	}
}

func TestLoadRequiresFallbackFile(t *testing.T) {
	if _, err := Load(t.TempDir(), "vi", []string{"vi"}); err == nil {
		t.Fatalf("expected error for missing fallback locale")
	}
}
