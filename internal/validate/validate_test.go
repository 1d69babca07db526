package validate

import (
	"errors"
	"testing"

	"thiepcuoi.vn/web/internal/domain"
)

func TestEmail(t *testing.T) {
	tests := map[string]bool{
		"lan@example.com":   true,
		" lan@example.vn ":  true,
		"lan@example":       false,
		"lan example@x.com": false,
		"":                  false,
	}
	for in, want := range tests {
		if got := Email(in); got != want {
			t.Errorf("Email(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestPhone(t *testing.T) {
	tests := map[string]bool{
		"0901234567":    true,
		"090 123 45678": true,
		"090123456":     false,
		"+84901234567":  false,
		"09012345a7":    false,
	}
	for in, want := range tests {
		if got := Phone(in); got != want {
			t.Errorf("Phone(%q) = %v, want %v", in, got, want)
		}
	}
	if got := NormalizePhone(" 090 123\t4567 "); got != "0901234567" {
		t.Fatalf("unexpected normalized phone %q", got)
	}
}

func TestPasswordCountsRunes(t *testing.T) {
	if Password("abcde") {
		t.Fatalf("5 characters must be rejected")
	}
	if !Password("mậtkhẩ") {
		t.Fatalf("6 runes must be accepted")
	}
}

func TestRegistration(t *testing.T) {
	errs := Registration(domain.Registration{Username: "", Email: "bad", Password: "123", Phone: "12"}, "1234")
	want := map[string]string{
		"username":        KeyRequired,
		"email":           KeyEmail,
		"password":        KeyPasswordLength,
		"confirmPassword": KeyPasswordConfirm,
		"phone":           KeyPhone,
	}
	if errs.Len() != len(want) {
		t.Fatalf("expected %d errors, got %v", len(want), errs.Fields())
	}
	for field, key := range want {
		if errs.Get(field) != key {
			t.Errorf("field %s: got %q want %q", field, errs.Get(field), key)
		}
	}

	ok := Registration(domain.Registration{Username: "lan", Email: "lan@example.com", Password: "secret1"}, "secret1")
	if ok.Err() != nil {
		t.Fatalf("expected valid registration, got %v", ok.Err())
	}
}

func TestErrorsAsError(t *testing.T) {
	errs := Checkout("", "0901234567")
	err := errs.Err()
	var verr *Errors
	if !errors.As(err, &verr) || !verr.Has("shippingAddress") || verr.Has("phone") {
		t.Fatalf("unexpected errors %v", err)
	}
	errs.Add("shippingAddress", "other")
	if errs.Get("shippingAddress") != KeyRequired {
		t.Fatalf("first error must win")
	}
	var nilErrs *Errors
	if nilErrs.Len() != 0 || nilErrs.Get("x") != "" {
		t.Fatalf("nil errors must be empty")
	}
}

func TestInvitation(t *testing.T) {
	errs := Invitation(domain.CustomInvitation{GroomName: "An", BrideName: " "})
	if got := errs.Fields(); len(got) != 2 || got[0] != "brideName" || got[1] != "weddingDate" {
		t.Fatalf("unexpected fields %v", got)
	}
}
