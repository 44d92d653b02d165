package domain

import (
	"errors"
	"reflect"
	"strings"
	"testing"
)

func TestNewRule_Valid(t *testing.T) {
	tests := []struct {
		line      string
		labels    []string
		wildcard  bool
		exception bool
		key       string
	}{
		{"com", []string{"com"}, false, false, "com"},
		{"co.uk", []string{"co", "uk"}, false, false, "co.uk"},
		{"*.ck", []string{"*", "ck"}, true, false, "*.ck"},
		{"!www.ck", []string{"www", "ck"}, false, true, "!www.ck"},
		{"*", []string{"*"}, true, false, "*"},
		{"!city.kawasaki.jp", []string{"city", "kawasaki", "jp"}, false, true, "!city.kawasaki.jp"},
		{"COM", []string{"COM"}, false, false, "com"},
		{"xn--p1ai", []string{"xn--p1ai"}, false, false, "xn--p1ai"},
		{"公司.cn", []string{"公司", "cn"}, false, false, "xn--55qx5d.cn"},
		{"1.ck", []string{"1", "ck"}, false, false, "1.ck"},
		{"a-b.c-d", []string{"a-b", "c-d"}, false, false, "a-b.c-d"},
		// read up to the first whitespace
		{"com // trailing note", []string{"com"}, false, false, "com"},
		{"*.kawasaki.jp\tx", []string{"*", "kawasaki", "jp"}, true, false, "*.kawasaki.jp"},
	}

	for _, tt := range tests {
		r, err := NewRule(tt.line)
		if err != nil {
			t.Fatalf("NewRule(%q) unexpected error: %v", tt.line, err)
		}
		if !reflect.DeepEqual(r.Labels, tt.labels) {
			t.Errorf("NewRule(%q).Labels = %q, want %q", tt.line, r.Labels, tt.labels)
		}
		if r.Wildcard != tt.wildcard {
			t.Errorf("NewRule(%q).Wildcard = %v, want %v", tt.line, r.Wildcard, tt.wildcard)
		}
		if r.Exception != tt.exception {
			t.Errorf("NewRule(%q).Exception = %v, want %v", tt.line, r.Exception, tt.exception)
		}
		if r.Raw != tt.line {
			t.Errorf("NewRule(%q).Raw = %q, want the original line", tt.line, r.Raw)
		}
		if r.Section != SectionNone {
			t.Errorf("NewRule(%q).Section = %v, want none", tt.line, r.Section)
		}
		if got := r.Key(); got != tt.key {
			t.Errorf("NewRule(%q).Key() = %q, want %q", tt.line, got, tt.key)
		}
		if r.LabelCount() < 1 {
			t.Errorf("NewRule(%q) produced a rule without labels", tt.line)
		}
	}
}

func TestNewRule_Invalid(t *testing.T) {
	long := strings.Repeat("a", 60)
	tests := []struct {
		line   string
		reason error
	}{
		{"", ErrEmptyRule},
		{"!", ErrEmptyRule},
		{" com", ErrEmptyRule},
		{"\t", ErrEmptyRule},
		{".", ErrEmptyLabel},
		{"..", ErrEmptyLabel},
		{"a..b", ErrEmptyLabel},
		{".com", ErrEmptyLabel},
		{"com.", ErrEmptyLabel},
		{"!.ck", ErrEmptyLabel},
		{"!*.ck", ErrMarkerConflict},
		{"a.*.ck", ErrMisplacedWildcard},
		{"ck.*", ErrMisplacedWildcard},
		{"**.ck", ErrInvalidLabel},
		{"a_b.com", ErrInvalidLabel},
		{"-abc.com", ErrInvalidLabel},
		{"abc-.com", ErrInvalidLabel},
		{"ex@mple.com", ErrInvalidLabel},
		{"!!com", ErrInvalidLabel},
		{strings.Repeat("b", 64) + ".com", ErrInvalidLabel},
		{"\xff", ErrInvalidLabel},
		{"a\xfe.com", ErrInvalidLabel},
		{"*.\xc3", ErrInvalidLabel},
		{"\ufffd.com", ErrInvalidLabel},
		{strings.Join([]string{long, long, long, long, long}, "."), ErrRuleTooLong},
	}

	for _, tt := range tests {
		r, err := NewRule(tt.line)
		if err == nil {
			t.Fatalf("NewRule(%q) = %+v, want error", tt.line, r)
		}
		var rfe *RuleFormatError
		if !errors.As(err, &rfe) {
			t.Fatalf("NewRule(%q) error %T is not a *RuleFormatError", tt.line, err)
		}
		if rfe.Text != tt.line {
			t.Errorf("RuleFormatError.Text = %q, want %q", rfe.Text, tt.line)
		}
		if !errors.Is(err, tt.reason) {
			t.Errorf("NewRule(%q) reason = %v, want %v", tt.line, rfe.Reason, tt.reason)
		}
		if r.LabelCount() != 0 {
			t.Errorf("NewRule(%q) returned a non-zero rule alongside the error", tt.line)
		}
	}
}

func TestRuleFormatError_Error(t *testing.T) {
	err := &RuleFormatError{Text: "a..b", Reason: ErrEmptyLabel}
	if got, want := err.Error(), `invalid rule "a..b": rule contains an empty label`; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}

	err = &RuleFormatError{Text: "a_b.com", Label: "a_b", Reason: ErrInvalidLabel}
	if got, want := err.Error(), `invalid rule "a_b.com": rule contains an invalid label: "a_b"`; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestRule_NameAndString(t *testing.T) {
	r, err := NewRule("!www.ck")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Name() != "www.ck" {
		t.Errorf("Name() = %q, want www.ck", r.Name())
	}
	if r.String() != "!www.ck" {
		t.Errorf("String() = %q, want !www.ck", r.String())
	}

	w, _ := NewRule("*.ck")
	if w.String() != "*.ck" {
		t.Errorf("String() = %q, want *.ck", w.String())
	}
}

func TestRule_KeyEquivalence(t *testing.T) {
	a, _ := NewRule("公司.CN")
	b, _ := NewRule("xn--55qx5d.cn")
	if a.Key() != b.Key() {
		t.Errorf("Key() mismatch: %q vs %q", a.Key(), b.Key())
	}

	plain, _ := NewRule("www.ck")
	exc, _ := NewRule("!www.ck")
	if plain.Key() == exc.Key() {
		t.Errorf("exception and normal rule must not share a key: %q", plain.Key())
	}
}

func TestRule_WithSection(t *testing.T) {
	r, _ := NewRule("github.io")
	p := r.WithSection(SectionPrivate)
	if p.Section != SectionPrivate {
		t.Errorf("Section = %v, want private", p.Section)
	}
	if r.Section != SectionNone {
		t.Errorf("WithSection mutated the receiver")
	}
}

func TestSection_String(t *testing.T) {
	tests := map[Section]string{
		SectionNone:    "none",
		SectionICANN:   "icann",
		SectionPrivate: "private",
		Section(9):     "Section(9)",
	}
	for s, want := range tests {
		if got := s.String(); got != want {
			t.Errorf("Section(%d).String() = %q, want %q", s, got, want)
		}
	}
}
