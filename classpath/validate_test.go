package classpath

import (
	"strings"
	"testing"
)

func TestValidateAcceptsNonexistentEntries(t *testing.T) {
	if err := Validate([]string{"/no/such/dir", "/no/such/lib.jar"}); err != nil {
		t.Fatalf("Validate = %v", err)
	}
}

func TestValidateRejectsEmptyList(t *testing.T) {
	err := Validate(nil)
	if err == nil || !strings.Contains(err.Error(), "non-empty") {
		t.Fatalf("Validate(nil) = %v", err)
	}
}

func TestValidateRejectsBlankAndDuplicate(t *testing.T) {
	err := Validate([]string{"/a", "  ", "/a"})
	if err == nil {
		t.Fatal("expected error")
	}
	msg := err.Error()
	if !strings.Contains(msg, "entries[1]") || !strings.Contains(msg, "entries[2]") {
		t.Fatalf("error does not cover both issues: %v", err)
	}
	if !strings.Contains(msg, "duplicate") {
		t.Fatalf("duplicate not reported: %v", err)
	}
}

func TestKeyStableAndOrderSensitive(t *testing.T) {
	a := Key([]string{"/x", "/y"})
	b := Key([]string{"/x", "/y"})
	c := Key([]string{"/y", "/x"})
	if a != b {
		t.Fatalf("same classpath, different keys: %q vs %q", a, b)
	}
	if a == c {
		t.Fatalf("order ignored: %q", a)
	}
	if len(a) != 12 {
		t.Fatalf("key length = %d", len(a))
	}
}
