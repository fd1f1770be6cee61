package util

import "testing"

func TestSanitize(t *testing.T) {
	in := "\uFEFFסה״כ שעות:\t 84.00\r\n\n\n\nend"
	got := Sanitize(in)
	if got != "סה\"כ שעות: 84.00 \n\nend" {
		t.Fatalf("got %q", got)
	}
}

func TestContainsHebrew(t *testing.T) {
	if !ContainsHebrew("יום ראשון") {
		t.Fatal("hebrew not detected")
	}
	if ContainsHebrew("Sunday 08:00") {
		t.Fatal("false positive")
	}
}
