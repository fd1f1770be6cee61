package util

import "testing"

func TestParseClock(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  int
		ok    bool
	}{
		{name: "morning", input: "08:00", want: 480, ok: true},
		{name: "single digit hour", input: "9:15", want: 555, ok: true},
		{name: "midnight", input: "00:00", want: 0, ok: true},
		{name: "out of range", input: "25:00", ok: false},
		{name: "not a clock", input: "8.50", ok: false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := ParseClock(tc.input)
			if ok != tc.ok {
				t.Fatalf("ok=%v want %v", ok, tc.ok)
			}
			if ok && got != tc.want {
				t.Fatalf("got %d want %d", got, tc.want)
			}
		})
	}
}

func TestDurationHours(t *testing.T) {
	if got := DurationHours(8*60, 17*60, 30); got != 8.5 {
		t.Fatalf("got %v", got)
	}
	// Crossing midnight counts end as next-day.
	if got := DurationHours(22*60, 2*60, 0); got != 4.0 {
		t.Fatalf("midnight got %v", got)
	}
	// Break longer than the shift clamps at zero.
	if got := DurationHours(8*60, 8*60+15, 30); got != 0 {
		t.Fatalf("clamp got %v", got)
	}
}

func TestClockString(t *testing.T) {
	if got := ClockString(555); got != "09:15" {
		t.Fatalf("got %s", got)
	}
	if got := ClockString(25 * 60); got != "01:00" {
		t.Fatalf("wrap got %s", got)
	}
}

func TestSafeFloat(t *testing.T) {
	if got := SafeFloat("2,574.60"); got != 2574.60 {
		t.Fatalf("got %v", got)
	}
	if got := SafeFloat("garbage"); got != 0 {
		t.Fatalf("default got %v", got)
	}
}
