package fonts

import (
	"os"
	"path/filepath"
	"testing"
)

func TestResolve(t *testing.T) {
	tmp := t.TempDir()
	fontPath := filepath.Join(tmp, "LiberationSans-Regular.ttf")
	if err := os.WriteFile(fontPath, []byte{0}, 0o644); err != nil {
		t.Fatal(err)
	}

	r := NewRegistry([]string{filepath.Join(tmp, "missing"), tmp})
	if got := r.Resolve("Arial"); got != fontPath {
		t.Fatalf("got %q want %q", got, fontPath)
	}
	if got := r.Resolve("NoSuchFont"); got != "" {
		t.Fatalf("expected empty, got %q", got)
	}
}

func TestShapeRTL(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  string
	}{
		{name: "latin untouched", input: "08:00 Sunday", want: "08:00 Sunday"},
		{name: "pure hebrew reversed", input: "ראשון", want: "ןושאר"},
		{name: "mixed keeps clock", input: "ראשון 08:00", want: "08:00 ןושאר"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ShapeRTL(tc.input); got != tc.want {
				t.Fatalf("got %q want %q", got, tc.want)
			}
		})
	}
}
