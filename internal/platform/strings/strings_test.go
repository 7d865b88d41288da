package strings

import (
	"reflect"
	"testing"

	"adrelay/internal/platform/testkit"
)

func TestIfEmpty(t *testing.T) {
	def := []string{"a", "b"}
	if got := IfEmpty(nil, def); !reflect.DeepEqual(got, def) {
		t.Fatalf("IfEmpty(nil) = %v", got)
	}
	in := []string{"x"}
	if got := IfEmpty(in, def); !reflect.DeepEqual(got, in) {
		t.Fatalf("IfEmpty(in) = %v", got)
	}
}

func TestMustString(t *testing.T) {
	if got := MustString(" v ", "key"); got != " v " {
		t.Fatalf("MustString = %q", got)
	}
	testkit.MustPanic(t, func() { MustString("  ", "key") })
}

func TestMustPrefix(t *testing.T) {
	cases := []struct{ in, want string }{
		{"audiences", "/audiences"},
		{"/audiences/", "/audiences"},
		{"  meta ", "/meta"},
	}
	for _, c := range cases {
		if got := MustPrefix(c.in); got != c.want {
			t.Fatalf("MustPrefix(%q) = %q, want %q", c.in, got, c.want)
		}
	}
	testkit.MustPanic(t, func() { MustPrefix(" / ") })
}

func TestSplitCSV(t *testing.T) {
	got := SplitCSV(" email, maid ,,phone ")
	want := []string{"email", "maid", "phone"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("SplitCSV = %v, want %v", got, want)
	}
	if SplitCSV("  ") != nil {
		t.Fatalf("SplitCSV empty should be nil")
	}
}
