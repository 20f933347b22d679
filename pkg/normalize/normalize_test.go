package normalize

import "testing"

func TestKey(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{name: "trim and lower", in: "  Foo   Bar ", want: "foo bar"},
		{name: "already normalized", in: "foo bar", want: "foo bar"},
		{name: "tabs and newlines", in: "Foo\t\nBar", want: "foo bar"},
		{name: "only whitespace", in: "   \t ", want: ""},
		{name: "empty", in: "", want: ""},
		{name: "korean untouched", in: "  루트  A ", want: "루트 a"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Key(tc.in); got != tc.want {
				t.Fatalf("Key(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestKeyIdempotent(t *testing.T) {
	inputs := []string{"  Foo   Bar ", "x", "", " A\tB C  ", "루트 A"}
	for _, in := range inputs {
		once := Key(in)
		if twice := Key(once); twice != once {
			t.Fatalf("Key not idempotent for %q: %q != %q", in, twice, once)
		}
	}
}

func TestKeyPtr(t *testing.T) {
	if got := KeyPtr(nil); got != nil {
		t.Fatalf("KeyPtr(nil) = %v, want nil", got)
	}
	in := " Foo  Bar"
	got := KeyPtr(&in)
	if got == nil || *got != "foo bar" {
		t.Fatalf("KeyPtr(%q) = %v, want foo bar", in, got)
	}
}
