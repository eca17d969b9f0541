package changelogbump

import (
	"errors"
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		input    string
		expected Version
		wantErr  bool
	}{
		{"1.2.3", Version{1, 2, 3}, false},
		{"0.0.0", Version{0, 0, 0}, false},
		{"10.20.30", Version{10, 20, 30}, false},
		{"007.1.2", Version{7, 1, 2}, false},
		{"1.2", Version{}, true},
		{"1.2.3.4", Version{}, true},
		{"1.2.x", Version{}, true},
		{"v1.2.3", Version{}, true},
		{"1.2.3-rc.1", Version{}, true},
		{"1..3", Version{}, true},
		{"-1.2.3", Version{}, true},
		{"", Version{}, true},
	}

	for _, tt := range tests {
		got, err := Parse(tt.input)
		if tt.wantErr {
			if err == nil {
				t.Errorf("Parse(%q) expected error, got %v", tt.input, got)
				continue
			}
			if !errors.Is(err, ErrParse) {
				t.Errorf("Parse(%q) error %v does not match ErrParse", tt.input, err)
			}
			var perr *ParseError
			if !errors.As(err, &perr) || perr.Input != tt.input {
				t.Errorf("Parse(%q) error %v is not a *ParseError for the input", tt.input, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("Parse(%q) unexpected error: %v", tt.input, err)
			continue
		}
		if got != tt.expected {
			t.Errorf("Parse(%q) = %v, expected %v", tt.input, got, tt.expected)
		}
	}
}

func TestParseRoundTrip(t *testing.T) {
	for _, s := range []string{"0.0.0", "1.2.3", "999.0.12"} {
		v, err := Parse(s)
		if err != nil {
			t.Fatalf("Parse(%q): %v", s, err)
		}
		if v.String() != s {
			t.Errorf("Parse(%q).String() = %q", s, v.String())
		}
	}
}

func TestBump(t *testing.T) {
	tests := []struct {
		current  string
		kind     BumpKind
		expected string
	}{
		{"1.2.3", Major, "2.0.0"},
		{"1.2.3", Minor, "1.3.0"},
		{"1.2.3", Patch, "1.2.4"},
		{"0.0.0", Patch, "0.0.1"},
		{"0.9.9", Minor, "0.10.0"},
		{"9.9.9", Major, "10.0.0"},
	}

	for _, tt := range tests {
		got, err := MustParse(tt.current).Bump(tt.kind)
		if err != nil {
			t.Errorf("Bump(%s, %s) unexpected error: %v", tt.current, tt.kind, err)
			continue
		}
		if got.String() != tt.expected {
			t.Errorf("Bump(%s, %s) = %s, expected %s", tt.current, tt.kind, got, tt.expected)
		}
		if !MustParse(tt.current).Less(got) {
			t.Errorf("Bump(%s, %s) = %s does not sort after the input", tt.current, tt.kind, got)
		}
	}
}

func TestBumpInvalidKind(t *testing.T) {
	for _, kind := range []BumpKind{0, 4, -1} {
		if _, err := MustParse("1.2.3").Bump(kind); !errors.Is(err, ErrInvalidArgument) {
			t.Errorf("Bump with kind %d: expected ErrInvalidArgument, got %v", kind, err)
		}
	}
}

func TestKindFromFlags(t *testing.T) {
	tests := []struct {
		major, minor, patch bool
		expected            BumpKind
		wantErr             bool
	}{
		{true, false, false, Major, false},
		{false, true, false, Minor, false},
		{false, false, true, Patch, false},
		{false, false, false, 0, true},
		{true, true, false, 0, true},
		{true, false, true, 0, true},
		{true, true, true, 0, true},
	}

	for _, tt := range tests {
		got, err := KindFromFlags(tt.major, tt.minor, tt.patch)
		if tt.wantErr {
			if !errors.Is(err, ErrInvalidArgument) {
				t.Errorf("KindFromFlags(%v, %v, %v) expected ErrInvalidArgument, got %v", tt.major, tt.minor, tt.patch, err)
			}
			continue
		}
		if err != nil || got != tt.expected {
			t.Errorf("KindFromFlags(%v, %v, %v) = %v, %v; expected %v", tt.major, tt.minor, tt.patch, got, err, tt.expected)
		}
	}
}

func TestParseBumpKind(t *testing.T) {
	for input, expected := range map[string]BumpKind{"major": Major, "Minor": Minor, " patch ": Patch} {
		got, err := ParseBumpKind(input)
		if err != nil || got != expected {
			t.Errorf("ParseBumpKind(%q) = %v, %v; expected %v", input, got, err, expected)
		}
	}
	if _, err := ParseBumpKind("prerelease"); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("ParseBumpKind(prerelease) expected ErrInvalidArgument, got %v", err)
	}
}

func TestCompare(t *testing.T) {
	tests := []struct {
		a, b     string
		expected int
	}{
		{"1.2.3", "1.2.3", 0},
		{"1.2.3", "1.2.4", -1},
		{"1.3.0", "1.2.9", 1},
		{"2.0.0", "1.99.99", 1},
		{"0.10.0", "0.9.0", 1},
		{"1.0.10", "1.0.9", 1},
	}

	for _, tt := range tests {
		a, b := MustParse(tt.a), MustParse(tt.b)
		if got := a.Compare(b); got != tt.expected {
			t.Errorf("Compare(%s, %s) = %d, expected %d", tt.a, tt.b, got, tt.expected)
		}
		if got := b.Compare(a); got != -tt.expected {
			t.Errorf("Compare(%s, %s) = %d, expected %d", tt.b, tt.a, got, -tt.expected)
		}
		if a.Equal(b) != (tt.expected == 0) {
			t.Errorf("Equal(%s, %s) disagrees with Compare", tt.a, tt.b)
		}
	}
}
