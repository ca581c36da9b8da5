package quiethours

import (
	"errors"
	"testing"
)

// TestContains_FullGrid checks the containment predicate against its
// definition for every (start, end, now) combination.
func TestContains_FullGrid(t *testing.T) {
	t.Parallel()

	for start := 0; start <= 23; start++ {
		for end := 0; end <= 23; end++ {
			for now := 0; now <= 23; now++ {
				var want bool
				if start < end {
					want = now >= start && now < end
				} else {
					want = now >= start || now < end
				}

				got := Window{Start: start, End: end}.Contains(now)
				if got != want {
					t.Fatalf("Window{%d,%d}.Contains(%d) = %v, want %v", start, end, now, got, want)
				}
			}
		}
	}
}

func TestContains_WrapsMidnight(t *testing.T) {
	t.Parallel()

	w := Window{Start: 21, End: 6}

	for _, h := range []int{21, 22, 23, 0, 3, 5} {
		if !w.Contains(h) {
			t.Errorf("Contains(%d) = false, want true for 21->06 window", h)
		}
	}
	for _, h := range []int{6, 12, 20} {
		if w.Contains(h) {
			t.Errorf("Contains(%d) = true, want false for 21->06 window", h)
		}
	}
}

func TestParse_Valid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  Window
	}{
		{"en dash", "21:00–06:00", Window{21, 6}},
		{"hyphen", "09:00-17:00", Window{9, 17}},
		{"bare hours", "8-20", Window{8, 20}},
		{"whitespace", " 07:30 - 19:15 ", Window{7, 19}},
		{"degenerate full day", "00:00-00:00", Window{0, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := Parse(tt.input)
			if err != nil {
				t.Fatalf("Parse(%q): %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("Parse(%q) = %+v, want %+v", tt.input, got, tt.want)
			}
		})
	}
}

func TestParse_Malformed(t *testing.T) {
	t.Parallel()

	inputs := []string{
		"",
		"21:00",
		"21:00-06:00-12:00",
		"24:00-06:00",
		"-1:00-06:00",
		"21:00-99:00",
		"21:xx-06:00",
		"abc-def",
		"21:61-06:00",
	}

	for _, in := range inputs {
		if _, err := Parse(in); !errors.Is(err, ErrMalformedWindow) {
			t.Errorf("Parse(%q) err = %v, want ErrMalformedWindow", in, err)
		}
	}
}
