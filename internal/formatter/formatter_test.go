package formatter

import (
	"errors"
	"slices"
	"testing"

	"github.com/jacoelho/jtab/internal/cell"
)

func TestParseStyle(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want Style
	}{
		{in: "", want: StylePlain},
		{in: "plain", want: StylePlain},
		{in: "Markdown", want: StyleMarkdown},
		{in: "md", want: StyleMarkdown},
		{in: "csv", want: StyleCSV},
		{in: "tsv", want: StyleTSV},
		{in: "ndjson", want: StyleJSONL},
	}

	for _, tt := range tests {
		got, err := ParseStyle(tt.in)
		if err != nil {
			t.Fatalf("ParseStyle(%q) error = %v", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("ParseStyle(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}

	if _, err := ParseStyle("boxed"); !errors.Is(err, ErrUnknownStyle) {
		t.Errorf("ParseStyle(boxed) error = %v, want ErrUnknownStyle", err)
	}
}

func TestStyleNamesRoundTrip(t *testing.T) {
	t.Parallel()

	for _, name := range Styles() {
		s, err := ParseStyle(name)
		if err != nil || s.String() != name {
			t.Errorf("ParseStyle(%q) = %v, %v", name, s, err)
		}
	}
}

func TestStrings(t *testing.T) {
	t.Parallel()

	got := Strings([]cell.Cell{cell.NewNull(), cell.NewNumber("1"), cell.NewObjectPlaceholder()})
	if !slices.Equal(got, []string{"null", "1", "{...}"}) {
		t.Errorf("Strings() = %v", got)
	}
}
