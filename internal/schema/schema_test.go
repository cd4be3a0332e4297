package schema

import (
	"slices"
	"testing"

	"github.com/jacoelho/jtab/internal/value"
)

func parseAll(t *testing.T, docs ...string) []value.Value {
	t.Helper()

	out := make([]value.Value, 0, len(docs))
	for _, doc := range docs {
		v, err := value.Parse([]byte(doc))
		if err != nil {
			t.Fatalf("Parse(%q) error = %v", doc, err)
		}
		out = append(out, v)
	}
	return out
}

func TestMerge(t *testing.T) {
	t.Parallel()

	tests := []struct {
		a, b ColumnType
		want ColumnType
	}{
		{a: TypeNull, b: TypeNumber, want: TypeNumber},
		{a: TypeString, b: TypeNull, want: TypeString},
		{a: TypeString, b: TypeString, want: TypeString},
		{a: TypeNumber, b: TypeString, want: TypeMixed},
		{a: TypeMixed, b: TypeNull, want: TypeMixed},
		{a: TypeMixed, b: TypeBool, want: TypeMixed},
		{a: TypeNull, b: TypeNull, want: TypeNull},
		{a: TypeObject, b: TypeArray, want: TypeMixed},
	}

	for _, tt := range tests {
		if got := tt.a.Merge(tt.b); got != tt.want {
			t.Errorf("%v.Merge(%v) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestInferFirstSeenOrder(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		docs []string
		want []string
	}{
		{
			name: "a then b",
			docs: []string{`{"a":1}`, `{"b":2}`},
			want: []string{"a", "b"},
		},
		{
			name: "b then a",
			docs: []string{`{"b":2}`, `{"a":1}`},
			want: []string{"b", "a"},
		},
		{
			name: "union keeps first position",
			docs: []string{`{"x":1,"y":2}`, `{"z":3,"x":4}`},
			want: []string{"x", "y", "z"},
		},
		{
			name: "non objects contribute nothing",
			docs: []string{`[1,2]`, `"s"`, `{"k":true}`},
			want: []string{"k"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := Infer(parseAll(t, tt.docs...)).Columns()
			if !slices.Equal(got, tt.want) {
				t.Errorf("Columns() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestInferTypes(t *testing.T) {
	t.Parallel()

	s := Infer(parseAll(t,
		`{"n":1,"s":"a","mix":1,"nul":null,"obj":{"k":1}}`,
		`{"n":null,"s":"b","mix":"x","nul":null,"obj":{"j":2,"k":3}}`,
	))

	want := map[string]ColumnType{
		"n":   TypeNumber,
		"s":   TypeString,
		"mix": TypeMixed,
		"nul": TypeNull,
		"obj": TypeObject,
	}
	for name, wantType := range want {
		got, ok := s.Type(name)
		if !ok {
			t.Fatalf("Type(%q) missing", name)
		}
		if got != wantType {
			t.Errorf("Type(%q) = %v, want %v", name, got, wantType)
		}
	}

	if !s.Expandable("obj") || s.Expandable("n") {
		t.Error("only object and array columns should be expandable")
	}

	col, _ := s.Column("obj")
	if !slices.Equal(col.Children, []string{"k", "j"}) {
		t.Errorf("Children = %v, want [k j]", col.Children)
	}
}

func TestInferStreamingFreezesAfterFirstRecord(t *testing.T) {
	t.Parallel()

	s := New()
	for _, record := range parseAll(t, `"skip me"`, `{"a":1,"b":null}`, `{"a":"x","b":2,"c":3}`) {
		InferStreaming(record, s)
	}

	if got := s.Columns(); !slices.Equal(got, []string{"a", "b"}) {
		t.Errorf("Columns() = %v, want [a b]", got)
	}
	if got, _ := s.Type("a"); got != TypeMixed {
		t.Errorf("Type(a) = %v, want mixed", got)
	}
	if got, _ := s.Type("b"); got != TypeNumber {
		t.Errorf("Type(b) = %v, want number", got)
	}
	if !s.frozen {
		t.Error("schema should be frozen after the first object record")
	}
}

func TestExpand(t *testing.T) {
	t.Parallel()

	s := Infer(parseAll(t,
		`{"user":{"name":"A","age":3},"id":1,"user.literal":true}`,
		`{"user":{"email":"e"}}`,
	))

	tests := []struct {
		prefix string
		want   []string
	}{
		{prefix: "", want: []string{"user", "id", "user.literal"}},
		{prefix: "user", want: []string{"user.name", "user.age", "user.email", "user.literal"}},
		{prefix: "id", want: nil},
		{prefix: "missing", want: nil},
	}

	for _, tt := range tests {
		if got := s.Expand(tt.prefix); !slices.Equal(got, tt.want) {
			t.Errorf("Expand(%q) = %v, want %v", tt.prefix, got, tt.want)
		}
	}
}

func TestAddColumnNeverReorders(t *testing.T) {
	t.Parallel()

	s := New()
	s.AddColumn("b", TypeNumber)
	s.AddColumn("a", TypeString)
	s.AddColumn("b", TypeString)

	if got := s.Columns(); !slices.Equal(got, []string{"b", "a"}) {
		t.Errorf("Columns() = %v, want [b a]", got)
	}
	if s.Len() != 2 {
		t.Errorf("Len() = %d, want 2", s.Len())
	}
}
