package flatten

import (
	"errors"
	"slices"
	"testing"

	"github.com/jacoelho/jtab/internal/cell"
	"github.com/jacoelho/jtab/internal/value"
)

func entryMap(entries []Entry) map[string]string {
	out := make(map[string]string, len(entries))
	for _, e := range entries {
		out[e.Path] = e.Cell.String()
	}
	return out
}

func TestFlattenDepth(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		doc   string
		depth int
		want  map[string]string
	}{
		{
			name:  "depth zero keeps placeholder",
			doc:   `{"a":{"b":1}}`,
			depth: 0,
			want:  map[string]string{"a": "{...}"},
		},
		{
			name:  "depth one expands",
			doc:   `{"a":{"b":1}}`,
			depth: 1,
			want:  map[string]string{"a.b": "1"},
		},
		{
			name:  "unbounded",
			doc:   `{"a":{"b":{"c":{"d":true}}}}`,
			depth: Unbounded,
			want:  map[string]string{"a.b.c.d": "true"},
		},
		{
			name:  "depth two stops at third level",
			doc:   `{"a":{"b":{"c":{"d":true}}}}`,
			depth: 2,
			want:  map[string]string{"a.b.c": "{...}"},
		},
		{
			name:  "empty object is a placeholder",
			doc:   `{"a":{}}`,
			depth: Unbounded,
			want:  map[string]string{"a": "{...}"},
		},
		{
			name:  "null leaf",
			doc:   `{"a":{"b":null}}`,
			depth: Unbounded,
			want:  map[string]string{"a.b": "null"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := entryMap(Flatten(value.MustParse(tt.doc), Config{MaxDepth: tt.depth, ArrayLimit: 3}))
			if len(got) != len(tt.want) {
				t.Fatalf("Flatten(%s) = %v, want %v", tt.doc, got, tt.want)
			}
			for path, want := range tt.want {
				if got[path] != want {
					t.Errorf("Flatten(%s)[%q] = %q, want %q", tt.doc, path, got[path], want)
				}
			}
		})
	}
}

func TestDisplayArray(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		doc   string
		limit int
		want  string
	}{
		{name: "truncated", doc: `["x","y","z","w"]`, limit: 3, want: "x, y, z, ..."},
		{name: "exact", doc: `["x","y","z","w"]`, limit: 4, want: "x, y, z, w"},
		{name: "above length", doc: `["x","y","z","w"]`, limit: 10, want: "x, y, z, w"},
		{name: "empty", doc: `[]`, limit: 3, want: ""},
		{name: "nested", doc: `[{"a":1},[1],null,2,true]`, limit: 5, want: "{...}, [...], null, 2, true"},
		{name: "limit one", doc: `[1,2]`, limit: 1, want: "1, ..."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := DisplayArray(value.MustParse(tt.doc), tt.limit); got != tt.want {
				t.Errorf("DisplayArray(%s, %d) = %q, want %q", tt.doc, tt.limit, got, tt.want)
			}
		})
	}
}

func TestFlattenArrayInsideRecord(t *testing.T) {
	t.Parallel()

	entries := Flatten(value.MustParse(`{"tags":["x","y","z","w"],"n":{"list":[]}}`), DefaultConfig())
	got := entryMap(entries)

	if got["tags"] != "x, y, z, ..." {
		t.Errorf("tags = %q, want %q", got["tags"], "x, y, z, ...")
	}
	if got["n.list"] != "" {
		t.Errorf("n.list = %q, want empty", got["n.list"])
	}
	if entries[0].Cell.Kind != cell.ArrayDisplay {
		t.Errorf("tags kind = %v, want ArrayDisplay", entries[0].Cell.Kind)
	}
}

func TestFlattenAlreadyFlatIsNoop(t *testing.T) {
	t.Parallel()

	record := value.MustParse(`{"id":1,"name":"Alice","active":false,"score":null,"ratio":0.50}`)
	entries := Flatten(record, DefaultConfig())

	members := record.Members()
	if len(entries) != len(members) {
		t.Fatalf("Flatten() returned %d entries, want %d", len(entries), len(members))
	}
	for i, m := range members {
		if entries[i].Path != m.Key || entries[i].Key != m.Key {
			t.Errorf("entry %d path = %q, want %q", i, entries[i].Path, m.Key)
		}
		if entries[i].Cell != cell.FromValue(m.Value) {
			t.Errorf("entry %d cell = %v, want %v", i, entries[i].Cell, cell.FromValue(m.Value))
		}
	}
}

func TestFlattenNonObject(t *testing.T) {
	t.Parallel()

	if got := Flatten(value.MustParse(`[1,2]`), DefaultConfig()); got != nil {
		t.Errorf("Flatten(array) = %v, want nil", got)
	}
}

func TestConfigValidate(t *testing.T) {
	t.Parallel()

	if err := DefaultConfig().Validate(); err != nil {
		t.Errorf("DefaultConfig().Validate() = %v", err)
	}
	if err := (Config{MaxDepth: 1, ArrayLimit: 0}).Validate(); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("Validate() = %v, want ErrInvalidConfig", err)
	}
}

func build(t *testing.T, cfg Config, docs ...string) (*FlatSchema, [][]Entry) {
	t.Helper()

	b := NewBuilder(cfg)
	var all [][]Entry
	for _, doc := range docs {
		all = append(all, b.Add(value.MustParse(doc)))
	}
	return b.Build(), all
}

func rowText(row []cell.Cell) []string {
	out := make([]string, len(row))
	for i, c := range row {
		out[i] = c.String()
	}
	return out
}

func TestBuilderConflictPromotion(t *testing.T) {
	t.Parallel()

	fs, entries := build(t, DefaultConfig(), `{"u":{"n":"A"}}`, `{"u":"B"}`)

	if got := fs.Columns(); !slices.Equal(got, []string{"u.n", "u"}) {
		t.Fatalf("Columns() = %v, want [u.n u]", got)
	}
	if got := fs.Dynamic(); !slices.Equal(got, []string{"u"}) {
		t.Errorf("Dynamic() = %v, want [u]", got)
	}
	if i, ok := fs.Position("u"); !ok || i != 1 {
		t.Errorf("Position(u) = %d, %v, want 1, true", i, ok)
	}
	if _, ok := fs.Position("u.x"); ok {
		t.Error("Position(u.x) found a column that was never seen")
	}

	rows := [][]string{{"A", "null"}, {"null", "B"}}
	for i, want := range rows {
		if got := rowText(fs.Row(entries[i])); !slices.Equal(got, want) {
			t.Errorf("Row(%d) = %v, want %v", i, got, want)
		}
	}
}

func TestBuilderScalarFirstStillPromotesToEnd(t *testing.T) {
	t.Parallel()

	fs, entries := build(t, DefaultConfig(),
		`{"u":"B","id":1}`,
		`{"u":{"n":"A"},"id":2}`,
		`{"u":{},"id":3}`,
	)

	if got := fs.Columns(); !slices.Equal(got, []string{"u.n", "id", "u"}) {
		t.Fatalf("Columns() = %v, want [u.n id u]", got)
	}

	rows := [][]string{
		{"null", "1", "B"},
		{"A", "2", "null"},
		{"null", "3", "{...}"},
	}
	for i, want := range rows {
		if got := rowText(fs.Row(entries[i])); !slices.Equal(got, want) {
			t.Errorf("Row(%d) = %v, want %v", i, got, want)
		}
	}
}

func TestBuilderArrayPromotesLikeScalar(t *testing.T) {
	t.Parallel()

	fs, _ := build(t, DefaultConfig(), `{"t":{"a":1}}`, `{"t":[1,2]}`)
	if got := fs.Dynamic(); !slices.Equal(got, []string{"t"}) {
		t.Errorf("Dynamic() = %v, want [t]", got)
	}
}

func TestBuilderNullDoesNotPromote(t *testing.T) {
	t.Parallel()

	fs, _ := build(t, DefaultConfig(), `{"u":{"n":1}}`, `{"u":null}`)
	if got := fs.Columns(); !slices.Equal(got, []string{"u.n"}) {
		t.Errorf("Columns() = %v, want [u.n]", got)
	}
}

func TestBuilderChildBlockSorted(t *testing.T) {
	t.Parallel()

	fs, _ := build(t, DefaultConfig(),
		`{"id":1,"user":{"zip":"z","name":"n"}}`,
		`{"user":{"age":3},"tail":true}`,
	)

	want := []string{"id", "user.age", "user.name", "user.zip", "tail"}
	if got := fs.Columns(); !slices.Equal(got, want) {
		t.Errorf("Columns() = %v, want %v", got, want)
	}
	if got := fs.Expand("user"); !slices.Equal(got, want[1:4]) {
		t.Errorf("Expand(user) = %v, want %v", got, want[1:4])
	}
	if got := fs.Dynamic(); len(got) != 0 {
		t.Errorf("Dynamic() = %v, want none", got)
	}
}

func TestBuilderColumnOrderFollowsInput(t *testing.T) {
	t.Parallel()

	forward, _ := build(t, DefaultConfig(), `{"a":1}`, `{"b":2}`)
	reverse, _ := build(t, DefaultConfig(), `{"b":2}`, `{"a":1}`)

	if got := forward.Columns(); !slices.Equal(got, []string{"a", "b"}) {
		t.Errorf("forward Columns() = %v, want [a b]", got)
	}
	if got := reverse.Columns(); !slices.Equal(got, []string{"b", "a"}) {
		t.Errorf("reverse Columns() = %v, want [b a]", got)
	}
}

func TestBuilderDepthZero(t *testing.T) {
	t.Parallel()

	fs, entries := build(t, Config{MaxDepth: 0, ArrayLimit: 3}, `{"a":{"b":1}}`)
	if got := fs.Columns(); !slices.Equal(got, []string{"a"}) {
		t.Fatalf("Columns() = %v, want [a]", got)
	}
	if got := fs.Row(entries[0]); got[0].Kind != cell.ObjectStub {
		t.Errorf("Row()[0] = %v, want object placeholder", got[0])
	}
}
