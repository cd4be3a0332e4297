package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/jacoelho/jtab/internal/config"
	"github.com/jacoelho/jtab/internal/logging"
)

func TestExecute(t *testing.T) {
	t.Parallel()

	input := filepath.Join(t.TempDir(), "events.jsonl")
	data := `{"id":2,"user":{"name":"bob"},"level":"error"}
{"id":1,"user":{"name":"alice"},"level":"info"}
{"id":3,"user":{"name":"carol"},"level":"error"}
`
	if err := os.WriteFile(input, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		args []string
		want string
	}{
		{
			name: "plain",
			args: []string{"-c", "id,user.name"},
			want: "id  user.name\n2   bob\n1   alice\n3   carol\n",
		},
		{
			name: "sorted csv",
			args: []string{"-c", "id,level", "-s", "-id", "--style", "csv"},
			want: "id,level\n3,error\n2,error\n1,info\n",
		},
		{
			name: "filter and flat",
			args: []string{"--flat", "--filter", "level=error", "--style", "tsv"},
			want: "id\tuser.name\tlevel\n2\tbob\terror\n3\tcarol\terror\n",
		},
		{
			name: "search and jsonl",
			args: []string{"-c", "id", "--search", "ALICE", "--style", "jsonl"},
			want: "{\"id\":1}\n",
		},
		{
			name: "where",
			args: []string{"-c", "id", "--where", "@.id >= 2", "--tail", "1", "--style", "csv"},
			want: "id\n3\n",
		},
		{
			name: "recursive child tables",
			args: []string{"-r", "-s", "id", "--style", "csv"},
			want: "id,user,level\n1,{...},info\n2,{...},error\n3,{...},error\n" +
				"\n## user\n\n_parent_row,name\n0,alice\n1,bob\n2,carol\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg, res := config.Parse(append(append([]string{"jtab"}, tt.args...), input))
			if res != nil {
				t.Fatalf("config.Parse() result = %+v", res)
			}

			logger := logging.Discard()
			p, err := newPipeline(cfg, logger)
			if err != nil {
				t.Fatalf("newPipeline() error = %v", err)
			}

			var out bytes.Buffer
			if res := execute(context.Background(), cfg, p, &out, logger); res != nil {
				t.Fatalf("execute() result = %+v", res)
			}
			if got := out.String(); got != tt.want {
				t.Errorf("output = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNewPipelineErrors(t *testing.T) {
	t.Parallel()

	tests := map[string][]string{
		"bad filter":    {"jtab", "--filter", "=x"},
		"bad jsonpath":  {"jtab", "--where", "$[?"},
		"bad sort key":  {"jtab", "-s", "-"},
		"mode conflict": {"jtab", "--mode", "streaming", "-s", "a"},
		"bad column":    {"jtab", "-c", "a[x"},
	}

	for name, args := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			cfg, res := config.Parse(args)
			if res != nil {
				t.Fatalf("config.Parse(%q) result = %+v", args, res)
			}
			if _, err := newPipeline(cfg, logging.Discard()); err == nil {
				t.Errorf("newPipeline(%q) succeeded, want error", args)
			}
		})
	}
}
