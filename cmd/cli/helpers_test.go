package main

import (
	"os"
	"strings"
	"testing"

	"github.com/spf13/cobra"
)

func TestReadNote(t *testing.T) {
	dir := t.TempDir()
	path := dir + "/note.txt"
	if err := writeFile(path, "from file"); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name    string
		args    []string
		file    string
		stdin   string
		want    string
		wantErr bool
	}{
		{name: "argument", args: []string{"from arg"}, want: "from arg"},
		{name: "file", file: path, want: "from file"},
		{name: "stdin", stdin: "from stdin", want: "from stdin"},
		{name: "empty stdin", stdin: "  \n", wantErr: true},
		{name: "argument and file", args: []string{"x"}, file: path, wantErr: true},
		{name: "missing file", file: dir + "/missing.txt", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := &cobra.Command{}
			cmd.SetIn(strings.NewReader(tt.stdin))

			got, err := readNote(cmd, tt.args, tt.file)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %q", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRenderTable(t *testing.T) {
	out := renderTable(
		[]string{"ID", "Note"},
		[][]string{{"1", "rent"}, {"22"}},
		[]columnAlignment{alignRight, alignLeft},
	)
	for _, want := range []string{"ID", "NOTE", "rent", "22"} {
		if !strings.Contains(strings.ToUpper(out), strings.ToUpper(want)) {
			t.Errorf("table missing %q:\n%s", want, out)
		}
	}
	if renderTable(nil, nil, nil) != "" {
		t.Error("expected empty output without headers")
	}
}

func TestClip(t *testing.T) {
	if got := clip("short", 10); got != "short" {
		t.Errorf("clip changed short text: %q", got)
	}
	got := clip("abcdefghij", 5)
	if got != "abcd…" {
		t.Errorf("got %q", got)
	}
	if got := clip("ééééé", 5); got != "ééééé" {
		t.Errorf("clip must count runes: %q", got)
	}
}

func writeFile(path, content string) error {
	return os.WriteFile(path, []byte(content), 0o644)
}
