package runner

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"project/subnet-aggregator/config"
)

func newOptions(inputs ...string) *Options {
	return &Options{Inputs: inputs}
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

// classB returns one address in each /24 of 10.<second>.0.0/16.
func classB(second int) string {
	var b strings.Builder
	for i := 0; i < 256; i++ {
		fmt.Fprintf(&b, "10.%d.%d.1\n", second, i)
	}
	return b.String()
}

func run(t *testing.T, options *Options) string {
	t.Helper()
	r, err := NewRunner(options)
	if err != nil {
		t.Fatalf("NewRunner() error: %v", err)
	}
	var out strings.Builder
	r.output = &out
	if err := r.Run(context.Background()); err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	return out.String()
}

func TestRunMerged(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a.txt", "10.0.0.1\n10.0.0.2\n")
	b := writeFile(t, dir, "b.txt", "10.0.0.3\n10.1.1.1\n")

	got := run(t, newOptions(a, b))
	if got != "10.0.0.0/24\n" {
		t.Errorf("output = %q, want 10.0.0.0/24", got)
	}
}

func TestRunSeparate(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a.txt", classB(1))
	b := writeFile(t, dir, "b.txt", classB(2))

	options := newOptions(a, b)
	options.Separate = true
	options.ThresholdClassC = "1"
	got := run(t, options)

	want := fmt.Sprintf("# %s\n10.1.0.0/16\n# %s\n10.2.0.0/16\n", a, b)
	if got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
}

func TestRunNonPositiveThreshold(t *testing.T) {
	in := writeFile(t, t.TempDir(), "in.txt", classB(1))

	for _, hits := range []string{"0", "-1"} {
		options := newOptions(in)
		options.ThresholdClassC = hits
		if got := run(t, options); got != "10.1.0.0/16\n" {
			t.Errorf("-c %s: output = %q, want 10.1.0.0/16", hits, got)
		}
	}

	// without the flag the default threshold of 3 selects nothing
	if got := run(t, newOptions(in)); got != "" {
		t.Errorf("default threshold: output = %q, want nothing", got)
	}
}

func TestRunSeparateDistinctTables(t *testing.T) {
	dir := t.TempDir()
	for _, sub := range []string{"a", "b"} {
		if err := os.Mkdir(filepath.Join(dir, sub), 0o700); err != nil {
			t.Fatal(err)
		}
	}
	a := writeFile(t, dir, filepath.Join("a", "ssh.log"), classB(1))
	b := writeFile(t, dir, filepath.Join("b", "ssh.log"), classB(2))

	options := newOptions(a, b)
	options.Separate = true
	options.ThresholdClassC = "1"
	options.Format = "pf"
	got := run(t, options)

	for _, table := range []string{"table <attackers_ssh> persist {", "table <attackers_ssh_2> persist {"} {
		if strings.Count(got, table) != 1 {
			t.Errorf("expected one %q in:\n%s", table, got)
		}
	}
}

func TestTableNames(t *testing.T) {
	r := &Runner{options: &Options{Separate: true}, cfg: &config.Config{TableName: "bl"}}
	got := r.tableNames([]string{"x/ssh.log", "y/ssh.log", "ssh_2.txt", "web.log"})
	want := []string{"bl_ssh", "bl_ssh_2", "bl_ssh_2_2", "bl_web"}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("tableNames()[%d] = %q, want %q", i, got[i], want[i])
		}
	}

	r.options.Separate = false
	for _, table := range r.tableNames([]string{"a", "b"}) {
		if table != "bl" {
			t.Errorf("merged table = %q, want bl", table)
		}
	}
}

func TestRunExclude(t *testing.T) {
	dir := t.TempDir()
	in := writeFile(t, dir, "in.txt", "10.0.0.1\n10.0.0.2\n10.0.0.3\n192.168.1.1\n192.168.1.2\n192.168.1.3\n")

	options := newOptions(in)
	options.Exclude = []string{"192.168.0.0/16"}
	if got := run(t, options); got != "10.0.0.0/24\n" {
		t.Errorf("output = %q, want 10.0.0.0/24", got)
	}
}

func TestRunConfigFile(t *testing.T) {
	dir := t.TempDir()
	in := writeFile(t, dir, "in.txt", classB(4))
	cfg := writeFile(t, dir, "cfg.yaml", "thresholdClassC: 1\nformat: pf\ntableName: scanners\n")

	options := newOptions(in)
	options.ConfigFile = cfg
	got := run(t, options)
	if !strings.Contains(got, "table <scanners> persist {") || !strings.Contains(got, "10.4.0.0/16") {
		t.Errorf("unexpected pf output:\n%s", got)
	}

	// flags override the file
	options = newOptions(in)
	options.ConfigFile = cfg
	options.Format = "plain"
	options.LargerNetPct = "1.1"
	got = run(t, options)
	if strings.Count(got, "\n") != 256 {
		t.Errorf("expected the 256 /24 networks to stay unfolded, got %d lines", strings.Count(got, "\n"))
	}
}

func TestNewRunnerErrors(t *testing.T) {
	tests := []struct {
		name   string
		modify func(o *Options)
	}{
		{"missing config", func(o *Options) { o.ConfigFile = filepath.Join(t.TempDir(), "nope.yaml") }},
		{"bad percentage", func(o *Options) { o.LargerNetPct = "half" }},
		{"bad exclusion", func(o *Options) { o.Exclude = []string{"10.0.0.0/40"} }},
		{"bad format", func(o *Options) { o.Format = "csv" }},
		{"zero concurrency", func(o *Options) { o.Concurrency = "0" }},
		{"bad concurrency", func(o *Options) { o.Concurrency = "four" }},
		{"bad threshold", func(o *Options) { o.ThresholdClassC = "three" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			options := newOptions()
			tt.modify(options)
			if _, err := NewRunner(options); err == nil {
				t.Error("NewRunner() should fail")
			}
		})
	}
}

func TestRunMalformedInput(t *testing.T) {
	in := writeFile(t, t.TempDir(), "in.txt", "10.0.0.1\n10.0.0\n")
	r, err := NewRunner(newOptions(in))
	if err != nil {
		t.Fatal(err)
	}
	var out strings.Builder
	r.output = &out
	if err := r.Run(context.Background()); err == nil {
		t.Fatal("Run() should fail on malformed input")
	}
	if out.Len() != 0 {
		t.Errorf("no output expected on failure, got %q", out.String())
	}
}

func TestTableSuffix(t *testing.T) {
	tests := map[string]string{
		"/var/log/ssh-attackers.txt.gz": "ssh_attackers",
		"web.log":                       "web",
		"-":                             "_",
	}
	for in, want := range tests {
		if got := tableSuffix(in); got != want {
			t.Errorf("tableSuffix(%q) = %q, want %q", in, got, want)
		}
	}
}
