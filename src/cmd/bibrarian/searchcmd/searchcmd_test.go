package searchcmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	"bibrarian/src/internal/schema"
)

func writeFixtures(t *testing.T) (configPath string) {
	t.Helper()
	dir := t.TempDir()
	bib := filepath.Join(dir, "refs.bib")
	if err := os.WriteFile(bib, []byte(`@inproceedings{lamport2001,
  author = {Leslie Lamport},
  title = {Paxos Made Simple},
  booktitle = {PODC},
  year = {2001},
}
@article{codd1970,
  author = {Codd, E. F.},
  title = {A Relational Model of Data},
  journal = {Commun. ACM},
  year = {1970},
}
`), 0o644); err != nil {
		t.Fatalf("write bib: %v", err)
	}
	configPath = filepath.Join(dir, ".bibrarian.json")
	content := `{"ro_repos": [{"glob": ` + jsonString(bib) + `}], "rw_repos": []}`
	if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return configPath
}

func jsonString(s string) string {
	return `"` + strings.ReplaceAll(s, `\`, `\\`) + `"`
}

func TestSearchTable(t *testing.T) {
	cfg := writeFixtures(t)
	cmd := New()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs([]string{"-f", cfg, "paxos"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("search: %v", err)
	}
	if !strings.Contains(out.String(), "lamport2001") || !strings.Contains(out.String(), "Paxos Made Simple") {
		t.Fatalf("table output: %q", out.String())
	}
	if strings.Contains(out.String(), "codd1970") {
		t.Fatalf("non-match leaked: %q", out.String())
	}
}

func TestSearchYAML(t *testing.T) {
	cfg := writeFixtures(t)
	cmd := New()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs([]string{"-f", cfg, "--format", "yaml", "relational"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("search: %v", err)
	}
	var entries []schema.Entry
	if err := yaml.Unmarshal(out.Bytes(), &entries); err != nil {
		t.Fatalf("yaml output: %v\n%s", err, out.String())
	}
	if len(entries) != 1 || entries[0].Key != "codd1970" {
		t.Fatalf("entries: %+v", entries)
	}
}

func TestSearchNoMatches(t *testing.T) {
	cfg := writeFixtures(t)
	cmd := New()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs([]string{"-f", cfg, "nonexistent_topic"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("search: %v", err)
	}
	if !strings.Contains(out.String(), "no matches") {
		t.Fatalf("empty result note: %q", out.String())
	}
}

func TestSearchBadFormat(t *testing.T) {
	cfg := writeFixtures(t)
	cmd := New()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"-f", cfg, "--format", "xml", "paxos"})
	if err := cmd.Execute(); err == nil {
		t.Fatalf("expected error for unknown format")
	}
}
