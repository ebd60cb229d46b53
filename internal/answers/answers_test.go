package answers

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dshills/wellcheck/internal/profile"
	"github.com/dshills/wellcheck/internal/scoring"
)

func writeTempFile(t *testing.T, name, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

const yamlAnswers = `name: Sam
profile: standard
answers:
  family_history: No
  Growing_Stress: Elevated
  Mood_Swings: " Often "
`

func TestLoadYAML(t *testing.T) {
	path := writeTempFile(t, "answers.yaml", yamlAnswers)
	s, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if s.Name != "Sam" || s.Profile != "standard" {
		t.Errorf("metadata = %q/%q", s.Name, s.Profile)
	}
	if s.Answers["family_history"] != "No" {
		t.Errorf("family_history = %q, want No", s.Answers["family_history"])
	}
	if s.Answers["Mood_Swings"] != "Often" {
		t.Errorf("values should be trimmed, got %q", s.Answers["Mood_Swings"])
	}
	if !strings.HasPrefix(s.Hash, "sha256:") {
		t.Errorf("expected sha256 prefix, got %s", s.Hash)
	}
	if s.FilePath != path {
		t.Errorf("FilePath = %q", s.FilePath)
	}
}

func TestLoadJSON(t *testing.T) {
	path := writeTempFile(t, "answers.json", `{"answers": {"Growing_Stress": "Manageable"}}`)
	s, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if s.Answers["Growing_Stress"] != "Manageable" {
		t.Errorf("got %v", s.Answers)
	}
	if s.Name != "" {
		t.Errorf("name should be empty, got %q", s.Name)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load("/nonexistent/answers.yaml"); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestParseRejects(t *testing.T) {
	for _, in := range []string{"name: x\n", "answers: [", "answers: {}\n"} {
		if _, err := Parse([]byte(in)); err == nil {
			t.Errorf("Parse(%q) succeeded", in)
		}
	}
}

func TestHashOrderIndependent(t *testing.T) {
	a := scoring.AnswerSet{"a": "1", "b": "2"}
	b := scoring.AnswerSet{"b": "2", "a": "1"}
	if Hash(a) != Hash(b) {
		t.Error("hash depends on key order")
	}
	if Hash(a) == Hash(scoring.AnswerSet{"a": "1", "b": "3"}) {
		t.Error("hash ignores values")
	}
}

func TestPrompt(t *testing.T) {
	p, err := profile.LoadBuiltin("standard")
	if err != nil {
		t.Fatal(err)
	}
	// Name, then one line per question; "9" and "maybe" are rejected and re-asked.
	lines := []string{"Riley", "2", "9", "yes", "elevated", "1", "maybe", "3", "1", "1", "2"}
	var out bytes.Buffer
	s, err := Prompt(strings.NewReader(strings.Join(lines, "\n")+"\n"), &out, p, true)
	if err != nil {
		t.Fatal(err)
	}
	if s.Name != "Riley" {
		t.Errorf("name = %q", s.Name)
	}
	want := map[string]string{
		"family_history":   "No",
		"treatment":        "Yes",
		"Growing_Stress":   "Elevated",
		"Changes_Habits":   "No noticeable changes",
		"Mood_Swings":      "Often",
		"Coping_Struggles": "Coping well",
		"Work_Interest":    "Highly engaged",
		"Social_Weakness":  "Slightly less connected",
	}
	for k, v := range want {
		if s.Answers[k] != v {
			t.Errorf("%s = %q, want %q", k, s.Answers[k], v)
		}
	}
	if got := strings.Count(out.String(), "Please enter a number"); got != 2 {
		t.Errorf("expected 2 re-asks, got %d", got)
	}
}

func TestPromptEOF(t *testing.T) {
	p, err := profile.LoadBuiltin("standard")
	if err != nil {
		t.Fatal(err)
	}
	_, err = Prompt(strings.NewReader("1\n"), io.Discard, p, false)
	if !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Errorf("expected unexpected EOF, got %v", err)
	}
}
