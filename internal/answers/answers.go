// Package answers reads answer sets from files or collects them from a terminal.
package answers

import (
	"bufio"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/dshills/wellcheck/internal/profile"
	"github.com/dshills/wellcheck/internal/scoring"
	"gopkg.in/yaml.v3"
)

// Set holds a loaded answer set with its metadata.
type Set struct {
	FilePath string
	Name     string
	Profile  string
	Answers  scoring.AnswerSet
	Hash     string
}

type document struct {
	Name    string            `yaml:"name"`
	Profile string            `yaml:"profile"`
	Answers map[string]string `yaml:"answers"`
}

// Load reads an answers file (YAML or JSON) and computes its SHA-256 hash.
func Load(path string) (*Set, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("answers.Load: %w", err)
	}
	s, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("answers.Load: %s: %w", path, err)
	}
	s.FilePath = path
	s.Hash = hashBytes(data)
	return s, nil
}

// Parse decodes an answers document. JSON input is accepted as YAML.
func Parse(data []byte) (*Set, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse answers: %w", err)
	}
	if len(doc.Answers) == 0 {
		return nil, errors.New("no answers")
	}
	s := &Set{
		Name:    strings.TrimSpace(doc.Name),
		Profile: doc.Profile,
		Answers: make(scoring.AnswerSet, len(doc.Answers)),
	}
	for k, v := range doc.Answers {
		s.Answers[k] = strings.TrimSpace(v)
	}
	s.Hash = Hash(s.Answers)
	return s, nil
}

// Hash returns a stable digest of an answer set, independent of key order.
func Hash(a scoring.AnswerSet) string {
	keys := make([]string, 0, len(a))
	for k := range a {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var b strings.Builder
	for _, k := range keys {
		fmt.Fprintf(&b, "%s=%s\n", k, a[k])
	}
	return hashBytes([]byte(b.String()))
}

func hashBytes(data []byte) string {
	return fmt.Sprintf("sha256:%x", sha256.Sum256(data))
}

// Prompt asks every question of p on out and reads choices from in. A choice
// is either the option number or the option text. Invalid input is re-asked.
// When askName is set, an optional display name is read first.
func Prompt(in io.Reader, out io.Writer, p *profile.Profile, askName bool) (*Set, error) {
	sc := bufio.NewScanner(in)
	s := &Set{Profile: p.Name, Answers: make(scoring.AnswerSet, len(p.Questions))}

	if askName {
		fmt.Fprint(out, "Your name (optional): ")
		if !sc.Scan() {
			return nil, readErr(sc)
		}
		s.Name = strings.TrimSpace(sc.Text())
	}

	for i, q := range p.Questions {
		fmt.Fprintf(out, "\n%d. %s\n", i+1, q.Prompt)
		for j, opt := range q.Options {
			fmt.Fprintf(out, "   %d) %s\n", j+1, opt)
		}
		for {
			fmt.Fprint(out, "> ")
			if !sc.Scan() {
				return nil, readErr(sc)
			}
			if v, ok := choose(q, sc.Text()); ok {
				s.Answers[q.Key] = v
				break
			}
			fmt.Fprintf(out, "Please enter a number between 1 and %d.\n", len(q.Options))
		}
	}
	s.Hash = Hash(s.Answers)
	return s, nil
}

func choose(q profile.Question, input string) (string, bool) {
	input = strings.TrimSpace(input)
	if n, err := strconv.Atoi(input); err == nil {
		if n >= 1 && n <= len(q.Options) {
			return q.Options[n-1], true
		}
		return "", false
	}
	for _, opt := range q.Options {
		if strings.EqualFold(opt, input) {
			return opt, true
		}
	}
	return "", false
}

func readErr(sc *bufio.Scanner) error {
	if err := sc.Err(); err != nil {
		return fmt.Errorf("answers.Prompt: %w", err)
	}
	return fmt.Errorf("answers.Prompt: %w", io.ErrUnexpectedEOF)
}
