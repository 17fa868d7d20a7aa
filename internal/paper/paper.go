// Package paper provides the read-only paper context passed into prompts.
package paper

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"unicode/utf8"
)

// ErrNotFound is returned when a paper id cannot be resolved.
var ErrNotFound = errors.New("paper not found")

// Text is an extracted paper: an opaque body plus any located equations
// and algorithm blocks.
type Text struct {
	ID         string
	Title      string
	Body       string
	Equations  []string
	Algorithms []string
}

// Fetcher resolves a paper id to its text.
type Fetcher interface {
	Fetch(ctx context.Context, id string) (*Text, error)
}

// Context renders the paper for a prompt, truncated to at most limit bytes.
// Algorithms and equations come first since they matter most when grading.
// A nil Text yields "".
func (t *Text) Context(limit int) string {
	if t == nil {
		return ""
	}
	var b strings.Builder
	if t.Title != "" {
		fmt.Fprintf(&b, "Title: %s\n", t.Title)
	}
	for i, a := range t.Algorithms {
		fmt.Fprintf(&b, "\nAlgorithm %d:\n%s\n", i+1, a)
	}
	if len(t.Equations) > 0 {
		b.WriteString("\nKey equations:\n")
		for _, eq := range t.Equations {
			fmt.Fprintf(&b, "- %s\n", eq)
		}
	}
	if t.Body != "" {
		b.WriteString("\n")
		b.WriteString(t.Body)
	}
	return truncate(strings.TrimSpace(b.String()), limit)
}

func truncate(s string, limit int) string {
	if limit <= 0 || len(s) <= limit {
		return s
	}
	return strings.TrimSpace(Clip(s, limit)) + "\n[truncated]"
}

// Clip returns the longest prefix of s that is at most limit bytes and does
// not split a UTF-8 sequence.
func Clip(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	if limit <= 0 {
		return ""
	}
	for limit > 0 && !utf8.RuneStart(s[limit]) {
		limit--
	}
	return s[:limit]
}

// FileFetcher reads papers stored as local text or markdown files. Ids are
// paths, resolved against Dir when relative.
type FileFetcher struct {
	Dir string
}

func (f FileFetcher) Fetch(ctx context.Context, id string) (*Text, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path := id
	if !filepath.IsAbs(path) && f.Dir != "" {
		path = filepath.Join(f.Dir, path)
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	if err != nil {
		return nil, fmt.Errorf("read paper: %w", err)
	}
	t := Extract(string(data))
	t.ID = id
	if t.Title == "" {
		t.Title = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return t, nil
}

var (
	headingRe   = regexp.MustCompile(`(?m)^#\s+(.+?)\s*$`)
	displayRe   = regexp.MustCompile(`(?s)\$\$(.+?)\$\$`)
	equationRe  = regexp.MustCompile(`(?s)\\begin\{equation\*?\}(.+?)\\end\{equation\*?\}`)
	algorithmRe = regexp.MustCompile(`(?ms)^Algorithm\s+\d+\b.*?(?:\n\s*\n|\z)`)
)

// Extract locates the title, display equations and algorithm blocks in a
// plain text or markdown paper.
func Extract(body string) *Text {
	t := &Text{Body: body}
	if m := headingRe.FindStringSubmatch(body); m != nil {
		t.Title = m[1]
	}
	for _, re := range []*regexp.Regexp{displayRe, equationRe} {
		for _, m := range re.FindAllStringSubmatch(body, -1) {
			if eq := oneLine(m[1]); eq != "" {
				t.Equations = append(t.Equations, eq)
			}
		}
	}
	for _, m := range algorithmRe.FindAllString(body, -1) {
		t.Algorithms = append(t.Algorithms, strings.TrimSpace(m))
	}
	return t
}

// FromTopic builds a minimal context when no paper is supplied.
func FromTopic(topic string) *Text {
	return &Text{ID: topic, Title: topic}
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
