package seed

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/pbaille/diary/internal/diary"
	"github.com/pbaille/diary/internal/domain"
)

//go:embed sample.yaml
var sample []byte

// Corpus describes the authors, entries and pages to build at start.
type Corpus struct {
	Authors []Author `yaml:"authors"`
}

type Author struct {
	domain.Name `yaml:",inline"`
	Entries     []Entry `yaml:"entries"`
}

// Entry is one diary entry. MaxWordsPerPage overrides the service limit when set.
type Entry struct {
	Title           string `yaml:"title"`
	MaxWordsPerPage int    `yaml:"max_words_per_page,omitempty"`
	Pages           []Page `yaml:"pages"`
}

type Page struct {
	Title string `yaml:"title"`
	Text  string `yaml:"text"`
}

// Sample returns the built-in demo corpus.
func Sample() (*Corpus, error) {
	return Parse(sample)
}

// Load reads a corpus file. An empty path returns the sample corpus.
func Load(path string) (*Corpus, error) {
	if path == "" {
		return Sample()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read corpus: %w", err)
	}
	return Parse(data)
}

// Parse decodes a YAML corpus.
func Parse(data []byte) (*Corpus, error) {
	var c Corpus
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("decode corpus: %w", err)
	}
	return &c, nil
}

// Apply adds every author, entry and page of c to svc in file order. It stops
// at the first rejected item.
func (c *Corpus) Apply(svc *diary.Service) error {
	for _, a := range c.Authors {
		view, err := svc.AddAuthor(a.Name)
		if err != nil {
			return fmt.Errorf("seed author %q: %w", a.DisplayName(), err)
		}
		seen := make(map[string]bool, len(a.Entries))
		for _, e := range a.Entries {
			key := strings.ToLower(e.Title)
			if seen[key] {
				return fmt.Errorf("seed entry %q: %w: duplicate title for %s", e.Title, domain.ErrConstraint, view.DisplayName)
			}
			seen[key] = true

			ref := diary.EntryRef{Author: view.DisplayName, Title: e.Title}
			if _, err := svc.CreateEntryWithLimit(ref, e.MaxWordsPerPage); err != nil {
				return fmt.Errorf("seed entry %q: %w", e.Title, err)
			}
			for i, p := range e.Pages {
				if _, err := svc.AddPage(ref, p.Title, p.Text); err != nil {
					return fmt.Errorf("seed page %d of %q: %w", i+1, e.Title, err)
				}
			}
		}
	}
	return nil
}
