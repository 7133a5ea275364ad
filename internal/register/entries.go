package register

import (
	"fmt"
	"slices"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/pbaille/diary/internal/domain"
)

// AuthorEntries is one author's slice of a grouped query result.
type AuthorEntries struct {
	Author  *domain.Author
	Entries []*domain.DiaryEntry
}

// DiaryEntryRegister holds diary entries grouped by author in insertion order.
// Authors are kept in an arena keyed by ID; entries reference their author directly.
type DiaryEntryRegister struct {
	order   []uuid.UUID
	authors map[uuid.UUID]*domain.Author
	entries map[uuid.UUID][]*domain.DiaryEntry
}

// NewDiaryEntryRegister creates an empty register.
func NewDiaryEntryRegister() *DiaryEntryRegister {
	return &DiaryEntryRegister{
		authors: make(map[uuid.UUID]*domain.Author),
		entries: make(map[uuid.UUID][]*domain.DiaryEntry),
	}
}

// AddAuthor makes a known to the register with an empty entry list.
func (r *DiaryEntryRegister) AddAuthor(a *domain.Author) error {
	if a == nil {
		return fmt.Errorf("%w: author cannot be nil", domain.ErrConstraint)
	}
	r.ensure(a)
	return nil
}

// AddDiaryEntry appends e to its author's list. An entry that was removed
// earlier has its words restored to the author. Adding an entry that is
// already registered fails.
func (r *DiaryEntryRegister) AddDiaryEntry(e *domain.DiaryEntry) error {
	if e == nil {
		return fmt.Errorf("%w: diary entry cannot be nil", domain.ErrConstraint)
	}
	a := e.Author()
	if slices.ContainsFunc(r.entries[a.ID()], func(x *domain.DiaryEntry) bool { return x.ID() == e.ID() }) {
		return fmt.Errorf("%w: entry %q is already registered", domain.ErrConstraint, e.Title())
	}
	r.ensure(a)
	r.entries[a.ID()] = append(r.entries[a.ID()], e)
	e.Restore()
	return nil
}

func (r *DiaryEntryRegister) ensure(a *domain.Author) {
	if _, ok := r.authors[a.ID()]; ok {
		return
	}
	r.order = append(r.order, a.ID())
	r.authors[a.ID()] = a
}

// FindDiaryEntryFromAuthorByTitle returns the first of the author's entries
// whose title equals title, ignoring case.
func (r *DiaryEntryRegister) FindDiaryEntryFromAuthorByTitle(a *domain.Author, title string) (*domain.DiaryEntry, error) {
	i, err := r.indexOf(a, title)
	if err != nil {
		return nil, err
	}
	return r.entries[a.ID()][i], nil
}

// RemoveDiaryEntry removes and returns the first of the author's entries whose
// title equals title, ignoring case. The entry's words are withdrawn from the
// author's aggregate.
func (r *DiaryEntryRegister) RemoveDiaryEntry(a *domain.Author, title string) (*domain.DiaryEntry, error) {
	i, err := r.indexOf(a, title)
	if err != nil {
		return nil, err
	}
	list := r.entries[a.ID()]
	removed := list[i]
	r.entries[a.ID()] = slices.Delete(list, i, i+1)
	removed.Withdraw()
	return removed, nil
}

func (r *DiaryEntryRegister) indexOf(a *domain.Author, title string) (int, error) {
	if a == nil {
		return -1, fmt.Errorf("%w: author cannot be nil", domain.ErrConstraint)
	}
	if strings.TrimSpace(title) == "" {
		return -1, fmt.Errorf("%w: entry title cannot be blank", domain.ErrConstraint)
	}
	for i, e := range r.entries[a.ID()] {
		if strings.EqualFold(e.Title(), title) {
			return i, nil
		}
	}
	return -1, fmt.Errorf("entry %q by %s: %w", title, a.DisplayName(), domain.ErrNotFound)
}

// NumberOfEntries returns how many entries a has; 0 for unknown authors.
func (r *DiaryEntryRegister) NumberOfEntries(a *domain.Author) int {
	if a == nil {
		return 0
	}
	return len(r.entries[a.ID()])
}

// DiaryEntriesByAuthor returns a copy of the author's entries in insertion order.
func (r *DiaryEntryRegister) DiaryEntriesByAuthor(a *domain.Author) []*domain.DiaryEntry {
	if a == nil {
		return nil
	}
	return slices.Clone(r.entries[a.ID()])
}

// Authors returns every author known to the register in insertion order.
func (r *DiaryEntryRegister) Authors() []*domain.Author {
	out := make([]*domain.Author, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.authors[id])
	}
	return out
}

// SearchForWord returns at most limit entries containing word.
//
// Authors are ranked by their aggregate count of word, highest first, with
// ties kept in insertion order. Each author's matching entries are then taken
// in insertion order, so an entry's own frequency never moves it ahead of an
// entry by a higher-ranked author. The scan stops once limit entries are found.
func (r *DiaryEntryRegister) SearchForWord(word string, limit int) ([]*domain.DiaryEntry, error) {
	if strings.TrimSpace(word) == "" {
		return nil, fmt.Errorf("%w: word cannot be blank", domain.ErrConstraint)
	}
	if limit < 1 {
		return nil, fmt.Errorf("%w: limit must be at least 1, got %d", domain.ErrConstraint, limit)
	}
	word = strings.ToLower(word)

	var ranked []*domain.Author
	for _, id := range r.order {
		if len(r.entries[id]) > 0 {
			ranked = append(ranked, r.authors[id])
		}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Count(word) > ranked[j].Count(word)
	})

	var matches []*domain.DiaryEntry
	for _, a := range ranked {
		if a.Count(word) == 0 {
			continue
		}
		for _, e := range r.entries[a.ID()] {
			if e.Count(word) > 0 {
				matches = append(matches, e)
				if len(matches) >= limit {
					return matches, nil
				}
			}
		}
	}
	return matches, nil
}
