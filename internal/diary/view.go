package diary

import (
	"slices"
	"time"

	"github.com/pbaille/diary/internal/domain"
	"github.com/pbaille/diary/internal/register"
)

// AuthorView is a point-in-time copy of an author.
type AuthorView struct {
	ID              string           `json:"id"`
	DisplayName     string           `json:"display_name"`
	Name            domain.Name      `json:"name"`
	LastTimeCreated *time.Time       `json:"last_time_created,omitempty"`
	LastTimeChanged *time.Time       `json:"last_time_changed,omitempty"`
	Entries         int              `json:"entries"`
	WordCount       domain.WordCount `json:"word_count,omitempty"`
}

// PageView is a numbered page.
type PageView struct {
	Number int    `json:"number"`
	Title  string `json:"title"`
	Text   string `json:"text"`
}

// EntryView is a point-in-time copy of a diary entry.
type EntryView struct {
	ID              string           `json:"id"`
	AuthorID        string           `json:"author_id"`
	Author          string           `json:"author"`
	Title           string           `json:"title"`
	MaxWordsPerPage int              `json:"max_words_per_page"`
	TimeCreated     time.Time        `json:"time_created"`
	TimeChanged     time.Time        `json:"time_changed"`
	Pages           []PageView       `json:"pages"`
	WordCount       domain.WordCount `json:"word_count"`
}

// GroupView is one author's entries in a grouped result.
type GroupView struct {
	Author  AuthorView  `json:"author"`
	Entries []EntryView `json:"entries"`
}

func viewAuthor(a *domain.Author, entries int) AuthorView {
	v := AuthorView{
		ID:          a.ID().String(),
		DisplayName: a.DisplayName(),
		Name:        a.Name(),
		Entries:     entries,
		WordCount:   a.WordCount(),
	}
	if t, ok := a.LastTimeCreated(); ok {
		v.LastTimeCreated = &t
	}
	if t, ok := a.LastTimeChanged(); ok {
		v.LastTimeChanged = &t
	}
	return v
}

func viewEntry(e *domain.DiaryEntry) EntryView {
	v := EntryView{
		ID:              e.ID().String(),
		AuthorID:        e.Author().ID().String(),
		Author:          e.Author().DisplayName(),
		Title:           e.Title(),
		MaxWordsPerPage: e.MaxWordsPerPage(),
		TimeCreated:     e.TimeCreated(),
		TimeChanged:     e.TimeChanged(),
		Pages:           make([]PageView, 0, e.NumPages()),
		WordCount:       e.WordCount(),
	}
	titles := slices.Collect(e.PageTitles())
	texts := slices.Collect(e.PageTexts())
	for i := range titles {
		v.Pages = append(v.Pages, PageView{Number: i + 1, Title: titles[i], Text: texts[i]})
	}
	return v
}

func viewEntries(entries []*domain.DiaryEntry) []EntryView {
	out := make([]EntryView, 0, len(entries))
	for _, e := range entries {
		out = append(out, viewEntry(e))
	}
	return out
}

func (s *Service) viewGroups(groups []register.AuthorEntries) []GroupView {
	out := make([]GroupView, 0, len(groups))
	for _, g := range groups {
		out = append(out, GroupView{
			Author:  viewAuthor(g.Author, s.entries.NumberOfEntries(g.Author)),
			Entries: viewEntries(g.Entries),
		})
	}
	return out
}
