package domain

import (
	"errors"
	"fmt"
	"iter"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DiaryEntry is an ordered, titled sequence of pages written by one author.
// Pages are addressed by 1-based page numbers.
//
// The entry keeps its own word count and forwards every change to the author's
// aggregate, so both stay equal to the token counts of the current pages.
type DiaryEntry struct {
	id              uuid.UUID
	author          *Author
	maxWordsPerPage int
	pages           []*Page
	title           string
	timeCreated     time.Time
	timeChanged     time.Time
	wordCount       WordCount
	clock           Clock
	withdrawn       bool
}

// PageMatch is a page together with its 1-based number.
type PageMatch struct {
	Number int
	Title  string
	Text   string
}

// NewDiaryEntry creates an empty entry for author and stamps the author's
// last creation time.
func NewDiaryEntry(author *Author, maxWordsPerPage int, title string, opts ...Option) (*DiaryEntry, error) {
	if author == nil {
		return nil, constraintError(errors.New("author cannot be nil"))
	}
	if maxWordsPerPage <= 0 {
		return nil, constraintError(fmt.Errorf("maximum words per page must be greater than 0, got %d", maxWordsPerPage))
	}
	if err := validateTitle(title); err != nil {
		return nil, err
	}

	o := buildOptions(opts)
	now := o.clock()
	e := &DiaryEntry{
		id:              uuid.New(),
		author:          author,
		maxWordsPerPage: maxWordsPerPage,
		title:           title,
		timeCreated:     now,
		timeChanged:     now,
		wordCount:       make(WordCount),
		clock:           o.clock,
	}
	author.setLastTimeCreated(now)
	return e, nil
}

// ID returns the entry's stable identifier.
func (e *DiaryEntry) ID() uuid.UUID { return e.id }

// Author returns the entry's author.
func (e *DiaryEntry) Author() *Author { return e.author }

// Title returns the entry title.
func (e *DiaryEntry) Title() string { return e.title }

// MaxWordsPerPage returns the word limit applied to each page.
func (e *DiaryEntry) MaxWordsPerPage() int { return e.maxWordsPerPage }

// NumPages returns the number of pages.
func (e *DiaryEntry) NumPages() int { return len(e.pages) }

// TimeCreated returns the creation time.
func (e *DiaryEntry) TimeCreated() time.Time { return e.timeCreated }

// TimeChanged returns the time of the last mutation.
func (e *DiaryEntry) TimeChanged() time.Time { return e.timeChanged }

// WordCount returns a copy of the entry's word count.
func (e *DiaryEntry) WordCount() WordCount { return e.wordCount.Clone() }

// Count returns how often word occurs in the entry, ignoring case.
func (e *DiaryEntry) Count(word string) int { return e.wordCount.Get(word) }

// AddPage appends a page.
func (e *DiaryEntry) AddPage(title, text string) error {
	if err := e.validateText(text); err != nil {
		return err
	}
	page, err := NewPage(title, text)
	if err != nil {
		return err
	}
	e.pages = append(e.pages, page)
	e.addWords(text)
	e.touch()
	return nil
}

// RemovePage removes page number n and returns it.
func (e *DiaryEntry) RemovePage(n int) (Page, error) {
	if err := e.validatePageNumber(n); err != nil {
		return Page{}, err
	}
	removed := e.pages[n-1]
	e.pages = append(e.pages[:n-1], e.pages[n:]...)
	e.removeWords(removed.text)
	e.touch()
	return *removed, nil
}

// SetPageText replaces the text of page n, keeping its title and position.
func (e *DiaryEntry) SetPageText(n int, text string) error {
	if err := e.validatePageNumber(n); err != nil {
		return err
	}
	if err := e.validateText(text); err != nil {
		return err
	}
	page := e.pages[n-1]
	e.removeWords(page.text)
	e.addWords(text)
	page.SetText(text)
	e.touch()
	return nil
}

// UpdatePage replaces the title and text of page n. Nil values are left
// unchanged. Both values are checked before either is applied.
func (e *DiaryEntry) UpdatePage(n int, title, text *string) error {
	if err := e.validatePageNumber(n); err != nil {
		return err
	}
	if title != nil {
		if err := validateTitle(*title); err != nil {
			return err
		}
	}
	if text != nil {
		if err := e.validateText(*text); err != nil {
			return err
		}
	}
	if title == nil && text == nil {
		return nil
	}

	page := e.pages[n-1]
	if text != nil {
		e.removeWords(page.text)
		e.addWords(*text)
		page.SetText(*text)
	}
	if title != nil {
		page.title = *title
	}
	e.touch()
	return nil
}

// SetPageTitle replaces the title of page n.
func (e *DiaryEntry) SetPageTitle(n int, title string) error {
	if err := e.validatePageNumber(n); err != nil {
		return err
	}
	if err := e.pages[n-1].SetTitle(title); err != nil {
		return err
	}
	e.touch()
	return nil
}

// SetEntryTitle replaces the entry title.
func (e *DiaryEntry) SetEntryTitle(title string) error {
	if err := validateTitle(title); err != nil {
		return err
	}
	e.title = title
	e.touch()
	return nil
}

// PageText returns the text of page n.
func (e *DiaryEntry) PageText(n int) (string, error) {
	if err := e.validatePageNumber(n); err != nil {
		return "", err
	}
	return e.pages[n-1].text, nil
}

// PageTitle returns the title of page n.
func (e *DiaryEntry) PageTitle(n int) (string, error) {
	if err := e.validatePageNumber(n); err != nil {
		return "", err
	}
	return e.pages[n-1].title, nil
}

// NextPageText returns the text of the page after n.
func (e *DiaryEntry) NextPageText(n int) (string, error) {
	if err := e.validatePageNumber(n); err != nil {
		return "", err
	}
	return e.PageText(n + 1)
}

// PreviousPageText returns the text of the page before n.
func (e *DiaryEntry) PreviousPageText(n int) (string, error) {
	if err := e.validatePageNumber(n); err != nil {
		return "", err
	}
	return e.PageText(n - 1)
}

// NextPageTitle returns the title of the page after n.
func (e *DiaryEntry) NextPageTitle(n int) (string, error) {
	if err := e.validatePageNumber(n); err != nil {
		return "", err
	}
	return e.PageTitle(n + 1)
}

// PreviousPageTitle returns the title of the page before n.
func (e *DiaryEntry) PreviousPageTitle(n int) (string, error) {
	if err := e.validatePageNumber(n); err != nil {
		return "", err
	}
	return e.PageTitle(n - 1)
}

// PageTexts iterates over the page texts in page order.
func (e *DiaryEntry) PageTexts() iter.Seq[string] {
	return func(yield func(string) bool) {
		for _, p := range e.pages {
			if !yield(p.text) {
				return
			}
		}
	}
}

// PageTitles iterates over the page titles in page order.
func (e *DiaryEntry) PageTitles() iter.Seq[string] {
	return func(yield func(string) bool) {
		for _, p := range e.pages {
			if !yield(p.title) {
				return
			}
		}
	}
}

// PagesContainingWord returns the pages whose text contains word as a
// case-insensitive substring. A blank word matches nothing.
func (e *DiaryEntry) PagesContainingWord(word string) []PageMatch {
	if isBlank(word) {
		return nil
	}
	needle := strings.ToLower(word)
	var matches []PageMatch
	for i, p := range e.pages {
		if strings.Contains(strings.ToLower(p.text), needle) {
			matches = append(matches, PageMatch{Number: i + 1, Title: p.title, Text: p.text})
		}
	}
	return matches
}

// addWords counts text into the entry and pushes the same delta to the author.
func (e *DiaryEntry) addWords(text string) {
	delta := CountWords(text)
	if len(delta) == 0 {
		return
	}
	e.wordCount.Add(delta)
	if !e.withdrawn {
		e.author.addWords(delta)
	}
}

func (e *DiaryEntry) removeWords(text string) {
	delta := CountWords(text)
	if len(delta) == 0 {
		return
	}
	e.wordCount.Subtract(delta)
	if !e.withdrawn {
		e.author.removeWords(delta)
	}
}

// Withdraw takes the entry's words out of its author's aggregate. It is called
// when the entry leaves the corpus; later page edits no longer reach the author.
func (e *DiaryEntry) Withdraw() {
	if e.withdrawn {
		return
	}
	e.withdrawn = true
	e.author.removeWords(e.wordCount)
}

// Restore undoes Withdraw: the entry's words count towards its author again.
func (e *DiaryEntry) Restore() {
	if !e.withdrawn {
		return
	}
	e.withdrawn = false
	e.author.addWords(e.wordCount)
}

// Withdrawn reports whether the entry's words are out of the author's aggregate.
func (e *DiaryEntry) Withdrawn() bool { return e.withdrawn }

// touch advances timeChanged and propagates it to the author. Time never
// moves backwards even if the clock does.
func (e *DiaryEntry) touch() {
	now := e.clock()
	if now.Before(e.timeChanged) {
		now = e.timeChanged
	}
	e.timeChanged = now
	if !e.withdrawn {
		e.author.setLastTimeChanged(now)
	}
}

func (e *DiaryEntry) validatePageNumber(n int) error {
	if n < 1 || n > len(e.pages) {
		return fmt.Errorf("%w: %d is not between 1 and %d", ErrPageOutOfRange, n, len(e.pages))
	}
	return nil
}

func (e *DiaryEntry) validateText(text string) error {
	if isBlank(text) {
		return constraintError(errors.New("text cannot be blank"))
	}
	if words := len(Tokenize(text)); words > e.maxWordsPerPage {
		return fmt.Errorf("%w: %d words exceeds the maximum of %d", ErrPageTooLong, words, e.maxWordsPerPage)
	}
	return nil
}
