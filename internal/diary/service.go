package diary

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/rs/zerolog"

	"github.com/pbaille/diary/internal/domain"
	"github.com/pbaille/diary/internal/metrics"
	"github.com/pbaille/diary/internal/register"
)

// Options configures a Service.
type Options struct {
	MaxWordsPerPage int
	SearchLimit     int
	CacheSize       int // 0 disables the word-search cache
	Clock           domain.Clock
	Logger          zerolog.Logger
	Metrics         *metrics.Recorder
}

// Service owns one author register and one diary-entry register and
// serializes every operation on them. A page mutation updates the entry and
// author word counts under the same lock, so queries never observe one
// without the other.
type Service struct {
	mu      sync.Mutex
	authors *register.AuthorRegister
	entries *register.DiaryEntryRegister

	maxWords int
	limit    int
	clock    domain.Clock
	cache    *lru.Cache[string, []EntryView]
	log      zerolog.Logger
	metrics  *metrics.Recorder
}

// EntryRef addresses an entry by its author's display name and its title.
type EntryRef struct {
	Author string `json:"author"`
	Title  string `json:"title"`
}

// New creates an empty corpus.
func New(opts Options) (*Service, error) {
	if opts.MaxWordsPerPage == 0 {
		opts.MaxWordsPerPage = domain.DefaultMaxWordsPerPage
	}
	if opts.SearchLimit == 0 {
		opts.SearchLimit = 10
	}
	if opts.MaxWordsPerPage < 0 || opts.SearchLimit < 0 || opts.CacheSize < 0 {
		return nil, fmt.Errorf("%w: negative service option", domain.ErrInvalidArgument)
	}
	if opts.Metrics == nil {
		opts.Metrics = metrics.New(nil)
	}

	s := &Service{
		authors:  register.NewAuthorRegister(),
		entries:  register.NewDiaryEntryRegister(),
		maxWords: opts.MaxWordsPerPage,
		limit:    opts.SearchLimit,
		clock:    opts.Clock,
		log:      opts.Logger,
		metrics:  opts.Metrics,
	}
	if opts.CacheSize > 0 {
		cache, err := lru.New[string, []EntryView](opts.CacheSize)
		if err != nil {
			return nil, fmt.Errorf("create search cache: %w", err)
		}
		s.cache = cache
	}
	return s, nil
}

func (s *Service) options() []domain.Option {
	if s.clock == nil {
		return nil
	}
	return []domain.Option{domain.WithClock(s.clock)}
}

// applied records a successful mutation and drops cached search results.
func (s *Service) applied(op string, ev func(*zerolog.Event)) {
	if s.cache != nil {
		s.cache.Purge()
	}
	s.metrics.Mutations.WithLabelValues(op).Inc()
	s.metrics.Authors.Set(float64(s.authors.Len()))
	total := 0
	for _, a := range s.entries.Authors() {
		total += s.entries.NumberOfEntries(a)
	}
	s.metrics.Entries.Set(float64(total))

	e := s.log.Debug().Str("op", op)
	if ev != nil {
		ev(e)
	}
	e.Msg("corpus changed")
}

func (s *Service) rejected(op string, err error) error {
	s.metrics.Rejected.WithLabelValues(op).Inc()
	s.log.Warn().Str("op", op).Err(err).Msg("operation rejected")
	return err
}

// AddAuthor registers a new author.
func (s *Service) AddAuthor(n domain.Name) (AuthorView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, err := s.authors.Add(n.First, n.Last, n.Nickname, s.options()...)
	if err != nil {
		return AuthorView{}, s.rejected("add_author", err)
	}
	if err := s.entries.AddAuthor(a); err != nil {
		return AuthorView{}, s.rejected("add_author", err)
	}
	s.applied("add_author", func(e *zerolog.Event) { e.Str("author", a.DisplayName()) })
	return viewAuthor(a, 0), nil
}

// RemoveAuthor unregisters an author by display name. Entries already
// written by the author stay in the entry register.
func (s *Service) RemoveAuthor(name string) (AuthorView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, err := s.authors.RemoveAuthor(name)
	if err != nil {
		return AuthorView{}, s.rejected("remove_author", err)
	}
	s.applied("remove_author", func(e *zerolog.Event) { e.Str("author", name) })
	return viewAuthor(a, s.entries.NumberOfEntries(a)), nil
}

// RenameAuthor replaces all name fields of an author.
func (s *Service) RenameAuthor(oldName string, n domain.Name) (AuthorView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, err := s.authors.UpdateName(oldName, n)
	if err != nil {
		return AuthorView{}, s.rejected("rename_author", err)
	}
	s.applied("rename_author", func(e *zerolog.Event) {
		e.Str("from", oldName).Str("to", a.DisplayName())
	})
	return viewAuthor(a, s.entries.NumberOfEntries(a)), nil
}

// Author returns the author with the given display name.
func (s *Service) Author(name string) (AuthorView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, err := s.author(name)
	if err != nil {
		return AuthorView{}, err
	}
	return viewAuthor(a, s.entries.NumberOfEntries(a)), nil
}

// Authors returns all registered authors ordered by display name.
func (s *Service) Authors() []AuthorView {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.viewAuthors(s.authors.Authors())
}

func (s *Service) viewAuthors(authors []*domain.Author) []AuthorView {
	out := make([]AuthorView, 0, len(authors))
	for _, a := range authors {
		out = append(out, viewAuthor(a, s.entries.NumberOfEntries(a)))
	}
	return out
}

func (s *Service) author(name string) (*domain.Author, error) {
	a, ok := s.authors.GetAuthor(name)
	if !ok {
		return nil, fmt.Errorf("author %q: %w", name, domain.ErrNotFound)
	}
	return a, nil
}

// AuthorQuery selects authors by name fields. Blank fields are ignored; at
// least one field must be set.
type AuthorQuery struct {
	First, Last, Nickname                string
	FirstPrefix, LastPrefix, NickPrefix bool
}

// FindAuthors runs the register search matching the fields set in q.
func (s *Service) FindAuthors(q AuthorQuery) ([]AuthorView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.metrics.Queries.WithLabelValues("author_name").Inc()

	hasFirst, hasLast, hasNick := !blank(q.First), !blank(q.Last), !blank(q.Nickname)
	var (
		found []*domain.Author
		err   error
	)
	switch {
	case hasFirst && hasLast && hasNick:
		found, err = s.authors.FindByFullNameWithNickname(q.First, q.Last, q.Nickname, q.FirstPrefix, q.LastPrefix, q.NickPrefix)
	case hasFirst && hasLast:
		found, err = s.authors.FindByFullName(q.First, q.Last, q.FirstPrefix, q.LastPrefix)
	case hasFirst && hasNick:
		found, err = s.intersect(
			func() ([]*domain.Author, error) { return s.authors.FindByFirstName(q.First, q.FirstPrefix) },
			func() ([]*domain.Author, error) { return s.authors.FindByNickname(q.Nickname, q.NickPrefix) },
		)
	case hasLast && hasNick:
		found, err = s.intersect(
			func() ([]*domain.Author, error) { return s.authors.FindByLastName(q.Last, q.LastPrefix) },
			func() ([]*domain.Author, error) { return s.authors.FindByNickname(q.Nickname, q.NickPrefix) },
		)
	case hasFirst:
		found, err = s.authors.FindByFirstName(q.First, q.FirstPrefix)
	case hasLast:
		found, err = s.authors.FindByLastName(q.Last, q.LastPrefix)
	case hasNick:
		found, err = s.authors.FindByNickname(q.Nickname, q.NickPrefix)
	default:
		err = fmt.Errorf("%w: at least one name field is required", domain.ErrConstraint)
	}
	if err != nil {
		return nil, s.rejected("find_authors", err)
	}
	return s.viewAuthors(found), nil
}

func (s *Service) intersect(a, b func() ([]*domain.Author, error)) ([]*domain.Author, error) {
	left, err := a()
	if err != nil {
		return nil, err
	}
	right, err := b()
	if err != nil {
		return nil, err
	}
	keep := make(map[*domain.Author]bool, len(right))
	for _, r := range right {
		keep[r] = true
	}
	var out []*domain.Author
	for _, l := range left {
		if keep[l] {
			out = append(out, l)
		}
	}
	return out, nil
}

// CreateEntry starts a new, empty entry for an author with the configured
// page word limit.
func (s *Service) CreateEntry(ref EntryRef) (EntryView, error) {
	return s.CreateEntryWithLimit(ref, 0)
}

// CreateEntryWithLimit starts a new, empty entry whose pages hold at most
// maxWordsPerPage words. 0 selects the configured limit.
func (s *Service) CreateEntryWithLimit(ref EntryRef, maxWordsPerPage int) (EntryView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if maxWordsPerPage == 0 {
		maxWordsPerPage = s.maxWords
	}

	a, err := s.author(ref.Author)
	if err != nil {
		return EntryView{}, s.rejected("create_entry", err)
	}
	e, err := domain.NewDiaryEntry(a, maxWordsPerPage, ref.Title, s.options()...)
	if err != nil {
		return EntryView{}, s.rejected("create_entry", err)
	}
	if err := s.entries.AddDiaryEntry(e); err != nil {
		return EntryView{}, s.rejected("create_entry", err)
	}
	s.applied("create_entry", func(ev *zerolog.Event) {
		ev.Str("author", ref.Author).Str("title", ref.Title)
	})
	return viewEntry(e), nil
}

// Entry returns the entry addressed by ref.
func (s *Service) Entry(ref EntryRef) (EntryView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, err := s.entry(ref)
	if err != nil {
		return EntryView{}, err
	}
	return viewEntry(e), nil
}

// PagesContaining returns the pages of ref whose text contains word.
func (s *Service) PagesContaining(ref EntryRef, word string) ([]PageView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, err := s.entry(ref)
	if err != nil {
		return nil, err
	}
	s.metrics.Queries.WithLabelValues("pages").Inc()
	var out []PageView
	for _, m := range e.PagesContainingWord(word) {
		out = append(out, PageView{Number: m.Number, Title: m.Title, Text: m.Text})
	}
	return out, nil
}

func (s *Service) entry(ref EntryRef) (*domain.DiaryEntry, error) {
	a, err := s.author(ref.Author)
	if err != nil {
		return nil, err
	}
	return s.entries.FindDiaryEntryFromAuthorByTitle(a, ref.Title)
}

// RemoveEntry removes the entry addressed by ref.
func (s *Service) RemoveEntry(ref EntryRef) (EntryView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, err := s.author(ref.Author)
	if err != nil {
		return EntryView{}, s.rejected("remove_entry", err)
	}
	e, err := s.entries.RemoveDiaryEntry(a, ref.Title)
	if err != nil {
		return EntryView{}, s.rejected("remove_entry", err)
	}
	s.applied("remove_entry", func(ev *zerolog.Event) {
		ev.Str("author", ref.Author).Str("title", ref.Title)
	})
	return viewEntry(e), nil
}

// mutateEntry runs fn on the entry addressed by ref under the lock.
func (s *Service) mutateEntry(op string, ref EntryRef, fn func(*domain.DiaryEntry) error) (EntryView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, err := s.entry(ref)
	if err != nil {
		return EntryView{}, s.rejected(op, err)
	}
	if err := fn(e); err != nil {
		return EntryView{}, s.rejected(op, err)
	}
	s.applied(op, func(ev *zerolog.Event) {
		ev.Str("author", ref.Author).Str("title", e.Title()).Int("pages", e.NumPages())
	})
	return viewEntry(e), nil
}

// AddPage appends a page to an entry.
func (s *Service) AddPage(ref EntryRef, title, text string) (EntryView, error) {
	return s.mutateEntry("add_page", ref, func(e *domain.DiaryEntry) error {
		return e.AddPage(title, text)
	})
}

// RemovePage removes page n of an entry.
func (s *Service) RemovePage(ref EntryRef, n int) (EntryView, error) {
	return s.mutateEntry("remove_page", ref, func(e *domain.DiaryEntry) error {
		_, err := e.RemovePage(n)
		return err
	})
}

// SetPageText replaces the text of page n.
func (s *Service) SetPageText(ref EntryRef, n int, text string) (EntryView, error) {
	return s.mutateEntry("set_page_text", ref, func(e *domain.DiaryEntry) error {
		return e.SetPageText(n, text)
	})
}

// UpdatePage replaces the title and text of page n in one step. Nil values
// are left unchanged; if either value is rejected nothing changes.
func (s *Service) UpdatePage(ref EntryRef, n int, title, text *string) (EntryView, error) {
	return s.mutateEntry("update_page", ref, func(e *domain.DiaryEntry) error {
		return e.UpdatePage(n, title, text)
	})
}

// SetPageTitle replaces the title of page n.
func (s *Service) SetPageTitle(ref EntryRef, n int, title string) (EntryView, error) {
	return s.mutateEntry("set_page_title", ref, func(e *domain.DiaryEntry) error {
		return e.SetPageTitle(n, title)
	})
}

// SetEntryTitle renames an entry.
func (s *Service) SetEntryTitle(ref EntryRef, title string) (EntryView, error) {
	return s.mutateEntry("set_entry_title", ref, func(e *domain.DiaryEntry) error {
		return e.SetEntryTitle(title)
	})
}

// Search runs q and returns the matching Result variant.
func (s *Service) Search(q Query) (Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.search(q)
	if err != nil {
		return nil, s.rejected("search_"+string(q.Kind), err)
	}
	s.metrics.Queries.WithLabelValues(string(q.Kind)).Inc()
	return res, nil
}

func (s *Service) search(q Query) (Result, error) {
	switch q.Kind {
	case KindAuthor:
		a, err := s.author(q.Author)
		if err != nil {
			return nil, err
		}
		entries := s.entries.DiaryEntriesByAuthor(a)
		return ByAuthor{Author: viewAuthor(a, len(entries)), Entries: viewEntries(entries)}, nil

	case KindWord:
		limit := q.Limit
		if limit == 0 {
			limit = s.limit
		}
		entries, err := s.searchWord(q.Word, limit)
		if err != nil {
			return nil, err
		}
		return ByWord{Word: q.Word, Limit: limit, Entries: entries}, nil

	case KindDateRange:
		rng, err := register.NewDateRange(q.Range.Start, q.Range.End)
		if err != nil {
			return nil, err
		}
		return ByDateRange{Range: rng, Groups: s.viewGroups(s.entries.EntriesCreatedOrChangedBetween(rng))}, nil

	case KindCreatedDate:
		if q.Date.IsZero() {
			return nil, errMissingDate
		}
		return ByCreatedDate{Date: q.Date, Groups: s.viewGroups(s.entries.EntriesCreatedOn(q.Date))}, nil

	case KindChangedDate:
		if q.Date.IsZero() {
			return nil, errMissingDate
		}
		return ByChangedDate{Date: q.Date, Groups: s.viewGroups(s.entries.EntriesChangedOn(q.Date))}, nil

	default:
		return nil, fmt.Errorf("%w: unknown query kind %q", domain.ErrInvalidArgument, q.Kind)
	}
}

var errMissingDate = fmt.Errorf("%w: date is required", domain.ErrInvalidArgument)

func (s *Service) searchWord(word string, limit int) ([]EntryView, error) {
	key := strings.ToLower(word) + "\x00" + strconv.Itoa(limit)
	if s.cache != nil {
		if hit, ok := s.cache.Get(key); ok {
			s.metrics.CacheHits.Inc()
			return hit, nil
		}
	}
	entries, err := s.entries.SearchForWord(word, limit)
	if err != nil {
		return nil, err
	}
	views := viewEntries(entries)
	if s.cache != nil {
		s.cache.Add(key, views)
	}
	return views, nil
}

// Snapshot is a full copy of the corpus.
type Snapshot struct {
	Authors []AuthorView `json:"authors"`
	Entries []EntryView  `json:"entries"`
}

// Snapshot copies every registered author and every entry in the register.
func (s *Service) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{Authors: s.viewAuthors(s.authors.Authors())}
	for _, a := range s.entries.Authors() {
		snap.Entries = append(snap.Entries, viewEntries(s.entries.DiaryEntriesByAuthor(a))...)
	}
	return snap
}

func blank(s string) bool { return strings.TrimSpace(s) == "" }

// IsNotFound reports whether err marks a missing author or entry.
func IsNotFound(err error) bool { return errors.Is(err, domain.ErrNotFound) }
