package diary

import (
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pbaille/diary/internal/domain"
	"github.com/pbaille/diary/internal/metrics"
	"github.com/pbaille/diary/internal/register"
)

var testNow = time.Date(2024, 5, 17, 9, 30, 0, 0, time.UTC)

func newService(t *testing.T) (*Service, *metrics.Recorder) {
	t.Helper()
	rec := metrics.New(prometheus.NewRegistry())
	s, err := New(Options{
		MaxWordsPerPage: 500,
		SearchLimit:     10,
		CacheSize:       16,
		Clock:           func() time.Time { return testNow },
		Logger:          zerolog.Nop(),
		Metrics:         rec,
	})
	require.NoError(t, err)
	return s, rec
}

func seed(t *testing.T, s *Service) {
	t.Helper()
	_, err := s.AddAuthor(domain.Name{First: "Ola", Last: "Nordmann"})
	require.NoError(t, err)
	_, err = s.AddAuthor(domain.Name{First: "Robert", Last: "Larsen", Nickname: "robelar"})
	require.NoError(t, err)

	det := EntryRef{Author: "Ola Nordmann", Title: "Det"}
	_, err = s.CreateEntry(det)
	require.NoError(t, err)
	_, err = s.AddPage(det, "p1", "moro moro")
	require.NoError(t, err)
	_, err = s.AddPage(det, "p2", "moro glede")
	require.NoError(t, err)

	fest := EntryRef{Author: "Robert Larsen(robelar)", Title: "Fest"}
	_, err = s.CreateEntry(fest)
	require.NoError(t, err)
	_, err = s.AddPage(fest, "kveld", "fest og moro")
	require.NoError(t, err)
}

func TestScenarioWordCounts(t *testing.T) {
	s, _ := newService(t)
	seed(t, s)

	e, err := s.Entry(EntryRef{Author: "Ola Nordmann", Title: "det"})
	require.NoError(t, err)
	assert.Equal(t, domain.WordCount{"moro": 3, "glede": 1}, e.WordCount)
	require.Len(t, e.Pages, 2)
	assert.Equal(t, PageView{Number: 2, Title: "p2", Text: "moro glede"}, e.Pages[1])

	a, err := s.Author("Ola Nordmann")
	require.NoError(t, err)
	assert.Equal(t, domain.WordCount{"moro": 3, "glede": 1}, a.WordCount)
	assert.Equal(t, 1, a.Entries)

	res, err := s.Search(Query{Kind: KindWord, Word: "moro"})
	require.NoError(t, err)
	byWord, ok := res.(ByWord)
	require.True(t, ok)
	assert.Equal(t, 10, byWord.Limit)
	require.Len(t, byWord.Entries, 2)
	assert.Equal(t, "Det", byWord.Entries[0].Title)
	assert.Equal(t, "Fest", byWord.Entries[1].Title)
}

func TestSearchCacheIsPurgedOnMutation(t *testing.T) {
	s, rec := newService(t)
	seed(t, s)

	q := Query{Kind: KindWord, Word: "glede", Limit: 5}
	_, err := s.Search(q)
	require.NoError(t, err)
	res, err := s.Search(q)
	require.NoError(t, err)
	assert.Len(t, res.(ByWord).Entries, 1)
	assert.Equal(t, 1.0, testutil.ToFloat64(rec.CacheHits))

	_, err = s.SetPageText(EntryRef{Author: "Ola Nordmann", Title: "Det"}, 2, "moro trist")
	require.NoError(t, err)

	res, err = s.Search(q)
	require.NoError(t, err)
	assert.Empty(t, res.(ByWord).Entries)
	assert.Equal(t, 1.0, testutil.ToFloat64(rec.CacheHits))
}

func TestSearchVariants(t *testing.T) {
	s, rec := newService(t)
	seed(t, s)
	today := register.DateOf(testNow)

	res, err := s.Search(Query{Kind: KindAuthor, Author: "Ola Nordmann"})
	require.NoError(t, err)
	assert.Equal(t, KindAuthor, res.Kind())
	assert.Len(t, res.(ByAuthor).Entries, 1)

	res, err = s.Search(Query{Kind: KindCreatedDate, Date: today})
	require.NoError(t, err)
	assert.Len(t, res.(ByCreatedDate).Groups, 2)

	res, err = s.Search(Query{Kind: KindChangedDate, Date: today})
	require.NoError(t, err)
	assert.Len(t, res.(ByChangedDate).Groups, 2)

	res, err = s.Search(Query{Kind: KindDateRange, Range: register.DateRange{Start: today, End: today}})
	require.NoError(t, err)
	groups := res.(ByDateRange).Groups
	require.Len(t, groups, 2)
	assert.Equal(t, "Ola Nordmann", groups[0].Author.DisplayName)

	_, err = s.Search(Query{Kind: KindCreatedDate})
	require.ErrorIs(t, err, domain.ErrInvalidArgument)
	_, err = s.Search(Query{Kind: "nope"})
	require.ErrorIs(t, err, domain.ErrInvalidArgument)
	_, err = s.Search(Query{Kind: KindAuthor, Author: "nobody"})
	assert.True(t, IsNotFound(err))

	assert.Equal(t, 1.0, testutil.ToFloat64(rec.Queries.WithLabelValues(string(KindAuthor))))
}

func TestEntryMutations(t *testing.T) {
	s, rec := newService(t)
	seed(t, s)
	ref := EntryRef{Author: "Ola Nordmann", Title: "Det"}

	_, err := s.SetPageTitle(ref, 1, "første")
	require.NoError(t, err)
	e, err := s.SetEntryTitle(ref, "Dagen")
	require.NoError(t, err)
	assert.Equal(t, "Dagen", e.Title)

	ref.Title = "Dagen"
	e, err = s.RemovePage(ref, 1)
	require.NoError(t, err)
	assert.Equal(t, domain.WordCount{"moro": 1, "glede": 1}, e.WordCount)

	_, err = s.RemovePage(ref, 5)
	require.ErrorIs(t, err, domain.ErrPageOutOfRange)
	assert.Equal(t, 1.0, testutil.ToFloat64(rec.Rejected.WithLabelValues("remove_page")))

	_, err = s.RemoveEntry(ref)
	require.NoError(t, err)
	_, err = s.Entry(ref)
	require.ErrorIs(t, err, domain.ErrNotFound)
	assert.Equal(t, 1.0, testutil.ToFloat64(rec.Entries))

	ola, err := s.Author("Ola Nordmann")
	require.NoError(t, err)
	assert.Empty(t, ola.WordCount)
}

func TestAuthorManagement(t *testing.T) {
	s, rec := newService(t)
	seed(t, s)

	_, err := s.AddAuthor(domain.Name{First: "Ola", Last: "Nordmann"})
	require.ErrorIs(t, err, domain.ErrNameTaken)

	a, err := s.RenameAuthor("Ola Nordmann", domain.Name{First: "Ola", Last: "Nordmann", Nickname: "on"})
	require.NoError(t, err)
	assert.Equal(t, "Ola Nordmann(on)", a.DisplayName)
	assert.Equal(t, 1, a.Entries)

	_, err = s.CreateEntry(EntryRef{Author: "Ola Nordmann", Title: "x"})
	require.ErrorIs(t, err, domain.ErrNotFound)

	found, err := s.FindAuthors(AuthorQuery{First: "ola", Nickname: "o", NickPrefix: true})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "Ola Nordmann(on)", found[0].DisplayName)

	found, err = s.FindAuthors(AuthorQuery{Last: "lar", LastPrefix: true})
	require.NoError(t, err)
	require.Len(t, found, 1)

	_, err = s.FindAuthors(AuthorQuery{})
	require.ErrorIs(t, err, domain.ErrConstraint)

	removed, err := s.RemoveAuthor("Robert Larsen(robelar)")
	require.NoError(t, err)
	assert.Equal(t, 1, removed.Entries)
	assert.Len(t, s.Authors(), 1)
	assert.Equal(t, 1.0, testutil.ToFloat64(rec.Authors))

	snap := s.Snapshot()
	assert.Len(t, snap.Authors, 1)
	assert.Len(t, snap.Entries, 2)
}

func TestConcurrentMutationsKeepCountsConsistent(t *testing.T) {
	s, _ := newService(t)
	_, err := s.AddAuthor(domain.Name{Nickname: "anon"})
	require.NoError(t, err)
	ref := EntryRef{Author: "anon", Title: "logg"}
	_, err = s.CreateEntry(ref)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, err := s.AddPage(ref, "side", "sol regn")
			assert.NoError(t, err)
		}()
		go func() {
			defer wg.Done()
			_, err := s.Search(Query{Kind: KindWord, Word: "sol"})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	a, err := s.Author("anon")
	require.NoError(t, err)
	e, err := s.Entry(ref)
	require.NoError(t, err)
	assert.Equal(t, 20, a.WordCount["sol"])
	assert.Equal(t, e.WordCount, a.WordCount)
}

func TestPagesContaining(t *testing.T) {
	s, _ := newService(t)
	seed(t, s)

	det := EntryRef{Author: "Ola Nordmann", Title: "Det"}
	pages, err := s.PagesContaining(det, "GLEDE")
	require.NoError(t, err)
	assert.Equal(t, []PageView{{Number: 2, Title: "p2", Text: "moro glede"}}, pages)

	pages, err = s.PagesContaining(det, "moro")
	require.NoError(t, err)
	assert.Len(t, pages, 2)

	_, err = s.PagesContaining(EntryRef{Author: "Ola Nordmann", Title: "missing"}, "moro")
	assert.True(t, IsNotFound(err))
}

func TestUpdatePageRejectsWithoutPartialChange(t *testing.T) {
	s, _ := newService(t)
	seed(t, s)
	ref := EntryRef{Author: "Robert Larsen(robelar)", Title: "Fest"}

	blank, text := " ", "rolig"
	_, err := s.UpdatePage(ref, 1, &blank, &text)
	require.ErrorIs(t, err, domain.ErrConstraint)

	e, err := s.Entry(ref)
	require.NoError(t, err)
	assert.Equal(t, "fest og moro", e.Pages[0].Text)
	assert.Equal(t, domain.WordCount{"fest": 1, "og": 1, "moro": 1}, e.WordCount)

	title := "natt"
	e, err = s.UpdatePage(ref, 1, &title, &text)
	require.NoError(t, err)
	assert.Equal(t, PageView{Number: 1, Title: "natt", Text: "rolig"}, e.Pages[0])

	robert, err := s.Author("Robert Larsen(robelar)")
	require.NoError(t, err)
	assert.Equal(t, domain.WordCount{"rolig": 1}, robert.WordCount)
}

func TestCreateEntryWithLimit(t *testing.T) {
	s, _ := newService(t)
	seed(t, s)
	ref := EntryRef{Author: "Ola Nordmann", Title: "Kort"}

	e, err := s.CreateEntryWithLimit(ref, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, e.MaxWordsPerPage)

	_, err = s.AddPage(ref, "p", "en to tre")
	require.ErrorIs(t, err, domain.ErrPageTooLong)

	_, err = s.CreateEntryWithLimit(EntryRef{Author: "Ola Nordmann", Title: "Feil"}, -1)
	require.ErrorIs(t, err, domain.ErrConstraint)

	e, err = s.CreateEntry(EntryRef{Author: "Ola Nordmann", Title: "Vanlig"})
	require.NoError(t, err)
	assert.Equal(t, 500, e.MaxWordsPerPage)
}
