package register

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pbaille/diary/internal/domain"
)

const maxWords = 500

type fixture struct {
	reg            *DiaryEntryRegister
	robert, ola    *domain.Author
	det, vart, gng *domain.DiaryEntry
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	robert, err := domain.NewAuthor("Robert", "Larsen", "robelar")
	require.NoError(t, err)
	ola, err := domain.NewAuthor("Ola", "Nordmann", "")
	require.NoError(t, err)

	f := fixture{reg: NewDiaryEntryRegister(), robert: robert, ola: ola}
	require.NoError(t, f.reg.AddAuthor(robert))
	require.NoError(t, f.reg.AddAuthor(ola))

	f.det = addEntry(t, f.reg, robert, "Det", "tok moro moro")
	f.vart = addEntry(t, f.reg, robert, "var", "tare moro glede")
	f.gng = addEntry(t, f.reg, ola, "en gang", "trogg fest")
	return f
}

func addEntry(t *testing.T, reg *DiaryEntryRegister, a *domain.Author, title, text string, opts ...domain.Option) *domain.DiaryEntry {
	t.Helper()
	e, err := domain.NewDiaryEntry(a, maxWords, title, opts...)
	require.NoError(t, err)
	require.NoError(t, e.AddPage("side", text))
	require.NoError(t, reg.AddDiaryEntry(e))
	return e
}

func TestEntriesByAuthor(t *testing.T) {
	f := newFixture(t)

	assert.Equal(t, []*domain.DiaryEntry{f.det, f.vart}, f.reg.DiaryEntriesByAuthor(f.robert))
	assert.Equal(t, 2, f.reg.NumberOfEntries(f.robert))
	assert.Equal(t, 1, f.reg.NumberOfEntries(f.ola))

	stranger, err := domain.NewAuthor("", "", "stranger")
	require.NoError(t, err)
	assert.Zero(t, f.reg.NumberOfEntries(stranger))
	assert.Empty(t, f.reg.DiaryEntriesByAuthor(stranger))
	assert.Equal(t, []*domain.Author{f.robert, f.ola}, f.reg.Authors())
}

func TestFindAndRemoveByTitle(t *testing.T) {
	f := newFixture(t)

	found, err := f.reg.FindDiaryEntryFromAuthorByTitle(f.robert, "DET")
	require.NoError(t, err)
	assert.Same(t, f.det, found)

	_, err = f.reg.FindDiaryEntryFromAuthorByTitle(f.ola, "Det")
	require.ErrorIs(t, err, domain.ErrNotFound)
	_, err = f.reg.FindDiaryEntryFromAuthorByTitle(f.ola, " ")
	require.ErrorIs(t, err, domain.ErrConstraint)

	removed, err := f.reg.RemoveDiaryEntry(f.robert, "det")
	require.NoError(t, err)
	assert.Same(t, f.det, removed)
	assert.Equal(t, []*domain.DiaryEntry{f.vart}, f.reg.DiaryEntriesByAuthor(f.robert))
	assert.Equal(t, f.vart.WordCount(), f.robert.WordCount())

	_, err = f.reg.RemoveDiaryEntry(f.robert, "det")
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestFindReturnsFirstOfDuplicateTitles(t *testing.T) {
	f := newFixture(t)
	dup := addEntry(t, f.reg, f.robert, "det", "annen")

	found, err := f.reg.FindDiaryEntryFromAuthorByTitle(f.robert, "Det")
	require.NoError(t, err)
	assert.Same(t, f.det, found)

	_, err = f.reg.RemoveDiaryEntry(f.robert, "DET")
	require.NoError(t, err)
	found, err = f.reg.FindDiaryEntryFromAuthorByTitle(f.robert, "Det")
	require.NoError(t, err)
	assert.Same(t, dup, found)
}

func TestSearchForWord(t *testing.T) {
	f := newFixture(t)

	got, err := f.reg.SearchForWord("moro", 10)
	require.NoError(t, err)
	assert.Equal(t, []*domain.DiaryEntry{f.det, f.vart}, got)

	got, err = f.reg.SearchForWord("GLEDE", 10)
	require.NoError(t, err)
	assert.Equal(t, []*domain.DiaryEntry{f.vart}, got)

	got, err = f.reg.SearchForWord("fest", 10)
	require.NoError(t, err)
	assert.Equal(t, []*domain.DiaryEntry{f.gng}, got)

	got, err = f.reg.SearchForWord("mirror", 10)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestSearchRanksByAuthorThenInsertionOrder(t *testing.T) {
	reg := NewDiaryEntryRegister()
	a2, err := domain.NewAuthor("A", "Two", "")
	require.NoError(t, err)
	a1, err := domain.NewAuthor("A", "One", "")
	require.NoError(t, err)

	// a2 is inserted first but has the lower aggregate count.
	e3 := addEntry(t, reg, a2, "e3", "x x")
	e1 := addEntry(t, reg, a1, "e1", "x")
	addEntry(t, reg, a1, "e-none", "y")
	e2 := addEntry(t, reg, a1, "e2", "x x")

	require.Equal(t, 3, a1.Count("x"))
	require.Equal(t, 2, a2.Count("x"))

	got, err := reg.SearchForWord("x", 10)
	require.NoError(t, err)
	assert.Equal(t, []*domain.DiaryEntry{e1, e2, e3}, got)
}

func TestSearchLimit(t *testing.T) {
	f := newFixture(t)

	got, err := f.reg.SearchForWord("moro", 1)
	require.NoError(t, err)
	assert.Equal(t, []*domain.DiaryEntry{f.det}, got)

	_, err = f.reg.SearchForWord("moro", 0)
	require.ErrorIs(t, err, domain.ErrConstraint)
	_, err = f.reg.SearchForWord("  ", 3)
	require.ErrorIs(t, err, domain.ErrConstraint)
}

func TestSearchTieKeepsInsertionOrder(t *testing.T) {
	reg := NewDiaryEntryRegister()
	first, err := domain.NewAuthor("First", "", "")
	require.NoError(t, err)
	second, err := domain.NewAuthor("Second", "", "")
	require.NoError(t, err)
	e1 := addEntry(t, reg, first, "a", "sol")
	e2 := addEntry(t, reg, second, "b", "sol")

	got, err := reg.SearchForWord("sol", 10)
	require.NoError(t, err)
	assert.Equal(t, []*domain.DiaryEntry{e1, e2}, got)
}

func fixedClock(t time.Time) domain.Clock {
	return func() time.Time { return t }
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 10, 0, 0, 0, time.UTC)
}

func TestGroupingByCreatedDate(t *testing.T) {
	reg := NewDiaryEntryRegister()
	a, err := domain.NewAuthor("Ola", "", "")
	require.NoError(t, err)
	b, err := domain.NewAuthor("Kari", "", "")
	require.NoError(t, err)

	a1 := addEntry(t, reg, a, "a1", "en", domain.WithClock(fixedClock(day(2024, 1, 1))))
	a2 := addEntry(t, reg, a, "a2", "to", domain.WithClock(fixedClock(day(2024, 1, 5))))
	b1 := addEntry(t, reg, b, "b1", "tre", domain.WithClock(fixedClock(day(2024, 1, 1))))
	addEntry(t, reg, b, "b2", "fire", domain.WithClock(fixedClock(day(2024, 1, 3))))

	// a's last creation is Jan 5, so only a1 is taken from a's list; b's last
	// creation is Jan 3, so only b1 qualifies.
	got := reg.EntriesCreatedOn(Date{2024, time.January, 1})
	require.Len(t, got, 2)
	assert.Equal(t, []*domain.DiaryEntry{a1}, got[0].Entries)
	assert.Equal(t, []*domain.DiaryEntry{b1}, got[1].Entries)

	// a's last creation is inside the range, so all of a's entries are
	// included even though a1 lies outside it.
	rng, err := NewDateRange(Date{2024, time.January, 4}, Date{2024, time.January, 6})
	require.NoError(t, err)
	got = reg.EntriesCreatedBetween(rng)
	require.Len(t, got, 1)
	assert.Same(t, a, got[0].Author)
	assert.Equal(t, []*domain.DiaryEntry{a1, a2}, got[0].Entries)

	rng, err = NewDateRange(Date{2023, time.December, 1}, Date{2023, time.December, 31})
	require.NoError(t, err)
	assert.Empty(t, reg.EntriesCreatedBetween(rng))
}

func TestGroupingByChangedDate(t *testing.T) {
	reg := NewDiaryEntryRegister()
	a, err := domain.NewAuthor("Ola", "", "")
	require.NoError(t, err)

	clock := day(2024, 2, 1)
	e1 := addEntry(t, reg, a, "e1", "en", domain.WithClock(func() time.Time { return clock }))
	clock = day(2024, 2, 10)
	require.NoError(t, e1.AddPage("p2", "to"))

	got := reg.EntriesChangedOn(Date{2024, time.February, 10})
	require.Len(t, got, 1)
	assert.Equal(t, []*domain.DiaryEntry{e1}, got[0].Entries)

	assert.Empty(t, reg.EntriesChangedOn(Date{2024, time.February, 1}))

	got = reg.EntriesCreatedOrChangedOn(Date{2024, time.February, 1})
	require.Len(t, got, 1)
	assert.Equal(t, []*domain.DiaryEntry{e1}, got[0].Entries)
}

func TestGroupingUnionHasNoDuplicates(t *testing.T) {
	reg := NewDiaryEntryRegister()
	a, err := domain.NewAuthor("Ola", "", "")
	require.NoError(t, err)
	b, err := domain.NewAuthor("Kari", "", "")
	require.NoError(t, err)

	addEntry(t, reg, a, "a1", "en", domain.WithClock(fixedClock(day(2024, 3, 1))))
	b1 := addEntry(t, reg, b, "b1", "to", domain.WithClock(fixedClock(day(2024, 3, 2))))
	addEntry(t, reg, b, "b2", "tre", domain.WithClock(fixedClock(day(2024, 3, 9))))

	rng, err := NewDateRange(Date{2024, time.March, 2}, Date{2024, time.March, 3})
	require.NoError(t, err)
	got := reg.EntriesCreatedOrChangedBetween(rng)
	require.Len(t, got, 1)
	assert.Same(t, b, got[0].Author)
	assert.Equal(t, []*domain.DiaryEntry{b1}, got[0].Entries)
}

func TestAuthorsWithoutEntriesNeverGrouped(t *testing.T) {
	reg := NewDiaryEntryRegister()
	a, err := domain.NewAuthor("Ola", "", "")
	require.NoError(t, err)
	require.NoError(t, reg.AddAuthor(a))

	assert.Empty(t, reg.EntriesCreatedOrChangedOn(DateOf(time.Now())))
	got, err := reg.SearchForWord("x", 1)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestReaddedEntryCountsTowardsAuthorAgain(t *testing.T) {
	reg := NewDiaryEntryRegister()
	a, err := domain.NewAuthor("Ola", "", "")
	require.NoError(t, err)
	e := addEntry(t, reg, a, "e", "fest")

	removed, err := reg.RemoveDiaryEntry(a, "e")
	require.NoError(t, err)
	assert.Zero(t, a.Count("fest"))

	require.NoError(t, reg.AddDiaryEntry(removed))
	assert.Equal(t, 1, a.Count("fest"))

	got, err := reg.SearchForWord("fest", 10)
	require.NoError(t, err)
	assert.Equal(t, []*domain.DiaryEntry{e}, got)

	require.NoError(t, e.AddPage("p2", "fest"))
	assert.Equal(t, 2, a.Count("fest"))
}

func TestRemovedEntryDoesNotTouchAuthor(t *testing.T) {
	reg := NewDiaryEntryRegister()
	a, err := domain.NewAuthor("Ola", "", "")
	require.NoError(t, err)

	clock := day(2024, 4, 1)
	e := addEntry(t, reg, a, "e", "en", domain.WithClock(func() time.Time { return clock }))
	_, err = reg.RemoveDiaryEntry(a, "e")
	require.NoError(t, err)

	clock = day(2024, 4, 20)
	require.NoError(t, e.AddPage("p2", "to"))
	last, ok := a.LastTimeChanged()
	require.True(t, ok)
	assert.Equal(t, day(2024, 4, 1), last)
}

func TestAddDiaryEntryRejectsDuplicate(t *testing.T) {
	f := newFixture(t)

	err := f.reg.AddDiaryEntry(f.det)
	require.ErrorIs(t, err, domain.ErrConstraint)
	assert.Equal(t, []*domain.DiaryEntry{f.det, f.vart}, f.reg.DiaryEntriesByAuthor(f.robert))
}
