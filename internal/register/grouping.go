package register

import (
	"time"

	"github.com/pbaille/diary/internal/domain"
)

// The grouping queries first test the author's own last-created or
// last-changed time. When that already lies in the range, every entry of the
// author is included without looking at the entries' own timestamps.
// Otherwise the author's entries are filtered one by one.

// EntriesCreatedOn groups entries created on d.
func (r *DiaryEntryRegister) EntriesCreatedOn(d Date) []AuthorEntries {
	return r.EntriesCreatedBetween(SingleDay(d))
}

// EntriesChangedOn groups entries changed on d.
func (r *DiaryEntryRegister) EntriesChangedOn(d Date) []AuthorEntries {
	return r.EntriesChangedBetween(SingleDay(d))
}

// EntriesCreatedOrChangedOn groups entries created or changed on d.
func (r *DiaryEntryRegister) EntriesCreatedOrChangedOn(d Date) []AuthorEntries {
	return r.EntriesCreatedOrChangedBetween(SingleDay(d))
}

// EntriesCreatedBetween groups entries created within rng.
func (r *DiaryEntryRegister) EntriesCreatedBetween(rng DateRange) []AuthorEntries {
	return r.group(
		func(a *domain.Author) bool { return inRange(rng, a.LastTimeCreated) },
		func(e *domain.DiaryEntry) bool { return rng.Contains(e.TimeCreated()) },
	)
}

// EntriesChangedBetween groups entries changed within rng.
func (r *DiaryEntryRegister) EntriesChangedBetween(rng DateRange) []AuthorEntries {
	return r.group(
		func(a *domain.Author) bool { return inRange(rng, a.LastTimeChanged) },
		func(e *domain.DiaryEntry) bool { return rng.Contains(e.TimeChanged()) },
	)
}

// EntriesCreatedOrChangedBetween groups entries created or changed within rng.
func (r *DiaryEntryRegister) EntriesCreatedOrChangedBetween(rng DateRange) []AuthorEntries {
	return r.group(
		func(a *domain.Author) bool {
			return inRange(rng, a.LastTimeCreated) || inRange(rng, a.LastTimeChanged)
		},
		func(e *domain.DiaryEntry) bool {
			return rng.Contains(e.TimeCreated()) || rng.Contains(e.TimeChanged())
		},
	)
}

func inRange(rng DateRange, stamp func() (time.Time, bool)) bool {
	t, ok := stamp()
	return ok && rng.Contains(t)
}

func (r *DiaryEntryRegister) group(authorMatch func(*domain.Author) bool, entryMatch func(*domain.DiaryEntry) bool) []AuthorEntries {
	var out []AuthorEntries
	for _, id := range r.order {
		a, entries := r.authors[id], r.entries[id]
		if len(entries) == 0 {
			continue
		}
		if authorMatch(a) {
			out = append(out, AuthorEntries{Author: a, Entries: append([]*domain.DiaryEntry(nil), entries...)})
			continue
		}
		var filtered []*domain.DiaryEntry
		for _, e := range entries {
			if entryMatch(e) {
				filtered = append(filtered, e)
			}
		}
		if len(filtered) > 0 {
			out = append(out, AuthorEntries{Author: a, Entries: filtered})
		}
	}
	return out
}
