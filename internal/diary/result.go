package diary

import (
	"github.com/pbaille/diary/internal/register"
)

// Kind names a query shape.
type Kind string

const (
	KindAuthor      Kind = "author"
	KindWord        Kind = "word"
	KindDateRange   Kind = "date_range"
	KindCreatedDate Kind = "created_date"
	KindChangedDate Kind = "changed_date"
)

// Query selects one kind of search and carries its arguments. Only the
// fields used by Kind are read.
type Query struct {
	Kind   Kind
	Author string // display name, KindAuthor
	Word   string // KindWord
	Limit  int    // KindWord; 0 selects the configured default
	Date   register.Date
	Range  register.DateRange
}

// Result is the outcome of a Query. The concrete type matches the query kind.
type Result interface {
	Kind() Kind
	isResult()
}

// ByAuthor lists every entry of one author.
type ByAuthor struct {
	Author  AuthorView  `json:"author"`
	Entries []EntryView `json:"entries"`
}

// ByWord lists entries containing a word, ranked by author frequency.
type ByWord struct {
	Word    string      `json:"word"`
	Limit   int         `json:"limit"`
	Entries []EntryView `json:"entries"`
}

// ByDateRange groups entries created or changed within a range.
type ByDateRange struct {
	Range  register.DateRange `json:"range"`
	Groups []GroupView        `json:"groups"`
}

// ByCreatedDate groups entries created on a date.
type ByCreatedDate struct {
	Date   register.Date `json:"date"`
	Groups []GroupView   `json:"groups"`
}

// ByChangedDate groups entries changed on a date.
type ByChangedDate struct {
	Date   register.Date `json:"date"`
	Groups []GroupView   `json:"groups"`
}

func (ByAuthor) Kind() Kind      { return KindAuthor }
func (ByWord) Kind() Kind        { return KindWord }
func (ByDateRange) Kind() Kind   { return KindDateRange }
func (ByCreatedDate) Kind() Kind { return KindCreatedDate }
func (ByChangedDate) Kind() Kind { return KindChangedDate }

func (ByAuthor) isResult()      {}
func (ByWord) isResult()        {}
func (ByDateRange) isResult()   {}
func (ByCreatedDate) isResult() {}
func (ByChangedDate) isResult() {}
