package domain

import (
	"time"

	"github.com/google/uuid"
)

// Author owns diary entries and keeps the aggregate word count of all of them.
type Author struct {
	id    uuid.UUID
	name  Name
	clock Clock

	lastTimeCreated time.Time
	lastTimeChanged time.Time

	wordCount WordCount
}

// NewAuthor creates an author. At least one of the name fields must be set.
func NewAuthor(first, last, nickname string, opts ...Option) (*Author, error) {
	name := Name{First: first, Last: last, Nickname: nickname}
	if err := name.Validate(); err != nil {
		return nil, err
	}
	o := buildOptions(opts)
	return &Author{
		id:        uuid.New(),
		name:      name.normalized(),
		clock:     o.clock,
		wordCount: make(WordCount),
	}, nil
}

// ID returns the author's stable identifier.
func (a *Author) ID() uuid.UUID { return a.id }

// Name returns all name fields.
func (a *Author) Name() Name { return a.name }

// FirstName returns the first name, or "" when unset.
func (a *Author) FirstName() string { return a.name.First }

// LastName returns the last name, or "" when unset.
func (a *Author) LastName() string { return a.name.Last }

// Nickname returns the nickname, or "" when unset.
func (a *Author) Nickname() string { return a.name.Nickname }

// DisplayName returns the composite identity key.
func (a *Author) DisplayName() string { return a.name.DisplayName() }

func (a *Author) String() string { return a.DisplayName() }

// SetFirstName replaces the first name. The value must not be blank.
// Use AuthorRegister to rename a registered author.
func (a *Author) SetFirstName(first string) error {
	if err := validateName("first_name", first); err != nil {
		return err
	}
	a.name.First = first
	a.touch()
	return nil
}

// SetLastName replaces the last name. The value must not be blank.
func (a *Author) SetLastName(last string) error {
	if err := validateName("last_name", last); err != nil {
		return err
	}
	a.name.Last = last
	a.touch()
	return nil
}

// SetNickname replaces the nickname. The value must not be blank.
func (a *Author) SetNickname(nickname string) error {
	if err := validateName("nickname", nickname); err != nil {
		return err
	}
	a.name.Nickname = nickname
	a.touch()
	return nil
}

// Rename replaces all name fields at once; blank fields become unset.
func (a *Author) Rename(n Name) error {
	if err := n.Validate(); err != nil {
		return err
	}
	a.name = n.normalized()
	a.touch()
	return nil
}

// LastTimeCreated returns the creation time of the most recently created entry.
func (a *Author) LastTimeCreated() (time.Time, bool) {
	return a.lastTimeCreated, !a.lastTimeCreated.IsZero()
}

// LastTimeChanged returns the most recent change time observed on the author
// or one of its entries.
func (a *Author) LastTimeChanged() (time.Time, bool) {
	return a.lastTimeChanged, !a.lastTimeChanged.IsZero()
}

// WordCount returns a copy of the aggregate word count.
func (a *Author) WordCount() WordCount { return a.wordCount.Clone() }

// Count returns the aggregate count of word, ignoring case.
func (a *Author) Count(word string) int { return a.wordCount.Get(word) }

func (a *Author) touch() {
	a.lastTimeChanged = a.clock()
}

func (a *Author) setLastTimeCreated(t time.Time) { a.lastTimeCreated = t }

func (a *Author) setLastTimeChanged(t time.Time) { a.lastTimeChanged = t }

func (a *Author) addWords(delta WordCount) { a.wordCount.Add(delta) }

func (a *Author) removeWords(delta WordCount) { a.wordCount.Subtract(delta) }
