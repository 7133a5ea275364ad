package register

import (
	"fmt"
	"sort"
	"strings"

	"github.com/pbaille/diary/internal/domain"
)

// AuthorRegister indexes authors by display name.
type AuthorRegister struct {
	authors map[string]*domain.Author
}

// NewAuthorRegister creates an empty register.
func NewAuthorRegister() *AuthorRegister {
	return &AuthorRegister{authors: make(map[string]*domain.Author)}
}

// AddAuthor registers a. The display name must not be in use.
func (r *AuthorRegister) AddAuthor(a *domain.Author) error {
	if a == nil {
		return fmt.Errorf("%w: author cannot be nil", domain.ErrConstraint)
	}
	key := a.DisplayName()
	if _, taken := r.authors[key]; taken {
		return fmt.Errorf("%w: %q", domain.ErrNameTaken, key)
	}
	r.authors[key] = a
	return nil
}

// Add creates and registers an author from name fields.
func (r *AuthorRegister) Add(first, last, nickname string, opts ...domain.Option) (*domain.Author, error) {
	a, err := domain.NewAuthor(first, last, nickname, opts...)
	if err != nil {
		return nil, err
	}
	if err := r.AddAuthor(a); err != nil {
		return nil, err
	}
	return a, nil
}

// RemoveAuthor unregisters and returns the author with the given display name.
// The author's diary entries are left untouched.
func (r *AuthorRegister) RemoveAuthor(name string) (*domain.Author, error) {
	a, ok := r.authors[name]
	if !ok {
		return nil, fmt.Errorf("author %q: %w", name, domain.ErrNotFound)
	}
	delete(r.authors, name)
	return a, nil
}

// GetAuthor looks up an author by display name.
func (r *AuthorRegister) GetAuthor(name string) (*domain.Author, bool) {
	a, ok := r.authors[name]
	return a, ok
}

// HasAuthor reports whether name is registered.
func (r *AuthorRegister) HasAuthor(name string) bool {
	_, ok := r.authors[name]
	return ok
}

// Len returns the number of registered authors.
func (r *AuthorRegister) Len() int { return len(r.authors) }

// IsEmpty reports whether no author is registered.
func (r *AuthorRegister) IsEmpty() bool { return len(r.authors) == 0 }

// Clear removes every author.
func (r *AuthorRegister) Clear() { clear(r.authors) }

// Authors returns all authors ordered by display name.
func (r *AuthorRegister) Authors() []*domain.Author {
	return r.filter(func(*domain.Author) bool { return true })
}

// UpdateName replaces every name field of the author registered as oldName and
// re-keys it under its new display name. It fails with ErrNameTaken when the
// new display name belongs to a different author.
func (r *AuthorRegister) UpdateName(oldName string, n domain.Name) (*domain.Author, error) {
	return r.rename(oldName, func(domain.Name) domain.Name { return n })
}

// UpdateFirstName replaces the first name only.
func (r *AuthorRegister) UpdateFirstName(oldName, first string) (*domain.Author, error) {
	if strings.TrimSpace(first) == "" {
		return nil, fmt.Errorf("%w: first name cannot be blank", domain.ErrConstraint)
	}
	return r.rename(oldName, func(n domain.Name) domain.Name {
		n.First = first
		return n
	})
}

// UpdateLastName replaces the last name only.
func (r *AuthorRegister) UpdateLastName(oldName, last string) (*domain.Author, error) {
	if strings.TrimSpace(last) == "" {
		return nil, fmt.Errorf("%w: last name cannot be blank", domain.ErrConstraint)
	}
	return r.rename(oldName, func(n domain.Name) domain.Name {
		n.Last = last
		return n
	})
}

// UpdateNickname replaces the nickname only.
func (r *AuthorRegister) UpdateNickname(oldName, nickname string) (*domain.Author, error) {
	if strings.TrimSpace(nickname) == "" {
		return nil, fmt.Errorf("%w: nickname cannot be blank", domain.ErrConstraint)
	}
	return r.rename(oldName, func(n domain.Name) domain.Name {
		n.Nickname = nickname
		return n
	})
}

func (r *AuthorRegister) rename(oldName string, update func(domain.Name) domain.Name) (*domain.Author, error) {
	if strings.TrimSpace(oldName) == "" {
		return nil, fmt.Errorf("%w: old name cannot be blank", domain.ErrConstraint)
	}
	a, ok := r.authors[oldName]
	if !ok {
		return nil, fmt.Errorf("author %q: %w", oldName, domain.ErrNotFound)
	}

	next := update(a.Name())
	if err := next.Validate(); err != nil {
		return nil, err
	}
	newName := next.DisplayName()
	if other, taken := r.authors[newName]; taken && other != a {
		return nil, fmt.Errorf("%w: %q", domain.ErrNameTaken, newName)
	}

	if err := a.Rename(next); err != nil {
		return nil, err
	}
	delete(r.authors, oldName)
	r.authors[a.DisplayName()] = a
	return a, nil
}

// FindByFirstName returns authors whose first name equals value, or starts
// with it when prefix is set. Matching ignores case.
func (r *AuthorRegister) FindByFirstName(value string, prefix bool) ([]*domain.Author, error) {
	m, err := newFieldMatcher("first name", value, prefix)
	if err != nil {
		return nil, err
	}
	return r.filter(func(a *domain.Author) bool { return m.match(a.FirstName()) }), nil
}

// FindByLastName matches on the last name like FindByFirstName.
func (r *AuthorRegister) FindByLastName(value string, prefix bool) ([]*domain.Author, error) {
	m, err := newFieldMatcher("last name", value, prefix)
	if err != nil {
		return nil, err
	}
	return r.filter(func(a *domain.Author) bool { return m.match(a.LastName()) }), nil
}

// FindByNickname matches on the nickname like FindByFirstName.
func (r *AuthorRegister) FindByNickname(value string, prefix bool) ([]*domain.Author, error) {
	m, err := newFieldMatcher("nickname", value, prefix)
	if err != nil {
		return nil, err
	}
	return r.filter(func(a *domain.Author) bool { return m.match(a.Nickname()) }), nil
}

// FindByFullName returns authors matching both first and last name.
func (r *AuthorRegister) FindByFullName(first, last string, firstPrefix, lastPrefix bool) ([]*domain.Author, error) {
	fm, err := newFieldMatcher("first name", first, firstPrefix)
	if err != nil {
		return nil, err
	}
	lm, err := newFieldMatcher("last name", last, lastPrefix)
	if err != nil {
		return nil, err
	}
	return r.filter(func(a *domain.Author) bool {
		return fm.match(a.FirstName()) && lm.match(a.LastName())
	}), nil
}

// FindByFullNameWithNickname returns authors matching all three fields. When
// the display name built from the lower-cased values is registered, that
// author alone is returned without scanning.
func (r *AuthorRegister) FindByFullNameWithNickname(first, last, nickname string, firstPrefix, lastPrefix, nickPrefix bool) ([]*domain.Author, error) {
	fm, err := newFieldMatcher("first name", first, firstPrefix)
	if err != nil {
		return nil, err
	}
	lm, err := newFieldMatcher("last name", last, lastPrefix)
	if err != nil {
		return nil, err
	}
	nm, err := newFieldMatcher("nickname", nickname, nickPrefix)
	if err != nil {
		return nil, err
	}

	if a, ok := r.authors[domain.DisplayName(fm.value, lm.value, nm.value)]; ok {
		return []*domain.Author{a}, nil
	}
	return r.filter(func(a *domain.Author) bool {
		return fm.match(a.FirstName()) && lm.match(a.LastName()) && nm.match(a.Nickname())
	}), nil
}

func (r *AuthorRegister) filter(keep func(*domain.Author) bool) []*domain.Author {
	var out []*domain.Author
	for _, a := range r.authors {
		if keep(a) {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].DisplayName() < out[j].DisplayName()
	})
	return out
}

// fieldMatcher holds a lower-cased search value.
type fieldMatcher struct {
	value  string
	prefix bool
}

func newFieldMatcher(field, value string, prefix bool) (fieldMatcher, error) {
	if strings.TrimSpace(value) == "" {
		return fieldMatcher{}, fmt.Errorf("%w: %s cannot be blank", domain.ErrConstraint, field)
	}
	return fieldMatcher{value: strings.ToLower(value), prefix: prefix}, nil
}

// match never succeeds on an unset field.
func (m fieldMatcher) match(field string) bool {
	if field == "" {
		return false
	}
	field = strings.ToLower(field)
	if m.prefix {
		return strings.HasPrefix(field, m.value)
	}
	return field == m.value
}
