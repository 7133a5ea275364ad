package domain

// Name holds the three optional name fields of an author. Blank fields are
// treated as absent.
type Name struct {
	First    string `json:"first_name,omitempty" yaml:"first_name"`
	Last     string `json:"last_name,omitempty" yaml:"last_name"`
	Nickname string `json:"nickname,omitempty" yaml:"nickname"`
}

// DisplayName composes the identity key of an author:
//
//	first+last+nick  "First Last(Nick)"
//	first+last       "First Last"
//	first+nick       "First(Nick)"
//	last+nick        "Last(Nick)"
//	one field        that field
//
// It returns "" when every field is blank.
func DisplayName(first, last, nickname string) string {
	hasFirst := !isBlank(first)
	hasLast := !isBlank(last)
	hasNick := !isBlank(nickname)

	switch {
	case hasFirst && hasLast && hasNick:
		return first + " " + last + "(" + nickname + ")"
	case hasFirst && hasLast:
		return first + " " + last
	case hasFirst && hasNick:
		return first + "(" + nickname + ")"
	case hasLast && hasNick:
		return last + "(" + nickname + ")"
	case hasFirst:
		return first
	case hasLast:
		return last
	case hasNick:
		return nickname
	default:
		return ""
	}
}

// DisplayName returns the identity key for n.
func (n Name) DisplayName() string {
	return DisplayName(n.First, n.Last, n.Nickname)
}

// Validate checks that at least one field is set and that every set field
// is shorter than MaxNameLength.
func (n Name) Validate() error {
	if isBlank(n.First) && isBlank(n.Last) && isBlank(n.Nickname) {
		return constraintError(errNoNameField)
	}
	if err := validateOptionalName("first_name", n.First); err != nil {
		return err
	}
	if err := validateOptionalName("last_name", n.Last); err != nil {
		return err
	}
	return validateOptionalName("nickname", n.Nickname)
}

// normalized drops blank fields so absent names compare as "".
func (n Name) normalized() Name {
	if isBlank(n.First) {
		n.First = ""
	}
	if isBlank(n.Last) {
		n.Last = ""
	}
	if isBlank(n.Nickname) {
		n.Nickname = ""
	}
	return n
}
