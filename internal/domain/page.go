package domain

// Page is a titled text unit inside a diary entry.
type Page struct {
	title string
	text  string
}

// NewPage creates a page. The title must be non-blank and shorter than
// MaxTitleLength; the text may be anything.
func NewPage(title, text string) (*Page, error) {
	if err := validateTitle(title); err != nil {
		return nil, err
	}
	return &Page{title: title, text: text}, nil
}

// Title returns the page title.
func (p *Page) Title() string { return p.title }

// Text returns the page text.
func (p *Page) Text() string { return p.text }

// SetTitle changes the page title.
func (p *Page) SetTitle(title string) error {
	if err := validateTitle(title); err != nil {
		return err
	}
	p.title = title
	return nil
}

// SetText changes the page text.
func (p *Page) SetText(text string) {
	p.text = text
}
