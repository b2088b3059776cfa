package domain

// SearchHit is a single web search result. News results carry URL and Date,
// text results carry Href and no date.
type SearchHit struct {
	Title  string
	Href   string
	URL    string
	Date   string
	Body   string
	Source string
}

// Link returns Href, then URL, then the placeholder.
func (h SearchHit) Link(placeholder string) string {
	switch {
	case h.Href != "":
		return h.Href
	case h.URL != "":
		return h.URL
	default:
		return placeholder
	}
}
