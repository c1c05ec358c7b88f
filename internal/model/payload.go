package model

// PageKind classifies a page for payload extraction, detected from the
// candidate's normalized domain.
type PageKind string

const (
	KindProduct      PageKind = "product"
	KindEncyclopedia PageKind = "encyclopedia"
	KindForum        PageKind = "forum"
	KindVideo        PageKind = "video"
	KindGeneric      PageKind = "generic"
)

// Payload is a tagged variant carrying kind-specific extracted fields.
// Exactly one variant pointer is populated, selected by Kind.
type Payload struct {
	Kind         PageKind             `json:"kind"`
	Product      *ProductPayload      `json:"product,omitempty"`
	Encyclopedia *EncyclopediaPayload `json:"encyclopedia,omitempty"`
	Forum        *ForumPayload        `json:"forum,omitempty"`
	Video        *VideoPayload        `json:"video,omitempty"`
	Generic      *GenericPayload      `json:"generic,omitempty"`
}

// ProductPayload holds product-page fields (name, price, rating, spec table).
type ProductPayload struct {
	Name         string            `json:"name,omitempty"`
	Price        string            `json:"price,omitempty"`
	Rating       string            `json:"rating,omitempty"`
	Availability string            `json:"availability,omitempty"`
	Features     []string          `json:"features,omitempty"`
	Specs        map[string]string `json:"specs,omitempty"`
}

// EncyclopediaPayload holds article summary, section titles, and infobox pairs.
type EncyclopediaPayload struct {
	Summary  string            `json:"summary,omitempty"`
	Sections []string          `json:"sections,omitempty"`
	Facts    map[string]string `json:"facts,omitempty"`
}

// ForumPayload holds a discussion question and its top answers.
type ForumPayload struct {
	Question   string   `json:"question,omitempty"`
	TopAnswers []string `json:"top_answers,omitempty"`
}

// VideoPayload holds video-page metadata.
type VideoPayload struct {
	VideoTitle  string `json:"video_title,omitempty"`
	Channel     string `json:"channel,omitempty"`
	Description string `json:"description,omitempty"`
	Views       string `json:"views,omitempty"`
}

// GenericPayload holds the kind-agnostic extraction: meta description,
// heading outline, body paragraphs, highlighted details, and a table
// fallback populated when prose is sparse.
type GenericPayload struct {
	Description string            `json:"description,omitempty"`
	Headings    []string          `json:"headings,omitempty"`
	Paragraphs  []string          `json:"paragraphs,omitempty"`
	Details     []string          `json:"details,omitempty"`
	Table       map[string]string `json:"table,omitempty"`
}
