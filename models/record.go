package models

type Parent struct {
	Type       string `json:"type"`
	DatabaseID string `json:"database_id,omitempty"`
	PageID     string `json:"page_id,omitempty"`
}

type Emoji struct {
	Type  string `json:"type"`
	Emoji string `json:"emoji"`
}

type ExternalFile struct {
	Type     string `json:"type"`
	External struct {
		URL string `json:"url"`
	} `json:"external"`
}

func ExternalCover(url string) *ExternalFile {
	f := &ExternalFile{Type: "external"}
	f.External.URL = url
	return f
}

// Record is a Notion page, either a database row or a free-standing page.
type Record struct {
	Object     string     `json:"object"`
	ID         string     `json:"id"`
	URL        string     `json:"url"`
	Parent     Parent     `json:"parent"`
	Archived   bool       `json:"archived"`
	Icon       *Emoji     `json:"icon,omitempty"`
	Properties Properties `json:"properties"`
}

type CreateRecordRequest struct {
	ParentID           string
	ParentIsCollection bool
	Properties         Properties
	Children           []BlockContent
	CoverURL           string
	IconEmoji          string
}

type TextFilter struct {
	Equals string `json:"equals"`
}

type Filter struct {
	Property string      `json:"property"`
	Title    *TextFilter `json:"title,omitempty"`
	Select   *TextFilter `json:"select,omitempty"`
}

type Query struct {
	Filter   *Filter
	PageSize int
	Cursor   string
}

// Collection is a Notion database.
type Collection struct {
	Object     string         `json:"object"`
	ID         string         `json:"id"`
	URL        string         `json:"url"`
	Title      []RichText     `json:"title"`
	Parent     Parent         `json:"parent"`
	Properties PropertySchema `json:"properties"`
}

func (c *Collection) Name() string {
	return PropertyValue{Title: c.Title}.PlainText()
}
