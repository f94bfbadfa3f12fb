package models

const (
	BlockQuote         = "quote"
	BlockParagraph     = "paragraph"
	BlockHeading2      = "heading_2"
	BlockBulleted      = "bulleted_list_item"
	BlockChildDatabase = "child_database"
	BlockChildPage     = "child_page"
)

type RichTextBlock struct {
	RichText []RichText `json:"rich_text"`
}

type ChildTitle struct {
	Title string `json:"title"`
}

type Block struct {
	Object        string         `json:"object"`
	ID            string         `json:"id"`
	Type          string         `json:"type"`
	HasChildren   bool           `json:"has_children"`
	Archived      bool           `json:"archived"`
	Quote         *RichTextBlock `json:"quote,omitempty"`
	Paragraph     *RichTextBlock `json:"paragraph,omitempty"`
	Heading2      *RichTextBlock `json:"heading_2,omitempty"`
	Bulleted      *RichTextBlock `json:"bulleted_list_item,omitempty"`
	ChildDatabase *ChildTitle    `json:"child_database,omitempty"`
	ChildPage     *ChildTitle    `json:"child_page,omitempty"`
}

// Text returns the plain text of a text-bearing block.
func (b Block) Text() string {
	var rt *RichTextBlock
	switch b.Type {
	case BlockQuote:
		rt = b.Quote
	case BlockParagraph:
		rt = b.Paragraph
	case BlockHeading2:
		rt = b.Heading2
	case BlockBulleted:
		rt = b.Bulleted
	case BlockChildDatabase:
		if b.ChildDatabase != nil {
			return b.ChildDatabase.Title
		}
	case BlockChildPage:
		if b.ChildPage != nil {
			return b.ChildPage.Title
		}
	}
	if rt == nil {
		return ""
	}
	return PropertyValue{RichText: rt.RichText}.PlainText()
}

// BlockContent is the writable part of a block, used both for page children
// on create and for in-place updates.
type BlockContent struct {
	Object    string         `json:"object,omitempty"`
	Type      string         `json:"type,omitempty"`
	Quote     *RichTextBlock `json:"quote,omitempty"`
	Paragraph *RichTextBlock `json:"paragraph,omitempty"`
	Heading2  *RichTextBlock `json:"heading_2,omitempty"`
	Bulleted  *RichTextBlock `json:"bulleted_list_item,omitempty"`
}

// Content copies the writable part of a text block so it can be sent as a
// child of a new page. Ids, timestamps and nested children are dropped. ok is
// false for block types that cannot be copied this way.
func (b Block) Content() (c BlockContent, ok bool) {
	c = BlockContent{Object: "block", Type: b.Type}
	switch {
	case b.Type == BlockQuote && b.Quote != nil:
		c.Quote = &RichTextBlock{RichText: writable(b.Quote.RichText)}
	case b.Type == BlockParagraph && b.Paragraph != nil:
		c.Paragraph = &RichTextBlock{RichText: writable(b.Paragraph.RichText)}
	case b.Type == BlockHeading2 && b.Heading2 != nil:
		c.Heading2 = &RichTextBlock{RichText: writable(b.Heading2.RichText)}
	case b.Type == BlockBulleted && b.Bulleted != nil:
		c.Bulleted = &RichTextBlock{RichText: writable(b.Bulleted.RichText)}
	default:
		return BlockContent{}, false
	}
	return c, true
}

// writable keeps only the text runs of rich text read back from Notion.
func writable(in []RichText) []RichText {
	out := make([]RichText, 0, len(in))
	for _, rt := range in {
		content := rt.PlainText
		if rt.Text != nil {
			content = rt.Text.Content
		}
		out = append(out, RichText{Type: "text", Text: &TextContent{Content: content}})
	}
	return out
}

func QuoteContent(s string) BlockContent {
	return BlockContent{Object: "block", Type: BlockQuote, Quote: &RichTextBlock{RichText: Text(s)}}
}

func ParagraphContent(s string) BlockContent {
	return BlockContent{Object: "block", Type: BlockParagraph, Paragraph: &RichTextBlock{RichText: Text(s)}}
}

func HeadingContent(s string) BlockContent {
	return BlockContent{Object: "block", Type: BlockHeading2, Heading2: &RichTextBlock{RichText: Text(s)}}
}

// Update strips the envelope fields Notion rejects on block updates.
func (c BlockContent) Update() BlockContent {
	c.Object = ""
	c.Type = ""
	return c
}
