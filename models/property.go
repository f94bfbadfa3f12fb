package models

import "strings"

type TextContent struct {
	Content string `json:"content"`
}

type RichText struct {
	Type      string       `json:"type,omitempty"`
	Text      *TextContent `json:"text,omitempty"`
	PlainText string       `json:"plain_text,omitempty"`
}

type SelectOption struct {
	Name  string `json:"name"`
	Color string `json:"color,omitempty"`
}

type FormulaValue struct {
	Type    string   `json:"type"`
	Number  *float64 `json:"number,omitempty"`
	String  *string  `json:"string,omitempty"`
	Boolean *bool    `json:"boolean,omitempty"`
}

type DateValue struct {
	Start string  `json:"start"`
	End   *string `json:"end,omitempty"`
}

// PropertyValue is one typed field of a page. Exactly one of the value
// fields is set on writes; reads carry Type as well.
type PropertyValue struct {
	ID          string         `json:"id,omitempty"`
	Type        string         `json:"type,omitempty"`
	Title       []RichText     `json:"title,omitempty"`
	RichText    []RichText     `json:"rich_text,omitempty"`
	Number      *float64       `json:"number,omitempty"`
	Select      *SelectOption  `json:"select,omitempty"`
	MultiSelect []SelectOption `json:"multi_select,omitempty"`
	Formula     *FormulaValue  `json:"formula,omitempty"`
	Date        *DateValue     `json:"date,omitempty"`
}

type Properties map[string]PropertyValue

func Text(s string) []RichText {
	return []RichText{{Type: "text", Text: &TextContent{Content: s}}}
}

func TitleValue(s string) PropertyValue {
	return PropertyValue{Title: Text(s)}
}

func RichTextValue(s string) PropertyValue {
	return PropertyValue{RichText: Text(s)}
}

func NumberValue(f float64) PropertyValue {
	return PropertyValue{Number: &f}
}

func SelectValue(name string) PropertyValue {
	return PropertyValue{Select: &SelectOption{Name: name}}
}

func MultiSelectValue(names []string) PropertyValue {
	opts := make([]SelectOption, 0, len(names))
	for _, n := range names {
		opts = append(opts, SelectOption{Name: n})
	}
	return PropertyValue{MultiSelect: opts}
}

func FormulaNumber(f float64) PropertyValue {
	return PropertyValue{Type: "formula", Formula: &FormulaValue{Type: "number", Number: &f}}
}

// PlainText joins a title or rich text value; select values return their name.
func (p PropertyValue) PlainText() string {
	parts := p.Title
	if len(parts) == 0 {
		parts = p.RichText
	}
	if len(parts) == 0 {
		if p.Select != nil {
			return p.Select.Name
		}
		return ""
	}

	var b strings.Builder
	for _, rt := range parts {
		switch {
		case rt.PlainText != "":
			b.WriteString(rt.PlainText)
		case rt.Text != nil:
			b.WriteString(rt.Text.Content)
		}
	}
	return b.String()
}

// Float reads a number or a numeric formula result. ok is false for null.
func (p PropertyValue) Float() (v float64, ok bool) {
	if p.Number != nil {
		return *p.Number, true
	}
	if p.Formula != nil && p.Formula.Number != nil {
		return *p.Formula.Number, true
	}
	return 0, false
}

// FloatOr reads a numeric field, falling back to def when it is absent or null.
func (p Properties) FloatOr(name string, def float64) float64 {
	v, ok := p[name]
	if !ok {
		return def
	}
	if f, ok := v.Float(); ok {
		return f
	}
	return def
}

func (p Properties) Text(name string) string {
	v, ok := p[name]
	if !ok {
		return ""
	}
	return v.PlainText()
}
