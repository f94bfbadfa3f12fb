package models

type EmptyConfig struct{}

type NumberConfig struct {
	Format string `json:"format"`
}

type FormulaConfig struct {
	Expression string `json:"expression"`
}

type OptionsConfig struct {
	Options []SelectOption `json:"options,omitempty"`
}

// PropertyConfig defines one column of a database.
type PropertyConfig struct {
	ID          string         `json:"id,omitempty"`
	Name        string         `json:"name,omitempty"`
	Type        string         `json:"type,omitempty"`
	Title       *EmptyConfig   `json:"title,omitempty"`
	RichText    *EmptyConfig   `json:"rich_text,omitempty"`
	Number      *NumberConfig  `json:"number,omitempty"`
	Select      *OptionsConfig `json:"select,omitempty"`
	MultiSelect *OptionsConfig `json:"multi_select,omitempty"`
	Date        *EmptyConfig   `json:"date,omitempty"`
	Formula     *FormulaConfig `json:"formula,omitempty"`
}

type PropertySchema map[string]PropertyConfig

func TitleField() PropertyConfig    { return PropertyConfig{Title: &EmptyConfig{}} }
func RichTextField() PropertyConfig { return PropertyConfig{RichText: &EmptyConfig{}} }
func DateField() PropertyConfig     { return PropertyConfig{Date: &EmptyConfig{}} }

func NumberField() PropertyConfig {
	return PropertyConfig{Number: &NumberConfig{Format: "number"}}
}

func SelectField() PropertyConfig {
	return PropertyConfig{Select: &OptionsConfig{}}
}

func MultiSelectField() PropertyConfig {
	return PropertyConfig{MultiSelect: &OptionsConfig{}}
}

func FormulaField(expression string) PropertyConfig {
	return PropertyConfig{Formula: &FormulaConfig{Expression: expression}}
}
