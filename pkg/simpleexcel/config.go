package simpleexcel

// SectionType controls how a section is rendered.
type SectionType string

const (
	// SectionTypeData renders an optional title, an optional header row and
	// one row per element of Data.
	SectionTypeData SectionType = ""
	// SectionTypeTitleOnly renders just the title row.
	SectionTypeTitleOnly SectionType = "title"
)

type FontTemplate struct {
	Bold  bool   `yaml:"bold"`
	Color string `yaml:"color"`
}

type FillTemplate struct {
	Color string `yaml:"color"`
}

type StyleTemplate struct {
	Font *FontTemplate `yaml:"font"`
	Fill *FillTemplate `yaml:"fill"`
}

// ColumnConfig maps a struct field of the bound data onto a column.
type ColumnConfig struct {
	FieldName string  `yaml:"field_name"`
	Header    string  `yaml:"header"`
	Width     float64 `yaml:"width"`
}

type SectionConfig struct {
	ID          string         `yaml:"id"`
	Title       string         `yaml:"title"`
	Type        SectionType    `yaml:"type"`
	ShowHeader  bool           `yaml:"show_header"`
	TitleStyle  *StyleTemplate `yaml:"title_style"`
	HeaderStyle *StyleTemplate `yaml:"header_style"`
	Columns     []ColumnConfig `yaml:"columns"`

	// Data is a slice of structs (or struct pointers) bound at export time.
	Data interface{} `yaml:"-"`
}

type SheetConfig struct {
	Name     string           `yaml:"name"`
	Sections []*SectionConfig `yaml:"sections"`
}

type ReportConfig struct {
	Sheets []*SheetConfig `yaml:"sheets"`
}
