package simpleexcel

import (
	"fmt"
	"os"
	"reflect"
	"time"

	"github.com/xuri/excelize/v2"
	"gopkg.in/yaml.v2"
)

// DataExporter builds a workbook from a YAML layout plus bound data. Binding
// mutates the layout, so use one exporter per workbook.
type DataExporter struct {
	config ReportConfig
}

// NewDataExporterFromYaml parses a layout such as:
//
//	sheets:
//	  - name: "Tasks"
//	    sections:
//	      - id: "tasks"
//	        show_header: true
//	        columns:
//	          - field_name: "Text"
//	            header: "Task"
func NewDataExporterFromYaml(yamlConfig string) (*DataExporter, error) {
	var cfg ReportConfig
	if err := yaml.UnmarshalStrict([]byte(yamlConfig), &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse report config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &DataExporter{config: cfg}, nil
}

func NewDataExporterFromYamlFile(path string) (*DataExporter, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read report config: %w", err)
	}
	return NewDataExporterFromYaml(string(data))
}

func (c ReportConfig) validate() error {
	if len(c.Sheets) == 0 {
		return fmt.Errorf("report config has no sheets")
	}
	seen := make(map[string]bool)
	for i, sheet := range c.Sheets {
		if sheet == nil || sheet.Name == "" {
			return fmt.Errorf("sheet %d has no name", i)
		}
		for _, sec := range sheet.Sections {
			if sec.ID != "" {
				if seen[sec.ID] {
					return fmt.Errorf("duplicate section id %q", sec.ID)
				}
				seen[sec.ID] = true
			}
			if sec.Type == SectionTypeTitleOnly {
				continue
			}
			for _, col := range sec.Columns {
				if col.FieldName == "" {
					return fmt.Errorf("section %q has a column without field_name", sec.ID)
				}
			}
		}
	}
	return nil
}

func (e *DataExporter) section(id string) *SectionConfig {
	for _, sheet := range e.config.Sheets {
		for _, sec := range sheet.Sections {
			if sec.ID == id {
				return sec
			}
		}
	}
	return nil
}

// BindSectionData attaches data to the section with the given id. Unknown ids
// are ignored.
func (e *DataExporter) BindSectionData(id string, data interface{}) *DataExporter {
	if sec := e.section(id); sec != nil {
		sec.Data = data
	}
	return e
}

// SetSectionTitle overrides a section title, typically for title-only
// sections whose text is computed at export time.
func (e *DataExporter) SetSectionTitle(id, title string) *DataExporter {
	if sec := e.section(id); sec != nil {
		sec.Title = title
	}
	return e
}

// ToBytes renders the workbook as xlsx.
func (e *DataExporter) ToBytes() ([]byte, error) {
	f, err := e.render()
	if err != nil {
		return nil, err
	}
	defer f.Close()

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func (e *DataExporter) render() (*excelize.File, error) {
	f := excelize.NewFile()
	for i, sheet := range e.config.Sheets {
		if i == 0 {
			if err := f.SetSheetName("Sheet1", sheet.Name); err != nil {
				return nil, err
			}
		} else if _, err := f.NewSheet(sheet.Name); err != nil {
			return nil, err
		}

		w := &sheetWriter{f: f, name: sheet.Name, row: 1, styles: make(map[*StyleTemplate]int)}
		for _, sec := range sheet.Sections {
			if err := w.writeSection(sec); err != nil {
				return nil, fmt.Errorf("sheet %q section %q: %w", sheet.Name, sec.ID, err)
			}
		}
	}
	return f, nil
}

type sheetWriter struct {
	f      *excelize.File
	name   string
	row    int
	styles map[*StyleTemplate]int
}

func (w *sheetWriter) cell(col int) string {
	name, _ := excelize.CoordinatesToCellName(col, w.row)
	return name
}

func (w *sheetWriter) style(tpl *StyleTemplate) (int, error) {
	if id, ok := w.styles[tpl]; ok {
		return id, nil
	}
	style := &excelize.Style{}
	if tpl.Font != nil {
		style.Font = &excelize.Font{Bold: tpl.Font.Bold, Color: tpl.Font.Color}
	}
	if tpl.Fill != nil && tpl.Fill.Color != "" {
		style.Fill = excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{tpl.Fill.Color}}
	}
	id, err := w.f.NewStyle(style)
	if err != nil {
		return 0, err
	}
	w.styles[tpl] = id
	return id, nil
}

func (w *sheetWriter) styleRow(tpl *StyleTemplate, cols int) error {
	if tpl == nil {
		return nil
	}
	id, err := w.style(tpl)
	if err != nil {
		return err
	}
	return w.f.SetCellStyle(w.name, w.cell(1), w.cell(cols), id)
}

func (w *sheetWriter) writeSection(sec *SectionConfig) error {
	cols := len(sec.Columns)
	if cols == 0 {
		cols = 1
	}

	if sec.Title != "" {
		if err := w.f.SetCellValue(w.name, w.cell(1), sec.Title); err != nil {
			return err
		}
		if cols > 1 {
			if err := w.f.MergeCell(w.name, w.cell(1), w.cell(cols)); err != nil {
				return err
			}
		}
		if err := w.styleRow(sec.TitleStyle, cols); err != nil {
			return err
		}
		w.row++
	}
	if sec.Type == SectionTypeTitleOnly {
		return nil
	}

	for i, col := range sec.Columns {
		if col.Width > 0 {
			name, err := excelize.ColumnNumberToName(i + 1)
			if err != nil {
				return err
			}
			if err := w.f.SetColWidth(w.name, name, name, col.Width); err != nil {
				return err
			}
		}
	}

	if sec.ShowHeader {
		for i, col := range sec.Columns {
			header := col.Header
			if header == "" {
				header = col.FieldName
			}
			if err := w.f.SetCellValue(w.name, w.cell(i+1), header); err != nil {
				return err
			}
		}
		if err := w.styleRow(sec.HeaderStyle, cols); err != nil {
			return err
		}
		w.row++
	}

	if sec.Data != nil {
		rows := reflect.ValueOf(sec.Data)
		if rows.Kind() != reflect.Slice {
			return fmt.Errorf("data must be a slice, got %s", rows.Kind())
		}
		for r := 0; r < rows.Len(); r++ {
			item := reflect.Indirect(rows.Index(r))
			if item.Kind() != reflect.Struct {
				return fmt.Errorf("row %d is not a struct", r)
			}
			for i, col := range sec.Columns {
				v, err := fieldValue(item, col.FieldName)
				if err != nil {
					return err
				}
				if err := w.f.SetCellValue(w.name, w.cell(i+1), v); err != nil {
					return err
				}
			}
			w.row++
		}
	}

	// blank row between sections
	w.row++
	return nil
}

func fieldValue(item reflect.Value, name string) (interface{}, error) {
	field := item.FieldByName(name)
	if !field.IsValid() {
		return nil, fmt.Errorf("field %s not found in %s", name, item.Type())
	}
	for field.Kind() == reflect.Ptr || field.Kind() == reflect.Interface {
		if field.IsNil() {
			return "", nil
		}
		field = field.Elem()
	}
	if t, ok := field.Interface().(time.Time); ok {
		return t.UTC().Format(time.RFC3339), nil
	}
	return field.Interface(), nil
}
