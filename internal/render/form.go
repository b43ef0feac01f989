package render

import (
	"fmt"
	"html/template"
	"strings"
)

// Field is one input of a comment form.
type Field struct {
	Label string
	Name  string
	Type  string
	Value string
}

// Form is a minimal renderable form. It only knows how to print itself
// in the three builtin layouts; anything richer comes from a custom
// renderer.
type Form struct {
	Action string
	Fields []Field
}

func (f *Form) widget(fld Field) string {
	typ := fld.Type
	if typ == "" {
		typ = "text"
	}
	return fmt.Sprintf(`<input type=%q name=%q value=%q>`,
		typ, fld.Name, template.HTMLEscapeString(fld.Value))
}

func (f *Form) label(fld Field) string {
	return fmt.Sprintf(`<label for=%q>%s</label>`,
		fld.Name, template.HTMLEscapeString(fld.Label))
}

// AsTable renders the form rows as <tr> elements.
func (f *Form) AsTable() string {
	var b strings.Builder
	for _, fld := range f.Fields {
		fmt.Fprintf(&b, "<tr><th>%s</th><td>%s</td></tr>\n", f.label(fld), f.widget(fld))
	}
	return strings.TrimSuffix(b.String(), "\n")
}

// AsUL renders the form rows as <li> elements.
func (f *Form) AsUL() string {
	var b strings.Builder
	for _, fld := range f.Fields {
		fmt.Fprintf(&b, "<li>%s %s</li>\n", f.label(fld), f.widget(fld))
	}
	return strings.TrimSuffix(b.String(), "\n")
}

// AsP renders the form rows as <p> elements.
func (f *Form) AsP() string {
	var b strings.Builder
	for _, fld := range f.Fields {
		fmt.Fprintf(&b, "<p>%s %s</p>\n", f.label(fld), f.widget(fld))
	}
	return strings.TrimSuffix(b.String(), "\n")
}

// String is the form's default rendering, used when no renderer mode is
// configured.
func (f *Form) String() string {
	return f.AsTable()
}

// FormMode selects one of the closed set of form layouts.
type FormMode string

const (
	FormModeDefault FormMode = ""
	FormModeTable   FormMode = "as_table"
	FormModeUL      FormMode = "as_ul"
	FormModeP       FormMode = "as_p"
	FormModeCustom  FormMode = "custom"
)

// CustomFormFunc renders a form with a caller-supplied convention.
type CustomFormFunc func(*Form) (string, error)

// FormRenderer maps a configured mode onto a rendering function once at
// startup, so call sites never dispatch on strings.
type FormRenderer struct {
	mode   FormMode
	custom CustomFormFunc
}

// NewFormRenderer interprets the FORM_RENDERER setting. The builtin
// values select a layout; any other non-empty value selects the custom
// hook, which must then be supplied; the empty value falls back to the
// form's own String.
func NewFormRenderer(setting string, custom CustomFormFunc) (*FormRenderer, error) {
	switch FormMode(setting) {
	case FormModeDefault:
		return &FormRenderer{mode: FormModeDefault}, nil
	case FormModeTable, FormModeUL, FormModeP:
		return &FormRenderer{mode: FormMode(setting)}, nil
	}
	if custom == nil {
		return nil, fmt.Errorf("form renderer %q requires a custom renderer", setting)
	}
	return &FormRenderer{mode: FormModeCustom, custom: custom}, nil
}

func (r *FormRenderer) Mode() FormMode {
	return r.mode
}

func (r *FormRenderer) Render(f *Form) (string, error) {
	switch r.mode {
	case FormModeTable:
		return f.AsTable(), nil
	case FormModeUL:
		return f.AsUL(), nil
	case FormModeP:
		return f.AsP(), nil
	case FormModeCustom:
		return r.custom(f)
	default:
		return f.String(), nil
	}
}
