package pantry

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
)

const (
	boxUnchecked = "☐"
	boxChecked   = "☑"
)

// Checked is the set of item names ticked off by the user, matched
// case-insensitively.
type Checked map[string]bool

// NewChecked builds a Checked set from item names.
func NewChecked(items []string) Checked {
	c := make(Checked, len(items))
	for _, item := range items {
		c[nameKey(item)] = true
	}
	return c
}

func (c Checked) box(item string) string {
	if c[nameKey(item)] {
		return boxChecked
	}
	return boxUnchecked
}

// FormatText renders the list as plain text for copying or saving. Empty
// categories are omitted.
func FormatText(l ShoppingList, checked Checked) string {
	var b strings.Builder
	b.WriteString("Shopping List\n")
	b.WriteString(strings.Repeat("=", 20) + "\n\n")

	for _, c := range Categories() {
		items := l.Bucket(c)
		if len(items) == 0 {
			continue
		}
		b.WriteString(strings.ToUpper(string(c)) + "\n")
		b.WriteString(strings.Repeat("-", len(c)) + "\n")
		for _, item := range items {
			fmt.Fprintf(&b, "%s %s - %s\n", checked.box(item.Item), item.Item, item.Reason)
		}
		b.WriteString("\n")
	}
	return b.String()
}

var printTemplate = template.Must(template.New("print").Parse(`<html>
<head>
<title>Shopping List</title>
<style>
body { font-family: Arial, sans-serif; padding: 20px; }
.category { margin-bottom: 20px; }
.category-title { font-size: 18px; font-weight: bold; margin-bottom: 10px; }
.item { margin: 5px 0; }
.checkbox { margin-right: 10px; }
</style>
</head>
<body>
<h1>Shopping List</h1>
{{- range .}}
<div class="category">
<div class="category-title">{{.Title}}</div>
{{- range .Items}}
<div class="item"><span class="checkbox">{{.Box}}</span>{{.Item}} - {{.Reason}}</div>
{{- end}}
</div>
{{- end}}
</body>
</html>
`))

type printItem struct {
	Box    string
	Item   string
	Reason string
}

type printSection struct {
	Title string
	Items []printItem
}

// FormatHTML renders the list as a printable HTML page.
func FormatHTML(l ShoppingList, checked Checked) (string, error) {
	var sections []printSection
	for _, c := range Categories() {
		items := l.Bucket(c)
		if len(items) == 0 {
			continue
		}
		sec := printSection{Title: strings.ToUpper(string(c))}
		for _, item := range items {
			sec.Items = append(sec.Items, printItem{Box: checked.box(item.Item), Item: item.Item, Reason: item.Reason})
		}
		sections = append(sections, sec)
	}

	var buf bytes.Buffer
	if err := printTemplate.Execute(&buf, sections); err != nil {
		return "", fmt.Errorf("failed to render shopping list: %w", err)
	}
	return buf.String(), nil
}
