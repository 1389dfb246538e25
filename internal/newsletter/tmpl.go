package newsletter

import (
	"bytes"
	_ "embed"
	"strconv"
	"text/template"
)

type Item struct {
	Title     string
	URL       string
	Permalink string
	Scope     string
	Author    string
	Score     int
	Comments  int
	Media     string // empty for text posts
	Rank      float64
}

type Data struct {
	Title    string
	Slug     string
	Datetime string
	Scope    string
	Sort     string
	PostIDs  []string
	Items    []Item
}

//go:embed newsletter.tmpl
var newsletterTpl string

var compiled = template.Must(template.New("newsletter").Funcs(template.FuncMap{
	"quote": strconv.Quote,
	"inc":   func(i int) int { return i + 1 },
}).Parse(newsletterTpl))

func Render(d Data) (string, error) {
	var buf bytes.Buffer
	if err := compiled.Execute(&buf, d); err != nil {
		return "", err
	}
	return buf.String(), nil
}
