package report

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

var pageTemplate = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{ .Title }}</title>
<style>
body { font-family: Georgia, serif; max-width: 50rem; margin: 2rem auto; line-height: 1.5; }
table { border-collapse: collapse; margin: 0.5rem 0; }
th, td { border: 1px solid #999; padding: 0.25rem 0.75rem; text-align: left; }
blockquote { margin-left: 1.5rem; color: #333; }
</style>
</head>
<body>
{{ .Body }}
</body>
</html>
`))

var markdownEngine = goldmark.New(goldmark.WithExtensions(extension.GFM))

// HTML renders doc as a standalone HTML page.
func HTML(doc Document) ([]byte, error) {
	var body bytes.Buffer
	if err := markdownEngine.Convert(Markdown(doc), &body); err != nil {
		return nil, fmt.Errorf("convert markdown: %w", err)
	}

	var page bytes.Buffer
	err := pageTemplate.Execute(&page, struct {
		Title string
		Body  template.HTML
	}{
		Title: doc.Title,
		Body:  template.HTML(body.String()),
	})
	if err != nil {
		return nil, fmt.Errorf("render page: %w", err)
	}
	return page.Bytes(), nil
}
