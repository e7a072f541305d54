package server

import (
	"bytes"
	"html/template"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	mdparser "github.com/gomarkdown/markdown/parser"

	"github.com/KaramelBytes/salesdash/internal/dashboard"
)

var page = template.Must(template.New("page").Funcs(template.FuncMap{
	"contains": func(list []string, v string) bool {
		for _, s := range list {
			if s == v {
				return true
			}
		}
		return false
	},
}).Parse(`<!doctype html>
<html lang="pt-BR">
<head>
<meta charset="utf-8">
<title>Análise Faturamento</title>
<style>
body{font-family:system-ui,sans-serif;background:#0E1117;color:#e6e6e6;margin:2rem auto;max-width:72rem;padding:0 1rem}
h1,h2{color:#ADD8E6}h3{color:#7FFF00}
table{border-collapse:collapse;margin:.5rem 0 1.5rem}td,th{border:1px solid #262730;padding:.25rem .6rem}
fieldset{border:1px solid #262730;margin-bottom:1rem}label{margin-right:1rem;white-space:nowrap}
blockquote{border-left:4px solid #ADD8E6;margin:0;padding-left:1rem}
</style>
</head>
<body>
<form method="get" action="/">
<fieldset><legend>Competência</legend>
{{range .View.Choices.Periods}}<label><input type="checkbox" name="period" value="{{.}}"{{if contains $.View.Selection.Periods .}} checked{{end}}> {{.}}</label>{{end}}
</fieldset>
<fieldset><legend>Vendedores</legend>
{{range .View.Choices.Salespeople}}<label><input type="checkbox" name="seller" value="{{.}}"{{if contains $.View.Selection.Salespeople .}} checked{{end}}> {{.}}</label>{{end}}
<br><label><input type="checkbox" name="exclude" value="true"{{if .View.Selection.ExcludeSalespeople}} checked{{end}}> excluir selecionados</label>
</fieldset>
<label><input type="checkbox" name="insights" value="true"{{if .Insights}} checked{{end}}> gerar análise com IA</label>
<button type="submit">Aplicar</button>
</form>
<form method="post" action="/api/upload" enctype="multipart/form-data">
<input type="file" name="file" accept=".xlsx,.xls,.csv"> <button type="submit">Enviar planilha</button>
</form>
{{.Body}}
</body>
</html>
`))

// markdownToHTML renders md with tables and auto heading IDs. Links with
// unsafe schemes such as javascript: render as plain text.
func markdownToHTML(md string) []byte {
	p := mdparser.NewWithExtensions(mdparser.CommonExtensions | mdparser.AutoHeadingIDs)
	doc := p.Parse([]byte(md))
	renderer := html.NewRenderer(html.RendererOptions{Flags: html.CommonFlags | html.SkipHTML | html.Safelink})
	return markdown.Render(doc, renderer)
}

func renderPage(v *dashboard.View) []byte {
	var buf bytes.Buffer
	err := page.Execute(&buf, struct {
		View     *dashboard.View
		Insights bool
		Body     template.HTML
	}{
		View:     v,
		Insights: v.Insight != "",
		// SkipHTML drops raw HTML from the model reply and sheet values.
		Body: template.HTML(markdownToHTML(v.Markdown())), //nolint:gosec
	})
	if err != nil {
		return []byte("render error: " + template.HTMLEscapeString(err.Error()))
	}
	return buf.Bytes()
}
