package web

import (
	"html/template"
	"io"

	"github.com/seeliang/google-cloud-engineering/pkg/analyzer"
)

var pageTemplate = template.Must(template.New("page").Parse(`<!doctype html>
<html lang="en">
<head>
  <meta charset="utf-8">
  <title>Text Analyzer Proxy</title>
  <style>
    body { font-family: Arial, sans-serif; margin: 2rem; max-width: 720px; }
    form { display: grid; gap: 1rem; }
    textarea { width: 100%; min-height: 10rem; padding: 0.75rem; font-size: 1rem; }
    button { width: 10rem; padding: 0.5rem 1rem; font-size: 1rem; cursor: pointer; }
    .message { padding: 0.75rem; border-radius: 0.25rem; }
    .error { background: #ffd6d6; border: 1px solid #cc4b4b; }
    .results { margin-top: 2rem; background: #f5f5f5; padding: 1rem; border-radius: 0.25rem; }
    .results dl { display: grid; grid-template-columns: repeat(auto-fit, minmax(160px, 1fr)); gap: 0.5rem 1rem; margin: 0; }
    dt { font-weight: bold; }
    dd { margin: 0; }
  </style>
</head>
<body>
  <h1>Text Analyzer</h1>
  <p>Submit text below to analyze it with the Cloud Function at <code>{{.FunctionURL}}</code>.</p>
  {{- if .Error}}
  <p class="message error">{{.Error}}</p>
  {{- end}}
  <form action="/submit" method="post">
    <label for="text">Text to analyze</label>
    <textarea id="text" name="text" required>{{.Text}}</textarea>
    <button type="submit">Analyze</button>
  </form>
  {{- with .Stats}}
  <section class="results">
    <h2>Analysis Result</h2>
    <dl>
      <div><dt>Word Count</dt><dd>{{.WordCount}}</dd></div>
      <div><dt>Character Count</dt><dd>{{.CharacterCount}}</dd></div>
      <div><dt>Unique Word Count</dt><dd>{{.UniqueWordCount}}</dd></div>
    </dl>
  </section>
  {{- end}}
</body>
</html>
`))

type page struct {
	FunctionURL string
	Text        string
	Error       string
	Stats       *analyzer.Stats
}

func renderPage(w io.Writer, p page) error {
	return pageTemplate.Execute(w, p)
}
