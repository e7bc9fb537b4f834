// Package render turns a browse view into an HTML page of question cards.
package render

import (
	"fmt"
	"html/template"
	"io"

	"github.com/p-n-ai/pai-questions/internal/browse"
)

// Empty-state messages shown instead of cards.
const (
	MsgLoadFailed = "Could not load questions. Please check the data file."
	MsgNoMatches  = "No questions found. Try a different filter!"
)

var page = template.Must(template.New("page").Funcs(template.FuncMap{
	"emptyMessage": EmptyMessage,
	"selected":     func(a, b string) bool { return a == b },
	"markup":       markup,
}).Parse(pageHTML))

// EmptyMessage returns the text for an empty view, or "" when the view has
// records.
func EmptyMessage(reason browse.EmptyReason) string {
	switch reason {
	case browse.EmptyLoadFailed:
		return MsgLoadFailed
	case browse.EmptyNoMatches:
		return MsgNoMatches
	default:
		return ""
	}
}

// markup passes question and answer text through unescaped. Catalog
// authors embed HTML and math notation in these two fields.
func markup(s string) template.HTML {
	return template.HTML(s)
}

// Page writes the full browser page for v.
func Page(w io.Writer, v browse.View) error {
	if err := page.Execute(w, v); err != nil {
		return fmt.Errorf("render page: %w", err)
	}
	return nil
}

const pageHTML = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Question Bank</title>
<script id="MathJax-script" async src="https://cdn.jsdelivr.net/npm/mathjax@3/es5/tex-mml-chtml.js"></script>
</head>
<body>
<form class="filters" method="get" action="/">
  <input type="search" name="search" placeholder="Search questions, topics or q42" value="{{.State.SearchTerm}}">
  <select name="course" onchange="this.form.submit()">
    <option value="">All Courses</option>
    {{- range .Options.Courses}}
    <option value="{{.}}"{{if selected . $.State.Course}} selected{{end}}>{{.}}</option>
    {{- end}}
  </select>
  <select name="topic" onchange="this.form.subtopic.value='';this.form.submit()">
    <option value="">All Topics</option>
    {{- range .Options.Topics}}
    <option value="{{.}}"{{if selected . $.State.Topic}} selected{{end}}>{{.}}</option>
    {{- end}}
  </select>
  <select name="subtopic" onchange="this.form.submit()">
    <option value="">All Subtopics</option>
    {{- range .Options.Subtopics}}
    <option value="{{.}}"{{if selected . $.State.Subtopic}} selected{{end}}>{{.}}</option>
    {{- end}}
  </select>
  <select name="difficulty" onchange="this.form.submit()">
    <option value="">All Difficulties</option>
    {{- range .Options.Difficulties}}
    <option value="{{.}}"{{if selected . $.State.Difficulty}} selected{{end}}>{{.}}</option>
    {{- end}}
  </select>
  <button type="submit">Filter</button>
  <a class="button" href="/">Reset</a>
  <a class="button" href="/?random=1">Random Question</a>
</form>
<div id="questions-container">
{{- with emptyMessage .Empty}}
  <p class="empty">{{.}}</p>
{{- end}}
{{- range .Records}}
  <div class="card">
    <div class="meta">
      <span>Course: <b>{{.Course}}</b></span>
      <span>Difficulty: <b>{{.Difficulty}}</b></span>
    </div>
    <div class="tags">
      <span class="tag">{{.Topic}}</span>
      <span class="tag">{{.Subtopic}}</span>
      {{- range .Tags}}
      <span class="tag">#{{.}}</span>
      {{- end}}
    </div>
    <div class="title">Q{{.ID}}: {{markup .QuestionText}}</div>
    {{- if .QuestionImages}}
    <div class="thumb">{{range .QuestionImages}}<img src="{{.}}" alt="Question Image">{{end}}</div>
    {{- end}}
    <details class="solution">
      <summary>Show Solution</summary>
      <p>{{markup .AnswerText}}</p>
      {{- range .AnswerImages}}
      <img src="{{.}}" alt="Answer Image">
      {{- end}}
      {{- if .AnswerVideo}}
      <iframe src="{{.AnswerVideo}}" allowfullscreen></iframe>
      {{- end}}
    </details>
  </div>
{{- end}}
</div>
</body>
</html>
`
