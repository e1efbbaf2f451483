// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package views

import (
	"bytes"
	"html/template"

	"github.com/alecthomas/chroma/v2"
	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
)

var (
	jsonLexer     = chroma.Coalesce(lexers.Get("json"))
	jsonStyle     = styles.Get("github")
	jsonFormatter = chromahtml.New(chromahtml.WithClasses(false), chromahtml.TabWidth(2))
)

// highlightJSON pretty prints v as colourised HTML with inline styles.
// Token text is escaped by the formatter; on failure the plain JSON is
// escaped and wrapped in <pre>.
func highlightJSON(v any) template.HTML {
	src := prettyJSON(v)

	it, err := jsonLexer.Tokenise(nil, src)
	if err != nil {
		return plainPre(src)
	}

	var buf bytes.Buffer
	if err := jsonFormatter.Format(&buf, jsonStyle, it); err != nil {
		return plainPre(src)
	}
	return template.HTML(buf.String())
}

func plainPre(s string) template.HTML {
	return template.HTML("<pre>" + template.HTMLEscapeString(s) + "</pre>")
}
