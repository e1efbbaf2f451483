// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package views

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/danielhkuo/inject-portal/models"
	"github.com/danielhkuo/inject-portal/session"
)

//go:embed templates
var templateFS embed.FS

// Page names
const (
	PageLogin          = "login.html"
	PageRegister       = "register.html"
	PageChangePassword = "change_password.html"
	PageIndex          = "index.html"
	PageJobDetails     = "job_details.html"
	PageJobList        = "job_list.html"
	PageTeam           = "team_details.html"
	PageAdminDashboard = "admin/dashboard.html"
	PageAdminUsers     = "admin/users.html"
	PageAdminTokens    = "admin/tokens.html"
)

// Page is what every template receives
type Page struct {
	Title     string
	User      *models.User
	Flashes   []session.Flash
	FormToken string
	Data      any
}

// Renderer holds the parsed page templates
type Renderer struct {
	pages map[string]*template.Template
	md    goldmark.Markdown
}

func New() (*Renderer, error) {
	r := &Renderer{
		pages: make(map[string]*template.Template),
		md:    goldmark.New(goldmark.WithExtensions(extension.GFM)),
	}

	names := []string{
		PageLogin, PageRegister, PageChangePassword,
		PageIndex, PageJobDetails, PageJobList, PageTeam,
		PageAdminDashboard, PageAdminUsers, PageAdminTokens,
	}
	for _, name := range names {
		t, err := template.New(name).Funcs(r.funcs()).ParseFS(templateFS,
			"templates/layout.html",
			"templates/"+name,
		)
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", name, err)
		}
		r.pages[name] = t
	}
	return r, nil
}

// Render executes a page inside the layout. Output is buffered so a
// template failure becomes a plain 500 instead of a half-written page.
func (r *Renderer) Render(w http.ResponseWriter, status int, name string, page Page) {
	t, ok := r.pages[name]
	if !ok {
		slog.Error("unknown template", "name", name)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", page); err != nil {
		slog.Error("failed to render template", "name", name, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	w.Write(buf.Bytes())
}

func (r *Renderer) funcs() template.FuncMap {
	return template.FuncMap{
		"markdown":  r.markdown,
		"ago":       ago,
		"deref":     deref,
		"highlight": highlightJSON,
		"comma": func(n int) string {
			return humanize.Comma(int64(n))
		},
		"join": strings.Join,
	}
}

// markdown renders untrusted text; raw HTML in the input is dropped
func (r *Renderer) markdown(s string) template.HTML {
	var buf bytes.Buffer
	if err := r.md.Convert([]byte(s), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(s))
	}
	return template.HTML(buf.String())
}

// ago formats an API timestamp or a time.Time relative to now
func ago(v any) string {
	switch t := v.(type) {
	case time.Time:
		return humanize.Time(t)
	case string:
		parsed, err := time.Parse(time.RFC3339Nano, t)
		if err != nil {
			return t
		}
		return humanize.Time(parsed)
	case *string:
		if t == nil {
			return ""
		}
		return ago(*t)
	default:
		return fmt.Sprint(v)
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func prettyJSON(v any) string {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(b)
}
