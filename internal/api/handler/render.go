package handler

import (
	"agv-finance/internal/auth"
	"agv-finance/internal/domain/employee"
	"bytes"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// PageData is handed to every page template.
type PageData struct {
	Title     string
	Active    string
	User      *auth.Session
	Flash     *auth.Flash
	Errors    map[string]string
	Form      map[string]string
	CanManage bool
	Data      any
}

// Renderer holds one parsed template set per page, each combined with the
// shared layout.
type Renderer struct {
	pages  map[string]*template.Template
	logger *slog.Logger
}

var templateFuncs = template.FuncMap{
	"money":   formatMoney,
	"date":    formatDate,
	"percent": func(v float64) string { return fmt.Sprintf("%.1f%%", v) },
	"add":     func(a, b int) int { return a + b },
	"sub":     func(a, b int) int { return a - b },
	"upper":   strings.ToUpper,
	"label":   label,
	"list":    func(items ...string) []string { return items },
}

func NewRenderer(fsys fs.FS, logger *slog.Logger) (*Renderer, error) {
	pages, err := fs.Glob(fsys, "templates/pages/*.html")
	if err != nil {
		return nil, err
	}
	if len(pages) == 0 {
		return nil, fmt.Errorf("no page templates found")
	}
	r := &Renderer{pages: make(map[string]*template.Template, len(pages)), logger: logger.With("component", "Renderer")}
	for _, p := range pages {
		name := strings.TrimSuffix(path.Base(p), ".html")
		t, err := template.New(name).Funcs(templateFuncs).ParseFS(fsys, "templates/layout.html", p)
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", name, err)
		}
		r.pages[name] = t
	}
	return r, nil
}

// Render fills in the session and pending flash, then writes the page.
func (rn *Renderer) Render(w http.ResponseWriter, r *http.Request, status int, name string, data PageData) {
	t, ok := rn.pages[name]
	if !ok {
		rn.logger.ErrorContext(r.Context(), "Unknown template", "name", name)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	if s, ok := auth.FromContext(r.Context()); ok {
		data.User = s
		data.CanManage = s.Role.AtLeast(employee.RoleManager)
	}
	if data.Flash == nil {
		data.Flash = auth.PopFlash(w, r)
	}

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", data); err != nil {
		rn.logger.ErrorContext(r.Context(), "Template execution failed", "name", name, "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

// formatMoney renders rupees with Indian digit grouping, e.g. ₹12,34,567.50.
func formatMoney(v any) string {
	var d decimal.Decimal
	switch x := v.(type) {
	case decimal.Decimal:
		d = x
	case *decimal.Decimal:
		if x != nil {
			d = *x
		}
	case float64:
		d = decimal.NewFromFloat(x)
	case int:
		d = decimal.NewFromInt(int64(x))
	case int64:
		d = decimal.NewFromInt(x)
	}
	s := d.Abs().StringFixed(2)
	whole, frac, _ := strings.Cut(s, ".")

	var grouped string
	if len(whole) <= 3 {
		grouped = whole
	} else {
		head, tail := whole[:len(whole)-3], whole[len(whole)-3:]
		var parts []string
		for len(head) > 2 {
			parts = append([]string{head[len(head)-2:]}, parts...)
			head = head[:len(head)-2]
		}
		if head != "" {
			parts = append([]string{head}, parts...)
		}
		grouped = strings.Join(parts, ",") + "," + tail
	}
	sign := ""
	if d.IsNegative() {
		sign = "-"
	}
	return sign + "₹" + grouped + "." + frac
}

func formatDate(v any) string {
	switch t := v.(type) {
	case time.Time:
		if t.IsZero() {
			return ""
		}
		return t.Format("02 Jan 2006")
	case *time.Time:
		if t == nil || t.IsZero() {
			return ""
		}
		return t.Format("02 Jan 2006")
	}
	return ""
}

// label turns bank_transfer into Bank Transfer.
func label(v any) string {
	s := strings.ReplaceAll(fmt.Sprint(v), "_", " ")
	words := strings.Fields(s)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
