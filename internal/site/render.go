package site

import (
	"embed"
	"fmt"
	"html/template"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin/render"

	"github.com/yungbote/futureofgaming-backend/internal/domain/user"
)

//go:embed templates/*.html
var templateFS embed.FS

// Page names accepted by Templates.
const (
	PageIndex    = "index"
	PagePatent   = "patent"
	PageArchive  = "archive"
	PageAbout    = "about"
	PageSettings = "settings"
	PageLogin    = "login"
	PageLoading  = "loading"
	PageNotFound = "not_found"
)

var pageNames = []string{PageIndex, PagePatent, PageArchive, PageAbout, PageSettings, PageLogin, PageLoading, PageNotFound}

// Page is the data every template receives. Data carries the page-specific
// view model.
type Page struct {
	Site             *Config
	User             *user.Session
	NewsletterStatus *string
	Title            string
	Description      string
	Image            string
	Path             string
	Year             int
	Data             any
}

func funcs() template.FuncMap {
	return template.FuncMap{
		"toTitleCase": ToTitleCase,
		"join":        strings.Join,
		"score":       func(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) },
		"date": func(t *time.Time) string {
			if t == nil {
				return ""
			}
			return t.Format("January 2, 2006")
		},
		"deref": func(s *string) string {
			if s == nil {
				return ""
			}
			return *s
		},
	}
}

// Templates implements gin's render.HTMLRender with one template set per
// page, each sharing the layout.
type Templates struct {
	pages map[string]*template.Template
}

func ParseTemplates() (*Templates, error) {
	base, err := template.New("layout.html").Funcs(funcs()).ParseFS(templateFS, "templates/layout.html")
	if err != nil {
		return nil, fmt.Errorf("parse layout: %w", err)
	}
	t := &Templates{pages: make(map[string]*template.Template, len(pageNames))}
	for _, name := range pageNames {
		clone, err := base.Clone()
		if err != nil {
			return nil, err
		}
		page, err := clone.ParseFS(templateFS, "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", name, err)
		}
		t.pages[name] = page
	}
	return t, nil
}

func (t *Templates) Instance(name string, data any) render.Render {
	tmpl, ok := t.pages[name]
	if !ok {
		tmpl = t.pages[PageNotFound]
	}
	return render.HTML{Template: tmpl, Name: "layout", Data: data}
}

// NotFound is the view model of PageNotFound.
type NotFound struct {
	Message string
}
