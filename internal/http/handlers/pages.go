package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/futureofgaming-backend/internal/domain/patent"
	"github.com/yungbote/futureofgaming-backend/internal/platform/ctxutil"
	"github.com/yungbote/futureofgaming-backend/internal/platform/logger"
	"github.com/yungbote/futureofgaming-backend/internal/services"
	"github.com/yungbote/futureofgaming-backend/internal/site"
)

const msgPatentPageNotFound = "Patent not found or no deep analysis available"

type PageHandler struct {
	log         *logger.Logger
	pages       services.PageService
	logins      services.LoginEventEmitter
	site        *site.Config
	authBaseURL string
	now         func() time.Time
}

func NewPageHandler(log *logger.Logger, pages services.PageService, logins services.LoginEventEmitter, siteCfg *site.Config, authBaseURL string) *PageHandler {
	return &PageHandler{
		log:         log.With("handler", "PageHandler"),
		pages:       pages,
		logins:      logins,
		site:        siteCfg,
		authBaseURL: authBaseURL,
		now:         time.Now,
	}
}

type loginView struct {
	AuthBaseURL string
}

// render fills the layout data shared by every page. Newsletter status is
// only looked up when personalize is set.
func (h *PageHandler) render(c *gin.Context, status int, name string, personalize bool, page site.Page) {
	sess := ctxutil.GetSession(c.Request.Context())
	page.Site = h.site
	page.User = sess
	page.Path = c.Request.URL.Path
	page.Year = h.now().Year()
	if page.Title == "" {
		page.Title = h.site.Name
	}
	if personalize {
		page.NewsletterStatus = h.pages.NewsletterStatus(c.Request.Context(), sess)
	}
	c.HTML(status, name, page)
}

func (h *PageHandler) serverError(c *gin.Context, what string, err error) {
	h.log.Error("Error fetching "+what, "path", c.Request.URL.Path, "error", err)
	_ = c.Error(err)
	c.String(http.StatusInternalServerError, "Server error")
}

// GET /
func (h *PageHandler) Home(c *gin.Context) {
	view, err := h.pages.Home(c.Request.Context())
	if err != nil {
		h.serverError(c, "homepage", err)
		return
	}
	h.render(c, http.StatusOK, site.PageIndex, true, site.Page{Data: view})
}

// GET /patent/:n
func (h *PageHandler) Patent(c *gin.Context) {
	view, err := h.pages.Patent(c.Request.Context(), c.Param("n"))
	if errors.Is(err, patent.ErrNotFound) || errors.Is(err, patent.ErrInvalidNumber) {
		h.render(c, http.StatusNotFound, site.PageNotFound, false, site.Page{Title: "Not found", Data: site.NotFound{Message: msgPatentPageNotFound}})
		return
	}
	if err != nil {
		h.serverError(c, "patent", err)
		return
	}
	h.render(c, http.StatusOK, site.PagePatent, true, site.Page{
		Title:       site.ToTitleCase(view.Patent.Title) + " | " + h.site.Name,
		Description: excerpt(view.Patent.ExecutiveSummary, 160),
		Image:       h.site.URL + "/api/patent-card/" + view.Patent.PatentNumber + ".png",
		Data:        view,
	})
}

// GET /archive
func (h *PageHandler) Archive(c *gin.Context) {
	view, err := h.pages.Archive(c.Request.Context())
	if err != nil {
		h.serverError(c, "archive", err)
		return
	}
	h.render(c, http.StatusOK, site.PageArchive, true, site.Page{Title: "Archive | " + h.site.Name, Data: view})
}

// GET /about
func (h *PageHandler) About(c *gin.Context) {
	h.render(c, http.StatusOK, site.PageAbout, false, site.Page{Title: "About | " + h.site.Name})
}

// GET /settings
func (h *PageHandler) Settings(c *gin.Context) {
	if ctxutil.GetSession(c.Request.Context()) == nil {
		c.Redirect(http.StatusFound, "/login")
		return
	}
	h.render(c, http.StatusOK, site.PageSettings, true, site.Page{Title: "Settings | " + h.site.Name})
}

// GET /login
func (h *PageHandler) Login(c *gin.Context) {
	h.render(c, http.StatusOK, site.PageLogin, false, site.Page{Title: "Sign in | " + h.site.Name, Data: loginView{AuthBaseURL: h.authBaseURL}})
}

// GET /loading is the post sign-in landing page. It emits the login event
// for the session before redirecting client-side.
func (h *PageHandler) Loading(c *gin.Context) {
	if sess := ctxutil.GetSession(c.Request.Context()); sess != nil && h.logins != nil {
		h.logins.Emit(c.Request.Context(), sess)
	}
	h.render(c, http.StatusOK, site.PageLoading, false, site.Page{})
}

// NotFound renders the 404 page for unmatched routes.
func (h *PageHandler) NotFound(c *gin.Context) {
	h.render(c, http.StatusNotFound, site.PageNotFound, false, site.Page{Title: "Not found", Data: site.NotFound{}})
}

func excerpt(s string, n int) string {
	r := []rune(strings.TrimSpace(s))
	if len(r) <= n {
		return string(r)
	}
	return strings.TrimSpace(string(r[:n-1])) + "…"
}
