package controllers

import (
	"bytes"
	"net/http"

	"github.com/stocktakehq/stocktake-web/internal/authguard"
	"github.com/stocktakehq/stocktake-web/pkg/logger"
	"github.com/stocktakehq/stocktake-web/web"
)

// PageData is what every page template receives.
type PageData struct {
	Title string
	User  *userView
	State string
	Err   string
}

// Pages renders the embedded HTML shells. The interesting work happens in
// the browser against the JSON API; these handlers only pick the template
// and hand over the signed-in operator.
type Pages struct {
	renderer *web.Renderer
	guard    *authguard.Guard
	store    StateSource
	logger   *logger.Logger
}

func NewPages(renderer *web.Renderer, guard *authguard.Guard, store StateSource, logg *logger.Logger) *Pages {
	return &Pages{renderer: renderer, guard: guard, store: store, logger: logg}
}

func (p *Pages) render(w http.ResponseWriter, r *http.Request, name, title string) {
	snap := p.store.Snapshot()
	data := PageData{
		Title: title,
		State: string(p.guard.State()),
		Err:   snap.Err,
	}
	if snap.CurrentUser != nil {
		view := viewOfUser(*snap.CurrentUser)
		data.User = &view
	}

	// Render to a buffer first so template failures answer 500 instead of
	// a half-written page.
	var buf bytes.Buffer
	if err := p.renderer.Render(&buf, name, data); err != nil {
		if p.logger != nil {
			p.logger.Error(r.Context(), "page render failed", err)
		}
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}

func (p *Pages) Login(w http.ResponseWriter, r *http.Request) {
	p.render(w, r, "login", "Sign in")
}

func (p *Pages) Dashboard(w http.ResponseWriter, r *http.Request) {
	p.render(w, r, "dashboard", "Dashboard")
}

func (p *Pages) Items(w http.ResponseWriter, r *http.Request) {
	p.render(w, r, "items", "Items")
}

func (p *Pages) Categories(w http.ResponseWriter, r *http.Request) {
	p.render(w, r, "categories", "Categories")
}

func (p *Pages) Stocktake(w http.ResponseWriter, r *http.Request) {
	p.render(w, r, "stocktake", "Stocktake")
}

func (p *Pages) Reports(w http.ResponseWriter, r *http.Request) {
	p.render(w, r, "reports", "Reports")
}
