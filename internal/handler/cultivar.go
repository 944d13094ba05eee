package handler

import (
	"log/slog"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/violets/internal/apperror"
	"github.com/sakif/violets/internal/model"
	"github.com/sakif/violets/internal/service"
)

// CultivarHandler serves the list, create, edit and detail pages, the care
// history and the care-log forms.
type CultivarHandler struct {
	service *service.CultivarService
	render  *Renderer
	logger  *slog.Logger
}

func NewCultivarHandler(svc *service.CultivarService, render *Renderer, logger *slog.Logger) *CultivarHandler {
	return &CultivarHandler{service: svc, render: render, logger: logger}
}

type listPage struct {
	Page
	Query     string
	Cultivars []model.CultivarSummary
}

// cultivarFormPage backs both the create and the edit form.
type cultivarFormPage struct {
	Page
	Action string // form target
	Cancel string
	Form   service.CultivarInput
}

type careHistoryPage struct {
	Page
	Filter    service.CareHistoryQuery
	Entries   []model.CareHistoryEntry
	Cultivars []model.Cultivar
	Actions   []string
}

type cultivarDetailPage struct {
	Page
	Cultivar *model.Cultivar
	CareLogs []model.CareLog
	CareForm service.CareLogInput
}

func cultivarPath(id string) string {
	return "/cultivars/" + url.PathEscape(id)
}

func newCultivarForm(page Page, in service.CultivarInput) cultivarFormPage {
	return cultivarFormPage{Page: page, Action: "/cultivars/new", Cancel: "/", Form: in}
}

func editCultivarForm(page Page, id string, in service.CultivarInput) cultivarFormPage {
	return cultivarFormPage{Page: page, Action: cultivarPath(id) + "/edit", Cancel: cultivarPath(id), Form: in}
}

func cultivarInputFromForm(r *http.Request) service.CultivarInput {
	return service.CultivarInput{
		Name:            r.PostForm.Get("name"),
		FlowerColor:     r.PostForm.Get("flower_color"),
		LeafDescription: r.PostForm.Get("leaf_description"),
		AcquisitionDate: r.PostForm.Get("acquisition_date"),
		LightLevel:      r.PostForm.Get("light_level"),
		SoilMix:         r.PostForm.Get("soil_mix"),
		Notes:           r.PostForm.Get("notes"),
	}
}

// HandleList renders every cultivar with its latest care date.
//
// HTTP: GET /?q=name
func (h *CultivarHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")

	summaries, err := h.service.List(r.Context(), query)
	if err != nil {
		h.render.RenderError(w, r, err)
		return
	}

	h.render.Render(w, http.StatusOK, "list.html", listPage{
		Page:      h.render.Page(r, "Cultivars"),
		Query:     query,
		Cultivars: summaries,
	})
}

// HandleNewForm renders the empty create form.
//
// HTTP: GET /cultivars/new
func (h *CultivarHandler) HandleNewForm(w http.ResponseWriter, r *http.Request) {
	h.render.Render(w, http.StatusOK, "cultivar_form.html",
		newCultivarForm(h.render.Page(r, "Add cultivar"), service.CultivarInput{}))
}

// HandleCreate stores a new cultivar and redirects to the list. Errors the
// user can fix re-render the form with what they typed.
//
// HTTP: POST /cultivars/new
func (h *CultivarHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.render.RenderError(w, r, badForm(err))
		return
	}

	in := cultivarInputFromForm(r)

	if _, err := h.service.Create(r.Context(), in); err != nil {
		if apperror.IsUserFacing(err) {
			h.logger.Debug("cultivar form rejected",
				slog.String("field", fieldFor(err)),
				slog.String("reason", err.Error()),
			)
			h.render.Render(w, statusFor(err), "cultivar_form.html",
				newCultivarForm(withError(h.render.Page(r, "Add cultivar"), err), in))
			return
		}
		h.render.RenderError(w, r, err)
		return
	}

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// HandleEditForm renders the edit form prefilled with the stored values.
//
// HTTP: GET /cultivars/{id}/edit
func (h *CultivarHandler) HandleEditForm(w http.ResponseWriter, r *http.Request) {
	detail, err := h.service.Detail(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.render.RenderError(w, r, err)
		return
	}

	c := detail.Cultivar
	h.render.Render(w, http.StatusOK, "cultivar_form.html",
		editCultivarForm(h.render.Page(r, "Edit "+c.Name), c.ID, service.InputFromCultivar(c)))
}

// HandleUpdate saves the edit form and redirects to the cultivar. Errors the
// user can fix re-render the form with what they typed.
//
// HTTP: POST /cultivars/{id}/edit
func (h *CultivarHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := r.ParseForm(); err != nil {
		h.render.RenderError(w, r, badForm(err))
		return
	}

	in := cultivarInputFromForm(r)

	_, err := h.service.Update(r.Context(), id, in)
	switch {
	case err == nil:
		http.Redirect(w, r, cultivarPath(id), http.StatusSeeOther)
	case apperror.IsUserFacing(err):
		h.logger.Debug("cultivar edit rejected",
			slog.String("cultivar_id", id),
			slog.String("field", fieldFor(err)),
			slog.String("reason", err.Error()),
		)
		h.render.Render(w, statusFor(err), "cultivar_form.html",
			editCultivarForm(withError(h.render.Page(r, "Edit cultivar"), err), id, in))
	default:
		h.render.RenderError(w, r, err)
	}
}

// HandleShow renders one cultivar and its care history.
//
// HTTP: GET /cultivars/{id}
func (h *CultivarHandler) HandleShow(w http.ResponseWriter, r *http.Request) {
	detail, err := h.service.Detail(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.render.RenderError(w, r, err)
		return
	}

	h.renderDetail(w, r, http.StatusOK, detail, service.CareLogInput{
		PerformedOn: detail.Today.Format(model.DateLayout),
	}, nil)
}

func (h *CultivarHandler) renderDetail(
	w http.ResponseWriter,
	r *http.Request,
	status int,
	detail *service.CultivarDetail,
	form service.CareLogInput,
	formErr error,
) {
	page := h.render.Page(r, detail.Cultivar.Name)
	if formErr != nil {
		page = withError(page, formErr)
	}
	h.render.Render(w, status, "cultivar_detail.html", cultivarDetailPage{
		Page:     page,
		Cultivar: detail.Cultivar,
		CareLogs: detail.CareLogs,
		CareForm: form,
	})
}

// HandleCareHistory lists care logs across all cultivars, newest first.
// A malformed date re-renders the page with an error instead of results.
//
// HTTP: GET /care_logs?cultivar=id&action=Watered&from=YYYY-MM-DD&to=YYYY-MM-DD
func (h *CultivarHandler) HandleCareHistory(w http.ResponseWriter, r *http.Request) {
	params := r.URL.Query()
	q := service.CareHistoryQuery{
		CultivarID: params.Get("cultivar"),
		Action:     params.Get("action"),
		From:       params.Get("from"),
		To:         params.Get("to"),
	}

	history, err := h.service.CareHistory(r.Context(), q)
	if err != nil {
		if apperror.IsUserFacing(err) {
			h.render.Render(w, statusFor(err), "care_logs.html", careHistoryPage{
				Page:   withError(h.render.Page(r, "Care history"), err),
				Filter: q,
			})
			return
		}
		h.render.RenderError(w, r, err)
		return
	}

	h.render.Render(w, http.StatusOK, "care_logs.html", careHistoryPage{
		Page:      h.render.Page(r, "Care history"),
		Filter:    q,
		Entries:   history.Entries,
		Cultivars: history.Cultivars,
		Actions:   history.Actions,
	})
}

// HandleAddCare records a care log and redirects back to the cultivar.
//
// HTTP: POST /cultivars/{id}/care
func (h *CultivarHandler) HandleAddCare(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := r.ParseForm(); err != nil {
		h.render.RenderError(w, r, badForm(err))
		return
	}

	in := service.CareLogInput{
		Action:      r.PostForm.Get("action"),
		Notes:       r.PostForm.Get("notes"),
		PerformedOn: r.PostForm.Get("performed_on"),
	}

	_, err := h.service.AddCareLog(r.Context(), id, in)
	switch {
	case err == nil:
		http.Redirect(w, r, cultivarPath(id), http.StatusSeeOther)
	case apperror.IsUserFacing(err):
		h.logger.Debug("care log form rejected",
			slog.String("cultivar_id", id),
			slog.String("field", fieldFor(err)),
			slog.String("reason", err.Error()),
		)
		detail, loadErr := h.service.Detail(r.Context(), id)
		if loadErr != nil {
			h.render.RenderError(w, r, loadErr)
			return
		}
		h.renderDetail(w, r, statusFor(err), detail, in, err)
	default:
		h.render.RenderError(w, r, err)
	}
}

// HandleDelete removes a cultivar and all of its care logs.
//
// HTTP: POST /cultivars/{id}/delete
func (h *CultivarHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteCultivar(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.render.RenderError(w, r, err)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// HandleDeleteCareLog removes one care log and returns to its cultivar.
//
// HTTP: POST /care_logs/{id}/delete
func (h *CultivarHandler) HandleDeleteCareLog(w http.ResponseWriter, r *http.Request) {
	cultivarID, err := h.service.DeleteCareLog(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.render.RenderError(w, r, err)
		return
	}
	http.Redirect(w, r, cultivarPath(cultivarID), http.StatusSeeOther)
}
