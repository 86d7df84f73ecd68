package server

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/Veraticus/statement-press/internal/common"
	"github.com/Veraticus/statement-press/internal/config"
	"github.com/Veraticus/statement-press/internal/engine"
	"github.com/Veraticus/statement-press/internal/model"
	"github.com/Veraticus/statement-press/internal/payload"
	"github.com/Veraticus/statement-press/internal/render/pdf"
	"github.com/go-chi/render"
)

// profileView is the JSON shape of a layout profile.
type profileView struct {
	Name              string  `json:"name"`
	Variant           string  `json:"variant"`
	FirstPageCapacity int     `json:"first_page_capacity"`
	LaterPageCapacity int     `json:"later_page_capacity"`
	RowHeight         float64 `json:"row_height"`
	WholeUnits        bool    `json:"whole_units"`
}

// planView is the JSON shape of a pagination plan.
type planView struct {
	Name       string     `json:"pdf_name"`
	Profile    string     `json:"profile"`
	Variant    string     `json:"variant"`
	Records    int        `json:"records"`
	TotalPages int        `json:"total_pages"`
	Pages      []pageView `json:"pages"`
}

type pageView struct {
	Index   int  `json:"index"`
	Start   int  `json:"start"`
	Count   int  `json:"count"`
	Summary bool `json:"summary"`
}

type errorView struct {
	Error string `json:"error"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, map[string]string{"status": "ok"})
}

func (s *Server) handleProfiles(w http.ResponseWriter, r *http.Request) {
	views := make([]profileView, 0, len(engine.ProfileNames()))
	for _, name := range engine.ProfileNames() {
		p, err := s.resolve(name, "")
		if err != nil {
			s.fail(w, r, err)
			return
		}
		views = append(views, profileView{
			Name:              p.Name,
			Variant:           p.Variant.String(),
			FirstPageCapacity: p.FirstPageCapacity,
			LaterPageCapacity: p.LaterPageCapacity,
			RowHeight:         p.RowHeight,
			WholeUnits:        p.WholeUnits,
		})
	}
	render.JSON(w, r, views)
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	doc, composer, err := s.compose(w, r)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	pages, err := composer.Pages()
	if err != nil {
		s.fail(w, r, err)
		return
	}

	var buf bytes.Buffer
	err = s.renderer.Render(r.Context(), &buf, pdf.Document{
		Title:   doc.PDFName,
		Author:  composer.Statement().Holder.Name,
		Created: s.now(),
		Profile: composer.Statement().Profile,
		Pages:   pages,
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}

	filename := config.OutputFilename(doc.PDFName)
	s.recordRun(r.Context(), composer, filename)

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("X-Statement-Pages", strconv.Itoa(composer.TotalPages()))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(buf.Bytes()); err != nil {
		s.logger.Warn("failed to write statement response", "error", err)
	}
}

func (s *Server) handlePlan(w http.ResponseWriter, r *http.Request) {
	doc, composer, err := s.compose(w, r)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	plan := composer.Plan()
	stmt := composer.Statement()
	view := planView{
		Name:       doc.PDFName,
		Profile:    stmt.Profile.Name,
		Variant:    stmt.Variant().String(),
		Records:    plan.Total,
		TotalPages: plan.TotalPages,
		Pages:      make([]pageView, 0, plan.TotalPages),
	}
	for i := 0; i < plan.TotalPages; i++ {
		slice := plan.Page(i)
		view.Pages = append(view.Pages, pageView{
			Index:   slice.Index,
			Start:   slice.Start,
			Count:   slice.Count,
			Summary: slice.RenderSummary(),
		})
	}
	render.JSON(w, r, view)
}

// compose decodes the request payload and prepares its pages.
func (s *Server) compose(w http.ResponseWriter, r *http.Request) (*payload.Document, *engine.Composer, error) {
	doc, err := payload.Decode(http.MaxBytesReader(w, r.Body, s.maxBody))
	if err != nil {
		return nil, nil, err
	}

	name, variant, err := doc.ProfileRequest()
	if err != nil {
		return nil, nil, err
	}

	profile, err := s.resolve(name, variant)
	if err != nil {
		return nil, nil, err
	}

	logger := s.logger.With("pdf_name", doc.PDFName)
	composer, err := engine.NewComposer(doc.Statement(profile, s.branding, s.now(), logger))
	if err != nil {
		return nil, nil, err
	}
	return doc, composer, nil
}

func (s *Server) recordRun(ctx context.Context, composer *engine.Composer, output string) {
	if s.storage == nil {
		return
	}
	stmt := composer.Statement()
	run := &model.StatementRun{
		CreatedAt: s.now(),
		AccountNo: stmt.Holder.AccountNo,
		Name:      stmt.Name,
		Variant:   stmt.Variant(),
		Profile:   stmt.Profile.Name,
		Output:    output,
		Pages:     composer.TotalPages(),
		Records:   len(stmt.Transactions),
	}
	if err := s.storage.RecordRun(ctx, run); err != nil {
		s.logger.Warn("failed to record statement run", "error", err)
	}
}

// statusFor maps statement errors onto HTTP status codes: bad input,
// including a profile the caller asked for that does not exist or does not
// fit the data, is the caller's problem; broken layout configuration is ours.
func statusFor(err error) int {
	var maxBytes *http.MaxBytesError
	switch {
	case errors.As(err, &maxBytes):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, payload.ErrInvalidPayload),
		errors.Is(err, common.ErrEmptyStatement),
		errors.Is(err, common.ErrMissingUnitPrice),
		errors.Is(err, common.ErrUnknownProfile),
		errors.Is(err, common.ErrProfileVariant):
		return http.StatusUnprocessableEntity
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("statement request failed", "error", err, "config_error", common.IsConfigError(err))
	} else {
		s.logger.Info("statement request rejected", "error", err)
	}
	render.Status(r, status)
	render.JSON(w, r, errorView{Error: err.Error()})
}
