package api

import (
	"bytes"
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/junepark678/ebsi-csat/internal/repo"
	"github.com/junepark678/ebsi-csat/internal/sidebar"
	"github.com/junepark678/ebsi-csat/pkg/logger"
)

type WorksheetHistory interface {
	Record(ctx context.Context, w *repo.Worksheet) error
	List(ctx context.Context, limit int64) ([]repo.Worksheet, error)
}

type Handler struct {
	sessions *SessionStore
	history  WorksheetHistory
	timeout  time.Duration
}

func NewHandler(sessions *SessionStore, history WorksheetHistory, timeout time.Duration) *Handler {
	if timeout <= 0 {
		timeout = 90 * time.Second
	}
	return &Handler{
		sessions: sessions,
		history:  history,
		timeout:  timeout,
	}
}

type ErrorResponse struct {
	Error string `json:"error"`
}

type SessionResponse struct {
	ID   string       `json:"id"`
	Form sidebar.Form `json:"form"`
	View sidebar.View `json:"view"`
}

type SearchResponse struct {
	*sidebar.SearchResult
	Error string `json:"error,omitempty"`
}

type WorksheetRequest struct {
	Title string `json:"title" form:"title"`
}

type WorksheetResponse struct {
	Title   string       `json:"title"`
	ItemIDs []string     `json:"item_ids"`
	View    sidebar.View `json:"view"`
}

func SetupRoutes(app *fiber.App, h *Handler) {
	app.Get("/health", h.Health)
	app.Get("/", h.Page)

	api := app.Group("/api")
	api.Post("/sessions", h.CreateSession)
	api.Get("/worksheets", h.ListWorksheets)

	api.Get("/sessions/:id", h.withSession(h.GetSession))
	api.Get("/sessions/:id/fragment", h.withSession(h.Fragment))
	api.Post("/sessions/:id/search", h.withSession(h.Search))
	api.Delete("/sessions/:id/problems/:index", h.withSession(h.DeleteProblem))
	api.Post("/sessions/:id/clear", h.withSession(h.Clear))
	api.Post("/sessions/:id/reset", h.withSession(h.Reset))
	api.Post("/sessions/:id/worksheet", h.withSession(h.GenerateWorksheet))
}

func (h *Handler) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":   "ok",
		"sessions": h.sessions.Len(),
		"history":  h.history != nil,
	})
}

type sessionHandler func(c *fiber.Ctx, ctrl *sidebar.Controller) error

func (h *Handler) withSession(next sessionHandler) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctrl, ok := h.sessions.Get(c.Params("id"))
		if !ok {
			return c.Status(404).JSON(ErrorResponse{Error: "session not found"})
		}
		return next(c, ctrl)
	}
}

func (h *Handler) CreateSession(c *fiber.Ctx) error {
	id, ctrl := h.sessions.Create()
	logger.Log.Info().Str("session", id).Msg("session created")

	return c.Status(201).JSON(SessionResponse{
		ID:   id,
		Form: ctrl.Form(),
		View: ctrl.Render(),
	})
}

func (h *Handler) GetSession(c *fiber.Ctx, ctrl *sidebar.Controller) error {
	return c.JSON(SessionResponse{
		ID:   c.Params("id"),
		Form: ctrl.Form(),
		View: ctrl.Render(),
	})
}

func (h *Handler) Fragment(c *fiber.Ctx, ctrl *sidebar.Controller) error {
	var buf bytes.Buffer
	if err := renderList(&buf, ctrl.Render()); err != nil {
		return err
	}
	c.Type("html", "utf-8")
	return c.Send(buf.Bytes())
}

func (h *Handler) Search(c *fiber.Ctx, ctrl *sidebar.Controller) error {
	log := logger.Log

	var form sidebar.Form
	if err := c.BodyParser(&form); err != nil {
		return c.Status(400).JSON(ErrorResponse{Error: "invalid request body"})
	}
	if strings.TrimSpace(form.Grade) == "" || strings.TrimSpace(form.Subject) == "" {
		return c.Status(400).JSON(ErrorResponse{Error: "grade and subject are required"})
	}

	ctx, cancel := context.WithTimeout(c.Context(), h.timeout)
	defer cancel()

	start := time.Now()
	result, err := ctrl.Search(ctx, form)
	if err != nil {
		log.Error().Err(err).Str("session", c.Params("id")).Msg("search failed")
		return c.Status(502).JSON(SearchResponse{
			SearchResult: &sidebar.SearchResult{View: ctrl.Render()},
			Error:        err.Error(),
		})
	}

	log.Info().
		Str("session", c.Params("id")).
		Int("added", result.Added).
		Int("failures", len(result.Failures)).
		Int64("time_ms", time.Since(start).Milliseconds()).
		Msg("search request completed")

	return c.JSON(SearchResponse{SearchResult: result})
}

func (h *Handler) DeleteProblem(c *fiber.Ctx, ctrl *sidebar.Controller) error {
	index, err := strconv.Atoi(c.Params("index"))
	if err != nil {
		return c.Status(400).JSON(ErrorResponse{Error: "index must be a number"})
	}
	return c.JSON(ctrl.Delete(index))
}

func (h *Handler) Clear(c *fiber.Ctx, ctrl *sidebar.Controller) error {
	return c.JSON(ctrl.ClearAll())
}

func (h *Handler) Reset(c *fiber.Ctx, ctrl *sidebar.Controller) error {
	return c.JSON(ctrl.Reset())
}

func (h *Handler) GenerateWorksheet(c *fiber.Ctx, ctrl *sidebar.Controller) error {
	var req WorksheetRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return c.Status(400).JSON(ErrorResponse{Error: "invalid request body"})
		}
	}

	ctx, cancel := context.WithTimeout(c.Context(), h.timeout)
	defer cancel()

	ws, err := ctrl.GenerateWorksheet(ctx, req.Title)
	if errors.Is(err, sidebar.ErrNoProblems) {
		return c.Status(400).JSON(ErrorResponse{Error: err.Error()})
	}

	h.recordWorksheet(c.Params("id"), ws, err)

	if err != nil {
		return c.Status(502).JSON(ErrorResponse{Error: err.Error()})
	}

	return c.JSON(WorksheetResponse{
		Title:   ws.Title,
		ItemIDs: ws.ItemIDs(),
		View:    ctrl.Render(),
	})
}

const historyTimeout = 5 * time.Second

// recordWorksheet runs on its own deadline so a timed out worksheet
// request is still written to history.
func (h *Handler) recordWorksheet(sessionID string, ws sidebar.Worksheet, genErr error) {
	if h.history == nil {
		return
	}

	labels := make([]string, len(ws.Problems))
	for i, p := range ws.Problems {
		labels[i] = p.Display
	}

	entry := &repo.Worksheet{
		SessionID: sessionID,
		Title:     ws.Title,
		ItemIDs:   ws.ItemIDs(),
		Labels:    labels,
		Status:    repo.WorksheetStatusCreated,
	}
	if genErr != nil {
		entry.Status = repo.WorksheetStatusFailed
		entry.Error = genErr.Error()
	}

	ctx, cancel := context.WithTimeout(context.Background(), historyTimeout)
	defer cancel()

	if err := h.history.Record(ctx, entry); err != nil {
		logger.Log.Warn().Err(err).Str("session", sessionID).Msg("failed to record worksheet")
	}
}

func (h *Handler) ListWorksheets(c *fiber.Ctx) error {
	if h.history == nil {
		return c.Status(404).JSON(ErrorResponse{Error: "worksheet history is not configured"})
	}

	limit, _ := strconv.ParseInt(c.Query("limit", "20"), 10, 64)

	items, err := h.history.List(c.Context(), limit)
	if err != nil {
		return c.Status(500).JSON(ErrorResponse{Error: "failed to fetch worksheets"})
	}
	return c.JSON(fiber.Map{"items": items})
}
