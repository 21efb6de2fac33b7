package sidebar

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/junepark678/ebsi-csat/internal/ebsi"
	"github.com/junepark678/ebsi-csat/internal/extractor"
	"github.com/junepark678/ebsi-csat/pkg/logger"
	"golang.org/x/sync/errgroup"
)

var (
	ErrEmptyResponse = errors.New("no data received")
	ErrNoProblems    = errors.New("problem list is empty")
)

// Remote is the exam site as seen by the controller.
type Remote interface {
	SearchPapers(ctx context.Context, q ebsi.PaperQuery) (string, error)
	PaperStats(ctx context.Context, examID string) ([]byte, error)
	CreatePaper(ctx context.Context, title string, itemIDs []string) error
}

type StatsCache interface {
	Get(ctx context.Context, examID string) ([]byte, bool)
	Set(ctx context.Context, examID string, payload []byte) error
}

type Problem struct {
	ID      string `json:"id"`
	Display string `json:"display"`
}

type ExamFailure struct {
	ExamID string `json:"exam_id"`
	Error  string `json:"error"`
}

type SearchResult struct {
	View     View          `json:"view"`
	ExamIDs  []string      `json:"exam_ids"`
	Added    int           `json:"added"`
	Failures []ExamFailure `json:"failures,omitempty"`
	// Stale is set when the list was cleared while the search was in flight
	// and its results were dropped.
	Stale bool `json:"stale,omitempty"`
}

type Worksheet struct {
	Title    string    `json:"title"`
	Problems []Problem `json:"problems"`
}

func (w Worksheet) ItemIDs() []string {
	ids := make([]string, len(w.Problems))
	for i, p := range w.Problems {
		ids[i] = p.ID
	}
	return ids
}

type Option func(*Controller)

func WithStatsCache(cache StatsCache) Option {
	return func(c *Controller) { c.cache = cache }
}

func WithExamIDExtractor(e extractor.ExamIDExtractor) Option {
	return func(c *Controller) { c.exams = e }
}

func WithRecordExtractor(e extractor.RecordExtractor) Option {
	return func(c *Controller) { c.records = e }
}

func WithConcurrency(n int) Option {
	return func(c *Controller) { c.concurrency = n }
}

func WithClock(now func() time.Time) Option {
	return func(c *Controller) { c.now = now }
}

// Controller owns one sidebar's problem list and form. It is safe for
// concurrent use; the lock is never held across remote calls.
type Controller struct {
	remote      Remote
	cache       StatsCache
	exams       extractor.ExamIDExtractor
	records     extractor.RecordExtractor
	concurrency int
	now         func() time.Time

	mu       sync.Mutex
	problems []Problem
	form     Form
	notice   string
	epoch    uint64
}

func New(remote Remote, opts ...Option) *Controller {
	c := &Controller{
		remote:      remote,
		exams:       extractor.NewPaperListExtractor(),
		records:     extractor.NewStatsExtractor(),
		concurrency: 8,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.concurrency < 1 {
		c.concurrency = 1
	}
	return c
}

// Search fetches the paper list for form, collects the requested questions
// of every listed exam and appends the scored ones. The list is only
// touched after all stats fetches have settled.
func (c *Controller) Search(ctx context.Context, form Form) (*SearchResult, error) {
	log := logger.Log

	form = form.clone()

	c.mu.Lock()
	form.Title = c.form.Title
	c.form = form
	epoch := c.epoch
	c.mu.Unlock()

	q := BuildQuery(form, c.now())

	log.Info().
		Str("grade", q.Paper.Grade).
		Str("subject", q.Paper.Subject).
		Str("month", q.Paper.Month).
		Str("year", q.Paper.Year).
		Ints("numbers", q.Numbers).
		Msg("search started")

	html, err := c.remote.SearchPapers(ctx, q.Paper)
	if err != nil {
		log.Error().Err(err).Msg("failed to fetch paper list")
		c.setNoticeAt(epoch, "검색 실패: "+err.Error())
		return nil, fmt.Errorf("search papers: %w", err)
	}
	if strings.TrimSpace(html) == "" {
		log.Error().Msg("paper list response is empty")
		c.setNoticeAt(epoch, "검색 실패: "+ErrEmptyResponse.Error())
		return nil, ErrEmptyResponse
	}

	examIDs := c.exams.ExtractExamIDs(html)
	found := make([][]Problem, len(examIDs))
	failed := make([]error, len(examIDs))

	var g errgroup.Group
	g.SetLimit(c.concurrency)
	for i, examID := range examIDs {
		g.Go(func() error {
			found[i], failed[i] = c.collect(ctx, q, examID)
			return nil
		})
	}
	g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("search aborted: %w", err)
	}

	result := &SearchResult{ExamIDs: examIDs}
	var accepted []Problem
	for i, examID := range examIDs {
		if failed[i] != nil {
			log.Error().Err(failed[i]).Str("exam_id", examID).Msg("no valid data received for exam")
			result.Failures = append(result.Failures, ExamFailure{ExamID: examID, Error: failed[i].Error()})
			continue
		}
		accepted = append(accepted, found[i]...)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.epoch != epoch {
		log.Info().Int("dropped", len(accepted)).Msg("search superseded by clear, results dropped")
		result.Stale = true
		result.View = c.renderLocked()
		return result, nil
	}

	c.problems = append(c.problems, accepted...)
	result.Added = len(accepted)
	c.notice = searchNotice(len(examIDs), result.Added, len(result.Failures))
	result.View = c.renderLocked()

	log.Info().
		Int("exams", len(examIDs)).
		Int("added", result.Added).
		Int("failed", len(result.Failures)).
		Int("total", len(c.problems)).
		Msg("search completed")

	return result, nil
}

func (c *Controller) collect(ctx context.Context, q SearchQuery, examID string) ([]Problem, error) {
	payload, cached := c.cachedStats(ctx, examID)
	if !cached {
		var err error
		payload, err = c.remote.PaperStats(ctx, examID)
		if err != nil {
			return nil, fmt.Errorf("paper stats: %w", err)
		}
	}

	records, err := c.records.ExtractRecords(payload)
	if err != nil {
		return nil, err
	}

	if !cached && c.cache != nil {
		if err := c.cache.Set(ctx, examID, payload); err != nil {
			logger.Log.Debug().Err(err).Str("exam_id", examID).Msg("stats cache set error")
		}
	}

	var problems []Problem
	for _, n := range q.Numbers {
		rec, ok := records.At(n)
		if !ok || rec.CorrectRate <= 0 {
			continue
		}
		problems = append(problems, Problem{ID: rec.ItemID, Display: Label(q.Paper, n)})
	}
	return problems, nil
}

func (c *Controller) cachedStats(ctx context.Context, examID string) ([]byte, bool) {
	if c.cache == nil {
		return nil, false
	}
	return c.cache.Get(ctx, examID)
}

// Delete removes the problem at index. Out of range indexes are ignored.
func (c *Controller) Delete(index int) View {
	c.mu.Lock()
	defer c.mu.Unlock()

	if index >= 0 && index < len(c.problems) {
		c.problems = append(c.problems[:index], c.problems[index+1:]...)
	}
	return c.renderLocked()
}

func (c *Controller) ClearAll() View {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.clearLocked()
	return c.renderLocked()
}

// Reset clears the form as well as the problem list.
func (c *Controller) Reset() View {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.form = Form{}
	c.clearLocked()
	return c.renderLocked()
}

func (c *Controller) clearLocked() {
	c.problems = nil
	c.notice = ""
	c.epoch++
}

// GenerateWorksheet posts the current problem ids under title. The list is
// left untouched whatever the outcome.
func (c *Controller) GenerateWorksheet(ctx context.Context, title string) (Worksheet, error) {
	log := logger.Log

	title = strings.Clone(title)

	c.mu.Lock()
	c.form.Title = title
	ws := Worksheet{Title: title, Problems: append([]Problem(nil), c.problems...)}
	c.mu.Unlock()

	if len(ws.Problems) == 0 {
		c.setNotice("문제 목록이 비어 있습니다")
		return ws, ErrNoProblems
	}

	if err := c.remote.CreatePaper(ctx, title, ws.ItemIDs()); err != nil {
		log.Error().Err(err).Str("title", title).Msg("failed to generate worksheet")
		c.setNotice("학습지 생성 실패: " + err.Error())
		return ws, fmt.Errorf("create paper: %w", err)
	}

	log.Info().Str("title", title).Int("items", len(ws.Problems)).Msg("worksheet generated")
	c.setNotice(fmt.Sprintf("학습지 생성 완료 (%d문항)", len(ws.Problems)))
	return ws, nil
}

func (c *Controller) Render() View {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.renderLocked()
}

func (c *Controller) Problems() []Problem {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Problem(nil), c.problems...)
}

func (c *Controller) Form() Form {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.form
}

func (c *Controller) setNotice(msg string) {
	c.mu.Lock()
	c.notice = msg
	c.mu.Unlock()
}

// setNoticeAt drops msg when the view was cleared after epoch was taken.
func (c *Controller) setNoticeAt(epoch uint64, msg string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.epoch == epoch {
		c.notice = msg
	}
}

func searchNotice(exams, added, failed int) string {
	if exams == 0 {
		return "검색된 시험지가 없습니다"
	}
	msg := fmt.Sprintf("시험지 %d개에서 %d문항 추가", exams, added)
	if failed > 0 {
		msg += fmt.Sprintf(", %d개 시험지 조회 실패", failed)
	}
	return msg
}
