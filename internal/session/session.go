// Package session holds the state of one CSV file selection: the parsed
// table, the latest scoring results, and the guard that keeps a single
// analysis in flight at a time.
package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/KaramelBytes/riskcsv-cli/internal/ai"
	"github.com/KaramelBytes/riskcsv-cli/internal/analysis"
	"github.com/KaramelBytes/riskcsv-cli/internal/metrics"
	"github.com/KaramelBytes/riskcsv-cli/internal/parser"
)

// FileInput is the file handed over by the caller: its declared name,
// media type and size, and a way to read its bytes.
type FileInput struct {
	Name     string
	MIMEType string
	Size     int64
	Open     func() (io.ReadCloser, error)
}

type AdvisoryKind string

const (
	AdvisoryError   AdvisoryKind = "error"
	AdvisorySuccess AdvisoryKind = "success"
)

// Advisory is the single user-facing message for the latest step.
type Advisory struct {
	Kind AdvisoryKind
	Text string
}

// Outcome is the terminal value of one analysis.
type Outcome struct {
	Results  *ai.Results
	Response *ai.ScoringResponse
	Err      error
	// Stale is set when the session moved on to another file before the
	// response arrived; nothing was applied.
	Stale bool
}

// Session is one file-selection workflow bound to a scorer.
type Session struct {
	scorer ai.Scorer
	engine string
	log    *zap.Logger

	mu       sync.Mutex
	id       string
	fileName string
	table    *analysis.Table
	response *ai.ScoringResponse
	advisory *Advisory
	inFlight string // id of the selection whose request is pending
}

type Option func(*Session)

func WithLogger(l *zap.Logger) Option {
	return func(s *Session) {
		if l != nil {
			s.log = l
		}
	}
}

// WithEngineName labels metrics and logs with the scorer's engine name.
func WithEngineName(name string) Option {
	return func(s *Session) { s.engine = name }
}

// New returns an empty session that scores through scorer.
func New(scorer ai.Scorer, opts ...Option) *Session {
	s := &Session{scorer: scorer, engine: "unknown", log: zap.NewNop()}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Select replaces the session with a new file: validate, read, parse,
// build. Any failure leaves the session empty with an error advisory.
// A response still pending for the previous file is not cancelled but
// will not be applied.
func (s *Session) Select(ctx context.Context, f FileInput) error {
	s.mu.Lock()
	id := uuid.NewString()
	s.resetLocked(id)
	s.mu.Unlock()

	log := s.log.With(zap.String("session", id), zap.String("file", f.Name))

	if err := parser.ValidateFile(f.Name, f.MIMEType, f.Size); err != nil {
		if errors.Is(err, parser.ErrTooLarge) {
			return s.fail(id, log, newFileTooLargeError(err))
		}
		return s.fail(id, log, newFileTypeInvalidError(err))
	}

	text, err := readAll(ctx, f)
	if err != nil {
		if errors.Is(err, parser.ErrTooLarge) {
			return s.fail(id, log, newFileTooLargeError(err))
		}
		return s.fail(id, log, newFileReadFailedError(err))
	}

	table, err := analysis.Build(parser.Parse(text))
	if err != nil {
		return s.fail(id, log, newEmptyTableError(err))
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.id != id {
		log.Info("discarding superseded file selection")
		return ErrStale
	}
	s.fileName = f.Name
	s.table = table
	s.advisory = &Advisory{Kind: AdvisorySuccess, Text: loadMessage(table)}
	metrics.FilesAccepted.Inc()
	log.Info("csv loaded",
		zap.Int("records", len(table.Records)),
		zap.Int("columns", len(table.Header)),
		zap.Bool("reserved_column", table.HasColumn(analysis.ReservedColumn)))
	return nil
}

func readAll(ctx context.Context, f FileInput) (string, error) {
	if f.Open == nil {
		return "", errors.New("file has no reader")
	}
	rc, err := f.Open()
	if err != nil {
		return "", fmt.Errorf("open: %w", err)
	}
	defer rc.Close()
	b, err := io.ReadAll(io.LimitReader(rc, parser.MaxFileSize+1))
	if err != nil {
		return "", fmt.Errorf("read: %w", err)
	}
	if int64(len(b)) > parser.MaxFileSize {
		return "", fmt.Errorf("%w: content exceeds %d bytes", parser.ErrTooLarge, parser.MaxFileSize)
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return strings.ToValidUTF8(string(b), "\uFFFD"), nil
}

func loadMessage(t *analysis.Table) string {
	total := len(t.Records)
	var msg string
	if total > analysis.MaxRequestRows {
		msg = fmt.Sprintf("File loaded successfully! %d of %d rows will be analyzed (limited to %d for the API).",
			analysis.MaxRequestRows, total, analysis.MaxRequestRows)
	} else {
		msg = fmt.Sprintf("File loaded successfully! %d data rows found.", total)
	}
	if t.HasColumn(analysis.ReservedColumn) {
		msg += fmt.Sprintf(" Column %q removed automatically.", analysis.ReservedColumn)
	}
	return msg
}

func (s *Session) fail(id string, log *zap.Logger, e *Error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.id != id {
		return ErrStale
	}
	if isFileStage(e.Code) {
		s.resetLocked(id)
	}
	s.advisory = &Advisory{Kind: AdvisoryError, Text: e.Message}
	if isFileStage(e.Code) {
		metrics.FilesRejected.WithLabelValues(string(e.Code)).Inc()
	}
	log.Warn("session step failed", zap.String("code", string(e.Code)), zap.Error(e.Err))
	return e
}

func (s *Session) resetLocked(id string) {
	s.id = id
	s.fileName = ""
	s.table = nil
	s.response = nil
	s.advisory = nil
	s.inFlight = ""
}

// Clear drops the current file and any results.
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resetLocked(uuid.NewString())
}

// Request builds the scoring request for the loaded table without sending it.
func (s *Session) Request() (*ai.ScoringRequest, error) {
	s.mu.Lock()
	table := s.table
	s.mu.Unlock()
	if table == nil {
		return nil, newNoTableError()
	}
	return buildRequest(table)
}

func buildRequest(table *analysis.Table) (*ai.ScoringRequest, error) {
	req := ai.NewScoringRequest(analysis.TransformTable(table))
	if err := ai.ValidateRequest(req); err != nil {
		return nil, newTransformFailedError(err)
	}
	return req, nil
}

// Analyze transforms the loaded table and starts one scoring round trip.
// Problems found before sending are returned directly; the scorer's answer
// arrives as the single value on the returned channel, which is then closed.
func (s *Session) Analyze(ctx context.Context) (<-chan Outcome, error) {
	s.mu.Lock()
	if s.table == nil {
		s.mu.Unlock()
		return nil, newNoTableError()
	}
	if s.inFlight == s.id {
		s.mu.Unlock()
		return nil, newAnalysisInFlightError()
	}
	id, table := s.id, s.table
	s.inFlight = id
	s.response = nil
	s.mu.Unlock()

	log := s.log.With(zap.String("session", id), zap.String("engine", s.engine))

	req, err := buildRequest(table)
	if err != nil {
		s.mu.Lock()
		if s.inFlight == id {
			s.inFlight = ""
		}
		s.mu.Unlock()
		return nil, s.fail(id, log, err.(*Error))
	}

	rows := req.Rows()
	log.Info("scoring started", zap.Int("rows", rows), zap.Int("fields", len(req.InputData[0].Fields)))
	metrics.RowsScored.WithLabelValues(s.engine).Add(float64(rows))

	out := make(chan Outcome, 1)
	go func() {
		defer close(out)
		start := time.Now()
		resp, err := s.scorer.Score(ctx, req)
		elapsed := time.Since(start)
		metrics.ScoringDuration.WithLabelValues(s.engine).Observe(elapsed.Seconds())
		out <- s.settle(id, log.With(zap.Duration("elapsed", elapsed)), resp, err)
	}()
	return out, nil
}

func (s *Session) settle(id string, log *zap.Logger, resp *ai.ScoringResponse, err error) Outcome {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.inFlight == id {
		s.inFlight = ""
	}
	if s.id != id {
		metrics.AnalysesTotal.WithLabelValues(s.engine, metrics.OutcomeStale).Inc()
		log.Info("discarding response for replaced file selection", zap.String("current_session", s.id))
		return Outcome{Stale: true, Err: ErrStale}
	}
	if err == nil && resp == nil {
		err = errNoResponse
	}
	if err != nil {
		e := newScoringRequestFailedError(err)
		s.advisory = &Advisory{Kind: AdvisoryError, Text: e.Message}
		metrics.AnalysesTotal.WithLabelValues(s.engine, metrics.OutcomeFailure).Inc()
		log.Error("scoring failed", zap.Error(err))
		return Outcome{Err: e}
	}
	s.response = resp
	results := ai.NewResults(resp)
	s.advisory = &Advisory{
		Kind: AdvisorySuccess,
		Text: fmt.Sprintf("Risk analysis completed successfully! %d records analyzed.", results.Len()),
	}
	metrics.AnalysesTotal.WithLabelValues(s.engine, metrics.OutcomeSuccess).Inc()
	log.Info("scoring finished", zap.Int("results", results.Len()), zap.Bool("ok", resp.OK))
	return Outcome{Results: results, Response: resp}
}

// AnalyzeAndWait runs Analyze and blocks for its outcome.
func (s *Session) AnalyzeAndWait(ctx context.Context) (*ai.Results, error) {
	ch, err := s.Analyze(ctx)
	if err != nil {
		return nil, err
	}
	o := <-ch
	if o.Err != nil {
		return nil, o.Err
	}
	return o.Results, nil
}

// ID identifies the current file selection.
func (s *Session) ID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.id
}

func (s *Session) FileName() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fileName
}

// Table returns the loaded table, or nil.
func (s *Session) Table() *analysis.Table {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.table
}

// Results returns a view over the latest applied response; empty if none.
func (s *Session) Results() *ai.Results {
	s.mu.Lock()
	defer s.mu.Unlock()
	return ai.NewResults(s.response)
}

// Advisory returns the latest message, or the zero value.
func (s *Session) Advisory() Advisory {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.advisory == nil {
		return Advisory{}
	}
	return *s.advisory
}

// Analyzing reports whether a request for the current file is pending.
func (s *Session) Analyzing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inFlight != "" && s.inFlight == s.id
}

// CanAnalyze reports whether a table is loaded and nothing is pending.
func (s *Session) CanAnalyze() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.table != nil && s.inFlight != s.id
}
