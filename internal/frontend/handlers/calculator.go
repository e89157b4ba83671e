// Package handlers implements the interactive calculator session served over
// Telnet.
package handlers

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cory-johannsen/combicalc/internal/config"
	"github.com/cory-johannsen/combicalc/internal/formula"
	"github.com/cory-johannsen/combicalc/internal/frontend/telnet"
	"github.com/cory-johannsen/combicalc/internal/i18n"
	"github.com/cory-johannsen/combicalc/internal/scripting"
)

// ScriptEvaluator evaluates one Lua expression against the formula catalog.
type ScriptEvaluator interface {
	Eval(expr string) (formula.Value, error)
}

// CalculatorHandler implements telnet.SessionHandler. Each session walks the
// same tabs as the desktop calculator: pick a family, fill in a form, read the
// result on the status line.
type CalculatorHandler struct {
	evaluator *formula.Evaluator
	scripts   ScriptEvaluator
	bundle    *i18n.Bundle
	cfg       config.CalculatorConfig
	logger    *zap.Logger
}

// NewCalculatorHandler creates a CalculatorHandler.
//
// Precondition: evaluator, bundle and logger must be non-nil. scripts may be
// nil, which disables the eval command.
func NewCalculatorHandler(
	evaluator *formula.Evaluator,
	scripts ScriptEvaluator,
	bundle *i18n.Bundle,
	cfg config.CalculatorConfig,
	logger *zap.Logger,
) *CalculatorHandler {
	return &CalculatorHandler{
		evaluator: evaluator,
		scripts:   scripts,
		bundle:    bundle,
		cfg:       cfg,
		logger:    logger,
	}
}

// session is the per-connection state.
type session struct {
	id     string
	conn   *telnet.Conn
	loc    *i18n.Localizer
	logger *zap.Logger
}

// HandleSession runs the command loop until the client quits, disconnects or
// ctx is cancelled. Calculation errors are reported on the status line and
// never end the session.
//
// Postcondition: Returns nil on quit, or the error that ended the session.
func (h *CalculatorHandler) HandleSession(ctx context.Context, conn *telnet.Conn) error {
	s := &session{
		id:   uuid.NewString(),
		conn: conn,
		loc:  h.bundle.Localizer(h.cfg.Locale, h.cfg.Precision),
	}
	s.logger = h.logger.With(zap.String("session", s.id))
	start := time.Now()
	s.logger.Info("calculator session started",
		zap.String("remote_addr", conn.RemoteAddr().String()),
		zap.String("locale", s.loc.Locale()),
	)

	if err := h.banner(s); err != nil {
		return fmt.Errorf("sending banner: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			_ = conn.WriteLine(telnet.Colorize(s.loc.Text("status.bye"), telnet.Yellow))
			return ctx.Err()
		default:
		}

		if err := conn.WritePrompt(telnet.Colorize(s.loc.Text("prompt.main"), telnet.BrightWhite)); err != nil {
			return fmt.Errorf("writing prompt: %w", err)
		}
		line, err := conn.ReadLine()
		if err != nil {
			return fmt.Errorf("reading input: %w", err)
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		quit, err := h.dispatch(s, line)
		if err != nil {
			return err
		}
		if quit {
			s.logger.Info("calculator session ended", zap.Duration("duration", time.Since(start)))
			return nil
		}
	}
}

func (h *CalculatorHandler) banner(s *session) error {
	if err := s.conn.WriteLine(telnet.Colorize(s.loc.Text("app.title"), telnet.Bold, telnet.Cyan)); err != nil {
		return err
	}
	return s.conn.WriteLine(telnet.Colorize(s.loc.Text("app.welcome"), telnet.Dim))
}

// dispatch runs one command line. It reports quit=true when the client asked
// to leave and returns an error only when the connection is unusable.
func (h *CalculatorHandler) dispatch(s *session, line string) (quit bool, err error) {
	cmd, rest, _ := strings.Cut(line, " ")
	rest = strings.TrimSpace(rest)

	switch strings.ToLower(cmd) {
	case "quit", "exit":
		return true, s.conn.WriteLine(telnet.Colorize(s.loc.Text("status.bye"), telnet.Cyan))
	case "help", "?":
		return false, s.conn.WriteLine(s.loc.Text("help.commands"))
	case "tabs":
		return false, s.conn.WriteLine(s.loc.JoinFamilies())
	case "tab":
		return false, h.showTab(s, rest)
	case "form":
		return false, h.runForm(s, rest)
	case "eval":
		return false, h.runEval(s, rest)
	case "lang":
		return false, h.switchLocale(s, rest)
	case "color":
		s.conn.SetPlain(strings.EqualFold(rest, "off"))
		return false, nil
	}

	res, err := h.evaluator.EvaluateLine(line)
	return false, h.status(s, res.Value, err)
}

// status writes the result line or the error line.
func (h *CalculatorHandler) status(s *session, v formula.Value, err error) error {
	if err != nil {
		s.logger.Debug("calculation rejected", zap.Error(err))
		return s.conn.WriteLine(telnet.Colorize(s.loc.Error(err), telnet.Red))
	}
	return s.conn.WriteLine(telnet.Colorize(s.loc.Result(v), telnet.Bold, telnet.Green))
}

func (h *CalculatorHandler) showTab(s *session, name string) error {
	family, ok := formula.ParseFamily(strings.ToLower(name))
	if !ok {
		if err := s.conn.WriteLine(telnet.Colorize(s.loc.Text("label.error", s.loc.Text("error.unknown_family")), telnet.Red)); err != nil {
			return err
		}
		return s.conn.WriteLine(s.loc.JoinFamilies())
	}
	return s.conn.WriteLine(renderTab(s.loc, family, h.evaluator.Registry().Family(family)))
}

// runForm prompts for every parameter of a formula, like filling in the
// calculator's entry fields, then evaluates it.
func (h *CalculatorHandler) runForm(s *session, name string) error {
	f, err := h.evaluator.Registry().Resolve(name)
	if err != nil {
		return h.status(s, formula.Value{}, err)
	}
	if err := s.conn.WriteLine(renderFormula(s.loc, f)); err != nil {
		return err
	}

	fields := make([]string, 0, len(f.Params))
	for _, p := range f.Params {
		if err := s.conn.WritePrompt(telnet.Colorize(s.loc.FieldLabel(p), telnet.BrightWhite)); err != nil {
			return err
		}
		value, err := s.conn.ReadLine()
		if err != nil {
			return fmt.Errorf("reading field %s: %w", p.Name, err)
		}
		value = strings.TrimSpace(value)
		if value == "" && !p.Variadic {
			return h.status(s, formula.Value{}, fmt.Errorf("field %s: %w", p.Name, formula.ErrArity))
		}
		fields = append(fields, value)
	}

	args, err := formula.ParseArgs(fields)
	if err != nil {
		return h.status(s, formula.Value{}, err)
	}
	res, err := h.evaluator.Apply(f, args...)
	return h.status(s, res.Value, err)
}

func (h *CalculatorHandler) runEval(s *session, expr string) error {
	if h.scripts == nil {
		return h.status(s, formula.Value{}, fmt.Errorf("eval: %w", scripting.ErrScript))
	}
	v, err := h.scripts.Eval(expr)
	if err != nil && isScriptFailure(err) {
		s.logger.Debug("eval failed", zap.Error(err))
		msg := s.loc.Text("error.script") + " " + err.Error()
		return s.conn.WriteLine(telnet.Colorize(s.loc.Text("label.error", msg), telnet.Red))
	}
	return h.status(s, v, err)
}

func isScriptFailure(err error) bool {
	return errors.Is(err, scripting.ErrScript) ||
		errors.Is(err, scripting.ErrInstructionLimit) ||
		errors.Is(err, scripting.ErrNoResult)
}

func (h *CalculatorHandler) switchLocale(s *session, requested string) error {
	locale, ok := h.bundle.Match(requested)
	if !ok {
		return s.conn.WriteLine(telnet.Colorize(s.loc.Text("label.error", s.loc.Text("error.unknown_locale")), telnet.Red))
	}
	s.loc = h.bundle.Localizer(locale, h.cfg.Precision)
	s.logger.Debug("locale changed", zap.String("locale", locale))
	return s.conn.WriteLine(s.loc.Text("status.locale", locale))
}
