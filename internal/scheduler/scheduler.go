package scheduler

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strconv"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"StockPulse/internal/dashboard"
	"StockPulse/internal/model"
	"StockPulse/internal/notifier"
)

// Scheduler re-runs the dashboard cycle on a timer and on user commands.
type Scheduler struct {
	Cron      *cron.Cron
	Session   *dashboard.Session
	ExportDir string
	Log       zerolog.Logger
	Ctx       context.Context
}

// NewScheduler creates a new Scheduler. Overlapping timed refreshes are skipped.
func NewScheduler(ctx context.Context, session *dashboard.Session, exportDir string, logger zerolog.Logger) *Scheduler {
	cl := cronLogger{log: logger}
	return &Scheduler{
		Cron: cron.New(
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
		Session:   session,
		ExportDir: exportDir,
		Log:       logger,
		Ctx:       ctx,
	}
}

// RegisterAutoRefresh schedules Tick every interval.
func (s *Scheduler) RegisterAutoRefresh(interval time.Duration) error {
	if interval < time.Second {
		return fmt.Errorf("refresh interval %s is below 1s", interval)
	}
	spec := fmt.Sprintf("@every %s", interval)
	if _, err := s.Cron.AddFunc(spec, func() { s.Tick() }); err != nil {
		return fmt.Errorf("register auto refresh: %w", err)
	}
	s.Log.Info().Dur("interval", interval).Msg("auto refresh registered")
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	s.Log.Info().Msg("scheduler started")
}

// Stop stops the cron scheduler and waits for a running refresh to finish.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	s.Log.Info().Msg("scheduler stopped")
}

// Tick runs one refresh cycle. It is what the timer invokes and can be called directly.
func (s *Scheduler) Tick() (*dashboard.Cycle, error) {
	if err := s.Ctx.Err(); err != nil {
		return nil, err
	}
	c, err := s.Session.Refresh(s.Ctx)
	if err != nil {
		s.Log.Error().Err(err).Msg("refresh failed")
	}
	return c, err
}

// HandleCommand processes a user command and returns a reply. Commands that trigger a
// refresh reply with an empty string because the cycle displays its own report.
func (s *Scheduler) HandleCommand(ctx context.Context, command string) string {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return notifier.FormatHelp()
	}
	name := strings.ToLower(fields[0])
	if i := strings.IndexByte(name, '@'); i > 0 {
		name = name[:i] // "/refresh@MyBot" in group chats
	}
	args := fields[1:]

	switch name {
	case "/watch":
		p, err := parseWatch(s.Session.Params(), args)
		if err != nil {
			return errorReply(err) + "\n\n" + notifier.FormatHelp()
		}
		if err := s.Session.SetParams(p); err != nil {
			return errorReply(err)
		}
		s.refresh(ctx)
		return ""
	case "/refresh":
		s.refresh(ctx)
		return ""
	case "/threshold":
		if len(args) != 1 {
			return "❌ usage: /threshold PERCENT"
		}
		th, err := parseThreshold(args[0])
		if err != nil {
			return errorReply(err)
		}
		p := s.Session.Params()
		p.Threshold = th
		if err := s.Session.SetParams(p); err != nil {
			return errorReply(err)
		}
		return s.status()
	case "/status":
		return s.status()
	case "/csv":
		return s.export("CSV", s.Session.ExportCSV)
	case "/chart":
		return s.export("chart", s.Session.ExportChart)
	default:
		return notifier.FormatHelp()
	}
}

func (s *Scheduler) export(what string, save func(dir string) (string, error)) string {
	if s.ExportDir == "" {
		return "❌ " + what + " export is not configured (export.dir)"
	}
	path, err := save(s.ExportDir)
	if errors.Is(err, dashboard.ErrNoSeries) {
		return "ℹ️ Nothing to export yet, run /refresh first."
	}
	if err != nil {
		s.Log.Error().Err(err).Str("export", what).Msg("export failed")
		return "❌ " + what + " export failed: " + html.EscapeString(err.Error())
	}
	return "💾 Saved " + what + " to " + html.EscapeString(path)
}

// errorReply formats a command error for an HTML chat message; err may echo user input.
func errorReply(err error) string {
	return "❌ " + html.EscapeString(err.Error())
}

func (s *Scheduler) refresh(ctx context.Context) {
	if _, err := s.Session.Refresh(ctx); err != nil {
		s.Log.Error().Err(err).Msg("manual refresh failed")
	}
}

func (s *Scheduler) status() string {
	var last time.Time
	if c := s.Session.LastCycle(); c != nil {
		last = c.StartedAt
	}
	return notifier.FormatStatus(s.Session.Params(), last)
}

// parseWatch reads "SYMBOL [INTERVAL] [PERIOD] [THRESHOLD]"; omitted fields keep current values.
func parseWatch(current model.Params, args []string) (model.Params, error) {
	if len(args) == 0 || len(args) > 4 {
		return current, errors.New("usage: /watch SYMBOL [INTERVAL] [PERIOD] [THRESHOLD]")
	}
	p := current
	p.Symbol = model.NormalizeSymbol(args[0])
	if len(args) > 1 {
		i, err := model.ParseInterval(args[1])
		if err != nil {
			return current, err
		}
		p.Interval = i
	}
	if len(args) > 2 {
		per, err := model.ParsePeriod(args[2])
		if err != nil {
			return current, err
		}
		p.Period = per
	}
	if len(args) > 3 {
		th, err := parseThreshold(args[3])
		if err != nil {
			return current, err
		}
		p.Threshold = th
	}
	return p, nil
}

func parseThreshold(s string) (float64, error) {
	th, err := strconv.ParseFloat(strings.TrimSuffix(s, "%"), 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", model.ErrInvalidThreshold, s)
	}
	return th, nil
}
