package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/blackwell-systems/duowatch/internal/archive"
	"github.com/blackwell-systems/duowatch/internal/config"
	"github.com/blackwell-systems/duowatch/internal/duolingo"
	"github.com/blackwell-systems/duowatch/internal/notify"
	"github.com/blackwell-systems/duowatch/internal/store"
	"github.com/blackwell-systems/duowatch/internal/tracker"
)

// session holds everything one invocation (or one watch loop) shares:
// the account client, the sinks and the optional archive.
type session struct {
	cfg      *config.Config
	logger   *slog.Logger
	notifier *notify.Multi
	client   *duolingo.Client
	archive  *archive.DB
	loggedIn bool

	// archivePath overrides config.ArchivePath in tests.
	archivePath string
}

// newSession wires the sinks named in cfg. The account client is created
// here but not logged in until stats are first needed.
func newSession(cfg *config.Config, logger *slog.Logger) (*session, error) {
	var sinks []notify.Sink
	if cfg.SlackWebhook != "" {
		sinks = append(sinks, notify.NewSlack(cfg.SlackWebhook, cfg.HTTPTimeout, logger))
	}
	if cfg.Discord.Enabled() {
		d, err := notify.NewDiscord(cfg.Discord.Token, cfg.Discord.ChannelID)
		if err != nil {
			return nil, err
		}
		sinks = append(sinks, d)
	}
	if cfg.Desktop {
		sinks = append(sinks, notify.NewDesktop())
	}

	s := &session{
		cfg:      cfg,
		logger:   logger,
		notifier: notify.NewMulti(sinks...),
		client: duolingo.New(duolingo.Config{
			BaseURL:  cfg.APIBaseURL,
			Username: cfg.UserName,
			Password: cfg.Password,
			Timeout:  cfg.HTTPTimeout,
			Logger:   logger,
		}),
		archivePath: config.ArchivePath(),
	}
	logger.Debug("session ready", "sinks", s.notifier.Sinks())
	return s, nil
}

// Close releases the archive if it was opened.
func (s *session) Close() error {
	if s.archive == nil {
		return nil
	}
	return s.archive.Close()
}

// sendReminder posts the daily study reminder.
func (s *session) sendReminder(ctx context.Context) error {
	msg := notify.Reminder{Site: s.cfg.Reminder.Site, URL: s.cfg.Reminder.URL}
	if err := s.notifier.Send(ctx, msg); err != nil {
		return fmt.Errorf("sending reminder: %w", err)
	}
	return nil
}

// sendUserStats runs a track and posts one stats message per stored user.
func (s *session) sendUserStats(ctx context.Context, command string) (store.Stats, error) {
	if err := s.cfg.Validate(); err != nil {
		return nil, err
	}
	if !s.loggedIn {
		if err := s.client.Login(ctx); err != nil {
			return nil, fmt.Errorf("logging in: %w", err)
		}
		s.loggedIn = true
	}

	t := &tracker.Tracker{
		Account: s.client,
		Store:   store.NewFile(s.cfg.StorePath()),
		Logger:  s.logger,
		Command: command,
	}
	if s.cfg.TrackSelf {
		t.SelfName = s.cfg.SelfName
	}
	if rec := s.recorder(); rec != nil {
		t.Recorder = rec
	}

	stats, err := t.Run(ctx, s.cfg.UsersToTrack)
	if errors.Is(err, duolingo.ErrAuthFailed) {
		// The token may have expired; log in again on the next call.
		s.loggedIn = false
	}
	if err != nil {
		return nil, err
	}

	if err := s.notifier.Send(ctx, notify.AllUserStats(stats)...); err != nil {
		return stats, fmt.Errorf("sending stats: %w", err)
	}
	return stats, nil
}

// recorder opens the archive on first use. A failure to open it is logged
// and tracking carries on without it.
func (s *session) recorder() *archive.DB {
	if !s.cfg.Archive {
		return nil
	}
	if s.archive != nil {
		return s.archive
	}
	db, err := archive.Open(s.archivePath)
	if err != nil {
		s.logger.Warn("opening archive failed", "path", s.archivePath, "err", err)
		return nil
	}
	s.archive = db
	return db
}
