package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/spf13/afero"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/scoutjar/scoutjar-talent/internal/account"
	"github.com/scoutjar/scoutjar-talent/internal/bootstrap"
	"github.com/scoutjar/scoutjar-talent/internal/feed"
	"github.com/scoutjar/scoutjar-talent/internal/filtering"
	"github.com/scoutjar/scoutjar-talent/internal/logger"
	"github.com/scoutjar/scoutjar-talent/internal/notice"
	"github.com/scoutjar/scoutjar-talent/internal/scoutjar"
	"github.com/scoutjar/scoutjar-talent/internal/session"
)

var exit = os.Exit

// application holds everything a command needs, built once from the config.
type application struct {
	config *Config
	logger *zap.Logger
	fs     afero.Fs

	core     *scoutjar.Core
	matching *scoutjar.Matching

	store   session.Store
	session *session.Session

	feed       *feed.Feed
	counts     *feed.Counts
	recruiters *feed.Recruiters
	boot       *bootstrap.Bootstrapper
	account    *account.Service

	// disabledFilters maps filter names to the reason they are skipped.
	disabledFilters map[string]string
}

// newApplication builds the logger, clients and session store. Failures
// here are configuration problems and end the process.
func newApplication(ctx context.Context) *application {
	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"), app, version)
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	// do not bother error since there is a valid parseable config
	pretty, _ := json.MarshalIndent(config, "", "  ")
	logger.Debug(fmt.Sprintf("starting with config: \n %s", pretty))

	a := &application{
		config:          config,
		logger:          logger,
		fs:              afero.NewOsFs(),
		disabledFilters: make(map[string]string),
	}

	a.core = scoutjar.NewCore(logger, config.CoreURL)
	a.matching = scoutjar.NewMatching(logger, config.MatchingURL)
	if config.SemanticMatching {
		a.matching.ActiveMatchPath = scoutjar.SemanticMatchPath
	}
	for _, c := range []*scoutjar.Client{a.core.Client, a.matching.Client} {
		if config.Timeout > 0 {
			c.HTTPClient.Timeout = config.Timeout
		}
		if config.UserAgent != "" {
			c.UserAgent = config.UserAgent
		}
	}

	a.store, err = openStore(ctx, a.fs, config.Session)
	if err != nil {
		logger.Fatal("opening the session store",
			zap.Error(err),
			zap.String("backend", config.Session.Backend),
		)
	}

	a.session = session.New(a.store, logger)
	a.feed = feed.New(a.core, logger)
	a.counts = &feed.Counts{}
	a.recruiters = feed.NewRecruiters(a.matching, logger)
	a.account = account.New(a.core, a.matching, a.session, a.fs, logger)
	a.boot = bootstrap.New(bootstrap.Deps{
		Core:     a.core,
		Matching: a.matching,
		Session:  a.session,
		Feed:     a.feed,
		Counts:   a.counts,
		Logger:   logger,
		Filters:  &config.Feed.Config,
		Steps:    a.filterSteps,
	})

	return a
}

func (a *application) filterSteps(cfg *filtering.Config) []filtering.Filter {
	steps := filtering.Steps(cfg)
	for name, reason := range a.disabledFilters {
		filtering.DisableByName(steps, name, reason)
	}
	return steps
}

func openStore(ctx context.Context, fs afero.Fs, cfg *SessionConfig) (session.Store, error) {
	switch cfg.Backend {
	case "", "file":
		return session.NewFileStore(fs, cfg.Path), nil
	case "redis":
		prefix := cfg.RedisPrefix
		if prefix == "" {
			prefix = session.DefaultRedisPrefix
		}
		return session.NewRedisStore(ctx, cfg.RedisURL, prefix)
	default:
		return nil, fmt.Errorf("unknown session backend %q", cfg.Backend)
	}
}

func (a *application) Close() {
	if c, ok := a.store.(io.Closer); ok {
		if err := c.Close(); err != nil {
			a.logger.Debug("closing the session store", zap.Error(err))
		}
	}
	_ = a.logger.Sync()
}

// requireSession loads the stored session and ends the process when nobody
// is signed in.
func (a *application) requireSession(ctx context.Context, out io.Writer) session.State {
	st, err := a.session.Load(ctx)
	if err != nil {
		a.logger.Fatal("loading the session", zap.Error(err))
	}
	if !st.SignedIn() {
		a.exitWith(out, notice.Notice{Title: notice.TitleError, Message: notice.MessageNotSignedIn})
	}
	return st
}

// show prints n for the user. Failures are also logged at warn level.
func (a *application) show(out io.Writer, n notice.Notice) {
	if n.IsZero() {
		return
	}
	fmt.Fprintln(out, n.String())
	if n.IsFailure() {
		a.logger.Warn("notice", zap.String("title", n.Title), zap.String("message", n.Message))
	}
}

func (a *application) exitWith(out io.Writer, n notice.Notice) {
	a.show(out, n)
	a.Close()
	exit(1)
}
