package cmd

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/flowr-app/flowr/internal/api"
	"github.com/flowr-app/flowr/internal/catalog"
	"github.com/flowr-app/flowr/internal/config"
	"github.com/flowr-app/flowr/internal/identity"
	"github.com/flowr-app/flowr/internal/kv"
	kvredis "github.com/flowr-app/flowr/internal/kv/redis"
	kvsqlite "github.com/flowr-app/flowr/internal/kv/sqlite"
	"github.com/flowr-app/flowr/internal/logger"
	"github.com/flowr-app/flowr/internal/stats"
	"github.com/flowr-app/flowr/internal/store"
	"github.com/flowr-app/flowr/internal/vocab"
)

// secretKey is the state slot holding the generated session secret.
const secretKey = "session_secret"

// app holds the collaborators a command needs.
type app struct {
	cfg       config.Config
	log       *zap.Logger
	docs      catalog.Documents
	repo      *catalog.Repository
	state     kv.Store
	vocab     *vocab.Store
	session   *identity.Session
	reviews   *catalog.ReviewService
	estimator *stats.Estimator

	closers []func()
}

// appFactory builds the app for a command. Tests replace it.
var appFactory = openApp

func openApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return nil, invalidArgsError(err.Error(), "flowr --config ./flowr.yaml")
	}

	level := cfg.Logging.Level
	if flagVerbose {
		level = "debug"
	}
	log, err := logger.NewLogger(cfg.Env, level)
	if err != nil {
		return nil, invalidArgsError(err.Error(), "Set logging.level to debug, info, warn or error.")
	}

	a := &app{cfg: cfg, log: log}
	a.closers = append(a.closers, func() { _ = log.Sync() })

	if flagEphemeral {
		a.docs = store.NewMemory()
		a.state = kv.NewMemory()
	} else {
		if err := a.openDocuments(); err != nil {
			a.Close()
			return nil, err
		}
		if err := a.openState(); err != nil {
			a.Close()
			return nil, err
		}
	}

	if err := a.wire(ctx); err != nil {
		a.Close()
		return nil, err
	}
	return a, nil
}

func (a *app) openDocuments() error {
	sc := a.cfg.Store
	switch sc.Driver {
	case config.DriverHTTP:
		a.docs = api.NewClient(sc.BaseURL, sc.Token, sc.Timeout())
		return nil
	case config.DriverSQLite:
		if err := os.MkdirAll(filepath.Dir(sc.DSN), 0o755); err != nil {
			return upstreamError("opening catalog store", err)
		}
	}

	db, err := store.OpenSQL(sc.Driver, sc.DSN, a.log)
	if err != nil {
		return upstreamError("opening catalog store", err)
	}
	a.docs = db
	a.closers = append(a.closers, func() { _ = db.Close() })
	return nil
}

func (a *app) openState() error {
	vc := a.cfg.Vocabulary
	switch vc.Backend {
	case config.BackendMemory:
		a.state = kv.NewMemory()
	case config.BackendRedis:
		rs, err := kvredis.NewStore(kvredis.Config{
			Addrs:    vc.RedisAddrs,
			Password: vc.RedisPassword,
			Prefix:   vc.RedisPrefix,
		})
		if err != nil {
			return upstreamError("opening state store", err)
		}
		a.state = rs
		a.closers = append(a.closers, rs.Close)
	default:
		ss, err := kvsqlite.Open(vc.Path)
		if err != nil {
			return upstreamError("opening state store", err)
		}
		a.state = ss
		a.closers = append(a.closers, func() { _ = ss.Close() })
	}
	a.log.Debug("state store ready", zap.String("backend", vc.Backend))
	return nil
}

// wire builds the domain services on top of the opened stores.
func (a *app) wire(ctx context.Context) error {
	a.repo = catalog.NewRepository(a.docs)
	a.vocab = vocab.NewStore(a.state, vocab.MustBase(), a.log)
	a.reviews = catalog.NewReviewService(a.docs, a.vocab, a.log)
	a.estimator = stats.NewEstimator(a.repo, a.log)

	secret, err := a.sessionSecret(ctx)
	if err != nil {
		return upstreamError("opening state store", err)
	}
	session, err := identity.NewSession(a.state, secret, a.cfg.Auth.TTL(), a.log)
	if err != nil {
		return err
	}
	a.session = session
	return nil
}

// sessionSecret returns the configured secret, or one generated on first use
// and kept in the state store.
func (a *app) sessionSecret(ctx context.Context) (string, error) {
	if a.cfg.Auth.Secret != "" {
		return a.cfg.Auth.Secret, nil
	}

	secret, err := a.state.Get(ctx, secretKey)
	if err == nil && secret != "" {
		return secret, nil
	}
	if err != nil && !errors.Is(err, kv.ErrNotFound) {
		return "", err
	}

	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generating session secret: %w", err)
	}
	secret = hex.EncodeToString(buf)
	if err := a.state.Put(ctx, secretKey, secret); err != nil {
		return "", err
	}
	a.log.Debug("generated session secret")
	return secret, nil
}

// context attaches the app logger to ctx.
func (a *app) context(ctx context.Context) context.Context {
	return logger.ContextWithLogger(ctx, a.log)
}

// requireUser returns the signed-in user or an UNAUTHENTICATED error.
func (a *app) requireUser(ctx context.Context) (string, error) {
	userID, ok := a.session.CurrentUserID(ctx)
	if !ok {
		return "", unauthenticatedError("no signed-in user")
	}
	return userID, nil
}

// Close releases stores in reverse order of opening.
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}
