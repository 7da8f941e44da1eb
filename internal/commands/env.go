package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/extrato-dev/extrato/internal/categorize"
	"github.com/extrato-dev/extrato/internal/config"
	"github.com/extrato-dev/extrato/internal/logger"
	"github.com/extrato-dev/extrato/internal/store"
)

// env is what a command needs from an initialized data directory.
type env struct {
	root   string
	cfg    *config.Config
	userID int64
	loc    *time.Location
	store  *store.Store
	log    zerolog.Logger
}

// openEnv loads extrato.yaml from --repo, configures logging on stderr and
// opens the database. The returned context carries the logger.
func openEnv(cmd *cobra.Command, opts *rootOptions) (*env, context.Context, error) {
	root, err := filepath.Abs(opts.repo)
	if err != nil {
		return nil, nil, fmt.Errorf("resolving path: %w", err)
	}

	cfg, err := config.Load(filepath.Join(root, config.FileName))
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil, fmt.Errorf("%s is not an extrato data directory (run extrato init)", root)
	}
	if err != nil {
		return nil, nil, err
	}

	log, err := newLogger(cmd.ErrOrStderr(), cfg.Log)
	if err != nil {
		return nil, nil, fmt.Errorf("configuring logger: %w", err)
	}

	loc, err := cfg.Location()
	if err != nil {
		return nil, nil, err
	}

	userID := opts.userID
	if userID == 0 {
		userID = cfg.User.ID
	}
	if userID <= 0 {
		return nil, nil, errors.New("no user: pass --user or set user.id in extrato.yaml")
	}

	st, err := store.Open(cfg.DatabasePath(root))
	if err != nil {
		return nil, nil, err
	}

	e := &env{root: root, cfg: cfg, userID: userID, loc: loc, store: st, log: log}
	ctx := logger.WithContext(cmd.Context(), log)
	return e, ctx, nil
}

func newLogger(w io.Writer, lc config.LogConfig) (zerolog.Logger, error) {
	if lc.Format == config.LogFormatJSON {
		return logger.NewJSON(w, lc.Level)
	}
	return logger.New(w, lc.Level)
}

func (e *env) Close() error {
	return e.store.Close()
}

func (e *env) categorizer() *categorize.Categorizer {
	merchants := make([]categorize.Merchant, len(e.cfg.Categorize.Merchants))
	for i, m := range e.cfg.Categorize.Merchants {
		merchants[i] = categorize.Merchant{Prefix: m.Prefix, Category: m.Category}
	}
	return categorize.NewDefault(e.store, merchants)
}
