package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/extrato-dev/extrato/internal/gitops"
	"github.com/extrato-dev/extrato/internal/importer"
	"github.com/extrato-dev/extrato/internal/importlog"
	"github.com/extrato-dev/extrato/internal/ofx"
	"github.com/extrato-dev/extrato/internal/reconcile"
)

func newImportCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "import [files...]",
		Short: "Import statement files, or every statement waiting in import/",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, ctx, err := openEnv(cmd, opts)
			if err != nil {
				return err
			}
			defer e.Close()
			return runImport(ctx, cmd.OutOrStdout(), e, args)
		},
	}
}

type importFile struct {
	name  string
	path  string
	inbox bool // move to import/processed/ on success
}

func runImport(ctx context.Context, out io.Writer, e *env, args []string) error {
	registry := importer.DefaultRegistry(
		ofx.WithLocation(e.loc),
		ofx.WithDefaultCurrency(e.cfg.Import.DefaultCurrency),
	)
	svc := reconcile.NewService(registry, e.store, e.categorizer())

	var files []importFile
	if len(args) == 0 {
		found, err := registry.Scan(e.root)
		if err != nil {
			return err
		}
		for _, f := range found {
			files = append(files, importFile{name: f.Name, path: f.Path, inbox: true})
		}
		if len(files) == 0 {
			fmt.Fprintln(out, "No statements waiting in import/")
			return nil
		}
	} else {
		for _, a := range args {
			files = append(files, importFile{name: filepath.Base(a), path: a})
		}
	}

	var entries []importlog.Entry
	failed := 0
	for _, f := range files {
		entry := importlog.Entry{Timestamp: time.Now().UTC(), UserID: e.userID, File: f.name}

		res, err := importOne(ctx, svc, e, f)
		if err != nil {
			failed++
			entry.Error = err.Error()
			e.log.Error().Err(err).Str("file", f.name).Msg("import failed")
			fmt.Fprintf(out, "%s: %s\n", f.name, userMessage(err))
			entries = append(entries, entry)
			continue
		}

		entry.Account = res.Account.Number
		entry.Created = res.Created
		entry.Skipped = res.Skipped
		entry.Total = res.Total
		entries = append(entries, entry)

		fmt.Fprintf(out, "%s: %d created, %d skipped (account %s, balance %s)\n",
			f.name, res.Created, res.Skipped, res.Account.Number, res.Account.Balance.StringFixed(2))

		if f.inbox {
			if err := importer.MarkProcessed(e.root, f.name); err != nil {
				e.log.Warn().Err(err).Str("file", f.name).Msg("could not move statement to processed")
			}
		}
	}

	if err := importlog.Append(e.root, entries); err != nil {
		e.log.Warn().Err(err).Msg("could not write import log")
	}

	if e.cfg.Git.Enabled && gitops.IsRepo(e.root) {
		author := gitops.Author{Name: e.cfg.Git.AuthorName, Email: e.cfg.Git.AuthorEmail}
		msg := fmt.Sprintf("import: %d statement(s)", len(files)-failed)
		if _, err := gitops.Commit(e.root, msg, author); err != nil {
			e.log.Warn().Err(err).Msg("could not commit import")
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d files failed to import", failed, len(files))
	}
	return nil
}

func importOne(ctx context.Context, svc *reconcile.Service, e *env, f importFile) (*reconcile.Result, error) {
	info, err := os.Stat(f.path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", f.name, err)
	}
	if limit := e.cfg.Import.MaxFileBytes; limit > 0 && info.Size() > limit {
		return nil, fmt.Errorf("%w: %s is %d bytes, limit is %d", errFileTooLarge, f.name, info.Size(), limit)
	}

	content, err := os.ReadFile(f.path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", f.name, err)
	}
	return svc.Import(ctx, e.userID, f.name, content)
}

var errFileTooLarge = errors.New("file too large")

// genericImportFailure is shown for errors that carry no user-facing meaning.
const genericImportFailure = "could not import this file (see the log for details)"

// userMessage turns an import error into one line for the terminal; the
// full chain goes to the log.
func userMessage(err error) string {
	switch {
	case errors.Is(err, ofx.ErrMalformedDocument):
		return "not a valid OFX document"
	case errors.Is(err, ofx.ErrMissingStatement):
		return "no bank or credit card statement found"
	case errors.Is(err, importer.ErrUnknownFormat):
		return "unsupported file format"
	case errors.Is(err, reconcile.ErrInvalidStatement):
		return "statement has inconsistent transactions"
	case errors.Is(err, errFileTooLarge):
		return "file is larger than import.max_file_bytes"
	case errors.Is(err, os.ErrNotExist):
		return "file not found"
	default:
		return genericImportFailure
	}
}
