package workspace

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/heshanpadmasiri/nunitMSTest/csharp"
	"github.com/heshanpadmasiri/nunitMSTest/diagnostics"
	"github.com/heshanpadmasiri/nunitMSTest/nunit"
	"github.com/heshanpadmasiri/nunitMSTest/semantic"
)

// Options configures a workspace migration
type Options struct {
	// Jobs bounds the files rewritten concurrently; 0 uses GOMAXPROCS
	Jobs               int
	CommentUnsupported bool
	Logger             *slog.Logger
}

// FileResult is the outcome for one input file
type FileResult struct {
	Path string
	// Skipped files do not import NUnit and are left alone
	Skipped     bool
	Changed     bool
	Changes     int
	Output      []byte
	Diagnostics []diagnostics.Unsupported
	ParseErrors []csharp.ParseError
	Err         error
}

// Migrate parses every path, resolves symbols over all of them together and
// rewrites the files that use NUnit. Results are in input order. A failure in
// one file is recorded on its result; the returned error is only set when ctx
// is cancelled.
func Migrate(ctx context.Context, paths []string, options Options) ([]FileResult, error) {
	logger := options.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	results := make([]FileResult, len(paths))
	files := make([]*csharp.File, len(paths))

	jobs := options.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	// parsing is independent per file
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, min(jobs, len(paths))))
	for i, path := range paths {
		results[i].Path = path
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			file, err := csharp.ReadFile(path)
			if err != nil {
				results[i].Err = fmt.Errorf("reading %s: %w", path, err)
				return nil
			}
			files[i] = file
			results[i].ParseErrors = file.ParseErrors
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return results, err
	}

	var parsed []*csharp.File
	for _, file := range files {
		if file != nil {
			parsed = append(parsed, file)
		}
	}
	compilation := semantic.NewCompilation(parsed...)
	rewriter := nunit.NewRewriter(compilation, nunit.Options{CommentUnsupported: options.CommentUnsupported}, logger)

	g, gctx = errgroup.WithContext(ctx)
	g.SetLimit(max(1, min(jobs, len(paths))))
	for i, file := range files {
		if file == nil {
			continue
		}
		if !IsEligible(file) {
			results[i].Skipped = true
			logger.Debug("skipping file without NUnit import", "file", file.Path)
			continue
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			for _, parseErr := range file.ParseErrors {
				logger.Warn("syntax error, migrating around it", "file", file.Path, "error", parseErr.Error())
			}
			results[i] = migrateFile(rewriter, file, results[i])
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, nil
}

func migrateFile(rewriter *nunit.Rewriter, file *csharp.File, result FileResult) FileResult {
	migrated, err := rewriter.Rewrite(file)
	if err != nil {
		result.Err = err
		return result
	}
	result.Output = []byte(migrated.Root.String())
	result.Changes = migrated.Changes
	result.Changed = string(result.Output) != string(file.Source)
	result.Diagnostics = migrated.Diagnostics
	diagnostics.SortByLocation(result.Diagnostics)
	return result
}

// Failed returns the errors recorded on results, joined
func Failed(results []FileResult) error {
	var errs []error
	for _, result := range results {
		if result.Err != nil {
			errs = append(errs, result.Err)
		}
	}
	return errors.Join(errs...)
}
