// Package nunit rewrites C# syntax trees that use NUnit into their MSTest equivalents
package nunit

import (
	"fmt"
	"log/slog"

	"github.com/heshanpadmasiri/nunitMSTest/csharp"
	"github.com/heshanpadmasiri/nunitMSTest/diagnostics"
	"github.com/heshanpadmasiri/nunitMSTest/mstest"
	"github.com/heshanpadmasiri/nunitMSTest/semantic"
)

// Options configures a Rewriter
type Options struct {
	// CommentUnsupported wraps the attributes of methods that produced
	// diagnostics in a block comment, disabling the test.
	CommentUnsupported bool
}

// Result is the outcome of rewriting one file
type Result struct {
	Root        *csharp.Node
	Diagnostics []diagnostics.Unsupported
	Changes     int
}

// Rewriter migrates files one at a time. It holds no per-file state and can be
// used from several goroutines.
type Rewriter struct {
	resolver semantic.Resolver
	options  Options
	logger   *slog.Logger
}

func NewRewriter(resolver semantic.Resolver, options Options, logger *slog.Logger) *Rewriter {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Rewriter{resolver: resolver, options: options, logger: logger}
}

// MigrationContext holds state during the migration of one file
type MigrationContext struct {
	Resolver       semantic.Resolver
	Options        Options
	SourceFilePath string
	Newline        string
	Diagnostics    *diagnostics.Collector
	Class          *ClassScopeState
	Method         *MethodScopeState
	Changes        int
	// attributes queued for removal from [assembly: ...] lists
	assemblyRemoved map[*csharp.Node]bool
	// parameter whose attributes are being migrated
	parameter *csharp.Node
	// >0 while visiting the arguments of a NUnit assertion
	assertionDepth int
	// set once the file imports the MSTest namespace
	hasMSTestUsing bool
	logger         *slog.Logger
}

// NewMigrationContext creates and initializes a new MigrationContext
func NewMigrationContext(resolver semantic.Resolver, options Options, sourceFilePath string, newline string) *MigrationContext {
	if newline == "" {
		newline = "\n"
	}
	return &MigrationContext{
		Resolver:        resolver,
		Options:         options,
		SourceFilePath:  sourceFilePath,
		Newline:         newline,
		Diagnostics:     &diagnostics.Collector{},
		assemblyRemoved: make(map[*csharp.Node]bool),
		logger:          slog.New(slog.DiscardHandler),
	}
}

// Unsupported records a construct that could not be migrated
func (ctx *MigrationContext) Unsupported(node *csharp.Node, info string) {
	record := diagnostics.NewUnsupported(ctx.SourceFilePath, node, info)
	ctx.logger.Debug("unsupported construct", "file", ctx.SourceFilePath, "info", info, "location", record.Location.String())
	ctx.Diagnostics.Add(record)
}

// replaced marks original as rewritten into replacement, keeping the trivia in
// front of the original node
func (ctx *MigrationContext) replaced(original *csharp.Node, replacement *csharp.Node) *csharp.Node {
	ctx.Changes++
	return replacement.WithLeading(original.Leading())
}

// Rewrite migrates one parsed file. Constructs that cannot be migrated are left
// in place and reported; an internal error aborts this file only.
func (r *Rewriter) Rewrite(file *csharp.File) (result Result, err error) {
	ctx := NewMigrationContext(r.resolver, r.options, file.Path, file.Newline)
	ctx.logger = r.logger
	defer func() {
		if recovered := recover(); recovered != nil {
			panicErr, ok := recovered.(csharp.MigrationPanic)
			if !ok {
				panic(recovered)
			}
			r.logger.Error("migration aborted", "file", file.Path, "error", panicErr.Message)
			err = fmt.Errorf("%s: %w", file.Path, panicErr)
		}
	}()

	ctx.hasMSTestUsing = importsNamespace(file.Root, mstest.Namespace)
	root := migrateNode(ctx, file.Root)
	r.logger.Debug("migrated file", "file", file.Path, "changes", ctx.Changes, "unsupported", ctx.Diagnostics.Len())
	return Result{
		Root:        root,
		Diagnostics: ctx.Diagnostics.Items(),
		Changes:     ctx.Changes,
	}, nil
}
