package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dusk-indust/deadcode/internal/graphstore"
	"github.com/dusk-indust/deadcode/internal/mcptools"
	"github.com/dusk-indust/deadcode/internal/progress"
	"github.com/dusk-indust/deadcode/internal/report"
	"github.com/dusk-indust/deadcode/internal/runner"
)

// cliFlags parsed from the command line.
type cliFlags struct {
	ProjectRoot             string
	TSConfigPath            string
	UseGitignore            bool
	Strict                  bool
	Production              bool
	Progress                bool
	ReportFormat            string
	ServeMCP                bool
	MCPAddr                 string
	GraphDB                 string
	IgnoreExportsUsedInFile bool
	Version                 bool
}

// version is set by goreleaser at build time.
var version = "dev"

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	var flags cliFlags

	fs := flag.NewFlagSet("deadcode", flag.ContinueOnError)
	fs.StringVar(&flags.ProjectRoot, "project-root", ".", "path to the target project")
	fs.StringVar(&flags.TSConfigPath, "tsconfig", "", "optional path to a compiler-configuration file")
	fs.BoolVar(&flags.UseGitignore, "gitignore", false, "honor .gitignore when expanding project globs")
	fs.BoolVar(&flags.Strict, "strict", false, "strict mode: do not forgive peer/ancestor declarations or failed cross-workspace subpath resolutions")
	fs.BoolVar(&flags.Production, "production", false, "production mode: only production entry patterns seed reachability")
	fs.BoolVar(&flags.Progress, "progress", false, "print progress events to stderr while running")
	fs.StringVar(&flags.ReportFormat, "report", "text", "report format: text or json")
	fs.BoolVar(&flags.ServeMCP, "serve-mcp", false, "run as an MCP server exposing find_dead_code and get_issue_counts")
	fs.StringVar(&flags.MCPAddr, "mcp-addr", "", "serve MCP over HTTP at this address instead of stdio")
	fs.StringVar(&flags.GraphDB, "graph-db", "", "persist the reachability graph (files, import edges, issues) to a KuzuDB directory for post-run Cypher inspection")
	fs.BoolVar(&flags.IgnoreExportsUsedInFile, "ignore-exports-used-in-file", false, "treat an export referenced elsewhere in its own file as used, even with no importer")
	fs.BoolVar(&flags.Version, "version", false, "print version and exit")

	fs.Usage = func() { printUsage(fs) }

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}

	if flags.Version {
		fmt.Println(version)
		return nil
	}

	projectRoot := flags.ProjectRoot
	if !filepath.IsAbs(projectRoot) {
		abs, err := filepath.Abs(projectRoot)
		if err != nil {
			return fmt.Errorf("resolving project root: %w", err)
		}
		projectRoot = abs
	}

	ctx := context.Background()

	if flags.ServeMCP {
		svc := mcptools.NewService(func(format string, args ...any) {
			fmt.Fprintf(os.Stderr, format+"\n", args...)
		})
		if flags.MCPAddr != "" {
			fmt.Fprintf(os.Stderr, "deadcode MCP server v%s starting on %s\n", version, flags.MCPAddr)
			return mcptools.RunServerHTTP(ctx, svc, flags.MCPAddr)
		}
		fmt.Fprintf(os.Stderr, "deadcode MCP server v%s starting on stdio (project: %s)\n", version, projectRoot)
		server := mcptools.NewServer(svc)
		err := mcptools.RunServerStdio(ctx, server)
		fmt.Fprintf(os.Stderr, "deadcode MCP server stopped\n")
		return err
	}

	cfg := runner.Config{
		ProjectRoot:             projectRoot,
		TSConfigPath:            flags.TSConfigPath,
		UseGitignore:            flags.UseGitignore,
		Strict:                  flags.Strict,
		Production:              flags.Production,
		IgnoreExportsUsedInFile: flags.IgnoreExportsUsedInFile,
		DebugLog: func(format string, args ...any) {
			fmt.Fprintf(os.Stderr, format+"\n", args...)
		},
	}

	if flags.GraphDB != "" {
		store, err := graphstore.NewKuzuFileStore(flags.GraphDB)
		if err != nil {
			return fmt.Errorf("opening graph database %s: %w", flags.GraphDB, err)
		}
		defer store.Close()
		cfg.GraphStore = store
	}

	var reporter *progress.Reporter
	done := make(chan struct{})
	if flags.Progress {
		reporter = progress.NewReporter()
		cfg.Progress = reporter
		go func() {
			defer close(done)
			progress.Render(reporter.Subscribe(), os.Stderr)
		}()
	} else {
		close(done)
	}

	result, runErr := runner.Run(ctx, cfg)

	if reporter != nil {
		reporter.Close()
		<-done
	}

	if runErr != nil {
		return runErr
	}

	switch flags.ReportFormat {
	case "json":
		if err := report.WriteJSON(os.Stdout, result); err != nil {
			return fmt.Errorf("writing json report: %w", err)
		}
	default:
		report.WriteText(os.Stdout, result)
	}

	return nil
}

func printUsage(fs *flag.FlagSet) {
	w := os.Stderr
	fmt.Fprintf(w, "deadcode v%s - unused code, dependency, and export finder\n\n", version)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  deadcode [flags]                    Analyze the project and print a report")
	fmt.Fprintln(w, "  deadcode --serve-mcp                Run as an MCP server on stdio")
	fmt.Fprintln(w, "  deadcode --serve-mcp --mcp-addr=...  Run as an MCP server over HTTP")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Examples:")
	fmt.Fprintln(w, "  deadcode -project-root ./app -strict -report json")
	fmt.Fprintln(w, "  deadcode -gitignore -progress")
	fmt.Fprintln(w, "  deadcode -graph-db ./.deadcode-graph")
	fmt.Fprintln(w, "  deadcode -ignore-exports-used-in-file")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	fs.PrintDefaults()
}
