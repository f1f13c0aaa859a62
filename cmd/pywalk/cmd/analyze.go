package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	diffmatchpatch "github.com/gkampitakis/go-diff/diffmatchpatch"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/cwbudde/pywalk/internal/cache"
	"github.com/cwbudde/pywalk/internal/config"
	"github.com/cwbudde/pywalk/internal/discover"
	"github.com/cwbudde/pywalk/internal/ptsource"
	"github.com/cwbudde/pywalk/internal/walker"
	"github.com/cwbudde/pywalk/internal/walkerr"
	"github.com/cwbudde/pywalk/pkg/diagnostic"
	"github.com/cwbudde/pywalk/pkg/hostapi"
)

var (
	configPath string
	showDiff   bool
	cachePath  string
	noColor    bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [path...]",
	Short: "Run the semantic-analysis core over Python source files",
	Long: `Analyze walks one or more files (or directories, recursively discovered)
and prints the diagnostic vector the walker core produces for each.

Examples:
  pywalk analyze script.py
  pywalk analyze ./src --config pywalk.yaml
  pywalk analyze script.py --diff`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	analyzeCmd.Flags().StringVar(&configPath, "config", "", "path to a pywalk.yaml settings file")
	analyzeCmd.Flags().BoolVar(&showDiff, "diff", false, "preview each diagnostic's fix as an inline character diff")
	analyzeCmd.Flags().StringVar(&cachePath, "cache", "", "path to a sqlite diagnostics cache (skipped if empty)")
	analyzeCmd.Flags().BoolVar(&noColor, "no-color", false, "disable ANSI coloring even on a tty")
}

func runAnalyze(_ *cobra.Command, args []string) error {
	settings, err := loadSettings()
	if err != nil {
		return err
	}

	var c *cache.Cache
	if cachePath != "" {
		c, err = cache.Open(cachePath)
		if err != nil {
			return err
		}
		defer c.Close()
	}

	files, err := expandPaths(args)
	if err != nil {
		return err
	}

	color := !noColor && isatty.IsTerminal(os.Stdout.Fd())
	total := 0
	for _, path := range files {
		diags, report, src, err := analyzeFile(path, settings, c)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", path, err)
			continue
		}
		if report != nil {
			fmt.Fprintf(os.Stderr, "%s: internal error (run %s): %s\n", path, report.RunID, report.Message)
			continue
		}
		total += len(diags)
		printDiagnostics(path, src, diags, color)
	}

	if total > 0 {
		return fmt.Errorf("%d diagnostic(s) found", total)
	}
	return nil
}

func loadSettings() (*config.Settings, error) {
	if configPath == "" {
		return config.New(config.File{}), nil
	}
	return config.Load(configPath, nil)
}

// expandPaths resolves CLI arguments to a flattened list of local file
// paths in argument order, recursing into directories via internal/discover
// (which keeps only `.py`/`.pyi` files and sorts each directory's results);
// a file argument is kept as given.
func expandPaths(args []string) ([]string, error) {
	var out []string
	for _, a := range args {
		info, err := os.Stat(a)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			out = append(out, a)
			continue
		}
		abs, err := filepath.Abs(a)
		if err != nil {
			return nil, err
		}
		found, err := discover.Discover(context.Background(), "file://"+abs)
		if err != nil {
			return nil, err
		}
		for _, f := range found {
			out = append(out, strings.TrimPrefix(f, "file://"))
		}
	}
	return out, nil
}

func analyzeFile(path string, settings *config.Settings, c *cache.Cache) (diagnostic.Vector, *walkerr.Report, []byte, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, nil, err
	}

	var contentHash, settingsHash string
	if c != nil {
		contentHash, err = cache.Hash(src)
		if err != nil {
			return nil, nil, nil, err
		}
		settingsHash = settings.TargetVersion()
		if cached, ok, err := c.Lookup(contentHash, settingsHash); err == nil && ok {
			return cached, nil, src, nil
		}
	}

	parsed, err := ptsource.Parse(context.Background(), src)
	if err != nil {
		return nil, nil, nil, err
	}

	kind := walker.StandaloneModule
	if base := filepath.Base(path); base == "__init__.py" || base == "__init__.pyi" {
		kind = walker.PackageModule
	}
	module := walker.ModuleDescriptor{
		Kind:   kind,
		Source: walker.ModuleSource{Path: path},
		Root:   parsed.Module,
	}

	diags, report := walker.Analyze(module, walker.Options{
		Locator:    parsed.Locator,
		Indexer:    parsed.Indexer,
		Style:      parsed.Style,
		Settings:   settings,
		SourceType: hostapi.SourceFile,
		StringParser: ptsource.ParseExpr,
	})

	if c != nil && report == nil {
		_ = c.Store(contentHash, settingsHash, diags)
	}

	return diags, report, src, nil
}

func printDiagnostics(path string, src []byte, diags diagnostic.Vector, color bool) {
	sorted := append(diagnostic.Vector(nil), diags...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Range.Start != sorted[j].Range.Start {
			return sorted[i].Range.Start < sorted[j].Range.Start
		}
		return sorted[i].Code < sorted[j].Code
	})

	for _, d := range sorted {
		line := 1 + strings.Count(string(src[:d.Range.Start]), "\n")
		if color {
			fmt.Printf("%s:%d: \x1b[33m%s\x1b[0m %s\n", path, line, d.Code, d.Message)
		} else {
			fmt.Printf("%s:%d: %s %s\n", path, line, d.Code, d.Message)
		}
		if showDiff && d.Fix != nil {
			fmt.Print(fixDiff(src, d.Fix))
		}
	}
}

// fixDiff renders an inline character-level diff of src before and after
// applying fix's edits, using gkampitakis/go-diff (a go-snaps transitive
// dependency): DiffPrettyText prints the whole text with insertions and
// deletions marked by ANSI colors, not a unified diff.
func fixDiff(src []byte, fix *diagnostic.Fix) string {
	edits := append([]diagnostic.Edit(nil), fix.Edits...)
	sort.Slice(edits, func(i, j int) bool { return edits[i].Range.Start < edits[j].Range.Start })

	var b strings.Builder
	cursor := 0
	for _, e := range edits {
		if int(e.Range.Start) < cursor {
			continue // overlapping edit; skip rather than corrupt output
		}
		b.Write(src[cursor:e.Range.Start])
		b.WriteString(e.Text)
		cursor = int(e.Range.End)
	}
	b.Write(src[cursor:])

	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(string(src), b.String(), false)
	return dmp.DiffPrettyText(diffs) + "\n"
}
