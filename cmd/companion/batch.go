package main

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/dgallion1/readcomp/internal/article"
	"github.com/dgallion1/readcomp/internal/config"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

var (
	batchAccess bool
	batchOutDir string
)

var batchCmd = &cobra.Command{
	Use:   "batch PATTERN...",
	Short: "Render every article matching the glob patterns into a directory",
	Long: `batch expands each pattern (doublestar syntax, e.g. "papers/**/*.md"),
renders the reading companion into every supported article and writes
<name>.html files into --out-dir, keeping each file's directory relative
to the pattern's base. Files with unsupported extensions are skipped.
Inputs that would write the same output file are reported as failures.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("access") {
			cfg.Access = batchAccess
		}
		log := newLogger(cfg, cmd.ErrOrStderr())

		inputs, err := expandPatterns(args)
		if err != nil {
			return err
		}
		if len(inputs) == 0 {
			return fmt.Errorf("no supported articles match %s", strings.Join(args, " "))
		}
		if err := os.MkdirAll(batchOutDir, 0o755); err != nil {
			return fmt.Errorf("creating %s: %w", batchOutDir, err)
		}

		bar := progressbar.NewOptions(len(inputs),
			progressbar.OptionSetWriter(cmd.ErrOrStderr()),
			progressbar.OptionSetDescription("Rendering"),
			progressbar.OptionSetWidth(40),
			progressbar.OptionShowCount(),
			progressbar.OptionClearOnFinish(),
		)

		var failed []error
		claimed := map[string]string{}
		for _, in := range inputs {
			bar.Describe(filepath.Base(in.Path))
			if prev, ok := claimed[in.Out]; ok {
				err = fmt.Errorf("%s: output %s already written for %s", in.Path, in.Out, prev)
			} else {
				claimed[in.Out] = in.Path
				err = renderTo(in, batchOutDir, cfg, log)
			}
			if err != nil {
				log.Warn("render failed", "file", in.Path, "error", err)
				failed = append(failed, err)
			}
			_ = bar.Add(1)
		}
		_ = bar.Finish()

		log.Info("batch complete", "files", len(inputs), "failed", len(failed), "out_dir", batchOutDir)
		return errors.Join(failed...)
	},
}

// batchInput is a matched article and its output path relative to the
// output directory.
type batchInput struct {
	Path string
	Out  string
}

// expandPatterns returns the supported files matching patterns, without
// duplicates, in match order.
func expandPatterns(patterns []string) ([]batchInput, error) {
	seen := map[string]bool{}
	var inputs []batchInput
	for _, pattern := range patterns {
		matches, err := doublestar.FilepathGlob(pattern)
		if err != nil {
			return nil, fmt.Errorf("bad pattern %q: %w", pattern, err)
		}
		base, _ := doublestar.SplitPattern(filepath.ToSlash(pattern))
		for _, m := range matches {
			if seen[m] {
				continue
			}
			if _, err := article.FormatForFile(m); err != nil {
				continue
			}
			seen[m] = true
			inputs = append(inputs, batchInput{Path: m, Out: outputName(filepath.FromSlash(base), m)})
		}
	}
	return inputs, nil
}

// outputName maps path to <dir>/<name>.html, with dir relative to base.
// Paths outside base keep only their name.
func outputName(base, path string) string {
	name := article.TitleFromFilename(path) + ".html"
	rel, err := filepath.Rel(base, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return name
	}
	return filepath.Join(filepath.Dir(rel), name)
}

// renderTo renders in fully before creating its output, so a failed
// render leaves no file behind.
func renderTo(in batchInput, dir string, cfg config.Config, log *slog.Logger) error {
	var buf bytes.Buffer
	if _, err := renderFile(in.Path, cfg, log, &buf); err != nil {
		return err
	}
	path := filepath.Join(dir, in.Out)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", in.Out, err)
	}
	return nil
}

func init() {
	batchCmd.Flags().BoolVar(&batchAccess, "access", false, "include full size image links")
	batchCmd.Flags().StringVar(&batchOutDir, "out-dir", "companion-out", "output directory")
	rootCmd.AddCommand(batchCmd)
}
