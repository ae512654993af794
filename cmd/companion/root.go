package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/PuerkitoBio/goquery"
	"github.com/dgallion1/readcomp/internal/article"
	"github.com/dgallion1/readcomp/internal/config"
	"github.com/spf13/cobra"
)

var (
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "companion",
	Short: "Build reading companion panels for article pages",
	Long: `companion scans an article page for sections, figures and references
and renders the tabbed reading companion into the page's companion mount.
Markdown, PDF and DOCX articles are converted to companion-ready HTML first.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

// loadConfig reads the config file and env overrides.
func loadConfig() (config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

func newLogger(cfg config.Config, w io.Writer) *slog.Logger {
	level := cfg.Level()
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// openArticle loads path as HTML, Markdown, PDF or DOCX by extension.
func openArticle(path string) (*goquery.Document, error) {
	format, err := article.FormatForFile(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()
	return article.Load(f, format, article.TitleFromFilename(path))
}
