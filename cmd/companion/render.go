package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/dgallion1/readcomp/internal/companion"
	"github.com/dgallion1/readcomp/internal/config"
	"github.com/dgallion1/readcomp/internal/model"
	"github.com/spf13/cobra"
)

var (
	renderAccess bool
	renderOutput string
)

var renderCmd = &cobra.Command{
	Use:   "render FILE",
	Short: "Render the reading companion into an article page",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("access") {
			cfg.Access = renderAccess
		}
		log := newLogger(cfg, cmd.ErrOrStderr())

		var out io.Writer = cmd.OutOrStdout()
		if renderOutput != "" && renderOutput != "-" {
			f, err := os.Create(renderOutput)
			if err != nil {
				return fmt.Errorf("creating %s: %w", renderOutput, err)
			}
			defer f.Close()
			out = f
		}

		m, err := renderFile(args[0], cfg, log, out)
		if err != nil {
			return err
		}
		log.Info("rendered",
			"file", args[0],
			"sections", len(m.Sections),
			"figures", len(m.Figures),
			"references", len(m.References),
		)
		return nil
	},
}

// renderFile builds the companion for the article at path and writes the
// resulting page to out.
func renderFile(path string, cfg config.Config, log *slog.Logger, out io.Writer) (model.Model, error) {
	doc, err := openArticle(path)
	if err != nil {
		return model.Model{}, err
	}
	pg, comp, err := companion.Build(doc, companion.Config{
		Access:                 cfg.Access,
		SupplementaryImageBase: cfg.SupplementaryImageBase,
	}, log)
	if err != nil {
		return model.Model{}, fmt.Errorf("%s: %w", path, err)
	}
	defer comp.Close()

	if err := pg.Render(out); err != nil {
		return model.Model{}, fmt.Errorf("writing page: %w", err)
	}
	return comp.Model(), nil
}

func init() {
	renderCmd.Flags().BoolVar(&renderAccess, "access", false, "include full size image links")
	renderCmd.Flags().StringVarP(&renderOutput, "output", "o", "", "output file (default stdout)")
	rootCmd.AddCommand(renderCmd)
}
