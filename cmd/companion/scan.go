package main

import (
	"encoding/json"

	"github.com/dgallion1/readcomp/internal/model"
	"github.com/dgallion1/readcomp/internal/scanner"
	"github.com/spf13/cobra"
)

// scanResult is the JSON summary printed by scan.
type scanResult struct {
	Tabbed  bool        `json:"tabbed"`
	Initial string      `json:"initial_tab,omitempty"`
	Tabs    []string    `json:"tabs"`
	Model   model.Model `json:"model"`
}

var scanAccess bool

var scanCmd = &cobra.Command{
	Use:   "scan FILE",
	Short: "Print the sections, figures and references found in an article",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		doc, err := openArticle(args[0])
		if err != nil {
			return err
		}

		m := scanner.Scan(doc, scanner.Options{
			Access:                 scanAccess || cfg.Access,
			SupplementaryImageBase: cfg.SupplementaryImageBase,
		})
		res := scanResult{Tabbed: m.Tabbed(), Tabs: []string{}, Model: m}
		if state, ok := model.InitialTabState(m); ok {
			res.Initial = state.Active.String()
			if m.Tabbed() {
				for _, c := range state.Order {
					res.Tabs = append(res.Tabs, c.String())
				}
			}
		}

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	},
}

func init() {
	scanCmd.Flags().BoolVar(&scanAccess, "access", false, "report full size image links")
	rootCmd.AddCommand(scanCmd)
}
