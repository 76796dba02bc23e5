package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vmunix/vpress/internal/config"
	"github.com/vmunix/vpress/internal/history"
)

var (
	historyLimit int
	historyJSON  bool
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show past runs from the history database",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}
		if cfg.History.Path == "" {
			return fmt.Errorf("no history database configured (set history.path)")
		}

		db, err := history.Open(cfg.History.Path)
		if err != nil {
			return err
		}
		defer db.Close()

		runs, err := history.NewStore(db).ListRuns(historyLimit)
		if err != nil {
			return err
		}

		if historyJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(runs)
		}

		for _, r := range runs {
			fmt.Printf("#%d  %s  %s -> %s  policy=%s  parallel=%t  %s\n",
				r.ID, r.StartedAt.Format("2006-01-02 15:04:05"),
				r.InputRoot, r.OutputRoot, r.Policy, r.Parallel, r.Status)
			if r.Error != "" {
				fmt.Printf("    error: %s\n", r.Error)
			}
		}
		return nil
	},
}

func init() {
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "Maximum runs to show (0 = all)")
	historyCmd.Flags().BoolVar(&historyJSON, "json", false, "Output as JSON")

	rootCmd.AddCommand(historyCmd)
}
