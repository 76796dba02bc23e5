package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vmunix/vpress/internal/config"
	"github.com/vmunix/vpress/internal/history"
	"github.com/vmunix/vpress/internal/job"
	"github.com/vmunix/vpress/internal/transcode"
)

var (
	runInput    string
	runOutput   string
	runSerial   bool
	runParallel bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a compression job from the settings file",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}

		// Flags override the settings file.
		if runInput != "" {
			cfg.Job.Input = runInput
		}
		if runOutput != "" {
			cfg.Job.Output = runOutput
		}
		if runSerial {
			cfg.Job.Parallel = false
		}
		if runParallel {
			cfg.Job.Parallel = true
		}
		if err := cfg.Validate(); err != nil {
			return err
		}

		log := newLogger(cfg.Log.Level)

		j := &job.Job{
			InputRoot:   cfg.Job.Input,
			OutputRoot:  cfg.Job.Output,
			Compression: cfg.Compression.Request(),
			Overrides:   cfg.PolicyOverrides(),
			Parallel:    cfg.Job.Parallel,
			Workers:     cfg.Job.Workers,
			Threads:     cfg.Job.Threads,
			Transcoder:  transcode.NewFFmpeg(cfg.FFmpeg.Binary, log),
			Log:         log,
		}

		if cfg.History.Path != "" {
			db, err := history.Open(cfg.History.Path)
			if err != nil {
				return err
			}
			defer db.Close()
			j.History = history.NewStore(db)
		}

		resp, err := j.Run(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Println(resp.Message)
		return nil
	},
}

func init() {
	runCmd.Flags().StringVar(&runInput, "input", "", "Input directory (overrides settings file)")
	runCmd.Flags().StringVar(&runOutput, "output", "", "Output directory (overrides settings file)")
	runCmd.Flags().BoolVar(&runSerial, "serial", false, "Process tasks one at a time")
	runCmd.Flags().BoolVar(&runParallel, "parallel", false, "Process tasks in parallel")
	runCmd.MarkFlagsMutuallyExclusive("serial", "parallel")

	rootCmd.AddCommand(runCmd)
}
