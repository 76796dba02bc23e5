package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vmunix/vpress/internal/policy"
)

var policiesCmd = &cobra.Command{
	Use:   "policies",
	Short: "List compression policies and their ffmpeg argument fragments",
	Run: func(cmd *cobra.Command, args []string) {
		for _, c := range policy.Compressions() {
			fmt.Printf("%s\n", c)
			if c == policy.UserDefined {
				fmt.Println("  caller-supplied input/output fragments")
				continue
			}
			argSet := policy.Request{Compression: c}.Resolve()
			if argSet == nil {
				fmt.Println("  links the file unchanged; transcoder not invoked")
				continue
			}
			if argSet.Input != "" {
				fmt.Printf("  input:  %s\n", argSet.Input)
			}
			fmt.Printf("  output: %s\n", argSet.Output)
		}
	},
}

func init() {
	rootCmd.AddCommand(policiesCmd)
}
