package main

import (
	"fmt"

	"github.com/odvcencio/swhid/pkg/swhid"
	"github.com/spf13/cobra"
)

func newParseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "parse <swhid>...",
		Short: "Validate SWHIDs and print their components",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			for i, arg := range args {
				q, err := swhid.ParseQualified(arg)
				if err != nil {
					return fmt.Errorf("parse %q: %w", arg, err)
				}
				if i > 0 {
					fmt.Fprintln(out)
				}
				fmt.Fprintf(out, "swhid:    %s\n", q)
				fmt.Fprintf(out, "version:  %d\n", q.Core.Version())
				fmt.Fprintf(out, "type:     %s (%s)\n", q.Core.Kind(), q.Core.Kind().GitType())
				fmt.Fprintf(out, "digest:   %s\n", q.Core.Digest())
				if q.Origin != "" {
					fmt.Fprintf(out, "origin:   %s\n", q.Origin)
				}
				if q.Visit != nil {
					fmt.Fprintf(out, "visit:    %s\n", q.Visit)
				}
				if q.Anchor != nil {
					fmt.Fprintf(out, "anchor:   %s\n", q.Anchor)
				}
				if q.Path != "" {
					fmt.Fprintf(out, "path:     %s\n", q.Path)
				}
				if q.Lines != nil {
					fmt.Fprintf(out, "lines:    %s\n", q.Lines)
				}
			}
			return nil
		},
	}
}
