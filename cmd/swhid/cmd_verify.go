package main

import (
	"fmt"

	"github.com/odvcencio/swhid/pkg/identify"
	"github.com/spf13/cobra"
)

func newVerifyCmd(g *globalFlags) *cobra.Command {
	var followSymlinks bool
	cmd := &cobra.Command{
		Use:   "verify <path> <swhid>",
		Short: "Check that a path has the given SWHID",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := g.load(cmd)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("follow-symlinks") {
				cfg.FollowSymlinks = followSymlinks
			}
			opts, err := cfg.Options(logger)
			if err != nil {
				return err
			}
			c, err := identify.NewComputer(opts...)
			if err != nil {
				return err
			}

			target, want := args[0], args[1]
			ok, err := c.Verify(target, want)
			if err != nil {
				return fmt.Errorf("verify %s: %w", target, err)
			}
			if !ok {
				actual, err := c.Compute(target)
				if err != nil {
					return fmt.Errorf("verify %s: %w", target, err)
				}
				return fmt.Errorf("verify %s: mismatch: got %s, want %s", target, actual, want)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "ok: %s %s\n", want, target)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&followSymlinks, "follow-symlinks", "L", false, "verify the target of a symlink argument instead of the link")
	return cmd
}
