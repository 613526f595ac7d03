package main

import (
	"fmt"
	"io"

	"github.com/odvcencio/swhid/pkg/identify"
	"github.com/odvcencio/swhid/pkg/object"
	"github.com/spf13/cobra"
)

func newLsTreeCmd(g *globalFlags) *cobra.Command {
	var (
		exclude []string
		payload bool
	)
	cmd := &cobra.Command{
		Use:   "ls-tree <dir|->",
		Short: "List the tree entries of a directory in canonical order",
		Long: "List the tree entries of a directory in git ls-tree layout.\n" +
			"With \"-\" a raw tree payload (as written by --payload) is read from stdin instead.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if args[0] == "-" {
				data, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return fmt.Errorf("ls-tree stdin: %w", err)
				}
				tr, err := object.UnmarshalTree(data)
				if err != nil {
					return fmt.Errorf("ls-tree stdin: %w", err)
				}
				if payload {
					raw, err := object.MarshalTree(tr)
					if err != nil {
						return err
					}
					_, err = out.Write(raw)
					return err
				}
				return writeTreeListing(out, tr.Entries)
			}

			cfg, logger, err := g.load(cmd)
			if err != nil {
				return err
			}
			cfg.Exclude = append(cfg.Exclude, exclude...)
			opts, err := cfg.Options(logger)
			if err != nil {
				return err
			}

			d, err := identify.DirectoryFromDisk(args[0], opts...)
			if err != nil {
				return fmt.Errorf("ls-tree %s: %w", args[0], err)
			}
			if payload {
				raw, err := d.Payload()
				if err != nil {
					return err
				}
				_, err = out.Write(raw)
				return err
			}
			return writeTreeListing(out, d.Entries())
		},
	}
	cmd.Flags().StringArrayVarP(&exclude, "exclude", "x", nil, "exclude entries whose name matches the glob (repeatable)")
	cmd.Flags().BoolVar(&payload, "payload", false, "write the raw tree payload instead of a listing")
	return cmd
}

// writeTreeListing prints entries in git ls-tree layout.
func writeTreeListing(w io.Writer, entries []object.TreeEntry) error {
	for _, e := range entries {
		mode := string(e.Mode())
		if len(mode) < 6 {
			mode = "0" + mode
		}
		if _, err := fmt.Fprintf(w, "%s %s %s\t%s\n", mode, e.Kind.ObjectType(), e.Target, e.Name); err != nil {
			return err
		}
	}
	return nil
}
