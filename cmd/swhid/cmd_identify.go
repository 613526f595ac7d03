package main

import (
	"fmt"
	"io"
	"path"
	"path/filepath"

	"github.com/odvcencio/swhid/pkg/config"
	"github.com/odvcencio/swhid/pkg/identify"
	"github.com/odvcencio/swhid/pkg/swhid"
	"github.com/spf13/cobra"
)

// identifyFlags override the matching config file settings when set.
type identifyFlags struct {
	recursive      bool
	exclude        []string
	followSymlinks bool
	decompress     string
}

func newIdentifyCmd(g *globalFlags) *cobra.Command {
	f := &identifyFlags{}
	cmd := &cobra.Command{
		Use:   "identify <path>...",
		Short: "Print the SWHID of files, symlinks and directories",
		Long: "Print \"<swhid>\\t<path>\" for each argument. A path of \"-\" reads content from stdin.\n" +
			"With --recursive every object below a directory is listed, children before parents.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := g.load(cmd)
			if err != nil {
				return err
			}
			f.apply(cmd, cfg)
			opts, err := cfg.Options(logger)
			if err != nil {
				return err
			}
			c, err := identify.NewComputer(opts...)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, arg := range args {
				if arg == "-" {
					data, err := io.ReadAll(cmd.InOrStdin())
					if err != nil {
						return fmt.Errorf("identify stdin: %w", err)
					}
					id, err := c.ComputeContent(data)
					if err != nil {
						return fmt.Errorf("identify stdin: %w", err)
					}
					fmt.Fprintf(out, "%s\t-\n", id)
					continue
				}

				if !f.recursive {
					id, err := c.Compute(arg)
					if err != nil {
						return fmt.Errorf("identify %s: %w", arg, err)
					}
					fmt.Fprintf(out, "%s\t%s\n", id, arg)
					continue
				}

				err := c.Walk(arg, func(rel string, id swhid.Identifier) error {
					_, err := fmt.Fprintf(out, "%s\t%s\n", id, displayPath(arg, rel))
					return err
				})
				if err != nil {
					return fmt.Errorf("identify %s: %w", arg, err)
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&f.recursive, "recursive", "r", false, "list every object below directory arguments")
	cmd.Flags().StringArrayVarP(&f.exclude, "exclude", "x", nil, "exclude entries whose name matches the glob (repeatable)")
	cmd.Flags().BoolVarP(&f.followSymlinks, "follow-symlinks", "L", false, "identify the target of a symlink argument instead of the link")
	cmd.Flags().StringVar(&f.decompress, "decompress", "", "decompress file arguments first: zstd, xz or auto")
	return cmd
}

func (f *identifyFlags) apply(cmd *cobra.Command, cfg *config.Config) {
	cfg.Exclude = append(cfg.Exclude, f.exclude...)
	if cmd.Flags().Changed("follow-symlinks") {
		cfg.FollowSymlinks = f.followSymlinks
	}
	if cmd.Flags().Changed("decompress") {
		cfg.Decompress = f.decompress
	}
}

// displayPath joins a walk-relative path onto the argument it came from.
func displayPath(root, rel string) string {
	if rel == "." {
		return root
	}
	return path.Join(filepath.ToSlash(root), rel)
}
