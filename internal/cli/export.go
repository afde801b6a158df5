package cli

import (
	"context"
	"io"
	"os"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/ayusman/mudra/internal/history"
)

func exportCommand() *cli.Command {
	var (
		opts   options
		output string
		limit  int64
	)

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "output",
			Aliases:     []string{"o"},
			Usage:       "Write CSV to this file (default: stdout)",
			Destination: &output,
		},
		&cli.IntFlag{
			Name:        "limit",
			Aliases:     []string{"n"},
			Usage:       "Export only the newest N entries (0 exports everything)",
			Destination: &limit,
		},
	}
	flags = append(flags, globalFlags(&opts)...)
	flags = append(flags, storeFlags(&opts)...)

	return &cli.Command{
		Name:  "export",
		Usage: "Export the archived history as CSV",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			cfg, err := opts.load(c)
			if err != nil {
				return err
			}
			ctx, _ = setupLogger(ctx, c, cfg)

			if cfg.Store.Path == "" {
				return goerr.New("history archive path is required")
			}
			if _, err := os.Stat(cfg.Store.Path); err != nil {
				return goerr.Wrap(err, "history archive not found", goerr.V("path", cfg.Store.Path))
			}

			st, err := openStore(cfg.Store.Path)
			if err != nil {
				return err
			}
			defer st.Close()

			var entries []history.Entry
			if limit > 0 {
				entries, err = st.History().Recent(ctx, int(limit))
			} else {
				entries, err = st.History().List(ctx)
			}
			if err != nil {
				return err
			}

			var w io.Writer = c.Root().Writer
			if output != "" {
				f, err := os.Create(output)
				if err != nil {
					return goerr.Wrap(err, "failed to create output", goerr.V("file", output))
				}
				defer f.Close()
				w = f
			}

			return history.WriteCSV(w, entries)
		},
	}
}
