package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/ayusman/mudra/internal/hook"
)

func hooksCommand() *cli.Command {
	var (
		opts options
		dir  string
	)

	flags := globalFlags(&opts)
	flags = append(flags, &cli.StringFlag{
		Name:        "hooks-dir",
		Usage:       "Directory of gesture hooks",
		Sources:     cli.EnvVars("MUDRA_HOOKS_DIR"),
		Destination: &dir,
	})

	return &cli.Command{
		Name:  "hooks",
		Usage: "List the gesture hooks found in the hooks directory",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			cfg, err := opts.load(c)
			if err != nil {
				return err
			}
			if c.IsSet("hooks-dir") {
				cfg.Hooks.Dir = dir
			}
			ctx, _ = setupLogger(ctx, c, cfg)

			m := hook.NewManager(cfg.Hooks.Dir)
			if err := m.Discover(ctx); err != nil {
				return err
			}

			w := c.Root().Writer
			for _, h := range m.List() {
				fmt.Fprintf(w, "%s\t%s\t%s\n",
					h.Manifest.Name,
					strings.Join(h.Manifest.Gestures, ","),
					h.Manifest.Description,
				)
			}
			return nil
		},
	}
}
