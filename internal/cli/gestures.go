package cli

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/ayusman/mudra/internal/gesture"
)

func gesturesCommand() *cli.Command {
	var opts options

	return &cli.Command{
		Name:  "gestures",
		Usage: "List the classification rules in priority order",
		Flags: globalFlags(&opts),
		Action: func(ctx context.Context, c *cli.Command) error {
			cfg, err := opts.load(c)
			if err != nil {
				return err
			}

			classifier := gesture.NewClassifier(cfg.Classifier)
			w := c.Root().Writer
			for i, rule := range classifier.Rules() {
				fmt.Fprintf(w, "%d\t%s\t%s\n", i+1, rule.Name, rule.Gesture)
			}
			fmt.Fprintf(w, "-\tfallback\t%s\n", gesture.Unrecognized)
			return nil
		},
	}
}
