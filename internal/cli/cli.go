// Package cli implements the mudra command line.
package cli

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/ayusman/mudra/internal/logging"
)

type Error struct {
	Code    int
	Message string
}

// Run executes the command line given in argv.
func Run(ctx context.Context, argv []string) *Error {
	cmd := &cli.Command{
		Name:  "mudra",
		Usage: "Hand gesture recognition from hand landmarks",
		Commands: []*cli.Command{
			serveCommand(),
			classifyCommand(),
			exportCommand(),
			gesturesCommand(),
			hooksCommand(),
		},
	}

	if err := cmd.Run(ctx, argv); err != nil {
		logging.From(ctx).Error("command failed", "error", err)
		return &Error{
			Code:    1,
			Message: err.Error(),
		}
	}

	return nil
}
