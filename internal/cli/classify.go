package cli

import (
	"context"
	"encoding/json"
	"io"
	"os"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/ayusman/mudra/internal/distance"
	"github.com/ayusman/mudra/internal/gesture"
	"github.com/ayusman/mudra/internal/history"
	"github.com/ayusman/mudra/internal/recognizer"
)

// frameInput is the document read by classify; it matches POST /api/detect.
type frameInput struct {
	Width  int                    `json:"width"`
	Height int                    `json:"height"`
	Hands  []recognizer.HandInput `json:"hands"`
}

func classifyCommand() *cli.Command {
	var (
		opts   options
		input  string
		width  int64
		height int64
	)

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "input",
			Aliases:     []string{"i"},
			Usage:       "Path to JSON landmarks document (default: stdin)",
			Destination: &input,
		},
		&cli.IntFlag{
			Name:        "width",
			Usage:       "Frame width in pixels, overrides the document",
			Destination: &width,
		},
		&cli.IntFlag{
			Name:        "height",
			Usage:       "Frame height in pixels, overrides the document",
			Destination: &height,
		},
	}
	flags = append(flags, globalFlags(&opts)...)

	return &cli.Command{
		Name:  "classify",
		Usage: "Classify hand landmarks from a JSON document",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			cfg, err := opts.load(c)
			if err != nil {
				return err
			}
			ctx, _ = setupLogger(ctx, c, cfg)

			var r io.Reader = c.Root().Reader
			if input != "" {
				f, err := os.Open(input)
				if err != nil {
					return goerr.Wrap(err, "failed to open input", goerr.V("file", input))
				}
				defer f.Close()
				r = f
			}
			if r == nil {
				r = os.Stdin
			}

			var doc frameInput
			if err := json.NewDecoder(r).Decode(&doc); err != nil {
				return goerr.Wrap(err, "failed to parse landmarks document")
			}
			if c.IsSet("width") {
				doc.Width = int(width)
			}
			if c.IsSet("height") {
				doc.Height = int(height)
			}

			rec := recognizer.New(
				gesture.NewClassifier(cfg.Classifier),
				distance.NewEstimator(cfg.Distance),
				history.NewRecorder(1),
			)
			res, err := rec.ProcessInput(ctx, doc.Hands, doc.Width, doc.Height)
			if err != nil {
				return err
			}

			enc := json.NewEncoder(c.Root().Writer)
			enc.SetIndent("", "  ")
			return enc.Encode(res)
		},
	}
}
