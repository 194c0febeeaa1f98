// cmd/deployctl/main.go
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/andresuchdata/sitedeploy/internal/config"
	"github.com/andresuchdata/sitedeploy/internal/deploy"
	"github.com/andresuchdata/sitedeploy/internal/domain"
	"github.com/andresuchdata/sitedeploy/pkg/logger"
	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"
)

func newEventFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:    "event",
		Aliases: []string{"e"},
		Usage:   "Path to a JSON invocation event, or - for stdin. Empty means no pipeline job",
	}
}

func main() {
	app := &cli.App{
		Name:  "deployctl",
		Usage: "Deploy a build artifact to the website bucket outside Lambda",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "env-file",
				Usage: "Load environment variables from this file before running",
			},
		},
		Before: func(c *cli.Context) error {
			if path := c.String("env-file"); path != "" {
				if err := godotenv.Load(path); err != nil {
					return fmt.Errorf("failed to load env file %s: %w", path, err)
				}
			}
			logCfg := config.LoadLogging("")
			logger.SetFormat(logCfg.Format)
			logger.SetLevel(logCfg.Level)
			return nil
		},
		Commands: []*cli.Command{
			{
				Name:  "run",
				Usage: "Run one deploy invocation",
				Flags: []cli.Flag{newEventFlag()},
				Action: func(c *cli.Context) error {
					event, err := readEvent(c.String("event"))
					if err != nil {
						return err
					}
					result, err := deploy.NewHandler().Run(c.Context, event)
					if err != nil {
						return cli.Exit(err.Error(), 1)
					}
					return printJSON(c.App.Writer, result)
				},
			},
			{
				Name:  "locate",
				Usage: "Print the artifact an invocation would deploy, without deploying it",
				Flags: []cli.Flag{newEventFlag()},
				Action: func(c *cli.Context) error {
					event, err := readEvent(c.String("event"))
					if err != nil {
						return err
					}
					location, err := deploy.NewHandler().Locate(c.Context, event)
					if err != nil {
						return cli.Exit(err.Error(), 1)
					}
					return printJSON(c.App.Writer, location)
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		logger.Log.Fatal().Err(err).Msg("deployctl failed")
	}
}

// readEvent decodes the event at path. "-" reads stdin and "" yields an
// event without a pipeline job.
func readEvent(path string) (domain.Event, error) {
	var event domain.Event
	if path == "" {
		return event, nil
	}

	var r io.Reader = os.Stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return event, fmt.Errorf("failed to open event file: %w", err)
		}
		defer f.Close()
		r = f
	}

	if err := json.NewDecoder(r).Decode(&event); err != nil {
		return event, fmt.Errorf("failed to decode event: %w", err)
	}
	return event, nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
