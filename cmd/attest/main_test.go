package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
)

func askTestApp() *cli.App {
	return &cli.App{
		Name: "attest",
		Commands: []*cli.Command{
			{
				Name:   "ask",
				Action: askCommand,
				Flags: []cli.Flag{
					&cli.StringSliceFlag{
						Name:     "doc",
						Aliases:  []string{"f"},
						Required: true,
					},
					&cli.StringFlag{
						Name:    "data",
						Aliases: []string{"d"},
						Value:   ".attest",
					},
					&cli.IntFlag{
						Name:  "max-iterations",
						Value: 3,
					},
				},
			},
		},
	}
}

func TestAskCommandValidation(t *testing.T) {
	t.Run("missing doc flag fails", func(t *testing.T) {
		err := askTestApp().Run([]string{"attest", "ask", "a question"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "doc")
	})

	t.Run("missing question fails", func(t *testing.T) {
		err := askTestApp().Run([]string{"attest", "ask", "--doc", "contract.pdf"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "question")
	})
}

func TestSetupLogger(t *testing.T) {
	newApp := func() *cli.App {
		return &cli.App{
			Name: "test",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:  "log-level",
					Value: "info",
				},
			},
			Before: setupLogger,
			Action: func(c *cli.Context) error { return nil },
		}
	}

	t.Run("valid log levels", func(t *testing.T) {
		for _, level := range []string{"debug", "info", "warn", "error", "DEBUG", "WaRn"} {
			t.Run(level, func(t *testing.T) {
				err := newApp().Run([]string{"test", "--log-level", level})
				require.NoError(t, err)
			})
		}
	})

	t.Run("invalid log level returns error", func(t *testing.T) {
		err := newApp().Run([]string{"test", "--log-level", "verbose"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid log level")
	})
}
