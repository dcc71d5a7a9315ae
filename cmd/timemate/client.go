package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"

	"timemate/internal/api"
	"timemate/internal/client"
	"timemate/internal/core/countdown"
	"timemate/internal/core/hms"
	"timemate/internal/core/model"
	"timemate/internal/preferences"
)

var getCmd = &cli.Command{
	Name:  "get",
	Usage: "print the current countdown",
	Flags: []cli.Flag{
		&cli.BoolFlag{Name: "json", Usage: "print the raw snapshot"},
	},
	Action: func(cctx *cli.Context) error {
		snapshot, err := newClient(cctx).Get(cctx.Context)
		if err != nil {
			return err
		}
		return printSnapshot(cctx, snapshot)
	},
}

var setInputCmd = &cli.Command{
	Name:      "set-input",
	Usage:     "set the countdown duration",
	ArgsUsage: "<HH:MM:SS>",
	Action: func(cctx *cli.Context) error {
		if cctx.Args().Len() != 1 {
			return errors.New("expected a single HH:MM:SS argument")
		}
		snapshot, err := newClient(cctx).SetInput(cctx.Context, cctx.Args().First())
		if err != nil {
			return err
		}
		return printSnapshot(cctx, snapshot)
	},
}

var startCmd = &cli.Command{
	Name:  "start",
	Usage: "start the countdown",
	Action: func(cctx *cli.Context) error {
		snapshot, err := newClient(cctx).Start(cctx.Context)
		if err != nil {
			return err
		}
		return printSnapshot(cctx, snapshot)
	},
}

var pauseCmd = &cli.Command{
	Name:  "pause",
	Usage: "pause the countdown",
	Action: func(cctx *cli.Context) error {
		snapshot, err := newClient(cctx).Pause(cctx.Context)
		if err != nil {
			return err
		}
		return printSnapshot(cctx, snapshot)
	},
}

var resetCmd = &cli.Command{
	Name:  "reset",
	Usage: "reset the countdown to its duration",
	Action: func(cctx *cli.Context) error {
		snapshot, err := newClient(cctx).Reset(cctx.Context)
		if err != nil {
			return err
		}
		return printSnapshot(cctx, snapshot)
	},
}

var watchCmd = &cli.Command{
	Name:  "watch",
	Usage: "print the countdown every time it changes",
	Action: func(cctx *cli.Context) error {
		ctx, stop := signal.NotifyContext(cctx.Context, os.Interrupt, syscall.SIGTERM)
		defer stop()

		return newClient(cctx).Watch(ctx, func(snapshot model.Snapshot) {
			fmt.Println(formatSnapshot(snapshot))
		})
	},
}

var presetsCmd = &cli.Command{
	Name:  "presets",
	Usage: "manage saved durations",
	Subcommands: []*cli.Command{
		{
			Name:  "list",
			Usage: "list presets",
			Action: func(cctx *cli.Context) error {
				list, err := newClient(cctx).Presets(cctx.Context)
				if err != nil {
					return err
				}
				for _, preset := range list {
					fmt.Printf("%s\t%s\t%s\t%s\n", preset.ID, preset.Duration, preset.Color, preset.Name)
				}
				return nil
			},
		},
		{
			Name:      "add",
			Usage:     "add a preset",
			ArgsUsage: "<name> <HH:MM:SS>",
			Flags: []cli.Flag{
				&cli.StringFlag{Name: "color", Usage: "palette colour, e.g. #60a5fa"},
			},
			Action: func(cctx *cli.Context) error {
				if cctx.Args().Len() != 2 {
					return errors.New("expected <name> <HH:MM:SS>")
				}
				preset, err := newClient(cctx).AddPreset(cctx.Context, api.PresetRequest{
					Name:     cctx.Args().Get(0),
					Duration: cctx.Args().Get(1),
					Color:    cctx.String("color"),
				})
				if err != nil {
					return err
				}
				fmt.Println(preset.ID)
				return nil
			},
		},
		{
			Name:      "rm",
			Usage:     "remove a preset",
			ArgsUsage: "<id>",
			Action: func(cctx *cli.Context) error {
				if cctx.Args().Len() != 1 {
					return errors.New("expected a preset id")
				}
				return newClient(cctx).RemovePreset(cctx.Context, cctx.Args().First())
			},
		},
		{
			Name:      "apply",
			Usage:     "set the countdown duration from a preset",
			ArgsUsage: "<id>",
			Action: func(cctx *cli.Context) error {
				if cctx.Args().Len() != 1 {
					return errors.New("expected a preset id")
				}
				snapshot, err := newClient(cctx).ApplyPreset(cctx.Context, cctx.Args().First())
				if err != nil {
					return err
				}
				return printSnapshot(cctx, snapshot)
			},
		},
	},
}

func newClient(cctx *cli.Context) *client.Client {
	addr := cctx.String("addr")
	if addr == "" {
		addr = preferences.DefaultSettings().ListenAddress
	}
	return client.New(addr, configLogger(cctx))
}

func printSnapshot(cctx *cli.Context, snapshot model.Snapshot) error {
	if cctx.Bool("json") {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(snapshot)
	}
	fmt.Println(formatSnapshot(snapshot))
	return nil
}

func formatSnapshot(snapshot model.Snapshot) string {
	return fmt.Sprintf("%s\t%s\tinput=%s", hms.Format(snapshot.Remaining), countdown.StateOf(snapshot), snapshot.Input)
}
