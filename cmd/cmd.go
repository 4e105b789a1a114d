// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

// setupCommand handles setup operations for the database.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:   "database",
				Usage:  "Create the config file if absent, initialize the database and run migrations",
				Action: r.SetupDatabase,
			},
		},
	}
}

// importCommand handles the dump and reference feed imports.
func importCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "import",
		Usage: "Import data into the store",
		Commands: []*cli.Command{
			{
				Name:  "dump",
				Usage: "Import a section-delimited export dump",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "path"},
				},
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "workers",
						Usage: "Concurrent trip group writers (default: import.workers)",
					},
					&cli.BoolFlag{
						Name:  "progress",
						Usage: "Show a live progress view",
					},
					summaryJSONFlag(),
				},
				Action: r.ImportDump,
			},
			{
				Name:  "airports",
				Usage: "Import the comma-separated airport directory",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "path"},
				},
				Flags:  []cli.Flag{summaryJSONFlag()},
				Action: r.ImportAirports,
			},
			{
				Name:    "aircraft",
				Aliases: []string{"airplanes"},
				Usage:   "Import the tab-separated aircraft type feed",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "path"},
				},
				Flags:  []cli.Flag{summaryJSONFlag()},
				Action: r.ImportAircraft,
			},
			{
				Name:   "all",
				Usage:  "Import the dump and both reference feeds from the paths in [sources]",
				Action: r.ImportAll,
			},
		},
	}
}

// runsCommand inspects the import run ledger.
func runsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "runs",
		Usage: "Inspect past import runs",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List import runs, newest first",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "kind",
						Usage: "Only runs of this kind (dump, airports, aircraft)",
					},
					&cli.StringFlag{
						Name:  "status",
						Usage: "Only runs with this status (running, completed, failed)",
					},
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of runs to return",
						Value: 20,
					},
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Usage:   "Output format: text, csv, markdown, json",
						Value:   "text",
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Shorthand for --format json",
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Write the report to a file instead of stdout",
					},
				},
				Action: r.RunsList,
			},
		},
	}
}

func summaryJSONFlag() cli.Flag {
	return &cli.BoolFlag{
		Name:  "json",
		Usage: "Output the summary as JSON",
	}
}
