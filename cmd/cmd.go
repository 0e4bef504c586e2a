// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

func formatFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "format",
			Aliases: []string{"f"},
			Usage:   "Output format: text, csv or md",
			Value:   "text",
		},
		&cli.BoolFlag{
			Name:  "json",
			Usage: "Output raw JSON",
		},
		&cli.BoolFlag{
			Name:  "pretty",
			Usage: "Pretty-print JSON output",
			Value: true,
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Write the output to a file",
		},
	}
}

func sheetFlag() cli.Flag {
	return &cli.StringFlag{
		Name:     "id",
		Usage:    "Spreadsheet ID",
		Required: true,
	}
}

// setupCommand handles setup operations for configuration and database.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Create the config file, initialize the database and run migrations",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				Value:   defaultConfigPath,
			},
			&cli.BoolFlag{
				Name:  "rollback",
				Usage: "Revert the most recent database migration instead of applying pending ones",
			},
		},
		Action: r.Setup,
	}
}

// authCommand handles sign-in operations
func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Manage the Google sign-in",
		Commands: []*cli.Command{
			{
				Name:   "login",
				Usage:  "Sign in with Google in the browser",
				Action: r.AuthLogin,
			},
			{
				Name:   "logout",
				Usage:  "Sign out and forget the stored token and profile",
				Action: r.AuthLogout,
			},
			{
				Name:   "status",
				Usage:  "Show the signed-in identity and check the backend heartbeat",
				Action: r.AuthStatus,
			},
		},
	}
}

// filesCommand lists recent sheets
func filesCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "files",
		Aliases: []string{"ls"},
		Usage:   "List recently modified Floody sheets",
		Flags:   formatFlags(),
		Action:  r.Files,
	}
}

func profilesCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "profiles",
		Usage:  "List Campaign Manager profiles",
		Flags:  formatFlags(),
		Action: r.Profiles,
	}
}

func accountsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "accounts",
		Usage: "List the accounts of a profile",
		Flags: append(formatFlags(),
			&cli.StringFlag{
				Name:  "profile",
				Usage: "Profile ID (defaults to the stored profile)",
			},
		),
		Action: r.Accounts,
	}
}

func configsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "configs",
		Usage: "List the floodlight configurations of an account",
		Flags: append(formatFlags(),
			&cli.StringFlag{
				Name:  "profile",
				Usage: "Profile ID (defaults to the stored profile)",
			},
			&cli.StringFlag{
				Name:     "account",
				Usage:    "Account ID",
				Required: true,
			},
		),
		Action: r.Configs,
	}
}

// createCommand creates a sheet for a profile, account and floodlight configuration
func createCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "create",
		Usage: "Create a new Floody sheet",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "profile",
				Usage:    "Profile ID",
				Required: true,
			},
			&cli.StringFlag{
				Name:  "account",
				Usage: "Account ID (defaults to the profile's first account)",
			},
			&cli.StringFlag{
				Name:     "config",
				Usage:    "Floodlight configuration ID",
				Required: true,
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
		},
		Action: r.Create,
	}
}

// sheetCommand handles manage page operations
func sheetCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "sheet",
		Usage: "Manage a Floody sheet",
		Commands: []*cli.Command{
			{
				Name:  "auth",
				Usage: "Check your access to the sheet and its CM account",
				Flags: []cli.Flag{
					sheetFlag(),
					&cli.BoolFlag{Name: "json", Usage: "Output raw JSON"},
				},
				Action: r.SheetAuth,
			},
			{
				Name:  "share",
				Usage: "Share the sheet with users and groups",
				Flags: []cli.Flag{
					sheetFlag(),
					&cli.StringSliceFlag{
						Name:  "user",
						Usage: "User email (repeatable or comma separated)",
					},
					&cli.StringSliceFlag{
						Name:  "group",
						Usage: "Group email (repeatable or comma separated)",
					},
				},
				Action: r.SheetShare,
			},
			{
				Name:   "export",
				Usage:  "Push the sheet's activities to Campaign Manager",
				Flags:  []cli.Flag{sheetFlag()},
				Action: r.SheetExport,
			},
			{
				Name:   "import",
				Usage:  "Refresh the sheet from Campaign Manager",
				Flags:  []cli.Flag{sheetFlag()},
				Action: r.SheetImport,
			},
			{
				Name:   "add-rows",
				Usage:  "Append 100 rows to the sheet",
				Flags:  []cli.Flag{sheetFlag()},
				Action: r.SheetAddRows,
			},
			{
				Name:  "rename",
				Usage: "Rename the sheet",
				Flags: []cli.Flag{
					sheetFlag(),
					&cli.StringFlag{
						Name:     "title",
						Usage:    "New title",
						Required: true,
					},
				},
				Action: r.SheetRename,
			},
		},
	}
}

// gtmCommand handles the GTM approval flow
func gtmCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "gtm",
		Usage: "Request, review, approve and reject GTM exports",
		Commands: []*cli.Command{
			{
				Name:  "request",
				Usage: "Ask approvers to push a sheet's activities to a GTM container",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "sheet",
						Usage:    "Spreadsheet ID",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "container",
						Usage:    "GTM container ID",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "message",
						Usage: "Message to the approvers",
					},
					&cli.StringSliceFlag{
						Name:     "approver",
						Usage:    "Approver email (repeatable or comma separated)",
						Required: true,
					},
					&cli.BoolFlag{Name: "json", Usage: "Output raw JSON"},
				},
				Action: r.GtmRequest,
			},
			{
				Name:  "show",
				Usage: "Show a GTM request",
				Flags: append(formatFlags(),
					&cli.StringFlag{
						Name:     "id",
						Usage:    "GTM request ID",
						Required: true,
					},
				),
				Action: r.GtmShow,
			},
			gtmActionCommand(r, "approve", "Approve a GTM request"),
			gtmActionCommand(r, "reject", "Reject a GTM request (requires --comment)"),
		},
	}
}

func gtmActionCommand(r *Runner, name, usage string) *cli.Command {
	return &cli.Command{
		Name:  name,
		Usage: usage,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "id",
				Usage:    "GTM request ID",
				Required: true,
			},
			&cli.StringFlag{
				Name:  "comment",
				Usage: "Comment for the requester",
			},
			&cli.BoolFlag{Name: "json", Usage: "Output raw JSON"},
		},
		Action: r.GtmAction,
	}
}

// tuiCommand returns the top-level TUI command.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "tui",
		Aliases: []string{"interactive", "ui"},
		Usage:   "Launch the interactive client",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "sheet",
				Usage: "Open the manage page of a spreadsheet",
			},
			&cli.StringFlag{
				Name:  "gtm",
				Usage: "Open a GTM request",
			},
		},
		Action: r.TUI,
	}
}
