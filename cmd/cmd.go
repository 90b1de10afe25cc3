// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

func jsonFlag() cli.Flag {
	return &cli.BoolFlag{
		Name:  "json",
		Usage: "Output JSON",
	}
}

func formatFlag(value string) cli.Flag {
	return &cli.StringFlag{
		Name:    "format",
		Aliases: []string{"f"},
		Usage:   "Output format: txt, json, csv, markdown",
		Value:   value,
	}
}

// addUserCommand authorizes a new account
func addUserCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "adduser",
		Usage:     "Authorize a Spotify account and store it under an alias",
		ArgsUsage: "[alias]",
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "alias"},
		},
		Action: r.AddUser,
	}
}

func rmUserCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "rmuser",
		Usage:     "Remove a stored account",
		ArgsUsage: "<alias>",
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "alias"},
		},
		Action: r.RemoveUser,
	}
}

func usersCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "users",
		Usage:  "List stored accounts, refreshing expired tokens",
		Flags:  []cli.Flag{jsonFlag()},
		Action: r.Users,
	}
}

func delUsersCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "delusers",
		Usage: "Remove every stored account",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "yes",
				Aliases: []string{"y"},
				Usage:   "Skip the confirmation prompt",
			},
		},
		Action: r.DeleteUsers,
	}
}

func configCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "config",
		Usage:  "Show where credentials and settings are stored",
		Flags:  []cli.Flag{jsonFlag()},
		Action: r.Config,
	}
}

// likedCommand prints an account's liked songs
func likedCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "liked",
		Usage:     "Print an account's liked songs, newest first",
		ArgsUsage: "<alias>",
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "alias"},
		},
		Flags:  []cli.Flag{formatFlag("txt")},
		Action: r.Liked,
	}
}

// copyCommand copies a playlist between accounts
func copyCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:        "copy",
		Usage:       "Copy one of the source account's playlists to the destination account",
		ArgsUsage:   "<source> <dest> [name|liked]",
		Description: "Passing \"liked\" as the name replaces the destination's liked songs instead of creating a playlist.",
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "source"},
			&cli.StringArg{Name: "dest"},
			&cli.StringArg{Name: "name"},
		},
		Action: r.Copy,
	}
}

func searchCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "search",
		Usage:     "Search the catalog for tracks, albums, artists or playlists",
		ArgsUsage: "<track|album|artist|playlist> <query...>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "account",
				Aliases: []string{"a"},
				Usage:   "Account to search with (default: first stored account)",
			},
		},
		Action: r.Search,
	}
}

// snapshotCommand handles local playlist backups
func snapshotCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "snapshot",
		Usage: "Save, inspect and restore playlist snapshots",
		Commands: []*cli.Command{
			{
				Name:      "save",
				Usage:     "Pick a playlist and save it to a JSON file",
				ArgsUsage: "<alias> <file>",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "alias"},
					&cli.StringArg{Name: "file"},
				},
				Action: r.SnapshotSave,
			},
			{
				Name:      "show",
				Usage:     "Render a snapshot file",
				ArgsUsage: "<file>",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "file"},
				},
				Flags:  []cli.Flag{formatFlag("txt")},
				Action: r.SnapshotShow,
			},
			{
				Name:      "restore",
				Usage:     "Create a playlist on an account from a snapshot file",
				ArgsUsage: "<file> <alias>",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "file"},
					&cli.StringArg{Name: "alias"},
				},
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "name",
						Usage: "Name for the restored playlist (default: the snapshot's name)",
					},
				},
				Action: r.SnapshotRestore,
			},
			{
				Name:      "export",
				Usage:     "Write every playlist of an account to a directory",
				ArgsUsage: "<alias>",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "alias"},
				},
				Flags: []cli.Flag{
					formatFlag("json"),
					&cli.StringFlag{
						Name:    "dir",
						Aliases: []string{"o"},
						Usage:   "Output directory (default: spotimine_export_<epoch>)",
					},
					&cli.BoolFlag{
						Name:  "liked",
						Usage: "Include liked songs",
					},
				},
				Action: r.SnapshotExport,
			},
		},
	}
}

func historyCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "List recent copy operations",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "limit",
				Aliases: []string{"n"},
				Usage:   "Maximum number of entries",
				Value:   20,
			},
			&cli.StringFlag{
				Name:  "status",
				Usage: "Only show running, completed or failed copies",
			},
			&cli.StringFlag{
				Name:  "account",
				Usage: "Only show copies into this account",
			},
			jsonFlag(),
		},
		Action: r.History,
	}
}

func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Write a default settings file and initialize the copy journal",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "rollback",
				Usage: "Roll back the latest journal migration",
			},
		},
		Action: r.Setup,
	}
}

func shellCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "shell",
		Usage:  "Run commands interactively until 'exit'",
		Action: r.Shell,
	}
}
