// Package ui implements the interactive terminal surface of the CLI.
//
// A [Prompter] asks the user to pick a playlist, confirm destructive operations, enter text,
// and watch long-running tasks:
//  1. [Terminal] : bubbletea programs (a filterable bubbles/list picker and a bubbles/progress
//     bar fed from a [tasks.ProgressUpdate] channel) and huh forms
//  2. [Plain] : numbered lists and line input, used when stdin is not a terminal
//
// [Printer] writes the "[INFO]", "Warning:" and "Error:" prefixed lines styled with lipgloss.
package ui
