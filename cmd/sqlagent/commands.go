package main

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/petasbytes/sqlagent/internal/fsops"
	"github.com/petasbytes/sqlagent/memory"
	"github.com/petasbytes/sqlagent/tools"
)

func (a *app) schemaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schema [table]",
		Short: "List tables, or the columns of one table.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := a.openDB(cmd.Context())
			if err != nil {
				return err
			}
			defer db.Close()

			var table *string
			if len(args) == 1 {
				table = &args[0]
			}
			return printResult(cmd.OutOrStdout(), tools.GetSchema(cmd.Context(), db, table))
		},
	}
}

func (a *app) execCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "exec <sql>",
		Short: "Run one SQL statement and print the result.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := a.openDB(cmd.Context())
			if err != nil {
				return err
			}
			defer db.Close()

			query := strings.Join(args, " ")
			return printResult(cmd.OutOrStdout(), tools.ExecuteSQL(cmd.Context(), db, query, nil))
		},
	}
}

func (a *app) historyCmd() *cobra.Command {
	var last int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show answered questions and the SQL each one ran.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path := a.cfg.Agent.TranscriptPath
			if path == "" {
				return errors.New("transcript disabled: agent.transcript_path is empty")
			}
			entries, err := memory.LoadTranscript(path)
			if err != nil {
				return err
			}
			if last > 0 && len(entries) > last {
				entries = entries[len(entries)-last:]
			}
			if len(entries) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No questions recorded yet.")
				return nil
			}

			table := newTable(cmd.OutOrStdout(), "When", "Question", "State", "Queries")
			for _, e := range entries {
				table.Append([]string{
					humanize.Time(e.Time),
					e.Question,
					e.State,
					strings.Join(e.Queries, "\n"),
				})
			}
			table.Render()
			return nil
		},
	}
	cmd.Flags().IntVarP(&last, "last", "n", 0, "show only the newest n entries")
	return cmd
}

func (a *app) filesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "files",
		Short: "List CSV exports in the output directory.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			dir := a.cfg.Agent.OutputDir
			exports, err := fsops.ListExports(dir)
			if err != nil {
				return err
			}
			if len(exports) == 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "No exports in %s.\n", dir)
				return nil
			}

			table := newTable(cmd.OutOrStdout(), "File", "Size", "Bytes", "Modified")
			for _, e := range exports {
				table.Append([]string{
					filepath.Join(dir, e.Path),
					humanize.Bytes(uint64(e.Size)),
					strconv.FormatInt(e.Size, 10),
					humanize.Time(e.ModTime),
				})
			}
			table.Render()
			return nil
		},
	}
}

// printResult writes a tool result and turns an error result into a command error.
func printResult(w io.Writer, res tools.Result) error {
	fmt.Fprintln(w, res.Content)
	if res.IsError {
		return errors.New("statement failed")
	}
	return nil
}

func newTable(w io.Writer, header ...string) *tablewriter.Table {
	table := tablewriter.NewWriter(w)
	table.SetAutoWrapText(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_CENTER)
	table.SetAutoFormatHeaders(false)
	table.SetBorder(true)
	table.SetRowLine(true)
	table.SetHeader(header)
	return table
}
