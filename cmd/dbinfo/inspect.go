package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/koustreak/dbinfo/internal/schema"
)

func newSchemaCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Print the current schema of the connection",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, s, err := opts.open(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close()

			name, err := s.inspector.FetchCurrentSchema(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), name)
			return nil
		},
	}
}

func newTablesCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "tables [schema]",
		Short: "List the tables of a schema (default: current schema)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, s, err := opts.open(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close()

			var schemaName string
			if len(args) == 1 {
				schemaName = args[0]
			}
			tables, err := s.inspector.FetchTableNames(ctx, schemaName)
			if err != nil {
				return err
			}
			for _, t := range tables {
				fmt.Fprintln(cmd.OutOrStdout(), t)
			}
			return nil
		},
	}
}

func newColumnsCmd(opts *globalOptions) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "columns <table>",
		Short: "Describe the columns of a table (schema.table or table)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, s, err := opts.open(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close()

			cols, err := s.inspector.FetchColumns(ctx, args[0])
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), cols)
			}
			return writeColumns(cmd.OutOrStdout(), cols)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of a table")
	return cmd
}

func newSequenceCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "sequence <table>",
		Short: "Print the sequence feeding the table's autoincrement column, if any",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, s, err := opts.open(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close()

			seq, err := s.inspector.FetchAutoincSequence(ctx, args[0])
			if err != nil {
				return err
			}
			if seq != "" {
				fmt.Fprintln(cmd.OutOrStdout(), seq)
			}
			return nil
		},
	}
}

// writeColumns renders cols as an aligned text table.
func writeColumns(w io.Writer, cols *schema.TableSchema) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tTYPE\tSIZE\tSCALE\tNOT NULL\tDEFAULT\tAUTOINC\tPRIMARY")
	for name, c := range cols.All() {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			name, c.Type, optInt(c.Size), optInt(c.Scale), yesNo(c.NotNull),
			optString(c.Default), yesNo(c.Autoinc), yesNo(c.Primary))
	}
	return tw.Flush()
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func optInt(p *int) string {
	if p == nil {
		return "-"
	}
	return strconv.Itoa(*p)
}

func optString(p *string) string {
	if p == nil {
		return "-"
	}
	return strconv.Quote(*p)
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
