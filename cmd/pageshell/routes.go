package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/simp-lee/pageshell/internal/route"
)

func routesCmd() *cobra.Command {
	var layout string

	cmd := &cobra.Command{
		Use:   "routes",
		Short: "Print the route table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			entries := route.Default().Entries()
			if layout != "" {
				l, err := route.ParseLayout(layout)
				if err != nil {
					return err
				}
				entries = route.Default().ByLayout(l)
			}
			return printRoutes(cmd.OutOrStdout(), entries)
		},
	}

	cmd.Flags().StringVarP(&layout, "layout", "l", "", "only list routes using this layout (main or auth)")
	return cmd
}

func printRoutes(w io.Writer, entries []route.Entry) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	if _, err := fmt.Fprintln(tw, "PATH\tLAYOUT\tCONTENT\tMODE\tTITLE"); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, e := range entries {
		if _, err := fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			e.Path, e.Layout.DisplayName(), e.Content, e.Mode, e.Title); err != nil {
			return fmt.Errorf("write row %s: %w", e.Path, err)
		}
	}
	return tw.Flush()
}
