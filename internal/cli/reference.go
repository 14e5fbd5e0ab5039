package cli

import (
	"errors"
	"strconv"

	"climbing/logbook/internal/tui"

	"github.com/spf13/cobra"
)

func newGradesCommand(a *app) *cobra.Command {
	var company, climbType string

	cmd := &cobra.Command{
		Use:   "grades",
		Short: "List the grades a company uses for a climb type",
		RunE: func(cmd *cobra.Command, args []string) error {
			if company == "" || climbType == "" {
				return errors.New("--company and --type are required")
			}

			grades, err := a.client.ListGrades(cmd.Context(), company, climbType)
			if err != nil {
				return err
			}

			rows := make([][]string, 0, len(grades))
			for _, g := range grades {
				rows = append(rows, []string{g.Grade, strconv.Itoa(g.GradeOrder)})
			}
			printTable(a.out, []string{"Grade", "Order"}, rows)
			return nil
		},
	}

	cmd.Flags().StringVar(&company, "company", "", "climbing company")
	cmd.Flags().StringVar(&climbType, "type", "", "climb type, e.g. Boulder")
	return cmd
}

func newActivityCommand(a *app) *cobra.Command {
	var count int

	cmd := &cobra.Command{
		Use:   "activity",
		Short: "Show recent activity across the logbook",
		RunE: func(cmd *cobra.Command, args []string) error {
			activity, err := a.client.ListActivity(cmd.Context(), count)
			if err != nil {
				return err
			}

			rows := make([][]string, 0, len(activity))
			for _, e := range activity {
				rows = append(rows, []string{e.At.Local().Format("2006-01-02 15:04"), e.Username, e.Summary})
			}
			printTable(a.out, []string{"When", "Who", "What"}, rows)
			return nil
		},
	}

	cmd.Flags().IntVarP(&count, "count", "n", 20, "number of entries")
	return cmd
}

func newBrowseCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "browse",
		Short: "Browse locations and routes interactively",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := a.requireUser(); err != nil {
				return err
			}
			return tui.Run(cmd.Context(), a.client)
		},
	}
}
