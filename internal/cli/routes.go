package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"climbing/logbook/internal/domain"

	"github.com/spf13/cobra"
)

func newRoutesCommand(a *app) *cobra.Command {
	var loc locationFlags

	cmd := &cobra.Command{
		Use:   "routes",
		Short: "List the routes set at a location",
		Long: `List the routes set at a location.

Tiers missing from the flags are asked for one by one; a tier with a single
option is chosen automatically.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := a.requireUser(); err != nil {
				return err
			}

			key, sel, err := a.resolve(cmd.Context(), loc)
			if err != nil {
				return err
			}
			defer sel.Close()

			routes, err := sel.FetchRoutes(cmd.Context())
			if err != nil {
				return err
			}

			a.printf("%s › %s › %s › %s\n", key.Company, key.Gym, key.ClimbType, key.Location)
			printTable(a.out, routeHeader, routeRows(routes))
			return nil
		},
	}

	loc.register(cmd)
	return cmd
}

var routeHeader = []string{"RID", "Grade", "Colour", "Holds", "Set"}

func routeRows(routes []domain.Route) [][]string {
	rows := make([][]string, 0, len(routes))
	for _, r := range routes {
		holds := ""
		if r.NumberHolds > 0 {
			holds = strconv.Itoa(r.NumberHolds)
		}
		set := ""
		if !r.CreationDate.IsZero() {
			set = r.CreationDate.Format("2006-01-02")
		}
		rows = append(rows, []string{strconv.FormatInt(r.RID, 10), r.Grade, r.Colour, holds, set})
	}
	return rows
}

func newAddRouteCommand(a *app) *cobra.Command {
	var (
		loc   locationFlags
		route domain.NewRoute
	)

	cmd := &cobra.Command{
		Use:   "add-route",
		Short: "Add a route at a location",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := a.requireUser(); err != nil {
				return err
			}

			ctx := cmd.Context()
			key, sel, err := a.resolve(ctx, loc)
			if err != nil {
				return err
			}
			sel.Close()

			if route.Grade == "" {
				if route.Grade, err = a.pickGrade(ctx, key); err != nil {
					return err
				}
			}
			if route.Colour == "" && a.picker != nil {
				if route.Colour, err = a.pickColour(ctx, key.Company); err != nil {
					return err
				}
			}

			route.CompanyName = key.Company
			route.Suburb = key.Gym
			route.ClimbType = key.ClimbType
			route.Location = key.Location

			message, err := a.client.AddRoutes(ctx, []domain.NewRoute{route})
			if err != nil {
				return err
			}
			a.success("%s", message)
			return nil
		},
	}

	loc.register(cmd)
	cmd.Flags().StringVar(&route.Grade, "grade", "", "grade, e.g. V4")
	cmd.Flags().StringVar(&route.Colour, "colour", "", "hold colour")
	cmd.Flags().IntVar(&route.NumberHolds, "holds", 0, "number of holds")
	cmd.Flags().StringVar(&route.CreationDate, "date", "", "set date, YYYY-MM-DD (default today)")
	return cmd
}

func (a *app) pickGrade(ctx context.Context, key domain.LocationKey) (string, error) {
	if a.picker == nil {
		return "", errors.New("--grade is required")
	}
	grades, err := a.client.ListGrades(ctx, key.Company, key.ClimbType)
	if err != nil {
		return "", err
	}
	if len(grades) == 0 {
		return "", fmt.Errorf("no grades known for %s %s", key.Company, key.ClimbType)
	}
	options := make([]string, 0, len(grades))
	for _, g := range grades {
		options = append(options, g.Grade)
	}
	return a.picker.Select("Grade", options)
}

func (a *app) pickColour(ctx context.Context, company string) (string, error) {
	colours, err := a.client.ListColours(ctx, company)
	if err != nil {
		return "", err
	}
	if len(colours) == 0 {
		return a.picker.Input("Colour", false)
	}
	options := make([]string, 0, len(colours))
	for _, c := range colours {
		options = append(options, c.Colour)
	}
	return a.picker.Select("Colour", options)
}

func newArchiveRouteCommand(a *app) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "archive-route RID",
		Short: "Archive a route that has been stripped",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rid, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil || rid <= 0 {
				return fmt.Errorf("invalid route id %q", args[0])
			}
			if _, err := a.requireUser(); err != nil {
				return err
			}

			if !yes && a.picker != nil {
				ok, err := a.picker.Confirm(fmt.Sprintf("Archive route %d?", rid))
				if err != nil {
					return err
				}
				if !ok {
					return nil
				}
			}

			if err := a.client.ArchiveRoute(cmd.Context(), rid); err != nil {
				return err
			}
			a.success("Route %d archived", rid)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip confirmation")
	return cmd
}
