package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"climbing/logbook/internal/catalog"

	"github.com/spf13/cobra"
)

func newAddCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Register companies, gyms, colours and locations",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := a.init(); err != nil {
				return err
			}
			_, err := a.requireUser()
			return err
		},
	}

	cmd.AddCommand(newAddCompanyCommand(a))
	cmd.AddCommand(newAddGymCommand(a))
	cmd.AddCommand(newAddColourCommand(a))
	cmd.AddCommand(newAddLocationsCommand(a))
	return cmd
}

func newAddCompanyCommand(a *app) *cobra.Command {
	var form catalog.CompanyForm

	cmd := &cobra.Command{
		Use:   "company",
		Short: "Register a climbing company",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			var err error

			if form.Name == "" {
				if form.Name, err = a.ask("--name", "Company name"); err != nil {
					return err
				}
			}
			if form.BoulderGradeSystem == "" {
				if form.BoulderGradeSystem, err = a.pickGradeSystem(ctx, "--boulder-system", "Boulder grade system"); err != nil {
					return err
				}
			}
			if form.SportGradeSystem == "" {
				if form.SportGradeSystem, err = a.pickGradeSystem(ctx, "--sport-system", "Sport grade system"); err != nil {
					return err
				}
			}

			payload, err := form.Payload()
			if err != nil {
				return err
			}
			if err := a.client.AddCompany(ctx, payload); err != nil {
				return err
			}
			a.success("Added company %s", payload.CompanyName)
			return nil
		},
	}

	cmd.Flags().StringVar(&form.Name, "name", "", "company name")
	cmd.Flags().StringVar(&form.PrimaryCountry, "country", "", "primary country")
	cmd.Flags().StringVar(&form.BoulderGradeSystem, "boulder-system", "", "grade system for bouldering")
	cmd.Flags().StringVar(&form.SportGradeSystem, "sport-system", "", "grade system for sport and top rope")
	return cmd
}

func newAddGymCommand(a *app) *cobra.Command {
	var form catalog.GymForm

	cmd := &cobra.Command{
		Use:   "gym",
		Short: "Register a gym of a company",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			var err error

			if form.Company == "" {
				if form.Company, err = a.pickCompany(ctx); err != nil {
					return err
				}
			}
			if form.Suburb == "" {
				if form.Suburb, err = a.ask("--suburb", "Suburb"); err != nil {
					return err
				}
			}

			payload, err := form.Payload()
			if err != nil {
				return err
			}
			if err := a.client.AddGym(ctx, payload); err != nil {
				return err
			}
			a.success("Added gym %s %s", payload.CompanyName, payload.Suburb)
			return nil
		},
	}

	cmd.Flags().StringVar(&form.Company, "company", "", "climbing company")
	cmd.Flags().StringVar(&form.Suburb, "suburb", "", "suburb identifying the gym")
	cmd.Flags().StringVar(&form.City, "city", "", "city")
	cmd.Flags().StringVar(&form.Country, "country", "", "country")
	return cmd
}

func newAddColourCommand(a *app) *cobra.Command {
	var form catalog.ColourForm

	cmd := &cobra.Command{
		Use:   "colour",
		Short: "Register a hold colour used by a company",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			var err error

			if form.Company == "" {
				if form.Company, err = a.pickCompany(ctx); err != nil {
					return err
				}
			}
			if form.Name == "" {
				if form.Name, err = a.ask("--name", "Colour"); err != nil {
					return err
				}
			}

			payload, err := form.Payload()
			if err != nil {
				return err
			}
			if err := a.client.AddColour(ctx, payload); err != nil {
				return err
			}
			a.success("Added colour %s for %s", payload.Colour, payload.CompanyName)
			return nil
		},
	}

	cmd.Flags().StringVar(&form.Company, "company", "", "climbing company")
	cmd.Flags().StringVar(&form.Name, "name", "", "colour name")
	cmd.Flags().StringVar(&form.HexCode, "hex", "", "hex code, e.g. #FF8800")
	return cmd
}

func newAddLocationsCommand(a *app) *cobra.Command {
	var (
		form       catalog.LocationForm
		rangeSpec  string
		individual string
	)

	cmd := &cobra.Command{
		Use:   "locations",
		Short: "Register walls or areas of a gym",
		Example: `  logbook add locations --company Gravity --gym Brunswick --type Boulder --prefix Wall --range 1-12
  logbook add locations --company Gravity --gym Brunswick --type Sport --names "Cave, Slab"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			switch {
			case rangeSpec != "" && individual != "":
				return errors.New("use either --range or --names")
			case rangeSpec != "":
				start, end, ok := strings.Cut(rangeSpec, "-")
				if !ok {
					return fmt.Errorf("invalid range %q, expected START-END", rangeSpec)
				}
				form.Method = catalog.MethodRange
				form.RangeStart, form.RangeEnd = strings.TrimSpace(start), strings.TrimSpace(end)
			case individual != "":
				form.Method = catalog.MethodIndividual
				form.Names = individual
			default:
				return errors.New("one of --range or --names is required")
			}

			payload, err := form.Payload()
			if err != nil {
				return err
			}
			message, err := a.client.AddLocations(cmd.Context(), form.Company, form.Gym, payload)
			if err != nil {
				return err
			}
			a.success("%s", message)
			return nil
		},
	}

	cmd.Flags().StringVar(&form.Company, "company", "", "climbing company")
	cmd.Flags().StringVar(&form.Gym, "gym", "", "gym suburb")
	cmd.Flags().StringVar(&form.ClimbType, "type", "", "climb type set at these locations")
	cmd.Flags().StringVar(&form.Prefix, "prefix", "", "name prefix, e.g. Wall")
	cmd.Flags().StringVar(&rangeSpec, "range", "", "numeric range, e.g. 1-12")
	cmd.Flags().StringVar(&individual, "names", "", "comma separated names")
	return cmd
}

func (a *app) ask(flag, message string) (string, error) {
	if a.picker == nil {
		return "", fmt.Errorf("%s is required", flag)
	}
	return a.picker.Input(message, true)
}

func (a *app) pickCompany(ctx context.Context) (string, error) {
	if a.picker == nil {
		return "", errors.New("--company is required")
	}
	companies, err := a.client.ListCompanies(ctx)
	if err != nil {
		return "", err
	}
	if len(companies) == 0 {
		return "", errors.New("no companies registered yet, add one with `logbook add company`")
	}
	options := make([]string, 0, len(companies))
	for _, c := range companies {
		options = append(options, c.CompanyName)
	}
	return a.picker.Select("Company", options)
}

func (a *app) pickGradeSystem(ctx context.Context, flag, message string) (string, error) {
	if a.picker == nil {
		return "", fmt.Errorf("%s is required", flag)
	}
	systems, err := a.client.ListGradeSystems(ctx)
	if err != nil {
		return "", err
	}
	if len(systems) == 0 {
		return "", errors.New("no grade systems available")
	}
	options := make([]string, 0, len(systems))
	for _, s := range systems {
		options = append(options, s.GradingSystem)
	}
	return a.picker.Select(message, options)
}
