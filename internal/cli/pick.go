package cli

import (
	"context"
	"errors"
	"fmt"

	"climbing/logbook/internal/domain"
	"climbing/logbook/internal/selector"

	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/cobra"
)

// Picker asks the user for values a command was not given on the command line.
type Picker interface {
	Select(message string, options []string) (string, error)
	Input(message string, required bool) (string, error)
	Password(message string) (string, error)
	Confirm(message string) (bool, error)
}

type surveyPicker struct{}

func (surveyPicker) Select(message string, options []string) (string, error) {
	var answer string
	err := survey.AskOne(&survey.Select{Message: message, Options: options}, &answer)
	return answer, err
}

func (surveyPicker) Input(message string, required bool) (string, error) {
	var answer string
	var opts []survey.AskOpt
	if required {
		opts = append(opts, survey.WithValidator(survey.Required))
	}
	err := survey.AskOne(&survey.Input{Message: message}, &answer, opts...)
	return answer, err
}

func (surveyPicker) Password(message string) (string, error) {
	var answer string
	err := survey.AskOne(&survey.Password{Message: message}, &answer, survey.WithValidator(survey.Required))
	return answer, err
}

func (surveyPicker) Confirm(message string) (bool, error) {
	var answer bool
	err := survey.AskOne(&survey.Confirm{Message: message}, &answer)
	return answer, err
}

// locationFlags are the four tier flags shared by every command addressing a location.
type locationFlags struct {
	key domain.LocationKey
}

func (f *locationFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.key.Company, "company", "", "climbing company")
	cmd.Flags().StringVar(&f.key.Gym, "gym", "", "gym suburb")
	cmd.Flags().StringVar(&f.key.ClimbType, "type", "", "climb type, e.g. Boulder")
	cmd.Flags().StringVar(&f.key.Location, "location", "", "wall or area")
}

func tierValue(key domain.LocationKey, t domain.Tier) string {
	switch t {
	case domain.TierCompany:
		return key.Company
	case domain.TierGym:
		return key.Gym
	case domain.TierClimbType:
		return key.ClimbType
	case domain.TierLocation:
		return key.Location
	default:
		return ""
	}
}

// resolveKey walks the selector tier by tier. Values in given are applied directly;
// missing ones are asked for, unless the selector already chose the only option.
func resolveKey(ctx context.Context, sel *selector.Selector, given domain.LocationKey, picker Picker) (domain.LocationKey, error) {
	if err := sel.Load(ctx); err != nil {
		return domain.LocationKey{}, err
	}
	sel.Wait()

	for _, t := range domain.Tiers {
		st := sel.State().Tier(t)
		if st.Status == selector.StatusError {
			return domain.LocationKey{}, fmt.Errorf("failed to load %s options: %s", t, st.Err)
		}

		want := tierValue(given, t)
		if want == "" && st.Selected != "" {
			continue
		}
		if want == "" {
			if len(st.Options) == 0 {
				return domain.LocationKey{}, fmt.Errorf("no %s options available", t)
			}
			if picker == nil {
				return domain.LocationKey{}, fmt.Errorf("--%s is required", flagName(t))
			}
			answer, err := picker.Select("Select "+t.GetTierName(), st.Options)
			if err != nil {
				return domain.LocationKey{}, err
			}
			want = answer
		}
		if want == st.Selected {
			continue
		}

		if err := sel.Select(ctx, t, want); err != nil {
			if errors.Is(err, selector.ErrInvalidSelection) {
				return domain.LocationKey{}, fmt.Errorf("unknown %s %q", t.GetTierName(), want)
			}
			return domain.LocationKey{}, err
		}
		sel.Wait()
	}

	key, ready := sel.Key()
	if !ready {
		return key, selector.ErrNotReady
	}
	return key, nil
}

func flagName(t domain.Tier) string {
	switch t {
	case domain.TierGym:
		return "gym"
	case domain.TierClimbType:
		return "type"
	default:
		return t.String()
	}
}

// resolve builds a selector over the API client and resolves f to a full key.
func (a *app) resolve(ctx context.Context, f locationFlags) (domain.LocationKey, *selector.Selector, error) {
	sel := selector.New(a.client, selector.WithRouteStore(a.client))
	key, err := resolveKey(ctx, sel, f.key, a.picker)
	if err != nil {
		sel.Close()
		return key, nil, err
	}
	return key, sel, nil
}
