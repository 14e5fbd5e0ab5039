package cli

import (
	"errors"

	"climbing/logbook/internal/attempts"
	"climbing/logbook/internal/domain"

	"github.com/fatih/color"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func newAttemptsCommand(a *app) *cobra.Command {
	var (
		loc    locationFlags
		sortBy string
		rid    int64
	)

	cmd := &cobra.Command{
		Use:   "attempts",
		Short: "List your attempts at a location",
		RunE: func(cmd *cobra.Command, args []string) error {
			keys, err := attempts.ParseKeys(sortBy)
			if err != nil {
				return err
			}
			if _, err := a.requireUser(); err != nil {
				return err
			}

			ctx := cmd.Context()
			key, sel, err := a.resolve(ctx, loc)
			if err != nil {
				return err
			}
			sel.Close()

			list, err := a.client.ListAttempts(ctx, key)
			if err != nil {
				return err
			}
			if rid > 0 {
				list = attempts.ForRoute(list, rid)
			}

			order := map[string]int{}
			if grades, err := a.client.ListGrades(ctx, key.Company, key.ClimbType); err != nil {
				log.Debugf("Grades unavailable, sorting grades by name: %v", err)
			} else {
				for _, g := range grades {
					order[g.Grade] = g.GradeOrder
				}
			}

			attempts.Sort(list, order, keys...)
			printTable(a.out, attempts.Header, attempts.Rows(list))
			return nil
		},
	}

	loc.register(cmd)
	cmd.Flags().StringVar(&sortBy, "sort", "", `sort keys, e.g. "grade:desc,date" (default date, time and attempt number, newest first)`)
	cmd.Flags().Int64Var(&rid, "rid", 0, "only attempts on this route")
	return cmd
}

func newLogAttemptCommand(a *app) *cobra.Command {
	var (
		attempt domain.NewAttempt
		loc     locationFlags
	)

	cmd := &cobra.Command{
		Use:   "log-attempt",
		Short: "Log an attempt on a route",
		RunE: func(cmd *cobra.Command, args []string) error {
			if attempt.RID <= 0 {
				return errors.New("--rid is required")
			}
			if attempt.Rating < 0 || attempt.Rating > 5 {
				return errors.New("--rating must be between 0 and 5")
			}
			if _, err := a.requireUser(); err != nil {
				return err
			}

			ctx := cmd.Context()
			if attempt.Mode == "" || attempt.Result == "" {
				if a.picker == nil {
					return errors.New("--mode and --result are required")
				}
				opts, err := a.client.AttemptOptions(ctx)
				if err != nil {
					return err
				}
				if attempt.Mode == "" {
					if attempt.Mode, err = a.picker.Select("Mode", opts.Modes); err != nil {
						return err
					}
				}
				if attempt.Result == "" {
					if attempt.Result, err = a.picker.Select("Result", opts.Results); err != nil {
						return err
					}
				}
			}

			// With a location the attempt number can be predicted from the user's history.
			expected := 0
			if loc.key != (domain.LocationKey{}) {
				key, sel, err := a.resolve(ctx, loc)
				if err != nil {
					return err
				}
				sel.Close()

				list, err := a.client.ListAttempts(ctx, key)
				if err != nil {
					return err
				}
				expected = attempts.NextAttemptNo(list, attempt.RID, attempt.Mode)
				log.Debugf("Expecting %s attempt #%d on route %d", attempt.Mode, expected, attempt.RID)
			}

			attemptNo, err := a.client.AddAttempt(ctx, attempt)
			if err != nil {
				return err
			}
			a.success("Logged %s attempt #%d on route %d: %s", attempt.Mode, attemptNo, attempt.RID, attempt.Result)
			if expected > 0 && attemptNo != expected {
				color.New(color.FgYellow).Fprintf(a.out, "⚠️  Expected attempt #%d, another attempt was logged in the meantime\n", expected)
			}
			return nil
		},
	}

	loc.register(cmd)

	cmd.Flags().Int64Var(&attempt.RID, "rid", 0, "route id")
	cmd.Flags().StringVar(&attempt.Mode, "mode", "", "attempt mode, e.g. Flash")
	cmd.Flags().StringVar(&attempt.Result, "result", "", "result, e.g. Top")
	cmd.Flags().IntVar(&attempt.Rating, "rating", 0, "rating from 0 to 5")
	cmd.Flags().StringVar(&attempt.Notes, "notes", "", "notes")
	cmd.Flags().StringVar(&attempt.Video, "video", "", "video link")
	cmd.Flags().StringVar(&attempt.Date, "date", "", "date, YYYY-MM-DD (default today)")
	cmd.Flags().StringVar(&attempt.Time, "time", "", "time, HH:MM (default now)")
	return cmd
}
