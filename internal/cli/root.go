// Package cli implements the logbook command line client.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"climbing/logbook/internal/client"
	"climbing/logbook/internal/config"
	"climbing/logbook/internal/domain"
	"climbing/logbook/internal/session"

	"github.com/fatih/color"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

// app carries what every command needs. Fields left nil are filled in before a command runs.
type app struct {
	configPath string

	cfg    *config.Config
	fs     afero.Fs
	out    io.Writer
	picker Picker
	store  *session.Store
	client client.LogbookClient
}

// Execute runs the root command against the real terminal and file system.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a := &app{fs: afero.NewOsFs(), out: os.Stdout, picker: surveyPicker{}}
	if err := newRootCommand(a).ExecuteContext(ctx); err != nil {
		color.New(color.FgRed).Fprintf(os.Stderr, "❌ %v\n", err)
		return err
	}
	return nil
}

func newRootCommand(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "logbook",
		Short: "Climbing logbook client",
		Long: color.CyanString(`logbook - track routes and attempts at your climbing gyms

Pick a location by company, gym, climb type and wall, then list the routes
set there, log attempts and browse your history.`),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init()
		},
	}

	root.PersistentFlags().StringVar(&a.configPath, "config", "", "config file (default ./config.yaml or $HOME/.logbook/config.yaml)")

	root.AddCommand(newLoginCommand(a))
	root.AddCommand(newLogoutCommand(a))
	root.AddCommand(newWhoamiCommand(a))
	root.AddCommand(newRegisterCommand(a))
	root.AddCommand(newRoutesCommand(a))
	root.AddCommand(newAddRouteCommand(a))
	root.AddCommand(newArchiveRouteCommand(a))
	root.AddCommand(newAttemptsCommand(a))
	root.AddCommand(newLogAttemptCommand(a))
	root.AddCommand(newAddCommand(a))
	root.AddCommand(newGradesCommand(a))
	root.AddCommand(newActivityCommand(a))
	root.AddCommand(newBrowseCommand(a))

	return root
}

func (a *app) init() error {
	if a.cfg == nil {
		cfg, err := config.Load(a.configPath)
		if err != nil {
			return err
		}
		a.cfg = cfg
	}
	if err := config.ConfigureLogging(a.cfg.Log); err != nil {
		return err
	}

	if a.store == nil {
		a.store = session.NewStore(a.fs, a.cfg.Session.Path)
	}
	// Requests carry the stored user when there is one.
	if _, err := a.store.Load(); err != nil && !errors.Is(err, session.ErrNoSession) {
		return err
	}
	if a.client == nil {
		a.client = client.NewLogbookClient(a.cfg.API, a.store)
	}
	return nil
}

// requireUser returns the logged in user or a hint to log in.
func (a *app) requireUser() (*domain.User, error) {
	user, err := a.store.Load()
	if errors.Is(err, session.ErrNoSession) {
		return nil, errors.New("not logged in, run `logbook login` first")
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (a *app) success(format string, args ...any) {
	color.New(color.FgGreen).Fprintf(a.out, "✅ "+format+"\n", args...)
}

func (a *app) printf(format string, args ...any) {
	fmt.Fprintf(a.out, format, args...)
}
