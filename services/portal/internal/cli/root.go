package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"fieldbook/libs/logging"
	"fieldbook/services/portal/internal/app"
	"fieldbook/services/portal/internal/clients"
	"fieldbook/services/portal/internal/config"
)

// errNotLoggedIn is returned by commands that need a bearer token.
var errNotLoggedIn = errors.New("no active session, run `fieldbook login` first")

type runtime struct {
	app    *app.App
	logger *zap.Logger
	out    io.Writer
	in     io.Reader

	output  string
	profile string
	apiURL  string
}

// newRoot builds the fieldbook command tree writing results to out.
func newRoot(in io.Reader, out io.Writer) (*cobra.Command, *runtime) {
	rt := &runtime{out: out, in: in}

	root := &cobra.Command{
		Use:           "fieldbook",
		Short:         "Book sports fields and administer the reservation platform",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return rt.init(cmd.Context())
		},
	}
	root.SetIn(in)
	root.SetOut(out)

	flags := root.PersistentFlags()
	flags.StringVarP(&rt.output, "output", "o", "json", "output format: json or yaml")
	flags.StringVar(&rt.profile, "profile", "", "session profile (overrides FIELDBOOK_PROFILE)")
	flags.StringVar(&rt.apiURL, "api-url", "", "backend base URL (overrides FIELDBOOK_API_URL)")

	root.AddCommand(
		newLoginCommand(rt),
		newSignupCommand(rt),
		newLogoutCommand(rt),
		newWhoamiCommand(rt),
		newHealthCommand(rt),
		newProfileCommand(rt),
		newPasswordCommand(rt),
		newFieldsCommand(rt),
		newReservationsCommand(rt),
		newRolesCommand(rt),
		newAdminCommand(rt),
	)
	return root, rt
}

func (rt *runtime) init(ctx context.Context) error {
	if rt.output != "json" && rt.output != "yaml" {
		return fmt.Errorf("unsupported output format %q", rt.output)
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if rt.profile != "" {
		cfg.Session.Profile = rt.profile
	}
	if rt.apiURL != "" {
		cfg.API.BaseURL = rt.apiURL
	}

	logger, err := logging.NewLoggerWithOptions(logging.Options{
		Level:    cfg.Log.Level,
		Encoding: cfg.Log.Format,
		Output:   "stderr",
	})
	if err != nil {
		return err
	}
	rt.logger = logger

	application, err := app.New(ctx, cfg, logger)
	if err != nil {
		return err
	}
	rt.app = application
	return nil
}

func (rt *runtime) close() {
	if rt.app != nil {
		rt.app.Close()
		rt.app = nil
	}
	if rt.logger != nil {
		_ = rt.logger.Sync()
	}
}

func (rt *runtime) token() (string, error) {
	token := rt.app.Session.Token()
	if token == "" {
		return "", errNotLoggedIn
	}
	return token, nil
}

// Run executes the command tree with args and releases the session backend afterwards.
func Run(ctx context.Context, args []string, in io.Reader, out io.Writer) error {
	cmd, rt := newRoot(in, out)
	defer rt.close()
	cmd.SetArgs(args)
	return cmd.ExecuteContext(ctx)
}

// Execute runs the CLI and returns the process exit code.
func Execute(ctx context.Context) int {
	if err := Run(ctx, os.Args[1:], os.Stdin, os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "error:", clients.Message(err))
		return 1
	}
	return 0
}
