package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/filterphrase/pkg/observability"
	"github.com/Sumatoshi-tech/filterphrase/pkg/repl"
)

// NewRootCommand creates the filterphrase root command. Without a subcommand it
// runs the interactive prompt over the files of the working directory.
func NewRootCommand() *cobra.Command {
	return buildRootCommand(defaultDeps())
}

func buildRootCommand(d deps) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "filterphrase",
		Short: "Filter project files by extension and an approximate phrase",
		Long: `filterphrase lists the files of the current project once, then reads
prompts of the form "<ext> <text>" and prints the ten best matching paths.

An empty line or end of input ends the session.

Examples:
  lua finders/async
  py main`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runInteractive(cmd, d)
		},
	}

	cmd.AddCommand(buildQueryCommand(d))

	return cmd
}

//nolint:nonamedreturns // the deferred shutdown joins into err.
func runInteractive(cmd *cobra.Command, d deps) (err error) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	a, err := start(ctx, d, observability.ModeInteractive)
	if err != nil {
		return err
	}

	defer func() {
		err = errors.Join(err, a.close(context.WithoutCancel(ctx)))
	}()

	session := repl.New(a.engine, cmd.InOrStdin(), cmd.OutOrStdout(), cmd.ErrOrStderr())

	runErr := session.Run(ctx)
	if runErr != nil {
		return fmt.Errorf("prompt session: %w", runErr)
	}

	a.logger.DebugContext(ctx, "session ended", "candidates", a.engine.Len())

	return nil
}
