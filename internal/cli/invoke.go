package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/navegante/internal/dispatch"
	"github.com/roach88/navegante/internal/transport"
)

// InvokeOptions holds flags for the invoke command.
type InvokeOptions struct {
	*RootOptions
	Args string
}

// NewInvokeCommand creates the invoke command.
func NewInvokeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &InvokeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "invoke <op>",
		Short: "Execute one operation against the database",
		Long: `Execute a single operation against the database and print its result.

Arguments are the same JSON the transports accept. Single-argument
operations also take a bare value.

Examples:
  navegante invoke add-section --args '"Bebidas"'
  navegante invoke add-product --args '{"name":"Agua","price":1.5,"sectionId":1}'
  navegante invoke sections-with-products --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return invokeOperation(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Args, "args", "", "operation arguments as JSON")

	return cmd
}

func invokeOperation(opts *InvokeOptions, op string, cmd *cobra.Command) error {
	out := newOutput(opts.RootOptions, cmd)
	out.RequestID = transport.UUIDv7Generator{}.Generate()

	var raw json.RawMessage
	if opts.Args != "" {
		if !json.Valid([]byte(opts.Args)) {
			_ = out.Failure(dispatch.CodeBadRequest, "invalid --args JSON")
			return NewExitError(ExitCommandError, "invalid --args JSON")
		}
		raw = json.RawMessage(opts.Args)
	}

	cfg, err := loadConfig(opts.RootOptions)
	if err != nil {
		return err
	}
	logger := newLogger(cfg, cmd.ErrOrStderr()).With("request_id", out.RequestID)

	req, err := dispatch.Decode(op, raw)
	if err != nil {
		return reportFailure(out, err)
	}

	st, err := openStore(cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore(st, logger)

	d := dispatch.New(st, dispatch.WithLogger(logger))
	result, err := d.Dispatch(dispatch.WithRequestID(cmd.Context(), out.RequestID), req)
	if err != nil {
		return reportFailure(out, err)
	}
	return out.Result(result)
}

// reportFailure prints a dispatcher failure and maps it to an exit code:
// malformed requests are command errors, everything else a failure.
func reportFailure(out *Output, err error) error {
	code := dispatch.CodeOf(err)
	message := err.Error()
	var de *dispatch.Error
	if errors.As(err, &de) {
		message = de.Message
		if de.Err != nil {
			message = fmt.Sprintf("%s: %v", de.Message, de.Err)
		}
	}
	_ = out.Failure(code, message)

	switch code {
	case dispatch.CodeBadRequest, dispatch.CodeUnknownOperation:
		return WrapExitError(ExitCommandError, "invalid request", err)
	default:
		return WrapExitError(ExitFailure, "operation failed", err)
	}
}
