package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/mattfenwick/scan-utils/pkg/command"
	"github.com/mattfenwick/scan-utils/pkg/connector"
	"github.com/mattfenwick/scan-utils/pkg/scan"
	"github.com/mattfenwick/scan-utils/pkg/utils"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

type ScanArgs struct {
	Name         string
	Interactive  bool
	DryRun       bool
	DumpFormat   string
	PollInterval time.Duration
	Timeout      time.Duration
	Arguments    []string
}

func setupScanCommand(rootFlags *RootFlags) *cobra.Command {
	args := &ScanArgs{}

	command := &cobra.Command{
		Use:   "scan [flags] DEVICE:START:END[:STEP]... [LOG_DEVICE]...",
		Short: "build a nested loop scan and submit it",
		Long: `Each DEVICE:START:END[:STEP] argument adds a loop; the first one is outermost.
The step defaults to 1.  Every loop logs its own device; other arguments name
devices that are logged in the innermost loop.

  scan-utils scan --name "Normal 2D" xpos:1:10 ypos:1:10:0.5 readback`,
		RunE: func(cmd *cobra.Command, as []string) error {
			args.Arguments = as
			return RunScan(commandContext(cmd), rootFlags, args, cmd.OutOrStdout())
		},
	}

	command.Flags().StringVar(&args.Name, "name", scan.DefaultScanName, "name of the scan")
	command.Flags().BoolVar(&args.Interactive, "interactive", false, "print the commands and wait for the scan to finish")
	command.Flags().BoolVar(&args.DryRun, "dry-run", false, "print the commands without submitting them")
	command.Flags().StringVar(&args.DumpFormat, "dump-format", "text", "format for printing commands; one of [text, yaml, json, dot]")
	command.Flags().DurationVar(&args.PollInterval, "poll-interval", scan.DefaultPollInterval, "time between status checks while waiting")
	command.Flags().DurationVar(&args.Timeout, "timeout", 0, "stop waiting after this long; 0 waits indefinitely")

	return command
}

func buildScanArguments(args *ScanArgs) []interface{} {
	scanArgs := []interface{}{scan.NameArg(args.Name)}
	for _, a := range args.Arguments {
		scanArgs = append(scanArgs, scan.ParseArgument(a))
	}
	return scanArgs
}

func RunScan(ctx context.Context, rootFlags *RootFlags, args *ScanArgs, out io.Writer) error {
	if err := validatePollInterval(args.PollInterval); err != nil {
		return err
	}
	if args.DryRun {
		name, cmds, err := scan.Build(buildScanArguments(args)...)
		if err != nil {
			return err
		}
		dump, err := DumpCommands(name, cmds.GetCommands(), args.DumpFormat)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(out, dump)
		return errors.Wrapf(err, "unable to print commands")
	}

	ctx, cancel := withOptionalTimeout(ctx, args.Timeout)
	defer cancel()

	conn, err := connector.Connect(ctx, rootFlags.ServerAddress)
	if err != nil {
		return err
	}
	scanNd := scan.NewScanNd(newClient(conn, args.PollInterval, out), args.Interactive)
	scanNd.Dumper = func(name string, cmds *command.Sequence) (string, error) {
		return DumpCommands(name, cmds.GetCommands(), args.DumpFormat)
	}

	id, err := scanNd.Scan(ctx, buildScanArguments(args)...)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(out, "submitted scan %d\n", id)
	return errors.Wrapf(err, "unable to print scan id")
}

func DumpCommands(name string, commands []*command.Command, format string) (string, error) {
	switch format {
	case "text":
		return command.Dump(commands), nil
	case "yaml":
		return command.YAML(commands)
	case "json":
		bs, err := utils.MarshalIndent(commands, "", "  ")
		return string(bs), err
	case "dot":
		return command.Graph(name, commands).RenderAsDot(), nil
	default:
		return "", errors.Errorf("unrecognized dump format '%s'", format)
	}
}

func validatePollInterval(interval time.Duration) error {
	if interval <= 0 {
		return errors.Errorf("--poll-interval must be positive, got %s", interval)
	}
	return nil
}

func newClient(conn connector.Connector, pollInterval time.Duration, out io.Writer) *scan.Client {
	client := scan.NewClient(conn)
	client.PollInterval = pollInterval
	if out != nil {
		client.Out = out
	} else {
		client.Out = os.Stdout
	}
	return client
}

func withOptionalTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, timeout)
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
