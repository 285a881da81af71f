package cli

import (
	"fmt"
	"strconv"
	"time"

	"github.com/mattfenwick/scan-utils/pkg/connector"
	"github.com/mattfenwick/scan-utils/pkg/scan"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

func parseScanID(s string) (connector.ScanID, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return connector.NoScanID, errors.Wrapf(err, "invalid scan id '%s'", s)
	}
	return connector.ScanID(id), nil
}

func setupInfoCommand(rootFlags *RootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "connect to the scan server and print its info",
		Args:  cobra.ExactArgs(0),
		RunE: func(cmd *cobra.Command, as []string) error {
			ctx := commandContext(cmd)
			conn, err := connector.Connect(ctx, rootFlags.ServerAddress)
			if err != nil {
				return err
			}
			info, err := conn.GetInfo(ctx)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "Welcome to the scan system")
			fmt.Fprintf(out, "Connected to %s\n", info)
			return nil
		},
	}
}

func setupStatusCommand(rootFlags *RootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "status ID",
		Short: "print the status of a scan",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, as []string) error {
			id, err := parseScanID(as[0])
			if err != nil {
				return err
			}
			ctx := commandContext(cmd)
			conn, err := connector.Connect(ctx, rootFlags.ServerAddress)
			if err != nil {
				return err
			}
			info, err := conn.GetScanInfo(ctx, id)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), ScanInfoTable([]*connector.ScanInfo{info}))
			return nil
		},
	}
}

type WaitArgs struct {
	PollInterval time.Duration
	Timeout      time.Duration
}

func setupWaitCommand(rootFlags *RootFlags) *cobra.Command {
	args := &WaitArgs{}

	command := &cobra.Command{
		Use:   "wait ID",
		Short: "poll a scan until it is done",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, as []string) error {
			id, err := parseScanID(as[0])
			if err != nil {
				return err
			}
			if err := validatePollInterval(args.PollInterval); err != nil {
				return err
			}
			ctx, cancel := withOptionalTimeout(commandContext(cmd), args.Timeout)
			defer cancel()

			conn, err := connector.Connect(ctx, rootFlags.ServerAddress)
			if err != nil {
				return err
			}
			_, err = newClient(conn, args.PollInterval, cmd.OutOrStdout()).WaitUntilDone(ctx, id)
			return err
		},
	}

	command.Flags().DurationVar(&args.PollInterval, "poll-interval", scan.DefaultPollInterval, "time between status checks")
	command.Flags().DurationVar(&args.Timeout, "timeout", 0, "stop waiting after this long; 0 waits indefinitely")

	return command
}

func setupAbortCommand(rootFlags *RootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "abort ID",
		Short: "abort a queued or running scan",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, as []string) error {
			id, err := parseScanID(as[0])
			if err != nil {
				return err
			}
			ctx := commandContext(cmd)
			conn, err := connector.Connect(ctx, rootFlags.ServerAddress)
			if err != nil {
				return err
			}
			if err := conn.AbortScan(ctx, id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "aborted scan %d\n", id)
			return nil
		},
	}
}

func setupListCommand(rootFlags *RootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "list the scans known to the server",
		Args:  cobra.ExactArgs(0),
		RunE: func(cmd *cobra.Command, as []string) error {
			ctx := commandContext(cmd)
			conn, err := connector.Connect(ctx, rootFlags.ServerAddress)
			if err != nil {
				return err
			}
			infos, err := conn.ListScans(ctx)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), ScanInfoTable(infos))
			return nil
		},
	}
}

func setupDataCommand(rootFlags *RootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "data ID",
		Short: "print the values logged by a scan",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, as []string) error {
			id, err := parseScanID(as[0])
			if err != nil {
				return err
			}
			ctx := commandContext(cmd)
			conn, err := connector.Connect(ctx, rootFlags.ServerAddress)
			if err != nil {
				return err
			}
			samples, err := conn.GetScanData(ctx, id)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), SamplesTable(samples))
			return nil
		},
	}
}
