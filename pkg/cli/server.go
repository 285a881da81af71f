package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mattfenwick/scan-utils/pkg/simulator"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

type ServerArgs struct {
	Name      string
	Port      int
	StepDelay time.Duration
}

func setupServerCommand() *cobra.Command {
	args := &ServerArgs{}

	command := &cobra.Command{
		Use:   "server",
		Short: "run a simulated scan server",
		Args:  cobra.ExactArgs(0),
		RunE: func(cmd *cobra.Command, as []string) error {
			return RunSimulatedServer(commandContext(cmd), args)
		},
	}

	command.Flags().StringVar(&args.Name, "name", "Simulated scan server", "name reported by the server's info")
	command.Flags().IntVar(&args.Port, "port", 4810, "port to serve the scan API on")
	command.Flags().DurationVar(&args.StepDelay, "step-delay", 100*time.Millisecond, "simulated time taken by each log command")

	return command
}

func RunSimulatedServer(ctx context.Context, args *ServerArgs) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	server := simulator.NewServer(args.Name, args.StepDelay)
	logrus.Infof("scan server info: %s", server.GetInfo())
	return simulator.RunServer(ctx, args.Port, server)
}
