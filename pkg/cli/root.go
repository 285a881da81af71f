package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/mattfenwick/scan-utils/pkg/telemetry"
	"github.com/mattfenwick/scan-utils/pkg/utils"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	tracesdk "go.opentelemetry.io/otel/sdk/trace"
)

const DefaultServerAddress = "http://localhost:4810"

func RunRootCommand() {
	command := SetupRootCommand()
	utils.DoOrDie(errors.Wrapf(command.Execute(), "run root command"))
}

type RootFlags struct {
	Verbosity     string
	ConfigPath    string
	ServerAddress string
	JaegerURL     string
	MetricsPort   int

	tracerProvider *tracesdk.TracerProvider
}

func SetupRootCommand() *cobra.Command {
	flags := &RootFlags{}
	command := &cobra.Command{
		Use:          "scan-utils",
		Short:        "build, submit and monitor scans on a scan server",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := flags.loadConfig(cmd); err != nil {
				return err
			}
			if err := utils.SetUpLogger(flags.Verbosity); err != nil {
				return err
			}
			if err := flags.setUpMetrics(cmd.Name()); err != nil {
				return err
			}
			return flags.setUpTracing(cmd.Name())
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return flags.shutDownTracing()
		},
	}

	command.PersistentFlags().StringVarP(&flags.Verbosity, "verbosity", "v", "info", "log level; one of [info, debug, trace, warn, error, fatal, panic]")
	command.PersistentFlags().StringVar(&flags.ConfigPath, "config", "", "path to a yaml config file; flags given on the command line take precedence")
	command.PersistentFlags().StringVar(&flags.ServerAddress, "server", DefaultServerAddress, "address of the scan server")
	command.PersistentFlags().StringVar(&flags.JaegerURL, "jaeger-url", "", "jaeger collector endpoint, for example http://localhost:14268/api/traces; tracing is off if empty")
	command.PersistentFlags().IntVar(&flags.MetricsPort, "metrics-port", 0, "port to serve prometheus metrics on; 0 disables metrics")

	command.AddCommand(SetupVersionCommand())
	command.AddCommand(setupInfoCommand(flags))
	command.AddCommand(setupScanCommand(flags))
	command.AddCommand(setupStatusCommand(flags))
	command.AddCommand(setupWaitCommand(flags))
	command.AddCommand(setupAbortCommand(flags))
	command.AddCommand(setupListCommand(flags))
	command.AddCommand(setupDataCommand(flags))
	command.AddCommand(setupServerCommand())

	return command
}

func (f *RootFlags) setUpMetrics(subsystem string) error {
	if f.MetricsPort == 0 {
		return nil
	}
	logrus.Infof("setting up prometheus")
	if err := telemetry.InitializeMetrics(subsystem, prometheus.DefaultRegisterer); err != nil {
		return errors.Wrapf(err, "unable to register metrics")
	}
	telemetry.ServeMetrics(fmt.Sprintf(":%d", f.MetricsPort), prometheus.DefaultGatherer)
	return nil
}

func (f *RootFlags) setUpTracing(service string) error {
	if f.JaegerURL == "" {
		return nil
	}
	tp, err := telemetry.NewJaegerTracerProvider("scan-utils-"+service, f.JaegerURL)
	if err != nil {
		return errors.Wrapf(err, "unable to set up jaeger tracing to %s", f.JaegerURL)
	}
	f.tracerProvider = tp
	return nil
}

func (f *RootFlags) shutDownTracing() error {
	if f.tracerProvider == nil {
		return nil
	}
	// Do not make the application hang when it is shutdown.
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()
	logrus.Debugf("flushing traces")
	return errors.Wrapf(f.tracerProvider.Shutdown(ctx), "unable to shut down tracer provider")
}
