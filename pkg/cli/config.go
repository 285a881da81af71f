package cli

import (
	"github.com/mattfenwick/scan-utils/pkg/utils"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// Config mirrors command line flags.  Durations use go syntax, such as "500ms".
type Config struct {
	Server       string `json:"server"`
	Verbosity    string `json:"verbosity"`
	JaegerURL    string `json:"jaegerURL"`
	PollInterval string `json:"pollInterval"`
	Timeout      string `json:"timeout"`
}

func (c *Config) flagValues() map[string]string {
	return map[string]string{
		"server":        c.Server,
		"verbosity":     c.Verbosity,
		"jaeger-url":    c.JaegerURL,
		"poll-interval": c.PollInterval,
		"timeout":       c.Timeout,
	}
}

func (f *RootFlags) loadConfig(cmd *cobra.Command) error {
	if f.ConfigPath == "" {
		return nil
	}
	config, err := utils.ParseYamlFromFile[Config](f.ConfigPath)
	if err != nil {
		return err
	}
	return ApplyConfig(cmd.Flags(), config)
}

// ApplyConfig sets flags from config, skipping empty values, flags the
// command doesn't have, and flags already given on the command line
func ApplyConfig(flags *pflag.FlagSet, config *Config) error {
	for name, value := range config.flagValues() {
		if value == "" {
			continue
		}
		flag := flags.Lookup(name)
		if flag == nil || flag.Changed {
			continue
		}
		if err := flags.Set(name, value); err != nil {
			return errors.Wrapf(err, "invalid config value for %s: '%s'", name, value)
		}
		logrus.Debugf("set %s from config", name)
	}
	return nil
}
