package cli

import (
	"flag"
	"fmt"
	"strings"
	"time"
)

// Config holds the application configuration from CLI flags
type Config struct {
	Name         string
	Interfaces   []string
	PollInterval time.Duration
	APIHost      string
	APIPort      int
	LogLevel     string
	ShowVersion  bool
}

type interfaceList []string

func (l *interfaceList) String() string { return strings.Join(*l, ",") }

func (l *interfaceList) Set(value string) error {
	*l = append(*l, value)
	return nil
}

// Parse parses the given command line arguments (excluding the program name)
// and returns a Config. The host name may be given either via -name or as a
// single positional argument.
func Parse(program string, args []string) (*Config, error) {
	cfg := &Config{}
	var interfaces interfaceList

	fs := flag.NewFlagSet(program, flag.ContinueOnError)
	fs.StringVar(&cfg.Name, "name", "", "Host name, resolves as <name>.local")
	fs.StringVar(&cfg.Name, "n", "", "Shorthand for -name")
	fs.Var(&interfaces, "interface", "Interface name, repeatable and comma-separable. Default is '*' (all)")
	fs.Var(&interfaces, "i", "Shorthand for -interface")
	fs.DurationVar(&cfg.PollInterval, "poll-interval", 3*time.Second, "Interval between interface polls")
	fs.StringVar(&cfg.APIHost, "api-host", "127.0.0.1", "Host the status API binds to")
	fs.IntVar(&cfg.APIPort, "api-port", 0, "Port for the status API (0 disables it)")
	fs.StringVar(&cfg.LogLevel, "log-level", "info", "Log level (trace, debug, info, warn, error)")
	fs.BoolVar(&cfg.ShowVersion, "version", false, "Show version information")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if cfg.ShowVersion {
		return cfg, nil
	}

	positional := fs.Args()
	if cfg.Name == "" {
		switch len(positional) {
		case 0:
			return nil, fmt.Errorf("missing required name. use -name <name> or positional <name>")
		case 1:
			cfg.Name = positional[0]
		default:
			return nil, fmt.Errorf("too many positional arguments: %s", strings.Join(positional, " "))
		}
	} else if len(positional) > 0 {
		return nil, fmt.Errorf("unexpected positional arguments: %s", strings.Join(positional, " "))
	}

	cfg.Name = strings.TrimSpace(cfg.Name)
	if cfg.Name == "" {
		return nil, fmt.Errorf("name cannot be empty")
	}

	if cfg.PollInterval <= 0 {
		return nil, fmt.Errorf("poll interval must be positive, got %s", cfg.PollInterval)
	}

	cfg.Interfaces = interfaces
	if len(cfg.Interfaces) == 0 {
		cfg.Interfaces = []string{"*"}
	}

	return cfg, nil
}

// String returns a string representation of the Config
func (c *Config) String() string {
	return fmt.Sprintf("Name: %s, Interfaces: %s, PollInterval: %s, LogLevel: %s",
		c.Name, strings.Join(c.Interfaces, ","), c.PollInterval, c.LogLevel)
}
