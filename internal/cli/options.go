package cli

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/nikolayk812/agrocart/internal/config"
)

// ErrHelp is returned by ParseOptions after usage has been printed.
var ErrHelp = errors.New("help requested")

type Options struct {
	Command string
	Args    []string

	JSON       bool
	APIBaseURL string
	Token      string
	Email      string
	Timeout    time.Duration
	Debug      bool
	LogFile    string
}

func ParseOptions(args []string, output io.Writer) (Options, error) {
	var (
		opts           Options
		timeoutSeconds int
	)

	fs := flag.NewFlagSet("cartctl", flag.ContinueOnError)
	fs.SetOutput(output)
	fs.Usage = func() {
		fmt.Fprintf(output, "Usage: %s [flags] <command> [args]\n\n%s\nFlags:\n", fs.Name(), commandsHelp)
		fs.PrintDefaults()
	}

	fs.BoolVar(&opts.JSON, "json", false, "Output JSON format")
	fs.StringVar(&opts.APIBaseURL, "api", "", "Cart service base URL (API_BASE_URL)")
	fs.StringVar(&opts.Token, "token", "", "Bearer token (API_TOKEN)")
	fs.StringVar(&opts.Email, "email", "", "Signed-in buyer email (PRINCIPAL_EMAIL)")
	fs.IntVar(&timeoutSeconds, "timeout", 0, "Timeout in seconds (TIMEOUT)")
	fs.BoolVar(&opts.Debug, "debug", false, "Enable debug logging")
	fs.StringVar(&opts.LogFile, "log-file", "", "Log file path (LOG_FILE)")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return Options{}, ErrHelp
		}
		return Options{}, err
	}

	if timeoutSeconds > 0 {
		opts.Timeout = time.Duration(timeoutSeconds) * time.Second
	}

	rest := fs.Args()
	if len(rest) == 0 {
		fs.Usage()
		return Options{}, ErrHelp
	}
	opts.Command = strings.ToLower(rest[0])
	opts.Args = rest[1:]

	return opts, nil
}

// Apply overrides cfg with the flags that were given.
func (o Options) Apply(cfg config.Config) config.Config {
	if o.APIBaseURL != "" {
		cfg.APIBaseURL = o.APIBaseURL
	}
	if o.Token != "" {
		cfg.APIToken = o.Token
	}
	if o.Email != "" {
		cfg.PrincipalEmail = o.Email
	}
	if o.Timeout > 0 {
		cfg.Timeout = o.Timeout
	}
	if o.Debug {
		cfg.Debug = true
	}
	if o.LogFile != "" {
		cfg.LogFile = o.LogFile
	}
	return cfg
}

const commandsHelp = `Commands:
  show                                        print the cart
  add <id> <title> <price> <unit> <qty> [moq] add one item
  add-many <items.json>                       add every item of a JSON array
  update <id> <qty>                           set the quantity of an item
  remove <id>                                 remove an item
  clear                                       empty the cart
  batch <operations.json>                     send update/remove operations in one request
  merge-preview <existing.json> <incoming.json>
                                              show a merge without contacting the service
  edit                                        stage edits interactively and save them at once
`
