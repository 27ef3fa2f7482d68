package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/kylycht/fxpad/model"
	"github.com/kylycht/fxpad/service/conversion"
	"github.com/kylycht/fxpad/storage/cache"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"
)

const configKey = "config"

//	@title			fxpad
//	@version		1.0
//	@description	Keypad driven multi-currency converter

// @host		localhost:3000
func main() {
	app := &cli.App{
		Name:  "fxpad",
		Usage: "keypad driven multi-currency converter",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Usage:   "path to the YAML configuration file",
				EnvVars: []string{"FXPAD_CONFIG"},
			},
		},
		Before: func(c *cli.Context) error {
			cfg, err := loadConfig(c.String("config"))
			if err != nil {
				return err
			}
			if err := setupLogger(cfg); err != nil {
				return err
			}
			c.App.Metadata = map[string]interface{}{configKey: cfg}
			return nil
		},
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "run the converter HTTP API",
				Action: serveCmd,
			},
			{
				Name:      "convert",
				Usage:     "convert an amount with the cached rates",
				ArgsUsage: "FROM TO [AMOUNT]",
				Action:    convertCmd,
			},
			{
				Name:  "rates",
				Usage: "print the rate table in use",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "refresh", Usage: "fetch fresh rates first"},
				},
				Action: ratesCmd,
			},
			{
				Name:   "reset",
				Usage:  "forget the saved selection and input",
				Action: resetCmd,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Error().Err(err).Msg("unable to run application")
		os.Exit(1)
	}
}

func configFrom(c *cli.Context) Config {
	return c.App.Metadata[configKey].(Config)
}

func setupLogger(cfg Config) error {
	lvl, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("invalid log level: %w", err)
	}
	zerolog.SetGlobalLevel(lvl)

	if cfg.Pretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	}
	return nil
}

func serveCmd(c *cli.Context) error {
	return New(configFrom(c))
}

func convertCmd(c *cli.Context) error {
	if c.NArg() < 2 {
		return cli.ShowSubcommandHelp(c)
	}

	catalog := model.DefaultCatalog()
	from, okFrom := catalog.Lookup(c.Args().Get(0))
	to, okTo := catalog.Lookup(c.Args().Get(1))
	if !okFrom || !okTo {
		return fmt.Errorf("invalid conversion for pair: %s/%s", c.Args().Get(0), c.Args().Get(1))
	}

	amount := 1.0
	if c.NArg() > 2 {
		v, ok := conversion.ParseAmount(c.Args().Get(2))
		if !ok {
			return fmt.Errorf("invalid amount %q", c.Args().Get(2))
		}
		amount = v
	}

	a, err := open(c.Context, configFrom(c))
	if err != nil {
		return err
	}
	defer a.close()

	result := conversion.Convert(from.Code, to.Code, amount, a.rates.Rates())
	fmt.Fprintf(c.App.Writer, "%s %s = %s %s\n", conversion.FormatAmount(amount), from.Code, conversion.FormatAmount(result), to.Code)

	if a.rates.Expired() {
		fmt.Fprintln(c.App.Writer, "rates are out of date, run `fxpad rates --refresh`")
	}
	return nil
}

func ratesCmd(c *cli.Context) error {
	a, err := open(c.Context, configFrom(c))
	if err != nil {
		return err
	}
	defer a.close()

	if c.Bool("refresh") {
		err := a.rates.FetchAndUpdate(c.Context)
		switch {
		case errors.Is(err, cache.ErrNotSaved):
			fmt.Fprintf(c.App.Writer, "rates refreshed but not saved: %v\n", err)
		case err != nil:
			fmt.Fprintf(c.App.Writer, "refresh failed, showing last known rates: %v\n", err)
		}
	}

	snapshot := a.rates.Cache()
	status := "fresh"
	if a.rates.Expired() {
		status = "expired"
	}
	fmt.Fprintf(c.App.Writer, "pivot %s, captured %s (%s old, %s)\n",
		snapshot.Rates.Pivot(), snapshot.Timestamp.Format(time.RFC3339), snapshot.Age(time.Now()).Round(time.Second), status)

	for _, code := range snapshot.Rates.Codes() {
		rate, _ := snapshot.Rates.Rate(code)
		fmt.Fprintf(c.App.Writer, "%s %s\n", code, strconv.FormatFloat(rate, 'f', -1, 64))
	}
	return nil
}

func resetCmd(c *cli.Context) error {
	a, err := open(c.Context, configFrom(c))
	if err != nil {
		return err
	}
	defer a.close()

	if err := a.prefs.Clear(c.Context); err != nil {
		return fmt.Errorf("unable to clear preferences: %w", err)
	}
	fmt.Fprintln(c.App.Writer, "preferences cleared")
	return nil
}
