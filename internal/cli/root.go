// Package cli is the terminal front end: it drives a search state machine
// and prints every screen it produces.
package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/pageza/mealsearch/backend/config"
	"github.com/pageza/mealsearch/backend/internal/model"
	"github.com/pageza/mealsearch/backend/internal/service"
	"github.com/pageza/mealsearch/backend/internal/types"
	"github.com/pageza/mealsearch/backend/internal/view"
)

const name = "mealsearch"

var errSearchFailed = errors.New("search failed")

// New builds the root command writing to out
func New(out io.Writer) *cli.Command {
	return &cli.Command{
		Name:   name,
		Usage:  "Search TheMealDB recipes from the terminal",
		Writer: out,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "base-url",
				Value:   config.DefaultMealDBBaseURL,
				Usage:   "Recipe API base URL",
				Sources: cli.EnvVars("MEALDB_BASE_URL"),
			},
			&cli.DurationFlag{
				Name:  "timeout",
				Value: 30 * time.Second,
				Usage: "Connect and read timeout for each request",
			},
			&cli.StringFlag{
				Name:  "format",
				Value: "text",
				Usage: "Output format (text, json)",
			},
		},
		Commands: []*cli.Command{
			searchCmd(),
			lookupCmd(),
			randomCmd(),
		},
	}
}

// Execute runs the CLI with os.Args and exits non-zero on failure
func Execute() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := New(os.Stdout).Run(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		cancel()
		os.Exit(1)
	}
}

func searchCmd() *cli.Command {
	return &cli.Command{
		Name:      "search",
		Usage:     "Search recipes by name",
		ArgsUsage: "<query>",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			client, err := newClient(cmd)
			if err != nil {
				return err
			}
			p, err := newPrinter(cmd)
			if err != nil {
				return err
			}

			machine := service.NewSearchStateMachine(client)
			states, unsubscribe := machine.Subscribe()
			defer unsubscribe()

			machine.SubmitQuery(ctx, strings.Join(cmd.Args().Slice(), " "))

			for {
				select {
				case s := <-states:
					if err := p.screen(view.Render(s)); err != nil {
						return err
					}
					switch s.Kind() {
					case model.StateEmpty, model.StateSuccess:
						return nil
					case model.StateError:
						return fmt.Errorf("%w: %s", errSearchFailed, s.(model.ErrorState).Message)
					}
				case <-ctx.Done():
					return ctx.Err()
				}
			}
		},
	}
}

func lookupCmd() *cli.Command {
	return &cli.Command{
		Name:      "lookup",
		Usage:     "Show a recipe by id",
		ArgsUsage: "<id>",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.Args().Len() != 1 {
				return fmt.Errorf("lookup takes exactly one recipe id")
			}
			client, err := newClient(cmd)
			if err != nil {
				return err
			}
			p, err := newPrinter(cmd)
			if err != nil {
				return err
			}

			recipe, err := client.LookupRecipe(ctx, cmd.Args().First())
			if err != nil {
				return fmt.Errorf("lookup %s: %w", cmd.Args().First(), err)
			}
			return p.recipe(recipe)
		},
	}
}

func randomCmd() *cli.Command {
	return &cli.Command{
		Name:  "random",
		Usage: "Show a random recipe",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			client, err := newClient(cmd)
			if err != nil {
				return err
			}
			p, err := newPrinter(cmd)
			if err != nil {
				return err
			}

			recipe, err := client.RandomRecipe(ctx)
			if err != nil {
				return fmt.Errorf("random recipe: %w", err)
			}
			return p.recipe(recipe)
		},
	}
}

func newClient(cmd *cli.Command) (*service.MealDBClient, error) {
	timeout := cmd.Duration("timeout")
	if timeout <= 0 {
		return nil, fmt.Errorf("--timeout must be positive")
	}
	return service.NewMealDBClient(cmd.String("base-url"), timeout, timeout)
}

type printer struct {
	out  io.Writer
	json bool
}

func newPrinter(cmd *cli.Command) (*printer, error) {
	switch f := cmd.String("format"); f {
	case "text":
		return &printer{out: cmd.Root().Writer}, nil
	case "json":
		return &printer{out: cmd.Root().Writer, json: true}, nil
	default:
		return nil, fmt.Errorf("unknown output format: %q", f)
	}
}

func (p *printer) screen(s view.Screen) error {
	if p.json {
		return json.NewEncoder(p.out).Encode(s)
	}
	_, err := io.WriteString(p.out, view.Text(s))
	return err
}

func (p *printer) recipe(r *types.Recipe) error {
	if p.json {
		return json.NewEncoder(p.out).Encode(r)
	}
	card := view.NewCard(*r)
	fmt.Fprintf(p.out, "[%s] %s\n", card.ID, card.Title)
	if card.ImageURL != "" {
		fmt.Fprintf(p.out, "%s\n", card.ImageURL)
	}
	if instructions := types.StringValue(r.Instructions); instructions != "" {
		fmt.Fprintf(p.out, "\n%s\n", instructions)
	}
	return nil
}
