package main

import (
	"donation-matching-service/internal/domain"
	"donation-matching-service/internal/services"
	"fmt"
	"time"

	"github.com/k0kubun/pp/v3"
	"github.com/urfave/cli/v2"
)

var matchCommand = &cli.Command{
	Name:  "match",
	Usage: "Score one donation against the configured organizations and print the best matches",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:     "address",
			Aliases:  []string{"a"},
			Usage:    "Donor address to geocode",
			Required: true,
		},
		&cli.StringFlag{
			Name:    "food-type",
			Aliases: []string{"f"},
			Usage:   "raw, cooked, packaged or a verbatim label",
			Value:   "cooked",
		},
		&cli.Float64Flag{
			Name:    "quantity",
			Aliases: []string{"q"},
			Usage:   "Donation quantity",
			Value:   20,
		},
		&cli.StringFlag{
			Name:    "expiry",
			Aliases: []string{"e"},
			Usage:   "Expiry date (YYYY-MM-DD); defaults to tomorrow",
		},
		&cli.IntFlag{
			Name:  "top",
			Usage: "Number of candidates to print; defaults to TOP_N",
		},
		&cli.BoolFlag{
			Name:  "explain",
			Usage: "Print every intermediate score",
		},
		&cli.BoolFlag{
			Name:  "no-color",
			Usage: "Disable colored --explain output",
		},
	},
	Action: match,
}

func match(cCtx *cli.Context) error {
	ctx := cCtx.Context

	rt, err := bootstrap(ctx)
	if err != nil {
		return err
	}
	defer rt.Close()

	if _, err := rt.snapshots.Reload(ctx); err != nil {
		return err
	}

	if top := cCtx.Int("top"); top > 0 {
		rt.matcher.TopN = top
	}

	expiry := cCtx.String("expiry")
	if expiry == "" {
		expiry = time.Now().AddDate(0, 0, 1).Format(domain.ExpiryLayout)
	}

	req := services.SuggestRequest{
		DonorAddress: cCtx.String("address"),
		FoodType:     cCtx.String("food-type"),
		Quantity:     cCtx.Float64("quantity"),
		ExpiryDate:   expiry,
	}

	ranked, err := rt.matcher.Explain(ctx, req)
	if err != nil {
		return err
	}

	out := cCtx.App.Writer
	if len(ranked) == 0 {
		fmt.Fprintln(out, "no suitable organizations found")
		return nil
	}

	if cCtx.Bool("explain") {
		printer := pp.New()
		printer.SetOutput(out)
		printer.SetColoringEnabled(!cCtx.Bool("no-color"))
		printer.Println(ranked)
		return nil
	}

	for i, c := range ranked {
		fmt.Fprintf(out, "%d. %-32s %8.2f km  score %.4f  %s\n",
			i+1, c.Name, c.DistanceKm, c.MatchScore, c.Address)
	}
	return nil
}
