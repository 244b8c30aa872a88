// Command bracket prints the current playoff bracket.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"bigleague/stats/internal/bracket"
	"bigleague/stats/internal/config"
	"bigleague/stats/internal/models"
	"bigleague/stats/internal/repository"

	"github.com/dustin/go-humanize"
	"github.com/rs/zerolog/log"
)

func main() {
	format := flag.String("format", "json", "output format: json or text")
	flag.Parse()

	cfg := config.MustLoad()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := repository.NewDatabase(ctx, repository.Config{
		Host:     cfg.DatabaseHost,
		Port:     strconv.Itoa(cfg.DatabasePort),
		User:     cfg.DatabaseUser,
		Password: cfg.DatabasePassword,
		Database: cfg.DatabaseName,
		SSLMode:  cfg.DatabaseSSLMode,
		MaxConns: 2,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	svc := bracket.NewService(db.State, db.Ranks, nil, bracket.Options{
		StartWeek: cfg.PlayoffsStartWeek,
		ChampWeek: cfg.PlayoffsChampionshipWeek,
		Bids:      cfg.PlayoffsBids,
	})

	b, err := svc.Bracket(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to build bracket")
	}

	switch *format {
	case "text":
		writeText(os.Stdout, b)
	default:
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(b); err != nil {
			log.Fatal().Err(err).Msg("Failed to write bracket")
		}
	}
}

func writeText(w io.Writer, b *models.Bracket) {
	fmt.Fprintf(w, "%d teams, weeks %d-%d\n", b.NumTeams, b.StartWeek, b.ChampWeek)
	if !b.Resolved() {
		fmt.Fprintln(w, "not resolved yet")
		return
	}

	for i, stage := range b.Stages {
		fmt.Fprintf(w, "\nstage %d\n", i)
		for _, t := range stage {
			fmt.Fprintf(w, "  %-5s %-24s week %-2d %7.2f\n", humanize.Ordinal(t.Rank), t.User, t.Week, t.Points)
		}
	}
}
