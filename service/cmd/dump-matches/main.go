// cmd/dump-matches/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/CodeIngame/OceanOfCode/service/internal/database"
	"github.com/CodeIngame/OceanOfCode/service/internal/models"
)

func main() {
	driver := flag.String("driver", database.SQLite, "Database backend: sqlite or postgres")
	dsn := flag.String("dsn", "data/matches.db", "Database path or connection string")
	matchID := flag.String("match", "", "Print the turns of this match only")
	limit := flag.Int("limit", 20, "Number of recent matches to list")
	flag.Parse()

	ctx := context.Background()
	store, err := database.Open(ctx, *driver, *dsn)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer store.Close()

	if *matchID != "" {
		id, err := uuid.Parse(*matchID)
		if err != nil {
			log.Fatalf("Bad match id %q: %v", *matchID, err)
		}
		m, err := store.Match(ctx, id)
		if err != nil {
			log.Fatalf("Failed to load match: %v", err)
		}
		turns, err := store.Turns(ctx, id)
		if err != nil {
			log.Fatalf("Failed to load turns: %v", err)
		}
		printMatch(m)
		for _, t := range turns {
			printTurn(t)
		}
		return
	}

	matches, err := store.Matches(ctx, *limit)
	if err != nil {
		log.Fatalf("Failed to query matches: %v", err)
	}
	for _, m := range matches {
		printMatch(m)
		fmt.Println("--------------------------------------------------")
	}
	fmt.Printf("Total matches: %d\n", len(matches))
}

func printMatch(m models.Match) {
	fmt.Printf("Match ID: %s\n", m.ID)
	fmt.Printf("Started: %s\n", m.StartedAt.Format(time.RFC822))
	fmt.Printf("Map: %dx%d, player %d, start %s\n", m.Width, m.Height, m.MyID, m.Start)
	fmt.Println(strings.Join(m.Map, "\n"))
}

func printTurn(t models.TurnRecord) {
	fmt.Printf("Turn %3d  %-9s %4d candidates  hit=%-16s %6dus\n",
		t.Turn, t.Mode, t.Candidates, t.HitCase, t.ElapsedMicros)
	for _, in := range t.Input {
		fmt.Printf("    < %s\n", in)
	}
	fmt.Printf("    > %s\n", t.Output)
}
