// Command scan predicts a range of days in one go and writes the result as
// zstd-compressed JSONL and/or into the SQLite archive.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"

	"github.com/konkers/sdv-predict/internal/forecast"
	"github.com/konkers/sdv-predict/internal/game"
	"github.com/konkers/sdv-predict/internal/rng"
	"github.com/konkers/sdv-predict/internal/save"
	"github.com/konkers/sdv-predict/internal/service"
	"github.com/konkers/sdv-predict/internal/store"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		log.Fatal(err)
	}
}

type options struct {
	dataDir, overlayDir string
	strategy            string

	facts      save.Facts
	mail       string
	from, to   uint
	cans       string
	contexts   string
	nights     bool
	stumpFell  bool
	capsule    bool
	geodes     string
	geodeCount int
	workers    int

	out, db, in string
	lint        bool
	reset       bool
}

func parseFlags(args []string) (options, error) {
	var o options
	fs := flag.NewFlagSet("scan", flag.ContinueOnError)
	fs.StringVar(&o.dataDir, "data", "data", "game data directory")
	fs.StringVar(&o.overlayDir, "overlay", "", "overlay (mod) data directory")
	fs.StringVar(&o.strategy, "strategy", "hashed", "seed strategy: legacy or hashed")

	fs.Uint64Var(&o.facts.GameID, "game", 0, "game id")
	fs.Int64Var(&o.facts.MultiplayerID, "mp", 0, "player multiplayer id")
	fs.Func("cracked", "geodes cracked so far", func(s string) error {
		return parseUint32(s, &o.facts.GeodesCracked)
	})
	fs.Func("trash-checked", "trash cans checked so far", func(s string) error {
		return parseUint32(s, &o.facts.TrashCansChecked)
	})
	fs.IntVar(&o.facts.DeepestMineLevel, "deepest", 0, "deepest mine level reached")
	fs.BoolVar(&o.facts.HasTrashBook, "trash-book", false, "trash book read")
	fs.BoolVar(&o.facts.QiBeansActive, "qi-beans", false, "Qi bean special order active")
	fs.BoolVar(&o.facts.ChildEligible, "child", false, "eligible for the child question")
	fs.StringVar(&o.mail, "mail", "", "comma-separated mail flags")

	fs.UintVar(&o.from, "from", 1, "first day counter")
	fs.UintVar(&o.to, "to", 28, "last day counter")
	fs.StringVar(&o.cans, "cans", "all", `garbage cans, comma-separated, "all" or ""`)
	fs.StringVar(&o.contexts, "contexts", "Default", "location contexts, comma-separated")
	fs.BoolVar(&o.nights, "nights", true, "predict night events")
	fs.BoolVar(&o.stumpFell, "stump-fell", false, "raccoon stump already fell")
	fs.BoolVar(&o.capsule, "capsule-seen", false, "strange capsule already seen")
	fs.StringVar(&o.geodes, "geodes", "", "geode ids to crack, comma-separated")
	fs.IntVar(&o.geodeCount, "geode-count", 10, "cracks per geode")
	fs.IntVar(&o.workers, "workers", 0, "parallel days (0: GOMAXPROCS)")

	fs.StringVar(&o.out, "out", "", "write records to this .jsonl.zst file")
	fs.StringVar(&o.db, "db", "", "store records in this SQLite archive")
	fs.StringVar(&o.in, "in", "", "read records from a .jsonl.zst file instead of scanning")
	fs.BoolVar(&o.reset, "reset", false, "drop the run's earlier records from -db before storing")
	fs.BoolVar(&o.lint, "lint", false, "only check game data conditions")
	if err := fs.Parse(args); err != nil {
		return options{}, err
	}
	if o.from > o.to {
		return options{}, fmt.Errorf("-from %d is after -to %d", o.from, o.to)
	}
	if o.geodeCount < 0 {
		return options{}, fmt.Errorf("-geode-count must not be negative, got %d", o.geodeCount)
	}
	if o.workers < 0 {
		return options{}, fmt.Errorf("-workers must not be negative, got %d", o.workers)
	}
	o.facts.Mail = split(o.mail)
	return o, nil
}

func parseUint32(s string, dst *uint32) error {
	var v uint32
	if _, err := fmt.Sscan(s, &v); err != nil {
		return err
	}
	*dst = v
	return nil
}

func split(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func run(ctx context.Context, args []string, stdout io.Writer) error {
	o, err := parseFlags(args)
	if err != nil {
		return err
	}
	strategy, err := rng.StrategyByName(o.strategy)
	if err != nil {
		return err
	}

	if o.in != "" {
		return replay(ctx, o, strategy, stdout)
	}

	tables, err := game.NewLoader(o.dataDir, o.overlayDir).Tables()
	if err != nil {
		return err
	}
	if o.lint {
		rep := service.Lint(tables)
		for _, c := range rep.UnknownDrops {
			fmt.Fprintf(stdout, "unknown drop condition: %q\n", c)
		}
		for _, c := range rep.UnknownWeather {
			fmt.Fprintf(stdout, "unknown weather condition: %q\n", c)
		}
		if n := len(rep.UnknownDrops) + len(rep.UnknownWeather); n > 0 {
			return fmt.Errorf("%d unknown conditions", n)
		}
		fmt.Fprintln(stdout, "all conditions recognized")
		return nil
	}

	req := forecast.Request{
		Facts:       o.facts,
		From:        uint32(o.from),
		To:          uint32(o.to),
		Contexts:    split(o.contexts),
		NightEvents: o.nights,
		Once:        save.OnceFlags{StumpFell: o.stumpFell, CapsuleSeen: o.capsule},
		Geodes:      split(o.geodes),
		GeodeCount:  o.geodeCount,
		Workers:     o.workers,
	}
	if o.cans == "all" {
		req.AllCans = true
	} else {
		req.Cans = split(o.cans)
	}
	rep, err := forecast.Scan(ctx, strategy, tables, req)
	if err != nil {
		return err
	}
	recs, err := rep.Records()
	if err != nil {
		return err
	}
	log.Printf("scanned days %d..%d: %d records", req.From, req.To, len(recs))

	if o.out != "" {
		if err := writeFile(o.out, recs); err != nil {
			return err
		}
	}
	if o.db != "" {
		if err := archive(ctx, o.db, store.Run{GameID: o.facts.GameID, Strategy: strategy.Name()}, recs, o.reset); err != nil {
			return err
		}
	}
	return printJSON(stdout, forecast.Summarize(rep))
}

// replay loads records exported earlier, optionally into the archive, and
// prints a per-kind count.
func replay(ctx context.Context, o options, strategy rng.SeedStrategy, stdout io.Writer) error {
	f, err := os.Open(o.in)
	if err != nil {
		return err
	}
	defer f.Close()
	recs, err := forecast.ReadJSONL(f)
	if err != nil {
		return fmt.Errorf("%s: %w", o.in, err)
	}
	if o.db != "" {
		if err := archive(ctx, o.db, store.Run{GameID: o.facts.GameID, Strategy: strategy.Name()}, recs, o.reset); err != nil {
			return err
		}
	}
	counts := make(map[string]int)
	for _, r := range recs {
		counts[r.Kind]++
	}
	return printJSON(stdout, map[string]any{"records": len(recs), "kinds": counts})
}

func writeFile(path string, recs []forecast.Record) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := forecast.WriteJSONL(f, recs); err != nil {
		_ = f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}

func archive(ctx context.Context, path string, run store.Run, recs []forecast.Record, reset bool) error {
	s, err := store.Open(path)
	if err != nil {
		return err
	}
	defer s.Close()
	if reset {
		n, err := s.Delete(ctx, run)
		if err != nil {
			return err
		}
		log.Printf("dropped %d earlier records from %s", n, path)
	}
	if err := s.Put(ctx, run, recs); err != nil {
		return err
	}
	log.Printf("archived %d records in %s", len(recs), path)
	return nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
