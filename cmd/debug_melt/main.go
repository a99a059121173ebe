package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strings"

	"sheet-reconciler/core/config"
	"sheet-reconciler/core/database"
	"sheet-reconciler/core/job"
	"sheet-reconciler/core/reconcile"
	"sheet-reconciler/core/source"
	"sheet-reconciler/core/storage"
)

// Usage: debug_melt <job> [a|b] [group key filter]
//
// Melts one side of a job and prints its keyed facts as JSON lines, followed by
// the entities the filter matches and the issues raised.
func main() {
	if len(os.Args) < 2 {
		log.Fatal("usage: debug_melt <job> [a|b] [group key filter]")
	}
	ref := os.Args[1]
	side := reconcile.SideA
	if len(os.Args) > 2 && strings.EqualFold(os.Args[2], "b") {
		side = reconcile.SideB
	}
	filter := ""
	if len(os.Args) > 3 {
		filter = os.Args[3]
	}

	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatal(err)
	}

	def, err := job.Resolve(ref, cfg.Reconcile.JobsDir)
	if err != nil {
		log.Fatal(err)
	}

	client, err := storage.NewClient(cfg.Storage)
	if err != nil {
		log.Fatal(err)
	}
	env := job.Env{Fetcher: source.NewFetcher(client, cfg.Storage.Bucket), Config: cfg.Reconcile}
	if def.NeedsDatabase(cfg.Reconcile) {
		db, err := database.Connect(cfg.Database)
		if err != nil {
			log.Fatal(err)
		}
		env.DB = db
	}

	runCfg, err := def.RunConfig(env)
	if err != nil {
		log.Fatal(err)
	}
	if err := runCfg.Validate(); err != nil {
		log.Fatal(err)
	}
	sc := runCfg.A
	if side == reconcile.SideB {
		sc = runCfg.B
	}

	ctx := context.Background()
	idx, err := reconcile.BuildSideIndex(ctx, side, sc, runCfg.Cardinality, runCfg.Concurrency, nil)
	if err != nil {
		log.Fatal(err)
	}

	fmt.Printf("=== %s side %s: %s ===\n", def.Name, side, sc.Source.Name())
	enc := json.NewEncoder(os.Stdout)
	for _, f := range idx.Facts {
		if filter != "" && !strings.Contains(f.GroupKey, filter) {
			continue
		}
		if err := enc.Encode(f); err != nil {
			log.Fatal(err)
		}
	}

	fmt.Println("\n=== Entities ===")
	for _, key := range idx.Index.Keys() {
		if filter != "" && !strings.Contains(key, filter) {
			continue
		}
		e, _ := idx.Index.Get(key)
		fmt.Printf("%s: %d attributes, %d candidate rows\n", key, len(e.Attributes), len(e.Candidates))
	}
	fmt.Printf("Total: %d facts, %d entities\n", len(idx.Facts), idx.Index.Len())

	if len(idx.Issues) > 0 {
		fmt.Println("\n=== Issues ===")
		for _, issue := range idx.Issues {
			fmt.Printf("%s %s/%s %s: %s\n", issue.Kind, issue.Source, issue.Unit, issue.Field, issue.Message)
		}
	}
}
