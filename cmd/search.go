package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"mspro-labs/hopmetrics/internal/ai"
	"mspro-labs/hopmetrics/internal/db"
	"mspro-labs/hopmetrics/internal/searcher"
)

var searchLimit int

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Semantic search for beers by description",
	Long: `Uses AI to find stored beers that match the meaning of your query.
Examples:
  hopmetrics search "roasty and strong"
  hopmetrics search "crisp german lager"

History commands:
  hopmetrics search history
  hopmetrics search clear "query string"
  hopmetrics search clear all`,
	Args: cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		handleSearch(cmd.Context(), args)
	},
}

func init() {
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", searcher.DefaultLimit, "number of matches to show")
	rootCmd.AddCommand(searchCmd)
}

func handleSearch(ctx context.Context, args []string) {
	store := openStore()
	defer store.Close()

	switch strings.ToLower(args[0]) {
	case "history":
		showHistory(ctx, store)
	case "clear":
		if len(args) < 2 {
			log.Fatal().Msg(`usage: hopmetrics search clear "query text" (or 'all')`)
		}
		clearHistory(ctx, store, strings.TrimSpace(strings.Join(args[1:], " ")))
	default:
		performSearch(ctx, store, strings.Join(args, " "))
	}
}

func showHistory(ctx context.Context, store *db.Store) {
	entries, err := store.ListSearchHistory(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to list history")
	}
	if len(entries) == 0 {
		fmt.Println("No history found.")
		return
	}

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{"Searched", "Query"})
	for _, e := range entries {
		t.AppendRow(table.Row{e.CreatedAt.Local().Format("2006-01-02 15:04"), e.QueryText})
	}
	t.SetStyle(table.StyleRounded)
	t.Render()
}

func clearHistory(ctx context.Context, store *db.Store, target string) {
	var affected int64
	var err error
	if strings.EqualFold(target, "all") {
		affected, err = store.ClearAllSearchHistory(ctx)
	} else {
		affected, err = store.ClearSearchHistory(ctx, target)
	}
	if err != nil {
		log.Fatal().Err(err).Msg("failed to clear history")
	}
	fmt.Printf("Removed %d entry(s) from cache.\n", affected)
}

func performSearch(ctx context.Context, store *db.Store, query string) {
	client, err := ai.NewClient(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize AI client")
	}
	defer client.Close()

	results, err := searcher.Perform(ctx, store, client, query, searchLimit)
	if err != nil {
		log.Fatal().Err(err).Msg("search failed")
	}
	if len(results) == 0 {
		fmt.Println("No embedded beers yet. Run `hopmetrics embed` first.")
		return
	}

	fmt.Printf("Top matches for %q\n", query)
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{"#", "Match", "Beer", "Style", "Establishment", "Value"})
	for i, r := range results {
		t.AppendRow(table.Row{
			i + 1,
			fmt.Sprintf("%.1f%%", r.Score*100),
			r.Beer.Name,
			r.Beer.Style,
			r.Beer.Establishment,
			fmt.Sprintf("%.3f", r.Beer.ValueScore),
		})
	}
	t.SetStyle(table.StyleRounded)
	t.Render()
}
