package cmd

import (
	"fmt"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var rankLimit int

var rankCmd = &cobra.Command{
	Use:   "rank",
	Short: "Show stored beers ranked by alcohol per dollar",
	Long: `Lists every stored beer whose volume, ABV and price are all known, ordered by
value score (ounces of pure alcohol per dollar).`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		store := openStore()
		defer store.Close()

		beers, err := store.RankedBeers(cmd.Context(), rankLimit)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to load ranked beers")
		}
		if len(beers) == 0 {
			fmt.Println("No ranked beers yet. Scrape a menu first.")
			return
		}

		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.AppendHeader(table.Row{"#", "Beer", "Brewery", "Establishment", "Oz", "ABV", "Price", "Value", "BA"})
		for i, b := range beers {
			rating := ""
			if b.Rating != nil {
				rating = fmt.Sprintf("%.0f", *b.Rating)
			}
			t.AppendRow(table.Row{
				i + 1, b.Name, b.Brewery, b.Establishment,
				fmt.Sprintf("%.1f", b.VolumeOz),
				fmt.Sprintf("%.1f%%", b.ABV),
				fmt.Sprintf("$%.2f", b.Price),
				fmt.Sprintf("%.3f", b.ValueScore),
				rating,
			})
		}
		t.SetColumnConfigs([]table.ColumnConfig{
			{Number: 2, WidthMax: 32},
			{Number: 3, WidthMax: 24},
			{Number: 5, Align: text.AlignRight},
			{Number: 6, Align: text.AlignRight},
			{Number: 7, Align: text.AlignRight},
			{Number: 8, Align: text.AlignRight},
		})
		t.SetStyle(table.StyleRounded)
		t.Render()
	},
}

func init() {
	rankCmd.Flags().IntVarP(&rankLimit, "limit", "n", 50, "maximum beers to show (0 for all)")
	rootCmd.AddCommand(rankCmd)
}
