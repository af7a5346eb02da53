package cmd

import (
	"fmt"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var establishmentsCmd = &cobra.Command{
	Use:     "establishments",
	Aliases: []string{"places"},
	Short:   "List tracked establishments",
	Args:    cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		store := openStore()
		defer store.Close()

		list, err := store.ListEstablishments(cmd.Context())
		if err != nil {
			log.Fatal().Err(err).Msg("failed to list establishments")
		}
		if len(list) == 0 {
			fmt.Println("No establishments tracked yet.")
			return
		}

		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.AppendHeader(table.Row{"Name", "Location", "Beers", "Last scraped", "URL"})
		for _, e := range list {
			last := ""
			if !e.LastScraped.IsZero() {
				last = e.LastScraped.Local().Format("2006-01-02 15:04")
			}
			t.AppendRow(table.Row{e.Name, e.Location, e.BeerCount, last, e.URL})
		}
		t.SetStyle(table.StyleRounded)
		t.Render()
	},
}

func init() {
	rootCmd.AddCommand(establishmentsCmd)
}
