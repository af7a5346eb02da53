package cmd

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"mspro-labs/hopmetrics/internal/ai"
	"mspro-labs/hopmetrics/internal/embedder"
)

var embedCmd = &cobra.Command{
	Use:   "embed",
	Short: "Generate AI embeddings for new beers",
	Long:  `Finds beers in the database that are missing semantic vectors and generates them using the Gemini API.`,
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()

		store := openStore()
		defer store.Close()

		client, err := ai.NewClient(ctx)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to initialize AI client")
		}
		defer client.Close()

		n, err := embedder.Run(ctx, store, client, embedder.DefaultInterval)
		if err != nil {
			log.Fatal().Err(err).Msg("embedding process failed")
		}
		fmt.Printf("Embedded %d beers.\n", n)
	},
}

func init() {
	rootCmd.AddCommand(embedCmd)
}
