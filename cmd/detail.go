package main

import (
	"github.com/spf13/cobra"

	"github.com/glefebvre/moviesearch/internal/config"
	"github.com/glefebvre/moviesearch/internal/render"
)

var detailCmd = &cobra.Command{
	Use:   "detail <imdbID>",
	Short: "Show the full record of one movie",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context(), config.Get())
		if err != nil {
			return err
		}
		defer a.Close()

		printer := render.New(cmd.OutOrStdout(), a.posters)
		detail, err := a.store.FetchMovieDetail(cmd.Context(), args[0])
		if err != nil {
			printer.Errors(a.store.APIErrors())
			return err
		}

		printer.Detail(detail)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(detailCmd)
}
