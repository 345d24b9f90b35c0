package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/glefebvre/moviesearch/internal/config"
	"github.com/glefebvre/moviesearch/internal/render"
)

var searchCmd = &cobra.Command{
	Use:   "search <title>",
	Short: "Search OMDb by title",
	Long: `Search OMDb for titles matching the given text and print the movies,
oldest first. Series and games are dropped unless --all is set.

Texts shorter than state.min_query_length characters are not sent.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		all, _ := cmd.Flags().GetBool("all")
		text := strings.Join(args, " ")

		a, err := newApp(cmd.Context(), config.Get())
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.store.UpdateSearchText(cmd.Context(), text); err != nil {
			return err
		}

		printer := render.New(cmd.OutOrStdout(), a.posters)
		status := a.store.SearchStatus()
		if !status.SearchedForMovie {
			fmt.Fprintf(cmd.OutOrStdout(), "Type at least %d characters to search.\n", a.cfg.State.MinQueryLength)
			return nil
		}

		items := a.store.Movies()
		if all {
			items = a.store.SearchData()
		}
		printer.Movies(fmt.Sprintf("Results for %q", text), items)
		printer.Errors(a.store.APIErrors())
		return nil
	},
}

func init() {
	searchCmd.Flags().Bool("all", false, "include series and games")
	rootCmd.AddCommand(searchCmd)
}
