package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/glefebvre/moviesearch/internal/config"
	"github.com/glefebvre/moviesearch/internal/models"
	"github.com/glefebvre/moviesearch/internal/render"
)

var favouritesCmd = &cobra.Command{
	Use:     "favourites",
	Aliases: []string{"favs"},
	Short:   "List and edit favourite movies",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context(), config.Get())
		if err != nil {
			return err
		}
		defer a.Close()

		render.New(cmd.OutOrStdout(), a.posters).Movies("Favourites", a.store.FavouriteMovies())
		return nil
	},
}

var favouritesAddCmd = &cobra.Command{
	Use:   "add <imdbID>",
	Short: "Fetch a movie from OMDb and add it to the favourites",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context(), config.Get())
		if err != nil {
			return err
		}
		defer a.Close()

		detail, err := a.store.FetchMovieDetail(cmd.Context(), args[0])
		if err != nil {
			render.New(cmd.OutOrStdout(), a.posters).Errors(a.store.APIErrors())
			return err
		}

		if err := a.store.AddMovieToFavourites(cmd.Context(), detail.ListItem()); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Added %s (%s) to favourites.\n", detail.Title, detail.Year)
		return nil
	},
}

var favouritesRemoveCmd = &cobra.Command{
	Use:     "remove <imdbID>",
	Aliases: []string{"rm"},
	Short:   "Remove a movie from the favourites",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context(), config.Get())
		if err != nil {
			return err
		}
		defer a.Close()

		if !a.store.IsFavourite(args[0]) {
			fmt.Fprintf(cmd.OutOrStdout(), "%s is not a favourite.\n", args[0])
			return nil
		}
		if err := a.store.RemoveMovieFromFavourites(cmd.Context(), models.MovieListItem{ImdbID: args[0]}); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Removed %s from favourites.\n", args[0])
		return nil
	},
}

func init() {
	favouritesCmd.AddCommand(favouritesAddCmd)
	favouritesCmd.AddCommand(favouritesRemoveCmd)
	rootCmd.AddCommand(favouritesCmd)
}
