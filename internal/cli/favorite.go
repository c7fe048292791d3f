package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tessro/chime/internal/bose"
	"github.com/tessro/chime/internal/favorites"
	"github.com/tessro/chime/internal/soundtouch"
)

var favoriteDevice string

var favoriteCmd = &cobra.Command{
	Use:     "favorite",
	Aliases: []string{"fav"},
	Short:   "Save and replay content across speakers",
	Long: `Save what a speaker is playing and replay it later, on any
speaker. Unlike hardware presets, favorites live in chime's own config
and are not limited to six slots.`,
}

var favoriteListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved favorites",
	RunE:  runFavoriteList,
}

var favoriteAddCmd = &cobra.Command{
	Use:   "add [name]",
	Short: "Save what is currently playing",
	Long: `Save the content currently playing on a speaker as a favorite.
The name defaults to the content's own name.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runFavoriteAdd,
}

var favoriteRemoveCmd = &cobra.Command{
	Use:   "remove <name>",
	Short: "Remove a favorite",
	Args:  cobra.ExactArgs(1),
	RunE:  runFavoriteRemove,
}

var favoritePlayCmd = &cobra.Command{
	Use:   "play <name>",
	Short: "Play a favorite",
	Args:  cobra.ExactArgs(1),
	RunE:  runFavoritePlay,
}

func init() {
	favoriteCmd.PersistentFlags().StringVarP(&favoriteDevice, "device", "d", "", "target device")
	favoriteCmd.AddCommand(favoriteListCmd)
	favoriteCmd.AddCommand(favoriteAddCmd)
	favoriteCmd.AddCommand(favoriteRemoveCmd)
	favoriteCmd.AddCommand(favoritePlayCmd)
	rootCmd.AddCommand(favoriteCmd)
}

func runFavoriteList(cmd *cobra.Command, args []string) error {
	store, err := favorites.Open("")
	if err != nil {
		return err
	}

	favs := store.List()

	if JSONOutput() {
		return json.NewEncoder(os.Stdout).Encode(favs)
	}

	if len(favs) == 0 {
		fmt.Println("No favorites saved. Play something and run 'chime favorite add'.")
		return nil
	}

	table := NewTable("NAME", "SOURCE", "TYPE")
	for _, f := range favs {
		table.Row(f.Name, f.Source, f.ItemType)
	}
	table.Flush()
	return nil
}

// currentContent reads the playing content off a speaker as a favorite.
func currentContent(ctx context.Context, sess *session) (favorites.Favorite, error) {
	if sess.speaker != nil {
		now, err := sess.speaker.GetNowPlaying(ctx)
		if err != nil {
			return favorites.Favorite{}, err
		}
		item := now.Container.ContentItem
		return favorites.Favorite{
			Name:          item.Name,
			Source:        item.Source,
			ItemType:      item.Type,
			Location:      item.Location,
			SourceAccount: item.SourceAccount,
			ContainerArt:  item.ContainerArt,
			IsPresetable:  item.Presetable,
		}, nil
	}

	now, err := sess.client.GetNowPlaying(ctx)
	if err != nil {
		return favorites.Favorite{}, err
	}
	item := now.ContentItem
	return favorites.Favorite{
		Name:          item.Name,
		Source:        item.Source,
		ItemType:      item.Type,
		Location:      item.Location,
		SourceAccount: item.SourceAccount,
		ContainerArt:  item.ContainerArt,
		IsPresetable:  item.IsPresetable,
	}, nil
}

func runFavoriteAdd(cmd *cobra.Command, args []string) error {
	sess, err := openSession(cmd.Context(), favoriteDevice)
	if err != nil {
		return err
	}
	defer sess.Close()

	fav, err := currentContent(cmd.Context(), sess)
	if err != nil {
		return fmt.Errorf("read current content: %w", err)
	}
	if len(args) == 1 {
		fav.Name = args[0]
	}

	store, err := favorites.Open("")
	if err != nil {
		return err
	}
	if err := store.Add(fav); err != nil {
		return fmt.Errorf("save favorite: %w", err)
	}

	if JSONOutput() {
		return json.NewEncoder(os.Stdout).Encode(fav)
	}
	fmt.Printf("⭐ Saved %q (%s)\n", fav.Name, fav.Source)
	return nil
}

func runFavoriteRemove(cmd *cobra.Command, args []string) error {
	store, err := favorites.Open("")
	if err != nil {
		return err
	}

	fav, ok := store.Find(args[0])
	if !ok {
		return fmt.Errorf("no favorite named %q", args[0])
	}
	if err := store.Remove(fav.Location); err != nil {
		return err
	}

	fmt.Printf("✓ Removed %q\n", fav.Name)
	return nil
}

func runFavoritePlay(cmd *cobra.Command, args []string) error {
	store, err := favorites.Open("")
	if err != nil {
		return err
	}
	fav, ok := store.Find(args[0])
	if !ok {
		return fmt.Errorf("no favorite named %q", args[0])
	}

	sess, err := openSession(cmd.Context(), favoriteDevice)
	if err != nil {
		return err
	}
	defer sess.Close()

	if sess.speaker != nil {
		err = sess.speaker.PlayPreset(cmd.Context(), bose.ContentItem{
			Source:        fav.Source,
			SourceAccount: fav.SourceAccount,
			Location:      fav.Location,
			Name:          fav.Name,
			ContainerArt:  fav.ContainerArt,
			Presetable:    fav.IsPresetable,
			Type:          fav.ItemType,
		})
	} else {
		err = sess.client.Select(cmd.Context(), soundtouch.ContentItem{
			Source:        fav.Source,
			Type:          fav.ItemType,
			Location:      fav.Location,
			SourceAccount: fav.SourceAccount,
			IsPresetable:  fav.IsPresetable,
			Name:          fav.Name,
			ContainerArt:  fav.ContainerArt,
		})
	}
	if err != nil {
		return fmt.Errorf("play favorite: %w", err)
	}

	if JSONOutput() {
		return json.NewEncoder(os.Stdout).Encode(map[string]string{"playing": fav.Name})
	}
	fmt.Printf("▶ %s\n", fav.Name)
	return nil
}
