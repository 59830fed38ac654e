package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/yungbote/gamerec-backend/internal/data/db"
	"github.com/yungbote/gamerec-backend/internal/data/repos"
	"github.com/yungbote/gamerec-backend/internal/services"
)

func newPrefsCmd(st *cliState) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prefs",
		Short: "Show or edit a user's preference profile",
	}
	cmd.PersistentFlags().String("user", "", "user id (default auth.default_user)")
	cmd.AddCommand(newPrefsShowCmd(st), newPrefsSetCmd(st))
	return cmd
}

// openPreferences opens only the profile store; no catalog or index is loaded.
func openPreferences(st *cliState, cmd *cobra.Command) (services.PreferencesService, string, func(), error) {
	cfg, err := st.loadConfig()
	if err != nil {
		return nil, "", nil, err
	}
	log := st.logger()
	database, err := db.Open(log, db.Config{Driver: cfg.Database.Driver, DSN: cfg.Database.DSN})
	if err != nil {
		return nil, "", nil, err
	}
	if err := db.AutoMigrateAll(database.DB()); err != nil {
		_ = database.Close()
		return nil, "", nil, err
	}
	user, _ := cmd.Flags().GetString("user")
	if strings.TrimSpace(user) == "" {
		user = cfg.Auth.DefaultUser
	}
	svc := services.NewPreferencesService(log, repos.NewPreferencesRepo(database.DB(), log), services.DefaultPreferences(cfg.Preferences.DefaultAvoidTags))
	return svc, user, func() { _ = database.Close() }, nil
}

func newPrefsShowCmd(st *cliState) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the profile as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, user, closeFn, err := openPreferences(st, cmd)
			if err != nil {
				return err
			}
			defer closeFn()
			p, err := svc.Get(cmd.Context(), user)
			if err != nil {
				return err
			}
			enc := yaml.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent(2)
			defer enc.Close()
			return enc.Encode(p)
		},
	}
}

func newPrefsSetCmd(st *cliState) *cobra.Command {
	var (
		liked      []string
		disliked   []string
		avoid      []string
		minScore   float64
		minReviews int64
		maxPrice   float64
		avoidNSFW  bool
	)
	cmd := &cobra.Command{
		Use:   "set",
		Short: "Change the given profile fields, keeping the rest",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, user, closeFn, err := openPreferences(st, cmd)
			if err != nil {
				return err
			}
			defer closeFn()
			p, err := svc.Get(cmd.Context(), user)
			if err != nil {
				return err
			}
			flags := cmd.Flags()
			if flags.Changed("liked") {
				p.LikedGenres = liked
			}
			if flags.Changed("disliked") {
				p.DislikedGenres = disliked
			}
			if flags.Changed("avoid") {
				p.AvoidTags = avoid
			}
			if flags.Changed("min-score") {
				p.MinUserScore = minScore
			}
			if flags.Changed("min-reviews") {
				p.MinNumReviews = minReviews
			}
			if flags.Changed("max-price") {
				if maxPrice > 0 {
					v := maxPrice
					p.MaxPrice = &v
				} else {
					p.MaxPrice = nil
				}
			}
			if flags.Changed("avoid-nsfw") {
				p.AvoidNSFW = avoidNSFW
			}
			saved, err := svc.Set(cmd.Context(), user, p)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "saved preferences for %s\n", user)
			enc := yaml.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent(2)
			defer enc.Close()
			return enc.Encode(saved)
		},
	}
	cmd.Flags().StringSliceVar(&liked, "liked", nil, "liked genres (replaces the list)")
	cmd.Flags().StringSliceVar(&disliked, "disliked", nil, "disliked genres (replaces the list)")
	cmd.Flags().StringSliceVar(&avoid, "avoid", nil, "tags to avoid (replaces the list)")
	cmd.Flags().Float64Var(&minScore, "min-score", 0, "minimum user score, 0-100")
	cmd.Flags().Int64Var(&minReviews, "min-reviews", 0, "minimum review count")
	cmd.Flags().Float64Var(&maxPrice, "max-price", 0, "maximum price; 0 clears the limit")
	cmd.Flags().BoolVar(&avoidNSFW, "avoid-nsfw", true, "hide games the safety classifier flags")
	return cmd
}
