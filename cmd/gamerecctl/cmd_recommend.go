package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/yungbote/gamerec-backend/internal/app"
	"github.com/yungbote/gamerec-backend/internal/domain"
	"github.com/yungbote/gamerec-backend/internal/services"
)

func newRecommendCmd(st *cliState) *cobra.Command {
	var (
		k       int
		user    string
		unsafe  bool
		reasons bool
	)
	cmd := &cobra.Command{
		Use:   "recommend <query>",
		Short: "Run the full recommendation pipeline locally and print a table",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := st.loadConfig()
			if err != nil {
				return err
			}
			a, err := app.NewCore(cmd.Context(), st.logger(), *cfg)
			if err != nil {
				return err
			}
			defer a.Close()

			req := services.RecommendRequest{Query: strings.Join(args, " "), K: k}
			if cmd.Flags().Changed("unsafe") {
				exclude := !unsafe
				req.ExcludeUnsafe = &exclude
			}
			if user == "" {
				user = cfg.Auth.DefaultUser
			}
			res, err := a.Services.Recommendations.Recommend(cmd.Context(), user, req)
			if err != nil {
				return err
			}
			printResults(cmd.OutOrStdout(), res.Results, reasons)
			return nil
		},
	}
	cmd.Flags().IntVar(&k, "k", 10, "number of results")
	cmd.Flags().StringVar(&user, "user", "", "profile to apply (default auth.default_user)")
	cmd.Flags().BoolVar(&unsafe, "unsafe", false, "include games the safety classifier flags")
	cmd.Flags().BoolVar(&reasons, "reasons", false, "print the reason line under each result")
	return cmd
}

func printResults(w io.Writer, results []domain.ScoredGame, reasons bool) {
	if len(results) == 0 {
		fmt.Fprintln(w, "no results")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tID\tNAME\tCOMPOSITE\tSIMILARITY\tSCORE\tREVIEWS\tPRICE")
	for i, r := range results {
		fmt.Fprintf(tw, "%d\t%d\t%s\t%.4f\t%.4f\t%s\t%s\t%s\n",
			i+1, r.ID, r.Name, r.CompositeScore, r.SimilarityScore,
			optFloat(r.UserScore, 0), optInt(r.NumReviewsTotal), optFloat(r.Price, 2))
		if reasons && r.Reason != "" {
			fmt.Fprintf(tw, "\t\t%s\t\t\t\t\t\n", r.Reason)
		}
	}
	_ = tw.Flush()
}

func optFloat(v *float64, prec int) string {
	if v == nil {
		return "-"
	}
	return strconv.FormatFloat(*v, 'f', prec, 64)
}

func optInt(v *int64) string {
	if v == nil {
		return "-"
	}
	return strconv.FormatInt(*v, 10)
}
