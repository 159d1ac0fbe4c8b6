package main

import (
	"encoding/json"
	"io"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/directory-cli/internal/listing"
	"github.com/sells-group/directory-cli/internal/seo"
)

var (
	rankState  string
	rankCity   string
	rankLimit  int
	rankFormat string
)

var rankCmd = &cobra.Command{
	Use:   "rank",
	Short: "Print the ranked listings for a location",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		loc, err := seo.ParseLocation(rankState, rankCity)
		if err != nil {
			return err
		}

		env, err := initEnv(ctx, "rank")
		if err != nil {
			return err
		}
		defer env.Close()

		page, err := env.Listings.RankLocation(ctx, loc, rankLimit)
		if err != nil {
			return eris.Wrap(err, "rank")
		}
		return writeRanked(cmd.OutOrStdout(), rankFormat, loc, page)
	},
}

// writeRanked renders a ranked page as json or yaml.
func writeRanked(w io.Writer, format string, loc seo.Location, page []listing.Ranked) error {
	out := newRentalsResponse(loc, page)
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(out); err != nil {
			return eris.Wrap(err, "rank: encode yaml")
		}
		return enc.Close()
	default:
		return eris.Errorf("rank: unknown format %q (want json or yaml)", format)
	}
}

func init() {
	rankCmd.Flags().StringVar(&rankState, "state", "", "state code or name (required)")
	rankCmd.Flags().StringVar(&rankCity, "city", "", "city name or slug (required)")
	rankCmd.Flags().IntVar(&rankLimit, "limit", 20, "number of listings to print")
	rankCmd.Flags().StringVar(&rankFormat, "format", "json", "output format: json or yaml")
	_ = rankCmd.MarkFlagRequired("state")
	_ = rankCmd.MarkFlagRequired("city")
	rootCmd.AddCommand(rankCmd)
}
