package main

import (
	"encoding/json"
	"io"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/directory-cli/internal/company"
)

var (
	dedupeName      string
	dedupeWebsite   string
	dedupeCompanyID int64
	dedupeFirstName string
	dedupeLastName  string
	dedupeEmail     string
)

var dedupeCmd = &cobra.Command{
	Use:   "dedupe",
	Short: "Check whether a company or contact already exists (read-only)",
}

var dedupeCompanyCmd = &cobra.Command{
	Use:   "company",
	Short: "Find a duplicate company by name and website",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		env, err := initEnv(ctx, "dedupe")
		if err != nil {
			return err
		}
		defer env.Close()

		m, err := env.Resolver.FindCompanyDuplicate(ctx, company.CompanyCandidate{Name: dedupeName, Website: dedupeWebsite})
		if err != nil {
			return eris.Wrap(err, "dedupe company")
		}
		return writeMatch(cmd.OutOrStdout(), m)
	},
}

var dedupeContactCmd = &cobra.Command{
	Use:   "contact",
	Short: "Find a duplicate contact within a company",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		env, err := initEnv(ctx, "dedupe")
		if err != nil {
			return err
		}
		defer env.Close()

		m, err := env.Resolver.FindContactDuplicate(ctx, company.ContactCandidate{
			CompanyID: dedupeCompanyID,
			FirstName: dedupeFirstName,
			LastName:  dedupeLastName,
			Email:     dedupeEmail,
		})
		if err != nil {
			return eris.Wrap(err, "dedupe contact")
		}
		return writeMatch(cmd.OutOrStdout(), m)
	},
}

// writeMatch prints a match as JSON, or {"duplicate": false} for nil.
func writeMatch[M any](w io.Writer, m *M) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if m == nil {
		return enc.Encode(duplicateResponse{})
	}
	return enc.Encode(duplicateResponse{Duplicate: true, Match: m})
}

func init() {
	dedupeCompanyCmd.Flags().StringVar(&dedupeName, "name", "", "company name (required)")
	dedupeCompanyCmd.Flags().StringVar(&dedupeWebsite, "website", "", "company website")
	_ = dedupeCompanyCmd.MarkFlagRequired("name")

	dedupeContactCmd.Flags().Int64Var(&dedupeCompanyID, "company-id", 0, "company the contact belongs to (required)")
	dedupeContactCmd.Flags().StringVar(&dedupeFirstName, "first-name", "", "first name")
	dedupeContactCmd.Flags().StringVar(&dedupeLastName, "last-name", "", "last name")
	dedupeContactCmd.Flags().StringVar(&dedupeEmail, "email", "", "email address")
	_ = dedupeContactCmd.MarkFlagRequired("company-id")

	dedupeCmd.AddCommand(dedupeCompanyCmd, dedupeContactCmd)
	rootCmd.AddCommand(dedupeCmd)
}
