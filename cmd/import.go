package main

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/directory-cli/internal/fetcher"
	"github.com/sells-group/directory-cli/internal/importer"
)

var (
	importFile  string
	importSheet string
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import companies or contacts from CSV/XLSX without creating duplicates",
}

var importCompaniesCmd = &cobra.Command{
	Use:   "companies",
	Short: "Import companies (columns: name, website, phone, city, state)",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runImport(cmd, "companies")
	},
}

var importContactsCmd = &cobra.Command{
	Use:   "contacts",
	Short: "Import contacts (columns: company_id, first_name, last_name, email, title, phone)",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runImport(cmd, "contacts")
	},
}

func runImport(cmd *cobra.Command, kind string) error {
	ctx := cmd.Context()

	sheet := importSheet
	if sheet == "" {
		sheet = cfg.Import.SheetName
	}
	tbl, err := fetcher.ReadTable(importFile, fetcher.TableOptions{SheetName: sheet})
	if err != nil {
		return eris.Wrap(err, "import")
	}

	env, err := initEnv(ctx, "import")
	if err != nil {
		return err
	}
	defer env.Close()

	im := importer.New(env.Resolver)
	var stats importer.Stats
	if kind == "companies" {
		stats, err = im.ImportCompanyTable(ctx, tbl)
	} else {
		stats, err = im.ImportContactTable(ctx, tbl)
	}
	if err != nil {
		return eris.Wrapf(err, "import %s", kind)
	}

	zap.L().Info("import complete",
		zap.String("file", importFile),
		zap.String("batch_id", stats.BatchID),
		zap.Int("created", stats.Created),
		zap.Int("merged", stats.Merged),
		zap.Int("skipped", stats.Skipped),
		zap.Int("failed", stats.Failed),
	)
	return nil
}

func init() {
	importCmd.PersistentFlags().StringVar(&importFile, "file", "", "path to .csv, .tsv or .xlsx file (required)")
	importCmd.PersistentFlags().StringVar(&importSheet, "sheet", "", "xlsx sheet name (default from config, else first sheet)")
	_ = importCmd.MarkPersistentFlagRequired("file")
	importCmd.AddCommand(importCompaniesCmd, importContactsCmd)
	rootCmd.AddCommand(importCmd)
}
