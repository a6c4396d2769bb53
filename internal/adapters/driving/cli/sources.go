package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var sourcesCmd = &cobra.Command{
	Use:   "sources",
	Short: "Inspect indexed sources",
	Long:  `List the sources stored in the vector index or migrate old records.`,
}

var sourcesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List indexed sources",
	RunE:  runSourcesList,
}

var sourcesMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Upgrade records written by older versions",
	Long: `Rewrites vector store records that still carry the old payload keys
into the current schema. Safe to run repeatedly; already upgraded
records are left untouched.`,
	RunE: runSourcesMigrate,
}

func init() {
	sourcesCmd.AddCommand(sourcesListCmd)
	sourcesCmd.AddCommand(sourcesMigrateCmd)
	rootCmd.AddCommand(sourcesCmd)
}

func runSourcesList(cmd *cobra.Command, _ []string) error {
	if vectorStore == nil {
		return errors.New("vector store not configured")
	}

	sources, err := vectorStore.DistinctSources(context.Background())
	if err != nil {
		return fmt.Errorf("failed to list sources: %w", err)
	}

	if len(sources) == 0 {
		cmd.Println("No sources indexed yet. Use 'docchat add' to ingest documents.")
		return nil
	}

	cmd.Println("Indexed sources:")
	for _, name := range sources {
		cmd.Printf("  %s\n", name)
	}
	cmd.Printf("\nTotal: %d\n", len(sources))
	return nil
}

func runSourcesMigrate(cmd *cobra.Command, _ []string) error {
	if vectorStore == nil {
		return errors.New("vector store not configured")
	}

	upgraded, err := vectorStore.MigrateLegacyPayloads(context.Background())
	if err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	if upgraded == 0 {
		cmd.Println("No records needed upgrading.")
		return nil
	}
	cmd.Printf("Upgraded %d records to the current payload schema.\n", upgraded)
	return nil
}
