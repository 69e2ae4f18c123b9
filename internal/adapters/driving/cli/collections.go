package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var collectionsCmd = &cobra.Command{
	Use:   "collections",
	Short: "Manage vector collections",
	Long:  `Create, delete, list, or inspect the vector collections documents are indexed into.`,
}

var collectionsCreateCmd = &cobra.Command{
	Use:   "create [name]",
	Short: "Create a collection",
	Long:  `Creates a collection sized to the configured embedding model.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runCollectionsCreate,
}

var collectionsDeleteCmd = &cobra.Command{
	Use:   "delete [name]",
	Short: "Delete a collection and all its points",
	Args:  cobra.ExactArgs(1),
	RunE:  runCollectionsDelete,
}

var collectionsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List collections",
	Args:  cobra.NoArgs,
	RunE:  runCollectionsList,
}

var collectionsDescribeCmd = &cobra.Command{
	Use:   "describe [name]",
	Short: "Show collection status and point counts",
	Args:  cobra.ExactArgs(1),
	RunE:  runCollectionsDescribe,
}

func init() {
	collectionsCmd.AddCommand(collectionsCreateCmd)
	collectionsCmd.AddCommand(collectionsDeleteCmd)
	collectionsCmd.AddCommand(collectionsListCmd)
	collectionsCmd.AddCommand(collectionsDescribeCmd)
	rootCmd.AddCommand(collectionsCmd)
}

func runCollectionsCreate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if err := ensureServices(ctx); err != nil {
		return err
	}

	result, err := collectionService.Create(ctx, args[0])
	if err != nil {
		return fmt.Errorf("create collection failed: %w", err)
	}

	cmd.Println(result.Message)
	return nil
}

func runCollectionsDelete(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if err := ensureServices(ctx); err != nil {
		return err
	}

	result, err := collectionService.Delete(ctx, args[0])
	if err != nil {
		return fmt.Errorf("delete collection failed: %w", err)
	}

	cmd.Println(result.Message)
	return nil
}

func runCollectionsList(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	if err := ensureServices(ctx); err != nil {
		return err
	}

	names, err := collectionService.List(ctx)
	if err != nil {
		return fmt.Errorf("list collections failed: %w", err)
	}

	if len(names) == 0 {
		cmd.Println("No collections.")
		return nil
	}

	for _, name := range names {
		cmd.Printf("  %s\n", name)
	}
	cmd.Printf("\nTotal: %d collections\n", len(names))
	return nil
}

func runCollectionsDescribe(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if err := ensureServices(ctx); err != nil {
		return err
	}

	info, err := collectionService.Describe(ctx, args[0])
	if err != nil {
		return fmt.Errorf("describe collection failed: %w", err)
	}

	cmd.Printf("Collection: %s\n\n", info.Name)
	cmd.Printf("  Status:    %s\n", info.Status)
	cmd.Printf("  Points:    %d\n", info.PointsCount)
	cmd.Printf("  Segments:  %d\n", info.SegmentsCount)
	return nil
}
