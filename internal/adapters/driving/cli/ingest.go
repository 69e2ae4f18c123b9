package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/corpus-cli/internal/core/ports/driving"
)

var (
	ingestCollection string
	ingestParentID   string
	downloadOutput   string
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [file]",
	Short: "Ingest a document into a collection",
	Long: `Extracts text from the file, chunks and embeds it, indexes the vectors
and records the document in the catalog.`,
	Args: cobra.ExactArgs(1),
	RunE: runIngest,
}

var updateCmd = &cobra.Command{
	Use:   "update [doc-id] [file]",
	Short: "Replace a document's content with a new version",
	Long: `Indexes the new file content, purges the previous version's vectors and
swaps the catalog record to the new version.`,
	Args: cobra.ExactArgs(2),
	RunE: runUpdate,
}

var deleteCmd = &cobra.Command{
	Use:   "delete [doc-id]",
	Short: "Delete a document",
	Args:  cobra.ExactArgs(1),
	RunE:  runDelete,
}

var downloadCmd = &cobra.Command{
	Use:   "download [hash]",
	Short: "Download the stored file for a version hash",
	Args:  cobra.ExactArgs(1),
	RunE:  runDownload,
}

func init() {
	ingestCmd.Flags().StringVarP(&ingestCollection, "collection", "c", "", "target collection (required)")
	ingestCmd.Flags().StringVar(&ingestParentID, "parent", "", "link the document to a parent document id")
	_ = ingestCmd.MarkFlagRequired("collection")

	updateCmd.Flags().StringVarP(&ingestCollection, "collection", "c", "", "collection the document lives in (required)")
	_ = updateCmd.MarkFlagRequired("collection")

	downloadCmd.Flags().StringVarP(&downloadOutput, "output", "o", "", "write to file instead of the original filename")

	rootCmd.AddCommand(ingestCmd)
	rootCmd.AddCommand(updateCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(downloadCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if err := ensureServices(ctx); err != nil {
		return err
	}

	content, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("read %s: %w", args[0], err)
	}

	result, err := ingestService.Ingest(ctx, driving.IngestRequest{
		Filename:   filepath.Base(args[0]),
		Collection: ingestCollection,
		Content:    content,
		ParentID:   ingestParentID,
	})
	if err != nil {
		return fmt.Errorf("ingest failed: %w", err)
	}

	if !result.Success {
		cmd.Printf("Ingest failed: %s\n", result.Message)
		return nil
	}

	cmd.Printf("%s\n\n", result.Message)
	cmd.Printf("  Document:  %s\n", result.DocumentID)
	cmd.Printf("  Version:   %s\n", result.VersionHash)
	cmd.Printf("  Chunks:    %d\n", result.ChunkCount)
	return nil
}

func runUpdate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if err := ensureServices(ctx); err != nil {
		return err
	}

	content, err := os.ReadFile(args[1])
	if err != nil {
		return fmt.Errorf("read %s: %w", args[1], err)
	}

	result, err := ingestService.Ingest(ctx, driving.IngestRequest{
		Filename:   filepath.Base(args[1]),
		Collection: ingestCollection,
		Content:    content,
		UpdateID:   args[0],
	})
	if err != nil {
		return fmt.Errorf("update failed: %w", err)
	}

	if !result.Success {
		cmd.Printf("Update failed: %s\n", result.Message)
		return nil
	}

	cmd.Printf("%s\n\n", result.Message)
	cmd.Printf("  Document:  %s\n", result.DocumentID)
	cmd.Printf("  Version:   %s\n", result.VersionHash)
	cmd.Printf("  Chunks:    %d\n", result.ChunkCount)
	return nil
}

func runDelete(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if err := ensureServices(ctx); err != nil {
		return err
	}

	result, err := ingestService.Delete(ctx, args[0])
	if err != nil {
		return fmt.Errorf("delete failed: %w", err)
	}

	cmd.Println(result.Message)
	return nil
}

func runDownload(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if err := ensureServices(ctx); err != nil {
		return err
	}

	blob, result, err := ingestService.Download(ctx, args[0])
	if err != nil {
		return fmt.Errorf("download failed: %w", err)
	}
	if !result.Success {
		cmd.Printf("Download failed: %s\n", result.Message)
		return nil
	}

	target := downloadOutput
	if target == "" {
		target = blob.Filename
	}
	if target == "" {
		target = args[0]
	}

	if err := os.WriteFile(target, blob.Content, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", target, err)
	}

	cmd.Printf("Wrote %d bytes to %s\n", len(blob.Content), target)
	return nil
}
