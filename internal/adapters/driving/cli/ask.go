package cli

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/corpus-cli/internal/core/domain"
	"github.com/custodia-labs/corpus-cli/internal/core/ports/driving"
)

var (
	askCollections  []string
	askLimitContext bool
)

var (
	answerStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#7C3AED")).
			Padding(0, 1)

	sourceTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("#06B6D4"))

	mutedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6C7086"))
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask a question against the knowledge base",
	Long: `Routes the question to relevant collections, retrieves and reranks
evidence, and generates an answer grounded in the stored documents.`,
	Args: cobra.ExactArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().StringSliceVar(&askCollections, "collections", nil, "search only these collections, skipping routing")
	askCmd.Flags().BoolVar(&askLimitContext, "limit-context", false, "expand by page window instead of whole documents")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if err := ensureServices(ctx); err != nil {
		return err
	}

	result, err := retrievalService.Ask(ctx, driving.AskRequest{
		Question:     args[0],
		Collections:  askCollections,
		LimitContext: askLimitContext,
	})
	if err != nil {
		return fmt.Errorf("ask failed: %w", err)
	}

	if !result.Success {
		cmd.Println(result.Message)
		return nil
	}

	cmd.Println(answerStyle.Render(result.Answer.Text))
	cmd.Println()
	cmd.Println(sourceTitleStyle.Render("Sources"))
	cmd.Print(renderSources(result.Context))
	cmd.Println(mutedStyle.Render(fmt.Sprintf("Searched: %s", strings.Join(result.Collections, ", "))))
	return nil
}

// renderSources lists each evidence document with its pages, best scored
// first.
func renderSources(grouped domain.ChunksByDocument) string {
	type source struct {
		filename string
		hash     string
		pages    []int
		best     float64
	}

	sources := make([]source, 0, len(grouped))
	for hash, chunks := range grouped {
		if len(chunks) == 0 {
			continue
		}

		seen := make(map[int]struct{})
		src := source{filename: chunks[0].Filename, hash: hash}
		for _, chunk := range chunks {
			if chunk.Score > src.best {
				src.best = chunk.Score
			}
			if _, ok := seen[chunk.Page]; !ok {
				seen[chunk.Page] = struct{}{}
				src.pages = append(src.pages, chunk.Page)
			}
		}
		sort.Ints(src.pages)
		sources = append(sources, src)
	}
	sort.Slice(sources, func(i, j int) bool { return sources[i].best > sources[j].best })

	var b strings.Builder
	for _, src := range sources {
		pages := make([]string, len(src.pages))
		for i, p := range src.pages {
			pages[i] = fmt.Sprintf("%d", p)
		}
		fmt.Fprintf(&b, "  %s (pages %s)\n", src.filename, strings.Join(pages, ", "))
		fmt.Fprintf(&b, "    %s\n", mutedStyle.Render(src.hash))
	}
	return b.String()
}
