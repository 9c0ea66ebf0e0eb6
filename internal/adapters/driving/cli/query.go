package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "Run and list similarity queries",
}

var queryRunCmd = &cobra.Command{
	Use:   "run [playground-id] [text]",
	Short: "Find the chunks nearest to a query",
	Long: `Embed the query text with the playground's model, return the nearest chunks
and place the query on the playground map.

All remaining arguments are joined to form the query text.`,
	Args: cobra.MinimumNArgs(2),
	RunE: runQueryRun,
}

var queryListCmd = &cobra.Command{
	Use:   "list [playground-id]",
	Short: "List the queries of a playground",
	Args:  cobra.ExactArgs(1),
	RunE:  runQueryList,
}

var (
	queryFormat     string
	queryShowChunks bool
)

func init() {
	addFormatFlag(queryRunCmd, &queryFormat)
	addFormatFlag(queryListCmd, &queryFormat)
	queryRunCmd.Flags().BoolVarP(&queryShowChunks, "chunks", "c", false, "Print the text of each matched chunk")

	queryCmd.AddCommand(queryRunCmd)
	queryCmd.AddCommand(queryListCmd)
	rootCmd.AddCommand(queryCmd)
}

func runQueryRun(cmd *cobra.Command, args []string) error {
	if queryService == nil {
		return errors.New("query service not configured")
	}

	playgroundID := args[0]
	text := strings.Join(args[1:], " ")

	result, err := queryService.Run(cmd.Context(), playgroundID, text)
	if err != nil {
		return fmt.Errorf("query failed: %w", err)
	}

	if handled, err := writeStructured(cmd, queryFormat, newQueryView(*result)); handled {
		return err
	}

	cmd.Printf("Query: %s\n", result.Query.Text)
	cmd.Printf("Point: %s\n\n", formatPoint(result.Point))

	if len(result.Query.ResultIDs) == 0 {
		cmd.Println("No matching chunks.")
		return nil
	}

	cmd.Println("Results:")
	for i, id := range result.Query.ResultIDs {
		cmd.Printf("  %d. %s\n", i+1, id)
		if queryShowChunks && playgroundService != nil {
			chunk, err := playgroundService.Chunk(cmd.Context(), playgroundID, id)
			if err != nil {
				cmd.Printf("     (chunk unavailable: %v)\n", err)
				continue
			}
			cmd.Printf("     %s\n", truncate(strings.Join(strings.Fields(chunk), " "), 200))
		}
	}
	return nil
}

func runQueryList(cmd *cobra.Command, args []string) error {
	if queryService == nil {
		return errors.New("query service not configured")
	}

	results, err := queryService.List(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("failed to list queries: %w", err)
	}

	views := make([]queryView, len(results))
	for i := range results {
		views[i] = newQueryView(results[i])
	}
	if handled, err := writeStructured(cmd, queryFormat, views); handled {
		return err
	}

	if len(results) == 0 {
		cmd.Println("No queries yet.")
		return nil
	}

	for i := range results {
		q := results[i].Query
		cmd.Printf("  %s  %s\n", q.CreatedAt.Format(timeLayout), q.Text)
		cmd.Printf("    Point:   %s\n", formatPoint(results[i].Point))
		cmd.Printf("    Matches: %d\n", len(q.ResultIDs))
	}
	cmd.Printf("Total: %d queries\n", len(results))
	return nil
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
