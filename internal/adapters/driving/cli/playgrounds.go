package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/playground/internal/core/domain"
	"github.com/custodia-labs/playground/internal/core/ports/driving"
)

var playgroundsCmd = &cobra.Command{
	Use:     "playgrounds",
	Aliases: []string{"playground", "pg"},
	Short:   "Manage playgrounds",
	Long: `Create and inspect playgrounds.

A playground groups documents under one embedding service and model. Its
chunks are embedded on first use and projected onto a 2-D map.`,
}

var playgroundsCreateCmd = &cobra.Command{
	Use:   "create [doc-id...]",
	Short: "Create a playground from uploaded documents",
	Long: `Create a playground from one or more uploaded documents.

Embeddings are computed lazily, the first time points or queries are requested.
Documents already embedded with the same service and model are reused.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runPlaygroundsCreate,
}

var playgroundsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List playgrounds",
	Args:  cobra.NoArgs,
	RunE:  runPlaygroundsList,
}

var playgroundsGetCmd = &cobra.Command{
	Use:   "get [playground-id]",
	Short: "Show playground info",
	Args:  cobra.ExactArgs(1),
	RunE:  runPlaygroundsGet,
}

var playgroundsRenameCmd = &cobra.Command{
	Use:   "rename [playground-id] [title]",
	Short: "Rename a playground",
	Args:  cobra.ExactArgs(2),
	RunE:  runPlaygroundsRename,
}

var playgroundsDeleteCmd = &cobra.Command{
	Use:   "delete [playground-id]",
	Short: "Delete a playground with its points and queries",
	Args:  cobra.ExactArgs(1),
	RunE:  runPlaygroundsDelete,
}

var playgroundsDocsCmd = &cobra.Command{
	Use:   "docs [playground-id]",
	Short: "List the documents of a playground",
	Args:  cobra.ExactArgs(1),
	RunE:  runPlaygroundsDocs,
}

var playgroundsPointsCmd = &cobra.Command{
	Use:   "points [playground-id]",
	Short: "Print the 2-D point of every chunk",
	Long: `Print the 2-D point of every chunk in a playground.

The first call embeds the documents and fits the projection, which may take a
while. Later calls read the stored points.`,
	Args: cobra.ExactArgs(1),
	RunE: runPlaygroundsPoints,
}

var playgroundsChunkCmd = &cobra.Command{
	Use:   "chunk [playground-id] [chunk-id]",
	Short: "Print the text of a chunk",
	Args:  cobra.ExactArgs(2),
	RunE:  runPlaygroundsChunk,
}

var (
	createTitle       string
	createService     string
	createModel       string
	playgroundsFormat string
)

func init() {
	playgroundsCreateCmd.Flags().StringVarP(&createTitle, "title", "t", "", "Playground title")
	playgroundsCreateCmd.Flags().StringVarP(&createService, "service", "s",
		string(domain.ServiceSentenceTransformers), "Embedding service")
	playgroundsCreateCmd.Flags().StringVarP(&createModel, "model", "m", "", "Embedding model (default: service default)")
	addFormatFlag(playgroundsCreateCmd, &playgroundsFormat)
	addFormatFlag(playgroundsListCmd, &playgroundsFormat)
	addFormatFlag(playgroundsGetCmd, &playgroundsFormat)
	addFormatFlag(playgroundsDocsCmd, &playgroundsFormat)
	addFormatFlag(playgroundsPointsCmd, &playgroundsFormat)

	playgroundsCmd.AddCommand(playgroundsCreateCmd)
	playgroundsCmd.AddCommand(playgroundsListCmd)
	playgroundsCmd.AddCommand(playgroundsGetCmd)
	playgroundsCmd.AddCommand(playgroundsRenameCmd)
	playgroundsCmd.AddCommand(playgroundsDeleteCmd)
	playgroundsCmd.AddCommand(playgroundsDocsCmd)
	playgroundsCmd.AddCommand(playgroundsPointsCmd)
	playgroundsCmd.AddCommand(playgroundsChunkCmd)
	rootCmd.AddCommand(playgroundsCmd)
}

func runPlaygroundsCreate(cmd *cobra.Command, args []string) error {
	if playgroundService == nil {
		return errors.New("playground service not configured")
	}

	svc, err := domain.ParseService(createService)
	if err != nil {
		return err
	}

	pg, err := playgroundService.Create(cmd.Context(), driving.CreatePlaygroundRequest{
		Title:       createTitle,
		Service:     svc,
		Model:       createModel,
		DocumentIDs: args,
	})
	if err != nil {
		return fmt.Errorf("failed to create playground: %w", err)
	}

	if handled, err := writeStructured(cmd, playgroundsFormat, newPlaygroundView(*pg)); handled {
		return err
	}

	cmd.Printf("Created playground %q\n", pg.Title)
	cmd.Printf("  ID:    %s\n", pg.ID)
	cmd.Printf("  Model: %s / %s\n", pg.Service.Description(), pg.Model)
	return nil
}

func runPlaygroundsList(cmd *cobra.Command, _ []string) error {
	if playgroundService == nil {
		return errors.New("playground service not configured")
	}

	pgs, err := playgroundService.List(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to list playgrounds: %w", err)
	}

	views := make([]playgroundView, len(pgs))
	for i := range pgs {
		views[i] = newPlaygroundView(pgs[i])
	}
	if handled, err := writeStructured(cmd, playgroundsFormat, views); handled {
		return err
	}

	if len(pgs) == 0 {
		cmd.Println("No playgrounds yet. Create one with 'playground playgrounds create'.")
		return nil
	}

	cmd.Println("Playgrounds:")
	cmd.Println()
	for i := range pgs {
		cmd.Printf("  %s\n", pgs[i].ID)
		cmd.Printf("    Title:     %s\n", pgs[i].Title)
		cmd.Printf("    Model:     %s / %s\n", pgs[i].Service, pgs[i].Model)
		cmd.Printf("    Documents: %d\n", len(pgs[i].DocumentIDs))
		cmd.Println()
	}
	cmd.Printf("Total: %d playgrounds\n", len(pgs))
	return nil
}

func runPlaygroundsGet(cmd *cobra.Command, args []string) error {
	if playgroundService == nil {
		return errors.New("playground service not configured")
	}

	pg, err := playgroundService.Get(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("failed to get playground: %w", err)
	}

	if handled, err := writeStructured(cmd, playgroundsFormat, newPlaygroundView(*pg)); handled {
		return err
	}

	cmd.Printf("Playground: %s\n\n", pg.ID)
	cmd.Printf("  Title:     %s\n", pg.Title)
	cmd.Printf("  Service:   %s\n", pg.Service.Description())
	cmd.Printf("  Model:     %s\n", pg.Model)
	cmd.Printf("  Created:   %s\n", pg.CreatedAt.Format(timeLayout))
	cmd.Printf("  Documents: %s\n", strings.Join(pg.DocumentIDs, ", "))
	return nil
}

func runPlaygroundsRename(cmd *cobra.Command, args []string) error {
	if playgroundService == nil {
		return errors.New("playground service not configured")
	}

	pg, err := playgroundService.Rename(cmd.Context(), args[0], args[1])
	if err != nil {
		return fmt.Errorf("failed to rename playground: %w", err)
	}

	cmd.Printf("Renamed playground %s to %q\n", pg.ID, pg.Title)
	return nil
}

func runPlaygroundsDelete(cmd *cobra.Command, args []string) error {
	if playgroundService == nil {
		return errors.New("playground service not configured")
	}

	pg, err := playgroundService.Delete(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("failed to delete playground: %w", err)
	}

	cmd.Printf("Deleted playground %q (%s)\n", pg.Title, pg.ID)
	return nil
}

func runPlaygroundsDocs(cmd *cobra.Command, args []string) error {
	if playgroundService == nil {
		return errors.New("playground service not configured")
	}

	docs, err := playgroundService.Documents(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("failed to list playground documents: %w", err)
	}

	views := make([]documentView, len(docs))
	for i := range docs {
		views[i] = newDocumentView(docs[i])
	}
	if handled, err := writeStructured(cmd, playgroundsFormat, views); handled {
		return err
	}

	for i := range docs {
		cmd.Printf("  %s  %s\n", docs[i].ID, docs[i].Name)
	}
	return nil
}

func runPlaygroundsPoints(cmd *cobra.Command, args []string) error {
	if playgroundService == nil {
		return errors.New("playground service not configured")
	}

	points, err := playgroundService.Points(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("failed to compute points: %w", err)
	}

	if handled, err := writeStructured(cmd, playgroundsFormat, newPointViews(points)); handled {
		return err
	}

	for i := range points {
		cmd.Printf("  %s  %s\n", points[i].ID, formatPoint(&points[i]))
	}
	cmd.Printf("Total: %d points\n", len(points))
	return nil
}

func runPlaygroundsChunk(cmd *cobra.Command, args []string) error {
	if playgroundService == nil {
		return errors.New("playground service not configured")
	}

	text, err := playgroundService.Chunk(cmd.Context(), args[0], args[1])
	if err != nil {
		return fmt.Errorf("failed to get chunk: %w", err)
	}

	cmd.Println(text)
	return nil
}
