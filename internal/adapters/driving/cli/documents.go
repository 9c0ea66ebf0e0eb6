package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/playground/internal/adapters/driving/watch"
	"github.com/custodia-labs/playground/internal/core/domain"
)

var documentsCmd = &cobra.Command{
	Use:     "documents",
	Aliases: []string{"document", "doc"},
	Short:   "Manage uploaded documents",
	Long: `Upload, list, download or delete documents.

Deleting a document also deletes its cached embeddings and every playground
that contains it.`,
}

var documentsUploadCmd = &cobra.Command{
	Use:   "upload [file...]",
	Short: "Upload one or more files",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runDocumentsUpload,
}

var documentsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List uploaded documents",
	Args:  cobra.NoArgs,
	RunE:  runDocumentsList,
}

var documentsGetCmd = &cobra.Command{
	Use:   "get [doc-id]",
	Short: "Show document info",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocumentsGet,
}

var documentsDownloadCmd = &cobra.Command{
	Use:   "download [doc-id]",
	Short: "Write the original file to disk",
	Long: `Write the original bytes of a document to disk.

The file is written to the current directory under its uploaded name unless
--dest is given. Use --dest - to write to stdout.`,
	Args: cobra.ExactArgs(1),
	RunE: runDocumentsDownload,
}

var documentsDeleteCmd = &cobra.Command{
	Use:   "delete [doc-id]",
	Short: "Delete a document and the playgrounds that use it",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocumentsDelete,
}

var documentsWatchCmd = &cobra.Command{
	Use:   "watch [dir]",
	Short: "Upload files dropped into a directory",
	Long: `Watch a directory and upload every regular file created in it.

Hidden files and subdirectories are ignored. Press Ctrl+C to stop.`,
	Args: cobra.ExactArgs(1),
	RunE: runDocumentsWatch,
}

var (
	documentsFormat string
	downloadDest    string
)

func init() {
	addFormatFlag(documentsListCmd, &documentsFormat)
	addFormatFlag(documentsGetCmd, &documentsFormat)
	addFormatFlag(documentsUploadCmd, &documentsFormat)
	documentsDownloadCmd.Flags().StringVarP(&downloadDest, "dest", "d", "", "Destination path (- for stdout)")

	documentsCmd.AddCommand(documentsUploadCmd)
	documentsCmd.AddCommand(documentsListCmd)
	documentsCmd.AddCommand(documentsGetCmd)
	documentsCmd.AddCommand(documentsDownloadCmd)
	documentsCmd.AddCommand(documentsDeleteCmd)
	documentsCmd.AddCommand(documentsWatchCmd)
	rootCmd.AddCommand(documentsCmd)
}

func runDocumentsUpload(cmd *cobra.Command, args []string) error {
	if documentService == nil {
		return errors.New("document service not configured")
	}

	views := make([]documentView, 0, len(args))
	for _, path := range args {
		doc, err := uploadFile(cmd, path)
		if err != nil {
			return err
		}
		views = append(views, newDocumentView(*doc))
	}

	if handled, err := writeStructured(cmd, documentsFormat, views); handled {
		return err
	}

	for _, v := range views {
		cmd.Printf("Uploaded %s (%s, %s)\n", v.Name, v.MIMEType, humanSize(v.Size))
		cmd.Printf("  ID: %s\n", v.ID)
	}
	return nil
}

func uploadFile(cmd *cobra.Command, path string) (*domain.Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidInput, err)
	}
	defer f.Close()

	doc, err := documentService.Upload(cmd.Context(), filepath.Base(path), f)
	if err != nil {
		return nil, fmt.Errorf("failed to upload %s: %w", path, err)
	}
	return doc, nil
}

func runDocumentsList(cmd *cobra.Command, _ []string) error {
	if documentService == nil {
		return errors.New("document service not configured")
	}

	docs, err := documentService.List(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to list documents: %w", err)
	}

	views := make([]documentView, len(docs))
	for i := range docs {
		views[i] = newDocumentView(docs[i])
	}
	if handled, err := writeStructured(cmd, documentsFormat, views); handled {
		return err
	}

	if len(docs) == 0 {
		cmd.Println("No documents uploaded.")
		return nil
	}

	cmd.Println("Documents:")
	cmd.Println()
	for i := range docs {
		cmd.Printf("  %s\n", docs[i].ID)
		cmd.Printf("    Name: %s\n", docs[i].Name)
		cmd.Printf("    Type: %s  Size: %s\n", docs[i].MIMEType, humanSize(docs[i].Size))
		cmd.Println()
	}
	cmd.Printf("Total: %d documents\n", len(docs))
	return nil
}

func runDocumentsGet(cmd *cobra.Command, args []string) error {
	if documentService == nil {
		return errors.New("document service not configured")
	}

	doc, err := documentService.Get(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("failed to get document: %w", err)
	}

	if handled, err := writeStructured(cmd, documentsFormat, newDocumentView(*doc)); handled {
		return err
	}

	cmd.Printf("Document: %s\n\n", doc.ID)
	cmd.Printf("  Name:     %s\n", doc.Name)
	cmd.Printf("  Type:     %s\n", doc.MIMEType)
	cmd.Printf("  Size:     %s\n", humanSize(doc.Size))
	cmd.Printf("  Uploaded: %s\n", doc.CreatedAt.Format(timeLayout))
	return nil
}

func runDocumentsDownload(cmd *cobra.Command, args []string) error {
	if documentService == nil {
		return errors.New("document service not configured")
	}

	rc, doc, err := documentService.Open(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("failed to open document: %w", err)
	}
	defer rc.Close()

	if downloadDest == "-" {
		_, err = io.Copy(cmd.OutOrStdout(), rc)
		return err
	}

	dest := downloadDest
	if dest == "" {
		dest = doc.Name
	}
	out, err := os.OpenFile(dest, os.O_CREATE|os.O_WRONLY|os.O_EXCL, 0o644)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", dest, err)
	}
	n, err := io.Copy(out, rc)
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", dest, err)
	}

	cmd.Printf("Wrote %s (%s)\n", dest, humanSize(n))
	return nil
}

func runDocumentsDelete(cmd *cobra.Command, args []string) error {
	if documentService == nil {
		return errors.New("document service not configured")
	}

	deleted, err := documentService.Delete(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}

	cmd.Printf("Deleted document %s\n", args[0])
	for _, id := range deleted {
		cmd.Printf("  Deleted playground %s\n", id)
	}
	return nil
}

func runDocumentsWatch(cmd *cobra.Command, args []string) error {
	if documentService == nil {
		return errors.New("document service not configured")
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	w := watch.New(args[0], documentService)
	cmd.Printf("Watching %s for new files (Ctrl+C to stop)\n", args[0])

	return w.Run(ctx, func(r watch.Result) {
		if r.Err != nil {
			cmd.PrintErrf("Failed to upload %s: %v\n", filepath.Base(r.Path), r.Err)
			return
		}
		cmd.Printf("Uploaded %s as %s\n", r.Document.Name, r.Document.ID)
	})
}
