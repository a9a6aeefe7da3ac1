package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/searchsync/internal/core/domain"
)

var recordsCmd = &cobra.Command{
	Use:   "records",
	Short: "Manage records in the content database",
}

var recordsImportCmd = &cobra.Command{
	Use:   "import [file]",
	Short: "Import records from a JSON file",
	Long: `Imports records from a JSON array. Use - to read standard input.

Each record looks like:

  {"class": "Page", "id": 1, "stage": "live", "last_edited": "2025-01-02T15:04:05Z",
   "data": {"Title": "Home"}, "depends_on": [{"class": "File", "id": 3}]}

stage defaults to live and last_edited to now.`,
	Args: cobra.ExactArgs(1),
	RunE: runRecordsImport,
}

func init() {
	recordsCmd.AddCommand(recordsImportCmd)
	rootCmd.AddCommand(recordsCmd)
}

// recordRef names another record.
type recordRef struct {
	Class string `json:"class"`
	ID    int64  `json:"id"`
}

// recordInput is one record of an import file.
type recordInput struct {
	Class      string         `json:"class"`
	ID         int64          `json:"id"`
	Stage      domain.Stage   `json:"stage"`
	LastEdited time.Time      `json:"last_edited"`
	Data       map[string]any `json:"data"`
	DependsOn  []recordRef    `json:"depends_on"`
}

func (r recordInput) document() domain.Document {
	return domain.Document{
		ID:          domain.DocumentID(r.Class, r.ID),
		RecordID:    r.ID,
		SourceClass: r.Class,
		Stage:       r.Stage,
		LastEdited:  r.LastEdited,
		Data:        r.Data,
	}
}

func runRecordsImport(cmd *cobra.Command, args []string) error {
	svc, err := requireServices()
	if err != nil {
		return err
	}
	if svc.Records == nil {
		return errors.New("record store not configured")
	}

	var in io.Reader = cmd.InOrStdin()
	if args[0] != "-" {
		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("opening %s: %w", args[0], err)
		}
		defer f.Close()
		in = f
	}

	var records []recordInput
	if err := json.NewDecoder(in).Decode(&records); err != nil {
		return fmt.Errorf("%w: decoding records: %v", domain.ErrInvalidInput, err)
	}

	ctx := cmd.Context()
	for i, r := range records {
		doc := r.document()
		if err := svc.Records.SaveRecord(ctx, doc); err != nil {
			return fmt.Errorf("record %d (%s): %w", i, doc.ID, err)
		}
		for _, dep := range r.DependsOn {
			dependency := domain.Document{SourceClass: dep.Class, RecordID: dep.ID}
			if err := svc.Records.AddDependency(ctx, doc, dependency); err != nil {
				return fmt.Errorf("record %d (%s): %w", i, doc.ID, err)
			}
		}
	}

	cmd.Printf("Imported %d records.\n", len(records))
	return nil
}
