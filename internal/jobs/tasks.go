package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	"github.com/periodiq/periodiq/internal/importpipeline"
	"github.com/periodiq/periodiq/internal/repository"
)

// ExtractCoverPayload names a single library entry to (re-)extract a
// cover for, used both by the Import Pipeline's async overflow and by
// internal/covercleanup's re-extraction queue.
type ExtractCoverPayload struct {
	LibraryEntryID string `json:"library_entry_id"`
	SourcePath     string `json:"source_path"`
	DestPath       string `json:"dest_path"`
}

// ExtractCoverHandler runs a CoverExtractor strategy off the Monitor's
// synchronous polling loop.
type ExtractCoverHandler struct {
	libraryEntries *repository.LibraryEntryRepository
}

func NewExtractCoverHandler(libraryEntries *repository.LibraryEntryRepository) *ExtractCoverHandler {
	return &ExtractCoverHandler{libraryEntries: libraryEntries}
}

func (h *ExtractCoverHandler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var p ExtractCoverPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}

	id, err := uuid.Parse(p.LibraryEntryID)
	if err != nil {
		return fmt.Errorf("parse library entry id: %w", err)
	}

	extractor := importpipeline.ExtractorFor(p.SourcePath)
	written, err := extractor.Extract(ctx, p.SourcePath, p.DestPath)
	if err != nil {
		return fmt.Errorf("extract cover: %w", err)
	}
	if written == "" {
		log.Printf("jobs: cover extraction produced nothing for %s", p.SourcePath)
		return nil
	}

	return h.libraryEntries.SetCoverPath(id, &written)
}

// RegisterHandlers wires every background task handler onto q's mux.
func RegisterHandlers(q *Queue, libraryEntries *repository.LibraryEntryRepository) {
	q.RegisterHandler(TaskExtractCover, NewExtractCoverHandler(libraryEntries))
}
