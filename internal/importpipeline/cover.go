package importpipeline

import (
	"context"
	"strings"
)

// CoverExtractor extracts a cover image from a downloaded file into
// destJPEGPath, returning the path actually written (spec §4.6 step 4).
// The original splits this by file type (pdf_utils.extract_cover_from_pdf
// vs. an EPUB cover search); PDFCoverExtractor and EPUBCoverExtractor
// mirror that split as the two concrete strategies, but actual page
// rasterization and archive unpacking are out of scope for this rewrite
// (no example in the retrieval pack renders PDF pages or unpacks EPUB
// archives, and actual cover rendering is explicitly an external-provider
// concern) — both are wired as no-ops so the pipeline step itself (path
// construction, JPEG destination, failure handling) is fully exercised
// without a rendering dependency.
type CoverExtractor interface {
	Extract(ctx context.Context, sourcePath, destJPEGPath string) (string, error)
}

// NoopCoverExtractor never produces a cover; LibraryEntry.CoverPath stays
// nil. internal/covercleanup treats a nil cover_path as "nothing to
// reconcile" for that entry.
type NoopCoverExtractor struct{}

func (NoopCoverExtractor) Extract(ctx context.Context, sourcePath, destJPEGPath string) (string, error) {
	return "", nil
}

// PDFCoverExtractor is the cover strategy for PDF sources.
type PDFCoverExtractor struct{}

func (PDFCoverExtractor) Extract(ctx context.Context, sourcePath, destJPEGPath string) (string, error) {
	return "", nil
}

// EPUBCoverExtractor is the cover strategy for EPUB sources.
type EPUBCoverExtractor struct{}

func (EPUBCoverExtractor) Extract(ctx context.Context, sourcePath, destJPEGPath string) (string, error) {
	return "", nil
}

// ExtractorFor picks the strategy matching sourcePath's extension,
// falling back to NoopCoverExtractor for anything else.
func ExtractorFor(sourcePath string) CoverExtractor {
	switch {
	case strings.HasSuffix(strings.ToLower(sourcePath), ".pdf"):
		return PDFCoverExtractor{}
	case strings.HasSuffix(strings.ToLower(sourcePath), ".epub"):
		return EPUBCoverExtractor{}
	default:
		return NoopCoverExtractor{}
	}
}

// DispatchingExtractor is the CoverExtractor a Pipeline is configured
// with by default: it defers to ExtractorFor per call, so one Pipeline
// field picks the right strategy for every file type it sees.
type DispatchingExtractor struct{}

func (DispatchingExtractor) Extract(ctx context.Context, sourcePath, destJPEGPath string) (string, error) {
	return ExtractorFor(sourcePath).Extract(ctx, sourcePath, destJPEGPath)
}
