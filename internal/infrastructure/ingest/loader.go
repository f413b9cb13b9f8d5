// Package ingest loads the knowledge base from disk and chunks it into
// retrieval units. Markdown files are split on headings, PDFs on paragraph
// breaks. The core never touches files itself; it consumes the finished
// chunk sequence through the CorpusLoader port.
package ingest

import (
	"context"
	"fmt"
	"hash/fnv"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/virlabs/viraat-assistant/internal/core/domain"
	"github.com/virlabs/viraat-assistant/internal/infrastructure/chunking"
)

const (
	defaultMinChunkChars = 50
	maxChunkChars        = 2000
	oversizeOverlap      = 200
)

type Loader struct {
	sourcesPath   string
	minChunkChars int
	splitter      *chunking.Splitter
}

func New(sourcesPath string, minChunkChars int) *Loader {
	if minChunkChars <= 0 {
		minChunkChars = defaultMinChunkChars
	}
	return &Loader{
		sourcesPath:   sourcesPath,
		minChunkChars: minChunkChars,
		splitter:      chunking.NewSplitter(maxChunkChars, oversizeOverlap),
	}
}

// Load walks the sources directory and returns all chunks in deterministic
// (path-sorted) order. A missing directory is not fatal: the corpus is just
// empty and every search legitimately returns no matches.
func (l *Loader) Load(ctx context.Context) ([]domain.Chunk, error) {
	paths, err := l.listSources()
	if err != nil {
		return nil, err
	}

	var chunks []domain.Chunk
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		fileChunks, err := l.loadFile(path)
		if err != nil {
			slog.Warn("skip_unreadable_source", "path", path, "error", err)
			continue
		}
		chunks = append(chunks, fileChunks...)
	}

	slog.Info("knowledge_base_loaded", "files", len(paths), "chunks", len(chunks))
	return chunks, nil
}

// Fingerprint summarizes the current state of the sources directory so the
// ingest worker can detect content changes without re-reading every file.
func (l *Loader) Fingerprint() (string, error) {
	paths, err := l.listSources()
	if err != nil {
		return "", err
	}

	h := fnv.New64a()
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			continue
		}
		fmt.Fprintf(h, "%s|%d|%d;", path, info.Size(), info.ModTime().UnixNano())
	}
	return fmt.Sprintf("%x", h.Sum64()), nil
}

func (l *Loader) listSources() ([]string, error) {
	if _, err := os.Stat(l.sourcesPath); os.IsNotExist(err) {
		slog.Warn("knowledge_base_missing", "path", l.sourcesPath)
		return nil, nil
	}

	var paths []string
	err := filepath.WalkDir(l.sourcesPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		switch strings.ToLower(filepath.Ext(path)) {
		case ".md", ".txt", ".pdf":
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk sources: %w", err)
	}
	sort.Strings(paths)
	return paths, nil
}

func (l *Loader) loadFile(path string) ([]domain.Chunk, error) {
	source := filepath.Base(path)

	if strings.EqualFold(filepath.Ext(path), ".pdf") {
		text, err := extractPDFText(path)
		if err != nil {
			return nil, err
		}
		return l.chunkParagraphs(text, source), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read source: %w", err)
	}
	if strings.EqualFold(filepath.Ext(path), ".md") {
		return l.chunkMarkdown(string(data), source), nil
	}
	return l.chunkParagraphs(string(data), source), nil
}

// chunkMarkdown splits on headings so each chunk covers one coherent
// section. Short fragments between headings are merged forward until they
// clear the minimum chunk size.
func (l *Loader) chunkMarkdown(content, source string) []domain.Chunk {
	var chunks []domain.Chunk
	var current strings.Builder

	flush := func() {
		text := strings.TrimSpace(current.String())
		current.Reset()
		if len(text) >= l.minChunkChars {
			chunks = append(chunks, l.emit(text, source)...)
		}
	}

	for _, line := range strings.Split(content, "\n") {
		if strings.HasPrefix(line, "# ") || strings.HasPrefix(line, "## ") || strings.HasPrefix(line, "### ") {
			flush()
		}
		current.WriteString(line)
		current.WriteString("\n")
	}
	flush()
	return chunks
}

func (l *Loader) chunkParagraphs(content, source string) []domain.Chunk {
	var chunks []domain.Chunk
	for _, paragraph := range strings.Split(content, "\n\n") {
		text := strings.TrimSpace(paragraph)
		if len(text) >= l.minChunkChars {
			chunks = append(chunks, l.emit(text, source)...)
		}
	}
	return chunks
}

// emit turns one logical section into chunks. Sections under the size cap
// stay whole; oversized ones are re-split with overlap so no single chunk
// dominates its document's term statistics.
func (l *Loader) emit(text, source string) []domain.Chunk {
	if len([]rune(text)) <= maxChunkChars {
		return []domain.Chunk{{Text: text, Source: source}}
	}
	parts := l.splitter.Split(text)
	chunks := make([]domain.Chunk, 0, len(parts))
	for _, part := range parts {
		if len(part) >= l.minChunkChars {
			chunks = append(chunks, domain.Chunk{Text: part, Source: source})
		}
	}
	return chunks
}
