package ingest

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"

	"docqa-be/internal/constant"
	"docqa-be/internal/entity"
	"docqa-be/internal/pkg/logger"
	"docqa-be/pkg/chunker"
	"docqa-be/pkg/embedding"
	"docqa-be/pkg/events"
	"docqa-be/pkg/hwpx"
	"docqa-be/pkg/parser"
	"docqa-be/pkg/render"
	"docqa-be/pkg/tables"
	"docqa-be/pkg/textutil"
	"docqa-be/pkg/vectorstore"

	"github.com/ThreeDotsLabs/watermill/message"
	"golang.org/x/sync/errgroup"
)

// FAST_MODE keeps at most this many prose chunks per document.
const fastModeChunkCap = 24

// Options are the ingestion knobs; see config.IngestConfig for their
// environment bindings.
type Options struct {
	MaxChunksEmb      int // 0 = unlimited
	FastMode          bool
	RenderPages       bool
	RenderDPI         int
	EnableTableIndex  bool
	MaxTableRowsEmb   int // 0 disables row embedding
	MaxCaptionPages   int
	Hwp2TxtExe        string
	PdfToPpmExe       string
	InsertConcurrency int
}

// Result summarizes one ingestion for the upload response.
type Result struct {
	Chunks             int
	Stored             string
	Tables             int
	Pages              int
	ImageCaptionChunks int
}

// Extractor produces the structured document for one saved source file.
// *parser.Bridge is the production implementation.
type Extractor interface {
	Extract(ctx context.Context, inputPath, outDir string) (*parser.ParsedDocument, error)
}

// Pipeline orchestrates extract → chunk → embed → insert for one uploaded
// file. Fragment inserts fan out with a bounded concurrency; embedding calls
// are batched, one network request per group.
type Pipeline struct {
	opts      Options
	storage   *Storage
	bridge    Extractor
	chunks    *chunker.Chunker
	embedder  embedding.Provider
	store     *vectorstore.Store
	publisher message.Publisher
	log       logger.ILogger
}

func NewPipeline(
	opts Options,
	storage *Storage,
	bridge Extractor,
	chunks *chunker.Chunker,
	embedder embedding.Provider,
	store *vectorstore.Store,
	publisher message.Publisher,
	log logger.ILogger,
) *Pipeline {
	if opts.InsertConcurrency <= 0 {
		opts.InsertConcurrency = 8
	}
	return &Pipeline{
		opts:      opts,
		storage:   storage,
		bridge:    bridge,
		chunks:    chunks,
		embedder:  embedder,
		store:     store,
		publisher: publisher,
		log:       log,
	}
}

func fragmentTypeForExt(ext string) (string, bool) {
	switch ext {
	case ".pdf":
		return constant.FragmentTypePdf, true
	case ".txt", ".md":
		return constant.FragmentTypeText, true
	case ".doc", ".docx", ".ppt", ".pptx", ".xls", ".xlsx":
		return constant.FragmentTypeOffice, true
	case ".hwp":
		return constant.FragmentTypeHwp, true
	case ".hwpx":
		return constant.FragmentTypeHwpx, true
	}
	return "", false
}

var imageExts = map[string]bool{
	".png": true, ".jpg": true, ".jpeg": true, ".gif": true,
	".bmp": true, ".webp": true, ".tiff": true,
}

// Ingest runs the full pipeline for one uploaded file.
func (p *Pipeline) Ingest(ctx context.Context, fileBytes []byte, originalName, mime string) (*Result, error) {
	if len(fileBytes) == 0 {
		return nil, &InputError{Msg: "empty file"}
	}

	ext := strings.ToLower(filepath.Ext(originalName))
	if imageExts[ext] {
		return nil, &InputError{Msg: "image-only uploads are not supported"}
	}
	fragType, ok := fragmentTypeForExt(ext)
	if !ok {
		return nil, &InputError{Msg: "unsupported file extension: " + ext}
	}
	if ext == ".hwp" && p.opts.Hwp2TxtExe == "" {
		return nil, &UnsupportedTypeError{Ext: ext, Reason: "no HWP converter configured"}
	}

	// Step 1: persist the original.
	stored, err := p.storage.SaveOriginal(fileBytes, originalName)
	if err != nil {
		return nil, &IngestError{Stage: StageStore, Err: err}
	}

	// Step 2: dispatch the extractor.
	doc, err := p.extract(ctx, fileBytes, stored, ext)
	if err != nil {
		return nil, err
	}
	cleaned := textutil.Clean(doc.Text)
	if cleaned == "" && len(doc.Tables) == 0 && len(doc.Pictures) == 0 {
		return nil, &InputError{Msg: "no extractable content"}
	}

	result := &Result{Stored: stored.RelPath}

	// Step 3: optional page rendering (best-effort).
	if p.opts.RenderPages && ext == ".pdf" {
		pages, err := render.Pages(ctx, p.opts.PdfToPpmExe, stored.AbsPath, filepath.Join(stored.DerivedDir, "pages"), p.opts.RenderDPI)
		if err != nil {
			p.log.Warn("ingest", "page rendering failed", map[string]interface{}{"error": err.Error(), "sha256": stored.SHA256})
		} else {
			result.Pages = pages
		}
	}

	// Step 4: table indexing.
	if p.opts.EnableTableIndex && len(doc.Tables) > 0 {
		n, err := p.indexTables(ctx, doc.Tables, stored, originalName)
		if err != nil {
			return nil, err
		}
		result.Tables = n
	}

	// Step 5: image indexing.
	if len(doc.Pictures) > 0 {
		n, err := p.indexPictures(ctx, doc.Pictures, stored, originalName)
		if err != nil {
			return nil, err
		}
		result.ImageCaptionChunks = n
	}

	// Step 6: prose chunking and embedding.
	chunksInserted, err := p.indexProse(ctx, cleaned, fragType, stored, originalName)
	if err != nil {
		return nil, err
	}
	result.Chunks = chunksInserted

	p.publishStored(stored, ext)

	return result, nil
}

func (p *Pipeline) extract(ctx context.Context, fileBytes []byte, stored *StoredFile, ext string) (*parser.ParsedDocument, error) {
	switch ext {
	case ".txt", ".md":
		text, err := textutil.DecodeText(fileBytes)
		if err != nil {
			return nil, &IngestError{Stage: StageExtract, Err: err}
		}
		return &parser.ParsedDocument{Text: text, Engine: "text"}, nil

	case ".hwpx":
		doc, err := hwpx.Extract(fileBytes)
		if err != nil {
			return nil, &IngestError{Stage: StageExtract, Err: err}
		}
		return doc, nil

	case ".hwp":
		out, err := p.convertHwp(ctx, stored.AbsPath)
		if err != nil {
			return nil, &IngestError{Stage: StageExtract, Err: err}
		}
		return &parser.ParsedDocument{Text: out, Engine: "hwp2txt"}, nil

	default: // pdf and office formats go through the extractor subprocess
		doc, err := p.bridge.Extract(ctx, stored.AbsPath, stored.DerivedDir)
		if err != nil {
			return nil, &IngestError{Stage: StageExtract, Err: err}
		}
		return doc, nil
	}
}

func (p *Pipeline) convertHwp(ctx context.Context, path string) (string, error) {
	cmd := exec.CommandContext(ctx, p.opts.Hwp2TxtExe, path)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("hwp converter: %s: %w", strings.TrimSpace(stderr.String()), err)
	}
	return textutil.DecodeText(stdout.Bytes())
}

// embedCaption embeds the caption when caption indexing is enabled for this
// asset's page. Returns nil when gated off. The vector is returned as the
// backend produced it; the store normalizes it on insert.
func (p *Pipeline) embedCaption(ctx context.Context, caption string, page *int) ([]float32, error) {
	if p.opts.FastMode {
		return nil, nil
	}
	if strings.TrimSpace(caption) == "" {
		return nil, nil
	}
	if page != nil && *page > p.opts.MaxCaptionPages {
		return nil, nil
	}
	vec, err := p.embedder.EmbedOne(ctx, caption, embedding.ModePassage)
	if err != nil {
		return nil, err
	}
	return vec, nil
}

func (p *Pipeline) indexTables(ctx context.Context, rawTables []parser.RawTable, stored *StoredFile, originalName string) (int, error) {
	indexed := 0
	for ti := range rawTables {
		t := &rawTables[ti]

		norm, err := tables.Normalize(t)
		if err != nil {
			p.log.Warn("ingest", "skip unnormalizable table", map[string]interface{}{"error": err.Error(), "table": ti})
			continue
		}

		asset := &entity.Asset{
			SHA256:   stored.SHA256,
			Filepath: originalName,
			Page:     t.Page,
			Type:     constant.AssetTypeTable,
			Meta:     map[string]interface{}{"source": t.Source},
		}
		if t.Caption != "" {
			caption := t.Caption
			asset.CaptionText = &caption
		}

		// Moving the table crop is best-effort.
		if t.ImagePath != "" {
			url, err := p.storage.MoveDerived(t.ImagePath, stored.DerivedDir, "tables")
			if err != nil {
				p.log.Warn("ingest", "table image move failed", map[string]interface{}{"error": err.Error()})
			} else {
				asset.ImageURL = &url
			}
		}

		capVec, err := p.embedCaption(ctx, t.Caption, t.Page)
		if err != nil {
			return indexed, &IngestError{Stage: StageEmbed, Err: err}
		}
		asset.CaptionEmb = capVec

		body := &entity.TableBody{
			NRows: norm.NRows,
			NCols: norm.NCols,
			TSV:   norm.TSV,
			MD:    norm.MD,
			HTML:  norm.HTML,
		}
		if err := p.store.InsertAsset(ctx, asset, body); err != nil {
			return indexed, &IngestError{Stage: StageInsert, Err: err}
		}

		if capVec != nil {
			if err := p.insertCaptionFragment(ctx, t.Caption, capVec, asset, stored, originalName); err != nil {
				return indexed, err
			}
		}

		if err := p.embedTableRows(ctx, norm, t.Caption, asset, stored, originalName); err != nil {
			return indexed, err
		}

		indexed++
	}
	return indexed, nil
}

// embedTableRows synthesizes one sentence per row, batch-embeds them in a
// single call, and inserts a table_row fragment per (sentence, vector) pair.
func (p *Pipeline) embedTableRows(ctx context.Context, norm *tables.Normalized, caption string, asset *entity.Asset, stored *StoredFile, originalName string) error {
	maxRows := p.opts.MaxTableRowsEmb
	if p.opts.FastMode {
		maxRows = 0
	}
	if maxRows <= 0 || len(norm.Rows) == 0 {
		return nil
	}

	rows := norm.Rows
	if len(rows) > maxRows {
		rows = rows[:maxRows]
	}

	sentences := make([]string, len(rows))
	for i, row := range rows {
		sentences[i] = textutil.RowSentence(caption, norm.Header, row)
	}

	vecs, err := p.embedder.EmbedBatch(ctx, sentences, embedding.ModePassage)
	if err != nil {
		return &IngestError{Stage: StageEmbed, Err: err}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.opts.InsertConcurrency)
	for i := range rows {
		i := i
		g.Go(func() error {
			rowIndex := i
			meta := entity.FragmentMetadata{
				Type:       constant.FragmentTypeTableRow,
				SHA256:     stored.SHA256,
				Filepath:   originalName,
				StoredPath: stored.RelPath,
				AssetId:    &asset.Id,
				RowIndex:   &rowIndex,
				Headers:    norm.Header,
				Normalized: textutil.NormalizeRow(rows[i]),
				Caption:    caption,
				Page:       asset.Page,
			}
			_, err := p.store.InsertFragment(gctx, sentences[i], meta, vecs[i])
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return &IngestError{Stage: StageInsert, Err: err}
	}
	return nil
}

func (p *Pipeline) insertCaptionFragment(ctx context.Context, caption string, vec []float32, asset *entity.Asset, stored *StoredFile, originalName string) error {
	meta := entity.FragmentMetadata{
		Type:       constant.FragmentTypeImageCaption,
		SHA256:     stored.SHA256,
		Filepath:   originalName,
		StoredPath: stored.RelPath,
		AssetId:    &asset.Id,
		Caption:    caption,
		Page:       asset.Page,
	}
	if _, err := p.store.InsertFragment(ctx, caption, meta, vec); err != nil {
		return &IngestError{Stage: StageInsert, Err: err}
	}
	return nil
}

func (p *Pipeline) indexPictures(ctx context.Context, pictures []parser.RawPicture, stored *StoredFile, originalName string) (int, error) {
	captionFragments := 0
	for pi := range pictures {
		pic := &pictures[pi]

		asset := &entity.Asset{
			SHA256:   stored.SHA256,
			Filepath: originalName,
			Page:     pic.Page,
			Type:     constant.AssetTypeImage,
			Meta:     map[string]interface{}{"source": pic.Source},
		}
		if pic.Caption != "" {
			caption := pic.Caption
			asset.CaptionText = &caption
		}

		if pic.ImagePath != "" {
			url, err := p.storage.MoveDerived(pic.ImagePath, stored.DerivedDir, "pictures")
			if err != nil {
				p.log.Warn("ingest", "picture move failed", map[string]interface{}{"error": err.Error()})
			} else {
				asset.ImageURL = &url
			}
		}

		capVec, err := p.embedCaption(ctx, pic.Caption, pic.Page)
		if err != nil {
			return captionFragments, &IngestError{Stage: StageEmbed, Err: err}
		}
		asset.CaptionEmb = capVec

		if err := p.store.InsertAsset(ctx, asset, nil); err != nil {
			return captionFragments, &IngestError{Stage: StageInsert, Err: err}
		}

		if capVec != nil {
			if err := p.insertCaptionFragment(ctx, pic.Caption, capVec, asset, stored, originalName); err != nil {
				return captionFragments, err
			}
			captionFragments++
		}
	}
	return captionFragments, nil
}

func (p *Pipeline) indexProse(ctx context.Context, cleaned, fragType string, stored *StoredFile, originalName string) (int, error) {
	if cleaned == "" {
		return 0, nil
	}

	chunks := p.chunks.Split(cleaned)
	if p.opts.FastMode && len(chunks) > fastModeChunkCap {
		chunks = chunks[:fastModeChunkCap]
	} else if p.opts.MaxChunksEmb > 0 && len(chunks) > p.opts.MaxChunksEmb {
		chunks = chunks[:p.opts.MaxChunksEmb]
	}
	if len(chunks) == 0 {
		return 0, nil
	}

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}
	vecs, err := p.embedder.EmbedBatch(ctx, texts, embedding.ModePassage)
	if err != nil {
		return 0, &IngestError{Stage: StageEmbed, Err: err}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.opts.InsertConcurrency)
	for i := range chunks {
		i := i
		g.Go(func() error {
			chunkIndex := i
			startTok := chunks[i].StartTok
			endTok := chunks[i].EndTok
			meta := entity.FragmentMetadata{
				Type:       fragType,
				SHA256:     stored.SHA256,
				Filepath:   originalName,
				StoredPath: stored.RelPath,
				ChunkIndex: &chunkIndex,
				StartTok:   &startTok,
				EndTok:     &endTok,
			}
			_, err := p.store.InsertFragment(gctx, chunks[i].Text, meta, vecs[i])
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return 0, &IngestError{Stage: StageInsert, Err: err}
	}
	return len(chunks), nil
}

// publishStored emits the post-ingest event. Best-effort: consumers warm the
// index and audit the ingest; a publish failure never fails the upload.
func (p *Pipeline) publishStored(stored *StoredFile, ext string) {
	if p.publisher == nil {
		return
	}
	evt := &events.DocumentStored{
		SHA256:     stored.SHA256,
		StoredPath: stored.AbsPath,
		DerivedDir: stored.DerivedDir,
		Ext:        ext,
	}
	msg, err := evt.ToMessage()
	if err != nil {
		p.log.Warn("ingest", "encode stored event", map[string]interface{}{"error": err.Error()})
		return
	}
	if err := p.publisher.Publish(events.TopicDocumentStored, msg); err != nil {
		p.log.Warn("ingest", "publish stored event", map[string]interface{}{"error": err.Error()})
	}
}
