package gcodethumb

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"runtime/trace"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dustin/go-humanize"
	"golang.org/x/image/font"

	"github.com/rusq/gcodethumb/colpic"
	"github.com/rusq/gcodethumb/config"
	"github.com/rusq/gcodethumb/fontmgr"
	"github.com/rusq/gcodethumb/gcode"
	"github.com/rusq/gcodethumb/printers"
	"github.com/rusq/gcodethumb/thumb"
)

// Processor embeds the thumbnails into the G-code documents.
type Processor struct {
	cfg      *config.Config
	catalog  *printers.Catalog
	composer *thumb.Composer
	rewriter *gcode.Rewriter
	packer   thumb.Packer
	face     font.Face
	dryRun   bool

	bgMu        sync.Mutex
	backgrounds map[thumb.Family]image.Image

	current atomic.Pointer[Job]
}

type Option func(*Processor)

// WithFace sets the font face for the annotations, overriding the
// configured font.
func WithFace(face font.Face) Option {
	return func(p *Processor) {
		p.face = face
	}
}

// WithPacker sets the packer for the packed colour stream.
func WithPacker(pk thumb.Packer) Option {
	return func(p *Processor) {
		if pk != nil {
			p.packer = pk
		}
	}
}

// WithDryRun makes ProcessFile leave the file intact.
func WithDryRun(dryRun bool) Option {
	return func(p *Processor) {
		p.dryRun = dryRun
	}
}

// New creates a new Processor.  If cfg is nil, the default configuration is
// used.
func New(cfg *config.Config, opts ...Option) (*Processor, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	p := &Processor{
		cfg:         cfg,
		packer:      colpic.Encoder{Colors: cfg.MaxColors},
		backgrounds: make(map[thumb.Family]image.Image),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.face == nil {
		face, err := fontmgr.Load(cfg.Font.Name, cfg.Font.Size, cfg.Font.DPI)
		if err != nil {
			return nil, fmt.Errorf("error loading font: %w", err)
		}
		p.face = face
	}
	p.catalog = printers.NewCatalog(cfg.Models())
	p.composer = thumb.NewComposer(cfg.Layout(), p.packer,
		thumb.WithFooter(thumb.Footer(cfg.Footer.Name, cfg.Footer.URL)),
		thumb.WithKlipperSizes(cfg.Klipper.Small, cfg.Klipper.Large),
		thumb.WithBlockSize(cfg.BlockSize),
		thumb.WithJPEGQuality(cfg.JPEGQuality),
	)
	p.rewriter = gcode.NewRewriter(cfg.Censor)
	return p, nil
}

// Catalog returns the printer catalog.
func (p *Processor) Catalog() *printers.Catalog {
	return p.catalog
}

// Targets returns the encoding targets of the family.
func (p *Processor) Targets(f thumb.Family) []thumb.Target {
	return p.composer.Targets(f)
}

// Result is the outcome of rendering the document.
type Result struct {
	JobID   string
	Model   string
	Family  thumb.Family
	Artwork thumb.Artwork
	Set     thumb.Set
	Output  []byte // the rewritten document
}

// Render renders the thumbnail prefix for the document and returns the
// rewritten document in the Result.  The model, if known, overrides the
// printer model from the document metadata.
func (p *Processor) Render(ctx context.Context, src []byte, model string) (*Result, error) {
	return p.run(ctx, p.track(newJob("", model)), src)
}

// Transform returns the document with the thumbnail prefix.
func (p *Processor) Transform(ctx context.Context, src []byte, model string) ([]byte, error) {
	res, err := p.Render(ctx, src, model)
	if err != nil {
		return nil, err
	}
	return res.Output, nil
}

// ProcessFile embeds the thumbnails into the file.  The file is replaced
// atomically, and left intact on any error.
func (p *Processor) ProcessFile(ctx context.Context, filename string, model string) error {
	ctx, task := trace.NewTask(ctx, "ProcessFile")
	defer task.End()

	job := p.track(newJob(filename, model))
	src, err := os.ReadFile(filename)
	if err != nil {
		return job.fail(ctx, err)
	}
	job.lg.DebugContext(ctx, "file loaded", "filename", filename, "size", humanize.Bytes(uint64(len(src))))

	res, err := p.run(ctx, job, src)
	if err != nil {
		return err
	}
	lg := job.lg.With("filename", filename, "model", res.Model, "family", res.Family, "prefix_size", humanize.Bytes(uint64(res.Set.Len())))
	if p.dryRun {
		lg.InfoContext(ctx, "dry run, file is not modified")
		return nil
	}
	if err := writeFile(filename, res.Output); err != nil {
		return job.fail(ctx, fmt.Errorf("error writing %s: %w", filename, err))
	}
	if err := job.event(ctx, evWrite); err != nil {
		return err
	}
	lg.InfoContext(ctx, "thumbnails embedded", "elapsed", time.Since(job.Started))
	return nil
}

func (p *Processor) track(job *Job) *Job {
	p.current.Store(job)
	return job
}

// Report writes the status of the current job to w.
func (p *Processor) Report(w io.Writer) {
	job := p.current.Load()
	if job == nil {
		fmt.Fprintln(w, "idle")
		return
	}
	job.Report(w)
}

func (p *Processor) run(ctx context.Context, job *Job, src []byte) (*Result, error) {
	ctx, task := trace.NewTask(ctx, "render")
	defer task.End()

	doc := gcode.Parse(src)
	if doc.Processed() {
		return nil, job.skip(ctx, ErrAlreadyProcessed)
	}

	rgn := trace.StartRegion(ctx, "parse")
	th, err := doc.Thumbnail(p.cfg.MinThumbnailSize)
	if err != nil {
		rgn.End()
		return nil, job.fail(ctx, err)
	}
	sd, err := doc.SliceData()
	if err != nil {
		rgn.End()
		return nil, job.fail(ctx, err)
	}
	job.Model, job.Family = p.catalog.Resolve(job.Requested, sd.PrinterModel)
	if job.Family == thumb.FamilyUnknown {
		rgn.End()
		return nil, job.skip(ctx, fmt.Errorf("%w: %q", ErrUnsupportedPrinter, job.Model))
	}
	img, err := th.Decode()
	rgn.End()
	if err != nil {
		return nil, job.fail(ctx, err)
	}
	if err := job.event(ctx, evParse); err != nil {
		return nil, err
	}
	job.lg.DebugContext(ctx, "document parsed", "thumbnail", fmt.Sprintf("%dx%d", th.Width, th.Height), "model", job.Model, "family", job.Family)

	if err := ctx.Err(); err != nil {
		return nil, job.fail(ctx, err)
	}

	rgn = trace.StartRegion(ctx, "compose")
	art, err := p.artwork(img, sd, job.Family)
	if err != nil {
		rgn.End()
		return nil, job.fail(ctx, err)
	}
	set, err := p.composer.Compose(job.Family, art)
	rgn.End()
	if err != nil {
		return nil, job.fail(ctx, err)
	}
	if err := job.event(ctx, evCompose); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, job.fail(ctx, err)
	}

	return &Result{
		JobID:   job.ID,
		Model:   job.Model,
		Family:  job.Family,
		Artwork: art,
		Set:     set,
		Output:  p.rewriter.Rewrite(doc, set.String()),
	}, nil
}

// writeFile replaces the file contents through a temporary file in the same
// directory, preserving the permissions.
func writeFile(filename string, data []byte) (err error) {
	perm := fs.FileMode(0o644)
	if fi, err := os.Stat(filename); err == nil {
		perm = fi.Mode().Perm()
	}
	f, err := os.CreateTemp(filepath.Dir(filename), "."+filepath.Base(filename)+".*")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			f.Close()
			if rmErr := os.Remove(f.Name()); rmErr != nil && !errors.Is(rmErr, fs.ErrNotExist) {
				slog.Warn("unable to remove temporary file", "filename", f.Name(), "error", rmErr)
			}
		}
	}()
	if _, err := f.Write(data); err != nil {
		return err
	}
	if err := f.Chmod(perm); err != nil {
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(f.Name(), filename)
}
