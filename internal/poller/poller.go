// Package poller feeds IPCG ER files from the inbox directory through the
// call detail creator and stores the results.
package poller

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/oklog/ulid/v2"
	calldetaildomain "github.com/railzwaylabs/mediation/internal/calldetail/domain"
	"github.com/railzwaylabs/mediation/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const maxLineBytes = 4 << 20

// Summary counts the outcome of one ER file.
type Summary struct {
	RunID    string
	File     string
	Lines    int
	Created  int
	Rejected int
	Failed   int
}

type Poller struct {
	log     *zap.Logger
	creator calldetaildomain.Creator
	store   calldetaildomain.Repository
	cfg     config.IPCGConfig
}

type Param struct {
	fx.In

	Log     *zap.Logger
	Config  config.Config
	Creator calldetaildomain.Creator
	Store   calldetaildomain.Repository
}

func New(p Param) *Poller {
	cfg := p.Config.IPCG
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.FileSuffix == "" {
		cfg.FileSuffix = ".er"
	}
	if cfg.Delimiter == "" {
		cfg.Delimiter = ","
	}
	return &Poller{
		log:     p.Log.Named("poller"),
		creator: p.Creator,
		store:   p.Store,
		cfg:     cfg,
	}
}

// Run drains the files already in the inbox and then processes every ER file
// created or renamed into it until ctx is cancelled. Upstream must write under
// another suffix and rename into place once the file is complete.
func (p *Poller) Run(ctx context.Context) error {
	if err := os.MkdirAll(p.cfg.InboxDir, 0o755); err != nil {
		return fmt.Errorf("create inbox: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(p.cfg.InboxDir); err != nil {
		return fmt.Errorf("watch %s: %w", p.cfg.InboxDir, err)
	}
	p.log.Info("watching inbox", zap.String("dir", p.cfg.InboxDir))

	pending, err := p.pendingFiles()
	if err != nil {
		return err
	}
	for _, path := range pending {
		p.handle(ctx, path)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Create) || !p.accepts(event.Name) {
				continue
			}
			p.handle(ctx, event.Name)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			p.log.Warn("watcher error", zap.Error(err))
		}
	}
}

func (p *Poller) handle(ctx context.Context, path string) {
	_, err := p.ProcessFile(ctx, path)
	switch {
	case err == nil:
	case errors.Is(err, context.Canceled):
		p.log.Info("ER file interrupted by shutdown", zap.String("file", path))
	default:
		p.log.Error("process ER file failed", zap.String("file", path), zap.Error(err))
	}
}

func (p *Poller) accepts(path string) bool {
	return strings.HasSuffix(filepath.Base(path), p.cfg.FileSuffix)
}

func (p *Poller) pendingFiles() ([]string, error) {
	entries, err := os.ReadDir(p.cfg.InboxDir)
	if err != nil {
		return nil, fmt.Errorf("list inbox: %w", err)
	}
	var files []string
	for _, entry := range entries {
		if entry.IsDir() || !p.accepts(entry.Name()) {
			continue
		}
		files = append(files, filepath.Join(p.cfg.InboxDir, entry.Name()))
	}
	sort.Strings(files)
	return files, nil
}

// ProcessFile builds and stores the call details of every line in path, then
// moves the file to the archive directory. Rejected lines and failing records
// are counted and skipped. A store failure or a cancelled ctx stops the file
// and leaves it in place for the next run.
func (p *Poller) ProcessFile(ctx context.Context, path string) (Summary, error) {
	summary := Summary{RunID: ulid.Make().String(), File: path}
	log := p.log.With(zap.String("run_id", summary.RunID), zap.String("file", path))

	f, err := os.Open(path)
	if err != nil {
		return summary, fmt.Errorf("open ER file: %w", err)
	}
	defer f.Close()

	var created, rejected, failed atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.cfg.Workers)

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	lineNo := 0
	for scanner.Scan() {
		if gctx.Err() != nil {
			break
		}
		lineNo++
		line := strings.TrimRight(scanner.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		summary.Lines++
		n := lineNo

		g.Go(func() error {
			batch := calldetaildomain.Batch{
				Record:     line,
				StartIndex: p.cfg.StartIndex,
				ERID:       p.erid(line),
			}
			details, err := p.creator.CreateCallDetails(gctx, batch)
			switch {
			case errors.Is(err, calldetaildomain.ErrBatchRejected):
				rejected.Add(1)
				log.Debug("line rejected", zap.Int("line", n), zap.Error(err))
				return nil
			case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
				return fmt.Errorf("line %d: %w", n, err)
			case err != nil:
				failed.Add(1)
				log.Warn("line failed", zap.Int("line", n), zap.Error(err))
				return nil
			}

			if err := p.store.Insert(gctx, details); err != nil {
				return fmt.Errorf("line %d: store call details: %w", n, err)
			}
			created.Add(int64(len(details)))
			return nil
		})
	}
	scanErr := scanner.Err()
	waitErr := g.Wait()

	summary.Created = int(created.Load())
	summary.Rejected = int(rejected.Load())
	summary.Failed = int(failed.Load())

	if scanErr != nil {
		return summary, fmt.Errorf("read ER file: %w", scanErr)
	}
	if waitErr != nil {
		return summary, waitErr
	}
	// Lines after a cancellation were never read, so the file stays in the
	// inbox for the next run.
	if err := ctx.Err(); err != nil {
		log.Info("ER file left unfinished", zap.Int("lines", summary.Lines), zap.Error(err))
		return summary, err
	}

	if err := p.archive(path); err != nil {
		return summary, err
	}

	log.Info("ER file processed",
		zap.Int("lines", summary.Lines),
		zap.Int("created", summary.Created),
		zap.Int("rejected", summary.Rejected),
		zap.Int("failed", summary.Failed),
	)
	return summary, nil
}

// erid reads the ER id from the last header field before the session groups.
func (p *Poller) erid(line string) int {
	if p.cfg.StartIndex <= 0 {
		return p.cfg.ERID
	}
	fields := strings.SplitN(line, p.cfg.Delimiter, p.cfg.StartIndex+1)
	if len(fields) < p.cfg.StartIndex {
		return p.cfg.ERID
	}
	id, err := strconv.Atoi(strings.TrimSpace(fields[p.cfg.StartIndex-1]))
	if err != nil {
		return p.cfg.ERID
	}
	return id
}

func (p *Poller) archive(path string) error {
	if p.cfg.ArchiveDir == "" {
		return nil
	}
	if err := os.MkdirAll(p.cfg.ArchiveDir, 0o755); err != nil {
		return fmt.Errorf("create archive: %w", err)
	}
	dst := filepath.Join(p.cfg.ArchiveDir, filepath.Base(path))
	if err := os.Rename(path, dst); err != nil {
		return fmt.Errorf("archive ER file: %w", err)
	}
	return nil
}
