// Package errorlog appends unresolvable-account diagnostics to the IPCG error
// log file.
package errorlog

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/railzwaylabs/mediation/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Reporter owns the error log sink. The file is opened on the first report and
// kept open until Close; all access is serialized.
type Reporter struct {
	path string
	log  *zap.Logger

	mu   sync.Mutex
	sink io.WriteCloser
	open func(path string) (io.WriteCloser, error)
}

func NewReporter(path string, log *zap.Logger) *Reporter {
	return &Reporter{
		path: path,
		log:  log.Named("calldetail.errorlog"),
		open: openAppend,
	}
}

func openAppend(path string) (io.WriteCloser, error) {
	return os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
}

// ReportAccountError writes one "BAN = <ban>, MSISDN = <msisdn>" entry. It
// never fails: I/O errors are logged and dropped, and a failed open is retried
// on the next report.
func (r *Reporter) ReportAccountError(ban, msisdn string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.path == "" {
		r.log.Warn("error log path not configured", zap.String("ban", ban), zap.String("msisdn", msisdn))
		return
	}

	if r.sink == nil {
		sink, err := r.open(r.path)
		if err != nil {
			r.log.Warn("open error log failed", zap.String("path", r.path), zap.Error(err))
			return
		}
		r.sink = sink
	}

	if _, err := fmt.Fprintf(r.sink, "BAN = %s, MSISDN = %s", ban, msisdn); err != nil {
		r.log.Warn("write error log failed",
			zap.String("path", r.path),
			zap.String("ban", ban),
			zap.String("msisdn", msisdn),
			zap.Error(err),
		)
	}
}

func (r *Reporter) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.sink == nil {
		return nil
	}
	err := r.sink.Close()
	r.sink = nil
	return err
}

func provideReporter(lc fx.Lifecycle, cfg config.Config, log *zap.Logger) *Reporter {
	r := NewReporter(cfg.IPCG.ErrorLogPath, log)
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			return r.Close()
		},
	})
	return r
}

var Module = fx.Module("calldetail.errorlog",
	fx.Provide(provideReporter),
)
