package logging

import (
	"io"
	"path/filepath"
	"time"

	"github.com/jitsucom/snapshotview/safego"
	"go.uber.org/atomic"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	logFileMaxSizeMB   = 100
	defaultRotationMin = 1440
)

//RollingWriter is a lumberjack file rotated every RotationMin minutes. Empty files aren't rotated
type RollingWriter struct {
	file    *lumberjack.Logger
	records *atomic.Uint64
	ticker  *time.Ticker
	closed  chan struct{}
}

//CreateLogWriter returns the global writer for GlobalType dir or a rolling file writer otherwise
func CreateLogWriter(config *Config) io.Writer {
	if config.FileDir == GlobalType {
		return GlobalLogsWriter
	}

	return NewRollingWriter(config)
}

//NewRollingWriter creates <FileDir>/<FileName>.log and starts its rotation until Close
func NewRollingWriter(config *Config) io.WriteCloser {
	rotationMin := config.RotationMin
	if rotationMin <= 0 {
		rotationMin = defaultRotationMin
	}

	rw := &RollingWriter{
		file: &lumberjack.Logger{
			Filename:   filepath.Join(config.FileDir, config.FileName+".log"),
			MaxSize:    logFileMaxSizeMB,
			MaxBackups: config.MaxBackups,
		},
		records: atomic.NewUint64(0),
		ticker:  time.NewTicker(time.Duration(rotationMin) * time.Minute),
		closed:  make(chan struct{}),
	}

	safego.RunWithRestart(func() {
		for {
			select {
			case <-rw.closed:
				return
			case <-rw.ticker.C:
				rw.rotate()
			}
		}
	})

	return rw
}

func (rw *RollingWriter) rotate() {
	if rw.records.Swap(0) == 0 {
		return
	}

	if err := rw.file.Rotate(); err != nil {
		Errorf("Error rotating log file [%s]: %v", rw.file.Filename, err)
	}
}

func (rw *RollingWriter) Write(p []byte) (int, error) {
	rw.records.Inc()
	return rw.file.Write(p)
}

func (rw *RollingWriter) Close() error {
	rw.ticker.Stop()
	close(rw.closed)
	return rw.file.Close()
}
