package logging

import (
	"fmt"
	"io"

	"github.com/jitsucom/snapshotview/timestamp"
)

//DateTimeWriterProxy prefixes every record with UTC date time
type DateTimeWriterProxy struct {
	writer io.Writer
}

func (wp DateTimeWriterProxy) Write(p []byte) (int, error) {
	return fmt.Fprintf(wp.writer, "%s %s", timestamp.Now().UTC().Format(timestamp.LogsLayout), p)
}
