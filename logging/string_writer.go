package logging

import (
	"bytes"
	"sync"
)

//StringWriter is an in-memory writer. Used in tests for asserting log output
type StringWriter struct {
	mutex sync.Mutex
	buff  *bytes.Buffer
}

func NewStringWriter() *StringWriter {
	return &StringWriter{
		buff: bytes.NewBuffer([]byte{}),
	}
}

func (sw *StringWriter) String() string {
	sw.mutex.Lock()
	defer sw.mutex.Unlock()
	return sw.buff.String()
}

func (sw *StringWriter) Write(p []byte) (n int, err error) {
	sw.mutex.Lock()
	defer sw.mutex.Unlock()
	return sw.buff.Write(p)
}

func (sw *StringWriter) Close() error {
	return nil
}
