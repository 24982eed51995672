package ingest

import (
	"errors"
	"io"
)

// errorCapturingReader records the first error other than io.EOF returned by
// the underlying stream, so that a CAR decode failure caused by the transport
// can be told apart from one caused by the bytes themselves.
type errorCapturingReader struct {
	r     io.Reader
	Error error
}

func newErrorCapturingReader(r io.Reader) *errorCapturingReader {
	return &errorCapturingReader{r: r}
}

func (ecr *errorCapturingReader) Read(p []byte) (int, error) {
	n, err := ecr.r.Read(p)
	if err != nil && !errors.Is(err, io.EOF) && ecr.Error == nil {
		ecr.Error = err
	}
	return n, err
}
