package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"

	"github.com/viant/afs"
)

// renderer writes command output as indented JSON, either to a writer or to
// a destination URL handled by afs (file, s3, gs, mem, ...).
type renderer struct {
	fs        afs.Service
	outputURL string
	writer    io.Writer
}

func newRenderer(outputURL string) *renderer {
	return &renderer{
		fs:        afs.New(),
		outputURL: outputURL,
		writer:    os.Stdout,
	}
}

func (r *renderer) render(ctx context.Context, value interface{}) error {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	if r.outputURL != "" {
		return r.fs.Upload(ctx, r.outputURL, 0644, bytes.NewReader(data))
	}
	_, err = r.writer.Write(data)
	return err
}
