package client

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"sync"

	"github.com/heyojules/invite/internal/imaging"
	"github.com/heyojules/invite/internal/model"

	"golang.org/x/sync/errgroup"
)

// DefaultUploadParallelism bounds concurrent uploads in UploadPhotos.
const DefaultUploadParallelism = 3

// Progress is reported after each file finishes, successfully or not.
type Progress struct {
	Done   int
	Total  int
	File   string
	Err    error
	Failed int
}

// UploadReport summarizes a batch upload.
type UploadReport struct {
	Uploaded []model.Photo
	Failed   map[string]error
}

// UploadPhotos compresses and uploads files with at most parallelism in
// flight. A failing file is recorded and the rest continue. onProgress may
// be nil; calls to it are serialized.
func (c *Client) UploadPhotos(ctx context.Context, files []string, parallelism int, onProgress func(Progress)) UploadReport {
	if parallelism <= 0 {
		parallelism = DefaultUploadParallelism
	}

	report := UploadReport{Failed: make(map[string]error)}
	var (
		mu   sync.Mutex
		done int
	)
	finish := func(file string, photo model.Photo, err error) {
		mu.Lock()
		defer mu.Unlock()
		done++
		if err != nil {
			report.Failed[file] = err
		} else {
			report.Uploaded = append(report.Uploaded, photo)
		}
		if onProgress != nil {
			onProgress(Progress{Done: done, Total: len(files), File: file, Err: err, Failed: len(report.Failed)})
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(parallelism)
	for _, file := range files {
		if gctx.Err() != nil {
			finish(file, model.Photo{}, gctx.Err())
			continue
		}
		g.Go(func() error {
			photo, err := c.uploadFile(gctx, file)
			finish(file, photo, err)
			return nil
		})
	}
	_ = g.Wait()
	return report
}

func (c *Client) uploadFile(ctx context.Context, path string) (model.Photo, error) {
	if err := ctx.Err(); err != nil {
		return model.Photo{}, err
	}
	f, err := os.Open(path)
	if err != nil {
		return model.Photo{}, err
	}
	defer f.Close()

	res, err := imaging.Compress(f)
	if err != nil {
		return model.Photo{}, err
	}
	name := filepath.Base(path)
	name = name[:len(name)-len(filepath.Ext(name))] + ".jpg"
	return c.UploadPhoto(ctx, name, bytes.NewReader(res.Data))
}
