package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"bgrelay/internal/files"
	"bgrelay/internal/image"
	"bgrelay/internal/metrics"
	"bgrelay/internal/removebg"
)

type Remover interface {
	Remove(ctx context.Context, img io.Reader, filename string) (*removebg.Result, error)
}

// Delivery describes how the processed image goes back to the chat.
type Delivery struct {
	Path      string
	AsPhoto   bool
	ThumbPath string
	Info      image.Info
}

type RelayService struct {
	remover     Remover
	processor   *image.Processor
	fileManager files.FileManager
	maxFileSize int64
}

func NewRelayService(
	remover Remover,
	processor *image.Processor,
	fileManager files.FileManager,
	maxFileSize int64,
) *RelayService {
	return &RelayService{
		remover:     remover,
		processor:   processor,
		fileManager: fileManager,
		maxFileSize: maxFileSize,
	}
}

// RemoveBackground submits the staged input once and stages the result.
// On success the caller owns cleanup; on failure nothing is left on disk.
// Removal-service failures are returned as *removebg.Error.
func (s *RelayService) RemoveBackground(ctx context.Context, inputPath string) (*Delivery, func(), error) {
	in, err := os.Open(inputPath)
	if err != nil {
		return nil, nil, fmt.Errorf("open input: %w", err)
	}
	defer in.Close()

	start := time.Now()
	res, err := s.remover.Remove(ctx, in, inputPath)
	if err != nil {
		metrics.ObserveRemoval(outcome(err), time.Since(start))
		return nil, nil, err
	}

	info, err := s.processor.Inspect(res.Data)
	if err != nil {
		err = removebg.Malformed(err)
		metrics.ObserveRemoval(outcome(err), time.Since(start))
		return nil, nil, err
	}
	metrics.ObserveRemoval("success", time.Since(start))
	metrics.AddCredits(res.CreditsCharged)

	outPath, cleanupOut, err := s.fileManager.WriteTemp(bytes.NewReader(res.Data), info.Ext())
	if err != nil {
		return nil, nil, fmt.Errorf("stage result: %w", err)
	}

	d := &Delivery{
		Path:    outPath,
		AsPhoto: s.processor.FitsPhoto(info, s.maxFileSize),
		Info:    info,
	}
	cleanup := cleanupOut

	if !d.AsPhoto {
		// A missing thumbnail only degrades the preview.
		if thumb, err := s.processor.Thumbnail(res.Data); err == nil {
			if thumbPath, cleanupThumb, err := s.fileManager.WriteTemp(bytes.NewReader(thumb), ".jpg"); err == nil {
				d.ThumbPath = thumbPath
				cleanup = func() {
					cleanupOut()
					cleanupThumb()
				}
			}
		}
	}

	return d, cleanup, nil
}

func outcome(err error) string {
	var rerr *removebg.Error
	if errors.As(err, &rerr) {
		return rerr.Kind.String()
	}
	return "error"
}
