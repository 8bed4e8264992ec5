// Package framestore implements ports.FrameTransport as a directory of
// numbered lossless image files, one per frame.
package framestore

import (
	"context"
	"errors"
	"fmt"
	"math"
	"path/filepath"
	"runtime"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/One-eyed-warrior/data2video/pkg/framecodec"
	"github.com/One-eyed-warrior/data2video/pkg/ports"
)

// DefaultIndexWidth gives names like frame_00042.png.
const DefaultIndexWidth = 5

const filePrefix = "frame_"

var (
	// ErrIndexOverflow is returned when more frames are persisted than the
	// fixed index width can name.
	ErrIndexOverflow = errors.New("framestore: frame index overflows name width")

	// ErrMissingFrame is returned when the stored indices have a gap.
	ErrMissingFrame = errors.New("framestore: missing frame")

	// ErrDuplicateFrame is returned when two files parse to the same index.
	ErrDuplicateFrame = errors.New("framestore: duplicate frame index")

	// ErrNoFrames is returned when the directory contains no frame files.
	ErrNoFrames = errors.New("framestore: no frames found")
)

// Options configures a Store.
type Options struct {
	Format ports.ImageFormat

	// IndexWidth is the zero-padded width of frame indices. 0 means
	// unpadded decimal names with no upper bound.
	IndexWidth int

	// Workers encode or decode images in parallel. Zero means NumCPU.
	Workers int
}

// DefaultOptions returns PNG files with 5-digit indices.
func DefaultOptions() Options {
	return Options{
		Format:     ports.FormatPNG,
		IndexWidth: DefaultIndexWidth,
	}
}

// Store persists frames as files in a directory. The handle is the
// directory path.
type Store struct {
	fs       ports.FileSystem
	renderer ports.Renderer
	logger   ports.Logger
	opts     Options
}

// New creates a Store.
func New(fs ports.FileSystem, renderer ports.Renderer, logger ports.Logger, opts Options) *Store {
	if opts.Workers <= 0 {
		opts.Workers = runtime.NumCPU()
	}
	if opts.IndexWidth < 0 {
		opts.IndexWidth = 0
	}
	return &Store{
		fs:       fs,
		renderer: renderer,
		logger:   logger.WithComponent("framestore"),
		opts:     opts,
	}
}

// FileName returns the file name used for frame index.
func (s *Store) FileName(index int) string {
	return fmt.Sprintf("%s%0*d.%s", filePrefix, s.opts.IndexWidth, index, s.opts.Format.Extension())
}

// MaxFrames returns the largest sequence the index width can name, or -1
// when unbounded.
func (s *Store) MaxFrames() int {
	if s.opts.IndexWidth == 0 || s.opts.IndexWidth >= 18 {
		return -1
	}
	return int(math.Pow10(s.opts.IndexWidth))
}

// Persist writes frames into dir, removing frame files left over from an
// earlier run first.
func (s *Store) Persist(ctx context.Context, dir string, frames []framecodec.Frame) (ports.Handle, error) {
	if limit := s.MaxFrames(); limit >= 0 && len(frames) > limit {
		return "", fmt.Errorf("%w: %d frames, width %d names at most %d", ErrIndexOverflow, len(frames), s.opts.IndexWidth, limit)
	}

	if err := s.fs.MkdirAll(dir); err != nil {
		return "", fmt.Errorf("create frame directory: %w", err)
	}
	if err := s.clear(dir); err != nil {
		return "", err
	}

	s.logger.Debug("Writing %d frames to %s", len(frames), dir)
	err := s.parallel(ctx, len(frames), func(i int) error {
		data, err := s.renderer.EncodeImage(frames[i], s.opts.Format)
		if err != nil {
			return fmt.Errorf("encode frame %d: %w", i, err)
		}
		if err := s.fs.WriteFile(filepath.Join(dir, s.FileName(i)), data); err != nil {
			return fmt.Errorf("write frame %d: %w", i, err)
		}
		return nil
	})
	if err != nil {
		return "", err
	}

	return ports.Handle(dir), nil
}

// Retrieve reads the frames stored in the directory named by handle.
func (s *Store) Retrieve(ctx context.Context, handle ports.Handle) ([]framecodec.Frame, error) {
	dir := string(handle)
	names, err := s.fs.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("list frame directory: %w", err)
	}

	files, err := s.enumerate(names)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("Reading %d frames from %s", len(files), dir)

	frames := make([]framecodec.Frame, len(files))
	err = s.parallel(ctx, len(files), func(i int) error {
		data, err := s.fs.ReadFile(filepath.Join(dir, files[i]))
		if err != nil {
			return fmt.Errorf("read frame %d: %w", i, err)
		}
		img, err := s.renderer.DecodeImage(data, s.opts.Format)
		if err != nil {
			return fmt.Errorf("decode frame %d: %w", i, err)
		}
		frames[i] = framecodec.FrameFromImage(img)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return frames, nil
}

type indexedFile struct {
	index int
	name  string
}

// enumerate picks the frame files out of names and orders them by numeric
// index. The indices must be exactly 0..N-1.
func (s *Store) enumerate(names []string) ([]string, error) {
	var files []indexedFile
	for _, name := range names {
		if idx, ok := s.parseName(name); ok {
			files = append(files, indexedFile{index: idx, name: name})
		}
	}
	if len(files) == 0 {
		return nil, ErrNoFrames
	}

	sort.Slice(files, func(i, j int) bool { return files[i].index < files[j].index })

	out := make([]string, len(files))
	for i, f := range files {
		if f.index < i {
			return nil, fmt.Errorf("%w: %d (%s)", ErrDuplicateFrame, f.index, f.name)
		}
		if f.index > i {
			return nil, fmt.Errorf("%w: %d", ErrMissingFrame, i)
		}
		out[i] = f.name
	}
	return out, nil
}

// parseName extracts the index from frame_<digits>.<ext>.
func (s *Store) parseName(name string) (int, bool) {
	ext := "." + s.opts.Format.Extension()
	if !strings.HasPrefix(name, filePrefix) || !strings.EqualFold(filepath.Ext(name), ext) {
		return 0, false
	}
	digits := strings.TrimSuffix(strings.TrimPrefix(name, filePrefix), filepath.Ext(name))
	if digits == "" || strings.TrimLeft(digits, "0123456789") != "" {
		return 0, false
	}
	idx, err := strconv.Atoi(digits)
	if err != nil {
		return 0, false
	}
	return idx, true
}

// clear removes existing frame files of the configured format from dir.
func (s *Store) clear(dir string) error {
	names, err := s.fs.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("list frame directory: %w", err)
	}
	removed := 0
	for _, name := range names {
		if _, ok := s.parseName(name); !ok {
			continue
		}
		if err := s.fs.Remove(filepath.Join(dir, name)); err != nil {
			return fmt.Errorf("remove stale frame %s: %w", name, err)
		}
		removed++
	}
	if removed > 0 {
		s.logger.Debug("Removed %d stale frame files", removed)
	}
	return nil
}

// parallel runs fn for indices 0..n-1 on the worker pool and returns the
// first error.
func (s *Store) parallel(ctx context.Context, n int, fn func(i int) error) error {
	workers := min(s.opts.Workers, n)
	if workers <= 1 {
		for i := 0; i < n; i++ {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := fn(i); err != nil {
				return err
			}
		}
		return nil
	}

	jobs := make(chan int, n)
	errs := make([]error, n)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				if err := ctx.Err(); err != nil {
					errs[i] = err
					continue
				}
				errs[i] = fn(i)
			}
		}()
	}
	for i := 0; i < n; i++ {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

var _ ports.FrameTransport = (*Store)(nil)
