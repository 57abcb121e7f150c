package util

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/edsrzf/mmap-go"
	lru "github.com/hashicorp/golang-lru/v2"
)

// SourceCache keeps recently read source files memory-mapped so that
// reporters can print code frames for diagnostics without re-reading files.
//
// Entries are validated against the file's size and modification time on
// every access, so a cache shared with the watcher never serves stale text.
// The least recently used mapping is unmapped once MaxFiles is exceeded.
//
// Thread-safe: all methods may be called concurrently. Returned strings and
// slices are copies and stay valid after the mapping is released.
type SourceCache struct {
	entries *lru.Cache[string, *MappedFile]
	mu      sync.Mutex
	logger  *slog.Logger

	hits         atomic.Int64
	misses       atomic.Int64
	mmapFailures atomic.Int64
}

// SourceCacheConfig configures a SourceCache.
type SourceCacheConfig struct {
	// MaxFiles bounds the number of mapped files (default 256)
	MaxFiles int
}

// MappedFile is one cached file. Data is either an mmap region or, when
// mapping failed or the file is empty, a heap copy.
type MappedFile struct {
	Path     string
	Data     []byte
	Size     int64
	ModTime  time.Time
	MappedAt time.Time

	region mmap.MMap
	file   *os.File
}

// SourceCacheStats is a snapshot of cache counters.
type SourceCacheStats struct {
	Files        int
	Hits         int64
	Misses       int64
	MmapFailures int64
}

// NewSourceCache creates a cache. Logger can be nil.
func NewSourceCache(config SourceCacheConfig, logger *slog.Logger) (*SourceCache, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if config.MaxFiles <= 0 {
		config.MaxFiles = 256
	}

	sc := &SourceCache{logger: logger}
	entries, err := lru.NewWithEvict(config.MaxFiles, func(path string, mf *MappedFile) {
		mf.release(logger)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create source cache: %w", err)
	}
	sc.entries = entries
	return sc, nil
}

// Read returns a copy of the file's contents.
func (sc *SourceCache) Read(path string) ([]byte, error) {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	mf, err := sc.get(path)
	if err != nil {
		return nil, err
	}
	return bytes.Clone(mf.Data), nil
}

// FetchCode extracts the text between two byte offsets (end exclusive).
func (sc *SourceCache) FetchCode(path string, startByte, endByte uint32) (string, error) {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	mf, err := sc.get(path)
	if err != nil {
		return "", err
	}
	if endByte < startByte || int(endByte) > len(mf.Data) {
		return "", fmt.Errorf("invalid byte range [%d:%d] for %s (size %d)", startByte, endByte, path, len(mf.Data))
	}
	return string(mf.Data[startByte:endByte]), nil
}

// FetchLine returns the 1-based line of a file without its line terminator.
func (sc *SourceCache) FetchLine(path string, line int) (string, error) {
	if line < 1 {
		return "", fmt.Errorf("invalid line %d", line)
	}

	sc.mu.Lock()
	defer sc.mu.Unlock()

	mf, err := sc.get(path)
	if err != nil {
		return "", err
	}

	data := mf.Data
	for i := 1; i < line; i++ {
		idx := bytes.IndexByte(data, '\n')
		if idx < 0 {
			return "", fmt.Errorf("line %d out of range for %s", line, path)
		}
		data = data[idx+1:]
	}
	if idx := bytes.IndexByte(data, '\n'); idx >= 0 {
		data = data[:idx]
	}
	return string(bytes.TrimSuffix(data, []byte("\r"))), nil
}

// Invalidate drops a file from the cache.
func (sc *SourceCache) Invalidate(path string) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.entries.Remove(path)
}

// Size returns the number of cached files.
func (sc *SourceCache) Size() int {
	return sc.entries.Len()
}

// Stats returns the current counters.
func (sc *SourceCache) Stats() SourceCacheStats {
	return SourceCacheStats{
		Files:        sc.entries.Len(),
		Hits:         sc.hits.Load(),
		Misses:       sc.misses.Load(),
		MmapFailures: sc.mmapFailures.Load(),
	}
}

// Close unmaps every cached file.
func (sc *SourceCache) Close() error {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.entries.Purge()
	return nil
}

// get returns a fresh entry for path. Caller must hold sc.mu.
func (sc *SourceCache) get(path string) (*MappedFile, error) {
	info, err := os.Stat(path)
	if err != nil {
		sc.entries.Remove(path)
		return nil, fmt.Errorf("failed to stat %s: %w", path, err)
	}

	if mf, ok := sc.entries.Get(path); ok {
		if mf.Size == info.Size() && mf.ModTime.Equal(info.ModTime()) {
			sc.hits.Add(1)
			return mf, nil
		}
		sc.entries.Remove(path)
	}

	sc.misses.Add(1)
	mf, err := sc.load(path, info)
	if err != nil {
		return nil, err
	}
	sc.entries.Add(path, mf)
	return mf, nil
}

func (sc *SourceCache) load(path string, info os.FileInfo) (*MappedFile, error) {
	mf := &MappedFile{
		Path:     path,
		Size:     info.Size(),
		ModTime:  info.ModTime(),
		MappedAt: time.Now(),
	}

	// Zero-length files cannot be mapped.
	if info.Size() == 0 {
		mf.Data = []byte{}
		return mf, nil
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}

	region, err := mmap.Map(file, mmap.RDONLY, 0)
	if err != nil {
		file.Close()
		sc.mmapFailures.Add(1)
		sc.logger.Debug("mmap failed, falling back to ReadFile", "path", path, "error", err)

		data, rerr := os.ReadFile(path)
		if rerr != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, rerr)
		}
		mf.Data = data
		mf.Size = int64(len(data))
		return mf, nil
	}

	mf.region = region
	mf.file = file
	mf.Data = region
	return mf, nil
}

func (mf *MappedFile) release(logger *slog.Logger) {
	if mf.region != nil {
		if err := mf.region.Unmap(); err != nil {
			logger.Warn("failed to unmap file", "path", mf.Path, "error", err)
		}
		mf.region = nil
	}
	if mf.file != nil {
		mf.file.Close()
		mf.file = nil
	}
	mf.Data = nil
}
