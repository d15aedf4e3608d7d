// Package loader reads the per-chart survey data blocks from disk.
package loader

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/gob"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/klauspost/compress/zstd"
	"github.com/xuri/excelize/v2"
	"gopkg.in/yaml.v3"

	"github.com/user/survey-charts-go/internal/models"
)

var (
	// ErrUnsupportedFormat indicates a data file extension with no decoder.
	ErrUnsupportedFormat = errors.New("unsupported data format")

	// ErrNoBlocks indicates a data file that decoded to zero blocks.
	ErrNoBlocks = errors.New("no data blocks")
)

const cacheExt = ".gob.zst"

// DataLoader loads the ordered data blocks from a JSON, YAML or XLSX file,
// caching the parsed result keyed by the file's content hash.
type DataLoader struct {
	Path     string
	CacheDir string
	NoCache  bool
	Blocks   []models.DataBlock

	raw  []byte
	hash string
}

// NewDataLoader reads the file at path. An empty cacheDir disables caching.
func NewDataLoader(path, cacheDir string) (*DataLoader, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to get absolute path for data file: %w", err)
	}

	raw, err := os.ReadFile(absPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read data file %s: %w", absPath, err)
	}

	sum := sha256.Sum256(raw)
	return &DataLoader{
		Path:     absPath,
		CacheDir: cacheDir,
		NoCache:  cacheDir == "",
		raw:      raw,
		hash:     hex.EncodeToString(sum[:]),
	}, nil
}

// cachePath returns the cache file for the current file contents.
func (dl *DataLoader) cachePath() string {
	return filepath.Join(dl.CacheDir, dl.hash+cacheExt)
}

// CacheExists checks if a cache entry exists for the current file contents.
func (dl *DataLoader) CacheExists() bool {
	if dl.CacheDir == "" {
		return false
	}
	_, err := os.Stat(dl.cachePath())
	return err == nil
}

// SaveCache writes the loaded blocks as zstd-compressed gob.
func (dl *DataLoader) SaveCache() error {
	cacheFile := dl.cachePath()
	if err := os.MkdirAll(filepath.Dir(cacheFile), 0755); err != nil {
		return fmt.Errorf("failed to create cache directory %s: %w", filepath.Dir(cacheFile), err)
	}

	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(dl.Blocks); err != nil {
		return fmt.Errorf("failed to gob-encode blocks: %w", err)
	}

	f, err := os.Create(cacheFile)
	if err != nil {
		return fmt.Errorf("failed to create cache file %s: %w", cacheFile, err)
	}
	defer f.Close()

	enc, err := zstd.NewWriter(f)
	if err != nil {
		return fmt.Errorf("failed to create zstd writer: %w", err)
	}
	if _, err := enc.Write(buf.Bytes()); err != nil {
		enc.Close()
		return fmt.Errorf("failed to write cache entry: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("failed to close zstd writer: %w", err)
	}

	slog.Debug("data cached", slog.String("path", cacheFile))
	return nil
}

// LoadCache replaces Blocks with the cached entry for the current file contents.
func (dl *DataLoader) LoadCache() error {
	cacheFile := dl.cachePath()
	f, err := os.Open(cacheFile)
	if err != nil {
		return fmt.Errorf("failed to open cache file %s: %w", cacheFile, err)
	}
	defer f.Close()

	dec, err := zstd.NewReader(f)
	if err != nil {
		return fmt.Errorf("failed to create zstd reader: %w", err)
	}
	defer dec.Close()

	var blocks []models.DataBlock
	if err := gob.NewDecoder(dec).Decode(&blocks); err != nil {
		return fmt.Errorf("failed to gob-decode cache entry: %w", err)
	}
	dl.Blocks = blocks

	slog.Debug("data loaded from cache", slog.String("path", cacheFile))
	return nil
}

// ClearCache removes the cache entry for the current file contents.
func (dl *DataLoader) ClearCache() error {
	if dl.CacheDir == "" {
		return nil
	}
	if err := os.Remove(dl.cachePath()); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove cache file: %w", err)
	}
	return nil
}

// Load populates Blocks, trying the cache first. A cache entry that cannot
// be read is discarded and rewritten.
func (dl *DataLoader) Load(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if !dl.NoCache && dl.CacheExists() {
		err := dl.LoadCache()
		if err == nil && len(dl.Blocks) > 0 {
			return nil
		}
		slog.Warn("ignoring unreadable cache entry", slog.String("path", dl.cachePath()), slog.Any("err", err))
	}

	blocks, err := Decode(dl.Path, bytes.NewReader(dl.raw))
	if err != nil {
		return err
	}
	dl.Blocks = blocks

	if dl.NoCache {
		return nil
	}
	if err := dl.SaveCache(); err != nil {
		slog.Warn("failed to save data to cache", slog.String("path", dl.cachePath()), slog.Any("err", err))
	}
	return nil
}

// GetData loads the blocks in path without caching.
func GetData(ctx context.Context, path string) ([]models.DataBlock, error) {
	dl, err := NewDataLoader(path, "")
	if err != nil {
		return nil, err
	}
	if err := dl.Load(ctx); err != nil {
		return nil, err
	}
	return dl.Blocks, nil
}

// Decode parses blocks from r, picking the decoder by the extension of name.
func Decode(name string, r io.Reader) ([]models.DataBlock, error) {
	var (
		blocks []models.DataBlock
		err    error
	)

	switch ext := strings.ToLower(filepath.Ext(name)); ext {
	case ".json":
		blocks, err = decodeJSON(r)
	case ".yaml", ".yml":
		blocks, err = decodeYAML(r)
	case ".xlsx":
		blocks, err = decodeWorkbook(r)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", filepath.Base(name), err)
	}
	if len(blocks) == 0 {
		return nil, fmt.Errorf("%s: %w", filepath.Base(name), ErrNoBlocks)
	}
	return blocks, nil
}

func decodeJSON(r io.Reader) ([]models.DataBlock, error) {
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()

	var blocks []models.DataBlock
	if err := dec.Decode(&blocks); err != nil {
		return nil, err
	}
	return blocks, nil
}

func decodeYAML(r io.Reader) ([]models.DataBlock, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var blocks []models.DataBlock
	if err := dec.Decode(&blocks); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	return blocks, nil
}

// decodeWorkbook reads one block per sheet: column A holds the category and
// column B the count. A leading row whose count is not numeric is a header.
func decodeWorkbook(r io.Reader) ([]models.DataBlock, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var blocks []models.DataBlock
	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			return nil, fmt.Errorf("sheet %q: %w", sheet, err)
		}

		block := models.DataBlock{Name: sheet, Rows: []models.Row{}}
		headerSkipped := false
		for i, cells := range rows {
			if isBlank(cells) {
				continue
			}
			x := strings.TrimSpace(cells[0])
			var raw string
			if len(cells) > 1 {
				raw = strings.ReplaceAll(strings.TrimSpace(cells[1]), ",", "")
			}
			total, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				if len(block.Rows) == 0 && !headerSkipped {
					headerSkipped = true
					continue
				}
				cell, _ := excelize.CoordinatesToCellName(2, i+1)
				return nil, fmt.Errorf("sheet %q cell %s: invalid count %q", sheet, cell, raw)
			}
			block.Rows = append(block.Rows, models.Row{X: x, Total: total})
		}
		blocks = append(blocks, block)
	}
	return blocks, nil
}

func isBlank(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
