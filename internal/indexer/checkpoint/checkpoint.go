// Package checkpoint persists full snapshots of the in-memory inverted index
// to disk. A checkpoint is a single .clck file: fixed binary header, a JSON
// body holding the term entries and document statistics, and a CRC32 footer.
// Writes go to a temp file and rename on success, so a crash mid-write never
// leaves a file that passes validation.
//
// Checkpoints are full snapshots rather than incremental segments: the index
// of record is rebuilt from the Kafka topic on restart, and a checkpoint only
// exists to shorten that replay. The newest valid checkpoint wins; older and
// corrupt files are ignored.
package checkpoint

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"hash/crc32"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/arefin-labs/clir-engine/internal/index"
)

const (
	// magicBytes identifies a valid .clck checkpoint file ("CLCK").
	magicBytes    uint32 = 0x434C434B
	formatVersion uint32 = 1
	headerSize           = 32
	footerSize           = 4

	fileSuffix = ".clck"
)

// body is the JSON payload between header and footer.
type body struct {
	Entries []index.TermEntry `json:"entries"`
	Docs    []index.DocStats  `json:"docs"`
}

// Writer writes checkpoint files into a directory.
type Writer struct {
	dataDir string
}

// NewWriter creates a Writer for the given directory.
func NewWriter(dataDir string) *Writer {
	return &Writer{dataDir: dataDir}
}

// Write atomically creates a new checkpoint file from a snapshot and returns
// its file name.
func (w *Writer) Write(entries []index.TermEntry, docs []index.DocStats) (string, error) {
	if len(docs) == 0 {
		return "", fmt.Errorf("refusing to write empty checkpoint")
	}
	if err := os.MkdirAll(w.dataDir, 0o755); err != nil {
		return "", fmt.Errorf("creating checkpoint directory: %w", err)
	}

	name := fmt.Sprintf("ckpt_%d%s", time.Now().UnixNano(), fileSuffix)
	finalPath := filepath.Join(w.dataDir, name)
	tmpPath := finalPath + ".tmp"

	payload, err := json.Marshal(body{Entries: entries, Docs: docs})
	if err != nil {
		return "", fmt.Errorf("marshaling checkpoint body: %w", err)
	}

	header := make([]byte, headerSize)
	binary.LittleEndian.PutUint32(header[0:4], magicBytes)
	binary.LittleEndian.PutUint32(header[4:8], formatVersion)
	binary.LittleEndian.PutUint32(header[8:12], uint32(len(entries)))
	binary.LittleEndian.PutUint32(header[12:16], uint32(len(docs)))
	binary.LittleEndian.PutUint64(header[16:24], uint64(len(payload)))
	binary.LittleEndian.PutUint64(header[24:32], uint64(time.Now().Unix()))

	footer := make([]byte, footerSize)
	binary.LittleEndian.PutUint32(footer, crc32.ChecksumIEEE(payload))

	f, err := os.Create(tmpPath)
	if err != nil {
		return "", fmt.Errorf("creating temp checkpoint file: %w", err)
	}
	for _, chunk := range [][]byte{header, payload, footer} {
		if _, err := f.Write(chunk); err != nil {
			f.Close()
			os.Remove(tmpPath)
			return "", fmt.Errorf("writing checkpoint: %w", err)
		}
	}
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tmpPath)
		return "", fmt.Errorf("syncing checkpoint: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("closing checkpoint: %w", err)
	}
	if err := os.Rename(tmpPath, finalPath); err != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("renaming checkpoint: %w", err)
	}
	return name, nil
}

// Prune deletes all but the newest keep checkpoint files.
func (w *Writer) Prune(keep int) error {
	if keep < 1 {
		keep = 1
	}
	names, err := list(w.dataDir)
	if err != nil {
		return err
	}
	if len(names) <= keep {
		return nil
	}
	for _, name := range names[:len(names)-keep] {
		if err := os.Remove(filepath.Join(w.dataDir, name)); err != nil {
			return fmt.Errorf("pruning checkpoint %s: %w", name, err)
		}
	}
	return nil
}

// Read parses and validates one checkpoint file.
func Read(path string) ([]index.TermEntry, []index.DocStats, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("reading checkpoint: %w", err)
	}
	if len(raw) < headerSize+footerSize {
		return nil, nil, fmt.Errorf("checkpoint truncated: %d bytes", len(raw))
	}
	if magic := binary.LittleEndian.Uint32(raw[0:4]); magic != magicBytes {
		return nil, nil, fmt.Errorf("bad magic %08x", magic)
	}
	if version := binary.LittleEndian.Uint32(raw[4:8]); version != formatVersion {
		return nil, nil, fmt.Errorf("unsupported checkpoint version %d", version)
	}
	payloadLen := binary.LittleEndian.Uint64(raw[16:24])
	if uint64(len(raw)) != uint64(headerSize+footerSize)+payloadLen {
		return nil, nil, fmt.Errorf("checkpoint length mismatch: header says %d payload bytes", payloadLen)
	}
	payload := raw[headerSize : headerSize+int(payloadLen)]
	want := binary.LittleEndian.Uint32(raw[len(raw)-footerSize:])
	if got := crc32.ChecksumIEEE(payload); got != want {
		return nil, nil, fmt.Errorf("checkpoint checksum mismatch: got %08x want %08x", got, want)
	}

	var b body
	if err := json.Unmarshal(payload, &b); err != nil {
		return nil, nil, fmt.Errorf("unmarshaling checkpoint body: %w", err)
	}
	if entryCount := binary.LittleEndian.Uint32(raw[8:12]); int(entryCount) != len(b.Entries) {
		return nil, nil, fmt.Errorf("term count mismatch: header %d body %d", entryCount, len(b.Entries))
	}
	if docCount := binary.LittleEndian.Uint32(raw[12:16]); int(docCount) != len(b.Docs) {
		return nil, nil, fmt.Errorf("doc count mismatch: header %d body %d", docCount, len(b.Docs))
	}
	return b.Entries, b.Docs, nil
}

// Latest restores from the newest valid checkpoint in dir. Corrupt files are
// skipped, not fatal; the returned name is empty when no valid checkpoint
// exists.
func Latest(dir string) (entries []index.TermEntry, docs []index.DocStats, name string, err error) {
	names, err := list(dir)
	if err != nil {
		return nil, nil, "", err
	}
	for i := len(names) - 1; i >= 0; i-- {
		entries, docs, readErr := Read(filepath.Join(dir, names[i]))
		if readErr != nil {
			continue
		}
		return entries, docs, names[i], nil
	}
	return nil, nil, "", nil
}

// list returns checkpoint file names sorted oldest first. The nanosecond
// timestamp in the name gives lexical order the same meaning as age.
func list(dir string) ([]string, error) {
	dirEntries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading checkpoint directory: %w", err)
	}
	var names []string
	for _, e := range dirEntries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), fileSuffix) {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}
