package sim

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/klauspost/compress/zstd"
)

// WriteLogZstd streams entries to w as zstd-compressed JSON lines.
func WriteLogZstd(w io.Writer, entries []SimLogEntry) error {
	enc, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedFastest))
	if err != nil {
		return err
	}
	bw := bufio.NewWriterSize(enc, 128*1024)
	je := json.NewEncoder(bw)
	for i := range entries {
		if err := je.Encode(&entries[i]); err != nil {
			_ = enc.Close()
			return fmt.Errorf("encode entry %d: %w", i, err)
		}
	}
	if err := bw.Flush(); err != nil {
		_ = enc.Close()
		return err
	}
	return enc.Close()
}

// ReadLogZstd decodes a stream written by WriteLogZstd.
func ReadLogZstd(r io.Reader) ([]SimLogEntry, error) {
	dec, err := zstd.NewReader(r)
	if err != nil {
		return nil, err
	}
	defer dec.Close()

	sc := bufio.NewScanner(dec)
	sc.Buffer(make([]byte, 64*1024), 8*1024*1024)

	var out []SimLogEntry
	line := 0
	for sc.Scan() {
		line++
		var e SimLogEntry
		if err := json.Unmarshal(sc.Bytes(), &e); err != nil {
			return out, fmt.Errorf("line %d: unmarshal: %w", line, err)
		}
		out = append(out, e)
	}
	return out, sc.Err()
}

// ExportLog writes the log to path as .jsonl.zst.
func (sl *SimLog) ExportLog(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("export log: %w", err)
	}
	if err := WriteLogZstd(f, sl.entries); err != nil {
		_ = f.Close()
		return fmt.Errorf("export log %s: %w", path, err)
	}
	return f.Close()
}
