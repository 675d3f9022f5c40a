package inspector

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"

	"github.com/pierrec/lz4/v4"
)

// MarshalJSON serializes the report as an ordered array of entries.
func (r *Report) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.Entries())
}

// UnmarshalJSON reads an array of entries back into the report.
func (r *Report) UnmarshalJSON(data []byte) error {
	var entries []CodeletReport
	if err := json.Unmarshal(data, &entries); err != nil {
		return err
	}
	r.entries = make(map[CodeletKey]CodeletReport, len(entries))
	for _, entry := range entries {
		r.entries[entry.Key()] = entry
	}
	return nil
}

// maxFrameSize bounds decoded report frames to keep a corrupt length prefix
// from exhausting memory.
const maxFrameSize = 64 << 20

// EncodeFrame serializes a report into its wire form: a big-endian uint32
// length prefix followed by the LZ4-compressed JSON document.
func EncodeFrame(report *Report) ([]byte, error) {
	doc, err := json.Marshal(report)
	if err != nil {
		return nil, fmt.Errorf("inspector: marshal report: %w", err)
	}

	var compressed bytes.Buffer
	zw := lz4.NewWriter(&compressed)
	if _, err := zw.Write(doc); err != nil {
		return nil, fmt.Errorf("inspector: compress report: %w", err)
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("inspector: compress report: %w", err)
	}

	frame := make([]byte, 4+compressed.Len())
	binary.BigEndian.PutUint32(frame, uint32(compressed.Len()))
	copy(frame[4:], compressed.Bytes())
	return frame, nil
}

// DecodeFrame reverses EncodeFrame.
func DecodeFrame(frame []byte) (*Report, error) {
	if len(frame) < 4 {
		return nil, fmt.Errorf("inspector: short frame (%d bytes)", len(frame))
	}
	size := binary.BigEndian.Uint32(frame)
	if size > maxFrameSize {
		return nil, fmt.Errorf("inspector: frame size %d exceeds limit", size)
	}
	if int(size) != len(frame)-4 {
		return nil, fmt.Errorf("inspector: frame length mismatch: prefix=%d, payload=%d", size, len(frame)-4)
	}

	zr := lz4.NewReader(bytes.NewReader(frame[4:]))
	doc, err := io.ReadAll(io.LimitReader(zr, maxFrameSize))
	if err != nil {
		return nil, fmt.Errorf("inspector: decompress report: %w", err)
	}

	report := NewReport()
	if err := json.Unmarshal(doc, report); err != nil {
		return nil, fmt.Errorf("inspector: unmarshal report: %w", err)
	}
	return report, nil
}
