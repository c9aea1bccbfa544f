package forecast

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"

	"github.com/klauspost/compress/zstd"
)

// Record kinds.
const (
	KindGeode   = "geode"
	KindGarbage = "garbage"
	KindWeather = "weather"
	KindNight   = "night_event"
)

// Record is one prediction in flat form, as exported to JSONL and stored
// in the archive. Day is the crack counter for geode records.
type Record struct {
	Kind    string          `json:"kind"`
	Day     uint32          `json:"day"`
	Key     string          `json:"key"`
	Payload json.RawMessage `json:"payload"`
}

// Records flattens a report: days in order, then geode cracks.
func (r *Report) Records() ([]Record, error) {
	var out []Record
	add := func(kind string, day uint32, key string, v any) error {
		b, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("encode %s %d %s: %w", kind, day, key, err)
		}
		out = append(out, Record{Kind: kind, Day: day, Key: key, Payload: b})
		return nil
	}
	for _, d := range r.Days {
		for _, p := range d.Garbage {
			if err := add(KindGarbage, d.Day, p.Can, p); err != nil {
				return nil, err
			}
		}
		for _, fc := range d.Weather {
			if err := add(KindWeather, d.Day, fc.Context, fc); err != nil {
				return nil, err
			}
		}
		if d.Night != "" {
			if err := add(KindNight, d.Day, "", d.Night); err != nil {
				return nil, err
			}
		}
	}
	for _, g := range r.Geodes {
		if err := add(KindGeode, g.Cracked, g.Geode, g); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// WriteJSONL writes one record per line, zstd-compressed.
func WriteJSONL(w io.Writer, recs []Record) error {
	enc, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return err
	}
	bw := bufio.NewWriterSize(enc, 128*1024)
	je := json.NewEncoder(bw)
	for _, rec := range recs {
		if err := je.Encode(rec); err != nil {
			_ = enc.Close()
			return err
		}
	}
	if err := bw.Flush(); err != nil {
		_ = enc.Close()
		return err
	}
	return enc.Close()
}

// ReadJSONL reads records written by WriteJSONL.
func ReadJSONL(r io.Reader) ([]Record, error) {
	dec, err := zstd.NewReader(r)
	if err != nil {
		return nil, err
	}
	defer dec.Close()

	sc := bufio.NewScanner(dec)
	sc.Buffer(make([]byte, 64*1024), 8*1024*1024)
	var out []Record
	line := 0
	for sc.Scan() {
		line++
		var rec Record
		if err := json.Unmarshal(sc.Bytes(), &rec); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		out = append(out, rec)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
