package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zstd"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/san-kum/sixdof/internal/sim"
)

const archiveFile = "samples.msgpack.zst"

// The archive holds the full samples, outputs included, as msgpack
// compressed with zstd.

func encodeSamples(w io.Writer, samples []sim.Sample) error {
	zw, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedBetterCompression))
	if err != nil {
		return fmt.Errorf("failed to create zstd writer: %w", err)
	}
	if err := msgpack.NewEncoder(zw).Encode(samples); err != nil {
		zw.Close()
		return fmt.Errorf("failed to encode samples: %w", err)
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("failed to close zstd writer: %w", err)
	}
	return nil
}

func decodeSamples(r io.Reader) ([]sim.Sample, error) {
	zr, err := zstd.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd reader: %w", err)
	}
	defer zr.Close()

	var samples []sim.Sample
	if err := msgpack.NewDecoder(zr).Decode(&samples); err != nil {
		return nil, fmt.Errorf("failed to decode samples: %w", err)
	}
	return samples, nil
}

func writeArchive(path string, samples []sim.Sample) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := encodeSamples(f, samples); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// LoadSamples reads the archived samples of a run.
func (s *Store) LoadSamples(runID string) ([]sim.Sample, error) {
	f, err := os.Open(filepath.Join(s.Dir(runID), archiveFile))
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return decodeSamples(f)
}
