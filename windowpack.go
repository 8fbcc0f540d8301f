// Package windowpack provides an online, exemplar-based compression engine
// for per-device IoT sensor telemetry.
//
// Consecutive windows of a slowly varying physical signal are usually near
// duplicates. Windowpack exploits that: each fixed-length window is compared
// against a bounded pool of previously stored exemplar windows, and is
// encoded either as a tiny Reference to a pool slot or as a NewExemplar
// carrying the raw values. An adaptive threshold controller steers the
// match rate toward a target compression gain under a reconstruction error
// budget. Decompression deterministically replays the record stream against
// an identical pool trajectory, so matched windows reconstruct without ever
// storing their raw values.
//
// # Basic Usage
//
// Compressing one device's backlog:
//
//	import "github.com/sensorstream/windowpack"
//
//	device := windowpack.DeviceID("greenhouse.7.temperature")
//	records, err := windowpack.Compress(device, samples,
//	    engine.WithWindowSize(16),
//	    engine.WithPoolCapacity(8),
//	)
//
//	windows, err := windowpack.Decompress(device, 8, records)
//
// Serializing a record stream to bytes and back:
//
//	data, err := windowpack.EncodeStream(device, records, 16, 8, 1)
//	records, header, err := windowpack.DecodeStream(data)
//
// # Package Structure
//
// This package provides convenient top-level wrappers around the engine
// package, simplifying the most common use cases. For streaming sessions,
// custom sinks, per-window control, or multi-device parallel runs, use the
// engine and runner packages directly.
package windowpack

import (
	"github.com/sensorstream/windowpack/engine"
	"github.com/sensorstream/windowpack/format"
	"github.com/sensorstream/windowpack/internal/hash"
	"github.com/sensorstream/windowpack/section"
)

// DeviceID converts a device name into its 64-bit identifier using xxHash64.
// The same name always yields the same ID.
func DeviceID(name string) uint64 {
	return hash.DeviceID(name)
}

// Compress runs a complete batch compression session over one device's
// ordered samples and returns the record sequence.
func Compress(device uint64, samples []engine.Sample, opts ...engine.CompressorOption) ([]engine.Record, error) {
	var records engine.Records

	c, err := engine.NewCompressor(device, &records, opts...)
	if err != nil {
		return nil, err
	}
	if err := c.Push(samples...); err != nil {
		return nil, err
	}
	if err := c.Finish(); err != nil {
		return nil, err
	}

	return records, nil
}

// Decompress replays a device's record sequence and returns the
// reconstructed windows. poolCapacity must match the compression-side
// configuration.
func Decompress(device uint64, poolCapacity int, records []engine.Record) ([]engine.Window, error) {
	d, err := engine.NewDecompressor(device, poolCapacity)
	if err != nil {
		return nil, err
	}

	return d.ApplyAll(records)
}

// EncodeStream serializes a record sequence into the binary stream format
// with zstd payload compression. windowSize, poolCapacity and arity must
// match the session that produced the records.
func EncodeStream(device uint64, records []engine.Record, windowSize, poolCapacity, arity int) ([]byte, error) {
	header, err := section.NewStreamHeader(device, windowSize, poolCapacity, arity)
	if err != nil {
		return nil, err
	}
	header.Flag.SetCompression(format.CompressionZstd)

	sw, err := engine.NewStreamWriter(header)
	if err != nil {
		return nil, err
	}
	defer sw.Close()

	for _, rec := range records {
		if err := sw.Append(rec); err != nil {
			return nil, err
		}
	}

	return sw.Bytes(), nil
}

// DecodeStream parses a serialized stream and returns its records and
// header. The header carries everything needed to replay: device ID, pool
// capacity, window size and arity.
func DecodeStream(data []byte) ([]engine.Record, section.StreamHeader, error) {
	sr, err := engine.NewStreamReader(data)
	if err != nil {
		return nil, section.StreamHeader{}, err
	}

	records, err := sr.Records()
	if err != nil {
		return nil, sr.Header(), err
	}

	return records, sr.Header(), nil
}
