package cachestore

import (
	"bytes"

	"github.com/Masterminds/semver/v3"
	"github.com/teranos/specgraph/errors"
	"github.com/vmihailenco/msgpack/v5"
)

// FormatVersion is written into every snapshot.
const FormatVersion = "1.0.0"

var formatConstraint = mustConstraint("^1.0.0")

type envelope struct {
	Format  string `msgpack:"format"`
	Records Batch  `msgpack:"records"`
}

func mustConstraint(c string) *semver.Constraints {
	constraint, err := semver.NewConstraint(c)
	if err != nil {
		panic(err)
	}
	return constraint
}

// Encode serializes a snapshot.
func Encode(batch Batch) ([]byte, error) {
	data, err := msgpack.Marshal(&envelope{Format: FormatVersion, Records: batch})
	if err != nil {
		return nil, errors.Wrap(err, "encode snapshot")
	}
	return data, nil
}

// Decode deserializes a snapshot written by Encode. Snapshots of an
// incompatible format are corrupt.
func Decode(data []byte) (Batch, error) {
	var env envelope
	dec := msgpack.NewDecoder(bytes.NewReader(data))
	dec.UseLooseInterfaceDecoding(true)
	if err := dec.Decode(&env); err != nil {
		return nil, errors.WrapMarkf(err, errors.ErrCorruptCache, "decode snapshot")
	}
	version, err := semver.NewVersion(env.Format)
	if err != nil {
		return nil, errors.WrapMarkf(err, errors.ErrCorruptCache, "snapshot format '%s'", env.Format)
	}
	if !formatConstraint.Check(version) {
		return nil, errors.Markf(errors.ErrCorruptCache,
			"snapshot format %s is not supported, want %s", version, FormatVersion)
	}
	if env.Records == nil {
		env.Records = Batch{}
	}
	return env.Records, nil
}
