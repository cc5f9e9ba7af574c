package metacard

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-mmap/mmap"
	"github.com/pkg/errors"
)

// FormatForPath picks a record format from a file extension.
func FormatForPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".ndjson", ".jsonl":
		return FormatJSON, nil
	case ".pb", ".binpb":
		return FormatProto, nil
	}
	return 0, errors.Wrapf(ErrUnknownFormat, "%s", path)
}

/*
ReadRecordFile loads every record in the named file.

The file is mapped read-only and decoded in place; the encoding is chosen
from the extension (see FormatForPath).
*/
func ReadRecordFile(path string) ([]*Record, error) {
	format, err := FormatForPath(path)
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, errors.Wrapf(err, "stat %s", path)
	}
	if info.Size() == 0 {
		return nil, nil
	}

	f, err := mmap.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "mapping %s", path)
	}
	defer f.Close()

	r := io.NewSectionReader(f, 0, int64(f.Len()))
	switch format {
	case FormatProto:
		return ReadProtoRecords(r)
	default:
		return ReadRecords(r)
	}
}

// WriteRecordFile writes records to path in the format implied by its extension.
func WriteRecordFile(path string, records []*Record) error {
	format, err := FormatForPath(path)
	if err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "creating %s", path)
	}

	switch format {
	case FormatProto:
		err = WriteProtoRecords(f, records)
	default:
		err = WriteRecords(f, records)
	}
	if err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
