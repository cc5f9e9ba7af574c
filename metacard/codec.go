package metacard

import (
	"bufio"
	"bytes"
	"encoding/json"
	"io"

	"github.com/pkg/errors"
	"google.golang.org/protobuf/encoding/protodelim"
	"google.golang.org/protobuf/types/known/structpb"
)

// Format identifies an on-disk record encoding.
type Format int

const (
	// FormatJSON is either a JSON array of records or one record per line.
	FormatJSON Format = iota
	// FormatProto is a stream of length-delimited google.protobuf.Struct messages.
	FormatProto
)

// ErrUnknownFormat is returned for record files with an unrecognised extension.
var ErrUnknownFormat = errors.New("unknown record format")

// ReadRecords decodes records from r. The input is either a JSON array of
// records or a stream of concatenated JSON objects (NDJSON).
func ReadRecords(r io.Reader) ([]*Record, error) {
	br := bufio.NewReader(r)
	first, err := peekNonSpace(br)
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "reading records")
	}

	dec := json.NewDecoder(br)
	if first == '[' {
		var records []*Record
		if err := dec.Decode(&records); err != nil {
			return nil, errors.Wrap(err, "decoding record array")
		}
		return records, nil
	}

	var records []*Record
	for {
		rec := &Record{}
		err := dec.Decode(rec)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrapf(err, "decoding record %d", len(records))
		}
		records = append(records, rec)
	}
	return records, nil
}

// WriteRecords writes records as newline-delimited JSON.
func WriteRecords(w io.Writer, records []*Record) error {
	enc := json.NewEncoder(w)
	for i, rec := range records {
		if err := enc.Encode(rec); err != nil {
			return errors.Wrapf(err, "encoding record %d", i)
		}
	}
	return nil
}

// ReadProtoRecords decodes a stream of length-delimited Struct messages.
func ReadProtoRecords(r io.Reader) ([]*Record, error) {
	br := bufio.NewReader(r)

	var records []*Record
	for {
		msg := &structpb.Struct{}
		err := protodelim.UnmarshalFrom(br, msg)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrapf(err, "decoding record %d", len(records))
		}
		records = append(records, recordFromStruct(msg))
	}
	return records, nil
}

// WriteProtoRecords writes records as length-delimited Struct messages.
func WriteProtoRecords(w io.Writer, records []*Record) error {
	for i, rec := range records {
		msg, err := recordToStruct(rec)
		if err != nil {
			return errors.Wrapf(err, "converting record %d", i)
		}
		if _, err := protodelim.MarshalTo(w, msg); err != nil {
			return errors.Wrapf(err, "writing record %d", i)
		}
	}
	return nil
}

func recordToStruct(rec *Record) (*structpb.Struct, error) {
	props := rec.Properties
	if props == nil {
		props = map[string]any{}
	}
	fields := map[string]any{"properties": props}
	if rec.Geometry != nil {
		fields["geometry"] = rec.Geometry
	}
	return structpb.NewStruct(fields)
}

func recordFromStruct(msg *structpb.Struct) *Record {
	m := msg.AsMap()
	rec := &Record{Properties: map[string]any{}}
	if props, ok := m["properties"].(map[string]any); ok {
		rec.Properties = props
	}
	rec.Geometry = m["geometry"]
	return rec
}

func peekNonSpace(br *bufio.Reader) (byte, error) {
	for {
		b, err := br.ReadByte()
		if err != nil {
			return 0, err
		}
		if !bytes.ContainsRune([]byte(" \t\r\n"), rune(b)) {
			return b, br.UnreadByte()
		}
	}
}
