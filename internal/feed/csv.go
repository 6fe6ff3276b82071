package feed

import (
	"bytes"
	"encoding/csv"
	"io"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

// csvFeed streams records from an in-memory CSV document. Marketplace exports
// from Russian tooling frequently arrive as windows-1251; the constructor
// transcodes to UTF-8 when the bytes are not already valid UTF-8.
type csvFeed struct {
	reader  *csv.Reader
	headers []string
}

// NewCSVFeed tokenizes the header row eagerly (so an unreadable file fails the
// run before any row is processed) and streams data rows lazily.
func NewCSVFeed(r io.Reader) (Feed, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, &UnreadableError{Reason: "reading csv body", Err: err}
	}
	if !utf8.Valid(raw) {
		decoded, _, err := transform.Bytes(charmap.Windows1251.NewDecoder(), raw)
		if err != nil {
			return nil, &UnreadableError{Reason: "decoding windows-1251", Err: err}
		}
		raw = decoded
	}

	cr := csv.NewReader(bytes.NewReader(raw))
	cr.Comma = detectDelimiter(raw)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	headers, err := cr.Read()
	if err != nil {
		return nil, &UnreadableError{Reason: "reading csv header", Err: err}
	}
	for i := range headers {
		headers[i] = strings.TrimSpace(strings.TrimPrefix(headers[i], "\ufeff"))
	}
	return &csvFeed{reader: cr, headers: headers}, nil
}

func (f *csvFeed) Next() (Row, error) {
	record, err := f.reader.Read()
	if err == io.EOF {
		return nil, io.EOF
	}
	if err != nil {
		return nil, &UnreadableError{Reason: "reading csv record", Err: err}
	}
	row := make(Row, len(f.headers))
	for i, h := range f.headers {
		if i < len(record) {
			row[h] = record[i]
		}
	}
	return row, nil
}

// detectDelimiter checks the header line for semicolons, the delimiter most
// Russian spreadsheet exports use instead of commas.
func detectDelimiter(raw []byte) rune {
	line := raw
	if i := bytes.IndexByte(raw, '\n'); i >= 0 {
		line = raw[:i]
	}
	if bytes.Count(line, []byte(";")) > bytes.Count(line, []byte(",")) {
		return ';'
	}
	return ','
}
