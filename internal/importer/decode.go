package importer

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
)

var ErrUnsupportedCharset = errors.New("unsupported charset")

const utf8BOM = "\uFEFF"

// Decode reads a whole CSV export and returns it as UTF-8 text. Some banks
// still export Latin-1 or Windows-1252; charset selects the decoder and an
// empty charset means UTF-8.
func Decode(r io.Reader, charset string) (string, error) {
	var dec *encoding.Decoder
	switch strings.ToLower(strings.TrimSpace(charset)) {
	case "", "utf-8", "utf8":
	case "latin1", "latin-1", "iso-8859-1":
		dec = charmap.ISO8859_1.NewDecoder()
	case "windows-1252", "cp1252":
		dec = charmap.Windows1252.NewDecoder()
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedCharset, charset)
	}
	if dec != nil {
		r = dec.Reader(r)
	}

	b, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("read csv: %w", err)
	}
	return strings.TrimPrefix(string(b), utf8BOM), nil
}
