package importer

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

// DefaultEncodings is the candidate order used when none is configured.
var DefaultEncodings = []string{"utf-8", "utf-16", "latin-1"}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

var errInvalidUTF8 = errors.New("invalid utf-8 byte sequence")

// Encoding decodes raw source bytes into UTF-8.
type Encoding struct {
	Name   string
	decode func([]byte) ([]byte, error)
}

func (e Encoding) Decode(raw []byte) ([]byte, error) {
	return e.decode(raw)
}

// SupportedEncodings lists the accepted candidate names.
func SupportedEncodings() []string {
	return []string{"utf-8", "utf-8-sig", "utf-16", "latin-1", "iso-8859-1", "windows-1252"}
}

// LookupEncoding resolves a candidate name, case-insensitively and ignoring
// "_" versus "-".
func LookupEncoding(name string) (Encoding, error) {
	key := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), "_", "-")
	switch key {
	case "utf-8", "utf8":
		return Encoding{Name: "utf-8", decode: decodeUTF8}, nil
	case "utf-8-sig":
		return Encoding{Name: "utf-8-sig", decode: decodeUTF8}, nil
	case "utf-16", "utf16":
		return Encoding{Name: "utf-16", decode: decodeUTF16}, nil
	case "latin-1", "latin1", "iso-8859-1", "iso8859-1":
		return Encoding{Name: "latin-1", decode: charmap.ISO8859_1.NewDecoder().Bytes}, nil
	case "windows-1252", "cp1252":
		return Encoding{Name: "windows-1252", decode: charmap.Windows1252.NewDecoder().Bytes}, nil
	default:
		return Encoding{}, fmt.Errorf("unsupported encoding %q (supported: %s)", name, strings.Join(SupportedEncodings(), ", "))
	}
}

// ValidateEncodings checks every candidate name up front.
func ValidateEncodings(names []string) error {
	for _, name := range names {
		if _, err := LookupEncoding(name); err != nil {
			return err
		}
	}
	return nil
}

func decodeUTF8(raw []byte) ([]byte, error) {
	trimmed := bytes.TrimPrefix(raw, utf8BOM)
	if !utf8.Valid(trimmed) {
		return nil, errInvalidUTF8
	}
	return trimmed, nil
}

// decodeUTF16 requires a byte order mark; without one the bytes are ambiguous.
func decodeUTF16(raw []byte) ([]byte, error) {
	decoder := unicode.UTF16(unicode.LittleEndian, unicode.ExpectBOM).NewDecoder()
	return decoder.Bytes(raw)
}
