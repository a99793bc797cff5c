package parser

import (
	"bytes"
	"encoding/json"
	stderrors "errors" // Standard errors package
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/cyberphone/json-canonicalization/go/src/webpki.org/jsoncanonicalizer"

	"github.com/mcncl/jsonviewer/internal/errors" // Custom errors package
	"github.com/mcncl/jsonviewer/internal/models"
)

// maxSafeDigits is the number of significant decimal digits a float64 is
// guaranteed to carry without loss.
const maxSafeDigits = 15

// Option adjusts how Parse decodes numbers.
type Option func(*decoder)

// WithLosslessNumbers keeps numbers that cannot be represented exactly as
// float64 as models.LosslessNumber instead of json.Number.
func WithLosslessNumbers() Option {
	return func(d *decoder) { d.lossless = true }
}

// WithCanonicalForm decodes the RFC 8785 canonical form of the input:
// object keys sorted by UTF-16 code units and numbers in their shortest
// ECMAScript spelling. Numbers pass through float64 on the way.
func WithCanonicalForm() Option {
	return func(d *decoder) { d.canonical = true }
}

type decoder struct {
	dec       *json.Decoder
	lossless  bool
	canonical bool
	kept      int
}

// Parse converts JSON data from an io.Reader into an IntermediateRepresentation.
// Objects are decoded into *models.JSONObject so key order survives.
func Parse(reader io.Reader, opts ...Option) (models.IntermediateRepresentation, error) {
	d := &decoder{}
	for _, opt := range opts {
		opt(d)
	}
	if d.canonical {
		canonical, err := canonicalize(reader)
		if err != nil {
			return models.IntermediateRepresentation{}, err
		}
		reader = bytes.NewReader(canonical)
	}
	d.dec = json.NewDecoder(reader)
	d.dec.UseNumber() // Ensure numbers are read as json.Number

	tok, err := d.dec.Token()
	if err != nil {
		if stderrors.Is(err, io.EOF) {
			return models.IntermediateRepresentation{}, errors.NewParsingError("input is empty or contains only whitespace", errors.ErrEmptyInput)
		}
		return models.IntermediateRepresentation{}, wrapDecodeError(err)
	}

	rootValue, err := d.value(tok)
	if err != nil {
		return models.IntermediateRepresentation{}, wrapDecodeError(err)
	}

	// Anything but EOF after the first value is either garbage or a second value.
	if _, err := d.dec.Token(); err == nil {
		return models.IntermediateRepresentation{}, errors.NewParsingError("multiple JSON values found at the root", errors.ErrMultipleJSON)
	} else if !stderrors.Is(err, io.EOF) {
		return models.IntermediateRepresentation{}, errors.NewParsingError("invalid trailing data after first JSON value", err)
	}

	ir := models.IntermediateRepresentation{
		Root:     rootValue,
		Lossless: d.kept,
	}
	_, ir.RootIsArray = rootValue.(models.JSONArray)
	return ir, nil
}

func canonicalize(reader io.Reader) ([]byte, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, errors.NewParsingError("failed to read JSON input", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, errors.NewParsingError("input is empty or contains only whitespace", errors.ErrEmptyInput)
	}
	canonical, err := jsoncanonicalizer.Transform(data)
	if err != nil {
		return nil, errors.NewParsingError(fmt.Sprintf("failed to canonicalize JSON: %v", err), errors.ErrInvalidJSON)
	}
	return canonical, nil
}

func wrapDecodeError(err error) error {
	var syntaxError *json.SyntaxError
	if stderrors.As(err, &syntaxError) {
		return errors.NewParsingError(
			fmt.Sprintf("JSON syntax error at offset %d", syntaxError.Offset),
			errors.ErrInvalidJSON,
		)
	}
	if stderrors.Is(err, io.ErrUnexpectedEOF) || stderrors.Is(err, io.EOF) {
		return errors.NewParsingError("unexpected end of JSON input", errors.ErrInvalidJSON)
	}
	return errors.NewParsingError("failed to decode JSON", err)
}

// value decodes the value starting at tok, recursing into containers.
func (d *decoder) value(tok json.Token) (models.JSONValue, error) {
	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			return d.object()
		case '[':
			return d.array()
		}
		return nil, fmt.Errorf("unexpected delimiter %q: %w", rune(t), errors.ErrInvalidJSON)
	case json.Number:
		return d.number(t), nil
	default:
		// string, bool and nil are returned as is
		return t, nil
	}
}

func (d *decoder) object() (models.JSONValue, error) {
	obj := models.NewJSONObject(0)
	for d.dec.More() {
		keyTok, err := d.dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := keyTok.(string)
		if !ok {
			return nil, fmt.Errorf("object key is %T, not a string: %w", keyTok, errors.ErrInvalidJSON)
		}
		valTok, err := d.dec.Token()
		if err != nil {
			return nil, err
		}
		val, err := d.value(valTok)
		if err != nil {
			return nil, err
		}
		obj.Set(key, val)
	}
	if _, err := d.dec.Token(); err != nil { // closing '}'
		return nil, err
	}
	return obj, nil
}

func (d *decoder) array() (models.JSONValue, error) {
	arr := models.JSONArray{}
	for d.dec.More() {
		tok, err := d.dec.Token()
		if err != nil {
			return nil, err
		}
		val, err := d.value(tok)
		if err != nil {
			return nil, err
		}
		arr = append(arr, val)
	}
	if _, err := d.dec.Token(); err != nil { // closing ']'
		return nil, err
	}
	return arr, nil
}

func (d *decoder) number(n json.Number) models.JSONValue {
	if !d.lossless || isSafeNumber(n.String()) {
		return n
	}
	d.kept++
	return models.LosslessNumber{Value: n.String()}
}

// isSafeNumber reports whether s survives a round trip through float64.
func isSafeNumber(s string) bool {
	if _, err := strconv.ParseFloat(s, 64); err != nil {
		return false
	}
	mantissa := strings.TrimLeft(s, "-+")
	if i := strings.IndexAny(mantissa, "eE"); i >= 0 {
		mantissa = mantissa[:i]
	}
	digits := strings.ReplaceAll(mantissa, ".", "")
	digits = strings.TrimLeft(digits, "0")
	if strings.Contains(mantissa, ".") {
		digits = strings.TrimRight(digits, "0")
	}
	return len(digits) <= maxSafeDigits
}

// ParseString parses JSON from a string
func ParseString(jsonString string, opts ...Option) (models.IntermediateRepresentation, error) {
	// An empty reader gives io.EOF, but report blank strings as input errors.
	if strings.TrimSpace(jsonString) == "" {
		return models.IntermediateRepresentation{}, errors.NewInputError("input string is empty", errors.ErrEmptyInput)
	}
	return Parse(strings.NewReader(jsonString), opts...)
}

// ParseFile parses JSON from a file path
func ParseFile(filePath string, opts ...Option) (models.IntermediateRepresentation, error) {
	if strings.TrimSpace(filePath) == "" {
		return models.IntermediateRepresentation{}, errors.NewInputError("file path is empty", errors.ErrInvalidFilePath)
	}
	file, err := os.Open(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return models.IntermediateRepresentation{}, errors.NewInputError(
				fmt.Sprintf("file '%s' not found", filePath),
				errors.ErrFileNotFound,
			)
		}
		return models.IntermediateRepresentation{}, errors.NewInputError(
			fmt.Sprintf("failed to open file '%s'", filePath),
			err,
		)
	}
	defer func() {
		if err := file.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "Error closing file: %v\n", err)
		}
	}()

	stat, err := file.Stat()
	if err != nil {
		return models.IntermediateRepresentation{}, errors.NewInputError(
			fmt.Sprintf("failed to get file stats for '%s'", filePath),
			err,
		)
	}
	if stat.Size() == 0 {
		return models.IntermediateRepresentation{}, errors.NewInputError(
			fmt.Sprintf("input file '%s' is empty", filePath),
			errors.ErrFileEmpty,
		)
	}

	return Parse(file, opts...)
}
