package canopy

import "unicode/utf16"

// InputEncoding selects how the lexer decodes the bytes an Input yields.
type InputEncoding uint8

const (
	InputEncodingUTF8 InputEncoding = iota
	// InputEncodingUTF16 reads little-endian UTF-16 code units. Character
	// counts are code units, matching the positions an editor using
	// UTF-16 offsets reports.
	InputEncodingUTF16
)

// Input supplies source text to the lexer in chunks. Seek positions the
// input; Read returns the next chunk, empty at end of input. Chunks must
// not split a code point (or a UTF-16 code unit pair).
type Input interface {
	Seek(chars, bytes uint32)
	Read() []byte
	Encoding() InputEncoding
}

type bytesInput struct {
	data     []byte
	pos      uint32
	encoding InputEncoding
}

// NewBytesInput wraps a byte slice as a single-chunk UTF-8 input.
func NewBytesInput(data []byte) Input {
	return &bytesInput{data: data}
}

// NewStringInput wraps a string as a single-chunk UTF-8 input.
func NewStringInput(s string) Input {
	return &bytesInput{data: []byte(s)}
}

// NewUTF16Input encodes a string as little-endian UTF-16 and wraps it as
// an input with UTF-16 encoding.
func NewUTF16Input(s string) Input {
	units := utf16.Encode([]rune(s))
	data := make([]byte, 2*len(units))
	for i, u := range units {
		data[2*i] = byte(u)
		data[2*i+1] = byte(u >> 8)
	}
	return &bytesInput{data: data, encoding: InputEncodingUTF16}
}

func (in *bytesInput) Seek(chars, bytes uint32) {
	if bytes > uint32(len(in.data)) {
		bytes = uint32(len(in.data))
	}
	in.pos = bytes
}

func (in *bytesInput) Read() []byte {
	if in.pos >= uint32(len(in.data)) {
		return nil
	}
	chunk := in.data[in.pos:]
	in.pos = uint32(len(in.data))
	return chunk
}

func (in *bytesInput) Encoding() InputEncoding { return in.encoding }
