package godbf

import (
	"fmt"

	"github.com/axgle/mahonia"
)

const DefaultCharset = "utf-8"

var utf8Charset = mustCharset(DefaultCharset)

type charset struct {
	name    string
	utf8    bool
	encoder mahonia.Encoder
	decoder mahonia.Decoder
}

func newCharset(name string) (*charset, error) {
	if name == "" {
		name = DefaultCharset
	}
	cs := mahonia.GetCharset(name)
	if cs == nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCharset, name)
	}
	return &charset{
		name:    name,
		utf8:    cs.Name == "UTF-8",
		encoder: mahonia.NewEncoder(name),
		decoder: mahonia.NewDecoder(name),
	}, nil
}

func mustCharset(name string) *charset {
	cs, err := newCharset(name)
	if err != nil {
		panic(err)
	}
	return cs
}

func (c *charset) encode(s string) []byte {
	return []byte(c.encoder.ConvertString(s))
}

func (c *charset) decode(b []byte) string {
	return c.decoder.ConvertString(string(b))
}
