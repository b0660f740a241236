package tokenizer

import (
	"fmt"

	"github.com/pkoukk/tiktoken-go"
)

// TiktokenEncoding is the encoding used by the approximate backend.
const TiktokenEncoding = "cl100k_base"

type tiktokenCodec struct {
	enc *tiktoken.Tiktoken
}

// LoadTiktoken loads the named tiktoken encoding. An empty name selects cl100k_base.
func LoadTiktoken(encoding string) (Codec, error) {
	if encoding == "" {
		encoding = TiktokenEncoding
	}
	enc, err := tiktoken.GetEncoding(encoding)
	if err != nil {
		return nil, fmt.Errorf("get encoding %s: %w", encoding, err)
	}
	return &tiktokenCodec{enc: enc}, nil
}

func (c *tiktokenCodec) Encode(text string) ([]int, error) {
	return c.enc.Encode(text, nil, nil), nil
}

func (c *tiktokenCodec) Decode(ids []int) string {
	return c.enc.Decode(ids)
}
