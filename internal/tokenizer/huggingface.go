package tokenizer

import (
	"fmt"
	"os"
	"strings"

	hftokenizer "github.com/sugarme/tokenizer"
	"github.com/sugarme/tokenizer/pretrained"
)

type huggingFaceCodec struct {
	tk *hftokenizer.Tokenizer
}

// LoadHuggingFace loads the tokenizer.json of a HuggingFace model. model is
// either a hub id (downloaded into the local cache) or a path to a tokenizer.json.
func LoadHuggingFace(model string) (Codec, error) {
	path := model
	if !isLocalTokenizerFile(model) {
		resolved, err := hftokenizer.CachedPath(model, "tokenizer.json")
		if err != nil {
			return nil, fmt.Errorf("fetch tokenizer.json: %w", err)
		}
		path = resolved
	}

	tk, err := pretrained.FromFile(path)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &huggingFaceCodec{tk: tk}, nil
}

func isLocalTokenizerFile(model string) bool {
	if !strings.HasSuffix(model, ".json") {
		return false
	}
	info, err := os.Stat(model)
	return err == nil && !info.IsDir()
}

func (c *huggingFaceCodec) Encode(text string) ([]int, error) {
	en, err := c.tk.EncodeSingle(text, false)
	if err != nil {
		return nil, err
	}
	return en.Ids, nil
}

func (c *huggingFaceCodec) Decode(ids []int) string {
	return c.tk.Decode(ids, false)
}
