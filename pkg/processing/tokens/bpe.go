package tokens

import (
	"fmt"

	tiktoken "github.com/pkoukk/tiktoken-go"
)

// TiktokenEstimator counts tokens with a BPE encoding. The model argument is
// ignored: completion backends serve open-weight models that have no
// registered encoding, so one encoding approximates all of them.
type TiktokenEstimator struct {
	enc      *tiktoken.Tiktoken
	encoding string
}

// NewTiktokenEstimator loads the named encoding ("cl100k_base" when empty).
func NewTiktokenEstimator(encoding string) (*TiktokenEstimator, error) {
	if encoding == "" {
		encoding = "cl100k_base"
	}
	enc, err := tiktoken.GetEncoding(encoding)
	if err != nil {
		return nil, fmt.Errorf("tokens: get encoding %q: %w", encoding, err)
	}
	return &TiktokenEstimator{enc: enc, encoding: encoding}, nil
}

// Encoding returns the name of the loaded encoding.
func (e *TiktokenEstimator) Encoding() string {
	return e.encoding
}

// EstimateText returns the number of BPE tokens in text.
func (e *TiktokenEstimator) EstimateText(text string, _ string) (int, error) {
	if text == "" {
		return 0, nil
	}
	return len(e.enc.Encode(text, nil, nil)), nil
}
