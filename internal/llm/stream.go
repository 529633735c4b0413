package llm

import (
	openai "github.com/sashabaranov/go-openai"
)

// DeltaStream yields the text deltas of one streamed completion in order.
// It is finite and not restartable; Recv returns io.EOF when the upstream
// stream ends.
type DeltaStream struct {
	s *openai.ChatCompletionStream
}

// Deltas wraps an upstream completion stream.
func Deltas(s *openai.ChatCompletionStream) *DeltaStream {
	return &DeltaStream{s: s}
}

// Recv returns the next non-empty text delta. Chunks without content (role
// headers, finish markers) are skipped.
func (d *DeltaStream) Recv() (string, error) {
	for {
		resp, err := d.s.Recv()
		if err != nil {
			return "", err
		}
		if len(resp.Choices) == 0 {
			continue
		}
		if delta := resp.Choices[0].Delta.Content; delta != "" {
			return delta, nil
		}
	}
}

// Close releases the upstream stream.
func (d *DeltaStream) Close() error {
	return d.s.Close()
}
