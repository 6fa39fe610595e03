// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package service

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"
)

// =============================================================================
// CHAT STREAM READER
// =============================================================================

// The stream endpoint frames each event as a "data: <payload>" line followed
// by a blank line, where <payload> is a JSON chunk object, and terminates
// the stream with the literal payload "[DONE]".

const (
	streamDataPrefix = "data:"
	streamDoneMarker = "[DONE]"
)

// StreamChunk is one decoded event from the chat stream.
type StreamChunk struct {
	Content        string `json:"chunk"`
	ConversationID int    `json:"conversation_id"`
	ModelUsed      string `json:"model_used"`
	Error          string `json:"error"`
}

// StreamCallback receives each chunk as it arrives. May be nil when the
// caller only wants the accumulated result.
type StreamCallback func(chunk StreamChunk)

// StreamResult is the accumulated outcome of a completed stream.
type StreamResult struct {
	// Content is the full concatenated response text.
	Content string
	// ConversationID names the conversation the exchange belongs to.
	ConversationID int
	// ModelUsed is the model that generated the response.
	ModelUsed string
	// Chunks is the number of content chunks received.
	Chunks int
	// Duration is the wall time from first read to stream end.
	Duration time.Duration
}

// streamReader parses the chat stream line by line.
type streamReader struct {
	reader *bufio.Reader
	// PERFORMANCE: strings.Builder avoids quadratic accumulation.
	content strings.Builder
	start   time.Time
}

func newStreamReader(r io.Reader) *streamReader {
	return &streamReader{
		reader: bufio.NewReader(r),
		start:  time.Now(),
	}
}

// process consumes the stream until the done marker, EOF, or a server-side
// error chunk. The callback runs for every content chunk in arrival order.
func (s *streamReader) process(ctx context.Context, callback StreamCallback) (*StreamResult, error) {
	result := &StreamResult{}

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		line, err := s.reader.ReadString('\n')
		if err != nil && err != io.EOF {
			return nil, fmt.Errorf("reading stream: %w", err)
		}
		eof := err == io.EOF

		payload, ok := strings.CutPrefix(strings.TrimSpace(line), streamDataPrefix)
		if ok {
			payload = strings.TrimSpace(payload)
			if payload == streamDoneMarker {
				break
			}

			var chunk StreamChunk
			if err := json.Unmarshal([]byte(payload), &chunk); err != nil {
				// Skip malformed lines rather than killing the stream.
				continue
			}
			if chunk.Error != "" {
				return nil, errors.New("stream error: " + chunk.Error)
			}

			s.content.WriteString(chunk.Content)
			result.Chunks++
			if chunk.ConversationID != 0 {
				result.ConversationID = chunk.ConversationID
			}
			if chunk.ModelUsed != "" {
				result.ModelUsed = chunk.ModelUsed
			}
			if callback != nil {
				callback(chunk)
			}
		}

		if eof {
			break
		}
	}

	result.Content = s.content.String()
	result.Duration = time.Since(s.start)
	return result, nil
}
