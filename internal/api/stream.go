package api

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	http "github.com/bogdanfinn/fhttp"
	"github.com/tidwall/gjson"

	"github.com/mcosta/helpchat/internal/conversation"
	apierrors "github.com/mcosta/helpchat/internal/errors"
	"github.com/mcosta/helpchat/internal/schema"
)

// systemPrompt describes the structured answer contract the model must
// follow. The engine relies on this shape: content, the three side
// objects, and followUpQuestions.
const systemPrompt = `You are a helpful AI support assistant. Your primary goal is to provide accurate and relevant information to users based on the information sources you have.

Follow these guidelines:
1. ALWAYS respond with message content in the "content" property. If you cannot provide a response, a "needsHelpObj" object.
2. If you have links to relevant information, return a "linksObj" object along with message content in the "content" property.
3. If the user asks about access to the platform, pricing, plans, or costs, return a "isProspectObj" object along with message content in the "content" property.
4. If the user is not satisfied with the experience and needs help, support, or further assistance, return a "needsHelpObj" object along with message content in the "content" property.
5. ALWAYS anticipate the user's next questions and provide them in the "followUpQuestions" property. DO NOT list or include these questions in the "content" property. These should be worded from the user's perspective.
6. Maintain a friendly and professional tone.`

// chatMessage is the wire form of one history entry: role and content
// only, side-objects and follow-ups never persist into model context.
type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatRequest struct {
	Model          string          `json:"model"`
	Messages       []chatMessage   `json:"messages"`
	Stream         bool            `json:"stream"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

// buildChatPayload serializes the request body for one streamed answer.
func buildChatPayload(model string, history []conversation.Message) (string, error) {
	req := chatRequest{
		Model:          model,
		Messages:       make([]chatMessage, 0, len(history)+1),
		Stream:         true,
		ResponseFormat: &responseFormat{Type: "json_object"},
	}

	req.Messages = append(req.Messages, chatMessage{Role: "system", Content: systemPrompt})
	for _, msg := range history {
		req.Messages = append(req.Messages, chatMessage{
			Role:    string(msg.Role),
			Content: msg.Content,
		})
	}

	data, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("failed to marshal chat payload: %w", err)
	}
	return string(data), nil
}

// StreamAnswer sends the conversation history upstream and returns the
// fragment stream for the turn. The fragment channel closes on normal
// exhaustion; a single error on the error channel signals abnormal
// termination. The call itself never blocks on the network.
func (c *Client) StreamAnswer(ctx context.Context, history []conversation.Message) (<-chan schema.Fragment, <-chan error) {
	fragments := make(chan schema.Fragment)
	errs := make(chan error, 1)

	go func() {
		defer close(fragments)

		if c.IsClosed() {
			errs <- fmt.Errorf("client is closed")
			return
		}

		payload, err := buildChatPayload(c.Model(), history)
		if err != nil {
			errs <- err
			return
		}

		ctx, cancel := context.WithTimeout(ctx, streamTimeout)
		defer cancel()

		req, err := http.NewRequest(http.MethodPost, c.endpoint(), strings.NewReader(payload))
		if err != nil {
			errs <- fmt.Errorf("failed to create request: %w", err)
			return
		}
		req = req.WithContext(ctx)
		req.Header = http.Header{
			"content-type":  {"application/json"},
			"accept":        {"text/event-stream"},
			"authorization": {"Bearer " + c.creds.APIKey},
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			errs <- apierrors.NewStreamError("request failed", err)
			return
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
			switch resp.StatusCode {
			case http.StatusUnauthorized, http.StatusForbidden:
				errs <- apierrors.NewAuthError(strings.TrimSpace(string(body)))
			default:
				errs <- apierrors.NewAPIError(resp.StatusCode, "chat/completions", strings.TrimSpace(string(body)))
			}
			return
		}

		if err := readStream(resp.Body, fragments); err != nil {
			errs <- err
		}
	}()

	return fragments, errs
}

// readStream decodes the SSE body into fragments until the producer
// signals completion.
func readStream(body io.Reader, fragments chan<- schema.Fragment) error {
	dec := newStreamDecoder()

	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || !strings.HasPrefix(line, "data:") {
			continue
		}

		data := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		if data == "[DONE]" {
			return nil
		}

		frag, ok := dec.feedChunk(data)
		if !ok {
			continue
		}
		fragments <- frag
	}

	if err := scanner.Err(); err != nil {
		return apierrors.NewStreamError("reading response stream", err)
	}

	// EOF without [DONE] still counts as normal exhaustion; the
	// accumulated state is whatever arrived.
	return nil
}

// streamDecoder accumulates the JSON text of the evolving answer object
// and re-parses it after every delta.
type streamDecoder struct {
	acc     strings.Builder
	lastDoc string
}

func newStreamDecoder() *streamDecoder {
	return &streamDecoder{}
}

// feedChunk ingests one SSE chunk and, when the accumulated text parses
// to a new document, returns the next fragment.
func (d *streamDecoder) feedChunk(data string) (schema.Fragment, bool) {
	delta := gjson.Get(data, "choices.0.delta.content")
	if delta.Type != gjson.String || delta.String() == "" {
		return schema.Fragment{}, false
	}
	return d.feed(delta.String())
}

// feed appends one text delta. A fragment is produced only when the
// repaired document is valid and differs from the last one emitted, so
// whitespace-only deltas do not produce duplicate ticks.
func (d *streamDecoder) feed(delta string) (schema.Fragment, bool) {
	d.acc.WriteString(delta)

	doc, ok := schema.CompletePartial(d.acc.String())
	if !ok || doc == d.lastDoc {
		return schema.Fragment{}, false
	}
	d.lastDoc = doc

	return schema.ParseFragment(doc), true
}
