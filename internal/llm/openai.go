package llm

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"path/filepath"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

// OpenAIClient calls the OpenAI Chat Completions and Files APIs. Any
// OpenAI-compatible endpoint can be targeted through the base URL.
type OpenAIClient struct {
	client  *openai.Client
	timeout time.Duration
}

const defaultChatTimeout = 60 * time.Second

// NewOpenAIClient builds a client. The SDK's own retries are disabled because
// model fallback and backoff are decided by the caller.
func NewOpenAIClient(apiKey, baseURL string, timeout time.Duration) (*OpenAIClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("api key required")
	}
	if timeout <= 0 {
		timeout = defaultChatTimeout
	}
	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	cli := openai.NewClient(opts...)
	return &OpenAIClient{client: &cli, timeout: timeout}, nil
}

func (c *OpenAIClient) Generate(ctx context.Context, model string, req Request) (string, error) {
	if c == nil || c.client == nil {
		return "", fmt.Errorf("nil openai client")
	}
	reqCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	params := openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(model),
		Messages:    buildMessages(req),
		Temperature: openai.Float(req.Temperature),
	}
	if req.MaxTokens > 0 {
		params.MaxCompletionTokens = openai.Int(int64(req.MaxTokens))
	}

	resp, err := c.client.Chat.Completions.New(reqCtx, params)
	if err != nil {
		return "", classify(model, err)
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", &Error{Kind: KindOther, Model: model, Err: errors.New("openai: no choices returned")}
	}
	return resp.Choices[0].Message.Content, nil
}

// UploadFile stores data with the vendor and returns its file id.
func (c *OpenAIClient) UploadFile(ctx context.Context, name string, data []byte) (string, error) {
	if c == nil || c.client == nil {
		return "", fmt.Errorf("nil openai client")
	}
	reqCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	f, err := c.client.Files.New(reqCtx, openai.FileNewParams{
		File:    openai.File(bytes.NewReader(data), name, contentType(name)),
		Purpose: openai.FilePurposeUserData,
	})
	if err != nil {
		return "", classify("", err)
	}
	return f.ID, nil
}

func buildMessages(req Request) []openai.ChatCompletionMessageParamUnion {
	var messages []openai.ChatCompletionMessageParamUnion
	if req.System != "" {
		messages = append(messages, openai.ChatCompletionMessageParamUnion{
			OfSystem: &openai.ChatCompletionSystemMessageParam{
				Content: openai.ChatCompletionSystemMessageParamContentUnion{
					OfString: openai.String(req.System),
				},
			},
		})
	}

	if req.FileID == "" && len(req.Images) == 0 {
		return append(messages, openai.ChatCompletionMessageParamUnion{
			OfUser: &openai.ChatCompletionUserMessageParam{
				Content: openai.ChatCompletionUserMessageParamContentUnion{
					OfString: openai.String(req.Prompt),
				},
			},
		})
	}

	var parts []openai.ChatCompletionContentPartUnionParam
	if req.FileID != "" {
		parts = append(parts, openai.FileContentPart(openai.ChatCompletionContentPartFileFileParam{
			FileID: openai.String(req.FileID),
		}))
	}
	for _, img := range req.Images {
		parts = append(parts, openai.ImageContentPart(openai.ChatCompletionContentPartImageImageURLParam{
			URL: dataURL(img),
		}))
	}
	if req.Prompt != "" {
		parts = append(parts, openai.TextContentPart(req.Prompt))
	}
	return append(messages, openai.ChatCompletionMessageParamUnion{
		OfUser: &openai.ChatCompletionUserMessageParam{
			Content: openai.ChatCompletionUserMessageParamContentUnion{
				OfArrayOfContentParts: parts,
			},
		},
	})
}

func contentType(name string) string {
	if t := mime.TypeByExtension(filepath.Ext(name)); t != "" {
		return t
	}
	return "application/octet-stream"
}

func dataURL(img Image) string {
	mt := img.MIMEType
	if mt == "" {
		mt = http.DetectContentType(img.Data)
	}
	return "data:" + mt + ";base64," + base64.StdEncoding.EncodeToString(img.Data)
}

// classify maps SDK errors onto failure kinds by HTTP status.
func classify(model string, err error) error {
	kind := KindOther
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		switch apiErr.StatusCode {
		case http.StatusTooManyRequests:
			kind = KindRateLimited
		case http.StatusNotFound:
			kind = KindModelNotFound
		case http.StatusUnauthorized, http.StatusForbidden:
			kind = KindInvalidCredential
		}
	}
	return &Error{Kind: kind, Model: model, Err: err}
}
