package llm

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// EchoClient is an offline stub that answers with the prompt it was given.
// It backs LLM_PROVIDER=stub and end-to-end tests.
type EchoClient struct {
	mu    sync.Mutex
	files map[string]string
}

// NewEchoClient returns a ready stub.
func NewEchoClient() *EchoClient {
	return &EchoClient{files: make(map[string]string)}
}

func (c *EchoClient) Generate(_ context.Context, model string, req Request) (string, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s]\n", model)
	if req.FileID != "" {
		c.mu.Lock()
		name, ok := c.files[req.FileID]
		c.mu.Unlock()
		if !ok {
			return "", &Error{Kind: KindOther, Model: model, Err: fmt.Errorf("unknown file %s", req.FileID)}
		}
		fmt.Fprintf(&b, "(file %s)\n", name)
	}
	if len(req.Images) > 0 {
		fmt.Fprintf(&b, "(%d image(s))\n", len(req.Images))
	}
	b.WriteString(req.Prompt)
	return b.String(), nil
}

func (c *EchoClient) UploadFile(_ context.Context, name string, _ []byte) (string, error) {
	id := "file-" + uuid.NewString()
	c.mu.Lock()
	c.files[id] = name
	c.mu.Unlock()
	return id, nil
}
