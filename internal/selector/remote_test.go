package selector

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"

	"doc-qa/internal/cache"
	"doc-qa/internal/document"
	"doc-qa/internal/llm"
	"doc-qa/internal/logger"
)

func TestRemotePolicyUploadsOnce(t *testing.T) {
	doc := regulations()
	client := new(llm.MockClient)
	client.On("UploadFile", mock.Anything, "document.txt", []byte(doc.Text())).Return("file-1", nil).Once()

	p := RemotePolicy{Log: logger.Discard(), Uploader: client, Cache: cache.NewMemoryCache(), TTL: time.Hour}

	for range 2 {
		c, err := p.Select(context.Background(), "leave", doc)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if c.FileID != "file-1" || c.Policy != PolicyRemote {
			t.Errorf("unexpected context %+v", c)
		}
		if len(c.Pages) != 2 {
			t.Errorf("expected all pages referenced, got %v", c.Pages)
		}
	}
	client.AssertExpectations(t)
}

func TestRemotePolicyUploadFailure(t *testing.T) {
	client := new(llm.MockClient)
	client.On("UploadFile", mock.Anything, mock.Anything, mock.Anything).Return("", errors.New("quota")).Once()

	p := RemotePolicy{Log: logger.Discard(), Uploader: client, Cache: cache.NewMemoryCache()}
	if _, err := p.Select(context.Background(), "leave", regulations()); err == nil {
		t.Fatal("expected upload error")
	}
	client.AssertExpectations(t)
}

func TestRemotePolicyCacheErrorStillUploads(t *testing.T) {
	doc := regulations()
	c := new(cache.MockCache)
	c.On("GetFileRef", mock.Anything, doc.Identity).Return("", errors.New("redis down")).Once()
	c.On("SetFileRef", mock.Anything, doc.Identity, "file-2", time.Minute).Return(errors.New("redis down")).Once()

	client := new(llm.MockClient)
	client.On("UploadFile", mock.Anything, mock.Anything, mock.Anything).Return("file-2", nil).Once()

	p := RemotePolicy{Log: logger.Discard(), Uploader: client, Cache: c, TTL: time.Minute}
	got, err := p.Select(context.Background(), "leave", doc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.FileID != "file-2" {
		t.Errorf("expected file-2, got %s", got.FileID)
	}
	c.AssertExpectations(t)
	client.AssertExpectations(t)
}

func TestRemotePolicyEmptyDocument(t *testing.T) {
	p := RemotePolicy{Log: logger.Discard(), Uploader: new(llm.MockClient), Cache: cache.NewMemoryCache()}
	c, err := p.Select(context.Background(), "leave", document.New("regs", nil))
	if err != nil || !c.Empty {
		t.Errorf("expected sentinel without upload, got %+v err=%v", c, err)
	}
}

func TestRemotePolicyAdHocTextIgnoresSameNamedFile(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("server file"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Chdir(dir)

	doc := document.FromText("notes.txt", "user supplied text about leave", 400)
	client := new(llm.MockClient)
	client.On("UploadFile", mock.Anything, "document.txt", []byte(doc.Text())).Return("file-3", nil).Once()

	p := RemotePolicy{Log: logger.Discard(), Uploader: client, Cache: cache.NewMemoryCache()}
	if _, err := p.Select(context.Background(), "leave", doc); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	client.AssertExpectations(t)
}

func TestRemotePolicyUploadsLoadedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "regs.txt")
	if err := os.WriteFile(path, []byte("annual leave\fbusiness travel"), 0o644); err != nil {
		t.Fatal(err)
	}
	doc, err := document.NewLoader(logger.Discard()).Load(path)
	if err != nil {
		t.Fatal(err)
	}

	client := new(llm.MockClient)
	client.On("UploadFile", mock.Anything, "regs.txt", []byte("annual leave\fbusiness travel")).Return("file-4", nil).Once()

	p := RemotePolicy{Log: logger.Discard(), Uploader: client, Cache: cache.NewMemoryCache()}
	if _, err := p.Select(context.Background(), "leave", doc); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	client.AssertExpectations(t)
}

func TestRemotePolicyForgetInvalidatesReference(t *testing.T) {
	doc := regulations()
	c := new(cache.MockCache)
	c.On("Invalidate", mock.Anything, doc.Identity).Return(nil).Once()

	p := RemotePolicy{Log: logger.Discard(), Uploader: new(llm.MockClient), Cache: c}
	if err := p.Forget(context.Background(), doc); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	c.AssertExpectations(t)
}
