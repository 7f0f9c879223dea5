package files

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"bgrelay/internal/bot"
)

type FileSource interface {
	GetFile(ctx context.Context, fileID string) (*bot.File, error)
	FileDownloadURL(filePath string) string
}

type telegramFileManager struct {
	client     FileSource
	httpClient *http.Client
	tempDir    string
}

func NewTelegramFileManager(client FileSource, httpClient *http.Client, tempDir string) (FileManager, error) {
	if tempDir == "" {
		tempDir = filepath.Join(os.TempDir(), "bgrelay")
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if err := os.MkdirAll(tempDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create temp dir: %w", err)
	}
	return &telegramFileManager{
		client:     client,
		httpClient: httpClient,
		tempDir:    tempDir,
	}, nil
}

func (fm *telegramFileManager) DownloadToTemp(ctx context.Context, fileID string) (string, func(), error) {
	tf, err := fm.client.GetFile(ctx, fileID)
	if err != nil {
		return "", nil, fmt.Errorf("GetFile error: %w", err)
	}
	if tf == nil || tf.FilePath == "" {
		return "", nil, fmt.Errorf("invalid file info from telegram for id %s", fileID)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fm.client.FileDownloadURL(tf.FilePath), nil)
	if err != nil {
		return "", nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := fm.httpClient.Do(req)
	if err != nil {
		return "", nil, fmt.Errorf("download request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", nil, fmt.Errorf("download failed: status %s, body: %s", resp.Status, string(body))
	}

	return fm.WriteTemp(resp.Body, filepath.Ext(tf.FilePath))
}

func (fm *telegramFileManager) WriteTemp(r io.Reader, ext string) (string, func(), error) {
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	localName := filepath.Join(fm.tempDir, uuid.NewString()+ext)

	out, err := os.OpenFile(localName, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return "", nil, fmt.Errorf("failed to create local file: %w", err)
	}

	_, err = io.Copy(out, r)
	if closeErr := out.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(localName)
		return "", nil, fmt.Errorf("failed to save file: %w", err)
	}

	cleanup := func() {
		_ = os.Remove(localName)
	}
	return localName, cleanup, nil
}
