package handlers

import (
	"bytes"
	"context"
	"crypto/sha256"
	"image"
	"image/color"
	"image/png"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/mymmrac/telego"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"bgrelay/internal/bot"
	"bgrelay/internal/config"
	"bgrelay/internal/files"
	bgimage "bgrelay/internal/image"
	"bgrelay/internal/removebg"
	"bgrelay/internal/services"
)

const (
	testKey      = "rbg-secret-key"
	testUsername = "bgrelay_bot"
)

type event struct {
	kind   string // text | markdown | photo | document
	chatID int64
	text   string
	data   []byte
}

// fakeBot records outbound traffic and serves inbound files from an httptest server.
type fakeBot struct {
	mu      sync.Mutex
	events  []event
	actions int
	fileURL string
}

func (b *fakeBot) record(e event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, e)
}

func (b *fakeBot) Start(ctx context.Context, _ func(context.Context, telego.Update)) error {
	<-ctx.Done()
	return ctx.Err()
}

func (b *fakeBot) SendText(_ context.Context, chatID int64, text string) error {
	b.record(event{kind: "text", chatID: chatID, text: text})
	return nil
}

func (b *fakeBot) SendMarkdown(_ context.Context, chatID int64, text string) error {
	b.record(event{kind: "markdown", chatID: chatID, text: text})
	return nil
}

func (b *fakeBot) SendPhoto(_ context.Context, chatID int64, filePath, caption string) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}
	b.record(event{kind: "photo", chatID: chatID, text: caption, data: data})
	return nil
}

func (b *fakeBot) SendDocument(_ context.Context, chatID int64, filePath, caption, _ string) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}
	b.record(event{kind: "document", chatID: chatID, text: caption, data: data})
	return nil
}

func (b *fakeBot) SendChatAction(context.Context, int64, string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.actions++
	return nil
}

func (b *fakeBot) GetFile(_ context.Context, fileID string) (*bot.File, error) {
	return &bot.File{FileID: fileID, FilePath: "photos/" + fileID + ".jpg"}, nil
}

func (b *fakeBot) FileDownloadURL(filePath string) string {
	return b.fileURL + "/" + filePath
}

func (b *fakeBot) eventsFor(chatID int64) []event {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []event
	for _, e := range b.events {
		if e.chatID == chatID {
			out = append(out, e)
		}
	}
	return out
}

// cutout is the fake removal service's deterministic output for an input.
func cutout(input []byte) []byte {
	sum := sha256.Sum256(input)
	img := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			img.Set(x, y, color.NRGBA{R: sum[0], G: sum[1], B: sum[2], A: 128})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		panic(err)
	}
	return buf.Bytes()
}

type env struct {
	handler *Handler
	bot     *fakeBot
	tempDir string
}

type envOptions struct {
	removeHandler http.HandlerFunc
	files         map[string][]byte
	timeout       time.Duration
	keyDisabled   bool
}

func successService() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-Api-Key") != testKey {
			w.WriteHeader(http.StatusForbidden)
			_, _ = w.Write([]byte("invalid api key"))
			return
		}
		f, _, err := r.FormFile("image_file")
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		defer f.Close()
		in, _ := io.ReadAll(f)
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(cutout(in))
	}
}

func newEnv(t *testing.T, opts envOptions) *env {
	t.Helper()

	fileSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSuffix(strings.TrimPrefix(r.URL.Path, "/photos/"), ".jpg")
		data, ok := opts.files[id]
		if !ok {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write(data)
	}))
	t.Cleanup(fileSrv.Close)

	if opts.removeHandler == nil {
		opts.removeHandler = successService()
	}
	removeSrv := httptest.NewServer(opts.removeHandler)
	t.Cleanup(removeSrv.Close)

	cfg := config.Config{
		BotToken:          "123:token",
		RemoveBgKey:       testKey,
		RemoveBgURL:       removeSrv.URL,
		RemoveBgSize:      "auto",
		RequestTimeout:    5 * time.Second,
		MaxFileSize:       10 << 20,
		KeyCommandEnabled: !opts.keyDisabled,
	}
	if opts.timeout > 0 {
		cfg.RequestTimeout = opts.timeout
	}

	fb := &fakeBot{fileURL: fileSrv.URL}
	tempDir := t.TempDir()

	fm, err := files.NewTelegramFileManager(fb, fileSrv.Client(), tempDir)
	require.NoError(t, err)

	client, err := removebg.NewClient(cfg.RemoveBgKey,
		removebg.WithEndpoint(cfg.RemoveBgURL),
		removebg.WithSize(cfg.RemoveBgSize),
		removebg.WithTimeout(cfg.RequestTimeout),
		removebg.WithHTTPClient(removeSrv.Client()),
	)
	require.NoError(t, err)

	relay := services.NewRelayService(client, &bgimage.Processor{}, fm, cfg.MaxFileSize)
	h := NewHandler(cfg, fb, testUsername, fm, relay, zerolog.Nop())

	return &env{handler: h, bot: fb, tempDir: tempDir}
}

func (e *env) tempFiles(t *testing.T) []os.DirEntry {
	t.Helper()
	entries, err := os.ReadDir(e.tempDir)
	require.NoError(t, err)
	return entries
}

func textUpdate(chatID int64, text string) telego.Update {
	return telego.Update{Message: &telego.Message{
		Chat: telego.Chat{ID: chatID, Type: telego.ChatTypePrivate},
		Text: text,
	}}
}

func photoUpdate(chatID int64, fullID string) telego.Update {
	return telego.Update{Message: &telego.Message{
		Chat: telego.Chat{ID: chatID, Type: telego.ChatTypePrivate},
		Photo: []telego.PhotoSize{
			{FileID: "thumb", Width: 90, Height: 60},
			{FileID: "medium", Width: 320, Height: 240},
			{FileID: fullID, Width: 1280, Height: 960},
		},
	}}
}
