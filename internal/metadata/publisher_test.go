package metadata

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testOptions() Options {
	return Options{
		HTTPClient: &http.Client{Timeout: 5 * time.Second},
		RetryDelay: time.Millisecond,
		MaxTries:   3,
	}
}

func writeTestImage(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "logo.png")
	require.NoError(t, os.WriteFile(path, []byte("\x89PNG fake image"), 0o600))
	return path
}

func TestPublishSuccess(t *testing.T) {
	var gotName, gotSymbol, gotShowName string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		gotName = r.FormValue("name")
		gotSymbol = r.FormValue("symbol")
		gotShowName = r.FormValue("showName")

		file, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer file.Close()
		assert.Equal(t, "token-image", header.Filename)
		assert.Equal(t, "image/png", header.Header.Get("Content-Type"))

		w.Write([]byte(`{"metadataUri":"ipfs://QmTest"}`))
	}))
	defer server.Close()

	p := NewPublisher(server.URL, zap.NewNop(), testOptions())
	uri, err := p.Publish(context.Background(), Token{
		Name:   "Demo",
		Symbol: "DEMO",
		Image:  writeTestImage(t),
	})
	require.NoError(t, err)
	assert.Equal(t, "ipfs://QmTest", uri)
	assert.Equal(t, "Demo", gotName)
	assert.Equal(t, "DEMO", gotSymbol)
	assert.Equal(t, "true", gotShowName)
}

func TestPublishRetriesOnServerError(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			http.Error(w, "upstream busy", http.StatusBadGateway)
			return
		}
		w.Write([]byte(`{"metadataUri":"ipfs://QmRetry"}`))
	}))
	defer server.Close()

	p := NewPublisher(server.URL, zap.NewNop(), testOptions())
	uri, err := p.Publish(context.Background(), Token{
		Name:   "Demo",
		Symbol: "DEMO",
		Image:  writeTestImage(t),
	})
	require.NoError(t, err)
	assert.Equal(t, "ipfs://QmRetry", uri)
	assert.Equal(t, int32(3), calls.Load())
}

func TestPublishExhaustsRetries(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "nope", http.StatusInternalServerError)
	}))
	defer server.Close()

	p := NewPublisher(server.URL, zap.NewNop(), testOptions())
	_, err := p.Publish(context.Background(), Token{
		Name:   "Demo",
		Symbol: "DEMO",
		Image:  writeTestImage(t),
	})
	require.Error(t, err)
	assert.Equal(t, int32(3), calls.Load())
	// Final error names the attempt count and carries the last cause.
	assert.Contains(t, err.Error(), "after 3 attempts")
	assert.Contains(t, err.Error(), "500")
}

func TestPublishRemoteImage(t *testing.T) {
	imageServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/jpeg")
		w.Write([]byte("jpeg bytes"))
	}))
	defer imageServer.Close()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		_, header, err := r.FormFile("file")
		require.NoError(t, err)
		assert.Equal(t, "image/jpeg", header.Header.Get("Content-Type"))
		w.Write([]byte(`{"metadataUri":"ipfs://QmRemote"}`))
	}))
	defer server.Close()

	p := NewPublisher(server.URL, zap.NewNop(), testOptions())
	uri, err := p.Publish(context.Background(), Token{
		Name:   "Demo",
		Symbol: "DEMO",
		Image:  imageServer.URL + "/logo.jpg",
	})
	require.NoError(t, err)
	assert.Equal(t, "ipfs://QmRemote", uri)
}

func TestPublishMissingLocalImage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("upload endpoint should not be called when the image cannot be loaded")
	}))
	defer server.Close()

	p := NewPublisher(server.URL, zap.NewNop(), testOptions())
	_, err := p.Publish(context.Background(), Token{
		Name:   "Demo",
		Symbol: "DEMO",
		Image:  filepath.Join(t.TempDir(), "missing.png"),
	})
	require.Error(t, err)
}

func TestContentTypeForExtension(t *testing.T) {
	assert.Equal(t, "image/jpeg", contentTypeForExtension("a.JPG"))
	assert.Equal(t, "image/jpeg", contentTypeForExtension("a.jpeg"))
	assert.Equal(t, "image/gif", contentTypeForExtension("a.gif"))
	assert.Equal(t, "image/webp", contentTypeForExtension("a.webp"))
	assert.Equal(t, "image/png", contentTypeForExtension("a.png"))
	assert.Equal(t, "image/png", contentTypeForExtension("a.bin"))
}
