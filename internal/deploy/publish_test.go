package deploy

import (
	"archive/zip"
	"bytes"
	"context"
	"testing"

	"github.com/andresuchdata/sitedeploy/internal/storage"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContentTypeFor(t *testing.T) {
	tests := map[string]string{
		"index.html":        "text/html",
		"style.css":         "text/css",
		"img/logo.png":      "image/png",
		"photos/Cover.JPG":  "image/jpeg",
		"LICENSE":           "",
		"data.unknownext42": "",
	}
	for name, expected := range tests {
		assert.Equal(t, expected, ContentTypeFor(name), name)
	}
}

func TestPublish_SiteEntries(t *testing.T) {
	site := storage.NewMemoryStore("www.example.com")
	p := &publisher{site: site, log: zerolog.Nop()}
	entries := siteEntries()

	keys, err := p.publish(context.Background(), buildZip(t, entries...))
	require.NoError(t, err)
	assert.Equal(t, []string{"index.html", "style.css", "img/logo.png"}, keys)
	assert.Equal(t, []string{"index.html", "style.css", "img/logo.png"}, site.Keys())

	expectedTypes := []string{"text/html", "text/css", "image/png"}
	for i, entry := range entries {
		obj, ok := site.Object(entry.name)
		require.True(t, ok, entry.name)
		assert.Equal(t, expectedTypes[i], obj.ContentType, entry.name)
		assert.Equal(t, storage.ACLPublicRead, obj.ACL, entry.name)

		fetched, err := site.GetObject(context.Background(), entry.name)
		require.NoError(t, err)
		assert.Equal(t, []byte(entry.body), fetched, entry.name)
	}
}

func TestPublish_UnknownTypeStaysUnset(t *testing.T) {
	site := storage.NewMemoryStore("site")
	p := &publisher{site: site, log: zerolog.Nop()}

	_, err := p.publish(context.Background(), buildZip(t, zipEntry{name: "CNAME", body: "www.example.com"}))
	require.NoError(t, err)

	obj, ok := site.Object("CNAME")
	require.True(t, ok)
	assert.Empty(t, obj.ContentType)
	assert.Equal(t, storage.ACLPublicRead, obj.ACL)
}

func TestPublish_SniffUnknownType(t *testing.T) {
	site := storage.NewMemoryStore("site")
	p := &publisher{site: site, sniff: true, log: zerolog.Nop()}

	_, err := p.publish(context.Background(), buildZip(t, zipEntry{name: "CNAME", body: "www.example.com"}))
	require.NoError(t, err)

	obj, _ := site.Object("CNAME")
	assert.Equal(t, "text/plain", obj.ContentType)
}

func TestPublish_SkipsDirectoryEntries(t *testing.T) {
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	_, err := w.Create("img/")
	require.NoError(t, err)
	f, err := w.Create("img/logo.png")
	require.NoError(t, err)
	_, _ = f.Write([]byte("png"))
	require.NoError(t, w.Close())

	site := storage.NewMemoryStore("site")
	p := &publisher{site: site, log: zerolog.Nop()}
	keys, err := p.publish(context.Background(), buf.Bytes())
	require.NoError(t, err)
	assert.Equal(t, []string{"img/logo.png"}, keys)
	assert.Equal(t, []string{"img/logo.png"}, site.Keys())
}

func TestPublish_MalformedArchive(t *testing.T) {
	site := storage.NewMemoryStore("site")
	p := &publisher{site: site, log: zerolog.Nop()}

	_, err := p.publish(context.Background(), []byte("definitely not a zip"))
	assert.ErrorIs(t, err, ErrBadArchive)
	assert.Empty(t, site.Keys())
}

func TestPublish_PartialFailureKeepsEarlierEntries(t *testing.T) {
	site := &failingStore{MemoryStore: storage.NewMemoryStore("site"), failKey: "style.css"}
	p := &publisher{site: site, log: zerolog.Nop()}

	keys, err := p.publish(context.Background(), buildZip(t, siteEntries()...))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "style.css")
	assert.Equal(t, []string{"index.html"}, keys)
	assert.Equal(t, []string{"index.html"}, site.Keys())
}
