package deploy

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/andresuchdata/sitedeploy/internal/storage"
	"github.com/rs/zerolog"
)

// ErrBadArchive is returned when the artifact is not a readable zip archive.
var ErrBadArchive = errors.New("malformed artifact archive")

type publisher struct {
	site  storage.Destination
	sniff bool
	log   zerolog.Logger
}

// publish uploads every file entry of the archive under its own name and
// makes it public. Entries are handled one at a time in archive order; an
// error stops the loop and leaves earlier uploads in place.
func (p *publisher) publish(ctx context.Context, archive []byte) ([]string, error) {
	reader, err := zip.NewReader(bytes.NewReader(archive), int64(len(archive)))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadArchive, err)
	}

	published := make([]string, 0, len(reader.File))
	for _, entry := range reader.File {
		// Directory entries have no content to serve.
		if entry.FileInfo().IsDir() {
			continue
		}

		data, err := readEntry(entry)
		if err != nil {
			return published, err
		}

		contentType := ContentTypeFor(entry.Name)
		if contentType == "" && p.sniff {
			contentType = sniffContentType(data)
		}

		if err := p.site.PutObject(ctx, entry.Name, data, contentType); err != nil {
			return published, fmt.Errorf("upload %s: %w", entry.Name, err)
		}
		if err := p.site.SetObjectACL(ctx, entry.Name, storage.ACLPublicRead); err != nil {
			return published, fmt.Errorf("set acl on %s: %w", entry.Name, err)
		}

		p.log.Debug().
			Str("key", entry.Name).
			Str("content_type", contentType).
			Int("bytes", len(data)).
			Msg("published")
		published = append(published, entry.Name)
	}

	p.log.Info().Int("files", len(published)).Str("bucket", p.site.Name()).Msg("artifact published")
	return published, nil
}

func readEntry(entry *zip.File) ([]byte, error) {
	rc, err := entry.Open()
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %v", ErrBadArchive, entry.Name, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", ErrBadArchive, entry.Name, err)
	}
	return data, nil
}
