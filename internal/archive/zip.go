// SPDX-License-Identifier: MPL-2.0

package archive

import (
	"io"
	"io/fs"
	"time"

	"github.com/klauspost/compress/zip"
)

// zipWriter writes stored (uncompressed) zip entries.
type zipWriter struct {
	zw       *zip.Writer
	modified time.Time
}

// NewZipWriter returns an EntryWriter producing a zip stream on w.
// Closing it finalizes the central directory but does not close w.
func NewZipWriter(w io.Writer) EntryWriter {
	return &zipWriter{
		zw:       zip.NewWriter(w),
		modified: time.Now(),
	}
}

func (z *zipWriter) WriteDir(name string, mode fs.FileMode) error {
	header := &zip.FileHeader{
		Name:     name,
		Method:   zip.Store,
		Modified: z.modified,
	}
	header.SetMode(fs.ModeDir | mode.Perm())

	_, err := z.zw.CreateHeader(header)
	return err
}

func (z *zipWriter) WriteFile(name string, mode fs.FileMode, r io.Reader) error {
	header := &zip.FileHeader{
		Name:     name,
		Method:   zip.Store,
		Modified: z.modified,
	}
	header.SetMode(mode.Perm())

	w, err := z.zw.CreateHeader(header)
	if err != nil {
		return err
	}
	_, err = io.Copy(w, r)
	return err
}

func (z *zipWriter) Close() error {
	return z.zw.Close()
}
