package infra

// storage.go: uploaded media on the local filesystem.
// Files live under MEDIA_ROOT/<dir>/ with a random name that keeps the
// original extension; the stored path is relative to MEDIA_ROOT
// (e.g. "referencias/6f1c….jpg") and is served under /media/.

import (
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/juju/errors"
)

const (
	DirProductos   = "productos"
	DirReferencias = "referencias"

	// MediaURL is the URL prefix uploaded files are served from.
	MediaURL = "/media/"
)

var extensionesImagen = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".gif": true, ".webp": true, ".bmp": true,
}

// extensionPorTipo names the file after the sniffed type when the upload's
// own extension is missing or not an image one.
var extensionPorTipo = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
	"image/bmp":  ".bmp",
}

// MediaStorage stores uploaded images below a root directory.
type MediaStorage struct {
	root string
}

func NewMediaStorage(root string) *MediaStorage {
	return &MediaStorage{root: root}
}

// Root is the directory served at MediaURL.
func (s *MediaStorage) Root() string { return s.root }

// Guardar copies an uploaded image into dir and returns its relative path.
// Anything whose content is not an image is rejected as NotValid.
func (s *MediaStorage) Guardar(dir string, fh *multipart.FileHeader) (string, error) {
	src, err := fh.Open()
	if err != nil {
		return "", errors.Annotate(err, "storage: open upload")
	}
	defer src.Close()

	head := make([]byte, 512)
	n, err := io.ReadFull(src, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return "", errors.Annotate(err, "storage: read upload")
	}
	tipo := http.DetectContentType(head[:n])
	if !strings.HasPrefix(tipo, "image/") {
		return "", errors.WithType(
			errors.Errorf("El archivo %q no es una imagen válida.", fh.Filename), errors.NotValid)
	}

	if err := os.MkdirAll(filepath.Join(s.root, dir), 0o755); err != nil {
		return "", errors.Annotate(err, "storage: create dir")
	}

	ext := strings.ToLower(filepath.Ext(fh.Filename))
	if !extensionesImagen[ext] {
		ext = extensionPorTipo[tipo]
	}
	rel := path.Join(dir, uuid.NewString()+ext)
	dst, err := os.Create(filepath.Join(s.root, filepath.FromSlash(rel)))
	if err != nil {
		return "", errors.Annotate(err, "storage: create file")
	}
	defer dst.Close()

	if _, err := dst.Write(head[:n]); err != nil {
		return "", errors.Annotate(err, "storage: write file")
	}
	if _, err := io.Copy(dst, src); err != nil {
		return "", errors.Annotate(err, "storage: write file")
	}
	return rel, nil
}

// Eliminar removes a stored file. Missing files are not an error.
func (s *MediaStorage) Eliminar(rel string) error {
	if rel == "" {
		return nil
	}
	err := os.Remove(filepath.Join(s.root, filepath.FromSlash(rel)))
	if err != nil && !os.IsNotExist(err) {
		return errors.Annotate(err, "storage: remove file")
	}
	return nil
}

// URL returns the public URL of a stored file.
func URL(rel string) string {
	if rel == "" {
		return ""
	}
	return MediaURL + rel
}
