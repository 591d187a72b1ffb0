package infra_test

import (
	"bytes"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"pedidos/internal/infra"

	"github.com/juju/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngFirma = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00")

// upload builds a multipart file header the way gin hands it to handlers.
func upload(t *testing.T, nombre string, contenido []byte) *multipart.FileHeader {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("imagen", nombre)
	require.NoError(t, err)
	_, err = part.Write(contenido)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	form, err := multipart.NewReader(&buf, w.Boundary()).ReadForm(1 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { _ = form.RemoveAll() })
	return form.File["imagen"][0]
}

func TestMediaStorage_GuardarImagen(t *testing.T) {
	root := t.TempDir()
	s := infra.NewMediaStorage(root)

	rel, err := s.Guardar(infra.DirReferencias, upload(t, "Foto.PNG", pngFirma))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(rel, infra.DirReferencias+"/"))
	assert.True(t, strings.HasSuffix(rel, ".png"))

	data, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(rel)))
	require.NoError(t, err)
	assert.Equal(t, pngFirma, data)

	require.NoError(t, s.Eliminar(rel))
	_, err = os.Stat(filepath.Join(root, filepath.FromSlash(rel)))
	assert.True(t, os.IsNotExist(err))
}

func TestMediaStorage_ExtensionFromContent(t *testing.T) {
	s := infra.NewMediaStorage(t.TempDir())
	rel, err := s.Guardar(infra.DirProductos, upload(t, "sin_extension", pngFirma))
	require.NoError(t, err)
	assert.Equal(t, ".png", filepath.Ext(rel))
}

func TestMediaStorage_RechazaNoImagen(t *testing.T) {
	root := t.TempDir()
	s := infra.NewMediaStorage(root)

	_, err := s.Guardar(infra.DirReferencias, upload(t, "virus.jpg", []byte("esto es texto plano")))
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.NotValid))

	entries, err := os.ReadDir(root)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestMediaStorage_EliminarInexistente(t *testing.T) {
	s := infra.NewMediaStorage(t.TempDir())
	assert.NoError(t, s.Eliminar("referencias/no-existe.png"))
	assert.NoError(t, s.Eliminar(""))
}

func TestURL(t *testing.T) {
	assert.Equal(t, "/media/productos/a.png", infra.URL("productos/a.png"))
	assert.Equal(t, "", infra.URL(""))
}
