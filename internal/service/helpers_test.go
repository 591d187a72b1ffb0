package service_test

import (
	"context"
	"mime/multipart"
	"path"
	"path/filepath"
	"sync"
	"testing"

	"pedidos/internal/infra"
	"pedidos/internal/model"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func nuevaDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := filepath.Join(t.TempDir(), "pedidos.db") + "?_foreign_keys=on"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, infra.RunMigrations(db))
	return db
}

// almacenFalso records uploads without touching the filesystem.
type almacenFalso struct {
	mu         sync.Mutex
	guardados  []string
	eliminados []string
}

func (a *almacenFalso) Guardar(dir string, fh *multipart.FileHeader) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	rel := path.Join(dir, fh.Filename)
	a.guardados = append(a.guardados, rel)
	return rel, nil
}

func (a *almacenFalso) Eliminar(rel string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.eliminados = append(a.eliminados, rel)
	return nil
}

// notificadorEspia captures notifications instead of queueing e-mails.
type notificadorEspia struct {
	recibidos []uint
	cambios   []string
}

func (n *notificadorEspia) PedidoRecibido(_ context.Context, p *model.Pedido) {
	n.recibidos = append(n.recibidos, p.ID)
}

func (n *notificadorEspia) CambioEstado(_ context.Context, p *model.Pedido, anterior model.EstadoPedido) {
	if p.Estado != anterior {
		n.cambios = append(n.cambios, string(anterior)+"->"+string(p.Estado))
	}
}

func archivos(nombres ...string) []*multipart.FileHeader {
	out := make([]*multipart.FileHeader, len(nombres))
	for i, n := range nombres {
		out[i] = &multipart.FileHeader{Filename: n}
	}
	return out
}

func crearProducto(t *testing.T, db *gorm.DB, slug string) *model.Producto {
	t.Helper()
	cat := &model.Categoria{Nombre: "Cat " + slug, Slug: "cat-" + slug}
	require.NoError(t, db.Create(cat).Error)
	p := &model.Producto{Nombre: "Producto " + slug, Slug: slug, Descripcion: "desc", CategoriaID: cat.ID}
	require.NoError(t, db.Create(p).Error)
	return p
}

func ptr[T any](v T) *T { return &v }
