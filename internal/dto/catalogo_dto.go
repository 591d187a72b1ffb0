package dto

import "pedidos/internal/model"

// CatalogoFilter is the query of GET /.
type CatalogoFilter struct {
	Categoria string `form:"categoria"`
	Busqueda  string `form:"q"`
}

// CatalogoVista is everything the catalog page renders. Destacados ignores
// the filter.
type CatalogoVista struct {
	Productos  []model.Producto
	Categorias []model.Categoria
	Destacados []model.Producto
	Filtro     CatalogoFilter
}

// DetalleProducto is the product page with its comments, newest first.
type DetalleProducto struct {
	Producto    *model.Producto
	Comentarios []model.Comentario
}

// ComentarioForm is the comment form on the product page. Both fields are
// optional at the binding level; an incomplete form is silently ignored.
type ComentarioForm struct {
	Nombre string `form:"nombre"`
	Texto  string `form:"texto"`
}
