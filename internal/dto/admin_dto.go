package dto

// ─── Admin forms ─────────────────────────────────────────────────────────────

// CategoriaForm is the category edit form. A blank slug is derived from nombre.
type CategoriaForm struct {
	Nombre string `form:"nombre" validate:"required,max=100"`
	Slug   string `form:"slug"   validate:"omitempty,max=50"`
}

// ProductoForm is the product edit form. A blank slug is derived from nombre.
type ProductoForm struct {
	Nombre      string `form:"nombre"       validate:"required,max=200"`
	Slug        string `form:"slug"         validate:"omitempty,max=50"`
	Descripcion string `form:"descripcion"  validate:"required"`
	CategoriaID uint   `form:"categoria_id" validate:"required"`
	PrecioBase  *int   `form:"precio_base"  validate:"omitempty,min=0"`
	Destacado   bool   `form:"destacado"`
}

// ProductoFilter narrows the admin product list.
type ProductoFilter struct {
	CategoriaID uint   `form:"categoria"`
	Destacado   string `form:"destacado"` // "", "true", "false"
	Busqueda    string `form:"q"`
}

// ComentarioAdminForm is the staff edit form of a comment.
type ComentarioAdminForm struct {
	ProductoID uint   `form:"producto_id" validate:"required"`
	Nombre     string `form:"nombre"      validate:"required,max=100"`
	Texto      string `form:"texto"       validate:"required"`
}

// AccionMasiva is a bulk action over the selected rows of a list.
type AccionMasiva struct {
	Accion string `form:"accion" validate:"required"`
	IDs    []uint `form:"ids"`
}

// ─── Admin screen descriptors ────────────────────────────────────────────────
// The admin templates are generic; handlers describe each screen with these.

type AdminOpcion struct {
	Valor        string
	Etiqueta     string
	Seleccionada bool
}

// AdminCampo is one form field. Tipo is one of text, textarea, number, email,
// date, checkbox, select, readonly, link.
type AdminCampo struct {
	Nombre   string
	Etiqueta string
	Tipo     string
	Valor    string
	Opciones []AdminOpcion
	Error    string
	Ayuda    string
}

// AdminGrupo is a titled fieldset.
type AdminGrupo struct {
	Titulo string
	Campos []AdminCampo
}

// AdminImagen is an inline image row with its preview URL.
type AdminImagen struct {
	ID  uint
	URL string
}

type AdminFormulario struct {
	Entidad     string
	Titulo      string
	Accion      string
	Grupos      []AdminGrupo
	Error       string
	ConImagenes bool
	Imagenes    []AdminImagen
	// CuposImagen is the number of empty upload slots left under the
	// per-entity image cap.
	CuposImagen int
	URLEliminar string
	URLVolver   string
}

// AdminCelda is one list cell; Imagen renders a thumbnail, Enlace a link.
type AdminCelda struct {
	Texto  string
	Imagen string
	Enlace string
}

type AdminFila struct {
	ID     uint
	URL    string
	Celdas []AdminCelda
}

type AdminFiltro struct {
	Nombre   string
	Etiqueta string
	Opciones []AdminOpcion
}

type AdminAccion struct {
	Nombre   string
	Etiqueta string
}

type AdminLista struct {
	Entidad     string
	Titulo      string
	Columnas    []string
	Filas       []AdminFila
	Filtros     []AdminFiltro
	ConBusqueda bool
	Busqueda    string
	Acciones    []AdminAccion
	URLNuevo    string
}

// AdminEntrada is one entry of the admin index.
type AdminEntrada struct {
	Titulo string
	URL    string
	Total  int64
}
