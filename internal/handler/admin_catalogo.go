package handler

import (
	"fmt"
	"net/http"
	"strconv"

	"pedidos/internal/apierror"
	"pedidos/internal/dto"
	"pedidos/internal/infra"
	"pedidos/internal/model"

	"github.com/gin-gonic/gin"
)

// ── Categorías ───────────────────────────────────────────────────────────────

func (h *AdminHandler) ListaCategorias(c *gin.Context) {
	cats, err := h.categorias.Listar(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}
	lista := dto.AdminLista{Entidad: "categorias", Titulo: "Categorías", Columnas: []string{"Nombre", "Slug"}}
	for _, cat := range cats {
		lista.Filas = append(lista.Filas, dto.AdminFila{
			ID:     cat.ID,
			URL:    fmt.Sprintf("/admin/categorias/%d/", cat.ID),
			Celdas: []dto.AdminCelda{{Texto: cat.Nombre}, {Texto: cat.Slug}},
		})
	}
	h.renderLista(c, lista)
}

func formularioCategoria(cat *model.Categoria) dto.AdminFormulario {
	return dto.AdminFormulario{
		Entidad: "categorias",
		Titulo:  tituloFormulario("categoría", cat.ID, cat.Nombre),
		Grupos: []dto.AdminGrupo{{Campos: []dto.AdminCampo{
			{Nombre: "nombre", Etiqueta: "Nombre", Tipo: "text", Valor: cat.Nombre},
			{Nombre: "slug", Etiqueta: "Slug", Tipo: "text", Valor: cat.Slug,
				Ayuda: "Se genera a partir del nombre si se deja vacío."},
		}}},
	}
}

// Categoria handles GET and POST /admin/categorias/nuevo/ and /admin/categorias/:id/.
func (h *AdminHandler) Categoria(c *gin.Context) {
	ctx := c.Request.Context()
	id, nuevo := idFormulario(c)
	if id == 0 && !nuevo {
		renderEstado(c, http.StatusNotFound, "Categoría no encontrada.")
		return
	}
	cat := &model.Categoria{}
	if !nuevo {
		var err error
		if cat, err = h.categorias.Obtener(ctx, id); err != nil {
			renderError(c, err)
			return
		}
	}
	if c.Request.Method != http.MethodPost {
		h.renderFormulario(c, formularioCategoria(cat), id, nil, nil)
		return
	}

	var form dto.CategoriaForm
	campos, err := bindFormulario(c, &form)
	if err == nil && len(campos) == 0 {
		_, err = h.categorias.Guardar(ctx, id, form)
		if err == nil {
			guardado(c, "categorias")
			return
		}
	}
	if _, ok := apierror.Status(err); err != nil && !ok {
		_ = c.Error(err)
		return
	}
	h.renderFormulario(c, formularioCategoria(cat), id, err, campos)
}

// ── Productos ────────────────────────────────────────────────────────────────

func (h *AdminHandler) ListaProductos(c *gin.Context) {
	ctx := c.Request.Context()
	var f dto.ProductoFilter
	_ = c.ShouldBindQuery(&f)
	prods, err := h.productos.Listar(ctx, f)
	if err != nil {
		_ = c.Error(err)
		return
	}
	cats, err := h.categorias.Listar(ctx)
	if err != nil {
		_ = c.Error(err)
		return
	}

	lista := dto.AdminLista{
		Entidad:     "productos",
		Titulo:      "Productos",
		Columnas:    []string{"Nombre", "Categoría", "Precio base", "Destacado", "Imagen"},
		ConBusqueda: true,
		Busqueda:    f.Busqueda,
	}
	catOpts := make([]dto.AdminOpcion, 0, len(cats))
	for _, cat := range cats {
		v := strconv.FormatUint(uint64(cat.ID), 10)
		catOpts = append(catOpts, dto.AdminOpcion{Valor: v, Etiqueta: cat.Nombre, Seleccionada: cat.ID == f.CategoriaID})
	}
	lista.Filtros = []dto.AdminFiltro{
		{Nombre: "categoria", Etiqueta: "Categoría", Opciones: catOpts},
		{Nombre: "destacado", Etiqueta: "Destacado", Opciones: []dto.AdminOpcion{
			{Valor: "true", Etiqueta: "Sí", Seleccionada: f.Destacado == "true"},
			{Valor: "false", Etiqueta: "No", Seleccionada: f.Destacado == "false"},
		}},
	}
	for i := range prods {
		p := &prods[i]
		categoria := ""
		if p.Categoria != nil {
			categoria = p.Categoria.Nombre
		}
		imagen := dto.AdminCelda{Texto: "-"}
		if img := p.PrimeraImagen(); img != nil {
			imagen = dto.AdminCelda{Imagen: img.Imagen}
		}
		lista.Filas = append(lista.Filas, dto.AdminFila{
			ID:  p.ID,
			URL: fmt.Sprintf("/admin/productos/%d/", p.ID),
			Celdas: []dto.AdminCelda{
				{Texto: p.Nombre}, {Texto: categoria}, {Texto: strconv.Itoa(p.PrecioBase)},
				{Texto: siNo(p.Destacado)}, imagen,
			},
		})
	}
	h.renderLista(c, lista)
}

func formularioProducto(p *model.Producto, cats []model.Categoria) dto.AdminFormulario {
	catOpts := make([]dto.AdminOpcion, 0, len(cats)+1)
	catOpts = append(catOpts, dto.AdminOpcion{Valor: "", Etiqueta: "---------"})
	for _, cat := range cats {
		catOpts = append(catOpts, dto.AdminOpcion{
			Valor:        strconv.FormatUint(uint64(cat.ID), 10),
			Etiqueta:     cat.Nombre,
			Seleccionada: cat.ID == p.CategoriaID,
		})
	}
	f := dto.AdminFormulario{
		Entidad: "productos",
		Titulo:  tituloFormulario("producto", p.ID, p.Nombre),
		Grupos: []dto.AdminGrupo{{Campos: []dto.AdminCampo{
			{Nombre: "nombre", Etiqueta: "Nombre", Tipo: "text", Valor: p.Nombre},
			{Nombre: "slug", Etiqueta: "Slug", Tipo: "text", Valor: p.Slug,
				Ayuda: "Se genera a partir del nombre si se deja vacío."},
			{Nombre: "descripcion", Etiqueta: "Descripción", Tipo: "textarea", Valor: p.Descripcion},
			{Nombre: "categoria_id", Etiqueta: "Categoría", Tipo: "select", Opciones: catOpts,
				Valor: strconv.FormatUint(uint64(p.CategoriaID), 10)},
			{Nombre: "precio_base", Etiqueta: "Precio base", Tipo: "number", Valor: strconv.Itoa(p.PrecioBase)},
			{Nombre: "destacado", Etiqueta: "Destacado", Tipo: "checkbox", Valor: strconv.FormatBool(p.Destacado)},
		}}},
		ConImagenes: true,
	}
	for _, img := range p.Imagenes {
		f.Imagenes = append(f.Imagenes, dto.AdminImagen{ID: img.ID, URL: infra.URL(img.Imagen)})
	}
	f.CuposImagen = max(0, model.MaxImagenesProducto-len(p.Imagenes))
	return f
}

// Producto handles GET and POST /admin/productos/nuevo/ and /admin/productos/:id/.
func (h *AdminHandler) Producto(c *gin.Context) {
	ctx := c.Request.Context()
	id, nuevo := idFormulario(c)
	if id == 0 && !nuevo {
		renderEstado(c, http.StatusNotFound, "Producto no encontrado.")
		return
	}
	p := &model.Producto{}
	if !nuevo {
		var err error
		if p, err = h.productos.Obtener(ctx, id); err != nil {
			renderError(c, err)
			return
		}
	}
	cats, err := h.categorias.Listar(ctx)
	if err != nil {
		_ = c.Error(err)
		return
	}
	if c.Request.Method != http.MethodPost {
		h.renderFormulario(c, formularioProducto(p, cats), id, nil, nil)
		return
	}

	var form dto.ProductoForm
	campos, err := bindFormulario(c, &form)
	if err == nil && len(campos) == 0 {
		_, err = h.productos.Guardar(ctx, id, form, archivos(c, "imagenes"), idsMarcados(c, "borrar_imagen"))
		if err == nil {
			guardado(c, "productos")
			return
		}
	}
	if _, ok := apierror.Status(err); err != nil && !ok {
		_ = c.Error(err)
		return
	}
	h.renderFormulario(c, formularioProducto(p, cats), id, err, campos)
}

// ── Comentarios ──────────────────────────────────────────────────────────────

func (h *AdminHandler) ListaComentarios(c *gin.Context) {
	list, err := h.comentarios.Listar(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}
	lista := dto.AdminLista{Entidad: "comentarios", Titulo: "Comentarios", Columnas: []string{"Nombre", "Producto", "Fecha"}}
	for _, com := range list {
		producto := ""
		if com.Producto != nil {
			producto = com.Producto.Nombre
		}
		lista.Filas = append(lista.Filas, dto.AdminFila{
			ID:  com.ID,
			URL: fmt.Sprintf("/admin/comentarios/%d/", com.ID),
			Celdas: []dto.AdminCelda{
				{Texto: com.Nombre}, {Texto: producto}, {Texto: com.Fecha.Format("02/01/2006 15:04")},
			},
		})
	}
	h.renderLista(c, lista)
}

func formularioComentario(com *model.Comentario, prods []model.Producto) dto.AdminFormulario {
	prodOpts := []dto.AdminOpcion{{Valor: "", Etiqueta: "---------"}}
	for _, p := range prods {
		prodOpts = append(prodOpts, dto.AdminOpcion{
			Valor:        strconv.FormatUint(uint64(p.ID), 10),
			Etiqueta:     p.Nombre,
			Seleccionada: p.ID == com.ProductoID,
		})
	}
	campos := []dto.AdminCampo{
		{Nombre: "producto_id", Etiqueta: "Producto", Tipo: "select", Opciones: prodOpts,
			Valor: strconv.FormatUint(uint64(com.ProductoID), 10)},
		{Nombre: "nombre", Etiqueta: "Nombre", Tipo: "text", Valor: com.Nombre},
		{Nombre: "texto", Etiqueta: "Texto", Tipo: "textarea", Valor: com.Texto},
	}
	if com.ID != 0 {
		campos = append(campos, dto.AdminCampo{Nombre: "fecha", Etiqueta: "Fecha", Tipo: "readonly",
			Valor: com.Fecha.Format("02/01/2006 15:04")})
	}
	return dto.AdminFormulario{
		Entidad: "comentarios",
		Titulo:  tituloFormulario("comentario", com.ID, com.Nombre),
		Grupos:  []dto.AdminGrupo{{Campos: campos}},
	}
}

// Comentario handles GET and POST /admin/comentarios/nuevo/ and /admin/comentarios/:id/.
func (h *AdminHandler) Comentario(c *gin.Context) {
	ctx := c.Request.Context()
	id, nuevo := idFormulario(c)
	if id == 0 && !nuevo {
		renderEstado(c, http.StatusNotFound, "Comentario no encontrado.")
		return
	}
	com := &model.Comentario{}
	if !nuevo {
		var err error
		if com, err = h.comentarios.Obtener(ctx, id); err != nil {
			renderError(c, err)
			return
		}
	}
	prods, err := h.productos.Listar(ctx, dto.ProductoFilter{})
	if err != nil {
		_ = c.Error(err)
		return
	}
	if c.Request.Method != http.MethodPost {
		h.renderFormulario(c, formularioComentario(com, prods), id, nil, nil)
		return
	}

	var form dto.ComentarioAdminForm
	campos, err := bindFormulario(c, &form)
	if err == nil && len(campos) == 0 {
		_, err = h.comentarios.Guardar(ctx, id, form)
		if err == nil {
			guardado(c, "comentarios")
			return
		}
	}
	if _, ok := apierror.Status(err); err != nil && !ok {
		_ = c.Error(err)
		return
	}
	h.renderFormulario(c, formularioComentario(com, prods), id, err, campos)
}

// ── helpers ──────────────────────────────────────────────────────────────────

// idFormulario reads the :id of an edit form. nuevo is true on the add form.
func idFormulario(c *gin.Context) (id uint, nuevo bool) {
	if c.Param("id") == "" {
		return 0, true
	}
	id, _ = paramID(c, "id")
	return id, false
}

func tituloFormulario(entidad string, id uint, nombre string) string {
	if id == 0 {
		return "Agregar " + entidad
	}
	return "Modificar " + entidad + ": " + nombre
}
