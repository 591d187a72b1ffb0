package model_test

import (
	"testing"

	"pedidos/internal/model"

	"github.com/google/uuid"
	"github.com/juju/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidarFinalizacion(t *testing.T) {
	cases := []struct {
		estado model.EstadoPedido
		pago   model.EstadoPago
		ok     bool
	}{
		{model.EstadoFinalizada, model.PagoPagado, true},
		{model.EstadoFinalizada, model.PagoParcial, false},
		{model.EstadoFinalizada, model.PagoPendiente, false},
		{model.EstadoEntregada, model.PagoPendiente, true},
		{model.EstadoCancelada, model.PagoParcial, true},
	}
	for _, tc := range cases {
		t.Run(string(tc.estado)+"_"+string(tc.pago), func(t *testing.T) {
			p := &model.Pedido{Estado: tc.estado, EstadoPago: tc.pago}
			err := p.ValidarFinalizacion()
			if tc.ok {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.Is(err, errors.Forbidden))
			assert.Equal(t, model.MensajeFinalizacionSinPago, err.Error())
		})
	}
}

func TestPedidoBeforeCreate_Defaults(t *testing.T) {
	p := &model.Pedido{NombreCliente: "Ana", DescripcionSolicitada: "Taza"}
	require.NoError(t, p.BeforeCreate(nil))

	assert.NotEqual(t, uuid.Nil, p.TokenSeguimiento)
	assert.False(t, p.FechaCreacion.IsZero())
	assert.Equal(t, model.EstadoSolicitado, p.Estado)
	assert.Equal(t, model.PagoPendiente, p.EstadoPago)
	assert.Equal(t, model.PlataformaSitioWeb, p.PlataformaOrigen)
}

func TestPedidoBeforeCreate_KeepsExplicitValues(t *testing.T) {
	token := uuid.New()
	p := &model.Pedido{
		TokenSeguimiento: token,
		Estado:           model.EstadoAprobado,
		PlataformaOrigen: model.PlataformaInstagram,
	}
	require.NoError(t, p.BeforeCreate(nil))
	assert.Equal(t, token, p.TokenSeguimiento)
	assert.Equal(t, model.EstadoAprobado, p.Estado)
	assert.Equal(t, model.PlataformaInstagram, p.PlataformaOrigen)
}

func TestEtiquetas(t *testing.T) {
	assert.Equal(t, "En Proceso", model.EstadoEnProceso.Etiqueta())
	assert.Equal(t, "Pagado", model.PagoPagado.Etiqueta())
	assert.Equal(t, "Sitio Web", model.PlataformaSitioWeb.Etiqueta())
	// Unknown codes fall back to the raw value.
	assert.Equal(t, "OTRO", model.EstadoPedido("OTRO").Etiqueta())

	assert.True(t, model.EstadoCancelada.Valido())
	assert.False(t, model.EstadoPago("GRATIS").Valido())
	assert.Len(t, model.EstadosPedido, 7)
}

func TestPrimeraImagen(t *testing.T) {
	p := &model.Producto{}
	assert.Nil(t, p.PrimeraImagen())

	p.Imagenes = []model.ProductoImagen{{ID: 4, Imagen: "productos/a.jpg"}, {ID: 9, Imagen: "productos/b.jpg"}}
	require.NotNil(t, p.PrimeraImagen())
	assert.Equal(t, uint(4), p.PrimeraImagen().ID)
}
