package service

import (
	"context"
	"strings"

	"github.com/gosimple/slug"
	"github.com/juju/errors"
)

const maxLargoSlug = 50

// existeSlug reports whether another row (id != excluirID) already owns s.
type existeSlug func(ctx context.Context, s string, excluirID uint) (bool, error)

// resolverSlug returns the slug to store: the explicit one when given,
// otherwise one derived from nombre. Either way it must be well formed and
// not taken by another row.
func resolverSlug(ctx context.Context, explicito, nombre string, id uint, existe existeSlug) (string, error) {
	s := strings.TrimSpace(explicito)
	if s == "" {
		s = derivarSlug(nombre)
		if s == "" {
			return "", invalido("No se pudo generar un slug a partir de %q; indícalo manualmente.", nombre)
		}
	} else if !slug.IsSlug(s) || len(s) > maxLargoSlug {
		return "", invalido("El slug %q solo admite minúsculas, números y guiones (máximo %d caracteres).", s, maxLargoSlug)
	}

	tomado, err := existe(ctx, s, id)
	if err != nil {
		return "", errors.Trace(err)
	}
	if tomado {
		return "", invalido("Ya existe un registro con el slug %q.", s)
	}
	return s, nil
}

func derivarSlug(nombre string) string {
	s := slug.MakeLang(nombre, "es")
	if len(s) > maxLargoSlug {
		s = strings.TrimRight(s[:maxLargoSlug], "-")
	}
	return s
}
