package service

import (
	"github.com/juju/errors"
	"gorm.io/gorm"
)

// Error kinds returned by services. Handlers map them to HTTP statuses via
// apierror.Status; the message is shown to the user as-is.

func noEncontrado(format string, args ...interface{}) error {
	return errors.WithType(errors.Errorf(format, args...), errors.NotFound)
}

func invalido(format string, args ...interface{}) error {
	return errors.WithType(errors.Errorf(format, args...), errors.NotValid)
}

func prohibido(format string, args ...interface{}) error {
	return errors.WithType(errors.Errorf(format, args...), errors.Forbidden)
}

func noAutorizado(format string, args ...interface{}) error {
	return errors.WithType(errors.Errorf(format, args...), errors.Unauthorized)
}

// siNoExiste turns gorm.ErrRecordNotFound into a NotFound with the given
// message and annotates anything else.
func siNoExiste(err error, format string, args ...interface{}) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return noEncontrado(format, args...)
	}
	return errors.Trace(err)
}

// siDuplicado turns a unique-constraint violation into a NotValid.
func siDuplicado(err error, format string, args ...interface{}) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return invalido(format, args...)
	}
	return errors.Trace(err)
}

// siNoExisteComo returns reemplazo when err is gorm.ErrRecordNotFound.
func siNoExisteComo(err, reemplazo error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return reemplazo
	}
	return errors.Trace(err)
}
