package infra

import (
	"pedidos/internal/model"

	"github.com/juju/errors"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDatabase opens the Postgres connection pool and migrates the schema.
// Store errors are translated (gorm.ErrDuplicatedKey, gorm.ErrForeignKeyViolated)
// so services can classify constraint violations without driver imports.
func NewDatabase(dsn string, production bool) (*gorm.DB, error) {
	level := logger.Warn
	if production {
		level = logger.Silent
	}
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(level),
		TranslateError: true,
	})
	if err != nil {
		return nil, errors.Annotate(err, "open postgres")
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)

	if err := RunMigrations(db); err != nil {
		return nil, err
	}
	return db, nil
}

// Models lists every table of the schema in dependency order.
func Models() []interface{} {
	return []interface{}{
		&model.Categoria{},
		&model.Producto{},
		&model.ProductoImagen{},
		&model.Comentario{},
		&model.Insumo{},
		&model.Pedido{},
		&model.ImagenReferencia{},
		&model.Usuario{},
	}
}

// RunMigrations creates or updates every table, its CHECK constraints and
// foreign keys. Integration tests call it against their own containers.
func RunMigrations(db *gorm.DB) error {
	if err := db.AutoMigrate(Models()...); err != nil {
		return errors.Annotate(err, "AutoMigrate")
	}
	return nil
}
