package repository

import (
	"strings"

	"gorm.io/gorm"
)

// likeEscaper escapes LIKE wildcards so user input is matched literally.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// patronContiene builds the pattern of a case-insensitive substring match
// for the condition returned by contiene.
func patronContiene(s string) string {
	return "%" + likeEscaper.Replace(s) + "%"
}

// contiene returns a case-insensitive LIKE condition on expr. Postgres gets
// ILIKE, which folds accented letters and ñ. SQLite's LOWER folds ASCII only,
// so on the test store "ÑANDÚ" does not find "ñandú".
func contiene(db *gorm.DB, expr string) string {
	if db.Dialector.Name() == "postgres" {
		return expr + ` ILIKE ? ESCAPE '\'`
	}
	return `LOWER(` + expr + `) LIKE LOWER(?) ESCAPE '\'`
}

// ConteoGrupo is one row of a GROUP BY count.
type ConteoGrupo struct {
	Valor string
	Total int64
}
