package datasource

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/starford/modeler/internal/apperr"
	"github.com/starford/modeler/internal/model"
	"github.com/starford/modeler/internal/schema"
)

var identRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_$]*$`)

type sqliteColumn struct {
	CID       int            `db:"cid"`
	Name      string         `db:"name"`
	Type      string         `db:"type"`
	NotNull   int            `db:"notnull"`
	Default   sql.NullString `db:"dflt_value"`
	PrimaryPK int            `db:"pk"`
}

type mysqlColumn struct {
	Name string `db:"COLUMN_NAME"`
	Type string `db:"DATA_TYPE"`
}

// Introspect reads the column list of table and returns the flat logical
// table for it. Column ids are upper-cased physical names; display names are
// beautified in locale.
func Introspect(ctx context.Context, db *sqlx.DB, table, locale string) (*model.LogicalTable, error) {
	if !identRe.MatchString(table) {
		return nil, apperr.ErrInvalid.New("table name", table)
	}

	type column struct{ name, sqlType string }
	var cols []column
	switch db.DriverName() {
	case DriverMySQL:
		var rows []mysqlColumn
		err := db.SelectContext(ctx, &rows, `
			SELECT COLUMN_NAME, DATA_TYPE
			FROM information_schema.COLUMNS
			WHERE TABLE_SCHEMA = DATABASE() AND TABLE_NAME = ?
			ORDER BY ORDINAL_POSITION
		`, table)
		if err != nil {
			return nil, fmt.Errorf("datasource: introspect %s: %w", table, err)
		}
		for _, r := range rows {
			cols = append(cols, column{r.Name, r.Type})
		}
	default:
		var rows []sqliteColumn
		if err := db.SelectContext(ctx, &rows, `PRAGMA table_info(`+table+`)`); err != nil {
			return nil, fmt.Errorf("datasource: introspect %s: %w", table, err)
		}
		for _, r := range rows {
			cols = append(cols, column{r.Name, r.Type})
		}
	}
	if len(cols) == 0 {
		return nil, apperr.ErrNotFound.New("table", table)
	}

	t := &model.LogicalTable{
		ID:            strings.ToUpper(table),
		PhysicalTable: table,
		Name:          model.NewLocalizedString(locale, schema.Beautify(table)),
	}
	for _, c := range cols {
		t.Columns = append(t.Columns, &model.Column{
			ID:           strings.ToUpper(c.name),
			PhysicalName: c.name,
			Name:         model.NewLocalizedString(locale, schema.Beautify(c.name)),
			DataType:     dataType(c.sqlType),
		})
	}
	return t, nil
}

var typeFamilies = map[string]model.DataType{
	"int": model.DataTypeNumeric, "integer": model.DataTypeNumeric, "tinyint": model.DataTypeNumeric,
	"smallint": model.DataTypeNumeric, "mediumint": model.DataTypeNumeric, "bigint": model.DataTypeNumeric,
	"dec": model.DataTypeNumeric, "decimal": model.DataTypeNumeric, "numeric": model.DataTypeNumeric,
	"number": model.DataTypeNumeric, "real": model.DataTypeNumeric, "float": model.DataTypeNumeric,
	"double": model.DataTypeNumeric,

	"char": model.DataTypeString, "character": model.DataTypeString, "varchar": model.DataTypeString,
	"nchar": model.DataTypeString, "nvarchar": model.DataTypeString, "text": model.DataTypeString,
	"tinytext": model.DataTypeString, "mediumtext": model.DataTypeString, "longtext": model.DataTypeString,
	"clob": model.DataTypeString, "enum": model.DataTypeString,

	"date": model.DataTypeDate, "datetime": model.DataTypeDate, "timestamp": model.DataTypeDate,
	"time": model.DataTypeDate, "year": model.DataTypeDate,

	"bool": model.DataTypeBoolean, "boolean": model.DataTypeBoolean, "bit": model.DataTypeBoolean,
}

// typeModifiers may precede the base type name, as in SQLite's
// "UNSIGNED BIG INT".
var typeModifiers = map[string]bool{"unsigned": true, "signed": true, "big": true, "native": true}

// dataType maps a declared SQL type to a logical one by its base type name.
// Length, precision and trailing modifiers are ignored, so "decimal(10,2)"
// and "int unsigned" are numeric while POINT and INTERVAL stay unknown.
func dataType(sqlType string) model.DataType {
	t := strings.ToLower(sqlType)
	if i := strings.IndexByte(t, '('); i >= 0 {
		t = t[:i]
	}
	for _, word := range strings.Fields(t) {
		if typeModifiers[word] {
			continue
		}
		// int8, float8, varchar2
		word = strings.TrimRight(word, "0123456789")
		if dt, ok := typeFamilies[word]; ok {
			return dt
		}
		return model.DataTypeUnknown
	}
	return model.DataTypeUnknown
}
