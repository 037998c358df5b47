// Package testutil provides shared test helpers for setting up metadata
// stores and sample fact databases.
package testutil

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/starford/modeler/internal/datasource"
	"github.com/starford/modeler/internal/metastore"
)

// TestStore creates a temporary SQLite metadata store that is automatically cleaned up.
func TestStore(t *testing.T) *metastore.SQLite {
	t.Helper()
	dbFile, err := os.CreateTemp("", "modeler-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	s, err := metastore.OpenSQLite(dbFile.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// OrdersDB creates a SQLite database holding an orderfact fact table and a
// product table, and returns the connection describing it.
func OrdersDB(t *testing.T) datasource.ConnectionMeta {
	t.Helper()
	meta := datasource.ConnectionMeta{
		Name:     "orders",
		Driver:   datasource.DriverSQLite,
		Database: filepath.Join(t.TempDir(), "orders.db"),
	}
	db, err := datasource.Open(meta)
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()
	db.MustExec(`CREATE TABLE orderfact (ordernumber integer, product_id integer, quantityordered integer)`)
	db.MustExec(`CREATE TABLE product (product_id integer, product_name varchar(50), product_description text)`)
	return meta
}

// Logger returns a JSON logger that only reports errors.
func Logger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

// SharedProductGroupYAML is a shared product dimension. %s is replaced by a
// connection reference.
const SharedProductGroupYAML = `name: shared product group
description: Products, by name then description
shared_dimension: true
data_providers:
  - name: dp
    table_name: product
    connection_ref: %s
annotations:
  - column: PRODUCT_NAME
    kind: CREATE_ATTRIBUTE
    spec:
      name: Product
      dimension: Shared Product dim
  - column: PRODUCT_DESCRIPTION
    kind: CREATE_ATTRIBUTE
    spec:
      name: Description
      dimension: Shared Product dim
      parent_attribute: Product
  - column: PRODUCT_ID
    kind: CREATE_DIMENSION_KEY
    spec:
      name: id
      dimension: Shared Product dim
`
