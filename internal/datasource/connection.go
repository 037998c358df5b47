// Package datasource describes database connections and introspects
// physical tables into flat logical tables.
package datasource

import (
	"fmt"
	"net"
	"strconv"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
)

// Supported drivers.
const (
	DriverSQLite = "sqlite3"
	DriverMySQL  = "mysql"
)

// ConnectionMeta describes how to reach a database. Annotation groups never
// embed it; they hold the reference string the store hands out for it.
type ConnectionMeta struct {
	Name     string            `json:"name" yaml:"name"`
	Driver   string            `json:"driver" yaml:"driver"`
	Host     string            `json:"host,omitempty" yaml:"host,omitempty"`
	Port     int               `json:"port,omitempty" yaml:"port,omitempty"`
	Database string            `json:"database" yaml:"database"`
	User     string            `json:"user,omitempty" yaml:"user,omitempty"`
	Password string            `json:"password,omitempty" yaml:"password,omitempty"`
	Params   map[string]string `json:"params,omitempty" yaml:"params,omitempty"`
}

// Validate validates the connection description.
func (c *ConnectionMeta) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Name, validation.Required),
		validation.Field(&c.Driver, validation.Required, validation.In(DriverSQLite, DriverMySQL)),
		validation.Field(&c.Database, validation.Required),
		validation.Field(&c.Host, validation.When(c.Driver == DriverMySQL, validation.Required)),
		validation.Field(&c.Port, validation.Min(0), validation.Max(65535)),
	)
}

// DSN returns the driver-specific data source name.
func (c *ConnectionMeta) DSN() string {
	switch c.Driver {
	case DriverMySQL:
		cfg := mysql.NewConfig()
		cfg.User = c.User
		cfg.Passwd = c.Password
		cfg.Net = "tcp"
		port := c.Port
		if port == 0 {
			port = 3306
		}
		cfg.Addr = net.JoinHostPort(c.Host, strconv.Itoa(port))
		cfg.DBName = c.Database
		if len(c.Params) > 0 {
			cfg.Params = make(map[string]string, len(c.Params))
			for k, v := range c.Params {
				cfg.Params[k] = v
			}
		}
		return cfg.FormatDSN()
	default:
		dsn := c.Database
		sep := "?"
		for k, v := range c.Params {
			dsn += sep + k + "=" + v
			sep = "&"
		}
		return dsn
	}
}

// Open connects to the database described by c.
func Open(c ConnectionMeta) (*sqlx.DB, error) {
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("datasource: %w", err)
	}
	db, err := sqlx.Open(c.Driver, c.DSN())
	if err != nil {
		return nil, fmt.Errorf("datasource: open %s: %w", c.Name, err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("datasource: ping %s: %w", c.Name, err)
	}
	return db, nil
}
