package db

import (
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/go-sql-driver/mysql"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"

	"server-tonix-app/config"
)

const (
	DriverMySQL  = "mysql"
	DriverSQLite = "sqlite"
)

var (
	Cli *sql.DB
)

func Init() {
	var err error
	switch config.Server.Driver {
	case DriverSQLite:
		Cli, err = OpenSQLite(config.Server.SqlitePath)
	default:
		Cli, err = OpenMySQL(config.MySql.User, config.MySql.Password, config.MySql.Host,
			config.MySql.Database, config.MySql.Charset)
		if err == nil {
			Cli.SetMaxIdleConns(config.MySql.MaxIdleConns)
			Cli.SetMaxOpenConns(config.MySql.MaxOpenConns)
		}
	}
	if err != nil {
		log.Error("Connect db error: ", err)
		panic(err)
	}
	log.Infof("conn %s success", config.Server.Driver)
}

func OpenMySQL(user, password, host, database, charset string) (*sql.DB, error) {
	if charset == "" {
		charset = "utf8mb4"
	}
	dsn := fmt.Sprintf("%s:%s@tcp(%s)/%s?charset=%s", user, password, host, database, charset)
	cli, err := sql.Open(DriverMySQL, dsn)
	if err != nil {
		return nil, errors.Wrap(err, "open mysql")
	}
	if err = cli.Ping(); err != nil {
		_ = cli.Close()
		return nil, errors.Wrapf(err, "ping mysql %s/%s", host, database)
	}
	if err = Migrate(cli, DriverMySQL); err != nil {
		_ = cli.Close()
		return nil, err
	}
	return cli, nil
}

// OpenSQLite opens a single-connection sqlite database, ":memory:" included.
// Writers are serialized by the pool, which keeps SQLITE_BUSY out of the
// transactional paths.
func OpenSQLite(path string) (*sql.DB, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("sqlite path is required")
	}
	dsn := path + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	if path != ":memory:" {
		dsn = "file:" + dsn + "&_pragma=journal_mode(WAL)"
	}
	cli, err := sql.Open(DriverSQLite, dsn)
	if err != nil {
		return nil, errors.Wrap(err, "open sqlite")
	}
	cli.SetMaxOpenConns(1)
	if err = cli.Ping(); err != nil {
		_ = cli.Close()
		return nil, errors.Wrap(err, "ping sqlite")
	}
	if err = Migrate(cli, DriverSQLite); err != nil {
		_ = cli.Close()
		return nil, err
	}
	return cli, nil
}
