// Command sessionctl is the default operator binary for dbsession: it
// wires cli.Run() with no custom database opener, relying on the
// database/sql drivers blank-imported below.
package main

import (
	_ "github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/mattn/go-sqlite3"
	_ "github.com/microsoft/go-mssqldb"
	_ "github.com/sijms/go-ora/v2"

	"github.com/honeynil/dbsession/cli"
)

func main() {
	cli.Run()
}
