package cli

// Driver name constants.
//
// These constants define the recognized driver names that can be used
// in configuration. Some drivers have multiple aliases for convenience.
const (
	DriverPostgres   = "postgres"
	DriverPostgreSQL = "postgresql"
	DriverMySQL      = "mysql"
	DriverSQLite     = "sqlite"
	DriverSQLite3    = "sqlite3"
	DriverMSSQL      = "mssql"
	DriverOracle     = "oracle"

	// SQL driver names used with database/sql.
	// These are the actual driver names registered with sql.Register().
	SQLDriverPostgres = "pgx"
	SQLDriverMySQL    = "mysql"
	SQLDriverSQLite   = "sqlite3"
	SQLDriverMSSQL    = "sqlserver"
	SQLDriverOracle   = "oracle"
)

// getSQLDriverName maps a dbsession driver tag to its corresponding
// database/sql driver name.
//
// This function handles driver name aliases and returns the canonical SQL
// driver name that should be used with database/sql.Open(). For example,
// both "postgres" and "postgresql" map to "pgx".
//
// If the driver name is not recognized, it returns the input unchanged as a
// passthrough.
func getSQLDriverName(driverName string) string {
	switch driverName {
	case DriverPostgres, DriverPostgreSQL:
		return SQLDriverPostgres
	case DriverMySQL:
		return SQLDriverMySQL
	case DriverSQLite, DriverSQLite3:
		return SQLDriverSQLite
	case DriverMSSQL:
		return SQLDriverMSSQL
	case DriverOracle:
		return SQLDriverOracle
	default:
		return driverName
	}
}

// normalizeDialectTag maps a driver name/alias accepted on the CLI (e.g.
// "postgresql", "sqlite3") to the dialect registry tag dbsession.New
// expects (e.g. "postgres", "sqlite"). Unrecognized input passes through
// unchanged so dialect.Get reports the unsupported-driver error itself.
func normalizeDialectTag(driverName string) string {
	switch driverName {
	case DriverPostgreSQL:
		return DriverPostgres
	case DriverSQLite3:
		return DriverSQLite
	default:
		return driverName
	}
}
