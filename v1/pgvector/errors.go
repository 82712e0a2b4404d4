package pgvector

import (
	"database/sql"
	"database/sql/driver"
	"errors"
	"net"
	"strings"
	"syscall"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/Aleph-Alpha/rag-vectorstore/v1/vectordb"
)

// classifyError maps a Postgres or connection failure onto a vectordb.Reason.
func classifyError(err error) vectordb.Reason {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return classifySQLState(pgErr.Code)
	}

	var connectErr *pgconn.ConnectError
	if errors.As(err, &connectErr) {
		return vectordb.ReasonUnavailable
	}
	if pgconn.Timeout(err) {
		return vectordb.ReasonTimeout
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return vectordb.ReasonTimeout
		}
		return vectordb.ReasonUnavailable
	}

	switch {
	case errors.Is(err, driver.ErrBadConn),
		errors.Is(err, sql.ErrConnDone),
		errors.Is(err, syscall.ECONNREFUSED),
		errors.Is(err, syscall.ECONNRESET):
		return vectordb.ReasonUnavailable
	}
	return vectordb.ReasonUnknown
}

// classifySQLState classifies by SQLSTATE class.
func classifySQLState(code string) vectordb.Reason {
	switch {
	case code == "57014": // query_canceled, raised by statement_timeout
		return vectordb.ReasonTimeout
	case strings.HasPrefix(code, "08"), // connection exception
		strings.HasPrefix(code, "53"), // insufficient resources
		strings.HasPrefix(code, "57"): // operator intervention
		return vectordb.ReasonUnavailable
	case strings.HasPrefix(code, "28"), // invalid authorization
		strings.HasPrefix(code, "42"), // syntax error or access rule violation
		strings.HasPrefix(code, "22"), // data exception
		strings.HasPrefix(code, "3D"): // invalid catalog name
		return vectordb.ReasonRejected
	default:
		return vectordb.ReasonUnknown
	}
}
