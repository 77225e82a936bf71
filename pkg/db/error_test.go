package db

import (
	"errors"
	"fmt"
	"testing"

	mysqldriver "github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

func TestIsDuplicateKeyErr(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "nil", err: nil, want: false},
		{name: "gorm translated", err: fmt.Errorf("insert: %w", gorm.ErrDuplicatedKey), want: true},
		{name: "pgx unique violation", err: &pgconn.PgError{Code: "23505"}, want: true},
		{name: "pgx other code", err: &pgconn.PgError{Code: "23502"}, want: false},
		{name: "lib/pq unique violation", err: &pq.Error{Code: "23505"}, want: true},
		{name: "mysql duplicate entry", err: &mysqldriver.MySQLError{Number: 1062, Message: "Duplicate entry"}, want: true},
		{name: "mysql other", err: &mysqldriver.MySQLError{Number: 1045, Message: "Access denied"}, want: false},
		{name: "sqlite text", err: errors.New("UNIQUE constraint failed: payments.external_id"), want: true},
		{name: "connection refused", err: errors.New("dial tcp 127.0.0.1:5432: connect: connection refused"), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsDuplicateKeyErr(tt.err); got != tt.want {
				t.Fatalf("IsDuplicateKeyErr(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestDialectRejectsUnknownType(t *testing.T) {
	if _, err := Dialect(Config{Type: "oracle"}); err == nil {
		t.Fatalf("expected error for unsupported type")
	}
}

func TestDialectKnownTypes(t *testing.T) {
	for _, typ := range []string{TypePostgres, TypeMySQL, TypeSQLite} {
		dialector, err := Dialect(Config{Type: typ, Host: "localhost", Port: "5432", Name: "payrecord"})
		if err != nil {
			t.Fatalf("dialect %s: %v", typ, err)
		}
		if dialector == nil {
			t.Fatalf("dialect %s: expected dialector", typ)
		}
	}
}

func TestMySQLDSN(t *testing.T) {
	dsn := MySQLDSN(Config{User: "root", Password: "secret", Host: "db", Port: "3306", Name: "payments"})
	want := "root:secret@tcp(db:3306)/payments?charset=utf8mb4&parseTime=True&loc=UTC&multiStatements=true"
	if dsn != want {
		t.Fatalf("expected %q, got %q", want, dsn)
	}
}
