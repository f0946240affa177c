package postgres

import (
	"database/sql"
	"fmt"
	"testing"

	"github.com/lib/pq"
)

func TestIsNotFound(t *testing.T) {
	if !isNotFound(sql.ErrNoRows) {
		t.Fatal("sql.ErrNoRows must read as not found")
	}
	if !isNotFound(fmt.Errorf("get lineup: %w", sql.ErrNoRows)) {
		t.Fatal("wrapped sql.ErrNoRows must read as not found")
	}
	if isNotFound(fmt.Errorf("connection refused")) {
		t.Fatal("unrelated error must not read as not found")
	}
}

func TestIsUniqueViolation(t *testing.T) {
	if !isUniqueViolation(&pq.Error{Code: uniqueViolationCode}) {
		t.Fatal("23505 must read as unique violation")
	}
	if isUniqueViolation(&pq.Error{Code: "23503"}) {
		t.Fatal("foreign key violation must not read as unique violation")
	}
	if isUniqueViolation(sql.ErrNoRows) {
		t.Fatal("sql.ErrNoRows must not read as unique violation")
	}
}
