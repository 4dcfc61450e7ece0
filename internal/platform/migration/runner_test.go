// Copyright (c) 2026 Vidora. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package migration_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/taibuivan/vidora/internal/platform/migration"
)

/*
TestDatabaseURL rewrites postgres schemes for the pgx5 driver.
*/
func TestDatabaseURL(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"postgres://u:p@db:5432/vidora?sslmode=disable", "pgx5://u:p@db:5432/vidora?sslmode=disable"},
		{"postgresql://u:p@db/vidora", "pgx5://u:p@db/vidora"},
		{"pgx5://u:p@db/vidora", "pgx5://u:p@db/vidora"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, migration.DatabaseURL(tt.in))
	}
}
