package storage

import "testing"

func TestMigrationURLRewritesScheme(t *testing.T) {
	cases := map[string]string{
		"postgres://u:p@db:5432/app?sslmode=disable":   "pgx5://u:p@db:5432/app?sslmode=disable",
		"postgresql://u:p@db:5432/app?sslmode=require": "pgx5://u:p@db:5432/app?sslmode=require",
		"pgx5://already":                               "pgx5://already",
	}
	for in, want := range cases {
		if got := migrationURL(in); got != want {
			t.Fatalf("migrationURL(%q) = %q, want %q", in, got, want)
		}
	}
}
