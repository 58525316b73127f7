package database

import "testing"

func TestMigrateURL(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"postgres://u:p@db:5432/pos?sslmode=disable", "pgx5://u:p@db:5432/pos?sslmode=disable"},
		{"postgresql://u:p@db/pos", "pgx5://u:p@db/pos"},
		{"pgx5://u:p@db/pos", "pgx5://u:p@db/pos"},
	}
	for _, tt := range tests {
		if got := migrateURL(tt.in); got != tt.want {
			t.Errorf("migrateURL(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestMigrationsEmbedded(t *testing.T) {
	entries, err := migrationFS.ReadDir("migrations")
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	ups := 0
	for _, e := range entries {
		if len(e.Name()) > 7 && e.Name()[len(e.Name())-7:] == ".up.sql" {
			ups++
		}
	}
	if ups < 2 {
		t.Errorf("found %d up migrations, want at least 2", ups)
	}
}
