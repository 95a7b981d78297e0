package repository

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"
)

func TestFileUserRepo_ImplementsInterface(t *testing.T) {
	var _ UserRepository = (*FileUserRepo)(nil)
}

func TestSeedUserRepo_ContainsPrivilegedRecord(t *testing.T) {
	repo := NewSeedUserRepo()

	admin, err := repo.FindByID(context.Background(), 1)
	if err != nil {
		t.Fatalf("FindByID(1) returned error: %v", err)
	}
	if admin == nil {
		t.Fatal("expected seed to contain user 1")
	}
	if admin.Flag == "" {
		t.Error("seed user 1 should carry a flag")
	}

	users, err := repo.List(context.Background())
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	for _, u := range users {
		if u.ID != 1 && u.Flag != "" {
			t.Errorf("user %d should not carry a flag", u.ID)
		}
	}
}

func TestFileUserRepo_JSONC(t *testing.T) {
	fsys := fstest.MapFS{
		"users.json": &fstest.MapFile{Data: []byte(`
			// comment
			[
				{"id": 3, "username": "c"},
				{"id": 1, "username": "a", "email": "a@example.com",},
			]`)},
	}
	repo := NewFileUserRepo(fsys, "users.json")

	users, err := repo.List(context.Background())
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if len(users) != 2 {
		t.Fatalf("len(users) = %d, want 2", len(users))
	}
	if users[0].ID != 1 || users[1].ID != 3 {
		t.Errorf("users not sorted by id: %+v", users)
	}
	if users[0].Email != "a@example.com" {
		t.Errorf("Email = %q, want %q", users[0].Email, "a@example.com")
	}
}

func TestFileUserRepo_YAML(t *testing.T) {
	fsys := fstest.MapFS{
		"users.yaml": &fstest.MapFile{Data: []byte(`
- id: 1
  username: admin
  flag: FLAG{yaml}
- id: 2
  username: alice
  bio: hi
`)},
	}
	repo := NewFileUserRepo(fsys, "users.yaml")

	u, err := repo.FindByID(context.Background(), 1)
	if err != nil {
		t.Fatalf("FindByID returned error: %v", err)
	}
	if u == nil || u.Flag != "FLAG{yaml}" {
		t.Errorf("FindByID(1) = %+v, want flag FLAG{yaml}", u)
	}
}

func TestFileUserRepo_SkipsInvalidAndDuplicateIDs(t *testing.T) {
	fsys := fstest.MapFS{
		"users.json": &fstest.MapFile{Data: []byte(`[
			{"id": 0, "username": "zero"},
			{"id": -1, "username": "negative"},
			{"id": 2, "username": "first"},
			{"id": 2, "username": "second"}
		]`)},
	}
	repo := NewFileUserRepo(fsys, "users.json")

	users, err := repo.List(context.Background())
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if len(users) != 1 {
		t.Fatalf("len(users) = %d, want 1", len(users))
	}
	if users[0].Username != "first" {
		t.Errorf("Username = %q, want %q", users[0].Username, "first")
	}
}

func TestFileUserRepo_FindByID_NotFound_ReturnsNil(t *testing.T) {
	repo := NewSeedUserRepo()

	u, err := repo.FindByID(context.Background(), 9999)
	if err != nil {
		t.Fatalf("FindByID returned error: %v", err)
	}
	if u != nil {
		t.Errorf("FindByID(9999) = %+v, want nil", u)
	}
}

func TestFileUserRepo_MissingFile_ReturnsError(t *testing.T) {
	repo := OpenFileUserRepo(filepath.Join(t.TempDir(), "missing.json"))

	if _, err := repo.List(context.Background()); err == nil {
		t.Error("expected error for missing file")
	}
	if err := repo.Ping(context.Background()); err == nil {
		t.Error("expected Ping error for missing file")
	}
}

func TestOpenFileUserRepo_ReadsFromDisk(t *testing.T) {
	p := filepath.Join(t.TempDir(), "users.json")
	if err := os.WriteFile(p, []byte(`[{"id": 7, "username": "disk"}]`), 0o600); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}

	repo := OpenFileUserRepo(p)
	u, err := repo.FindByID(context.Background(), 7)
	if err != nil {
		t.Fatalf("FindByID returned error: %v", err)
	}
	if u == nil || u.Username != "disk" {
		t.Errorf("FindByID(7) = %+v, want username disk", u)
	}

	// ファイルの差し替えが次の読み取りに反映されること
	if err := os.WriteFile(p, []byte(`[{"id": 7, "username": "replaced"}]`), 0o600); err != nil {
		t.Fatalf("failed to rewrite fixture: %v", err)
	}
	u, err = repo.FindByID(context.Background(), 7)
	if err != nil {
		t.Fatalf("FindByID returned error: %v", err)
	}
	if u == nil || u.Username != "replaced" {
		t.Errorf("FindByID(7) after rewrite = %+v, want username replaced", u)
	}
}

func TestOpenFileUserRepo_EmptyPathUsesSeed(t *testing.T) {
	repo := OpenFileUserRepo("")
	if err := repo.Ping(context.Background()); err != nil {
		t.Errorf("Ping on seed store returned error: %v", err)
	}
}
