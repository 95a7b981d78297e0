package repository

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"

	"github.com/hitoshi/idorlab/internal/model"
)

//go:embed seed/users.jsonc
var seedFS embed.FS

// seedFile は埋め込みシードデータのパス。
const seedFile = "seed/users.jsonc"

// FileUserRepo は静的ファイルからユーザーを読み込むリポジトリ。
// ファイルはリクエストごとに読み直すため、プロセス起動後に差し替えても反映される。
// 対応形式: JSON、JSONC（コメント・末尾カンマ付きJSON）、YAML。
type FileUserRepo struct {
	fsys fs.FS
	name string
}

// NewFileUserRepo はfsys内のnameを読み込むFileUserRepoを生成する。
func NewFileUserRepo(fsys fs.FS, name string) *FileUserRepo {
	return &FileUserRepo{fsys: fsys, name: name}
}

// NewSeedUserRepo はバイナリに埋め込まれたシードデータを読むFileUserRepoを生成する。
func NewSeedUserRepo() *FileUserRepo {
	return NewFileUserRepo(seedFS, seedFile)
}

// OpenFileUserRepo はディスク上のファイルパスからFileUserRepoを生成する。
// pathが空の場合は埋め込みシードデータを使う。
func OpenFileUserRepo(filePath string) *FileUserRepo {
	if filePath == "" {
		return NewSeedUserRepo()
	}
	abs, err := filepath.Abs(filePath)
	if err != nil {
		abs = filePath
	}
	return NewFileUserRepo(os.DirFS(filepath.Dir(abs)), filepath.Base(abs))
}

// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
func (r *FileUserRepo) FindByID(ctx context.Context, id int64) (*model.User, error) {
	users, err := r.load()
	if err != nil {
		return nil, err
	}
	for i := range users {
		if users[i].ID == id {
			u := users[i]
			return &u, nil
		}
	}
	return nil, nil
}

// List は全ユーザーをID昇順で返す。
func (r *FileUserRepo) List(ctx context.Context) ([]model.User, error) {
	return r.load()
}

// Ping はストアファイルが読み取り・解析可能かどうかを確認する。
func (r *FileUserRepo) Ping(ctx context.Context) error {
	_, err := r.load()
	return err
}

// load はファイルを読み込んでユーザー一覧に変換する。
// IDが正でないレコードは読み飛ばし、同一IDは先に現れたものを採用する。
func (r *FileUserRepo) load() ([]model.User, error) {
	data, err := fs.ReadFile(r.fsys, r.name)
	if err != nil {
		return nil, fmt.Errorf("failed to read user store %s: %w", r.name, err)
	}

	users, err := decodeUsers(r.name, data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse user store %s: %w", r.name, err)
	}

	seen := make(map[int64]bool, len(users))
	result := make([]model.User, 0, len(users))
	for _, u := range users {
		if u.ID <= 0 {
			slog.Warn("skipping user record with non-positive id",
				slog.String("store", r.name),
				slog.String("username", u.Username),
			)
			continue
		}
		if seen[u.ID] {
			slog.Warn("skipping duplicate user record",
				slog.String("store", r.name),
				slog.Int64("id", u.ID),
			)
			continue
		}
		seen[u.ID] = true
		result = append(result, u)
	}

	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

// decodeUsers は拡張子に応じてYAMLまたはJSON(C)としてデコードする。
func decodeUsers(name string, data []byte) ([]model.User, error) {
	var users []model.User

	switch strings.ToLower(path.Ext(name)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &users); err != nil {
			return nil, err
		}
	default:
		if err := json.Unmarshal(jsonc.ToJSON(data), &users); err != nil {
			return nil, err
		}
	}

	return users, nil
}
