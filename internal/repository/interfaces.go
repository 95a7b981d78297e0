// Package repository はユーザーストアの読み取りインターフェースと実装を定義する。
package repository

import (
	"context"

	"github.com/hitoshi/idorlab/internal/model"
)

// UserRepository はユーザーレコードの読み取り専用インターフェース。
// 実行時にレコードを追加・更新する操作は持たない。
type UserRepository interface {
	// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id int64) (*model.User, error)

	// List は全ユーザーをID昇順で返す。
	List(ctx context.Context) ([]model.User, error)

	// Ping はストアが読み取り可能かどうかを確認する。
	Ping(ctx context.Context) error
}
