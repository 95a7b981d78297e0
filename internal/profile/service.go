package profile

import (
	"context"
	"log/slog"

	"github.com/hitoshi/idorlab/internal/metrics"
	"github.com/hitoshi/idorlab/internal/model"
	"github.com/hitoshi/idorlab/internal/repository"
	"github.com/hitoshi/idorlab/internal/security"
)

// DirectoryMode はユーザー一覧の射影方法。
type DirectoryMode string

const (
	// DirectoryModePreview はユーザー名と切り詰めたbioを返す。
	DirectoryModePreview DirectoryMode = "preview"
	// DirectoryModeIndex はIDとユーザー名を返す。
	DirectoryModeIndex DirectoryMode = "index"
)

// ServiceConfig はプロフィールサービスの設定。
type ServiceConfig struct {
	PrivilegedUserID int64
	DirectoryMode    DirectoryMode
	BioPreviewLength int
}

// Service はプロフィール参照とユーザー一覧のビジネスロジックを提供する。
type Service struct {
	repo       repository.UserRepository
	authorizer Authorizer
	sanitizer  security.TextSanitizerService
	metrics    metrics.MetricsCollector
	config     ServiceConfig
}

// NewService はServiceを生成する。
func NewService(
	repo repository.UserRepository,
	authorizer Authorizer,
	sanitizer security.TextSanitizerService,
	collector metrics.MetricsCollector,
	config ServiceConfig,
) *Service {
	if collector == nil {
		collector = metrics.Nop{}
	}
	return &Service{
		repo:       repo,
		authorizer: authorizer,
		sanitizer:  sanitizer,
		metrics:    collector,
		config:     config,
	}
}

// Mode は使用中の認可モードを返す。
func (s *Service) Mode() AuthMode {
	return s.authorizer.Mode()
}

// GetProfile は指定IDのプロフィールを、主体との関係に応じてフィルタして返す。
//
// 判定順序:
//  1. 認可（トークンモードでは 署名 → 有効期限）
//  2. IDによるレコード検索
//  3. 公開フィールド（id, username, bio）の構築
//  4. 本人ルール: 主体IDがレコードIDと一致すればemailを含める
//  5. 特権ルール: 特権レコードのflagは主体IDが特権IDと一致する場合のみ含め、
//     それ以外は制限通知を付与する
func (s *Service) GetProfile(ctx context.Context, requestedID int64, credential string) (*model.ProfileView, error) {
	principal, err := s.authorizer.Authorize(ctx, requestedID, credential)
	if err != nil {
		return nil, err
	}

	user := s.findUser(ctx, requestedID)
	if user == nil {
		return nil, model.NewUserNotFoundError(requestedID)
	}

	view := &model.ProfileView{
		ID:       user.ID,
		Username: user.Username,
		Bio:      s.sanitizer.Sanitize(user.Bio),
	}
	disclosure := model.DisclosurePublic

	if principal.UserID == user.ID && user.Email != "" {
		email := user.Email
		view.Email = &email
		disclosure = model.DisclosureSelf
	}

	if user.ID == s.config.PrivilegedUserID {
		if principal.UserID == s.config.PrivilegedUserID {
			if user.Flag != "" {
				flag := user.Flag
				view.Flag = &flag
			}
			disclosure = model.DisclosurePrivileged
		} else {
			notice := model.RestrictedNotice
			view.Notice = &notice
			disclosure = model.DisclosureRestricted
		}
	}

	s.metrics.RecordProfileView(string(disclosure))
	slog.InfoContext(ctx, "profile served",
		slog.Int64("requested_id", requestedID),
		slog.Int64("principal_id", principal.UserID),
		slog.Bool("verified", principal.Verified),
		slog.String("disclosure", string(disclosure)),
	)

	return view, nil
}

// ListDirectory は全ユーザーの縮退ビューを返す。認可は行わない。
// 機密フィールド（email, flag）はどのモードでも含めない。
func (s *Service) ListDirectory(ctx context.Context) []model.DirectoryEntry {
	users := s.listUsers(ctx)

	entries := make([]model.DirectoryEntry, 0, len(users))
	for _, u := range users {
		entry := model.DirectoryEntry{Username: u.Username}
		switch s.config.DirectoryMode {
		case DirectoryModeIndex:
			id := u.ID
			entry.ID = &id
		default:
			entry.BioPreview = s.sanitizer.Preview(u.Bio, s.config.BioPreviewLength)
		}
		entries = append(entries, entry)
	}
	return entries
}

// DumpAll はフィルタなしの全レコードを返す。運用者向けデバッグエンドポイント専用。
func (s *Service) DumpAll(ctx context.Context) []model.User {
	return s.listUsers(ctx)
}

// findUser はリポジトリからユーザーを取得する。
// ストアの読み取りに失敗した場合は空の結果（nil）として扱う。
func (s *Service) findUser(ctx context.Context, id int64) *model.User {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		slog.ErrorContext(ctx, "user store unavailable, treating as empty",
			slog.Int64("id", id),
			slog.String("error", err.Error()),
		)
		return nil
	}
	return user
}

// listUsers はリポジトリから全ユーザーを取得する。
// ストアの読み取りに失敗した場合は空の一覧として扱う。
func (s *Service) listUsers(ctx context.Context) []model.User {
	users, err := s.repo.List(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "user store unavailable, treating as empty",
			slog.String("error", err.Error()),
		)
		return []model.User{}
	}
	return users
}
