package profile

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/hitoshi/idorlab/internal/metrics"
	"github.com/hitoshi/idorlab/internal/model"
	"github.com/hitoshi/idorlab/internal/repository"
	"github.com/hitoshi/idorlab/internal/token"
)

// TokenSigner はトークン発行のインターフェース。token.Codecが満たす。
type TokenSigner interface {
	Issue(claims token.Claims) (string, error)
}

// IssuerConfig はトークン発行の設定。
type IssuerConfig struct {
	Mode    AuthMode
	TTL     time.Duration
	BaseURL string
}

// Issuer はストアに存在するユーザーのアイデンティティトークンを発行する。
type Issuer struct {
	repo    repository.UserRepository
	signer  TokenSigner
	metrics metrics.MetricsCollector
	config  IssuerConfig
	now     func() time.Time
}

// NewIssuer はIssuerを生成する。
func NewIssuer(repo repository.UserRepository, signer TokenSigner, collector metrics.MetricsCollector, config IssuerConfig) *Issuer {
	if collector == nil {
		collector = metrics.Nop{}
	}
	return &Issuer{
		repo:    repo,
		signer:  signer,
		metrics: collector,
		config:  config,
		now:     time.Now,
	}
}

// IssueFor は指定ユーザーのトークンと、そのトークンでプロフィールを参照するURLを返す。
// ユーザーが存在しない（またはストアを読めない）場合はNotFoundを返す。
func (i *Issuer) IssueFor(ctx context.Context, userID int64) (*model.TokenGrant, error) {
	user, err := i.repo.FindByID(ctx, userID)
	if err != nil || user == nil {
		return nil, model.NewUserNotFoundError(userID)
	}

	claims := token.Claims{
		UserID:   user.ID,
		Username: user.Username,
	}
	if i.config.TTL > 0 {
		claims.ExpiresAt = i.now().Add(i.config.TTL).Unix()
	}

	tok, err := i.signer.Issue(claims)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token for user %d: %w", user.ID, err)
	}

	i.metrics.RecordTokenIssued()

	return &model.TokenGrant{
		Identity:   model.Identity{ID: user.ID, Username: user.Username},
		Token:      tok,
		ProfileURL: i.profileURL(user.ID, tok),
		ExpiresAt:  claims.ExpiresAt,
	}, nil
}

// profileURL はモードに応じたプロフィール参照URLを組み立てる。
func (i *Issuer) profileURL(id int64, tok string) string {
	u := fmt.Sprintf("%s/api/profile/%d", strings.TrimRight(i.config.BaseURL, "/"), id)
	if i.config.Mode == AuthModeToken {
		u += "?token=" + url.QueryEscape(tok)
	}
	return u
}
