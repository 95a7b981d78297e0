// Package profile はプロフィール参照の認可判定、フィールド開示ルール、
// ユーザー一覧、トークン発行を提供する。
//
// 認可は2つの戦略（Authorizer）を差し替えて使う:
//   - TokenAuthorizer: 署名付きトークンを検証し、クレームのIDを主体とする
//   - PathAuthorizer: 認証を行わず、パスで指定されたIDをそのまま主体として信用する
//
// どちらの戦略でもフィールド開示ロジックはService.GetProfileの1箇所にのみ存在する。
package profile

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/hitoshi/idorlab/internal/metrics"
	"github.com/hitoshi/idorlab/internal/model"
	"github.com/hitoshi/idorlab/internal/token"
)

// AuthMode はデプロイ時に選択する認可モード。
type AuthMode string

const (
	// AuthModeToken はトークン必須モード。
	AuthModeToken AuthMode = "token"
	// AuthModePath はトークンを使わずパスパラメータを信用するモード。
	AuthModePath AuthMode = "path"
)

// Authorizer はリクエストの主体を決定する戦略。
type Authorizer interface {
	// Authorize はrequestedIDに対するリクエストの主体を返す。
	// credentialはクライアントが提示した資格情報（トークン）で、モードによっては無視される。
	// 失敗時は*model.APIErrorを返す。
	Authorize(ctx context.Context, requestedID int64, credential string) (*model.Principal, error)

	// Mode は戦略が実装する認可モードを返す。
	Mode() AuthMode
}

// TokenVerifier はトークン検証のインターフェース。token.Codecが満たす。
type TokenVerifier interface {
	Verify(tok string) (*token.Claims, error)
}

// TokenAuthorizer はトークンを検証して主体を決定するAuthorizer。
// クレームのIDとセッションを結び付ける仕組みは持たないため、
// シークレットを知る者は任意のIDを主張できる。
type TokenAuthorizer struct {
	verifier TokenVerifier
	metrics  metrics.MetricsCollector
}

// NewTokenAuthorizer はTokenAuthorizerを生成する。
func NewTokenAuthorizer(verifier TokenVerifier, collector metrics.MetricsCollector) *TokenAuthorizer {
	if collector == nil {
		collector = metrics.Nop{}
	}
	return &TokenAuthorizer{verifier: verifier, metrics: collector}
}

// Mode はAuthModeTokenを返す。
func (a *TokenAuthorizer) Mode() AuthMode {
	return AuthModeToken
}

// Authorize はトークンを検証し、クレームのIDを主体として返す。
// requestedIDは判定に使わない（ユーザーの検索は検証成功後に行う）。
func (a *TokenAuthorizer) Authorize(ctx context.Context, requestedID int64, credential string) (*model.Principal, error) {
	if credential == "" {
		a.metrics.RecordVerificationFailure("missing")
		return nil, model.NewMissingTokenError()
	}

	claims, err := a.verifier.Verify(credential)
	if err != nil {
		reason, apiErr := classifyVerifyError(err)
		a.metrics.RecordVerificationFailure(reason)
		slog.WarnContext(ctx, "token verification failed",
			slog.String("reason", reason),
			slog.Int64("requested_id", requestedID),
		)
		return nil, apiErr
	}

	return &model.Principal{
		UserID:   claims.UserID,
		Username: claims.Username,
		Verified: true,
	}, nil
}

// classifyVerifyError はtokenパッケージのエラーをメトリクス用の理由とAPIErrorに変換する。
func classifyVerifyError(err error) (string, *model.APIError) {
	switch {
	case errors.Is(err, token.ErrMalformedToken):
		return "malformed_token", model.NewMalformedTokenError()
	case errors.Is(err, token.ErrInvalidSignature):
		return "invalid_signature", model.NewInvalidSignatureError()
	case errors.Is(err, token.ErrMalformedPayload):
		return "malformed_payload", model.NewMalformedPayloadError()
	case errors.Is(err, token.ErrExpired):
		return "expired", model.NewTokenExpiredError()
	default:
		return "unknown", model.NewInvalidSignatureError()
	}
}

// PathAuthorizer は認証を行わないAuthorizer。
// パスで指定されたIDをそのまま主体として扱うため、任意のレコードを本人として参照できる。
type PathAuthorizer struct{}

// NewPathAuthorizer はPathAuthorizerを生成する。
func NewPathAuthorizer() *PathAuthorizer {
	return &PathAuthorizer{}
}

// Mode はAuthModePathを返す。
func (a *PathAuthorizer) Mode() AuthMode {
	return AuthModePath
}

// Authorize はrequestedIDを主体として返す。credentialは無視する。
func (a *PathAuthorizer) Authorize(ctx context.Context, requestedID int64, credential string) (*model.Principal, error) {
	return &model.Principal{UserID: requestedID}, nil
}

// NewAuthorizer はモードに対応するAuthorizerを生成する。
func NewAuthorizer(mode AuthMode, verifier TokenVerifier, collector metrics.MetricsCollector) (Authorizer, error) {
	switch mode {
	case AuthModeToken:
		return NewTokenAuthorizer(verifier, collector), nil
	case AuthModePath:
		return NewPathAuthorizer(), nil
	default:
		return nil, fmt.Errorf("unsupported auth mode: %q", mode)
	}
}
