package handler

import (
	"context"
	"net/http"

	"github.com/hitoshi/idorlab/internal/model"
)

// TokenIssuerInterface はトークン発行ハンドラーが必要とするインターフェース。
type TokenIssuerInterface interface {
	IssueFor(ctx context.Context, userID int64) (*model.TokenGrant, error)
}

// TokenFormat はクライアント設定で公開するトークン形式の説明。
const TokenFormat = `base64url(json({"id","username","exp"})) + "." + hex(hmac_sha256(secret, payload_segment))`

// ClientConfig はクライアントへ配布する設定値。
// 署名鍵をそのまま含むため、このエンドポイントが演習上の漏えい箇所になる。
type ClientConfig struct {
	AuthMode         string
	TokenSecret      string
	PrivilegedUserID int64
}

// TokenHandler はトークン発行とクライアント設定配布のHTTPハンドラー。
type TokenHandler struct {
	issuer       TokenIssuerInterface
	demoUserID   int64
	clientConfig ClientConfig
}

// NewTokenHandler はTokenHandlerを生成する。
func NewTokenHandler(issuer TokenIssuerInterface, demoUserID int64, clientConfig ClientConfig) *TokenHandler {
	return &TokenHandler{
		issuer:       issuer,
		demoUserID:   demoUserID,
		clientConfig: clientConfig,
	}
}

// clientConfigResponse はクライアント設定のAPIレスポンス。
type clientConfigResponse struct {
	LeakPoint        bool   `json:"leak_point"`
	AuthMode         string `json:"auth_mode"`
	TokenSecret      string `json:"token_secret"`
	TokenFormat      string `json:"token_format"`
	PrivilegedUserID int64  `json:"privileged_user_id"`
	TokenEndpoint    string `json:"token_endpoint"`
	ProfileEndpoint  string `json:"profile_endpoint"`
	DirectoryPath    string `json:"directory_endpoint"`
}

// IssueToken はデモ用アイデンティティのトークンを発行する。
// GET /api/token
func (h *TokenHandler) IssueToken(w http.ResponseWriter, r *http.Request) {
	grant, err := h.issuer.IssueFor(r.Context(), h.demoUserID)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, grant)
}

// ClientConfig はクライアント向け設定を返す。署名鍵を含む。
// GET /api/client-config
func (h *TokenHandler) ClientConfig(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, clientConfigResponse{
		LeakPoint:        true,
		AuthMode:         h.clientConfig.AuthMode,
		TokenSecret:      h.clientConfig.TokenSecret,
		TokenFormat:      TokenFormat,
		PrivilegedUserID: h.clientConfig.PrivilegedUserID,
		TokenEndpoint:    "/api/token",
		ProfileEndpoint:  "/api/profile/{id}",
		DirectoryPath:    "/api/users",
	})
}
