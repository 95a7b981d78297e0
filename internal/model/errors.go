// Package model はドメインモデルを定義する。
package model

import "fmt"

// APIError は統一エラーフォーマットを表す。
// クライアントに返すメッセージと、ログ・UI向けのカテゴリ、対処方法を含む。
type APIError struct {
	Code     string // エラーコード
	Message  string // エラーメッセージ
	Category string // カテゴリ: auth, validation, profile, system
	Action   string // 利用者向け対処方法
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeMissingInput     = "MISSING_INPUT"
	ErrCodeInvalidID        = "INVALID_ID"
	ErrCodeMalformedToken   = "MALFORMED_TOKEN"
	ErrCodeMalformedPayload = "MALFORMED_PAYLOAD"
	ErrCodeInvalidSignature = "INVALID_SIGNATURE"
	ErrCodeTokenExpired     = "TOKEN_EXPIRED"
	ErrCodeUserNotFound     = "USER_NOT_FOUND"
	ErrCodeInternal         = "INTERNAL_ERROR"
)

// NewMissingTokenError はトークン未指定エラーを生成する。
func NewMissingTokenError() *APIError {
	return &APIError{
		Code:     ErrCodeMissingInput,
		Message:  "missing token",
		Category: "auth",
		Action:   "GET /api/token で発行したトークンを token クエリパラメータに指定してください。",
	}
}

// NewInvalidIDError はユーザーIDの形式が不正な場合のエラーを生成する。
func NewInvalidIDError(raw string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidID,
		Message:  fmt.Sprintf("invalid user id: %q", raw),
		Category: "validation",
		Action:   "正の整数のユーザーIDを指定してください。",
	}
}

// NewMalformedTokenError はトークンの構造が不正な場合のエラーを生成する。
func NewMalformedTokenError() *APIError {
	return &APIError{
		Code:     ErrCodeMalformedToken,
		Message:  "malformed token",
		Category: "auth",
		Action:   "トークンは <payload>.<signature> の形式で指定してください。",
	}
}

// NewMalformedPayloadError はトークンのペイロードを解釈できない場合のエラーを生成する。
func NewMalformedPayloadError() *APIError {
	return &APIError{
		Code:     ErrCodeMalformedPayload,
		Message:  "malformed token payload",
		Category: "auth",
		Action:   "トークンを再発行してください。",
	}
}

// NewInvalidSignatureError は署名不一致エラーを生成する。
func NewInvalidSignatureError() *APIError {
	return &APIError{
		Code:     ErrCodeInvalidSignature,
		Message:  "invalid signature",
		Category: "auth",
		Action:   "トークンを再発行してください。",
	}
}

// NewTokenExpiredError はトークン期限切れエラーを生成する。
func NewTokenExpiredError() *APIError {
	return &APIError{
		Code:     ErrCodeTokenExpired,
		Message:  "token expired",
		Category: "auth",
		Action:   "トークンを再発行してください。",
	}
}

// NewUserNotFoundError はユーザーが見つからない場合のエラーを生成する。
func NewUserNotFoundError(id int64) *APIError {
	return &APIError{
		Code:     ErrCodeUserNotFound,
		Message:  fmt.Sprintf("user %d not found", id),
		Category: "profile",
		Action:   "ユーザーIDを確認してください。",
	}
}

// NewInternalError は内部エラーを生成する。
// 詳細はログのみに記録し、クライアントには一般的なメッセージを返す。
func NewInternalError() *APIError {
	return &APIError{
		Code:     ErrCodeInternal,
		Message:  "internal error",
		Category: "system",
		Action:   "しばらく待ってから再度お試しください。",
	}
}
