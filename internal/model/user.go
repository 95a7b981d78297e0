// Package model はドメインモデルを定義する。
package model

// User はユーザーストアに保存されたレコードを表す。
// 実行時には読み取り専用として扱い、このサービスが変更することはない。
type User struct {
	ID       int64  `json:"id" yaml:"id"`
	Username string `json:"username" yaml:"username"`
	Bio      string `json:"bio,omitempty" yaml:"bio,omitempty"`
	// Email は本人にのみ開示される機密フィールド。
	Email string `json:"email,omitempty" yaml:"email,omitempty"`
	// Flag は特権レコードにのみ存在する最も機密性の高いフィールド。
	Flag string `json:"flag,omitempty" yaml:"flag,omitempty"`
}

// Principal はリクエスト元として扱われるアイデンティティを表す。
// トークンモードではトークンのクレーム、パスモードではパスパラメータ由来となる。
type Principal struct {
	UserID   int64
	Username string
	// Verified はトークン署名の検証を経たかどうかを示す。
	Verified bool
}

// ProfileView はプロフィールAPIが外部に返すフィルタ済みレコード。
// 機密フィールドはポインタで保持し、開示の有無を型レベルで表現する。
type ProfileView struct {
	ID       int64   `json:"id"`
	Username string  `json:"username"`
	Bio      string  `json:"bio"`
	Email    *string `json:"email,omitempty"`
	Flag     *string `json:"flag,omitempty"`
	Notice   *string `json:"notice,omitempty"`
}

// Disclosure はプロフィール応答でどの範囲まで開示したかを表す。
type Disclosure string

const (
	// DisclosurePublic は公開フィールドのみを返したことを示す。
	DisclosurePublic Disclosure = "public"
	// DisclosureSelf は本人としてメールアドレスを開示したことを示す。
	DisclosureSelf Disclosure = "self"
	// DisclosurePrivileged は特権レコードのフラグを開示したことを示す。
	DisclosurePrivileged Disclosure = "privileged"
	// DisclosureRestricted は特権レコードへの他者アクセスで制限通知を付与したことを示す。
	DisclosureRestricted Disclosure = "restricted"
)

// RestrictedNotice は特権レコードの機密フィールドの代わりに付与する通知文言。
const RestrictedNotice = "restricted"

// DirectoryEntry はユーザー一覧APIが返す縮退レコード。
// 機密フィールドを持たないため、どの呼び出し元にも同じ内容を返せる。
type DirectoryEntry struct {
	ID         *int64 `json:"id,omitempty"`
	Username   string `json:"username"`
	BioPreview string `json:"bio_preview,omitempty"`
}

// TokenGrant はトークン発行APIのレスポンスを表す。
type TokenGrant struct {
	Identity   Identity `json:"identity"`
	Token      string   `json:"token"`
	ProfileURL string   `json:"profile_url"`
	ExpiresAt  int64    `json:"expires_at"`
}

// Identity はトークンに埋め込まれたアイデンティティの公開部分。
type Identity struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}
