// Package token は自己完結型ベアラートークンの発行と検証を提供する。
//
// トークン形式:
//
//	base64url(JSONクレーム, パディングなし) + "." + hex(HMAC-SHA256(secret, エンコード済みクレーム))
//
// 署名はエンコード後の文字列に対して計算するため、送信されたバイト列そのものに束縛される。
package token

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// separator はペイロードと署名を区切る文字。
const separator = "."

var (
	// ErrMalformedToken はトークンの構造（区切り文字の数）が不正な場合に返される。
	ErrMalformedToken = errors.New("malformed token")
	// ErrInvalidSignature は署名が一致しない場合に返される。
	ErrInvalidSignature = errors.New("invalid signature")
	// ErrMalformedPayload は署名は一致したがペイロードを復元できない場合に返される。
	ErrMalformedPayload = errors.New("malformed payload")
	// ErrExpired は署名検証後に有効期限切れと判定された場合に返される。
	ErrExpired = errors.New("token expired")
	// ErrInvalidClaims は発行しようとしたクレームが不正な場合に返される。
	ErrInvalidClaims = errors.New("invalid claims")
)

// Claims はトークンに埋め込まれる主張。
type Claims struct {
	UserID   int64  `json:"id"`
	Username string `json:"username"`
	// ExpiresAt はUNIX秒。0の場合は有効期限を持たない。
	ExpiresAt int64 `json:"exp,omitempty"`
}

// Codec は共有シークレットでトークンを発行・検証する。
// 生成後はイミュータブルであり、複数のゴルーチンから同時に利用できる。
type Codec struct {
	secret []byte
	now    func() time.Time
}

// Option はCodecの生成オプション。
type Option func(*Codec)

// WithClock は有効期限判定に使う現在時刻の取得関数を差し替える。
func WithClock(now func() time.Time) Option {
	return func(c *Codec) {
		c.now = now
	}
}

// NewCodec は指定したシークレットを使うCodecを生成する。
func NewCodec(secret []byte, opts ...Option) *Codec {
	c := &Codec{
		secret: append([]byte(nil), secret...),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Issue はクレームをエンコードし、署名付きトークン文字列を返す。
func (c *Codec) Issue(claims Claims) (string, error) {
	if claims.UserID <= 0 {
		return "", fmt.Errorf("%w: user id must be positive", ErrInvalidClaims)
	}

	payload, err := json.Marshal(claims)
	if err != nil {
		return "", fmt.Errorf("failed to encode claims: %w", err)
	}

	encoded := base64.RawURLEncoding.EncodeToString(payload)
	return encoded + separator + c.sign(encoded), nil
}

// Verify はトークンを検証し、クレームを返す。
//
// 判定順序は 構造 → 署名 → ペイロード → 有効期限 で固定されている。
// 署名が一致しない限りペイロードの解釈も有効期限の判定も行わない。
func (c *Codec) Verify(tok string) (*Claims, error) {
	parts := strings.Split(tok, separator)
	if len(parts) != 2 {
		return nil, ErrMalformedToken
	}
	encoded, sig := parts[0], parts[1]

	expected := c.sign(encoded)
	if !hmac.Equal([]byte(expected), []byte(sig)) {
		return nil, ErrInvalidSignature
	}

	payload, err := base64.RawURLEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}

	var claims Claims
	if err := json.Unmarshal(payload, &claims); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	if claims.UserID <= 0 {
		return nil, fmt.Errorf("%w: missing user id", ErrMalformedPayload)
	}

	if claims.ExpiresAt != 0 && c.now().Unix() > claims.ExpiresAt {
		return nil, ErrExpired
	}

	return &claims, nil
}

// sign はエンコード済みペイロードに対するHMAC-SHA256を16進文字列で返す。
func (c *Codec) sign(encoded string) string {
	mac := hmac.New(sha256.New, c.secret)
	mac.Write([]byte(encoded))
	return hex.EncodeToString(mac.Sum(nil))
}
