// Package security はアプリケーションのセキュリティ機能を提供する。
//
// TextSanitizer はユーザーストアに保存された自由記述テキスト（bio）から
// HTMLを除去し、APIレスポンスに埋め込んでも安全なプレーンテキストにする。
// bluemondayのStrictPolicyを使い、全てのタグと属性を取り除く。
// 出力はJSONに埋め込むため、ポリシーが付けたHTMLエスケープは元の文字に戻す。
package security

import (
	"html"
	"strings"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"
)

// TextSanitizerService はプレーンテキスト化とプレビュー生成のインターフェースを定義する。
type TextSanitizerService interface {
	// Sanitize は全てのHTMLタグを除去したテキストを返す。
	// 空文字列の入力には空文字列を返す。&や<などの文字はエスケープせずそのまま残す。
	Sanitize(raw string) string

	// Preview はサニタイズ後のテキストを最大maxRunes文字に切り詰める。
	// 文字数はエスケープを戻した後のテキストで数える。切り詰めた場合は末尾に省略記号を付与する。
	Preview(raw string, maxRunes int) string
}

// ellipsis はプレビューを切り詰めた際に付与する省略記号。
const ellipsis = "…"

// textSanitizer はTextSanitizerServiceの実装。
// bluemondayのポリシーはスレッドセーフなので共有して使う。
type textSanitizer struct {
	policy *bluemonday.Policy
}

// NewTextSanitizer はTextSanitizerServiceの新しいインスタンスを生成する。
func NewTextSanitizer() *textSanitizer {
	return &textSanitizer{
		policy: bluemonday.StrictPolicy(),
	}
}

// Sanitize は全てのHTMLタグを除去したテキストを返す。
func (s *textSanitizer) Sanitize(raw string) string {
	if raw == "" {
		return ""
	}
	return strings.TrimSpace(html.UnescapeString(s.policy.Sanitize(raw)))
}

// Preview はサニタイズ後のテキストを最大maxRunes文字に切り詰める。
// maxRunesが0以下の場合は切り詰めない。
func (s *textSanitizer) Preview(raw string, maxRunes int) string {
	text := s.Sanitize(raw)
	if maxRunes <= 0 || utf8.RuneCountInString(text) <= maxRunes {
		return text
	}

	runes := []rune(text)
	return strings.TrimRight(string(runes[:maxRunes]), " ") + ellipsis
}
