package security

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestSanitize_StripsTags(t *testing.T) {
	sanitizer := NewTextSanitizer()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"空文字列", "", ""},
		{"プレーンテキストはそのまま", "hello world", "hello world"},
		{"インラインタグを除去", "Loves <b>tokens</b> and coffee.", "Loves tokens and coffee."},
		{"scriptを中身ごと除去", `hi<script>alert(1)</script>`, "hi"},
		{"イベント属性付きタグを除去", `<img src=x onerror="alert(1)">bio`, "bio"},
		{"前後の空白を除去", "  <p>bio</p>  ", "bio"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := sanitizer.Sanitize(tt.input)
			if got != tt.want {
				t.Errorf("Sanitize(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestSanitize_StableForMarkupFreeOutput(t *testing.T) {
	sanitizer := NewTextSanitizer()

	input := `<a href="javascript:alert(1)">click</a> me & you`
	once := sanitizer.Sanitize(input)
	twice := sanitizer.Sanitize(once)
	if once != twice {
		t.Errorf("Sanitize changed its own output: %q -> %q", once, twice)
	}
	if strings.Contains(once, "<a") {
		t.Errorf("Sanitize output still contains markup: %q", once)
	}
}

// 記号を含むプレーンテキストがエスケープされずにそのまま返ること
func TestSanitize_KeepsPlainTextPunctuation(t *testing.T) {
	sanitizer := NewTextSanitizer()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"アンパサンド", "Tom & Jerry", "Tom & Jerry"},
		{"シングルクォート", "Jerry's", "Jerry's"},
		{"ダブルクォート", `a "fan"`, `a "fan"`},
		{"不等号", "1 < 2", "1 < 2"},
		{"組み合わせ", `Tom & Jerry's "fan" 1 < 2`, `Tom & Jerry's "fan" 1 < 2`},
		{"タグと記号の混在", "<b>R&D</b> lead", "R&D lead"},
		{"エスケープ済み文字列は一度だけ戻す", "&amp;", "&"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := sanitizer.Sanitize(tt.input)
			if got != tt.want {
				t.Errorf("Sanitize(%q) = %q, want %q", tt.input, got, tt.want)
			}
			if strings.Contains(got, "&amp;") || strings.Contains(got, "&#") {
				t.Errorf("Sanitize(%q) returned escaped text %q", tt.input, got)
			}
		})
	}
}

func TestPreview_Truncates(t *testing.T) {
	sanitizer := NewTextSanitizer()

	got := sanitizer.Preview("abcdefghij", 4)
	if got != "abcd…" {
		t.Errorf("Preview = %q, want %q", got, "abcd…")
	}
}

func TestPreview_CountsRunesNotBytes(t *testing.T) {
	sanitizer := NewTextSanitizer()

	got := sanitizer.Preview("セキュリティ訓練用のプロフィール", 6)
	if utf8.RuneCountInString(got) != 7 {
		t.Errorf("Preview rune count = %d, want 7 (6 + ellipsis)", utf8.RuneCountInString(got))
	}
	if !strings.HasPrefix(got, "セキュリティ") {
		t.Errorf("Preview = %q, want prefix %q", got, "セキュリティ")
	}
}

func TestPreview_ShortTextUnchanged(t *testing.T) {
	sanitizer := NewTextSanitizer()

	if got := sanitizer.Preview("<b>short</b>", 40); got != "short" {
		t.Errorf("Preview = %q, want %q", got, "short")
	}
	if got := sanitizer.Preview("no limit", 0); got != "no limit" {
		t.Errorf("Preview with limit 0 = %q, want %q", got, "no limit")
	}
}

// 切り詰め位置に記号があってもエスケープ途中で切れないこと
func TestPreview_TruncatesAfterUnescaping(t *testing.T) {
	sanitizer := NewTextSanitizer()

	tests := []struct {
		name     string
		input    string
		maxRunes int
		want     string
	}{
		{"アンパサンドが末尾", "abc & def", 5, "abc &…"},
		{"不等号が末尾", "1 < 2 < 3", 3, "1 <…"},
		{"クォートが末尾", `say "hi" now`, 5, `say "…`},
		{"長いbio", `Tom & Jerry's "fan" 1 < 2`, 23, `Tom & Jerry's "fan" 1 <…`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := sanitizer.Preview(tt.input, tt.maxRunes)
			if got != tt.want {
				t.Errorf("Preview(%q, %d) = %q, want %q", tt.input, tt.maxRunes, got, tt.want)
			}
		})
	}
}
