package app

import "strings"

// Command はidorlabバイナリのサブコマンド。
type Command string

const (
	// CommandServe はラボのHTTP APIを起動する。引数なしの場合もこれになる。
	CommandServe Command = "serve"
	// CommandMigrate はusersテーブルを作成しシードを投入する（STORE_DRIVER=postgres用）。
	CommandMigrate Command = "migrate"
	// CommandHealthcheck は稼働中のサーバーの /health を叩いて終了コードで結果を返す。
	CommandHealthcheck Command = "healthcheck"
)

// knownCommands はサブコマンド名の対応表。
var knownCommands = map[string]Command{
	string(CommandServe):       CommandServe,
	string(CommandMigrate):     CommandMigrate,
	string(CommandHealthcheck): CommandHealthcheck,
}

// ParseCommand は先頭の引数をサブコマンドとして解釈する。
// 大文字小文字は区別しない。不明な名前はserveとして扱う。
func ParseCommand(args []string) Command {
	if len(args) == 0 {
		return CommandServe
	}
	if cmd, ok := knownCommands[strings.ToLower(strings.TrimSpace(args[0]))]; ok {
		return cmd
	}
	return CommandServe
}

// NeedsConfig はサブコマンドの実行前に設定の読み込みと検証が必要かどうかを返す。
// healthcheckはコンテナのHEALTHCHECKから頻繁に呼ばれるため、SERVER_PORTだけを見る。
func (c Command) NeedsConfig() bool {
	return c != CommandHealthcheck
}
