package logger

import "github.com/ideamans/go-l10n"

func init() {
	l10n.Register("ja", l10n.LexiconMap{
		// Commands
		"Encoding %s into %s (%s)":               "%s を %s にエンコード中 (%s)",
		"Decoding %s into %s":                    "%s を %s にデコード中",
		"Stored %d bytes in %d frames at %s":     "%d バイトを %d フレームとして %s に保存しました",
		"Restored %d bytes from %d frames":       "%d フレームから %d バイトを復元しました",
		"Summary saved to %s":                    "サマリーを %s に保存しました",
		"Relay listening on %s, storing into %s": "リレーを %s で待ち受け中 (保存先 %s)",
		"Interrupted, shutting down...":          "中断されました。シャットダウン中...",

		// Orchestrator
		"Reading %s":                               "%s を読み込み中",
		"Failed to read input: %v":                 "入力の読み込みに失敗しました: %v",
		"Failed to pack payload: %v":               "ペイロードのフレーム化に失敗しました: %v",
		"Failed to persist frames: %v":             "フレームの保存に失敗しました: %v",
		"Failed to unpack frames: %v":              "フレームの復元に失敗しました: %v",
		"Failed to write manifest: %v":             "マニフェストの書き込みに失敗しました: %v",
		"Failed to read manifest: %v":              "マニフェストの読み込みに失敗しました: %v",
		"Failed to write output: %v":               "出力の書き込みに失敗しました: %v",
		"Failed to save debug manifest: %v":        "デバッグ用マニフェストの保存に失敗しました: %v",
		"Ignoring unreadable manifest: %v":         "読み込めないマニフェストを無視します: %v",
		"Using manifest %s":                        "マニフェスト %s を使用します",
		"Manifest check failed: %v":                "マニフェストの照合に失敗しました: %v",
		"Verifying stored frames":                  "保存したフレームを検証中",
		"Verification failed: %v":                  "検証に失敗しました: %v",
		"Encode completed in %s":                   "エンコードが %s で完了しました",
		"Decode completed in %s":                   "デコードが %s で完了しました",
		"Writing %d bytes to %s":                   "%d バイトを %s に書き込み中",
		"Payload differs from input at offset %d":  "ペイロードがオフセット %d で入力と異なります",
		"Payload matches input (%d bytes)":         "ペイロードは入力と一致しました (%d バイト)",
		"Inspected %s: %d frames, %d bytes":        "%s を調査しました: %d フレーム, %d バイト",
		"Frames stored as %s":                      "フレームを %s として保存しました",

		// Stages
		"Compressed %d bytes to %d bytes":         "%d バイトを %d バイトに圧縮しました",
		"Decompressed %d bytes to %d bytes":       "%d バイトを %d バイトに展開しました",
		"Packed %d bytes into %d frames":          "%d バイトを %d フレームに格納しました",
		"Packed %d bytes into %d frames of %s":    "%d バイトを %s の %d フレームに格納しました",
		"Unpacked %d bytes from %d frames":        "%d フレームから %d バイトを取り出しました",
		"Verified %d bytes in %d frames":          "%d フレーム中の %d バイトを検証しました",
		"Persisting %d frames to %s":              "%d フレームを %s に保存中",
		"Retrieved %d frames from %s":             "%s から %d フレームを取得しました",
		"Saved %d debug frames":                   "デバッグ用フレームを %d 枚保存しました",
		"Failed to save debug frame %d: %v":       "デバッグ用フレーム %d の保存に失敗しました: %v",
		"Failed to save contact sheet: %v":        "コンタクトシートの保存に失敗しました: %v",

		// Transports
		"Writing %d frames to %s":                  "%d フレームを %s に書き込み中",
		"Reading %d frames from %s":                "%s から %d フレームを読み込み中",
		"Removed %d stale frame files":             "古いフレームファイルを %d 個削除しました",
		"Encoding %d frames as %s/%s at %g fps":    "%d フレームを %s/%s (%g fps) でエンコード中",
		"Decoding frames from %s":                  "%s からフレームをデコード中",
		"Video written: %s (%d bytes)":             "動画を書き込みました: %s (%d バイト)",

		// Relay
		"Websocket upgrade failed: %v":        "WebSocketへのアップグレードに失敗しました: %v",
		"Reading request from %s failed: %v": "%s からのリクエストの読み込みに失敗しました: %v",
		"Relay request failed: %v":            "リレー要求に失敗しました: %v",
		"Stored %d frames as %s":              "%d フレームを %s として保存しました",
		"Sending %d frames of %s":             "%s の %d フレームを送信中",
		"Uploading %d frames to %s":           "%d フレームを %s にアップロード中",
		"Downloading %d frames from %s":       "%s から %d フレームをダウンロード中",
	})
}
