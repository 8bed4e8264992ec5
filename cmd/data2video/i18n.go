// Package main provides localization for the data2video CLI.
package main

import (
	"github.com/ideamans/go-l10n"
)

func init() {
	// Register Japanese translations for CLI messages.
	l10n.Register("ja", l10n.LexiconMap{
		// Flag categories
		"Frames":    "フレーム",
		"Transport": "転送方式",
		"Safety":    "安全性",
		"Debug":     "デバッグ",
		"Logging":   "ログ",

		// Root command
		"Store arbitrary files as lossless RGB video frames": "任意のファイルをロスレスなRGB動画フレームとして保存",
		"data2video packs any file into fixed-size RGB frames, stores them as a lossless video, " +
			"an image sequence or on a websocket relay, and restores the exact bytes.": "data2videoは任意のファイルを固定サイズのRGBフレームに詰め、" +
			"ロスレス動画・連番画像・WebSocketリレーのいずれかに保存し、元のバイト列を正確に復元します。",
		"Error: %s": "エラー: %s",

		// Commands
		"Encode a file into frames":                          "ファイルをフレームにエンコード",
		"Decode frames back into the original file":          "フレームを元のファイルにデコード",
		"Check that stored frames decode to a file":          "保存したフレームがファイルと一致するか確認",
		"Show header and frame statistics of stored frames":  "保存したフレームのヘッダーと統計を表示",
		"Serve the websocket frame relay":                    "WebSocketフレームリレーを起動",
		"Output video file or frame directory (required)":    "出力動画ファイルまたはフレームディレクトリ（必須）",
		"Output file path (required)":                        "出力ファイルパス（必須）",
		"Skip reading the frames back after storing them":    "保存後のフレーム読み戻し検証を省略",
		"Directory to save a contact sheet PNG into":         "コンタクトシートPNGの保存先ディレクトリ",
		"Maximum frames on the contact sheet":                "コンタクトシートに並べる最大フレーム数",
		"Address to listen on":                               "待ち受けアドレス",
		"Directory for relayed frame sequences":              "リレーされたフレームの保存先ディレクトリ",

		// Flags
		"YAML configuration file":                                        "YAML設定ファイル",
		"Log level (debug, info, warn, error)":                           "ログレベル (debug, info, warn, error)",
		"Suppress all log output":                                        "ログ出力をすべて抑制",
		"Path to ffmpeg executable (falls back to FFMPEG_PATH, then PATH)": "ffmpeg実行ファイルのパス（未指定時はFFMPEG_PATH、次にPATH）",
		"Frame size preset (original, hd, fullhd)":                       "フレームサイズのプリセット (original, hd, fullhd)",
		"Frame size as WIDTHxHEIGHT (overrides preset)":                  "フレームサイズ 幅x高さ（プリセットより優先）",
		"Header format (auto, length, tagged)":                           "ヘッダー形式 (auto, length, tagged)",
		"Compress the payload with zstd before framing":                  "フレーム化の前にzstdでペイロードを圧縮",
		"Frame building goroutines (0 = number of CPUs)":                 "フレーム生成のゴルーチン数（0 = CPU数）",
		"Frame transport (video, frames, relay)":                         "フレームの転送方式 (video, frames, relay)",
		"Lossless video codec (ffv1, x264rgb)":                           "ロスレス動画コーデック (ffv1, x264rgb)",
		"Video frame rate":                                               "動画のフレームレート",
		"ffmpeg encoder threads (0 = ffmpeg default)":                    "ffmpegエンコーダーのスレッド数（0 = ffmpegの既定値）",
		"Frame image format (png, bmp, tiff)":                            "フレーム画像の形式 (png, bmp, tiff)",
		"Digits in frame file names (0 = unpadded)":                      "フレームファイル名の桁数（0 = ゼロ埋めなし）",
		"Relay websocket URL (ws://host:port/)":                          "リレーのWebSocket URL (ws://host:port/)",
		"Do not write or read the sidecar manifest":                      "サイドカーマニフェストを読み書きしない",
		"Output execution summary to file (Markdown format)":             "実行サマリーをファイルに出力（Markdown形式）",
		"Enable debug output":                                            "デバッグ出力を有効化",
		"Directory for debug output":                                     "デバッグ出力先ディレクトリ",

		// Verify and inspect output
		"OK: %s matches %s (%d bytes, %d frames)":                  "OK: %s は %s と一致しました (%d バイト, %d フレーム)",
		"MISMATCH: %s differs from %s at offset %d (%d vs %d bytes)": "不一致: %s はオフセット %d で %s と異なります (%d / %d バイト)",
		"Stored Size":   "保存サイズ",
		"Compressed":    "圧縮",
		"Capacity":      "容量",
		"Padding":       "パディング",
		"Utilization":   "使用率",
		"Created":       "作成日時",
		"Contact Sheet": "コンタクトシート",
		"none":          "なし",
		"%d frames":     "%d フレーム",

		// Summary labels
		"Encode Summary":         "エンコードサマリー",
		"Decode Summary":         "デコードサマリー",
		"Run ID":                 "実行ID",
		"Input":                  "入力",
		"Handle":                 "ハンドル",
		"Output":                 "出力",
		"Duration":               "所要時間",
		"Payload":                "ペイロード",
		"Payload Size":           "ペイロードサイズ",
		"Compressed Size":        "圧縮後サイズ",
		"Ratio":                  "圧縮率",
		"SHA-256":                "SHA-256",
		"Frame Size":             "フレームサイズ",
		"Bytes per Frame":        "フレームあたりのバイト数",
		"Frame Count":            "フレーム数",
		"Header":                 "ヘッダー",
		"Kind":                   "種類",
		"Codec":                  "コーデック",
		"FPS":                    "FPS",
		"Checks":                 "検証",
		"Read-back Verification": "読み戻し検証",
		"Manifest":               "マニフェスト",
		"Digest Match":           "ダイジェスト一致",
		"Generated at":           "生成日時",
		"Yes":                    "はい",
		"No":                     "いいえ",
	})
}
