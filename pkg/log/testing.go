package log

import (
	"bytes"
	"encoding/json"

	"github.com/rs/zerolog"
)

// TestLogger は zerolog の JSON 出力をメモリに保持するテスト用ロガー。
// 書き込みは ZerologLogger と同じ経路を通るため、エラーの "_detail" オブジェクトや
// error.code もそのまま検証できる。タイムスタンプは付与しない。
type TestLogger struct {
	*ZerologLogger
	buf *bytes.Buffer
}

// NewTestLogger は level 以上を記録する TestLogger と、その出力先バッファを返す
//
// 使用例:
//
//	logger, _ := log.NewTestLogger(log.LevelDebug)
//	checker := verify.NewChecker(verify.WithLogger(logger))
//	...
//	assert.True(t, logger.ContainsField(log.SampleKey, "test"))
func NewTestLogger(level Level) (*TestLogger, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	z := zerolog.New(buf).Level(toZerologLevel(level))
	return &TestLogger{ZerologLogger: &ZerologLogger{z: z}, buf: buf}, buf
}

// Entries は記録された各行をデコードして返す
func (t *TestLogger) Entries() ([]map[string]any, error) {
	var entries []map[string]any
	dec := json.NewDecoder(bytes.NewReader(t.buf.Bytes()))
	for dec.More() {
		var e map[string]any
		if err := dec.Decode(&e); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// ContainsMessage は msg と完全一致するメッセージの行があるかを返す
func (t *TestLogger) ContainsMessage(msg string) bool {
	return t.anyEntry(func(e map[string]any) bool { return e[zerolog.MessageFieldName] == msg })
}

// ContainsField は key の値が value と等しい行があるかを返す。
// 数値は JSON デコード後の float64 で比較される。
func (t *TestLogger) ContainsField(key string, value any) bool {
	return t.anyEntry(func(e map[string]any) bool {
		v, ok := e[key]
		return ok && v == value
	})
}

// ErrorCodes は error レベルの行に付いた error.code を記録順に返す
func (t *TestLogger) ErrorCodes() []string {
	entries, err := t.Entries()
	if err != nil {
		return nil
	}
	var codes []string
	for _, e := range entries {
		if e[zerolog.LevelFieldName] != zerolog.LevelErrorValue {
			continue
		}
		if code, ok := e[ErrorCodeKey].(string); ok {
			codes = append(codes, code)
		}
	}
	return codes
}

// Clear は記録を破棄する
func (t *TestLogger) Clear() {
	t.buf.Reset()
}

func (t *TestLogger) anyEntry(match func(map[string]any) bool) bool {
	entries, err := t.Entries()
	if err != nil {
		return false
	}
	for _, e := range entries {
		if match(e) {
			return true
		}
	}
	return false
}
