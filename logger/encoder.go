package logger

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/buffer"
	"go.uber.org/zap/zapcore"
)

const (
	colorReset  = "\x1b[0m"
	colorBold   = "\x1b[1m"
	colorDim    = "\x1b[2m"
	colorYellow = "\x1b[33m"
	colorRed    = "\x1b[31m"
)

// consoleEncoder is a compact encoder for diagnostic output on stderr.
// Format: "component  message  key=value key=value", levels shown only
// for warnings and above. Generated artifacts never pass through here.
type consoleEncoder struct {
	zapcore.Encoder // base encoder for field serialization
}

func newConsoleEncoder() *consoleEncoder {
	base := zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
	return &consoleEncoder{Encoder: base}
}

func (enc *consoleEncoder) Clone() zapcore.Encoder {
	return &consoleEncoder{Encoder: enc.Encoder.Clone()}
}

func (enc *consoleEncoder) EncodeEntry(ent zapcore.Entry, fields []zapcore.Field) (*buffer.Buffer, error) {
	out := buffer.NewPool().Get()

	if ent.Level != zapcore.InfoLevel && ent.Level != zapcore.DebugLevel {
		out.AppendString(levelTag(ent.Level))
		out.AppendString(" ")
	}

	if ent.LoggerName != "" {
		out.AppendString(colorDim)
		out.AppendString(ent.LoggerName)
		out.AppendString(colorReset)
		out.AppendString("  ")
	}

	out.AppendString(ent.Message)

	for _, field := range fields {
		out.AppendString("  ")
		out.AppendString(colorDim)
		out.AppendString(field.Key)
		out.AppendString("=")
		out.AppendString(colorReset)
		out.AppendString(fieldValue(field))
	}

	out.AppendString("\n")
	return out, nil
}

func levelTag(level zapcore.Level) string {
	switch level {
	case zapcore.WarnLevel:
		return colorBold + colorYellow + "WARNING:" + colorReset
	case zapcore.ErrorLevel, zapcore.DPanicLevel, zapcore.PanicLevel, zapcore.FatalLevel:
		return colorBold + colorRed + "ERROR:" + colorReset
	default:
		return ""
	}
}

// fieldValue renders a zap field without the JSON machinery; good enough
// for the scalar fields this tool logs.
func fieldValue(field zapcore.Field) string {
	enc := zapcore.NewMapObjectEncoder()
	field.AddTo(enc)
	if v, ok := enc.Fields[field.Key]; ok {
		if s, isStr := v.(string); isStr {
			return s
		}
		return fmt.Sprintf("%v", v)
	}
	return ""
}
