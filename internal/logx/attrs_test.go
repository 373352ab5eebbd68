package logx

import (
	"bytes"
	"errors"
	"log/slog"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError(t *testing.T) {
	attr := Error(errors.New("boom"))
	assert.Equal(t, "error", attr.Key)
	assert.Equal(t, "boom", attr.Value.String())

	assert.Equal(t, "<nil>", Error(nil).Value.String())
}

func TestPanic(t *testing.T) {
	attr := Panic(42)
	assert.Equal(t, "panic", attr.Key)
	assert.Equal(t, "42", attr.Value.String())
}

func TestType(t *testing.T) {
	attr := Type("event", reflect.TypeFor[bytes.Buffer]())
	assert.Equal(t, "bytes.Buffer", attr.Value.String())
	assert.Equal(t, "<nil>", Type("event", nil).Value.String())
}

func TestNamed(t *testing.T) {
	var buf bytes.Buffer
	base := slog.New(slog.NewTextHandler(&buf, nil))

	Named(base, "eventbus").Info("hello")

	assert.Contains(t, buf.String(), "logger=eventbus")
	assert.Contains(t, buf.String(), "msg=hello")
}
