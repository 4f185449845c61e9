package platform

import (
	"fmt"
	"testing"

	"github.com/go-drift/notification/pkg/errors"
)

type tick struct {
	ID   int64
	Type string
}

func parseTick(data any) (tick, error) {
	m, ok := AsMap(data)
	if !ok {
		return tick{}, &errors.ParseError{Channel: "test/stream", DataType: "tick", Got: data}
	}
	id, ok := AsInt64(m["id"])
	if !ok {
		return tick{}, fmt.Errorf("missing id in %v", m)
	}
	return tick{ID: id, Type: AsString(m["type"])}, nil
}

func TestStreamParsesEvents(t *testing.T) {
	SetupTestBridge(t.Cleanup)

	var reported []*errors.BridgeError
	old := errors.DefaultHandler
	errors.SetHandler(&errorCapture{fn: func(err *errors.BridgeError) { reported = append(reported, err) }})
	defer errors.SetHandler(old)

	stream := NewStream(NewEventChannel("test/stream"), parseTick)
	var got []tick
	unsubscribe := stream.Listen(func(v tick) { got = append(got, v) })

	HandleEvent("test/stream", []byte(`{"id":7,"type":"show"}`))
	HandleEvent("test/stream", []byte(`"garbage"`))

	if len(got) != 1 || got[0] != (tick{ID: 7, Type: "show"}) {
		t.Errorf("unexpected events %v", got)
	}
	if len(reported) != 1 || reported[0].Kind != errors.KindParsing || reported[0].Channel != "test/stream" {
		t.Errorf("expected one parsing report, got %v", reported)
	}

	unsubscribe()
	HandleEvent("test/stream", []byte(`{"id":8,"type":"click"}`))
	if len(got) != 1 {
		t.Errorf("unsubscribed listener still received events: %v", got)
	}
	if stream.Channel().SubscriberCount() != 0 {
		t.Error("expected no subscribers after unsubscribe")
	}
}

func TestConvertHelpers(t *testing.T) {
	if v, ok := AsInt64(float64(42)); !ok || v != 42 {
		t.Errorf("AsInt64(float64) = %v, %v", v, ok)
	}
	if _, ok := AsInt64("42"); ok {
		t.Error("AsInt64 should reject strings")
	}
	if AsString([]byte("x")) != "x" || AsString(3) != "" {
		t.Error("AsString mismatch")
	}
	if !AsBool(true) || !AsBool("true") || AsBool("yes") || AsBool(nil) {
		t.Error("AsBool mismatch")
	}
	m, ok := AsMap(map[any]any{"a": 1, 2: "skip"})
	if !ok || len(m) != 1 || m["a"] != 1 {
		t.Errorf("AsMap(map[any]any) = %v, %v", m, ok)
	}
	if _, ok := AsMap("nope"); ok {
		t.Error("AsMap should reject non-maps")
	}
}

func TestJsonCodec(t *testing.T) {
	codec := JsonCodec{}
	if v, err := codec.Decode(nil); v != nil || err != nil {
		t.Errorf("Decode(nil) = %v, %v", v, err)
	}

	var dst struct {
		Title string `json:"title"`
	}
	if err := codec.DecodeInto([]byte(`{"title":"Hi"}`), &dst); err != nil || dst.Title != "Hi" {
		t.Errorf("DecodeInto = %+v, %v", dst, err)
	}
}

type errorCapture struct {
	fn func(*errors.BridgeError)
}

func (c *errorCapture) HandleError(err *errors.BridgeError) { c.fn(err) }
func (c *errorCapture) HandlePanic(*errors.PanicError)      {}

func TestStreamListenWithDone(t *testing.T) {
	SetupTestBridge(t.Cleanup)

	stream := NewStream(NewEventChannel("test/ended"), parseTick)
	ended := 0
	stream.ListenWithDone(func(tick) {}, func() { ended++ })

	if err := HandleEventDone("test/ended"); err != nil {
		t.Fatalf("HandleEventDone: %v", err)
	}
	if ended != 1 {
		t.Errorf("done ran %d times, want 1", ended)
	}
	if n := stream.Channel().SubscriberCount(); n != 0 {
		t.Errorf("SubscriberCount = %d, want 0", n)
	}
}
