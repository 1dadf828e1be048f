package headless

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/username/ruwps/internal/native"
)

func TestGetMessage_Order(t *testing.T) {
	b := New()
	const hwnd = native.HWND(1)
	var log []string

	_ = b.PostMessage(hwnd, native.WM_USER, 1, 0)
	b.Script(func() {
		log = append(log, "script")
		_ = b.PostMessage(hwnd, native.WM_USER, 2, 0)
	})
	b.At(50*time.Millisecond, func() { log = append(log, "action@"+b.Now().String()) })
	if err := b.SetTimer(hwnd, 7, 30*time.Millisecond); err != nil {
		t.Fatal(err)
	}

	var msg native.Msg
	for i := 0; i < 4; i++ {
		if !b.GetMessage(&msg) {
			t.Fatalf("GetMessage() = false at step %d", i)
		}
		switch msg.Message {
		case native.WM_USER:
			log = append(log, "user")
		case native.WM_TIMER:
			log = append(log, "timer@"+b.Now().String())
		}
	}
	b.KillTimer(hwnd, 7)
	if b.GetMessage(&msg) {
		t.Errorf("GetMessage() = true with nothing left, got %+v", msg)
	}

	want := []string{"user", "script", "user", "timer@30ms", "action@50ms", "timer@60ms"}
	if !reflect.DeepEqual(log, want) {
		t.Errorf("order = %v, want %v", log, want)
	}
}

func TestGetMessage_QuitStops(t *testing.T) {
	b := New()
	b.PostQuitMessage(0)
	_ = b.PostMessage(1, native.WM_USER, 0, 0)
	var msg native.Msg
	if b.GetMessage(&msg) {
		t.Fatal("GetMessage() = true for WM_QUIT")
	}
	if !b.GetMessage(&msg) || msg.Message != native.WM_USER {
		t.Errorf("message after quit = %+v", msg)
	}
}

func TestSetTimer_MinimumInterval(t *testing.T) {
	b := New()
	if err := b.SetTimer(1, 1, time.Millisecond); err != nil {
		t.Fatal(err)
	}
	var msg native.Msg
	b.GetMessage(&msg)
	if b.Now() != minTimerInterval {
		t.Errorf("first tick at %v, want %v", b.Now(), minTimerInterval)
	}
}

func TestFailNext(t *testing.T) {
	b := New()
	cause := errors.New("boom")
	b.FailNext("SetTimer", cause)
	err := b.SetTimer(1, 1, time.Second)
	if !errors.Is(err, native.ErrResource) || !errors.Is(err, cause) {
		t.Fatalf("SetTimer() error = %v", err)
	}
	if err := b.SetTimer(1, 1, time.Second); err != nil {
		t.Errorf("second SetTimer() error = %v", err)
	}
}

func TestDispatchToWindow(t *testing.T) {
	b := New()
	var got []uint32
	proc := func(hwnd native.HWND, msg uint32, wParam, lParam uintptr) uintptr {
		got = append(got, msg)
		return 5
	}
	if err := b.RegisterClass("c", proc, 0); err != nil {
		t.Fatal(err)
	}
	hwnd, err := b.CreateWindow("c", "title")
	if err != nil {
		t.Fatal(err)
	}
	if r := b.DispatchMessage(&native.Msg{Hwnd: hwnd, Message: native.WM_COMMAND}); r != 5 {
		t.Errorf("DispatchMessage() = %d", r)
	}
	b.DestroyWindow(hwnd)
	if r := b.DispatchMessage(&native.Msg{Hwnd: hwnd, Message: native.WM_COMMAND}); r != 0 {
		t.Errorf("dispatch to destroyed window = %d", r)
	}
	if len(got) == 0 || got[len(got)-1] != native.WM_COMMAND {
		t.Errorf("procedure saw %v", got)
	}
}

func TestMeasureText(t *testing.T) {
	b := New()
	tests := []struct {
		name  string
		text  string
		width int
		want  int
	}{
		{name: "empty", text: "", width: 40, want: lineHeight},
		{name: "fits", text: "hello", width: 40, want: lineHeight},
		{name: "wraps", text: "hello world again", width: 40, want: 3 * lineHeight},
		{name: "newlines", text: "a\nb", width: 40, want: 2 * lineHeight},
		{name: "long word", text: "abcdefghijklmnopqrstu", width: 40, want: 3 * lineHeight},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := b.MeasureText(tt.text, native.Font{}, tt.width); got != tt.want {
				t.Errorf("MeasureText() = %d, want %d", got, tt.want)
			}
		})
	}
}
