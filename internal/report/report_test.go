package report

import (
	"bytes"
	"testing"
)

func TestTaggedLines(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf)

	l.Infof("loading %s", "walk.gltf")
	l.Stepf("bake pass %d", 2)
	l.Warnf("no hips bone")
	l.Errorf("export failed")

	want := "[Info] loading walk.gltf\n" +
		"[Step] bake pass 2\n" +
		"[Warning] no hips bone\n" +
		"[Error] export failed\n"
	if got := buf.String(); got != want {
		t.Errorf("log stream:\n%q\nwant:\n%q", got, want)
	}
}

func TestRecording(t *testing.T) {
	l := New(nil)

	l.Infof("not recorded")
	l.Errorf("not recorded either")
	l.Warnf("first")
	l.Warnf("second")

	if w := l.Warnings(); len(w) != 2 || w[0] != "first" || w[1] != "second" {
		t.Errorf("warnings: %v", w)
	}
}

func TestNilWriter(t *testing.T) {
	l := New(nil)
	// Must not panic and must still record.
	l.Warnf("quiet warning")
	if len(l.Warnings()) != 1 {
		t.Error("nil-writer logger dropped the warning")
	}
}
