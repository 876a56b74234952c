package main

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"snapmap/internal/dungeon"
	"strings"
	"testing"
)

func TestRunWritesLayout(t *testing.T) {
	var stdout, stderr bytes.Buffer
	if err := run([]string{"-seed", "5"}, &stdout, &stderr); err != nil {
		t.Fatalf("run: %v\n%s", err, stderr.String())
	}
	if !strings.Contains(stdout.String(), `"modules"`) {
		t.Errorf("stdout is not a layout: %q", stdout.String())
	}
}

func TestRunIsDeterministic(t *testing.T) {
	var a, b, errs bytes.Buffer
	if err := run([]string{"-seed", "11"}, &a, &errs); err != nil {
		t.Fatal(err)
	}
	if err := run([]string{"-seed", "11"}, &b, &errs); err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(a.Bytes(), b.Bytes()) {
		t.Error("same seed produced different layouts")
	}
}

func TestRunStreamAndSave(t *testing.T) {
	out := filepath.Join(t.TempDir(), "layout.json")
	var stdout, stderr bytes.Buffer
	if err := run([]string{"-seed", "2", "-stream", "-out", out}, &stdout, &stderr); err != nil {
		t.Fatalf("run: %v", err)
	}
	l, err := dungeon.LoadLayout(out)
	if err != nil {
		t.Fatalf("LoadLayout: %v", err)
	}
	want := fmt.Sprintf("resolved %d door(s), %d wall(s)", l.DoorPairs(), l.Walls())
	if !strings.Contains(stderr.String(), want) {
		t.Errorf("stderr = %q, want it to contain %q", stderr.String(), want)
	}
	for _, c := range l.Connections {
		if c.HasSpawnedDoorActor {
			t.Error("saved layout should not carry spawn state")
			break
		}
	}
}

func TestRunMissingConfig(t *testing.T) {
	var stdout, stderr bytes.Buffer
	err := run([]string{"-config", filepath.Join(t.TempDir(), "none.json")}, &stdout, &stderr)
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("err = %v, want a not-exist error", err)
	}
}
