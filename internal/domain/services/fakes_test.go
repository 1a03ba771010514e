package services

import (
	"context"
	"errors"
	"fmt"
)

var errNotMachO = errors.New("not a Mach-O file")

// fakeInspector returns canned otool-style link tables keyed by path
type fakeInspector struct {
	links  map[string][]string
	fail   map[string]bool
	called []string
}

func (f *fakeInspector) LinkedLibraries(_ context.Context, path string) ([]string, error) {
	f.called = append(f.called, path)
	if f.fail[path] {
		return nil, errNotMachO
	}
	return f.links[path], nil
}

// fakeCopier records copies without touching the filesystem
type fakeCopier struct {
	copies [][2]string
	failOn string
}

func (f *fakeCopier) CopyFile(src, dst string) error {
	if src == f.failOn {
		return fmt.Errorf("open %s: permission denied", src)
	}
	f.copies = append(f.copies, [2]string{src, dst})
	return nil
}

type editCall struct {
	op   string
	path string
	old  string
	new  string
}

type fakeEditor struct {
	calls []editCall
	err   error
}

func (f *fakeEditor) SetID(_ context.Context, path, id string) error {
	f.calls = append(f.calls, editCall{op: "id", path: path, new: id})
	return f.err
}

func (f *fakeEditor) ChangeDependency(_ context.Context, path, oldRef, newRef string) error {
	f.calls = append(f.calls, editCall{op: "change", path: path, old: oldRef, new: newRef})
	return f.err
}
