package services

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ochairo/depbundle/internal/domain/entities"
)

func TestInstallNameFixer_Plan(t *testing.T) {
	fixer := NewInstallNameFixer(nil, nil, nil, "", nil)
	const p = DefaultInstallNamePrefix

	tests := []struct {
		name string
		path string
		libs []string
		want []entities.InstallNameChange
	}{
		{
			name: "own id is replaced",
			path: "/bundle/Frameworks/libfoo.1.dylib",
			libs: []string{"/opt/x/lib/libfoo.1.dylib"},
			want: []entities.InstallNameChange{{Kind: entities.ChangeID, New: p + "libfoo.1.dylib"}},
		},
		{
			name: "non-system dependency",
			path: "/bundle/MacOS/ffmpeg",
			libs: []string{"/Users/dev/.conan/data/libvpx/lib/libvpx.7.dylib"},
			want: []entities.InstallNameChange{{
				Kind: entities.ChangeDependency,
				Old:  "/Users/dev/.conan/data/libvpx/lib/libvpx.7.dylib",
				New:  p + "libvpx.7.dylib",
			}},
		},
		{
			name: "framework keeps inner path",
			path: "/bundle/MacOS/ffmpeg",
			libs: []string{"/opt/x/Frameworks/Foo.framework/Versions/A/Foo"},
			want: []entities.InstallNameChange{{
				Kind: entities.ChangeDependency,
				Old:  "/opt/x/Frameworks/Foo.framework/Versions/A/Foo",
				New:  p + "Foo.framework/Versions/A/Foo",
			}},
		},
		{
			name: "bare and rpath references",
			path: "/bundle/MacOS/ffmpeg",
			libs: []string{"libvideoai.dylib", "@rpath/libtensorflow.2.dylib"},
			want: []entities.InstallNameChange{
				{Kind: entities.ChangeDependency, Old: "libvideoai.dylib", New: p + "libvideoai.dylib"},
				{Kind: entities.ChangeDependency, Old: "@rpath/libtensorflow.2.dylib", New: p + "libtensorflow.2.dylib"},
			},
		},
		{
			name: "system and already relative references are left alone",
			path: "/bundle/MacOS/ffmpeg",
			libs: []string{
				"/usr/lib/libSystem.B.dylib",
				"/System/Library/Frameworks/Metal.framework/Versions/A/Metal",
				"@executable_path/../Frameworks/libaom.3.dylib",
			},
			want: []entities.InstallNameChange{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := fixer.Plan(tt.path, tt.libs)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Plan() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestInstallNameFixer_CustomPrefixGetsTrailingSlash(t *testing.T) {
	fixer := NewInstallNameFixer(nil, nil, nil, "@loader_path/../lib", nil)
	got := fixer.Plan("/b/tool", []string{"/opt/x/libz.dylib"})
	require.Len(t, got, 1)
	assert.Equal(t, "@loader_path/../lib/libz.dylib", got[0].New)
}

func TestInstallNameFixer_FixAppliesChanges(t *testing.T) {
	inspector := &fakeInspector{links: map[string][]string{
		"/b/libfoo.dylib": {"/opt/x/libfoo.dylib", "/opt/x/libbar.dylib", "/usr/lib/libSystem.B.dylib"},
	}}
	editor := &fakeEditor{}

	err := NewInstallNameFixer(inspector, editor, nil, "", nil).Fix(context.Background(), "/b/libfoo.dylib")
	require.NoError(t, err)

	want := []editCall{
		{op: "id", path: "/b/libfoo.dylib", new: DefaultInstallNamePrefix + "libfoo.dylib"},
		{op: "change", path: "/b/libfoo.dylib", old: "/opt/x/libbar.dylib", new: DefaultInstallNamePrefix + "libbar.dylib"},
	}
	if diff := cmp.Diff(want, editor.calls, cmp.AllowUnexported(editCall{})); diff != "" {
		t.Errorf("editor calls mismatch (-want +got):\n%s", diff)
	}
}

func TestInstallNameFixer_UninspectableBinaryIsSkipped(t *testing.T) {
	inspector := &fakeInspector{fail: map[string]bool{"/b/readme": true}}
	editor := &fakeEditor{}

	err := NewInstallNameFixer(inspector, editor, nil, "", nil).Fix(context.Background(), "/b/readme")
	require.NoError(t, err)
	assert.Empty(t, editor.calls)
}

func TestInstallNameFixer_FixAllStopsOnEditorError(t *testing.T) {
	inspector := &fakeInspector{links: map[string][]string{
		"/b/a": {"/opt/x/liba.dylib"},
		"/b/b": {"/opt/x/libb.dylib"},
	}}
	editor := &fakeEditor{err: errors.New("install_name_tool: larger updated load commands do not fit")}

	err := NewInstallNameFixer(inspector, editor, nil, "", nil).FixAll(context.Background(), []string{"/b/a", "/b/b"})
	require.Error(t, err)
	assert.Len(t, editor.calls, 1)
	assert.NotContains(t, inspector.called, "/b/b")
}
