package gateways

import (
	"context"
	"debug/macho"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	libFooID  = "/opt/x/lib/libfoo.1.dylib"
	libBar    = "/opt/x/lib/libbar.dylib"
	libSystem = "/usr/lib/libSystem.B.dylib"
)

type dylibLoad struct {
	cmd  macho.LoadCmd
	name string
	// nameOffset overrides the name offset; zero places the name right after the fixed fields
	nameOffset uint32
}

// buildDylib assembles a little-endian 64-bit MH_DYLIB holding only dylib load commands
func buildDylib(cpu macho.Cpu, subCpu uint32, loads []dylibLoad) []byte {
	bo := binary.LittleEndian

	var cmds []byte
	for _, l := range loads {
		size := (24 + len(l.name) + 1 + 7) &^ 7
		offset := l.nameOffset
		if offset == 0 {
			offset = 24
		}
		cmd := bo.AppendUint32(nil, uint32(l.cmd))
		cmd = bo.AppendUint32(cmd, uint32(size))
		cmd = bo.AppendUint32(cmd, offset)
		cmd = bo.AppendUint32(cmd, 2)        // timestamp
		cmd = bo.AppendUint32(cmd, 0x010200) // current version
		cmd = bo.AppendUint32(cmd, 0x010000) // compatibility version
		cmd = append(cmd, l.name...)
		cmd = append(cmd, make([]byte, size-len(cmd))...)
		cmds = append(cmds, cmd...)
	}

	out := bo.AppendUint32(nil, macho.Magic64)
	out = bo.AppendUint32(out, uint32(cpu))
	out = bo.AppendUint32(out, subCpu)
	out = bo.AppendUint32(out, uint32(macho.TypeDylib))
	out = bo.AppendUint32(out, uint32(len(loads)))
	out = bo.AppendUint32(out, uint32(len(cmds)))
	out = bo.AppendUint32(out, 0) // flags
	out = bo.AppendUint32(out, 0) // reserved
	return append(out, cmds...)
}

// buildFat wraps thin images in a universal header, one page per slice
func buildFat(slices ...[]byte) []byte {
	const align = 12
	bo := binary.BigEndian

	out := bo.AppendUint32(nil, macho.MagicFat)
	out = bo.AppendUint32(out, uint32(len(slices)))
	for i, s := range slices {
		out = bo.AppendUint32(out, binary.LittleEndian.Uint32(s[4:8]))
		out = bo.AppendUint32(out, binary.LittleEndian.Uint32(s[8:12]))
		out = bo.AppendUint32(out, uint32((i+1)<<align))
		out = bo.AppendUint32(out, uint32(len(s)))
		out = bo.AppendUint32(out, align)
	}
	for i, s := range slices {
		out = append(out, make([]byte, (i+1)<<align-len(out))...)
		out = append(out, s...)
	}
	return out
}

func writeBinary(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0600))
	return path
}

func TestMachOInspector_ThinDylib(t *testing.T) {
	path := writeBinary(t, "libfoo.1.dylib", buildDylib(macho.CpuAmd64, 3, []dylibLoad{
		{cmd: macho.LoadCmdDylib, name: libBar},
		{cmd: loadCmdIDDylib, name: libFooID},
		{cmd: macho.LoadCmdDylib, name: libSystem},
		{cmd: macho.LoadCmdDylib, name: libBar},
	}))

	libs, err := NewMachOInspector().LinkedLibraries(context.Background(), path)
	require.NoError(t, err)

	// The install id leads even when it is not the first load command
	want := []string{libFooID, libBar, libSystem}
	if diff := cmp.Diff(want, libs); diff != "" {
		t.Errorf("LinkedLibraries() mismatch (-want +got):\n%s", diff)
	}
}

func TestMachOInspector_IDNameOffsetOutOfRange(t *testing.T) {
	path := writeBinary(t, "libfoo.1.dylib", buildDylib(macho.CpuAmd64, 3, []dylibLoad{
		{cmd: loadCmdIDDylib, name: libFooID, nameOffset: 200},
		{cmd: macho.LoadCmdDylib, name: libSystem},
	}))

	libs, err := NewMachOInspector().LinkedLibraries(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, []string{libSystem}, libs)
}

func TestMachOInspector_ExecutableHasNoID(t *testing.T) {
	path := writeBinary(t, "ffmpeg", buildDylib(macho.CpuArm64, 0, []dylibLoad{
		{cmd: macho.LoadCmdDylib, name: "@rpath/libavcodec.59.dylib"},
		{cmd: macho.LoadCmdDylib, name: libSystem},
	}))

	libs, err := NewMachOInspector().LinkedLibraries(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, []string{"@rpath/libavcodec.59.dylib", libSystem}, libs)
}

func TestMachOInspector_FatDylib(t *testing.T) {
	intel := buildDylib(macho.CpuAmd64, 3, []dylibLoad{
		{cmd: loadCmdIDDylib, name: libFooID},
		{cmd: macho.LoadCmdDylib, name: libBar},
		{cmd: macho.LoadCmdDylib, name: libSystem},
	})
	arm := buildDylib(macho.CpuArm64, 0, []dylibLoad{
		{cmd: loadCmdIDDylib, name: libFooID},
		{cmd: macho.LoadCmdDylib, name: libBar},
		{cmd: macho.LoadCmdDylib, name: "/opt/x/lib/libneon.dylib"},
		{cmd: macho.LoadCmdDylib, name: libSystem},
	})
	path := writeBinary(t, "libfoo.1.dylib", buildFat(intel, arm))

	libs, err := NewMachOInspector().LinkedLibraries(context.Background(), path)
	require.NoError(t, err)

	want := []string{libFooID, libBar, libSystem, "/opt/x/lib/libneon.dylib"}
	if diff := cmp.Diff(want, libs); diff != "" {
		t.Errorf("LinkedLibraries() mismatch (-want +got):\n%s", diff)
	}
}
