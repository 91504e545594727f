// Package dwarfsrc exposes the DWARF type information of ELF, Mach-O and PE
// binaries as a debuginfo.Source.
//
// Opening a file only builds the type index (offsets, kinds and qualified
// names). Individual nodes are decoded on demand by Node.
package dwarfsrc

import (
	"debug/dwarf"
	"debug/elf"
	"debug/macho"
	"debug/pe"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/go-delve/delve/pkg/dwarf/godwarf"

	"clayout/internal/debuginfo"
)

// ErrUnknownFormat is returned for files that are not ELF, Mach-O or PE.
var ErrUnknownFormat = errors.New("not an ELF, Mach-O or PE binary")

// File is one opened input. Not safe for concurrent use.
type File struct {
	path     string
	data     *dwarf.Data
	order    binary.ByteOrder
	closer   io.Closer
	addrSize int

	entries []debuginfo.TypeEntry
	names   map[debuginfo.Offset]debuginfo.TypeName
	// godwarf memo for type sizes
	types map[dwarf.Offset]godwarf.Type
}

var _ debuginfo.Source = (*File)(nil)

// Open reads the container and its DWARF sections and indexes every type.
func Open(path string) (*File, error) {
	f, err := openContainer(path)
	if err != nil {
		return nil, err
	}
	if err := f.buildIndex(); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("%s: indexing DWARF: %w", path, err)
	}
	return f, nil
}

func openContainer(path string) (*File, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, err
	}
	if ef, err := elf.Open(path); err == nil {
		d, err := ef.DWARF()
		if err != nil {
			_ = ef.Close()
			return nil, fmt.Errorf("%s: reading DWARF: %w", path, err)
		}
		return newFile(path, d, ef.ByteOrder, ef), nil
	}
	if mf, err := macho.Open(path); err == nil {
		d, err := mf.DWARF()
		if err != nil {
			_ = mf.Close()
			return nil, fmt.Errorf("%s: reading DWARF: %w", path, err)
		}
		return newFile(path, d, mf.ByteOrder, mf), nil
	}
	if pf, err := pe.Open(path); err == nil {
		d, err := pf.DWARF()
		if err != nil {
			_ = pf.Close()
			return nil, fmt.Errorf("%s: reading DWARF: %w", path, err)
		}
		return newFile(path, d, binary.LittleEndian, pf), nil
	}
	return nil, fmt.Errorf("%s: %w", path, ErrUnknownFormat)
}

func newFile(path string, d *dwarf.Data, order binary.ByteOrder, closer io.Closer) *File {
	return &File{
		path:   path,
		data:   d,
		order:  order,
		closer: closer,
		names:  make(map[debuginfo.Offset]debuginfo.TypeName),
		types:  make(map[dwarf.Offset]godwarf.Type),
	}
}

func (f *File) Path() string { return f.path }

// Types lists every indexed type node in metadata order.
func (f *File) Types() []debuginfo.TypeEntry { return f.entries }

// AddressSize is the pointer size of the first compile unit, 0 if unknown.
func (f *File) AddressSize() int { return f.addrSize }

// Close releases the underlying container.
func (f *File) Close() error {
	if f == nil || f.closer == nil {
		return nil
	}
	err := f.closer.Close()
	f.closer = nil
	return err
}

func (f *File) setIndex(entries []debuginfo.TypeEntry, addrSize int) {
	f.entries = entries
	f.addrSize = addrSize
	f.names = make(map[debuginfo.Offset]debuginfo.TypeName, len(entries))
	for _, e := range entries {
		f.names[e.Offset] = e.Name
	}
}
