package dwarfsrc

import (
	"debug/dwarf"
	"encoding/binary"
	"testing"
)

const (
	formString      = 0x08
	formData1       = 0x0b
	formSdata       = 0x0d
	formRef4        = 0x13
	formExprloc     = 0x18
	formFlagPresent = 0x19
)

type attrVal struct {
	attr dwarf.Attr
	form byte
	val  any
}

func aName(s string) attrVal              { return attrVal{dwarf.AttrName, formString, s} }
func aData(a dwarf.Attr, v int) attrVal   { return attrVal{a, formData1, v} }
func aSdata(a dwarf.Attr, v int) attrVal  { return attrVal{a, formSdata, v} }
func aRef(a dwarf.Attr, l string) attrVal { return attrVal{a, formRef4, l} }
func aFlag(a dwarf.Attr) attrVal          { return attrVal{attr: a, form: formFlagPresent} }
func aExpr(a dwarf.Attr, b ...byte) attrVal {
	return attrVal{a, formExprloc, b}
}

// infoBuilder encodes one DWARF 4 compile unit with 8-byte addresses.
type infoBuilder struct {
	t      *testing.T
	abbrev []byte
	info   []byte
	codes  uint64
	labels map[string]uint32
	fixups map[int]string
}

func newInfoBuilder(t *testing.T) *infoBuilder {
	b := &infoBuilder{
		t:      t,
		info:   make([]byte, 11),
		labels: make(map[string]uint32),
		fixups: make(map[int]string),
	}
	binary.LittleEndian.PutUint16(b.info[4:], 4)
	b.info[10] = 8
	return b
}

func uleb(out []byte, v uint64) []byte { return binary.AppendUvarint(out, v) }

func sleb(out []byte, v int64) []byte {
	for {
		c := byte(v & 0x7f)
		v >>= 7
		if (v == 0 && c&0x40 == 0) || (v == -1 && c&0x40 != 0) {
			return append(out, c)
		}
		out = append(out, c|0x80)
	}
}

func (b *infoBuilder) die(label string, tag dwarf.Tag, children bool, attrs ...attrVal) {
	b.codes++
	b.abbrev = uleb(b.abbrev, b.codes)
	b.abbrev = uleb(b.abbrev, uint64(tag))
	if children {
		b.abbrev = append(b.abbrev, 1)
	} else {
		b.abbrev = append(b.abbrev, 0)
	}
	for _, a := range attrs {
		b.abbrev = uleb(b.abbrev, uint64(a.attr))
		b.abbrev = uleb(b.abbrev, uint64(a.form))
	}
	b.abbrev = append(b.abbrev, 0, 0)

	if label != "" {
		b.labels[label] = uint32(len(b.info))
	}
	b.info = uleb(b.info, b.codes)
	for _, a := range attrs {
		switch a.form {
		case formString:
			b.info = append(b.info, a.val.(string)...)
			b.info = append(b.info, 0)
		case formData1:
			b.info = append(b.info, byte(a.val.(int)))
		case formSdata:
			b.info = sleb(b.info, int64(a.val.(int)))
		case formRef4:
			b.fixups[len(b.info)] = a.val.(string)
			b.info = append(b.info, 0, 0, 0, 0)
		case formExprloc:
			expr := a.val.([]byte)
			b.info = uleb(b.info, uint64(len(expr)))
			b.info = append(b.info, expr...)
		}
	}
}

func (b *infoBuilder) end() { b.info = append(b.info, 0) }

func (b *infoBuilder) off(label string) uint64 {
	b.t.Helper()
	off, ok := b.labels[label]
	if !ok {
		b.t.Fatalf("no label %q", label)
	}
	return uint64(off)
}

func (b *infoBuilder) file() *File {
	b.t.Helper()
	for pos, label := range b.fixups {
		binary.LittleEndian.PutUint32(b.info[pos:], uint32(b.off(label)))
	}
	binary.LittleEndian.PutUint32(b.info[0:], uint32(len(b.info)-4))
	abbrev := append(append([]byte(nil), b.abbrev...), 0)
	d, err := dwarf.New(abbrev, nil, nil, b.info, nil, nil, nil, nil)
	if err != nil {
		b.t.Fatalf("dwarf.New: %v", err)
	}
	f := newFile("synthetic.o", d, binary.LittleEndian, nil)
	if err := f.buildIndex(); err != nil {
		b.t.Fatalf("buildIndex: %v", err)
	}
	return f
}

const (
	encSigned     = 5
	encSignedChar = 6
)

// sample encodes:
//
//	namespace ns { struct Foo { int a; int b:3; char c:4; char d; static int s; }; }
//	ns::Foo *p; void *v; int arr[3]; enum E { X, Y = -1 }; struct Fwd;
//	typedef int MyInt; union U { int i; char c; };
func sample(t *testing.T) (*File, *infoBuilder) {
	b := newInfoBuilder(t)
	b.die("", dwarf.TagCompileUnit, true, aName("t.cc"))
	b.die("int", dwarf.TagBaseType, false, aName("int"), aData(dwarf.AttrByteSize, 4), aData(dwarf.AttrEncoding, encSigned))
	b.die("char", dwarf.TagBaseType, false, aName("char"), aData(dwarf.AttrByteSize, 1), aData(dwarf.AttrEncoding, encSignedChar))

	b.die("ns", dwarf.TagNamespace, true, aName("ns"))
	b.die("foo", dwarf.TagStructType, true, aName("Foo"), aData(dwarf.AttrByteSize, 8))
	b.die("", dwarf.TagMember, false, aName("a"), aRef(dwarf.AttrType, "int"), aData(dwarf.AttrDataMemberLoc, 0))
	b.die("", dwarf.TagMember, false, aName("b"), aRef(dwarf.AttrType, "int"),
		aData(dwarf.AttrDataBitOffset, 32), aData(dwarf.AttrBitSize, 3))
	b.die("", dwarf.TagMember, false, aName("c"), aRef(dwarf.AttrType, "char"),
		aData(dwarf.AttrByteSize, 1), aData(dwarf.AttrBitOffset, 0), aData(dwarf.AttrBitSize, 4),
		aData(dwarf.AttrDataMemberLoc, 5))
	b.die("", dwarf.TagMember, false, aName("d"), aRef(dwarf.AttrType, "char"),
		aExpr(dwarf.AttrDataMemberLoc, opPlusUconst, 6))
	b.die("", dwarf.TagMember, false, aName("s"), aRef(dwarf.AttrType, "int"),
		aFlag(dwarf.AttrExternal), aFlag(dwarf.AttrDeclaration))
	b.end() // Foo
	b.end() // ns

	b.die("ptr", dwarf.TagPointerType, false, aRef(dwarf.AttrType, "foo"))
	b.die("vptr", dwarf.TagPointerType, false, aData(dwarf.AttrByteSize, 8))
	b.die("arr", dwarf.TagArrayType, true, aRef(dwarf.AttrType, "int"))
	b.die("", dwarf.TagSubrangeType, false, aData(dwarf.AttrCount, 3))
	b.end()
	b.die("enum", dwarf.TagEnumerationType, true, aName("E"), aData(dwarf.AttrByteSize, 4))
	b.die("", dwarf.TagEnumerator, false, aName("X"), aSdata(dwarf.AttrConstValue, 0))
	b.die("", dwarf.TagEnumerator, false, aName("Y"), aSdata(dwarf.AttrConstValue, -1))
	b.end()
	b.die("fwd", dwarf.TagStructType, false, aName("Fwd"), aFlag(dwarf.AttrDeclaration))
	b.die("myint", dwarf.TagTypedef, false, aName("MyInt"), aRef(dwarf.AttrType, "int"))
	b.die("union", dwarf.TagUnionType, true, aName("U"), aData(dwarf.AttrByteSize, 4))
	b.die("", dwarf.TagMember, false, aName("i"), aRef(dwarf.AttrType, "int"))
	b.die("", dwarf.TagMember, false, aName("c"), aRef(dwarf.AttrType, "char"))
	b.end()
	b.end() // compile unit
	return b.file(), b
}
