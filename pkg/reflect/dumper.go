package reflect

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"strings"

	"golang.org/x/text/encoding/unicode"
)

// DumpOptions controls StructDumper rendering.
type DumpOptions struct {
	JSON       bool
	Gap        string // indent unit repeated per level, e.g. "  "
	StartLevel int
}

// DumpError is one structured error collected while walking a buffer; the
// dumper keeps walking after a field fails and collects every error, but
// Dump returns only the first one, with empty output.
type DumpError struct {
	Path string
	Err  error
}

func (e DumpError) Error() string {
	if e.Path == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

// Dumper walks a TypeNode over a byte buffer and renders it as text or JSON.
type Dumper struct {
	resolver NodeResolver
	opts     DumpOptions
	errors   []DumpError
}

// NewDumper builds a Dumper against resolver (a *Catalogue or
// *ExtendedCatalogue) with the given rendering options.
func NewDumper(resolver NodeResolver, opts DumpOptions) *Dumper {
	return &Dumper{resolver: resolver, opts: opts}
}

// Dump renders buf against node. Returns the first collected error, if any.
func (d *Dumper) Dump(node TypeNode, buf []byte) (string, error) {
	d.errors = nil
	var sb strings.Builder
	d.dumpNode(&sb, "$", node, buf, d.opts.StartLevel)
	if len(d.errors) > 0 {
		return "", d.errors[0]
	}
	return sb.String(), nil
}

func (d *Dumper) fail(path string, err error) {
	d.errors = append(d.errors, DumpError{Path: path, Err: err})
}

func (d *Dumper) indent(level int) string {
	if d.opts.Gap == "" {
		return ""
	}
	return strings.Repeat(d.opts.Gap, level)
}

func isLineScalar(k NodeKind) bool {
	return k == KindScalar || k == KindBitfield || k == KindPointer || k == KindVoid
}

func (d *Dumper) dumpNode(sb *strings.Builder, path string, node TypeNode, buf []byte, level int) {
	if !node.Valid {
		d.fail(path, fmt.Errorf("invalid type node"))
		sb.WriteString("null")
		return
	}

	switch node.Kind {
	case KindScalar:
		d.dumpScalar(sb, path, node, buf)
	case KindBitfield:
		d.dumpBitfield(sb, path, node, buf)
	case KindPointer:
		d.dumpPointer(sb, path, buf)
	case KindArray:
		d.dumpArray(sb, path, node, buf, level)
	case KindStruct, KindClass, KindUnion:
		d.dumpAggregate(sb, path, node, buf, level)
	case KindVoid:
		sb.WriteString("null")
	default:
		d.fail(path, fmt.Errorf("unsupported node kind %s for dump", node.Kind))
		sb.WriteString("null")
	}
}

func (d *Dumper) dumpScalar(sb *strings.Builder, path string, node TypeNode, buf []byte) {
	text, quoted, err := ScalarDecode(node.Name, buf)
	if err != nil {
		d.fail(path, err)
		sb.WriteString("null")
		return
	}
	if d.opts.JSON && quoted {
		sb.WriteByte('"')
		sb.WriteString(text)
		sb.WriteByte('"')
		return
	}
	sb.WriteString(text)
}

// dumpBitfield decodes the underlying integer at the element's size and
// extracts (value >> startingPosition) & ((1<<bits)-1).
func (d *Dumper) dumpBitfield(sb *strings.Builder, path string, node TypeNode, buf []byte) {
	elem := d.resolver.Node(node.ElementTypeID)
	if !elem.Valid {
		d.fail(path, fmt.Errorf("bitfield element type %d not found", node.ElementTypeID))
		sb.WriteString("null")
		return
	}
	raw, err := readUint(buf, int(elem.Size))
	if err != nil {
		d.fail(path, err)
		sb.WriteString("null")
		return
	}
	mask := uint64(1)<<uint(node.Bits) - 1
	val := (raw >> uint(node.StartingPosition)) & mask
	fmt.Fprintf(sb, "%d", val)
}

func readUint(buf []byte, size int) (uint64, error) {
	if len(buf) < size {
		return 0, fmt.Errorf("short buffer: need %d, have %d", size, len(buf))
	}
	switch size {
	case 1:
		return uint64(buf[0]), nil
	case 2:
		return uint64(binary.LittleEndian.Uint16(buf)), nil
	case 4:
		return uint64(binary.LittleEndian.Uint32(buf)), nil
	case 8:
		return binary.LittleEndian.Uint64(buf), nil
	default:
		return 0, fmt.Errorf("unsupported integer width %d", size)
	}
}

// dumpPointer always renders a quoted hex literal, in both text and JSON
// modes -- matching the wire-level address rendering used for address-mode
// expression results.
func (d *Dumper) dumpPointer(sb *strings.Builder, path string, buf []byte) {
	v, err := readUint(buf, 8)
	if err != nil {
		d.fail(path, err)
		sb.WriteString("null")
		return
	}
	fmt.Fprintf(sb, "\"0x%016X\"", v)
}

func (d *Dumper) dumpArray(sb *strings.Builder, path string, node TypeNode, buf []byte, level int) {
	elem := d.resolver.Node(node.ElementTypeID)
	if !elem.Valid || elem.Size == 0 {
		d.fail(path, fmt.Errorf("array element type %d not found", node.ElementTypeID))
		sb.WriteString("null")
		return
	}

	if elem.Kind == KindScalar && (elem.Name == "char" || elem.Name == "int8_t" || elem.Name == "uint8_t") {
		d.dumpCString(sb, buf, node.Size)
		return
	}
	if elem.Kind == KindScalar && (elem.Name == "char16_t" || elem.Name == "wchar_t") {
		d.dumpWideString(sb, path, buf, node.Size)
		return
	}

	count := node.Size / elem.Size
	sb.WriteByte('[')
	multiline := !isLineScalar(elem.Kind)
	for i := uint64(0); i < count; i++ {
		if i > 0 {
			sb.WriteByte(',')
		}
		if multiline {
			sb.WriteByte('\n')
			sb.WriteString(d.indent(level + 1))
		}
		off := i * elem.Size
		end := off + elem.Size
		if end > uint64(len(buf)) {
			d.fail(fmt.Sprintf("%s[%d]", path, i), fmt.Errorf("buffer too short for element"))
			sb.WriteString("null")
			continue
		}
		d.dumpNode(sb, fmt.Sprintf("%s[%d]", path, i), elem, buf[off:end], level+1)
	}
	if multiline && count > 0 {
		sb.WriteByte('\n')
		sb.WriteString(d.indent(level))
	}
	sb.WriteByte(']')
}

// dumpCString reads a null-terminated C string up to max bytes and
// JSON-escapes control bytes, quote, backslash, and bytes >= 127.
func (d *Dumper) dumpCString(sb *strings.Builder, buf []byte, max uint64) {
	n := uint64(len(buf))
	if n > max {
		n = max
	}
	raw := buf[:n]
	if idx := bytes.IndexByte(raw, 0); idx >= 0 {
		raw = raw[:idx]
	}
	sb.WriteByte('"')
	sb.WriteString(jsonEscapeBytes(raw))
	sb.WriteByte('"')
}

var utf16LE = unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)

// dumpWideString decodes a null-terminated UTF-16 (char16_t/wchar_t) run
// and renders it the same way dumpCString renders narrow strings.
func (d *Dumper) dumpWideString(sb *strings.Builder, path string, buf []byte, max uint64) {
	n := uint64(len(buf))
	if n > max {
		n = max
	}
	raw := buf[:n-(n%2)]

	var units []uint16
	for i := 0; i+1 < len(raw); i += 2 {
		u := binary.LittleEndian.Uint16(raw[i : i+2])
		if u == 0 {
			break
		}
		units = append(units, u)
	}
	wideBytes := make([]byte, len(units)*2)
	for i, u := range units {
		binary.LittleEndian.PutUint16(wideBytes[i*2:], u)
	}
	decoded, err := utf16LE.NewDecoder().Bytes(wideBytes)
	if err != nil {
		d.fail(path, fmt.Errorf("decode wide string: %w", err))
		sb.WriteString("null")
		return
	}
	sb.WriteByte('"')
	sb.WriteString(jsonEscapeBytes(decoded))
	sb.WriteByte('"')
}

func jsonEscapeBytes(raw []byte) string {
	var sb strings.Builder
	for _, b := range raw {
		switch {
		case b == '"':
			sb.WriteString(`\"`)
		case b == '\\':
			sb.WriteString(`\\`)
		case b < 0x20 || b >= 0x7f:
			fmt.Fprintf(&sb, `\u%04x`, b)
		default:
			sb.WriteByte(b)
		}
	}
	return sb.String()
}

func (d *Dumper) dumpAggregate(sb *strings.Builder, path string, node TypeNode, buf []byte, level int) {
	openBrace, closeBrace := '{', '}'
	sb.WriteRune(openBrace)

	first := true
	d.resolver.EachField(node, func(field TypeNode) bool {
		if field.Kind != KindDataMemberField {
			return true
		}
		if !first {
			sb.WriteByte(',')
		}
		first = false
		sb.WriteByte('\n')
		sb.WriteString(d.indent(level + 1))

		name := field.Name
		if d.opts.JSON {
			fmt.Fprintf(sb, "%q: ", name)
		} else {
			fmt.Fprintf(sb, "%s: ", name)
		}

		elem := d.resolver.Node(field.ElementTypeID)
		if !elem.Valid {
			d.fail(path+"."+name, fmt.Errorf("field element type %d not found", field.ElementTypeID))
			sb.WriteString("null")
			return true
		}
		off := field.Offset
		end := off + elem.Size
		if end > uint64(len(buf)) {
			d.fail(path+"."+name, fmt.Errorf("buffer too short for field at offset %d", off))
			sb.WriteString("null")
			return true
		}
		d.dumpNode(sb, path+"."+name, elem, buf[off:end], level+1)
		return true
	})

	if !first {
		sb.WriteByte('\n')
		sb.WriteString(d.indent(level))
	}
	sb.WriteRune(closeBrace)
}
