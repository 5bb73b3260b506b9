package bvh

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// scope is an open "{" block: either a joint body or the End Site of a joint.
type scope struct {
	joint   int
	endSite bool
}

// Load reads and parses the BVH file at path.
func Load(path string) (*Document, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("bvh: open %s: %w", path, err)
	}
	defer file.Close()

	doc, err := Parse(file)
	if err != nil {
		return nil, fmt.Errorf("bvh: parse %s: %w", path, err)
	}
	return doc, nil
}

// Parse reads BVH text. Only the structure needed to extract joint records and
// motion rows is checked. Short motion rows are kept as they are; rows with
// more values than declared channels are rejected.
func Parse(r io.Reader) (*Document, error) {
	doc := &Document{}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 64*1024*1024)

	var stack []scope
	var pending *scope
	channelTotal := 0
	inMotion := false
	frameTimeFound := false
	columns := 0
	lineNo := 0

	for scanner.Scan() {
		lineNo++
		parts := strings.Fields(scanner.Text())
		if len(parts) == 0 {
			continue
		}

		if frameTimeFound {
			row, err := parseFloats(parts)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo, err)
			}
			if len(row) > columns {
				return nil, fmt.Errorf("%w: line %d: frame %d has %d values for %d channels", ErrSyntax, lineNo, len(doc.Motion), len(row), columns)
			}
			doc.Motion = append(doc.Motion, row)
			continue
		}

		if inMotion {
			switch {
			case parts[0] == "Frames:" && len(parts) == 2:
				n, err := strconv.Atoi(parts[1])
				if err != nil || n < 0 {
					return nil, fmt.Errorf("%w: line %d: bad frame count %q", ErrSyntax, lineNo, parts[1])
				}
				doc.Frames = n
			case parts[0] == "Frame" && len(parts) == 3 && parts[1] == "Time:":
				t, err := strconv.ParseFloat(parts[2], 64)
				if err != nil {
					return nil, fmt.Errorf("%w: line %d: bad frame time %q", ErrSyntax, lineNo, parts[2])
				}
				doc.FrameTime = t
				frameTimeFound = true
				columns = doc.ChannelCount()
			default:
				return nil, fmt.Errorf("%w: line %d: unexpected %q in motion header", ErrSyntax, lineNo, parts[0])
			}
			continue
		}

		switch key := strings.ToUpper(parts[0]); key {
		case "HIERARCHY":
		case "ROOT", "JOINT":
			if len(parts) < 2 {
				return nil, fmt.Errorf("%w: line %d: %s without a name", ErrSyntax, lineNo, key)
			}
			parent := -1
			if key == "ROOT" {
				if len(doc.Joints) > 0 {
					return nil, fmt.Errorf("%w: line %d: only one ROOT is supported", ErrSyntax, lineNo)
				}
			} else {
				if len(stack) == 0 || stack[len(stack)-1].endSite {
					return nil, fmt.Errorf("%w: line %d: JOINT outside of a joint body", ErrSyntax, lineNo)
				}
				parent = stack[len(stack)-1].joint
			}
			index := len(doc.Joints)
			doc.Joints = append(doc.Joints, JointRecord{
				Name:   strings.Join(parts[1:], " "),
				Parent: parent,
			})
			if parent >= 0 {
				doc.Joints[parent].Children = append(doc.Joints[parent].Children, index)
			}
			pending = &scope{joint: index}
		case "END":
			if len(stack) == 0 || stack[len(stack)-1].endSite {
				return nil, fmt.Errorf("%w: line %d: End Site outside of a joint body", ErrSyntax, lineNo)
			}
			pending = &scope{joint: stack[len(stack)-1].joint, endSite: true}
		case "{":
			if pending == nil {
				return nil, fmt.Errorf("%w: line %d: unexpected {", ErrSyntax, lineNo)
			}
			stack = append(stack, *pending)
			pending = nil
		case "}":
			if len(stack) == 0 {
				return nil, fmt.Errorf("%w: line %d: unbalanced }", ErrSyntax, lineNo)
			}
			stack = stack[:len(stack)-1]
		case "OFFSET":
			if len(stack) == 0 {
				return nil, fmt.Errorf("%w: line %d: OFFSET outside of a block", ErrSyntax, lineNo)
			}
			offset, err := parseVector(parts[1:])
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo, err)
			}
			top := stack[len(stack)-1]
			if top.endSite {
				doc.Joints[top.joint].EndSite = &offset
			} else {
				doc.Joints[top.joint].Offset = offset
			}
		case "CHANNELS":
			if len(stack) == 0 || stack[len(stack)-1].endSite {
				return nil, fmt.Errorf("%w: line %d: CHANNELS outside of a joint body", ErrSyntax, lineNo)
			}
			if len(parts) < 2 {
				return nil, fmt.Errorf("%w: line %d: CHANNELS without a count", ErrSyntax, lineNo)
			}
			n, err := strconv.Atoi(parts[1])
			if err != nil || n != len(parts)-2 {
				return nil, fmt.Errorf("%w: line %d: channel count %q does not match %d names", ErrSyntax, lineNo, parts[1], len(parts)-2)
			}
			channels := make([]ChannelKind, n)
			for i, token := range parts[2:] {
				if channels[i], err = ParseChannelKind(token); err != nil {
					return nil, fmt.Errorf("line %d: %w", lineNo, err)
				}
			}
			joint := &doc.Joints[stack[len(stack)-1].joint]
			joint.Channels = channels
			joint.ChannelOffset = channelTotal
			channelTotal += n
		case "MOTION":
			if len(stack) != 0 {
				return nil, fmt.Errorf("%w: line %d: %d unclosed blocks before MOTION", ErrSyntax, lineNo, len(stack))
			}
			inMotion = true
		default:
			return nil, fmt.Errorf("%w: line %d: unexpected %q", ErrSyntax, lineNo, parts[0])
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("bvh: read: %w", err)
	}
	if len(stack) != 0 {
		return nil, fmt.Errorf("%w: %d unclosed blocks", ErrSyntax, len(stack))
	}

	return doc, nil
}

func parseVector(fields []string) ([3]float64, error) {
	var v [3]float64
	if len(fields) != 3 {
		return v, fmt.Errorf("%w: expected 3 values, got %d", ErrSyntax, len(fields))
	}
	for i, field := range fields {
		f, err := strconv.ParseFloat(field, 64)
		if err != nil {
			return v, fmt.Errorf("%w: bad number %q", ErrSyntax, field)
		}
		v[i] = f
	}
	return v, nil
}

func parseFloats(fields []string) ([]float64, error) {
	row := make([]float64, len(fields))
	for i, field := range fields {
		f, err := strconv.ParseFloat(field, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: bad number %q", ErrSyntax, field)
		}
		row[i] = f
	}
	return row, nil
}
