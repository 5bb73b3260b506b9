package gav

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/sbinet/npyio"
)

var npyMagic = []byte("\x93NUMPY")

// WriteNpy writes t as a version 1.0 .npy array of little-endian float32 in C order.
func WriteNpy(w io.Writer, t *Tensor) error {
	header := fmt.Sprintf("{'descr': '<f4', 'fortran_order': False, 'shape': (%d, %d, %d), }",
		t.shape[0], t.shape[1], t.shape[2])
	// magic, version and header length take 10 bytes; the header ends in '\n'.
	if pad := (10 + len(header) + 1) % 64; pad != 0 {
		header += strings.Repeat(" ", 64-pad)
	}
	header += "\n"

	bw := bufio.NewWriter(w)
	bw.Write(npyMagic)
	bw.Write([]byte{1, 0})
	if err := binary.Write(bw, binary.LittleEndian, uint16(len(header))); err != nil {
		return fmt.Errorf("gav: write npy header: %w", err)
	}
	bw.WriteString(header)
	if err := binary.Write(bw, binary.LittleEndian, t.Data()); err != nil {
		return fmt.Errorf("gav: write npy data: %w", err)
	}
	return bw.Flush()
}

// ReadNpy reads a 3-D little-endian float32 C-order .npy array.
func ReadNpy(r io.Reader) (*Tensor, error) {
	npy, err := npyio.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("gav: read npy header: %w", err)
	}

	descr := npy.Header.Descr
	if descr.Type != "<f4" {
		return nil, fmt.Errorf("%w: dtype %s, want <f4", ErrShapeMismatch, descr.Type)
	}
	if descr.Fortran {
		return nil, fmt.Errorf("%w: fortran order", ErrShapeMismatch)
	}
	if len(descr.Shape) != 3 {
		return nil, fmt.Errorf("%w: %d dimensions, want 3", ErrShapeMismatch, len(descr.Shape))
	}

	var data []float32
	if err := npy.Read(&data); err != nil {
		return nil, fmt.Errorf("gav: read npy data: %w", err)
	}
	return NewTensor(Shape{descr.Shape[0], descr.Shape[1], descr.Shape[2]}, data)
}

// Save writes t to path. The file appears only once it is complete.
func Save(path string, t *Tensor) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".gav-*.npy")
	if err != nil {
		return fmt.Errorf("gav: create %s: %w", path, err)
	}
	defer os.Remove(tmp.Name())

	if err := WriteNpy(tmp, t); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Chmod(0644); err != nil {
		tmp.Close()
		return fmt.Errorf("gav: chmod %s: %w", tmp.Name(), err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("gav: close %s: %w", tmp.Name(), err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("gav: rename to %s: %w", path, err)
	}
	return nil
}

// Load reads the .npy tensor at path.
func Load(path string) (*Tensor, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("gav: open %s: %w", path, err)
	}
	defer file.Close()

	t, err := ReadNpy(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}

// OutputPath replaces the extension of src with ext.
func OutputPath(src, ext string) string {
	return strings.TrimSuffix(src, filepath.Ext(src)) + ext
}
