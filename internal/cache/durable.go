package cache

import (
	"bytes"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// Durable entries are one file per identity. Each file is
// self-describing:
//
//	magic            4 bytes  "RFKC"
//	format version   1 byte
//	kernel name      u16 length + bytes
//	arch             u16 length + bytes
//	generator ver    u16 length + bytes
//	payload length   u64
//	payload sha256   32 bytes
//	payload          N bytes
//
// Anything that fails to parse, carries a foreign identity, or fails
// the checksum is treated as a miss; the entry is recompiled and
// rewritten. Writes go to a temp file in the same directory followed by
// a rename, under an advisory lock, so readers never observe a partial
// entry.

var durableMagic = [4]byte{'R', 'F', 'K', 'C'}

const durableFormatVersion = 1

// DurableStore persists compiled code objects under one directory.
type DurableStore struct {
	dir string
}

// NewDurableStore creates the directory if needed and returns a store
// over it.
func NewDurableStore(dir string) (*DurableStore, error) {
	if dir == "" {
		return nil, errors.New("cache: empty durable store directory")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrap(err, "cache: create durable store directory")
	}
	return &DurableStore{dir: dir}, nil
}

// Dir reports the backing directory.
func (s *DurableStore) Dir() string { return s.dir }

func (s *DurableStore) entryPath(id Identity) string {
	h := sha256.New()
	for _, part := range []string{id.Kernel, id.Arch, id.GeneratorVersion} {
		var n [8]byte
		binary.LittleEndian.PutUint64(n[:], uint64(len(part)))
		h.Write(n[:])
		h.Write([]byte(part))
	}
	return filepath.Join(s.dir, hex.EncodeToString(h.Sum(nil))+".bin")
}

func appendString(buf []byte, s string) []byte {
	buf = binary.LittleEndian.AppendUint16(buf, uint16(len(s)))
	return append(buf, s...)
}

func readString(r *bytes.Reader) (string, error) {
	var n uint16
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return "", err
	}
	b := make([]byte, n)
	if _, err := r.Read(b); err != nil {
		return "", err
	}
	return string(b), nil
}

func encodeEntry(id Identity, code []byte) []byte {
	buf := append([]byte{}, durableMagic[:]...)
	buf = append(buf, durableFormatVersion)
	buf = appendString(buf, id.Kernel)
	buf = appendString(buf, id.Arch)
	buf = appendString(buf, id.GeneratorVersion)
	buf = binary.LittleEndian.AppendUint64(buf, uint64(len(code)))
	sum := sha256.Sum256(code)
	buf = append(buf, sum[:]...)
	return append(buf, code...)
}

func decodeEntry(id Identity, data []byte) ([]byte, error) {
	if len(data) < len(durableMagic)+1 || !bytes.Equal(data[:4], durableMagic[:]) {
		return nil, errors.New("bad magic")
	}
	if data[4] != durableFormatVersion {
		return nil, errors.Errorf("unsupported format version %d", data[4])
	}
	r := bytes.NewReader(data[5:])
	kernel, err := readString(r)
	if err != nil {
		return nil, err
	}
	arch, err := readString(r)
	if err != nil {
		return nil, err
	}
	genVer, err := readString(r)
	if err != nil {
		return nil, err
	}
	if kernel != id.Kernel || arch != id.Arch || genVer != id.GeneratorVersion {
		return nil, errors.New("identity mismatch")
	}
	var payloadLen uint64
	if err := binary.Read(r, binary.LittleEndian, &payloadLen); err != nil {
		return nil, err
	}
	var sum [sha256.Size]byte
	if _, err := r.Read(sum[:]); err != nil {
		return nil, err
	}
	if uint64(r.Len()) != payloadLen {
		return nil, errors.New("truncated payload")
	}
	code := make([]byte, payloadLen)
	if _, err := r.Read(code); err != nil {
		return nil, err
	}
	if sha256.Sum256(code) != sum {
		return nil, errors.New("checksum mismatch")
	}
	return code, nil
}

// Load retrieves a code object. Unreadable or invalid entries are
// misses, never errors: the cache recompiles and overwrites them.
func (s *DurableStore) Load(id Identity) ([]byte, bool) {
	path := s.entryPath(id)
	f, err := os.Open(path)
	if err != nil {
		return nil, false
	}
	defer f.Close()
	if err := lockFile(f, false); err != nil {
		return nil, false
	}
	defer unlockFile(f)

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, false
	}
	code, err := decodeEntry(id, data)
	if err != nil {
		return nil, false
	}
	return code, true
}

// Store writes a code object atomically: temp file, then rename over
// the entry path under an advisory lock.
func (s *DurableStore) Store(id Identity, code []byte) error {
	path := s.entryPath(id)
	tmp, err := os.CreateTemp(s.dir, filepath.Base(path)+".tmp*")
	if err != nil {
		return errors.Wrap(err, "cache: create temp entry")
	}
	defer os.Remove(tmp.Name())

	if err := lockFile(tmp, true); err != nil {
		tmp.Close()
		return errors.Wrap(err, "cache: lock temp entry")
	}
	_, werr := tmp.Write(encodeEntry(id, code))
	unlockFile(tmp)
	if cerr := tmp.Close(); werr == nil {
		werr = cerr
	}
	if werr != nil {
		return errors.Wrap(werr, "cache: write durable entry")
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return errors.Wrap(err, "cache: publish durable entry")
	}
	return nil
}

// Clear removes every entry file in the store directory. Unrelated
// files are left alone.
func (s *DurableStore) Clear() error {
	matches, err := filepath.Glob(filepath.Join(s.dir, "*.bin"))
	if err != nil {
		return errors.Wrap(err, "cache: list durable entries")
	}
	for _, m := range matches {
		if err := os.Remove(m); err != nil && !os.IsNotExist(err) {
			return errors.Wrap(err, "cache: remove durable entry")
		}
	}
	return nil
}
