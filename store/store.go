package store

import (
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/uscdining/dishwatch/document"
	"github.com/uscdining/dishwatch/log"
	"github.com/uscdining/dishwatch/util"
)

type LocalStore interface {
	// List returns a list of all files in the store.
	List() ([]string, error)

	Contains(name string) (bool, error)

	Store(name string, content io.Reader) error

	// Get returns a reader for the file with the given name. The caller is responsible for closing the reader!
	Get(name string) (io.ReadCloser, error)
}

// FileStore keeps hall snapshots as flat files in one directory.
type FileStore struct {
	log     zerolog.Logger
	dataDir string
}

// NewFileStore creates the data directory if needed.
func NewFileStore(dataDir string) (*FileStore, error) {
	if err := os.MkdirAll(dataDir, os.ModePerm); err != nil {
		return nil, errors.Wrap(err, "failed to create snapshot directory")
	}

	return &FileStore{
		log:     log.NewLogger("store"),
		dataDir: dataDir,
	}, nil
}

func (fs *FileStore) List() ([]string, error) {
	entries, err := os.ReadDir(fs.dataDir)
	if err != nil {
		return nil, err
	}

	files := make([]string, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			files = append(files, entry.Name())
		}
	}
	sort.Strings(files)
	return files, nil
}

func (fs *FileStore) Contains(name string) (bool, error) {
	_, err := os.Stat(filepath.Join(fs.dataDir, name))
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (fs *FileStore) Store(name string, content io.Reader) error {
	filePath := filepath.Join(fs.dataDir, name)

	file, err := os.Create(filePath)
	if err != nil {
		return err
	}
	defer file.Close()

	n, err := io.Copy(file, content)
	if err != nil {
		return err
	}

	fs.log.Debug().Str("name", name).Str("size", util.FormatBytes(n)).Msg("Stored file")
	return nil
}

func (fs *FileStore) Get(name string) (io.ReadCloser, error) {
	filePath := filepath.Join(fs.dataDir, name)
	return os.Open(filePath)
}

// SaveDocument writes a snapshot document, replacing an earlier one for the
// same hall and date.
func SaveDocument(s LocalStore, doc *document.Document) (string, error) {
	name, content, err := doc.ToMarkdown()
	if err != nil {
		return "", err
	}

	if err := s.Store(name, strings.NewReader(content)); err != nil {
		return "", errors.Wrapf(err, "failed to store snapshot %s", name)
	}

	return name, nil
}

// LoadDocument reads a snapshot document back.
func LoadDocument(s LocalStore, name string) (*document.Document, error) {
	f, err := s.Get(name)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open snapshot %s", name)
	}
	defer f.Close()

	raw, err := io.ReadAll(f)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read snapshot %s", name)
	}

	return document.Parse(string(raw))
}
