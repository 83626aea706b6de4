package file

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/gofrs/uuid/v5"
	"github.com/rs/zerolog/log"
)

// WriteAtomic writes data to a uuid-named temp file next to path, syncs it and renames it over path.
// Readers see either the old or the new content, never a partial write.
func WriteAtomic(path string, data []byte, perm os.FileMode) error {
	id, err := uuid.NewV4()
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		err = fmt.Errorf("error creating directory %w", err)
		log.Error().Err(err).Str("path", path).Send()
		return err
	}

	tmp := filepath.Join(dir, fmt.Sprintf(".%s.%s.tmp", filepath.Base(path), id.String()))

	log.Debug().Int("bytes", len(data)).Str("path", tmp).Msg("creating temp file")

	f, err := os.OpenFile(tmp, os.O_CREATE|os.O_EXCL|os.O_WRONLY, perm)
	if err != nil {
		err = fmt.Errorf("error creating temp file %w", err)
		log.Error().Err(err).Send()
		return err
	}

	if _, err := f.Write(data); err != nil {
		f.Close()
		RemoveTempFile(tmp)
		err = fmt.Errorf("error writing temp file %w", err)
		log.Error().Err(err).Send()
		return err
	}

	if err := f.Sync(); err != nil {
		f.Close()
		RemoveTempFile(tmp)
		err = fmt.Errorf("error syncing temp file %w", err)
		log.Error().Err(err).Send()
		return err
	}

	if err := f.Close(); err != nil {
		RemoveTempFile(tmp)
		return fmt.Errorf("error closing temp file %w", err)
	}

	if err := os.Rename(tmp, path); err != nil {
		RemoveTempFile(tmp)
		err = fmt.Errorf("error replacing file %w", err)
		log.Error().Err(err).Str("path", path).Send()
		return err
	}

	log.Debug().Str("path", path).Msg("replaced file")

	return nil
}

// ReadIfExists returns the content of path. A missing file is reported as ok == false, not as an error.
func ReadIfExists(path string) (data []byte, ok bool, err error) {
	buf, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		err = fmt.Errorf("error reading file %w", err)
		log.Error().Err(err).Str("path", path).Send()
		return nil, false, err
	}

	return buf, true, nil
}

// RemoveTempFile removes a specified temporary file at the given path and logs success or failure.
func RemoveTempFile(path string) {
	err := os.Remove(path)
	if err != nil {
		log.Warn().Str("path", path).Err(err).Msg("could not clean up temp file")
		return
	}
	log.Debug().Str("path", path).Msg("cleaned up temp file")
}
