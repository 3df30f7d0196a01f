package backup

import (
	"archive/zip"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/discvault/discvault/pkg/config"
	"github.com/discvault/discvault/pkg/errcodes"
	"github.com/discvault/discvault/pkg/models"
	"github.com/discvault/discvault/pkg/search"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/segmentio/encoding/json"
	"github.com/uptrace/bun"
)

const (
	manifestVersion  = 1
	manifestFilename = "manifest.json"
	databaseFilename = "catalog.db"
	coversDirname    = "covers"
)

// copyTables lists every table carried by an archive, in insert order.
var copyTables = []string{
	"locations",
	"artists",
	"genres",
	"tags",
	"albums",
	"album_artists",
	"album_genres",
	"album_tags",
	"tracks",
}

// Manifest describes an exported archive.
type Manifest struct {
	Version    int       `json:"version"`
	ExportedAt time.Time `json:"exported_at"`
	AlbumCount int       `json:"album_count"`
}

type Service struct {
	db            *bun.DB
	cfg           *config.Config
	searchService *search.Service
}

func NewService(db *bun.DB, cfg *config.Config) *Service {
	return &Service{db, cfg, search.NewService(db)}
}

// WriteArchive streams a full-collection zip to w: a VACUUM'd copy of the
// store, the cover directory, and a manifest.
func (svc *Service) WriteArchive(ctx context.Context, w io.Writer) error {
	staging := filepath.Join(os.TempDir(), "discvault-export-"+uuid.NewString())
	if err := os.MkdirAll(staging, 0755); err != nil {
		return errors.WithStack(err)
	}
	defer os.RemoveAll(staging)

	// VACUUM INTO writes a consistent point-in-time copy without locking the
	// live store.
	dbCopy := filepath.Join(staging, databaseFilename)
	if _, err := svc.db.ExecContext(ctx, "VACUUM INTO ?", dbCopy); err != nil {
		return errors.Wrap(err, "failed to snapshot the store")
	}

	albumCount, err := svc.db.NewSelect().Model((*models.Album)(nil)).Count(ctx)
	if err != nil {
		return errors.WithStack(err)
	}

	zw := zip.NewWriter(w)

	manifest, err := json.Marshal(Manifest{
		Version:    manifestVersion,
		ExportedAt: time.Now().UTC(),
		AlbumCount: albumCount,
	})
	if err != nil {
		return errors.WithStack(err)
	}
	entry, err := zw.Create(manifestFilename)
	if err != nil {
		return errors.WithStack(err)
	}
	if _, err := entry.Write(manifest); err != nil {
		return errors.WithStack(err)
	}

	if err := addFile(zw, dbCopy, databaseFilename); err != nil {
		return err
	}

	if err := addCovers(zw, svc.cfg.CoverDir); err != nil {
		return err
	}

	return errors.WithStack(zw.Close())
}

// RestoreArchive replaces the live collection with the contents of an
// exported archive: the store tables are copied over in one transaction, the
// cover directory is replaced, and the FTS index is rebuilt. The extraction
// directory is always cleaned up.
func (svc *Service) RestoreArchive(ctx context.Context, archive io.Reader) (*Manifest, error) {
	staging := filepath.Join(os.TempDir(), "discvault-import-"+uuid.NewString())
	if err := os.MkdirAll(staging, 0755); err != nil {
		return nil, errors.WithStack(err)
	}
	defer os.RemoveAll(staging)

	archivePath := filepath.Join(staging, "archive.zip")
	if err := writeFile(archivePath, archive); err != nil {
		return nil, err
	}

	if err := extract(archivePath, staging); err != nil {
		return nil, err
	}

	manifest, err := readManifest(filepath.Join(staging, manifestFilename))
	if err != nil {
		return nil, err
	}

	dbCopy := filepath.Join(staging, databaseFilename)
	if _, err := os.Stat(dbCopy); err != nil {
		return nil, errcodes.BadRequest("Archive is missing the collection database.")
	}

	if err := svc.copyStore(ctx, dbCopy); err != nil {
		return nil, err
	}

	if err := replaceCovers(svc.cfg.CoverDir, filepath.Join(staging, coversDirname)); err != nil {
		return nil, err
	}

	if err := svc.searchService.RebuildIndex(ctx); err != nil {
		return nil, errors.Wrap(err, "failed to rebuild the search index after import")
	}

	return manifest, nil
}

// copyStore attaches the imported database and copies every table's contents
// over the live ones in a single transaction. ATTACH is per-connection, so
// everything runs on one pinned connection.
func (svc *Service) copyStore(ctx context.Context, dbCopy string) error {
	conn, err := svc.db.Conn(ctx)
	if err != nil {
		return errors.WithStack(err)
	}
	defer conn.Close()

	if _, err := conn.ExecContext(ctx, "ATTACH DATABASE ? AS src", dbCopy); err != nil {
		return errors.Wrap(err, "failed to attach the imported database")
	}
	defer conn.ExecContext(ctx, "DETACH DATABASE src")

	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return errors.WithStack(err)
	}

	for _, table := range copyTables {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			tx.Rollback()
			return errors.Wrapf(err, "failed to clear table %s", table)
		}
		if _, err := tx.ExecContext(ctx, "INSERT INTO "+table+" SELECT * FROM src."+table); err != nil {
			tx.Rollback()
			return errors.Wrapf(err, "failed to copy table %s", table)
		}
	}

	return errors.WithStack(tx.Commit())
}

func readManifest(path string) (*Manifest, error) {
	contents, err := os.ReadFile(path)
	if err != nil {
		return nil, errcodes.BadRequest("Archive is missing its manifest.")
	}
	manifest := &Manifest{}
	if err := json.Unmarshal(contents, manifest); err != nil {
		return nil, errcodes.BadRequest("Archive manifest is malformed.")
	}
	if manifest.Version != manifestVersion {
		return nil, errcodes.BadRequest("Archive manifest version is not supported.")
	}
	return manifest, nil
}

func extract(archivePath, dest string) error {
	zr, err := zip.OpenReader(archivePath)
	if err != nil {
		return errcodes.BadRequest("Uploaded file is not a valid zip archive.")
	}
	defer zr.Close()

	for _, entry := range zr.File {
		// reject entries that would escape the extraction directory
		name := filepath.Clean(entry.Name)
		if name == ".." || strings.HasPrefix(name, ".."+string(os.PathSeparator)) || filepath.IsAbs(name) {
			return errcodes.BadRequest("Archive contains an invalid entry path.")
		}
		target := filepath.Join(dest, name)

		if entry.FileInfo().IsDir() {
			if err := os.MkdirAll(target, 0755); err != nil {
				return errors.WithStack(err)
			}
			continue
		}

		if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
			return errors.WithStack(err)
		}
		src, err := entry.Open()
		if err != nil {
			return errors.WithStack(err)
		}
		if err := writeFile(target, src); err != nil {
			src.Close()
			return err
		}
		src.Close()
	}
	return nil
}

func replaceCovers(coverDir, imported string) error {
	if err := os.RemoveAll(coverDir); err != nil {
		return errors.WithStack(err)
	}
	if err := os.MkdirAll(coverDir, 0755); err != nil {
		return errors.WithStack(err)
	}

	entries, err := os.ReadDir(imported)
	if os.IsNotExist(err) {
		// archives from empty collections have no covers directory
		return nil
	} else if err != nil {
		return errors.WithStack(err)
	}

	for _, dirEntry := range entries {
		if dirEntry.IsDir() {
			continue
		}
		src, err := os.Open(filepath.Join(imported, dirEntry.Name()))
		if err != nil {
			return errors.WithStack(err)
		}
		err = writeFile(filepath.Join(coverDir, dirEntry.Name()), src)
		src.Close()
		if err != nil {
			return err
		}
	}
	return nil
}

func addCovers(zw *zip.Writer, coverDir string) error {
	entries, err := os.ReadDir(coverDir)
	if os.IsNotExist(err) {
		return nil
	} else if err != nil {
		return errors.WithStack(err)
	}

	for _, dirEntry := range entries {
		if dirEntry.IsDir() {
			continue
		}
		err := addFile(zw, filepath.Join(coverDir, dirEntry.Name()), coversDirname+"/"+dirEntry.Name())
		if err != nil {
			return err
		}
	}
	return nil
}

func addFile(zw *zip.Writer, path, name string) error {
	src, err := os.Open(path)
	if err != nil {
		return errors.WithStack(err)
	}
	defer src.Close()

	entry, err := zw.Create(name)
	if err != nil {
		return errors.WithStack(err)
	}
	_, err = io.Copy(entry, src)
	return errors.WithStack(err)
}

func writeFile(path string, src io.Reader) error {
	dst, err := os.Create(path)
	if err != nil {
		return errors.WithStack(err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return errors.WithStack(err)
	}
	return errors.WithStack(dst.Close())
}
