package export

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/pataspro/petshop-api/internal/application/billing"
)

var _ billing.ExportStorage = (*LocalStorage)(nil)
var _ billing.ExportStorage = (*SFTPDropStorage)(nil)

// LocalStorage guarda exports en un directorio del sistema de ficheros y
// devuelve la ruta absoluta como ubicación.
type LocalStorage struct {
	dir string
}

// NewLocalStorage crea el almacenamiento local. El directorio se crea si no
// existe.
func NewLocalStorage(dir string) (*LocalStorage, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create export dir: %w", err)
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve export dir: %w", err)
	}
	return &LocalStorage{dir: abs}, nil
}

// Store escribe el contenido y devuelve la ruta del fichero.
func (s *LocalStorage) Store(content []byte, name string) (string, error) {
	path := filepath.Join(s.dir, SanitizeFileName(name))
	if err := os.WriteFile(path, content, 0o644); err != nil {
		return "", fmt.Errorf("write export file: %w", err)
	}
	return path, nil
}

// SFTPDropStorage deja el export en un directorio de spool que un proceso
// externo sube por SFTP, y devuelve la referencia sftp:// bajo la que quedará
// publicado. La subida en sí no es responsabilidad de este servicio.
type SFTPDropStorage struct {
	spoolDir   string
	remoteBase string // p.ej. "sftp://contabilidad.example.pt/exports"
}

// NewSFTPDropStorage crea el almacenamiento de spool SFTP.
func NewSFTPDropStorage(spoolDir, remoteBase string) (*SFTPDropStorage, error) {
	if err := os.MkdirAll(spoolDir, 0o755); err != nil {
		return nil, fmt.Errorf("create sftp spool dir: %w", err)
	}
	return &SFTPDropStorage{
		spoolDir:   spoolDir,
		remoteBase: strings.TrimSuffix(remoteBase, "/"),
	}, nil
}

// Store escribe el contenido en el spool y devuelve la referencia remota.
func (s *SFTPDropStorage) Store(content []byte, name string) (string, error) {
	clean := SanitizeFileName(name)
	if err := os.WriteFile(filepath.Join(s.spoolDir, clean), content, 0o644); err != nil {
		return "", fmt.Errorf("write sftp spool file: %w", err)
	}
	return s.remoteBase + "/" + clean, nil
}

// SanitizeFileName normaliza un nombre de fichero: pliega diacríticos
// (ação → acao), sustituye separadores y espacios por guiones bajos y deja
// solo caracteres seguros para cualquier sistema de ficheros.
func SanitizeFileName(name string) string {
	folder := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(folder, name)
	if err != nil {
		folded = name
	}
	var b strings.Builder
	for _, r := range folded {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '.', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	return b.String()
}
