package corpus

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marsfaq/internal/domain"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadDirectory(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "booking.txt", "Booking\nHow do I book?\nOnline.\n---\nRefunds\nCan I cancel?\nYes, up to 90 days before launch.\n")
	writeFile(t, dir, "travel.txt", "Travel\nHow long is the trip?\nSeven months.\n")
	writeFile(t, dir, "notes.md", "ignored\n")

	entries, problems, err := NewLoader(dir, nil).Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, problems)
	require.Len(t, entries, 3)

	booking, ok := entries["booking.txt#0"]
	require.True(t, ok)
	assert.Equal(t, "Booking", booking.Document.Subject)
	assert.Equal(t, filepath.Join(dir, "booking.txt"), booking.Document.Source)
	assert.NotEmpty(t, booking.Fingerprint)
	assert.Contains(t, entries, "booking.txt#1")
	assert.Contains(t, entries, "travel.txt#0")
}

func TestLoadIsDeterministic(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.txt", "Subject\nQ one?\nA one.\n")

	first, _, err := NewLoader(dir, nil).Load(context.Background())
	require.NoError(t, err)
	second, _, err := NewLoader(dir, nil).Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestLoadSkipsUnreadableFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "good.txt", "Subject\nQ?\nA.\n")
	// dangling symlink: readable as a dir entry, unreadable as a file
	bad := filepath.Join(dir, "bad.txt")
	require.NoError(t, os.Symlink(filepath.Join(dir, "missing"), bad))

	entries, problems, err := NewLoader(dir, nil).Load(context.Background())
	require.NoError(t, err)
	require.Len(t, problems, 1)
	var fpErr *domain.FingerprintError
	require.ErrorAs(t, problems[0].Err, &fpErr)
	assert.Equal(t, bad, fpErr.Path)
	assert.Contains(t, entries, "good.txt#0")
}

func TestLoadMissingDirectory(t *testing.T) {
	_, _, err := NewLoader(filepath.Join(t.TempDir(), "nope"), nil).Load(context.Background())
	assert.Error(t, err)
}

func TestFingerprintChangesWithContent(t *testing.T) {
	doc := domain.Document{
		Subject: "Booking",
		Pairs:   []domain.QAPair{{Question: "How?", Answer: "Online."}},
	}
	fp := Fingerprint(doc)

	changed := doc
	changed.Pairs = []domain.QAPair{{Question: "How?", Answer: "Offline."}}
	assert.NotEqual(t, fp, Fingerprint(changed))
	assert.Equal(t, fp, Fingerprint(doc))
}

func TestFingerprintFieldBoundaries(t *testing.T) {
	a := domain.Document{Subject: "ab", Pairs: []domain.QAPair{{Question: "c?", Answer: "d"}}}
	b := domain.Document{Subject: "a", Pairs: []domain.QAPair{{Question: "bc?", Answer: "d"}}}
	assert.NotEqual(t, Fingerprint(a), Fingerprint(b))
}
