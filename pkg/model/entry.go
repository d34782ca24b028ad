// Package model holds the downloadable catalog entries shared by the catalog,
// transfer and planner packages.
package model

import (
	"fmt"
	"sync"

	"github.com/glorpus-work/shelfsync/pkg/errors"
)

// Entry is one downloadable unit: an installer, a patch or an extra.
type Entry interface {
	Name() string
	URL() string
	Size() int64
	// Digest returns the expected MD5 digest. ok is false when the digest is
	// unknown; an empty string with ok true means the catalog reported none.
	Digest() (digest string, ok bool)
	// OwnerID is the id of the product the entry belongs to, if known.
	OwnerID() (id int64, ok bool)
	// Describe returns a short human readable label used in logs.
	Describe() string
}

// DigestCell is a digest that can be set exactly once after construction.
type DigestCell struct {
	mu    sync.Mutex
	value string
	set   bool
}

// NewDigestCell returns a cell already holding digest.
func NewDigestCell(digest string) *DigestCell {
	return &DigestCell{value: digest, set: true}
}

// Get returns the digest and whether it was set.
func (c *DigestCell) Get() (string, bool) {
	if c == nil {
		return "", false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.value, c.set
}

// Set stores digest. A second call fails with ErrDigestAlreadySet.
func (c *DigestCell) Set(digest string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.set {
		return errors.ErrDigestAlreadySet
	}
	c.value = digest
	c.set = true
	return nil
}

type common struct {
	name    string
	url     string
	size    int64
	digest  *DigestCell
	ownerID *int64
}

func (c *common) Name() string { return c.name }
func (c *common) URL() string  { return c.url }
func (c *common) Size() int64  { return c.size }

func (c *common) Digest() (string, bool) { return c.digest.Get() }

func (c *common) OwnerID() (int64, bool) {
	if c.ownerID == nil {
		return 0, false
	}
	return *c.ownerID, true
}

// SetDigest records a digest learned after construction.
func (c *common) SetDigest(digest string) error { return c.digest.Set(digest) }

// EntryOption customizes an entry at construction time.
type EntryOption func(*common)

// WithDigest sets the expected digest. An empty digest is kept as the
// "reported but unknown" sentinel.
func WithDigest(digest string) EntryOption {
	return func(c *common) { c.digest = NewDigestCell(digest) }
}

// WithOwnerID sets the id of the owning product.
func WithOwnerID(id int64) EntryOption {
	return func(c *common) { c.ownerID = &id }
}

// WithSize sets the advertised size in bytes.
func WithSize(size int64) EntryOption {
	return func(c *common) { c.size = size }
}

func newCommon(name, url string, opts []EntryOption) common {
	c := common{name: name, url: url, digest: &DigestCell{}}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// Installer is an installer or patch for one platform and language.
type Installer struct {
	common
	language string
	platform string
}

// NewInstaller creates an installer entry.
func NewInstaller(name, url, language, platform string, opts ...EntryOption) *Installer {
	return &Installer{
		common:   newCommon(name, url, opts),
		language: language,
		platform: platform,
	}
}

// Language returns the installer language.
func (i *Installer) Language() string { return i.language }

// Platform returns the installer operating system.
func (i *Installer) Platform() string { return i.platform }

// Describe implements Entry.
func (i *Installer) Describe() string {
	return fmt.Sprintf("%s (%s, %s)", i.name, i.platform, i.language)
}

// Extra is a bonus file such as a manual or soundtrack.
type Extra struct {
	common
}

// NewExtra creates an extra entry.
func NewExtra(name, url string, opts ...EntryOption) *Extra {
	return &Extra{common: newCommon(name, url, opts)}
}

// Describe implements Entry.
func (e *Extra) Describe() string {
	return fmt.Sprintf("%s (extra)", e.name)
}

var (
	_ Entry = (*Installer)(nil)
	_ Entry = (*Extra)(nil)
)
